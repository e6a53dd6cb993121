// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/meetvote/meetvote/models"
	"github.com/meetvote/meetvote/store"
)

// DefaultTimeout bounds every round trip. A slow or dead backend
// surfaces as models.ErrTransport; retrying is the caller's decision.
const DefaultTimeout = 10 * time.Second

// Remote speaks the store contract over HTTP against a running MeetVote
// server. The bearer credential is passed per call, never stored.
type Remote struct {
	base  string
	httpc *http.Client
}

// New creates a Remote for the given base URL, e.g. "http://localhost:5000".
func New(baseURL string) *Remote {
	return &Remote{
		base:  strings.TrimRight(baseURL, "/"),
		httpc: &http.Client{Timeout: DefaultTimeout},
	}
}

// NewWithClient creates a Remote with a caller-supplied http.Client.
func NewWithClient(baseURL string, httpc *http.Client) *Remote {
	return &Remote{base: strings.TrimRight(baseURL, "/"), httpc: httpc}
}

// do performs one round trip. conflict is the error a 409 maps to for
// this operation (ErrState on vote, ErrExists on register).
func (c *Remote) do(ctx context.Context, method, path, credential string, body, out any, conflict error) error {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if credential != "" {
		req.Header.Set("Authorization", "Bearer "+credential)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr models.ErrorResponse
		json.NewDecoder(resp.Body).Decode(&apiErr)
		return statusError(resp.StatusCode, apiErr.Message, conflict)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

func statusError(code int, message string, conflict error) error {
	switch code {
	case http.StatusBadRequest:
		return &models.ValidationError{Msg: message}
	case http.StatusUnauthorized:
		return models.ErrAuth
	case http.StatusNotFound:
		return models.ErrNotFound
	case http.StatusConflict:
		if conflict != nil {
			return conflict
		}
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return fmt.Errorf("%w: server returned %d", models.ErrTransport, code)
	}
	return fmt.Errorf("server returned %d: %s", code, message)
}

func (c *Remote) CreateUser(ctx context.Context, username, password string) (*models.User, error) {
	var resp models.RegisterResponse
	err := c.do(ctx, http.MethodPost, "/auth/register", "",
		models.RegisterRequest{Username: username, Password: password}, &resp, models.ErrExists)
	if err != nil {
		return nil, err
	}
	return &models.User{ID: resp.ID, Username: resp.Username}, nil
}

func (c *Remote) Login(ctx context.Context, username, password string) (*models.Session, *models.User, error) {
	var resp models.LoginResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", "",
		models.LoginRequest{Username: username, Password: password}, &resp, nil)
	if err != nil {
		return nil, nil, err
	}
	return &models.Session{Token: resp.AccessToken}, &resp.User, nil
}

func (c *Remote) Identity(ctx context.Context, credential string) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodGet, "/auth/me", credential, nil, &user, nil); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Remote) CreatePoll(ctx context.Context, credential, title, description string, dates []string) (*models.PollSummary, error) {
	var summary models.PollSummary
	err := c.do(ctx, http.MethodPost, "/polls", credential,
		models.CreatePollRequest{Title: title, Description: description, Dates: dates}, &summary, nil)
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

// PollByToken fetches the voter-facing view. The numeric id is not
// transmitted on the public path, so the returned poll carries a zero id.
func (c *Remote) PollByToken(ctx context.Context, token string) (*models.Poll, error) {
	var view models.PublicPoll
	if err := c.do(ctx, http.MethodGet, "/public/polls/"+token, "", nil, &view, nil); err != nil {
		return nil, err
	}
	return view.AsPoll(), nil
}

func (c *Remote) PollByID(ctx context.Context, credential string, id int64) (*models.Poll, error) {
	var poll models.Poll
	path := "/polls/" + strconv.FormatInt(id, 10)
	if err := c.do(ctx, http.MethodGet, path, credential, nil, &poll, nil); err != nil {
		return nil, err
	}
	return &poll, nil
}

func (c *Remote) ListMine(ctx context.Context, credential string) ([]models.PollSummary, error) {
	var summaries []models.PollSummary
	if err := c.do(ctx, http.MethodGet, "/polls/mine", credential, nil, &summaries, nil); err != nil {
		return nil, err
	}
	return summaries, nil
}

func (c *Remote) ClosePoll(ctx context.Context, credential string, id int64) (*models.PollSummary, error) {
	var summary models.PollSummary
	path := "/polls/" + strconv.FormatInt(id, 10) + "/close"
	if err := c.do(ctx, http.MethodPost, path, credential, nil, &summary, nil); err != nil {
		return nil, err
	}
	return &summary, nil
}

func (c *Remote) DeletePoll(ctx context.Context, credential string, id int64) error {
	path := "/polls/" + strconv.FormatInt(id, 10)
	return c.do(ctx, http.MethodDelete, path, credential, nil, nil, nil)
}

func (c *Remote) SubmitVote(ctx context.Context, token, name string, selections map[string]string) (*models.Poll, error) {
	wire := make([]models.VoteSelection, 0, len(selections))
	for date, value := range selections {
		wire = append(wire, models.VoteSelection{Date: date, Value: value})
	}
	sort.Slice(wire, func(i, j int) bool { return wire[i].Date < wire[j].Date })

	var resp models.SubmitVoteResponse
	err := c.do(ctx, http.MethodPost, "/public/polls/"+token+"/vote", "",
		models.SubmitVoteRequest{Name: name, Selections: wire}, &resp, models.ErrState)
	if err != nil {
		return nil, err
	}
	return resp.Poll.AsPoll(), nil
}

var _ store.Store = (*Remote)(nil)
