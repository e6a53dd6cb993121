// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"strings"
	"time"
)

// Vote value constants
const (
	VoteYes   = "yes"
	VoteNo    = "no"
	VoteMaybe = "maybe"
)

// Poll date count bounds
const (
	MinDates = 3
	MaxDates = 6
)

// ValidVoteValue reports whether v is one of yes, no, maybe.
func ValidVoteValue(v string) bool {
	return v == VoteYes || v == VoteNo || v == VoteMaybe
}

// FoldName normalizes a voter name for identity matching. Two names that
// fold to the same key are the same participant.
func FoldName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Domain types

type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

type Session struct {
	Token     string    `json:"token"`
	UserID    string    `json:"-"`
	CreatedAt time.Time `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Vote is one participant's full ballot. Selections maps an ISO date to
// yes/no/maybe; a date with no entry means "no response", which is not
// the same as an explicit no (both score zero, but they render differently).
type Vote struct {
	Name       string            `json:"name"`
	Selections map[string]string `json:"selections"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// Poll is the aggregate root. ID is the owner-facing identifier and is
// never exposed on the public path; Token is the unguessable sharing
// identifier and is never accepted for owner-gated operations.
type Poll struct {
	ID          int64      `json:"id"`
	Token       string     `json:"token"`
	OwnerID     string     `json:"-"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Dates       []string   `json:"dates"`
	Votes       []Vote     `json:"votes"`
	IsClosed    bool       `json:"isClosed"`
	ClosedAt    *time.Time `json:"closedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// VoteFor returns the vote whose folded name matches name, or nil.
func (p *Poll) VoteFor(name string) *Vote {
	key := FoldName(name)
	for i := range p.Votes {
		if FoldName(p.Votes[i].Name) == key {
			return &p.Votes[i]
		}
	}
	return nil
}

// HasDate reports whether date is one of the poll's candidate dates.
func (p *Poll) HasDate(date string) bool {
	for _, d := range p.Dates {
		if d == date {
			return true
		}
	}
	return false
}

// PollSummary is the owner-facing listing shape: no vote detail, just
// counts and lifecycle state.
type PollSummary struct {
	ID          int64      `json:"id"`
	Token       string     `json:"token"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Dates       []string   `json:"dates"`
	VoteCount   int        `json:"voteCount"`
	IsClosed    bool       `json:"isClosed"`
	ClosedAt    *time.Time `json:"closedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	CreatedAgo  string     `json:"createdAgo,omitempty"`
}

// Request types

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type CreatePollRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Dates       []string `json:"dates"`
}

type VoteSelection struct {
	Date  string `json:"date"`
	Value string `json:"value"`
}

type SubmitVoteRequest struct {
	Name       string          `json:"name"`
	Selections []VoteSelection `json:"selections"`
}

// Response types

type RegisterResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	User        User   `json:"user"`
}

type DeleteResponse struct {
	Deleted bool `json:"deleted"`
}

type SubmitVoteResponse struct {
	OK   bool       `json:"ok"`
	Poll PublicPoll `json:"poll"`
}

// PublicPoll is the voter-facing poll view: display labels for the
// candidate dates and the current tally attached. The owner-facing
// numeric id is deliberately absent; voters only ever see the sharing
// token.
type PublicPoll struct {
	Token       string            `json:"token"`
	Title       string            `json:"title"`
	Description string            `json:"description,omitempty"`
	Dates       []string          `json:"dates"`
	Votes       []Vote            `json:"votes"`
	IsClosed    bool              `json:"isClosed"`
	CreatedAt   time.Time         `json:"createdAt"`
	DateLabels  map[string]string `json:"dateLabels"`
	Scores      map[string]int    `json:"scores"`
	BestDates   []string          `json:"bestDates"`
}

// AsPoll reconstructs the domain poll carried by the view. The numeric
// id does not travel on the public path, so it is zero.
func (v *PublicPoll) AsPoll() *Poll {
	return &Poll{
		Token:       v.Token,
		Title:       v.Title,
		Description: v.Description,
		Dates:       v.Dates,
		Votes:       v.Votes,
		IsClosed:    v.IsClosed,
		CreatedAt:   v.CreatedAt,
	}
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
