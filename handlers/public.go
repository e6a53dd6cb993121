// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/meetvote/meetvote/dateutil"
	"github.com/meetvote/meetvote/middleware"
	"github.com/meetvote/meetvote/models"
	"github.com/meetvote/meetvote/store"
	"github.com/meetvote/meetvote/tally"
)

type PublicHandler struct {
	store store.Store
}

func NewPublicHandler(st store.Store) *PublicHandler {
	return &PublicHandler{store: st}
}

// publicView decorates a poll with display labels and the current
// tally. The owner-facing numeric id stays off this shape.
func publicView(poll *models.Poll) models.PublicPoll {
	labels := make(map[string]string, len(poll.Dates))
	for _, d := range poll.Dates {
		labels[d] = dateutil.FormatLong(d)
	}
	result := tally.Tally(poll)
	return models.PublicPoll{
		Token:       poll.Token,
		Title:       poll.Title,
		Description: poll.Description,
		Dates:       poll.Dates,
		Votes:       poll.Votes,
		IsClosed:    poll.IsClosed,
		CreatedAt:   poll.CreatedAt,
		DateLabels:  labels,
		Scores:      result.Scores,
		BestDates:   result.BestDates,
	}
}

// Get handles GET /public/polls/{token}
// A closed poll is indistinguishable from a missing one on this path.
func (h *PublicHandler) Get(w http.ResponseWriter, r *http.Request) {
	poll, err := h.store.PollByToken(r.Context(), r.PathValue("token"))
	if err != nil {
		middleware.StoreError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, publicView(poll))
}

// Vote handles POST /public/polls/{token}/vote
func (h *PublicHandler) Vote(w http.ResponseWriter, r *http.Request) {
	var req models.SubmitVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	selections := tally.NormalizeSelections(req.Selections)
	poll, err := h.store.SubmitVote(r.Context(), r.PathValue("token"), req.Name, selections)
	if err != nil {
		middleware.StoreError(w, err)
		return
	}

	slog.Info("vote recorded", "poll_id", poll.ID, "votes", len(poll.Votes))

	middleware.JSONResponse(w, http.StatusOK, models.SubmitVoteResponse{
		OK:   true,
		Poll: publicView(poll),
	})
}
