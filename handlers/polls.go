// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/meetvote/meetvote/middleware"
	"github.com/meetvote/meetvote/models"
	"github.com/meetvote/meetvote/store"
)

type PollHandler struct {
	store store.Store
}

func NewPollHandler(st store.Store) *PollHandler {
	return &PollHandler{store: st}
}

// pollID parses the {id} path value. A non-numeric id can never exist,
// so it reports not-found rather than bad-request.
func pollID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
		return 0, false
	}
	return id, true
}

// Create handles POST /polls
func (h *PollHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreatePollRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	summary, err := h.store.CreatePoll(r.Context(), middleware.BearerToken(r),
		req.Title, req.Description, req.Dates)
	if err != nil {
		middleware.StoreError(w, err)
		return
	}

	slog.Info("poll created", "poll_id", summary.ID, "dates", len(summary.Dates))

	middleware.JSONResponse(w, http.StatusCreated, summary)
}

// ListMine handles GET /polls/mine
func (h *PollHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.store.ListMine(r.Context(), middleware.BearerToken(r))
	if err != nil {
		middleware.StoreError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, summaries)
}

// Get handles GET /polls/{id}
// Returns the full poll including vote detail, owner only.
func (h *PollHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pollID(w, r)
	if !ok {
		return
	}

	poll, err := h.store.PollByID(r.Context(), middleware.BearerToken(r), id)
	if err != nil {
		middleware.StoreError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, poll)
}

// Close handles POST /polls/{id}/close
// Closing is idempotent: re-closing a closed poll is a no-op success.
func (h *PollHandler) Close(w http.ResponseWriter, r *http.Request) {
	id, ok := pollID(w, r)
	if !ok {
		return
	}

	summary, err := h.store.ClosePoll(r.Context(), middleware.BearerToken(r), id)
	if err != nil {
		middleware.StoreError(w, err)
		return
	}

	slog.Info("poll closed", "poll_id", id)

	middleware.JSONResponse(w, http.StatusOK, summary)
}

// Delete handles DELETE /polls/{id}
func (h *PollHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pollID(w, r)
	if !ok {
		return
	}

	if err := h.store.DeletePoll(r.Context(), middleware.BearerToken(r), id); err != nil {
		middleware.StoreError(w, err)
		return
	}

	slog.Info("poll deleted", "poll_id", id)

	middleware.JSONResponse(w, http.StatusOK, models.DeleteResponse{Deleted: true})
}
