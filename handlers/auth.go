// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/meetvote/meetvote/middleware"
	"github.com/meetvote/meetvote/models"
	"github.com/meetvote/meetvote/store"
)

type AuthHandler struct {
	store store.Store
}

func NewAuthHandler(st store.Store) *AuthHandler {
	return &AuthHandler{store: st}
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	user, err := h.store.CreateUser(r.Context(), req.Username, req.Password)
	if err != nil {
		middleware.StoreError(w, err)
		return
	}

	slog.Info("user registered", "user_id", user.ID, "username", user.Username)

	middleware.JSONResponse(w, http.StatusCreated, models.RegisterResponse{
		ID:       user.ID,
		Username: user.Username,
	})
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	session, user, err := h.store.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		middleware.StoreError(w, err)
		return
	}

	slog.Info("user logged in", "user_id", user.ID)

	middleware.JSONResponse(w, http.StatusOK, models.LoginResponse{
		AccessToken: session.Token,
		User:        *user,
	})
}

// Me handles GET /auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.store.Identity(r.Context(), middleware.BearerToken(r))
	if err != nil {
		middleware.StoreError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, user)
}
