// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/meetvote/meetvote/handlers"
	"github.com/meetvote/meetvote/middleware"
	"github.com/meetvote/meetvote/store"
)

func NewRouter(st store.Store) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(st)
	pollHandler := handlers.NewPollHandler(st)
	publicHandler := handlers.NewPublicHandler(st)
	loginLimiter := middleware.NewLoginLimiter()

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Identity
	mux.HandleFunc("POST /auth/register", middleware.WithLogging(authHandler.Register))
	mux.HandleFunc("POST /auth/login", middleware.WithLogging(loginLimiter.Wrap(authHandler.Login)))
	mux.HandleFunc("GET /auth/me", middleware.WithLogging(authHandler.Me))

	// Poll management (owner operations, bearer credential)
	mux.HandleFunc("POST /polls", middleware.WithLogging(pollHandler.Create))
	mux.HandleFunc("GET /polls/mine", middleware.WithLogging(pollHandler.ListMine))
	mux.HandleFunc("GET /polls/{id}", middleware.WithLogging(pollHandler.Get))
	mux.HandleFunc("POST /polls/{id}/close", middleware.WithLogging(pollHandler.Close))
	mux.HandleFunc("DELETE /polls/{id}", middleware.WithLogging(pollHandler.Delete))

	// Voting operations (public, sharing token)
	mux.HandleFunc("GET /public/polls/{token}", middleware.WithLogging(publicHandler.Get))
	mux.HandleFunc("POST /public/polls/{token}/vote", middleware.WithLogging(publicHandler.Vote))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("meetvote API v1"))
	})

	return mux
}
