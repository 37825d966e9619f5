// QuizDeck - Quiz Creation and Live Hosting Platform
// Copyright 2026 QuizDeck Contributors
// SPDX-License-Identifier: MPL-2.0
// https://github.com/quizdeck/quizdeck

package api

import (
	"errors"
	"net/http"

	"github.com/quizdeck/quizdeck/internal/auth"
	"github.com/quizdeck/quizdeck/internal/database"
	"github.com/quizdeck/quizdeck/internal/logging"
)

// LoginRequest is the POST /api/v1/login/ body.
type LoginRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Remember bool   `json:"remember"`
}

// LoginResponse is returned on successful authentication.
type LoginResponse struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

// Login authenticates a user and issues session cookies.
// Failed lookups and bad passwords return the same error so usernames
// cannot be enumerated.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.db.GetUserByUsername(r.Context(), req.Username)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, http.StatusUnauthorized, CodeUnauthorized, "invalid username or password", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, CodeInternal, "login failed", err)
		return
	}

	if err := auth.VerifyPassword(user.PasswordHash, req.Password); err != nil {
		respondError(w, http.StatusUnauthorized, CodeUnauthorized, "invalid username or password", nil)
		return
	}

	session, err := h.sessions.IssueSession(w, r, user.ID, user.Username, req.Remember)
	if err != nil {
		respondError(w, http.StatusInternalServerError, CodeInternal, "failed to create session", err)
		return
	}

	logging.Ctx(r.Context()).Info().
		Str("user_id", user.ID.String()).
		Bool("remember", req.Remember).
		Msg("user logged in")

	respondJSON(w, http.StatusOK, LoginResponse{
		UserID:   session.UserID.String(),
		Username: session.Username,
	})
}

// Logout ends the current session and clears cookies. Safe to call
// while anonymous.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.EndSession(w, r); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("failed to delete session on logout")
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}
