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
	"github.com/quizdeck/quizdeck/internal/models"
)

// RegisterRequest is the POST /api/v1/users/ body.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64,alphanum"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// UserResponse is the public view of a user record.
type UserResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Verified bool   `json:"verified"`
}

// Register creates a new account.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		respondError(w, http.StatusInternalServerError, CodeInternal, "failed to hash password", err)
		return
	}

	user := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
	}
	if err := h.db.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			respondError(w, http.StatusConflict, CodeConflict, "username or email already taken", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, CodeInternal, "failed to create user", err)
		return
	}

	logging.Ctx(r.Context()).Info().Str("user_id", user.ID.String()).Msg("user registered")
	respondJSON(w, http.StatusCreated, userResponse(user))
}

// Me returns the authenticated user's account.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	session := auth.SessionFromContext(r.Context())

	user, err := h.db.GetUserByID(r.Context(), session.UserID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, http.StatusNotFound, CodeNotFound, "user not found", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, CodeInternal, "failed to load user", err)
		return
	}
	respondJSON(w, http.StatusOK, userResponse(user))
}

// UpdateEmailRequest is the PATCH /api/v1/users/me/email body.
type UpdateEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// UpdateEmail changes the authenticated user's email address.
func (h *Handler) UpdateEmail(w http.ResponseWriter, r *http.Request) {
	session := auth.SessionFromContext(r.Context())

	var req UpdateEmailRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	err := h.db.UpdateUserEmail(r.Context(), session.UserID, req.Email)
	if err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			respondError(w, http.StatusConflict, CodeConflict, "email already taken", nil)
			return
		}
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, http.StatusNotFound, CodeNotFound, "user not found", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, CodeInternal, "failed to update email", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"email": req.Email})
}

func userResponse(user *models.User) UserResponse {
	return UserResponse{
		ID:       user.ID.String(),
		Username: user.Username,
		Email:    user.Email,
		Verified: user.Verified,
	}
}
