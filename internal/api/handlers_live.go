// QuizDeck - Quiz Creation and Live Hosting Platform
// Copyright 2026 QuizDeck Contributors
// SPDX-License-Identifier: MPL-2.0
// https://github.com/quizdeck/quizdeck

package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/quizdeck/quizdeck/internal/auth"
	"github.com/quizdeck/quizdeck/internal/database"
	"github.com/quizdeck/quizdeck/internal/live"
)

// CreateGameRequest is the POST /api/v1/live/games body.
type CreateGameRequest struct {
	QuizID string `json:"quiz_id" validate:"required,uuid4"`
}

// GameResponse describes a live game session.
type GameResponse struct {
	PIN     string `json:"pin"`
	QuizID  string `json:"quiz_id"`
	State   string `json:"state"`
	Players int    `json:"players"`
}

// CreateGame opens a lobby for one of the caller's quizzes and returns
// its join PIN.
func (h *Handler) CreateGame(w http.ResponseWriter, r *http.Request) {
	session := auth.SessionFromContext(r.Context())

	var req CreateGameRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	quizID, _ := uuid.Parse(req.QuizID)

	quiz, err := h.db.GetQuiz(r.Context(), quizID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, http.StatusNotFound, CodeNotFound, "quiz not found", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, CodeInternal, "failed to load quiz", err)
		return
	}
	if quiz.OwnerID != session.UserID {
		respondError(w, http.StatusForbidden, CodeForbidden, "not the quiz owner", nil)
		return
	}

	game, err := h.games.CreateGame(quiz, session.UserID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, CodeInternal, "failed to create game", err)
		return
	}
	respondJSON(w, http.StatusCreated, gameResponse(game))
}

// GetGame returns lobby information for a PIN, letting players check a
// code before connecting.
func (h *Handler) GetGame(w http.ResponseWriter, r *http.Request) {
	game, err := h.games.Get(chi.URLParam(r, "pin"))
	if err != nil {
		respondError(w, http.StatusNotFound, CodeNotFound, "game not found", nil)
		return
	}
	respondJSON(w, http.StatusOK, gameResponse(game))
}

func gameResponse(game *live.Game) GameResponse {
	return GameResponse{
		PIN:     game.PIN(),
		QuizID:  game.QuizID().String(),
		State:   string(game.State()),
		Players: game.PlayerCount(),
	}
}
