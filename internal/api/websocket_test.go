// QuizDeck - Quiz Creation and Live Hosting Platform
// Copyright 2026 QuizDeck Contributors
// SPDX-License-Identifier: MPL-2.0
// https://github.com/quizdeck/quizdeck

package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/quizdeck/quizdeck/internal/auth"
	"github.com/quizdeck/quizdeck/internal/config"
	"github.com/quizdeck/quizdeck/internal/live"
	"github.com/quizdeck/quizdeck/internal/middleware"
	"github.com/quizdeck/quizdeck/internal/models"
	ws "github.com/quizdeck/quizdeck/internal/websocket"
)

func lobbyQuiz() *models.Quiz {
	return &models.Quiz{
		ID:    uuid.New(),
		Title: "Capitals",
		Questions: []models.Question{
			{
				Question: "Capital of France?",
				Time:     20,
				Answers:  []models.Answer{{Text: "Paris", Correct: true}, {Text: "Lyon"}},
			},
		},
	}
}

func TestGameSocket_HostRequiresMatchingSession(t *testing.T) {
	hub := ws.NewHub()
	games := live.NewRegistry(nil, hub)
	hostID := uuid.New()

	game, err := games.CreateGame(lobbyQuiz(), hostID)
	if err != nil {
		t.Fatalf("CreateGame: %v", err)
	}

	h := NewHandler(nil, nil, nil, nil, nil, games, hub)

	tests := []struct {
		name       string
		session    *auth.Session
		wantStatus int
	}{
		{
			name:       "anonymous host connection",
			session:    nil,
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "authenticated as a different user",
			session:    &auth.Session{ID: "s1", UserID: uuid.New(), Username: "mallory"},
			wantStatus: http.StatusForbidden,
		},
		{
			name:    "authenticated as the lobby creator",
			session: &auth.Session{ID: "s2", UserID: hostID, Username: "alice"},
			// The host check passes and the request reaches the
			// websocket upgrade, which rejects a plain GET.
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/?pin="+game.PIN()+"&role=host", nil)
			if tt.session != nil {
				req = req.WithContext(auth.ContextWithSession(req.Context(), tt.session))
			}
			rec := httptest.NewRecorder()

			h.GameSocket(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusForbidden && !strings.Contains(rec.Body.String(), "not the game host") {
				t.Errorf("body = %q, want host rejection", rec.Body.String())
			}
		})
	}
}

func TestGameSocket_PlayerRequiresName(t *testing.T) {
	hub := ws.NewHub()
	games := live.NewRegistry(nil, hub)

	game, err := games.CreateGame(lobbyQuiz(), uuid.New())
	if err != nil {
		t.Fatalf("CreateGame: %v", err)
	}

	h := NewHandler(nil, nil, nil, nil, nil, games, hub)

	req := httptest.NewRequest(http.MethodGet, "/?pin="+game.PIN(), nil)
	rec := httptest.NewRecorder()
	h.GameSocket(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestRouter_RealtimeMountedAtRoot(t *testing.T) {
	cfg := &config.Config{}
	cfg.Server.CORSOrigins = []string{"*"}

	store := auth.NewMemorySessionStore()
	remember := auth.NewRememberTokens([]byte("0123456789abcdef0123456789abcdef"), time.Hour)
	sessions := middleware.NewSessions(store, remember, time.Hour, false)

	hub := ws.NewHub()
	games := live.NewRegistry(nil, hub)
	h := NewHandler(nil, cfg, sessions, nil, nil, games, hub)

	router, err := NewRouter(h, sessions, nil)
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}

	// The root path is the realtime transport, not a chi 404: an
	// unknown PIN gets the handler's own not-found envelope.
	req := httptest.NewRequest(http.MethodGet, "/?pin=000000&name=alice", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
	if !strings.Contains(rec.Body.String(), "game not found") {
		t.Errorf("body = %q, want the game lookup error", rec.Body.String())
	}
}
