// QuizDeck - Quiz Creation and Live Hosting Platform
// Copyright 2026 QuizDeck Contributors
// SPDX-License-Identifier: MPL-2.0
// https://github.com/quizdeck/quizdeck

package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/quizdeck/quizdeck/internal/auth"
	"github.com/quizdeck/quizdeck/internal/live"
	"github.com/quizdeck/quizdeck/internal/logging"
	ws "github.com/quizdeck/quizdeck/internal/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Game clients join from arbitrary origins by PIN.
		return true
	},
}

// GameSocket upgrades the connection and attaches it to a game room.
// Hosts connect with ?pin=...&role=host; players with ?pin=...&name=...
// Join validation happens before the upgrade so bad requests get a
// proper HTTP status instead of a websocket close frame.
//
// The host role is only granted to the authenticated user who opened
// the lobby; knowing the PIN is not enough to drive the game.
func (h *Handler) GameSocket(w http.ResponseWriter, r *http.Request) {
	pin := r.URL.Query().Get("pin")
	role := r.URL.Query().Get("role")
	name := strings.TrimSpace(r.URL.Query().Get("name"))

	if role != ws.RoleHost {
		role = ws.RolePlayer
	}

	game, err := h.games.Get(pin)
	if err != nil {
		respondError(w, http.StatusNotFound, CodeNotFound, "game not found", nil)
		return
	}

	if role == ws.RoleHost {
		session := auth.SessionFromContext(r.Context())
		if session == nil || session.UserID != game.HostID() {
			respondError(w, http.StatusForbidden, CodeForbidden, "not the game host", nil)
			return
		}
	}

	if role == ws.RolePlayer {
		if name == "" || len(name) > 32 {
			respondError(w, http.StatusBadRequest, CodeValidation, "player name is required", nil)
			return
		}
		if err := h.games.Join(pin, name); err != nil {
			switch {
			case errors.Is(err, live.ErrNameTaken):
				respondError(w, http.StatusConflict, CodeConflict, "name already taken", nil)
			case errors.Is(err, live.ErrGameStarted):
				respondError(w, http.StatusConflict, CodeConflict, "game already started", nil)
			default:
				respondError(w, http.StatusInternalServerError, CodeInternal, "failed to join game", err)
			}
			return
		}
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := ws.NewClient(h.hub, conn, pin, role, name)
	client.Start()

	h.hub.Send(client, ws.Message{
		Type: ws.MessageTypeJoined,
		Data: map[string]any{
			"pin":     game.PIN(),
			"role":    role,
			"state":   string(game.State()),
			"players": game.PlayerCount(),
		},
	})
}
