// QuizDeck - Quiz Creation and Live Hosting Platform
// Copyright 2026 QuizDeck Contributors
// SPDX-License-Identifier: MPL-2.0
// https://github.com/quizdeck/quizdeck

package live

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/quizdeck/quizdeck/internal/database"
	"github.com/quizdeck/quizdeck/internal/logging"
	"github.com/quizdeck/quizdeck/internal/metrics"
	"github.com/quizdeck/quizdeck/internal/models"
	ws "github.com/quizdeck/quizdeck/internal/websocket"
)

// Registry tracks running games and drives them from websocket
// traffic. It implements ws.InboundHandler.
type Registry struct {
	mu    sync.RWMutex
	games map[string]*Game

	db  *database.DB
	hub *ws.Hub
}

// NewRegistry creates an empty game registry and installs it as the
// hub's inbound handler.
func NewRegistry(db *database.DB, hub *ws.Hub) *Registry {
	r := &Registry{
		games: make(map[string]*Game),
		db:    db,
		hub:   hub,
	}
	hub.SetHandler(r)
	return r
}

// CreateGame starts a lobby for a quiz, hosted by hostID, and returns
// it. PINs are regenerated on the rare collision with a running game.
func (r *Registry) CreateGame(quiz *models.Quiz, hostID uuid.UUID) (*Game, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for attempt := 0; attempt < 10; attempt++ {
		pin, err := generatePIN()
		if err != nil {
			return nil, err
		}
		if _, taken := r.games[pin]; taken {
			continue
		}

		game := newGame(pin, quiz, hostID)
		r.games[pin] = game
		metrics.GamesActive.Set(float64(len(r.games)))
		logging.Info().
			Str("pin", pin).
			Str("quiz_id", quiz.ID.String()).
			Msg("game created")
		return game, nil
	}
	return nil, errors.New("live: could not allocate a game pin")
}

// Get returns the game for a PIN.
func (r *Registry) Get(pin string) (*Game, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	game, ok := r.games[pin]
	if !ok {
		return nil, ErrGameNotFound
	}
	return game, nil
}

// Join validates a player joining a lobby. Called by the websocket
// upgrade handler before the client is registered with the hub.
func (r *Registry) Join(pin, name string) error {
	game, err := r.Get(pin)
	if err != nil {
		return err
	}
	if err := game.addPlayer(name); err != nil {
		return err
	}
	r.hub.Broadcast(pin, ws.Message{
		Type: ws.MessageTypePlayerJoined,
		Data: map[string]any{"name": name, "players": game.PlayerCount()},
	})
	return nil
}

// ActiveGames returns how many games are running.
func (r *Registry) ActiveGames() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.games)
}

// HandleMessage routes an inbound client message to its game. Host
// messages drive the game forward; player messages record answers.
func (r *Registry) HandleMessage(client *ws.Client, msg ws.Message) {
	game, err := r.Get(client.Room())
	if err != nil {
		r.hub.Send(client, ws.Message{Type: ws.MessageTypeError, Data: "game not found"})
		return
	}

	switch msg.Type {
	case ws.MessageTypeStartGame:
		if client.Role() != ws.RoleHost {
			return
		}
		question, err := game.start()
		if err != nil {
			r.hub.Send(client, ws.Message{Type: ws.MessageTypeError, Data: err.Error()})
			return
		}
		r.hub.Broadcast(game.PIN(), ws.Message{Type: ws.MessageTypeQuestion, Data: question})

	case ws.MessageTypeNextQuestion:
		if client.Role() != ws.RoleHost {
			return
		}
		results, next, done, err := game.advance()
		if err != nil {
			r.hub.Send(client, ws.Message{Type: ws.MessageTypeError, Data: err.Error()})
			return
		}
		r.hub.Broadcast(game.PIN(), ws.Message{Type: ws.MessageTypeResults, Data: results})
		if done {
			r.finishGame(game)
			return
		}
		r.hub.Broadcast(game.PIN(), ws.Message{Type: ws.MessageTypeQuestion, Data: next})

	case ws.MessageTypeAnswer:
		if client.Role() != ws.RolePlayer {
			return
		}
		data, ok := msg.Data.(map[string]any)
		if !ok {
			return
		}
		index, ok := data["index"].(float64)
		if !ok {
			return
		}
		game.recordAnswer(client.Name(), int(index))
	}
}

// HandleDisconnect removes a departing player from its game, or ends
// the game when the host leaves.
func (r *Registry) HandleDisconnect(client *ws.Client) {
	game, err := r.Get(client.Room())
	if err != nil {
		return
	}

	if client.Role() == ws.RoleHost {
		logging.Info().Str("pin", game.PIN()).Msg("host disconnected, ending game")
		r.finishGame(game)
		return
	}

	game.removePlayer(client.Name())
	r.hub.Broadcast(game.PIN(), ws.Message{
		Type: ws.MessageTypePlayerJoined,
		Data: map[string]any{"name": client.Name(), "players": game.PlayerCount(), "left": true},
	})
}

// finishGame broadcasts the final scoreboard, persists the result and
// drops the game from the registry.
func (r *Registry) finishGame(game *Game) {
	r.mu.Lock()
	if _, ok := r.games[game.PIN()]; !ok {
		r.mu.Unlock()
		return
	}
	delete(r.games, game.PIN())
	metrics.GamesActive.Set(float64(len(r.games)))
	r.mu.Unlock()

	board := game.Scoreboard()
	r.hub.Broadcast(game.PIN(), ws.Message{Type: ws.MessageTypeGameEnd, Data: board})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result := &models.GameResult{
		QuizID:  game.QuizID(),
		PIN:     game.PIN(),
		Players: len(board),
	}
	if err := r.db.InsertGameResult(ctx, result); err != nil {
		logging.Error().Err(err).Str("pin", game.PIN()).Msg("failed to persist game result")
	}

	logging.Info().
		Str("pin", game.PIN()).
		Int("players", len(board)).
		Msg("game finished")
}
