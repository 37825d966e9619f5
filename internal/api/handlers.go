// QuizDeck - Quiz Creation and Live Hosting Platform
// Copyright 2026 QuizDeck Contributors
// SPDX-License-Identifier: MPL-2.0
// https://github.com/quizdeck/quizdeck

// Package api provides HTTP routing and handlers.
//
// Handler methods are split across files by route group:
//   - handlers.go: Handler struct and constructor (this file)
//   - handlers_login.go: login and logout
//   - handlers_users.go: registration and account management
//   - handlers_quiz.go: quiz CRUD
//   - handlers_editor.go: edit sessions and image uploads
//   - handlers_live.go: live game creation and lookup
//   - handlers_misc.go: utils, stats, search, storage, eximport,
//     sitemap and the schema-hidden testing endpoints
//   - websocket.go: realtime transport upgrade
package api

import (
	"time"

	"github.com/quizdeck/quizdeck/internal/cache"
	"github.com/quizdeck/quizdeck/internal/config"
	"github.com/quizdeck/quizdeck/internal/database"
	"github.com/quizdeck/quizdeck/internal/live"
	"github.com/quizdeck/quizdeck/internal/middleware"
	"github.com/quizdeck/quizdeck/internal/search"
	"github.com/quizdeck/quizdeck/internal/storage"
	ws "github.com/quizdeck/quizdeck/internal/websocket"
)

// Handler holds the dependencies shared by all API handlers.
type Handler struct {
	db       *database.DB
	cfg      *config.Config
	sessions *middleware.Sessions
	store    *storage.Store
	index    *search.Index
	games    *live.Registry
	hub      *ws.Hub

	statsCache *cache.LRU[*database.Counts]
	startTime  time.Time
}

// NewHandler wires the API handler.
func NewHandler(
	db *database.DB,
	cfg *config.Config,
	sessions *middleware.Sessions,
	store *storage.Store,
	index *search.Index,
	games *live.Registry,
	hub *ws.Hub,
) *Handler {
	return &Handler{
		db:         db,
		cfg:        cfg,
		sessions:   sessions,
		store:      store,
		index:      index,
		games:      games,
		hub:        hub,
		statsCache: cache.NewLRU[*database.Counts](8, time.Minute),
		startTime:  time.Now(),
	}
}
