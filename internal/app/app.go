// QuizDeck - Quiz Creation and Live Hosting Platform
// Copyright 2026 QuizDeck Contributors
// SPDX-License-Identifier: MPL-2.0
// https://github.com/quizdeck/quizdeck

// Package app composes the application and owns its lifecycle.
//
// Startup follows a strict order: the database handle connects first,
// then the search index initializes (a failure here is fatal), then the
// telemetry ping fires (best effort), and finally the supervision tree
// spawns the background services. Shutdown reverses it. Both are
// idempotent: repeated calls after the first are no-ops.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/quizdeck/quizdeck/internal/api"
	"github.com/quizdeck/quizdeck/internal/auth"
	"github.com/quizdeck/quizdeck/internal/config"
	"github.com/quizdeck/quizdeck/internal/database"
	"github.com/quizdeck/quizdeck/internal/live"
	"github.com/quizdeck/quizdeck/internal/logging"
	"github.com/quizdeck/quizdeck/internal/middleware"
	"github.com/quizdeck/quizdeck/internal/scheduler"
	"github.com/quizdeck/quizdeck/internal/search"
	"github.com/quizdeck/quizdeck/internal/storage"
	"github.com/quizdeck/quizdeck/internal/supervisor"
	"github.com/quizdeck/quizdeck/internal/supervisor/services"
	"github.com/quizdeck/quizdeck/internal/telemetry"
	"github.com/quizdeck/quizdeck/internal/version"
	ws "github.com/quizdeck/quizdeck/internal/websocket"
)

// App is the composed application.
type App struct {
	cfg      *config.Config
	db       *database.DB
	index    *search.Index
	reporter *telemetry.Reporter
	store    *storage.Store
	sessions auth.SessionStore
	hub      *ws.Hub
	games    *live.Registry
	sched    *scheduler.Scheduler
	server   *http.Server
	tree     *supervisor.Tree

	mu       sync.Mutex
	started  bool
	stopped  bool
	cancel   context.CancelFunc
	treeErrs <-chan error
}

// New builds the application from configuration. Components are
// constructed but nothing connects or listens until Startup.
func New(cfg *config.Config) (*App, error) {
	db := database.New(&cfg.Database)
	index := search.NewIndex(db)

	reporter, err := telemetry.New(cfg.Telemetry.DSN, version.Version, "production", cfg.Telemetry.MinInterval)
	if err != nil {
		return nil, fmt.Errorf("telemetry: %w", err)
	}

	store, err := storage.New(cfg.Storage.Path, cfg.Storage.MaxUploadSize)
	if err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}

	sessionStore, err := auth.NewSessionStore(
		auth.SessionStoreType(cfg.Security.SessionStore), cfg.Security.SessionStorePath)
	if err != nil {
		return nil, fmt.Errorf("session store: %w", err)
	}

	remember := auth.NewRememberTokens([]byte(cfg.RememberSecretKey()), cfg.Security.RememberTTL)
	sessions := middleware.NewSessions(sessionStore, remember, cfg.Security.SessionTTL, cfg.Security.CookieSecure)

	hub := ws.NewHub()
	games := live.NewRegistry(db, hub)

	sched := scheduler.New(reporter)
	sched.Register(scheduler.ImageCleanupJobName,
		cfg.Scheduler.ImageCleanupInterval,
		scheduler.NewImageCleanupJob(db, store, cfg.Scheduler.ImageOrphanAge))

	handler := api.NewHandler(db, cfg, sessions, store, index, games, hub)
	router, err := api.NewRouter(handler, sessions, reporter)
	if err != nil {
		return nil, fmt.Errorf("router: %w", err)
	}

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		IdleTimeout:       120 * time.Second,
	}

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())

	return &App{
		cfg:      cfg,
		db:       db,
		index:    index,
		reporter: reporter,
		store:    store,
		sessions: sessionStore,
		hub:      hub,
		games:    games,
		sched:    sched,
		server:   server,
		tree:     tree,
	}, nil
}

// Startup brings the application up. Calling it again after a
// successful start is a no-op.
func (a *App) Startup(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.started {
		logging.Debug().Msg("startup called on a running app, ignoring")
		return nil
	}

	// 1. Database. Connect is itself idempotent.
	if err := a.db.Connect(ctx); err != nil {
		return fmt.Errorf("database connect: %w", err)
	}

	// 2. Search index. A broken index would silently serve wrong
	// results, so this failure aborts startup.
	if err := a.index.Init(ctx); err != nil {
		return fmt.Errorf("search init: %w", err)
	}

	// 3. Telemetry liveness ping, best effort.
	a.reporter.Ping(ctx)

	// 4. Background services under supervision.
	treeCtx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	a.tree.AddRealtimeService(services.NewWebSocketHubService(a.hub))
	a.tree.AddJobService(a.sched)
	a.tree.AddAPIService(services.NewHTTPServerService(a.server, 10*time.Second))
	a.treeErrs = a.tree.ServeBackground(treeCtx)

	a.started = true
	logging.Info().
		Str("addr", a.server.Addr).
		Str("version", version.Version).
		Msg("application started")
	return nil
}

// Shutdown stops the application. Safe to call more than once and
// before Startup.
func (a *App) Shutdown(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.started || a.stopped {
		logging.Debug().Msg("shutdown called on a stopped app, ignoring")
		return nil
	}
	a.stopped = true

	a.cancel()

	// Drain the supervisor until it finishes or the caller gives up.
	done := make(chan struct{})
	go func() {
		for err := range a.treeErrs {
			if err != nil && !errors.Is(err, context.Canceled) {
				logging.Error().Err(err).Msg("supervisor shutdown error")
			}
		}
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		unstopped, _ := a.tree.UnstoppedServiceReport()
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("service failed to stop in time")
		}
	}

	if err := a.sessions.Close(); err != nil {
		logging.Warn().Err(err).Msg("failed to close session store")
	}

	if err := a.db.Disconnect(); err != nil {
		return fmt.Errorf("database disconnect: %w", err)
	}

	logging.Info().Msg("application stopped gracefully")
	return nil
}

// WaitErr returns the supervisor's error channel, closed when the tree
// terminates. Nil before Startup.
func (a *App) WaitErr() <-chan error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.treeErrs
}
