// QuizDeck - Quiz Creation and Live Hosting Platform
// Copyright 2026 QuizDeck Contributors
// SPDX-License-Identifier: MPL-2.0
// https://github.com/quizdeck/quizdeck

// Package main is the entry point for the QuizDeck server.
//
// QuizDeck is a self-hosted platform for creating quizzes and hosting
// live, PIN-based game sessions. The server exposes a REST API under
// /api/v1, a websocket transport for live games, Prometheus metrics on
// /metrics and interactive API documentation on /api/docs.
//
// # Startup order
//
//  1. Configuration: Koanf v2 layered sources (env > yaml > defaults)
//  2. Database: DuckDB file store with schema bootstrap
//  3. Search index: created and backfilled, fatal on error
//  4. Telemetry: best-effort liveness ping when a DSN is configured
//  5. Supervision tree: websocket hub, scheduler and HTTP server
//
// # Signal handling
//
// SIGINT and SIGTERM trigger graceful shutdown: the HTTP server drains
// in-flight requests (10s timeout), the hub closes its clients, the
// scheduler stops, the session store closes and the database
// disconnects.
//
// # Example usage
//
//	export SECRET_KEY=$(openssl rand -base64 32)
//	export DUCKDB_PATH=/data/quizdeck.duckdb
//	export STORAGE_PATH=/data/uploads
//	./quizdeck
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/quizdeck/quizdeck/internal/app"
	"github.com/quizdeck/quizdeck/internal/config"
	"github.com/quizdeck/quizdeck/internal/logging"
	"github.com/quizdeck/quizdeck/internal/version"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("version", version.Version).
		Str("commit", version.Commit).
		Msg("starting quizdeck")

	application, err := app.New(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to build application")
	}

	startCtx, startCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := application.Startup(startCtx); err != nil {
		startCancel()
		logging.Fatal().Err(err).Msg("startup failed")
	}
	startCancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logging.Info().Str("signal", sig.String()).Msg("received shutdown signal")
	case err := <-application.WaitErr():
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("supervisor tree terminated")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := application.Shutdown(shutdownCtx); err != nil {
		logging.Fatal().Err(err).Msg("shutdown failed")
	}
}
