// QuizDeck - Quiz Creation and Live Hosting Platform
// Copyright 2026 QuizDeck Contributors
// SPDX-License-Identifier: MPL-2.0
// https://github.com/quizdeck/quizdeck

// Package database wraps the DuckDB connection behind an explicit
// connect/disconnect lifecycle and provides all persistence methods for
// users, quizzes, editor images, and game results.
//
// The handle is created once at boot (New) and connected during
// application startup. Connect is a no-op when already connected and
// Disconnect a no-op when already disconnected, so the startup and
// shutdown hooks stay idempotent. The underlying *sql.DB pool is safe
// for concurrent use by in-flight requests; no additional locking is
// layered on top of it.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/quizdeck/quizdeck/internal/config"
	"github.com/quizdeck/quizdeck/internal/logging"
)

// DB wraps the DuckDB connection and provides data access methods.
type DB struct {
	mu        sync.Mutex
	conn      *sql.DB
	cfg       *config.DatabaseConfig
	connected bool
}

// New creates an unconnected database handle. Call Connect before use.
func New(cfg *config.DatabaseConfig) *DB {
	return &DB{cfg: cfg}
}

// Connect opens the DuckDB database, configures the connection pool,
// and creates the schema. Calling Connect on a connected handle is a
// no-op.
func (db *DB) Connect(ctx context.Context) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.connected {
		return nil
	}

	// Ensure the parent directory exists so DuckDB can create the file.
	dbDir := filepath.Dir(db.cfg.Path)
	if dbDir != "" && dbDir != "." {
		if err := os.MkdirAll(dbDir, 0o750); err != nil {
			return fmt.Errorf("failed to create database directory %s: %w", dbDir, err)
		}
	}

	numThreads := db.cfg.Threads
	if numThreads <= 0 {
		numThreads = runtime.NumCPU()
	}

	connStr := fmt.Sprintf("%s?access_mode=read_write&threads=%d&max_memory=%s",
		db.cfg.Path, numThreads, db.cfg.MaxMemory)

	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	// DuckDB serializes writes internally; a small pool is enough.
	conn.SetMaxOpenConns(numThreads)
	conn.SetMaxIdleConns(2)

	if err := conn.PingContext(ctx); err != nil {
		closeQuietly(conn)
		return fmt.Errorf("failed to ping database: %w", err)
	}

	if err := createSchema(ctx, conn); err != nil {
		closeQuietly(conn)
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	db.conn = conn
	db.connected = true
	logging.Info().Str("path", db.cfg.Path).Msg("database connected")
	return nil
}

// Disconnect closes the database connection. Calling Disconnect on a
// disconnected handle is a no-op.
func (db *DB) Disconnect() error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if !db.connected {
		return nil
	}

	err := db.conn.Close()
	db.conn = nil
	db.connected = false
	if err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	logging.Info().Msg("database disconnected")
	return nil
}

// IsConnected reports whether the handle currently holds an open
// connection.
func (db *DB) IsConnected() bool {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.connected
}

// Conn returns the underlying *sql.DB, or nil when disconnected.
// Exposed for components that issue their own queries (search index).
func (db *DB) Conn() *sql.DB {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.conn
}

// Ping verifies the connection is alive.
func (db *DB) Ping(ctx context.Context) error {
	conn := db.Conn()
	if conn == nil {
		return ErrNotConnected
	}
	return conn.PingContext(ctx)
}

func closeQuietly(conn *sql.DB) {
	if err := conn.Close(); err != nil {
		logging.Warn().Err(err).Msg("error closing database connection")
	}
}
