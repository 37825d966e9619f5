// QuizDeck - Quiz Creation and Live Hosting Platform
// Copyright 2026 QuizDeck Contributors
// SPDX-License-Identifier: MPL-2.0
// https://github.com/quizdeck/quizdeck

package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schemaStatements create all tables. Every statement is idempotent so
// Connect can run them on every boot.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		username VARCHAR NOT NULL UNIQUE,
		email VARCHAR NOT NULL UNIQUE,
		password_hash VARCHAR NOT NULL,
		verified BOOLEAN NOT NULL DEFAULT false,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS quizzes (
		id UUID PRIMARY KEY,
		owner_id UUID NOT NULL,
		title VARCHAR NOT NULL,
		description VARCHAR NOT NULL DEFAULT '',
		public BOOLEAN NOT NULL DEFAULT false,
		cover_image VARCHAR NOT NULL DEFAULT '',
		questions JSON NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS editor_images (
		id UUID PRIMARY KEY,
		session_id UUID NOT NULL,
		storage_id VARCHAR NOT NULL,
		quiz_id UUID,
		uploaded_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS game_results (
		id UUID PRIMARY KEY,
		quiz_id UUID NOT NULL,
		pin VARCHAR NOT NULL,
		players INTEGER NOT NULL,
		finished_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_quizzes_owner ON quizzes (owner_id)`,
	`CREATE INDEX IF NOT EXISTS idx_editor_images_quiz ON editor_images (quiz_id)`,
}

func createSchema(ctx context.Context, conn *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement failed: %w", err)
		}
	}
	return nil
}
