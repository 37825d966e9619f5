// QuizDeck - Quiz Creation and Live Hosting Platform
// Copyright 2026 QuizDeck Contributors
// SPDX-License-Identifier: MPL-2.0
// https://github.com/quizdeck/quizdeck

// Package search maintains the quiz search index and serves fuzzy
// lookups for /api/v1/search.
//
// The index is a dedicated DuckDB table kept in sync with the quizzes
// table by the quiz handlers. Init is idempotent: it creates the table
// if missing and backfills it from existing public quizzes, so startup
// can call it on every boot.
package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/quizdeck/quizdeck/internal/database"
	"github.com/quizdeck/quizdeck/internal/logging"
)

// Result is a single search hit.
type Result struct {
	QuizID      uuid.UUID `json:"quiz_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Score       float64   `json:"score"`
}

// Index provides fuzzy quiz search backed by the shared database handle.
type Index struct {
	db *database.DB
}

// NewIndex creates a search index over the given database handle.
func NewIndex(db *database.DB) *Index {
	return &Index{db: db}
}

// Init creates the index table and backfills it from public quizzes.
// Idempotent; an error here is fatal at startup because serving search
// against a missing index would return wrong results silently.
func (i *Index) Init(ctx context.Context) error {
	conn := i.db.Conn()
	if conn == nil {
		return database.ErrNotConnected
	}

	_, err := conn.ExecContext(ctx,
		`CREATE TABLE IF NOT EXISTS quiz_search (
			quiz_id UUID PRIMARY KEY,
			title VARCHAR NOT NULL,
			description VARCHAR NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("failed to create search index table: %w", err)
	}

	// Backfill entries for public quizzes missing from the index.
	_, err = conn.ExecContext(ctx,
		`INSERT INTO quiz_search (quiz_id, title, description)
		 SELECT q.id, q.title, q.description FROM quizzes q
		 WHERE q.public AND q.id NOT IN (SELECT quiz_id FROM quiz_search)`)
	if err != nil {
		return fmt.Errorf("failed to backfill search index: %w", err)
	}

	logging.Info().Msg("search index initialized")
	return nil
}

// IndexQuiz adds or refreshes a quiz in the index. Private quizzes are
// removed instead, so they never appear in results.
func (i *Index) IndexQuiz(ctx context.Context, quizID uuid.UUID, title, description string, public bool) error {
	if !public {
		return i.RemoveQuiz(ctx, quizID)
	}

	conn := i.db.Conn()
	if conn == nil {
		return database.ErrNotConnected
	}

	_, err := conn.ExecContext(ctx, `DELETE FROM quiz_search WHERE quiz_id = ?`, quizID)
	if err != nil {
		return err
	}
	_, err = conn.ExecContext(ctx,
		`INSERT INTO quiz_search (quiz_id, title, description) VALUES (?, ?, ?)`,
		quizID, title, description)
	return err
}

// RemoveQuiz drops a quiz from the index.
func (i *Index) RemoveQuiz(ctx context.Context, quizID uuid.UUID) error {
	conn := i.db.Conn()
	if conn == nil {
		return database.ErrNotConnected
	}

	_, err := conn.ExecContext(ctx, `DELETE FROM quiz_search WHERE quiz_id = ?`, quizID)
	return err
}

// Search returns quizzes matching the query, best first. Matching
// combines substring containment with jaccard similarity so short
// queries still rank sensibly.
func (i *Index) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	conn := i.db.Conn()
	if conn == nil {
		return nil, database.ErrNotConnected
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	rows, err := conn.QueryContext(ctx,
		`SELECT quiz_id, title, description,
			greatest(
				jaccard(lower(title), lower(?)),
				CASE WHEN contains(lower(title), lower(?)) THEN 1.0 ELSE 0.0 END,
				CASE WHEN contains(lower(description), lower(?)) THEN 0.5 ELSE 0.0 END
			) AS score
		 FROM quiz_search
		 WHERE score > 0.3
		 ORDER BY score DESC, title
		 LIMIT ?`, query, query, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		if err := rows.Scan(&r.QuizID, &r.Title, &r.Description, &r.Score); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
