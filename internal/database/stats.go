// QuizDeck - Quiz Creation and Live Hosting Platform
// Copyright 2026 QuizDeck Contributors
// SPDX-License-Identifier: MPL-2.0
// https://github.com/quizdeck/quizdeck

package database

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/quizdeck/quizdeck/internal/models"
)

// Counts holds the global instance statistics served by /api/v1/stats.
type Counts struct {
	Users       int64 `json:"users"`
	Quizzes     int64 `json:"quizzes"`
	GameResults int64 `json:"game_results"`
}

// GetCounts returns the global entity counts.
func (db *DB) GetCounts(ctx context.Context) (*Counts, error) {
	conn := db.Conn()
	if conn == nil {
		return nil, ErrNotConnected
	}

	var c Counts
	row := conn.QueryRowContext(ctx,
		`SELECT
			(SELECT count(*) FROM users),
			(SELECT count(*) FROM quizzes),
			(SELECT count(*) FROM game_results)`)
	if err := row.Scan(&c.Users, &c.Quizzes, &c.GameResults); err != nil {
		return nil, err
	}
	return &c, nil
}

// InsertGameResult persists the outcome of a finished live session.
func (db *DB) InsertGameResult(ctx context.Context, result *models.GameResult) error {
	conn := db.Conn()
	if conn == nil {
		return ErrNotConnected
	}

	if result.ID == uuid.Nil {
		result.ID = uuid.New()
	}
	if result.FinishedAt.IsZero() {
		result.FinishedAt = time.Now().UTC()
	}

	_, err := conn.ExecContext(ctx,
		`INSERT INTO game_results (id, quiz_id, pin, players, finished_at)
		 VALUES (?, ?, ?, ?, ?)`,
		result.ID, result.QuizID, result.PIN, result.Players, result.FinishedAt)
	return err
}
