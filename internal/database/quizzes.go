// QuizDeck - Quiz Creation and Live Hosting Platform
// Copyright 2026 QuizDeck Contributors
// SPDX-License-Identifier: MPL-2.0
// https://github.com/quizdeck/quizdeck

package database

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/quizdeck/quizdeck/internal/models"
)

// CreateQuiz inserts a new quiz. Questions are stored as a JSON column.
func (db *DB) CreateQuiz(ctx context.Context, quiz *models.Quiz) error {
	conn := db.Conn()
	if conn == nil {
		return ErrNotConnected
	}

	if quiz.ID == uuid.Nil {
		quiz.ID = uuid.New()
	}
	now := time.Now().UTC()
	if quiz.CreatedAt.IsZero() {
		quiz.CreatedAt = now
	}
	quiz.UpdatedAt = now

	questions, err := json.Marshal(quiz.Questions)
	if err != nil {
		return err
	}

	_, err = conn.ExecContext(ctx,
		`INSERT INTO quizzes (id, owner_id, title, description, public, cover_image, questions, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		quiz.ID, quiz.OwnerID, quiz.Title, quiz.Description, quiz.Public,
		quiz.CoverImage, string(questions), quiz.CreatedAt, quiz.UpdatedAt)
	return err
}

// GetQuiz fetches a quiz by ID.
func (db *DB) GetQuiz(ctx context.Context, id uuid.UUID) (*models.Quiz, error) {
	conn := db.Conn()
	if conn == nil {
		return nil, ErrNotConnected
	}

	row := conn.QueryRowContext(ctx,
		`SELECT id, owner_id, title, description, public, cover_image, questions, created_at, updated_at
		 FROM quizzes WHERE id = ?`, id)
	return scanQuiz(row)
}

// UpdateQuiz replaces a quiz's mutable fields. Only the owner may
// update; the owner check happens in the handler layer.
func (db *DB) UpdateQuiz(ctx context.Context, quiz *models.Quiz) error {
	conn := db.Conn()
	if conn == nil {
		return ErrNotConnected
	}

	questions, err := json.Marshal(quiz.Questions)
	if err != nil {
		return err
	}
	quiz.UpdatedAt = time.Now().UTC()

	res, err := conn.ExecContext(ctx,
		`UPDATE quizzes SET title = ?, description = ?, public = ?, cover_image = ?, questions = ?, updated_at = ?
		 WHERE id = ?`,
		quiz.Title, quiz.Description, quiz.Public, quiz.CoverImage,
		string(questions), quiz.UpdatedAt, quiz.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteQuiz removes a quiz and its editor-image associations.
func (db *DB) DeleteQuiz(ctx context.Context, id uuid.UUID) error {
	conn := db.Conn()
	if conn == nil {
		return ErrNotConnected
	}

	res, err := conn.ExecContext(ctx, `DELETE FROM quizzes WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	_, err = conn.ExecContext(ctx, `DELETE FROM editor_images WHERE quiz_id = ?`, id)
	return err
}

// ListQuizzesByOwner returns all quizzes belonging to a user, newest first.
func (db *DB) ListQuizzesByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.Quiz, error) {
	conn := db.Conn()
	if conn == nil {
		return nil, ErrNotConnected
	}

	rows, err := conn.QueryContext(ctx,
		`SELECT id, owner_id, title, description, public, cover_image, questions, created_at, updated_at
		 FROM quizzes WHERE owner_id = ? ORDER BY updated_at DESC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanQuizzes(rows)
}

// ListPublicQuizzes returns public quizzes, newest first, up to limit.
func (db *DB) ListPublicQuizzes(ctx context.Context, limit int) ([]*models.Quiz, error) {
	conn := db.Conn()
	if conn == nil {
		return nil, ErrNotConnected
	}
	if limit <= 0 {
		limit = 50
	}

	rows, err := conn.QueryContext(ctx,
		`SELECT id, owner_id, title, description, public, cover_image, questions, created_at, updated_at
		 FROM quizzes WHERE public ORDER BY updated_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanQuizzes(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQuizRow(s rowScanner) (*models.Quiz, error) {
	var q models.Quiz
	var questions string
	err := s.Scan(&q.ID, &q.OwnerID, &q.Title, &q.Description, &q.Public,
		&q.CoverImage, &questions, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(questions), &q.Questions); err != nil {
		return nil, err
	}
	return &q, nil
}

func scanQuiz(row *sql.Row) (*models.Quiz, error) {
	q, err := scanQuizRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return q, err
}

func scanQuizzes(rows *sql.Rows) ([]*models.Quiz, error) {
	var quizzes []*models.Quiz
	for rows.Next() {
		q, err := scanQuizRow(rows)
		if err != nil {
			return nil, err
		}
		quizzes = append(quizzes, q)
	}
	return quizzes, rows.Err()
}
