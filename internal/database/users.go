// QuizDeck - Quiz Creation and Live Hosting Platform
// Copyright 2026 QuizDeck Contributors
// SPDX-License-Identifier: MPL-2.0
// https://github.com/quizdeck/quizdeck

package database

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/quizdeck/quizdeck/internal/models"
)

// CreateUser inserts a new user. Returns ErrDuplicate when the username
// or email is already taken.
func (db *DB) CreateUser(ctx context.Context, user *models.User) error {
	conn := db.Conn()
	if conn == nil {
		return ErrNotConnected
	}

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	_, err := conn.ExecContext(ctx,
		`INSERT INTO users (id, username, email, password_hash, verified, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		user.ID, user.Username, user.Email, user.PasswordHash, user.Verified, user.CreatedAt)
	if err != nil {
		if isConstraintError(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// GetUserByUsername fetches a user by exact username.
func (db *DB) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	conn := db.Conn()
	if conn == nil {
		return nil, ErrNotConnected
	}

	row := conn.QueryRowContext(ctx,
		`SELECT id, username, email, password_hash, verified, created_at
		 FROM users WHERE username = ?`, username)
	return scanUser(row)
}

// GetUserByID fetches a user by ID.
func (db *DB) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	conn := db.Conn()
	if conn == nil {
		return nil, ErrNotConnected
	}

	row := conn.QueryRowContext(ctx,
		`SELECT id, username, email, password_hash, verified, created_at
		 FROM users WHERE id = ?`, id)
	return scanUser(row)
}

// UpdateUserEmail changes a user's email address.
func (db *DB) UpdateUserEmail(ctx context.Context, id uuid.UUID, email string) error {
	conn := db.Conn()
	if conn == nil {
		return ErrNotConnected
	}

	res, err := conn.ExecContext(ctx, `UPDATE users SET email = ? WHERE id = ?`, email, id)
	if err != nil {
		if isConstraintError(err) {
			return ErrDuplicate
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Verified, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// isConstraintError detects uniqueness violations from DuckDB's error
// text, which has no structured error codes in the driver.
func isConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "constraint") || strings.Contains(msg, "duplicate")
}
