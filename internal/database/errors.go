// QuizDeck - Quiz Creation and Live Hosting Platform
// Copyright 2026 QuizDeck Contributors
// SPDX-License-Identifier: MPL-2.0
// https://github.com/quizdeck/quizdeck

package database

import "errors"

var (
	// ErrNotConnected is returned when a query runs against a handle
	// that has not been connected (or was disconnected).
	ErrNotConnected = errors.New("database: not connected")

	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("database: not found")

	// ErrDuplicate is returned when a uniqueness constraint is violated.
	ErrDuplicate = errors.New("database: duplicate entry")
)
