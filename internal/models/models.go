// QuizDeck - Quiz Creation and Live Hosting Platform
// Copyright 2026 QuizDeck Contributors
// SPDX-License-Identifier: MPL-2.0
// https://github.com/quizdeck/quizdeck

// Package models defines the QuizDeck domain entities shared between
// the database layer, the API handlers, and the live session engine.
package models

import (
	"time"

	"github.com/google/uuid"
)

// User is a registered quiz author.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Verified     bool      `json:"verified"`
	CreatedAt    time.Time `json:"created_at"`
}

// Question is a single quiz question with its answer options.
type Question struct {
	Question string   `json:"question"`
	Time     int      `json:"time"` // seconds allowed for answering
	Image    string   `json:"image,omitempty"`
	Answers  []Answer `json:"answers"`
}

// Answer is one selectable option of a question.
type Answer struct {
	Text    string `json:"text"`
	Correct bool   `json:"correct"`
}

// Quiz is a stored quiz with its full question set.
type Quiz struct {
	ID          uuid.UUID  `json:"id"`
	OwnerID     uuid.UUID  `json:"owner_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Public      bool       `json:"public"`
	CoverImage  string     `json:"cover_image,omitempty"`
	Questions   []Question `json:"questions"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// EditorImage records an image uploaded during a quiz edit session.
// Images never attached to a quiz become orphans and are removed by the
// cleanup job.
type EditorImage struct {
	ID         uuid.UUID  `json:"id"`
	SessionID  uuid.UUID  `json:"session_id"`
	StorageID  string     `json:"storage_id"`
	QuizID     *uuid.UUID `json:"quiz_id,omitempty"`
	UploadedAt time.Time  `json:"uploaded_at"`
}

// GameResult is the persisted outcome of a finished live session.
type GameResult struct {
	ID         uuid.UUID `json:"id"`
	QuizID     uuid.UUID `json:"quiz_id"`
	PIN        string    `json:"pin"`
	Players    int       `json:"players"`
	FinishedAt time.Time `json:"finished_at"`
}
