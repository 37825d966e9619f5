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

// InsertEditorImage records an image uploaded during an edit session.
func (db *DB) InsertEditorImage(ctx context.Context, img *models.EditorImage) error {
	conn := db.Conn()
	if conn == nil {
		return ErrNotConnected
	}

	if img.ID == uuid.Nil {
		img.ID = uuid.New()
	}
	if img.UploadedAt.IsZero() {
		img.UploadedAt = time.Now().UTC()
	}

	_, err := conn.ExecContext(ctx,
		`INSERT INTO editor_images (id, session_id, storage_id, quiz_id, uploaded_at)
		 VALUES (?, ?, ?, ?, ?)`,
		img.ID, img.SessionID, img.StorageID, img.QuizID, img.UploadedAt)
	return err
}

// AttachSessionImages binds every image of an edit session to a quiz,
// protecting them from orphan cleanup.
func (db *DB) AttachSessionImages(ctx context.Context, sessionID, quizID uuid.UUID) error {
	conn := db.Conn()
	if conn == nil {
		return ErrNotConnected
	}

	_, err := conn.ExecContext(ctx,
		`UPDATE editor_images SET quiz_id = ? WHERE session_id = ? AND quiz_id IS NULL`,
		quizID, sessionID)
	return err
}

// ListOrphanImages returns editor images never attached to a quiz and
// older than the cutoff.
func (db *DB) ListOrphanImages(ctx context.Context, cutoff time.Time) ([]*models.EditorImage, error) {
	conn := db.Conn()
	if conn == nil {
		return nil, ErrNotConnected
	}

	rows, err := conn.QueryContext(ctx,
		`SELECT id, session_id, storage_id, quiz_id, uploaded_at
		 FROM editor_images WHERE quiz_id IS NULL AND uploaded_at < ?`, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var images []*models.EditorImage
	for rows.Next() {
		var img models.EditorImage
		if err := rows.Scan(&img.ID, &img.SessionID, &img.StorageID, &img.QuizID, &img.UploadedAt); err != nil {
			return nil, err
		}
		images = append(images, &img)
	}
	return images, rows.Err()
}

// DeleteEditorImage removes an editor-image record.
func (db *DB) DeleteEditorImage(ctx context.Context, id uuid.UUID) error {
	conn := db.Conn()
	if conn == nil {
		return ErrNotConnected
	}

	_, err := conn.ExecContext(ctx, `DELETE FROM editor_images WHERE id = ?`, id)
	return err
}
