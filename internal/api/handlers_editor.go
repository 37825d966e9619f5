// QuizDeck - Quiz Creation and Live Hosting Platform
// Copyright 2026 QuizDeck Contributors
// SPDX-License-Identifier: MPL-2.0
// https://github.com/quizdeck/quizdeck

package api

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/quizdeck/quizdeck/internal/auth"
	"github.com/quizdeck/quizdeck/internal/models"
	"github.com/quizdeck/quizdeck/internal/storage"
)

// StartEditSession opens an edit session. Images uploaded with the
// returned session ID stay orphaned until FinishEditSession attaches
// them to a quiz; the cleanup job eventually deletes the unattached
// ones.
func (h *Handler) StartEditSession(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusCreated, map[string]string{
		"session_id": uuid.New().String(),
	})
}

// UploadEditorImage stores an image against an edit session.
func (h *Handler) UploadEditorImage(w http.ResponseWriter, r *http.Request) {
	sessionID, err := uuid.Parse(r.URL.Query().Get("session_id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, "invalid session_id", nil)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.Storage.MaxUploadSize+1)
	storageID, err := h.store.Save(r.Body)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrTooLarge):
			respondError(w, http.StatusRequestEntityTooLarge, CodeTooLarge, "image exceeds upload limit", nil)
		case errors.Is(err, storage.ErrUnsupportedType):
			respondError(w, http.StatusBadRequest, CodeValidation, "unsupported image type", nil)
		default:
			respondError(w, http.StatusInternalServerError, CodeInternal, "failed to store image", err)
		}
		return
	}

	img := &models.EditorImage{
		SessionID: sessionID,
		StorageID: storageID,
	}
	if err := h.db.InsertEditorImage(r.Context(), img); err != nil {
		// Don't leave the object unreferenced on disk.
		_ = h.store.Delete(storageID)
		respondError(w, http.StatusInternalServerError, CodeInternal, "failed to record image", err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{
		"image_id":   img.ID.String(),
		"storage_id": storageID,
	})
}

// FinishEditRequest is the POST /api/v1/editor/finish body.
type FinishEditRequest struct {
	SessionID string `json:"session_id" validate:"required,uuid4"`
	QuizID    string `json:"quiz_id" validate:"required,uuid4"`
}

// FinishEditSession attaches every image of an edit session to a quiz,
// protecting them from orphan cleanup. The caller must own the quiz.
func (h *Handler) FinishEditSession(w http.ResponseWriter, r *http.Request) {
	var req FinishEditRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	sessionID, _ := uuid.Parse(req.SessionID)
	quizID, _ := uuid.Parse(req.QuizID)

	quiz, err := h.db.GetQuiz(r.Context(), quizID)
	if err != nil {
		respondError(w, http.StatusNotFound, CodeNotFound, "quiz not found", nil)
		return
	}
	session := auth.SessionFromContext(r.Context())
	if session.UserID != quiz.OwnerID {
		respondError(w, http.StatusForbidden, CodeForbidden, "not the quiz owner", nil)
		return
	}

	if err := h.db.AttachSessionImages(r.Context(), sessionID, quizID); err != nil {
		respondError(w, http.StatusInternalServerError, CodeInternal, "failed to attach images", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"quiz_id": quizID.String()})
}
