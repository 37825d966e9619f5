// QuizDeck - Quiz Creation and Live Hosting Platform
// Copyright 2026 QuizDeck Contributors
// SPDX-License-Identifier: MPL-2.0
// https://github.com/quizdeck/quizdeck

package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/quizdeck/quizdeck/internal/auth"
	"github.com/quizdeck/quizdeck/internal/database"
	"github.com/quizdeck/quizdeck/internal/logging"
	"github.com/quizdeck/quizdeck/internal/models"
)

// QuizRequest is the create/update body for a quiz.
type QuizRequest struct {
	Title       string            `json:"title" validate:"required,min=1,max=300"`
	Description string            `json:"description" validate:"max=2000"`
	Public      bool              `json:"public"`
	CoverImage  string            `json:"cover_image" validate:"max=256"`
	Questions   []QuestionRequest `json:"questions" validate:"required,min=1,max=100,dive"`
}

// QuestionRequest is one question in a quiz body.
type QuestionRequest struct {
	Question string          `json:"question" validate:"required,min=1,max=500"`
	Time     int             `json:"time" validate:"min=1,max=300"`
	Image    string          `json:"image" validate:"max=256"`
	Answers  []AnswerRequest `json:"answers" validate:"required,min=2,max=8,dive"`
}

// AnswerRequest is one answer option.
type AnswerRequest struct {
	Text    string `json:"text" validate:"required,min=1,max=200"`
	Correct bool   `json:"correct"`
}

// CreateQuiz stores a new quiz owned by the authenticated user.
func (h *Handler) CreateQuiz(w http.ResponseWriter, r *http.Request) {
	session := auth.SessionFromContext(r.Context())

	var req QuizRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	quiz := quizFromRequest(&req)
	quiz.OwnerID = session.UserID

	if err := h.db.CreateQuiz(r.Context(), quiz); err != nil {
		respondError(w, http.StatusInternalServerError, CodeInternal, "failed to create quiz", err)
		return
	}

	if err := h.index.IndexQuiz(r.Context(), quiz.ID, quiz.Title, quiz.Description, quiz.Public); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("failed to index new quiz")
	}

	respondJSON(w, http.StatusCreated, quiz)
}

// GetQuiz returns one quiz. Private quizzes are only visible to their
// owner.
func (h *Handler) GetQuiz(w http.ResponseWriter, r *http.Request) {
	quiz, ok := h.loadQuiz(w, r)
	if !ok {
		return
	}

	if !quiz.Public {
		session := auth.SessionFromContext(r.Context())
		if session == nil || session.UserID != quiz.OwnerID {
			respondError(w, http.StatusNotFound, CodeNotFound, "quiz not found", nil)
			return
		}
	}
	respondJSON(w, http.StatusOK, quiz)
}

// UpdateQuiz replaces a quiz's content. Owner only.
func (h *Handler) UpdateQuiz(w http.ResponseWriter, r *http.Request) {
	quiz, ok := h.loadOwnedQuiz(w, r)
	if !ok {
		return
	}

	var req QuizRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	updated := quizFromRequest(&req)
	updated.ID = quiz.ID
	updated.OwnerID = quiz.OwnerID
	updated.CreatedAt = quiz.CreatedAt

	if err := h.db.UpdateQuiz(r.Context(), updated); err != nil {
		respondError(w, http.StatusInternalServerError, CodeInternal, "failed to update quiz", err)
		return
	}

	if err := h.index.IndexQuiz(r.Context(), updated.ID, updated.Title, updated.Description, updated.Public); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("failed to reindex quiz")
	}

	respondJSON(w, http.StatusOK, updated)
}

// DeleteQuiz removes a quiz. Owner only.
func (h *Handler) DeleteQuiz(w http.ResponseWriter, r *http.Request) {
	quiz, ok := h.loadOwnedQuiz(w, r)
	if !ok {
		return
	}

	if err := h.db.DeleteQuiz(r.Context(), quiz.ID); err != nil {
		respondError(w, http.StatusInternalServerError, CodeInternal, "failed to delete quiz", err)
		return
	}
	if err := h.index.RemoveQuiz(r.Context(), quiz.ID); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("failed to deindex quiz")
	}
	respondJSON(w, http.StatusOK, map[string]string{"id": quiz.ID.String()})
}

// ListMyQuizzes returns the authenticated user's quizzes.
func (h *Handler) ListMyQuizzes(w http.ResponseWriter, r *http.Request) {
	session := auth.SessionFromContext(r.Context())

	quizzes, err := h.db.ListQuizzesByOwner(r.Context(), session.UserID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, CodeInternal, "failed to list quizzes", err)
		return
	}
	respondJSON(w, http.StatusOK, quizzes)
}

// ListPublicQuizzes returns recently updated public quizzes.
func (h *Handler) ListPublicQuizzes(w http.ResponseWriter, r *http.Request) {
	quizzes, err := h.db.ListPublicQuizzes(r.Context(), 50)
	if err != nil {
		respondError(w, http.StatusInternalServerError, CodeInternal, "failed to list quizzes", err)
		return
	}
	respondJSON(w, http.StatusOK, quizzes)
}

// loadQuiz reads the {id} URL parameter and fetches the quiz.
func (h *Handler) loadQuiz(w http.ResponseWriter, r *http.Request) (*models.Quiz, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, "invalid quiz id", nil)
		return nil, false
	}

	quiz, err := h.db.GetQuiz(r.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, http.StatusNotFound, CodeNotFound, "quiz not found", nil)
			return nil, false
		}
		respondError(w, http.StatusInternalServerError, CodeInternal, "failed to load quiz", err)
		return nil, false
	}
	return quiz, true
}

// loadOwnedQuiz fetches the quiz and enforces ownership.
func (h *Handler) loadOwnedQuiz(w http.ResponseWriter, r *http.Request) (*models.Quiz, bool) {
	quiz, ok := h.loadQuiz(w, r)
	if !ok {
		return nil, false
	}

	session := auth.SessionFromContext(r.Context())
	if session.UserID != quiz.OwnerID {
		respondError(w, http.StatusForbidden, CodeForbidden, "not the quiz owner", nil)
		return nil, false
	}
	return quiz, true
}

func quizFromRequest(req *QuizRequest) *models.Quiz {
	questions := make([]models.Question, len(req.Questions))
	for i, q := range req.Questions {
		answers := make([]models.Answer, len(q.Answers))
		for j, a := range q.Answers {
			answers[j] = models.Answer{Text: a.Text, Correct: a.Correct}
		}
		questions[i] = models.Question{
			Question: q.Question,
			Time:     q.Time,
			Image:    q.Image,
			Answers:  answers,
		}
	}
	return &models.Quiz{
		Title:       req.Title,
		Description: req.Description,
		Public:      req.Public,
		CoverImage:  req.CoverImage,
		Questions:   questions,
	}
}
