// QuizDeck - Quiz Creation and Live Hosting Platform
// Copyright 2026 QuizDeck Contributors
// SPDX-License-Identifier: MPL-2.0
// https://github.com/quizdeck/quizdeck

package api

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/quizdeck/quizdeck/internal/auth"
	"github.com/quizdeck/quizdeck/internal/logging"
	"github.com/quizdeck/quizdeck/internal/models"
	"github.com/quizdeck/quizdeck/internal/storage"
	"github.com/quizdeck/quizdeck/internal/version"
)

// Ping answers liveness probes.
func (h *Handler) Ping(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"message": "pong"})
}

// Version reports the running build.
func (h *Handler) Version(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"version": version.Version,
		"commit":  version.Commit,
	})
}

// Health reports readiness: the process is up and the database handle
// is connected.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if !h.db.IsConnected() {
		respondError(w, http.StatusServiceUnavailable, CodeInternal, "database not connected", nil)
		return
	}
	if err := h.db.Ping(r.Context()); err != nil {
		respondError(w, http.StatusServiceUnavailable, CodeInternal, "database unreachable", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"status":  "healthy",
		"uptime":  time.Since(h.startTime).Round(time.Second).String(),
		"clients": h.hub.ClientCount(),
		"games":   h.games.ActiveGames(),
	})
}

// Stats returns global instance counts, cached briefly to keep the hot
// public endpoint off the database.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	const cacheKey = "global"

	if counts, ok := h.statsCache.Get(cacheKey); ok {
		respondJSON(w, http.StatusOK, counts)
		return
	}

	counts, err := h.db.GetCounts(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, CodeInternal, "failed to load stats", err)
		return
	}
	h.statsCache.Add(cacheKey, counts)
	respondJSON(w, http.StatusOK, counts)
}

// Search serves fuzzy quiz search over public quizzes.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if strings.TrimSpace(query) == "" {
		respondError(w, http.StatusBadRequest, CodeValidation, "query parameter q is required", nil)
		return
	}

	results, err := h.index.Search(r.Context(), query, 20)
	if err != nil {
		respondError(w, http.StatusInternalServerError, CodeInternal, "search failed", err)
		return
	}
	respondJSON(w, http.StatusOK, results)
}

// UploadObject stores an arbitrary image upload (quiz cover images).
func (h *Handler) UploadObject(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.Storage.MaxUploadSize+1)

	storageID, err := h.store.Save(r.Body)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrTooLarge):
			respondError(w, http.StatusRequestEntityTooLarge, CodeTooLarge, "upload exceeds size limit", nil)
		case errors.Is(err, storage.ErrUnsupportedType):
			respondError(w, http.StatusBadRequest, CodeValidation, "unsupported content type", nil)
		default:
			respondError(w, http.StatusInternalServerError, CodeInternal, "failed to store object", err)
		}
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"storage_id": storageID})
}

// DownloadObject streams a stored object.
func (h *Handler) DownloadObject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	obj, err := h.store.Open(id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondError(w, http.StatusNotFound, CodeNotFound, "object not found", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, CodeInternal, "failed to open object", err)
		return
	}
	defer obj.Close()

	w.Header().Set("Cache-Control", "public, max-age=86400")
	if _, err := io.Copy(w, obj); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("object download interrupted")
	}
}

// quizExport is the self-contained export format for a quiz.
type quizExport struct {
	Title       string            `json:"title" validate:"required,min=1,max=300"`
	Description string            `json:"description" validate:"max=2000"`
	Questions   []QuestionRequest `json:"questions" validate:"required,min=1,max=100,dive"`
}

// ExportQuiz returns a quiz as a portable JSON document. Cover and
// question images are referenced by storage ID and not embedded.
func (h *Handler) ExportQuiz(w http.ResponseWriter, r *http.Request) {
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

	export := quizExport{
		Title:       quiz.Title,
		Description: quiz.Description,
		Questions:   questionsToRequests(quiz.Questions),
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", quiz.ID.String()+".json"))
	if err := json.NewEncoder(w).Encode(export); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("quiz export interrupted")
	}
}

// ImportQuiz creates a private quiz from an exported document, owned
// by the caller.
func (h *Handler) ImportQuiz(w http.ResponseWriter, r *http.Request) {
	session := auth.SessionFromContext(r.Context())

	var export quizExport
	if !decodeJSON(w, r, &export) {
		return
	}

	quiz := quizFromRequest(&QuizRequest{
		Title:       export.Title,
		Description: export.Description,
		Public:      false,
		Questions:   export.Questions,
	})
	quiz.OwnerID = session.UserID

	if err := h.db.CreateQuiz(r.Context(), quiz); err != nil {
		respondError(w, http.StatusInternalServerError, CodeInternal, "failed to import quiz", err)
		return
	}
	respondJSON(w, http.StatusCreated, quiz)
}

// sitemapURLSet is the XML document served at the sitemap endpoint.
type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod"`
}

// Sitemap lists public quizzes for crawlers.
func (h *Handler) Sitemap(w http.ResponseWriter, r *http.Request) {
	quizzes, err := h.db.ListPublicQuizzes(r.Context(), 500)
	if err != nil {
		respondError(w, http.StatusInternalServerError, CodeInternal, "failed to build sitemap", err)
		return
	}

	set := sitemapURLSet{Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9"}
	for _, quiz := range quizzes {
		set.URLs = append(set.URLs, sitemapURL{
			Loc:     h.cfg.Server.BaseURL + "/quiz/" + quiz.ID.String(),
			LastMod: quiz.UpdatedAt.Format("2006-01-02"),
		})
	}

	w.Header().Set("Content-Type", "application/xml")
	if _, err := w.Write([]byte(xml.Header)); err != nil {
		return
	}
	if err := xml.NewEncoder(w).Encode(set); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("sitemap write interrupted")
	}
}

// TestingError panics on purpose so the recovery and telemetry path
// can be exercised end to end. Hidden from the API schema.
func (h *Handler) TestingError(w http.ResponseWriter, r *http.Request) {
	panic(errors.New("deliberate test error"))
}

func questionsToRequests(questions []models.Question) []QuestionRequest {
	out := make([]QuestionRequest, len(questions))
	for i, q := range questions {
		answers := make([]AnswerRequest, len(q.Answers))
		for j, a := range q.Answers {
			answers[j] = AnswerRequest{Text: a.Text, Correct: a.Correct}
		}
		out[i] = QuestionRequest{
			Question: q.Question,
			Time:     q.Time,
			Image:    q.Image,
			Answers:  answers,
		}
	}
	return out
}
