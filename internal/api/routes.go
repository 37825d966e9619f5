// QuizDeck - Quiz Creation and Live Hosting Platform
// Copyright 2026 QuizDeck Contributors
// SPDX-License-Identifier: MPL-2.0
// https://github.com/quizdeck/quizdeck

package api

import (
	"fmt"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/quizdeck/quizdeck/internal/middleware"
)

// Operation describes one endpoint for the generated API schema.
type Operation struct {
	Method  string
	Path    string
	Summary string
}

// RouteGroup is one mounted prefix under /api/v1. Groups with
// IncludeInSchema false are wired like any other but omitted from the
// published schema.
type RouteGroup struct {
	Prefix          string
	Tags            []string
	IncludeInSchema bool
	Operations      []Operation
	Mount           func(r chi.Router)
}

// RouteGroups returns the full route table. Prefixes must be unique;
// NewRouter enforces that at startup.
func (h *Handler) RouteGroups() []RouteGroup {
	loginLimit := h.cfg.Security.LoginRateLimit
	if loginLimit <= 0 {
		loginLimit = 5
	}

	return []RouteGroup{
		{
			Prefix: "/login", Tags: []string{"login"}, IncludeInSchema: true,
			Operations: []Operation{
				{Method: "POST", Path: "/", Summary: "Authenticate and create a session"},
				{Method: "POST", Path: "/logout", Summary: "End the current session"},
			},
			Mount: func(r chi.Router) {
				r.With(httprate.LimitByIP(loginLimit, time.Minute)).Post("/", h.Login)
				r.Post("/logout", h.Logout)
			},
		},
		{
			Prefix: "/users", Tags: []string{"users"}, IncludeInSchema: true,
			Operations: []Operation{
				{Method: "POST", Path: "/", Summary: "Register a new account"},
				{Method: "GET", Path: "/me", Summary: "Get the authenticated account"},
				{Method: "PATCH", Path: "/me/email", Summary: "Change the account email"},
			},
			Mount: func(r chi.Router) {
				r.Post("/", h.Register)
				r.With(middleware.RequireAuth).Get("/me", h.Me)
				r.With(middleware.RequireAuth).Patch("/me/email", h.UpdateEmail)
			},
		},
		{
			Prefix: "/quiz", Tags: []string{"quiz"}, IncludeInSchema: true,
			Operations: []Operation{
				{Method: "POST", Path: "/", Summary: "Create a quiz"},
				{Method: "GET", Path: "/list", Summary: "List own quizzes"},
				{Method: "GET", Path: "/public", Summary: "List public quizzes"},
				{Method: "GET", Path: "/{id}", Summary: "Get a quiz"},
				{Method: "PUT", Path: "/{id}", Summary: "Update a quiz"},
				{Method: "DELETE", Path: "/{id}", Summary: "Delete a quiz"},
			},
			Mount: func(r chi.Router) {
				r.With(middleware.RequireAuth).Post("/", h.CreateQuiz)
				r.With(middleware.RequireAuth).Get("/list", h.ListMyQuizzes)
				r.Get("/public", h.ListPublicQuizzes)
				r.Get("/{id}", h.GetQuiz)
				r.With(middleware.RequireAuth).Put("/{id}", h.UpdateQuiz)
				r.With(middleware.RequireAuth).Delete("/{id}", h.DeleteQuiz)
			},
		},
		{
			Prefix: "/utils", Tags: []string{"utils"}, IncludeInSchema: true,
			Operations: []Operation{
				{Method: "GET", Path: "/ping", Summary: "Liveness probe"},
				{Method: "GET", Path: "/version", Summary: "Build information"},
				{Method: "GET", Path: "/health", Summary: "Readiness probe"},
			},
			Mount: func(r chi.Router) {
				r.Get("/ping", h.Ping)
				r.Get("/version", h.Version)
				r.Get("/health", h.Health)
			},
		},
		{
			Prefix: "/stats", Tags: []string{"stats"}, IncludeInSchema: true,
			Operations: []Operation{
				{Method: "GET", Path: "/", Summary: "Global instance statistics"},
			},
			Mount: func(r chi.Router) {
				r.Get("/", h.Stats)
			},
		},
		{
			Prefix: "/storage", Tags: []string{"storage"}, IncludeInSchema: true,
			Operations: []Operation{
				{Method: "POST", Path: "/", Summary: "Upload an image"},
				{Method: "GET", Path: "/{id}", Summary: "Download a stored object"},
			},
			Mount: func(r chi.Router) {
				r.With(middleware.RequireAuth).Post("/", h.UploadObject)
				r.Get("/{id}", h.DownloadObject)
			},
		},
		{
			Prefix: "/search", Tags: []string{"search"}, IncludeInSchema: true,
			Operations: []Operation{
				{Method: "GET", Path: "/", Summary: "Fuzzy search public quizzes"},
			},
			Mount: func(r chi.Router) {
				r.Get("/", h.Search)
			},
		},
		{
			Prefix: "/live", Tags: []string{"live"}, IncludeInSchema: true,
			Operations: []Operation{
				{Method: "POST", Path: "/games", Summary: "Open a game lobby"},
				{Method: "GET", Path: "/games/{pin}", Summary: "Look up a game by PIN"},
			},
			Mount: func(r chi.Router) {
				r.With(middleware.RequireAuth).Post("/games", h.CreateGame)
				r.Get("/games/{pin}", h.GetGame)
			},
		},
		{
			Prefix: "/internal/testing", Tags: []string{"internal", "testing"}, IncludeInSchema: false,
			Operations: []Operation{
				{Method: "GET", Path: "/error", Summary: "Deliberately panic"},
			},
			Mount: func(r chi.Router) {
				r.Get("/error", h.TestingError)
			},
		},
		{
			Prefix: "/editor", Tags: []string{"editor"}, IncludeInSchema: true,
			Operations: []Operation{
				{Method: "POST", Path: "/session", Summary: "Start an edit session"},
				{Method: "POST", Path: "/image", Summary: "Upload an image to an edit session"},
				{Method: "POST", Path: "/finish", Summary: "Attach session images to a quiz"},
			},
			Mount: func(r chi.Router) {
				r.Use(middleware.RequireAuth)
				r.Post("/session", h.StartEditSession)
				r.Post("/image", h.UploadEditorImage)
				r.Post("/finish", h.FinishEditSession)
			},
		},
		{
			Prefix: "/eximport", Tags: []string{"export", "import"}, IncludeInSchema: true,
			Operations: []Operation{
				{Method: "GET", Path: "/{id}", Summary: "Export a quiz as JSON"},
				{Method: "POST", Path: "/", Summary: "Import a quiz from JSON"},
			},
			Mount: func(r chi.Router) {
				r.Get("/{id}", h.ExportQuiz)
				r.With(middleware.RequireAuth).Post("/", h.ImportQuiz)
			},
		},
		{
			Prefix: "/sitemap", Tags: []string{"sitemap"}, IncludeInSchema: true,
			Operations: []Operation{
				{Method: "GET", Path: "/sitemap.xml", Summary: "Sitemap of public quizzes"},
			},
			Mount: func(r chi.Router) {
				r.Get("/sitemap.xml", h.Sitemap)
			},
		},
	}
}

// validateGroups rejects duplicate prefixes. A duplicate is a
// programming error, caught before the server starts.
func validateGroups(groups []RouteGroup) error {
	seen := make(map[string]bool, len(groups))
	for _, g := range groups {
		if g.Prefix == "" || g.Prefix[0] != '/' {
			return fmt.Errorf("route group prefix %q must start with /", g.Prefix)
		}
		if seen[g.Prefix] {
			return fmt.Errorf("duplicate route group prefix %q", g.Prefix)
		}
		seen[g.Prefix] = true
		if g.Mount == nil {
			return fmt.Errorf("route group %q has no mount function", g.Prefix)
		}
	}
	return nil
}
