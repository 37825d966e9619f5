// QuizDeck - Quiz Creation and Live Hosting Platform
// Copyright 2026 QuizDeck Contributors
// SPDX-License-Identifier: MPL-2.0
// https://github.com/quizdeck/quizdeck

package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/quizdeck/quizdeck/internal/middleware"
	"github.com/quizdeck/quizdeck/internal/telemetry"
)

// NewRouter assembles the full HTTP surface.
//
// The global middleware chain runs in a fixed order: request IDs are
// assigned first so everything downstream can tag its output, the
// panic recoverer wraps all remaining work, then request logging,
// metrics and session resolution. Handlers that need an identity
// enforce it per-route with RequireAuth.
func NewRouter(h *Handler, sessions *middleware.Sessions, reporter *telemetry.Reporter) (chi.Router, error) {
	groups := h.RouteGroups()
	if err := validateGroups(groups); err != nil {
		return nil, err
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer(reporter))
	r.Use(chimiddleware.RealIP)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   h.cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.RequestLogger)
	r.Use(middleware.PrometheusMetrics)
	r.Use(sessions.Middleware)

	for _, g := range groups {
		r.Route("/api/v1"+g.Prefix, g.Mount)
	}

	// Operational surface.
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/api/docs/doc.json", docJSON(groups))
	r.Get("/api/docs/*", httpSwagger.Handler(
		httpSwagger.URL("/api/docs/doc.json"),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("list"),
	))

	// Realtime transport, mounted at the root path. It cannot collide
	// with the route groups, which all live under /api/v1.
	r.Get("/", h.GameSocket)

	return r, nil
}
