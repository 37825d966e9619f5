// QuizDeck - Quiz Creation and Live Hosting Platform
// Copyright 2026 QuizDeck Contributors
// SPDX-License-Identifier: MPL-2.0
// https://github.com/quizdeck/quizdeck

// Package metrics defines the Prometheus collectors exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts handled HTTP requests by method, route
	// pattern and status class.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "quizdeck",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPRequestDuration observes request latency by route pattern.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "quizdeck",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// HTTPActiveRequests tracks requests currently in flight.
	HTTPActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "quizdeck",
			Subsystem: "http",
			Name:      "active_requests",
			Help:      "Number of HTTP requests currently being served.",
		},
	)

	// PanicsRecovered counts panics caught by the recovery middleware.
	PanicsRecovered = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "quizdeck",
			Subsystem: "http",
			Name:      "panics_recovered_total",
			Help:      "Total number of handler panics recovered.",
		},
	)

	// WebsocketClients tracks currently connected realtime clients.
	WebsocketClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "quizdeck",
			Subsystem: "websocket",
			Name:      "clients",
			Help:      "Number of connected websocket clients.",
		},
	)

	// GamesActive tracks live game sessions currently running.
	GamesActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "quizdeck",
			Subsystem: "live",
			Name:      "games_active",
			Help:      "Number of live game sessions in progress.",
		},
	)

	// SchedulerJobRuns counts scheduled job executions by job and outcome.
	SchedulerJobRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "quizdeck",
			Subsystem: "scheduler",
			Name:      "job_runs_total",
			Help:      "Total scheduled job executions by outcome.",
		},
		[]string{"job", "outcome"},
	)

	// OrphanImagesDeleted counts editor images removed by cleanup.
	OrphanImagesDeleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "quizdeck",
			Subsystem: "scheduler",
			Name:      "orphan_images_deleted_total",
			Help:      "Total orphaned editor images deleted by cleanup.",
		},
	)

	// TelemetryEvents counts telemetry deliveries by outcome.
	TelemetryEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "quizdeck",
			Subsystem: "telemetry",
			Name:      "events_total",
			Help:      "Total telemetry events by outcome.",
		},
		[]string{"outcome"},
	)
)
