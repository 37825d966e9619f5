// QuizDeck - Quiz Creation and Live Hosting Platform
// Copyright 2026 QuizDeck Contributors
// SPDX-License-Identifier: MPL-2.0
// https://github.com/quizdeck/quizdeck

// Package telemetry reports exceptions and liveness pings to an
// external collector identified by a DSN. Reporting is best effort: a
// nil or disabled Reporter swallows every call, delivery failures are
// logged and counted but never surface to callers, and a circuit
// breaker stops hammering an unreachable collector.
package telemetry

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"runtime/debug"
	"time"

	"github.com/goccy/go-json"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/quizdeck/quizdeck/internal/logging"
	"github.com/quizdeck/quizdeck/internal/metrics"
)

const (
	defaultTimeout = 5 * time.Second

	// defaultMinInterval throttles exception delivery so a panic loop
	// cannot flood the collector.
	defaultMinInterval = time.Second
)

// Event is the wire format sent to the collector.
type Event struct {
	Kind        string            `json:"kind"`
	Message     string            `json:"message,omitempty"`
	Stacktrace  string            `json:"stacktrace,omitempty"`
	Request     map[string]string `json:"request,omitempty"`
	Release     string            `json:"release,omitempty"`
	Environment string            `json:"environment,omitempty"`
	Timestamp   time.Time         `json:"timestamp"`
}

// RequestContext carries the HTTP request details attached to a
// captured exception.
type RequestContext struct {
	Method    string
	Path      string
	RequestID string
}

// Reporter delivers telemetry events to the collector endpoint.
type Reporter struct {
	endpoint    string
	release     string
	environment string
	client      *http.Client
	breaker     *gobreaker.CircuitBreaker[struct{}]

	// limiter throttles exception delivery; pings bypass it.
	limiter *rate.Limiter
}

// New builds a Reporter from a DSN. An empty DSN returns a nil
// Reporter, which is safe to call and does nothing. minInterval
// throttles exception delivery; zero means the default of one second.
func New(dsn, release, environment string, minInterval time.Duration) (*Reporter, error) {
	if dsn == "" {
		return nil, nil
	}
	if minInterval <= 0 {
		minInterval = defaultMinInterval
	}
	u, err := url.Parse(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid telemetry DSN: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid telemetry DSN scheme %q", u.Scheme)
	}

	breaker := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        "telemetry",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("telemetry breaker state changed")
		},
	})

	return &Reporter{
		endpoint:    u.String(),
		release:     release,
		environment: environment,
		client:      &http.Client{Timeout: defaultTimeout},
		breaker:     breaker,
		limiter:     rate.NewLimiter(rate.Every(minInterval), 1),
	}, nil
}

// Enabled reports whether the Reporter will actually deliver events.
func (r *Reporter) Enabled() bool {
	return r != nil
}

// CaptureException reports an error with optional request context.
// Never blocks the caller beyond the HTTP timeout and never returns
// an error; delivery problems are logged.
func (r *Reporter) CaptureException(ctx context.Context, err error, reqCtx *RequestContext) {
	if r == nil || err == nil {
		return
	}

	if !r.limiter.Allow() {
		metrics.TelemetryEvents.WithLabelValues("throttled").Inc()
		return
	}

	ev := Event{
		Kind:        "exception",
		Message:     err.Error(),
		Stacktrace:  string(debug.Stack()),
		Release:     r.release,
		Environment: r.environment,
		Timestamp:   time.Now().UTC(),
	}
	if reqCtx != nil {
		ev.Request = map[string]string{
			"method":     reqCtx.Method,
			"path":       reqCtx.Path,
			"request_id": reqCtx.RequestID,
		}
	}
	r.send(ctx, &ev)
}

// Ping reports instance liveness. Called once at startup; failures are
// logged and ignored so an unreachable collector cannot block boot.
func (r *Reporter) Ping(ctx context.Context) {
	if r == nil {
		return
	}
	r.send(ctx, &Event{
		Kind:        "ping",
		Release:     r.release,
		Environment: r.environment,
		Timestamp:   time.Now().UTC(),
	})
}

func (r *Reporter) send(ctx context.Context, ev *Event) {
	_, err := r.breaker.Execute(func() (struct{}, error) {
		body, err := json.Marshal(ev)
		if err != nil {
			return struct{}{}, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
		if err != nil {
			return struct{}{}, err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := r.client.Do(req)
		if err != nil {
			return struct{}{}, err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 400 {
			return struct{}{}, fmt.Errorf("collector returned status %d", resp.StatusCode)
		}
		return struct{}{}, nil
	})
	if err != nil {
		metrics.TelemetryEvents.WithLabelValues("failed").Inc()
		logging.Debug().Err(err).Str("kind", ev.Kind).Msg("telemetry delivery failed")
		return
	}
	metrics.TelemetryEvents.WithLabelValues("sent").Inc()
}
