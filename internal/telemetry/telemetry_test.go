// QuizDeck - Quiz Creation and Live Hosting Platform
// Copyright 2026 QuizDeck Contributors
// SPDX-License-Identifier: MPL-2.0
// https://github.com/quizdeck/quizdeck

package telemetry

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/quizdeck/quizdeck/internal/logging"
)

func init() {
	logging.Init(logging.Config{Level: "disabled", Output: io.Discard})
}

// collector is a fake telemetry endpoint that records received events.
type collector struct {
	mu     sync.Mutex
	events []Event
	status int
}

func (c *collector) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var ev Event
		if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		c.mu.Lock()
		c.events = append(c.events, ev)
		status := c.status
		c.mu.Unlock()
		if status != 0 {
			w.WriteHeader(status)
		}
	}
}

func (c *collector) received() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Event(nil), c.events...)
}

func TestNew_EmptyDSNDisablesReporting(t *testing.T) {
	r, err := New("", "1.0.0", "test", 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if r != nil {
		t.Fatal("expected a nil Reporter for an empty DSN")
	}
	if r.Enabled() {
		t.Error("nil Reporter must report disabled")
	}

	// Nil-safe: none of these may panic.
	r.Ping(t.Context())
	r.CaptureException(t.Context(), errors.New("boom"), nil)
}

func TestNew_RejectsBadDSN(t *testing.T) {
	for _, dsn := range []string{"::::", "ftp://collector.example.com"} {
		if _, err := New(dsn, "1.0.0", "test", 0); err == nil {
			t.Errorf("New(%q): expected an error", dsn)
		}
	}
}

func TestReporter_Ping(t *testing.T) {
	col := &collector{}
	srv := httptest.NewServer(col.handler())
	defer srv.Close()

	r, err := New(srv.URL, "1.2.3", "test", time.Millisecond)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	r.Ping(t.Context())

	events := col.received()
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Kind != "ping" {
		t.Errorf("expected kind ping, got %q", events[0].Kind)
	}
	if events[0].Release != "1.2.3" || events[0].Environment != "test" {
		t.Errorf("unexpected release/environment: %+v", events[0])
	}
}

func TestReporter_CaptureException(t *testing.T) {
	col := &collector{}
	srv := httptest.NewServer(col.handler())
	defer srv.Close()

	r, err := New(srv.URL, "1.2.3", "test", time.Millisecond)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	r.CaptureException(t.Context(), errors.New("database on fire"), &RequestContext{
		Method:    http.MethodGet,
		Path:      "/api/v1/quiz",
		RequestID: "req-1",
	})

	events := col.received()
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	ev := events[0]
	if ev.Kind != "exception" {
		t.Errorf("expected kind exception, got %q", ev.Kind)
	}
	if ev.Message != "database on fire" {
		t.Errorf("unexpected message %q", ev.Message)
	}
	if ev.Stacktrace == "" {
		t.Error("expected a stacktrace")
	}
	if ev.Request["path"] != "/api/v1/quiz" || ev.Request["request_id"] != "req-1" {
		t.Errorf("unexpected request context: %v", ev.Request)
	}

	// A nil error is ignored.
	r.CaptureException(t.Context(), nil, nil)
	if got := len(col.received()); got != 1 {
		t.Errorf("nil error must not be reported, got %d events", got)
	}
}

func TestReporter_ThrottlesExceptions(t *testing.T) {
	col := &collector{}
	srv := httptest.NewServer(col.handler())
	defer srv.Close()

	r, err := New(srv.URL, "1.2.3", "test", time.Hour)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	for i := 0; i < 5; i++ {
		r.CaptureException(t.Context(), errors.New("panic loop"), nil)
	}

	if got := len(col.received()); got != 1 {
		t.Errorf("expected throttling to allow 1 event, got %d", got)
	}

	// Pings bypass the throttle.
	r.Ping(t.Context())
	if got := len(col.received()); got != 2 {
		t.Errorf("expected the ping to be delivered, got %d events", got)
	}
}

func TestReporter_BreakerOpensOnRepeatedFailure(t *testing.T) {
	col := &collector{status: http.StatusInternalServerError}
	srv := httptest.NewServer(col.handler())
	defer srv.Close()

	r, err := New(srv.URL, "1.2.3", "test", time.Millisecond)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// Three consecutive failures trip the breaker; later sends are
	// short-circuited without reaching the collector.
	for i := 0; i < 6; i++ {
		r.Ping(t.Context())
	}

	if got := len(col.received()); got != 3 {
		t.Errorf("expected 3 delivery attempts before the breaker opened, got %d", got)
	}
}
