// QuizDeck - Quiz Creation and Live Hosting Platform
// Copyright 2026 QuizDeck Contributors
// SPDX-License-Identifier: MPL-2.0
// https://github.com/quizdeck/quizdeck

package scheduler

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/quizdeck/quizdeck/internal/logging"
)

func init() {
	logging.Init(logging.Config{Level: "disabled", Output: io.Discard})
}

// fakeClock lets tests move scheduler time without sleeping.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func newTestScheduler() (*Scheduler, *fakeClock) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	s := New(nil)
	s.clock = func() time.Time { return clock.now }
	return s, clock
}

func primeJobs(s *Scheduler) {
	now := s.clock()
	s.mu.Lock()
	for _, j := range s.jobs {
		j.lastRun = now
	}
	s.mu.Unlock()
}

func TestScheduler_FiresWhenPeriodElapses(t *testing.T) {
	s, clock := newTestScheduler()

	var runs atomic.Int32
	s.Register("counter", time.Hour, func(ctx context.Context) error {
		runs.Add(1)
		return nil
	})
	primeJobs(s)

	s.RunDueNow(t.Context())
	if got := runs.Load(); got != 0 {
		t.Fatalf("job fired before its period elapsed: %d runs", got)
	}

	clock.advance(time.Hour)
	s.RunDueNow(t.Context())
	if got := runs.Load(); got != 1 {
		t.Fatalf("expected 1 run after one period, got %d", got)
	}

	// No double fire within the same period.
	clock.advance(30 * time.Minute)
	s.RunDueNow(t.Context())
	if got := runs.Load(); got != 1 {
		t.Fatalf("job fired mid-period: %d runs", got)
	}

	clock.advance(30 * time.Minute)
	s.RunDueNow(t.Context())
	if got := runs.Load(); got != 2 {
		t.Fatalf("expected 2 runs after two periods, got %d", got)
	}
}

func TestScheduler_ContainsJobErrors(t *testing.T) {
	s, clock := newTestScheduler()

	var runs atomic.Int32
	s.Register("flaky", time.Minute, func(ctx context.Context) error {
		runs.Add(1)
		return errors.New("transient failure")
	})
	primeJobs(s)

	for i := 0; i < 3; i++ {
		clock.advance(time.Minute)
		s.RunDueNow(t.Context())
	}

	if got := runs.Load(); got != 3 {
		t.Errorf("failing job should stay scheduled, got %d runs", got)
	}
}

func TestScheduler_ContainsJobPanics(t *testing.T) {
	s, clock := newTestScheduler()

	var runs atomic.Int32
	s.Register("panicky", time.Minute, func(ctx context.Context) error {
		runs.Add(1)
		panic("boom")
	})
	primeJobs(s)

	clock.advance(time.Minute)
	s.RunDueNow(t.Context())

	clock.advance(time.Minute)
	s.RunDueNow(t.Context())

	if got := runs.Load(); got != 2 {
		t.Errorf("panicking job should stay scheduled, got %d runs", got)
	}
}

func TestScheduler_RegisterRejectsInvalidJobs(t *testing.T) {
	s, _ := newTestScheduler()

	s.Register("no-period", 0, func(ctx context.Context) error { return nil })
	s.Register("nil-job", time.Minute, nil)

	s.mu.Lock()
	count := len(s.jobs)
	s.mu.Unlock()
	if count != 0 {
		t.Errorf("expected no registered jobs, got %d", count)
	}
}

func TestScheduler_ServeStopsOnCancel(t *testing.T) {
	s := New(nil)

	ctx, cancel := context.WithCancel(t.Context())
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.Serve(ctx)
	}()

	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancellation")
	}
}
