// QuizDeck - Quiz Creation and Live Hosting Platform
// Copyright 2026 QuizDeck Contributors
// SPDX-License-Identifier: MPL-2.0
// https://github.com/quizdeck/quizdeck

// Package scheduler runs periodic background jobs. It ticks once per
// second, fires each registered job when its period has elapsed, and
// contains job failures: an error or panic in one run is reported and
// the job stays scheduled for its next period.
package scheduler

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/quizdeck/quizdeck/internal/logging"
	"github.com/quizdeck/quizdeck/internal/metrics"
	"github.com/quizdeck/quizdeck/internal/telemetry"
)

// tickInterval is how often the scheduler checks for due jobs.
const tickInterval = time.Second

// Job is one unit of scheduled work. The context is cancelled when the
// scheduler shuts down; long jobs should honor it.
type Job func(ctx context.Context) error

type scheduledJob struct {
	name    string
	period  time.Duration
	job     Job
	lastRun time.Time
}

// Scheduler runs registered jobs at their configured periods. It
// implements suture.Service via Serve.
type Scheduler struct {
	mu       sync.Mutex
	jobs     []*scheduledJob
	reporter *telemetry.Reporter
	clock    func() time.Time
}

// New creates an empty scheduler. The reporter may be nil.
func New(reporter *telemetry.Reporter) *Scheduler {
	return &Scheduler{
		reporter: reporter,
		clock:    time.Now,
	}
}

// Register adds a job to run every period. The first run happens one
// full period after the scheduler starts, matching a freshly run job.
func (s *Scheduler) Register(name string, period time.Duration, job Job) {
	if period <= 0 || job == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, &scheduledJob{name: name, period: period, job: job})
}

// Serve runs the tick loop until the context is cancelled. Always
// returns the context's error so the supervisor treats shutdown as a
// normal stop.
func (s *Scheduler) Serve(ctx context.Context) error {
	s.mu.Lock()
	now := s.clock()
	for _, j := range s.jobs {
		j.lastRun = now
	}
	count := len(s.jobs)
	s.mu.Unlock()

	logging.Info().Int("jobs", count).Msg("scheduler started")

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.Info().Msg("scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.runDue(ctx)
		}
	}
}

// RunDueNow fires any due jobs immediately. Exposed for tests.
func (s *Scheduler) RunDueNow(ctx context.Context) {
	s.runDue(ctx)
}

func (s *Scheduler) runDue(ctx context.Context) {
	now := s.clock()

	s.mu.Lock()
	var due []*scheduledJob
	for _, j := range s.jobs {
		if now.Sub(j.lastRun) >= j.period {
			j.lastRun = now
			due = append(due, j)
		}
	}
	s.mu.Unlock()

	for _, j := range due {
		s.runJob(ctx, j)
	}
}

// runJob executes a single job, containing errors and panics.
func (s *Scheduler) runJob(ctx context.Context, j *scheduledJob) {
	defer func() {
		rec := recover()
		if rec == nil {
			return
		}
		metrics.SchedulerJobRuns.WithLabelValues(j.name, "panic").Inc()

		err, ok := rec.(error)
		if !ok {
			err = fmt.Errorf("panic: %v", rec)
		}
		logging.Error().
			Err(err).
			Str("job", j.name).
			Bytes("stack", debug.Stack()).
			Msg("scheduled job panicked")
		s.reporter.CaptureException(ctx, fmt.Errorf("scheduled job %s: %w", j.name, err), nil)
	}()

	start := s.clock()
	err := j.job(ctx)
	duration := time.Since(start)

	if err != nil {
		metrics.SchedulerJobRuns.WithLabelValues(j.name, "error").Inc()
		logging.Error().
			Err(err).
			Str("job", j.name).
			Dur("duration", duration).
			Msg("scheduled job failed")
		s.reporter.CaptureException(ctx, fmt.Errorf("scheduled job %s: %w", j.name, err), nil)
		return
	}

	metrics.SchedulerJobRuns.WithLabelValues(j.name, "success").Inc()
	logging.Debug().
		Str("job", j.name).
		Dur("duration", duration).
		Msg("scheduled job completed")
}

// String names the scheduler in supervisor logs.
func (s *Scheduler) String() string {
	return "scheduler"
}
