// QuizDeck - Quiz Creation and Live Hosting Platform
// Copyright 2026 QuizDeck Contributors
// SPDX-License-Identifier: MPL-2.0
// https://github.com/quizdeck/quizdeck

package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/quizdeck/quizdeck/internal/logging"
	"github.com/quizdeck/quizdeck/internal/metrics"
	"github.com/quizdeck/quizdeck/internal/telemetry"
)

// Recoverer converts handler panics into 500 responses. Each panic is
// reported to telemetry exactly once, with the request method, path
// and ID attached, then logged with its stack. The request that
// panicked fails; the server keeps serving.
func Recoverer(reporter *telemetry.Reporter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					// The connection is gone; nothing to respond to.
					panic(rec)
				}

				metrics.PanicsRecovered.Inc()

				err, ok := rec.(error)
				if !ok {
					err = fmt.Errorf("panic: %v", rec)
				}

				logging.Ctx(r.Context()).Error().
					Err(err).
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Bytes("stack", debug.Stack()).
					Msg("recovered from handler panic")

				reporter.CaptureException(r.Context(), err, &telemetry.RequestContext{
					Method:    r.Method,
					Path:      r.URL.Path,
					RequestID: GetRequestID(r.Context()),
				})

				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
