// QuizDeck - Quiz Creation and Live Hosting Platform
// Copyright 2026 QuizDeck Contributors
// SPDX-License-Identifier: MPL-2.0
// https://github.com/quizdeck/quizdeck

package services

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"
)

// fakeServer is a controllable HTTPServer implementation.
type fakeServer struct {
	listenErr    error
	listenBlocks chan struct{} // ListenAndServe blocks until closed

	shutdownCalled chan struct{}
	shutdownErr    error
}

func newFakeServer() *fakeServer {
	return &fakeServer{
		listenBlocks:   make(chan struct{}),
		shutdownCalled: make(chan struct{}, 1),
	}
}

func (f *fakeServer) ListenAndServe() error {
	<-f.listenBlocks
	if f.listenErr != nil {
		return f.listenErr
	}
	return http.ErrServerClosed
}

func (f *fakeServer) Shutdown(ctx context.Context) error {
	f.shutdownCalled <- struct{}{}
	close(f.listenBlocks)
	return f.shutdownErr
}

func TestHTTPServerService_GracefulShutdownOnCancel(t *testing.T) {
	srv := newFakeServer()
	svc := NewHTTPServerService(srv, time.Second)

	ctx, cancel := context.WithCancel(t.Context())
	errCh := make(chan error, 1)
	go func() {
		errCh <- svc.Serve(ctx)
	}()

	cancel()

	select {
	case <-srv.shutdownCalled:
	case <-time.After(2 * time.Second):
		t.Fatal("Shutdown was never called")
	}

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return")
	}
}

func TestHTTPServerService_PropagatesListenError(t *testing.T) {
	srv := newFakeServer()
	srv.listenErr = errors.New("address already in use")
	close(srv.listenBlocks)

	svc := NewHTTPServerService(srv, time.Second)

	err := svc.Serve(t.Context())
	if err == nil || !errors.Is(err, srv.listenErr) {
		t.Errorf("expected the listen error to propagate, got %v", err)
	}
}

func TestHTTPServerService_SwallowsServerClosed(t *testing.T) {
	srv := newFakeServer()
	close(srv.listenBlocks) // ListenAndServe returns ErrServerClosed immediately

	svc := NewHTTPServerService(srv, time.Second)

	if err := svc.Serve(t.Context()); err != nil {
		t.Errorf("expected nil for ErrServerClosed, got %v", err)
	}
}

func TestHTTPServerService_String(t *testing.T) {
	svc := NewHTTPServerService(newFakeServer(), 0)
	if svc.String() != "http-server" {
		t.Errorf("String() = %q", svc.String())
	}
}
