// QuizDeck - Quiz Creation and Live Hosting Platform
// Copyright 2026 QuizDeck Contributors
// SPDX-License-Identifier: MPL-2.0
// https://github.com/quizdeck/quizdeck

package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestMemorySessionStore_CreateAndGet(t *testing.T) {
	store := NewMemorySessionStore()

	session, err := NewSession(uuid.New(), "alice", time.Hour)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	if err := store.Create(t.Context(), session); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := store.Get(t.Context(), session.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.UserID != session.UserID || got.Username != "alice" {
		t.Errorf("unexpected session: %+v", got)
	}

	// The store returns copies, mutating one must not affect the other.
	got.Username = "mallory"
	again, err := store.Get(t.Context(), session.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if again.Username != "alice" {
		t.Error("store returned a shared session instance")
	}
}

func TestMemorySessionStore_GetMissing(t *testing.T) {
	store := NewMemorySessionStore()

	if _, err := store.Get(t.Context(), "no-such-id"); err != ErrSessionNotFound {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestMemorySessionStore_ExpiredSessionsRemovedLazily(t *testing.T) {
	store := NewMemorySessionStore()

	session, err := NewSession(uuid.New(), "alice", -time.Minute)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	if err := store.Create(t.Context(), session); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := store.Get(t.Context(), session.ID); err != ErrSessionExpired {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
	// Lazy deletion: the second lookup no longer finds the session.
	if _, err := store.Get(t.Context(), session.ID); err != ErrSessionNotFound {
		t.Errorf("expected ErrSessionNotFound after lazy delete, got %v", err)
	}
}

func TestMemorySessionStore_Delete(t *testing.T) {
	store := NewMemorySessionStore()

	session, err := NewSession(uuid.New(), "alice", time.Hour)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	if err := store.Create(t.Context(), session); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := store.Delete(t.Context(), session.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get(t.Context(), session.ID); err != ErrSessionNotFound {
		t.Errorf("expected ErrSessionNotFound after delete, got %v", err)
	}

	// Deleting a missing session is not an error.
	if err := store.Delete(t.Context(), session.ID); err != nil {
		t.Errorf("expected deleting a missing session to succeed: %v", err)
	}
}

func TestMemorySessionStore_DeleteByUserID(t *testing.T) {
	store := NewMemorySessionStore()

	target := uuid.New()
	other := uuid.New()

	for _, userID := range []uuid.UUID{target, target, other} {
		session, err := NewSession(userID, "u", time.Hour)
		if err != nil {
			t.Fatalf("NewSession: %v", err)
		}
		if err := store.Create(t.Context(), session); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	deleted, err := store.DeleteByUserID(t.Context(), target)
	if err != nil {
		t.Fatalf("DeleteByUserID: %v", err)
	}
	if deleted != 2 {
		t.Errorf("expected 2 deleted sessions, got %d", deleted)
	}
}

func TestNewSession_GeneratesUniqueIDs(t *testing.T) {
	a, err := NewSession(uuid.New(), "alice", time.Hour)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	b, err := NewSession(uuid.New(), "bob", time.Hour)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	if a.ID == b.ID {
		t.Error("expected distinct session IDs")
	}
	if a.IsExpired() {
		t.Error("fresh session must not be expired")
	}
}
