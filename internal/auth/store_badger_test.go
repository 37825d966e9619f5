// QuizDeck - Quiz Creation and Live Hosting Platform
// Copyright 2026 QuizDeck Contributors
// SPDX-License-Identifier: MPL-2.0
// https://github.com/quizdeck/quizdeck

package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

func newBadgerStore(t *testing.T) *BadgerSessionStore {
	t.Helper()
	store, err := OpenBadgerSessionStore(t.TempDir())
	if err != nil {
		t.Fatalf("OpenBadgerSessionStore: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestBadgerSessionStore_CRUD(t *testing.T) {
	store := newBadgerStore(t)

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
		t.Errorf("Get returned %+v, want %+v", got, session)
	}

	if err := store.Delete(t.Context(), session.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get(t.Context(), session.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Get after Delete = %v, want ErrSessionNotFound", err)
	}

	// Deleting again is a no-op.
	if err := store.Delete(t.Context(), session.ID); err != nil {
		t.Errorf("second Delete: %v", err)
	}
}

func TestBadgerSessionStore_EntriesExpireWithSession(t *testing.T) {
	store := newBadgerStore(t)

	session, err := NewSession(uuid.New(), "alice", 50*time.Millisecond)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	if err := store.Create(t.Context(), session); err != nil {
		t.Fatalf("Create: %v", err)
	}

	time.Sleep(100 * time.Millisecond)

	// The badger entry carries the session TTL, so the key itself is
	// gone once the session expires rather than lingering until a
	// manual delete.
	err = store.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(sessionKeyPrefix + session.ID))
		return err
	})
	if !errors.Is(err, badger.ErrKeyNotFound) {
		t.Errorf("expired session key still present, err = %v", err)
	}

	if _, err := store.Get(t.Context(), session.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Get expired session = %v, want ErrSessionNotFound", err)
	}
}

func TestBadgerSessionStore_DeleteByUserID(t *testing.T) {
	store := newBadgerStore(t)

	userID := uuid.New()
	for i := 0; i < 3; i++ {
		session, err := NewSession(userID, "alice", time.Hour)
		if err != nil {
			t.Fatalf("NewSession: %v", err)
		}
		if err := store.Create(t.Context(), session); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	other, err := NewSession(uuid.New(), "bob", time.Hour)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	if err := store.Create(t.Context(), other); err != nil {
		t.Fatalf("Create: %v", err)
	}

	deleted, err := store.DeleteByUserID(t.Context(), userID)
	if err != nil {
		t.Fatalf("DeleteByUserID: %v", err)
	}
	if deleted != 3 {
		t.Errorf("deleted = %d, want 3", deleted)
	}

	// The other user's session is untouched.
	if _, err := store.Get(t.Context(), other.ID); err != nil {
		t.Errorf("unrelated session lost: %v", err)
	}
}
