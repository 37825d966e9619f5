// QuizDeck - Quiz Creation and Live Hosting Platform
// Copyright 2026 QuizDeck Contributors
// SPDX-License-Identifier: MPL-2.0
// https://github.com/quizdeck/quizdeck

package auth

import (
	"fmt"
)

// SessionStoreType selects the session storage backend.
type SessionStoreType string

const (
	// SessionStoreMemory uses in-memory storage (not persistent).
	SessionStoreMemory SessionStoreType = "memory"

	// SessionStoreBadger uses BadgerDB for persistent session storage.
	SessionStoreBadger SessionStoreType = "badger"
)

// NewSessionStore builds a SessionStore from configuration. The path
// is only used for the badger backend.
func NewSessionStore(storeType SessionStoreType, path string) (SessionStore, error) {
	switch storeType {
	case SessionStoreBadger:
		return OpenBadgerSessionStore(path)
	case SessionStoreMemory, "":
		return NewMemorySessionStore(), nil
	default:
		return nil, fmt.Errorf("unknown session store type %q", storeType)
	}
}
