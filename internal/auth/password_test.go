// QuizDeck - Quiz Creation and Live Hosting Platform
// Copyright 2026 QuizDeck Contributors
// SPDX-License-Identifier: MPL-2.0
// https://github.com/quizdeck/quizdeck

package auth

import (
	"io"
	"strings"
	"testing"

	"github.com/quizdeck/quizdeck/internal/logging"
)

func init() {
	logging.Init(logging.Config{Level: "disabled", Output: io.Discard})
}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "correct horse battery staple" {
		t.Fatal("hash must not equal the plaintext")
	}

	if err := VerifyPassword(hash, "correct horse battery staple"); err != nil {
		t.Errorf("expected matching password to verify: %v", err)
	}
	if err := VerifyPassword(hash, "wrong password"); err != ErrInvalidCredentials {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestHashPassword_RejectsOverlongInput(t *testing.T) {
	if _, err := HashPassword(strings.Repeat("a", 73)); err == nil {
		t.Error("expected an error for a password over 72 bytes")
	}
	if _, err := HashPassword(strings.Repeat("a", 72)); err != nil {
		t.Errorf("expected a 72-byte password to be accepted: %v", err)
	}
}

func TestVerifyPassword_GarbageHash(t *testing.T) {
	if err := VerifyPassword("not-a-bcrypt-hash", "anything"); err != ErrInvalidCredentials {
		t.Errorf("expected ErrInvalidCredentials for a garbage hash, got %v", err)
	}
}
