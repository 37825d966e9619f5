// QuizDeck - Quiz Creation and Live Hosting Platform
// Copyright 2026 QuizDeck Contributors
// SPDX-License-Identifier: MPL-2.0
// https://github.com/quizdeck/quizdeck

// Package storage persists uploaded media on local disk. Objects are
// keyed by a server-generated UUID so client-supplied names never
// touch the filesystem.
package storage

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/quizdeck/quizdeck/internal/logging"
)

var (
	// ErrTooLarge is returned when an upload exceeds the size limit.
	ErrTooLarge = errors.New("storage: object exceeds size limit")

	// ErrUnsupportedType is returned for uploads that are not images.
	ErrUnsupportedType = errors.New("storage: unsupported content type")

	// ErrNotFound is returned when the object does not exist.
	ErrNotFound = errors.New("storage: object not found")
)

var allowedTypes = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Store is a local-disk object store for uploaded images.
type Store struct {
	root    string
	maxSize int64
}

// New creates a Store rooted at path. The directory is created if it
// does not exist.
func New(root string, maxSize int64) (*Store, error) {
	if root == "" {
		return nil, errors.New("storage: root path is required")
	}
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &Store{root: root, maxSize: maxSize}, nil
}

// Save reads an upload, validates its size and content type, and
// writes it under a fresh UUID. Returns the storage ID.
func (s *Store) Save(r io.Reader) (string, error) {
	// Sniff the content type from the first 512 bytes before
	// committing anything to disk.
	head := make([]byte, 512)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", err
	}
	head = head[:n]

	contentType := http.DetectContentType(head)
	ext, ok := allowedTypes[contentType]
	if !ok {
		return "", ErrUnsupportedType
	}

	id := uuid.New().String() + ext
	path := filepath.Join(s.root, id)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
	if err != nil {
		return "", err
	}

	limited := io.LimitReader(io.MultiReader(strings.NewReader(string(head)), r), s.maxSize+1)
	written, err := io.Copy(f, limited)
	if err != nil {
		closeAndRemove(f, path)
		return "", err
	}
	if written > s.maxSize {
		closeAndRemove(f, path)
		return "", ErrTooLarge
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", err
	}

	logging.Debug().Str("storage_id", id).Int64("bytes", written).Msg("object stored")
	return id, nil
}

// Open returns a reader for the stored object. The caller closes it.
func (s *Store) Open(id string) (io.ReadCloser, error) {
	path, err := s.objectPath(id)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	return f, err
}

// Delete removes a stored object. Deleting a missing object is not an
// error; cleanup may race with manual removal.
func (s *Store) Delete(id string) error {
	path, err := s.objectPath(id)
	if err != nil {
		return err
	}
	err = os.Remove(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// objectPath validates the ID and resolves it under the store root.
// IDs are server generated, but the check keeps a crafted ID from
// escaping the root.
func (s *Store) objectPath(id string) (string, error) {
	if id == "" || strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return "", ErrNotFound
	}
	return filepath.Join(s.root, id), nil
}

func closeAndRemove(f *os.File, path string) {
	_ = f.Close()
	_ = os.Remove(path)
}
