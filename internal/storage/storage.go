// Package storage manages uploaded book files on the local filesystem.
//
// Storage keys are generated, never derived from user input, which rules
// out path traversal and accidental overwrites by construction. Writes
// are atomic from a reader's perspective: the file is either fully
// present or not there at all.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a storage key no longer resolves to a file.
var ErrNotFound = errors.New("stored file not found")

// Storage manages book file operations under a base directory.
// Thread-safe for concurrent operations.
type Storage struct {
	basePath string
	mu       sync.RWMutex // Protects file operations
}

// New creates a Storage rooted at basePath, creating the directory if
// needed.
func New(basePath string) (*Storage, error) {
	if basePath == "" {
		return nil, fmt.Errorf("base path cannot be empty")
	}

	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	return &Storage{basePath: basePath}, nil
}

// NewKey returns a fresh collision-free storage key carrying the given
// extension (e.g. ".pdf"). Keys are UUIDs, so they are unique by
// construction and contain nothing user-controlled.
func NewKey(extension string) string {
	return uuid.NewString() + extension
}

// Save writes the contents of r under key atomically: the data lands in
// a temp file in the same directory and is renamed into place only once
// fully written and synced. Returns the number of bytes stored.
func (s *Storage) Save(key string, r io.Reader) (int64, error) {
	if err := validateKey(key); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.basePath, ".upload-*")
	if err != nil {
		return 0, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	n, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return 0, fmt.Errorf("failed to write file data: %w", err)
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return 0, fmt.Errorf("failed to sync file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path(key)); err != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("failed to move file into place: %w", err)
	}

	return n, nil
}

// Open returns a reader over the stored bytes and their size.
// Returns ErrNotFound when the key no longer resolves.
func (s *Storage) Open(key string) (io.ReadSeekCloser, int64, error) {
	if err := validateKey(key); err != nil {
		return nil, 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	path := s.path(key)

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, 0, ErrNotFound
		}
		return nil, 0, fmt.Errorf("failed to stat file: %w", err)
	}

	f, err := os.Open(path) //#nosec G304 -- Path is built from a validated generated key
	if err != nil {
		if os.IsNotExist(err) {
			return nil, 0, ErrNotFound
		}
		return nil, 0, fmt.Errorf("failed to open file: %w", err)
	}

	return f, info.Size(), nil
}

// Exists checks whether a key resolves to a stored file.
func (s *Storage) Exists(key string) bool {
	if validateKey(key) != nil {
		return false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	_, err := os.Stat(s.path(key))
	return err == nil
}

// Delete removes the stored file for key. Deleting an absent key
// returns ErrNotFound so callers can log it, but callers treat file
// deletion as best-effort.
func (s *Storage) Delete(key string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path(key))
	if os.IsNotExist(err) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// path resolves a key to its on-disk location.
func (s *Storage) path(key string) string {
	return filepath.Join(s.basePath, key)
}

// validateKey rejects keys that could escape the base directory. Keys
// are generated internally, so a failure here indicates a bug or a
// corrupted record rather than user input.
func validateKey(key string) error {
	if key == "" {
		return fmt.Errorf("storage key cannot be empty")
	}
	if strings.ContainsAny(key, `/\`) || strings.Contains(key, "..") {
		return fmt.Errorf("invalid storage key: %q", key)
	}
	return nil
}
