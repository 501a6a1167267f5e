package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"rentacar-calendar/internal/domain"
)

// LocalStore is the on-disk stand-in for browser local storage: one JSON
// file per key under dir. Writes go through a temp file and a rename.
type LocalStore struct {
	dir string
	mu  sync.Mutex
}

// NewLocalStore creates dir if it does not exist
func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create preferences directory: %w", err)
	}
	return &LocalStore{dir: dir}, nil
}

func (s *LocalStore) Load(ctx context.Context, key string) (*domain.FilterSet, error) {
	var fs domain.FilterSet
	if err := s.Get(key, &fs); err != nil {
		return nil, err
	}
	return &fs, nil
}

func (s *LocalStore) Save(ctx context.Context, key string, filters domain.FilterSet) error {
	return s.Set(key, filters)
}

// Get decodes the value stored under key into out
func (s *LocalStore) Get(key string, out any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to read %q: %w", key, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("corrupt value for %q: %w", key, err)
	}
	return nil
}

// Set stores v under key as JSON
func (s *LocalStore) Set(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %q: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.dir, ".pref-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %q: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %q: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), s.path(key)); err != nil {
		return fmt.Errorf("failed to persist %q: %w", key, err)
	}
	return nil
}

// Remove deletes key; removing a missing key is not an error
func (s *LocalStore) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete %q: %w", key, err)
	}
	return nil
}

func (s *LocalStore) path(key string) string {
	return filepath.Join(s.dir, encodeKey(key)+".json")
}

// encodeKey creates a filesystem-safe name for arbitrary keys
func encodeKey(key string) string {
	hash := sha256.Sum256([]byte(key))
	return hex.EncodeToString(hash[:16])
}
