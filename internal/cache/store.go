// Package cache stores fetched and computed results behind a small key/value
// Store. The CLI uses files under the user's cache directory; the server
// shares a Redis instance.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ErrMiss is returned by Store.Get when a key is absent or expired.
var ErrMiss = errors.New("cache miss")

// Store is a byte-oriented key/value store with per-key expiry.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value under key. A zero ttl keeps the value until overwritten.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Close() error
}

// FileStore keeps one JSON file per key in a directory.
type FileStore struct {
	dir string
	now func() time.Time
}

type fileEntry struct {
	Key       string    `json:"key"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
	Value     []byte    `json:"value"`
}

// NewFileStore creates a FileStore rooted at the given directory.
// If dir is empty, it defaults to ~/.cache/halalcities/.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("cannot determine home directory: %w", err)
		}
		dir = filepath.Join(home, ".cache", "halalcities")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create cache directory %s: %w", dir, err)
	}

	return &FileStore{dir: dir, now: time.Now}, nil
}

// Dir returns the directory the store writes to.
func (s *FileStore) Dir() string { return s.dir }

// fileName hashes the key so arbitrary keys map to safe file names.
func fileName(key string) string {
	h := sha256.Sum256([]byte(key))
	return fmt.Sprintf("%x.json", h[:8]) // 16 hex chars is plenty for uniqueness
}

func (s *FileStore) Get(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, fileName(key)))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache file: %w", err)
	}

	var entry fileEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		// A corrupt file is as good as no file.
		return nil, ErrMiss
	}
	if entry.Key != key {
		return nil, ErrMiss
	}
	if !entry.ExpiresAt.IsZero() && s.now().After(entry.ExpiresAt) {
		return nil, ErrMiss
	}
	return entry.Value, nil
}

func (s *FileStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	entry := fileEntry{Key: key, Value: value}
	if ttl > 0 {
		entry.ExpiresAt = s.now().Add(ttl)
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	if err := os.WriteFile(filepath.Join(s.dir, fileName(key)), data, 0o644); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }
