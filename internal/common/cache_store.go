package common

import (
	"encoding/json"
	"os"
	"path/filepath"

	"skytracker/backend/internal/logging"
)

// CacheStore is a key-based JSON persistence layer for auxiliary data that
// should survive process restarts, like the recent-flights airport map. One
// JSON file per key under the cache directory; last writer wins, no locking.
type CacheStore struct {
	dir string
}

// NewCacheStore creates a store rooted at dir, defaulting to CACHE_DIR or
// ./cache when dir is empty
func NewCacheStore(dir string) *CacheStore {
	if dir == "" {
		dir = os.Getenv("CACHE_DIR")
	}
	if dir == "" {
		dir = "cache"
	}
	return &CacheStore{dir: dir}
}

func (s *CacheStore) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// Read loads the value stored under key into out. Returns false on a missing
// file or parse error, never an error: a cold or corrupt cache is simply a miss.
func (s *CacheStore) Read(key string, out interface{}) bool {
	content, err := os.ReadFile(s.path(key))
	if err != nil {
		return false
	}

	if err := json.Unmarshal(content, out); err != nil {
		logging.Warn("Cache store: discarding unparsable snapshot", "key", key, "error", err.Error())
		return false
	}
	return true
}

// Write persists value under key, creating the cache directory if absent
func (s *CacheStore) Write(key string, value interface{}) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(s.path(key), data, 0o644)
}
