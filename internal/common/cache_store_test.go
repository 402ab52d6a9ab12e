package common

import (
	"os"
	"path/filepath"
	"testing"
)

type snapshot struct {
	Entries   [][]interface{} `json:"entries"`
	Timestamp int64           `json:"timestamp"`
}

func TestCacheStore_WriteThenRead(t *testing.T) {
	store := NewCacheStore(t.TempDir())

	in := snapshot{
		Entries:   [][]interface{}{{"abc123", map[string]string{"departure": "LFPG", "arrival": "KJFK"}}},
		Timestamp: 1700000000,
	}
	if err := store.Write("recent_flights_airport_map", in); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	var out snapshot
	if !store.Read("recent_flights_airport_map", &out) {
		t.Fatal("Expected a hit after writing")
	}
	if out.Timestamp != in.Timestamp || len(out.Entries) != 1 {
		t.Errorf("Round trip mismatch: %+v", out)
	}
}

func TestCacheStore_MissingKeyIsAMiss(t *testing.T) {
	store := NewCacheStore(t.TempDir())

	var out snapshot
	if store.Read("never_written", &out) {
		t.Error("Expected a miss for a key never written")
	}
}

func TestCacheStore_CorruptFileIsAMiss(t *testing.T) {
	dir := t.TempDir()
	store := NewCacheStore(dir)

	if err := os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("Failed to plant corrupt file: %v", err)
	}

	var out snapshot
	if store.Read("bad", &out) {
		t.Error("Expected a corrupt snapshot to read as a miss")
	}
}

func TestCacheStore_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "cache")
	store := NewCacheStore(dir)

	if err := store.Write("key", map[string]int{"a": 1}); err != nil {
		t.Fatalf("Expected the directory to be created on write: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "key.json")); err != nil {
		t.Errorf("Expected key.json on disk: %v", err)
	}
}

func TestCacheStore_LastWriterWins(t *testing.T) {
	store := NewCacheStore(t.TempDir())

	_ = store.Write("key", map[string]int{"v": 1})
	_ = store.Write("key", map[string]int{"v": 2})

	var out map[string]int
	if !store.Read("key", &out) {
		t.Fatal("Expected a hit")
	}
	if out["v"] != 2 {
		t.Errorf("Expected the second write to win, got %d", out["v"])
	}
}
