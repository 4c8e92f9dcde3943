// Package ledger persists per-file outcomes between runs. Keys are the
// slash-separated input paths relative to the input root, so a record
// survives the tree being mounted at a different absolute path.
package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	pebble "github.com/cockroachdb/pebble"
)

const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Record is one file outcome as persisted between runs.
type Record struct {
	RunID         string    `json:"run_id"`
	Status        string    `json:"status"`
	SourceSize    int64     `json:"source_size"`
	SourceModTime int64     `json:"source_mtime"` // unix seconds
	Quality       int       `json:"quality"`
	Effort        int       `json:"effort"`
	AvifSize      int64     `json:"avif_size,omitempty"`
	FallbackSize  int64     `json:"fallback_size,omitempty"`
	Error         string    `json:"error,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// Entry pairs a record with its key for listings.
type Entry struct {
	Rel    string
	Record Record
}

type Store struct {
	db *pebble.DB
}

// Open opens (or creates) the ledger database at dbPath.
func Open(dbPath string) (*Store, error) {
	db, err := pebble.Open(dbPath, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Put stores the outcome for one relative path, overwriting any prior run.
func (s *Store) Put(rel string, record Record) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal ledger record: %w", err)
	}
	return s.db.Set([]byte(rel), data, pebble.Sync)
}

// Get retrieves the record for rel. Not found is not an error; it returns
// nil, nil.
func (s *Store) Get(rel string) (*Record, error) {
	data, closer, err := s.db.Get([]byte(rel))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	defer closer.Close()

	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal ledger record: %w", err)
	}
	return &record, nil
}

// List returns every entry in key order.
func (s *Store) List() ([]Entry, error) {
	iter, err := s.db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var entries []Entry
	for iter.First(); iter.Valid(); iter.Next() {
		var record Record
		if err := json.Unmarshal(iter.Value(), &record); err != nil {
			continue // skip records from incompatible versions
		}
		entries = append(entries, Entry{Rel: string(iter.Key()), Record: record})
	}
	return entries, nil
}

// ShouldSkip reports whether rel can be skipped under resume: the previous
// run succeeded, the source file is unchanged and the encode settings match.
func (s *Store) ShouldSkip(rel string, info os.FileInfo, quality, effort int) bool {
	record, err := s.Get(rel)
	if err != nil || record == nil || record.Status != StatusSuccess {
		return false
	}
	return record.SourceSize == info.Size() &&
		record.SourceModTime == info.ModTime().Unix() &&
		record.Quality == quality &&
		record.Effort == effort
}

// Prune removes records older than maxAge and reports how many went.
func (s *Store) Prune(maxAge time.Duration) (int, error) {
	cutoff := time.Now().Add(-maxAge)
	iter, err := s.db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return 0, err
	}

	var stale [][]byte
	for iter.First(); iter.Valid(); iter.Next() {
		var record Record
		if err := json.Unmarshal(iter.Value(), &record); err != nil {
			continue
		}
		if record.Timestamp.Before(cutoff) {
			key := make([]byte, len(iter.Key()))
			copy(key, iter.Key())
			stale = append(stale, key)
		}
	}
	if err := iter.Close(); err != nil {
		return 0, err
	}

	for _, key := range stale {
		if err := s.db.Delete(key, pebble.Sync); err != nil {
			return 0, fmt.Errorf("failed to delete stale ledger record: %w", err)
		}
	}
	return len(stale), nil
}
