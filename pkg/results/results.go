// Package results owns the JSON checkpoint file. The whole store is loaded
// at startup and rewritten after every processed document, which makes the
// file itself the resume state; there is no separate transaction log.
package results

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/textworks/chat-extract/models"
)

// Store is an ordered sequence of exchange results, unique by document id.
type Store struct {
	path    string
	results []models.ExchangeResult
}

// Load reads the store at path. A missing file yields an empty store; this
// is the fresh-run case, not an error.
func Load(path string) (*Store, error) {
	s := &Store{path: path}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read results file: %w", err)
	}

	if err := json.Unmarshal(data, &s.results); err != nil {
		return nil, fmt.Errorf("failed to parse results file %s: %w", path, err)
	}
	return s, nil
}

// Upsert inserts result, or replaces the existing entry with the same id in
// place. Position in the sequence is preserved on replacement; new ids go
// to the end.
func (s *Store) Upsert(result models.ExchangeResult) {
	for i, existing := range s.results {
		if existing.ID != result.ID {
			continue
		}
		s.results[i] = result
		return
	}
	s.results = append(s.results, result)
}

// Save rewrites the whole store to disk, pretty-printed. The write goes
// through a temp file in the same directory plus a rename, so a crash
// mid-write never truncates the previous checkpoint.
func (s *Store) Save() error {
	data, err := json.MarshalIndent(s.results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".tmp_results_*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp results file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write results: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp results file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("failed to replace results file: %w", err)
	}
	return nil
}

// IDs returns the set of document ids already present in the store.
func (s *Store) IDs() map[int64]bool {
	ids := make(map[int64]bool, len(s.results))
	for _, r := range s.results {
		ids[r.ID] = true
	}
	return ids
}

// MaxID returns the largest id in the store, and false when the store is
// empty.
func (s *Store) MaxID() (int64, bool) {
	if len(s.results) == 0 {
		return 0, false
	}
	max := s.results[0].ID
	for _, r := range s.results[1:] {
		if r.ID > max {
			max = r.ID
		}
	}
	return max, true
}

// Len reports how many results the store holds.
func (s *Store) Len() int {
	return len(s.results)
}

// Results exposes the stored sequence in order.
func (s *Store) Results() []models.ExchangeResult {
	return s.results
}
