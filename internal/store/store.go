// Package store holds the single current classified result set and
// serves the reclassification operations over it. Exactly one result
// set is live at a time; a new processing run replaces the previous
// one in full.
package store

import (
	"fmt"
	"strings"
	"sync"

	"github.com/rise-pro/debt-aging/internal/ledger"
	"github.com/rise-pro/debt-aging/internal/matching"
)

// Store is the process-wide reclassification store. It is safe for
// concurrent use: every operation is serialized under one mutex, both
// against other operations and against a new run replacing the result
// set. Operations are short and category lists are bounded by ledger
// size, so no finer-grained locking is needed.
type Store struct {
	mu     sync.Mutex
	vocab  ledger.Vocabulary
	result *resultSet // nil until the first run completes
}

// resultSet is the stored outcome of one run: rows partitioned by
// category in sequence order, plus the per-account pass counts.
type resultSet struct {
	runID      string
	categories map[ledger.Category][]ledger.Row
	exact      map[string]int
	tolerant   map[string]int
	global     map[string]int
}

// New creates an empty store accepting the given category vocabulary.
func New(vocab ledger.Vocabulary) *Store {
	return &Store{vocab: vocab}
}

// SetResult atomically replaces the current result set with the
// outcome of a new processing run. The previous set is discarded in
// full; there is no merge.
func (s *Store) SetResult(result *matching.Result) {
	rs := &resultSet{
		runID:      result.RunID,
		categories: make(map[ledger.Category][]ledger.Row),
		exact:      copyCounts(result.ExactCounts),
		tolerant:   copyCounts(result.TolerantCounts),
		global:     copyCounts(result.GlobalCounts),
	}
	for _, row := range result.Rows {
		rs.categories[row.Category] = append(rs.categories[row.Category], row)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.result = rs
}

// RunID returns the id of the stored run, or "" when no run has
// completed yet.
func (s *Store) RunID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return ""
	}
	return s.result.runID
}

// GetCategory returns a copy of the current row list for the category,
// in stored order. An empty list is returned when no result set exists
// yet; an unknown category name fails with ErrInvalidCategory.
func (s *Store) GetCategory(category ledger.Category) ([]ledger.Row, error) {
	if !s.vocab.Contains(category) {
		return nil, fmt.Errorf("GetCategory: %q: %w", category, ErrInvalidCategory)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.result == nil {
		return []ledger.Row{}, nil
	}
	rows := s.result.categories[category]
	out := make([]ledger.Row, len(rows))
	copy(out, rows)
	return out, nil
}

// Counts returns the number of stored rows per category. Empty when no
// result set exists yet.
func (s *Store) Counts() map[ledger.Category]int {
	s.mu.Lock()
	defer s.mu.Unlock()

	counts := make(map[ledger.Category]int)
	if s.result == nil {
		return counts
	}
	for category, rows := range s.result.categories {
		if len(rows) > 0 {
			counts[category] = len(rows)
		}
	}
	return counts
}

// Move relocates the first row of the source category matching the key
// to the end of the destination category. Every field except Category
// is preserved; the row loses its original relative position in the
// source. Observed as fully applied or not applied at all.
func (s *Store) Move(from, to ledger.Category, key ledger.MatchKey) error {
	if !s.vocab.Contains(from) {
		return fmt.Errorf("Move: source %q: %w", from, ErrInvalidCategory)
	}
	if !s.vocab.Contains(to) {
		return fmt.Errorf("Move: destination %q: %w", to, ErrInvalidCategory)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.result == nil {
		return fmt.Errorf("Move: %w", ErrEmptyResultSet)
	}

	row, ok := s.takeLocked(from, key)
	if !ok {
		return fmt.Errorf("Move: no row in %q matches key: %w", from, ErrNotFound)
	}
	row.Category = to
	s.result.categories[to] = append(s.result.categories[to], row)
	return nil
}

// Delete removes the first row of the category matching the key.
func (s *Store) Delete(category ledger.Category, key ledger.MatchKey) error {
	if !s.vocab.Contains(category) {
		return fmt.Errorf("Delete: %q: %w", category, ErrInvalidCategory)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.result == nil {
		return fmt.Errorf("Delete: %w", ErrEmptyResultSet)
	}
	if _, ok := s.takeLocked(category, key); !ok {
		return fmt.Errorf("Delete: no row in %q matches key: %w", category, ErrNotFound)
	}
	return nil
}

// BulkDeleteBySupplier removes every row of the category whose
// counterparty name equals name OR whose account id equals accountID
// (logical OR; empty criteria are skipped). Returns the number of rows
// removed; zero removals fail with ErrNotFound and leave the store
// unchanged.
func (s *Store) BulkDeleteBySupplier(category ledger.Category, name, accountID string) (int, error) {
	if !s.vocab.Contains(category) {
		return 0, fmt.Errorf("BulkDeleteBySupplier: %q: %w", category, ErrInvalidCategory)
	}

	name = strings.TrimSpace(name)
	accountID = strings.TrimSpace(accountID)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.result == nil {
		return 0, fmt.Errorf("BulkDeleteBySupplier: %w", ErrEmptyResultSet)
	}

	rows := s.result.categories[category]
	kept := rows[:0:0]
	removed := 0
	for _, row := range rows {
		match := (name != "" && strings.TrimSpace(row.CounterpartyName) == name) ||
			(accountID != "" && strings.TrimSpace(row.AccountID) == accountID)
		if match {
			removed++
			continue
		}
		kept = append(kept, row)
	}
	if removed == 0 {
		return 0, fmt.Errorf("BulkDeleteBySupplier: no rows for supplier: %w", ErrNotFound)
	}
	s.result.categories[category] = kept
	return removed, nil
}

// TotalRows returns the number of rows across all stored categories.
func (s *Store) TotalRows() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.result == nil {
		return 0
	}
	total := 0
	for _, rows := range s.result.categories {
		total += len(rows)
	}
	return total
}

// takeLocked removes and returns the first row of the category
// matching the key. Caller must hold s.mu.
func (s *Store) takeLocked(category ledger.Category, key ledger.MatchKey) (ledger.Row, bool) {
	rows := s.result.categories[category]
	for i, row := range rows {
		if key.Matches(row) {
			s.result.categories[category] = append(rows[:i:i], rows[i+1:]...)
			return row, true
		}
	}
	return ledger.Row{}, false
}

func copyCounts(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
