package history

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepository is an in-memory implementation of Repository, used
// for single-instance deployments without BigQuery access and tests.
type MemoryRepository struct {
	mu   sync.RWMutex
	rows []*RunRow
}

// NewMemoryRepository creates a new in-memory run repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

// Close implements the Repository interface. It is a no-op.
func (r *MemoryRepository) Close() error {
	return nil
}

// RecordRun inserts a single run summary.
func (r *MemoryRepository) RecordRun(ctx context.Context, row *RunRow) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rowCopy := *row
	if rowCopy.ProcessedTS.IsZero() {
		rowCopy.ProcessedTS = time.Now()
	}
	r.rows = append(r.rows, &rowCopy)
	return nil
}

// ListRecentRuns retrieves up to limit run summaries, most recent first.
func (r *MemoryRepository) ListRecentRuns(ctx context.Context, limit int) ([]*RunRow, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*RunRow, 0, len(r.rows))
	for _, row := range r.rows {
		rowCopy := *row
		result = append(result, &rowCopy)
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].ProcessedTS.After(result[j].ProcessedTS)
	})
	if limit < len(result) {
		result = result[:limit]
	}
	return result, nil
}

var _ Repository = (*MemoryRepository)(nil)
