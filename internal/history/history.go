// Package history records one summary row per reconciliation run so
// past uploads stay auditable after the in-memory working set is
// replaced.
package history

import (
	"context"
	"time"
)

// RunRow represents a reconciliation run record in BigQuery.
type RunRow struct {
	RunID    string `bigquery:"run_id" json:"run_id"`
	Filename string `bigquery:"filename" json:"filename"`

	TotalRows    int `bigquery:"total_rows" json:"total_rows"`
	ExactRows    int `bigquery:"exact_rows" json:"exact_rows"`
	TolerantRows int `bigquery:"tolerant_rows" json:"tolerant_rows"`
	GlobalRows   int `bigquery:"global_rows" json:"global_rows"`
	TransferRows int `bigquery:"transfer_rows" json:"transfer_rows"`
	SpecialRows  int `bigquery:"special_rows" json:"special_rows"`

	ProcessedTS time.Time `bigquery:"processed_ts" json:"processed_ts"`
}

// Repository provides an interface for run-history database operations.
type Repository interface {
	// RecordRun inserts a single run summary.
	RecordRun(ctx context.Context, row *RunRow) error

	// ListRecentRuns retrieves up to limit run summaries, most recent
	// first. A non-positive limit applies the default.
	ListRecentRuns(ctx context.Context, limit int) ([]*RunRow, error)

	// Close releases the underlying connection.
	Close() error
}

// DefaultListLimit bounds ListRecentRuns when no limit is given.
const DefaultListLimit = 50
