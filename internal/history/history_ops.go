package history

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"
)

const (
	projectID = "rise-pro-payables"
	datasetID = "payables"
	runsTable = "processing_runs"
)

// RecordRunWithClient inserts a single run summary into
// payables.processing_runs using the provided BigQuery client.
func RecordRunWithClient(ctx context.Context, client *bigquery.Client, row *RunRow) error {
	table := client.DatasetInProject(projectID, datasetID).Table(runsTable)
	inserter := table.Inserter()
	if err := inserter.Put(ctx, row); err != nil {
		return fmt.Errorf("RecordRun: inserting row: %w", err)
	}
	return nil
}

// ListRecentRunsWithClient retrieves up to limit run summaries, most
// recent first, using the provided BigQuery client.
func ListRecentRunsWithClient(ctx context.Context, client *bigquery.Client, limit int) ([]*RunRow, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	q := client.Query(`
		SELECT
			run_id,
			filename,
			total_rows,
			exact_rows,
			tolerant_rows,
			global_rows,
			transfer_rows,
			special_rows,
			processed_ts
		FROM payables.processing_runs
		ORDER BY processed_ts DESC
		LIMIT @limit
	`)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "limit", Value: limit},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListRecentRuns: query read: %w", err)
	}

	var rows []*RunRow
	for {
		var r RunRow
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListRecentRuns: iter next: %w", err)
		}
		rows = append(rows, &r)
	}

	return rows, nil
}

// BigQueryRunRepository is the concrete implementation of Repository
// that interacts with BigQuery. It holds a shared client to avoid
// creating a new connection for each operation.
type BigQueryRunRepository struct {
	client *bigquery.Client
}

// NewBigQueryRunRepository creates a new BigQueryRunRepository with a
// shared BigQuery client.
func NewBigQueryRunRepository(ctx context.Context) (*BigQueryRunRepository, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("NewBigQueryRunRepository: creating client: %w", err)
	}
	return &BigQueryRunRepository{client: client}, nil
}

// Close closes the BigQuery client connection.
func (r *BigQueryRunRepository) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

// RecordRun delegates to RecordRunWithClient with the shared client.
func (r *BigQueryRunRepository) RecordRun(ctx context.Context, row *RunRow) error {
	return RecordRunWithClient(ctx, r.client, row)
}

// ListRecentRuns delegates to ListRecentRunsWithClient with the shared client.
func (r *BigQueryRunRepository) ListRecentRuns(ctx context.Context, limit int) ([]*RunRow, error) {
	return ListRecentRunsWithClient(ctx, r.client, limit)
}

var _ Repository = (*BigQueryRunRepository)(nil)
