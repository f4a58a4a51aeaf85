package suppliers

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"
)

const (
	projectID      = "rise-pro-payables"
	datasetID      = "payables"
	suppliersTable = "suppliers"
)

// ErrSupplierNotFound is returned when no supplier matches the lookup.
var ErrSupplierNotFound = fmt.Errorf("supplier not found")

// ListSuppliersWithClient retrieves all suppliers ordered by account
// number using the provided BigQuery client.
func ListSuppliersWithClient(ctx context.Context, client *bigquery.Client) ([]*SupplierRow, error) {
	q := client.Query(`
		SELECT
			supplier_id,
			account_number,
			name,
			email,
			phone,
			payment_terms,
			created_ts,
			updated_ts
		FROM payables.suppliers
		ORDER BY account_number
	`)

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListSuppliers: query read: %w", err)
	}

	var rows []*SupplierRow
	for {
		var r SupplierRow
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListSuppliers: iter next: %w", err)
		}
		rows = append(rows, &r)
	}

	return rows, nil
}

// FindSupplierByAccountWithClient finds a supplier by its ledger
// account number using the provided BigQuery client.
func FindSupplierByAccountWithClient(ctx context.Context, client *bigquery.Client, accountNumber string) (*SupplierRow, error) {
	q := client.Query(`
		SELECT
			supplier_id,
			account_number,
			name,
			email,
			phone,
			payment_terms,
			created_ts,
			updated_ts
		FROM payables.suppliers
		WHERE account_number = @account_number
		LIMIT 1
	`)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "account_number", Value: accountNumber},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("FindSupplierByAccount: query read: %w", err)
	}

	var r SupplierRow
	err = it.Next(&r)
	if err == iterator.Done {
		return nil, ErrSupplierNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("FindSupplierByAccount: iter next: %w", err)
	}

	return &r, nil
}

// InsertSupplierWithClient inserts a single SupplierRow into
// payables.suppliers using the provided BigQuery client.
func InsertSupplierWithClient(ctx context.Context, client *bigquery.Client, row *SupplierRow) error {
	table := client.DatasetInProject(projectID, datasetID).Table(suppliersTable)
	inserter := table.Inserter()
	if err := inserter.Put(ctx, row); err != nil {
		return fmt.Errorf("InsertSupplier: inserting row: %w", err)
	}
	return nil
}

// UpdateSupplierWithClient updates the mutable fields of an existing
// supplier using the provided BigQuery client.
func UpdateSupplierWithClient(ctx context.Context, client *bigquery.Client, row *SupplierRow) error {
	q := client.Query(`
		UPDATE payables.suppliers
		SET
			account_number = @account_number,
			name = @name,
			email = @email,
			phone = @phone,
			payment_terms = @payment_terms,
			updated_ts = @updated_ts
		WHERE supplier_id = @supplier_id
	`)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "supplier_id", Value: row.SupplierID},
		{Name: "account_number", Value: row.AccountNumber},
		{Name: "name", Value: row.Name},
		{Name: "email", Value: row.Email},
		{Name: "phone", Value: row.Phone},
		{Name: "payment_terms", Value: row.PaymentTerms},
		{Name: "updated_ts", Value: time.Now()},
	}

	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("UpdateSupplier: running update: %w", err)
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("UpdateSupplier: waiting for update: %w", err)
	}
	if status.Err() != nil {
		return fmt.Errorf("UpdateSupplier: update failed: %w", status.Err())
	}
	return nil
}

// DeleteSupplierWithClient removes a supplier by ID using the provided
// BigQuery client.
func DeleteSupplierWithClient(ctx context.Context, client *bigquery.Client, supplierID string) error {
	q := client.Query(`
		DELETE FROM payables.suppliers
		WHERE supplier_id = @supplier_id
	`)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "supplier_id", Value: supplierID},
	}

	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("DeleteSupplier: running delete: %w", err)
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("DeleteSupplier: waiting for delete: %w", err)
	}
	if status.Err() != nil {
		return fmt.Errorf("DeleteSupplier: delete failed: %w", status.Err())
	}
	return nil
}

// DeleteAllSuppliersWithClient wipes the supplier table using the
// provided BigQuery client and returns the number of removed rows.
func DeleteAllSuppliersWithClient(ctx context.Context, client *bigquery.Client) (int, error) {
	q := client.Query(`
		DELETE FROM payables.suppliers
		WHERE TRUE
	`)

	job, err := q.Run(ctx)
	if err != nil {
		return 0, fmt.Errorf("DeleteAllSuppliers: running delete: %w", err)
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return 0, fmt.Errorf("DeleteAllSuppliers: waiting for delete: %w", err)
	}
	if status.Err() != nil {
		return 0, fmt.Errorf("DeleteAllSuppliers: delete failed: %w", status.Err())
	}

	removed := 0
	if details, ok := status.Statistics.Details.(*bigquery.QueryStatistics); ok {
		removed = int(details.NumDMLAffectedRows)
	}
	return removed, nil
}

// BigQuerySupplierRepository is the concrete implementation of
// Repository that interacts with BigQuery. It holds a shared client to
// avoid creating a new connection for each operation.
type BigQuerySupplierRepository struct {
	client *bigquery.Client
}

// NewBigQuerySupplierRepository creates a new BigQuerySupplierRepository
// with a shared BigQuery client.
func NewBigQuerySupplierRepository(ctx context.Context) (*BigQuerySupplierRepository, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("NewBigQuerySupplierRepository: creating client: %w", err)
	}
	return &BigQuerySupplierRepository{client: client}, nil
}

// Close closes the BigQuery client connection.
func (r *BigQuerySupplierRepository) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

// ListSuppliers delegates to ListSuppliersWithClient with the shared client.
func (r *BigQuerySupplierRepository) ListSuppliers(ctx context.Context) ([]*SupplierRow, error) {
	return ListSuppliersWithClient(ctx, r.client)
}

// FindSupplierByAccount delegates to FindSupplierByAccountWithClient with the shared client.
func (r *BigQuerySupplierRepository) FindSupplierByAccount(ctx context.Context, accountNumber string) (*SupplierRow, error) {
	return FindSupplierByAccountWithClient(ctx, r.client, accountNumber)
}

// InsertSupplier delegates to InsertSupplierWithClient with the shared client.
func (r *BigQuerySupplierRepository) InsertSupplier(ctx context.Context, row *SupplierRow) error {
	return InsertSupplierWithClient(ctx, r.client, row)
}

// UpdateSupplier delegates to UpdateSupplierWithClient with the shared client.
func (r *BigQuerySupplierRepository) UpdateSupplier(ctx context.Context, row *SupplierRow) error {
	return UpdateSupplierWithClient(ctx, r.client, row)
}

// DeleteSupplier delegates to DeleteSupplierWithClient with the shared client.
func (r *BigQuerySupplierRepository) DeleteSupplier(ctx context.Context, supplierID string) error {
	return DeleteSupplierWithClient(ctx, r.client, supplierID)
}

// DeleteAllSuppliers delegates to DeleteAllSuppliersWithClient with the shared client.
func (r *BigQuerySupplierRepository) DeleteAllSuppliers(ctx context.Context) (int, error) {
	return DeleteAllSuppliersWithClient(ctx, r.client)
}

var _ Repository = (*BigQuerySupplierRepository)(nil)
