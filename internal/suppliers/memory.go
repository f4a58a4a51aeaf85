package suppliers

import (
	"context"
	"sort"
	"sync"
	"time"

	"cloud.google.com/go/bigquery"
)

// MemoryRepository is an in-memory implementation of Repository.
// It is safe for concurrent use. Data is lost on service restart, so
// it serves single-instance deployments without BigQuery access and
// tests.
type MemoryRepository struct {
	mu   sync.RWMutex
	rows map[string]*SupplierRow
}

// NewMemoryRepository creates a new in-memory supplier repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		rows: make(map[string]*SupplierRow),
	}
}

// Close implements the Repository interface. It is a no-op.
func (r *MemoryRepository) Close() error {
	return nil
}

// ListSuppliers retrieves all suppliers ordered by account number.
func (r *MemoryRepository) ListSuppliers(ctx context.Context) ([]*SupplierRow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*SupplierRow, 0, len(r.rows))
	for _, row := range r.rows {
		rowCopy := *row
		result = append(result, &rowCopy)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].AccountNumber < result[j].AccountNumber
	})
	return result, nil
}

// FindSupplierByAccount finds a supplier by its ledger account number.
func (r *MemoryRepository) FindSupplierByAccount(ctx context.Context, accountNumber string) (*SupplierRow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, row := range r.rows {
		if row.AccountNumber == accountNumber {
			rowCopy := *row
			return &rowCopy, nil
		}
	}
	return nil, ErrSupplierNotFound
}

// InsertSupplier inserts a single SupplierRow.
func (r *MemoryRepository) InsertSupplier(ctx context.Context, row *SupplierRow) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rowCopy := *row
	if rowCopy.CreatedTS.IsZero() {
		rowCopy.CreatedTS = time.Now()
	}
	r.rows[rowCopy.SupplierID] = &rowCopy
	return nil
}

// UpdateSupplier updates the mutable fields of an existing supplier.
func (r *MemoryRepository) UpdateSupplier(ctx context.Context, row *SupplierRow) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.rows[row.SupplierID]
	if !ok {
		return ErrSupplierNotFound
	}

	existing.AccountNumber = row.AccountNumber
	existing.Name = row.Name
	existing.Email = row.Email
	existing.Phone = row.Phone
	existing.PaymentTerms = row.PaymentTerms
	existing.UpdatedTS = bigquery.NullTimestamp{Timestamp: time.Now(), Valid: true}
	return nil
}

// DeleteSupplier removes a supplier by ID.
func (r *MemoryRepository) DeleteSupplier(ctx context.Context, supplierID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rows[supplierID]; !ok {
		return ErrSupplierNotFound
	}
	delete(r.rows, supplierID)
	return nil
}

// DeleteAllSuppliers wipes the registry.
func (r *MemoryRepository) DeleteAllSuppliers(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := len(r.rows)
	r.rows = make(map[string]*SupplierRow)
	return removed, nil
}

var _ Repository = (*MemoryRepository)(nil)
