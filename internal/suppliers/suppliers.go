// Package suppliers manages the supplier contact registry: who each
// account number belongs to, how to reach them and which payment terms
// apply. The registry backs both the draft address book and the
// payment export.
package suppliers

import (
	"context"
	"strings"
	"time"

	"cloud.google.com/go/bigquery"

	"github.com/rise-pro/debt-aging/internal/drafts"
)

// SupplierRow represents a supplier record in BigQuery.
type SupplierRow struct {
	SupplierID string `bigquery:"supplier_id" json:"supplier_id"`

	AccountNumber string `bigquery:"account_number" json:"account_number"`
	Name          string `bigquery:"name" json:"name"`

	Email string `bigquery:"email" json:"email,omitempty"`
	Phone string `bigquery:"phone" json:"phone,omitempty"`

	// PaymentTerms is the term code driving the payment date
	// calculation, e.g. "01" for end of month plus one.
	PaymentTerms string `bigquery:"payment_terms" json:"payment_terms,omitempty"`

	CreatedTS time.Time              `bigquery:"created_ts" json:"created_ts"`
	UpdatedTS bigquery.NullTimestamp `bigquery:"updated_ts" json:"-"`
}

// Repository provides an interface for supplier-related database operations.
type Repository interface {
	// ListSuppliers retrieves all suppliers ordered by account number.
	ListSuppliers(ctx context.Context) ([]*SupplierRow, error)

	// FindSupplierByAccount finds a supplier by its ledger account number.
	FindSupplierByAccount(ctx context.Context, accountNumber string) (*SupplierRow, error)

	// InsertSupplier inserts a single SupplierRow.
	InsertSupplier(ctx context.Context, row *SupplierRow) error

	// UpdateSupplier updates the mutable fields of an existing supplier.
	UpdateSupplier(ctx context.Context, row *SupplierRow) error

	// DeleteSupplier removes a supplier by ID.
	DeleteSupplier(ctx context.Context, supplierID string) error

	// DeleteAllSuppliers wipes the registry and returns how many
	// suppliers were removed.
	DeleteAllSuppliers(ctx context.Context) (int, error)

	// Close releases the underlying connection.
	Close() error
}

// BuildDirectory turns the supplier registry into a draft address
// book. Both the account number and the display name are registered as
// lookup keys, so drafts resolve even when the aging report only
// carries one of them.
func BuildDirectory(rows []*SupplierRow) drafts.Directory {
	dir := drafts.Directory{}
	for _, row := range rows {
		email := strings.TrimSpace(row.Email)
		if email == "" {
			continue
		}
		dir.Set(row.AccountNumber, email)
		dir.Set(row.Name, email)
	}
	return dir
}
