// Package payments derives payment due dates and export lists from
// classified ledger rows. The term-code table is configuration, not
// hardcoded logic; payments are scheduled on the 10th of the month.
package payments

import (
	"time"

	"github.com/rise-pro/debt-aging/internal/ledger"
)

// PaymentDay is the day of month payments are executed on.
const PaymentDay = 10

// Terms maps a supplier payment-term code to a month offset.
type Terms map[string]int

// DefaultTerms is the enumerated code table used by the bookkeeping
// team: "01" = current + 30 (one month), "05" = current + 60 (three
// months), "08" = immediate.
func DefaultTerms() Terms {
	return Terms{
		"01": 1,
		"05": 3,
		"08": 0,
	}
}

// Months returns the month offset for a code. Unknown codes behave as
// immediate terms.
func (t Terms) Months(code string) int {
	if m, ok := t[code]; ok {
		return m
	}
	return 0
}

// ExportRow is one line of a payment export.
type ExportRow struct {
	AccountID   string   `json:"account"`
	Name        string   `json:"name"`
	Amount      *float64 `json:"amount"`
	InvoiceDate string   `json:"invoice_date"`
	PaymentDate string   `json:"payment_date"` // empty when the invoice date cannot be parsed
}

// Export is an ordered payment export over a caller-selected row
// subset, with the grand total of the subset's amounts.
type Export struct {
	Label string      `json:"label"`
	Rows  []ExportRow `json:"rows"`
	Total float64     `json:"total"`
}

// Calculator computes payment dates from invoice dates and term codes.
type Calculator struct {
	terms Terms
}

// NewCalculator creates a calculator over the given term table. A nil
// table falls back to DefaultTerms.
func NewCalculator(terms Terms) *Calculator {
	if terms == nil {
		terms = DefaultTerms()
	}
	return &Calculator{terms: terms}
}

// DueDate computes the payment date for an invoice date string and a
// term code: the invoice month plus the code's month offset, clamped
// to the 10th of that month, rolled one month forward when that 10th
// is already on or before the invoice date. Returns "" when the
// invoice date cannot be parsed — degraded, never fatal.
func (c *Calculator) DueDate(invoiceDate, code string) string {
	invoice, ok := ledger.ParseDate(invoiceDate)
	if !ok {
		return ""
	}

	months := c.terms.Months(code)
	candidate := time.Date(invoice.Year(), invoice.Month()+time.Month(months), PaymentDay, 0, 0, 0, 0, time.UTC)
	if !candidate.After(invoice) {
		candidate = time.Date(candidate.Year(), candidate.Month()+1, PaymentDay, 0, 0, 0, 0, time.UTC)
	}
	return ledger.FormatDate(candidate)
}

// BuildExport produces the ordered export list for the given rows,
// each stamped with its computed payment date, plus the grand total.
// The invoice date is taken from the row's invoice date, falling back
// to its payment date when the report carries only one date column.
func (c *Calculator) BuildExport(rows []ledger.Row, label string) *Export {
	export := &Export{Label: label, Rows: make([]ExportRow, 0, len(rows))}
	for _, row := range rows {
		invoiceDate := row.InvoiceDate
		if invoiceDate == "" {
			invoiceDate = row.PaymentDate
		}
		export.Rows = append(export.Rows, ExportRow{
			AccountID:   row.AccountID,
			Name:        row.CounterpartyName,
			Amount:      row.Amount,
			InvoiceDate: invoiceDate,
			PaymentDate: c.DueDate(invoiceDate, row.PaymentTerms),
		})
		if row.Amount != nil {
			export.Total += *row.Amount
		}
	}
	return export
}
