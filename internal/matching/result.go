package matching

import (
	"github.com/rise-pro/debt-aging/internal/ledger"
)

// Result is the outcome of one classification run: the fully tagged
// row list plus per-account counts for the three pairing passes.
// A Result is immutable once returned; reclassification happens in the
// store, never by re-running passes over tagged rows.
type Result struct {
	// RunID uniquely identifies this processing run.
	RunID string `json:"run_id"`

	// Rows is the tagged copy of the ingested rows, in sequence order.
	Rows []ledger.Row `json:"rows"`

	// ExactCounts maps account id to the number of rows consumed by the
	// exact intra-account pass (+2 per pair). Zero entries are omitted.
	ExactCounts map[string]int `json:"exact_counts"`

	// TolerantCounts maps account id to rows consumed by the tolerant
	// intra-account pass (+2 per pair).
	TolerantCounts map[string]int `json:"tolerant_counts"`

	// GlobalCounts maps account id to rows consumed by the cross-account
	// pass. Each pair credits the positive row's account and the
	// negative row's account with +1 each.
	GlobalCounts map[string]int `json:"global_counts"`
}

// CategoryRows returns the rows tagged with the given category, in
// sequence order.
func (r *Result) CategoryRows(c ledger.Category) []ledger.Row {
	var out []ledger.Row
	for _, row := range r.Rows {
		if row.Category == c {
			out = append(out, row)
		}
	}
	return out
}

// Totals returns the number of rows per category. Unclassified rows
// (unparseable or zero amounts untouched by the rule pass) are
// excluded: they contribute to neither match nor special totals.
func (r *Result) Totals() map[ledger.Category]int {
	totals := make(map[ledger.Category]int)
	for _, row := range r.Rows {
		if row.Category == ledger.CategoryUnclassified {
			continue
		}
		totals[row.Category]++
	}
	return totals
}

// TotalRows is the full ingested row count, including rows excluded
// from matching for unparseable amounts.
func (r *Result) TotalRows() int {
	return len(r.Rows)
}
