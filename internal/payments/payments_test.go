package payments

import (
	"testing"

	"github.com/rise-pro/debt-aging/internal/ledger"
)

func TestDueDate(t *testing.T) {
	calc := NewCalculator(nil)

	tests := []struct {
		name        string
		invoiceDate string
		code        string
		want        string
	}{
		// Invoice Oct 2025 + 3 months = Jan 2026, payment on the 10th.
		{"three month terms", "15/10/2025", "05", "10/01/2026"},
		// Invoice Dec 2025 + 1 month = Jan 2026.
		{"one month terms", "05/12/2025", "01", "10/01/2026"},
		// Immediate terms, but the 10th of November already passed, so
		// the payment rolls to December — not 10/11/2025.
		{"immediate terms past the 10th", "20/11/2025", "08", "10/12/2025"},
		// Immediate terms before the 10th stay in the invoice month.
		{"immediate terms before the 10th", "05/11/2025", "08", "10/11/2025"},
		// Exactly on the 10th: not after the invoice date, rolls forward.
		{"invoice on the 10th", "10/11/2025", "08", "10/12/2025"},
		// Month arithmetic across the year boundary.
		{"year rollover", "20/12/2025", "01", "10/01/2026"},
		// Unknown codes behave as immediate.
		{"unknown code", "02/06/2025", "99", "10/06/2025"},
		{"unparseable date", "not a date", "05", ""},
		{"empty date", "", "05", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := calc.DueDate(tt.invoiceDate, tt.code); got != tt.want {
				t.Errorf("DueDate(%q, %q) = %q, want %q", tt.invoiceDate, tt.code, got, tt.want)
			}
		})
	}
}

func TestBuildExport(t *testing.T) {
	calc := NewCalculator(Terms{"05": 3})

	rows := []ledger.Row{
		{AccountID: "100", CounterpartyName: "ספק אחד", Amount: ledger.Float(1000.5), InvoiceDate: "15/10/2025", PaymentTerms: "05"},
		{AccountID: "200", CounterpartyName: "ספק שני", Amount: ledger.Float(-250), PaymentDate: "01/11/2025", PaymentTerms: "05"},
		{AccountID: "300", CounterpartyName: "ספק שלישי", InvoiceDate: "bad date", PaymentTerms: "05"},
	}

	export := calc.BuildExport(rows, "תשלומים נובמבר")

	if export.Label != "תשלומים נובמבר" {
		t.Errorf("Label = %q", export.Label)
	}
	if len(export.Rows) != 3 {
		t.Fatalf("got %d export rows, want 3", len(export.Rows))
	}
	if got := export.Rows[0].PaymentDate; got != "10/01/2026" {
		t.Errorf("row 0 payment date = %q, want 10/01/2026", got)
	}
	// Row 1 has no invoice date; the payment date column falls back to it.
	if got := export.Rows[1].InvoiceDate; got != "01/11/2025" {
		t.Errorf("row 1 invoice date = %q, want fallback to payment date", got)
	}
	if got := export.Rows[1].PaymentDate; got != "10/02/2026" {
		t.Errorf("row 1 payment date = %q, want 10/02/2026", got)
	}
	// Unparseable invoice date degrades that row only.
	if got := export.Rows[2].PaymentDate; got != "" {
		t.Errorf("row 2 payment date = %q, want empty", got)
	}

	if export.Total != 750.5 {
		t.Errorf("Total = %v, want 750.5", export.Total)
	}
}

func TestBuildExportPreservesOrder(t *testing.T) {
	calc := NewCalculator(nil)
	rows := []ledger.Row{
		{AccountID: "3"}, {AccountID: "1"}, {AccountID: "2"},
	}
	export := calc.BuildExport(rows, "x")
	for i, want := range []string{"3", "1", "2"} {
		if export.Rows[i].AccountID != want {
			t.Errorf("row %d account = %q, want %q", i, export.Rows[i].AccountID, want)
		}
	}
}
