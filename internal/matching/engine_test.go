package matching

import (
	"reflect"
	"testing"

	"github.com/rise-pro/debt-aging/internal/ledger"
)

func row(seq int, account, name string, amount *float64) ledger.Row {
	return ledger.Row{
		SequenceIndex:    seq,
		AccountID:        account,
		CounterpartyName: name,
		Amount:           amount,
	}
}

func categories(rows []ledger.Row) []ledger.Category {
	out := make([]ledger.Category, len(rows))
	for i, r := range rows {
		out[i] = r.Category
	}
	return out
}

func TestClassifyExactPairsWithinAccount(t *testing.T) {
	rows := []ledger.Row{
		row(0, "100", "A", ledger.Float(500)),
		row(1, "100", "A", ledger.Float(-500)),
		row(2, "100", "A", ledger.Float(120.5)),
	}

	result := NewEngine(Config{}).Classify(rows)

	want := []ledger.Category{
		ledger.CategoryExactMatch,
		ledger.CategoryExactMatch,
		ledger.CategorySpecial,
	}
	if got := categories(result.Rows); !reflect.DeepEqual(got, want) {
		t.Errorf("categories = %v, want %v", got, want)
	}
	if result.ExactCounts["100"] != 2 {
		t.Errorf("ExactCounts[100] = %d, want 2", result.ExactCounts["100"])
	}
}

func TestClassifyPassOrdering(t *testing.T) {
	// An exact pair also satisfies the tolerant predicates, but pass 1
	// must consume it first.
	rows := []ledger.Row{
		row(0, "100", "A", ledger.Float(250)),
		row(1, "100", "A", ledger.Float(-250)),
	}

	result := NewEngine(Config{}).Classify(rows)

	for i, r := range result.Rows {
		if r.Category != ledger.CategoryExactMatch {
			t.Errorf("row %d category = %q, want %q", i, r.Category, ledger.CategoryExactMatch)
		}
	}
	if len(result.TolerantCounts) != 0 || len(result.GlobalCounts) != 0 {
		t.Errorf("later passes consumed rows: tolerant=%v global=%v",
			result.TolerantCounts, result.GlobalCounts)
	}
}

func TestClassifyFirstFitNotBestFit(t *testing.T) {
	// Positives [10, 10], negatives [-10, -9.999999]. First-fit pairs
	// the first positive with the first negative it reaches in scan
	// order, not the numerically closest.
	rows := []ledger.Row{
		row(0, "100", "A", ledger.Float(10)),
		row(1, "100", "A", ledger.Float(10)),
		row(2, "100", "A", ledger.Float(-10)),
		row(3, "100", "A", ledger.Float(-9.999999)),
	}

	result := NewEngine(Config{}).Classify(rows)

	// Pass 1: first positive takes -10 exactly. The second positive has
	// no exact partner left, so pass 2 settles it against -9.999999.
	want := []ledger.Category{
		ledger.CategoryExactMatch,
		ledger.CategoryTolerantMatch,
		ledger.CategoryExactMatch,
		ledger.CategoryTolerantMatch,
	}
	if got := categories(result.Rows); !reflect.DeepEqual(got, want) {
		t.Errorf("categories = %v, want %v", got, want)
	}
	if result.ExactCounts["100"] != 2 || result.TolerantCounts["100"] != 2 {
		t.Errorf("counts exact=%d tolerant=%d, want 2 and 2",
			result.ExactCounts["100"], result.TolerantCounts["100"])
	}
}

func TestClassifyTolerantWithinConfiguredTolerance(t *testing.T) {
	rows := []ledger.Row{
		row(0, "200", "B", ledger.Float(100)),
		row(1, "200", "B", ledger.Float(-98.5)),
		row(2, "200", "B", ledger.Float(50)),
		row(3, "200", "B", ledger.Float(-45)), // off by 5, beyond tolerance
	}

	result := NewEngine(Config{Tolerance: 2}).Classify(rows)

	want := []ledger.Category{
		ledger.CategoryTolerantMatch,
		ledger.CategoryTolerantMatch,
		ledger.CategorySpecial,
		ledger.CategorySpecial,
	}
	if got := categories(result.Rows); !reflect.DeepEqual(got, want) {
		t.Errorf("categories = %v, want %v", got, want)
	}
}

func TestClassifyGlobalCreditsBothAccounts(t *testing.T) {
	rows := []ledger.Row{
		row(0, "X", "Xname", ledger.Float(300)),
		row(1, "Y", "Yname", ledger.Float(-299)),
	}

	result := NewEngine(Config{}).Classify(rows)

	for i, r := range result.Rows {
		if r.Category != ledger.CategoryGlobalMatch {
			t.Fatalf("row %d category = %q, want %q", i, r.Category, ledger.CategoryGlobalMatch)
		}
	}
	if result.GlobalCounts["X"] != 1 {
		t.Errorf("GlobalCounts[X] = %d, want 1", result.GlobalCounts["X"])
	}
	if result.GlobalCounts["Y"] != 1 {
		t.Errorf("GlobalCounts[Y] = %d, want 1", result.GlobalCounts["Y"])
	}
}

func TestClassifyTransferTagIgnoresAmount(t *testing.T) {
	rows := []ledger.Row{
		{SequenceIndex: 0, AccountID: "300", TransactionType: ledger.TransferTransactionType, Amount: ledger.Float(77)},
		{SequenceIndex: 1, AccountID: "300", TransactionType: ledger.TransferTransactionType},
		{SequenceIndex: 2, AccountID: "300", TransactionType: "חשב", Amount: ledger.Float(5)},
	}

	result := NewEngine(Config{}).Classify(rows)

	if got := result.Rows[0].Category; got != ledger.CategoryTransferTag {
		t.Errorf("row 0 category = %q, want transfer_tag", got)
	}
	if got := result.Rows[1].Category; got != ledger.CategoryTransferTag {
		t.Errorf("row 1 (no amount) category = %q, want transfer_tag", got)
	}
	if got := result.Rows[2].Category; got != ledger.CategorySpecial {
		t.Errorf("row 2 category = %q, want special", got)
	}
}

func TestClassifyUnparseableAmountStaysUnclassified(t *testing.T) {
	rows := []ledger.Row{
		row(0, "400", "C", ledger.ParseAmount("")),
		row(1, "400", "C", ledger.ParseAmount("not a number")),
		row(2, "400", "C", ledger.Float(0)),
		row(3, "400", "C", ledger.Float(9)),
	}

	result := NewEngine(Config{}).Classify(rows)

	for _, i := range []int{0, 1, 2} {
		if got := result.Rows[i].Category; got != ledger.CategoryUnclassified {
			t.Errorf("row %d category = %q, want unclassified", i, got)
		}
	}
	if got := result.Rows[3].Category; got != ledger.CategorySpecial {
		t.Errorf("row 3 category = %q, want special", got)
	}

	totals := result.Totals()
	if totals[ledger.CategoryUnclassified] != 0 {
		t.Errorf("unclassified rows leaked into totals: %v", totals)
	}
	if totals[ledger.CategorySpecial] != 1 {
		t.Errorf("special total = %d, want 1", totals[ledger.CategorySpecial])
	}
	if result.TotalRows() != 4 {
		t.Errorf("TotalRows = %d, want 4", result.TotalRows())
	}
}

func TestClassifyPartitionInvariant(t *testing.T) {
	rows := []ledger.Row{
		row(0, "A", "", ledger.Float(100)),
		row(1, "A", "", ledger.Float(-100)),
		row(2, "A", "", ledger.Float(51)),
		row(3, "A", "", ledger.Float(-50)),
		row(4, "B", "", ledger.Float(200)),
		row(5, "C", "", ledger.Float(-199.5)),
		{SequenceIndex: 6, AccountID: "D", TransactionType: ledger.TransferTransactionType, Amount: ledger.Float(12)},
		row(7, "E", "", ledger.Float(1234.56)),
	}

	result := NewEngine(Config{}).Classify(rows)

	terminal := map[ledger.Category]bool{
		ledger.CategoryExactMatch:    true,
		ledger.CategoryTolerantMatch: true,
		ledger.CategoryGlobalMatch:   true,
		ledger.CategoryTransferTag:   true,
		ledger.CategorySpecial:       true,
	}
	for i, r := range result.Rows {
		if !terminal[r.Category] {
			t.Errorf("row %d with parseable nonzero amount ended in %q", i, r.Category)
		}
	}

	total := 0
	for _, n := range result.Totals() {
		total += n
	}
	if total != len(rows) {
		t.Errorf("category totals sum to %d, want %d", total, len(rows))
	}
}

func TestClassifyDeterminism(t *testing.T) {
	rows := []ledger.Row{
		row(0, "A", "x", ledger.Float(10)),
		row(1, "B", "y", ledger.Float(10)),
		row(2, "A", "x", ledger.Float(-10)),
		row(3, "B", "y", ledger.Float(-9.5)),
		row(4, "C", "z", ledger.Float(3)),
		row(5, "A", "x", ledger.ParseAmount("")),
		{SequenceIndex: 6, AccountID: "D", TransactionType: ledger.TransferTransactionType, Amount: ledger.Float(7)},
	}

	engine := NewEngine(Config{})
	first := engine.Classify(rows)
	second := engine.Classify(rows)

	if !reflect.DeepEqual(first.Rows, second.Rows) {
		t.Errorf("re-run produced different rows:\nfirst:  %+v\nsecond: %+v", first.Rows, second.Rows)
	}
	if !reflect.DeepEqual(first.ExactCounts, second.ExactCounts) ||
		!reflect.DeepEqual(first.TolerantCounts, second.TolerantCounts) ||
		!reflect.DeepEqual(first.GlobalCounts, second.GlobalCounts) {
		t.Errorf("re-run produced different counts")
	}
}

func TestClassifyDoesNotMutateInput(t *testing.T) {
	rows := []ledger.Row{
		row(0, "A", "x", ledger.Float(10)),
		row(1, "A", "x", ledger.Float(-10)),
	}

	_ = NewEngine(Config{}).Classify(rows)

	for i, r := range rows {
		if r.Category != "" {
			t.Errorf("input row %d mutated: category = %q", i, r.Category)
		}
	}
}
