package store

import (
	"errors"
	"reflect"
	"testing"

	"github.com/rise-pro/debt-aging/internal/ledger"
	"github.com/rise-pro/debt-aging/internal/matching"
)

func seededStore(t *testing.T) *Store {
	t.Helper()
	s := New(ledger.DefaultVocabulary())
	s.SetResult(&matching.Result{
		RunID: "run-1",
		Rows: []ledger.Row{
			{SequenceIndex: 0, AccountID: "100", CounterpartyName: "ספק אחד", Amount: ledger.Float(250), PaymentDate: "01/10/2025", Category: ledger.CategorySpecial},
			{SequenceIndex: 1, AccountID: "100", CounterpartyName: "ספק אחד", Amount: ledger.Float(-80), PaymentDate: "02/10/2025", Category: ledger.CategorySpecial},
			{SequenceIndex: 2, AccountID: "200", CounterpartyName: "ספק שני", Amount: ledger.Float(99.5), PaymentDate: "03/10/2025", Category: ledger.CategoryTransferTag},
		},
		ExactCounts:    map[string]int{},
		TolerantCounts: map[string]int{},
		GlobalCounts:   map[string]int{},
	})
	return s
}

func TestOperationsBeforeFirstRun(t *testing.T) {
	s := New(ledger.DefaultVocabulary())
	key := ledger.MatchKey{AccountID: "100"}

	if err := s.Move(ledger.CategorySpecial, ledger.CategoryReadyPayment, key); !errors.Is(err, ErrEmptyResultSet) {
		t.Errorf("Move error = %v, want ErrEmptyResultSet", err)
	}
	if err := s.Delete(ledger.CategorySpecial, key); !errors.Is(err, ErrEmptyResultSet) {
		t.Errorf("Delete error = %v, want ErrEmptyResultSet", err)
	}
	if _, err := s.BulkDeleteBySupplier(ledger.CategorySpecial, "x", ""); !errors.Is(err, ErrEmptyResultSet) {
		t.Errorf("BulkDeleteBySupplier error = %v, want ErrEmptyResultSet", err)
	}

	// GetCategory is read-only and reports empty, not an error.
	rows, err := s.GetCategory(ledger.CategorySpecial)
	if err != nil {
		t.Fatalf("GetCategory error = %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("GetCategory = %v, want empty", rows)
	}
}

func TestInvalidCategoryRejectedWithoutMutation(t *testing.T) {
	s := seededStore(t)
	key := ledger.MatchKey{AccountID: "100", CounterpartyName: "ספק אחד", Amount: 250, Date: "01/10/2025"}

	if err := s.Move("nonsense", ledger.CategoryReadyPayment, key); !errors.Is(err, ErrInvalidCategory) {
		t.Errorf("Move from unknown category error = %v, want ErrInvalidCategory", err)
	}
	if err := s.Move(ledger.CategorySpecial, "nonsense", key); !errors.Is(err, ErrInvalidCategory) {
		t.Errorf("Move to unknown category error = %v, want ErrInvalidCategory", err)
	}
	if _, err := s.GetCategory("nonsense"); !errors.Is(err, ErrInvalidCategory) {
		t.Errorf("GetCategory error = %v, want ErrInvalidCategory", err)
	}

	if got := s.TotalRows(); got != 3 {
		t.Errorf("TotalRows = %d after rejected operations, want 3", got)
	}
}

func TestMoveRoundTrip(t *testing.T) {
	s := seededStore(t)
	key := ledger.MatchKey{AccountID: "100", CounterpartyName: "ספק אחד", Amount: 250, Date: "01/10/2025"}

	before, err := s.GetCategory(ledger.CategorySpecial)
	if err != nil {
		t.Fatal(err)
	}
	original := before[0]

	if err := s.Move(ledger.CategorySpecial, ledger.CategoryReadyPayment, key); err != nil {
		t.Fatalf("Move: %v", err)
	}

	ready, _ := s.GetCategory(ledger.CategoryReadyPayment)
	if len(ready) != 1 {
		t.Fatalf("ready_payment has %d rows, want 1", len(ready))
	}
	special, _ := s.GetCategory(ledger.CategorySpecial)
	if len(special) != 1 {
		t.Fatalf("special has %d rows after move, want 1", len(special))
	}

	if err := s.Move(ledger.CategoryReadyPayment, ledger.CategorySpecial, key); err != nil {
		t.Fatalf("Move back: %v", err)
	}

	special, _ = s.GetCategory(ledger.CategorySpecial)
	if len(special) != 2 {
		t.Fatalf("special has %d rows after round trip, want 2", len(special))
	}
	// The row was appended, so it is now last; every field except
	// Category must be unchanged, and Category is back to special.
	restored := special[len(special)-1]
	if !reflect.DeepEqual(restored, original) {
		t.Errorf("round trip changed the row:\ngot  %+v\nwant %+v", restored, original)
	}
	if got := s.TotalRows(); got != 3 {
		t.Errorf("TotalRows = %d after round trip, want 3", got)
	}
}

func TestMoveNotFoundLeavesStoreUnchanged(t *testing.T) {
	s := seededStore(t)
	key := ledger.MatchKey{AccountID: "100", CounterpartyName: "ספק אחד", Amount: 999, Date: "01/10/2025"}

	err := s.Move(ledger.CategorySpecial, ledger.CategoryReadyPayment, key)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Move error = %v, want ErrNotFound", err)
	}
	if got := s.TotalRows(); got != 3 {
		t.Errorf("TotalRows = %d, want 3", got)
	}
	ready, _ := s.GetCategory(ledger.CategoryReadyPayment)
	if len(ready) != 0 {
		t.Errorf("ready_payment gained rows on failed move: %v", ready)
	}
}

func TestMoveTakesFirstMatchInStoredOrder(t *testing.T) {
	s := New(ledger.DefaultVocabulary())
	s.SetResult(&matching.Result{
		RunID: "run-dup",
		Rows: []ledger.Row{
			{SequenceIndex: 0, AccountID: "100", CounterpartyName: "ספק", Amount: ledger.Float(50), PaymentDate: "01/10/2025", Details: "first", Category: ledger.CategorySpecial},
			{SequenceIndex: 1, AccountID: "100", CounterpartyName: "ספק", Amount: ledger.Float(50), PaymentDate: "01/10/2025", Details: "second", Category: ledger.CategorySpecial},
		},
	})
	key := ledger.MatchKey{AccountID: "100", CounterpartyName: "ספק", Amount: 50, Date: "01/10/2025"}

	if err := s.Move(ledger.CategorySpecial, ledger.CategoryCommand, key); err != nil {
		t.Fatalf("Move: %v", err)
	}
	moved, _ := s.GetCategory(ledger.CategoryCommand)
	if len(moved) != 1 || moved[0].Details != "first" {
		t.Errorf("moved row = %+v, want the first match in stored order", moved)
	}
}

func TestDelete(t *testing.T) {
	s := seededStore(t)
	key := ledger.MatchKey{AccountID: "200", CounterpartyName: "ספק שני", Amount: 99.5, Date: "03/10/2025"}

	if err := s.Delete(ledger.CategoryTransferTag, key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	rows, _ := s.GetCategory(ledger.CategoryTransferTag)
	if len(rows) != 0 {
		t.Errorf("transfer_tag rows after delete = %v, want none", rows)
	}

	if err := s.Delete(ledger.CategoryTransferTag, key); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete error = %v, want ErrNotFound", err)
	}
}

func TestBulkDeleteBySupplierORSemantics(t *testing.T) {
	s := New(ledger.DefaultVocabulary())
	s.SetResult(&matching.Result{
		RunID: "run-bulk",
		Rows: []ledger.Row{
			{SequenceIndex: 0, AccountID: "100", CounterpartyName: "ספק אחד", Category: ledger.CategorySpecial},
			{SequenceIndex: 1, AccountID: "200", CounterpartyName: "ספק אחד", Category: ledger.CategorySpecial},
			{SequenceIndex: 2, AccountID: "100", CounterpartyName: "ספק אחר", Category: ledger.CategorySpecial},
			{SequenceIndex: 3, AccountID: "300", CounterpartyName: "ספק שלישי", Category: ledger.CategorySpecial},
		},
	})

	// Name OR account id: rows 0, 1 (name) and 2 (account) go; row 3 stays.
	removed, err := s.BulkDeleteBySupplier(ledger.CategorySpecial, "ספק אחד", "100")
	if err != nil {
		t.Fatalf("BulkDeleteBySupplier: %v", err)
	}
	if removed != 3 {
		t.Errorf("removed = %d, want 3", removed)
	}
	rows, _ := s.GetCategory(ledger.CategorySpecial)
	if len(rows) != 1 || rows[0].AccountID != "300" {
		t.Errorf("remaining rows = %+v, want only account 300", rows)
	}

	if _, err := s.BulkDeleteBySupplier(ledger.CategorySpecial, "ספק אחד", "100"); !errors.Is(err, ErrNotFound) {
		t.Errorf("repeat bulk delete error = %v, want ErrNotFound", err)
	}
}

func TestSetResultReplacesPreviousRun(t *testing.T) {
	s := seededStore(t)
	if got := s.RunID(); got != "run-1" {
		t.Fatalf("RunID = %q, want run-1", got)
	}

	s.SetResult(&matching.Result{
		RunID: "run-2",
		Rows: []ledger.Row{
			{SequenceIndex: 0, AccountID: "900", Amount: ledger.Float(1), Category: ledger.CategorySpecial},
		},
	})

	if got := s.RunID(); got != "run-2" {
		t.Errorf("RunID = %q, want run-2", got)
	}
	if got := s.TotalRows(); got != 1 {
		t.Errorf("TotalRows = %d after replacement, want 1", got)
	}
	transfer, _ := s.GetCategory(ledger.CategoryTransferTag)
	if len(transfer) != 0 {
		t.Errorf("previous run's rows survived replacement: %v", transfer)
	}
}

func TestCountsOmitEmptyCategories(t *testing.T) {
	s := seededStore(t)
	got := s.Counts()
	want := map[ledger.Category]int{
		ledger.CategorySpecial:     2,
		ledger.CategoryTransferTag: 1,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Counts = %v, want %v", got, want)
	}
}
