package history

import (
	"context"
	"testing"
	"time"
)

func TestMemoryRepositoryOrdering(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	base := time.Date(2025, 10, 1, 9, 0, 0, 0, time.UTC)
	for i, id := range []string{"run-1", "run-2", "run-3"} {
		err := repo.RecordRun(ctx, &RunRow{
			RunID:       id,
			Filename:    "aging.xlsx",
			TotalRows:   10 * (i + 1),
			ProcessedTS: base.Add(time.Duration(i) * time.Hour),
		})
		if err != nil {
			t.Fatalf("RecordRun: %v", err)
		}
	}

	runs, err := repo.ListRecentRuns(ctx, 0)
	if err != nil {
		t.Fatalf("ListRecentRuns: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("got %d runs, want 3", len(runs))
	}
	if runs[0].RunID != "run-3" || runs[2].RunID != "run-1" {
		t.Errorf("runs not most-recent-first: %q .. %q", runs[0].RunID, runs[2].RunID)
	}

	limited, err := repo.ListRecentRuns(ctx, 2)
	if err != nil {
		t.Fatalf("ListRecentRuns: %v", err)
	}
	if len(limited) != 2 || limited[0].RunID != "run-3" {
		t.Errorf("limited list = %d rows, first %q", len(limited), limited[0].RunID)
	}
}

func TestMemoryRepositoryStampsProcessedTS(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	if err := repo.RecordRun(ctx, &RunRow{RunID: "run-1"}); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}

	runs, err := repo.ListRecentRuns(ctx, 1)
	if err != nil {
		t.Fatalf("ListRecentRuns: %v", err)
	}
	if runs[0].ProcessedTS.IsZero() {
		t.Error("ProcessedTS not stamped on record")
	}
}
