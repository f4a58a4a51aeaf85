package inmemory

import (
	"context"
	"testing"
	"time"

	"github.com/rise-pro/debt-aging/internal/drafts"
	"github.com/rise-pro/debt-aging/internal/jobs"
)

func TestQueueProcessesJob(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := NewStore()
	queue := NewQueue(10, store)

	processed := make(chan *jobs.SendDraftsJob, 1)
	handler := func(ctx context.Context, job jobs.Job) error {
		processed <- job.(*jobs.SendDraftsJob)
		return nil
	}

	if err := queue.Start(ctx, handler); err != nil {
		t.Fatalf("Start: %v", err)
	}

	job := &jobs.SendDraftsJob{
		RunID:  "run-1",
		Drafts: []drafts.Draft{{AccountID: "100", DisplayName: "ספק אחד"}},
	}
	if err := queue.PublishSendDrafts(ctx, job); err != nil {
		t.Fatalf("PublishSendDrafts: %v", err)
	}
	if job.JobID == "" {
		t.Fatal("job ID not assigned on publish")
	}
	if job.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want default 3", job.MaxRetries)
	}

	select {
	case got := <-processed:
		if got.RunID != "run-1" || len(got.Drafts) != 1 {
			t.Errorf("handler received job %+v", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("job never reached the handler")
	}

	// Completion status lands in the store.
	deadline := time.Now().Add(2 * time.Second)
	for {
		saved, err := store.GetJob(ctx, job.JobID)
		if err != nil {
			t.Fatalf("GetJob: %v", err)
		}
		if saved.Status == jobs.JobStatusCompleted {
			if saved.CompletedAt == nil {
				t.Error("CompletedAt not set on completed job")
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("job status = %q, want completed", saved.Status)
		}
		time.Sleep(10 * time.Millisecond)
	}

	if err := queue.Stop(context.Background()); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if err := queue.PublishSendDrafts(ctx, &jobs.SendDraftsJob{RunID: "run-2"}); err == nil {
		t.Error("publish on closed queue did not fail")
	}
}

func TestStoreFilters(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	seed := []*jobs.SendDraftsJob{
		{JobID: "a", RunID: "run-1", Status: jobs.JobStatusCompleted},
		{JobID: "b", RunID: "run-1", Status: jobs.JobStatusFailed},
		{JobID: "c", RunID: "run-2", Status: jobs.JobStatusCompleted},
	}
	for _, job := range seed {
		if err := store.SaveJob(ctx, job); err != nil {
			t.Fatalf("SaveJob: %v", err)
		}
	}

	byRun, err := store.ListJobs(ctx, jobs.JobFilter{RunID: "run-1"})
	if err != nil {
		t.Fatalf("ListJobs: %v", err)
	}
	if len(byRun) != 2 {
		t.Errorf("run-1 jobs = %d, want 2", len(byRun))
	}

	byStatus, err := store.ListJobs(ctx, jobs.JobFilter{Status: jobs.JobStatusFailed})
	if err != nil {
		t.Fatalf("ListJobs: %v", err)
	}
	if len(byStatus) != 1 || byStatus[0].JobID != "b" {
		t.Errorf("failed jobs = %+v", byStatus)
	}

	if err := store.SaveJob(ctx, &jobs.SendDraftsJob{}); err == nil {
		t.Error("SaveJob accepted a job without an ID")
	}
}

func TestStoreListsInCreationOrder(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	base := time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"c", "a", "b"} {
		job := &jobs.SendDraftsJob{JobID: id, CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		if err := store.SaveJob(ctx, job); err != nil {
			t.Fatalf("SaveJob: %v", err)
		}
	}

	// Pagination is stable across calls: creation order, not map order.
	for i := 0; i < 3; i++ {
		page, err := store.ListJobs(ctx, jobs.JobFilter{Offset: 1, Limit: 1})
		if err != nil {
			t.Fatalf("ListJobs: %v", err)
		}
		if len(page) != 1 || page[0].JobID != "a" {
			t.Fatalf("page = %+v, want the second-created job", page)
		}
	}

	all, err := store.ListJobs(ctx, jobs.JobFilter{})
	if err != nil {
		t.Fatalf("ListJobs: %v", err)
	}
	for i, want := range []string{"c", "a", "b"} {
		if all[i].JobID != want {
			t.Errorf("all[%d] = %q, want %q", i, all[i].JobID, want)
		}
	}
}

func TestStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	if err := store.SaveJob(ctx, &jobs.SendDraftsJob{JobID: "a", RunID: "run-1"}); err != nil {
		t.Fatalf("SaveJob: %v", err)
	}

	got, err := store.GetJob(ctx, "a")
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	got.RunID = "mutated"

	again, err := store.GetJob(ctx, "a")
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if again.RunID != "run-1" {
		t.Errorf("stored job mutated through returned copy: %q", again.RunID)
	}
}
