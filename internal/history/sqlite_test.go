package history

import (
	"context"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRecordAndGetRun(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	started := time.Now().Add(-time.Minute).Truncate(time.Millisecond)
	run := &Run{
		ID:       "run-1",
		Started:  started,
		Finished: started.Add(30 * time.Second),
		Outcome:  "success",
		Bucket:   "docs-bucket",
		Created:  5,
		Updated:  2,
		Deleted:  1,
		Stages: []StageRecord{
			{Stage: "render", Result: "success", Duration: 12 * time.Second},
			{Stage: "sync", Result: "success", Duration: 15 * time.Second},
			{Stage: "invalidate", Result: "warning", Duration: time.Second, Error: "purge rejected"},
		},
	}
	if err := store.RecordRun(ctx, run); err != nil {
		t.Fatalf("RecordRun failed: %v", err)
	}

	got, err := store.GetRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if got.Outcome != "success" || got.Bucket != "docs-bucket" || got.Created != 5 {
		t.Fatalf("run fields wrong: %+v", got)
	}
	if len(got.Stages) != 3 {
		t.Fatalf("expected 3 stage records, got %d", len(got.Stages))
	}
	if got.Stages[2].Stage != "invalidate" || got.Stages[2].Error != "purge rejected" {
		t.Fatalf("stage order or error lost: %+v", got.Stages)
	}
	if !got.Started.Equal(started) {
		t.Fatalf("started time drifted: %v vs %v", got.Started, started)
	}
}

func TestListRunsNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	base := time.Now().Truncate(time.Millisecond)
	for i, id := range []string{"run-old", "run-mid", "run-new"} {
		run := &Run{
			ID:       id,
			Started:  base.Add(time.Duration(i) * time.Minute),
			Finished: base.Add(time.Duration(i)*time.Minute + 10*time.Second),
			Outcome:  "success",
		}
		if err := store.RecordRun(ctx, run); err != nil {
			t.Fatalf("RecordRun failed: %v", err)
		}
	}

	runs, err := store.ListRuns(ctx, 2)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != "run-new" || runs[1].ID != "run-mid" {
		t.Fatalf("ordering wrong: %v, %v", runs[0].ID, runs[1].ID)
	}
}

func TestGetRunMissing(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.GetRun(context.Background(), "absent"); err == nil {
		t.Fatal("expected error for missing run")
	}
}
