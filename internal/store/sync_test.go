package store_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/taskdaemon/taskstore/internal/cache"
	"github.com/taskdaemon/taskstore/internal/record"
	"github.com/taskdaemon/taskstore/internal/store"
)

// TestReopen_RebuildsCacheFromExternallyEditedLog grounds spec Scenario
// 2/3: a log file changed outside the process (e.g. by a git checkout)
// must be picked up on the next Open, not ignored because the cache
// still has stale rows.
func TestReopen_RebuildsCacheFromExternallyEditedLog(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s1, err := store.Open(dir)
	if err != nil {
		t.Fatalf("open 1: %v", err)
	}
	tasks1 := store.Register(s1, "tasks", deserializeTestTask)
	mustCreate(t, ctx, tasks1, testTask{ID: "a", UpdatedMs: 1000, Status: "pending", Priority: 1})
	s1.Close()

	// Simulate an external process appending directly to the log file
	// (e.g. a merge driver or a checked-out branch).
	path := filepath.Join(dir, "tasks.jsonl")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open log for external append: %v", err)
	}
	if _, err := f.WriteString(`{"id":"b","updated_at":5000,"status":"done","priority":2}` + "\n"); err != nil {
		t.Fatalf("external append: %v", err)
	}
	f.Close()

	// Ensure the new mtime is observably different from whatever
	// sync_metadata recorded, on filesystems with coarse mtime
	// resolution.
	future := time.Now().Add(2 * time.Second)
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	s2, err := store.Open(dir)
	if err != nil {
		t.Fatalf("open 2: %v", err)
	}
	defer s2.Close()
	tasks2 := store.Register(s2, "tasks", deserializeTestTask)

	got, ok, err := tasks2.Get(ctx, "b")
	if err != nil || !ok {
		t.Fatalf("expected externally-appended record to surface after reopen: ok=%v err=%v", ok, err)
	}
	if got.Status != "done" {
		t.Errorf("unexpected status: %+v", got)
	}
}

func TestIsStale_FalseImmediatelyAfterSync(t *testing.T) {
	ctx := context.Background()
	s, _ := openTestStore(t)
	tasks := store.Register(s, "tasks", deserializeTestTask)
	mustCreate(t, ctx, tasks, testTask{ID: "a", UpdatedMs: 1000, Status: "pending", Priority: 1})

	if err := s.Sync(ctx); err != nil {
		t.Fatalf("sync: %v", err)
	}
	stale, err := s.IsStale(ctx)
	if err != nil {
		t.Fatalf("is stale: %v", err)
	}
	if stale {
		t.Error("expected store to be fresh immediately after Sync")
	}
}

func TestSync_RebuildsIndexesForRegisteredCollection(t *testing.T) {
	ctx := context.Background()
	s, _ := openTestStore(t)
	tasks := store.Register(s, "tasks", deserializeTestTask)
	mustCreate(t, ctx, tasks, testTask{ID: "a", UpdatedMs: 1000, Status: "pending", Priority: 7})

	if err := s.Sync(ctx); err != nil {
		t.Fatalf("sync: %v", err)
	}

	rows, err := tasks.List(ctx, store.ListOptions{
		Predicates: []cache.Predicate{
			{Field: "priority", Operator: cache.Eq, Value: record.Int(7)},
		},
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 1 || rows[0].Priority != 7 {
		t.Fatalf("expected resynced index-backed row, got %+v", rows)
	}
}

func TestCompact_DoesNotChangeEffectiveRevisions(t *testing.T) {
	ctx := context.Background()
	s, _ := openTestStore(t)
	tasks := store.Register(s, "tasks", deserializeTestTask)

	mustCreate(t, ctx, tasks, testTask{ID: "a", UpdatedMs: 1000, Status: "pending", Priority: 1})
	if err := tasks.Update(ctx, testTask{ID: "a", UpdatedMs: 2000, Status: "done", Priority: 1}); err != nil {
		t.Fatalf("update: %v", err)
	}

	if err := s.Compact("tasks"); err != nil {
		t.Fatalf("compact: %v", err)
	}
	if err := s.Sync(ctx); err != nil {
		t.Fatalf("sync after compact: %v", err)
	}

	got, ok, err := tasks.Get(ctx, "a")
	if err != nil || !ok {
		t.Fatalf("get after compact: ok=%v err=%v", ok, err)
	}
	if got.Status != "done" {
		t.Errorf("expected latest revision to survive compaction, got %+v", got)
	}
}
