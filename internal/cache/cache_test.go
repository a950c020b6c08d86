package cache

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/taskdaemon/taskstore/internal/record"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	path := filepath.Join(t.TempDir(), "store.db")
	c, err := Open(path)
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.db")

	for i := 0; i < 3; i++ {
		c, err := Open(path)
		if err != nil {
			t.Fatalf("open iteration %d: %v", i, err)
		}
		c.Close()
	}
}

func TestUpsertAndGet_RoundTrip(t *testing.T) {
	ctx := context.Background()
	c := openTestCache(t)

	err := c.WithTx(ctx, func(tx *sql.Tx) error {
		if err := UpsertRecord(ctx, tx, "tasks", "a", `{"status":"pending"}`, 1000); err != nil {
			return err
		}
		return ReplaceIndexes(ctx, tx, "tasks", "a", map[string]record.Scalar{
			"status": record.Text("pending"),
		})
	})
	if err != nil {
		t.Fatalf("write: %v", err)
	}

	body, ok, err := Get(ctx, c.DB(), "tasks", "a")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok {
		t.Fatal("expected record to be present")
	}
	if body != `{"status":"pending"}` {
		t.Errorf("unexpected body: %s", body)
	}
}

func TestDeleteRecord_RemovesIndexRowsViaCascade(t *testing.T) {
	ctx := context.Background()
	c := openTestCache(t)

	_ = c.WithTx(ctx, func(tx *sql.Tx) error {
		_ = UpsertRecord(ctx, tx, "tasks", "a", `{}`, 1000)
		return ReplaceIndexes(ctx, tx, "tasks", "a", map[string]record.Scalar{"status": record.Text("pending")})
	})

	_ = c.WithTx(ctx, func(tx *sql.Tx) error {
		return DeleteRecord(ctx, tx, "tasks", "a")
	})

	_, ok, err := Get(ctx, c.DB(), "tasks", "a")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ok {
		t.Fatal("expected record to be absent after delete")
	}

	var count int
	if err := c.DB().QueryRow(`SELECT COUNT(*) FROM record_indexes WHERE collection = 'tasks' AND id = 'a'`).Scan(&count); err != nil {
		t.Fatalf("count index rows: %v", err)
	}
	if count != 0 {
		t.Errorf("expected index rows to cascade-delete, found %d", count)
	}
}

func TestReplaceIndexes_IsAtomicReplace(t *testing.T) {
	ctx := context.Background()
	c := openTestCache(t)

	_ = c.WithTx(ctx, func(tx *sql.Tx) error {
		_ = UpsertRecord(ctx, tx, "tasks", "a", `{}`, 1000)
		return ReplaceIndexes(ctx, tx, "tasks", "a", map[string]record.Scalar{
			"status":   record.Text("pending"),
			"priority": record.Int(3),
		})
	})

	_ = c.WithTx(ctx, func(tx *sql.Tx) error {
		return ReplaceIndexes(ctx, tx, "tasks", "a", map[string]record.Scalar{
			"status": record.Text("done"),
		})
	})

	var count int
	if err := c.DB().QueryRow(`SELECT COUNT(*) FROM record_indexes WHERE collection = 'tasks' AND id = 'a'`).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly 1 index row after replace, got %d", count)
	}
}

func TestClear_RemovesAllRowsForCollectionOnly(t *testing.T) {
	ctx := context.Background()
	c := openTestCache(t)

	_ = c.WithTx(ctx, func(tx *sql.Tx) error {
		_ = UpsertRecord(ctx, tx, "tasks", "a", `{}`, 1000)
		_ = UpsertRecord(ctx, tx, "notes", "b", `{}`, 1000)
		return nil
	})

	_ = c.WithTx(ctx, func(tx *sql.Tx) error {
		return Clear(ctx, tx, "tasks")
	})

	_, ok, _ := Get(ctx, c.DB(), "tasks", "a")
	if ok {
		t.Fatal("expected tasks/a to be cleared")
	}
	_, ok, _ = Get(ctx, c.DB(), "notes", "b")
	if !ok {
		t.Fatal("expected notes/b to survive clearing tasks")
	}
}

func TestSyncMetadata_RoundTripAndDeleteExcept(t *testing.T) {
	ctx := context.Background()
	c := openTestCache(t)

	_ = c.WithTx(ctx, func(tx *sql.Tx) error {
		_ = RecordSyncMetadata(ctx, tx, "tasks", 100, 1000)
		return RecordSyncMetadata(ctx, tx, "notes", 200, 2000)
	})

	meta, ok, err := ReadSyncMetadata(ctx, c.DB(), "tasks")
	if err != nil || !ok {
		t.Fatalf("expected metadata for tasks: ok=%v err=%v", ok, err)
	}
	if meta.FileMTimeS != 100 || meta.LastSyncMs != 1000 {
		t.Errorf("unexpected metadata: %+v", meta)
	}

	_ = c.WithTx(ctx, func(tx *sql.Tx) error {
		return DeleteSyncMetadataExcept(ctx, tx, []string{"tasks"})
	})

	if _, ok, _ := ReadSyncMetadata(ctx, c.DB(), "notes"); ok {
		t.Fatal("expected notes metadata to be deleted")
	}
	if _, ok, _ := ReadSyncMetadata(ctx, c.DB(), "tasks"); !ok {
		t.Fatal("expected tasks metadata to survive")
	}
}
