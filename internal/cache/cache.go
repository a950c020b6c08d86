// Package cache implements the rebuildable indexed query projection of the
// log files: an embedded SQLite database in WAL journal mode, accessed
// exclusively through parameterized statements.
package cache

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/taskdaemon/taskstore/internal/taskerr"
)

//go:embed schema.sql
var schemaSQL string

// currentSchemaVersion is the SQLite-internal schema generation, tracked
// via PRAGMA user_version. This is distinct from the store-level
// `.version` marker file described in the on-disk layout: that file
// tracks the format of the whole store directory (log files included),
// while this tracks migrations local to store.db.
const currentSchemaVersion = 1

// Cache wraps a single connection to the embedded relational database.
// Only one Store instance may own a Cache at a time: SQLite itself
// is configured for a single writer via SetMaxOpenConns(1).
type Cache struct {
	db *sql.DB
}

// Open creates or opens the SQLite database at path, applies pragmas,
// and runs any pending schema migrations. Safe to call repeatedly.
func Open(path string) (*Cache, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, &taskerr.CacheError{Op: "open", Err: err}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, &taskerr.CacheError{Op: "ping", Err: err}
	}

	// SQLite supports only one writer at a time; a single pooled
	// connection avoids SQLITE_BUSY from this process's own goroutines.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, err
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Cache{db: db}, nil
}

// Close closes the underlying database connection.
func (c *Cache) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// DB exposes the underlying *sql.DB for components that need to run
// ad-hoc read queries (e.g. metrics). Prefer the typed methods below for
// anything on the write path.
func (c *Cache) DB() *sql.DB {
	return c.db
}

// WithTx runs fn inside a single database transaction, committing on a
// nil return and rolling back otherwise. Every multi-statement cache
// operation (a write-through record+index upsert, a full sync) goes
// through this so the cache never observes a half-applied mutation.
func (c *Cache) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return &taskerr.CacheError{Op: "begin", Err: err}
	}
	defer tx.Rollback() //nolint:errcheck // no-op once committed

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return &taskerr.CacheError{Op: "commit", Err: err}
	}
	return nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return &taskerr.CacheError{Op: fmt.Sprintf("pragma %q", p), Err: err}
		}
	}
	return nil
}

func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return &taskerr.CacheError{Op: "create-schema", Err: err}
	}
	return runMigrations(db)
}
