package cache

import (
	"context"
	"database/sql"

	"github.com/taskdaemon/taskstore/internal/taskerr"
)

// UpsertRecord inserts or replaces the cached body and timestamp for
// (collection, id). Must be called within a transaction that also
// replaces the record's index rows (ReplaceIndexes) so the two tables
// never disagree about which identities exist.
func UpsertRecord(ctx context.Context, tx *sql.Tx, collection, id, body string, updatedAt int64) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO records (collection, id, body, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(collection, id) DO UPDATE SET
			body = excluded.body,
			updated_at = excluded.updated_at
	`, collection, id, body, updatedAt)
	if err != nil {
		return &taskerr.CacheError{Collection: collection, Op: "upsert-record", Err: err}
	}
	return nil
}

// DeleteRecord removes the cached row for (collection, id) and, via the
// ON DELETE CASCADE foreign key, every index row for that identity.
func DeleteRecord(ctx context.Context, tx *sql.Tx, collection, id string) error {
	_, err := tx.ExecContext(ctx, `
		DELETE FROM records WHERE collection = ? AND id = ?
	`, collection, id)
	if err != nil {
		return &taskerr.CacheError{Collection: collection, Op: "delete-record", Err: err}
	}
	return nil
}

// Get returns the stored body for (collection, id), or ok=false if absent.
func Get(ctx context.Context, db *sql.DB, collection, id string) (body string, ok bool, err error) {
	row := db.QueryRowContext(ctx, `
		SELECT body FROM records WHERE collection = ? AND id = ?
	`, collection, id)

	if err := row.Scan(&body); err != nil {
		if err == sql.ErrNoRows {
			return "", false, nil
		}
		return "", false, &taskerr.CacheError{Collection: collection, Op: "get", Err: err}
	}
	return body, true, nil
}

// Clear removes every records and record_indexes row for collection,
// used by sync() before repopulating from the log.
func Clear(ctx context.Context, tx *sql.Tx, collection string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM records WHERE collection = ?`, collection); err != nil {
		return &taskerr.CacheError{Collection: collection, Op: "clear", Err: err}
	}
	return nil
}
