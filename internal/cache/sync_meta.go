package cache

import (
	"context"
	"database/sql"

	"github.com/taskdaemon/taskstore/internal/taskerr"
)

// SyncMeta is the recorded staleness checkpoint for one collection.
type SyncMeta struct {
	FileMTimeS int64
	LastSyncMs int64
}

// RecordSyncMetadata upserts the checkpoint for collection within tx.
func RecordSyncMetadata(ctx context.Context, tx *sql.Tx, collection string, fileMTimeS, nowMs int64) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO sync_metadata (collection, last_sync_ms, file_mtime_s)
		VALUES (?, ?, ?)
		ON CONFLICT(collection) DO UPDATE SET
			last_sync_ms = excluded.last_sync_ms,
			file_mtime_s = excluded.file_mtime_s
	`, collection, nowMs, fileMTimeS)
	if err != nil {
		return &taskerr.CacheError{Collection: collection, Op: "record-sync-metadata", Err: err}
	}
	return nil
}

// ReadSyncMetadata returns the checkpoint for collection, or ok=false if
// no sync has ever run for it.
func ReadSyncMetadata(ctx context.Context, db *sql.DB, collection string) (meta SyncMeta, ok bool, err error) {
	row := db.QueryRowContext(ctx, `
		SELECT file_mtime_s, last_sync_ms FROM sync_metadata WHERE collection = ?
	`, collection)

	if err := row.Scan(&meta.FileMTimeS, &meta.LastSyncMs); err != nil {
		if err == sql.ErrNoRows {
			return SyncMeta{}, false, nil
		}
		return SyncMeta{}, false, &taskerr.CacheError{Collection: collection, Op: "read-sync-metadata", Err: err}
	}
	return meta, true, nil
}

// DeleteSyncMetadataExcept removes sync_metadata rows for any collection
// not present in keep — used by sync() to drop bookkeeping for log files
// that have since been removed from the store directory.
func DeleteSyncMetadataExcept(ctx context.Context, tx *sql.Tx, keep []string) error {
	known := make(map[string]struct{}, len(keep))
	for _, c := range keep {
		known[c] = struct{}{}
	}

	rows, err := tx.QueryContext(ctx, `SELECT collection FROM sync_metadata`)
	if err != nil {
		return &taskerr.CacheError{Op: "list-sync-metadata", Err: err}
	}
	var stale []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			rows.Close()
			return &taskerr.CacheError{Op: "scan-sync-metadata", Err: err}
		}
		if _, ok := known[c]; !ok {
			stale = append(stale, c)
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return &taskerr.CacheError{Op: "iterate-sync-metadata", Err: err}
	}
	rows.Close()

	for _, c := range stale {
		if _, err := tx.ExecContext(ctx, `DELETE FROM sync_metadata WHERE collection = ?`, c); err != nil {
			return &taskerr.CacheError{Collection: c, Op: "delete-sync-metadata", Err: err}
		}
	}
	return nil
}

// ListMetaCollections returns every collection with a sync_metadata row.
func ListMetaCollections(ctx context.Context, db *sql.DB) ([]string, error) {
	rows, err := db.QueryContext(ctx, `SELECT collection FROM sync_metadata ORDER BY collection`)
	if err != nil {
		return nil, &taskerr.CacheError{Op: "list-sync-metadata", Err: err}
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, &taskerr.CacheError{Op: "scan-sync-metadata", Err: err}
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
