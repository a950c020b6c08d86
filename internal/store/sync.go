package store

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/taskdaemon/taskstore/internal/cache"
	"github.com/taskdaemon/taskstore/internal/journal"
)

// Sync rebuilds the cache from every log file in the store directory: for
// each collection it reads the effective latest revision per identity
// (tombstones excluded from the cache, but never dropped from the log),
// clears and repopulates the collection's cache rows in one transaction,
// and records a fresh checkpoint. Collections whose log file has since
// disappeared lose their checkpoint too.
//
// Sync does not hold the write mutex: it only reads log files (taking
// their own shared locks) and writes the cache, which is safe to run
// concurrently with foreground Create/Update/Delete calls from other
// processes touching the same directory.
func (s *Store) Sync(ctx context.Context) error {
	collections, err := journal.ListCollections(s.dir)
	if err != nil {
		return err
	}

	nowMs := time.Now().UnixMilli()

	return s.cache.WithTx(ctx, func(tx *sql.Tx) error {
		for _, collection := range collections {
			latest, err := journal.ReadAllLatest(s.dir, collection)
			if err != nil {
				return err
			}

			if err := cache.Clear(ctx, tx, collection); err != nil {
				return err
			}
			extract := s.extractors[collection]
			for id, entry := range latest {
				if entry.Deleted {
					continue
				}
				if err := cache.UpsertRecord(ctx, tx, collection, id, entry.RawLine, entry.UpdatedAt); err != nil {
					return err
				}
				if extract == nil {
					continue
				}
				fields, err := extract([]byte(entry.RawLine))
				if err != nil {
					slog.Warn("skipping index extraction for undeserializable record",
						"collection", collection, "id", id, "error", err)
					continue
				}
				if err := cache.ReplaceIndexes(ctx, tx, collection, id, fields); err != nil {
					return err
				}
			}

			mtime, _, err := journal.StatMTime(s.dir, collection)
			if err != nil {
				return err
			}
			if err := cache.RecordSyncMetadata(ctx, tx, collection, mtime, nowMs); err != nil {
				return err
			}
		}

		return cache.DeleteSyncMetadataExcept(ctx, tx, collections)
	})
}
