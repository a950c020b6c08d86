package store

import (
	"context"

	"github.com/taskdaemon/taskstore/internal/cache"
	"github.com/taskdaemon/taskstore/internal/journal"
)

// IsStale reports whether any collection's log file has changed since
// the cache last synced it: its mtime is newer than the recorded
// checkpoint, or it has never been synced at all.
func (s *Store) IsStale(ctx context.Context) (bool, error) {
	collections, err := journal.ListCollections(s.dir)
	if err != nil {
		return false, err
	}

	for _, collection := range collections {
		mtime, exists, err := journal.StatMTime(s.dir, collection)
		if err != nil {
			return false, err
		}
		if !exists {
			continue
		}

		meta, ok, err := cache.ReadSyncMetadata(ctx, s.cache.DB(), collection)
		if err != nil {
			return false, err
		}
		if !ok || mtime > meta.FileMTimeS {
			return true, nil
		}
	}
	return false, nil
}
