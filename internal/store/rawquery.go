package store

import (
	"context"

	"github.com/taskdaemon/taskstore/internal/cache"
)

// RawGet returns the cached body for collection/id without requiring a
// registered Collection[T] — the untyped path used by generic tooling
// (the CLI's show/list commands) that doesn't know concrete record
// types at compile time.
func (s *Store) RawGet(ctx context.Context, collection, id string) (body string, ok bool, err error) {
	return cache.Get(ctx, s.cache.DB(), collection, id)
}

// RawList runs q against the cache and returns raw (id, body) rows.
func (s *Store) RawList(ctx context.Context, q cache.Query) ([]cache.Row, error) {
	return cache.List(ctx, s.cache.DB(), q)
}
