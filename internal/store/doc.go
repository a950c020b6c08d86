// Package store is the single coordination point of the record engine: it
// owns the cache connection, validates writes, appends to the log before
// ever touching the cache, and is the only thing callers interact with
// directly.
//
// # Write ordering
//
// Every mutation appends to the log first and only then updates the
// cache. A crash between the two leaves the log authoritative; the next
// Open or Sync call reconciles the cache from it. The cache is never
// canonical; it is rebuildable from the log at any time.
//
// # Generics
//
// Go cannot express a type-parametric method on a concrete receiver, so
// a parametric create<T>/get<T>/... surface is realized as Collection[T],
// obtained from Open via Register. Each registered type is bound to a
// fixed collection name and deserialize function.
package store

// storeFormatVersion is the on-disk store format generation recorded in
// the `.version` file at the store root. It is distinct from the
// cache package's internal PRAGMA user_version: that tracks migrations
// local to store.db, while this tracks the format of the directory as a
// whole (log file conventions included).
const storeFormatVersion = 1
