package store

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/taskdaemon/taskstore/internal/cache"
	"github.com/taskdaemon/taskstore/internal/journal"
	"github.com/taskdaemon/taskstore/internal/record"
	"github.com/taskdaemon/taskstore/internal/taskerr"
)

// indexExtractor recovers the indexed scalar fields of a stored body, for
// collections that have a Collection[T] registered against this Store.
// Sync uses it to repopulate record_indexes for log entries it has no
// other way to interpret.
type indexExtractor func(body []byte) (map[string]record.Scalar, error)

// versionFileName is the plain-integer schema generation marker at the
// store root.
const versionFileName = ".version"

// cacheFileName is the embedded relational database file.
const cacheFileName = "store.db"

// Store is the single coordination point for a store directory: it owns
// the cache connection and mediates every log write through it. Only one
// Store should own a given directory's cache connection at a time.
type Store struct {
	dir   string
	cache *cache.Cache

	// writeMu, when non-nil (via WithWriteMutex), serializes Create/
	// Update/Delete calls from goroutines within this process. Off by
	// default: the engine does not serialize writers across Store
	// instances or processes beyond the log's own advisory locks.
	writeMu *sync.Mutex

	extractors map[string]indexExtractor
}

// Option configures a Store at Open time.
type Option func(*Store)

// WithWriteMutex enables an in-process mutex around log+cache writes,
// for callers that run a background exporter or other goroutine
// alongside foreground writes to the same Store.
func WithWriteMutex() Option {
	return func(s *Store) { s.writeMu = &sync.Mutex{} }
}

// Open creates the store directory if absent, opens (or creates) the
// cache, ensures the on-disk format marker is compatible, and rebuilds
// the cache from the logs if it is stale.
func Open(dir string, opts ...Option) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &taskerr.IoError{Op: "mkdir", Err: err}
	}

	if err := ensureVersionFile(dir); err != nil {
		return nil, err
	}

	c, err := cache.Open(filepath.Join(dir, cacheFileName))
	if err != nil {
		return nil, err
	}

	s := &Store{dir: dir, cache: c, extractors: make(map[string]indexExtractor)}
	for _, opt := range opts {
		opt(s)
	}

	ctx := context.Background()
	stale, err := s.IsStale(ctx)
	if err != nil {
		c.Close()
		return nil, err
	}
	if stale {
		if err := s.Sync(ctx); err != nil {
			c.Close()
			return nil, err
		}
	}

	return s, nil
}

// Close releases the cache connection. Log files need no closing: every
// operation opens, acts, and closes its own file handle.
func (s *Store) Close() error {
	return s.cache.Close()
}

// Dir returns the store's root directory.
func (s *Store) Dir() string { return s.dir }

// lockWrites returns an unlock function; a no-op unless WithWriteMutex
// was supplied at Open time.
func (s *Store) lockWrites() func() {
	if s.writeMu == nil {
		return func() {}
	}
	s.writeMu.Lock()
	return s.writeMu.Unlock
}

func ensureVersionFile(dir string) error {
	path := filepath.Join(dir, versionFileName)

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return &taskerr.IoError{Op: "read-version", Err: err}
		}
		if err := os.WriteFile(path, []byte(strconv.Itoa(storeFormatVersion)), 0o644); err != nil {
			return &taskerr.IoError{Op: "write-version", Err: err}
		}
		return nil
	}

	found, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return &taskerr.SchemaError{Found: -1, Expected: storeFormatVersion}
	}
	if found > storeFormatVersion {
		return &taskerr.SchemaError{Found: found, Expected: storeFormatVersion}
	}
	return nil
}

// Compact rewrites a collection's log file to one line per identity,
// keeping tombstones. See internal/journal for the atomic rewrite
// algorithm.
func (s *Store) Compact(collection string) error {
	return journal.Compact(s.dir, collection)
}
