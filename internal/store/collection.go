package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"

	"github.com/taskdaemon/taskstore/internal/cache"
	"github.com/taskdaemon/taskstore/internal/journal"
	"github.com/taskdaemon/taskstore/internal/record"
	"github.com/taskdaemon/taskstore/internal/taskerr"
)

// Collection is the typed handle through which one record type is
// created, read, updated, deleted and listed. It is the Go-generics
// realization of a parametric create<T>/get<T>/... surface: Go
// cannot make a method on Store itself type-parametric, so each stored
// type gets its own Collection bound to a fixed name and a function that
// reconstructs it from stored bytes.
type Collection[T record.Record] struct {
	store       *Store
	name        string
	deserialize func([]byte) (T, error)
}

// Register binds a Record type to name within store and returns the
// Collection handle used for every subsequent operation on that type.
// Registering also teaches the Store how to recompute that collection's
// indexed fields during Sync and RebuildIndexes.
func Register[T record.Record](s *Store, name string, deserialize func([]byte) (T, error)) *Collection[T] {
	s.extractors[name] = func(body []byte) (map[string]record.Scalar, error) {
		rec, err := deserialize(body)
		if err != nil {
			return nil, err
		}
		return rec.IndexedFields(), nil
	}
	return &Collection[T]{store: s, name: name, deserialize: deserialize}
}

// tombstoneLine is the envelope written to the log by Delete.
type tombstoneLine struct {
	ID        string `json:"id"`
	UpdatedAt int64  `json:"updated_at"`
	Deleted   bool   `json:"deleted"`
}

// Create appends rec to the log and writes it through to the cache,
// returning its identity. Equivalent to Update for a fresh identity:
// the log is append-only and does not distinguish first-write from
// revision.
func (c *Collection[T]) Create(ctx context.Context, rec T) (string, error) {
	return c.write(ctx, rec)
}

// Update appends a new revision of rec.
func (c *Collection[T]) Update(ctx context.Context, rec T) error {
	_, err := c.write(ctx, rec)
	return err
}

func (c *Collection[T]) write(ctx context.Context, rec T) (string, error) {
	if rec.CollectionName() != c.name {
		return "", &taskerr.ValidationError{
			Collection: c.name,
			Identity:   rec.Identity(),
			Field:      "collection",
			Reason:     "record's CollectionName does not match the registered collection",
		}
	}
	if err := record.Validate(rec); err != nil {
		return "", err
	}

	body, err := rec.Serialize()
	if err != nil {
		return "", &taskerr.SerializeError{Collection: c.name, Identity: rec.Identity(), Err: err}
	}

	unlock := c.store.lockWrites()
	defer unlock()

	if err := journal.Append(c.store.dir, c.name, body); err != nil {
		return "", err
	}

	id := rec.Identity()
	err = c.store.cache.WithTx(ctx, func(tx *sql.Tx) error {
		if err := cache.UpsertRecord(ctx, tx, c.name, id, string(body), rec.UpdatedAt()); err != nil {
			return err
		}
		return cache.ReplaceIndexes(ctx, tx, c.name, id, rec.IndexedFields())
	})
	if err != nil {
		// The log line is already durable; the cache is rebuildable from
		// it on the next Sync. Surface the error so callers can decide
		// whether to retry or force a resync, but do not unwind the
		// append.
		return id, err
	}
	return id, nil
}

// Delete appends a tombstone for id at updatedAt and removes its cache
// row. Tombstones are never compacted away.
func (c *Collection[T]) Delete(ctx context.Context, id string, updatedAt int64) error {
	if err := record.ValidateIdentity(c.name, id); err != nil {
		return err
	}

	line, err := json.Marshal(tombstoneLine{ID: id, UpdatedAt: updatedAt, Deleted: true})
	if err != nil {
		return &taskerr.SerializeError{Collection: c.name, Identity: id, Err: err}
	}

	unlock := c.store.lockWrites()
	defer unlock()

	if err := journal.Append(c.store.dir, c.name, line); err != nil {
		return err
	}

	return c.store.cache.WithTx(ctx, func(tx *sql.Tx) error {
		return cache.DeleteRecord(ctx, tx, c.name, id)
	})
}

// Get returns the cached current revision of id, or ok=false if absent
// (including if it was never created or has been deleted).
func (c *Collection[T]) Get(ctx context.Context, id string) (value T, ok bool, err error) {
	var zero T

	body, found, err := cache.Get(ctx, c.store.cache.DB(), c.name, id)
	if err != nil {
		return zero, false, err
	}
	if !found {
		return zero, false, nil
	}

	rec, err := c.deserialize([]byte(body))
	if err != nil {
		return zero, false, &taskerr.DeserializeError{Collection: c.name, Identity: id, Err: err}
	}
	return rec, true, nil
}

// ListOptions narrows and orders a List call.
type ListOptions struct {
	Predicates       []cache.Predicate
	OrderByUpdatedAt bool
	Descending       bool
	Limit            int
	Offset           int
}

// List returns every record matching opts's predicates, deserialized.
// A row whose stored body can no longer be deserialized is logged and
// skipped rather than failing the whole call.
func (c *Collection[T]) List(ctx context.Context, opts ListOptions) ([]T, error) {
	rows, err := cache.List(ctx, c.store.cache.DB(), cache.Query{
		Collection:       c.name,
		Predicates:       opts.Predicates,
		OrderByUpdatedAt: opts.OrderByUpdatedAt,
		Descending:       opts.Descending,
		Limit:            opts.Limit,
		Offset:           opts.Offset,
	})
	if err != nil {
		return nil, err
	}

	out := make([]T, 0, len(rows))
	for _, r := range rows {
		rec, err := c.deserialize([]byte(r.Body))
		if err != nil {
			slog.Warn("skipping undeserializable cached record", "collection", c.name, "id", r.ID, "error", err)
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

// RebuildIndexes recomputes record_indexes for every row currently
// cached in this collection from its deserialized IndexedFields, without
// touching the log. Useful after changing which fields a type
// indexes.
func (c *Collection[T]) RebuildIndexes(ctx context.Context) (int, error) {
	rows, err := cache.List(ctx, c.store.cache.DB(), cache.Query{Collection: c.name})
	if err != nil {
		return 0, err
	}

	count := 0
	for _, r := range rows {
		rec, err := c.deserialize([]byte(r.Body))
		if err != nil {
			slog.Warn("skipping index rebuild for undeserializable record", "collection", c.name, "id", r.ID, "error", err)
			continue
		}
		err = c.store.cache.WithTx(ctx, func(tx *sql.Tx) error {
			return cache.ReplaceIndexes(ctx, tx, c.name, r.ID, rec.IndexedFields())
		})
		if err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}
