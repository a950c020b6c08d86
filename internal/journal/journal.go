// Package journal implements the append-only per-collection log file: the
// source of truth the rest of the store projects into a cache. Every
// record write in this package is a single newline-terminated append
// followed by fsync; Compact instead rewrites the file through a
// temporary sibling and a rename. Both are coordinated across processes
// with an advisory lock from github.com/gofrs/flock.
package journal

import (
	"bufio"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"

	"github.com/taskdaemon/taskstore/internal/taskerr"
)

// fileExt is the suffix every collection log file carries on disk.
const fileExt = ".jsonl"

// Entry is the well-known envelope the journal parses out of an otherwise
// opaque log line: identity, update timestamp, and the deletion marker.
// Everything else in the line is left untouched and handed back as
// RawLine for the cache/merge layers to store verbatim.
type Entry struct {
	ID        string
	UpdatedAt int64
	Deleted   bool
	RawLine   string
}

// envelope mirrors the well-known top-level keys every stored line must
// carry: at minimum `id` and `updated_at`.
type envelope struct {
	ID        string `json:"id"`
	UpdatedAt int64  `json:"updated_at"`
	Deleted   bool   `json:"deleted"`
}

// Path returns the on-disk path of a collection's log file under dir.
func Path(dir, collection string) string {
	return filepath.Join(dir, collection+fileExt)
}

// lockPath returns the sidecar lock file path for a collection's log.
// A dedicated lock file (rather than locking the log file's own fd) lets
// the compactor rename the log out from under readers without disturbing
// lock ownership.
func lockPath(dir, collection string) string {
	return filepath.Join(dir, "."+collection+fileExt+".lock")
}

// Append opens (creating if absent) the collection's log file, takes an
// exclusive advisory lock, writes line followed by a single newline,
// flushes and fsyncs, then releases the lock. It fails with *taskerr.IoError
// on any open/write/lock/fsync failure; on failure no partial line is
// left behind (the write is a single Write call before fsync).
func Append(dir, collection string, line []byte) error {
	fl := flock.New(lockPath(dir, collection))
	if err := fl.Lock(); err != nil {
		return &taskerr.IoError{Collection: collection, Op: "lock", Err: err}
	}
	defer fl.Unlock()

	path := Path(dir, collection)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return &taskerr.IoError{Collection: collection, Op: "open", Err: err}
	}
	defer f.Close()

	payload := make([]byte, 0, len(line)+1)
	payload = append(payload, line...)
	payload = append(payload, '\n')

	if _, err := f.Write(payload); err != nil {
		return &taskerr.IoError{Collection: collection, Op: "write", Err: err}
	}
	if err := f.Sync(); err != nil {
		return &taskerr.IoError{Collection: collection, Op: "fsync", Err: err}
	}
	return nil
}

// ReadAllLatest streams the collection's log file line by line under a
// shared advisory lock and returns the effective (greatest updated_at,
// later-line-wins-ties) entry per identity. A missing log file is treated
// as an empty collection, not an error. Malformed or blank lines are
// skipped with a logged warning; they never fail the read.
func ReadAllLatest(dir, collection string) (map[string]Entry, error) {
	path := Path(dir, collection)

	fl := flock.New(lockPath(dir, collection))
	if err := fl.RLock(); err != nil {
		return nil, &taskerr.IoError{Collection: collection, Op: "rlock", Err: err}
	}
	defer fl.Unlock()

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]Entry{}, nil
		}
		return nil, &taskerr.IoError{Collection: collection, Op: "open", Err: err}
	}
	defer f.Close()

	return scanLatest(f, collection)
}

// scanLatest streams r line by line, extracting the well-known envelope
// from each line and folding by identity: the entry with the greatest
// UpdatedAt wins, ties broken in favor of the later occurrence (file
// order). Malformed or blank lines are skipped with a logged warning.
func scanLatest(r io.Reader, collection string) (map[string]Entry, error) {
	latest := make(map[string]Entry)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		raw := scanner.Text()
		if strings.TrimSpace(raw) == "" {
			continue
		}

		var env envelope
		if err := json.Unmarshal([]byte(raw), &env); err != nil {
			slog.Warn("skipping malformed log line",
				"collection", collection, "line", lineNo, "error", err)
			continue
		}
		if env.ID == "" {
			slog.Warn("skipping log line missing id",
				"collection", collection, "line", lineNo)
			continue
		}

		entry := Entry{ID: env.ID, UpdatedAt: env.UpdatedAt, Deleted: env.Deleted, RawLine: raw}
		if cur, ok := latest[env.ID]; !ok || entry.UpdatedAt >= cur.UpdatedAt {
			latest[env.ID] = entry
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, &taskerr.IoError{Collection: collection, Op: "scan", Err: err}
	}

	return latest, nil
}

// StatMTime returns the collection log file's modification time in whole
// seconds since the epoch. A missing file returns (0, false, nil).
func StatMTime(dir, collection string) (int64, bool, error) {
	info, err := os.Stat(Path(dir, collection))
	if err != nil {
		if os.IsNotExist(err) {
			return 0, false, nil
		}
		return 0, false, &taskerr.IoError{Collection: collection, Op: "stat", Err: err}
	}
	return info.ModTime().Unix(), true, nil
}

// ListCollections returns the collection names (file stems) for every
// `.jsonl` file directly under dir.
func ListCollections(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, &taskerr.IoError{Op: "readdir", Err: err}
	}

	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasSuffix(name, fileExt) {
			out = append(out, strings.TrimSuffix(name, fileExt))
		}
	}
	return out, nil
}
