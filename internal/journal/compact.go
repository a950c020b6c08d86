package journal

import (
	"os"
	"sort"

	"github.com/gofrs/flock"

	"github.com/taskdaemon/taskstore/internal/taskerr"
)

// Compact rewrites a collection's log file to contain exactly one line per
// identity — its effective revision, including tombstones, which are
// retained forever so a stale revision on another branch can never
// resurrect a deleted record on merge.
//
// The rewrite is atomic: entries are written to a `.jsonl.tmp` sibling,
// fsynced, then renamed over the original. A crash before the rename
// preserves the original file untouched. Compacting a collection with no
// log file is a no-op: no file is created.
func Compact(dir, collection string) error {
	fl := flock.New(lockPath(dir, collection))
	if err := fl.Lock(); err != nil {
		return &taskerr.IoError{Collection: collection, Op: "lock", Err: err}
	}
	defer fl.Unlock()

	if _, err := os.Stat(Path(dir, collection)); os.IsNotExist(err) {
		return nil
	}

	latest, err := readAllLatestLocked(dir, collection)
	if err != nil {
		return err
	}

	ids := make([]string, 0, len(latest))
	for id := range latest {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	path := Path(dir, collection)
	tmpPath := path + ".tmp"

	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return &taskerr.IoError{Collection: collection, Op: "create-tmp", Err: err}
	}

	for _, id := range ids {
		line := latest[id].RawLine
		if _, err := f.WriteString(line + "\n"); err != nil {
			f.Close()
			os.Remove(tmpPath)
			return &taskerr.IoError{Collection: collection, Op: "write-tmp", Err: err}
		}
	}

	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return &taskerr.IoError{Collection: collection, Op: "fsync-tmp", Err: err}
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return &taskerr.IoError{Collection: collection, Op: "close-tmp", Err: err}
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return &taskerr.IoError{Collection: collection, Op: "rename", Err: err}
	}

	return nil
}

// readAllLatestLocked is ReadAllLatest's scan logic without its own
// locking, for use by callers (Compact) that already hold the exclusive
// lock — reacquiring a shared lock while holding the exclusive one would
// deadlock against flock's process-local semantics on some platforms.
func readAllLatestLocked(dir, collection string) (map[string]Entry, error) {
	path := Path(dir, collection)
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
