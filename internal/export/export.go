// Package export runs an optional background goroutine that debounces
// Sync calls: instead of every write triggering an immediate rebuild, a
// Notify call resets a timer and Sync fires once activity quiesces,
// configured by the "debounce_ms"/"auto_export" settings.
package export

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Syncer is the subset of *store.Store the debouncer needs. Kept as an
// interface so tests can substitute a counting fake instead of a real
// store.
type Syncer interface {
	Sync(ctx context.Context) error
}

// Debouncer coalesces bursts of writes into a single Sync call fired
// debounce after the last Notify, until Stop is called.
type Debouncer struct {
	store    Syncer
	debounce time.Duration

	mu     sync.Mutex
	timer  *time.Timer
	stopCh chan struct{}
	wg     sync.WaitGroup
}

// New creates a Debouncer. debounce of zero or less disables coalescing:
// every Notify fires Sync on its own goroutine.
func New(store Syncer, debounce time.Duration) *Debouncer {
	return &Debouncer{store: store, debounce: debounce, stopCh: make(chan struct{})}
}

// Notify schedules a Sync debounce after the call, canceling any
// previously pending one.
func (d *Debouncer) Notify() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.debounce, d.fire)
}

func (d *Debouncer) fire() {
	d.wg.Add(1)
	defer d.wg.Done()

	select {
	case <-d.stopCh:
		return
	default:
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := d.store.Sync(ctx); err != nil {
		slog.Error("debounced sync failed", "error", err)
	}
}

// Stop cancels any pending sync and waits for an in-flight one to
// finish.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
	}
	close(d.stopCh)
	d.mu.Unlock()

	d.wg.Wait()
}
