package export

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

type countingSyncer struct {
	calls atomic.Int32
}

func (c *countingSyncer) Sync(ctx context.Context) error {
	c.calls.Add(1)
	return nil
}

func TestDebouncer_CoalescesBurstIntoOneSync(t *testing.T) {
	syncer := &countingSyncer{}
	d := New(syncer, 20*time.Millisecond)
	defer d.Stop()

	for i := 0; i < 5; i++ {
		d.Notify()
		time.Sleep(2 * time.Millisecond)
	}

	time.Sleep(100 * time.Millisecond)

	if got := syncer.calls.Load(); got != 1 {
		t.Errorf("expected exactly 1 coalesced sync, got %d", got)
	}
}

func TestDebouncer_StopPreventsLateSync(t *testing.T) {
	syncer := &countingSyncer{}
	d := New(syncer, 20*time.Millisecond)
	d.Notify()
	d.Stop()

	time.Sleep(50 * time.Millisecond)
	if got := syncer.calls.Load(); got != 0 {
		t.Errorf("expected no sync after Stop, got %d", got)
	}
}
