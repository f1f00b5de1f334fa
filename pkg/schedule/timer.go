// Package schedule provides the clocks that drive debounced commits: a wall
// clock for applications and a manually advanced one for tests.
package schedule

import (
	"sync"
	"time"

	"github.com/aretw0/tally/pkg/core"
)

// Timer is a core.Scheduler backed by time.AfterFunc.
// Each Arm invalidates the previous callback even if its timer already
// fired and is waiting to run.
type Timer struct {
	mu    sync.Mutex
	timer *time.Timer
	gen   uint64
}

// NewTimer returns an idle Timer.
func NewTimer() *Timer {
	return &Timer{}
}

// Arm schedules fn after delay, replacing any pending callback.
func (t *Timer) Arm(delay time.Duration, fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.timer != nil {
		t.timer.Stop()
	}
	t.gen++
	gen := t.gen
	t.timer = time.AfterFunc(delay, func() {
		t.mu.Lock()
		current := gen == t.gen
		if current {
			t.timer = nil
		}
		t.mu.Unlock()
		if current {
			fn()
		}
	})
}

// Cancel drops the pending callback. A callback already firing still runs.
func (t *Timer) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.gen++
}

// Pending reports whether a callback is armed.
func (t *Timer) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.timer != nil
}

var _ core.Scheduler = (*Timer)(nil)
