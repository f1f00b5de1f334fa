package schedule

import (
	"sync"
	"time"

	"github.com/aretw0/tally/pkg/core"
)

// Manual is a virtual clock implementing core.Scheduler.
// Time only moves through Advance, which runs a due callback synchronously
// on the caller's goroutine.
type Manual struct {
	mu       sync.Mutex
	now      time.Time
	deadline time.Time
	fn       func()
	fired    int
}

// NewManual returns a virtual clock starting at start.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

// Arm sets the deadline to now+delay and replaces any pending callback.
func (m *Manual) Arm(delay time.Duration, fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deadline = m.now.Add(delay)
	m.fn = fn
}

// Cancel drops the pending callback.
func (m *Manual) Cancel() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fn = nil
}

// Now returns the virtual time.
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Advance moves the clock forward by d and fires the armed callback if its
// deadline was reached.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	m.now = m.now.Add(d)
	var fn func()
	if m.fn != nil && !m.now.Before(m.deadline) {
		fn = m.fn
		m.fn = nil
		m.fired++
	}
	m.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// Pending reports whether a callback is armed.
func (m *Manual) Pending() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fn != nil
}

// Deadline returns when the armed callback is due.
func (m *Manual) Deadline() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deadline
}

// Fired counts callbacks run so far.
func (m *Manual) Fired() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fired
}

var _ core.Scheduler = (*Manual)(nil)
