package schedule_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/aretw0/tally/pkg/schedule"
)

func TestManual_RearmRestartsDelay(t *testing.T) {
	clock := schedule.NewManual(time.Unix(0, 0))
	var calls int

	clock.Arm(time.Second, func() { calls++ })
	clock.Advance(900 * time.Millisecond)
	clock.Arm(time.Second, func() { calls++ })
	clock.Advance(900 * time.Millisecond)
	assert.Equal(t, 0, calls, "re-arm must push the deadline out")

	clock.Advance(100 * time.Millisecond)
	assert.Equal(t, 1, calls)
	assert.False(t, clock.Pending())

	clock.Advance(time.Hour)
	assert.Equal(t, 1, calls, "callbacks are one-shot")
}

func TestManual_Cancel(t *testing.T) {
	clock := schedule.NewManual(time.Unix(0, 0))
	clock.Arm(time.Second, func() { t.Fatal("cancelled callback ran") })
	clock.Cancel()
	clock.Advance(time.Minute)
	assert.Equal(t, 0, clock.Fired())
}

func TestTimer_CoalescesRearms(t *testing.T) {
	timer := schedule.NewTimer()
	var calls atomic.Int32

	for i := 0; i < 5; i++ {
		timer.Arm(30*time.Millisecond, func() { calls.Add(1) })
		time.Sleep(5 * time.Millisecond)
	}

	assert.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
	assert.False(t, timer.Pending())
}

func TestTimer_Cancel(t *testing.T) {
	timer := schedule.NewTimer()
	var calls atomic.Int32
	timer.Arm(10*time.Millisecond, func() { calls.Add(1) })
	timer.Cancel()
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())
}
