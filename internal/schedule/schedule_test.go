package schedule

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestManualRunsInDeadlineOrder(t *testing.T) {
	m := NewManual()
	var order []string

	m.AfterFunc(300*time.Millisecond, func() { order = append(order, "late") })
	m.AfterFunc(100*time.Millisecond, func() { order = append(order, "early") })
	m.AfterFunc(100*time.Millisecond, func() { order = append(order, "early-second") })

	m.Advance(99 * time.Millisecond)
	assert.Empty(t, order)
	assert.Equal(t, 3, m.Pending())

	m.Advance(time.Millisecond)
	assert.Equal(t, []string{"early", "early-second"}, order)

	m.Advance(time.Second)
	assert.Equal(t, []string{"early", "early-second", "late"}, order)
	assert.Equal(t, 1100*time.Millisecond, m.Now())
	assert.Zero(t, m.Pending())
}

func TestManualStop(t *testing.T) {
	m := NewManual()
	fired := false

	timer := m.AfterFunc(time.Second, func() { fired = true })
	assert.True(t, timer.Stop())
	assert.False(t, timer.Stop(), "second stop is a no-op")

	m.Advance(2 * time.Second)
	assert.False(t, fired)
}

func TestManualStopAfterFire(t *testing.T) {
	m := NewManual()
	timer := m.AfterFunc(time.Millisecond, func() {})
	m.Advance(time.Millisecond)
	assert.False(t, timer.Stop())
}

func TestManualNestedScheduling(t *testing.T) {
	m := NewManual()
	var at []time.Duration

	m.AfterFunc(100*time.Millisecond, func() {
		at = append(at, m.Now())
		m.AfterFunc(100*time.Millisecond, func() { at = append(at, m.Now()) })
	})

	m.Advance(250 * time.Millisecond)
	assert.Equal(t, []time.Duration{100 * time.Millisecond, 200 * time.Millisecond}, at)
}

func TestRealScheduler(t *testing.T) {
	var fired atomic.Bool
	done := make(chan struct{})

	Real().AfterFunc(time.Millisecond, func() {
		fired.Store(true)
		close(done)
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("real timer did not fire")
	}
	assert.True(t, fired.Load())
}
