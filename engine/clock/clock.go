// Package clock is the single time source of the scene. One clock is owned by the engine
// loop and every component receives the Time value it produced for the tick.
package clock

import (
	"math"
	"sync"
	"time"
)

// DefaultMaxDelta caps a single tick so a stalled process (debugger, backgrounded window)
// resumes with one ordinary step instead of a jump.
const DefaultMaxDelta = 0.25

// Time is the immutable snapshot handed to every component for one tick.
type Time struct {
	Delta   float64 // seconds since the previous tick, >= 0
	Elapsed float64 // seconds since the clock started or was reset
	Frame   uint64  // tick counter, 1 for the first tick
}

// Clock produces one Time per tick.
type Clock interface {
	// Tick advances the clock and returns the snapshot for the new tick.
	//
	// Returns:
	//   - Time: the snapshot for this tick
	Tick() Time

	// Now returns the last produced snapshot without advancing.
	//
	// Returns:
	//   - Time: the current snapshot
	Now() Time

	// Reset returns the clock to Elapsed 0, Frame 0.
	Reset()
}

// sanitizeDelta clamps non-finite and negative deltas to 0 and large ones to maxDelta.
func sanitizeDelta(dt, maxDelta float64) float64 {
	if math.IsNaN(dt) || dt < 0 {
		return 0
	}
	if maxDelta > 0 && dt > maxDelta {
		return maxDelta
	}
	return dt
}

type wallClock struct {
	mu       *sync.Mutex
	now      func() time.Time
	last     time.Time
	started  bool
	maxDelta float64
	current  Time
}

var _ Clock = &wallClock{}

// NewWallClock creates a Clock driven by the monotonic system clock.
// The first Tick reports a zero delta.
//
// Parameters:
//   - maxDelta: the largest delta a tick may report in seconds, <= 0 disables the cap
//
// Returns:
//   - Clock: the wall clock
func NewWallClock(maxDelta float64) Clock {
	return &wallClock{
		mu:       &sync.Mutex{},
		now:      time.Now,
		maxDelta: maxDelta,
	}
}

func (c *wallClock) Tick() Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	dt := 0.0
	if c.started {
		dt = sanitizeDelta(now.Sub(c.last).Seconds(), c.maxDelta)
	}
	c.started = true
	c.last = now
	c.current = Time{Delta: dt, Elapsed: c.current.Elapsed + dt, Frame: c.current.Frame + 1}
	return c.current
}

func (c *wallClock) Now() Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

func (c *wallClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.started = false
	c.current = Time{}
}

// Manual is a Clock fed by explicit deltas. Tests use it to drive components with a fixed
// delta sequence.
type Manual struct {
	mu      *sync.Mutex
	deltas  []float64
	next    int
	step    float64
	current Time
}

var _ Clock = &Manual{}

// NewManual creates a Manual clock that replays deltas in order and then repeats step.
//
// Parameters:
//   - step: the delta used once deltas are exhausted
//   - deltas: an optional leading sequence of deltas in seconds
//
// Returns:
//   - *Manual: the manual clock
func NewManual(step float64, deltas ...float64) *Manual {
	return &Manual{
		mu:     &sync.Mutex{},
		step:   step,
		deltas: append([]float64(nil), deltas...),
	}
}

// Advance ticks the clock by an explicit delta, ignoring the queued sequence.
//
// Parameters:
//   - dt: the delta in seconds
//
// Returns:
//   - Time: the snapshot for this tick
func (m *Manual) Advance(dt float64) Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.advance(dt)
}

func (m *Manual) Tick() Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	dt := m.step
	if m.next < len(m.deltas) {
		dt = m.deltas[m.next]
		m.next++
	}
	return m.advance(dt)
}

func (m *Manual) Now() Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

func (m *Manual) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next = 0
	m.current = Time{}
}

func (m *Manual) advance(dt float64) Time {
	dt = sanitizeDelta(dt, 0)
	m.current = Time{Delta: dt, Elapsed: m.current.Elapsed + dt, Frame: m.current.Frame + 1}
	return m.current
}
