package fx

import "time"

// Clock is the current-time source used to derive animation progress.
type Clock interface {
	Now() time.Time
}

// FrameClock schedules work for the next tick of the host: a frame callback,
// a game update, or a timer.
type FrameClock interface {
	// RequestFrame runs fn once on the next tick. Callbacks requested during a
	// tick run on the following one.
	RequestFrame(fn func())
}

// SystemClock reads wall time.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time { return time.Now() }

// ManualClock is a host-driven Clock and FrameClock. Time only moves when the
// host calls Advance, which makes frame sequences reproducible in tests, in
// scripted runs, and under a game loop that advances a fixed step per update.
//
// ManualClock is single-threaded, like the scheduler it drives.
type ManualClock struct {
	now    time.Time
	frames []func()
	spare  []func()
	count  int
}

// NewManualClock returns a clock reading start.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

// Now returns the clock's current time.
func (c *ManualClock) Now() time.Time { return c.now }

// RequestFrame implements FrameClock.
func (c *ManualClock) RequestFrame(fn func()) {
	c.frames = append(c.frames, fn)
}

// Pending returns the number of frame callbacks waiting for the next tick.
func (c *ManualClock) Pending() int { return len(c.frames) }

// Frames returns the number of ticks run so far.
func (c *ManualClock) Frames() int { return c.count }

// Advance moves time forward by d and then runs one tick.
func (c *ManualClock) Advance(d time.Duration) int {
	c.now = c.now.Add(d)
	return c.Step()
}

// Step runs one tick at the current time: every callback pending when Step
// was called runs once. It returns the number of callbacks run.
func (c *ManualClock) Step() int {
	c.count++
	run := c.frames
	c.frames = c.spare[:0]
	for i, fn := range run {
		run[i] = nil
		fn()
	}
	c.spare = run[:0]
	return len(run)
}
