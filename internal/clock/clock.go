// Package clock turns host frame timestamps into per-frame timing.
package clock

import "time"

// Frame is the timing of one tick.
type Frame struct {
	// Index counts ticks from 0.
	Index uint64
	// Delta is the time since the previous tick; 0 on the first tick.
	Delta time.Duration
	// Elapsed is the time since the first tick.
	Elapsed time.Duration
	// Time is the host timestamp of the tick.
	Time time.Duration
}

func (f Frame) DeltaSeconds() float32 {
	return float32(f.Delta.Seconds())
}

func (f Frame) ElapsedSeconds() float32 {
	return float32(f.Elapsed.Seconds())
}

// Clock is not safe for concurrent use; it lives on the host thread.
type Clock struct {
	started bool
	start   time.Duration
	last    time.Duration
	next    uint64
}

func New() *Clock {
	return &Clock{}
}

// Tick records a host timestamp. Timestamps that go backwards yield a zero
// delta.
func (c *Clock) Tick(now time.Duration) Frame {
	if !c.started {
		c.started = true
		c.start = now
		c.last = now
	}
	delta := now - c.last
	if delta < 0 {
		delta = 0
	} else {
		c.last = now
	}
	f := Frame{
		Index:   c.next,
		Delta:   delta,
		Elapsed: c.last - c.start,
		Time:    now,
	}
	c.next++
	return f
}

// Reset makes the next Tick the first one again.
func (c *Clock) Reset() {
	*c = Clock{}
}
