package engine

import "sync/atomic"

// Clock is the monotonic logical clock stamping node versions.
//
// Every stored version gets a strictly increasing seq from this clock, so
// History orders revisions without consulting wall time.
//
// Thread-safety: Clock is safe for concurrent use (atomic operations).
// However, Add is serialized, so only one goroutine typically calls Next().
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a new clock starting at a specific sequence number.
// Used on open to resume after the backend's last stored seq.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next returns the next sequence number and increments the clock.
// Calls are linearizable - each call returns a unique, increasing value.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current sequence number without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
