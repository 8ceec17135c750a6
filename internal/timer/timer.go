// Package timer provides the wall-clock tick source driving the render loop.
package timer

import "time"

// Timer tracks the time between pings and optionally paces them to a target
// tick duration. Pacing is a busy-wait on the clock rather than a sleep: OS
// sleep granularity is far too coarse for sub-millisecond animation timing.
type Timer struct {
	prev     time.Time
	targetDT time.Duration

	ticks uint64
	first time.Time
	last  time.Time
}

// New returns a Timer. A zero targetDT disables pacing.
func New(targetDT time.Duration) *Timer {
	t := &Timer{targetDT: targetDT}
	t.Reset()
	return t
}

// ForFPS returns a Timer paced to the given frame rate, or unpaced for
// fps <= 0.
func ForFPS(fps int) *Timer {
	if fps <= 0 {
		return New(0)
	}
	return New(time.Second / time.Duration(fps))
}

// Reset restores the start time without discarding the configured target
// duration.
func (t *Timer) Reset() {
	now := time.Now()
	t.prev = now
	t.first = now
	t.last = now
	t.ticks = 0
}

// Ping returns the time elapsed since the previous ping. With a target set
// it spins, re-sampling the clock, until at least the target duration has
// passed, and returns the actual elapsed time.
func (t *Timer) Ping() time.Duration {
	now := time.Now()
	if t.targetDT > 0 {
		for now.Sub(t.prev) < t.targetDT {
			now = time.Now()
		}
	}
	dt := now.Sub(t.prev)
	t.prev = now
	t.last = now
	t.ticks++
	return dt
}

// Ticks returns the number of pings since the last reset.
func (t *Timer) Ticks() uint64 { return t.ticks }

// Elapsed returns the span between the last reset and the most recent ping.
func (t *Timer) Elapsed() time.Duration { return t.last.Sub(t.first) }
