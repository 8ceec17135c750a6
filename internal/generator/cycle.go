package generator

import (
	"time"

	"github.com/coreman2200/funtimes-ledstrip/internal/pixel"
)

// Cycle shows each palette color as a solid fill for a fixed period. The
// countdown carries the unused remainder across switches, so switch points
// stay drift-free regardless of tick size.
type Cycle struct {
	palette *Palette

	period    time.Duration
	remaining time.Duration
	painted   bool
}

// NewCycle creates a Cycle generator showing each color for period.
func NewCycle(period time.Duration, p *Palette) *Cycle {
	return &Cycle{
		palette:   p,
		period:    period,
		remaining: period,
	}
}

// Remaining returns the time left before the next color switch; exposed for
// tests.
func (c *Cycle) Remaining() time.Duration { return c.remaining }

func (c *Cycle) RenderFrame(frame *pixel.Frame, dt time.Duration) State {
	// The first render paints the initial color; between switches the frame
	// is left untouched.
	if !c.painted {
		frame.Fill(c.palette.Current())
		c.painted = true
	}

	rem := c.remaining - dt
	if rem >= 0 {
		c.remaining = rem
		return Ok
	}

	// One switch per elapsed period; a single large tick lands on the same
	// schedule as many small ones.
	for rem < 0 {
		c.palette.Advance()
		rem += c.period
	}
	c.remaining = rem

	frame.Fill(c.palette.Current())
	return Ok
}

func (c *Cycle) Reset() {
	c.remaining = c.period
	c.painted = false
	c.palette.Reset()
}
