package filter

import (
	"time"

	"github.com/coreman2200/funtimes-ledstrip/internal/pixel"
)

// Breath imposes a breathing envelope on whatever is already in the frame,
// using the same parabolic particle as the breath generator but scaling
// pixels multiplicatively instead of producing color.
type Breath struct {
	acc  float32
	vel0 float32

	vel float32
	pos float32
}

// NewBreath creates a Breath filter with the given half-period.
func NewBreath(halfPeriod time.Duration) *Breath {
	hp := float32(halfPeriod.Seconds())
	vel0 := 4.0 / hp
	return &Breath{
		acc:  -8.0 / (hp * hp),
		vel0: vel0,
		vel:  vel0,
	}
}

func (b *Breath) FilterFrame(frame *pixel.Frame, dt time.Duration) State {
	s := float32(dt.Seconds())
	b.vel += b.acc * s
	b.pos += b.vel * s

	if b.pos <= 0 && b.vel < 0 {
		b.pos = 0
		b.vel = b.vel0
	}

	pix := frame.Pixels()
	for i := range pix {
		pix[i] = pix[i].Scale(b.pos)
	}
	return Ok
}

func (b *Breath) Reset() {
	b.vel = b.vel0
	b.pos = 0
}
