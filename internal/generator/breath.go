package generator

import (
	"time"

	"github.com/coreman2200/funtimes-ledstrip/internal/pixel"
)

// Breath fades each palette color along a parabolic curve from black to full
// color and back to black. The envelope is a particle with position pos and
// velocity vel integrated against a constant negative acceleration, tuned so
// one full arc takes halfPeriod seconds up and halfPeriod back down.
type Breath struct {
	palette *Palette

	acc  float32
	vel0 float32

	vel float32
	pos float32
}

// NewBreath creates a Breath generator. halfPeriod is the configured time
// from black up to full color and back down.
func NewBreath(halfPeriod time.Duration, p *Palette) *Breath {
	hp := float32(halfPeriod.Seconds())
	vel0 := 4.0 / hp
	return &Breath{
		palette: p,
		acc:     -8.0 / (hp * hp),
		vel0:    vel0,
		vel:     vel0,
	}
}

// Position returns the current envelope position; exposed for tests.
func (b *Breath) Position() float32 { return b.pos }

func (b *Breath) RenderFrame(frame *pixel.Frame, dt time.Duration) State {
	s := float32(dt.Seconds())
	b.vel += b.acc * s
	b.pos += b.vel * s

	if b.pos <= 0 && b.vel < 0 {
		b.pos = 0
		b.vel = b.vel0
		b.palette.Advance()
	}

	frame.Fill(b.palette.Current().Scale(b.pos))
	return Ok
}

func (b *Breath) Reset() {
	b.vel = b.vel0
	b.pos = 0
	b.palette.Reset()
}
