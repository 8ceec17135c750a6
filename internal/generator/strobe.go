package generator

import (
	"math"
	"time"

	"github.com/coreman2200/funtimes-ledstrip/internal/pixel"
)

// Strobe flashes the strip with PWM-like control: within each period the
// LEDs show the configured color for the duty fraction of the time and black
// for the rest.
type Strobe struct {
	color  pixel.Pixel
	period float64
	duty   float64

	time float64
}

// NewStrobe creates a Strobe generator. duty is clamped to [0, 1].
func NewStrobe(period time.Duration, duty float64, color pixel.Pixel) *Strobe {
	if duty < 0 {
		duty = 0
	}
	if duty > 1 {
		duty = 1
	}
	return &Strobe{
		color:  color,
		period: period.Seconds(),
		duty:   duty,
	}
}

func (s *Strobe) RenderFrame(frame *pixel.Frame, dt time.Duration) State {
	s.time = math.Mod(s.time+dt.Seconds(), s.period)

	r := s.time / s.period
	if r < s.duty {
		frame.Fill(s.color)
	} else {
		frame.Fill(pixel.Pixel{})
	}
	return Ok
}

func (s *Strobe) Reset() {
	s.time = 0
}
