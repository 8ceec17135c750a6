package filter

import (
	"math"
	"time"

	"github.com/coreman2200/funtimes-ledstrip/internal/pixel"
)

// Strobe blanks the frame outside the lit fraction of each period, strobing
// whatever a generator already produced.
type Strobe struct {
	period float64
	duty   float64

	time float64
}

// NewStrobe creates a Strobe filter. duty is clamped to [0, 1].
func NewStrobe(period time.Duration, duty float64) *Strobe {
	if duty < 0 {
		duty = 0
	}
	if duty > 1 {
		duty = 1
	}
	return &Strobe{
		period: period.Seconds(),
		duty:   duty,
	}
}

func (s *Strobe) FilterFrame(frame *pixel.Frame, dt time.Duration) State {
	s.time = math.Mod(s.time+dt.Seconds(), s.period)

	if r := s.time / s.period; r >= s.duty {
		pix := frame.Pixels()
		for i := range pix {
			pix[i] = pixel.Pixel{}
		}
	}
	return Ok
}

func (s *Strobe) Reset() {
	s.time = 0
}
