package generator

import (
	"time"

	"github.com/coreman2200/funtimes-ledstrip/internal/pixel"
)

// Solid overwrites every pixel with one fixed color every tick. It never
// signals completion on its own; the display's runtime policy bounds it.
type Solid struct {
	color pixel.Pixel
}

// NewSolid creates a Solid generator for the given color.
func NewSolid(color pixel.Pixel) *Solid {
	return &Solid{color: color}
}

func (s *Solid) RenderFrame(frame *pixel.Frame, _ time.Duration) State {
	frame.Fill(s.color)
	return Ok
}

func (s *Solid) Reset() {}
