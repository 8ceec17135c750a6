// Package sink provides the pluggable destinations a rendered frame is
// written to: the APA102C/SK9822 hardware encoders (bit-banged GPIO or SPI),
// a terminal emulation, and a no-op sink for headless runs and tests.
package sink

import (
	"time"

	"github.com/coreman2200/funtimes-ledstrip/internal/pixel"
)

// Sink accepts rendered frames and transmits them somewhere. It is the only
// interface the draw engine depends on.
//
// Hardware sinks share one wire across every display: the engine announces
// each display's pixel count with Attach, in wire order, before the first
// write, and then writes one frame per attached display per tick. The sink
// delimits the concatenated stream itself.
type Sink interface {
	// Attach registers one display's pixel count in wire order.
	Attach(size int)

	// WriteFrame renders or transmits one display's frame.
	WriteFrame(f *pixel.Frame) error

	// Stats returns cumulative statistics for the sink's lifetime.
	Stats() Stats

	// Close releases the sink. Hardware sinks first force every LED they
	// have ever addressed to black.
	Close() error
}

// Stats tracks what a sink has transmitted.
type Stats struct {
	// Frames is the number of complete wire frames (one per tick on
	// hardware sinks, one per WriteFrame elsewhere).
	Frames uint64
	// Peak is the largest pixel count observed in a single wire frame.
	Peak int
	// Elapsed spans the first to the most recent write.
	Elapsed time.Duration

	start time.Time
}

func (s *Stats) record(pixels int) {
	now := time.Now()
	if s.Frames == 0 {
		s.start = now
	}
	s.Frames++
	if pixels > s.Peak {
		s.Peak = pixels
	}
	s.Elapsed = now.Sub(s.start)
}
