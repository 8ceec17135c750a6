package sink

import (
	"fmt"
	"io"

	"github.com/coreman2200/funtimes-ledstrip/internal/pixel"
)

// Line is a single GPIO output line. Two implementations exist: periph.io
// pins and Linux gpiochip character-device lines, plus an in-memory recorder
// for tests.
type Line interface {
	// Set drives the line high or low.
	Set(high bool) error
}

// APA102 serializes frames onto the two-wire APA102C/SK9822 protocol by
// bit-banging a data and a clock line.
//
// Wire format per transmission: a start frame of 4 zero bytes; per pixel a
// control byte 0b111xxxxx carrying the 5-bit hardware brightness followed by
// the blue, green and red channel bytes; then an end frame of ceil(N/16)
// zero bytes for N pixels, the SK9822-compatible convention. Bits go out
// MSB-first, the clock pulsed once per bit with no inserted delay — the
// toggle overhead itself provides the setup/hold time.
//
// The hardware brightness is independent of the frame's software brightness
// scalar, which is multiplied into the channel bytes here at write time.
type APA102 struct {
	data  Line
	clock Line

	brightness uint8 // 5-bit, 0-31

	attached []int
	total    int
	known    int // high-water pixel count for the shutoff frame

	writes int // displays written in the current wire frame
	pixels int // pixels written in the current wire frame

	stats  Stats
	closed bool

	cleanup []io.Closer
}

// NewAPA102 creates a bit-banged APA102 sink on the given lines. brightness
// is the 5-bit hardware brightness, clamped to 31. Any closers are released
// after the close-time shutoff frame.
func NewAPA102(data, clock Line, brightness uint8, cleanup ...io.Closer) *APA102 {
	if brightness > 31 {
		brightness = 31
	}
	return &APA102{
		data:       data,
		clock:      clock,
		brightness: brightness,
		cleanup:    cleanup,
	}
}

func (a *APA102) Attach(size int) {
	a.attached = append(a.attached, size)
	a.total += size
	if a.total > a.known {
		a.known = a.total
	}
}

func (a *APA102) WriteFrame(f *pixel.Frame) error {
	if a.closed {
		return errClosed
	}

	if a.writes == 0 {
		if err := a.startFrame(); err != nil {
			return err
		}
	}

	brightness := f.Brightness()
	for _, p := range f.Pixels() {
		p = p.Scale(brightness)
		if err := a.writeByte(0xE0 | a.brightness); err != nil {
			return err
		}
		// Wire order is fixed BGR regardless of the pixel's internal layout.
		b, g, r := p.Tuple(pixel.BGR)
		if err := a.writeByte(b); err != nil {
			return err
		}
		if err := a.writeByte(g); err != nil {
			return err
		}
		if err := a.writeByte(r); err != nil {
			return err
		}
	}

	a.writes++
	a.pixels += f.Len()

	if a.writes >= a.cycleLen() {
		if err := a.endFrame(a.pixels); err != nil {
			return err
		}
		if a.pixels > a.known {
			a.known = a.pixels
		}
		a.stats.record(a.pixels)
		a.writes = 0
		a.pixels = 0
	}
	return nil
}

func (a *APA102) Stats() Stats { return a.stats }

// Close transmits one full frame of zero-brightness black pixels, sized to
// the largest pixel count ever observed, then releases the lines. The
// blackout runs exactly once, even after an aborted run.
func (a *APA102) Close() error {
	if a.closed {
		return nil
	}
	a.closed = true

	err := a.shutoff(a.known)
	for _, c := range a.cleanup {
		if cerr := c.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// cycleLen is the number of WriteFrame calls forming one wire frame. With
// no attached displays each write stands alone.
func (a *APA102) cycleLen() int {
	if len(a.attached) == 0 {
		return 1
	}
	return len(a.attached)
}

func (a *APA102) shutoff(n int) error {
	if err := a.startFrame(); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if err := a.writeByte(0xE0); err != nil {
			return err
		}
		for j := 0; j < 3; j++ {
			if err := a.writeByte(0x00); err != nil {
				return err
			}
		}
	}
	return a.endFrame(n)
}

// startFrame drives both lines low then clocks out 32 zero bits, signalling
// the beginning of a new frame.
func (a *APA102) startFrame() error {
	if err := a.data.Set(false); err != nil {
		return err
	}
	if err := a.clock.Set(false); err != nil {
		return err
	}
	for i := 0; i < 4; i++ {
		if err := a.writeByte(0x00); err != nil {
			return err
		}
	}
	return nil
}

// endFrame clocks out ceil(n/16) zero bytes after n pixels.
func (a *APA102) endFrame(n int) error {
	for i := 0; i < (n+15)/16; i++ {
		if err := a.writeByte(0x00); err != nil {
			return err
		}
	}
	return nil
}

// writeByte shifts one byte out MSB-first. This is the hottest loop in the
// system; it relies on Set's own overhead for signal timing.
func (a *APA102) writeByte(b byte) error {
	for i := 7; i >= 0; i-- {
		if err := a.data.Set(b>>uint(i)&1 != 0); err != nil {
			return err
		}
		if err := a.clock.Set(true); err != nil {
			return err
		}
		if err := a.clock.Set(false); err != nil {
			return err
		}
	}
	return nil
}

var errClosed = fmt.Errorf("sink: closed")
