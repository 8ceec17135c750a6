package sink

import (
	"fmt"

	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/apa102"
	"periph.io/x/host/v3"

	"github.com/coreman2200/funtimes-ledstrip/internal/pixel"
)

// SPI pushes frames through a hardware SPI port using the periph.io APA102
// driver, which emits the same wire format as the bit-banged sink but at bus
// speed. The driver owns framing; this sink concatenates the attached
// displays' pixels into one RGB buffer per tick.
type SPI struct {
	port spi.PortCloser
	opts apa102.Opts
	dev  *apa102.Dev

	buf []byte

	attached []int
	total    int
	known    int

	writes int
	pixels int

	stats  Stats
	closed bool
}

// NewSPI opens the named SPI port ("" picks the first registered one).
// brightness is the 5-bit hardware brightness, expanded to the driver's
// 8-bit intensity scale.
func NewSPI(portName string, brightness uint8) (*SPI, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("spi host init: %w", err)
	}
	port, err := spireg.Open(portName)
	if err != nil {
		return nil, fmt.Errorf("spi open %q: %w", portName, err)
	}
	if brightness > 31 {
		brightness = 31
	}
	opts := apa102.DefaultOpts
	opts.Intensity = brightness<<3 | brightness>>2
	return &SPI{port: port, opts: opts}, nil
}

func (s *SPI) Attach(size int) {
	s.attached = append(s.attached, size)
	s.total += size
	if s.total > s.known {
		s.known = s.total
	}
}

func (s *SPI) WriteFrame(f *pixel.Frame) error {
	if s.closed {
		return errClosed
	}

	brightness := f.Brightness()
	for _, p := range f.Pixels() {
		p = p.Scale(brightness)
		s.buf = append(s.buf, p.R, p.G, p.B)
	}
	s.writes++
	s.pixels += f.Len()

	if s.writes < s.cycleLen() {
		return nil
	}
	return s.flush()
}

// flush hands the accumulated tick's pixels to the driver in one write.
func (s *SPI) flush() error {
	n := s.pixels
	s.writes = 0
	s.pixels = 0

	if s.dev == nil || s.opts.NumPixels != n {
		s.opts.NumPixels = n
		dev, err := apa102.New(s.port, &s.opts)
		if err != nil {
			s.buf = s.buf[:0]
			return fmt.Errorf("spi apa102: %w", err)
		}
		s.dev = dev
	}
	_, err := s.dev.Write(s.buf)
	s.buf = s.buf[:0]
	if err != nil {
		return err
	}

	if n > s.known {
		s.known = n
	}
	s.stats.record(n)
	return nil
}

func (s *SPI) Stats() Stats { return s.stats }

// Close blacks out every LED ever addressed, then releases the port.
func (s *SPI) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	var err error
	if s.known > 0 {
		if s.dev == nil || s.opts.NumPixels != s.known {
			s.opts.NumPixels = s.known
			if dev, derr := apa102.New(s.port, &s.opts); derr == nil {
				s.dev = dev
			} else {
				err = derr
			}
		}
		if s.dev != nil {
			if herr := s.dev.Halt(); err == nil {
				err = herr
			}
		}
	}
	if cerr := s.port.Close(); err == nil {
		err = cerr
	}
	return err
}

func (s *SPI) cycleLen() int {
	if len(s.attached) == 0 {
		return 1
	}
	return len(s.attached)
}
