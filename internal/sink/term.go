package sink

import (
	"image"
	"image/color"

	"periph.io/x/extra/devices/screen"

	"github.com/coreman2200/funtimes-ledstrip/internal/pixel"
)

// Term emulates a strip by drawing each display's frame as a row of
// truecolor blocks on the terminal. Software brightness is applied before
// printing, like the hardware sinks apply it before serialising.
type Term struct {
	devs  map[int]*screen.Dev
	stats Stats
}

// NewTerm returns a terminal-emulation sink.
func NewTerm() *Term {
	return &Term{devs: make(map[int]*screen.Dev)}
}

func (t *Term) Attach(int) {}

func (t *Term) WriteFrame(f *pixel.Frame) error {
	// One device per observed width; displays of different sizes alternate
	// writes every tick and must not reallocate.
	n := f.Len()
	dev := t.devs[n]
	if dev == nil {
		dev = screen.New(n)
		t.devs[n] = dev
	}

	img := image.NewNRGBA(image.Rect(0, 0, n, 1))
	brightness := f.Brightness()
	for i, p := range f.Pixels() {
		p = p.Scale(brightness)
		img.SetNRGBA(i, 0, color.NRGBA{R: p.R, G: p.G, B: p.B, A: 255})
	}

	if err := dev.Draw(dev.Bounds(), img, image.Point{}); err != nil {
		return err
	}
	t.stats.record(n)
	return nil
}

func (t *Term) Stats() Stats { return t.stats }

func (t *Term) Close() error {
	var err error
	for _, dev := range t.devs {
		if herr := dev.Halt(); err == nil {
			err = herr
		}
	}
	return err
}
