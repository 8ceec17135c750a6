package sink

import (
	"fmt"
	"io"

	"github.com/warthog618/go-gpiocdev"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// periphLine drives a periph.io pin.
type periphLine struct {
	pin gpio.PinIO
}

func (l periphLine) Set(high bool) error {
	return l.pin.Out(gpio.Level(high))
}

func (l periphLine) Close() error {
	return l.pin.Halt()
}

// OpenPeriphLines resolves two BCM pin numbers through the periph.io host
// drivers and returns them as output lines.
func OpenPeriphLines(dataPin, clockPin int) (data, clock Line, cleanup []io.Closer, err error) {
	if _, err := host.Init(); err != nil {
		return nil, nil, nil, fmt.Errorf("gpio host init: %w", err)
	}

	dp := gpioreg.ByName(fmt.Sprintf("GPIO%d", dataPin))
	if dp == nil {
		return nil, nil, nil, fmt.Errorf("gpio: no pin GPIO%d", dataPin)
	}
	cp := gpioreg.ByName(fmt.Sprintf("GPIO%d", clockPin))
	if cp == nil {
		return nil, nil, nil, fmt.Errorf("gpio: no pin GPIO%d", clockPin)
	}

	d := periphLine{pin: dp}
	c := periphLine{pin: cp}
	return d, c, []io.Closer{d, c}, nil
}

// cdevLine drives a Linux gpiochip character-device line.
type cdevLine struct {
	line *gpiocdev.Line
}

func (l cdevLine) Set(high bool) error {
	v := 0
	if high {
		v = 1
	}
	return l.line.SetValue(v)
}

// OpenCdevLines requests two output lines from a gpiochip device, e.g.
// ("gpiochip0", 6, 5).
func OpenCdevLines(chip string, dataOffset, clockOffset int) (data, clock Line, cleanup []io.Closer, err error) {
	dl, err := gpiocdev.RequestLine(chip, dataOffset, gpiocdev.AsOutput(0))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("gpio %s line %d: %w", chip, dataOffset, err)
	}
	cl, err := gpiocdev.RequestLine(chip, clockOffset, gpiocdev.AsOutput(0))
	if err != nil {
		_ = dl.Close()
		return nil, nil, nil, fmt.Errorf("gpio %s line %d: %w", chip, clockOffset, err)
	}
	return cdevLine{line: dl}, cdevLine{line: cl}, []io.Closer{dl, cl}, nil
}
