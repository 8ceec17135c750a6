package filter_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/coreman2200/funtimes-ledstrip/internal/filter"
	"github.com/coreman2200/funtimes-ledstrip/internal/pixel"
)

var white = pixel.Pixel{R: 255, G: 255, B: 255}

func TestBreathEnvelopeScalesInPlace(t *testing.T) {
	b := filter.NewBreath(time.Second)
	f := pixel.NewFrame(1, 4)
	f.Fill(white)

	s := b.FilterFrame(f, 100*time.Millisecond)
	assert.Equal(t, filter.Ok, s)

	// Early in the arc the envelope is partial: darker than white but not
	// black, and uniform across the frame.
	p := f.Pixels()[0]
	assert.NotEqual(t, white, p)
	assert.NotEqual(t, pixel.Pixel{}, p)
	for _, q := range f.Pixels() {
		assert.Equal(t, p, q)
	}
}

func TestBreathNeverBrightens(t *testing.T) {
	b := filter.NewBreath(2 * time.Second)
	f := pixel.NewFrame(1, 1)

	for i := 0; i < 500; i++ {
		f.Fill(white)
		b.FilterFrame(f, 10*time.Millisecond)
		p := f.Pixels()[0]
		assert.LessOrEqual(t, p.R, uint8(255))
		assert.Equal(t, p.R, p.G)
		assert.Equal(t, p.R, p.B)
	}
}

func TestStrobeBlanksOutsideDuty(t *testing.T) {
	s := filter.NewStrobe(time.Second, 0.25)
	f := pixel.NewFrame(1, 2)

	f.Fill(white)
	s.FilterFrame(f, 100*time.Millisecond) // r = 0.1: kept
	assert.Equal(t, white, f.Pixels()[0])

	f.Fill(white)
	s.FilterFrame(f, 400*time.Millisecond) // r = 0.5: blanked
	assert.Equal(t, pixel.Pixel{}, f.Pixels()[0])

	f.Fill(white)
	s.FilterFrame(f, 550*time.Millisecond) // wrapped: kept again
	assert.Equal(t, white, f.Pixels()[0])
}

func TestStrobeReset(t *testing.T) {
	s := filter.NewStrobe(time.Second, 0.5)
	f := pixel.NewFrame(1, 1)

	f.Fill(white)
	s.FilterFrame(f, 700*time.Millisecond)
	assert.Equal(t, pixel.Pixel{}, f.Pixels()[0])

	s.Reset()
	f.Fill(white)
	s.FilterFrame(f, 100*time.Millisecond)
	assert.Equal(t, white, f.Pixels()[0])
}
