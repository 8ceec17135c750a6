package generator

import "github.com/coreman2200/funtimes-ledstrip/internal/pixel"

type paletteMode int

const (
	paletteOrdered paletteMode = iota
	paletteRandom
	paletteRandomBright
)

// Palette supplies the color sequence for generators that switch colors:
// either a fixed ordered list walked with wrap-around, or freshly drawn
// random (optionally bright) colors.
type Palette struct {
	mode    paletteMode
	colors  []pixel.Pixel
	ind     int
	current pixel.Pixel
}

// Ordered returns a palette that walks the given colors in order, wrapping.
// Panics on an empty list; configuration validates before construction.
func Ordered(colors ...pixel.Pixel) *Palette {
	if len(colors) == 0 {
		panic("generator: ordered palette needs at least one color")
	}
	cs := make([]pixel.Pixel, len(colors))
	copy(cs, colors)
	return &Palette{mode: paletteOrdered, colors: cs, current: cs[0]}
}

// RandomPalette returns a palette drawing a uniformly random color on every
// advance.
func RandomPalette() *Palette {
	return &Palette{mode: paletteRandom, current: pixel.Random()}
}

// RandomBrightPalette returns a palette drawing a random color with
// near-maximal saturation and value on every advance.
func RandomBrightPalette() *Palette {
	return &Palette{mode: paletteRandomBright, current: pixel.RandomBright()}
}

// Current returns the color selected by the most recent advance or reset.
func (p *Palette) Current() pixel.Pixel { return p.current }

// Advance moves to the next color and returns it.
func (p *Palette) Advance() pixel.Pixel {
	switch p.mode {
	case paletteOrdered:
		p.ind = (p.ind + 1) % len(p.colors)
		p.current = p.colors[p.ind]
	case paletteRandomBright:
		p.current = pixel.RandomBright()
	default:
		p.current = pixel.Random()
	}
	return p.current
}

// Reset zeroes the palette index and redraws the current color.
func (p *Palette) Reset() {
	p.ind = 0
	switch p.mode {
	case paletteOrdered:
		p.current = p.colors[0]
	case paletteRandomBright:
		p.current = pixel.RandomBright()
	default:
		p.current = pixel.Random()
	}
}
