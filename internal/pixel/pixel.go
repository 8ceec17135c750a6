// Package pixel holds the color data model shared by the whole pipeline: a
// 3-channel Pixel value, the six channel orderings used for wire
// serialization, and the fixed-length Frame a display renders into.
package pixel

import (
	"math"
	"math/rand"
	"strings"
)

// Order enumerates the six channel permutations a pixel can be packed or
// serialized in. Different strip wirings expect different orders.
type Order int

const (
	RGB Order = iota
	RBG
	GRB
	GBR
	BRG
	BGR
)

// ParseOrder maps a string like "grb" to its Order.
func ParseOrder(s string) (Order, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "RGB", "":
		return RGB, true
	case "RBG":
		return RBG, true
	case "GRB":
		return GRB, true
	case "GBR":
		return GBR, true
	case "BRG":
		return BRG, true
	case "BGR":
		return BGR, true
	}
	return RGB, false
}

// Pixel is an immutable 3-channel color value. Software brightness is not
// baked in here; sinks apply it at write time.
type Pixel struct {
	R, G, B uint8
}

// FromCode unpacks a 24-bit color code whose bytes, high to low, are in the
// given order. FromCode(0xFF0000, RGB) and FromCode(0x0000FF, BGR) are both
// full red.
func FromCode(code uint32, o Order) Pixel {
	hi := uint8(code >> 16)
	mid := uint8(code >> 8)
	lo := uint8(code)
	return fromTuple(hi, mid, lo, o)
}

// FromTuple builds a Pixel from three channel values given in the specified
// order.
func FromTuple(a, b, c uint8, o Order) Pixel {
	return fromTuple(a, b, c, o)
}

func fromTuple(a, b, c uint8, o Order) Pixel {
	switch o {
	case RBG:
		return Pixel{R: a, G: c, B: b}
	case GRB:
		return Pixel{R: b, G: a, B: c}
	case GBR:
		return Pixel{R: c, G: a, B: b}
	case BRG:
		return Pixel{R: b, G: c, B: a}
	case BGR:
		return Pixel{R: c, G: b, B: a}
	default:
		return Pixel{R: a, G: b, B: c}
	}
}

// FromHSV converts an (h, s, v) triple to a Pixel. h is in degrees and is
// wrapped mod 360; s and v are clamped to [0, 1]. Channel values truncate
// toward zero, matching the strip driver this feeds.
func FromHSV(h, s, v float32) Pixel {
	h = float32(math.Mod(float64(h), 360.0))
	if h < 0 {
		h += 360.0
	}
	s = clamp01(s)
	v = clamp01(v)

	c := v * s
	x := c * (1.0 - float32(math.Abs(math.Mod(float64(h)/60.0, 2.0)-1.0)))
	m := v - c

	var r, g, b float32
	switch {
	case h < 60.0:
		r, g, b = c, x, 0
	case h < 120.0:
		r, g, b = x, c, 0
	case h < 180.0:
		r, g, b = 0, c, x
	case h < 240.0:
		r, g, b = 0, x, c
	case h < 300.0:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}

	return Pixel{
		R: uint8((r + m) * 255.0),
		G: uint8((g + m) * 255.0),
		B: uint8((b + m) * 255.0),
	}
}

// Random returns a uniformly random color.
func Random() Pixel {
	return Pixel{
		R: uint8(rand.Intn(256)),
		G: uint8(rand.Intn(256)),
		B: uint8(rand.Intn(256)),
	}
}

// RandomBright returns a random color with near-maximal saturation and value.
func RandomBright() Pixel {
	return FromHSV(
		rand.Float32()*360.0,
		0.85+rand.Float32()*0.15,
		0.85+rand.Float32()*0.15,
	)
}

// Scale multiplies each channel by factor clamped to [0, 1], truncating
// toward zero and saturating at 255.
func (p Pixel) Scale(factor float32) Pixel {
	factor = clamp01(factor)
	return Pixel{
		R: scaleChan(p.R, factor),
		G: scaleChan(p.G, factor),
		B: scaleChan(p.B, factor),
	}
}

func scaleChan(c uint8, f float32) uint8 {
	v := float32(c) * f
	if v > 255.0 {
		v = 255.0
	}
	if v < 0 {
		v = 0
	}
	return uint8(v)
}

// Tuple returns the channel values permuted into the given order.
func (p Pixel) Tuple(o Order) (uint8, uint8, uint8) {
	switch o {
	case RBG:
		return p.R, p.B, p.G
	case GRB:
		return p.G, p.R, p.B
	case GBR:
		return p.G, p.B, p.R
	case BRG:
		return p.B, p.R, p.G
	case BGR:
		return p.B, p.G, p.R
	default:
		return p.R, p.G, p.B
	}
}

func clamp01(x float32) float32 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
