package pixel

// Frame is an ordered, fixed-length sequence of pixels plus a software
// brightness scalar in [0, 1]. The length never changes after construction;
// exactly one display owns each frame.
type Frame struct {
	brightness float32
	pix        []Pixel
}

// NewFrame allocates a black frame of the given size. Brightness is clamped
// to [0, 1].
func NewFrame(brightness float32, size int) *Frame {
	return &Frame{
		brightness: clamp01(brightness),
		pix:        make([]Pixel, size),
	}
}

// Len returns the pixel count.
func (f *Frame) Len() int { return len(f.pix) }

// Brightness returns the software brightness scalar. It is applied by the
// sink at write time, not baked into pixel values.
func (f *Frame) Brightness() float32 { return f.brightness }

// SetBrightness clamps b to [0, 1] and stores it.
func (f *Frame) SetBrightness(b float32) { f.brightness = clamp01(b) }

// Pixels returns the mutable pixel buffer.
func (f *Frame) Pixels() []Pixel { return f.pix }

// Fill sets every pixel to p.
func (f *Frame) Fill(p Pixel) {
	for i := range f.pix {
		f.pix[i] = p
	}
}
