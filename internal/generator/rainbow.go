package generator

import (
	"math"
	"time"

	"github.com/coreman2200/funtimes-ledstrip/internal/pixel"
)

// Rainbow sweeps a continuously increasing hue across the strip. step makes
// runs of step consecutive LEDs share a phase; arc scales how many full hue
// cycles appear across the strip at once.
type Rainbow struct {
	hue float32
	dh  float32

	sat  float32
	val  float32
	arc  float32
	step int
}

// NewRainbow creates a Rainbow generator. period is the time for the hue to
// sweep one full cycle; sat and val are clamped to [0, 1]; step is raised to
// at least 1.
func NewRainbow(period time.Duration, sat, val, arc float32, step int) *Rainbow {
	if step < 1 {
		step = 1
	}
	return &Rainbow{
		dh:   360.0 / float32(period.Seconds()),
		sat:  clampUnit(sat),
		val:  clampUnit(val),
		arc:  arc,
		step: step,
	}
}

// Hue returns the current base hue in [0, 360); exposed for tests.
func (r *Rainbow) Hue() float32 { return r.hue }

func (r *Rainbow) RenderFrame(frame *pixel.Frame, dt time.Duration) State {
	r.hue += r.dh * float32(dt.Seconds())
	// Wrap into [0, 360) even when dt spans several full periods.
	r.hue = float32(math.Mod(float64(r.hue), 360.0))
	if r.hue < 0 {
		r.hue += 360.0
	}

	n := float32(frame.Len())
	pix := frame.Pixels()
	for i := range pix {
		phase := float32(math.Floor(float64(i)/float64(r.step))) * float32(r.step)
		phase = phase / n * 360.0 * r.arc
		pix[i] = pixel.FromHSV(r.hue+phase, r.sat, r.val)
	}
	return Ok
}

func (r *Rainbow) Reset() {
	r.hue = 0
}

func clampUnit(x float32) float32 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
