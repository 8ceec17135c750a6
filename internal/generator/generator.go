// Package generator implements the animation state machines that produce a
// frame's content each tick. The variant set is small and fixed: Breath,
// Rainbow, Cycle, Solid and Strobe.
package generator

import (
	"time"

	"github.com/coreman2200/funtimes-ledstrip/internal/pixel"
)

// State is the per-tick result of a generator.
type State int

const (
	// Ok means the frame was rendered and the generator can continue.
	Ok State = iota
	// ErrRetry means a transient failure; the caller retries immediately
	// within the same tick.
	ErrRetry
	// ErrSkip means this tick's update is dropped but the generator remains
	// usable; the caller treats the tick as handled.
	ErrSkip
	// ErrFatal means the generator is unrecoverable.
	ErrFatal
)

// Generator advances one animation state machine and writes the result into
// the frame it is handed. A generator never owns a frame.
type Generator interface {
	// RenderFrame writes the next animation step into frame, advanced by dt.
	RenderFrame(frame *pixel.Frame, dt time.Duration) State

	// Reset returns the generator to exactly its post-construction state.
	Reset()
}
