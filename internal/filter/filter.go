// Package filter implements post-processing state machines that rewrite an
// already-rendered frame in place. Filters only ever scale what a generator
// produced; they never replace color.
package filter

import (
	"time"

	"github.com/coreman2200/funtimes-ledstrip/internal/pixel"
)

// State is the per-tick result of a filter, mirroring the generator taxonomy.
type State int

const (
	Ok State = iota
	ErrRetry
	ErrSkip
	ErrFatal
)

// Filter reads and rewrites an existing frame each tick.
type Filter interface {
	// FilterFrame post-processes frame in place, advanced by dt.
	FilterFrame(frame *pixel.Frame, dt time.Duration) State

	// Reset returns the filter to exactly its post-construction state.
	Reset()
}
