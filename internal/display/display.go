// Package display schedules generators and filters over one frame. A
// display owns exactly one frame, a queue of (generator, runtime policy)
// pairs, and a list of filters; each tick advances exactly one generator.
package display

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/coreman2200/funtimes-ledstrip/internal/filter"
	"github.com/coreman2200/funtimes-ledstrip/internal/generator"
	"github.com/coreman2200/funtimes-ledstrip/internal/pixel"
)

// State is what a display reports to the draw engine after a tick.
type State int

const (
	// Continue means the display rendered and has more work.
	Continue State = iota
	// Done means the generator queue is exhausted and the display finished.
	Done
)

// ErrNoGenerator is returned when a display is asked to render with an empty
// queue that was never populated; the caller must treat it as fatal for the
// display.
var ErrNoGenerator = errors.New("display: no generator queued")

// Transient faults are retried immediately within the same tick. The cap
// bounds a generator that keeps returning retry forever.
const maxRetries = 64

// Runtime is the policy governing when a display moves past a generator:
// either a countdown of wall-clock time or an explicit external trigger.
type Runtime struct {
	triggered bool
	total     time.Duration
}

// TimeLimit returns a runtime policy that counts down d across ticks.
func TimeLimit(d time.Duration) Runtime {
	return Runtime{total: d}
}

// Triggered returns a runtime policy that advances only via TriggerNext,
// never from elapsed time.
func Triggered() Runtime {
	return Runtime{triggered: true}
}

type slot struct {
	gen       generator.Generator
	rt        Runtime
	remaining time.Duration
}

var nextID uint64

// Display owns one frame and drives its generator queue and filters.
type Display struct {
	id      uint64
	frame   *pixel.Frame
	looping bool

	queue     []slot
	filters   []filter.Filter
	exhausted bool
}

// New creates a display with a black frame of the given size. The identifier
// is process-unique and monotonically increasing; it exists for stable
// iteration order and sink bookkeeping only.
func New(brightness float32, size int, looping bool) *Display {
	return &Display{
		id:    atomic.AddUint64(&nextID, 1),
		frame: pixel.NewFrame(brightness, size),

		looping: looping,
	}
}

// ID returns the display's process-unique identifier.
func (d *Display) ID() uint64 { return d.id }

// Frame returns the display's frame. The frame's length never changes.
func (d *Display) Frame() *pixel.Frame { return d.frame }

// Looping reports whether exhausted generators rotate to the back of the
// queue with their original runtime restored.
func (d *Display) Looping() bool { return d.looping }

// Queue appends a generator with its runtime policy.
func (d *Display) Queue(g generator.Generator, rt Runtime) {
	d.queue = append(d.queue, slot{gen: g, rt: rt, remaining: rt.total})
	d.exhausted = false
}

// AddFilter appends a filter applied after the generator each tick, in the
// order added.
func (d *Display) AddFilter(f filter.Filter) {
	d.filters = append(d.filters, f)
}

// TriggerNext advances past the front generator of a trigger-policy slot.
// Time-policy slots ignore the trigger. Returns Done if the queue emptied.
func (d *Display) TriggerNext() State {
	if len(d.queue) == 0 || !d.queue[0].rt.triggered {
		if d.exhausted {
			return Done
		}
		return Continue
	}
	d.rotate()
	if len(d.queue) == 0 {
		d.exhausted = true
		return Done
	}
	return Continue
}

// RenderFrame advances the front generator by dt, applies the runtime
// policy, then runs the filters. Generator transitions forward the unused
// remainder of dt so no wall-clock time is lost or duplicated within a tick.
func (d *Display) RenderFrame(dt time.Duration) (State, error) {
	state, err := d.renderGenerators(dt)
	if err != nil {
		return state, err
	}
	if err := d.applyFilters(dt); err != nil {
		return Continue, err
	}
	return state, nil
}

func (d *Display) renderGenerators(dt time.Duration) (State, error) {
	if len(d.queue) == 0 {
		if d.exhausted {
			return Done, nil
		}
		return Continue, ErrNoGenerator
	}

	retries := 0
	for {
		s := &d.queue[0]
		switch s.gen.RenderFrame(d.frame, dt) {
		case generator.Ok:
		case generator.ErrRetry:
			retries++
			if retries > maxRetries {
				return Continue, fmt.Errorf("display %d: generator retry limit exceeded", d.id)
			}
			continue
		case generator.ErrSkip:
			// The tick is handled even though no new pixels were produced.
			return Continue, nil
		default:
			return Continue, fmt.Errorf("display %d: generator failed", d.id)
		}
		retries = 0

		if s.rt.triggered {
			return Continue, nil
		}

		if s.remaining >= dt {
			s.remaining -= dt
			return Continue, nil
		}

		// Slot exhausted mid-tick: rotate and hand the unused remainder of
		// dt to the next generator.
		carry := dt - s.remaining
		zeroBudget := s.rt.total <= 0
		d.rotate()
		if len(d.queue) == 0 {
			d.exhausted = true
			return Done, nil
		}
		// A zero-budget slot on a looping display would be re-queued with
		// zero remaining and spin on the unchanged carry forever. It gets
		// one render per tick instead.
		if d.looping && zeroBudget {
			return Continue, nil
		}
		dt = carry
	}
}

func (d *Display) rotate() {
	s := d.queue[0]
	d.queue = d.queue[1:]
	if d.looping {
		s.gen.Reset()
		s.remaining = s.rt.total
		d.queue = append(d.queue, s)
	}
}

func (d *Display) applyFilters(dt time.Duration) error {
	for _, f := range d.filters {
		retries := 0
	retry:
		switch f.FilterFrame(d.frame, dt) {
		case filter.Ok, filter.ErrSkip:
		case filter.ErrRetry:
			retries++
			if retries > maxRetries {
				return fmt.Errorf("display %d: filter retry limit exceeded", d.id)
			}
			goto retry
		default:
			return fmt.Errorf("display %d: filter failed", d.id)
		}
	}
	return nil
}
