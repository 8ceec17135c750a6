// Package engine runs the render loop: one ticker, an ordered set of
// displays, and one sink. Scheduling is single-threaded and cooperative;
// the only concurrent actor is the signal handler flipping the cancel flag.
package engine

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/coreman2200/funtimes-ledstrip/internal/display"
	"github.com/coreman2200/funtimes-ledstrip/internal/sink"
)

// Ticker is the engine's time source. *timer.Timer satisfies it; tests
// substitute a scripted one.
type Ticker interface {
	// Ping blocks until the next tick is due and returns the elapsed time
	// since the previous tick.
	Ping() time.Duration
	// Reset restarts the ticker's clock.
	Reset()
}

// Stats summarizes one run.
type Stats struct {
	// Ticks is the number of completed loop iterations.
	Ticks uint64
	// Peak is the largest total pixel count rendered in a single tick.
	Peak int
	// Elapsed is the wall-clock span of the run.
	Elapsed time.Duration
}

type entry struct {
	d        *display.Display
	finished bool
}

// Engine owns the ticker, the sink, and every display. Display iteration
// order is fixed at AddDisplay time and doubles as the hardware wire order.
type Engine struct {
	ticker Ticker
	out    sink.Sink
	cancel *atomic.Bool

	order    []uint64
	displays map[uint64]*entry

	stats Stats
}

// New creates an engine. cancel is the process-wide cancellation flag, set
// only from the signal handler and polled here once per display per tick;
// nil disables cancellation.
func New(t Ticker, out sink.Sink, cancel *atomic.Bool) *Engine {
	return &Engine{
		ticker:   t,
		out:      out,
		cancel:   cancel,
		displays: make(map[uint64]*entry),
	}
}

// AddDisplay appends a display to the iteration order and announces its
// pixel count to the sink. Must not be called after Run starts.
func (e *Engine) AddDisplay(d *display.Display) {
	id := d.ID()
	e.order = append(e.order, id)
	e.displays[id] = &entry{d: d}
	e.out.Attach(d.Frame().Len())
}

// Run drives ticks until every display reports done, a display fails, or
// the cancel flag is set. Every display's frame is written to the sink every
// tick, finished or not, so the wire stream stays aligned and finished
// displays hold their final image.
func (e *Engine) Run() error {
	e.ticker.Reset()
	e.stats = Stats{}
	start := time.Now()
	defer func() {
		e.stats.Elapsed = time.Since(start)
	}()

	for _, ent := range e.displays {
		ent.finished = false
	}

	finished := 0
	for finished < len(e.order) {
		dt := e.ticker.Ping()

		pixels := 0
		for _, id := range e.order {
			ent := e.displays[id]
			if !ent.finished {
				state, err := ent.d.RenderFrame(dt)
				if err != nil {
					return fmt.Errorf("engine: %w", err)
				}
				if state == display.Done {
					ent.finished = true
					finished++
				}
			}
			if err := e.out.WriteFrame(ent.d.Frame()); err != nil {
				return fmt.Errorf("engine: sink write: %w", err)
			}
			pixels += ent.d.Frame().Len()

			if e.cancel != nil && e.cancel.Load() {
				return nil
			}
		}

		e.stats.Ticks++
		if pixels > e.stats.Peak {
			e.stats.Peak = pixels
		}
	}
	return nil
}

// Stats reports the most recent run's statistics.
func (e *Engine) Stats() Stats { return e.stats }
