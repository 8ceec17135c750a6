package display_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-ledstrip/internal/display"
	"github.com/coreman2200/funtimes-ledstrip/internal/filter"
	"github.com/coreman2200/funtimes-ledstrip/internal/generator"
	"github.com/coreman2200/funtimes-ledstrip/internal/pixel"
)

var (
	red   = pixel.Pixel{R: 255}
	green = pixel.Pixel{G: 255}
	blue  = pixel.Pixel{B: 255}
)

// stubGenerator returns a scripted sequence of states.
type stubGenerator struct {
	states []generator.State
	calls  int
}

func (s *stubGenerator) RenderFrame(_ *pixel.Frame, _ time.Duration) generator.State {
	st := s.states[0]
	if len(s.states) > 1 {
		s.states = s.states[1:]
	}
	s.calls++
	return st
}

func (s *stubGenerator) Reset() {}

func TestEmptyQueueIsFatal(t *testing.T) {
	d := display.New(1, 4, false)
	_, err := d.RenderFrame(time.Second)
	assert.ErrorIs(t, err, display.ErrNoGenerator)
}

func TestDtForwarding(t *testing.T) {
	t1 := 2 * time.Second
	t2 := 4 * time.Second

	build := func() *display.Display {
		d := display.New(1, 1, false)
		d.Queue(generator.NewSolid(red), display.TimeLimit(t1))
		d.Queue(generator.NewSolid(green), display.TimeLimit(t2))
		return d
	}

	// One tick of T1 + 0.5*T2 must leave the second generator with exactly
	// 0.5*T2 remaining...
	one := build()
	st, err := one.RenderFrame(t1 + t2/2)
	require.NoError(t, err)
	assert.Equal(t, display.Continue, st)
	assert.Equal(t, green, one.Frame().Pixels()[0], "second generator rendered with the carried remainder")

	// ...identical to ticking T1 then 0.5*T2 separately.
	two := build()
	st, err = two.RenderFrame(t1)
	require.NoError(t, err)
	assert.Equal(t, display.Continue, st)
	st, err = two.RenderFrame(t2 / 2)
	require.NoError(t, err)
	assert.Equal(t, display.Continue, st)

	for _, d := range []*display.Display{one, two} {
		// Exactly 0.5*T2 remains: consuming it keeps Continue, any more ends.
		st, err := d.RenderFrame(t2 / 2)
		require.NoError(t, err)
		assert.Equal(t, display.Continue, st)

		st, err = d.RenderFrame(time.Nanosecond)
		require.NoError(t, err)
		assert.Equal(t, display.Done, st)
	}
}

func TestLoopingRotatesWithReset(t *testing.T) {
	d := display.New(1, 1, true)
	d.Queue(generator.NewCycle(time.Second, generator.Ordered(red, green, blue)), display.TimeLimit(time.Second))

	// A looping display never reports Done; after each expiry the generator
	// restarts from its reset state, so the first color repeats.
	for i := 0; i < 5; i++ {
		st, err := d.RenderFrame(time.Second)
		require.NoError(t, err)
		assert.Equal(t, display.Continue, st)
		assert.Equal(t, red, d.Frame().Pixels()[0])
	}
}

func TestZeroBudgetLoopingSlotRendersOncePerTick(t *testing.T) {
	d := display.New(1, 1, true)
	d.Queue(generator.NewSolid(red), display.TimeLimit(0))

	// The re-queued slot comes back with zero remaining; each tick must
	// still return instead of spinning on the unconsumed dt.
	for i := 0; i < 5; i++ {
		st, err := d.RenderFrame(time.Second)
		require.NoError(t, err)
		assert.Equal(t, display.Continue, st)
		assert.Equal(t, red, d.Frame().Pixels()[0])
	}
}

func TestZeroBudgetSlotForwardsWholeTick(t *testing.T) {
	d := display.New(1, 1, false)
	d.Queue(generator.NewSolid(red), display.TimeLimit(0))
	d.Queue(generator.NewSolid(green), display.TimeLimit(time.Second))

	// The zero-budget slot consumed none of the tick, so the full dt lands
	// on the next generator and exhausts its budget exactly.
	st, err := d.RenderFrame(time.Second)
	require.NoError(t, err)
	assert.Equal(t, display.Continue, st)
	assert.Equal(t, green, d.Frame().Pixels()[0])

	st, err = d.RenderFrame(time.Nanosecond)
	require.NoError(t, err)
	assert.Equal(t, display.Done, st)
}

func TestQueueExhaustionReportsDone(t *testing.T) {
	d := display.New(1, 1, false)
	d.Queue(generator.NewSolid(red), display.TimeLimit(time.Second))

	st, err := d.RenderFrame(500 * time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, display.Continue, st)

	st, err = d.RenderFrame(time.Second)
	require.NoError(t, err)
	assert.Equal(t, display.Done, st)

	// Subsequent ticks stay Done rather than erroring.
	st, err = d.RenderFrame(time.Second)
	require.NoError(t, err)
	assert.Equal(t, display.Done, st)
}

func TestTriggerPolicy(t *testing.T) {
	d := display.New(1, 1, false)
	d.Queue(generator.NewSolid(red), display.Triggered())
	d.Queue(generator.NewSolid(green), display.TimeLimit(time.Second))

	// Elapsed time never advances a triggered slot.
	for i := 0; i < 3; i++ {
		st, err := d.RenderFrame(time.Hour)
		require.NoError(t, err)
		assert.Equal(t, display.Continue, st)
		assert.Equal(t, red, d.Frame().Pixels()[0])
	}

	assert.Equal(t, display.Continue, d.TriggerNext())

	st, err := d.RenderFrame(500 * time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, display.Continue, st)
	assert.Equal(t, green, d.Frame().Pixels()[0])
}

func TestTriggerNextOnLastSlot(t *testing.T) {
	d := display.New(1, 1, false)
	d.Queue(generator.NewSolid(red), display.Triggered())

	assert.Equal(t, display.Done, d.TriggerNext())

	st, err := d.RenderFrame(time.Second)
	require.NoError(t, err)
	assert.Equal(t, display.Done, st)
}

func TestSkipLeavesQueueUntouched(t *testing.T) {
	d := display.New(1, 1, false)
	g := &stubGenerator{states: []generator.State{generator.ErrSkip, generator.Ok}}
	d.Queue(g, display.TimeLimit(time.Second))

	st, err := d.RenderFrame(10 * time.Second)
	require.NoError(t, err)
	assert.Equal(t, display.Continue, st, "skip surfaces as ordinary continuation")

	// The slot did not expire: the generator renders again next tick.
	st, err = d.RenderFrame(100 * time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, display.Continue, st)
	assert.Equal(t, 2, g.calls)
}

func TestRetryIsImmediate(t *testing.T) {
	d := display.New(1, 1, false)
	g := &stubGenerator{states: []generator.State{generator.ErrRetry, generator.ErrRetry, generator.Ok}}
	d.Queue(g, display.TimeLimit(time.Second))

	st, err := d.RenderFrame(100 * time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, display.Continue, st)
	assert.Equal(t, 3, g.calls, "retries happen within the same tick")
}

func TestRetryStormEscalates(t *testing.T) {
	d := display.New(1, 1, false)
	g := &stubGenerator{states: []generator.State{generator.ErrRetry}}
	d.Queue(g, display.TimeLimit(time.Second))

	_, err := d.RenderFrame(100 * time.Millisecond)
	assert.Error(t, err)
}

func TestFatalPropagates(t *testing.T) {
	d := display.New(1, 1, false)
	g := &stubGenerator{states: []generator.State{generator.ErrFatal}}
	d.Queue(g, display.TimeLimit(time.Second))

	_, err := d.RenderFrame(100 * time.Millisecond)
	assert.Error(t, err)
}

func TestFiltersRunAfterGenerator(t *testing.T) {
	d := display.New(1, 2, false)
	d.Queue(generator.NewSolid(red), display.TimeLimit(time.Hour))
	d.AddFilter(filter.NewStrobe(time.Second, 0.25))

	// r = 0.5 within the strobe period: the filter blanks the solid fill.
	st, err := d.RenderFrame(500 * time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, display.Continue, st)
	assert.Equal(t, pixel.Pixel{}, d.Frame().Pixels()[0])
}

func TestIDsAreMonotonic(t *testing.T) {
	a := display.New(1, 1, false)
	b := display.New(1, 1, false)
	assert.Greater(t, b.ID(), a.ID())
}
