package engine

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-ledstrip/internal/display"
	"github.com/coreman2200/funtimes-ledstrip/internal/generator"
	"github.com/coreman2200/funtimes-ledstrip/internal/pixel"
	"github.com/coreman2200/funtimes-ledstrip/internal/sink"
)

var (
	red   = pixel.Pixel{R: 255}
	green = pixel.Pixel{G: 255}
	blue  = pixel.Pixel{B: 255}
)

// fakeTicker returns a fixed dt per ping and can flip the cancel flag after
// a set number of pings.
type fakeTicker struct {
	dt     time.Duration
	pings  int
	resets int

	cancelAfter int
	cancel      *atomic.Bool
}

func (t *fakeTicker) Ping() time.Duration {
	t.pings++
	if t.cancel != nil && t.pings >= t.cancelAfter {
		t.cancel.Store(true)
	}
	return t.dt
}

func (t *fakeTicker) Reset() { t.resets++ }

// recordingSink captures every written frame's pixels.
type recordingSink struct {
	attached []int
	writes   [][]pixel.Pixel
	stats    sink.Stats
}

func (r *recordingSink) Attach(size int) { r.attached = append(r.attached, size) }

func (r *recordingSink) WriteFrame(f *pixel.Frame) error {
	r.writes = append(r.writes, append([]pixel.Pixel(nil), f.Pixels()...))
	return nil
}

func (r *recordingSink) Stats() sink.Stats { return r.stats }

func (r *recordingSink) Close() error { return nil }

func solidFrame(t *testing.T, pixels []pixel.Pixel, want pixel.Pixel) {
	t.Helper()
	for i, p := range pixels {
		require.Equal(t, want, p, "pixel %d", i)
	}
}

func TestRunCyclesThroughPaletteThenFinishes(t *testing.T) {
	period := time.Second

	d := display.New(1.0, 3, false)
	d.Queue(
		generator.NewCycle(period, generator.Ordered(red, green, blue)),
		display.TimeLimit(3*period),
	)

	tick := &fakeTicker{dt: period}
	out := &recordingSink{}
	e := New(tick, out, nil)
	e.AddDisplay(d)

	require.NoError(t, e.Run())

	assert.Equal(t, []int{3}, out.attached)
	require.Len(t, out.writes, 4)
	solidFrame(t, out.writes[0], red)
	solidFrame(t, out.writes[1], green)
	solidFrame(t, out.writes[2], blue)

	assert.Equal(t, 1, tick.resets)
	assert.Equal(t, uint64(4), e.Stats().Ticks)
	assert.Equal(t, 3, e.Stats().Peak)
}

func TestRunWritesDisplaysInFixedOrderEveryTick(t *testing.T) {
	d1 := display.New(1.0, 2, false)
	d1.Queue(generator.NewSolid(red), display.TimeLimit(time.Second))
	d2 := display.New(1.0, 4, false)
	d2.Queue(generator.NewSolid(blue), display.TimeLimit(3*time.Second))

	out := &recordingSink{}
	e := New(&fakeTicker{dt: time.Second}, out, nil)
	e.AddDisplay(d1)
	e.AddDisplay(d2)

	require.NoError(t, e.Run())

	assert.Equal(t, []int{2, 4}, out.attached)
	// 4 ticks until d2 finishes, two writes per tick, d1 always first.
	require.Len(t, out.writes, 8)
	for i := 0; i < len(out.writes); i += 2 {
		assert.Len(t, out.writes[i], 2, "write %d", i)
		assert.Len(t, out.writes[i+1], 4, "write %d", i+1)
	}

	// d1 finished after its second tick but its frame keeps going out.
	solidFrame(t, out.writes[6], red)
	assert.Equal(t, 6, e.Stats().Peak)
}

func TestRunStopsOnCancel(t *testing.T) {
	d := display.New(1.0, 2, true)
	d.Queue(generator.NewSolid(green), display.TimeLimit(time.Second))

	var cancel atomic.Bool
	tick := &fakeTicker{dt: time.Second, cancelAfter: 3, cancel: &cancel}
	out := &recordingSink{}
	e := New(tick, out, &cancel)
	e.AddDisplay(d)

	require.NoError(t, e.Run())

	// Looping display never finishes on its own; the flag ends the run.
	assert.Equal(t, 3, tick.pings)
	assert.Len(t, out.writes, 3)
}

type fatalGenerator struct{}

func (fatalGenerator) RenderFrame(*pixel.Frame, time.Duration) generator.State {
	return generator.ErrFatal
}

func (fatalGenerator) Reset() {}

func TestRunAbortsOnDisplayError(t *testing.T) {
	d := display.New(1.0, 1, false)
	d.Queue(fatalGenerator{}, display.TimeLimit(time.Second))

	out := &recordingSink{}
	e := New(&fakeTicker{dt: time.Second}, out, nil)
	e.AddDisplay(d)

	err := e.Run()
	require.Error(t, err)
	assert.Empty(t, out.writes, "failed display's frame is not written")
}

func TestRunWithNoDisplaysReturnsImmediately(t *testing.T) {
	tick := &fakeTicker{dt: time.Second}
	e := New(tick, sink.NewNull(), nil)

	require.NoError(t, e.Run())
	assert.Zero(t, tick.pings)
}

// End to end through the hardware encoder: after a cancelled run the sink's
// close-time frame forces every pixel it ever addressed to black.
type wireTap struct {
	dataHigh bool
	bits     []bool
}

func (w *wireTap) Set(high bool) error {
	w.dataHigh = high
	return nil
}

type wireTapClock struct{ w *wireTap }

func (c wireTapClock) Set(high bool) error {
	if high {
		c.w.bits = append(c.w.bits, c.w.dataHigh)
	}
	return nil
}

func TestCancelledRunStillBlacksOutStrip(t *testing.T) {
	d := display.New(1.0, 4, true)
	d.Queue(generator.NewSolid(red), display.TimeLimit(time.Second))

	var cancel atomic.Bool
	tick := &fakeTicker{dt: time.Second, cancelAfter: 2, cancel: &cancel}

	tap := &wireTap{}
	out := sink.NewAPA102(tap, wireTapClock{tap}, 31)
	e := New(tick, out, &cancel)
	e.AddDisplay(d)

	require.NoError(t, e.Run())
	tap.bits = nil
	require.NoError(t, out.Close())

	require.Zero(t, len(tap.bits)%8)
	raw := make([]byte, len(tap.bits)/8)
	for i, bit := range tap.bits {
		if bit {
			raw[i/8] |= 1 << uint(7-i%8)
		}
	}
	require.Len(t, raw, 4+4*4+1)
	for i := 0; i < 4; i++ {
		px := raw[4+4*i : 4+4*i+4]
		assert.Equal(t, []byte{0xE0, 0, 0, 0}, px, "pixel %d", i)
	}
}
