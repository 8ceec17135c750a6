package sink

import "github.com/coreman2200/funtimes-ledstrip/internal/pixel"

// Null is a sink with no output; it only keeps statistics. Useful headless
// and as a baseline for loop benchmarks.
type Null struct {
	stats Stats
}

// NewNull returns a no-op sink.
func NewNull() *Null { return &Null{} }

func (n *Null) Attach(int) {}

func (n *Null) WriteFrame(f *pixel.Frame) error {
	n.stats.record(f.Len())
	return nil
}

func (n *Null) Stats() Stats { return n.stats }

func (n *Null) Close() error { return nil }
