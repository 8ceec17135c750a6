// Package config declares the YAML surface of the strip runner and builds
// fully-formed displays, generators, filters and sinks from it. Everything
// downstream of here assumes validated parameters.
package config

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/coreman2200/funtimes-ledstrip/internal/display"
	"github.com/coreman2200/funtimes-ledstrip/internal/filter"
	"github.com/coreman2200/funtimes-ledstrip/internal/generator"
	"github.com/coreman2200/funtimes-ledstrip/internal/pixel"
	"github.com/coreman2200/funtimes-ledstrip/internal/sink"
)

// Duration is a time.Duration that (un)marshals as a string like "250ms".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("config: bad duration %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

type SinkCfg struct {
	Type    string `yaml:"type"`              // "apa102" | "spi" | "term" | "null"
	Backend string `yaml:"backend,omitempty"` // "periph" | "cdev"

	Chip     string `yaml:"chip,omitempty"` // e.g. gpiochip0
	DataPin  int    `yaml:"data_pin"`
	ClockPin int    `yaml:"clock_pin"`

	Brightness uint8  `yaml:"brightness"` // hardware, 0-31
	SPIDev     string `yaml:"spi_dev,omitempty"`
}

type GeneratorCfg struct {
	Kind string `yaml:"kind"` // "breath" | "rainbow" | "cycle" | "solid" | "strobe"

	// Runtime policy: run_for counts down wall-clock time; trigger waits for
	// an external advance instead.
	RunFor  Duration `yaml:"run_for,omitempty"`
	Trigger bool     `yaml:"trigger,omitempty"`

	// Palette, for breath and cycle.
	Order  string   `yaml:"order,omitempty"` // "ordered" | "random" | "random-bright"
	Colors []string `yaml:"colors,omitempty"`

	// Solid and strobe.
	Color string `yaml:"color,omitempty"`

	HalfPeriod Duration `yaml:"half_period,omitempty"` // breath
	Period     Duration `yaml:"period,omitempty"`      // rainbow, cycle, strobe
	Duty       float64  `yaml:"duty,omitempty"`        // strobe

	// Rainbow shape.
	Saturation float64 `yaml:"saturation,omitempty"`
	Value      float64 `yaml:"value,omitempty"`
	Arc        float64 `yaml:"arc,omitempty"`
	Step       int     `yaml:"step,omitempty"`
}

type FilterCfg struct {
	Kind string `yaml:"kind"` // "breath" | "strobe"

	HalfPeriod Duration `yaml:"half_period,omitempty"`
	Period     Duration `yaml:"period,omitempty"`
	Duty       float64  `yaml:"duty,omitempty"`
}

type DisplayCfg struct {
	Size       int     `yaml:"size"`
	Brightness float64 `yaml:"brightness"` // software scalar, 0-1
	Looping    bool    `yaml:"looping"`

	Generators []GeneratorCfg `yaml:"generators"`
	Filters    []FilterCfg    `yaml:"filters,omitempty"`
}

type Config struct {
	FPS int `yaml:"fps"`

	Sink     SinkCfg      `yaml:"sink"`
	Displays []DisplayCfg `yaml:"displays"`
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

// Default is a demo setup: one 64-pixel looping display breathing through
// red, green and blue on a terminal sink.
func Default() *Config {
	return &Config{
		FPS: 60,
		Sink: SinkCfg{
			Type:       "term",
			Brightness: 16,
		},
		Displays: []DisplayCfg{{
			Size:       64,
			Brightness: 1.0,
			Looping:    true,
			Generators: []GeneratorCfg{{
				Kind:       "breath",
				RunFor:     Duration(30 * time.Second),
				Order:      "ordered",
				Colors:     []string{"#ff0000", "#00ff00", "#0000ff"},
				HalfPeriod: Duration(2 * time.Second),
			}},
		}},
	}
}

// Validate rejects anything the builders would otherwise have to guess at.
func (c *Config) Validate() error {
	if c.FPS < 0 {
		return fmt.Errorf("config: fps must be >= 0, got %d", c.FPS)
	}
	switch c.Sink.Type {
	case "apa102", "spi", "term", "null":
	default:
		return fmt.Errorf("config: unknown sink type %q", c.Sink.Type)
	}
	if c.Sink.Type == "apa102" {
		switch c.Sink.Backend {
		case "", "periph", "cdev":
		default:
			return fmt.Errorf("config: unknown gpio backend %q", c.Sink.Backend)
		}
	}
	if c.Sink.Brightness > 31 {
		return fmt.Errorf("config: hardware brightness %d out of range 0-31", c.Sink.Brightness)
	}
	if len(c.Displays) == 0 {
		return fmt.Errorf("config: no displays")
	}
	for i, dc := range c.Displays {
		if dc.Size <= 0 {
			return fmt.Errorf("config: display %d: size must be > 0", i)
		}
		if dc.Brightness < 0 || dc.Brightness > 1 {
			return fmt.Errorf("config: display %d: brightness %v out of range 0-1", i, dc.Brightness)
		}
		if len(dc.Generators) == 0 {
			return fmt.Errorf("config: display %d: no generators", i)
		}
		for j, gc := range dc.Generators {
			if err := gc.validate(); err != nil {
				return fmt.Errorf("config: display %d generator %d: %w", i, j, err)
			}
		}
		for j, fc := range dc.Filters {
			if err := fc.validate(); err != nil {
				return fmt.Errorf("config: display %d filter %d: %w", i, j, err)
			}
		}
	}
	return nil
}

func (gc *GeneratorCfg) validate() error {
	if gc.Trigger && gc.RunFor != 0 {
		return fmt.Errorf("run_for and trigger are mutually exclusive")
	}
	if !gc.Trigger && gc.RunFor <= 0 {
		return fmt.Errorf("needs run_for > 0 or trigger")
	}
	switch gc.Kind {
	case "breath":
		if gc.HalfPeriod <= 0 {
			return fmt.Errorf("breath needs half_period > 0")
		}
		return gc.validatePalette()
	case "cycle":
		if gc.Period <= 0 {
			return fmt.Errorf("cycle needs period > 0")
		}
		return gc.validatePalette()
	case "rainbow":
		if gc.Period <= 0 {
			return fmt.Errorf("rainbow needs period > 0")
		}
		if gc.Saturation < 0 || gc.Saturation > 1 || gc.Value < 0 || gc.Value > 1 {
			return fmt.Errorf("rainbow saturation and value must be in 0-1")
		}
		if gc.Arc <= 0 {
			return fmt.Errorf("rainbow needs arc > 0")
		}
		return nil
	case "solid":
		if gc.Color == "" {
			return fmt.Errorf("solid needs color")
		}
		return nil
	case "strobe":
		if gc.Period <= 0 {
			return fmt.Errorf("strobe needs period > 0")
		}
		if gc.Color == "" {
			return fmt.Errorf("strobe needs color")
		}
		return nil
	default:
		return fmt.Errorf("unknown generator kind %q", gc.Kind)
	}
}

func (gc *GeneratorCfg) validatePalette() error {
	switch gc.Order {
	case "", "ordered":
		if len(gc.Colors) == 0 {
			return fmt.Errorf("ordered palette needs colors")
		}
		for _, s := range gc.Colors {
			if _, err := ParseColor(s); err != nil {
				return err
			}
		}
		return nil
	case "random", "random-bright":
		return nil
	default:
		return fmt.Errorf("unknown palette order %q", gc.Order)
	}
}

func (fc *FilterCfg) validate() error {
	switch fc.Kind {
	case "breath":
		if fc.HalfPeriod <= 0 {
			return fmt.Errorf("breath filter needs half_period > 0")
		}
		return nil
	case "strobe":
		if fc.Period <= 0 {
			return fmt.Errorf("strobe filter needs period > 0")
		}
		return nil
	default:
		return fmt.Errorf("unknown filter kind %q", fc.Kind)
	}
}

// BuildDisplays constructs every configured display with its generator queue
// and filter chain.
func (c *Config) BuildDisplays() ([]*display.Display, error) {
	out := make([]*display.Display, 0, len(c.Displays))
	for i, dc := range c.Displays {
		d := display.New(float32(dc.Brightness), dc.Size, dc.Looping)
		for j, gc := range dc.Generators {
			g, err := gc.build()
			if err != nil {
				return nil, fmt.Errorf("config: display %d generator %d: %w", i, j, err)
			}
			d.Queue(g, gc.runtime())
		}
		for j, fc := range dc.Filters {
			f, err := fc.build()
			if err != nil {
				return nil, fmt.Errorf("config: display %d filter %d: %w", i, j, err)
			}
			d.AddFilter(f)
		}
		out = append(out, d)
	}
	return out, nil
}

func (gc *GeneratorCfg) runtime() display.Runtime {
	if gc.Trigger {
		return display.Triggered()
	}
	return display.TimeLimit(time.Duration(gc.RunFor))
}

func (gc *GeneratorCfg) build() (generator.Generator, error) {
	switch gc.Kind {
	case "breath":
		p, err := gc.palette()
		if err != nil {
			return nil, err
		}
		return generator.NewBreath(time.Duration(gc.HalfPeriod), p), nil
	case "cycle":
		p, err := gc.palette()
		if err != nil {
			return nil, err
		}
		return generator.NewCycle(time.Duration(gc.Period), p), nil
	case "rainbow":
		return generator.NewRainbow(time.Duration(gc.Period), float32(gc.Saturation), float32(gc.Value), float32(gc.Arc), gc.Step), nil
	case "solid":
		col, err := ParseColor(gc.Color)
		if err != nil {
			return nil, err
		}
		return generator.NewSolid(col), nil
	case "strobe":
		col, err := ParseColor(gc.Color)
		if err != nil {
			return nil, err
		}
		return generator.NewStrobe(time.Duration(gc.Period), gc.Duty, col), nil
	default:
		return nil, fmt.Errorf("unknown generator kind %q", gc.Kind)
	}
}

func (gc *GeneratorCfg) palette() (*generator.Palette, error) {
	switch gc.Order {
	case "random":
		return generator.RandomPalette(), nil
	case "random-bright":
		return generator.RandomBrightPalette(), nil
	default:
		colors := make([]pixel.Pixel, 0, len(gc.Colors))
		for _, s := range gc.Colors {
			col, err := ParseColor(s)
			if err != nil {
				return nil, err
			}
			colors = append(colors, col)
		}
		return generator.Ordered(colors...), nil
	}
}

func (fc *FilterCfg) build() (filter.Filter, error) {
	switch fc.Kind {
	case "breath":
		return filter.NewBreath(time.Duration(fc.HalfPeriod)), nil
	case "strobe":
		return filter.NewStrobe(time.Duration(fc.Period), fc.Duty), nil
	default:
		return nil, fmt.Errorf("unknown filter kind %q", fc.Kind)
	}
}

// BuildSink constructs the configured sink. A hardware open failure comes
// back as an error; the caller decides whether to fall back to a terminal
// sink or give up.
func (c *Config) BuildSink() (sink.Sink, error) {
	switch c.Sink.Type {
	case "null":
		return sink.NewNull(), nil
	case "term":
		return sink.NewTerm(), nil
	case "spi":
		return sink.NewSPI(c.Sink.SPIDev, c.Sink.Brightness)
	case "apa102":
		var (
			data, clock sink.Line
			cleanup     []io.Closer
			err         error
		)
		if c.Sink.Backend == "cdev" {
			chip := c.Sink.Chip
			if chip == "" {
				chip = "gpiochip0"
			}
			data, clock, cleanup, err = sink.OpenCdevLines(chip, c.Sink.DataPin, c.Sink.ClockPin)
		} else {
			data, clock, cleanup, err = sink.OpenPeriphLines(c.Sink.DataPin, c.Sink.ClockPin)
		}
		if err != nil {
			return nil, err
		}
		return sink.NewAPA102(data, clock, c.Sink.Brightness, cleanup...), nil
	default:
		return nil, fmt.Errorf("config: unknown sink type %q", c.Sink.Type)
	}
}

// ParseColor reads a "#rrggbb" or "rrggbb" hex color.
func ParseColor(s string) (pixel.Pixel, error) {
	h := strings.TrimPrefix(s, "#")
	if len(h) != 6 {
		return pixel.Pixel{}, fmt.Errorf("bad color %q: want rrggbb hex", s)
	}
	code, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return pixel.Pixel{}, fmt.Errorf("bad color %q: %w", s, err)
	}
	return pixel.FromCode(uint32(code), pixel.RGB), nil
}
