package main

import (
	"flag"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-ledstrip/internal/config"
	"github.com/coreman2200/funtimes-ledstrip/internal/engine"
	"github.com/coreman2200/funtimes-ledstrip/internal/sink"
	"github.com/coreman2200/funtimes-ledstrip/internal/timer"
)

// cancelFlag is the process-wide cancellation flag. Written only by the
// signal handler goroutine, polled by the render loop.
var cancelFlag atomic.Bool

func main() {
	var (
		configPath = flag.String("config", "strip.yaml", "path to strip.yaml")
		writeCfg   = flag.Bool("write-default-config", false, "write the demo config to -config and exit")
		fps        = flag.Int("fps", 0, "override target frames per second (0 keeps config value)")
		sinkType   = flag.String("sink", "", "override sink: apa102 | spi | term | null")
	)
	flag.Parse()

	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})

	if *writeCfg {
		if err := config.Save(*configPath, config.Default()); err != nil {
			log.Fatal().Err(err).Str("path", *configPath).Msg("writing default config failed")
		}
		log.Info().Str("path", *configPath).Msg("wrote default config")
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Warn().Err(err).Str("path", *configPath).Msg("config load failed; using demo defaults")
		cfg = config.Default()
	}
	if *fps > 0 {
		cfg.FPS = *fps
	}
	if *sinkType != "" {
		cfg.Sink.Type = *sinkType
		if err := cfg.Validate(); err != nil {
			log.Fatal().Err(err).Msg("bad sink override")
		}
	}

	displays, err := cfg.BuildDisplays()
	if err != nil {
		log.Fatal().Err(err).Msg("building displays failed")
	}

	out, err := cfg.BuildSink()
	if err != nil {
		log.Warn().Err(err).Str("sink", cfg.Sink.Type).Msg("sink init failed; falling back to terminal")
		out = sink.NewTerm()
	}
	defer func() {
		if err := out.Close(); err != nil {
			log.Error().Err(err).Msg("sink close failed")
		}
	}()

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		s := <-ch
		log.Info().Str("signal", s.String()).Msg("shutting down")
		cancelFlag.Store(true)
	}()

	e := engine.New(timer.ForFPS(cfg.FPS), out, &cancelFlag)
	total := 0
	for _, d := range displays {
		e.AddDisplay(d)
		total += d.Frame().Len()
	}

	log.Info().
		Int("displays", len(displays)).
		Int("pixels", total).
		Int("fps", cfg.FPS).
		Str("sink", cfg.Sink.Type).
		Msg("starting render loop")

	if err := e.Run(); err != nil {
		log.Error().Err(err).Msg("render loop aborted")
	}

	st := e.Stats()
	ss := out.Stats()
	var tps float64
	if st.Elapsed > 0 {
		tps = float64(st.Ticks) / st.Elapsed.Seconds()
	}
	log.Info().
		Uint64("ticks", st.Ticks).
		Float64("ticks_per_sec", tps).
		Int("peak_pixels", st.Peak).
		Dur("elapsed", st.Elapsed).
		Uint64("wire_frames", ss.Frames).
		Msg("render loop finished")
}
