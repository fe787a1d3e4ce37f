// SPDX-License-Identifier: MIT
package main

import (
	"fmt"
	"image/png"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"beatviz/cmd"
	"beatviz/internal/analysis"
	"beatviz/internal/config"
	"beatviz/internal/effect"
	_ "beatviz/internal/effects"
	"beatviz/internal/engine"
	applog "beatviz/internal/log"
	"beatviz/internal/render"
	"beatviz/internal/source"
	"beatviz/internal/timing"
	"beatviz/internal/transport"
	"beatviz/internal/tui"
	"beatviz/internal/waveform"
	"beatviz/pkg/build"
)

// main is divided into three phases:
//
// 1. Startup (cold path): build info, argument parsing, one-off
//    command dispatch.
// 2. Concurrent (hot path): PortAudio capture feeding the analyser,
//    the frame loop stepping the engine, transports publishing.
// 3. Shutdown (cold path): signal handling and resource teardown.
func main() {
	build.Initialize()

	// One thread for the capture callback, one for the frame loop.
	runtime.GOMAXPROCS(2)

	opts, err := cmd.ParseArgs()
	if err != nil {
		log.Fatal(err)
	}

	cfg := opts.Config
	if level, ok := applog.ParseLevel(cfg.LogLevel); ok {
		applog.SetLevel(level)
	}
	if cfg.Debug {
		applog.SetLevel(applog.LevelDebug)
	}

	switch opts.Command {
	case "devices":
		if err := source.Initialize(); err != nil {
			log.Fatal(err)
		}
		defer source.Terminate()
		if err := source.ListDevices(); err != nil {
			log.Fatal(err)
		}
		return
	case "effects":
		cmd.PrintEffects(effect.Default())
		return
	case "catalog":
		if err := tui.StartCatalogUI(effect.Default()); err != nil {
			log.Fatal(err)
		}
		return
	case "recommend":
		fmt.Println(effect.RecommendForGenre(opts.Genre))
		return
	case "waveform":
		if err := printWaveform(opts); err != nil {
			log.Fatal(err)
		}
		return
	}

	if err := runLive(opts); err != nil {
		log.Fatal(err)
	}
}

// runLive is the hot path: capture, analyse, render, publish, until a
// termination signal arrives.
func runLive(opts *cmd.Options) error {
	cfg := opts.Config

	if err := source.Initialize(); err != nil {
		return err
	}
	defer source.Terminate()

	wf, err := analysis.ParseWindowFunc(cfg.Audio.FFTWindow)
	if err != nil {
		return err
	}
	analyzer, err := analysis.NewSpectrumAnalyzer(
		cfg.Audio.FFTSize, cfg.Audio.SampleRate, cfg.Audio.Smoothing, wf)
	if err != nil {
		return err
	}

	capture, err := source.NewCapture(cfg.Audio, analyzer)
	if err != nil {
		return err
	}

	detector := analysis.NewBeatDetector(analysis.DetectorConfig{
		SampleRate:      cfg.Audio.SampleRate,
		EnergyWindow:    cfg.Beat.EnergyWindow,
		BaseThreshold:   cfg.Beat.BaseThreshold,
		VarianceSlope:   cfg.Beat.VarianceSlope,
		MinBPM:          cfg.Beat.MinBPM,
		MaxBPM:          cfg.Beat.MaxBPM,
		IntervalHistory: cfg.Beat.IntervalHistory,
	})

	// Live capture has no separate media clock; the monotonic clock
	// serves both roles and never drifts against itself.
	clock := timing.NewPrecisionClock(timing.Monotonic(), timing.Monotonic(), cfg.MaxDrift)

	output, err := buildTransports(cfg)
	if err != nil {
		return err
	}

	eng, err := engine.New(engine.Options{
		Config:   cfg,
		Clock:    clock,
		Analyzer: analyzer,
		Detector: detector,
		Output:   output,
	})
	if err != nil {
		return err
	}
	defer eng.Close()

	fx, err := pickEffect(cfg.Effect.ID, cfg.Effect.Genre)
	if err != nil {
		return err
	}
	eng.SetEffect(fx)

	// Start of the hot path: PortAudio begins invoking the capture
	// callback once the stream starts.
	if err := capture.Start(); err != nil {
		return err
	}
	defer capture.Stop()

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	applog.Infof("%s: rendering %q at %dx%d/%dfps (Ctrl+C to stop)",
		build.Get().Name, fx.ID(), cfg.Canvas.Width, cfg.Canvas.Height, cfg.Canvas.FrameRate)

	canvas := render.NewSurface(cfg.Canvas.Width, cfg.Canvas.Height)
	ticker := time.NewTicker(time.Second / time.Duration(cfg.Canvas.FrameRate))
	defer ticker.Stop()

	clock.Start()
	var frame uint64
	for {
		select {
		case <-done:
			frames, skipped := eng.Stats()
			applog.Infof("Shutting down: %d frames rendered, %d skipped", frames, skipped)
			return nil
		case <-ticker.C:
			if err := eng.Step(canvas); err != nil {
				return err
			}
			frame++
			if opts.SnapshotEvery > 0 && frame%uint64(opts.SnapshotEvery) == 0 {
				if err := dumpFrame(canvas, opts.SnapshotDir, frame); err != nil {
					applog.Warnf("Snapshot dump failed: %v", err)
				}
			}
		}
	}
}

func buildTransports(cfg *config.Config) (transport.Transport, error) {
	transports := []transport.Transport{transport.NewLoggingTransport()}
	if cfg.Transport.WebSocketEnabled {
		transports = append(transports, transport.NewWebSocketTransport(cfg.Transport.WebSocketAddr))
	}
	if cfg.Transport.UDPEnabled {
		udp, err := transport.NewUDPTransport(cfg.Transport.UDPTargetAddress)
		if err != nil {
			return nil, err
		}
		transports = append(transports, udp)
	}
	return transport.NewFanout(transports...), nil
}

// pickEffect resolves the configured effect, falling back to the genre
// recommendation when no explicit ID is set.
func pickEffect(id, genre string) (effect.Effect, error) {
	if id == "" {
		id = effect.RecommendForGenre(genre)
	}
	return effect.Default().New(id)
}

func dumpFrame(s *render.Surface, dir string, frame uint64) error {
	path := filepath.Join(dir, fmt.Sprintf("frame-%06d.png", frame))
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, s.Image())
}

var blocks = []rune(" ▁▂▃▄▅▆▇█")

// printWaveform renders a WAV file's peak envelope as a block diagram.
func printWaveform(opts *cmd.Options) error {
	track, err := waveform.LoadWAV(opts.WavPath)
	if err != nil {
		return err
	}
	applog.Infof("Loaded %s: %.1fs, %d Hz, %d ch",
		opts.WavPath, track.Duration, track.SampleRate, track.Channels)

	client := waveform.NewClient()
	defer client.Close()

	res := <-client.Generate(waveform.Request{
		ChannelData: track.Samples,
		TargetWidth: opts.WaveWidth,
		Normalize:   opts.Normalize,
	})
	if res.Err != nil {
		return res.Err
	}

	var line []rune
	for _, p := range res.Peaks {
		idx := int(p * float64(len(blocks)-1))
		if idx >= len(blocks) {
			idx = len(blocks) - 1
		}
		line = append(line, blocks[idx])
	}
	fmt.Println(string(line))
	fmt.Printf("peak %.3f over %d buckets\n", res.MaxPeak, len(res.Peaks))
	return nil
}
