// SPDX-License-Identifier: MIT

// Package engine drives the frame loop: pull a spectrum snapshot, run
// beat detection on the corrected clock, render the active effect into
// the offscreen buffer and present it.
package engine

import (
	"fmt"
	"sync"

	"beatviz/internal/analysis"
	"beatviz/internal/config"
	"beatviz/internal/effect"
	applog "beatviz/internal/log"
	"beatviz/internal/render"
	"beatviz/internal/timing"
	"beatviz/internal/transport"
)

// consecutive render panics before an effect is quarantined.
const maxEffectPanics = 3

// Engine owns one visual pipeline. It is not safe for concurrent use;
// the frame loop calls Step from a single goroutine, while SetEffect
// and SetLine may be called from UI goroutines under the mutex.
type Engine struct {
	cfg      *config.Config
	clock    *timing.PrecisionClock
	analyzer *analysis.SpectrumAnalyzer
	detector *analysis.BeatDetector
	renderer *render.Renderer
	output   transport.Transport

	mu     sync.Mutex
	fx     effect.Effect
	panics int

	lyric    string
	glyphs   []effect.Glyph
	progress float64
	fontSize float64

	// Frame-loop scratch, allocated once.
	bins     []byte
	audio    analysis.FrequencyData
	beat     analysis.BeatData
	lastTime float64
	frames   uint64
	skipped  uint64
}

// Options carries the engine's collaborators. Output may be nil when
// no external consumer is configured.
type Options struct {
	Config   *config.Config
	Clock    *timing.PrecisionClock
	Analyzer *analysis.SpectrumAnalyzer
	Detector *analysis.BeatDetector
	Output   transport.Transport
}

func New(opts Options) (*Engine, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("engine: config cannot be nil")
	}
	if opts.Clock == nil || opts.Analyzer == nil || opts.Detector == nil {
		return nil, fmt.Errorf("engine: clock, analyzer and detector are required")
	}

	e := &Engine{
		cfg:      opts.Config,
		clock:    opts.Clock,
		analyzer: opts.Analyzer,
		detector: opts.Detector,
		renderer: render.NewRenderer(opts.Config.Canvas.Width, opts.Config.Canvas.Height),
		output:   opts.Output,
		bins:     make([]byte, analysis.NumBins),
		fontSize: 48,
	}
	return e, nil
}

// SetEffect swaps the active effect. The previous effect's panic count
// is discarded along with the effect.
func (e *Engine) SetEffect(fx effect.Effect) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.fx = fx
	e.panics = 0
	if fx != nil {
		applog.Infof("Engine: active effect %q", fx.ID())
	}
}

// Effect returns the active effect, nil when none is set.
func (e *Engine) Effect() effect.Effect {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.fx
}

// SetLine updates the lyric line the text effects animate. Progress is
// the line's fraction sung, [0,1].
func (e *Engine) SetLine(lyric string, glyphs []effect.Glyph, progress float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lyric = lyric
	e.glyphs = glyphs
	e.progress = progress
}

// Step produces one frame into dst. It never fails the loop for a
// misbehaving effect: a panic skips the frame, and an effect that
// panics repeatedly is quarantined until the next SetEffect.
func (e *Engine) Step(dst *render.Surface) error {
	now := e.clock.PreciseTime()
	dt := now - e.lastTime
	if dt <= 0 || dt > 0.25 {
		// First frame, seek, or a long stall. A fake large delta would
		// teleport every particle, so substitute a nominal frame.
		dt = 1.0 / float64(e.cfg.Canvas.FrameRate)
	}
	e.lastTime = now

	e.analyzer.Snapshot(e.bins)
	e.audio.Update(e.bins)
	e.beat = e.detector.Process(e.bins, now)

	e.mu.Lock()
	fx := e.fx
	ctx := effect.Context{
		Surface:  e.renderer.Canvas(),
		Width:    e.cfg.Canvas.Width,
		Height:   e.cfg.Canvas.Height,
		Audio:    e.audio,
		Beat:     &e.beat,
		Bins:     e.bins,
		Time:     now,
		Delta:    dt,
		Lyric:    e.lyric,
		Glyphs:   e.glyphs,
		Progress: e.progress,
		FontSize: e.fontSize,
	}
	e.mu.Unlock()

	if fx != nil {
		e.renderEffect(fx, &ctx)
	}

	if err := e.renderer.TransferToMain(dst); err != nil {
		return fmt.Errorf("engine: present frame: %w", err)
	}
	e.frames++

	if e.output != nil {
		e.publish(fx, now)
	}
	return nil
}

// renderEffect isolates effect panics from the frame loop.
func (e *Engine) renderEffect(fx effect.Effect, ctx *effect.Context) {
	defer func() {
		if r := recover(); r != nil {
			e.skipped++
			e.mu.Lock()
			e.panics++
			quarantine := e.panics >= maxEffectPanics && e.fx == fx
			if quarantine {
				e.fx = nil
			}
			e.mu.Unlock()

			applog.Errorf("Engine: effect %q panicked, frame skipped: %v", fx.ID(), r)
			if quarantine {
				applog.Errorf("Engine: effect %q quarantined after %d panics", fx.ID(), maxEffectPanics)
			}
		}
	}()

	fx.Render(ctx)

	e.mu.Lock()
	if e.fx == fx {
		e.panics = 0
	}
	e.mu.Unlock()
}

func (e *Engine) publish(fx effect.Effect, now float64) {
	snap := transport.Snapshot{
		Time:          now,
		IsBeat:        e.beat.IsBeat,
		BeatIntensity: e.beat.BeatIntensity,
		BPM:           e.beat.BPM,
		BeatPhase:     e.beat.BeatPhase,
		Energy:        e.beat.Energy,
		Bass:          e.audio.Bass,
		Mid:           e.audio.Mid,
		Treble:        e.audio.Treble,
		Average:       e.audio.Average,
	}
	if fx != nil {
		snap.Effect = fx.ID()
	}
	_ = e.output.Send(snap)
}

// Beat returns the most recent detection result.
func (e *Engine) Beat() analysis.BeatData { return e.beat }

// Stats reports frame counters for the status line.
func (e *Engine) Stats() (frames, skipped uint64) {
	return e.frames, e.skipped
}

// Resize changes the canvas dimensions. Offscreen contents are
// discarded; the caller must hand Step a matching destination surface.
func (e *Engine) Resize(w, h int) {
	e.cfg.Canvas.Width = w
	e.cfg.Canvas.Height = h
	e.renderer.Resize(w, h)
}

// Close releases the transport.
func (e *Engine) Close() error {
	if e.output != nil {
		return e.output.Close()
	}
	return nil
}
