// SPDX-License-Identifier: MIT
package engine

import (
	"testing"

	"beatviz/internal/analysis"
	"beatviz/internal/config"
	"beatviz/internal/effect"
	"beatviz/internal/render"
	"beatviz/internal/timing"
	"beatviz/internal/transport"
	"beatviz/pkg/sigtest"
)

type scriptClock struct{ now float64 }

func (s *scriptClock) source() timing.Source {
	return func() float64 { return s.now }
}

func (s *scriptClock) advance(dt float64) { s.now += dt }

type recordingTransport struct {
	snaps []transport.Snapshot
}

func (r *recordingTransport) Send(s transport.Snapshot) error {
	r.snaps = append(r.snaps, s)
	return nil
}
func (r *recordingTransport) Close() error { return nil }

type countingEffect struct {
	renders int
	resets  int
}

func (c *countingEffect) ID() string                 { return "counting" }
func (c *countingEffect) Name() string               { return "Counting" }
func (c *countingEffect) Parameters() *effect.Values { return effect.NewValues(nil) }
func (c *countingEffect) Render(*effect.Context)     { c.renders++ }
func (c *countingEffect) Reset()                     { c.resets++ }

type panicEffect struct{ countingEffect }

func (p *panicEffect) ID() string             { return "panicky" }
func (p *panicEffect) Render(*effect.Context) { panic("boom") }

func testEngine(t *testing.T, out transport.Transport) (*Engine, *scriptClock, *analysis.SpectrumAnalyzer) {
	t.Helper()
	cfg := config.New()
	cfg.Canvas.Width = 64
	cfg.Canvas.Height = 36

	clock := &scriptClock{}
	analyzer, err := analysis.NewSpectrumAnalyzer(2048, 44100, 0, analysis.Hann)
	if err != nil {
		t.Fatal(err)
	}
	detector := analysis.NewBeatDetector(analysis.DetectorConfig{})

	eng, err := New(Options{
		Config:   cfg,
		Clock:    timing.NewPrecisionClock(clock.source(), clock.source(), cfg.MaxDrift),
		Analyzer: analyzer,
		Detector: detector,
		Output:   out,
	})
	if err != nil {
		t.Fatal(err)
	}
	return eng, clock, analyzer
}

func TestStepRendersAndPresents(t *testing.T) {
	eng, clock, analyzer := testEngine(t, nil)
	fx := &countingEffect{}
	eng.SetEffect(fx)
	analyzer.Feed(sigtest.SineWave(4096, 44100, 440))

	dst := render.NewSurface(64, 36)
	for i := 0; i < 5; i++ {
		clock.advance(1.0 / 60)
		if err := eng.Step(dst); err != nil {
			t.Fatal(err)
		}
	}

	if fx.renders != 5 {
		t.Errorf("effect rendered %d times, want 5", fx.renders)
	}
	frames, skipped := eng.Stats()
	if frames != 5 || skipped != 0 {
		t.Errorf("frames=%d skipped=%d, want 5/0", frames, skipped)
	}
}

func TestStepRejectsMismatchedSurface(t *testing.T) {
	eng, clock, _ := testEngine(t, nil)
	clock.advance(1.0 / 60)
	if err := eng.Step(render.NewSurface(10, 10)); err == nil {
		t.Error("Step accepted a wrong-size destination")
	}
}

func TestPanickingEffectSkipsFrameNotLoop(t *testing.T) {
	eng, clock, _ := testEngine(t, nil)
	eng.SetEffect(&panicEffect{})

	dst := render.NewSurface(64, 36)
	for i := 0; i < 2; i++ {
		clock.advance(1.0 / 60)
		if err := eng.Step(dst); err != nil {
			t.Fatalf("frame %d: loop failed on effect panic: %v", i, err)
		}
	}
	_, skipped := eng.Stats()
	if skipped != 2 {
		t.Errorf("skipped = %d, want 2", skipped)
	}
	if eng.Effect() == nil {
		t.Error("effect quarantined before the panic limit")
	}
}

func TestRepeatedPanicsQuarantineEffect(t *testing.T) {
	eng, clock, _ := testEngine(t, nil)
	eng.SetEffect(&panicEffect{})

	dst := render.NewSurface(64, 36)
	for i := 0; i < maxEffectPanics+2; i++ {
		clock.advance(1.0 / 60)
		if err := eng.Step(dst); err != nil {
			t.Fatal(err)
		}
	}
	if eng.Effect() != nil {
		t.Error("effect still active after repeated panics")
	}
}

func TestPublishSnapshots(t *testing.T) {
	rec := &recordingTransport{}
	eng, clock, analyzer := testEngine(t, rec)
	eng.SetEffect(&countingEffect{})
	analyzer.Feed(sigtest.SineWave(4096, 44100, 440))

	dst := render.NewSurface(64, 36)
	for i := 0; i < 3; i++ {
		clock.advance(1.0 / 60)
		if err := eng.Step(dst); err != nil {
			t.Fatal(err)
		}
	}

	if len(rec.snaps) != 3 {
		t.Fatalf("published %d snapshots, want 3", len(rec.snaps))
	}
	last := rec.snaps[2]
	if last.Effect != "counting" {
		t.Errorf("snapshot effect = %q", last.Effect)
	}
	if last.Time <= rec.snaps[0].Time {
		t.Error("snapshot time did not advance")
	}
	if last.Average <= 0 {
		t.Error("snapshot carries no audio summary for a live sine")
	}
}

func TestSetLineReachesContext(t *testing.T) {
	eng, clock, _ := testEngine(t, nil)
	var seen effect.Context
	probe := &probeEffect{out: &seen}
	eng.SetEffect(probe)

	glyphs := []effect.Glyph{{Char: 'h', X: 1}, {Char: 'i', X: 2, Index: 1}}
	eng.SetLine("hi", glyphs, 0.4)

	clock.advance(1.0 / 60)
	if err := eng.Step(render.NewSurface(64, 36)); err != nil {
		t.Fatal(err)
	}

	if seen.Lyric != "hi" || len(seen.Glyphs) != 2 || seen.Progress != 0.4 {
		t.Errorf("context line = %q/%d/%v", seen.Lyric, len(seen.Glyphs), seen.Progress)
	}
	if seen.Glyphs[0].Char != 'h' {
		t.Errorf("glyph 0 = %q", seen.Glyphs[0].Char)
	}
}

type probeEffect struct {
	countingEffect
	out *effect.Context
}

func (p *probeEffect) Render(ctx *effect.Context) { *p.out = *ctx }
