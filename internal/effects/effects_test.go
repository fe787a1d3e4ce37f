// SPDX-License-Identifier: MIT
package effects

import (
	"bytes"
	"image/color"
	"testing"

	"beatviz/internal/analysis"
	"beatviz/internal/effect"
	"beatviz/internal/render"
	"beatviz/pkg/sigtest"
)

const (
	testW = 160
	testH = 90
)

func newContext(bins []byte, beat *analysis.BeatData) *effect.Context {
	ctx := &effect.Context{
		Surface: render.NewSurface(testW, testH),
		Width:   testW,
		Height:  testH,
		Bins:    bins,
		Beat:    beat,
		Time:    1.0,
		Delta:   1.0 / 60,
		Color:   color.RGBA{230, 230, 255, 255},
	}
	if bins != nil {
		ctx.Audio.Update(bins)
	}
	return ctx
}

func lineGlyphs(n float64) []effect.Glyph {
	glyphs := make([]effect.Glyph, int(n))
	for i := range glyphs {
		glyphs[i] = effect.Glyph{
			Char:  rune('a' + i),
			X:     20 + float64(i)*12,
			Y:     60,
			Width: 10,
			Index: i,
		}
	}
	return glyphs
}

func TestAllBuiltinsRegistered(t *testing.T) {
	want := []string{
		"aurora", "lyric-rise", "lyric-scatter",
		"particle-burst", "plasma", "spectrum-bars", "starfield",
	}
	list := effect.Default().List()
	if len(list) != len(want) {
		t.Fatalf("registry has %d effects, want %d", len(list), len(want))
	}
	for i, e := range list {
		if e.ID != want[i] {
			t.Errorf("registry[%d] = %q, want %q", i, e.ID, want[i])
		}
		if e.Meta.Description == "" {
			t.Errorf("%q has no description", e.ID)
		}
	}
}

// Every effect must render a full frame without touching memory outside
// its surface, with and without audio attached.
func TestEffectsRenderSafely(t *testing.T) {
	contexts := map[string]*effect.Context{
		"NoAudio": newContext(nil, nil),
		"Quiet":   newContext(sigtest.FlatBins(5), &analysis.BeatData{}),
		"OnBeat": newContext(sigtest.BandBins(220, 120, 80), &analysis.BeatData{
			IsBeat: true, BeatIntensity: 0.8, BPM: 120, BeatPhase: 0.1,
		}),
	}

	for _, entry := range effect.Default().List() {
		for name, base := range contexts {
			t.Run(entry.ID+"/"+name, func(t *testing.T) {
				fx := entry.Factory()
				ctx := *base
				ctx.Surface = render.NewSurface(testW, testH)
				ctx.Glyphs = lineGlyphs(6)
				ctx.Progress = 0.5
				ctx.FontSize = 24
				for i := 0; i < 10; i++ {
					ctx.Time += ctx.Delta
					fx.Render(&ctx)
				}
			})
		}
	}
}

// A reset effect must be indistinguishable from a fresh instance: the
// same frame sequence produces identical pixels.
func TestResetMatchesFreshInstance(t *testing.T) {
	beat := &analysis.BeatData{IsBeat: true, BeatIntensity: 0.7, BPM: 128}
	bins := sigtest.BandBins(200, 100, 60)

	renderFrames := func(fx effect.Effect) []byte {
		ctx := newContext(bins, beat)
		ctx.Glyphs = lineGlyphs(5)
		ctx.Progress = 0.6
		ctx.FontSize = 24
		for i := 0; i < 5; i++ {
			ctx.Time += ctx.Delta
			fx.Render(ctx)
		}
		return ctx.Surface.Image().Pix
	}

	for _, entry := range effect.Default().List() {
		t.Run(entry.ID, func(t *testing.T) {
			used := entry.Factory()
			renderFrames(used) // dirty the state
			used.Reset()
			got := renderFrames(used)

			fresh := entry.Factory()
			want := renderFrames(fresh)

			if !bytes.Equal(got, want) {
				t.Error("frames after Reset differ from a fresh instance")
			}
		})
	}
}

// End to end through the analysis summary: a bass-heavy frame must move
// far more particles than a treble-only frame of the same total shape.
func TestParticleBurstScalesWithBass(t *testing.T) {
	burstCount := func(bins []byte) int {
		fx := NewParticleBurst().(*ParticleBurst)
		ctx := newContext(bins, &analysis.BeatData{IsBeat: true, BeatIntensity: 0.5})
		fx.Render(ctx)
		return fx.ActiveParticles()
	}

	heavy := burstCount(sigtest.BandBins(200, 50, 10))
	light := burstCount(sigtest.BandBins(10, 50, 200))

	if heavy <= light {
		t.Errorf("bass-heavy burst spawned %d particles, treble-heavy %d; want heavy > light", heavy, light)
	}
	if heavy < 40 {
		t.Errorf("bass-heavy burst spawned only %d particles", heavy)
	}
}

func TestParticleBurstRespectsPoolLimit(t *testing.T) {
	fx := NewParticleBurst().(*ParticleBurst)
	if err := fx.Parameters().Set("maxParticles", 64.0); err != nil {
		t.Fatal(err)
	}
	fx.Reset() // pool sizing reads the parameter

	ctx := newContext(sigtest.FlatBins(250), &analysis.BeatData{IsBeat: true, BeatIntensity: 1})
	for i := 0; i < 30; i++ {
		ctx.Time += ctx.Delta
		fx.Render(ctx)
	}
	if n := fx.ActiveParticles(); n > 64 {
		t.Errorf("pool grew past its limit: %d active", n)
	}
}

// Expired particles must return to the pool, and the expiry scratch is
// kept between frames so steady-state stepping does not allocate.
func TestParticleBurstReleasesExpired(t *testing.T) {
	fx := NewParticleBurst().(*ParticleBurst)
	ctx := newContext(sigtest.BandBins(220, 80, 40), &analysis.BeatData{IsBeat: true, BeatIntensity: 1})
	fx.Render(ctx)
	if fx.ActiveParticles() == 0 {
		t.Fatal("burst spawned no particles")
	}

	// 200 silent frames outlive the longest particle lifetime.
	quiet := newContext(sigtest.FlatBins(0), &analysis.BeatData{})
	for i := 0; i < 200; i++ {
		quiet.Time += quiet.Delta
		fx.Render(quiet)
	}

	if n := fx.ActiveParticles(); n != 0 {
		t.Errorf("%d particles still active after their lifetimes expired", n)
	}
	if len(fx.dead) != 0 {
		t.Errorf("expiry scratch holds %d entries after a death-free frame", len(fx.dead))
	}
	if cap(fx.dead) == 0 {
		t.Error("expiry scratch was not retained between frames")
	}
}

func TestSpectrumBarsDrawsFromBins(t *testing.T) {
	fx := NewSpectrumBars()
	ctx := newContext(sigtest.FlatBins(255), &analysis.BeatData{})
	fx.Render(ctx)

	// Full-scale bins must light pixels well above the background fill.
	lit := 0
	pix := ctx.Surface.Image().Pix
	for i := 0; i < len(pix); i += 4 {
		if pix[i] > 40 || pix[i+1] > 40 || pix[i+2] > 40 {
			lit++
		}
	}
	if lit < testW*testH/4 {
		t.Errorf("only %d of %d pixels lit for full-scale input", lit, testW*testH)
	}
}

func TestGlyphStagger(t *testing.T) {
	// Earlier glyphs must always be at least as far along as later ones.
	for _, progress := range []float64{0.1, 0.4, 0.8, 1.0} {
		prev := 2.0
		for i := 0; i < 8; i++ {
			cur := glyphT(progress, 0.05, i, 8)
			if cur > prev {
				t.Fatalf("glyph %d ahead of glyph %d at progress %v", i, i-1, progress)
			}
			prev = cur
		}
	}
	if got := glyphT(1.0, 0.05, 7, 8); got != 1 {
		t.Errorf("last glyph at full progress = %v, want 1", got)
	}
	if got := glyphT(0, 0.05, 0, 8); got != 0 {
		t.Errorf("first glyph at zero progress = %v, want 0", got)
	}
}

func BenchmarkParticleBurstFrame(b *testing.B) {
	fx := NewParticleBurst()
	ctx := newContext(sigtest.BandBins(200, 120, 80), &analysis.BeatData{IsBeat: true, BeatIntensity: 0.8})
	b.ReportAllocs()
	for b.Loop() {
		fx.Render(ctx)
	}
}

func BenchmarkPlasmaFrame(b *testing.B) {
	fx := NewPlasma()
	ctx := newContext(sigtest.BandBins(150, 150, 150), &analysis.BeatData{})
	b.ReportAllocs()
	for b.Loop() {
		fx.Render(ctx)
	}
}
