// SPDX-License-Identifier: MIT
package effects

import (
	"image/color"

	"beatviz/internal/effect"
	"beatviz/internal/render"
	"beatviz/pkg/vmath"
)

func init() {
	effect.Register("lyric-rise", NewLyricRise, effect.Meta{
		Description: "Glyphs float up from below the baseline one by one as the line progresses.",
		Tags:        []string{"lyric", "text", "gentle"},
		Variant:     "rise",
	})
}

// LyricRise animates the active line's glyphs rising into place with a
// staggered ease-out. Glyphs are drawn as soft slabs at their anchors;
// actual text rasterization belongs to the presenter.
type LyricRise struct {
	params *effect.Values
}

func NewLyricRise() effect.Effect {
	return &LyricRise{
		params: effect.NewValues([]effect.Parameter{
			effect.Slider("riseHeight", "Rise Height", 60, 10, 200, 5, "px"),
			effect.Slider("stagger", "Stagger", 0.04, 0, 0.2, 0.005, "s"),
			effect.Boolean("beatPulse", "Beat Pulse", true),
			effect.Color("tint", "Tint", "#e8e8ff"),
		}),
	}
}

func (l *LyricRise) ID() string                 { return "lyric-rise" }
func (l *LyricRise) Name() string               { return "Lyric Rise" }
func (l *LyricRise) Parameters() *effect.Values { return l.params }
func (l *LyricRise) Reset()                     {}

// glyphT maps line progress to a per-glyph animation phase in [0,1].
// Later glyphs start later; every glyph finishes before progress 1.
func glyphT(progress, stagger float64, index, total int) float64 {
	if total <= 0 {
		return 0
	}
	delay := stagger * float64(index)
	span := 1 - stagger*float64(total-1)
	if span <= 0 {
		span = 0.01
	}
	return vmath.Clamp01((progress - delay) / span)
}

func (l *LyricRise) Render(ctx *effect.Context) {
	render.FadeClear(ctx.Surface, 0.25)

	tint, err := render.ParseHexColor(l.params.String("tint"))
	if err != nil {
		tint = ctx.Color
	}
	rise := l.params.Float("riseHeight")
	stagger := l.params.Float("stagger")

	pulse := 1.0
	if l.params.Bool("beatPulse") && ctx.Beat != nil && ctx.Beat.BPM > 0 {
		// Soft swell synced to beat phase, strongest right on the beat.
		pulse = 1 + 0.12*vmath.EaseOutQuad(1-ctx.Beat.BeatPhase)*ctx.Audio.Normalized("bass")
	}

	size := ctx.FontSize
	if size <= 0 {
		size = 48
	}

	for _, g := range ctx.Glyphs {
		t := glyphT(ctx.Progress, stagger, g.Index, len(ctx.Glyphs))
		if t <= 0 {
			continue
		}
		e := vmath.EaseOutCubic(t)
		y := g.Y + rise*(1-e)
		alpha := e

		w := g.Width * pulse
		h := size * 0.8 * pulse
		c := render.LerpColor(color.RGBA{90, 90, 140, 255}, tint, e)
		ctx.Surface.FillRect(int(g.X), int(y-h), int(w), int(h), c, alpha*0.85)
		// Baseline glow anchors the glyph while it settles.
		ctx.Surface.FillRect(int(g.X), int(g.Y), int(w), 2, tint, alpha*0.4)
	}
}
