// SPDX-License-Identifier: MIT
package effects

import (
	"image/color"

	"beatviz/internal/effect"
	"beatviz/internal/render"
	"beatviz/pkg/vmath"
)

func init() {
	effect.Register("lyric-scatter", NewLyricScatter, effect.Meta{
		Description: "Glyphs explode outward on each beat and spring back to their anchors.",
		Tags:        []string{"lyric", "text", "energetic"},
		Variant:     "scatter",
	})
}

// LyricScatter keeps a spring body per glyph. Beats kick the bodies
// away from the line center; between beats they converge back.
type LyricScatter struct {
	params *effect.Values
	bodies []vmath.Body
	rng    *vmath.Rand
}

func NewLyricScatter() effect.Effect {
	l := &LyricScatter{
		params: effect.NewValues([]effect.Parameter{
			effect.Slider("kick", "Kick Strength", 250, 50, 800, 10, "px/s"),
			effect.Slider("spring", "Spring", 14, 2, 40, 1, ""),
			effect.Slider("spinMax", "Max Spin", 4, 0, 12, 0.5, "rad/s"),
		}),
	}
	l.Reset()
	return l
}

func (l *LyricScatter) ID() string                 { return "lyric-scatter" }
func (l *LyricScatter) Name() string               { return "Lyric Scatter" }
func (l *LyricScatter) Parameters() *effect.Values { return l.params }

func (l *LyricScatter) Reset() {
	l.bodies = l.bodies[:0]
	l.rng = vmath.NewRand(0xdada5eed)
}

// sync grows or resets the per-glyph bodies when the line changes.
func (l *LyricScatter) sync(glyphs []effect.Glyph) {
	if len(l.bodies) == len(glyphs) {
		return
	}
	l.bodies = make([]vmath.Body, len(glyphs))
	for i, g := range glyphs {
		l.bodies[i].Pos = vmath.Vec2{X: g.X, Y: g.Y}
		l.bodies[i].Damping = 3.5
	}
}

func (l *LyricScatter) Render(ctx *effect.Context) {
	render.FadeClear(ctx.Surface, 0.2)
	l.sync(ctx.Glyphs)

	kick := l.params.Float("kick")
	spring := l.params.Float("spring")
	spinMax := l.params.Float("spinMax")

	onBeat := ctx.Beat != nil && ctx.Beat.IsBeat
	intensity := 0.0
	if onBeat {
		intensity = ctx.Beat.BeatIntensity
	}

	size := ctx.FontSize
	if size <= 0 {
		size = 48
	}

	for i := range l.bodies {
		g := ctx.Glyphs[i]
		b := &l.bodies[i]
		anchor := vmath.Vec2{X: g.X, Y: g.Y}

		if onBeat {
			away := b.Pos.Sub(anchor)
			dir := away.Norm()
			if away.Len() < 1e-6 {
				dir = vmath.FromAngle(l.rng.Angle())
			}
			b.Impulse(dir.Scale(kick * (0.4 + intensity) * (0.5 + ctx.Audio.Normalized("bass"))))
			b.Spin = l.rng.Range(-spinMax, spinMax)
		}

		// Spring back toward the anchor.
		b.ApplyForce(anchor.Sub(b.Pos).Scale(spring))
		b.Step(ctx.Delta)
		b.Spin = vmath.Approach(b.Spin, 0, ctx.Delta*spinMax)

		dist := vmath.Clamp01(b.Pos.Dist(anchor) / 200)
		c := render.LerpColor(ctx.Color, render.HSL(20+ctx.Time*30, 0.85, 0.6), dist)
		if c == (color.RGBA{}) {
			c = color.RGBA{230, 230, 255, 255}
		}

		h := size * 0.8
		w := g.Width
		// Rotation is suggested by skewing the slab into a line pair.
		x0 := b.Pos.X
		y0 := b.Pos.Y - h
		ctx.Surface.FillRect(int(x0), int(y0), int(w), int(h), c, 0.9-0.4*dist)
		if b.Spin != 0 {
			off := vmath.FromAngle(b.Rotation).Scale(h / 3)
			ctx.Surface.DrawLine(x0, y0, x0+off.X, y0+off.Y, c, 0.5)
		}
	}
}
