// SPDX-License-Identifier: MIT
package effects

import (
	"math"

	"beatviz/internal/effect"
	"beatviz/internal/render"
	"beatviz/pkg/vmath"
)

func init() {
	effect.Register("plasma", NewPlasma, effect.Meta{
		Description: "Classic sine plasma, hue and turbulence modulated by the full spectrum.",
		Tags:        []string{"retro", "fullscreen", "smooth"},
		Variant:     "classic",
	})
}

// Plasma renders the demoscene sine-sum plasma at a reduced internal
// resolution and upscales by pixel blocks to stay inside the frame
// budget at 720p.
type Plasma struct {
	params *effect.Values
	phase  float64
	hue    float64
}

func NewPlasma() effect.Effect {
	p := &Plasma{
		params: effect.NewValues([]effect.Parameter{
			effect.Slider("cell", "Cell Size", 4, 1, 12, 1, "px"),
			effect.Slider("tempo", "Tempo", 1.0, 0.1, 4.0, 0.1, "x"),
			effect.Slider("saturation", "Saturation", 0.85, 0, 1, 0.05, ""),
		}),
	}
	p.Reset()
	return p
}

func (p *Plasma) ID() string                 { return "plasma" }
func (p *Plasma) Name() string               { return "Plasma" }
func (p *Plasma) Parameters() *effect.Values { return p.params }

func (p *Plasma) Reset() {
	p.phase = 0
	p.hue = 0
}

func (p *Plasma) Render(ctx *effect.Context) {
	avg := ctx.Audio.Normalized("average")
	bass := ctx.Audio.Normalized("bass")

	p.phase += ctx.Delta * p.params.Float("tempo") * (0.6 + avg*2.4)
	p.hue += ctx.Delta * (10 + 50*ctx.Audio.Normalized("treble"))

	cell := int(p.params.Float("cell"))
	if cell < 1 {
		cell = 1
	}
	sat := p.params.Float("saturation")
	warp := 1 + bass*2

	freqX := 0.013 * warp
	freqY := 0.011 * warp
	for y := 0; y < ctx.Height; y += cell {
		fy := float64(y)
		for x := 0; x < ctx.Width; x += cell {
			fx := float64(x)
			v := math.Sin(fx*freqX+p.phase) +
				math.Sin(fy*freqY+p.phase*1.3) +
				math.Sin((fx+fy)*0.009+p.phase*0.7) +
				math.Sin(math.Hypot(fx-float64(ctx.Width)/2, fy-float64(ctx.Height)/2)*0.017-p.phase)
			// v in [-4, 4]
			t := (v + 4) / 8
			c := render.HSL(p.hue+t*180, sat, vmath.Lerp(0.18, 0.6, t))
			ctx.Surface.FillRect(x, y, cell, cell, c, 1)
		}
	}
}
