// SPDX-License-Identifier: MIT
package effects

import (
	"image/color"
	"math"

	"beatviz/internal/effect"
	"beatviz/internal/render"
	"beatviz/pkg/vmath"
)

func init() {
	effect.Register("aurora", NewAurora, effect.Meta{
		Description: "Slow curtains of value-noise light, drifting with the overall level.",
		Tags:        []string{"ambient", "calm", "noise"},
		Variant:     "curtain",
	})
}

// Aurora layers horizontal bands of octave noise into northern-light
// curtains. It deliberately ignores individual beats; only sustained
// energy moves it.
type Aurora struct {
	params *effect.Values
	noise  *vmath.Noise
	drift  float64
}

func NewAurora() effect.Effect {
	a := &Aurora{
		params: effect.NewValues([]effect.Parameter{
			effect.Slider("curtains", "Curtains", 3, 1, 6, 1, ""),
			effect.Slider("drift", "Drift Speed", 0.08, 0.01, 0.5, 0.01, ""),
			effect.Slider("cell", "Cell Size", 3, 1, 8, 1, "px"),
		}),
	}
	a.Reset()
	return a
}

func (a *Aurora) ID() string                 { return "aurora" }
func (a *Aurora) Name() string               { return "Aurora" }
func (a *Aurora) Parameters() *effect.Values { return a.params }

func (a *Aurora) Reset() {
	a.noise = vmath.NewNoise(0xa0b1c2d3)
	a.drift = 0
}

func (a *Aurora) Render(ctx *effect.Context) {
	avg := ctx.Audio.Normalized("average")
	a.drift += ctx.Delta * a.params.Float("drift") * (1 + avg*3)

	render.VerticalGradient(ctx.Surface, color.RGBA{2, 4, 16, 255}, color.RGBA{8, 10, 30, 255})

	curtains := int(a.params.Float("curtains"))
	cell := int(a.params.Float("cell"))
	if cell < 1 {
		cell = 1
	}
	bass := ctx.Audio.Normalized("bass")
	treble := ctx.Audio.Normalized("treble")

	for c := 0; c < curtains; c++ {
		layer := float64(c)
		baseHue := 140 + layer*30 + treble*40
		yMid := float64(ctx.Height) * (0.25 + 0.15*layer)
		amp := float64(ctx.Height) * (0.08 + 0.1*bass)

		for x := 0; x < ctx.Width; x += cell {
			nx := float64(x)*0.004 + layer*7.3
			wave := a.noise.Octaves(nx, a.drift+layer*2.1, 3)
			top := yMid + (wave-0.5)*2*amp
			glow := a.noise.At(nx*2, a.drift*1.7+layer)

			height := vmath.Lerp(40, 160, glow) * (0.5 + avg)
			for y := 0; y < int(height); y += cell {
				t := float64(y) / height
				col := render.HSL(baseHue-t*30, 0.8, vmath.Lerp(0.45, 0.05, t))
				alpha := (1 - t) * 0.35 * (0.4 + glow)
				ctx.Surface.FillRect(x, int(top)+y, cell, cell, col, alpha)
			}
		}
	}

	// A few pin-prick stars above the curtains.
	for i := 0; i < 40; i++ {
		sx := math.Mod(float64(i)*97.31, float64(ctx.Width))
		sy := math.Mod(float64(i)*53.17, float64(ctx.Height)*0.3)
		tw := 0.3 + 0.7*a.noise.At(float64(i), a.drift*3)
		ctx.Surface.BlendPixel(int(sx), int(sy), color.RGBA{220, 225, 255, 255}, tw)
	}
}
