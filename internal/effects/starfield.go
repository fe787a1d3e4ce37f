// SPDX-License-Identifier: MIT
package effects

import (
	"image/color"

	"beatviz/internal/effect"
	"beatviz/internal/render"
	"beatviz/pkg/vmath"
)

func init() {
	effect.Register("starfield", NewStarfield, effect.Meta{
		Description: "3D starfield flying toward the viewer, warp speed driven by mid energy.",
		Tags:        []string{"space", "ambient", "mid"},
		Variant:     "warp",
	})
}

type star struct {
	x, y, z float64
	pz      float64
}

// Starfield projects stars from a unit cube onto the canvas. Mid-band
// energy controls warp speed and beats punch brief acceleration.
type Starfield struct {
	params *effect.Values
	stars  []star
	rng    *vmath.Rand
	boost  float64
}

func NewStarfield() effect.Effect {
	s := &Starfield{
		params: effect.NewValues([]effect.Parameter{
			effect.Slider("starCount", "Star Count", 400, 50, 1500, 10, ""),
			effect.Slider("baseSpeed", "Base Speed", 0.4, 0.05, 2.0, 0.05, ""),
			effect.Boolean("streaks", "Streaks", true),
		}),
	}
	s.Reset()
	return s
}

func (s *Starfield) ID() string                 { return "starfield" }
func (s *Starfield) Name() string               { return "Starfield" }
func (s *Starfield) Parameters() *effect.Values { return s.params }

func (s *Starfield) Reset() {
	s.rng = vmath.NewRand(0x5f3759df)
	count := int(s.params.Float("starCount"))
	s.stars = make([]star, count)
	for i := range s.stars {
		s.respawn(&s.stars[i], true)
	}
	s.boost = 0
}

func (s *Starfield) respawn(st *star, scatter bool) {
	st.x = s.rng.Range(-1, 1)
	st.y = s.rng.Range(-1, 1)
	if scatter {
		st.z = s.rng.Range(0.05, 1)
	} else {
		st.z = 1
	}
	st.pz = st.z
}

func (s *Starfield) Render(ctx *effect.Context) {
	ctx.Surface.Fill(color.RGBA{4, 4, 12, 255})

	if ctx.Beat != nil && ctx.Beat.IsBeat {
		s.boost += 1.5 * ctx.Beat.BeatIntensity
	}
	s.boost = vmath.Approach(s.boost, 0, ctx.Delta*2)

	speed := s.params.Float("baseSpeed") * (0.3 + ctx.Audio.Normalized("mid")*2 + s.boost)
	streaks := s.params.Bool("streaks")
	cx := float64(ctx.Width) / 2
	cy := float64(ctx.Height) / 2
	scale := cx

	for i := range s.stars {
		st := &s.stars[i]
		st.pz = st.z
		st.z -= speed * ctx.Delta
		if st.z <= 0.01 {
			s.respawn(st, false)
			continue
		}

		px := cx + st.x/st.z*scale
		py := cy + st.y/st.z*scale
		if px < 0 || px >= float64(ctx.Width) || py < 0 || py >= float64(ctx.Height) {
			s.respawn(st, false)
			continue
		}

		depth := 1 - st.z
		c := render.LerpColor(color.RGBA{80, 90, 140, 255}, color.RGBA{255, 255, 255, 255}, depth)
		if streaks && st.pz > st.z {
			qx := cx + st.x/st.pz*scale
			qy := cy + st.y/st.pz*scale
			ctx.Surface.DrawLine(qx, qy, px, py, c, depth)
		}
		ctx.Surface.FillCircle(px, py, vmath.Lerp(0.5, 2.2, depth), c, depth)
	}

	render.Vignette(ctx.Surface, 0.5, 0.7)
}
