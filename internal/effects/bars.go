// SPDX-License-Identifier: MIT
package effects

import (
	"image/color"

	"beatviz/internal/effect"
	"beatviz/internal/render"
	"beatviz/pkg/vmath"
)

func init() {
	effect.Register("spectrum-bars", NewSpectrumBars, effect.Meta{
		Description: "Frequency bars with peak caps, drawn straight from the analyser bins.",
		Tags:        []string{"spectrum", "classic", "bins"},
		Variant:     "bars",
	})
}

// SpectrumBars draws one bar per bin group with falling peak markers.
// It reads ctx.Bins directly; when no spectrum source is attached it
// falls back to the three summary bands.
type SpectrumBars struct {
	params *effect.Values
	peaks  []float64
	levels []float64
}

func NewSpectrumBars() effect.Effect {
	s := &SpectrumBars{
		params: effect.NewValues([]effect.Parameter{
			effect.Slider("bars", "Bars", 64, 8, 255, 1, ""),
			effect.Slider("peakFall", "Peak Fall", 120, 20, 600, 10, "px/s"),
			effect.Enum("palette", "Palette", "heat", "heat", "ice", "mono"),
			effect.Boolean("mirror", "Mirror", false),
		}),
	}
	s.Reset()
	return s
}

func (s *SpectrumBars) ID() string                 { return "spectrum-bars" }
func (s *SpectrumBars) Name() string               { return "Spectrum Bars" }
func (s *SpectrumBars) Parameters() *effect.Values { return s.params }

func (s *SpectrumBars) Reset() {
	n := int(s.params.Float("bars"))
	s.peaks = make([]float64, n)
	s.levels = make([]float64, n)
}

// level returns the normalized height for bar b out of n.
func (s *SpectrumBars) level(ctx *effect.Context, b, n int) float64 {
	if len(ctx.Bins) == 0 {
		// Summary fallback: spread bass/mid/treble across the bars.
		switch {
		case b < n/3:
			return ctx.Audio.Normalized("bass")
		case b < 2*n/3:
			return ctx.Audio.Normalized("mid")
		default:
			return ctx.Audio.Normalized("treble")
		}
	}
	per := len(ctx.Bins) / n
	if per < 1 {
		per = 1
	}
	start := b * per
	if start >= len(ctx.Bins) {
		return 0
	}
	end := start + per
	if end > len(ctx.Bins) {
		end = len(ctx.Bins)
	}
	var max byte
	for _, v := range ctx.Bins[start:end] {
		if v > max {
			max = v
		}
	}
	return float64(max) / 255
}

func (s *SpectrumBars) barColor(t float64) color.RGBA {
	switch s.params.String("palette") {
	case "ice":
		return render.LerpColor(color.RGBA{20, 60, 160, 255}, color.RGBA{160, 230, 255, 255}, t)
	case "mono":
		return render.LerpColor(color.RGBA{60, 60, 60, 255}, color.RGBA{240, 240, 240, 255}, t)
	default:
		return render.HSL(vmath.Lerp(240, 0, t), 0.9, 0.5)
	}
}

func (s *SpectrumBars) Render(ctx *effect.Context) {
	ctx.Surface.Fill(color.RGBA{8, 8, 14, 255})

	n := len(s.levels)
	if n == 0 {
		return
	}
	mirror := s.params.Bool("mirror")
	fall := s.params.Float("peakFall") / float64(ctx.Height)
	barW := float64(ctx.Width) / float64(n)
	baseline := float64(ctx.Height)
	maxH := float64(ctx.Height) * 0.9
	if mirror {
		baseline = float64(ctx.Height) / 2
		maxH = baseline * 0.9
	}

	for b := 0; b < n; b++ {
		target := s.level(ctx, b, n)
		// Quick attack, slow decay keeps bars readable.
		if target > s.levels[b] {
			s.levels[b] = target
		} else {
			s.levels[b] = vmath.Approach(s.levels[b], target, ctx.Delta*3)
		}
		if s.levels[b] > s.peaks[b] {
			s.peaks[b] = s.levels[b]
		} else {
			s.peaks[b] = vmath.Approach(s.peaks[b], 0, fall*ctx.Delta)
		}

		h := s.levels[b] * maxH
		x := int(float64(b) * barW)
		w := int(barW) - 1
		if w < 1 {
			w = 1
		}
		c := s.barColor(s.levels[b])
		ctx.Surface.FillRect(x, int(baseline-h), w, int(h), c, 1)
		if mirror {
			ctx.Surface.FillRect(x, int(baseline), w, int(h), c, 0.45)
		}

		py := baseline - s.peaks[b]*maxH
		ctx.Surface.FillRect(x, int(py)-2, w, 2, color.RGBA{255, 255, 255, 255}, 0.9)
	}
}
