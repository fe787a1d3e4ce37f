// SPDX-License-Identifier: MIT
package render

import (
	"fmt"
	"image/color"
	"math"
)

// Shared drawing helpers. These are free functions rather than effect base
// class behavior so any effect can compose them without an inheritance
// chain.

// FadeClear blends a black veil over the whole surface. Effects use it for
// motion trails: amount 1 is a hard clear, small amounts leave ghosts of
// previous frames. Trails assume consecutive frames share one bitmap; pair
// with a WithoutSwap renderer, since the swap path alternates buffers.
func FadeClear(s *Surface, amount float64) {
	s.FillRect(0, 0, s.Width(), s.Height(), color.RGBA{0, 0, 0, 255}, amount)
}

// VerticalGradient fills the surface with a top-to-bottom blend.
func VerticalGradient(s *Surface, top, bottom color.RGBA) {
	h := s.Height()
	for y := 0; y < h; y++ {
		t := float64(y) / float64(h-1)
		c := LerpColor(top, bottom, t)
		s.FillRect(0, y, s.Width(), 1, c, 1)
	}
}

// Vignette darkens the surface toward its corners. strength sets the corner
// darkness, softness how early the falloff starts.
func Vignette(s *Surface, strength, softness float64) {
	if strength <= 0 {
		return
	}
	w, h := s.Width(), s.Height()
	cx, cy := float64(w)/2, float64(h)/2
	maxDist := math.Hypot(cx, cy)
	black := color.RGBA{0, 0, 0, 255}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			d := math.Hypot(float64(x)-cx, float64(y)-cy) / maxDist
			if d <= softness {
				continue
			}
			t := (d - softness) / (1 - softness)
			s.BlendPixel(x, y, black, t*t*strength)
		}
	}
}

// LerpColor interpolates per-channel between a and b.
func LerpColor(a, b color.RGBA, t float64) color.RGBA {
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return color.RGBA{
		R: uint8(float64(a.R) + (float64(b.R)-float64(a.R))*t),
		G: uint8(float64(a.G) + (float64(b.G)-float64(a.G))*t),
		B: uint8(float64(a.B) + (float64(b.B)-float64(a.B))*t),
		A: uint8(float64(a.A) + (float64(b.A)-float64(a.A))*t),
	}
}

// ParseHexColor parses "#RRGGBB" or "#RGB" into an opaque RGBA.
func ParseHexColor(s string) (color.RGBA, error) {
	c := color.RGBA{A: 255}
	var err error
	switch len(s) {
	case 7:
		_, err = fmt.Sscanf(s, "#%02x%02x%02x", &c.R, &c.G, &c.B)
	case 4:
		_, err = fmt.Sscanf(s, "#%1x%1x%1x", &c.R, &c.G, &c.B)
		c.R *= 17
		c.G *= 17
		c.B *= 17
	default:
		err = fmt.Errorf("invalid length %d", len(s))
	}
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	return c, nil
}

// HSL converts hue (degrees), saturation and lightness ([0,1]) to RGBA.
// Effects use it for audio-driven hue rotation.
func HSL(hue, sat, light float64) color.RGBA {
	hue = math.Mod(math.Mod(hue, 360)+360, 360)
	c := (1 - math.Abs(2*light-1)) * sat
	x := c * (1 - math.Abs(math.Mod(hue/60, 2)-1))
	m := light - c/2

	var r, g, b float64
	switch {
	case hue < 60:
		r, g, b = c, x, 0
	case hue < 120:
		r, g, b = x, c, 0
	case hue < 180:
		r, g, b = 0, c, x
	case hue < 240:
		r, g, b = 0, x, c
	case hue < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	return color.RGBA{
		R: uint8((r + m) * 255),
		G: uint8((g + m) * 255),
		B: uint8((b + m) * 255),
		A: 255,
	}
}
