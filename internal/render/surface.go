// SPDX-License-Identifier: MIT
/*
Package render provides the 2D raster surfaces effects draw into and the
double-buffered offscreen renderer that composites them to the visible
canvas.

Surfaces wrap image.RGBA and expose the small set of blend operations the
effect catalog actually uses. All drawing is bounds-checked per pixel; an
effect that wanders off-canvas clips instead of corrupting memory.
*/
package render

import (
	"image"
	"image/color"
	"math"
)

// Surface is a drawable RGBA raster.
type Surface struct {
	img *image.RGBA
}

// NewSurface allocates a w by h surface, fully transparent black.
func NewSurface(w, h int) *Surface {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return &Surface{img: image.NewRGBA(image.Rect(0, 0, w, h))}
}

// Width returns the surface width in pixels.
func (s *Surface) Width() int { return s.img.Rect.Dx() }

// Height returns the surface height in pixels.
func (s *Surface) Height() int { return s.img.Rect.Dy() }

// Image exposes the backing image for encoding or display.
func (s *Surface) Image() *image.RGBA { return s.img }

// adopt swaps the backing image, the zero-copy presentation path.
func (s *Surface) adopt(img *image.RGBA) *image.RGBA {
	old := s.img
	s.img = img
	return old
}

// Fill sets every pixel to c.
func (s *Surface) Fill(c color.RGBA) {
	pix := s.img.Pix
	if len(pix) == 0 {
		return
	}
	pix[0], pix[1], pix[2], pix[3] = c.R, c.G, c.B, c.A
	// Fill the first row by doubling, then copy it down.
	rowLen := s.Width() * 4
	for filled := 4; filled < rowLen; filled *= 2 {
		copy(pix[filled:rowLen], pix[:filled])
	}
	for row := rowLen; row < len(pix); row += rowLen {
		copy(pix[row:row+rowLen], pix[:rowLen])
	}
}

// FillRect fills the clipped rectangle with c at the given opacity.
func (s *Surface) FillRect(x, y, w, h int, c color.RGBA, alpha float64) {
	x0, y0 := clampInt(x, 0, s.Width()), clampInt(y, 0, s.Height())
	x1, y1 := clampInt(x+w, 0, s.Width()), clampInt(y+h, 0, s.Height())
	for py := y0; py < y1; py++ {
		for px := x0; px < x1; px++ {
			s.blend(px, py, c, alpha)
		}
	}
}

// BlendPixel draws one pixel with source-over blending at the given opacity.
// Out-of-bounds coordinates are clipped silently.
func (s *Surface) BlendPixel(x, y int, c color.RGBA, alpha float64) {
	if x < 0 || y < 0 || x >= s.Width() || y >= s.Height() {
		return
	}
	s.blend(x, y, c, alpha)
}

// AddPixel draws one pixel with saturating additive blending, the glow path.
func (s *Surface) AddPixel(x, y int, c color.RGBA, alpha float64) {
	if x < 0 || y < 0 || x >= s.Width() || y >= s.Height() {
		return
	}
	i := s.img.PixOffset(x, y)
	pix := s.img.Pix
	pix[i] = satAdd(pix[i], scale(c.R, alpha))
	pix[i+1] = satAdd(pix[i+1], scale(c.G, alpha))
	pix[i+2] = satAdd(pix[i+2], scale(c.B, alpha))
	pix[i+3] = 255
}

// FillCircle fills a circle of radius r centered at (cx, cy).
func (s *Surface) FillCircle(cx, cy, r float64, c color.RGBA, alpha float64) {
	if r <= 0 {
		return
	}
	x0 := int(math.Floor(cx - r))
	x1 := int(math.Ceil(cx + r))
	y0 := int(math.Floor(cy - r))
	y1 := int(math.Ceil(cy + r))
	r2 := r * r
	for py := y0; py <= y1; py++ {
		for px := x0; px <= x1; px++ {
			dx, dy := float64(px)+0.5-cx, float64(py)+0.5-cy
			if dx*dx+dy*dy <= r2 {
				s.BlendPixel(px, py, c, alpha)
			}
		}
	}
}

// DrawLine draws a 1px line from (x0,y0) to (x1,y1) with DDA stepping.
func (s *Surface) DrawLine(x0, y0, x1, y1 float64, c color.RGBA, alpha float64) {
	dx, dy := x1-x0, y1-y0
	steps := math.Max(math.Abs(dx), math.Abs(dy))
	if steps < 1 {
		s.BlendPixel(int(x0), int(y0), c, alpha)
		return
	}
	sx, sy := dx/steps, dy/steps
	x, y := x0, y0
	for i := 0.0; i <= steps; i++ {
		s.BlendPixel(int(x), int(y), c, alpha)
		x += sx
		y += sy
	}
}

// blend writes an unclipped source-over pixel.
func (s *Surface) blend(x, y int, c color.RGBA, alpha float64) {
	if alpha <= 0 {
		return
	}
	if alpha > 1 {
		alpha = 1
	}
	a := alpha * float64(c.A) / 255
	i := s.img.PixOffset(x, y)
	pix := s.img.Pix
	pix[i] = mix(pix[i], c.R, a)
	pix[i+1] = mix(pix[i+1], c.G, a)
	pix[i+2] = mix(pix[i+2], c.B, a)
	if pa := float64(pix[i+3]) + a*255; pa > 255 {
		pix[i+3] = 255
	} else {
		pix[i+3] = uint8(pa)
	}
}

func mix(dst, src uint8, a float64) uint8 {
	return uint8(float64(dst)*(1-a) + float64(src)*a)
}

func satAdd(a, b uint8) uint8 {
	v := uint16(a) + uint16(b)
	if v > 255 {
		return 255
	}
	return uint8(v)
}

func scale(v uint8, a float64) uint8 {
	if a <= 0 {
		return 0
	}
	if a > 1 {
		a = 1
	}
	return uint8(float64(v) * a)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
