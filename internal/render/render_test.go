// SPDX-License-Identifier: MIT
package render

import (
	"image/color"
	"testing"
)

func pixelAt(s *Surface, x, y int) color.RGBA {
	i := s.Image().PixOffset(x, y)
	p := s.Image().Pix
	return color.RGBA{p[i], p[i+1], p[i+2], p[i+3]}
}

func TestFillSetsEveryPixel(t *testing.T) {
	s := NewSurface(33, 17) // odd sizes exercise the row-doubling fill
	want := color.RGBA{10, 20, 30, 255}
	s.Fill(want)

	for _, pt := range [][2]int{{0, 0}, {32, 0}, {0, 16}, {32, 16}, {16, 8}} {
		if got := pixelAt(s, pt[0], pt[1]); got != want {
			t.Errorf("pixel %v = %v, want %v", pt, got, want)
		}
	}
}

func TestBlendPixelClipsSilently(t *testing.T) {
	s := NewSurface(8, 8)
	// Must not panic or wrap around.
	s.BlendPixel(-1, 0, color.RGBA{255, 0, 0, 255}, 1)
	s.BlendPixel(0, -1, color.RGBA{255, 0, 0, 255}, 1)
	s.BlendPixel(8, 0, color.RGBA{255, 0, 0, 255}, 1)
	s.BlendPixel(0, 8, color.RGBA{255, 0, 0, 255}, 1)

	if got := pixelAt(s, 0, 0); got.R != 0 {
		t.Errorf("corner pixel touched by clipped draw: %v", got)
	}
}

func TestBlendPixelOpacity(t *testing.T) {
	s := NewSurface(2, 2)
	s.Fill(color.RGBA{0, 0, 0, 255})
	s.BlendPixel(0, 0, color.RGBA{200, 0, 0, 255}, 0.5)

	got := pixelAt(s, 0, 0)
	if got.R < 90 || got.R > 110 {
		t.Errorf("half-blend R = %d, want ~100", got.R)
	}
}

func TestAddPixelSaturates(t *testing.T) {
	s := NewSurface(2, 2)
	c := color.RGBA{200, 200, 200, 255}
	s.AddPixel(0, 0, c, 1)
	s.AddPixel(0, 0, c, 1)

	if got := pixelAt(s, 0, 0); got.R != 255 || got.G != 255 || got.B != 255 {
		t.Errorf("additive blend did not saturate: %v", got)
	}
}

func TestFillCircleStaysInRadius(t *testing.T) {
	s := NewSurface(21, 21)
	s.FillCircle(10, 10, 5, color.RGBA{0, 255, 0, 255}, 1)

	if got := pixelAt(s, 10, 10); got.G != 255 {
		t.Error("circle center not filled")
	}
	if got := pixelAt(s, 10, 2); got.G != 0 {
		t.Error("pixel outside radius filled")
	}
}

func TestTransferSwapsOnOffscreenPath(t *testing.T) {
	r := NewRenderer(16, 16)
	main := NewSurface(16, 16)

	if !r.IsOffscreen() {
		t.Fatal("default renderer should prefer the swap path")
	}

	frame := r.Canvas()
	frame.Fill(color.RGBA{50, 60, 70, 255})
	framePix := &frame.Image().Pix[0]

	if err := r.TransferToMain(main); err != nil {
		t.Fatal(err)
	}

	// Zero copy: main now owns the exact bitmap that was drawn.
	if &main.Image().Pix[0] != framePix {
		t.Error("offscreen transfer copied instead of swapping")
	}
	if got := pixelAt(main, 8, 8); got != (color.RGBA{50, 60, 70, 255}) {
		t.Errorf("presented pixel = %v", got)
	}
	// The draw target changed; stale canvas pointers would draw into the
	// presented frame.
	if r.Canvas().Image() == main.Image() {
		t.Error("renderer still targets the presented bitmap")
	}
}

func TestTransferCopiesOnFallbackPath(t *testing.T) {
	r := NewRenderer(16, 16, WithoutSwap())
	main := NewSurface(16, 16)
	mainPix := &main.Image().Pix[0]

	if r.IsOffscreen() {
		t.Fatal("WithoutSwap renderer reports offscreen")
	}

	r.Canvas().Fill(color.RGBA{1, 2, 3, 255})
	if err := r.TransferToMain(main); err != nil {
		t.Fatal(err)
	}

	// Fallback keeps the destination bitmap address stable.
	if &main.Image().Pix[0] != mainPix {
		t.Error("fallback transfer replaced the destination bitmap")
	}
	if got := pixelAt(main, 0, 0); got != (color.RGBA{1, 2, 3, 255}) {
		t.Errorf("blitted pixel = %v", got)
	}
}

// Trails fade whatever the back buffer holds after a present. On the
// fallback path that is the frame just shown; on the swap path it is the
// frame from two presents ago, so trail effects use WithoutSwap.
func TestFallbackRetainsPreviousFrameForTrails(t *testing.T) {
	r := NewRenderer(4, 4, WithoutSwap())
	main := NewSurface(4, 4)

	r.Canvas().Fill(color.RGBA{200, 200, 200, 255})
	if err := r.TransferToMain(main); err != nil {
		t.Fatal(err)
	}

	FadeClear(r.Canvas(), 0.5)
	got := pixelAt(r.Canvas(), 0, 0)
	if got.R == 0 || got.R >= 200 {
		t.Errorf("faded pixel = %v, want a dimmed copy of the presented frame", got)
	}
}

func TestTransferRejectsSizeMismatch(t *testing.T) {
	r := NewRenderer(16, 16)
	if err := r.TransferToMain(NewSurface(8, 8)); err == nil {
		t.Error("expected error for mismatched destination")
	}
}

func TestResizeDiscardsAndRetargets(t *testing.T) {
	r := NewRenderer(8, 8)
	r.Resize(32, 16)
	c := r.Canvas()
	if c.Width() != 32 || c.Height() != 16 {
		t.Errorf("canvas %dx%d after resize, want 32x16", c.Width(), c.Height())
	}

	main := NewSurface(32, 16)
	if err := r.TransferToMain(main); err != nil {
		t.Errorf("transfer after resize: %v", err)
	}
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		in      string
		want    color.RGBA
		wantErr bool
	}{
		{"#ff8000", color.RGBA{255, 128, 0, 255}, false},
		{"#fff", color.RGBA{255, 255, 255, 255}, false},
		{"#000000", color.RGBA{0, 0, 0, 255}, false},
		{"red", color.RGBA{}, true},
		{"#gg0000", color.RGBA{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseHexColor(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseHexColor(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestHSLPrimaries(t *testing.T) {
	tests := []struct {
		name string
		hue  float64
		want color.RGBA
	}{
		{"Red", 0, color.RGBA{255, 0, 0, 255}},
		{"Green", 120, color.RGBA{0, 255, 0, 255}},
		{"Blue", 240, color.RGBA{0, 0, 255, 255}},
		{"WrapAround", 360, color.RGBA{255, 0, 0, 255}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HSL(tt.hue, 1, 0.5)
			if got != tt.want {
				t.Errorf("HSL(%v) = %v, want %v", tt.hue, got, tt.want)
			}
		})
	}
}

func BenchmarkFillHotPath(b *testing.B) {
	s := NewSurface(1280, 720)
	c := color.RGBA{12, 12, 24, 255}
	b.ReportAllocs()
	for b.Loop() {
		s.Fill(c)
	}
}

func BenchmarkTransferSwap(b *testing.B) {
	r := NewRenderer(1280, 720)
	main := NewSurface(1280, 720)
	b.ReportAllocs()
	for b.Loop() {
		_ = r.TransferToMain(main)
	}
}
