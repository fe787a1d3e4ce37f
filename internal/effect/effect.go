// SPDX-License-Identifier: MIT

// Package effect defines the contract between the engine and the visual
// effects it drives, plus the registry effects publish themselves through.
package effect

import (
	"image/color"

	"beatviz/internal/analysis"
	"beatviz/internal/render"
)

// Glyph is one positioned character of the active lyric line. Text
// effects animate glyphs independently; X/Y is the glyph's baseline
// anchor on the canvas.
type Glyph struct {
	Char  rune
	X     float64
	Y     float64
	Width float64
	Index int
}

// Context carries everything an effect may read during one frame.
// Effects must treat every field except Surface as read-only; Bins may
// be nil when no spectrum source is attached.
type Context struct {
	Surface *render.Surface
	Width   int
	Height  int

	Audio analysis.FrequencyData
	Beat  *analysis.BeatData
	Bins  []byte

	// Time is the corrected media clock in seconds, Delta the elapsed
	// seconds since the previous frame.
	Time  float64
	Delta float64

	Lyric    string
	Glyphs   []Glyph
	Progress float64
	FontSize float64
	Color    color.RGBA
}

// Effect is a renderable visual. Render draws one frame into
// ctx.Surface and must not retain ctx or any of its slices past the
// call. Reset returns the effect to the state of a fresh instance.
type Effect interface {
	ID() string
	Name() string
	Parameters() *Values
	Render(ctx *Context)
	Reset()
}
