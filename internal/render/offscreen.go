// SPDX-License-Identifier: MIT
package render

import (
	"fmt"
	"image"

	"beatviz/internal/log"
)

// Renderer is a double-buffered offscreen compositor. Effects draw into the
// back buffer; TransferToMain presents it to the visible surface.
//
// The preferred path hands the back buffer's bitmap to the destination by
// pointer swap, reclaiming the destination's previous bitmap as the next
// back buffer, so a frame is presented with zero pixel copies and no new
// allocation. When the destination cannot adopt buffers (size mismatch, or
// swapping disabled because the target is shared), the renderer falls back
// to a plain blit with the same interface shape. The choice is a capability
// check, never an error.
type Renderer struct {
	back      *Surface
	offscreen bool
	w, h      int
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithoutSwap forces the copying fallback path, for destinations whose
// bitmap is shared with other readers and must keep a stable address.
//
// It is also the right mode for trail effects: on the swap path the
// reclaimed back buffer holds the frame from two presents ago, so a
// FadeClear accumulates two interleaved histories. The blit path keeps
// a single continuous one.
func WithoutSwap() Option {
	return func(r *Renderer) { r.offscreen = false }
}

// NewRenderer creates a renderer with a w by h back buffer.
func NewRenderer(w, h int, opts ...Option) *Renderer {
	r := &Renderer{
		back:      NewSurface(w, h),
		offscreen: true,
		w:         w,
		h:         h,
	}
	for _, opt := range opts {
		opt(r)
	}
	if !r.offscreen {
		log.Debugf("render: buffer swapping disabled, using blit fallback")
	}
	return r
}

// Canvas returns the current draw target. The pointer changes across
// TransferToMain on the swap path; callers must re-fetch it each frame.
func (r *Renderer) Canvas() *Surface { return r.back }

// IsOffscreen reports whether the zero-copy swap path is active.
func (r *Renderer) IsOffscreen() bool { return r.offscreen }

// TransferToMain presents the back buffer onto dst.
func (r *Renderer) TransferToMain(dst *Surface) error {
	if dst.Width() != r.w || dst.Height() != r.h {
		return fmt.Errorf("destination %dx%d does not match renderer %dx%d",
			dst.Width(), dst.Height(), r.w, r.h)
	}

	if r.offscreen {
		// Swap: dst shows the finished frame, its old bitmap becomes the
		// next back buffer. The presented bitmap is released from the
		// renderer immediately, no frame is ever resident twice.
		r.back.img = dst.adopt(r.back.img)
		return nil
	}

	copy(dst.img.Pix, r.back.img.Pix)
	return nil
}

// Resize reallocates the back buffer. Contents are discarded; callers draw
// the next frame from scratch.
func (r *Renderer) Resize(w, h int) {
	if w == r.w && h == r.h {
		return
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	r.w, r.h = w, h
	r.back.img = image.NewRGBA(image.Rect(0, 0, w, h))
}
