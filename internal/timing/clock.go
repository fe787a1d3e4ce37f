// SPDX-License-Identifier: MIT
/*
Package timing reconciles two clocks that disagree about playback time.

The media clock (a decoder or playback element's reported position) updates
at an irregular, coarse cadence unsuitable for frame-accurate visual sync.
The monotonic clock is smooth and high-resolution but has no absolute
meaning. PrecisionClock anchors the two on playback start and interpolates
the media position with monotonic deltas, silently re-anchoring whenever the
prediction drifts past a bound.
*/
package timing

import (
	"math"
	"time"
)

// DefaultMaxDrift is the prediction error, in seconds, that triggers a
// re-anchor.
const DefaultMaxDrift = 0.1

// Source reports a clock position in seconds. Both clock inputs are sources
// so tests can drive them deterministically.
type Source func() float64

// Monotonic is the default high-resolution source, seconds since an
// arbitrary program-start origin.
func Monotonic() Source {
	start := time.Now()
	return func() float64 {
		return time.Since(start).Seconds()
	}
}

// PrecisionClock predicts precise playback time from a coarse media clock
// and a smooth monotonic clock. Not safe for concurrent use; the render loop
// owns it.
type PrecisionClock struct {
	media    Source
	mono     Source
	maxDrift float64

	anchored    bool
	anchorMedia float64 // media position at anchor
	anchorMono  float64 // monotonic position at anchor
	reanchors   int
}

// NewPrecisionClock builds a clock over the given sources. A non-positive
// maxDrift falls back to DefaultMaxDrift.
func NewPrecisionClock(media, mono Source, maxDrift float64) *PrecisionClock {
	if maxDrift <= 0 {
		maxDrift = DefaultMaxDrift
	}
	return &PrecisionClock{media: media, mono: mono, maxDrift: maxDrift}
}

// Start records a fresh reference pair. Call on every playback start or
// seek; the first PreciseTime call anchors implicitly if Start was missed.
func (c *PrecisionClock) Start() {
	c.anchor()
}

func (c *PrecisionClock) anchor() {
	c.anchorMedia = c.media()
	c.anchorMono = c.mono()
	c.anchored = true
}

// PreciseTime returns the best estimate of current playback time in seconds.
// The monotonic delta carries sub-frame precision between coarse media
// updates; when the prediction diverges from the media clock by more than
// maxDrift the reference pair is re-anchored to the media position. The
// correction is silent, drift is an expected condition here, not an error.
func (c *PrecisionClock) PreciseTime() float64 {
	if !c.anchored {
		c.anchor()
		return c.anchorMedia
	}

	predicted := c.anchorMedia + (c.mono() - c.anchorMono)
	actual := c.media()

	if math.Abs(predicted-actual) > c.maxDrift {
		c.anchor()
		c.reanchors++
		return actual
	}
	return predicted
}

// Reanchors returns how many drift corrections have occurred since
// construction. Exposed for tests and diagnostics.
func (c *PrecisionClock) Reanchors() int {
	return c.reanchors
}
