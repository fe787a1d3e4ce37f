// SPDX-License-Identifier: MIT
/*
Package analysis converts audio into the per-frame signals that drive visual
effects: named frequency bands, spectral shape descriptors, and beat events.

The package consumes byte-quantized spectrum snapshots (255 bins, 0-255
intensity each, DC to Nyquist) and is deliberately allocation-free on the
per-frame path: FrequencyData and BeatData are overwritten in place and
consumers read value snapshots.
*/
package analysis

import "strings"

// NumBins is the length of a spectrum snapshot frame.
const NumBins = 255

// Band index slices. Bass covers bins 0-9, mid 10-99, treble 100-254.
// The ranges are disjoint and cover every bin exactly once.
const (
	bassEnd = 10
	midEnd  = 100
)

// FrequencyData holds named band intensities, each a 0-255 scalar recomputed
// every frame. Ephemeral: overwritten in place, never retained across frames.
type FrequencyData struct {
	Average float64
	Bass    float64
	Mid     float64
	Treble  float64
}

// Update recomputes all bands from a spectrum snapshot. Frames shorter than
// NumBins contribute whatever bins they have; an empty frame zeroes all bands.
func (f *FrequencyData) Update(bins []byte) {
	var sumAll, sumBass, sumMid, sumTreble float64
	var nBass, nMid, nTreble int

	for i, b := range bins {
		v := float64(b)
		sumAll += v
		switch {
		case i < bassEnd:
			sumBass += v
			nBass++
		case i < midEnd:
			sumMid += v
			nMid++
		default:
			sumTreble += v
			nTreble++
		}
	}

	f.Average = mean(sumAll, len(bins))
	f.Bass = mean(sumBass, nBass)
	f.Mid = mean(sumMid, nMid)
	f.Treble = mean(sumTreble, nTreble)
}

func mean(sum float64, n int) float64 {
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// Band returns a named band by label, case-insensitive. Used by keyframe and
// parameter bindings that reference bands as strings. The second result is
// false for unknown names.
func (f *FrequencyData) Band(name string) (float64, bool) {
	switch strings.ToLower(name) {
	case "bass":
		return f.Bass, true
	case "mid":
		return f.Mid, true
	case "treble":
		return f.Treble, true
	case "average", "overall":
		return f.Average, true
	default:
		return 0, false
	}
}

// Normalized returns a named band scaled to [0,1]. Unknown names read as zero.
func (f *FrequencyData) Normalized(name string) float64 {
	band, _ := f.Band(name)
	return band / 255.0
}
