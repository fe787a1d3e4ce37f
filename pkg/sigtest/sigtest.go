// SPDX-License-Identifier: MIT
//
// Package sigtest generates synthetic signals and spectrum frames for tests.
// Generators are deterministic so failures reproduce exactly.
package sigtest

import "math"

// SineWave returns size samples of a sine at frequency Hz, amplitude 0.9.
func SineWave(size int, sampleRate, frequency float64) []float32 {
	buf := make([]float32, size)
	for i := range buf {
		t := float64(i) / sampleRate
		buf[i] = float32(math.Sin(2*math.Pi*frequency*t) * 0.9)
	}
	return buf
}

// ComplexWave returns a 440Hz fundamental with two harmonics, useful when a
// test needs energy spread across several spectrum bins.
func ComplexWave(size int, sampleRate float64) []float32 {
	buf := make([]float32, size)
	for i := range buf {
		t := float64(i) / sampleRate
		s := math.Sin(2*math.Pi*440*t)*0.5 +
			math.Sin(2*math.Pi*880*t)*0.3 +
			math.Sin(2*math.Pi*1320*t)*0.2
		buf[i] = float32(s)
	}
	return buf
}

// FlatBins returns a 255-bin spectrum frame with every bin at level.
func FlatBins(level byte) []byte {
	bins := make([]byte, 255)
	for i := range bins {
		bins[i] = level
	}
	return bins
}

// BandBins returns a 255-bin frame with independent levels for the bass
// (0-9), mid (10-99) and treble (100-254) index ranges.
func BandBins(bass, mid, treble byte) []byte {
	bins := make([]byte, 255)
	for i := range bins {
		switch {
		case i < 10:
			bins[i] = bass
		case i < 100:
			bins[i] = mid
		default:
			bins[i] = treble
		}
	}
	return bins
}
