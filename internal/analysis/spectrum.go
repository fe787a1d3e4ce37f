// SPDX-License-Identifier: MIT
package analysis

import (
	"fmt"
	"math"
	"math/cmplx"
	"strings"
	"sync"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"

	"beatviz/pkg/bitint"
)

// WindowFunc selects the FFT window function.
type WindowFunc int

const (
	Hann WindowFunc = iota
	Hamming
	Blackman
	BlackmanNuttall
	Nuttall
	Lanczos
)

// ParseWindowFunc converts a name (case-insensitive) to a WindowFunc.
// Returns Hann and an error for unknown names.
func ParseWindowFunc(name string) (WindowFunc, error) {
	switch strings.ToLower(name) {
	case "hann", "hanning":
		return Hann, nil
	case "hamming":
		return Hamming, nil
	case "blackman":
		return Blackman, nil
	case "blackmannuttall":
		return BlackmanNuttall, nil
	case "nuttall":
		return Nuttall, nil
	case "lanczos":
		return Lanczos, nil
	default:
		return Hann, fmt.Errorf("unknown FFT window function name: %q", name)
	}
}

func windowCoeffs(size int, wf WindowFunc) []float64 {
	coeffs := make([]float64, size)
	for i := range coeffs {
		coeffs[i] = 1.0
	}
	switch wf {
	case Hamming:
		window.Hamming(coeffs)
	case Blackman:
		window.Blackman(coeffs)
	case BlackmanNuttall:
		window.BlackmanNuttall(coeffs)
	case Nuttall:
		window.Nuttall(coeffs)
	case Lanczos:
		window.Lanczos(coeffs)
	default:
		window.Hann(coeffs)
	}
	return coeffs
}

// dB mapping for byte quantization, matching the conventional analyser-node
// range: magnitudes at or below minDecibels map to 0, at or above maxDecibels
// map to 255.
const (
	minDecibels = -100.0
	maxDecibels = -30.0
)

// SpectrumAnalyzer turns raw sample frames into the 255-bin byte snapshots
// the band and beat stages consume. It keeps a sliding window of the most
// recent fftSize samples, applies a window function, runs a real FFT and
// quantizes the smoothed magnitude spectrum to bytes on a dB scale.
//
// All buffers are pre-allocated; Feed and Snapshot never allocate. A mutex
// guards the sample window because capture callbacks feed from a different
// goroutine than the render loop snapshots.
type SpectrumAnalyzer struct {
	fftSize    int
	sampleRate float64
	smoothing  float64 // previous-frame weight, [0,1)

	fft    *fourier.FFT
	coeffs []float64 // window coefficients

	mu      sync.Mutex
	samples []float64 // ring of the last fftSize input samples
	pos     int

	input  []float64    // windowed FFT input
	out    []complex128 // FFT output, fftSize/2+1
	mag    []float64    // smoothed magnitudes
	rawMag []float64    // current-frame magnitudes
}

// NewSpectrumAnalyzer creates an analyzer. fftSize must be a power of 2 and
// at least 2*NumBins so every output bin aggregates at least one FFT bin.
func NewSpectrumAnalyzer(fftSize int, sampleRate, smoothing float64, wf WindowFunc) (*SpectrumAnalyzer, error) {
	if !bitint.IsPowerOfTwo(fftSize) {
		return nil, fmt.Errorf("fft size must be a power of 2, got %d", fftSize)
	}
	if fftSize < 2*NumBins {
		return nil, fmt.Errorf("fft size %d too small for %d output bins", fftSize, NumBins)
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %f", sampleRate)
	}
	if smoothing < 0 || smoothing >= 1 {
		return nil, fmt.Errorf("smoothing %f outside [0,1)", smoothing)
	}

	half := fftSize/2 + 1
	return &SpectrumAnalyzer{
		fftSize:    fftSize,
		sampleRate: sampleRate,
		smoothing:  smoothing,
		fft:        fourier.NewFFT(fftSize),
		coeffs:     windowCoeffs(fftSize, wf),
		samples:    make([]float64, fftSize),
		input:      make([]float64, fftSize),
		out:        make([]complex128, half),
		mag:        make([]float64, half),
		rawMag:     make([]float64, half),
	}, nil
}

// Feed appends capture samples to the sliding window. Called from the audio
// capture goroutine; real-time safe.
func (a *SpectrumAnalyzer) Feed(samples []float32) {
	a.mu.Lock()
	for _, s := range samples {
		a.samples[a.pos] = float64(s)
		a.pos++
		if a.pos == a.fftSize {
			a.pos = 0
		}
	}
	a.mu.Unlock()
}

// Snapshot computes the current byte spectrum into dst, which must be
// NumBins long. Each output bin aggregates a contiguous run of FFT bins
// spanning DC to Nyquist.
func (a *SpectrumAnalyzer) Snapshot(dst []byte) error {
	if len(dst) != NumBins {
		return fmt.Errorf("destination length %d, want %d", len(dst), NumBins)
	}

	a.mu.Lock()
	// Unroll the ring so input[0] is the oldest sample.
	n := copy(a.input, a.samples[a.pos:])
	copy(a.input[n:], a.samples[:a.pos])
	a.mu.Unlock()

	for i := range a.input {
		a.input[i] *= a.coeffs[i]
	}

	a.fft.Coefficients(a.out, a.input)

	norm := 2.0 / float64(a.fftSize)
	for i, c := range a.out {
		a.rawMag[i] = cmplx.Abs(c) * norm
		// Temporal smoothing before quantization, previous frames decay
		// geometrically.
		a.mag[i] = a.smoothing*a.mag[i] + (1-a.smoothing)*a.rawMag[i]
	}

	// Aggregate fftSize/2 bins (DC excluded) into NumBins buckets.
	usable := len(a.mag) - 1
	perBucket := usable / NumBins
	for b := 0; b < NumBins; b++ {
		start := 1 + b*perBucket
		var sum float64
		for i := start; i < start+perBucket; i++ {
			sum += a.mag[i]
		}
		dst[b] = quantize(sum / float64(perBucket))
	}
	return nil
}

// SampleRate returns the configured sample rate in Hz.
func (a *SpectrumAnalyzer) SampleRate() float64 { return a.sampleRate }

// FFTSize returns the configured FFT size.
func (a *SpectrumAnalyzer) FFTSize() int { return a.fftSize }

// quantize maps a linear magnitude onto the byte dB scale.
func quantize(mag float64) byte {
	if mag <= 0 {
		return 0
	}
	db := 20 * math.Log10(mag)
	v := (db - minDecibels) / (maxDecibels - minDecibels) * 255
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return byte(v)
}
