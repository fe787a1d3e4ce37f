// SPDX-License-Identifier: MIT
package waveform

import (
	"fmt"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Track is decoded mono PCM ready for envelope reduction or analysis.
type Track struct {
	Samples    []float32
	SampleRate int
	Channels   int
	Duration   float64
}

// LoadWAV decodes a WAV file and downmixes to mono float32 in [-1, 1].
func LoadWAV(path string) (*Track, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("waveform: open %s: %w", path, err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("waveform: %s is not a valid WAV file", path)
	}
	if err := dec.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("waveform: seek PCM in %s: %w", path, err)
	}

	bitDepth := int(dec.SampleBitDepth())
	if bitDepth == 0 {
		return nil, fmt.Errorf("waveform: unknown bit depth in %s", path)
	}
	format := dec.Format()
	channels := format.NumChannels
	if channels < 1 {
		return nil, fmt.Errorf("waveform: no channels in %s", path)
	}

	bytesPerSample := (bitDepth-1)/8 + 1
	nsamples := int(dec.PCMLen()) / bytesPerSample
	buf := &audio.IntBuffer{
		Format:         format,
		Data:           make([]int, nsamples),
		SourceBitDepth: bitDepth,
	}
	if _, err := dec.PCMBuffer(buf); err != nil {
		return nil, fmt.Errorf("waveform: decode %s: %w", path, err)
	}

	scale := float32(1 / math.Pow(2, float64(bitDepth-1)))
	frames := nsamples / channels
	mono := make([]float32, frames)
	for fr := 0; fr < frames; fr++ {
		var sum float32
		for ch := 0; ch < channels; ch++ {
			sum += float32(buf.Data[fr*channels+ch]) * scale
		}
		mono[fr] = sum / float32(channels)
	}

	return &Track{
		Samples:    mono,
		SampleRate: format.SampleRate,
		Channels:   channels,
		Duration:   float64(frames) / float64(format.SampleRate),
	}, nil
}
