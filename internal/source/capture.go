// SPDX-License-Identifier: MIT

// Package source captures live audio through PortAudio and feeds it to
// the spectrum analyser. The capture callback runs on a dedicated OS
// thread and uses pre-allocated buffers only.
package source

import (
	"fmt"
	"runtime"
	"time"

	"github.com/gordonklaus/portaudio"

	"beatviz/internal/analysis"
	"beatviz/internal/config"
	applog "beatviz/internal/log"
)

// Capture owns a PortAudio input stream. Samples are downmixed to mono
// in the callback and pushed straight into the analyser's sample ring.
type Capture struct {
	cfg      config.AudioConfig
	analyzer *analysis.SpectrumAnalyzer

	device  *portaudio.DeviceInfo
	latency time.Duration
	stream  *portaudio.Stream

	channels int
	mono     []float32
}

// NewCapture selects the input device and sizes the buffers. PortAudio
// must already be initialized; the caller owns Initialize/Terminate.
func NewCapture(cfg config.AudioConfig, analyzer *analysis.SpectrumAnalyzer) (*Capture, error) {
	if analyzer == nil {
		return nil, fmt.Errorf("source: analyzer cannot be nil")
	}
	device, err := inputDevice(cfg.InputDevice)
	if err != nil {
		return nil, err
	}

	channels := device.MaxInputChannels
	if channels > 2 {
		channels = 2
	}
	if channels < 1 {
		return nil, fmt.Errorf("source: device %q has no input channels", device.Name)
	}

	applog.Infof("Capture: using input device %q (%d ch, %.0f Hz)",
		device.Name, channels, cfg.SampleRate)

	return &Capture{
		cfg:      cfg,
		analyzer: analyzer,
		device:   device,
		latency:  device.DefaultLowInputLatency,
		channels: channels,
		mono:     make([]float32, cfg.FramesPerBuffer),
	}, nil
}

func (c *Capture) Start() error {
	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Channels: c.channels,
			Device:   c.device,
			Latency:  c.latency,
		},
		FramesPerBuffer: c.cfg.FramesPerBuffer,
		SampleRate:      c.cfg.SampleRate,
	}

	stream, err := portaudio.OpenStream(params, c.process)
	if err != nil {
		return fmt.Errorf("source: open stream: %w", err)
	}
	c.stream = stream

	if err := c.stream.Start(); err != nil {
		c.stream.Close()
		c.stream = nil
		return fmt.Errorf("source: start stream: %w", err)
	}
	return nil
}

func (c *Capture) Stop() error {
	if c.stream == nil {
		return nil
	}
	if err := c.stream.Stop(); err != nil {
		return fmt.Errorf("source: stop stream: %w", err)
	}
	if err := c.stream.Close(); err != nil {
		return fmt.Errorf("source: close stream: %w", err)
	}
	c.stream = nil
	return nil
}

// process is the capture callback. Hot path: no allocations, no locks
// beyond the analyser's ring mutex.
func (c *Capture) process(in []float32) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if c.channels == 1 {
		c.analyzer.Feed(in)
		return
	}

	frames := len(in) / c.channels
	if frames > len(c.mono) {
		frames = len(c.mono)
	}
	for i := 0; i < frames; i++ {
		var sum float32
		for ch := 0; ch < c.channels; ch++ {
			sum += in[i*c.channels+ch]
		}
		c.mono[i] = sum / float32(c.channels)
	}
	c.analyzer.Feed(c.mono[:frames])
}
