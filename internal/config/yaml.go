// SPDX-License-Identifier: MIT
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"beatviz/pkg/bitint"
)

// Load builds a Config from defaults, then an optional YAML file, then
// environment overrides, and validates the result. An empty path searches
// default locations; a missing default file is not an error.
func Load(path string) (*Config, error) {
	cfg := New()

	if path == "" {
		candidates := []string{"beatviz.yaml", "config.yaml"}
		for _, candidate := range candidates {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
		if path == "" {
			cfg.applyEnvOverrides()
			if err := cfg.Validate(); err != nil {
				return nil, fmt.Errorf("invalid default configuration: %w", err)
			}
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate rejects configurations the engine cannot run with.
func (c *Config) Validate() error {
	if c.Canvas.Width < MinCanvasDim || c.Canvas.Width > MaxCanvasDim {
		return fmt.Errorf("canvas.width %d outside [%d,%d]", c.Canvas.Width, MinCanvasDim, MaxCanvasDim)
	}
	if c.Canvas.Height < MinCanvasDim || c.Canvas.Height > MaxCanvasDim {
		return fmt.Errorf("canvas.height %d outside [%d,%d]", c.Canvas.Height, MinCanvasDim, MaxCanvasDim)
	}
	if c.Canvas.FrameRate <= 0 {
		return fmt.Errorf("canvas.frame_rate must be positive, got %d", c.Canvas.FrameRate)
	}
	if c.Audio.SampleRate < MinSampleRate || c.Audio.SampleRate > MaxSampleRate {
		return fmt.Errorf("audio.sample_rate %.0f outside [%.0f,%.0f]", c.Audio.SampleRate, MinSampleRate, MaxSampleRate)
	}
	if !bitint.IsPowerOfTwo(c.Audio.FFTSize) {
		return fmt.Errorf("audio.fft_size must be a power of 2, got %d", c.Audio.FFTSize)
	}
	if c.Audio.Smoothing < 0 || c.Audio.Smoothing >= 1 {
		return fmt.Errorf("audio.smoothing %.2f outside [0,1)", c.Audio.Smoothing)
	}
	if c.Beat.MinBPM <= 0 || c.Beat.MaxBPM <= c.Beat.MinBPM {
		return fmt.Errorf("beat bpm bounds invalid: min=%.1f max=%.1f", c.Beat.MinBPM, c.Beat.MaxBPM)
	}
	if c.Beat.EnergyWindow < 2 {
		return fmt.Errorf("beat.energy_window must be >= 2, got %d", c.Beat.EnergyWindow)
	}
	if c.Beat.IntervalHistory < 3 {
		return fmt.Errorf("beat.interval_history must be >= 3, got %d", c.Beat.IntervalHistory)
	}
	if c.MaxDrift <= 0 {
		return fmt.Errorf("max_drift_seconds must be positive, got %.3f", c.MaxDrift)
	}
	return nil
}

// applyEnvOverrides layers BEATVIZ_* environment variables over the loaded
// configuration. Unparseable values are ignored.
func (c *Config) applyEnvOverrides() {
	if val, ok := os.LookupEnv("BEATVIZ_DEBUG"); ok {
		if b, err := strconv.ParseBool(val); err == nil {
			c.Debug = b
		}
	}
	if val, ok := os.LookupEnv("BEATVIZ_LOG_LEVEL"); ok {
		c.LogLevel = val
	}
	if val, ok := os.LookupEnv("BEATVIZ_WS_ENABLED"); ok {
		if b, err := strconv.ParseBool(val); err == nil {
			c.Transport.WebSocketEnabled = b
		}
	}
	if val, ok := os.LookupEnv("BEATVIZ_WS_ADDR"); ok {
		c.Transport.WebSocketAddr = val
	}
	if val, ok := os.LookupEnv("BEATVIZ_UDP_TARGET"); ok {
		c.Transport.UDPTargetAddress = val
		c.Transport.UDPEnabled = true
	}
	if val, ok := os.LookupEnv("BEATVIZ_EFFECT"); ok {
		c.Effect.ID = val
	}
}
