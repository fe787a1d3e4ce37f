// SPDX-License-Identifier: MIT
package config

// Defaults and limits for the render and analysis pipeline.
const (
	DefaultCanvasWidth  = 1280
	DefaultCanvasHeight = 720
	DefaultFrameRate    = 60

	DefaultSampleRate      = 44100.0
	DefaultFFTSize         = 2048
	DefaultFramesPerBuffer = 512
	DefaultFFTWindow       = "Hann"
	DefaultSmoothing       = 0.8
	DefaultInputDevice     = -1 // system default capture device

	// Beat detector tuning. These are empirically validated starting points,
	// not protocol constants; config and flags may override all of them.
	DefaultEnergyWindow    = 43 // ~1s of history at a 43Hz analysis cadence
	DefaultBaseThreshold   = 1.4
	DefaultVarianceSlope   = 15.0
	DefaultMinBPM          = 40.0
	DefaultMaxBPM          = 220.0
	DefaultIntervalHistory = 8

	// Clock drift bound in seconds before a silent re-anchor.
	DefaultMaxDrift = 0.1

	MinCanvasDim  = 16
	MaxCanvasDim  = 8192
	MinSampleRate = 8000.0
	MaxSampleRate = 192000.0
)

// CanvasConfig describes the render target.
type CanvasConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	FrameRate int `yaml:"frame_rate"`
}

// AudioConfig holds analysis and capture settings.
type AudioConfig struct {
	SampleRate      float64 `yaml:"sample_rate"`       // Hz
	FFTSize         int     `yaml:"fft_size"`          // power of 2
	FramesPerBuffer int     `yaml:"frames_per_buffer"` // capture buffer size
	FFTWindow       string  `yaml:"fft_window"`        // window function name
	Smoothing       float64 `yaml:"smoothing"`         // spectrum smoothing constant [0,1)
	InputDevice     int     `yaml:"input_device"`      // capture device index, -1 for default
}

// BeatConfig holds beat detector tuning.
type BeatConfig struct {
	EnergyWindow    int     `yaml:"energy_window"`    // rolling energy history length
	BaseThreshold   float64 `yaml:"base_threshold"`   // energy ratio floor for onset
	VarianceSlope   float64 `yaml:"variance_slope"`   // how strongly variance raises the bar
	MinBPM          float64 `yaml:"min_bpm"`          // interval outlier rejection, low side
	MaxBPM          float64 `yaml:"max_bpm"`          // interval outlier rejection, high side
	IntervalHistory int     `yaml:"interval_history"` // ring buffer of inter-beat intervals
}

// EffectConfig selects the active effect.
type EffectConfig struct {
	ID    string `yaml:"id"`    // explicit effect id, wins over Genre
	Genre string `yaml:"genre"` // free-text genre for recommendation lookup
}

// TransportConfig holds settings for broadcasting analysis snapshots to UI
// collaborators.
type TransportConfig struct {
	WebSocketEnabled bool   `yaml:"websocket_enabled"`
	WebSocketAddr    string `yaml:"websocket_addr"`
	UDPEnabled       bool   `yaml:"udp_enabled"`
	UDPTargetAddress string `yaml:"udp_target_address"`
}

// Config is the root runtime configuration, built from defaults, an optional
// YAML file, environment overrides and CLI flags, in that order.
type Config struct {
	Debug     bool            `yaml:"debug"`
	LogLevel  string          `yaml:"log_level"`
	MaxDrift  float64         `yaml:"max_drift_seconds"`
	Canvas    CanvasConfig    `yaml:"canvas"`
	Audio     AudioConfig     `yaml:"audio"`
	Beat      BeatConfig      `yaml:"beat"`
	Effect    EffectConfig    `yaml:"effect"`
	Transport TransportConfig `yaml:"transport"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		Debug:    false,
		LogLevel: "info",
		MaxDrift: DefaultMaxDrift,
		Canvas: CanvasConfig{
			Width:     DefaultCanvasWidth,
			Height:    DefaultCanvasHeight,
			FrameRate: DefaultFrameRate,
		},
		Audio: AudioConfig{
			SampleRate:      DefaultSampleRate,
			FFTSize:         DefaultFFTSize,
			FramesPerBuffer: DefaultFramesPerBuffer,
			FFTWindow:       DefaultFFTWindow,
			Smoothing:       DefaultSmoothing,
			InputDevice:     DefaultInputDevice,
		},
		Beat: BeatConfig{
			EnergyWindow:    DefaultEnergyWindow,
			BaseThreshold:   DefaultBaseThreshold,
			VarianceSlope:   DefaultVarianceSlope,
			MinBPM:          DefaultMinBPM,
			MaxBPM:          DefaultMaxBPM,
			IntervalHistory: DefaultIntervalHistory,
		},
		Effect: EffectConfig{},
		Transport: TransportConfig{
			WebSocketEnabled: false,
			WebSocketAddr:    ":8080",
			UDPEnabled:       false,
			UDPTargetAddress: "127.0.0.1:9090",
		},
	}
}
