// SPDX-License-Identifier: MIT

// Package cmd parses command line arguments into the runtime
// configuration and routes one-off commands.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"beatviz/internal/config"
	"beatviz/internal/effect"
	"beatviz/pkg/build"
)

// Options is the parsed invocation: the layered Config plus whichever
// one-off command was requested. An empty Command means live mode.
type Options struct {
	Config  *config.Config
	Command string

	// recommend
	Genre string

	// waveform
	WavPath   string
	WaveWidth int
	Normalize bool

	// live mode
	SnapshotEvery int    // dump a PNG every N frames, 0 disables
	SnapshotDir   string // where frame PNGs land
}

// ParseArgs builds the configuration from file, environment and flags,
// then lets cobra route the invocation.
func ParseArgs() (*Options, error) {
	buildInfo := build.Get()

	configPath := ""
	options := &Options{WaveWidth: 120}
	flagCfg := config.New()

	// Flag precedence: a flag the user actually set wins over the file
	// and environment values; untouched flags keep the layered value.
	applyFlagOverrides := func(cmd *cobra.Command, cfg *config.Config) {
		overrides := map[string]func(){
			"device":            func() { cfg.Audio.InputDevice = flagCfg.Audio.InputDevice },
			"sample-rate":       func() { cfg.Audio.SampleRate = flagCfg.Audio.SampleRate },
			"frames-per-buffer": func() { cfg.Audio.FramesPerBuffer = flagCfg.Audio.FramesPerBuffer },
			"effect":            func() { cfg.Effect.ID = flagCfg.Effect.ID },
			"genre":             func() { cfg.Effect.Genre = flagCfg.Effect.Genre },
			"width":             func() { cfg.Canvas.Width = flagCfg.Canvas.Width },
			"height":            func() { cfg.Canvas.Height = flagCfg.Canvas.Height },
			"fps":               func() { cfg.Canvas.FrameRate = flagCfg.Canvas.FrameRate },
			"ws":                func() { cfg.Transport.WebSocketEnabled = flagCfg.Transport.WebSocketEnabled },
			"ws-addr":           func() { cfg.Transport.WebSocketAddr = flagCfg.Transport.WebSocketAddr },
			"udp":               func() { cfg.Transport.UDPEnabled = flagCfg.Transport.UDPEnabled },
			"udp-target":        func() { cfg.Transport.UDPTargetAddress = flagCfg.Transport.UDPTargetAddress },
			"log-level":         func() { cfg.LogLevel = flagCfg.LogLevel },
			"verbose":           func() { cfg.Debug = flagCfg.Debug },
		}
		for name, apply := range overrides {
			if cmd.Flags().Changed(name) {
				apply()
			}
		}
	}

	rootCmd := &cobra.Command{
		Use:           buildInfo.Name,
		Short:         buildInfo.Description,
		Version:       buildInfo.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableDescriptions: true,
			DisableNoDescFlag:   true,
			HiddenDefaultCmd:    true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Layering: defaults, then file, then environment, then
			// explicitly set flags.
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			applyFlagOverrides(cmd, cfg)
			options.Config = cfg
			return cfg.Validate()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return nil // live mode
		},
	}
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "Path to a YAML config file")
	pf.IntVarP(&flagCfg.Audio.InputDevice, "device", "d", flagCfg.Audio.InputDevice,
		"Input device ID. Use the 'devices' command to see what is available.")
	pf.Float64VarP(&flagCfg.Audio.SampleRate, "sample-rate", "s", flagCfg.Audio.SampleRate,
		"Sample rate in Hertz (Hz)")
	pf.IntVarP(&flagCfg.Audio.FramesPerBuffer, "frames-per-buffer", "b", flagCfg.Audio.FramesPerBuffer,
		"Capture buffer size in frames (affects latency)")
	pf.StringVarP(&flagCfg.Effect.ID, "effect", "e", flagCfg.Effect.ID,
		"Effect ID to render. Overrides --genre.")
	pf.StringVarP(&flagCfg.Effect.Genre, "genre", "g", flagCfg.Effect.Genre,
		"Genre used to pick an effect when --effect is not set")
	pf.IntVar(&flagCfg.Canvas.Width, "width", flagCfg.Canvas.Width, "Canvas width in pixels")
	pf.IntVar(&flagCfg.Canvas.Height, "height", flagCfg.Canvas.Height, "Canvas height in pixels")
	pf.IntVar(&flagCfg.Canvas.FrameRate, "fps", flagCfg.Canvas.FrameRate, "Target frame rate")
	pf.BoolVar(&flagCfg.Transport.WebSocketEnabled, "ws", flagCfg.Transport.WebSocketEnabled,
		"Serve frame snapshots over WebSocket")
	pf.StringVar(&flagCfg.Transport.WebSocketAddr, "ws-addr", flagCfg.Transport.WebSocketAddr,
		"WebSocket listen address")
	pf.BoolVar(&flagCfg.Transport.UDPEnabled, "udp", flagCfg.Transport.UDPEnabled,
		"Send binary frame packets over UDP")
	pf.StringVar(&flagCfg.Transport.UDPTargetAddress, "udp-target", flagCfg.Transport.UDPTargetAddress,
		"UDP target address for frame packets")
	pf.StringVar(&flagCfg.LogLevel, "log-level", flagCfg.LogLevel, "Log level (debug|info|warn|error)")
	pf.BoolVarP(&flagCfg.Debug, "verbose", "v", flagCfg.Debug, "Show verbose output")
	pf.IntVar(&options.SnapshotEvery, "snapshot-every", 0,
		"Dump a PNG of the canvas every N frames (0 disables)")
	pf.StringVar(&options.SnapshotDir, "snapshot-dir", ".", "Directory for frame PNGs")

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "devices",
			Short: "List available audio input devices",
			Run: func(cmd *cobra.Command, args []string) {
				options.Command = "devices"
			},
		},
		&cobra.Command{
			Use:   "effects",
			Short: "List registered visual effects",
			Run: func(cmd *cobra.Command, args []string) {
				options.Command = "effects"
			},
		},
		&cobra.Command{
			Use:   "catalog",
			Short: "Browse the effect catalog interactively",
			Run: func(cmd *cobra.Command, args []string) {
				options.Command = "catalog"
			},
		},
		&cobra.Command{
			Use:   "recommend <genre>",
			Short: "Suggest an effect for a musical genre",
			Args:  cobra.MinimumNArgs(1),
			Run: func(cmd *cobra.Command, args []string) {
				options.Command = "recommend"
				options.Genre = args[0]
				for _, a := range args[1:] {
					options.Genre += " " + a
				}
			},
		},
		newWaveformCmd(options),
	)

	rootCmd.SetArgs(os.Args[1:])
	if err := rootCmd.Execute(); err != nil {
		return nil, err
	}
	return options, nil
}

func newWaveformCmd(options *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "waveform <file.wav>",
		Short: "Print a peak envelope for a WAV file",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			options.Command = "waveform"
			options.WavPath = args[0]
		},
	}
	cmd.Flags().IntVarP(&options.WaveWidth, "width", "w", options.WaveWidth,
		"Envelope width in buckets")
	cmd.Flags().BoolVarP(&options.Normalize, "normalize", "n", false,
		"Scale peaks so the loudest bucket is 1.0")
	return cmd
}

// PrintEffects writes the registry contents in a plain, grep-friendly
// format. The catalog TUI is the pretty version.
func PrintEffects(registry *effect.Registry) {
	for _, e := range registry.List() {
		fmt.Printf("%-16s %s\n", e.ID, e.Meta.Description)
	}
}
