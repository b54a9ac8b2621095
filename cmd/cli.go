// SPDX-License-Identifier: MIT
package cmd

import (
	"blockhost/internal/config"
	"blockhost/internal/engine"
	applog "blockhost/internal/log"
	"blockhost/internal/module"
	"blockhost/pkg/build"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// options holds the command line flags. Flags override the configuration
// file only when they are set explicitly.
type options struct {
	configPath   string
	engine       string
	script       string
	blockLength  int
	followHost   bool
	logLevel     string
	inputDevice  int
	outputDevice int
	sampleRate   float64
	frames       int
	lowLatency   bool
	record       bool
	outputDir    string
}

// Execute builds the command tree and runs it against os.Args.
func Execute() error {
	return newRootCommand().Execute()
}

func newRootCommand() *cobra.Command {
	buildInfo := build.GetBuildFlags()
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           buildInfo.Name,
		Short:         buildInfo.Description,
		Version:       buildInfo.String(),
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableDescriptions: true,
			DisableNoDescFlag:   true,
			HiddenDefaultCmd:    true,
		},
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			return runLive(cfg)
		},
	}

	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})
	rootCmd.SetArgs(os.Args[1:])

	// Configuration
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "",
		"Configuration file. Defaults to config.yaml in the working directory when present")
	flags.StringVar(&opts.logLevel, "log-level", "",
		"Log level: debug, info, warn or error")

	// Engine and block
	flags.StringVarP(&opts.engine, "engine", "e", config.DefaultEngine,
		"Block engine: "+strings.Join(engine.Names(), ", "))
	flags.StringVar(&opts.script, "script", "",
		"Lua script for the script engine")
	flags.IntVarP(&opts.blockLength, "block-length", "n", config.DefaultBlockLength,
		"Initial block length in samples")
	flags.BoolVar(&opts.followHost, "follow-host", config.DefaultFollowHost,
		"Grow the block to the host buffer size when it is larger")

	// Audio Device Configuration
	flags.IntVarP(&opts.inputDevice, "input", "i", config.DefaultDeviceID,
		"Input device ID. Use 'list' command to see available devices.")
	flags.IntVarP(&opts.outputDevice, "output", "o", config.DefaultDeviceID,
		"Output device ID. Use 'list' command to see available devices.")
	flags.Float64VarP(&opts.sampleRate, "sample-rate", "s", config.DefaultSampleRate,
		"Sample rate, measured in Hertz (Hz)")
	flags.IntVarP(&opts.frames, "frames-per-buffer", "b", config.DefaultFramesPerBuffer,
		"The number of frames per buffer (affects latency)")
	flags.BoolVarP(&opts.lowLatency, "low-latency", "l", config.DefaultLowLatency,
		"Use low latency mode for real-time processing")

	// Recording Configuration
	flags.BoolVarP(&opts.record, "record", "r", false,
		"Record the module outputs to WAV")
	flags.StringVar(&opts.outputDir, "record-dir", config.DefaultRecordingDir,
		"Directory for recordings")

	rootCmd.AddCommand(
		newListCommand(opts),
		newParamsCommand(opts),
		newRenderCommand(opts),
		newPlayCommand(opts),
	)
	return rootCmd
}

// loadConfig reads the configuration file and environment, then applies the
// flags the user set.
func loadConfig(cmd *cobra.Command, opts *options) (*config.Config, error) {
	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = opts.logLevel
	}
	if flags.Changed("engine") {
		cfg.Engine.Name = opts.engine
	}
	if flags.Changed("script") {
		cfg.Engine.Script = opts.script
		if !flags.Changed("engine") {
			cfg.Engine.Name = "script"
		}
	}
	if flags.Changed("block-length") {
		cfg.Block.Length = opts.blockLength
	}
	if flags.Changed("follow-host") {
		cfg.Block.FollowHost = opts.followHost
	}
	if flags.Changed("input") {
		cfg.Audio.InputDevice = opts.inputDevice
	}
	if flags.Changed("output") {
		cfg.Audio.OutputDevice = opts.outputDevice
	}
	if flags.Changed("sample-rate") {
		cfg.Audio.SampleRate = opts.sampleRate
	}
	if flags.Changed("frames-per-buffer") {
		cfg.Audio.FramesPerBuffer = opts.frames
	}
	if flags.Changed("low-latency") {
		cfg.Audio.LowLatency = opts.lowLatency
	}
	if flags.Changed("record") {
		cfg.Recording.Enabled = opts.record
	}
	if flags.Changed("record-dir") {
		cfg.Recording.OutputDir = opts.outputDir
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if level, ok := applog.ParseLevel(cfg.LogLevel); ok {
		applog.SetLevel(level)
	}
	return cfg, nil
}

// newModule creates the configured engine and wraps it in a module. The
// returned function releases the engine.
func newModule(cfg *config.Config) (*module.Module, func(), error) {
	e, err := engine.New(cfg.Engine.Name, engine.Options{
		Channels: cfg.Engine.Channels,
		Script:   cfg.Engine.Script,
	})
	if err != nil {
		return nil, nil, err
	}

	closeEngine := func() {
		if c, ok := e.(io.Closer); ok {
			if err := c.Close(); err != nil {
				applog.Warnf("Engine: close failed: %v", err)
			}
		}
	}

	m, err := module.New(e, cfg.Block.Length)
	if err != nil {
		closeEngine()
		return nil, nil, err
	}

	release := func() {
		if err := m.EngineErr(); err != nil {
			applog.Errorf("Engine: %v", err)
		}
		closeEngine()
	}

	applog.Debugf("Module: %s, %d in, %d out, %d params, block %d",
		cfg.Engine.Name, m.NumInputs(), m.NumOutputs(), m.NumParams(), m.BlockLength())
	return m, release, nil
}
