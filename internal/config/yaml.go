// SPDX-License-Identifier: MIT
package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the application configuration, loaded from YAML.
type Config struct {
	LogLevel  string          `yaml:"log_level"` // "debug", "info", "warn" or "error"
	Engine    EngineConfig    `yaml:"engine"`
	Block     BlockConfig     `yaml:"block"`
	Audio     AudioConfig     `yaml:"audio"`
	Recording RecordingConfig `yaml:"recording"`
	Transport TransportConfig `yaml:"transport"`
}

// EngineConfig selects the block engine.
type EngineConfig struct {
	Name     string `yaml:"name"`     // registry name, e.g. "vca"
	Channels int    `yaml:"channels"` // width for engines that take one
	Script   string `yaml:"script"`   // Lua file for the script engine
}

// BlockConfig controls the block buffers between the host and the engine.
type BlockConfig struct {
	Length     int  `yaml:"length"`      // initial block length in samples
	FollowHost bool `yaml:"follow_host"` // grow to the host buffer size when it is larger
}

// AudioConfig holds the PortAudio stream settings.
type AudioConfig struct {
	InputDevice     int     `yaml:"input_device"`      // -1 for default
	OutputDevice    int     `yaml:"output_device"`     // -1 for default
	SampleRate      float64 `yaml:"sample_rate"`       // Hz
	FramesPerBuffer int     `yaml:"frames_per_buffer"` // host buffer size requested from the device
	LowLatency      bool    `yaml:"low_latency"`
}

// RecordingConfig controls recording of the module outputs to WAV.
type RecordingConfig struct {
	Enabled   bool   `yaml:"enabled"`
	OutputDir string `yaml:"output_dir"`
	BitDepth  int    `yaml:"bit_depth"`
}

// TransportConfig controls where module statistics are published.
type TransportConfig struct {
	Interval         time.Duration `yaml:"interval"` // polling interval for statistics
	UDPEnabled       bool          `yaml:"udp_enabled"`
	UDPTargetAddress string        `yaml:"udp_target_address"`
	WebSocketEnabled bool          `yaml:"websocket_enabled"`
	WebSocketAddress string        `yaml:"websocket_address"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Engine: EngineConfig{
			Name:     DefaultEngine,
			Channels: DefaultChannels,
		},
		Block: BlockConfig{
			Length:     DefaultBlockLength,
			FollowHost: DefaultFollowHost,
		},
		Audio: AudioConfig{
			InputDevice:     DefaultDeviceID,
			OutputDevice:    DefaultDeviceID,
			SampleRate:      DefaultSampleRate,
			FramesPerBuffer: DefaultFramesPerBuffer,
			LowLatency:      DefaultLowLatency,
		},
		Recording: RecordingConfig{
			OutputDir: DefaultRecordingDir,
			BitDepth:  DefaultBitDepth,
		},
		Transport: TransportConfig{
			Interval:         DefaultTelemetryInterval,
			UDPTargetAddress: DefaultUDPTargetAddress,
			WebSocketAddress: DefaultWebSocketAddress,
		},
	}
}

// LoadConfig loads configuration from the YAML file at path. If path is
// empty, "config.yaml" in the working directory is used when present,
// otherwise the built-in defaults. Environment overrides are applied last,
// then the result is validated.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			path = "config.yaml"
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks every section against the package limits.
func (c *Config) Validate() error {
	if c.Engine.Name == "" {
		return fmt.Errorf("engine.name must be set")
	}
	if strings.EqualFold(c.Engine.Name, "script") && c.Engine.Script == "" {
		return fmt.Errorf("engine.script must be set for the script engine")
	}
	if c.Engine.Channels < 1 || c.Engine.Channels > MaxChannels {
		return fmt.Errorf("engine.channels %d out of range [1, %d]", c.Engine.Channels, MaxChannels)
	}

	if c.Block.Length < MinBlockLength || c.Block.Length > MaxBlockLength {
		return fmt.Errorf("block.length %d out of range [%d, %d]", c.Block.Length, MinBlockLength, MaxBlockLength)
	}

	if c.Audio.SampleRate < MinSampleRate || c.Audio.SampleRate > MaxSampleRate {
		return fmt.Errorf("audio.sample_rate %.0f out of range [%d, %d]", c.Audio.SampleRate, MinSampleRate, MaxSampleRate)
	}
	if c.Audio.FramesPerBuffer < 1 || c.Audio.FramesPerBuffer > MaxBufferFrames {
		return fmt.Errorf("audio.frames_per_buffer %d out of range [1, %d]", c.Audio.FramesPerBuffer, MaxBufferFrames)
	}
	if c.Audio.InputDevice < MinDeviceID || c.Audio.OutputDevice < MinDeviceID {
		return fmt.Errorf("audio devices must be >= %d", MinDeviceID)
	}

	if c.Recording.Enabled {
		if c.Recording.OutputDir == "" {
			return fmt.Errorf("recording.output_dir must be set when recording is enabled")
		}
		if !slices.Contains(SupportedBitDepths, c.Recording.BitDepth) {
			return fmt.Errorf("recording.bit_depth %d not one of %v", c.Recording.BitDepth, SupportedBitDepths)
		}
	}

	if c.Transport.UDPEnabled || c.Transport.WebSocketEnabled {
		if c.Transport.Interval <= 0 {
			return fmt.Errorf("transport.interval must be positive")
		}
	}
	if c.Transport.UDPEnabled && !strings.Contains(c.Transport.UDPTargetAddress, ":") {
		return fmt.Errorf("transport.udp_target_address %q appears invalid (missing port?)", c.Transport.UDPTargetAddress)
	}
	if c.Transport.WebSocketEnabled && !strings.Contains(c.Transport.WebSocketAddress, ":") {
		return fmt.Errorf("transport.websocket_address %q appears invalid (missing port?)", c.Transport.WebSocketAddress)
	}

	return nil
}

// applyEnvOverrides applies ENV_* variables on top of the loaded values.
// Unparsable values are ignored.
func (c *Config) applyEnvOverrides() {
	// ENV_LOG_LEVEL
	if val, ok := os.LookupEnv("ENV_LOG_LEVEL"); ok {
		c.LogLevel = val
	}

	// ENV_ENGINE, ENV_ENGINE_SCRIPT
	if val, ok := os.LookupEnv("ENV_ENGINE"); ok {
		c.Engine.Name = val
	}
	if val, ok := os.LookupEnv("ENV_ENGINE_SCRIPT"); ok {
		c.Engine.Script = val
	}

	// ENV_BLOCK_LENGTH
	if val, ok := os.LookupEnv("ENV_BLOCK_LENGTH"); ok {
		if n, err := strconv.Atoi(val); err == nil {
			c.Block.Length = n
		}
	}
	// ENV_BLOCK_FOLLOW_HOST
	if val, ok := os.LookupEnv("ENV_BLOCK_FOLLOW_HOST"); ok {
		if b, err := strconv.ParseBool(val); err == nil {
			c.Block.FollowHost = b
		}
	}

	// ENV_UDP_{...}
	// These are specific to the transport layer.
	if val, ok := os.LookupEnv("ENV_UDP_ENABLED"); ok {
		if b, err := strconv.ParseBool(val); err == nil {
			c.Transport.UDPEnabled = b
		}
	}
	if val, ok := os.LookupEnv("ENV_UDP_TARGET_ADDRESS"); ok {
		c.Transport.UDPTargetAddress = val
	}
	if val, ok := os.LookupEnv("ENV_TRANSPORT_INTERVAL"); ok {
		if d, err := time.ParseDuration(val); err == nil {
			c.Transport.Interval = d
		}
	}
}
