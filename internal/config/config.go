// SPDX-License-Identifier: MIT
package config

import "time"

// Boundaries and defaults for the block host.
const (
	DefaultEngine      = "passthrough"
	DefaultChannels    = 2    // passthrough width
	DefaultBlockLength = 256  // engine block length in samples
	DefaultFollowHost  = true // grow the block to the host buffer size

	DefaultDeviceID        = MinDeviceID // system default device
	DefaultSampleRate      = 44100
	DefaultFramesPerBuffer = 256
	DefaultLowLatency      = false

	DefaultRecordingDir = "./recordings"
	DefaultBitDepth     = 16

	DefaultTelemetryInterval = 100 * time.Millisecond
	DefaultUDPTargetAddress  = "127.0.0.1:9090"
	DefaultWebSocketAddress  = "127.0.0.1:8080"

	MinDeviceID     = -1 // -1 represents the system default device
	MinSampleRate   = 8000
	MaxSampleRate   = 192000
	MinBlockLength  = 1
	MaxBlockLength  = 8192
	MaxBufferFrames = 8192
	MaxChannels     = 32
)

// Bit depths the WAV writer supports.
var SupportedBitDepths = []int{16, 24, 32}
