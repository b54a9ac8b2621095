// SPDX-License-Identifier: MIT
package host

import (
	"blockhost/internal/config"
	applog "blockhost/internal/log"
	"blockhost/internal/module"
	"fmt"
	"path/filepath"
	"runtime"
	"time"

	"github.com/gordonklaus/portaudio"
	"github.com/pkg/errors"
)

// Stream runs a module inside a PortAudio duplex callback.
type Stream struct {
	config *config.Config
	bridge *Bridge

	inputDevice  *portaudio.DeviceInfo
	outputDevice *portaudio.DeviceInfo
	inChannels   int
	outChannels  int
	latency      time.Duration

	stream   *portaudio.Stream
	recorder *Recorder
}

// NewStream resolves the configured devices and prepares a duplex stream for
// m. PortAudio must be initialised.
func NewStream(m *module.Module, cfg *config.Config) (*Stream, error) {
	in, err := InputDevice(cfg.Audio.InputDevice)
	if err != nil {
		return nil, errors.Wrap(err, "input device")
	}
	out, err := OutputDevice(cfg.Audio.OutputDevice)
	if err != nil {
		return nil, errors.Wrap(err, "output device")
	}

	s := &Stream{
		config:       cfg,
		inputDevice:  in,
		outputDevice: out,
		// Enough capture channels for every audio and CV input the device
		// can provide.
		inChannels:  min(in.MaxInputChannels, m.NumInputs()+m.NumParams()),
		outChannels: min(out.MaxOutputChannels, max(m.NumOutputs(), 1)),
	}
	if cfg.Audio.LowLatency {
		s.latency = max(in.DefaultLowInputLatency, out.DefaultLowOutputLatency)
	} else {
		s.latency = max(in.DefaultHighInputLatency, out.DefaultHighOutputLatency)
	}

	s.bridge = NewBridge(m, cfg.Audio.SampleRate, s.inChannels, s.outChannels, cfg.Block.FollowHost)

	if cfg.Recording.Enabled {
		s.recorder = NewRecorder(int(cfg.Audio.SampleRate), cfg.Recording.BitDepth, s.outChannels, config.MaxBufferFrames)
	}

	applog.Infof("Stream: %s (%d in) -> %s (%d out), %.0f Hz, %d frames per buffer",
		in.Name, s.inChannels, out.Name, s.outChannels, cfg.Audio.SampleRate, cfg.Audio.FramesPerBuffer)
	return s, nil
}

// Start opens the stream and begins processing. Recording starts with it
// when enabled.
func (s *Stream) Start() error {
	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   s.inputDevice,
			Channels: s.inChannels,
			Latency:  s.latency,
		},
		Output: portaudio.StreamDeviceParameters{
			Device:   s.outputDevice,
			Channels: s.outChannels,
			Latency:  s.latency,
		},
		SampleRate:      s.config.Audio.SampleRate,
		FramesPerBuffer: s.config.Audio.FramesPerBuffer,
	}

	if s.inChannels == 0 {
		params.Input.Device = nil
	}

	stream, err := portaudio.OpenStream(params, s.process)
	if err != nil {
		return errors.Wrap(err, "failed to open stream")
	}
	s.stream = stream

	if s.recorder != nil {
		name := filepath.Join(s.config.Recording.OutputDir, fmt.Sprintf("blockhost-%s.wav", time.Now().Format("20060102-150405")))
		if err := s.recorder.Start(name); err != nil {
			s.stream.Close()
			s.stream = nil
			return err
		}
		applog.Infof("Stream: recording outputs to %s", name)
	}

	if err := s.stream.Start(); err != nil {
		s.stream.Close()
		s.stream = nil
		return errors.Wrap(err, "failed to start stream")
	}
	return nil
}

// Stop halts processing and closes the stream.
func (s *Stream) Stop() error {
	if s.stream == nil {
		return nil
	}
	if err := s.stream.Stop(); err != nil {
		return errors.Wrap(err, "failed to stop stream")
	}
	if err := s.stream.Close(); err != nil {
		return errors.Wrap(err, "failed to close stream")
	}
	s.stream = nil
	return nil
}

// Close stops the stream and finalises any recording.
func (s *Stream) Close() error {
	if err := s.Stop(); err != nil {
		return err
	}
	if s.recorder != nil {
		if dropped := s.recorder.Dropped(); dropped > 0 {
			applog.Warnf("Stream: recorder dropped %d buffers", dropped)
		}
		return s.recorder.Stop()
	}
	return nil
}

// Bridge exposes the frame driver for status displays.
func (s *Stream) Bridge() *Bridge { return s.bridge }

// Recorder returns the output recorder, or nil when recording is disabled.
func (s *Stream) Recorder() *Recorder { return s.recorder }

// process is the duplex callback. It must not allocate.
func (s *Stream) process(in, out [][]float32) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	s.bridge.Process(in, out)

	if s.recorder != nil && len(out) > 0 {
		s.recorder.Write(out, len(out[0]))
	}
}
