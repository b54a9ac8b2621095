// SPDX-License-Identifier: MIT
/*
Package host connects a module to the outside world: a PortAudio duplex
stream, WAV files on disk, or the speakers through oto.

Every host goes through a Bridge, which turns normalised host buffers into
one module Tick per frame.
*/
package host

import (
	"blockhost/internal/module"
	"sync/atomic"
)

// Bridge feeds non-interleaved host buffers into a module frame by frame.
//
// Host input channels are wired to the module's audio inputs first and then
// to its CV inputs, in order. Jacks with no host channel behind them stay
// unplugged. Host output channels beyond the module's outputs are silent.
type Bridge struct {
	module     *module.Module
	sampleRate float64
	followHost bool

	inChannels  int
	outChannels int

	callbacks atomic.Uint64
	frames    atomic.Int64 // frames in the last callback
}

// NewBridge wires inChannels host inputs and outChannels host outputs to m.
// With followHost the block grows to the host buffer size when that is
// larger.
func NewBridge(m *module.Module, sampleRate float64, inChannels, outChannels int, followHost bool) *Bridge {
	b := &Bridge{
		module:      m,
		sampleRate:  sampleRate,
		followHost:  followHost,
		inChannels:  inChannels,
		outChannels: outChannels,
	}
	for ch := range inChannels {
		if jack := b.input(ch); jack != nil {
			jack.SetConnected(true)
		}
	}
	return b
}

// input returns the jack host channel ch feeds, or nil.
func (b *Bridge) input(ch int) *module.Input {
	if ch < b.module.NumInputs() {
		return b.module.Input(ch)
	}
	if p := ch - b.module.NumInputs(); p < b.module.NumParams() {
		return b.module.CVInput(p)
	}
	return nil
}

// Process runs one host buffer. in and out hold one slice per channel of
// samples in [-1, 1]; either may be empty. The frame count is taken from the
// first buffer present.
func (b *Bridge) Process(in, out [][]float32) {
	frames := 0
	switch {
	case len(out) > 0:
		frames = len(out[0])
	case len(in) > 0:
		frames = len(in[0])
	}
	b.callbacks.Add(1)
	b.frames.Store(int64(frames))

	if b.followHost && frames > 0 {
		b.module.EnsureBlockLength(frames)
	}

	numIn := min(len(in), b.inChannels)
	numOut := min(len(out), b.outChannels)
	moduleOuts := b.module.NumOutputs()

	for f := range frames {
		for ch := range numIn {
			if jack := b.input(ch); jack != nil {
				jack.SetVoltage(in[ch][f] * module.VoltageScale)
			}
		}

		b.module.Tick(b.sampleRate)

		for ch := range numOut {
			if ch < moduleOuts {
				out[ch][f] = b.module.Output(ch).Voltage() / module.VoltageScale
			} else {
				out[ch][f] = 0
			}
		}
	}
}

// Module returns the driven module.
func (b *Bridge) Module() *module.Module { return b.module }

// SampleRate returns the rate the module is ticked at.
func (b *Bridge) SampleRate() float64 { return b.sampleRate }

// Callbacks returns the number of host buffers processed so far.
func (b *Bridge) Callbacks() uint64 { return b.callbacks.Load() }

// LastFrames returns the frame count of the most recent host buffer.
func (b *Bridge) LastFrames() int { return int(b.frames.Load()) }
