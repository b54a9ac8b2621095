// SPDX-License-Identifier: MIT
/*
Package engine defines the block processor contract that the module adapter
drives, plus a handful of concrete engines.

An Engine is opaque to its caller: the adapter introspects its parameters and
channel counts once, pushes parameter values and calls Process once per full
block. Implementations are trusted; a panic inside Process is not recovered.

Engines are driven from the audio thread only. PrepareToProcess may allocate
when the block size changes, Process must not.
*/
package engine

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ParameterInfo describes one engine parameter.
type ParameterInfo struct {
	Min          float64
	Max          float64
	InitialValue float64
	DisplayName  string
	Unit         string
}

// Engine is a block processor with introspectable parameters.
type Engine interface {
	NumParameters() int
	NumInputChannels() int
	NumOutputChannels() int

	// ParameterInfo returns the metadata for parameter index. The range is
	// authoritative and may be queried once per block.
	ParameterInfo(index int) ParameterInfo
	ParameterName(index int) string
	SetParameterValue(index int, value float64)

	// PrepareToProcess is called before every Process call with the host
	// sample rate and the current block size.
	PrepareToProcess(sampleRate float64, blockSize int)

	// Process consumes blockSize samples from each input buffer and fills
	// blockSize samples of each output buffer.
	Process(inputs [][]float64, numInputs int, outputs [][]float64, numOutputs int, blockSize int)
}

// Options carries construction settings for the registry.
type Options struct {
	Channels int    // channel count for engines with a configurable width
	Script   string // path to a Lua script for the script engine
}

// Factory builds an Engine from Options.
type Factory func(opts Options) (Engine, error)

var ErrUnknownEngine = errors.New("unknown engine")

var registry = map[string]Factory{
	"passthrough": func(opts Options) (Engine, error) {
		return NewPassthrough(opts.Channels), nil
	},
	"gate": func(opts Options) (Engine, error) {
		return NewGate(opts.Channels), nil
	},
	"vca": func(Options) (Engine, error) {
		return NewVCA(), nil
	},
	"spectral": func(Options) (Engine, error) {
		return NewSpectral(), nil
	},
	"script": func(opts Options) (Engine, error) {
		return LoadScript(opts.Script)
	},
}

// New returns the engine registered under name.
func New(name string, opts Options) (Engine, error) {
	factory, ok := registry[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnknownEngine, name, strings.Join(Names(), ", "))
	}
	e, err := factory(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine %q: %w", name, err)
	}
	return e, nil
}

// Names lists the registered engine names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Describe collects the parameter metadata of e.
func Describe(e Engine) []ParameterInfo {
	infos := make([]ParameterInfo, e.NumParameters())
	for i := range infos {
		infos[i] = e.ParameterInfo(i)
	}
	return infos
}
