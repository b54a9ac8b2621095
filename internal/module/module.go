// SPDX-License-Identifier: MIT
/*
Package module adapts a block engine to a host that runs one sample at a time.

Every Tick writes one normalised sample per input channel into the block
buffers and publishes one output sample per channel from the block computed
at the end of the previous cycle. When the block fills up, the module scales
the knob and CV values into each parameter's range, pushes them to the engine
and runs the engine synchronously before the Tick returns. Outputs therefore
lag inputs by exactly one block.

Thread Safety:
  - Tick, EnsureBlockLength and the jack setters belong to the audio thread
    and must never be called concurrently for the same Module.
  - Knob values (Parameter) and Stats are safe from any goroutine.
  - The steady-state Tick path does not allocate; only a block length
    increase does.
*/
package module

import (
	"blockhost/internal/block"
	"blockhost/internal/engine"
	"fmt"
	"sync/atomic"
	"time"
)

// Stats is a point-in-time view of the module's counters.
type Stats struct {
	Ticks         uint64        `json:"ticks"`           // ticks up to the last block boundary
	Blocks        uint64        `json:"blocks"`          // engine Process calls
	Resizes       uint64        `json:"resizes"`         // block length increases
	Overruns      uint64        `json:"overruns"`        // blocks whose engine time exceeded their duration
	BlockLength   int           `json:"block_length"`    // current block length in samples
	LastBlockTime time.Duration `json:"last_block_time"` // engine time of the last block
	MaxBlockTime  time.Duration `json:"max_block_time"`  // worst engine time observed
}

type counters struct {
	ticks         atomic.Uint64
	blocks        atomic.Uint64
	resizes       atomic.Uint64
	overruns      atomic.Uint64
	blockLength   atomic.Int64
	lastBlockTime atomic.Int64
	maxBlockTime  atomic.Int64
}

// Module is the per-instance scheduler between host ticks and engine blocks.
type Module struct {
	engine  engine.Engine
	buffers *block.Manager

	inputs   []Input
	cvInputs []Input // one per parameter
	outputs  []Output
	params   []Parameter

	count int // position within the current block
	ticks uint64

	stats counters
}

// New builds a module around e with buffers of blockLength samples. Engine
// introspection happens once here; parameter ranges are re-read every block.
func New(e engine.Engine, blockLength int) (*Module, error) {
	if e == nil {
		return nil, fmt.Errorf("module requires an engine")
	}

	numInputs := e.NumInputChannels()
	numOutputs := e.NumOutputChannels()
	numParams := e.NumParameters()
	if numParams < 0 {
		return nil, fmt.Errorf("engine reports %d parameters", numParams)
	}

	buffers, err := block.NewManager(numInputs, numOutputs, blockLength)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate block buffers: %w", err)
	}

	m := &Module{
		engine:   e,
		buffers:  buffers,
		inputs:   make([]Input, numInputs),
		cvInputs: make([]Input, numParams),
		outputs:  make([]Output, numOutputs),
		params:   make([]Parameter, numParams),
	}
	for i := range m.params {
		m.params[i].bind(e, i)
	}
	m.stats.blockLength.Store(int64(blockLength))

	return m, nil
}

// Tick advances the module by one host sample.
func (m *Module) Tick(sampleRate float64) {
	n := m.buffers.BlockLength()

	// A shrink cannot happen today, but a stale position must never index
	// past the buffers.
	if m.count >= n {
		m.count = 0
	}
	t := m.count

	for i := range m.inputs {
		m.buffers.Input(i)[t] = m.inputs[i].normalized()
	}
	for o := range m.outputs {
		m.outputs[o].voltage = float32(m.buffers.Output(o)[t] * VoltageScale)
	}

	m.count++
	m.ticks++

	if m.count == n {
		m.processBlock(sampleRate, n)
	}
}

// processBlock pushes scaled parameters and runs the engine over one full
// block. The position is left at n; the next Tick wraps it.
func (m *Module) processBlock(sampleRate float64, n int) {
	for p := range m.params {
		info := m.engine.ParameterInfo(p)
		value := Scale(m.params[p].Value(), m.cvInputs[p].normalized(), info.Min, info.Max)
		m.engine.SetParameterValue(p, value)
	}

	start := time.Now()
	m.engine.PrepareToProcess(sampleRate, n)
	m.engine.Process(m.buffers.Inputs(), len(m.inputs), m.buffers.Outputs(), len(m.outputs), n)
	elapsed := time.Since(start)

	m.stats.ticks.Store(m.ticks)
	m.stats.blocks.Add(1)
	m.stats.lastBlockTime.Store(int64(elapsed))
	if int64(elapsed) > m.stats.maxBlockTime.Load() {
		m.stats.maxBlockTime.Store(int64(elapsed))
	}
	if sampleRate > 0 && elapsed.Seconds() > float64(n)/sampleRate {
		m.stats.overruns.Add(1)
	}
}

// EnsureBlockLength grows the block to n samples if n is larger than the
// current block length, and reports whether it did. A grow at a block
// boundary starts the next block from its first sample. Growing mid-block
// keeps the current position and discards the buffered samples.
func (m *Module) EnsureBlockLength(n int) bool {
	old := m.buffers.BlockLength()
	if !m.buffers.EnsureCapacity(n) {
		return false
	}
	if m.count >= old {
		m.count = 0
	}
	m.stats.resizes.Add(1)
	m.stats.blockLength.Store(int64(n))
	return true
}

// BlockLength returns the current block length in samples.
func (m *Module) BlockLength() int {
	return m.buffers.BlockLength()
}

// Position returns the tick counter: the number of samples buffered in the
// current block, or BlockLength right after a block was processed.
func (m *Module) Position() int {
	return m.count
}

// Latency is the delay in samples between an input and its output.
func (m *Module) Latency() int {
	return m.buffers.BlockLength()
}

func (m *Module) NumInputs() int  { return len(m.inputs) }
func (m *Module) NumOutputs() int { return len(m.outputs) }
func (m *Module) NumParams() int  { return len(m.params) }

// Input returns audio input jack i.
func (m *Module) Input(i int) *Input { return &m.inputs[i] }

// CVInput returns the control voltage jack for parameter p.
func (m *Module) CVInput(p int) *Input { return &m.cvInputs[p] }

// Output returns output jack o.
func (m *Module) Output(o int) *Output { return &m.outputs[o] }

// Param returns the knob for parameter p.
func (m *Module) Param(p int) *Parameter { return &m.params[p] }

// EngineErr returns the runtime error recorded by the engine, if the engine
// keeps one. Safe from any goroutine when the engine's Err is.
func (m *Module) EngineErr() error {
	if r, ok := m.engine.(interface{ Err() error }); ok {
		return r.Err()
	}
	return nil
}

// Stats returns a snapshot of the module counters. Safe from any goroutine.
func (m *Module) Stats() Stats {
	return Stats{
		Ticks:         m.stats.ticks.Load(),
		Blocks:        m.stats.blocks.Load(),
		Resizes:       m.stats.resizes.Load(),
		Overruns:      m.stats.overruns.Load(),
		BlockLength:   int(m.stats.blockLength.Load()),
		LastBlockTime: time.Duration(m.stats.lastBlockTime.Load()),
		MaxBlockTime:  time.Duration(m.stats.maxBlockTime.Load()),
	}
}
