// SPDX-License-Identifier: MIT
/*
Package block owns the per-channel sample buffers that sit between the
per-sample host and the block engine.

Buffers only ever grow. EnsureCapacity is called from the audio thread on
every host callback, so the no-resize case is a single comparison and the
resize case is the only place the package allocates after construction.
*/
package block

import "fmt"

// Buffer is one channel's contiguous block of samples.
type Buffer struct {
	samples []float64
}

// Samples returns the backing slice. The slice is replaced on resize, so
// callers must not hold on to it across EnsureCapacity.
func (b *Buffer) Samples() []float64 {
	return b.samples
}

// Len returns the buffer length in samples.
func (b *Buffer) Len() int {
	return len(b.samples)
}

// reallocate drops the current storage and replaces it with n zeroed samples.
func (b *Buffer) reallocate(n int) {
	b.samples = make([]float64, n)
}

// Manager holds one Buffer per input and output channel, all of length
// BlockLength.
//
// A resize may happen at any point in a block. Whatever the old buffers held
// is lost: the partially filled input block and the unplayed tail of the
// previous output block.
type Manager struct {
	inputs      []Buffer
	outputs     []Buffer
	blockLength int

	// Slice headers handed to the engine, refreshed on resize so the block
	// boundary does not allocate.
	inputViews  [][]float64
	outputViews [][]float64

	resizes uint64
}

// NewManager allocates zeroed buffers of blockLength samples for every
// channel. Zeroed outputs make the first block before any engine call play
// silence.
func NewManager(numInputs, numOutputs, blockLength int) (*Manager, error) {
	if numInputs < 0 || numOutputs < 0 {
		return nil, fmt.Errorf("invalid channel count: %d inputs, %d outputs", numInputs, numOutputs)
	}
	if blockLength <= 0 {
		return nil, fmt.Errorf("block length must be positive, got %d", blockLength)
	}

	m := &Manager{
		inputs:      make([]Buffer, numInputs),
		outputs:     make([]Buffer, numOutputs),
		inputViews:  make([][]float64, numInputs),
		outputViews: make([][]float64, numOutputs),
	}
	m.allocate(blockLength)
	return m, nil
}

// EnsureCapacity grows every buffer to requestedLength when it exceeds the
// current block length and reports whether it did. Smaller or equal requests
// are a no-op.
func (m *Manager) EnsureCapacity(requestedLength int) bool {
	if requestedLength <= m.blockLength {
		return false
	}
	m.allocate(requestedLength)
	m.resizes++
	return true
}

func (m *Manager) allocate(n int) {
	for i := range m.inputs {
		m.inputs[i].reallocate(n)
		m.inputViews[i] = m.inputs[i].samples
	}
	for i := range m.outputs {
		m.outputs[i].reallocate(n)
		m.outputViews[i] = m.outputs[i].samples
	}
	m.blockLength = n
}

// BlockLength returns the current buffer length.
func (m *Manager) BlockLength() int {
	return m.blockLength
}

// NumInputs returns the number of input channel buffers.
func (m *Manager) NumInputs() int {
	return len(m.inputs)
}

// NumOutputs returns the number of output channel buffers.
func (m *Manager) NumOutputs() int {
	return len(m.outputs)
}

// Input returns input channel i's samples.
func (m *Manager) Input(i int) []float64 {
	return m.inputs[i].samples
}

// Output returns output channel o's samples.
func (m *Manager) Output(o int) []float64 {
	return m.outputs[o].samples
}

// Inputs returns all input buffers in channel order, for handing to the
// engine. The outer slice is reused across calls.
func (m *Manager) Inputs() [][]float64 {
	return m.inputViews
}

// Outputs returns all output buffers in channel order, for handing to the
// engine. The outer slice is reused across calls.
func (m *Manager) Outputs() [][]float64 {
	return m.outputViews
}

// Resizes returns how many times the buffers have grown since construction.
func (m *Manager) Resizes() uint64 {
	return m.resizes
}
