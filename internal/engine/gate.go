// SPDX-License-Identifier: MIT
package engine

import "math"

const (
	gateThreshold = iota
	gateParamCount
)

var gateParams = [gateParamCount]ParameterInfo{
	gateThreshold: {Min: 0, Max: 1, InitialValue: 0.001, DisplayName: "Threshold", Unit: ""},
}

// Gate passes a block through only when its peak amplitude across all
// inputs exceeds the threshold, and silences it otherwise. A threshold of 0
// opens the gate for any non-silent block; 1 keeps it closed for signals
// within ±1.
type Gate struct {
	channels  int
	threshold float64
}

var _ Engine = (*Gate)(nil)

// NewGate creates a noise gate; channels < 1 means mono.
func NewGate(channels int) *Gate {
	if channels < 1 {
		channels = 1
	}
	return &Gate{channels: channels, threshold: gateParams[gateThreshold].InitialValue}
}

func (g *Gate) NumParameters() int     { return gateParamCount }
func (g *Gate) NumInputChannels() int  { return g.channels }
func (g *Gate) NumOutputChannels() int { return g.channels }

func (g *Gate) ParameterInfo(index int) ParameterInfo {
	if index < 0 || index >= gateParamCount {
		return ParameterInfo{}
	}
	return gateParams[index]
}

func (g *Gate) ParameterName(index int) string {
	return g.ParameterInfo(index).DisplayName
}

// SetParameterValue clamps the threshold to [0, 1].
func (g *Gate) SetParameterValue(index int, value float64) {
	if index != gateThreshold {
		return
	}
	g.threshold = math.Min(math.Max(value, 0), 1)
}

func (g *Gate) PrepareToProcess(float64, int) {}

func (g *Gate) Process(inputs [][]float64, numInputs int, outputs [][]float64, numOutputs int, blockSize int) {
	var peak float64
	for ch := range numInputs {
		for _, x := range inputs[ch][:blockSize] {
			peak = math.Max(peak, math.Abs(x))
		}
	}
	open := peak > g.threshold

	for ch := range numOutputs {
		out := outputs[ch][:blockSize]
		if !open || ch >= numInputs {
			clear(out)
			continue
		}
		copy(out, inputs[ch][:blockSize])
	}
}
