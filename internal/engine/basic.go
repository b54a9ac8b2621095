// SPDX-License-Identifier: MIT
package engine

import "math"

// Passthrough copies every input channel to the matching output channel.
type Passthrough struct {
	channels int
}

var _ Engine = (*Passthrough)(nil)

// NewPassthrough creates a passthrough engine; channels < 1 means mono.
func NewPassthrough(channels int) *Passthrough {
	if channels < 1 {
		channels = 1
	}
	return &Passthrough{channels: channels}
}

func (p *Passthrough) NumParameters() int              { return 0 }
func (p *Passthrough) NumInputChannels() int           { return p.channels }
func (p *Passthrough) NumOutputChannels() int          { return p.channels }
func (p *Passthrough) ParameterInfo(int) ParameterInfo { return ParameterInfo{} }
func (p *Passthrough) ParameterName(int) string        { return "" }
func (p *Passthrough) SetParameterValue(int, float64)  {}
func (p *Passthrough) PrepareToProcess(float64, int)   {}

func (p *Passthrough) Process(inputs [][]float64, numInputs int, outputs [][]float64, numOutputs int, blockSize int) {
	for ch := range numOutputs {
		if ch < numInputs {
			copy(outputs[ch][:blockSize], inputs[ch][:blockSize])
			continue
		}
		clear(outputs[ch][:blockSize])
	}
}

const (
	vcaLevel = iota
	vcaBalance
	vcaParamCount
)

var vcaParams = [vcaParamCount]ParameterInfo{
	vcaLevel:   {Min: 0, Max: 1, InitialValue: 1, DisplayName: "Level", Unit: ""},
	vcaBalance: {Min: -1, Max: 1, InitialValue: 0, DisplayName: "Balance", Unit: ""},
}

// VCA is a stereo amplifier with an equal-power balance control.
type VCA struct {
	values [vcaParamCount]float64
}

var _ Engine = (*VCA)(nil)

func NewVCA() *VCA {
	v := &VCA{}
	for i, info := range vcaParams {
		v.values[i] = info.InitialValue
	}
	return v
}

func (v *VCA) NumParameters() int     { return vcaParamCount }
func (v *VCA) NumInputChannels() int  { return 2 }
func (v *VCA) NumOutputChannels() int { return 2 }

func (v *VCA) ParameterInfo(index int) ParameterInfo {
	if index < 0 || index >= vcaParamCount {
		return ParameterInfo{}
	}
	return vcaParams[index]
}

func (v *VCA) ParameterName(index int) string {
	return v.ParameterInfo(index).DisplayName
}

func (v *VCA) SetParameterValue(index int, value float64) {
	if index < 0 || index >= vcaParamCount {
		return
	}
	v.values[index] = value
}

func (v *VCA) PrepareToProcess(float64, int) {}

func (v *VCA) Process(inputs [][]float64, numInputs int, outputs [][]float64, numOutputs int, blockSize int) {
	// Balance in [-1, 1] maps to a quarter turn of the pan law.
	angle := (v.values[vcaBalance] + 1) * math.Pi / 4
	gains := [2]float64{
		v.values[vcaLevel] * math.Cos(angle) * math.Sqrt2,
		v.values[vcaLevel] * math.Sin(angle) * math.Sqrt2,
	}
	for ch := range numOutputs {
		out := outputs[ch][:blockSize]
		if ch >= numInputs || ch >= len(gains) {
			clear(out)
			continue
		}
		in := inputs[ch][:blockSize]
		g := gains[ch]
		for i := range out {
			out[i] = in[i] * g
		}
	}
}
