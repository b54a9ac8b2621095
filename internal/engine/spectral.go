// SPDX-License-Identifier: MIT
package engine

import (
	"blockhost/pkg/bitint"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"
)

const (
	spectralThreshold = iota
	spectralTilt
	spectralParamCount
)

var spectralParams = [spectralParamCount]ParameterInfo{
	spectralThreshold: {Min: 0, Max: 1, InitialValue: 0, DisplayName: "Threshold", Unit: ""},
	spectralTilt:      {Min: -1, Max: 1, InitialValue: 0, DisplayName: "Tilt", Unit: ""},
}

// Pre-allocated buffers, rebuilt only when the block size changes.
type spectralWorkspace struct {
	input    []float64    // zero padded block
	coeffs   []complex128 // spectrum of the unwindowed block, edited in place
	analysis []float64    // Hann windowed copy of the block
	spectrum []complex128 // spectrum of the windowed copy
	window   []float64    // Hann coefficients
	resynth  []float64    // inverse transform output
}

// Spectral gates and tilts each block in the frequency domain. Output 0 is
// the resynthesised block, output 1 carries the normalised spectral centroid
// of the block as a control signal held for the whole block.
//
// Blocks are zero padded to the next power of two; with threshold and tilt at
// zero the block is reconstructed exactly.
type Spectral struct {
	values     [spectralParamCount]float64
	sampleRate float64
	blockSize  int
	fftSize    int
	fft        *fourier.FFT
	workspace  spectralWorkspace
	centroid   float64
}

var _ Engine = (*Spectral)(nil)

func NewSpectral() *Spectral {
	s := &Spectral{}
	for i, info := range spectralParams {
		s.values[i] = info.InitialValue
	}
	return s
}

func (s *Spectral) NumParameters() int     { return spectralParamCount }
func (s *Spectral) NumInputChannels() int  { return 1 }
func (s *Spectral) NumOutputChannels() int { return 2 }

func (s *Spectral) ParameterInfo(index int) ParameterInfo {
	if index < 0 || index >= spectralParamCount {
		return ParameterInfo{}
	}
	return spectralParams[index]
}

func (s *Spectral) ParameterName(index int) string {
	return s.ParameterInfo(index).DisplayName
}

func (s *Spectral) SetParameterValue(index int, value float64) {
	if index < 0 || index >= spectralParamCount {
		return
	}
	s.values[index] = value
}

// Centroid returns the normalised spectral centroid of the last block.
func (s *Spectral) Centroid() float64 {
	return s.centroid
}

// FFTSize returns the transform length used for the current block size.
func (s *Spectral) FFTSize() int {
	return s.fftSize
}

func (s *Spectral) PrepareToProcess(sampleRate float64, blockSize int) {
	s.sampleRate = sampleRate
	if blockSize == s.blockSize && s.fft != nil {
		return
	}

	s.blockSize = blockSize
	s.fftSize = bitint.NextPowerOfTwo(blockSize)
	s.fft = fourier.NewFFT(s.fftSize)

	bins := s.fftSize/2 + 1
	win := make([]float64, s.fftSize)
	for i := range win {
		win[i] = 1
	}
	window.Hann(win)

	s.workspace = spectralWorkspace{
		input:    make([]float64, s.fftSize),
		coeffs:   make([]complex128, bins),
		analysis: make([]float64, s.fftSize),
		spectrum: make([]complex128, bins),
		window:   win,
		resynth:  make([]float64, s.fftSize),
	}
}

func (s *Spectral) Process(inputs [][]float64, numInputs int, outputs [][]float64, numOutputs int, blockSize int) {
	if s.fft == nil || blockSize != s.blockSize {
		s.PrepareToProcess(s.sampleRate, blockSize)
	}
	ws := &s.workspace

	// --- 1. Load & zero pad ---
	clear(ws.input)
	if numInputs > 0 {
		copy(ws.input, inputs[0][:blockSize])
	}
	for i, x := range ws.input {
		ws.analysis[i] = x * ws.window[i]
	}

	// --- 2. Transform ---
	ws.coeffs = s.fft.Coefficients(ws.coeffs, ws.input)
	ws.spectrum = s.fft.Coefficients(ws.spectrum, ws.analysis)

	// --- 3. Centroid of the windowed spectrum ---
	last := max(float64(len(ws.spectrum)-1), 1)
	var weighted, total float64
	for i, c := range ws.spectrum {
		mag := cmplx.Abs(c)
		weighted += mag * float64(i) / last
		total += mag
	}
	s.centroid = 0
	if total > 0 {
		s.centroid = weighted / total
	}

	// --- 4. Gate & tilt ---
	var peak float64
	for _, c := range ws.coeffs {
		if mag := cmplx.Abs(c); mag > peak {
			peak = mag
		}
	}
	floor := s.values[spectralThreshold] * peak
	tilt := s.values[spectralTilt]
	for i, c := range ws.coeffs {
		if cmplx.Abs(c) < floor {
			ws.coeffs[i] = 0
			continue
		}
		if tilt != 0 {
			gain := 1 + tilt*(2*float64(i)/last-1)
			if gain < 0 {
				gain = 0
			}
			ws.coeffs[i] = c * complex(gain, 0)
		}
	}

	// --- 5. Resynthesise ---
	// gonum leaves the inverse transform unnormalised.
	ws.resynth = s.fft.Sequence(ws.resynth, ws.coeffs)
	scale := 1 / float64(s.fftSize)

	if numOutputs > 0 {
		out := outputs[0][:blockSize]
		for i := range out {
			out[i] = ws.resynth[i] * scale
		}
	}
	if numOutputs > 1 {
		cv := outputs[1][:blockSize]
		for i := range cv {
			cv[i] = s.centroid
		}
	}
	for ch := 2; ch < numOutputs; ch++ {
		clear(outputs[ch][:blockSize])
	}
}
