// SPDX-License-Identifier: MIT
package engine

import "testing"

func TestGateProcess(t *testing.T) {
	quiet := []float64{0.0005, -0.0002, 0.0001, 0}
	loud := []float64{0.5, -0.8, 0.1, 0}

	tests := []struct {
		desc      string
		input     []float64
		threshold float64
		open      bool
	}{
		{"Default threshold/Quiet signal", quiet, 0.001, false},
		{"Default threshold/Loud signal", loud, 0.001, true},
		{"Always open/Quiet signal", quiet, 0, true},
		{"Always closed/Loud signal", loud, 1, false},
		{"Peak at threshold stays closed", loud, 0.8, false},
		{"Negative threshold clamps open", quiet, -3, true},
		{"Silence never opens", []float64{0, 0, 0, 0}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			g := NewGate(1)
			g.SetParameterValue(gateThreshold, tt.threshold)

			out := [][]float64{{9, 9, 9, 9}}
			g.Process([][]float64{tt.input}, 1, out, 1, 4)

			for i, x := range out[0] {
				want := 0.0
				if tt.open {
					want = tt.input[i]
				}
				if x != want {
					t.Errorf("sample %d: got %f, want %f", i, x, want)
				}
			}
		})
	}
}

func TestGatePeakSpansChannels(t *testing.T) {
	g := NewGate(2)
	g.SetParameterValue(gateThreshold, 0.1)

	in := [][]float64{{0.01, 0.01}, {0.5, 0}}
	out := [][]float64{make([]float64, 2), make([]float64, 2)}
	g.Process(in, 2, out, 2, 2)

	if out[0][0] != 0.01 || out[1][0] != 0.5 {
		t.Errorf("a loud channel should open every channel, got %v", out)
	}
	if g.NumParameters() != 1 || g.ParameterName(0) != "Threshold" {
		t.Errorf("unexpected parameter layout: %d %q", g.NumParameters(), g.ParameterName(0))
	}
}

func TestGateHotPathZeroAllocs(t *testing.T) {
	g := NewGate(2)
	in := [][]float64{make([]float64, 256), make([]float64, 256)}
	out := [][]float64{make([]float64, 256), make([]float64, 256)}
	for i := range in[0] {
		in[0][i] = 0.5
	}

	allocs := testing.AllocsPerRun(100, func() {
		g.Process(in, 2, out, 2, 256)
	})
	if allocs > 0 {
		t.Errorf("Expected zero allocations in gate Process, got %.1f", allocs)
	}
}
