// SPDX-License-Identifier: MIT
package engine

import (
	"errors"
	"math"
	"slices"
	"testing"
)

func TestRegistry(t *testing.T) {
	want := []string{"gate", "passthrough", "script", "spectral", "vca"}
	if got := Names(); !slices.Equal(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}

	for _, name := range []string{"passthrough", "VCA", "spectral", "gate"} {
		if _, err := New(name, Options{Channels: 2}); err != nil {
			t.Errorf("New(%q) failed: %v", name, err)
		}
	}

	if _, err := New("reverb", Options{}); !errors.Is(err, ErrUnknownEngine) {
		t.Errorf("New(reverb) error = %v, want ErrUnknownEngine", err)
	}
	if _, err := New("script", Options{}); err == nil {
		t.Error("New(script) without a path should fail")
	}
}

func TestDescribe(t *testing.T) {
	infos := Describe(NewVCA())
	if len(infos) != 2 {
		t.Fatalf("Describe returned %d parameters, want 2", len(infos))
	}
	if infos[0].DisplayName != "Level" || infos[1].Min != -1 || infos[1].Max != 1 {
		t.Errorf("unexpected metadata: %+v", infos)
	}
}

func TestPassthrough(t *testing.T) {
	p := NewPassthrough(0)
	if p.NumInputChannels() != 1 || p.NumOutputChannels() != 1 {
		t.Fatalf("channels < 1 should fall back to mono")
	}

	in := [][]float64{{1, 2, 3, 4}}
	out := [][]float64{{9, 9, 9, 9}, {9, 9, 9, 9}}
	p.Process(in, 1, out, 2, 3)

	if !slices.Equal(out[0], []float64{1, 2, 3, 9}) {
		t.Errorf("channel 0: got %v", out[0])
	}
	if !slices.Equal(out[1], []float64{0, 0, 0, 9}) {
		t.Errorf("unmatched channel should be cleared: got %v", out[1])
	}
}

func TestVCABalance(t *testing.T) {
	tests := []struct {
		desc        string
		level       float64
		balance     float64
		left, right float64
	}{
		{"Unity centre", 1, 0, 1, 1},
		{"Half level", 0.5, 0, 0.5, 0.5},
		{"Hard left", 1, -1, math.Sqrt2, 0},
		{"Hard right", 1, 1, 0, math.Sqrt2},
		{"Muted", 0, 0.3, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			v := NewVCA()
			v.SetParameterValue(vcaLevel, tt.level)
			v.SetParameterValue(vcaBalance, tt.balance)

			in := [][]float64{{1, 1}, {1, 1}}
			out := [][]float64{make([]float64, 2), make([]float64, 2)}
			v.Process(in, 2, out, 2, 2)

			if math.Abs(out[0][1]-tt.left) > 1e-9 || math.Abs(out[1][1]-tt.right) > 1e-9 {
				t.Errorf("got L=%f R=%f, want L=%f R=%f", out[0][1], out[1][1], tt.left, tt.right)
			}
		})
	}
}

func TestVCAIgnoresOutOfRangeIndex(t *testing.T) {
	v := NewVCA()
	v.SetParameterValue(-1, 5)
	v.SetParameterValue(vcaParamCount, 5)
	if v.values[vcaLevel] != 1 || v.values[vcaBalance] != 0 {
		t.Errorf("values changed by invalid indices: %v", v.values)
	}
	if info := v.ParameterInfo(7); info != (ParameterInfo{}) {
		t.Errorf("ParameterInfo(7) = %+v, want zero value", info)
	}
}
