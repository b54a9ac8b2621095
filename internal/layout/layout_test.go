// SPDX-License-Identifier: MIT
package layout

import "testing"

func TestColumns(t *testing.T) {
	tests := []struct {
		n, per, want int
	}{
		{0, 6, 0},
		{1, 6, 1},
		{6, 6, 1},
		{7, 6, 2},
		{4, 4, 1},
		{9, 4, 3},
		{-1, 4, 0},
	}

	for _, tt := range tests {
		if got := Columns(tt.n, tt.per); got != tt.want {
			t.Errorf("Columns(%d, %d) = %d, want %d", tt.n, tt.per, got, tt.want)
		}
	}
}

func TestWidthHP(t *testing.T) {
	tests := []struct {
		desc                    string
		inputs, outputs, params int
		want                    int
	}{
		{"Empty module", 0, 0, 0, 2},
		{"Stereo passthrough", 2, 2, 0, 8},
		{"Two inputs, one output, one param", 2, 1, 1, 11},
		{"Seven inputs spill to a second column", 7, 1, 0, 11},
		{"Five params use two columns", 1, 1, 5, 14},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			if got := WidthHP(tt.inputs, tt.outputs, tt.params); got != tt.want {
				t.Errorf("WidthHP(%d, %d, %d) = %d, want %d", tt.inputs, tt.outputs, tt.params, got, tt.want)
			}
		})
	}
}

func TestPlanColumnOrder(t *testing.T) {
	p := Plan(7, 2, []string{"level", "balance", "tilt", "gate", "mix"})

	if p.WidthHP != 2+3*(2+2+1) || p.Width != p.WidthHP*GridWidth || p.Height != GridHeight {
		t.Fatalf("unexpected panel size: %+v", p)
	}

	if p.Inputs[6].Column != 1 || p.Inputs[6].Row != 0 {
		t.Errorf("seventh input at column %d row %d, want column 1 row 0", p.Inputs[6].Column, p.Inputs[6].Row)
	}
	if p.Inputs[0].Label != "in 1" || p.Outputs[1].Label != "out 2" {
		t.Errorf("jack labels: %q, %q", p.Inputs[0].Label, p.Outputs[1].Label)
	}

	// Parameters follow the two input columns, outputs follow the parameters.
	if p.Params[0].Column != 2 || p.Params[4].Column != 3 || p.Params[4].Row != 0 {
		t.Errorf("param columns: first %d, fifth %d row %d", p.Params[0].Column, p.Params[4].Column, p.Params[4].Row)
	}
	if p.Outputs[0].Column != 4 {
		t.Errorf("output column: got %d, want 4", p.Outputs[0].Column)
	}
}

func TestPlanCellsInsidePanel(t *testing.T) {
	p := Plan(3, 2, []string{"a", "b", "c", "d"})

	inside := func(pt Point) bool {
		return pt.X > 0 && pt.X < float64(p.Width) && pt.Y > 0 && pt.Y < float64(p.Height)
	}
	for _, j := range append(p.Inputs, p.Outputs...) {
		if !inside(j.Port) || !inside(j.Text) {
			t.Errorf("jack %q outside the panel: %+v", j.Label, j)
		}
		if j.Text.Y <= j.Port.Y {
			t.Errorf("jack %q label above its port", j.Label)
		}
	}
	for _, k := range p.Params {
		if !inside(k.Knob) || !inside(k.Port) || !inside(k.Text) {
			t.Errorf("knob %q outside the panel: %+v", k.Label, k)
		}
		if k.Knob.Y >= k.Port.Y || k.Port.Y >= k.Text.Y {
			t.Errorf("knob %q cell out of order: %+v", k.Label, k)
		}
	}
}
