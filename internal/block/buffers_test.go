// SPDX-License-Identifier: MIT
package block

import "testing"

func TestNewManagerRejectsInvalidSizes(t *testing.T) {
	tests := []struct {
		desc                    string
		inputs, outputs, length int
	}{
		{"Zero length", 1, 1, 0},
		{"Negative length", 1, 1, -4},
		{"Negative inputs", -1, 1, 256},
		{"Negative outputs", 1, -1, 256},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			if _, err := NewManager(tt.inputs, tt.outputs, tt.length); err == nil {
				t.Errorf("NewManager(%d, %d, %d) should fail", tt.inputs, tt.outputs, tt.length)
			}
		})
	}
}

func TestNewManagerZeroesBuffers(t *testing.T) {
	m, err := NewManager(2, 3, 64)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	if m.NumInputs() != 2 || m.NumOutputs() != 3 {
		t.Fatalf("Channel count mismatch: got %d/%d, want 2/3", m.NumInputs(), m.NumOutputs())
	}
	for o := range m.NumOutputs() {
		if len(m.Output(o)) != 64 {
			t.Errorf("Output %d length: got %d, want 64", o, len(m.Output(o)))
		}
		for i, x := range m.Output(o) {
			if x != 0 {
				t.Fatalf("Output %d sample %d not zeroed: %f", o, i, x)
			}
		}
	}
}

func TestEnsureCapacityGrowOnly(t *testing.T) {
	m, _ := NewManager(1, 1, 256)
	before := &m.Input(0)[0]

	for _, n := range []int{0, 1, 128, 256} {
		if m.EnsureCapacity(n) {
			t.Errorf("EnsureCapacity(%d) should not resize a 256 sample block", n)
		}
	}
	if &m.Input(0)[0] != before {
		t.Error("Buffers were reallocated without a resize")
	}
	if m.BlockLength() != 256 {
		t.Errorf("Block length changed: got %d, want 256", m.BlockLength())
	}

	if !m.EnsureCapacity(512) {
		t.Fatal("EnsureCapacity(512) should resize")
	}
	if m.BlockLength() != 512 || len(m.Input(0)) != 512 || len(m.Output(0)) != 512 {
		t.Errorf("Resize mismatch: block %d, input %d, output %d",
			m.BlockLength(), len(m.Input(0)), len(m.Output(0)))
	}
	if m.Resizes() != 1 {
		t.Errorf("Resize count: got %d, want 1", m.Resizes())
	}
}

func TestEnsureCapacityIdempotent(t *testing.T) {
	m, _ := NewManager(2, 2, 256)

	m.EnsureCapacity(1024)
	in := &m.Input(1)[0]
	out := &m.Output(1)[0]
	m.Output(1)[7] = 0.5

	if m.EnsureCapacity(1024) {
		t.Error("Second EnsureCapacity with the same length should be a no-op")
	}
	if &m.Input(1)[0] != in || &m.Output(1)[0] != out {
		t.Error("Second EnsureCapacity replaced the buffers")
	}
	if m.Output(1)[7] != 0.5 {
		t.Error("Second EnsureCapacity touched buffer contents")
	}
	if m.Resizes() != 1 {
		t.Errorf("Resize count: got %d, want 1", m.Resizes())
	}
}

func TestEnsureCapacityDiscardsContents(t *testing.T) {
	m, _ := NewManager(1, 1, 4)
	copy(m.Input(0), []float64{1, 2, 3, 4})
	copy(m.Output(0), []float64{1, 2, 3, 4})

	m.EnsureCapacity(8)

	for i := range 8 {
		if m.Input(0)[i] != 0 || m.Output(0)[i] != 0 {
			t.Fatalf("Sample %d survived the resize", i)
		}
	}
}

func TestViewsTrackResize(t *testing.T) {
	m, _ := NewManager(2, 1, 16)
	m.EnsureCapacity(32)

	ins, outs := m.Inputs(), m.Outputs()
	if len(ins) != 2 || len(outs) != 1 {
		t.Fatalf("View count mismatch: %d inputs, %d outputs", len(ins), len(outs))
	}
	for i := range ins {
		if &ins[i][0] != &m.Input(i)[0] || len(ins[i]) != 32 {
			t.Errorf("Input view %d does not alias the resized buffer", i)
		}
	}
	if &outs[0][0] != &m.Output(0)[0] || len(outs[0]) != 32 {
		t.Error("Output view does not alias the resized buffer")
	}
}

func TestEnsureCapacityNoResizeZeroAllocs(t *testing.T) {
	m, _ := NewManager(8, 8, 512)

	allocs := testing.AllocsPerRun(1000, func() {
		m.EnsureCapacity(512)
		_ = m.Inputs()
		_ = m.Outputs()
	})

	if allocs > 0 {
		t.Errorf("Expected zero allocations without a resize, got %.1f", allocs)
	}
}

func BenchmarkEnsureCapacityNoResize(b *testing.B) {
	m, _ := NewManager(2, 2, 256)
	b.ReportAllocs()

	for b.Loop() {
		m.EnsureCapacity(256)
	}
}
