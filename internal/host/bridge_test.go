// SPDX-License-Identifier: MIT
package host

import (
	"blockhost/internal/engine"
	"blockhost/internal/module"
	"blockhost/pkg/utils"
	"math"
	"testing"
)

const testSampleRate = 48000

func newTestModule(t testing.TB, e engine.Engine, blockLength int) *module.Module {
	t.Helper()
	m, err := module.New(e, blockLength)
	if err != nil {
		t.Fatalf("module.New failed: %v", err)
	}
	return m
}

func TestBridgeWiresInputsThenCV(t *testing.T) {
	m := newTestModule(t, engine.NewVCA(), 32)

	// Two audio inputs, then the level CV. Balance has no host channel.
	NewBridge(m, testSampleRate, 3, 2, false)

	if !m.Input(0).IsConnected() || !m.Input(1).IsConnected() {
		t.Error("audio inputs should be connected")
	}
	if !m.CVInput(0).IsConnected() {
		t.Error("third host channel should drive the first CV input")
	}
	if m.CVInput(1).IsConnected() {
		t.Error("CV input without a host channel should stay unplugged")
	}
}

func TestBridgeDelaysByOneBlock(t *testing.T) {
	const blockLength = 16
	m := newTestModule(t, engine.NewPassthrough(1), blockLength)
	b := NewBridge(m, testSampleRate, 1, 2, false)

	in := [][]float32{utils.GenerateSineWave(blockLength*3, testSampleRate, 2000)}
	out := [][]float32{make([]float32, len(in[0])), make([]float32, len(in[0]))}

	b.Process(in, out)

	for i, x := range out[0] {
		var want float32
		if i >= blockLength {
			want = in[0][i-blockLength]
		}
		if math.Abs(float64(x-want)) > 1e-6 {
			t.Fatalf("frame %d: got %f, want %f", i, x, want)
		}
	}
	for i, x := range out[1] {
		if x != 0 {
			t.Fatalf("extra host output not silent at frame %d: %f", i, x)
		}
	}
	if b.Callbacks() != 1 || b.LastFrames() != blockLength*3 {
		t.Errorf("callbacks %d, frames %d", b.Callbacks(), b.LastFrames())
	}
}

func TestBridgeFollowsHostBuffer(t *testing.T) {
	m := newTestModule(t, engine.NewPassthrough(2), 64)
	b := NewBridge(m, testSampleRate, 2, 2, true)

	buffers := func(n int) [][]float32 {
		return [][]float32{make([]float32, n), make([]float32, n)}
	}

	b.Process(buffers(32), buffers(32))
	if m.BlockLength() != 64 {
		t.Errorf("smaller host buffer changed the block: %d", m.BlockLength())
	}

	b.Process(buffers(256), buffers(256))
	if m.BlockLength() != 256 {
		t.Errorf("block did not follow the host buffer: %d", m.BlockLength())
	}

	b.Process(buffers(128), buffers(128))
	if m.BlockLength() != 256 {
		t.Errorf("block shrank to %d", m.BlockLength())
	}
	if s := m.Stats(); s.Resizes != 1 {
		t.Errorf("resizes: got %d, want 1", s.Resizes)
	}
}

func TestBridgeProcessZeroAllocs(t *testing.T) {
	m := newTestModule(t, engine.NewVCA(), 128)
	b := NewBridge(m, testSampleRate, 2, 2, true)
	in := [][]float32{make([]float32, 256), make([]float32, 256)}
	out := [][]float32{make([]float32, 256), make([]float32, 256)}
	b.Process(in, out)

	allocs := testing.AllocsPerRun(50, func() {
		b.Process(in, out)
	})

	if allocs > 0 {
		t.Errorf("Expected zero allocations per callback, got %.1f", allocs)
	}
}

func BenchmarkBridgeProcess(b *testing.B) {
	m := newTestModule(b, engine.NewVCA(), 256)
	bridge := NewBridge(m, testSampleRate, 2, 2, false)
	in := [][]float32{utils.GenerateComplexWave(256, testSampleRate), utils.GenerateSineWave(256, testSampleRate, 440)}
	out := [][]float32{make([]float32, 256), make([]float32, 256)}
	b.ReportAllocs()

	for b.Loop() {
		bridge.Process(in, out)
	}
}
