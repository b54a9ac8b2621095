// SPDX-License-Identifier: MIT
package host

import (
	"blockhost/internal/engine"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

func writeTestWAV(t *testing.T, path string, sampleRate, bitDepth, channels int, data []int) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, bitDepth, channels, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("failed to write test WAV: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("failed to close test WAV: %v", err)
	}
}

func TestLoadClipNormalises(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.wav")
	writeTestWAV(t, path, 44100, 16, 2, []int{16384, -16384, 32767, -32768})

	clip, err := LoadClip(path)
	if err != nil {
		t.Fatalf("LoadClip failed: %v", err)
	}

	if clip.SampleRate != 44100 || clip.BitDepth != 16 || len(clip.Channels) != 2 || clip.Frames() != 2 {
		t.Fatalf("unexpected clip: rate %d, depth %d, %d channels, %d frames",
			clip.SampleRate, clip.BitDepth, len(clip.Channels), clip.Frames())
	}
	if clip.Channels[0][0] != 0.5 || clip.Channels[1][0] != -0.5 || clip.Channels[1][1] != -1 {
		t.Errorf("unexpected samples: %v", clip.Channels)
	}
}

func TestLoadClipRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.wav")
	if err := os.WriteFile(path, []byte("definitely not RIFF"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadClip(path); err == nil {
		t.Error("LoadClip should reject a non-WAV file")
	}
	if _, err := LoadClip(filepath.Join(t.TempDir(), "missing.wav")); err == nil {
		t.Error("LoadClip should fail for a missing file")
	}
}

func TestRenderFileDelaysByOneBlock(t *testing.T) {
	const (
		blockLength = 64
		frames      = 1000
	)
	dir := t.TempDir()
	inPath := filepath.Join(dir, "in.wav")
	outPath := filepath.Join(dir, "out.wav")

	data := make([]int, frames)
	for i := range data {
		data[i] = (i*37)%20000 - 10000
	}
	writeTestWAV(t, inPath, 48000, 16, 1, data)

	m := newTestModule(t, engine.NewPassthrough(1), blockLength)
	result, err := RenderFile(m, inPath, outPath, RenderOptions{Flush: true, ChunkFrames: 100})
	if err != nil {
		t.Fatalf("RenderFile failed: %v", err)
	}
	if result.Frames != frames+blockLength || result.BitDepth != 16 || result.SampleRate != 48000 {
		t.Errorf("unexpected result: %+v", result)
	}
	if result.Stats.Blocks != uint64((frames+blockLength)/blockLength) {
		t.Errorf("blocks: got %d, want %d", result.Stats.Blocks, (frames+blockLength)/blockLength)
	}

	out, err := LoadClip(outPath)
	if err != nil {
		t.Fatalf("LoadClip(out) failed: %v", err)
	}
	if out.Frames() != frames+blockLength {
		t.Fatalf("output frames: got %d, want %d", out.Frames(), frames+blockLength)
	}

	const step = 1.0 / 32768
	for i, x := range out.Channels[0] {
		var want float32
		if i >= blockLength {
			want = float32(data[i-blockLength]) / 32768
		}
		if diff := x - want; diff > 2*step || diff < -2*step {
			t.Fatalf("frame %d: got %f, want %f", i, x, want)
		}
	}
}

func TestRenderWithoutFlushDropsLastBlock(t *testing.T) {
	clip := &Clip{
		SampleRate: 48000,
		BitDepth:   24,
		Channels:   [][]float32{make([]float32, 300), make([]float32, 300)},
	}
	for i := range 300 {
		clip.Channels[0][i] = 0.25
		clip.Channels[1][i] = -0.25
	}

	path := filepath.Join(t.TempDir(), "out.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	m := newTestModule(t, engine.NewPassthrough(2), 128)
	result, err := Render(m, clip, f, RenderOptions{})
	f.Close()
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if result.Frames != 300 || result.Channels != 2 {
		t.Errorf("unexpected result: %+v", result)
	}

	out, err := LoadClip(path)
	if err != nil {
		t.Fatal(err)
	}
	if out.BitDepth != 24 {
		t.Errorf("bit depth: got %d, want 24", out.BitDepth)
	}
	// The first block is heard from frame 128; the trailing partial block
	// never reaches the output.
	if out.Channels[0][127] != 0 || out.Channels[0][200] < 0.24 || out.Channels[1][200] > -0.24 {
		t.Errorf("unexpected samples around the first block boundary")
	}
}
