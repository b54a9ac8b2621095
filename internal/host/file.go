// SPDX-License-Identifier: MIT
package host

import (
	"blockhost/internal/module"
	"io"
	"os"

	"github.com/pkg/errors"
)

// DefaultChunkFrames is the host buffer size used for offline rendering.
const DefaultChunkFrames = 512

// RenderOptions controls an offline render.
type RenderOptions struct {
	// Flush appends one block of silence to the input so the final block is
	// heard in the output.
	Flush bool

	// ChunkFrames is the host buffer size; DefaultChunkFrames when zero.
	ChunkFrames int

	// FollowHost lets the block grow to ChunkFrames.
	FollowHost bool
}

// RenderResult summarises a finished render.
type RenderResult struct {
	Frames     int
	SampleRate int
	BitDepth   int
	Channels   int
	Stats      module.Stats
}

// RenderFile runs the WAV file at inPath through m and writes the module
// outputs to outPath at the input's sample rate and bit depth.
func RenderFile(m *module.Module, inPath, outPath string, opts RenderOptions) (RenderResult, error) {
	clip, err := LoadClip(inPath)
	if err != nil {
		return RenderResult{}, err
	}

	out, err := os.Create(outPath)
	if err != nil {
		return RenderResult{}, errors.Wrap(err, "failed to create output file")
	}

	result, err := Render(m, clip, out, opts)
	if cerr := out.Close(); err == nil && cerr != nil {
		err = errors.Wrap(cerr, "failed to close output file")
	}
	return result, err
}

// Render ticks m over every frame of clip and encodes the outputs to w.
func Render(m *module.Module, clip *Clip, w io.WriteSeeker, opts RenderOptions) (RenderResult, error) {
	chunk := opts.ChunkFrames
	if chunk <= 0 {
		chunk = DefaultChunkFrames
	}

	numOut := m.NumOutputs()
	bridge := NewBridge(m, float64(clip.SampleRate), len(clip.Channels), numOut, opts.FollowHost)
	writer := newWAVWriter(w, clip.SampleRate, clip.BitDepth, numOut, chunk)

	total := clip.Frames()
	if opts.Flush {
		// The block can grow on the first chunk, so flush against the
		// length it will settle at.
		blockLength := m.BlockLength()
		if opts.FollowHost {
			blockLength = max(blockLength, chunk)
		}
		total += blockLength
	}

	in := make([][]float32, len(clip.Channels))
	pad := make([][]float32, len(clip.Channels))
	for ch := range pad {
		pad[ch] = make([]float32, chunk)
	}
	outs := make([][]float32, numOut)
	for ch := range outs {
		outs[ch] = make([]float32, chunk)
	}

	for pos := 0; pos < total; pos += chunk {
		n := min(chunk, total-pos)
		for ch, samples := range clip.Channels {
			if pos+n > len(samples) {
				// Past the end of the clip: pad with silence.
				buf := pad[ch][:n]
				clear(buf)
				if pos < len(samples) {
					copy(buf, samples[pos:])
				}
				in[ch] = buf
				continue
			}
			in[ch] = samples[pos : pos+n]
		}
		for ch := range outs {
			outs[ch] = outs[ch][:n]
		}

		bridge.Process(in, outs)

		if err := writer.Write(outs, n); err != nil {
			return RenderResult{}, errors.Wrap(err, "failed to write output")
		}
	}

	if err := writer.Close(); err != nil {
		return RenderResult{}, errors.Wrap(err, "failed to finalise output")
	}

	return RenderResult{
		Frames:     total,
		SampleRate: clip.SampleRate,
		BitDepth:   clip.BitDepth,
		Channels:   numOut,
		Stats:      m.Stats(),
	}, nil
}
