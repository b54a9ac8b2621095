// SPDX-License-Identifier: MIT
package host

import (
	"blockhost/internal/module"
	"encoding/binary"
	"io"
	"math"
	"sync/atomic"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/pkg/errors"
)

// ClipReader renders a clip through a module on demand. It produces
// interleaved little-endian float32 frames for oto and returns io.EOF once
// the clip plus one block of latency has been played.
type ClipReader struct {
	clip     *Clip
	bridge   *Bridge
	channels int

	pos   int
	total int

	in  [][]float32
	pad [][]float32
	out [][]float32

	frames atomic.Int64 // frames delivered
}

// NewClipReader prepares clip for playback through m on channels speakers.
func NewClipReader(m *module.Module, clip *Clip, channels int) *ClipReader {
	r := &ClipReader{
		clip:     clip,
		bridge:   NewBridge(m, float64(clip.SampleRate), len(clip.Channels), channels, false),
		channels: channels,
		total:    clip.Frames() + m.BlockLength(),
		in:       make([][]float32, len(clip.Channels)),
		pad:      make([][]float32, len(clip.Channels)),
		out:      make([][]float32, channels),
	}
	for ch := range r.pad {
		r.pad[ch] = make([]float32, DefaultChunkFrames)
	}
	for ch := range r.out {
		r.out[ch] = make([]float32, DefaultChunkFrames)
	}
	return r
}

// Read implements io.Reader.
func (r *ClipReader) Read(p []byte) (int, error) {
	if r.pos >= r.total {
		return 0, io.EOF
	}

	frameBytes := 4 * r.channels
	n := min(len(p)/frameBytes, DefaultChunkFrames, r.total-r.pos)
	if n == 0 {
		return 0, nil
	}

	for ch, samples := range r.clip.Channels {
		if r.pos+n > len(samples) {
			buf := r.pad[ch][:n]
			clear(buf)
			if r.pos < len(samples) {
				copy(buf, samples[r.pos:])
			}
			r.in[ch] = buf
			continue
		}
		r.in[ch] = samples[r.pos : r.pos+n]
	}
	for ch := range r.out {
		r.out[ch] = r.out[ch][:n]
	}

	r.bridge.Process(r.in, r.out)

	for f := range n {
		for ch := range r.channels {
			offset := (f*r.channels + ch) * 4
			binary.LittleEndian.PutUint32(p[offset:], math.Float32bits(r.out[ch][f]))
		}
	}

	r.pos += n
	r.frames.Add(int64(n))
	return n * frameBytes, nil
}

// Position returns the playback position in seconds.
func (r *ClipReader) Position() float64 {
	return float64(r.frames.Load()) / float64(r.clip.SampleRate)
}

// Play renders clip through m to the default speakers and blocks until
// playback ends or stop is closed.
func Play(m *module.Module, clip *Clip, stop <-chan struct{}) error {
	channels := min(max(m.NumOutputs(), 1), 2)

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   clip.SampleRate,
		ChannelCount: channels,
		Format:       oto.FormatFloat32LE,
	})
	if err != nil {
		return errors.Wrap(err, "failed to open audio output")
	}
	<-ready

	reader := NewClipReader(m, clip, channels)
	player := ctx.NewPlayer(reader)
	defer player.Close()

	player.Play()

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for player.IsPlaying() {
		select {
		case <-stop:
			player.Pause()
			return nil
		case <-ticker.C:
		}
	}
	return player.Err()
}
