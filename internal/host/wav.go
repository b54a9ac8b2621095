// SPDX-License-Identifier: MIT
package host

import (
	"blockhost/internal/config"
	"io"
	"math"
	"os"
	"slices"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/pkg/errors"
)

// wavWriter encodes normalised non-interleaved frames as integer PCM.
type wavWriter struct {
	encoder  *wav.Encoder
	buf      *audio.IntBuffer // reused for every Write
	channels int
	peak     float64 // full scale integer value
}

func newWAVWriter(w io.WriteSeeker, sampleRate, bitDepth, channels, maxFrames int) *wavWriter {
	return &wavWriter{
		encoder: wav.NewEncoder(w, sampleRate, bitDepth, channels, 1),
		buf: &audio.IntBuffer{
			Format: &audio.Format{
				NumChannels: channels,
				SampleRate:  sampleRate,
			},
			Data:           make([]int, maxFrames*channels),
			SourceBitDepth: bitDepth,
		},
		channels: channels,
		peak:     fullScale(bitDepth),
	}
}

// Write encodes frames samples from each channel in frames. Missing channels
// are written as silence. Samples are clipped to [-1, 1].
func (w *wavWriter) Write(frames [][]float32, n int) error {
	if need := n * w.channels; cap(w.buf.Data) < need {
		w.buf.Data = make([]int, need)
	}
	data := w.buf.Data[:n*w.channels]

	for ch := range w.channels {
		if ch >= len(frames) {
			for f := range n {
				data[f*w.channels+ch] = 0
			}
			continue
		}
		for f, x := range frames[ch][:n] {
			v := max(min(float64(x), 1), -1)
			data[f*w.channels+ch] = int(math.Round(v * w.peak))
		}
	}

	w.buf.Data = data
	return w.encoder.Write(w.buf)
}

// Close finalises the WAV header. It does not close the underlying file.
func (w *wavWriter) Close() error {
	return w.encoder.Close()
}

// fullScale is the largest positive sample value at bitDepth.
func fullScale(bitDepth int) float64 {
	return float64(int64(1)<<(bitDepth-1) - 1)
}

// Clip is a decoded WAV file with samples normalised to [-1, 1].
type Clip struct {
	SampleRate int
	BitDepth   int
	Channels   [][]float32 // one slice per channel
}

// Frames returns the clip length in samples per channel.
func (c *Clip) Frames() int {
	if len(c.Channels) == 0 {
		return 0
	}
	return len(c.Channels[0])
}

// Duration returns the clip length in seconds.
func (c *Clip) Duration() float64 {
	if c.SampleRate == 0 {
		return 0
	}
	return float64(c.Frames()) / float64(c.SampleRate)
}

// LoadClip decodes the PCM WAV file at path.
func LoadClip(path string) (*Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open input file")
	}
	defer f.Close()
	return DecodeClip(f)
}

// DecodeClip decodes a PCM WAV stream.
func DecodeClip(r io.ReadSeeker) (*Clip, error) {
	decoder := wav.NewDecoder(r)
	if !decoder.IsValidFile() {
		return nil, errors.New("not a valid WAV file")
	}

	pcm, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode WAV data")
	}
	if pcm.Format == nil || pcm.Format.NumChannels < 1 {
		return nil, errors.New("WAV file declares no channels")
	}

	bitDepth := int(decoder.BitDepth)
	if !slices.Contains(config.SupportedBitDepths, bitDepth) {
		return nil, errors.Errorf("unsupported bit depth %d", bitDepth)
	}
	numChannels := pcm.Format.NumChannels
	frames := len(pcm.Data) / numChannels
	scale := float32(int64(1) << (bitDepth - 1))

	clip := &Clip{
		SampleRate: pcm.Format.SampleRate,
		BitDepth:   bitDepth,
		Channels:   make([][]float32, numChannels),
	}
	for ch := range clip.Channels {
		clip.Channels[ch] = make([]float32, frames)
	}
	for f := range frames {
		for ch := range numChannels {
			clip.Channels[ch][f] = float32(pcm.Data[f*numChannels+ch]) / scale
		}
	}
	return clip, nil
}
