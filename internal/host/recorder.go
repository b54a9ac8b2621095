// SPDX-License-Identifier: MIT
package host

import (
	"os"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
)

// Recorder writes the module outputs to a WAV file while a stream runs.
//
// Write is called from the audio callback. It never blocks: if Stop holds
// the lock, the buffer is dropped and counted.
type Recorder struct {
	sampleRate int
	bitDepth   int
	channels   int
	maxFrames  int

	mu        sync.Mutex
	recording atomic.Bool
	file      *os.File
	writer    *wavWriter

	dropped  atomic.Uint64
	failures atomic.Uint64
}

// NewRecorder prepares a recorder for buffers of up to maxFrames frames.
func NewRecorder(sampleRate, bitDepth, channels, maxFrames int) *Recorder {
	return &Recorder{
		sampleRate: sampleRate,
		bitDepth:   bitDepth,
		channels:   channels,
		maxFrames:  maxFrames,
	}
}

// Start opens filename and begins recording.
func (r *Recorder) Start(filename string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.recording.Load() {
		return errors.New("already recording")
	}

	file, err := os.Create(filename)
	if err != nil {
		return errors.Wrap(err, "failed to create recording")
	}
	r.file = file
	r.writer = newWAVWriter(file, r.sampleRate, r.bitDepth, r.channels, r.maxFrames)
	r.recording.Store(true)

	return nil
}

// Stop finalises the file. Stopping an idle recorder is a no-op.
func (r *Recorder) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.recording.Load() {
		return nil
	}
	r.recording.Store(false)

	if r.writer != nil {
		if err := r.writer.Close(); err != nil {
			return errors.Wrap(err, "failed to finalise recording")
		}
		r.writer = nil
	}
	if r.file != nil {
		if err := r.file.Close(); err != nil {
			return errors.Wrap(err, "failed to close recording")
		}
		r.file = nil
	}
	return nil
}

// IsRecording reports whether Write currently reaches a file.
func (r *Recorder) IsRecording() bool {
	return r.recording.Load()
}

// Write appends n frames from the non-interleaved buffers in frames.
func (r *Recorder) Write(frames [][]float32, n int) {
	if !r.recording.Load() {
		return
	}
	if !r.mu.TryLock() {
		r.dropped.Add(1)
		return
	}
	defer r.mu.Unlock()

	if r.writer == nil {
		return
	}
	if err := r.writer.Write(frames, n); err != nil {
		r.failures.Add(1)
	}
}

// Dropped returns the number of buffers skipped while the recorder was busy.
func (r *Recorder) Dropped() uint64 { return r.dropped.Load() }

// Failures returns the number of buffers the encoder failed to write.
func (r *Recorder) Failures() uint64 { return r.failures.Load() }
