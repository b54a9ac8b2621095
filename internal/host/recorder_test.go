// SPDX-License-Identifier: MIT
package host

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRecorderStartStop(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "rec.wav")
	r := NewRecorder(testSampleRate, 16, 2, 256)

	if err := r.Start(filename); err != nil {
		t.Fatalf("Failed to start recording: %v", err)
	}
	if !r.IsRecording() {
		t.Error("Recorder should be in recording state")
	}

	frames := [][]float32{make([]float32, 256), make([]float32, 256)}
	for i := range 256 {
		frames[0][i] = 0.5
		frames[1][i] = -0.5
	}
	for range 4 {
		r.Write(frames, 256)
	}

	if err := r.Stop(); err != nil {
		t.Fatalf("Failed to stop recording: %v", err)
	}
	if r.IsRecording() {
		t.Error("Recorder should not be recording after Stop")
	}
	if r.file != nil || r.writer != nil {
		t.Error("Stop should release the file and encoder")
	}

	clip, err := LoadClip(filename)
	if err != nil {
		t.Fatalf("recording is not a valid WAV: %v", err)
	}
	if clip.Frames() != 1024 || len(clip.Channels) != 2 || clip.SampleRate != testSampleRate {
		t.Errorf("unexpected recording: %d frames, %d channels, %d Hz", clip.Frames(), len(clip.Channels), clip.SampleRate)
	}
	if v := clip.Channels[1][10]; v > -0.49 || v < -0.51 {
		t.Errorf("sample value: got %f, want -0.5", v)
	}
}

func TestRecorderErrorCases(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		desc          string
		filename      string
		recording     bool
		expectError   bool
		errorContains string
	}{
		{"Already recording", "valid.wav", true, true, "already recording"},
		{"Invalid path", "/nonexistent/path/file.wav", false, true, "failed to create"},
		{"Valid path", filepath.Join(dir, "test.wav"), false, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			r := NewRecorder(testSampleRate, 16, 1, 64)
			r.recording.Store(tt.recording)

			err := r.Start(tt.filename)
			if err == nil {
				_ = r.Stop()
			}

			if tt.expectError && err == nil {
				t.Errorf("Expected error but got none")
			}
			if !tt.expectError && err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
			if tt.errorContains != "" && err != nil && !strings.Contains(err.Error(), tt.errorContains) {
				t.Errorf("Error %q does not contain %q", err.Error(), tt.errorContains)
			}
		})
	}

	if err := NewRecorder(testSampleRate, 16, 1, 64).Stop(); err != nil {
		t.Errorf("Stop on an idle recorder: %v", err)
	}
}

func TestRecorderWriteWhileIdle(t *testing.T) {
	r := NewRecorder(testSampleRate, 16, 1, 64)
	r.Write([][]float32{make([]float32, 64)}, 64)
	if r.Failures() != 0 || r.Dropped() != 0 {
		t.Error("idle Write should do nothing")
	}
}

func TestRecorderDropsWhenBusy(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "busy.wav")
	r := NewRecorder(testSampleRate, 16, 1, 64)
	if err := r.Start(filename); err != nil {
		t.Fatal(err)
	}
	defer os.Remove(filename)

	r.mu.Lock()
	r.Write([][]float32{make([]float32, 64)}, 64)
	r.mu.Unlock()

	if r.Dropped() != 1 {
		t.Errorf("dropped: got %d, want 1", r.Dropped())
	}
	if err := r.Stop(); err != nil {
		t.Fatal(err)
	}
}
