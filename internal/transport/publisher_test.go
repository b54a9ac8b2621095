// SPDX-License-Identifier: MIT
package transport

import (
	"blockhost/internal/module"
	"blockhost/pkg/utils"
	"errors"
	"testing"
	"time"
)

type fakeSource struct {
	stats module.Stats
}

func (f *fakeSource) Stats() module.Stats { return f.stats }

func TestNewPublisherValidation(t *testing.T) {
	if _, err := NewPublisher(nil, "vca", time.Second, &utils.MockTransport{}); err == nil {
		t.Error("expected error for nil source")
	}
	if _, err := NewPublisher(&fakeSource{}, "vca", time.Second); err == nil {
		t.Error("expected error without transports")
	}

	p, err := NewPublisher(&fakeSource{}, "vca", 0, &utils.MockTransport{})
	if err != nil {
		t.Fatalf("NewPublisher failed: %v", err)
	}
	if p.interval <= 0 {
		t.Errorf("invalid interval not replaced: %s", p.interval)
	}
}

func TestPublishFansOut(t *testing.T) {
	source := &fakeSource{stats: module.Stats{Blocks: 12, BlockLength: 512, Resizes: 1}}
	ok := &utils.MockTransport{}
	failing := &utils.MockTransport{Err: errors.New("unreachable")}
	p, _ := NewPublisher(source, "spectral", time.Second, failing, ok)

	first := p.Publish()
	second := p.Publish()

	if first.Sequence != 1 || second.Sequence != 2 {
		t.Errorf("sequence numbers: %d, %d", first.Sequence, second.Sequence)
	}
	sent := ok.Sent()
	if len(sent) != 2 {
		t.Fatalf("healthy transport got %d snapshots, want 2", len(sent))
	}
	snap, isSnap := sent[1].(Snapshot)
	if !isSnap {
		t.Fatalf("transport received %T", sent[1])
	}
	if snap.Engine != "spectral" || snap.Blocks != 12 || snap.BlockLength != 512 || snap.Resizes != 1 {
		t.Errorf("unexpected snapshot: %+v", snap)
	}
	if p.Failures() != 2 {
		t.Errorf("failures: got %d, want 2", p.Failures())
	}
}

func TestPublisherStartStop(t *testing.T) {
	mt := &utils.MockTransport{}
	p, _ := NewPublisher(&fakeSource{}, "vca", 5*time.Millisecond, mt)

	p.Start()
	p.Start() // no-op

	deadline := time.Now().Add(2 * time.Second)
	for len(mt.Sent()) < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	p.Stop()
	p.Stop()

	count := len(mt.Sent())
	if count < 3 {
		t.Fatalf("publisher sent %d snapshots, want at least 3", count)
	}
	time.Sleep(20 * time.Millisecond)
	if len(mt.Sent()) != count {
		t.Error("publisher kept sending after Stop")
	}

	if err := p.Close(); err != nil {
		t.Errorf("Close error: %v", err)
	}
	if !mt.Closed() {
		t.Error("Close should close every transport")
	}
}

func TestLoggingTransport(t *testing.T) {
	lt := NewLoggingTransport()
	if err := lt.Send(Snapshot{Sequence: 1}); err != nil {
		t.Errorf("Send error: %v", err)
	}
	if err := lt.Send("anything"); err != nil {
		t.Errorf("Send error: %v", err)
	}
	if err := lt.Close(); err != nil {
		t.Errorf("Close error: %v", err)
	}
}
