// SPDX-License-Identifier: MIT
package transport

import (
	applog "blockhost/internal/log"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// Publisher periodically snapshots a StatsSource and sends the snapshot to
// every transport. It runs in a separate goroutine managed by Start and Stop.
type Publisher struct {
	source     StatsSource
	engine     string
	interval   time.Duration
	transports []Transport

	ticker   *time.Ticker
	doneChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	mu       sync.Mutex // protects ticker and doneChan during Start/Stop

	sequence atomic.Uint32
	failures atomic.Uint64
}

// NewPublisher creates a publisher for source. An interval <= 0 falls back to
// 100ms.
func NewPublisher(source StatsSource, engine string, interval time.Duration, transports ...Transport) (*Publisher, error) {
	if source == nil {
		return nil, fmt.Errorf("publisher requires a stats source")
	}
	if len(transports) == 0 {
		return nil, fmt.Errorf("publisher requires at least one transport")
	}
	if interval <= 0 {
		interval = 100 * time.Millisecond
		applog.Warnf("Publisher: Invalid interval provided, defaulting to %s", interval)
	}

	return &Publisher{
		source:     source,
		engine:     engine,
		interval:   interval,
		transports: transports,
	}, nil
}

// Start launches the publishing goroutine. Calling Start twice is a no-op.
func (p *Publisher) Start() {
	p.mu.Lock()
	if p.ticker != nil {
		p.mu.Unlock()
		applog.Warnf("Publisher: Start called but already running.")
		return
	}

	p.ticker = time.NewTicker(p.interval)
	p.doneChan = make(chan struct{})
	p.stopOnce = sync.Once{}

	ticker := p.ticker
	doneChan := p.doneChan
	p.mu.Unlock()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		for {
			select {
			case <-ticker.C:
				p.Publish()
			case <-doneChan:
				return
			}
		}
	}()
}

// Stop signals the goroutine to exit and waits for it. Safe to call more than
// once.
func (p *Publisher) Stop() {
	p.mu.Lock()
	if p.ticker == nil {
		p.mu.Unlock()
		return
	}
	p.stopOnce.Do(func() {
		close(p.doneChan)
		p.ticker.Stop()
		p.ticker = nil
	})
	p.mu.Unlock()

	p.wg.Wait()
}

// Publish sends one snapshot immediately. Send errors are counted and logged
// at debug level; one failing transport does not starve the others.
func (p *Publisher) Publish() Snapshot {
	snap := Snapshot{
		Sequence:  p.sequence.Add(1),
		Timestamp: time.Now(),
		Engine:    p.engine,
		Stats:     p.source.Stats(),
	}

	for _, t := range p.transports {
		if err := t.Send(snap); err != nil {
			p.failures.Add(1)
			applog.Debugf("Publisher: send failed: %v", err)
		}
	}
	return snap
}

// Failures returns the number of failed sends across all transports.
func (p *Publisher) Failures() uint64 {
	return p.failures.Load()
}

// Close stops publishing and closes every transport.
func (p *Publisher) Close() error {
	p.Stop()

	var errs []error
	for _, t := range p.transports {
		if err := t.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
