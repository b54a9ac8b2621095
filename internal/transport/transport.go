// SPDX-License-Identifier: MIT
/*
Package transport publishes module statistics to observers outside the
process. A Publisher polls a StatsSource on its own goroutine and hands each
Snapshot to every configured Transport; the audio thread is never involved.
*/
package transport

import (
	"blockhost/internal/module"
	"time"
)

// Transport sends snapshots somewhere. Implementations must be safe for use
// from the publisher goroutine while Close is called from another.
type Transport interface {
	Send(data any) error
	Close() error
}

// StatsSource is anything that reports module statistics; *module.Module
// satisfies it.
type StatsSource interface {
	Stats() module.Stats
}

// Snapshot is one published sample of the module statistics.
type Snapshot struct {
	Sequence  uint32    `json:"seq"`
	Timestamp time.Time `json:"timestamp"`
	Engine    string    `json:"engine"`
	module.Stats
}
