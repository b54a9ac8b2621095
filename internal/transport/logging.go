// SPDX-License-Identifier: MIT
package transport

import applog "blockhost/internal/log"

// LoggingTransport writes every snapshot to the debug log.
type LoggingTransport struct{}

func NewLoggingTransport() *LoggingTransport {
	applog.Infof("Transport: Using LoggingTransport")
	return &LoggingTransport{}
}

func (lt *LoggingTransport) Send(data any) error {
	if s, ok := data.(Snapshot); ok {
		applog.Debugf("Transport: #%d %s blocks=%d block=%d resizes=%d overruns=%d last=%s max=%s",
			s.Sequence, s.Engine, s.Blocks, s.BlockLength, s.Resizes, s.Overruns, s.LastBlockTime, s.MaxBlockTime)
		return nil
	}
	applog.Debugf("Transport: %+v", data)
	return nil
}

func (lt *LoggingTransport) Close() error {
	return nil
}

var _ Transport = (*LoggingTransport)(nil)
