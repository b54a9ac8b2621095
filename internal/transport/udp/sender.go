// SPDX-License-Identifier: MIT
package udp

import (
	applog "blockhost/internal/log"
	"blockhost/internal/transport"
	"fmt"
	"net"
	"sync"
)

// UDPSender sends statistics snapshots as binary packets to one target.
type UDPSender struct {
	conn   *net.UDPConn
	mu     sync.Mutex // protects conn, closed and packet
	closed bool
	packet []byte // reused for every packet
}

// NewUDPSender dials targetAddress ("host:port").
func NewUDPSender(targetAddress string) (*UDPSender, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", targetAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve UDP target address '%s': %w", targetAddress, err)
	}

	conn, err := net.DialUDP("udp", nil, udpAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to dial UDP for target '%s': %w", targetAddress, err)
	}

	applog.Infof("UDP Sender: Connection established to %s", conn.RemoteAddr())
	return &UDPSender{
		conn:   conn,
		packet: make([]byte, 0, PacketSize),
	}, nil
}

// Send encodes a transport.Snapshot and writes it as one datagram.
func (s *UDPSender) Send(data any) error {
	snap, ok := data.(transport.Snapshot)
	if !ok {
		return fmt.Errorf("UDP sender cannot encode %T", data)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("UDP sender is closed")
	}

	s.packet = AppendPacket(s.packet[:0], Packet{
		Sequence:      snap.Sequence,
		Timestamp:     snap.Timestamp.UnixNano(),
		Ticks:         snap.Ticks,
		Blocks:        snap.Blocks,
		Resizes:       snap.Resizes,
		Overruns:      snap.Overruns,
		BlockLength:   uint32(snap.BlockLength),
		LastBlockTime: snap.LastBlockTime,
		MaxBlockTime:  snap.MaxBlockTime,
	})
	if _, err := s.conn.Write(s.packet); err != nil {
		return fmt.Errorf("failed to send UDP packet: %w", err)
	}
	return nil
}

// Close closes the underlying UDP connection.
func (s *UDPSender) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	if err := s.conn.Close(); err != nil {
		return fmt.Errorf("failed to close UDP connection: %w", err)
	}
	return nil
}

var _ transport.Transport = (*UDPSender)(nil)
