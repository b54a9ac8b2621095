// SPDX-License-Identifier: MIT
package udp

import (
	"encoding/binary"
	"errors"
	"time"
)

/*
UDP Packet Structure (BigEndian)

+--------------------------------------------------------------+
| Field          | Type     | Size | Description                |
|----------------|----------|------|----------------------------|
| Magic          | [4]byte  | 4    | "BHST"                     |
| Sequence       | uint32   | 4    | Monotonically increasing   |
| Timestamp      | int64    | 8    | Nanoseconds since epoch    |
| Ticks          | uint64   | 8    | Ticks at the last block    |
| Blocks         | uint64   | 8    | Engine Process calls       |
| Resizes        | uint64   | 8    | Block length increases     |
| Overruns       | uint64   | 8    | Blocks slower than realtime|
| Block Length   | uint32   | 4    | Samples per block          |
| Last Block     | int64    | 8    | Nanoseconds                |
| Max Block      | int64    | 8    | Nanoseconds                |
+--------------------------------------------------------------+
*/

const PacketSize = 4 + 4 + 8 + 8*4 + 4 + 8 + 8

var Magic = [4]byte{'B', 'H', 'S', 'T'}

var ErrBadPacket = errors.New("malformed stats packet")

// Packet is the decoded wire form of a statistics snapshot.
type Packet struct {
	Sequence      uint32
	Timestamp     int64
	Ticks         uint64
	Blocks        uint64
	Resizes       uint64
	Overruns      uint64
	BlockLength   uint32
	LastBlockTime time.Duration
	MaxBlockTime  time.Duration
}

// AppendPacket appends the encoded packet to dst.
func AppendPacket(dst []byte, p Packet) []byte {
	dst = append(dst, Magic[:]...)
	dst = binary.BigEndian.AppendUint32(dst, p.Sequence)
	dst = binary.BigEndian.AppendUint64(dst, uint64(p.Timestamp))
	dst = binary.BigEndian.AppendUint64(dst, p.Ticks)
	dst = binary.BigEndian.AppendUint64(dst, p.Blocks)
	dst = binary.BigEndian.AppendUint64(dst, p.Resizes)
	dst = binary.BigEndian.AppendUint64(dst, p.Overruns)
	dst = binary.BigEndian.AppendUint32(dst, p.BlockLength)
	dst = binary.BigEndian.AppendUint64(dst, uint64(p.LastBlockTime))
	dst = binary.BigEndian.AppendUint64(dst, uint64(p.MaxBlockTime))
	return dst
}

// DecodePacket parses one packet.
func DecodePacket(b []byte) (Packet, error) {
	if len(b) != PacketSize || [4]byte(b[:4]) != Magic {
		return Packet{}, ErrBadPacket
	}
	be := binary.BigEndian
	return Packet{
		Sequence:      be.Uint32(b[4:]),
		Timestamp:     int64(be.Uint64(b[8:])),
		Ticks:         be.Uint64(b[16:]),
		Blocks:        be.Uint64(b[24:]),
		Resizes:       be.Uint64(b[32:]),
		Overruns:      be.Uint64(b[40:]),
		BlockLength:   be.Uint32(b[48:]),
		LastBlockTime: time.Duration(be.Uint64(b[52:])),
		MaxBlockTime:  time.Duration(be.Uint64(b[60:])),
	}, nil
}
