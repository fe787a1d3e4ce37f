// SPDX-License-Identifier: MIT
package transport

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"net"
	"sync"
	"time"

	applog "beatviz/internal/log"
)

/*
UDP packet layout (BigEndian):

| Field          | Type    | Bytes | Description                      |
|----------------|---------|-------|----------------------------------|
| Sequence       | uint32  | 4     | monotonically increasing         |
| Timestamp      | int64   | 8     | nanoseconds since epoch          |
| MediaTime      | float64 | 8     | corrected track position, sec    |
| Flags          | uint8   | 1     | bit 0: beat fired this frame     |
| BPM            | float32 | 4     |                                  |
| BeatIntensity  | float32 | 4     |                                  |
| BeatPhase      | float32 | 4     |                                  |
| Energy         | float32 | 4     |                                  |
| Bands          | 4×f32   | 16    | bass, mid, treble, average       |
*/

const beatFlag = 0x01

// UDPTransport packs snapshots into a fixed binary frame and fires
// them at a lighting rig or OSC bridge. Packets are fire-and-forget.
type UDPTransport struct {
	mu     sync.Mutex
	conn   *net.UDPConn
	buf    *bytes.Buffer
	seq    uint32
	closed bool
}

func NewUDPTransport(target string) (*UDPTransport, error) {
	addr, err := net.ResolveUDPAddr("udp", target)
	if err != nil {
		return nil, fmt.Errorf("transport: resolve UDP target %q: %w", target, err)
	}
	conn, err := net.DialUDP("udp", nil, addr)
	if err != nil {
		return nil, fmt.Errorf("transport: dial UDP %q: %w", target, err)
	}
	applog.Infof("UDPTransport: sending frame packets to %s", conn.RemoteAddr())
	return &UDPTransport{conn: conn, buf: new(bytes.Buffer)}, nil
}

func (u *UDPTransport) Send(snap Snapshot) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.closed {
		return fmt.Errorf("transport: UDP transport is closed")
	}

	u.seq++
	var flags uint8
	if snap.IsBeat {
		flags |= beatFlag
	}

	u.buf.Reset()
	for _, v := range []any{
		u.seq,
		time.Now().UnixNano(),
		snap.Time,
		flags,
		float32(snap.BPM),
		float32(snap.BeatIntensity),
		float32(snap.BeatPhase),
		float32(snap.Energy),
		float32(snap.Bass),
		float32(snap.Mid),
		float32(snap.Treble),
		float32(snap.Average),
	} {
		if err := binary.Write(u.buf, binary.BigEndian, v); err != nil {
			return fmt.Errorf("transport: pack UDP frame: %w", err)
		}
	}

	if _, err := u.conn.Write(u.buf.Bytes()); err != nil {
		applog.Debugf("UDPTransport: send failed: %v", err)
		return fmt.Errorf("transport: send UDP frame: %w", err)
	}
	return nil
}

func (u *UDPTransport) Close() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.closed {
		return nil
	}
	u.closed = true
	return u.conn.Close()
}

var _ Transport = (*UDPTransport)(nil)
