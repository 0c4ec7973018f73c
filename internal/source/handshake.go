package source

// tcp:// handshake: negotiate a protocol version and an initial flow
// control window before the wire container stream begins. Adapted from the
// teacher's RTMP simple handshake (version byte + timestamp + random echo);
// this protocol only needs a version check and a window size, not a
// timing-based echo, since our wire format carries its own stream table.

import (
	"encoding/binary"
	"fmt"
	"net"
	"time"

	"github.com/avcore/goplay/internal/errors"
	"github.com/avcore/goplay/internal/logger"
)

const (
	protocolVersion = byte(1)

	handshakeReadTimeout  = 5 * time.Second
	handshakeWriteTimeout = 5 * time.Second

	// DefaultWindowSize is the flow-control window, in bytes, a client
	// requests if it has no tighter requirement.
	DefaultWindowSize = 1 << 20
)

// clientHandshake sends our version + requested window and reads back the
// server's version + granted window. Returns the granted window size.
func clientHandshake(conn net.Conn, requestedWindow uint32) (uint32, error) {
	log := logger.Logger().With("phase", "handshake", "side", "client")

	if err := conn.SetWriteDeadline(time.Now().Add(handshakeWriteTimeout)); err != nil {
		return 0, errors.New(errors.KindResource, "handshake.client", err)
	}
	var out [5]byte
	out[0] = protocolVersion
	binary.BigEndian.PutUint32(out[1:], requestedWindow)
	if _, err := conn.Write(out[:]); err != nil {
		return 0, errors.New(errors.KindResource, "handshake.client_write", err)
	}

	if err := conn.SetReadDeadline(time.Now().Add(handshakeReadTimeout)); err != nil {
		return 0, errors.New(errors.KindResource, "handshake.client", err)
	}
	var in [5]byte
	if _, err := fullRead(conn, in[:]); err != nil {
		return 0, errors.New(errors.KindResource, "handshake.client_read", err)
	}
	if in[0] != protocolVersion {
		return 0, errors.New(errors.KindFormat, "handshake.client", fmt.Errorf("unsupported server version 0x%02x", in[0]))
	}
	granted := binary.BigEndian.Uint32(in[1:])

	if err := conn.SetReadDeadline(time.Time{}); err != nil {
		log.Warn("failed to clear read deadline", "error", err)
	}
	if err := conn.SetWriteDeadline(time.Time{}); err != nil {
		log.Warn("failed to clear write deadline", "error", err)
	}

	log.Info("handshake completed", "granted_window", granted)
	return granted, nil
}

func fullRead(conn net.Conn, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := conn.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
