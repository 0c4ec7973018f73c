package source

// Server-side half of the tcp:// handshake, used by cmd/fixture-server to
// serve wire-format test fixtures over a loopback TCP listener. Adapted
// from the teacher's conn.Accept (handshake-then-wrap-connection shape).

import (
	"encoding/binary"
	"fmt"
	"net"
	"time"

	"github.com/avcore/goplay/internal/errors"
	"github.com/avcore/goplay/internal/logger"
)

// AcceptConn performs the server side of the handshake on an accepted
// connection and returns the net.Conn ready for the wire container stream,
// plus the client's requested window (informational only — this simple
// server doesn't itself rate-limit, it just echoes the request back as
// granted).
func AcceptConn(raw net.Conn) (net.Conn, uint32, error) {
	log := logger.Logger().With("phase", "handshake", "side", "server")

	if err := raw.SetReadDeadline(time.Now().Add(handshakeReadTimeout)); err != nil {
		return nil, 0, errors.New(errors.KindResource, "handshake.server", err)
	}
	var in [5]byte
	if _, err := fullRead(raw, in[:]); err != nil {
		return nil, 0, errors.New(errors.KindResource, "handshake.server_read", err)
	}
	if in[0] != protocolVersion {
		return nil, 0, errors.New(errors.KindFormat, "handshake.server", fmt.Errorf("unsupported client version 0x%02x", in[0]))
	}
	requested := binary.BigEndian.Uint32(in[1:])

	if err := raw.SetWriteDeadline(time.Now().Add(handshakeWriteTimeout)); err != nil {
		return nil, 0, errors.New(errors.KindResource, "handshake.server", err)
	}
	var out [5]byte
	out[0] = protocolVersion
	binary.BigEndian.PutUint32(out[1:], requested)
	if _, err := raw.Write(out[:]); err != nil {
		return nil, 0, errors.New(errors.KindResource, "handshake.server_write", err)
	}

	if err := raw.SetReadDeadline(time.Time{}); err != nil {
		log.Warn("failed to clear read deadline", "error", err)
	}
	if err := raw.SetWriteDeadline(time.Time{}); err != nil {
		log.Warn("failed to clear write deadline", "error", err)
	}

	log.Info("handshake completed", "granted_window", requested)
	return raw, requested, nil
}
