package source

import (
	"context"
	"net"

	"github.com/avcore/goplay/internal/errors"
)

// tcpContainer streams our own wire container format over a raw TCP
// connection, after the handshake negotiates a protocol version and flow
// control window (spec §4.9). It does not support Seek: a live tcp://
// source is sequential-only, the network equivalent of stdin.
type tcpContainer struct {
	conn net.Conn
	fc   *flowControl
}

func openTCP(ctx context.Context, hostPort string) (Container, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", hostPort)
	if err != nil {
		return nil, errors.New(errors.KindInput, "source.open_tcp", err)
	}
	granted, err := clientHandshake(conn, DefaultWindowSize)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return &tcpContainer{conn: conn, fc: newFlowControl(conn, granted)}, nil
}

func (c *tcpContainer) Read(p []byte) (int, error) {
	n, err := c.conn.Read(p)
	if n > 0 {
		if ackErr := c.fc.onRead(n); ackErr != nil {
			return n, ackErr
		}
	}
	return n, err
}

func (c *tcpContainer) Close() error { return c.conn.Close() }

func (c *tcpContainer) Seek(offset int64, whence int) (int64, error) {
	return 0, errors.New(errors.KindInput, "source.tcp_seek", errNotSeekable)
}

func (c *tcpContainer) Seekable() bool { return false }
func (c *tcpContainer) Realtime() bool { return true }

var errNotSeekable = seekErr("tcp source is not seekable")

type seekErr string

func (e seekErr) Error() string { return string(e) }
