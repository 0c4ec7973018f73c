package source

// Flow control for the tcp:// source: the client tracks how many bytes it
// has read since its last acknowledgement and, once that crosses the
// negotiated window, sends an ack so the server knows it can keep sending
// without unbounded buffering on its side. Adapted from the teacher's
// control package (WindowAcknowledgementSize / Acknowledgement messages),
// collapsed to the one message pair this protocol actually needs.

import (
	"encoding/binary"
	"net"

	"github.com/avcore/goplay/internal/errors"
)

type flowControl struct {
	conn         net.Conn
	window       uint32
	sinceLastAck uint32
}

func newFlowControl(conn net.Conn, window uint32) *flowControl {
	return &flowControl{conn: conn, window: window}
}

// onRead records n freshly read bytes and sends an ack once the window is
// exceeded.
func (fc *flowControl) onRead(n int) error {
	fc.sinceLastAck += uint32(n)
	if fc.sinceLastAck < fc.window {
		return nil
	}
	var ack [4]byte
	binary.BigEndian.PutUint32(ack[:], fc.sinceLastAck)
	if _, err := fc.conn.Write(ack[:]); err != nil {
		return errors.New(errors.KindResource, "flowcontrol.ack", err)
	}
	fc.sinceLastAck = 0
	return nil
}
