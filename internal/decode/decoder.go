// Package decode drives one stream's Codec against its PacketQueue and
// FrameQueue: the three-phase loop (drain decoded output, fetch the next
// packet, submit it) that spec §4.5 carries over from ffplay's
// decoder_decode_frame, reshaped into blocking Go calls instead of an
// EAGAIN-polling state machine.
package decode

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/avcore/goplay/internal/decode/codec"
	"github.com/avcore/goplay/internal/media"
	"github.com/avcore/goplay/internal/queue"
)

// Driver owns one stream's decode loop.
type Driver struct {
	codec  codec.Codec
	pktq   *queue.PacketQueue
	frmq   *queue.FrameQueue
	logger *slog.Logger

	streamKind  media.StreamKind
	streamIndex int

	pktSerial     int
	packetPending *media.Packet

	finishedMu     sync.Mutex
	finished       bool
	finishedSerial int
}

// Drained reports whether this stream has produced every frame it ever
// will for the packet queue's current serial: the codec signalled EOF for
// that exact generation (a later flush un-finishes it) and the frame queue
// has nothing left for a renderer to consume. Reader.streamsDrained uses
// this — alongside packet-queue emptiness — to decide when it's actually
// safe to loop back to the start or settle on end-of-stream (spec §4.6
// step 5); packet-queue-empty alone can be true while a frame queue still
// holds the undrained tail.
func (d *Driver) Drained() bool {
	d.finishedMu.Lock()
	finished, serial := d.finished, d.finishedSerial
	d.finishedMu.Unlock()
	if !finished || serial != d.pktq.Serial() {
		return false
	}
	return d.frmq.NbRemaining() == 0
}

// NewDriver wires a codec against the packet/frame queues for one stream.
func NewDriver(c codec.Codec, pktq *queue.PacketQueue, frmq *queue.FrameQueue, kind media.StreamKind, streamIndex int, logger *slog.Logger) *Driver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Driver{
		codec:       c,
		pktq:        pktq,
		frmq:        frmq,
		streamKind:  kind,
		streamIndex: streamIndex,
		logger:      logger,
		pktSerial:   -1,
	}
}

// Run drives the decode loop until ctx is cancelled or the packet queue
// aborts. It is meant to be run in its own goroutine, one per stream.
func (d *Driver) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		frame, err := d.decodeFrame()
		if err != nil {
			if errors.Is(err, errAborted) {
				return
			}
			d.logger.Error("decode failed", "stream", d.streamKind.String(), "error", err)
			return
		}
		if frame == nil {
			// Clean drain after a null packet; stream is done.
			return
		}

		slot, ok := d.frmq.PeekWritable()
		if !ok {
			return
		}
		*slot = *frame
		d.frmq.Push()
	}
}

var errAborted = errors.New("decode: aborted")

// decodeFrame runs the three-phase loop until it produces one frame,
// observes a clean drain (returns nil, nil), or fails.
func (d *Driver) decodeFrame() (*media.Frame, error) {
	for {
		// Phase 1: drain whatever the codec already has buffered, but
		// only while our serial still matches the queue's current
		// generation — a flush invalidates anything we'd get back.
		if d.pktSerial == d.pktq.Serial() {
			for {
				frame, err := d.codec.ReceiveFrame()
				if err == io.EOF {
					d.finishedMu.Lock()
					d.finished = true
					d.finishedSerial = d.pktSerial
					d.finishedMu.Unlock()
					d.codec.Flush()
					break
				}
				if errors.Is(err, codec.ErrAgain) {
					break
				}
				if err != nil {
					return nil, err
				}
				return frame, nil
			}
		}

		// Phase 2: fetch the next packet, filtering out anything stamped
		// with a stale serial (left over from before a flush).
		var pkt *media.Packet
		for {
			if d.pktq.NbPackets() == 0 {
				d.pktq.Signal()
			}
			if d.packetPending != nil {
				pkt = d.packetPending
				d.packetPending = nil
			} else {
				var serial int
				var err error
				pkt, serial, err = d.pktq.Get(true)
				if err != nil {
					return nil, errAborted
				}
				d.pktSerial = serial
			}
			if d.pktq.Serial() == d.pktSerial {
				break
			}
		}

		if pkt.Kind == media.KindFlush {
			d.codec.Flush()
			d.finishedMu.Lock()
			d.finished = false
			d.finishedMu.Unlock()
			continue
		}
		if pkt.Kind == media.KindNull {
			if err := d.codec.SendPacket(pkt); err != nil {
				return nil, err
			}
			// Let phase 1 drain the flush-triggered EOF on the next
			// iteration; if nothing comes back, the stream is done. Run
			// exits on this clean-drain return and never calls decodeFrame
			// again for this generation, so mark finished here too — the
			// io.EOF branch in phase 1 above only fires on a later call.
			frame, err := d.codec.ReceiveFrame()
			if err == io.EOF || errors.Is(err, codec.ErrAgain) {
				d.finishedMu.Lock()
				d.finished = true
				d.finishedSerial = d.pktSerial
				d.finishedMu.Unlock()
				return nil, nil
			}
			if err != nil {
				return nil, err
			}
			return frame, nil
		}

		// Phase 3: submit the packet.
		if err := d.codec.SendPacket(pkt); err != nil {
			if errors.Is(err, codec.ErrAgain) {
				d.packetPending = pkt
			} else {
				return nil, err
			}
		}
	}
}
