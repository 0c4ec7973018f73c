// Package queue implements the bounded packet queue (serialized flush) and
// the frame queue (keep-last peek discipline) shared between the reader,
// decoders and renderers (spec §4.1, §4.2).
package queue

import (
	"sync"

	"github.com/avcore/goplay/internal/errors"
	"github.com/avcore/goplay/internal/media"
)

type packetNode struct {
	pkt  *media.Packet
	next *packetNode
}

// PacketQueue is a thread-safe FIFO of demuxed packets with size accounting
// and a monotonically increasing serial used to invalidate in-flight work
// after a seek (spec §3, §4.1).
//
// Every enqueued packet carries the serial value current at enqueue time.
// Putting the flush sentinel increments the serial *before* the flush is
// stamped, so packets enqueued after a flush carry a strictly higher serial
// than those enqueued before it.
type PacketQueue struct {
	mu   sync.Mutex
	cond *sync.Cond

	first, last *packetNode
	nbPackets   int
	size        int
	duration    int64

	abortReq bool
	serial   int
}

func NewPacketQueue() *PacketQueue {
	q := &PacketQueue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Start clears abort and bumps the serial via an initial flush, the
// three-step act spec §4.1 describes for bringing a queue online.
func (q *PacketQueue) Start() {
	q.mu.Lock()
	q.abortReq = false
	q.mu.Unlock()
	_ = q.Put(media.NewFlush())
}

// Abort sets the abort flag and wakes every waiter; a blocking Get or
// PeekWritable/PeekReadable on a dependent FrameQueue observes it and
// returns rather than hanging forever.
func (q *PacketQueue) Abort() {
	q.mu.Lock()
	q.abortReq = true
	q.mu.Unlock()
	q.cond.Broadcast()
}

func (q *PacketQueue) Aborted() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.abortReq
}

// Serial returns the queue's current generation counter.
func (q *PacketQueue) Serial() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.serial
}

// Put appends pkt to the tail. Putting the flush sentinel increments the
// serial before the packet is stamped (spec §3's serial invariant).
func (q *PacketQueue) Put(pkt *media.Packet) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.abortReq {
		return errors.New(errors.KindResource, "packetqueue.put", errors.ErrAborted)
	}
	if pkt.Kind == media.KindFlush {
		q.serial++
	}
	pkt.Serial = q.serial

	n := &packetNode{pkt: pkt}
	if q.last == nil {
		q.first = n
	} else {
		q.last.next = n
	}
	q.last = n
	q.nbPackets++
	q.size += pkt.Size()
	q.duration += pkt.Duration

	q.cond.Signal()
	return nil
}

// PutNull enqueues an empty packet bound to streamIndex, the decoder-drain
// signal (spec §4.1).
func (q *PacketQueue) PutNull(streamIndex int) error {
	return q.Put(media.NewNull(streamIndex))
}

// Get pops the head packet. If block is true and the queue is empty, it
// waits on the condition until a packet arrives or the queue is aborted.
// It returns the packet and the serial it was stamped with.
func (q *PacketQueue) Get(block bool) (*media.Packet, int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for {
		if q.abortReq {
			return nil, 0, errors.New(errors.KindResource, "packetqueue.get", errors.ErrAborted)
		}
		if q.first != nil {
			n := q.first
			q.first = n.next
			if q.first == nil {
				q.last = nil
			}
			q.nbPackets--
			q.size -= n.pkt.Size()
			q.duration -= n.pkt.Duration
			return n.pkt, n.pkt.Serial, nil
		}
		if !block {
			return nil, 0, nil
		}
		q.cond.Wait()
	}
}

// Flush releases every queued packet and resets the size/count/duration
// counters. It does NOT change the serial — that only happens via Put of a
// flush sentinel (Start, or a seek-triggered flush).
func (q *PacketQueue) Flush() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.first, q.last = nil, nil
	q.nbPackets = 0
	q.size = 0
	q.duration = 0
}

// NbPackets, Size and Duration reflect the current (unconsumed) contents.
func (q *PacketQueue) NbPackets() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.nbPackets
}

func (q *PacketQueue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.size
}

func (q *PacketQueue) Duration() int64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.duration
}

// Signal wakes any goroutine blocked in Get, used by Put's callers that
// mutate queue-adjacent state needing a wakeup without a new packet (the
// reader's continue_read_thread analogue lives in reader, not here).
func (q *PacketQueue) Signal() { q.cond.Broadcast() }
