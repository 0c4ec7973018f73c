package queue

import (
	"sync"

	"github.com/avcore/goplay/internal/media"
)

// HardSizeCeiling is the hard ceiling on any FrameQueue capacity (spec §6:
// FRAME_QUEUE_SIZE = max(9, 3, 16) = 16).
const HardSizeCeiling = 16

// FrameQueue is a bounded circular buffer of decoded frames with a
// "keep last displayed" read pointer (spec §4.2). It observes — but does
// not own — a producer PacketQueue purely to learn the queue's abort flag
// and current serial; that relationship is a read-only handle, never
// ownership (spec §9).
type FrameQueue struct {
	mu   sync.Mutex
	cond *sync.Cond

	frames      []media.Frame
	rindex      int
	windex      int
	size        int // held count
	maxSize     int
	rindexShown int // 0 or 1
	keepLast    bool

	pktq *PacketQueue
}

// NewFrameQueue creates a queue of the given capacity (clamped to
// HardSizeCeiling) observing pktq's abort/serial state.
func NewFrameQueue(pktq *PacketQueue, maxSize int, keepLast bool) *FrameQueue {
	if maxSize > HardSizeCeiling {
		maxSize = HardSizeCeiling
	}
	if maxSize < 1 {
		maxSize = 1
	}
	fq := &FrameQueue{
		frames:  make([]media.Frame, maxSize),
		maxSize: maxSize,
		keepLast: keepLast,
		pktq:    pktq,
	}
	fq.cond = sync.NewCond(&fq.mu)
	return fq
}

func (fq *FrameQueue) aborted() bool { return fq.pktq != nil && fq.pktq.Aborted() }

// Signal wakes any goroutine blocked in PeekWritable/PeekReadable; called
// whenever the backing PacketQueue aborts.
func (fq *FrameQueue) Signal() {
	fq.mu.Lock()
	defer fq.mu.Unlock()
	fq.cond.Broadcast()
}

// PeekWritable waits for a free slot and returns it for the caller to fill,
// or ok=false if the queue aborted first.
func (fq *FrameQueue) PeekWritable() (frame *media.Frame, ok bool) {
	fq.mu.Lock()
	defer fq.mu.Unlock()
	for fq.size >= fq.maxSize && !fq.aborted() {
		fq.cond.Wait()
	}
	if fq.aborted() {
		return nil, false
	}
	return &fq.frames[fq.windex], true
}

// Push commits the slot most recently returned by PeekWritable.
func (fq *FrameQueue) Push() {
	fq.mu.Lock()
	defer fq.mu.Unlock()
	fq.windex = (fq.windex + 1) % fq.maxSize
	fq.size++
	fq.cond.Signal()
}

// PeekReadable waits until at least one unread frame is held and returns
// it, or ok=false if the queue aborted first.
func (fq *FrameQueue) PeekReadable() (frame *media.Frame, ok bool) {
	fq.mu.Lock()
	defer fq.mu.Unlock()
	for fq.size-fq.rindexShown <= 0 && !fq.aborted() {
		fq.cond.Wait()
	}
	if fq.aborted() {
		return nil, false
	}
	return &fq.frames[(fq.rindex+fq.rindexShown)%fq.maxSize], true
}

// Peek returns the current readable slot without blocking or checking
// availability; callers must have established availability via
// PeekReadable first.
func (fq *FrameQueue) Peek() *media.Frame {
	fq.mu.Lock()
	defer fq.mu.Unlock()
	return &fq.frames[(fq.rindex+fq.rindexShown)%fq.maxSize]
}

// PeekNext returns the slot after the current readable one (used by the
// video renderer to read the following frame's scheduled duration).
func (fq *FrameQueue) PeekNext() *media.Frame {
	fq.mu.Lock()
	defer fq.mu.Unlock()
	return &fq.frames[(fq.rindex+fq.rindexShown+1)%fq.maxSize]
}

// PeekLast returns the most recently retired ("last displayed") slot.
func (fq *FrameQueue) PeekLast() *media.Frame {
	fq.mu.Lock()
	defer fq.mu.Unlock()
	return &fq.frames[fq.rindex]
}

// Next retires the current readable frame. If keepLast is set and the
// current frame hasn't been "shown" yet, the first Next flips rindexShown
// to 1 and leaves the slot in place as "last displayed" instead of
// advancing — a redraw after resize can still reach it via PeekLast.
func (fq *FrameQueue) Next() {
	fq.mu.Lock()
	defer fq.mu.Unlock()
	if fq.keepLast && fq.rindexShown == 0 {
		fq.rindexShown = 1
		return
	}
	fq.rindex = (fq.rindex + 1) % fq.maxSize
	fq.rindexShown = 0
	if fq.keepLast {
		fq.rindexShown = 1
	}
	fq.size--
	fq.cond.Signal()
}

// NbRemaining is the number of frames available to read (held minus the
// slot pinned as "last displayed").
func (fq *FrameQueue) NbRemaining() int {
	fq.mu.Lock()
	defer fq.mu.Unlock()
	return fq.size - fq.rindexShown
}

// LastPos returns the byte position of the rindex slot iff it's currently
// shown (keep-last pinned) and its serial matches the producer's current
// serial; -1 otherwise (spec §4.2).
func (fq *FrameQueue) LastPos() int64 {
	fq.mu.Lock()
	defer fq.mu.Unlock()
	f := &fq.frames[fq.rindex]
	if fq.rindexShown != 0 && fq.pktq != nil && f.Serial == fq.pktq.Serial() {
		return f.Pos
	}
	return -1
}
