// Package reader implements the demux loop that pulls packets out of a
// source.Container and routes them into the per-stream PacketQueues,
// handling backpressure, pause, byte-seek, loop-to-start and end-of-stream
// (spec §4.6, adapted from ffplay's read_thread).
package reader

import (
	"context"
	stderrors "errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/avcore/goplay/internal/clock"
	"github.com/avcore/goplay/internal/container/wire"
	perrors "github.com/avcore/goplay/internal/errors"
	"github.com/avcore/goplay/internal/media"
	"github.com/avcore/goplay/internal/queue"
	"github.com/avcore/goplay/internal/source"
)

// MinFrames is the packet count a stream's queue must exceed before it's
// considered "enough buffered" for backpressure purposes (spec §6).
const MinFrames = 25

// MaxQueueSize is the combined byte ceiling across all per-stream queues
// before the reader throttles regardless of per-stream packet counts.
const MaxQueueSize = 15 * 1024 * 1024

// Selection records which stream-table indices feed which logical queue;
// -1 means that stream is absent. Built by the coordinator's stream
// registry from the container's stream table.
type Selection struct {
	AudioIndex    int
	VideoIndex    int
	SubtitleIndex int
	// AttachedPicPacket, if non-nil, is queued once to the video queue
	// immediately followed by a null packet (cover art, spec §4.6 step 3).
	AttachedPicPacket *media.Packet
}

// Drainer reports whether a stream's decoder has produced every frame it
// ever will for the current packet-queue generation and its frame queue
// has nothing left for a renderer to pull (decode.Driver implements this).
// Reader uses it, alongside packet-queue emptiness, to decide when it's
// actually safe to loop back to the start or settle on end-of-stream
// (spec §4.6 step 5) — packet-queue-empty alone can be true while a frame
// queue still holds the undrained tail.
type Drainer interface {
	Drained() bool
}

// SeekRequest asks the reader to byte-seek to Pos before resuming
// sequential reads and flush every queue (spec §4.6 step 2). Our wire
// format carries no timestamp index, so only byte-accurate seeking is
// supported — the same fallback path ffplay takes for AVSEEK_FLAG_BYTE.
type SeekRequest struct {
	Pos int64
}

// Reader drives one container's demux loop.
type Reader struct {
	container source.Container
	demux     *wire.Reader
	logger    *slog.Logger

	sel    Selection
	queues map[int]*queue.PacketQueue

	extClock *clock.Clock

	loop      int // 0 = infinite, 1 = no looping, N = play N times
	startByte int64
	limiter   *rate.Limiter
	drainers  []Drainer

	paused   atomic.Bool
	eof      atomic.Bool
	mu       sync.Mutex
	seekReq  *SeekRequest
	queueAttachments bool

	wake chan struct{}
}

// New constructs a Reader. queues must already contain an entry for every
// index referenced by sel that isn't -1.
func New(container source.Container, sel Selection, queues map[int]*queue.PacketQueue, extClock *clock.Clock, loop int, logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{
		container:        container,
		demux:            wire.NewReader(container),
		logger:           logger,
		sel:              sel,
		queues:           queues,
		extClock:         extClock,
		loop:             loop,
		queueAttachments: sel.AttachedPicPacket != nil,
		limiter:          rate.NewLimiter(rate.Every(10*time.Millisecond), 1),
		wake:             make(chan struct{}, 1),
	}
}

// SetDrainers registers the per-stream decoders whose Drained() state
// gates the loop-to-start/EOF decision. Call before Run starts; entries
// may be nil for streams with no renderer wired.
func (r *Reader) SetDrainers(drainers []Drainer) {
	r.drainers = drainers
}

// SetPaused toggles whether Run treats the container as paused (stops
// issuing new reads but doesn't close anything).
func (r *Reader) SetPaused(paused bool) {
	r.paused.Store(paused)
	r.nudge()
}

// RequestSeek queues a byte-seek to be handled on the reader's own
// goroutine between packets.
func (r *Reader) RequestSeek(req SeekRequest) {
	r.mu.Lock()
	r.seekReq = &req
	r.mu.Unlock()
	r.nudge()
}

func (r *Reader) nudge() {
	select {
	case r.wake <- struct{}{}:
	default:
	}
}

// EOF reports whether the last read hit end-of-stream and null packets
// have been queued to every active stream.
func (r *Reader) EOF() bool { return r.eof.Load() }

// Run executes the demux loop until ctx is cancelled or every queue
// aborts. It is meant to run in its own goroutine.
func (r *Reader) Run(ctx context.Context) error {
	if r.queueAttachments {
		r.handleQueueAttachments()
	}

	for {
		if ctx.Err() != nil {
			return nil
		}

		aborted := len(r.queues) > 0
		for _, q := range r.queues {
			if !q.Aborted() {
				aborted = false
				break
			}
		}
		if aborted {
			return nil
		}

		if r.paused.Load() {
			r.waitOrWake(ctx, 10*time.Millisecond)
			continue
		}

		if req := r.takeSeekRequest(); req != nil {
			if err := r.handleSeek(*req); err != nil {
				r.logger.Error("seek failed", "error", err)
			}
			continue
		}

		if r.handleQueueFull() {
			r.waitOrWake(ctx, 10*time.Millisecond)
			continue
		}

		if r.loop != 1 && r.streamsDrained() {
			if r.loop != 0 {
				r.loop--
			}
			r.RequestSeek(SeekRequest{Pos: r.startByte})
			continue
		}

		pkt, err := r.demux.ReadPacket()
		if err != nil {
			if err == io.EOF {
				if !r.eof.Load() {
					r.putNulls()
					r.eof.Store(true)
				}
				r.waitOrWake(ctx, 10*time.Millisecond)
				continue
			}
			return err
		}
		r.eof.Store(false)

		q, ok := r.queues[pkt.StreamIndex]
		if !ok {
			continue
		}
		if err := q.Put(pkt); err != nil {
			if stderrors.Is(err, perrors.ErrAborted) {
				return nil
			}
			return err
		}
	}
}

func (r *Reader) takeSeekRequest() *SeekRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	req := r.seekReq
	r.seekReq = nil
	return req
}

func (r *Reader) handleSeek(req SeekRequest) error {
	if _, err := r.container.Seek(req.Pos, io.SeekStart); err != nil {
		return err
	}
	for _, q := range r.queues {
		q.Flush()
		_ = q.Put(media.NewFlush())
	}
	if r.extClock != nil {
		r.extClock.Set(float64(req.Pos), 0)
	}
	r.eof.Store(false)
	return nil
}

func (r *Reader) handleQueueAttachments() {
	q, ok := r.queues[r.sel.VideoIndex]
	if !ok || r.sel.AttachedPicPacket == nil {
		return
	}
	_ = q.Put(r.sel.AttachedPicPacket)
	_ = q.PutNull(r.sel.VideoIndex)
}

func (r *Reader) putNulls() {
	if r.sel.AudioIndex >= 0 {
		if q, ok := r.queues[r.sel.AudioIndex]; ok {
			_ = q.PutNull(r.sel.AudioIndex)
		}
	}
	if r.sel.VideoIndex >= 0 {
		if q, ok := r.queues[r.sel.VideoIndex]; ok {
			_ = q.PutNull(r.sel.VideoIndex)
		}
	}
	if r.sel.SubtitleIndex >= 0 {
		if q, ok := r.queues[r.sel.SubtitleIndex]; ok {
			_ = q.PutNull(r.sel.SubtitleIndex)
		}
	}
}

// streamHasEnough mirrors ffplay's stream_has_enough_packets: absent
// streams and aborted queues never block progress; otherwise we want more
// than MinFrames packets buffered and, once we know the queue's
// duration, at least a second's worth.
func streamHasEnough(streamIndex int, q *queue.PacketQueue, timebaseSeconds func(int64) float64) bool {
	if streamIndex < 0 || q == nil || q.Aborted() {
		return true
	}
	if q.NbPackets() <= MinFrames {
		return false
	}
	dur := q.Duration()
	return dur == 0 || timebaseSeconds(dur) > 1.0
}

func (r *Reader) handleQueueFull() bool {
	total := 0
	for _, q := range r.queues {
		total += q.Size()
	}
	if total > MaxQueueSize {
		return true
	}
	allEnough := true
	for idx, q := range r.queues {
		if !streamHasEnough(idx, q, func(ticks int64) float64 { return float64(ticks) / 1e6 }) {
			allEnough = false
			break
		}
	}
	return allEnough
}

func (r *Reader) streamsDrained() bool {
	if r.paused.Load() {
		return false
	}
	for _, q := range r.queues {
		if q.NbPackets() > 0 {
			return false
		}
	}
	if !r.eof.Load() {
		return false
	}
	for _, d := range r.drainers {
		if d != nil && !d.Drained() {
			return false
		}
	}
	return true
}

func (r *Reader) waitOrWake(ctx context.Context, d time.Duration) {
	_ = r.limiter.Wait(ctx)
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-r.wake:
	case <-t.C:
	}
}
