package decode

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avcore/goplay/internal/decode/codec"
	"github.com/avcore/goplay/internal/media"
	"github.com/avcore/goplay/internal/queue"
)

// stubCodec turns every normal packet into a one-sample audio frame
// carrying the packet's own PTS, and tracks flush/drain like a real codec.
type stubCodec struct {
	pending []*media.Packet
	flushed bool
}

func (s *stubCodec) SendPacket(pkt *media.Packet) error {
	if pkt.Kind == media.KindFlush {
		s.Flush()
		return nil
	}
	if pkt.Kind == media.KindNull {
		s.flushed = true
		return nil
	}
	s.pending = append(s.pending, pkt)
	return nil
}

func (s *stubCodec) ReceiveFrame() (*media.Frame, error) {
	if len(s.pending) == 0 {
		if s.flushed {
			return nil, io.EOF
		}
		return nil, codec.ErrAgain
	}
	pkt := s.pending[0]
	s.pending = s.pending[1:]
	return &media.Frame{Kind: media.Audio, PTS: float64(pkt.PTS), Serial: pkt.Serial}, nil
}

func (s *stubCodec) Flush() {
	s.pending = nil
	s.flushed = false
}

func TestDriverRunDecodesQueuedPacketsIntoFrames(t *testing.T) {
	pq := queue.NewPacketQueue()
	pq.Start()
	fq := queue.NewFrameQueue(pq, 4, false)
	c := &stubCodec{}
	d := NewDriver(c, pq, fq, media.Audio, 0, nil)

	require.NoError(t, pq.Put(&media.Packet{PTS: 1}))
	require.NoError(t, pq.Put(&media.Packet{PTS: 2}))
	require.NoError(t, pq.PutNull(0))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	d.Run(ctx)

	f1, ok := fq.PeekReadable()
	require.True(t, ok)
	assert.Equal(t, 1.0, f1.PTS)
	fq.Next()

	f2, ok := fq.PeekReadable()
	require.True(t, ok)
	assert.Equal(t, 2.0, f2.PTS)
}

func TestDriverStopsOnPacketQueueAbort(t *testing.T) {
	pq := queue.NewPacketQueue()
	pq.Start()
	fq := queue.NewFrameQueue(pq, 4, false)
	c := &stubCodec{}
	d := NewDriver(c, pq, fq, media.Audio, 0, nil)

	done := make(chan struct{})
	go func() {
		d.Run(context.Background())
		close(done)
	}()

	pq.Abort()
	fq.Signal()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("driver did not stop after queue abort")
	}
}

func TestDriverDiscardsStalePendingAfterFlush(t *testing.T) {
	pq := queue.NewPacketQueue()
	pq.Start() // serial 1
	fq := queue.NewFrameQueue(pq, 4, false)
	c := &stubCodec{}
	d := NewDriver(c, pq, fq, media.Audio, 0, nil)

	require.NoError(t, pq.Put(&media.Packet{PTS: 1}))
	require.NoError(t, pq.Put(media.NewFlush())) // bumps to serial 2, stale above discarded
	require.NoError(t, pq.Put(&media.Packet{PTS: 9}))
	require.NoError(t, pq.PutNull(0))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	d.Run(ctx)

	f, ok := fq.PeekReadable()
	require.True(t, ok)
	assert.Equal(t, 9.0, f.PTS)
	fq.Next()
	assert.Equal(t, 0, fq.NbRemaining())
}

func TestDriverDrainedOnlyAfterNullDrainAndFrameQueueEmpty(t *testing.T) {
	pq := queue.NewPacketQueue()
	pq.Start()
	fq := queue.NewFrameQueue(pq, 4, false)
	c := &stubCodec{}
	d := NewDriver(c, pq, fq, media.Audio, 0, nil)

	assert.False(t, d.Drained(), "undecided stream must not report drained")

	require.NoError(t, pq.Put(&media.Packet{PTS: 1}))
	require.NoError(t, pq.PutNull(0))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	d.Run(ctx)

	assert.False(t, d.Drained(), "frame queue still holds the undrained tail")

	fq.Next()
	assert.True(t, d.Drained(), "codec signalled EOF and the frame queue is empty")
}

func TestDriverFlushUnfinishesStream(t *testing.T) {
	pq := queue.NewPacketQueue()
	pq.Start()
	fq := queue.NewFrameQueue(pq, 4, false)
	c := &stubCodec{}
	d := NewDriver(c, pq, fq, media.Audio, 0, nil)

	require.NoError(t, pq.Put(&media.Packet{PTS: 1}))
	require.NoError(t, pq.PutNull(0))
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	d.Run(ctx)
	cancel()
	fq.Next()
	require.True(t, d.Drained())

	require.NoError(t, pq.Put(media.NewFlush()))
	require.NoError(t, pq.Put(&media.Packet{PTS: 2}))
	require.NoError(t, pq.PutNull(0))
	ctx2, cancel2 := context.WithTimeout(context.Background(), time.Second)
	defer cancel2()
	d.Run(ctx2)

	assert.False(t, d.Drained(), "frame queue holds the new generation's frame")
	fq.Next()
	assert.True(t, d.Drained())
}
