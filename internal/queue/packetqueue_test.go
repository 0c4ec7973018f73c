package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/avcore/goplay/internal/errors"
	"github.com/avcore/goplay/internal/media"
)

func TestPacketQueueStartBumpsSerial(t *testing.T) {
	q := NewPacketQueue()
	assert.Equal(t, 0, q.Serial())
	q.Start()
	assert.Equal(t, 1, q.Serial())

	pkt, serial, err := q.Get(false)
	require.NoError(t, err)
	require.NotNil(t, pkt)
	assert.Equal(t, media.KindFlush, pkt.Kind)
	assert.Equal(t, 1, serial)
}

func TestPacketQueuePutStampsCurrentSerial(t *testing.T) {
	q := NewPacketQueue()
	q.Start()
	_, _, _ = q.Get(false) // drain the Start flush

	err := q.Put(&media.Packet{StreamIndex: 0, Data: []byte("abc")})
	require.NoError(t, err)

	pkt, serial, err := q.Get(false)
	require.NoError(t, err)
	assert.Equal(t, 1, serial)
	assert.Equal(t, 1, pkt.Serial)
}

func TestPacketQueueFlushPreservesSerial(t *testing.T) {
	q := NewPacketQueue()
	q.Start()
	require.NoError(t, q.Put(&media.Packet{Data: []byte("x")}))
	assert.Equal(t, 2, q.NbPackets()) // the Start flush sentinel plus "x"

	before := q.Serial()
	q.Flush()
	assert.Equal(t, 0, q.NbPackets())
	assert.Equal(t, before, q.Serial())
}

func TestPacketQueueSizeAccountingIncludesOverhead(t *testing.T) {
	q := NewPacketQueue()
	data := make([]byte, 100)
	require.NoError(t, q.Put(&media.Packet{Data: data}))
	assert.Equal(t, 100+media.PerEntryOverhead, q.Size())

	_, _, err := q.Get(false)
	require.NoError(t, err)
	assert.Equal(t, 0, q.Size())
}

func TestPacketQueueGetNonBlockingEmptyReturnsNil(t *testing.T) {
	q := NewPacketQueue()
	pkt, serial, err := q.Get(false)
	require.NoError(t, err)
	assert.Nil(t, pkt)
	assert.Equal(t, 0, serial)
}

func TestPacketQueueAbortUnblocksGet(t *testing.T) {
	q := NewPacketQueue()
	done := make(chan error, 1)
	go func() {
		_, _, err := q.Get(true)
		done <- err
	}()
	q.Abort()
	err := <-done
	assert.True(t, errors.Is(err, errors.KindResource))
	assert.ErrorIs(t, err, errors.ErrAborted)
}

func TestPacketQueuePutAfterAbortFails(t *testing.T) {
	q := NewPacketQueue()
	q.Abort()
	err := q.Put(&media.Packet{})
	assert.ErrorIs(t, err, errors.ErrAborted)
}

// Property: every packet pulled off the queue in FIFO order carries the
// serial that was current at the moment it was put, regardless of how many
// flushes are interleaved (spec §3's serial-stamping invariant).
func TestPacketQueueSerialMonotonicFIFO(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		q := NewPacketQueue()
		ops := rapid.SliceOfN(rapid.SampledFrom([]string{"put", "flush"}), 1, 50).Draw(t, "ops")

		var want []int
		serial := 0
		for _, op := range ops {
			if op == "flush" {
				serial++
				require.NoError(t, q.Put(media.NewFlush()))
				continue
			}
			want = append(want, serial)
			require.NoError(t, q.Put(&media.Packet{Data: []byte{1}}))
		}

		for i := 0; i < len(ops); i++ {
			pkt, s, err := q.Get(false)
			require.NoError(t, err)
			require.NotNil(t, pkt)
			if pkt.Kind == media.KindFlush {
				continue
			}
			require.NotEmpty(t, want)
			assert.Equal(t, want[0], s)
			want = want[1:]
		}
		assert.Empty(t, want)
	})
}
