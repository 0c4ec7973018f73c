package codec

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avcore/goplay/internal/media"
)

func TestNewUnknownCodecIDErrors(t *testing.T) {
	_, err := New(media.StreamInfo{CodecID: "nonexistent"})
	require.Error(t, err)
}

func TestPCMSendReceiveProducesOneFrame(t *testing.T) {
	info := media.StreamInfo{CodecID: "pcm_s16le", SampleRate: 44100, Channels: 2}
	c, err := New(info)
	require.NoError(t, err)

	data := make([]byte, 4*10) // 10 frames of s16 stereo
	require.NoError(t, c.SendPacket(&media.Packet{PTS: 0, Data: data, Serial: 3}))

	f, err := c.ReceiveFrame()
	require.NoError(t, err)
	assert.Equal(t, media.Audio, f.Kind)
	assert.Equal(t, 10, f.NumSamples)
	assert.Equal(t, 3, f.Serial)

	_, err = c.ReceiveFrame()
	assert.ErrorIs(t, err, ErrAgain)
}

func TestPCMCarriesPTSForwardWhenMissing(t *testing.T) {
	info := media.StreamInfo{CodecID: "pcm_s16le", SampleRate: 100, Channels: 1}
	c, err := New(info)
	require.NoError(t, err)

	require.NoError(t, c.SendPacket(&media.Packet{PTS: 0, Data: make([]byte, 2*50)}))
	f1, err := c.ReceiveFrame()
	require.NoError(t, err)
	assert.Equal(t, 0.0, f1.PTS)

	require.NoError(t, c.SendPacket(&media.Packet{PTS: media.NoPTS, Data: make([]byte, 2*25)}))
	f2, err := c.ReceiveFrame()
	require.NoError(t, err)
	assert.InDelta(t, 0.5, f2.PTS, 1e-9) // 50 samples in at 100Hz
}

func TestPCMNullDrainsToEOF(t *testing.T) {
	info := media.StreamInfo{CodecID: "pcm_s16le", SampleRate: 100, Channels: 1}
	c, err := New(info)
	require.NoError(t, err)

	require.NoError(t, c.SendPacket(media.NewNull(0)))
	_, err = c.ReceiveFrame()
	assert.ErrorIs(t, err, io.EOF)
}

func TestPCMFlushDiscardsPending(t *testing.T) {
	info := media.StreamInfo{CodecID: "pcm_s16le", SampleRate: 100, Channels: 1}
	c, err := New(info)
	require.NoError(t, err)

	require.NoError(t, c.SendPacket(&media.Packet{Data: make([]byte, 2)}))
	c.Flush()
	_, err = c.ReceiveFrame()
	assert.ErrorIs(t, err, ErrAgain)
}

func TestRawVideoOnePacketOneFrame(t *testing.T) {
	info := media.StreamInfo{CodecID: "rawvideo_yuv420p", Width: 4, Height: 2}
	c, err := New(info)
	require.NoError(t, err)

	require.NoError(t, c.SendPacket(&media.Packet{Data: []byte{1, 2, 3}, Serial: 7}))
	f, err := c.ReceiveFrame()
	require.NoError(t, err)
	assert.Equal(t, media.Video, f.Kind)
	assert.Equal(t, 4, f.Width)
	assert.Equal(t, 7, f.Serial)

	_, err = c.ReceiveFrame()
	assert.ErrorIs(t, err, ErrAgain)
}

func TestSubRipTrimsTrailingNewlines(t *testing.T) {
	c, err := New(media.StreamInfo{CodecID: "subrip"})
	require.NoError(t, err)

	require.NoError(t, c.SendPacket(&media.Packet{Data: []byte("hello world\r\n"), Duration: 2, Timebase: media.Rational{Num: 1, Den: 1}}))
	f, err := c.ReceiveFrame()
	require.NoError(t, err)
	require.Len(t, f.Rects, 1)
	assert.Equal(t, "hello world", f.Rects[0].Text)
	assert.Equal(t, 2.0, f.EndDisplayTime)
}

func TestWebVTTSharesSubRipDecoder(t *testing.T) {
	a, err := New(media.StreamInfo{CodecID: "subrip"})
	require.NoError(t, err)
	b, err := New(media.StreamInfo{CodecID: "webvtt"})
	require.NoError(t, err)
	assert.IsType(t, a, b)
}
