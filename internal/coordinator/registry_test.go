package coordinator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/avcore/goplay/internal/container/wire"
	"github.com/avcore/goplay/internal/media"
)

func sampleTable() wire.StreamTable {
	return wire.StreamTable{Streams: []media.StreamInfo{
		{Index: 0, Kind: media.Audio, CodecID: "pcm_s16le"},
		{Index: 1, Kind: media.Video, CodecID: "rawvideo_yuv420p"},
		{Index: 2, Kind: media.Video, CodecID: "rawvideo_rgba", Attached: true},
		{Index: 3, Kind: media.Subtitle, CodecID: "subrip"},
		{Index: 4, Kind: media.Audio, CodecID: "pcm_f32le"},
	}}
}

func TestSelectStreamsPicksFirstOfEachKind(t *testing.T) {
	sel := SelectStreams(sampleTable(), StreamOverrides{})
	assert.Equal(t, 0, sel.AudioIndex)
	assert.Equal(t, 1, sel.VideoIndex)
	assert.Equal(t, 3, sel.SubtitleIndex)
}

func TestSelectStreamsSkipsAttachedPicture(t *testing.T) {
	table := wire.StreamTable{Streams: []media.StreamInfo{
		{Index: 0, Kind: media.Video, CodecID: "rawvideo_rgba", Attached: true},
		{Index: 1, Kind: media.Video, CodecID: "rawvideo_yuv420p"},
	}}
	sel := SelectStreams(table, StreamOverrides{})
	assert.Equal(t, 1, sel.VideoIndex)
}

func TestSelectStreamsHonorsCodecOverride(t *testing.T) {
	sel := SelectStreams(sampleTable(), StreamOverrides{AudioCodec: "pcm_f32le"})
	assert.Equal(t, 4, sel.AudioIndex)
}

func TestSelectStreamsNoMatchLeavesIndexUnset(t *testing.T) {
	sel := SelectStreams(sampleTable(), StreamOverrides{AudioCodec: "nonexistent"})
	assert.Equal(t, -1, sel.AudioIndex)
}

func TestStreamsByKindExcludesAttached(t *testing.T) {
	videos := StreamsByKind(sampleTable(), media.Video)
	assert.Len(t, videos, 1)
	assert.Equal(t, 1, videos[0].Index)
}

func TestNextIndexWrapsAround(t *testing.T) {
	candidates := []media.StreamInfo{{Index: 0}, {Index: 4}}
	assert.Equal(t, 4, NextIndex(candidates, 0))
	assert.Equal(t, 0, NextIndex(candidates, 4))
}

func TestNextIndexEmptyCandidatesReturnsNegativeOne(t *testing.T) {
	assert.Equal(t, -1, NextIndex(nil, 0))
}

func TestNextIndexUnknownCurrentReturnsFirst(t *testing.T) {
	candidates := []media.StreamInfo{{Index: 7}, {Index: 9}}
	assert.Equal(t, 7, NextIndex(candidates, 99))
}
