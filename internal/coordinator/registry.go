// Package coordinator implements the VideoState aggregate (spec §4.6/§6):
// pipeline construction/teardown, pause/resume/seek/stream-switch, and
// key-binding command dispatch.
package coordinator

import (
	"github.com/avcore/goplay/internal/container/wire"
	"github.com/avcore/goplay/internal/media"
	"github.com/avcore/goplay/internal/reader"
)

// StreamOverrides narrows stream selection to specific codec ids (spec §6's
// --audio-codec=/--video-codec= flags), empty meaning "pick the first
// matching stream".
type StreamOverrides struct {
	AudioCodec string
	VideoCodec string
}

// SelectStreams builds a reader.Selection from a container's stream table:
// the first audio/video/subtitle stream matching any codec override, or
// simply the first of each kind otherwise. Attached-picture video streams
// are skipped, and the returned Selection's AttachedPicPacket is nil.
func SelectStreams(table wire.StreamTable, overrides StreamOverrides) reader.Selection {
	sel := reader.Selection{AudioIndex: -1, VideoIndex: -1, SubtitleIndex: -1}

	for _, s := range table.Streams {
		switch s.Kind {
		case media.Audio:
			if sel.AudioIndex == -1 && matchesCodec(s.CodecID, overrides.AudioCodec) {
				sel.AudioIndex = s.Index
			}
		case media.Video:
			if s.Attached {
				continue
			}
			if sel.VideoIndex == -1 && matchesCodec(s.CodecID, overrides.VideoCodec) {
				sel.VideoIndex = s.Index
			}
		case media.Subtitle:
			if sel.SubtitleIndex == -1 {
				sel.SubtitleIndex = s.Index
			}
		}
	}

	return sel
}

func matchesCodec(codecID, override string) bool {
	return override == "" || override == codecID
}

// StreamsByKind groups a stream table by kind, the way a "cycle to next
// audio/video/subtitle stream" key binding needs to enumerate candidates.
func StreamsByKind(table wire.StreamTable, kind media.StreamKind) []media.StreamInfo {
	var out []media.StreamInfo
	for _, s := range table.Streams {
		if s.Kind == kind && !s.Attached {
			out = append(out, s)
		}
	}
	return out
}

// NextIndex returns the stream-table index that follows current among
// candidates, wrapping around — the cycle-stream key-binding's core op.
func NextIndex(candidates []media.StreamInfo, current int) int {
	if len(candidates) == 0 {
		return -1
	}
	for i, s := range candidates {
		if s.Index == current {
			return candidates[(i+1)%len(candidates)].Index
		}
	}
	return candidates[0].Index
}
