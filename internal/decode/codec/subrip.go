package codec

import (
	"io"
	"strings"

	"github.com/avcore/goplay/internal/media"
)

func init() {
	Register("subrip", func(info media.StreamInfo) (Codec, error) { return newSubRip(info), nil })
	Register("webvtt", func(info media.StreamInfo) (Codec, error) { return newSubRip(info), nil })
}

// subRip turns each subtitle packet's plain-text payload into a single
// full-frame text rect, displayed for the packet's own duration (spec
// §4.10). Real SubRip/WebVTT cue timing and positioning directives are out
// of scope; the container already splits cues into one packet each.
type subRip struct {
	pkt     *media.Packet
	flushed bool
}

func newSubRip(media.StreamInfo) *subRip { return &subRip{} }

func (s *subRip) SendPacket(pkt *media.Packet) error {
	if pkt.Kind == media.KindFlush {
		s.Flush()
		return nil
	}
	if pkt.Kind == media.KindNull {
		s.flushed = true
		return nil
	}
	s.pkt = pkt
	return nil
}

func (s *subRip) ReceiveFrame() (*media.Frame, error) {
	if s.pkt == nil {
		if s.flushed {
			return nil, io.EOF
		}
		return nil, ErrAgain
	}
	pkt := s.pkt
	s.pkt = nil

	text := strings.TrimRight(string(pkt.Data), "\r\n")
	pts := 0.0
	if pkt.PTS != media.NoPTS {
		pts = pkt.Timebase.Seconds(pkt.PTS)
	}
	duration := pkt.DurationSeconds()

	return &media.Frame{
		Kind:             media.Subtitle,
		PTS:              pts,
		Duration:         duration,
		Pos:              -1,
		Serial:           pkt.Serial,
		Rects:            []media.SubtitleRect{{Text: text}},
		StartDisplayTime: 0,
		EndDisplayTime:   duration,
	}, nil
}

func (s *subRip) Flush() {
	s.pkt = nil
	s.flushed = false
}
