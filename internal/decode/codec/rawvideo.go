package codec

import (
	"io"

	"github.com/avcore/goplay/internal/media"
)

func init() {
	Register("rawvideo_yuv420p", func(info media.StreamInfo) (Codec, error) { return newRawVideo(info, media.PixelYUV420P), nil })
	Register("rawvideo_rgba", func(info media.StreamInfo) (Codec, error) { return newRawVideo(info, media.PixelRGBA), nil })
}

// rawVideo reshapes already-uncompressed video packets into frames — the
// video analogue of pcm.go. One packet always yields exactly one frame, so
// there's no internal buffering beyond the single in-flight packet.
type rawVideo struct {
	info   media.StreamInfo
	format media.PixelFormat

	pkt      *media.Packet
	flushed  bool
}

func newRawVideo(info media.StreamInfo, format media.PixelFormat) *rawVideo {
	return &rawVideo{info: info, format: format}
}

func (d *rawVideo) SendPacket(pkt *media.Packet) error {
	if pkt.Kind == media.KindFlush {
		d.Flush()
		return nil
	}
	if pkt.Kind == media.KindNull {
		d.flushed = true
		return nil
	}
	d.pkt = pkt
	return nil
}

func (d *rawVideo) ReceiveFrame() (*media.Frame, error) {
	if d.pkt == nil {
		if d.flushed {
			return nil, io.EOF
		}
		return nil, ErrAgain
	}
	pkt := d.pkt
	d.pkt = nil

	pts := 0.0
	if pkt.PTS != media.NoPTS {
		pts = pkt.Timebase.Seconds(pkt.PTS)
	}

	return &media.Frame{
		Kind:         media.Video,
		PTS:          pts,
		Duration:     pkt.DurationSeconds(),
		Pos:          -1,
		Serial:       pkt.Serial,
		Width:        d.info.Width,
		Height:       d.info.Height,
		SampleAspect: d.info.SampleAspect,
		PixelFormat:  d.format,
		Pixels:       pkt.Data,
	}, nil
}

func (d *rawVideo) Flush() {
	d.pkt = nil
	d.flushed = false
}
