package codec

import (
	"io"

	"github.com/avcore/goplay/internal/media"
)

func init() {
	Register("pcm_s16le", func(info media.StreamInfo) (Codec, error) { return newPCM(info, media.SampleS16), nil })
	Register("pcm_s32le", func(info media.StreamInfo) (Codec, error) { return newPCM(info, media.SampleS32), nil })
	Register("pcm_f32le", func(info media.StreamInfo) (Codec, error) { return newPCM(info, media.SampleF32), nil })
}

// pcm decodes already-uncompressed interleaved PCM packets straight into
// frames, the audio analogue of ffplay's pass-through path: the only real
// work is timestamp bookkeeping, carrying next_pts forward across packets
// that arrive without one of their own (spec §4.10).
type pcm struct {
	info   media.StreamInfo
	format media.SampleFormat

	pending []*media.Packet
	nextPTS int64
	hasNext bool

	flushed bool
}

func newPCM(info media.StreamInfo, format media.SampleFormat) *pcm {
	return &pcm{info: info, format: format}
}

func (p *pcm) SendPacket(pkt *media.Packet) error {
	if pkt.Kind == media.KindFlush {
		p.Flush()
		return nil
	}
	if pkt.Kind == media.KindNull {
		p.flushed = true
		return nil
	}
	p.pending = append(p.pending, pkt)
	return nil
}

func (p *pcm) ReceiveFrame() (*media.Frame, error) {
	if len(p.pending) == 0 {
		if p.flushed {
			return nil, io.EOF
		}
		return nil, ErrAgain
	}
	pkt := p.pending[0]
	p.pending = p.pending[1:]

	bps := media.BytesPerSample(p.format)
	frameBytes := bps * p.info.Channels
	if frameBytes == 0 {
		return nil, ErrAgain
	}
	nbSamples := len(pkt.Data) / frameBytes

	pts := pkt.PTS
	if pts == media.NoPTS && p.hasNext {
		pts = p.nextPTS
	}
	if pts != media.NoPTS {
		p.nextPTS = pts + int64(nbSamples)
		p.hasNext = true
	}

	ptsSeconds := 0.0
	if pts != media.NoPTS {
		ptsSeconds = media.Rational{Num: 1, Den: int64(p.info.SampleRate)}.Seconds(pts)
	}

	return &media.Frame{
		Kind:         media.Audio,
		PTS:          ptsSeconds,
		Duration:     float64(nbSamples) / float64(p.info.SampleRate),
		Pos:          -1,
		Serial:       pkt.Serial,
		SampleRate:   p.info.SampleRate,
		Channels:     p.info.Channels,
		SampleFormat: p.format,
		NumSamples:   nbSamples,
		Samples:      pkt.Data,
	}, nil
}

func (p *pcm) Flush() {
	p.pending = nil
	p.hasNext = false
	p.flushed = false
}
