package render

import (
	"math"

	"github.com/gordonklaus/portaudio"

	"github.com/avcore/goplay/internal/errors"
	"github.com/avcore/goplay/internal/media"
)

// PortaudioDevice is the real AudioDevice backend, driven by portaudio's
// own callback thread exactly as spec §4.8/§5 describe (the callback
// never touches anything but the frame queue's synchronization).
type PortaudioDevice struct {
	stream     *portaudio.Stream
	sampleRate int
	channels   int
	bufSize    int
	format     media.SampleFormat

	pull func(buf []byte)
}

// NewPortaudioDevice opens the default output device for the requested
// sample rate/channels/format, sizing its buffer the way ffplay's
// audio_open clamps to a minimum hardware buffer.
func NewPortaudioDevice(sampleRate, channels int, format media.SampleFormat) (*PortaudioDevice, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, errors.New(errors.KindDevice, "portaudio.init", err)
	}
	framesPerBuffer := sampleRate / 30 // ~33ms periods, SDL_AUDIO_MIN_BUFFER_SIZE analogue
	if framesPerBuffer < 512 {
		framesPerBuffer = 512
	}
	d := &PortaudioDevice{
		sampleRate: sampleRate,
		channels:   channels,
		format:     format,
		bufSize:    framesPerBuffer * channels * media.BytesPerSample(format),
	}

	switch format {
	case media.SampleS16:
		stream, err := portaudio.OpenDefaultStream(0, channels, float64(sampleRate), framesPerBuffer, d.callbackS16)
		if err != nil {
			return nil, errors.New(errors.KindDevice, "portaudio.open", err)
		}
		d.stream = stream
	default:
		stream, err := portaudio.OpenDefaultStream(0, channels, float64(sampleRate), framesPerBuffer, d.callbackF32)
		if err != nil {
			return nil, errors.New(errors.KindDevice, "portaudio.open", err)
		}
		d.stream = stream
	}
	return d, nil
}

func (d *PortaudioDevice) callbackS16(out []int16) {
	buf := make([]byte, len(out)*2)
	if d.pull != nil {
		d.pull(buf)
	}
	for i := range out {
		out[i] = int16(uint16(buf[2*i]) | uint16(buf[2*i+1])<<8)
	}
}

func (d *PortaudioDevice) callbackF32(out []float32) {
	buf := make([]byte, len(out)*4)
	if d.pull != nil {
		d.pull(buf)
	}
	for i := range out {
		bits := uint32(buf[4*i]) | uint32(buf[4*i+1])<<8 | uint32(buf[4*i+2])<<16 | uint32(buf[4*i+3])<<24
		out[i] = math.Float32frombits(bits)
	}
}

func (d *PortaudioDevice) Start(pull func(buf []byte)) error {
	d.pull = pull
	if err := d.stream.Start(); err != nil {
		return errors.New(errors.KindDevice, "portaudio.start", err)
	}
	return nil
}

func (d *PortaudioDevice) Stop() error {
	if err := d.stream.Stop(); err != nil {
		return errors.New(errors.KindDevice, "portaudio.stop", err)
	}
	return d.stream.Close()
}

func (d *PortaudioDevice) BufferSize() int  { return d.bufSize }
func (d *PortaudioDevice) SampleRate() int  { return d.sampleRate }
func (d *PortaudioDevice) Channels() int    { return d.channels }
func (d *PortaudioDevice) BytesPerSec() int {
	return d.sampleRate * d.channels * media.BytesPerSample(d.format)
}
