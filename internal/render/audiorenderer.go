package render

import (
	"encoding/binary"
	"log/slog"
	"math"
	"sync/atomic"

	"github.com/avcore/goplay/internal/clock"
	"github.com/avcore/goplay/internal/media"
	"github.com/avcore/goplay/internal/queue"
	gsync "github.com/avcore/goplay/internal/sync"
)

// MaxVolume is the renderer's full-scale volume level (spec §6's
// --volume=0-100 maps onto 0..MaxVolume).
const MaxVolume = 100

// AudioRenderer answers an AudioDevice's pull callback by draining the
// audio FrameQueue, applying the sample-count correction the Synchronizer
// computes, mixing in volume/mute, and re-anchoring the audio clock to
// when the hardware will actually play what it was just handed (spec
// §4.8, ffplay's sdl_audio_callback).
type AudioRenderer struct {
	frameq *queue.FrameQueue
	audioq *queue.PacketQueue // serial source; a flush invalidates buffered frames
	audclk *clock.Clock
	extclk *clock.Clock
	device AudioDevice
	corr   *gsync.AudioCorrector
	master *clock.MasterClock
	logger *slog.Logger

	volume int32 // atomic, 0..MaxVolume
	muted  int32 // atomic bool

	buf       []byte
	bufIndex  int
	bufFormat media.SampleFormat
	lastDecodedPTS float64
	lastDecodedSerial int
	hwBufSize int
}

func NewAudioRenderer(frameq *queue.FrameQueue, audioq *queue.PacketQueue, audclk, extclk *clock.Clock, device AudioDevice, master *clock.MasterClock, logger *slog.Logger) *AudioRenderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &AudioRenderer{
		frameq:    frameq,
		audioq:    audioq,
		audclk:    audclk,
		extclk:    extclk,
		device:    device,
		master:    master,
		logger:    logger,
		corr:      gsync.NewAudioCorrector(device.BufferSize(), device.BytesPerSec()),
		volume:    MaxVolume,
		hwBufSize: device.BufferSize(),
	}
}

func (a *AudioRenderer) SetVolume(v int) {
	if v < 0 {
		v = 0
	}
	if v > MaxVolume {
		v = MaxVolume
	}
	atomic.StoreInt32(&a.volume, int32(v))
}

func (a *AudioRenderer) Volume() int { return int(atomic.LoadInt32(&a.volume)) }

func (a *AudioRenderer) SetMuted(m bool) {
	v := int32(0)
	if m {
		v = 1
	}
	atomic.StoreInt32(&a.muted, v)
}

func (a *AudioRenderer) Muted() bool { return atomic.LoadInt32(&a.muted) != 0 }

// Start begins pulling frames in response to the device's callback.
func (a *AudioRenderer) Start() error {
	return a.device.Start(a.pull)
}

func (a *AudioRenderer) Stop() error { return a.device.Stop() }

// pull is invoked on the device's own callback goroutine (spec §5); it
// must never block on anything but the frame queue's own synchronization.
func (a *AudioRenderer) pull(out []byte) {
	for len(out) > 0 {
		if a.bufIndex >= len(a.buf) {
			size := a.decodeFrame()
			if size < 0 {
				a.buf = nil
			}
			a.bufIndex = 0
		}
		n := len(a.buf) - a.bufIndex
		if n > len(out) {
			n = len(out)
		}
		if n <= 0 {
			// Nothing decoded this round; emit silence for the remainder
			// rather than spin.
			for i := range out {
				out[i] = 0
			}
			break
		}

		muted := a.Muted()
		vol := a.Volume()
		switch {
		case !muted && vol == MaxVolume:
			copy(out[:n], a.buf[a.bufIndex:a.bufIndex+n])
		case !muted:
			mix(out[:n], a.buf[a.bufIndex:a.bufIndex+n], vol, a.bufFormat)
		default:
			for i := 0; i < n; i++ {
				out[i] = 0
			}
		}

		out = out[n:]
		a.bufIndex += n
	}

	writeBufSize := len(a.buf) - a.bufIndex
	if !math.IsNaN(a.lastDecodedPTS) {
		driftCompensation := float64(2*a.hwBufSize+writeBufSize) / float64(a.device.BytesPerSec())
		a.audclk.Set(a.lastDecodedPTS-driftCompensation, a.lastDecodedSerial)
		a.extclk.SyncTo(a.audclk)
	}
}

// decodeFrame pulls one frame (applying the sample-count correction) and
// returns the number of PCM bytes now available in a.buf, or -1 if none
// could be produced.
func (a *AudioRenderer) decodeFrame() int {
	var frame *media.Frame
	for {
		if a.frameq.NbRemaining() == 0 {
			return -1
		}
		frame = a.frameq.Peek()
		a.frameq.Next()
		if frame.Serial == a.audioq.Serial() {
			break
		}
		// Stale epoch left over from before a flush; discard and retry
		// (ffplay's do { af = peek; next } while af->serial != audioq.serial).
	}

	nbSamples := frame.NumSamples
	if a.master.EffectiveSyncType() != clock.SyncAudioMaster {
		diff := a.audclk.Get() - a.master.Get()
		nbSamples = a.corr.WantedSamples(diff, frame.NumSamples, frame.SampleRate)
	}

	a.buf = resample(frame, nbSamples)
	a.bufFormat = frame.SampleFormat

	if !math.IsNaN(frame.PTS) {
		a.lastDecodedPTS = frame.PTS + float64(frame.NumSamples)/float64(frame.SampleRate)
	}
	a.lastDecodedSerial = frame.Serial
	return len(a.buf)
}

// resample returns wanted samples' worth of PCM from frame, truncating or
// padding with silence — a stand-in for a real resampler's sample-rate
// conversion (spec §4.10 notes codecs are passthrough; this is the one
// place a real SRC library would plug in).
func resample(frame *media.Frame, wanted int) []byte {
	bps := media.BytesPerSample(frame.SampleFormat)
	frameBytes := bps * frame.Channels
	wantedBytes := wanted * frameBytes
	if wantedBytes <= len(frame.Samples) {
		return frame.Samples[:wantedBytes]
	}
	out := make([]byte, wantedBytes)
	copy(out, frame.Samples)
	return out
}

// mix scales PCM samples by volume/MaxVolume in place, decoding each sample
// to its native width before scaling rather than touching raw bytes — a
// byte-at-a-time scale would tear multi-byte samples and corrupt the sign/
// magnitude bits ffplay's SDL_MixAudioFormat instead operates on whole
// samples. dst and src are assumed sample-frame aligned, which holds as
// long as the audio device always pulls whole-frame-sized chunks.
func mix(dst, src []byte, volume int, format media.SampleFormat) {
	bps := media.BytesPerSample(format)
	i := 0
	for ; i+bps <= len(dst); i += bps {
		switch {
		case bps == 2:
			s := int16(binary.LittleEndian.Uint16(src[i:]))
			scaled := int16(int32(s) * int32(volume) / MaxVolume)
			binary.LittleEndian.PutUint16(dst[i:], uint16(scaled))
		case bps == 4 && format == media.SampleF32:
			f := math.Float32frombits(binary.LittleEndian.Uint32(src[i:]))
			scaled := f * float32(volume) / float32(MaxVolume)
			binary.LittleEndian.PutUint32(dst[i:], math.Float32bits(scaled))
		case bps == 4:
			s := int32(binary.LittleEndian.Uint32(src[i:]))
			scaled := int32(int64(s) * int64(volume) / MaxVolume)
			binary.LittleEndian.PutUint32(dst[i:], uint32(scaled))
		default:
			dst[i] = byte(int(src[i]) * volume / MaxVolume)
		}
	}
	// Leftover bytes shorter than one sample (shouldn't happen for aligned
	// pulls): pass through unscaled rather than drop them.
	for ; i < len(dst); i++ {
		dst[i] = src[i]
	}
}
