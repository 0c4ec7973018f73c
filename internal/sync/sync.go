// Package sync implements the A/V synchronization math that keeps video
// frame pacing and audio sample counts tracking the selected master clock
// (spec §4.4): target-delay correction for video, a sample-count EWMA
// corrector for audio, and a speed nudge for the external clock.
package sync

import (
	"math"

	"github.com/avcore/goplay/internal/clock"
)

// Thresholds governing how aggressively video frame timing chases the
// master clock (spec §6).
const (
	AVSyncThresholdMin     = 0.04
	AVSyncThresholdMax     = 0.1
	AVSyncFramedupThreshold = 0.1
	AVNoSyncThreshold      = 10.0
)

// Thresholds governing the external clock's speed-nudge feedback loop.
const (
	ExternalClockSpeedMin   = 0.900
	ExternalClockSpeedMax   = 1.010
	ExternalClockSpeedStep  = 0.001
	ExternalClockMinFrames  = 2
	ExternalClockMaxFrames  = 10
)

// AudioDiffAVNB is the window (in consecutive measurements) over which the
// audio sample-count corrector averages the A/V difference before acting.
const AudioDiffAVNB = 20

// SampleCorrectionPercentMax bounds how far a single correction may scale
// the number of samples requested from the resampler.
const SampleCorrectionPercentMax = 10

// VideoDelay computes the corrected inter-frame delay for a video frame
// whose "natural" delay (from its own PTS spacing) is delay seconds. When
// video isn't the sync master, it nudges delay toward (or away from) the
// master clock by the observed drift, matching ffplay's compute_target_delay.
func VideoDelay(delay float64, videoClock *clock.Clock, master *clock.MasterClock, maxFrameDuration float64) float64 {
	if master.EffectiveSyncType() == clock.SyncVideoMaster {
		return delay
	}

	diff := videoClock.Get() - master.Get()
	threshold := math.Max(AVSyncThresholdMin, math.Min(AVSyncThresholdMax, delay))

	if math.IsNaN(diff) || math.Abs(diff) >= maxFrameDuration {
		return delay
	}
	switch {
	case diff <= -threshold:
		return math.Max(0, delay+diff)
	case diff >= threshold && delay > AVSyncFramedupThreshold:
		return delay + diff
	case diff >= threshold:
		return 2 * delay
	default:
		return delay
	}
}

// FrameDuration returns the PTS spacing between two consecutively decoded
// video frames. It returns 0 when the two frames carry different serials,
// and falls back to the frame's own stamped duration when the gap is
// absent, not positive or larger than maxFrameDuration.
func FrameDuration(curPTS, curDuration, nextPTS float64, curSerial, nextSerial int, maxFrameDuration float64) float64 {
	if curSerial != nextSerial {
		return 0
	}
	d := nextPTS - curPTS
	if math.IsNaN(d) || d <= 0 || d > maxFrameDuration {
		return curDuration
	}
	return d
}

// AudioCorrector estimates a running A/V drift for the audio path and
// proposes an adjusted sample count to pull it back in (spec §4.4,
// ffplay's synchronize_audio). It holds no reference to the clocks
// themselves; the caller supplies the measured diff each call.
type AudioCorrector struct {
	avgCoef   float64
	diffCum   float64
	avgCount  int
	threshold float64
}

// NewAudioCorrector configures the corrector's threshold from the audio
// device's buffer size and byte rate (audio_hw_buf_size / bytes_per_sec in
// ffplay) so corrections only kick in once the drift exceeds roughly one
// hardware buffer's worth of audio.
func NewAudioCorrector(hwBufSize, bytesPerSec int) *AudioCorrector {
	threshold := 0.0
	if bytesPerSec > 0 {
		threshold = float64(hwBufSize) / float64(bytesPerSec)
	}
	return &AudioCorrector{
		avgCoef:   math.Exp(math.Log(0.01) / AudioDiffAVNB),
		threshold: threshold,
	}
}

// WantedSamples folds in one new (audioClockValue - masterClockValue)
// measurement and returns how many samples the resampler should target for
// a block that would otherwise be nbSamples long, clamped to
// +/-SampleCorrectionPercentMax percent.
func (a *AudioCorrector) WantedSamples(diff float64, nbSamples, sampleRate int) int {
	if math.IsNaN(diff) || math.Abs(diff) >= AVNoSyncThreshold {
		a.avgCount = 0
		a.diffCum = 0
		return nbSamples
	}

	a.diffCum = diff + a.avgCoef*a.diffCum
	if a.avgCount < AudioDiffAVNB {
		a.avgCount++
		return nbSamples
	}

	avgDiff := a.diffCum * (1.0 - a.avgCoef)
	if math.Abs(avgDiff) < a.threshold {
		return nbSamples
	}

	wanted := nbSamples + int(diff*float64(sampleRate))
	min := nbSamples * (100 - SampleCorrectionPercentMax) / 100
	max := nbSamples * (100 + SampleCorrectionPercentMax) / 100
	if wanted < min {
		wanted = min
	}
	if wanted > max {
		wanted = max
	}
	return wanted
}

// ExternalClockSpeed slows the external clock down when a present media
// queue is running low (at most ExternalClockMinFrames packets), speeds it
// up when every present queue holds more than ExternalClockMaxFrames, and
// otherwise relaxes it back toward 1.0 (spec §4.4, ffplay's
// check_external_clock_speed).
func ExternalClockSpeed(ext *clock.Clock, videoPackets, audioPackets int, hasVideo, hasAudio bool) {
	starved := (hasVideo && videoPackets <= ExternalClockMinFrames) || (hasAudio && audioPackets <= ExternalClockMinFrames)
	saturated := (!hasVideo || videoPackets > ExternalClockMaxFrames) && (!hasAudio || audioPackets > ExternalClockMaxFrames)

	switch {
	case starved:
		ext.SetSpeed(math.Max(ExternalClockSpeedMin, ext.Speed()-ExternalClockSpeedStep))
	case saturated:
		ext.SetSpeed(math.Min(ExternalClockSpeedMax, ext.Speed()+ExternalClockSpeedStep))
	default:
		speed := ext.Speed()
		if speed != 1.0 {
			ext.SetSpeed(speed + ExternalClockSpeedStep*(1.0-speed)/math.Abs(1.0-speed))
		}
	}
}
