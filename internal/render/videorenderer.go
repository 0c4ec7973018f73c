package render

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/avcore/goplay/internal/clock"
	"github.com/avcore/goplay/internal/media"
	"github.com/avcore/goplay/internal/queue"
	gsync "github.com/avcore/goplay/internal/sync"
)

// MaxFrameDuration bounds how large a PTS gap between consecutive frames
// is trusted as real (above this, it's treated as a discontinuity and the
// frame's own stamped duration is used instead — spec §4.4/§6).
const MaxFrameDuration = 10.0

// VideoRenderer runs the refresh-timer pump that pulls frames off a
// FrameQueue, paces them against the master clock, and pushes them to a
// VideoSurface — ffplay's video_refresh/video_display, restructured as an
// explicit timer loop instead of a busy poll with a remaining_time
// out-param (spec §4.7).
type VideoRenderer struct {
	frameq  *queue.FrameQueue
	videoq  *queue.PacketQueue // serial source; a flush invalidates buffered frames
	surface VideoSurface
	master  *clock.MasterClock
	vidclk  *clock.Clock
	logger  *slog.Logger

	subtitleq *queue.FrameQueue // may be nil if there's no subtitle stream

	frameTimer   float64
	forceRefresh bool
	step         bool
	FrameDrop    bool // honor spec §6's --framedrop=on semantics

	FrameDropsLate int
}

func NewVideoRenderer(frameq *queue.FrameQueue, videoq *queue.PacketQueue, subtitleq *queue.FrameQueue, surface VideoSurface, master *clock.MasterClock, vidclk *clock.Clock, logger *slog.Logger) *VideoRenderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &VideoRenderer{
		frameq:    frameq,
		videoq:    videoq,
		subtitleq: subtitleq,
		surface:   surface,
		master:    master,
		vidclk:    vidclk,
		logger:    logger,
	}
}

func nowSeconds() float64 { return float64(time.Now().UnixNano()) / 1e9 }

// Run pumps refresh ticks until ctx is cancelled, sleeping for whatever
// duration the refresh logic computes as "time until the next frame is
// due" rather than a fixed rate.
func (v *VideoRenderer) Run(ctx context.Context, realtime bool, videoPackets, audioPackets func() int, hasVideo, hasAudio bool) {
	v.frameTimer = nowSeconds()
	remaining := 10 * time.Millisecond
	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(remaining):
		}
		remaining = v.refresh(realtime, videoPackets, audioPackets, hasVideo, hasAudio)
	}
}

func (v *VideoRenderer) refresh(realtime bool, videoPackets, audioPackets func() int, hasVideo, hasAudio bool) time.Duration {
	if v.master.EffectiveSyncType() == clock.SyncExternalClock && realtime {
		gsync.ExternalClockSpeed(v.master.External, videoPackets(), audioPackets(), hasVideo, hasAudio)
	}

	remaining := 10 * time.Millisecond

retry:
	if v.frameq.NbRemaining() == 0 {
		// nothing to display
	} else {
		lastvp := v.frameq.PeekLast()
		vp := v.frameq.Peek()

		if vp.Serial != v.videoq.Serial() {
			v.frameq.Next()
			goto retry
		}

		if lastvp.Serial != vp.Serial {
			v.frameTimer = nowSeconds()
		}

		if v.vidclk.Paused() {
			goto display
		}

		lastDuration := gsync.FrameDuration(lastvp.PTS, lastvp.Duration, vp.PTS, lastvp.Serial, vp.Serial, MaxFrameDuration)
		delay := gsync.VideoDelay(lastDuration, v.vidclk, v.master, MaxFrameDuration)

		now := nowSeconds()
		if now < v.frameTimer+delay {
			wait := v.frameTimer + delay - now
			if wait < float64(remaining)/float64(time.Second) {
				remaining = time.Duration(wait * float64(time.Second))
			}
			goto display
		}

		v.frameTimer += delay
		if delay > 0 && now-v.frameTimer > gsync.AVSyncThresholdMax {
			v.frameTimer = now
		}

		if !math.IsNaN(vp.PTS) {
			v.vidclk.Set(vp.PTS, vp.Serial)
			v.master.External.SyncTo(v.vidclk)
		}

		if v.frameq.NbRemaining() > 1 {
			nextvp := v.frameq.PeekNext()
			duration := gsync.FrameDuration(vp.PTS, vp.Duration, nextvp.PTS, vp.Serial, nextvp.Serial, MaxFrameDuration)
			if !v.step && v.FrameDrop && v.master.EffectiveSyncType() != clock.SyncVideoMaster && now > v.frameTimer+duration {
				v.FrameDropsLate++
				v.frameq.Next()
				goto retry
			}
		}

		v.frameq.Next()
		v.forceRefresh = true

		if v.step {
			v.step = false
			v.master.SetAllPaused(true)
		}
	}

display:
	if v.forceRefresh {
		v.display()
	}
	v.forceRefresh = false
	return remaining
}

// Step requests that the next displayed frame pause playback afterward
// (the 's' frame-step key binding).
func (v *VideoRenderer) Step() { v.step = true }

func (v *VideoRenderer) display() {
	vp := v.frameq.PeekLast()
	if vp == nil || vp.Pixels == nil {
		return
	}
	if err := v.surface.Upload(vp); err != nil {
		v.logger.Error("video upload failed", "error", err)
		return
	}
	subs := v.activeSubtitleRects()
	if err := v.surface.Present(subs); err != nil {
		v.logger.Error("video present failed", "error", err)
	}
}

func (v *VideoRenderer) activeSubtitleRects() []media.SubtitleRect {
	if v.subtitleq == nil || v.subtitleq.NbRemaining() == 0 {
		return nil
	}
	sp := v.subtitleq.Peek()
	now := v.master.Get()
	if now < sp.SubtitleStart() || now > sp.SubtitleEnd() {
		return nil
	}
	return sp.Rects
}
