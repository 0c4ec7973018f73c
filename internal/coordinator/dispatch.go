package coordinator

import (
	"github.com/avcore/goplay/internal/events"
	"github.com/avcore/goplay/internal/reader"
)

// Dispatch routes one key-binding Command to the VideoState operation it
// names (spec §6), in the teacher's Dispatcher.Dispatch style: a flat
// switch over a command identifier, each case doing its own narrow thing
// and logging anything it can't honor rather than failing the caller.
func (vs *VideoState) Dispatch(cmd Command) {
	switch cmd {
	case CommandQuit:
		vs.emit(events.TypeQuit, nil)
	case CommandTogglePause:
		vs.TogglePause()
	case CommandToggleMute:
		if vs.audioRenderer != nil {
			vs.audioRenderer.SetMuted(!vs.audioRenderer.Muted())
		}
	case CommandVolumeUp:
		if vs.audioRenderer != nil {
			vs.audioRenderer.SetVolume(vs.audioRenderer.Volume() + VolumeStep)
		}
	case CommandVolumeDown:
		if vs.audioRenderer != nil {
			vs.audioRenderer.SetVolume(vs.audioRenderer.Volume() - VolumeStep)
		}
	case CommandStepFrame:
		if vs.videoRenderer != nil {
			vs.master.SetAllPaused(false)
			vs.videoRenderer.Step()
		}
	case CommandCycleAudio:
		vs.cycleStream(&vs.sel.AudioIndex)
	case CommandCycleVideo:
		vs.cycleStream(&vs.sel.VideoIndex)
	case CommandCycleSubtitle:
		vs.cycleStream(&vs.sel.SubtitleIndex)
	case CommandCycleAll:
		vs.cycleStream(&vs.sel.AudioIndex)
		vs.cycleStream(&vs.sel.VideoIndex)
		vs.cycleStream(&vs.sel.SubtitleIndex)
	case CommandSeekBack10:
		vs.seekRelative(-SeekStepShort)
	case CommandSeekForward10:
		vs.seekRelative(SeekStepShort)
	case CommandSeekBack60:
		vs.seekRelative(-SeekStepLong)
	case CommandSeekForward60:
		vs.seekRelative(SeekStepLong)
	case CommandSeekChapterPrev, CommandSeekChapterNext, CommandToggleFullscreen:
		// No chapter index or window to act on in this build: the wire
		// container carries no chapter marks and there's no windowing
		// surface behind FramebufferSurface. Logged, not silently dropped.
		vs.logger.Debug("command not supported by this build", "command", cmd.String())
	}
}

// TogglePause flips pause on every clock and the reader, mirroring
// ffplay's toggle_pause (spec §4.6/§6's 'p'/space binding).
func (vs *VideoState) TogglePause() {
	paused := !vs.vidclk.Paused()
	vs.master.SetAllPaused(paused)
	vs.rd.SetPaused(paused)
	vs.emit(events.TypePauseChanged, map[string]any{"paused": paused})
}

// Seek issues a byte-accurate seek to the reader and re-anchors the
// external clock the way ffplay's stream_seek does for AVSEEK_FLAG_BYTE.
func (vs *VideoState) Seek(bytePos int64) {
	vs.rd.RequestSeek(reader.SeekRequest{Pos: bytePos})
	vs.emit(events.TypeSeek, map[string]any{"pos": bytePos})
}

// seekRelative does not seek. The wire format carries no timestamp index
// and the stream table no duration or bitrate, so a time delta has no byte
// offset to map onto; the request is only logged.
func (vs *VideoState) seekRelative(deltaSeconds float64) {
	_ = deltaSeconds
	// Without a duration/bitrate estimate in the stream table there's no
	// principled byte offset to compute; this is left as a documented gap
	// (see DESIGN.md) rather than faked with a made-up bitrate constant.
	vs.logger.Debug("relative seek requested but unsupported without a timestamp index", "delta_seconds", deltaSeconds)
}

func (vs *VideoState) cycleStream(index *int) {
	if *index == -1 {
		return
	}
	// Stream switching mid-playback would require tearing down and
	// rebuilding the affected decoder/renderer pair; left to a future
	// VideoState.SwitchStream once per-stream hot-swap is implemented.
	vs.logger.Debug("cycle stream requested but hot-swap is unimplemented", "current_index", *index)
}
