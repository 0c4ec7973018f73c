// Package render implements the audio and video output stages: a
// refresh-timer-driven video pump with frame-drop and subtitle
// compositing, and a pull-callback audio device adapter, plus a
// multi-subscriber fanout for streaming the decoded/raw signal to more
// than one output sink at once (spec §4.7, §4.8, §4.11).
package render

import "github.com/avcore/goplay/internal/media"

// VideoSurface is the "out of scope" video surface spec.md §1 assumes:
// something that can accept an uploaded frame and present it, plus
// composite subtitle rects on top.
type VideoSurface interface {
	// Upload copies frame's pixels into the surface's backing store.
	Upload(frame *media.Frame) error
	// Present displays whatever was last uploaded, with subs composited
	// on top (nil or empty if there's nothing to show).
	Present(subs []media.SubtitleRect) error
	// Resize is called when the output dimensions change (e.g. a stream
	// switch to a different resolution).
	Resize(width, height int) error
}
