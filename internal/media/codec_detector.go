package media

import "log/slog"

// FormatStore is satisfied by whatever owns the current per-stream format.
// It lets FormatChangeDetector report both the
// first-seen format and any later change without depending on a concrete
// owner type.
type FormatStore interface {
	CurrentFormat() StreamInfo
	SetFormat(StreamInfo)
}

// FormatChangeDetector reports when a stream's decoded format differs from
// the last format a FormatStore recorded: audio compares sample rate,
// channels and codec, video compares dimensions and codec, other kinds the
// codec only. The audio and video renderers do not call it. It keeps no
// state of its own; state lives in the FormatStore.
type FormatChangeDetector struct{}

// Changed compares want against store's current format, updates the store
// if different, and reports whether a change occurred. log may be nil.
func (d *FormatChangeDetector) Changed(store FormatStore, want StreamInfo, log *slog.Logger) bool {
	if store == nil {
		return false
	}
	cur := store.CurrentFormat()
	if formatEqual(cur, want) {
		return false
	}
	store.SetFormat(want)
	if log != nil {
		log.Info("stream format changed",
			"stream_kind", want.Kind.String(),
			"codec", want.CodecID,
			"sample_rate", want.SampleRate,
			"channels", want.Channels,
			"width", want.Width,
			"height", want.Height,
		)
	}
	return true
}

func formatEqual(a, b StreamInfo) bool {
	switch a.Kind {
	case Audio:
		return a.SampleRate == b.SampleRate && a.Channels == b.Channels && a.CodecID == b.CodecID
	case Video:
		return a.Width == b.Width && a.Height == b.Height && a.CodecID == b.CodecID
	default:
		return a.CodecID == b.CodecID
	}
}
