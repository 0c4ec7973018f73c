package media

// Recorder persists the packets passing through the pipeline to a local
// container file for offline inspection/replay (the non-goal in spec.md
// excludes recording as a *user-facing feature*; this is debug tooling,
// analogous to the teacher's FLV dump of a published stream). On any
// write error the recorder disables itself and playback continues
// unaffected — a decode/render failure must never follow from a full disk.

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
)

// PacketWriter is the minimal surface Recorder needs from the container
// wire format; kept as an interface so tests can inject a failing writer
// and so this package doesn't import container/wire (which imports media).
type PacketWriter interface {
	WritePacket(p *Packet) error
}

type Recorder struct {
	mu             sync.Mutex
	f              io.Closer
	enc            PacketWriter
	logger         *slog.Logger
	disabled       bool
	packetsWritten uint64
}

// NewRecorder creates the file at path and calls wrap with it to obtain the
// PacketWriter every record goes through. Anything that must precede the
// packet records, such as a stream table written with
// wire.WriteStreamTable, is for wrap to write, since this package can't
// import container/wire.
// If the file can't be created, it returns a nil *Recorder and the error.
func NewRecorder(path string, wrap func(f io.Writer) PacketWriter, logger *slog.Logger) (*Recorder, error) {
	if logger == nil {
		logger = slog.Default()
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("recorder.create: %w", err)
	}
	return &Recorder{f: f, enc: wrap(f), logger: logger}, nil
}

func (r *Recorder) Disabled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.disabled
}

// WritePacket records one packet; failures permanently disable the
// recorder rather than propagating to the caller.
func (r *Recorder) WritePacket(p *Packet) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.disabled {
		return
	}
	if err := r.enc.WritePacket(p); err != nil {
		r.disabled = true
		if r.logger != nil {
			r.logger.Warn("packet recorder disabled after write error", "error", err)
		}
		return
	}
	r.packetsWritten++
}

func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.f == nil {
		return nil
	}
	err := r.f.Close()
	r.f = nil
	return err
}

func (r *Recorder) PacketsWritten() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.packetsWritten
}
