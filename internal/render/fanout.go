package render

import (
	"log/slog"
	"sync"

	"github.com/avcore/goplay/internal/media"
)

// Subscriber receives decoded frames fanned out alongside the primary
// render path — e.g. a secondary preview surface or a status/metrics
// listener. Adapted from the teacher's relay.Stream broadcast (subscriber
// add/remove under a write lock, broadcast under a read lock with the
// subscriber slice copied out before delivery).
type Subscriber interface {
	SendFrame(*media.Frame) error
}

// TrySender is the optional non-blocking counterpart; a Fanout prefers it
// when a subscriber implements it, to avoid a slow consumer stalling the
// render path.
type TrySender interface {
	TrySendFrame(*media.Frame) bool
}

// Fanout broadcasts frames to zero or more subscribers without being in
// the critical decode/render path itself.
type Fanout struct {
	mu     sync.RWMutex
	subs   []Subscriber
	logger *slog.Logger
}

func NewFanout(logger *slog.Logger) *Fanout {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fanout{logger: logger}
}

func (f *Fanout) Add(sub Subscriber) {
	if sub == nil {
		return
	}
	f.mu.Lock()
	f.subs = append(f.subs, sub)
	f.mu.Unlock()
}

func (f *Fanout) Remove(sub Subscriber) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, s := range f.subs {
		if s == sub {
			f.subs = append(f.subs[:i], f.subs[i+1:]...)
			return
		}
	}
}

func (f *Fanout) Subscribers() []Subscriber {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]Subscriber, len(f.subs))
	copy(out, f.subs)
	return out
}

// Broadcast delivers frame to every current subscriber, dropping it for
// any that implement TrySender and report themselves full rather than
// blocking the caller.
func (f *Fanout) Broadcast(frame *media.Frame) {
	subs := f.Subscribers()
	for _, sub := range subs {
		if ts, ok := sub.(TrySender); ok {
			if !ts.TrySendFrame(frame) {
				f.logger.Debug("dropped frame for slow subscriber", "kind", frame.Kind.String())
			}
			continue
		}
		if err := sub.SendFrame(frame); err != nil {
			f.logger.Debug("subscriber send failed", "error", err)
		}
	}
}
