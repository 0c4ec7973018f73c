// Package media holds the wire-level data model shared by the queue,
// decode, source and render packages: demuxed packets, decoded frames, the
// two in-band sentinels (flush/null), and codec/format descriptors.
package media

import "fmt"

// Rational mirrors a container timebase (numerator/denominator), the way a
// real demuxer library expresses per-stream PTS/DTS units.
type Rational struct {
	Num, Den int64
}

// Seconds converts a tick count expressed in this timebase to seconds.
func (r Rational) Seconds(ticks int64) float64 {
	if r.Den == 0 {
		return 0
	}
	return float64(ticks) * float64(r.Num) / float64(r.Den)
}

// Kind distinguishes the three sentinel variants of a queue item (spec §9):
// a normal packet carrying payload, the flush sentinel (codec state invalid,
// reset), and the null sentinel (no more input, drain the decoder).
type Kind int

const (
	KindNormal Kind = iota
	KindFlush
	KindNull
)

// NoPTS marks an unset timestamp, mirroring the demuxer convention of using
// an out-of-band sentinel value rather than a pointer/optional.
const NoPTS = int64(-1) << 62

// Packet is an opaque demuxer-produced record: bytes, stream index, size,
// PTS/DTS/duration in the stream's timebase (spec §3). Packets are compared
// by Kind, never by identity — flush/null are tagged variants, not a
// process-wide pointer singleton (spec §9).
type Packet struct {
	Kind        Kind
	StreamIndex int
	Data        []byte
	PTS, DTS    int64
	Duration    int64
	Timebase    Rational

	// Serial is stamped by the PacketQueue at enqueue time (spec §3's
	// invariant: every enqueued packet carries the serial value at enqueue
	// time). Zero until Put.
	Serial int
}

// Size is the byte cost this packet bills against a PacketQueue, including
// a fixed per-entry bookkeeping overhead (spec §3: "size accounting...
// including per-entry overhead").
const PerEntryOverhead = 64

func (p *Packet) Size() int {
	if p == nil {
		return 0
	}
	return len(p.Data) + PerEntryOverhead
}

// DurationSeconds converts Duration using Timebase.
func (p *Packet) DurationSeconds() float64 {
	if p == nil {
		return 0
	}
	return p.Timebase.Seconds(p.Duration)
}

// NewFlush returns a flush-sentinel packet. The caller (PacketQueue.Put)
// stamps its Serial; the sentinel carries no stream affinity.
func NewFlush() *Packet { return &Packet{Kind: KindFlush} }

// NewNull returns a null-sentinel packet bound to a stream index, signalling
// "no more input, drain the decoder" for that stream.
func NewNull(streamIndex int) *Packet {
	return &Packet{Kind: KindNull, StreamIndex: streamIndex}
}

func (p *Packet) String() string {
	switch p.Kind {
	case KindFlush:
		return "packet(flush)"
	case KindNull:
		return fmt.Sprintf("packet(null stream=%d)", p.StreamIndex)
	default:
		return fmt.Sprintf("packet(stream=%d pts=%d dts=%d size=%d serial=%d)", p.StreamIndex, p.PTS, p.DTS, len(p.Data), p.Serial)
	}
}
