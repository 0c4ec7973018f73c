// Package codec defines the per-stream decoder surface and the small set
// of built-in codecs the player ships without depending on a full
// multimedia decoding library. The container's packets already carry
// uncompressed or near-uncompressed payloads (spec §4.10) — the decoders
// here reshape them into media.Frame and apply any timestamp bookkeeping a
// real decoder would, but do no bitstream decompression themselves.
package codec

import (
	"errors"

	"github.com/avcore/goplay/internal/media"
)

// ErrAgain indicates the codec consumed (or rejected) the packet but has no
// frame ready yet; the caller should fetch another packet and try again.
var ErrAgain = errors.New("codec: need more input")

// Codec decodes one stream's packets into frames. Implementations are not
// expected to be safe for concurrent use; the driver in internal/decode
// serializes all calls per stream.
type Codec interface {
	// SendPacket submits one packet for decoding. It never blocks.
	SendPacket(pkt *media.Packet) error
	// ReceiveFrame returns the next decoded frame, ErrAgain if the codec
	// needs another SendPacket first, or io.EOF once a null (end-of-input)
	// packet has been sent and every pending frame has been returned.
	ReceiveFrame() (*media.Frame, error)
	// Flush discards any buffered state (a seek or stream restart).
	Flush()
}

// Registry maps a codec identifier (media.StreamInfo.CodecID) to a
// constructor. Built-ins register themselves in their own init().
var Registry = map[string]func(info media.StreamInfo) (Codec, error){}

// Register adds a codec constructor under id, overwriting any existing
// registration — tests use this to inject fakes.
func Register(id string, ctor func(info media.StreamInfo) (Codec, error)) {
	Registry[id] = ctor
}

// New looks up and constructs the codec for info.CodecID.
func New(info media.StreamInfo) (Codec, error) {
	ctor, ok := Registry[info.CodecID]
	if !ok {
		return nil, errUnknownCodec(info.CodecID)
	}
	return ctor(info)
}

type errUnknownCodec string

func (e errUnknownCodec) Error() string { return "codec: unknown codec id " + string(e) }
