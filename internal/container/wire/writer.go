package wire

import (
	"encoding/binary"
	"io"

	"github.com/avcore/goplay/internal/errors"
	"github.com/avcore/goplay/internal/media"
)

// Writer serializes packet records to an underlying stream. The reader
// tests use it to build in-memory containers; it satisfies
// media.PacketWriter, so it can also back a media.Recorder.
type Writer struct {
	w io.Writer
}

func NewWriter(w io.Writer) *Writer { return &Writer{w: w} }

func (wr *Writer) WritePacket(p *media.Packet) error {
	var hdr [recordHeaderSize]byte
	hdr[0] = kindToWire(p.Kind)
	binary.BigEndian.PutUint32(hdr[1:5], uint32(int32(p.StreamIndex)))
	binary.BigEndian.PutUint64(hdr[5:13], uint64(p.PTS))
	binary.BigEndian.PutUint64(hdr[13:21], uint64(p.DTS))
	binary.BigEndian.PutUint64(hdr[21:29], uint64(p.Duration))
	binary.BigEndian.PutUint64(hdr[29:37], uint64(p.Timebase.Num))
	binary.BigEndian.PutUint64(hdr[37:45], uint64(p.Timebase.Den))
	binary.BigEndian.PutUint32(hdr[45:49], uint32(len(p.Data)))

	if _, err := wr.w.Write(hdr[:]); err != nil {
		return errors.New(errors.KindResource, "wire.write_packet", err)
	}
	if len(p.Data) > 0 {
		if _, err := wr.w.Write(p.Data); err != nil {
			return errors.New(errors.KindResource, "wire.write_packet", err)
		}
	}
	return nil
}
