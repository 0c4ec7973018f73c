package wire

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/avcore/goplay/internal/errors"
	"github.com/avcore/goplay/internal/media"
)

// recordHeaderSize is the fixed portion of a packet record, preceding the
// variable-length payload: kind(1) + streamIndex(4) + pts(8) + dts(8) +
// duration(8) + timebase(16) + payloadLen(4).
const recordHeaderSize = 1 + 4 + 8 + 8 + 8 + 16 + 4

// Reader reads packet records sequentially from an underlying stream. It
// holds no buffering beyond a small fixed scratch array, mirroring the
// teacher's chunk reader's "no allocation beyond small fixed-size scratch
// buffers" design.
type Reader struct {
	r io.Reader
}

func NewReader(r io.Reader) *Reader { return &Reader{r: r} }

// ReadPacket reads the next packet record. io.EOF is returned verbatim so
// callers can distinguish "clean end of container" from a read error.
func (rd *Reader) ReadPacket() (*media.Packet, error) {
	var hdr [recordHeaderSize]byte
	if _, err := io.ReadFull(rd.r, hdr[:]); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, io.EOF
		}
		return nil, errors.New(errors.KindInput, "wire.read_packet", err)
	}
	kind, err := kindFromWire(hdr[0])
	if err != nil {
		return nil, errors.New(errors.KindFormat, "wire.read_packet", err)
	}
	streamIndex := int(int32(binary.BigEndian.Uint32(hdr[1:5])))
	pts := int64(binary.BigEndian.Uint64(hdr[5:13]))
	dts := int64(binary.BigEndian.Uint64(hdr[13:21]))
	dur := int64(binary.BigEndian.Uint64(hdr[21:29]))
	tbNum := int64(binary.BigEndian.Uint64(hdr[29:37]))
	tbDen := int64(binary.BigEndian.Uint64(hdr[37:45]))
	payloadLen := binary.BigEndian.Uint32(hdr[45:49])

	if payloadLen > 64<<20 {
		return nil, errors.New(errors.KindFormat, "wire.read_packet", fmt.Errorf("payload too large: %d bytes", payloadLen))
	}
	var payload []byte
	if payloadLen > 0 {
		payload = make([]byte, payloadLen)
		if _, err := io.ReadFull(rd.r, payload); err != nil {
			return nil, errors.New(errors.KindInput, "wire.read_packet", err)
		}
	}

	return &media.Packet{
		Kind:        kind,
		StreamIndex: streamIndex,
		Data:        payload,
		PTS:         pts,
		DTS:         dts,
		Duration:    dur,
		Timebase:    media.Rational{Num: tbNum, Den: tbDen},
	}, nil
}
