// Package wire implements goplay's own small packet-container format: a
// stream table followed by length-prefixed packet records (stream index,
// PTS, DTS, duration, payload). It is the concrete stand-in for the
// "demuxer library with a streaming API" spec.md assumes as out of scope —
// used by this repo's file/tcp sources and test fixtures so the decoder
// driver and synchronizer have something real to read from. A production
// build swaps this source for a cgo-bound libavformat reader behind the
// same source.Container interface without touching anything downstream.
//
// Framing is deliberately simple (fixed-width big-endian header fields,
// io.ReadFull, fmt.Errorf("...: %w", err) wrapping) in the style of the
// teacher's RTMP chunk header codec.
package wire

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/avcore/goplay/internal/errors"
	"github.com/avcore/goplay/internal/media"
)

// recordKind values on the wire.
const (
	recordNormal uint8 = 0
	recordFlush  uint8 = 1
	recordNull   uint8 = 2
)

func kindToWire(k media.Kind) uint8 {
	switch k {
	case media.KindFlush:
		return recordFlush
	case media.KindNull:
		return recordNull
	default:
		return recordNormal
	}
}

func kindFromWire(b uint8) (media.Kind, error) {
	switch b {
	case recordNormal:
		return media.KindNormal, nil
	case recordFlush:
		return media.KindFlush, nil
	case recordNull:
		return media.KindNull, nil
	default:
		return 0, fmt.Errorf("wire: unknown record kind %d", b)
	}
}

// StreamTable is the fixed header written once at the start of a container:
// the per-stream descriptors a reader needs before it can identify "best"
// streams (spec §4.6).
type StreamTable struct {
	Streams []media.StreamInfo
}

func writeString(w io.Writer, s string) error {
	if len(s) > 0xFFFF {
		return fmt.Errorf("wire: string too long (%d bytes)", len(s))
	}
	var lenBuf [2]byte
	binary.BigEndian.PutUint16(lenBuf[:], uint16(len(s)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func readString(r io.Reader) (string, error) {
	var lenBuf [2]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return "", err
	}
	n := binary.BigEndian.Uint16(lenBuf[:])
	buf := make([]byte, n)
	if n > 0 {
		if _, err := io.ReadFull(r, buf); err != nil {
			return "", err
		}
	}
	return string(buf), nil
}

func writeRational(w io.Writer, r media.Rational) error {
	var buf [16]byte
	binary.BigEndian.PutUint64(buf[0:8], uint64(r.Num))
	binary.BigEndian.PutUint64(buf[8:16], uint64(r.Den))
	_, err := w.Write(buf[:])
	return err
}

func readRational(r io.Reader) (media.Rational, error) {
	var buf [16]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return media.Rational{}, err
	}
	return media.Rational{
		Num: int64(binary.BigEndian.Uint64(buf[0:8])),
		Den: int64(binary.BigEndian.Uint64(buf[8:16])),
	}, nil
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

// WriteStreamTable writes the container's stream descriptors.
func WriteStreamTable(w io.Writer, t StreamTable) error {
	var countBuf [4]byte
	binary.BigEndian.PutUint32(countBuf[:], uint32(len(t.Streams)))
	if _, err := w.Write(countBuf[:]); err != nil {
		return errors.New(errors.KindFormat, "wire.write_stream_table", err)
	}
	for _, s := range t.Streams {
		if err := writeOneStream(w, s); err != nil {
			return errors.New(errors.KindFormat, "wire.write_stream_table", err)
		}
	}
	return nil
}

func writeOneStream(w io.Writer, s media.StreamInfo) error {
	var hdr [4 + 1 + 4*4]byte
	binary.BigEndian.PutUint32(hdr[0:4], uint32(s.Index))
	hdr[4] = byte(s.Kind)
	binary.BigEndian.PutUint32(hdr[5:9], uint32(s.SampleRate))
	binary.BigEndian.PutUint32(hdr[9:13], uint32(s.Channels))
	binary.BigEndian.PutUint32(hdr[13:17], uint32(s.Width))
	binary.BigEndian.PutUint32(hdr[17:21], uint32(s.Height))
	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	if err := writeString(w, s.CodecID); err != nil {
		return err
	}
	if err := writeRational(w, s.Timebase); err != nil {
		return err
	}
	if err := writeRational(w, s.SampleAspect); err != nil {
		return err
	}
	_, err := w.Write([]byte{boolByte(s.Attached)})
	return err
}

// ReadStreamTable reads a container's stream descriptors.
func ReadStreamTable(r io.Reader) (StreamTable, error) {
	var countBuf [4]byte
	if _, err := io.ReadFull(r, countBuf[:]); err != nil {
		return StreamTable{}, errors.New(errors.KindFormat, "wire.read_stream_table", err)
	}
	n := binary.BigEndian.Uint32(countBuf[:])
	t := StreamTable{Streams: make([]media.StreamInfo, 0, n)}
	for i := uint32(0); i < n; i++ {
		s, err := readOneStream(r)
		if err != nil {
			return StreamTable{}, errors.New(errors.KindFormat, "wire.read_stream_table", err)
		}
		t.Streams = append(t.Streams, s)
	}
	return t, nil
}

func readOneStream(r io.Reader) (media.StreamInfo, error) {
	var hdr [4 + 1 + 4*4]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return media.StreamInfo{}, err
	}
	s := media.StreamInfo{
		Index:      int(int32(binary.BigEndian.Uint32(hdr[0:4]))),
		Kind:       media.StreamKind(hdr[4]),
		SampleRate: int(binary.BigEndian.Uint32(hdr[5:9])),
		Channels:   int(binary.BigEndian.Uint32(hdr[9:13])),
		Width:      int(binary.BigEndian.Uint32(hdr[13:17])),
		Height:     int(binary.BigEndian.Uint32(hdr[17:21])),
	}
	codecID, err := readString(r)
	if err != nil {
		return media.StreamInfo{}, err
	}
	s.CodecID = codecID
	tb, err := readRational(r)
	if err != nil {
		return media.StreamInfo{}, err
	}
	s.Timebase = tb
	sar, err := readRational(r)
	if err != nil {
		return media.StreamInfo{}, err
	}
	s.SampleAspect = sar
	var attached [1]byte
	if _, err := io.ReadFull(r, attached[:]); err != nil {
		return media.StreamInfo{}, err
	}
	s.Attached = attached[0] != 0
	return s, nil
}
