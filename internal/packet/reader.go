// Package packet implements the little-endian fixed-width binary codec
// shared by every wire surface in this repo: client↔realm game packets, the
// realm↔world proxy payloads, and persisted character/item snapshots.
package packet

import (
	"encoding/binary"
	"fmt"
	"math"
	"unicode/utf16"
)

// Reader reads fields out of a decoded packet body. All multi-byte values
// are little-endian.
type Reader struct {
	data []byte
	pos  int
}

// NewReader wraps data for sequential reads.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

func (r *Reader) ReadByte() (byte, error) {
	if r.pos >= len(r.data) {
		return 0, fmt.Errorf("packet: ReadByte: not enough data (pos=%d, len=%d)", r.pos, len(r.data))
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

func (r *Reader) ReadShort() (int16, error) {
	if r.pos+2 > len(r.data) {
		return 0, fmt.Errorf("packet: ReadShort: not enough data (pos=%d, len=%d)", r.pos, len(r.data))
	}
	val := int16(binary.LittleEndian.Uint16(r.data[r.pos:]))
	r.pos += 2
	return val, nil
}

func (r *Reader) ReadInt() (int32, error) {
	if r.pos+4 > len(r.data) {
		return 0, fmt.Errorf("packet: ReadInt: not enough data (pos=%d, len=%d)", r.pos, len(r.data))
	}
	val := int32(binary.LittleEndian.Uint32(r.data[r.pos:]))
	r.pos += 4
	return val, nil
}

func (r *Reader) ReadLong() (int64, error) {
	if r.pos+8 > len(r.data) {
		return 0, fmt.Errorf("packet: ReadLong: not enough data (pos=%d, len=%d)", r.pos, len(r.data))
	}
	val := int64(binary.LittleEndian.Uint64(r.data[r.pos:]))
	r.pos += 8
	return val, nil
}

func (r *Reader) ReadFloat() (float32, error) {
	v, err := r.ReadInt()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(uint32(v)), nil
}

// ReadString reads a UTF-16LE null-terminated string.
func (r *Reader) ReadString() (string, error) {
	var units []uint16
	for {
		if r.pos+2 > len(r.data) {
			return "", fmt.Errorf("packet: ReadString: unexpected end of data (pos=%d, len=%d)", r.pos, len(r.data))
		}
		u := binary.LittleEndian.Uint16(r.data[r.pos:])
		r.pos += 2
		if u == 0 {
			break
		}
		units = append(units, u)
	}
	return string(utf16.Decode(units)), nil
}

// ReadBytes reads n raw bytes.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("packet: ReadBytes: negative count %d", n)
	}
	if r.pos+n > len(r.data) {
		return nil, fmt.Errorf("packet: ReadBytes: not enough data (pos=%d, need=%d, len=%d)", r.pos, n, len(r.data))
	}
	b := make([]byte, n)
	copy(b, r.data[r.pos:r.pos+n])
	r.pos += n
	return b, nil
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int { return len(r.data) - r.pos }

// Position returns the current read offset.
func (r *Reader) Position() int { return r.pos }
