// Package streams implements the little-endian, ULEB128-prefixed binary
// codec bancho speaks on the wire: fixed-width integers, floats, booleans,
// length-prefixed strings and integer lists.
//
// Out is a growable write cursor; In is a read cursor over an immutable byte
// slice. Both default to little-endian, matching every field in the
// protocol; nothing here ever switches endianness.
package streams

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ErrMalformedFrame is the sentinel wrapped by every decode failure: a short
// read, a bad string lead byte, or a negative length where one is forbidden.
var ErrMalformedFrame = errors.New("malformed frame")

// malformed wraps ErrMalformedFrame with context, matching the HandlerError
// taxonomy's expectation that a MalformedFrame names what went wrong.
func malformed(format string, args ...any) error {
	return errors.Wrapf(ErrMalformedFrame, format, args...)
}

// sanitizer NFC-normalizes decoded strings and replaces ill-formed UTF-8
// sequences with U+FFFD rather than letting them propagate; it plays the
// role golang.org/x/text/transform
// plays for icza-screp's replay-name decoding (repparser.go), just applied
// to a UTF-8 source instead of a legacy codepage.
var sanitizer = transform.Chain(norm.NFC, runes.ReplaceIllFormed())

func sanitizeString(s string) string {
	out, _, err := transform.String(sanitizer, s)
	if err != nil {
		return s
	}
	return out
}

// Out is a growable output buffer with a write cursor, mirroring the
// Python StreamOut's seek/write/push/pop semantics.
type Out struct {
	data  []byte
	pos   int
	stack []int
}

// NewOut returns an empty output stream.
func NewOut() *Out {
	return &Out{}
}

// Bytes returns the accumulated buffer.
func (o *Out) Bytes() []byte { return o.data }

// Len returns the number of bytes written so far.
func (o *Out) Len() int { return len(o.data) }

// Tell returns the current cursor position.
func (o *Out) Tell() int { return o.pos }

// Push saves the current cursor position on an internal stack.
func (o *Out) Push() { o.stack = append(o.stack, o.pos) }

// Pop restores the cursor position saved by the most recent Push.
func (o *Out) Pop() {
	n := len(o.stack) - 1
	o.pos = o.stack[n]
	o.stack = o.stack[:n]
}

// Seek moves the cursor to pos, growing the buffer with zero bytes if pos is
// past the current end.
func (o *Out) Seek(pos int) {
	if pos > len(o.data) {
		o.data = append(o.data, make([]byte, pos-len(o.data))...)
	}
	o.pos = pos
}

// Skip advances the cursor by num bytes.
func (o *Out) Skip(num int) { o.Seek(o.pos + num) }

// Align pads the cursor up to the next multiple of num.
func (o *Out) Align(num int) {
	if num <= 0 {
		return
	}
	o.Skip((num - o.pos%num) % num)
}

// Write copies data into the buffer at the cursor, overwriting or extending
// as needed, and advances the cursor.
func (o *Out) Write(data []byte) {
	end := o.pos + len(data)
	if end > len(o.data) {
		o.data = append(o.data, make([]byte, end-len(o.data))...)
	}
	copy(o.data[o.pos:end], data)
	o.pos = end
}

func (o *Out) U8(v uint8)   { o.Write([]byte{v}) }
func (o *Out) Bool(v bool) {
	if v {
		o.U8(1)
	} else {
		o.U8(0)
	}
}

func (o *Out) U16(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	o.Write(b[:])
}

func (o *Out) U32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	o.Write(b[:])
}

func (o *Out) U64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	o.Write(b[:])
}

func (o *Out) S8(v int8)   { o.U8(uint8(v)) }
func (o *Out) S16(v int16) { o.U16(uint16(v)) }
func (o *Out) S32(v int32) { o.U32(uint32(v)) }
func (o *Out) S64(v int64) { o.U64(uint64(v)) }

// U24 writes the low 24 bits of v, little-endian (low byte, then u16).
func (o *Out) U24(v uint32) {
	o.U8(uint8(v & 0xFF))
	o.U16(uint16(v >> 8))
}

func (o *Out) Float32(v float32) { o.U32(math.Float32bits(v)) }
func (o *Out) Float64(v float64) { o.U64(math.Float64bits(v)) }

// ULEB128 writes v as an unsigned little-endian base-128 varint.
func (o *Out) ULEB128(v uint64) {
	if v == 0 {
		o.U8(0)
		return
	}
	var buf []byte
	for v != 0 {
		b := byte(v & 0x7F)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		buf = append(buf, b)
	}
	o.Write(buf)
}

// String writes value using the 0x00-empty / 0x0B-ULEB128-length-prefixed
// convention (§4.1).
func (o *Out) String(value string) {
	if value == "" {
		o.S8(0x00)
		return
	}
	o.S8(0x0B)
	o.ULEB128(uint64(len(value)))
	o.Write([]byte(value))
}

// IntList writes an s16 count followed by that many s32 elements.
func (o *Out) IntList(values []int32) {
	o.S16(int16(len(values)))
	for _, v := range values {
		o.S32(v)
	}
}

// Pad appends num zero bytes.
func (o *Out) Pad(num int) { o.Write(make([]byte, num)) }

// In is a read-only cursor over an immutable byte slice.
type In struct {
	data  []byte
	pos   int
	stack []int
}

// NewIn wraps data in a read cursor positioned at the start.
func NewIn(data []byte) *In {
	return &In{data: data}
}

// Bytes returns the full backing slice, irrespective of cursor position.
func (in *In) Bytes() []byte { return in.data }

// Len returns the size of the backing slice.
func (in *In) Len() int { return len(in.data) }

// Tell returns the current cursor position.
func (in *In) Tell() int { return in.pos }

// Push saves the current cursor position on an internal stack.
func (in *In) Push() { in.stack = append(in.stack, in.pos) }

// Pop restores the cursor position saved by the most recent Push.
func (in *In) Pop() {
	n := len(in.stack) - 1
	in.pos = in.stack[n]
	in.stack = in.stack[:n]
}

// Seek moves the cursor to an absolute position, failing if it is past the
// end of the buffer.
func (in *In) Seek(pos int) error {
	if pos > len(in.data) || pos < 0 {
		return malformed("seek %d out of range (size %d)", pos, len(in.data))
	}
	in.pos = pos
	return nil
}

// Skip advances the cursor by num bytes.
func (in *In) Skip(num int) error { return in.Seek(in.pos + num) }

// Align advances the cursor up to the next multiple of num.
func (in *In) Align(num int) error {
	if num <= 0 {
		return nil
	}
	return in.Skip((num - in.pos%num) % num)
}

// EOF reports whether the cursor has consumed the entire buffer.
func (in *In) EOF() bool { return in.pos >= len(in.data) }

// Available returns the number of unread bytes remaining.
func (in *In) Available() int { return len(in.data) - in.pos }

// Peek returns the next num bytes without advancing the cursor.
func (in *In) Peek(num int) ([]byte, error) {
	if in.Available() < num || num < 0 {
		return nil, malformed("short read: want %d bytes, have %d", num, in.Available())
	}
	return in.data[in.pos : in.pos+num], nil
}

// Read returns the next num bytes and advances the cursor.
func (in *In) Read(num int) ([]byte, error) {
	b, err := in.Peek(num)
	if err != nil {
		return nil, err
	}
	in.pos += num
	return b, nil
}

// ReadAll returns and consumes every remaining byte.
func (in *In) ReadAll() []byte {
	b, _ := in.Read(in.Available())
	return b
}

func (in *In) U8() (uint8, error) {
	b, err := in.Read(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (in *In) Bool() (bool, error) {
	b, err := in.U8()
	return b != 0, err
}

func (in *In) U16() (uint16, error) {
	b, err := in.Read(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (in *In) U32() (uint32, error) {
	b, err := in.Read(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (in *In) U64() (uint64, error) {
	b, err := in.Read(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (in *In) S8() (int8, error) {
	v, err := in.U8()
	return int8(v), err
}

func (in *In) S16() (int16, error) {
	v, err := in.U16()
	return int16(v), err
}

func (in *In) S32() (int32, error) {
	v, err := in.U32()
	return int32(v), err
}

func (in *In) S64() (int64, error) {
	v, err := in.U64()
	return int64(v), err
}

// U24 reads 3 bytes little-endian: low byte, then u16 of the remaining two.
func (in *In) U24() (uint32, error) {
	lo, err := in.U8()
	if err != nil {
		return 0, err
	}
	hi, err := in.U16()
	if err != nil {
		return 0, err
	}
	return uint32(lo) | (uint32(hi) << 8), nil
}

func (in *In) Float32() (float32, error) {
	v, err := in.U32()
	return math.Float32frombits(v), err
}

func (in *In) Float64() (float64, error) {
	v, err := in.U64()
	return math.Float64frombits(v), err
}

// ULEB128 reads an unsigned little-endian base-128 varint.
func (in *In) ULEB128() (uint64, error) {
	var result uint64
	var shift uint
	for {
		b, err := in.U8()
		if err != nil {
			return 0, err
		}
		result |= uint64(b&0x7F) << shift
		if b&0x80 == 0 {
			break
		}
		shift += 7
	}
	return result, nil
}

// String reads a length-prefixed string per the 0x00/0x0B convention,
// failing with ErrMalformedFrame on any other lead byte.
func (in *In) String() (string, error) {
	lead, err := in.S8()
	if err != nil {
		return "", err
	}
	switch lead {
	case 0x00:
		return "", nil
	case 0x0B:
		size, err := in.ULEB128()
		if err != nil {
			return "", err
		}
		b, err := in.Read(int(size))
		if err != nil {
			return "", err
		}
		return sanitizeString(string(b)), nil
	default:
		return "", malformed("bad string lead byte 0x%02x", uint8(lead))
	}
}

// IntList reads an s16 count followed by that many s32 elements.
func (in *In) IntList() ([]int32, error) {
	count, err := in.S16()
	if err != nil {
		return nil, err
	}
	if count < 0 {
		return nil, malformed("negative int list count %d", count)
	}
	out := make([]int32, count)
	for i := range out {
		v, err := in.S32()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
