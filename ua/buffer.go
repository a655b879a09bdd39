// Package ua implements the OPC UA binary encoding (Part 6) for the
// built-in type system: primitives, NodeId, StatusCode, DataValue, Variant,
// ExtensionObject, and the service request/response structures used by
// package client and package monitor.
package ua

import (
	"encoding/binary"
	"math"
)

// MaxStringLength bounds decoded strings and byte strings; decoding a
// length beyond this is treated as a corrupt stream rather than an
// allocation hazard.
const MaxStringLength = 1 << 24 // 16 MiB

// Buffer is a read/write cursor over a byte slice using OPC UA's
// little-endian primitive encoding (Part 6 §5.2). A single sticky error is
// recorded on the first failure; subsequent reads become no-ops so
// callers can decode a whole struct and check Error() once at the end.
// Writes always append and do not consult the recorded error.
type Buffer struct {
	buf []byte
	pos int
	err error
}

// NewBuffer wraps b for reading, or starts a fresh write buffer when b is nil.
func NewBuffer(b []byte) *Buffer {
	return &Buffer{buf: b}
}

// Pos returns the current read offset; writes append without moving it.
func (b *Buffer) Pos() int { return b.pos }

// Len returns the number of bytes written so far (write mode) or the
// length of the wrapped slice (read mode).
func (b *Buffer) Len() int { return len(b.buf) }

// Error returns the first error encountered, or nil.
func (b *Buffer) Error() error { return b.err }

// SetError records err if none is set yet. Exported for decoders of
// composite types that detect their own invariant violations.
func (b *Buffer) SetError(err error) {
	if b.err == nil {
		b.err = err
	}
}

// Bytes returns the bytes written so far.
func (b *Buffer) Bytes() []byte { return b.buf }

// Rest returns the unread remainder of the buffer in read mode.
func (b *Buffer) Rest() []byte {
	if b.pos >= len(b.buf) {
		return nil
	}
	return b.buf[b.pos:]
}

func (b *Buffer) need(n int) ([]byte, bool) {
	if b.err != nil {
		return nil, false
	}
	if n < 0 || b.pos+n > len(b.buf) {
		b.err = ErrDecodingTruncated
		return nil, false
	}
	out := b.buf[b.pos : b.pos+n]
	b.pos += n
	return out, true
}

// --- reads ---

func (b *Buffer) ReadByte() byte {
	v, ok := b.need(1)
	if !ok {
		return 0
	}
	return v[0]
}

func (b *Buffer) ReadBool() bool {
	return b.ReadByte() != 0
}

func (b *Buffer) ReadUint16() uint16 {
	v, ok := b.need(2)
	if !ok {
		return 0
	}
	return binary.LittleEndian.Uint16(v)
}

func (b *Buffer) ReadUint32() uint32 {
	v, ok := b.need(4)
	if !ok {
		return 0
	}
	return binary.LittleEndian.Uint32(v)
}

func (b *Buffer) ReadUint64() uint64 {
	v, ok := b.need(8)
	if !ok {
		return 0
	}
	return binary.LittleEndian.Uint64(v)
}

func (b *Buffer) ReadInt16() int16 { return int16(b.ReadUint16()) }
func (b *Buffer) ReadInt32() int32 { return int32(b.ReadUint32()) }
func (b *Buffer) ReadInt64() int64 { return int64(b.ReadUint64()) }
func (b *Buffer) ReadSByte() int8  { return int8(b.ReadByte()) }

func (b *Buffer) ReadFloat32() float32 {
	return math.Float32frombits(b.ReadUint32())
}

func (b *Buffer) ReadFloat64() float64 {
	return math.Float64frombits(b.ReadUint64())
}

// ReadBytes decodes an i32-length-prefixed byte string. A length of -1
// decodes to a nil slice (the OPC UA "null" value), distinct from an empty
// non-nil slice.
func (b *Buffer) ReadBytes() []byte {
	n := b.ReadInt32()
	if b.err != nil || n < 0 {
		return nil
	}
	if n == 0 {
		return []byte{}
	}
	if n > MaxStringLength {
		b.err = ErrDecodingTruncated
		return nil
	}
	v, ok := b.need(int(n))
	if !ok {
		return nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out
}

// ReadString decodes a length-prefixed UTF-8 string; a null string (-1
// length) decodes to "".
func (b *Buffer) ReadString() string {
	v := b.ReadBytes()
	return string(v)
}

// --- writes ---

func (b *Buffer) WriteByte(v byte) error {
	b.buf = append(b.buf, v)
	return nil
}

func (b *Buffer) WriteBool(v bool) {
	if v {
		b.buf = append(b.buf, 1)
	} else {
		b.buf = append(b.buf, 0)
	}
}

func (b *Buffer) WriteUint16(v uint16) {
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], v)
	b.buf = append(b.buf, tmp[:]...)
}

func (b *Buffer) WriteUint32(v uint32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	b.buf = append(b.buf, tmp[:]...)
}

func (b *Buffer) WriteUint64(v uint64) {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	b.buf = append(b.buf, tmp[:]...)
}

func (b *Buffer) WriteInt16(v int16) { b.WriteUint16(uint16(v)) }
func (b *Buffer) WriteInt32(v int32) { b.WriteUint32(uint32(v)) }
func (b *Buffer) WriteInt64(v int64) { b.WriteUint64(uint64(v)) }
func (b *Buffer) WriteSByte(v int8)  { _ = b.WriteByte(byte(v)) }

func (b *Buffer) WriteFloat32(v float32) { b.WriteUint32(math.Float32bits(v)) }
func (b *Buffer) WriteFloat64(v float64) { b.WriteUint64(math.Float64bits(v)) }

// WriteBytes encodes a byte string with an i32 length prefix. nil encodes
// as length -1; a non-nil empty slice encodes as length 0.
func (b *Buffer) WriteBytes(v []byte) {
	if v == nil {
		b.WriteInt32(-1)
		return
	}
	b.WriteInt32(int32(len(v)))
	b.buf = append(b.buf, v...)
}

func (b *Buffer) WriteString(v string) {
	if v == "" {
		b.WriteInt32(-1)
		return
	}
	b.WriteBytes([]byte(v))
}
