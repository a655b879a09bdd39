package ua

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferPrimitiveRoundTrip(t *testing.T) {
	buf := NewBuffer(nil)
	buf.WriteBool(true)
	buf.WriteUint16(0xBEEF)
	buf.WriteUint32(0xDEADBEEF)
	buf.WriteUint64(0x0102030405060708)
	buf.WriteInt32(-42)
	buf.WriteFloat32(3.5)
	buf.WriteFloat64(2.718281828)
	buf.WriteString("hello opc ua")
	buf.WriteBytes([]byte{1, 2, 3})

	r := NewBuffer(buf.Bytes())
	assert.Equal(t, true, r.ReadBool())
	assert.Equal(t, uint16(0xBEEF), r.ReadUint16())
	assert.Equal(t, uint32(0xDEADBEEF), r.ReadUint32())
	assert.Equal(t, uint64(0x0102030405060708), r.ReadUint64())
	assert.Equal(t, int32(-42), r.ReadInt32())
	assert.Equal(t, float32(3.5), r.ReadFloat32())
	assert.Equal(t, 2.718281828, r.ReadFloat64())
	assert.Equal(t, "hello opc ua", r.ReadString())
	assert.Equal(t, []byte{1, 2, 3}, r.ReadBytes())
	require.NoError(t, r.Error())
}

func TestBufferNullStringAndBytes(t *testing.T) {
	buf := NewBuffer(nil)
	buf.WriteString("")
	buf.WriteBytes(nil)
	buf.WriteBytes([]byte{})

	r := NewBuffer(buf.Bytes())
	assert.Equal(t, "", r.ReadString())
	assert.Nil(t, r.ReadBytes())
	assert.Equal(t, []byte{}, r.ReadBytes())
}

func TestBufferTruncatedReadSetsStickyError(t *testing.T) {
	r := NewBuffer([]byte{0x01})
	_ = r.ReadUint32()
	require.Error(t, r.Error())
	assert.ErrorIs(t, r.Error(), ErrDecodingTruncated)

	// Once an error is set, further reads are no-ops rather than panicking.
	assert.Equal(t, uint16(0), r.ReadUint16())
	assert.Equal(t, "", r.ReadString())
}

func TestBufferRest(t *testing.T) {
	r := NewBuffer([]byte{1, 2, 3, 4})
	assert.Equal(t, byte(1), r.ReadByte())
	assert.Equal(t, []byte{2, 3, 4}, r.Rest())

	exhausted := NewBuffer([]byte{1})
	_ = exhausted.ReadByte()
	assert.Nil(t, exhausted.Rest())
}

func TestBufferSetErrorDoesNotOverwriteFirst(t *testing.T) {
	r := NewBuffer(nil)
	first := ErrDecodingTruncated
	r.SetError(first)
	r.SetError(nil)
	assert.Equal(t, first, r.Error())
}
