package ua

import (
	"github.com/google/uuid"
)

// GUID is a 16-byte identifier using the standard OPC UA wire layout: the
// first three fields (Data1 uint32, Data2 uint16, Data3 uint16) are
// little-endian, followed by 8 raw bytes (Data4) — the same byte order
// Microsoft's GUID struct uses, which is why LogRecordExtObj's decoder can
// treat Guid wire bytes as directly reusable W3C trace-id bytes.
type GUID [16]byte

// ParseGUID parses the canonical "xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx" form.
func ParseGUID(s string) (GUID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return GUID{}, err
	}
	var g GUID
	// uuid.UUID is big-endian RFC 4122 byte order; convert to OPC UA's
	// mixed-endian wire layout.
	g[0], g[1], g[2], g[3] = u[3], u[2], u[1], u[0]
	g[4], g[5] = u[5], u[4]
	g[6], g[7] = u[7], u[6]
	copy(g[8:], u[8:])
	return g, nil
}

// String renders the canonical dashed hex form.
func (g GUID) String() string {
	var u uuid.UUID
	u[0], u[1], u[2], u[3] = g[3], g[2], g[1], g[0]
	u[4], u[5] = g[5], g[4]
	u[6], u[7] = g[7], g[6]
	copy(u[8:], g[8:])
	return u.String()
}

// DecodeGUID reads the 16-byte wire layout.
func DecodeGUID(buf *Buffer) GUID {
	var g GUID
	d1 := buf.ReadUint32()
	d2 := buf.ReadUint16()
	d3 := buf.ReadUint16()
	g[0], g[1], g[2], g[3] = byte(d1), byte(d1>>8), byte(d1>>16), byte(d1>>24)
	g[4], g[5] = byte(d2), byte(d2>>8)
	g[6], g[7] = byte(d3), byte(d3>>8)
	for i := 8; i < 16; i++ {
		g[i] = buf.ReadByte()
	}
	return g
}

// EncodeGUID writes the 16-byte wire layout.
func EncodeGUID(g GUID, buf *Buffer) {
	d1 := uint32(g[0]) | uint32(g[1])<<8 | uint32(g[2])<<16 | uint32(g[3])<<24
	d2 := uint16(g[4]) | uint16(g[5])<<8
	d3 := uint16(g[6]) | uint16(g[7])<<8
	buf.WriteUint32(d1)
	buf.WriteUint16(d2)
	buf.WriteUint16(d3)
	for i := 8; i < 16; i++ {
		_ = buf.WriteByte(g[i])
	}
}
