package ua

// Generic array helpers shared by the service codecs in services_codec.go.
// All OPC UA arrays share the same i32-length-prefix convention (§4.A);
// -1 decodes to a nil slice, distinct from a present empty array.

func encodeUint32Array(buf *Buffer, v []uint32) {
	if v == nil {
		buf.WriteInt32(-1)
		return
	}
	buf.WriteInt32(int32(len(v)))
	for _, x := range v {
		buf.WriteUint32(x)
	}
}

func decodeUint32Array(buf *Buffer) []uint32 {
	n := buf.ReadInt32()
	if n < 0 {
		return nil
	}
	out := make([]uint32, n)
	for i := range out {
		out[i] = buf.ReadUint32()
	}
	return out
}

func encodeStatusCodeArray(buf *Buffer, v []StatusCode) {
	if v == nil {
		buf.WriteInt32(-1)
		return
	}
	buf.WriteInt32(int32(len(v)))
	for _, x := range v {
		buf.WriteUint32(uint32(x))
	}
}

func decodeStatusCodeArray(buf *Buffer) []StatusCode {
	n := buf.ReadInt32()
	if n < 0 {
		return nil
	}
	out := make([]StatusCode, n)
	for i := range out {
		out[i] = StatusCode(buf.ReadUint32())
	}
	return out
}

func encodeStringArray(buf *Buffer, v []string) {
	if v == nil {
		buf.WriteInt32(-1)
		return
	}
	buf.WriteInt32(int32(len(v)))
	for _, x := range v {
		buf.WriteString(x)
	}
}

func decodeStringArray(buf *Buffer) []string {
	n := buf.ReadInt32()
	if n < 0 {
		return nil
	}
	out := make([]string, n)
	for i := range out {
		out[i] = buf.ReadString()
	}
	return out
}

func encodeBytesArray(buf *Buffer, v [][]byte) {
	if v == nil {
		buf.WriteInt32(-1)
		return
	}
	buf.WriteInt32(int32(len(v)))
	for _, x := range v {
		buf.WriteBytes(x)
	}
}

func decodeBytesArray(buf *Buffer) [][]byte {
	n := buf.ReadInt32()
	if n < 0 {
		return nil
	}
	out := make([][]byte, n)
	for i := range out {
		out[i] = buf.ReadBytes()
	}
	return out
}

func encodeVariantArray(buf *Buffer, v []*Variant) {
	if v == nil {
		buf.WriteInt32(-1)
		return
	}
	buf.WriteInt32(int32(len(v)))
	for _, x := range v {
		EncodeVariant(x, buf)
	}
}

func decodeVariantArray(buf *Buffer) []*Variant {
	n := buf.ReadInt32()
	if n < 0 {
		return nil
	}
	out := make([]*Variant, n)
	for i := range out {
		out[i] = DecodeVariant(buf)
	}
	return out
}
