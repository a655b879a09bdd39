package ua

import "time"

// DataValue bit flags selecting which optional fields follow the Variant
// (Part 4 §7.7.2).
const (
	dvValueFlag              byte = 0x01
	dvStatusCodeFlag         byte = 0x02
	dvSourceTimestampFlag    byte = 0x04
	dvServerTimestampFlag    byte = 0x08
	dvSourcePicosecondsFlag  byte = 0x10
	dvServerPicosecondsFlag  byte = 0x20
)

// DataValue is a value plus status and timestamps (Part 4 §7.7). Timestamps
// are carried as time.Time; picosecond remainders refine the 100ns tick
// resolution of DateTime.
type DataValue struct {
	Value             *Variant
	Status            StatusCode
	HasStatus         bool
	SourceTimestamp   time.Time
	HasSourceTS       bool
	ServerTimestamp   time.Time
	HasServerTS       bool
	SourcePicoseconds uint16
	ServerPicoseconds uint16
}

// EncodeDataValue writes the encoding-mask-prefixed DataValue.
func EncodeDataValue(d *DataValue, buf *Buffer) {
	if d == nil {
		_ = buf.WriteByte(0)
		return
	}
	var mask byte
	if d.Value != nil {
		mask |= dvValueFlag
	}
	if d.HasStatus {
		mask |= dvStatusCodeFlag
	}
	if d.HasSourceTS {
		mask |= dvSourceTimestampFlag
	}
	if d.HasServerTS {
		mask |= dvServerTimestampFlag
	}
	if d.SourcePicoseconds != 0 {
		mask |= dvSourcePicosecondsFlag
	}
	if d.ServerPicoseconds != 0 {
		mask |= dvServerPicosecondsFlag
	}
	_ = buf.WriteByte(mask)
	if mask&dvValueFlag != 0 {
		EncodeVariant(d.Value, buf)
	}
	if mask&dvStatusCodeFlag != 0 {
		buf.WriteUint32(uint32(d.Status))
	}
	if mask&dvSourceTimestampFlag != 0 {
		buf.WriteInt64(EncodeDateTime(d.SourceTimestamp))
	}
	if mask&dvSourcePicosecondsFlag != 0 {
		buf.WriteUint16(d.SourcePicoseconds)
	}
	if mask&dvServerTimestampFlag != 0 {
		buf.WriteInt64(EncodeDateTime(d.ServerTimestamp))
	}
	if mask&dvServerPicosecondsFlag != 0 {
		buf.WriteUint16(d.ServerPicoseconds)
	}
}

// DecodeDataValue reads the encoding-mask-prefixed DataValue.
func DecodeDataValue(buf *Buffer) *DataValue {
	mask := buf.ReadByte()
	d := &DataValue{}
	if mask&dvValueFlag != 0 {
		d.Value = DecodeVariant(buf)
	}
	if mask&dvStatusCodeFlag != 0 {
		d.Status = StatusCode(buf.ReadUint32())
		d.HasStatus = true
	}
	if mask&dvSourceTimestampFlag != 0 {
		d.SourceTimestamp = DecodeDateTime(buf.ReadInt64())
		d.HasSourceTS = true
	}
	if mask&dvSourcePicosecondsFlag != 0 {
		d.SourcePicoseconds = buf.ReadUint16()
	}
	if mask&dvServerTimestampFlag != 0 {
		d.ServerTimestamp = DecodeDateTime(buf.ReadInt64())
		d.HasServerTS = true
	}
	if mask&dvServerPicosecondsFlag != 0 {
		d.ServerPicoseconds = buf.ReadUint16()
	}
	return d
}
