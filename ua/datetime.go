package ua

import "time"

// opcuaEpochOffset is the number of 100ns ticks between the OPC UA epoch
// (1601-01-01 UTC) and the Unix epoch (1970-01-01 UTC).
const opcuaEpochOffset int64 = 116444736000000000

// DateTimeMaxTicks is the sentinel tick value ("infinite").
const DateTimeMaxTicks int64 = 1<<63 - 1

// EncodeDateTime converts a time.Time to 100ns ticks since 1601-01-01 UTC.
// The zero time and any time before the OPC UA epoch encode as 0 (min);
// a time at or after Go's practical "forever" sentinel threshold encodes
// as DateTimeMaxTicks.
func EncodeDateTime(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	if t.Year() >= 9999 {
		return DateTimeMaxTicks
	}
	ticks := t.UnixNano()/100 + opcuaEpochOffset
	if ticks < 0 {
		return 0
	}
	return ticks
}

// DecodeDateTime converts 100ns ticks since 1601-01-01 UTC to a time.Time.
// A tick value of 0 decodes to the zero time ("min"); DateTimeMaxTicks
// decodes to a far-future sentinel ("infinite").
func DecodeDateTime(ticks int64) time.Time {
	if ticks <= 0 {
		return time.Time{}
	}
	if ticks == DateTimeMaxTicks {
		return time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC)
	}
	unixNano := (ticks - opcuaEpochOffset) * 100
	return time.Unix(0, unixNano).UTC()
}
