package ua

import (
	"fmt"
	"time"
)

// TypeID identifies one of the OPC UA built-in scalar types (Part 6 §5.1.2).
type TypeID byte

const (
	TypeIDNull TypeID = iota
	TypeIDBoolean
	TypeIDSByte
	TypeIDByte
	TypeIDInt16
	TypeIDUInt16
	TypeIDInt32
	TypeIDUInt32
	TypeIDInt64
	TypeIDUInt64
	TypeIDFloat
	TypeIDDouble
	TypeIDString
	TypeIDDateTime
	TypeIDGUID
	TypeIDByteString
	TypeIDXmlElement
	TypeIDNodeID
	TypeIDExpandedNodeID
	TypeIDStatusCode
	TypeIDQualifiedName
	TypeIDLocalizedText
	TypeIDExtensionObject
	TypeIDDataValue
	TypeIDVariant
	TypeIDDiagnosticInfo
)

const (
	variantArrayFlag      byte = 0x80
	variantDimensionsFlag byte = 0x40
	variantTypeMask       byte = 0x3F
)

// Variant is a tagged union over the OPC UA built-in scalar set, carrying
// either a single scalar value, a 1-D array, or an N-D array with explicit
// dimension lengths (Part 6 §5.2.2.16). A zero-value Variant (TypeIDNull,
// no body) is the "null" variant.
type Variant struct {
	typeID     TypeID
	value      interface{}   // scalar value when !isArray
	elements   []interface{} // flattened array elements when isArray
	isArray    bool
	dimensions []int32 // non-nil only for rank > 1
}

// NewVariant builds a scalar Variant from a Go value, inferring the
// built-in TypeID from its type. An unsupported Go type returns an error
// rather than silently dropping data.
func NewVariant(v interface{}) (*Variant, error) {
	switch v.(type) {
	case nil:
		return &Variant{}, nil
	case bool, int8, byte, int16, uint16, int32, uint32, int64, uint64,
		float32, float64, string, time.Time, GUID, []byte, *NodeID,
		*ExpandedNodeID, StatusCode, QualifiedName, LocalizedText, *ExtensionObject,
		int, uint:
		return &Variant{typeID: scalarTypeID(v), value: normalizeScalar(v)}, nil
	default:
		if elems, dims, typeID, ok := arrayOf(v); ok {
			return &Variant{typeID: typeID, isArray: true, elements: elems, dimensions: dims}, nil
		}
		return nil, fmt.Errorf("ua: unsupported Variant value type %T", v)
	}
}

// MustVariant is NewVariant but panics on error, for call sites building
// requests from compile-time-known values.
func MustVariant(v interface{}) *Variant {
	vr, err := NewVariant(v)
	if err != nil {
		panic(err)
	}
	return vr
}

func normalizeScalar(v interface{}) interface{} {
	switch x := v.(type) {
	case int:
		return int32(x)
	case uint:
		return uint32(x)
	default:
		return x
	}
}

func scalarTypeID(v interface{}) TypeID {
	switch v.(type) {
	case bool:
		return TypeIDBoolean
	case int8:
		return TypeIDSByte
	case byte:
		return TypeIDByte
	case int16:
		return TypeIDInt16
	case uint16:
		return TypeIDUInt16
	case int32, int:
		return TypeIDInt32
	case uint32, uint:
		return TypeIDUInt32
	case int64:
		return TypeIDInt64
	case uint64:
		return TypeIDUInt64
	case float32:
		return TypeIDFloat
	case float64:
		return TypeIDDouble
	case string:
		return TypeIDString
	case time.Time:
		return TypeIDDateTime
	case GUID:
		return TypeIDGUID
	case []byte:
		return TypeIDByteString
	case *NodeID:
		return TypeIDNodeID
	case *ExpandedNodeID:
		return TypeIDExpandedNodeID
	case StatusCode:
		return TypeIDStatusCode
	case QualifiedName:
		return TypeIDQualifiedName
	case LocalizedText:
		return TypeIDLocalizedText
	case *ExtensionObject:
		return TypeIDExtensionObject
	default:
		return TypeIDNull
	}
}

// arrayOf inspects v for a supported slice type and flattens it to
// []interface{}; dims is nil for a plain 1-D array.
func arrayOf(v interface{}) (elements []interface{}, dims []int32, typeID TypeID, ok bool) {
	switch x := v.(type) {
	case []bool:
		return toIface(len(x), func(i int) interface{} { return x[i] }), nil, TypeIDBoolean, true
	case []int32:
		return toIface(len(x), func(i int) interface{} { return x[i] }), nil, TypeIDInt32, true
	case []uint32:
		return toIface(len(x), func(i int) interface{} { return x[i] }), nil, TypeIDUInt32, true
	case []int64:
		return toIface(len(x), func(i int) interface{} { return x[i] }), nil, TypeIDInt64, true
	case []uint64:
		return toIface(len(x), func(i int) interface{} { return x[i] }), nil, TypeIDUInt64, true
	case []float64:
		return toIface(len(x), func(i int) interface{} { return x[i] }), nil, TypeIDDouble, true
	case []string:
		return toIface(len(x), func(i int) interface{} { return x[i] }), nil, TypeIDString, true
	case []*NodeID:
		return toIface(len(x), func(i int) interface{} { return x[i] }), nil, TypeIDNodeID, true
	case []*Variant:
		return toIface(len(x), func(i int) interface{} { return x[i] }), nil, TypeIDVariant, true
	case []*ExtensionObject:
		return toIface(len(x), func(i int) interface{} { return x[i] }), nil, TypeIDExtensionObject, true
	case []interface{}:
		// Already-flattened, possibly heterogeneous array (e.g. a structured
		// DataType value built from Go maps rather than a registered
		// ExtensionObject). Passed through as-is under TypeIDVariant; callers
		// that need wire encoding must supply a concretely-typed slice.
		return x, nil, TypeIDVariant, true
	default:
		return nil, nil, TypeIDNull, false
	}
}

func toIface(n int, at func(int) interface{}) []interface{} {
	out := make([]interface{}, n)
	for i := 0; i < n; i++ {
		out[i] = at(i)
	}
	return out
}

// Value returns the scalar value, or []interface{} for an array Variant,
// or nil for a null Variant.
func (v *Variant) Value() interface{} {
	if v == nil {
		return nil
	}
	if v.isArray {
		return v.elements
	}
	return v.value
}

// IsArray reports whether v carries an array (rank >= 1).
func (v *Variant) IsArray() bool { return v != nil && v.isArray }

// Dimensions returns the explicit dimension lengths for a multi-dimensional
// array, or nil for a scalar or 1-D array.
func (v *Variant) Dimensions() []int32 {
	if v == nil {
		return nil
	}
	return v.dimensions
}

// Type returns the Variant's built-in TypeID.
func (v *Variant) Type() TypeID {
	if v == nil {
		return TypeIDNull
	}
	return v.typeID
}

// EncodeVariant writes the leading type/array byte and body (Part 6 §5.2.2.16).
func EncodeVariant(v *Variant, buf *Buffer) {
	if v == nil || (v.typeID == TypeIDNull && !v.isArray) {
		_ = buf.WriteByte(0)
		return
	}
	mask := byte(v.typeID) & variantTypeMask
	if v.isArray {
		mask |= variantArrayFlag
		if len(v.dimensions) > 1 {
			mask |= variantDimensionsFlag
		}
	}
	_ = buf.WriteByte(mask)

	if v.isArray {
		buf.WriteInt32(int32(len(v.elements)))
		for _, e := range v.elements {
			encodeScalarByType(v.typeID, e, buf)
		}
		if len(v.dimensions) > 1 {
			buf.WriteInt32(int32(len(v.dimensions)))
			for _, d := range v.dimensions {
				buf.WriteInt32(d)
			}
		}
		return
	}
	encodeScalarByType(v.typeID, v.value, buf)
}

// DecodeVariant reads a Variant (Part 6 §5.2.2.16).
func DecodeVariant(buf *Buffer) *Variant {
	mask := buf.ReadByte()
	if mask == 0 {
		return &Variant{}
	}
	typeID := TypeID(mask & variantTypeMask)
	isArray := mask&variantArrayFlag != 0
	hasDims := mask&variantDimensionsFlag != 0

	if !isArray {
		return &Variant{typeID: typeID, value: decodeScalarByType(typeID, buf)}
	}

	n := buf.ReadInt32()
	var elements []interface{}
	if n >= 0 {
		elements = make([]interface{}, n)
		for i := range elements {
			elements[i] = decodeScalarByType(typeID, buf)
		}
	}
	var dims []int32
	if hasDims {
		dn := buf.ReadInt32()
		if dn > 0 {
			dims = make([]int32, dn)
			for i := range dims {
				dims[i] = buf.ReadInt32()
			}
		}
	}
	return &Variant{typeID: typeID, isArray: true, elements: elements, dimensions: dims}
}

func encodeScalarByType(t TypeID, v interface{}, buf *Buffer) {
	switch t {
	case TypeIDBoolean:
		buf.WriteBool(v.(bool))
	case TypeIDSByte:
		buf.WriteSByte(v.(int8))
	case TypeIDByte:
		_ = buf.WriteByte(v.(byte))
	case TypeIDInt16:
		buf.WriteInt16(v.(int16))
	case TypeIDUInt16:
		buf.WriteUint16(v.(uint16))
	case TypeIDInt32:
		buf.WriteInt32(v.(int32))
	case TypeIDUInt32:
		buf.WriteUint32(v.(uint32))
	case TypeIDInt64:
		buf.WriteInt64(v.(int64))
	case TypeIDUInt64:
		buf.WriteUint64(v.(uint64))
	case TypeIDFloat:
		buf.WriteFloat32(v.(float32))
	case TypeIDDouble:
		buf.WriteFloat64(v.(float64))
	case TypeIDString:
		buf.WriteString(v.(string))
	case TypeIDDateTime:
		buf.WriteInt64(EncodeDateTime(v.(time.Time)))
	case TypeIDGUID:
		EncodeGUID(v.(GUID), buf)
	case TypeIDByteString, TypeIDXmlElement:
		buf.WriteBytes(v.([]byte))
	case TypeIDNodeID:
		EncodeNodeID(v.(*NodeID), buf)
	case TypeIDExpandedNodeID:
		EncodeExpandedNodeID(v.(*ExpandedNodeID), buf)
	case TypeIDStatusCode:
		buf.WriteUint32(uint32(v.(StatusCode)))
	case TypeIDQualifiedName:
		EncodeQualifiedName(v.(QualifiedName), buf)
	case TypeIDLocalizedText:
		EncodeLocalizedText(v.(LocalizedText), buf)
	case TypeIDExtensionObject:
		EncodeExtensionObject(v.(*ExtensionObject), buf)
	case TypeIDVariant:
		EncodeVariant(v.(*Variant), buf)
	default:
		buf.SetError(&StatusError{Code: StatusBadEncodingError, Cause: fmt.Errorf("ua: cannot encode Variant scalar type %d", t)})
	}
}

func decodeScalarByType(t TypeID, buf *Buffer) interface{} {
	switch t {
	case TypeIDBoolean:
		return buf.ReadBool()
	case TypeIDSByte:
		return buf.ReadSByte()
	case TypeIDByte:
		return buf.ReadByte()
	case TypeIDInt16:
		return buf.ReadInt16()
	case TypeIDUInt16:
		return buf.ReadUint16()
	case TypeIDInt32:
		return buf.ReadInt32()
	case TypeIDUInt32:
		return buf.ReadUint32()
	case TypeIDInt64:
		return buf.ReadInt64()
	case TypeIDUInt64:
		return buf.ReadUint64()
	case TypeIDFloat:
		return buf.ReadFloat32()
	case TypeIDDouble:
		return buf.ReadFloat64()
	case TypeIDString:
		return buf.ReadString()
	case TypeIDDateTime:
		return DecodeDateTime(buf.ReadInt64())
	case TypeIDGUID:
		return DecodeGUID(buf)
	case TypeIDByteString, TypeIDXmlElement:
		return buf.ReadBytes()
	case TypeIDNodeID:
		return DecodeNodeID(buf)
	case TypeIDExpandedNodeID:
		return DecodeExpandedNodeID(buf)
	case TypeIDStatusCode:
		return StatusCode(buf.ReadUint32())
	case TypeIDQualifiedName:
		return DecodeQualifiedName(buf)
	case TypeIDLocalizedText:
		return DecodeLocalizedText(buf)
	case TypeIDExtensionObject:
		return DecodeExtensionObject(buf)
	case TypeIDVariant:
		return DecodeVariant(buf)
	default:
		buf.SetError(&StatusError{Code: StatusBadDecodingError, Cause: fmt.Errorf("ua: cannot decode Variant scalar type %d", t)})
		return nil
	}
}
