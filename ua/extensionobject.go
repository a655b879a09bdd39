package ua

import (
	"reflect"
	"sync"
)

// BinaryCodec is implemented by structured types that know how to encode
// and decode their own binary body when carried inside an ExtensionObject
// (LogRecordExtObj is one such type).
type BinaryCodec interface {
	Encode() ([]byte, error)
	Decode(b []byte) (int, error)
}

// ExtensionObject carries a structured body (another encodable type)
// together with the NodeId that identifies its type, permitting forward
// compatibility with types unknown to this decoder (Part 6 §5.2.2.15).
type ExtensionObject struct {
	TypeID   *NodeID
	Encoding byte // 0 none, 1 binary, 2 xml
	Value    interface{}
	raw      []byte // retained verbatim for unknown/opaque types, for byte-identical re-encode
}

var (
	registryMu sync.RWMutex
	registry   = map[string]func() BinaryCodec{}
)

// RegisterExtensionObject associates typeID with a prototype value whose
// concrete type is instantiated (via a zero value of the same type) on
// decode. Call from an init() func in the package defining the type.
func RegisterExtensionObject(typeID *NodeID, prototype BinaryCodec) {
	registryMu.Lock()
	defer registryMu.Unlock()
	elemType := reflect.TypeOf(prototype).Elem()
	registry[typeID.String()] = func() BinaryCodec {
		return reflect.New(elemType).Interface().(BinaryCodec)
	}
}

func lookup(typeID *NodeID) (func() BinaryCodec, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	ctor, ok := registry[typeID.String()]
	return ctor, ok
}

// EncodeExtensionObject writes "NodeId typeId | encoding byte | bytes".
// When Value implements BinaryCodec it is re-serialized; otherwise the
// retained raw bytes are written verbatim (byte-identical re-encode for
// opaque/unknown types).
func EncodeExtensionObject(e *ExtensionObject, buf *Buffer) {
	if e == nil {
		EncodeNodeID(nil, buf)
		_ = buf.WriteByte(0)
		return
	}
	EncodeNodeID(e.TypeID, buf)
	_ = buf.WriteByte(e.Encoding)
	if e.Encoding == 0 {
		return
	}
	var body []byte
	if bc, ok := e.Value.(BinaryCodec); ok {
		b, err := bc.Encode()
		if err != nil {
			buf.SetError(err)
			return
		}
		body = b
	} else {
		body = e.raw
	}
	buf.WriteBytes(body)
}

// DecodeExtensionObject reads the NodeId/encoding/body triple. When a
// BinaryCodec prototype is registered for TypeID, the body is decoded into
// a fresh instance and placed in Value; otherwise Value holds the raw
// []byte body so a later re-encode is byte-identical.
func DecodeExtensionObject(buf *Buffer) *ExtensionObject {
	typeID := DecodeNodeID(buf)
	encoding := buf.ReadByte()
	e := &ExtensionObject{TypeID: typeID, Encoding: encoding}
	if encoding == 0 {
		return e
	}
	body := buf.ReadBytes()
	e.raw = body
	if encoding != 1 {
		e.Value = body
		return e
	}
	if ctor, ok := lookup(typeID); ok {
		inst := ctor()
		if _, err := inst.Decode(body); err != nil {
			buf.SetError(err)
			e.Value = body
			return e
		}
		e.Value = inst
		return e
	}
	e.Value = body
	return e
}
