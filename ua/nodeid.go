package ua

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
)

// NodeIDType discriminates which identifier variant a NodeID carries.
type NodeIDType byte

const (
	NodeIDTypeNumeric NodeIDType = iota
	NodeIDTypeString
	NodeIDTypeGUID
	NodeIDTypeOpaque
)

// nodeID encoding-form bytes (Part 6 §5.2.2.9).
const (
	nodeIDFormTwoByte  byte = 0x00
	nodeIDFormFourByte byte = 0x01
	nodeIDFormNumeric  byte = 0x02
	nodeIDFormString   byte = 0x03
	nodeIDFormGUID     byte = 0x04
	nodeIDFormOpaque   byte = 0x05
)

// NodeID is the globally-meaningful address of a node (Part 3 §8.2.1).
// Equality is structural: namespace index, variant, and identifier value
// (opaque compared byte-wise). The zero value is the null NodeID.
type NodeID struct {
	ns     uint16
	typ    NodeIDType
	num    uint32
	str    string
	guid   GUID
	opaque []byte
}

// NewNumericNodeID builds a NodeID with a numeric identifier.
func NewNumericNodeID(ns uint16, id uint32) *NodeID {
	return &NodeID{ns: ns, typ: NodeIDTypeNumeric, num: id}
}

// NewStringNodeID builds a NodeID with a string identifier.
func NewStringNodeID(ns uint16, id string) *NodeID {
	return &NodeID{ns: ns, typ: NodeIDTypeString, str: id}
}

// NewGUIDNodeID builds a NodeID with a GUID identifier.
func NewGUIDNodeID(ns uint16, id GUID) *NodeID {
	return &NodeID{ns: ns, typ: NodeIDTypeGUID, guid: id}
}

// NewByteStringNodeID builds a NodeID with an opaque (ByteString) identifier.
func NewByteStringNodeID(ns uint16, id []byte) *NodeID {
	return &NodeID{ns: ns, typ: NodeIDTypeOpaque, opaque: id}
}

// Namespace returns the NodeID's namespace index.
func (n *NodeID) Namespace() uint16 { return n.ns }

// Type returns which identifier variant n carries.
func (n *NodeID) Type() NodeIDType { return n.typ }

// IntID returns the numeric identifier; zero for non-numeric NodeIDs.
func (n *NodeID) IntID() uint32 { return n.num }

// StringID returns the string identifier; "" for non-string NodeIDs.
func (n *NodeID) StringID() string { return n.str }

// GUIDID returns the GUID identifier.
func (n *NodeID) GUIDID() GUID { return n.guid }

// ByteID returns the opaque identifier bytes.
func (n *NodeID) ByteID() []byte { return n.opaque }

// IsNil reports whether n is the null NodeID (Numeric 0, namespace 0).
func (n *NodeID) IsNil() bool {
	return n == nil || (n.typ == NodeIDTypeNumeric && n.ns == 0 && n.num == 0)
}

// Equal reports structural equality: same variant, namespace, and value.
func (n *NodeID) Equal(o *NodeID) bool {
	if n == nil || o == nil {
		return n.IsNil() && o.IsNil()
	}
	if n.ns != o.ns || n.typ != o.typ {
		return false
	}
	switch n.typ {
	case NodeIDTypeNumeric:
		return n.num == o.num
	case NodeIDTypeString:
		return n.str == o.str
	case NodeIDTypeGUID:
		return n.guid == o.guid
	case NodeIDTypeOpaque:
		return string(n.opaque) == string(o.opaque)
	default:
		return false
	}
}

// String renders the canonical textual form: "ns=<n>;{i|s|g|b}=<value>",
// with "ns=" omitted when the namespace is 0.
func (n *NodeID) String() string {
	if n == nil {
		return "i=0"
	}
	var sb strings.Builder
	if n.ns != 0 {
		fmt.Fprintf(&sb, "ns=%d;", n.ns)
	}
	switch n.typ {
	case NodeIDTypeNumeric:
		fmt.Fprintf(&sb, "i=%d", n.num)
	case NodeIDTypeString:
		fmt.Fprintf(&sb, "s=%s", n.str)
	case NodeIDTypeGUID:
		fmt.Fprintf(&sb, "g=%s", n.guid.String())
	case NodeIDTypeOpaque:
		fmt.Fprintf(&sb, "b=%s", base64.StdEncoding.EncodeToString(n.opaque))
	}
	return sb.String()
}

// ParseNodeID parses the canonical textual form produced by String.
func ParseNodeID(s string) (*NodeID, error) {
	var ns uint16
	rest := s
	if strings.HasPrefix(rest, "ns=") {
		parts := strings.SplitN(rest, ";", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("ua: malformed NodeId %q", s)
		}
		v, err := strconv.ParseUint(strings.TrimPrefix(parts[0], "ns="), 10, 16)
		if err != nil {
			return nil, fmt.Errorf("ua: malformed NodeId namespace %q: %w", s, err)
		}
		ns = uint16(v)
		rest = parts[1]
	}
	if len(rest) < 2 || rest[1] != '=' {
		return nil, fmt.Errorf("ua: malformed NodeId %q", s)
	}
	kind, value := rest[0], rest[2:]
	switch kind {
	case 'i':
		v, err := strconv.ParseUint(value, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("ua: malformed numeric NodeId %q: %w", s, err)
		}
		return NewNumericNodeID(ns, uint32(v)), nil
	case 's':
		return NewStringNodeID(ns, value), nil
	case 'g':
		g, err := ParseGUID(value)
		if err != nil {
			return nil, fmt.Errorf("ua: malformed GUID NodeId %q: %w", s, err)
		}
		return NewGUIDNodeID(ns, g), nil
	case 'b':
		b, err := base64.StdEncoding.DecodeString(value)
		if err != nil {
			return nil, fmt.Errorf("ua: malformed opaque NodeId %q: %w", s, err)
		}
		return NewByteStringNodeID(ns, b), nil
	default:
		return nil, fmt.Errorf("ua: unknown NodeId identifier kind %q in %q", string(kind), s)
	}
}

// Decode reads the compact binary NodeID encoding (Part 6 §5.2.2.9),
// selecting among six forms based on the leading encoding byte.
func DecodeNodeID(buf *Buffer) *NodeID {
	form := buf.ReadByte()
	switch form {
	case nodeIDFormTwoByte:
		return NewNumericNodeID(0, uint32(buf.ReadByte()))
	case nodeIDFormFourByte:
		ns := uint16(buf.ReadByte())
		return NewNumericNodeID(ns, uint32(buf.ReadUint16()))
	case nodeIDFormNumeric:
		ns := buf.ReadUint16()
		return NewNumericNodeID(ns, buf.ReadUint32())
	case nodeIDFormString:
		ns := buf.ReadUint16()
		return NewStringNodeID(ns, buf.ReadString())
	case nodeIDFormGUID:
		ns := buf.ReadUint16()
		return NewGUIDNodeID(ns, DecodeGUID(buf))
	case nodeIDFormOpaque:
		ns := buf.ReadUint16()
		return NewByteStringNodeID(ns, buf.ReadBytes())
	default:
		buf.SetError(&StatusError{Code: StatusBadDecodingError, Cause: fmt.Errorf("ua: unknown NodeId form 0x%02x", form)})
		return NewNumericNodeID(0, 0)
	}
}

// Encode writes the binary NodeID encoding, picking the smallest compact
// form that fits the identifier.
func EncodeNodeID(n *NodeID, buf *Buffer) {
	if n == nil {
		n = NewNumericNodeID(0, 0)
	}
	switch n.typ {
	case NodeIDTypeNumeric:
		switch {
		case n.ns == 0 && n.num <= 0xFF:
			_ = buf.WriteByte(nodeIDFormTwoByte)
			_ = buf.WriteByte(byte(n.num))
		case n.ns <= 0xFF && n.num <= 0xFFFF:
			_ = buf.WriteByte(nodeIDFormFourByte)
			_ = buf.WriteByte(byte(n.ns))
			buf.WriteUint16(uint16(n.num))
		default:
			_ = buf.WriteByte(nodeIDFormNumeric)
			buf.WriteUint16(n.ns)
			buf.WriteUint32(n.num)
		}
	case NodeIDTypeString:
		_ = buf.WriteByte(nodeIDFormString)
		buf.WriteUint16(n.ns)
		buf.WriteString(n.str)
	case NodeIDTypeGUID:
		_ = buf.WriteByte(nodeIDFormGUID)
		buf.WriteUint16(n.ns)
		EncodeGUID(n.guid, buf)
	case NodeIDTypeOpaque:
		_ = buf.WriteByte(nodeIDFormOpaque)
		buf.WriteUint16(n.ns)
		buf.WriteBytes(n.opaque)
	}
}

// ExpandedNodeID is a NodeID plus an optional namespace URI and server
// index, used on the wire when a namespace index may not carry meaning
// across servers (Part 6 §5.2.2.10).
type ExpandedNodeID struct {
	NodeID       *NodeID
	NamespaceURI string
	ServerIndex  uint32
}

const (
	expandedFlagNamespaceURI byte = 0x80
	expandedFlagServerIndex  byte = 0x40
)

// DecodeExpandedNodeID reads an ExpandedNodeId: the NodeId's encoding byte
// carries two extra high bits signalling the optional trailing fields.
func DecodeExpandedNodeID(buf *Buffer) *ExpandedNodeID {
	start := buf.pos
	formByte := buf.buf[start]
	flags := formByte & (expandedFlagNamespaceURI | expandedFlagServerIndex)
	// Rewind isn't needed: clear the flag bits so DecodeNodeID sees a plain form.
	buf.buf[start] = formByte &^ (expandedFlagNamespaceURI | expandedFlagServerIndex)
	nid := DecodeNodeID(buf)
	buf.buf[start] = formByte

	e := &ExpandedNodeID{NodeID: nid}
	if flags&expandedFlagNamespaceURI != 0 {
		e.NamespaceURI = buf.ReadString()
	}
	if flags&expandedFlagServerIndex != 0 {
		e.ServerIndex = buf.ReadUint32()
	}
	return e
}

// EncodeExpandedNodeID writes an ExpandedNodeId, setting the flag bits on
// the NodeId's encoding byte when the optional fields are present.
func EncodeExpandedNodeID(e *ExpandedNodeID, buf *Buffer) {
	if e == nil || e.NodeID == nil {
		EncodeNodeID(nil, buf)
		return
	}
	patchAt := buf.Len()
	EncodeNodeID(e.NodeID, buf)
	var flags byte
	if e.NamespaceURI != "" {
		flags |= expandedFlagNamespaceURI
	}
	if e.ServerIndex != 0 {
		flags |= expandedFlagServerIndex
	}
	if flags != 0 {
		buf.buf[patchAt] |= flags
	}
	if e.NamespaceURI != "" {
		buf.WriteString(e.NamespaceURI)
	}
	if e.ServerIndex != 0 {
		buf.WriteUint32(e.ServerIndex)
	}
}
