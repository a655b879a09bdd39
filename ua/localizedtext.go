package ua

// QualifiedName is a name qualified by a namespace index (Part 3 §8.3).
type QualifiedName struct {
	NamespaceIndex uint16
	Name           string
}

const (
	qnFlagHasName byte = 0 // QualifiedName has no encoding mask on the wire; kept for symmetry with LocalizedText
)

func DecodeQualifiedName(buf *Buffer) QualifiedName {
	ns := buf.ReadUint16()
	name := buf.ReadString()
	return QualifiedName{NamespaceIndex: ns, Name: name}
}

func EncodeQualifiedName(q QualifiedName, buf *Buffer) {
	buf.WriteUint16(q.NamespaceIndex)
	buf.WriteString(q.Name)
}

// LocalizedText is a human-readable string with an optional locale tag
// (Part 3 §8.5). The wire encoding mask bit 0 signals a present locale,
// bit 1 a present text.
type LocalizedText struct {
	Locale string
	Text   string
}

const (
	ltFlagLocale byte = 0x01
	ltFlagText   byte = 0x02
)

func DecodeLocalizedText(buf *Buffer) LocalizedText {
	mask := buf.ReadByte()
	var lt LocalizedText
	if mask&ltFlagLocale != 0 {
		lt.Locale = buf.ReadString()
	}
	if mask&ltFlagText != 0 {
		lt.Text = buf.ReadString()
	}
	return lt
}

func EncodeLocalizedText(lt LocalizedText, buf *Buffer) {
	var mask byte
	if lt.Locale != "" {
		mask |= ltFlagLocale
	}
	if lt.Text != "" {
		mask |= ltFlagText
	}
	_ = buf.WriteByte(mask)
	if lt.Locale != "" {
		buf.WriteString(lt.Locale)
	}
	if lt.Text != "" {
		buf.WriteString(lt.Text)
	}
}
