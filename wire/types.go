package wire

import "fmt"

// ===== TARS WIRE FORMAT TYPES =====

// TypeMark identifies how a field's payload is laid out on the wire.
type TypeMark uint8

const (
	TypeInt8        TypeMark = 0  // 1 byte
	TypeInt16       TypeMark = 1  // 2 bytes big-endian
	TypeInt32       TypeMark = 2  // 4 bytes big-endian
	TypeInt64       TypeMark = 3  // 8 bytes big-endian
	TypeFloat       TypeMark = 4  // IEEE-754 float32
	TypeDouble      TypeMark = 5  // IEEE-754 float64
	TypeString1     TypeMark = 6  // 1 byte length + bytes
	TypeString4     TypeMark = 7  // 4 byte length + bytes
	TypeMap         TypeMark = 8  // 4 byte region length + key/value entries
	TypeList        TypeMark = 9  // 4 byte region length + element entries
	TypeStructBegin TypeMark = 10 // nested record, closed by TypeStructEnd
	TypeStructEnd   TypeMark = 11
	TypeZero        TypeMark = 12 // no payload, always 0/false
	TypeSimpleList  TypeMark = 13 // inner Int8 header + 4 byte count + raw bytes
)

var typeMarkNames = [...]string{
	TypeInt8:        "Int8",
	TypeInt16:       "Int16",
	TypeInt32:       "Int32",
	TypeInt64:       "Int64",
	TypeFloat:       "Float",
	TypeDouble:      "Double",
	TypeString1:     "String1",
	TypeString4:     "String4",
	TypeMap:         "Map",
	TypeList:        "List",
	TypeStructBegin: "StructBegin",
	TypeStructEnd:   "StructEnd",
	TypeZero:        "Zero",
	TypeSimpleList:  "SimpleList",
}

// String returns a human-readable name for the type mark.
func (t TypeMark) String() string {
	if int(t) < len(typeMarkNames) {
		return typeMarkNames[t]
	}
	return "Unknown"
}

// ParseTypeMark maps a raw 4-bit nibble to a TypeMark. Nibbles 14 and 15
// are not assigned and yield ErrUnknownType.
func ParseTypeMark(b byte) (TypeMark, error) {
	if b > byte(TypeSimpleList) {
		return 0, fmt.Errorf("%w: %d", ErrUnknownType, b)
	}
	return TypeMark(b), nil
}

// isInteger reports whether the mark carries an integer payload, counting
// the Zero marker.
func (t TypeMark) isInteger() bool {
	return t <= TypeInt64 || t == TypeZero
}

// intWidth is the payload width in bytes of an integer mark.
func (t TypeMark) intWidth() int {
	switch t {
	case TypeInt8:
		return 1
	case TypeInt16:
		return 2
	case TypeInt32:
		return 4
	case TypeInt64:
		return 8
	default:
		return 0
	}
}

// Tag identifies a field inside one record's region.
type Tag int32

// MaxTag is the largest tag a header can carry.
const MaxTag Tag = 255

// Header is a decoded field header.
type Header struct {
	Tag  Tag
	Type TypeMark
	Len  int // header length on the wire, 1 or 2
}
