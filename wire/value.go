package wire

import (
	"fmt"
	"math"
	"strconv"
)

// Value is a decoded TARS value of any category, read without a schema.
// The set of implementations is closed.
type Value interface {
	// Mark is the type mark the value is written with.
	Mark() TypeMark
	isValue()
}

// IntValue is any integer entry. Type records the mark it was read from
// (Int8..Int64 or Zero); the value is sign-extended to 64 bits.
type IntValue struct {
	Type TypeMark
	V    int64
}

// Float32Value is a Float entry.
type Float32Value float32

// Float64Value is a Double entry.
type Float64Value float64

// StringValue is a String1 or String4 entry.
type StringValue string

// BytesValue is a SimpleList entry.
type BytesValue []byte

// ListValue is a List entry.
type ListValue []Value

// MapValue is a Map entry, with pairs in stream order.
type MapValue []MapEntry

// MapEntry is one key/value pair of a MapValue.
type MapEntry struct {
	Key   Value
	Value Value
}

// StructValue is a nested record.
type StructValue []Field

// Field is one (tag, value) entry of a region.
type Field struct {
	Tag   Tag
	Value Value
}

func (v IntValue) Mark() TypeMark {
	if v.Type == TypeZero || v.Type.intWidth() > 0 {
		return v.Type
	}
	return TypeInt64
}
func (Float32Value) Mark() TypeMark { return TypeFloat }
func (Float64Value) Mark() TypeMark { return TypeDouble }
func (v StringValue) Mark() TypeMark {
	if len(v) <= 255 {
		return TypeString1
	}
	return TypeString4
}
func (BytesValue) Mark() TypeMark  { return TypeSimpleList }
func (ListValue) Mark() TypeMark   { return TypeList }
func (MapValue) Mark() TypeMark    { return TypeMap }
func (StructValue) Mark() TypeMark { return TypeStructBegin }

func (IntValue) isValue()     {}
func (Float32Value) isValue() {}
func (Float64Value) isValue() {}
func (StringValue) isValue()  {}
func (BytesValue) isValue()   {}
func (ListValue) isValue()    {}
func (MapValue) isValue()     {}
func (StructValue) isValue()  {}

// Int returns the IntValue for v with the mark the encoder would choose.
func Int(v int64) IntValue {
	switch {
	case v == 0:
		return IntValue{Type: TypeZero}
	case v >= -1<<7 && v < 1<<7:
		return IntValue{Type: TypeInt8, V: v}
	case v >= -1<<15 && v < 1<<15:
		return IntValue{Type: TypeInt16, V: v}
	case v >= -1<<31 && v < 1<<31:
		return IntValue{Type: TypeInt32, V: v}
	default:
		return IntValue{Type: TypeInt64, V: v}
	}
}

// DECODER METHODS

// DecodeFields decodes every entry of a top-level message in stream order.
func DecodeFields(data []byte) ([]Field, error) {
	return NewDecoder(data).Fields()
}

// Fields decodes every entry of the decoder's region in stream order.
func (d *Decoder) Fields() ([]Field, error) {
	d.pos = 0
	fields := make([]Field, 0)
	for d.remaining() > 0 {
		h, err := d.readHeader()
		if err != nil {
			return nil, err
		}
		v, err := d.valuePayload(h)
		if err != nil {
			return nil, wrapWithField(err, strconv.Itoa(int(h.Tag)))
		}
		fields = append(fields, Field{Tag: h.Tag, Value: v})
	}
	return fields, nil
}

// ReadValue decodes the entry at tag without a schema.
func (d *Decoder) ReadValue(tag Tag, required bool) (Value, error) {
	return readTagged(d, tag, required, nil, (*Decoder).valuePayload)
}

// ReadRaw returns the encoded bytes (header and payload) of the entry at
// tag. The result aliases the decoder's buffer.
func (d *Decoder) ReadRaw(tag Tag) ([]byte, error) {
	h, _, err := d.lookup(tag, true)
	if err != nil {
		return nil, err
	}
	n, err := d.sizeOf(h.Type)
	if err != nil {
		return nil, err
	}
	start := d.pos - h.Len
	return d.buf[start : d.pos+n], nil
}

func (d *Decoder) nextValue() (Value, error) {
	h, err := d.readHeader()
	if err != nil {
		return nil, err
	}
	return d.valuePayload(h)
}

func (d *Decoder) valuePayload(h Header) (Value, error) {
	switch h.Type {
	case TypeZero, TypeInt8, TypeInt16, TypeInt32, TypeInt64:
		v, err := d.signedPayload(h, 8, "int64")
		if err != nil {
			return nil, err
		}
		return IntValue{Type: h.Type, V: v}, nil
	case TypeFloat:
		v, err := d.float32Payload(h)
		return Float32Value(v), err
	case TypeDouble:
		v, err := d.float64Payload(h)
		return Float64Value(v), err
	case TypeString1, TypeString4:
		v, err := d.stringPayload(h)
		return StringValue(v), err
	case TypeSimpleList:
		v, err := d.bytesPayload(h)
		return BytesValue(v), err
	case TypeList:
		return d.listValue()
	case TypeMap:
		return d.mapValue()
	case TypeStructBegin:
		body, err := d.structBody()
		if err != nil {
			return nil, err
		}
		fields, err := body.Fields()
		if err != nil {
			return nil, err
		}
		return StructValue(fields), nil
	default:
		return nil, fmt.Errorf("%w: unexpected %s at tag %d", ErrUnknownType, h.Type, h.Tag)
	}
}

func (d *Decoder) listValue() (Value, error) {
	n, err := d.readSize()
	if err != nil {
		return nil, err
	}
	sub, err := d.child(n)
	if err != nil {
		return nil, err
	}
	out := make(ListValue, 0)
	for sub.remaining() > 0 {
		v, err := sub.nextValue()
		if err != nil {
			return nil, wrapWithField(err, strconv.Itoa(len(out)))
		}
		out = append(out, v)
	}
	return out, nil
}

func (d *Decoder) mapValue() (Value, error) {
	n, err := d.readSize()
	if err != nil {
		return nil, err
	}
	sub, err := d.child(n)
	if err != nil {
		return nil, err
	}
	out := make(MapValue, 0)
	for sub.remaining() > 0 {
		k, err := sub.nextValue()
		if err != nil {
			return nil, err
		}
		v, err := sub.nextValue()
		if err != nil {
			return nil, wrapWithField(err, fmt.Sprint(ToInterface(k)))
		}
		out = append(out, MapEntry{Key: k, Value: v})
	}
	return out, nil
}

// ENCODER METHODS

// EncodeFields encodes a field list as a top-level message.
func EncodeFields(fields []Field) ([]byte, error) {
	e := NewEncoder()
	for _, f := range fields {
		if err := e.WriteValue(f.Tag, f.Value); err != nil {
			return nil, err
		}
	}
	return e.Finish(), nil
}

// WriteValue encodes v at tag. Integers keep the width they were read
// with, so a tree decoded from canonical bytes re-encodes to the same
// bytes.
func (e *Encoder) WriteValue(tag Tag, v Value) error {
	switch v := v.(type) {
	case IntValue:
		return e.writeIntValue(tag, v)
	case Float32Value:
		return e.WriteFloat32(tag, float32(v))
	case Float64Value:
		return e.WriteFloat64(tag, float64(v))
	case StringValue:
		return e.WriteString(tag, string(v))
	case BytesValue:
		return e.WriteBytes(tag, v)
	case ListValue:
		inner := NewEncoder()
		for _, x := range v {
			if err := inner.WriteValue(0, x); err != nil {
				return err
			}
		}
		return e.putRegion(tag, TypeList, inner.buf)
	case MapValue:
		inner := NewEncoder()
		for _, kv := range v {
			if err := inner.WriteValue(0, kv.Key); err != nil {
				return err
			}
			if err := inner.WriteValue(0, kv.Value); err != nil {
				return err
			}
		}
		return e.putRegion(tag, TypeMap, inner.buf)
	case StructValue:
		if err := e.putHeader(tag, TypeStructBegin); err != nil {
			return err
		}
		for _, f := range v {
			if err := e.WriteValue(f.Tag, f.Value); err != nil {
				return err
			}
		}
		return e.putHeader(0, TypeStructEnd)
	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedValue, v)
	}
}

// writeIntValue writes v.V at the width of v.Type when that width holds
// it as a signed or unsigned number, so unsigned payloads read back
// sign-extended keep their width. Anything else is narrowed.
func (e *Encoder) writeIntValue(tag Tag, v IntValue) error {
	if v.V == 0 {
		return e.putHeader(tag, TypeZero)
	}
	switch {
	case v.Type == TypeInt8 && v.V >= math.MinInt8 && v.V <= math.MaxUint8:
		return e.putByte(tag, byte(v.V))
	case v.Type == TypeInt16 && v.V >= math.MinInt16 && v.V <= math.MaxUint16:
		return e.putUint16(tag, uint16(v.V))
	case v.Type == TypeInt32 && v.V >= math.MinInt32 && v.V <= math.MaxUint32:
		return e.putUint32(tag, uint32(v.V))
	case v.Type == TypeInt64:
		return e.putUint64(tag, uint64(v.V))
	}
	return e.WriteInt64(tag, v.V)
}

// CONVERSION

// ToInterface converts a Value into plain Go values suitable for JSON,
// YAML or CBOR output. Structs become maps keyed by decimal tag and maps
// become maps keyed by the key's printed form.
func ToInterface(v Value) interface{} {
	switch v := v.(type) {
	case IntValue:
		return v.V
	case Float32Value:
		return float32(v)
	case Float64Value:
		return float64(v)
	case StringValue:
		return string(v)
	case BytesValue:
		return []byte(v)
	case ListValue:
		out := make([]interface{}, len(v))
		for i, x := range v {
			out[i] = ToInterface(x)
		}
		return out
	case MapValue:
		out := make(map[string]interface{}, len(v))
		for _, kv := range v {
			out[fmt.Sprint(ToInterface(kv.Key))] = ToInterface(kv.Value)
		}
		return out
	case StructValue:
		return FieldsToMap(v)
	default:
		return nil
	}
}

// FieldsToMap converts a field list into a map keyed by decimal tag. When
// a tag repeats, the first entry wins, matching tagged lookups.
func FieldsToMap(fields []Field) map[string]interface{} {
	out := make(map[string]interface{}, len(fields))
	for _, f := range fields {
		key := strconv.Itoa(int(f.Tag))
		if _, seen := out[key]; seen {
			continue
		}
		out[key] = ToInterface(f.Value)
	}
	return out
}
