package wire

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/anirudhraja/tarslite/registry"
	"github.com/anirudhraja/tarslite/schema"
)

// RecordEncoder writes schema-described records held as
// map[string]interface{}.
type RecordEncoder struct {
	encoder  *Encoder
	registry *registry.Registry
	depth    int
}

// RecordDecoder reads schema-described records into
// map[string]interface{}.
type RecordDecoder struct {
	decoder  *Decoder
	registry *registry.Registry
}

// NewRecordEncoder creates a record encoder that resolves nested struct
// and enum types through reg.
func NewRecordEncoder(e *Encoder, reg *registry.Registry) *RecordEncoder {
	return &RecordEncoder{encoder: e, registry: reg}
}

// NewRecordDecoder creates a record decoder over d.
func NewRecordDecoder(d *Decoder, reg *registry.Registry) *RecordDecoder {
	return &RecordDecoder{decoder: d, registry: reg}
}

// EncodeStruct encodes data as a top-level message of record st.
func EncodeStruct(data map[string]interface{}, st *schema.Struct, reg *registry.Registry) ([]byte, error) {
	e := NewEncoder()
	if err := NewRecordEncoder(e, reg).EncodeRecord(data, st); err != nil {
		return nil, err
	}
	return e.Finish(), nil
}

// DecodeStruct decodes a top-level message of record st.
func DecodeStruct(data []byte, st *schema.Struct, reg *registry.Registry) (map[string]interface{}, error) {
	return NewRecordDecoder(NewDecoder(data), reg).DecodeRecord(st)
}

// sortedFields returns st's fields in ascending tag order.
func sortedFields(st *schema.Struct) []*schema.Field {
	fields := slices.Clone(st.Fields)
	slices.SortStableFunc(fields, func(a, b *schema.Field) int {
		return cmp.Compare(a.Tag, b.Tag)
	})
	return fields
}

// ENCODER METHODS

// EncodeRecord writes the fields of st found in data, in ascending tag
// order. Keys that name no field are ignored. A missing required field is
// written with its default; a missing optional one is left out.
func (re *RecordEncoder) EncodeRecord(data map[string]interface{}, st *schema.Struct) error {
	if st == nil {
		return fmt.Errorf("%w: nil struct schema", ErrUnsupportedValue)
	}
	for _, field := range sortedFields(st) {
		value, ok := lookupField(data, field.Name)
		if !ok || value == nil {
			if !field.Required {
				continue
			}
			def, err := defaultValue(field)
			if err != nil {
				return wrapWithField(err, field.Name)
			}
			value = def
		}
		if err := re.encodeValue(Tag(field.Tag), value, &field.Type); err != nil {
			return wrapWithField(err, field.Name)
		}
	}
	return nil
}

func (re *RecordEncoder) encodeValue(tag Tag, value interface{}, ft *schema.FieldType) error {
	switch ft.Kind {
	case schema.KindPrimitive:
		v, err := coercePrimitive(value, ft.Primitive)
		if err != nil {
			return err
		}
		return writePrimitive(re.encoder, tag, v)
	case schema.KindEnum:
		n, err := re.enumNumber(value, ft.EnumType)
		if err != nil {
			return err
		}
		return re.encoder.WriteInt32(tag, n)
	case schema.KindStruct:
		return re.encodeStructField(tag, value, ft.StructType)
	case schema.KindVector:
		return re.encodeVectorField(tag, value, ft.Element)
	case schema.KindMap:
		return re.encodeMapField(tag, value, ft.MapKey, ft.MapValue)
	default:
		return fmt.Errorf("%w: field kind %q", ErrUnsupportedValue, ft.Kind)
	}
}

// encodeStructField writes a nested record between Struct-Begin and
// Struct-End.
func (re *RecordEncoder) encodeStructField(tag Tag, value interface{}, structType string) error {
	data, ok := value.(map[string]interface{})
	if !ok {
		return fmt.Errorf("%w: struct value must be map[string]interface{}, got %T", ErrUnsupportedValue, value)
	}
	st, err := re.lookupStruct(structType)
	if err != nil {
		return err
	}
	if config.MaxDepth > 0 && re.depth+1 > config.MaxDepth {
		return ErrTooDeep
	}
	if err := re.encoder.putHeader(tag, TypeStructBegin); err != nil {
		return err
	}
	re.depth++
	err = re.EncodeRecord(data, st)
	re.depth--
	if err != nil {
		return err
	}
	return re.encoder.putHeader(0, TypeStructEnd)
}

// encodeVectorField writes a SimpleList for bool and byte elements and a
// List region of tag-0 entries for everything else.
func (re *RecordEncoder) encodeVectorField(tag Tag, value interface{}, elem *schema.FieldType) error {
	if elem.Kind == schema.KindPrimitive && schema.IsSimpleListElement(elem.Primitive) {
		if b, ok := value.([]byte); ok {
			return re.encoder.WriteBytes(tag, b)
		}
		items, err := toSlice(value)
		if err != nil {
			return err
		}
		raw := make([]byte, len(items))
		for i, x := range items {
			v, err := coercePrimitive(x, elem.Primitive)
			if err != nil {
				return wrapWithField(err, fmt.Sprint(i))
			}
			raw[i] = primitiveByte(v)
		}
		return re.encoder.WriteBytes(tag, raw)
	}

	items, err := toSlice(value)
	if err != nil {
		return err
	}
	inner := re.sub()
	for i, x := range items {
		if err := inner.encodeValue(0, x, elem); err != nil {
			return wrapWithField(err, fmt.Sprint(i))
		}
	}
	return re.encoder.putRegion(tag, TypeList, inner.encoder.buf)
}

// encodeMapField writes the pairs of a map in ascending key order.
func (re *RecordEncoder) encodeMapField(tag Tag, value interface{}, keyType, valueType *schema.FieldType) error {
	if keyType.Kind != schema.KindPrimitive {
		return fmt.Errorf("%w: map key kind %q", ErrUnsupportedValue, keyType.Kind)
	}
	pairs, err := toPairs(value)
	if err != nil {
		return err
	}
	type entry struct {
		key   interface{}
		value interface{}
	}
	entries := make([]entry, 0, len(pairs))
	for _, p := range pairs {
		k, err := coercePrimitive(p[0], keyType.Primitive)
		if err != nil {
			return wrapWithField(err, fmt.Sprint(p[0]))
		}
		entries = append(entries, entry{key: k, value: p[1]})
	}
	slices.SortFunc(entries, func(a, b entry) int { return compareKeys(a.key, b.key) })

	inner := re.sub()
	for _, en := range entries {
		if err := writePrimitive(inner.encoder, 0, en.key); err != nil {
			return wrapWithField(err, fmt.Sprint(en.key))
		}
		if err := inner.encodeValue(0, en.value, valueType); err != nil {
			return wrapWithField(err, fmt.Sprint(en.key))
		}
	}
	return re.encoder.putRegion(tag, TypeMap, inner.encoder.buf)
}

// sub returns an encoder for the contents of a list or map region.
func (re *RecordEncoder) sub() *RecordEncoder {
	return &RecordEncoder{encoder: NewEncoder(), registry: re.registry, depth: re.depth}
}

func (re *RecordEncoder) enumNumber(value interface{}, enumType string) (int32, error) {
	if name, ok := value.(string); ok {
		enum, err := lookupEnum(re.registry, enumType)
		if err != nil {
			return 0, err
		}
		if ev := enum.ValueByName(name); ev != nil {
			return ev.Number, nil
		}
		n, err := coerceToInt64(name)
		if err != nil {
			return 0, fmt.Errorf("%w: unknown value %q for enum %s", ErrUnsupportedValue, name, enumType)
		}
		return toInt32(n)
	}
	n, err := coerceToInt64(value)
	if err != nil {
		return 0, err
	}
	return toInt32(n)
}

func (re *RecordEncoder) lookupStruct(name string) (*schema.Struct, error) {
	if re.registry == nil {
		return nil, fmt.Errorf("registry is required to encode struct %s", name)
	}
	return re.registry.GetStruct(name)
}

// DECODER METHODS

// DecodeRecord reads every field of st from the decoder's region. A
// missing required field fails with ErrTagNotFound. A missing optional
// field gets its declared default, or the zero value of its type; absent
// optional nested records are left out.
func (rd *RecordDecoder) DecodeRecord(st *schema.Struct) (map[string]interface{}, error) {
	if st == nil {
		return nil, fmt.Errorf("%w: nil struct schema", ErrUnsupportedValue)
	}
	out := make(map[string]interface{}, len(st.Fields))
	for _, field := range sortedFields(st) {
		h, ok, err := rd.decoder.lookup(Tag(field.Tag), field.Required)
		if err != nil {
			return nil, wrapWithField(err, field.Name)
		}
		if !ok {
			if field.Type.Kind == schema.KindStruct {
				continue
			}
			def, err := defaultValue(field)
			if err != nil {
				return nil, wrapWithField(err, field.Name)
			}
			out[field.Name] = rd.enumName(def, &field.Type)
			continue
		}
		v, err := rd.decodeValue(h, &field.Type)
		if err != nil {
			return nil, wrapWithField(err, field.Name)
		}
		out[field.Name] = v
	}
	return out, nil
}

func (rd *RecordDecoder) decodeValue(h Header, ft *schema.FieldType) (interface{}, error) {
	d := rd.decoder
	switch ft.Kind {
	case schema.KindPrimitive:
		return readPrimitive(d, h, ft.Primitive)
	case schema.KindEnum:
		n, err := d.int32Payload(h)
		if err != nil {
			return nil, err
		}
		return rd.enumName(n, ft), nil
	case schema.KindStruct:
		if h.Type != TypeStructBegin {
			return nil, mismatch(h, "struct")
		}
		st, err := rd.lookupStruct(ft.StructType)
		if err != nil {
			return nil, err
		}
		body, err := d.structBody()
		if err != nil {
			return nil, err
		}
		return NewRecordDecoder(body, rd.registry).DecodeRecord(st)
	case schema.KindVector:
		return rd.decodeVector(h, ft.Element)
	case schema.KindMap:
		return rd.decodeMap(h, ft.MapKey, ft.MapValue)
	default:
		return nil, fmt.Errorf("%w: field kind %q", ErrUnsupportedValue, ft.Kind)
	}
}

func (rd *RecordDecoder) decodeVector(h Header, elem *schema.FieldType) (interface{}, error) {
	d := rd.decoder
	if elem.Kind == schema.KindPrimitive && schema.IsSimpleListElement(elem.Primitive) {
		raw, err := d.simpleListPayload(h)
		if err != nil {
			return nil, err
		}
		out := make([]interface{}, len(raw))
		for i, b := range raw {
			out[i] = primitiveFromByte(b, elem.Primitive)
		}
		return out, nil
	}
	if h.Type != TypeList {
		return nil, mismatch(h, "list")
	}
	sub, err := rd.region()
	if err != nil {
		return nil, err
	}
	out := make([]interface{}, 0)
	for sub.decoder.remaining() > 0 {
		v, err := sub.next(elem)
		if err != nil {
			return nil, wrapWithField(err, fmt.Sprint(len(out)))
		}
		out = append(out, v)
	}
	return out, nil
}

// decodeMap returns pairs keyed by the printed key. A repeated key keeps
// its last value.
func (rd *RecordDecoder) decodeMap(h Header, keyType, valueType *schema.FieldType) (interface{}, error) {
	if h.Type != TypeMap {
		return nil, mismatch(h, "map")
	}
	sub, err := rd.region()
	if err != nil {
		return nil, err
	}
	out := make(map[string]interface{})
	for sub.decoder.remaining() > 0 {
		k, err := sub.next(keyType)
		if err != nil {
			return nil, err
		}
		key := fmt.Sprint(k)
		v, err := sub.next(valueType)
		if err != nil {
			return nil, wrapWithField(err, key)
		}
		out[key] = v
	}
	return out, nil
}

// region opens the size-prefixed body of a list or map.
func (rd *RecordDecoder) region() (*RecordDecoder, error) {
	n, err := rd.decoder.readSize()
	if err != nil {
		return nil, err
	}
	child, err := rd.decoder.child(n)
	if err != nil {
		return nil, err
	}
	return NewRecordDecoder(child, rd.registry), nil
}

// next decodes the entry at the cursor, header included.
func (rd *RecordDecoder) next(ft *schema.FieldType) (interface{}, error) {
	h, err := rd.decoder.readHeader()
	if err != nil {
		return nil, err
	}
	return rd.decodeValue(h, ft)
}

// enumName maps an enum number to its name when the type knows it.
func (rd *RecordDecoder) enumName(v interface{}, ft *schema.FieldType) interface{} {
	if ft.Kind != schema.KindEnum || rd.registry == nil {
		return v
	}
	n, ok := v.(int32)
	if !ok {
		return v
	}
	enum, err := rd.registry.GetEnum(ft.EnumType)
	if err != nil {
		return n
	}
	if ev := enum.ValueByNumber(n); ev != nil {
		return ev.Name
	}
	return n
}

func (rd *RecordDecoder) lookupStruct(name string) (*schema.Struct, error) {
	if rd.registry == nil {
		return nil, fmt.Errorf("registry is required to decode struct %s", name)
	}
	return rd.registry.GetStruct(name)
}

// UTILITY METHODS

func lookupEnum(reg *registry.Registry, name string) (*schema.Enum, error) {
	if reg == nil {
		return nil, fmt.Errorf("registry is required to resolve enum %s", name)
	}
	return reg.GetEnum(name)
}

// defaultValue returns the declared default of a field, or the zero value
// of its type. Enum defaults stay in their literal form.
func defaultValue(field *schema.Field) (interface{}, error) {
	ft := &field.Type
	if field.Default != "" {
		switch ft.Kind {
		case schema.KindPrimitive:
			if ft.Primitive == schema.TypeBytes {
				return []byte(field.Default), nil
			}
			return coercePrimitive(field.Default, ft.Primitive)
		case schema.KindEnum:
			return field.Default, nil
		}
	}
	return zeroValue(ft), nil
}

func zeroValue(ft *schema.FieldType) interface{} {
	switch ft.Kind {
	case schema.KindPrimitive:
		v, _ := coercePrimitive(int64(0), ft.Primitive)
		return v
	case schema.KindEnum:
		return int32(0)
	case schema.KindVector:
		return []interface{}{}
	default:
		return map[string]interface{}{}
	}
}

// coercePrimitive converts a loosely typed input into the Go type that
// carries primitive p: int8 for byte, uint16 for unsigned short and so
// on. Out-of-range integers are rejected.
func coercePrimitive(v interface{}, p schema.PrimitiveType) (interface{}, error) {
	out, err := convertPrimitive(v, p)
	if err != nil && !errors.Is(err, ErrUnsupportedValue) {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedValue, err)
	}
	return out, err
}

func convertPrimitive(v interface{}, p schema.PrimitiveType) (interface{}, error) {
	switch p {
	case schema.TypeBool:
		return coerceToBool(v)
	case schema.TypeByte:
		n, err := coerceToInt64(v)
		if err != nil {
			return nil, err
		}
		if n < math.MinInt8 || n > math.MaxInt8 {
			return nil, outOfRange(n, p)
		}
		return int8(n), nil
	case schema.TypeShort:
		n, err := coerceToInt64(v)
		if err != nil {
			return nil, err
		}
		if n < math.MinInt16 || n > math.MaxInt16 {
			return nil, outOfRange(n, p)
		}
		return int16(n), nil
	case schema.TypeInt:
		n, err := coerceToInt64(v)
		if err != nil {
			return nil, err
		}
		return toInt32(n)
	case schema.TypeLong:
		return coerceToInt64(v)
	case schema.TypeUByte:
		n, err := coerceToUint64(v)
		if err != nil {
			return nil, err
		}
		if n > math.MaxUint8 {
			return nil, outOfRange(n, p)
		}
		return uint8(n), nil
	case schema.TypeUShort:
		n, err := coerceToUint64(v)
		if err != nil {
			return nil, err
		}
		if n > math.MaxUint16 {
			return nil, outOfRange(n, p)
		}
		return uint16(n), nil
	case schema.TypeUInt:
		n, err := coerceToUint64(v)
		if err != nil {
			return nil, err
		}
		if n > math.MaxUint32 {
			return nil, outOfRange(n, p)
		}
		return uint32(n), nil
	case schema.TypeULong:
		return coerceToUint64(v)
	case schema.TypeFloat:
		f, err := coerceToFloat64(v)
		if err != nil {
			return nil, err
		}
		return float32(f), nil
	case schema.TypeDouble:
		return coerceToFloat64(v)
	case schema.TypeString:
		switch s := v.(type) {
		case string:
			return s, nil
		case []byte:
			return string(s), nil
		case int64:
			if s == 0 {
				return "", nil
			}
		}
		return nil, fmt.Errorf("%w: expected string, got %T", ErrUnsupportedValue, v)
	case schema.TypeBytes:
		if n, ok := v.(int64); ok && n == 0 {
			return []byte{}, nil
		}
		return coerceToBytes(v)
	default:
		return nil, fmt.Errorf("%w: primitive %q", ErrUnsupportedValue, p)
	}
}

func outOfRange(n interface{}, p schema.PrimitiveType) error {
	return fmt.Errorf("%w: %v out of range for %s", ErrUnsupportedValue, n, p)
}

func toInt32(n int64) (int32, error) {
	if n < math.MinInt32 || n > math.MaxInt32 {
		return 0, outOfRange(n, schema.TypeInt)
	}
	return int32(n), nil
}

// writePrimitive encodes a value produced by coercePrimitive.
func writePrimitive(e *Encoder, tag Tag, v interface{}) error {
	switch v := v.(type) {
	case bool:
		return e.WriteBool(tag, v)
	case int8:
		return e.WriteInt8(tag, v)
	case int16:
		return e.WriteInt16(tag, v)
	case int32:
		return e.WriteInt32(tag, v)
	case int64:
		return e.WriteInt64(tag, v)
	case uint8:
		return e.WriteUint8(tag, v)
	case uint16:
		return e.WriteUint16(tag, v)
	case uint32:
		return e.WriteUint32(tag, v)
	case uint64:
		return e.WriteUint64(tag, v)
	case float32:
		return e.WriteFloat32(tag, v)
	case float64:
		return e.WriteFloat64(tag, v)
	case string:
		return e.WriteString(tag, v)
	case []byte:
		return e.WriteBytes(tag, v)
	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedValue, v)
	}
}

// readPrimitive decodes the payload of h as primitive p.
func readPrimitive(d *Decoder, h Header, p schema.PrimitiveType) (interface{}, error) {
	switch p {
	case schema.TypeBool:
		return d.boolPayload(h)
	case schema.TypeByte:
		return d.int8Payload(h)
	case schema.TypeShort:
		return d.int16Payload(h)
	case schema.TypeInt:
		return d.int32Payload(h)
	case schema.TypeLong:
		return d.int64Payload(h)
	case schema.TypeUByte:
		return d.uint8Payload(h)
	case schema.TypeUShort:
		return d.uint16Payload(h)
	case schema.TypeUInt:
		return d.uint32Payload(h)
	case schema.TypeULong:
		return d.uint64Payload(h)
	case schema.TypeFloat:
		return d.float32Payload(h)
	case schema.TypeDouble:
		return d.float64Payload(h)
	case schema.TypeString:
		return d.stringPayload(h)
	case schema.TypeBytes:
		return d.bytesPayload(h)
	default:
		return nil, fmt.Errorf("%w: primitive %q", ErrUnsupportedValue, p)
	}
}

// primitiveByte packs an 8-bit value into a SimpleList byte.
func primitiveByte(v interface{}) byte {
	switch v := v.(type) {
	case bool:
		if v {
			return 1
		}
		return 0
	case int8:
		return byte(v)
	case uint8:
		return v
	}
	return 0
}

func primitiveFromByte(b byte, p schema.PrimitiveType) interface{} {
	switch p {
	case schema.TypeBool:
		return b != 0
	case schema.TypeByte:
		return int8(b)
	default:
		return b
	}
}

// compareKeys orders two map keys produced by coercePrimitive for the
// same key type.
func compareKeys(a, b interface{}) int {
	switch a := a.(type) {
	case bool:
		bb := b.(bool)
		switch {
		case a == bb:
			return 0
		case !a:
			return -1
		default:
			return 1
		}
	case int8:
		return cmp.Compare(a, b.(int8))
	case int16:
		return cmp.Compare(a, b.(int16))
	case int32:
		return cmp.Compare(a, b.(int32))
	case int64:
		return cmp.Compare(a, b.(int64))
	case uint8:
		return cmp.Compare(a, b.(uint8))
	case uint16:
		return cmp.Compare(a, b.(uint16))
	case uint32:
		return cmp.Compare(a, b.(uint32))
	case uint64:
		return cmp.Compare(a, b.(uint64))
	case float32:
		return cmp.Compare(a, b.(float32))
	case float64:
		return cmp.Compare(a, b.(float64))
	case string:
		return cmp.Compare(a, b.(string))
	case []byte:
		return slices.Compare(a, b.([]byte))
	}
	return 0
}
