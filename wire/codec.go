package wire

// Codec binds one value category to its encode rule and its payload
// decode rule. The set of categories is closed: the primitives below plus
// ListOf, MapOf, StructOf and OptionalOf built from them.
type Codec[T any] struct {
	put func(e *Encoder, tag Tag, v T) error
	get func(d *Decoder, h Header) (T, error)

	// Set for 8-bit element kinds, which lists pack as a SimpleList.
	toByte   func(T) byte
	fromByte func(byte) T
}

// NewCodec builds a codec from custom rules, e.g. for an enum stored as
// int32. get receives the header of the field and must consume exactly
// its payload.
func NewCodec[T any](put func(e *Encoder, tag Tag, v T) error, get func(d *Decoder, h Header) (T, error)) Codec[T] {
	return Codec[T]{put: put, get: get}
}

// Write encodes v at tag.
func (c Codec[T]) Write(e *Encoder, tag Tag, v T) error {
	return c.put(e, tag, v)
}

// Read decodes the value at tag, returning def when an optional tag is
// absent.
func (c Codec[T]) Read(d *Decoder, tag Tag, required bool, def T) (T, error) {
	return readTagged(d, tag, required, def, c.get)
}

// Next decodes the entry at the cursor, header included. Lists and maps
// read their elements this way.
func (c Codec[T]) Next(d *Decoder) (T, error) {
	h, err := d.readHeader()
	if err != nil {
		var zero T
		return zero, err
	}
	return c.get(d, h)
}

// Primitive codecs
var (
	Int8 = Codec[int8]{
		put:      (*Encoder).WriteInt8,
		get:      (*Decoder).int8Payload,
		toByte:   func(v int8) byte { return byte(v) },
		fromByte: func(b byte) int8 { return int8(b) },
	}
	Uint8 = Codec[uint8]{
		put:      (*Encoder).WriteUint8,
		get:      (*Decoder).uint8Payload,
		toByte:   func(v uint8) byte { return v },
		fromByte: func(b byte) uint8 { return b },
	}
	Bool = Codec[bool]{
		put: (*Encoder).WriteBool,
		get: (*Decoder).boolPayload,
		toByte: func(v bool) byte {
			if v {
				return 1
			}
			return 0
		},
		fromByte: func(b byte) bool { return b != 0 },
	}
	Int16    = Codec[int16]{put: (*Encoder).WriteInt16, get: (*Decoder).int16Payload}
	Int32    = Codec[int32]{put: (*Encoder).WriteInt32, get: (*Decoder).int32Payload}
	Int64    = Codec[int64]{put: (*Encoder).WriteInt64, get: (*Decoder).int64Payload}
	Uint16   = Codec[uint16]{put: (*Encoder).WriteUint16, get: (*Decoder).uint16Payload}
	Uint32   = Codec[uint32]{put: (*Encoder).WriteUint32, get: (*Decoder).uint32Payload}
	Uint64   = Codec[uint64]{put: (*Encoder).WriteUint64, get: (*Decoder).uint64Payload}
	Float32  = Codec[float32]{put: (*Encoder).WriteFloat32, get: (*Decoder).float32Payload}
	Float64  = Codec[float64]{put: (*Encoder).WriteFloat64, get: (*Decoder).float64Payload}
	String   = Codec[string]{put: (*Encoder).WriteString, get: (*Decoder).stringPayload}
	Bytes    = Codec[[]byte]{put: (*Encoder).WriteBytes, get: (*Decoder).bytesPayload}
	Int8List = Codec[[]int8]{put: (*Encoder).WriteInt8List, get: (*Decoder).int8ListPayload}
	BoolList = Codec[[]bool]{put: (*Encoder).WriteBoolList, get: (*Decoder).boolListPayload}
)

// StructOf returns the codec for a record type whose pointer implements
// Struct.
func StructOf[T any, PT interface {
	*T
	Struct
}]() Codec[T] {
	return Codec[T]{
		put: func(e *Encoder, tag Tag, v T) error {
			return e.WriteStruct(tag, PT(&v))
		},
		get: func(d *Decoder, h Header) (T, error) {
			var v T
			err := d.structPayload(h, PT(&v))
			return v, err
		},
	}
}

// OptionalOf wraps c so that a nil pointer writes nothing and an absent
// tag reads back as nil.
func OptionalOf[T any](c Codec[T]) Codec[*T] {
	return Codec[*T]{
		put: func(e *Encoder, tag Tag, v *T) error {
			if v == nil {
				return nil
			}
			return c.put(e, tag, *v)
		},
		get: func(d *Decoder, h Header) (*T, error) {
			v, err := c.get(d, h)
			if err != nil {
				return nil, err
			}
			return &v, nil
		},
	}
}

// WriteOptional encodes *v at tag, or nothing when v is nil.
func WriteOptional[T any](e *Encoder, tag Tag, v *T, c Codec[T]) error {
	return OptionalOf(c).Write(e, tag, v)
}

// ReadOptional decodes the value at tag, or returns def when the tag is
// absent.
func ReadOptional[T any](d *Decoder, tag Tag, def T, c Codec[T]) (T, error) {
	return c.Read(d, tag, false, def)
}

// EncodeSingle encodes one value at tag 0 into its own buffer.
func EncodeSingle[T any](c Codec[T], v T) ([]byte, error) {
	e := NewEncoder()
	if err := c.put(e, 0, v); err != nil {
		return nil, err
	}
	return e.Finish(), nil
}

// DecodeSingle decodes the required value at tag 0 of data.
func DecodeSingle[T any](c Codec[T], data []byte) (T, error) {
	var zero T
	return c.Read(NewDecoder(data), 0, true, zero)
}
