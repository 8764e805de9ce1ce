package wire

import (
	"encoding/binary"
	"math"
)

// ENCODER METHODS
//
// Every integer writer narrows: a value that fits the next smaller width
// is handed down to that writer, and 0 always becomes the Zero marker.

// WriteInt8 encodes an int8 at tag.
func (e *Encoder) WriteInt8(tag Tag, v int8) error {
	return e.putByte(tag, byte(v))
}

// WriteUint8 encodes a uint8 at tag using the Int8 mark.
func (e *Encoder) WriteUint8(tag Tag, v uint8) error {
	return e.putByte(tag, v)
}

func (e *Encoder) putByte(tag Tag, b byte) error {
	if b == 0 {
		return e.putHeader(tag, TypeZero)
	}
	if err := e.putHeader(tag, TypeInt8); err != nil {
		return err
	}
	e.grow(1)
	e.buf = append(e.buf, b)
	return nil
}

// WriteInt16 encodes an int16 at tag.
func (e *Encoder) WriteInt16(tag Tag, v int16) error {
	if v >= math.MinInt8 && v <= math.MaxInt8 {
		return e.WriteInt8(tag, int8(v))
	}
	return e.putUint16(tag, uint16(v))
}

// WriteUint16 encodes a uint16 at tag.
func (e *Encoder) WriteUint16(tag Tag, v uint16) error {
	if v <= math.MaxUint8 {
		return e.WriteUint8(tag, uint8(v))
	}
	return e.putUint16(tag, v)
}

func (e *Encoder) putUint16(tag Tag, v uint16) error {
	if err := e.putHeader(tag, TypeInt16); err != nil {
		return err
	}
	e.grow(2)
	e.buf = binary.BigEndian.AppendUint16(e.buf, v)
	return nil
}

// WriteInt32 encodes an int32 at tag.
func (e *Encoder) WriteInt32(tag Tag, v int32) error {
	if v >= math.MinInt16 && v <= math.MaxInt16 {
		return e.WriteInt16(tag, int16(v))
	}
	return e.putUint32(tag, uint32(v))
}

// WriteUint32 encodes a uint32 at tag.
func (e *Encoder) WriteUint32(tag Tag, v uint32) error {
	if v <= math.MaxUint16 {
		return e.WriteUint16(tag, uint16(v))
	}
	return e.putUint32(tag, v)
}

func (e *Encoder) putUint32(tag Tag, v uint32) error {
	if err := e.putHeader(tag, TypeInt32); err != nil {
		return err
	}
	e.grow(4)
	e.buf = binary.BigEndian.AppendUint32(e.buf, v)
	return nil
}

// WriteInt64 encodes an int64 at tag.
func (e *Encoder) WriteInt64(tag Tag, v int64) error {
	if v >= math.MinInt32 && v <= math.MaxInt32 {
		return e.WriteInt32(tag, int32(v))
	}
	return e.putUint64(tag, uint64(v))
}

// WriteUint64 encodes a uint64 at tag.
func (e *Encoder) WriteUint64(tag Tag, v uint64) error {
	if v <= math.MaxUint32 {
		return e.WriteUint32(tag, uint32(v))
	}
	return e.putUint64(tag, v)
}

func (e *Encoder) putUint64(tag Tag, v uint64) error {
	if err := e.putHeader(tag, TypeInt64); err != nil {
		return err
	}
	e.grow(8)
	e.buf = binary.BigEndian.AppendUint64(e.buf, v)
	return nil
}

// WriteBool encodes true as Int8 1 and false as the Zero marker.
func (e *Encoder) WriteBool(tag Tag, v bool) error {
	if v {
		return e.putByte(tag, 1)
	}
	return e.putByte(tag, 0)
}

// WriteFloat32 encodes a float32 at tag. Floats are never narrowed.
func (e *Encoder) WriteFloat32(tag Tag, v float32) error {
	if err := e.putHeader(tag, TypeFloat); err != nil {
		return err
	}
	e.grow(4)
	e.buf = binary.BigEndian.AppendUint32(e.buf, math.Float32bits(v))
	return nil
}

// WriteFloat64 encodes a float64 at tag.
func (e *Encoder) WriteFloat64(tag Tag, v float64) error {
	if err := e.putHeader(tag, TypeDouble); err != nil {
		return err
	}
	e.grow(8)
	e.buf = binary.BigEndian.AppendUint64(e.buf, math.Float64bits(v))
	return nil
}

// DECODER METHODS

// ReadInt8 decodes the int8 at tag.
func (d *Decoder) ReadInt8(tag Tag, required bool, def int8) (int8, error) {
	return readTagged(d, tag, required, def, (*Decoder).int8Payload)
}

// ReadInt16 decodes the int16 at tag, widening narrower wire values.
func (d *Decoder) ReadInt16(tag Tag, required bool, def int16) (int16, error) {
	return readTagged(d, tag, required, def, (*Decoder).int16Payload)
}

// ReadInt32 decodes the int32 at tag, widening narrower wire values.
func (d *Decoder) ReadInt32(tag Tag, required bool, def int32) (int32, error) {
	return readTagged(d, tag, required, def, (*Decoder).int32Payload)
}

// ReadInt64 decodes the int64 at tag, widening narrower wire values.
func (d *Decoder) ReadInt64(tag Tag, required bool, def int64) (int64, error) {
	return readTagged(d, tag, required, def, (*Decoder).int64Payload)
}

// ReadUint8 decodes the uint8 at tag.
func (d *Decoder) ReadUint8(tag Tag, required bool, def uint8) (uint8, error) {
	return readTagged(d, tag, required, def, (*Decoder).uint8Payload)
}

// ReadUint16 decodes the uint16 at tag, zero-extending narrower wire values.
func (d *Decoder) ReadUint16(tag Tag, required bool, def uint16) (uint16, error) {
	return readTagged(d, tag, required, def, (*Decoder).uint16Payload)
}

// ReadUint32 decodes the uint32 at tag, zero-extending narrower wire values.
func (d *Decoder) ReadUint32(tag Tag, required bool, def uint32) (uint32, error) {
	return readTagged(d, tag, required, def, (*Decoder).uint32Payload)
}

// ReadUint64 decodes the uint64 at tag, zero-extending narrower wire values.
func (d *Decoder) ReadUint64(tag Tag, required bool, def uint64) (uint64, error) {
	return readTagged(d, tag, required, def, (*Decoder).uint64Payload)
}

// ReadBool decodes the bool at tag. Any nonzero Int8 is true.
func (d *Decoder) ReadBool(tag Tag, required bool, def bool) (bool, error) {
	return readTagged(d, tag, required, def, (*Decoder).boolPayload)
}

// ReadFloat32 decodes the float32 at tag.
func (d *Decoder) ReadFloat32(tag Tag, required bool, def float32) (float32, error) {
	return readTagged(d, tag, required, def, (*Decoder).float32Payload)
}

// ReadFloat64 decodes the float64 at tag.
func (d *Decoder) ReadFloat64(tag Tag, required bool, def float64) (float64, error) {
	return readTagged(d, tag, required, def, (*Decoder).float64Payload)
}

// readTagged locates tag and decodes its payload, substituting def when
// an optional tag is absent.
func readTagged[T any](d *Decoder, tag Tag, required bool, def T, payload func(*Decoder, Header) (T, error)) (T, error) {
	var zero T
	h, ok, err := d.lookup(tag, required)
	if err != nil {
		return zero, err
	}
	if !ok {
		return def, nil
	}
	v, err := payload(d, h)
	if err != nil {
		return zero, err
	}
	return v, nil
}

// intPayload reads an integer payload no wider than maxWidth bytes and
// returns it raw along with its wire width. Zero yields width 0.
func (d *Decoder) intPayload(h Header, maxWidth int, want string) (uint64, int, error) {
	if !h.Type.isInteger() {
		return 0, 0, mismatch(h, want)
	}
	w := h.Type.intWidth()
	if w > maxWidth {
		return 0, 0, mismatch(h, want)
	}
	b, err := d.next(w)
	if err != nil {
		return 0, 0, err
	}
	switch w {
	case 0:
		return 0, 0, nil
	case 1:
		return uint64(b[0]), 1, nil
	case 2:
		return uint64(binary.BigEndian.Uint16(b)), 2, nil
	case 4:
		return uint64(binary.BigEndian.Uint32(b)), 4, nil
	default:
		return binary.BigEndian.Uint64(b), 8, nil
	}
}

// signExtend widens a raw value of width w bytes as a two's complement
// number.
func signExtend(raw uint64, w int) int64 {
	switch w {
	case 1:
		return int64(int8(raw))
	case 2:
		return int64(int16(raw))
	case 4:
		return int64(int32(raw))
	default:
		return int64(raw)
	}
}

func (d *Decoder) signedPayload(h Header, maxWidth int, want string) (int64, error) {
	raw, w, err := d.intPayload(h, maxWidth, want)
	if err != nil {
		return 0, err
	}
	return signExtend(raw, w), nil
}

func (d *Decoder) int8Payload(h Header) (int8, error) {
	v, err := d.signedPayload(h, 1, "int8")
	return int8(v), err
}

func (d *Decoder) int16Payload(h Header) (int16, error) {
	v, err := d.signedPayload(h, 2, "int16")
	return int16(v), err
}

func (d *Decoder) int32Payload(h Header) (int32, error) {
	v, err := d.signedPayload(h, 4, "int32")
	return int32(v), err
}

func (d *Decoder) int64Payload(h Header) (int64, error) {
	return d.signedPayload(h, 8, "int64")
}

func (d *Decoder) uint8Payload(h Header) (uint8, error) {
	v, _, err := d.intPayload(h, 1, "uint8")
	return uint8(v), err
}

func (d *Decoder) uint16Payload(h Header) (uint16, error) {
	v, _, err := d.intPayload(h, 2, "uint16")
	return uint16(v), err
}

func (d *Decoder) uint32Payload(h Header) (uint32, error) {
	v, _, err := d.intPayload(h, 4, "uint32")
	return uint32(v), err
}

func (d *Decoder) uint64Payload(h Header) (uint64, error) {
	v, _, err := d.intPayload(h, 8, "uint64")
	return v, err
}

func (d *Decoder) boolPayload(h Header) (bool, error) {
	v, _, err := d.intPayload(h, 1, "bool")
	return v != 0, err
}

func (d *Decoder) float32Payload(h Header) (float32, error) {
	switch h.Type {
	case TypeZero:
		return 0, nil
	case TypeFloat:
		b, err := d.next(4)
		if err != nil {
			return 0, err
		}
		return math.Float32frombits(binary.BigEndian.Uint32(b)), nil
	default:
		return 0, mismatch(h, "float32")
	}
}

func (d *Decoder) float64Payload(h Header) (float64, error) {
	switch h.Type {
	case TypeZero:
		return 0, nil
	case TypeDouble:
		b, err := d.next(8)
		if err != nil {
			return 0, err
		}
		return math.Float64frombits(binary.BigEndian.Uint64(b)), nil
	default:
		return 0, mismatch(h, "float64")
	}
}
