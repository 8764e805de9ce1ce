package wire

import (
	"fmt"
	"math"
	"unicode/utf8"

	"golang.org/x/text/runes"
)

// ENCODER METHODS

// WriteString encodes s with a 1-byte length when it is at most 255 bytes
// long and with a 4-byte length otherwise.
func (e *Encoder) WriteString(tag Tag, s string) error {
	n := len(s)
	if n <= math.MaxUint8 {
		return e.putString1(tag, s)
	}
	if uint64(n) > maxRegionLen {
		return ErrBufferTooBig
	}
	if err := e.putHeader(tag, TypeString4); err != nil {
		return err
	}
	if err := e.putSize(n); err != nil {
		return err
	}
	e.grow(n)
	e.buf = append(e.buf, s...)
	return nil
}

func (e *Encoder) putString1(tag Tag, s string) error {
	if len(s) > math.MaxUint8 {
		return ErrConvertToByte
	}
	if err := e.putHeader(tag, TypeString1); err != nil {
		return err
	}
	e.grow(1 + len(s))
	e.buf = append(e.buf, byte(len(s)))
	e.buf = append(e.buf, s...)
	return nil
}

// WriteBytes encodes a byte blob as a SimpleList: the outer header, an
// Int8 header at tag 0, a 4-byte element count and the raw bytes.
func (e *Encoder) WriteBytes(tag Tag, b []byte) error {
	if uint64(len(b)) > maxRegionLen {
		return ErrBufferTooBig
	}
	if err := e.putHeader(tag, TypeSimpleList); err != nil {
		return err
	}
	if err := e.putHeader(0, TypeInt8); err != nil {
		return err
	}
	if err := e.putSize(len(b)); err != nil {
		return err
	}
	e.grow(len(b))
	e.buf = append(e.buf, b...)
	return nil
}

// WriteInt8List encodes a []int8 as a SimpleList.
func (e *Encoder) WriteInt8List(tag Tag, v []int8) error {
	b := make([]byte, len(v))
	for i, x := range v {
		b[i] = byte(x)
	}
	return e.WriteBytes(tag, b)
}

// WriteBoolList encodes a []bool as a SimpleList of 0/1 bytes.
func (e *Encoder) WriteBoolList(tag Tag, v []bool) error {
	b := make([]byte, len(v))
	for i, x := range v {
		if x {
			b[i] = 1
		}
	}
	return e.WriteBytes(tag, b)
}

// DECODER METHODS

// ReadString decodes the string at tag. Invalid UTF-8 is replaced with
// U+FFFD rather than rejected.
func (d *Decoder) ReadString(tag Tag, required bool, def string) (string, error) {
	return readTagged(d, tag, required, def, (*Decoder).stringPayload)
}

// ReadBytes decodes the byte blob at tag. The result does not alias the
// decoder's buffer.
func (d *Decoder) ReadBytes(tag Tag, required bool, def []byte) ([]byte, error) {
	return readTagged(d, tag, required, def, (*Decoder).bytesPayload)
}

// ReadInt8List decodes the SimpleList at tag as []int8.
func (d *Decoder) ReadInt8List(tag Tag, required bool, def []int8) ([]int8, error) {
	return readTagged(d, tag, required, def, (*Decoder).int8ListPayload)
}

// ReadBoolList decodes the SimpleList at tag as []bool.
func (d *Decoder) ReadBoolList(tag Tag, required bool, def []bool) ([]bool, error) {
	return readTagged(d, tag, required, def, (*Decoder).boolListPayload)
}

func (d *Decoder) stringPayload(h Header) (string, error) {
	var n int
	switch h.Type {
	case TypeString1:
		b, err := d.next(1)
		if err != nil {
			return "", err
		}
		n = int(b[0])
	case TypeString4:
		size, err := d.readSize()
		if err != nil {
			return "", err
		}
		n = size
	default:
		return "", mismatch(h, "string")
	}
	b, err := d.next(n)
	if err != nil {
		return "", fmt.Errorf("string truncated: need %d bytes, have %d: %w", n, d.remaining(), err)
	}
	return decodeUTF8(b), nil
}

// decodeUTF8 converts b to a string, replacing ill-formed sequences.
func decodeUTF8(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	return string(runes.ReplaceIllFormed().Bytes(b))
}

// simpleListPayload returns the raw bytes of a SimpleList without
// copying.
func (d *Decoder) simpleListPayload(h Header) ([]byte, error) {
	if h.Type != TypeSimpleList {
		return nil, mismatch(h, "simple list")
	}
	inner, err := d.readHeader()
	if err != nil {
		return nil, err
	}
	if inner.Type != TypeInt8 {
		return nil, fmt.Errorf("%w: element type %s", ErrWrongSimpleListType, inner.Type)
	}
	n, err := d.readSize()
	if err != nil {
		return nil, err
	}
	return d.next(n)
}

func (d *Decoder) bytesPayload(h Header) ([]byte, error) {
	raw, err := d.simpleListPayload(h)
	if err != nil {
		return nil, err
	}
	// Copy the data to avoid sharing the underlying buffer
	data := make([]byte, len(raw))
	copy(data, raw)
	return data, nil
}

func (d *Decoder) int8ListPayload(h Header) ([]int8, error) {
	raw, err := d.simpleListPayload(h)
	if err != nil {
		return nil, err
	}
	out := make([]int8, len(raw))
	for i, b := range raw {
		out[i] = int8(b)
	}
	return out, nil
}

func (d *Decoder) boolListPayload(h Header) ([]bool, error) {
	raw, err := d.simpleListPayload(h)
	if err != nil {
		return nil, err
	}
	out := make([]bool, len(raw))
	for i, b := range raw {
		out[i] = b != 0
	}
	return out, nil
}
