package wire

import (
	"encoding/binary"
	"math"
)

// maxRegionLen is the largest length a 4-byte size prefix can express.
const maxRegionLen = math.MaxUint32

// Encoder handles low-level TARS wire format encoding
type Encoder struct {
	buf []byte
}

// NewEncoder creates a new wire format encoder
func NewEncoder() *Encoder {
	return &Encoder{
		buf: make([]byte, 0),
	}
}

// Bytes returns the encoded bytes
func (e *Encoder) Bytes() []byte {
	return e.buf
}

// Len returns the number of bytes written so far
func (e *Encoder) Len() int {
	return len(e.buf)
}

// Reset clears the encoder buffer
func (e *Encoder) Reset() {
	e.buf = e.buf[:0]
}

// Finish hands the encoded bytes to the caller and leaves the encoder
// empty. The returned slice is no longer referenced by the encoder.
func (e *Encoder) Finish() []byte {
	out := e.buf
	e.buf = nil
	return out
}

// grow makes room for at least n more bytes, doubling the capacity when a
// reallocation is needed.
func (e *Encoder) grow(n int) {
	if cap(e.buf)-len(e.buf) >= n {
		return
	}
	newCap := 2*cap(e.buf) + n
	buf := make([]byte, len(e.buf), newCap)
	copy(buf, e.buf)
	e.buf = buf
}

// putSize writes a 4-byte big-endian length prefix.
func (e *Encoder) putSize(n int) error {
	if uint64(n) > maxRegionLen {
		return ErrBufferTooBig
	}
	e.grow(4)
	e.buf = binary.BigEndian.AppendUint32(e.buf, uint32(n))
	return nil
}

// putRegion writes the header for tag, the length of inner and inner
// itself. Used by lists and maps once their entries are encoded.
func (e *Encoder) putRegion(tag Tag, mark TypeMark, inner []byte) error {
	if uint64(len(inner)) > maxRegionLen {
		return ErrBufferTooBig
	}
	if err := e.putHeader(tag, mark); err != nil {
		return err
	}
	if err := e.putSize(len(inner)); err != nil {
		return err
	}
	e.grow(len(inner))
	e.buf = append(e.buf, inner...)
	return nil
}
