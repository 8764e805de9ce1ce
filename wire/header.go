package wire

// HeaderSize returns the number of bytes a header for tag occupies.
func HeaderSize(tag Tag) int {
	if tag < 15 {
		return 1
	}
	return 2
}

// appendHeader packs (tag, mark) into one byte for tags below 15 and into
// two bytes (0xF0|mark, tag) otherwise.
func appendHeader(buf []byte, tag Tag, mark TypeMark) ([]byte, error) {
	if tag < 0 || tag > MaxTag {
		return buf, ErrTagTooBig
	}
	if tag < 15 {
		return append(buf, byte(tag)<<4|byte(mark)), nil
	}
	return append(buf, 0xF0|byte(mark), byte(tag)), nil
}

// putHeader writes a field header into the encoder buffer.
func (e *Encoder) putHeader(tag Tag, mark TypeMark) error {
	e.grow(2)
	buf, err := appendHeader(e.buf, tag, mark)
	if err != nil {
		return err
	}
	e.buf = buf
	return nil
}

// peekHeader decodes the header at the cursor without consuming it.
func (d *Decoder) peekHeader() (Header, error) {
	if d.pos >= len(d.buf) {
		return Header{}, ErrNoEnoughData
	}
	b := d.buf[d.pos]
	mark, err := ParseTypeMark(b & 0x0F)
	if err != nil {
		return Header{}, err
	}
	tag := Tag(b >> 4)
	if tag != 15 {
		return Header{Tag: tag, Type: mark, Len: 1}, nil
	}
	if d.pos+1 >= len(d.buf) {
		return Header{}, ErrNoEnoughData
	}
	return Header{Tag: Tag(d.buf[d.pos+1]), Type: mark, Len: 2}, nil
}

// readHeader decodes and consumes the header at the cursor.
func (d *Decoder) readHeader() (Header, error) {
	h, err := d.peekHeader()
	if err != nil {
		return Header{}, err
	}
	d.pos += h.Len
	return h, nil
}
