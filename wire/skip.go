package wire

import "fmt"

// skip moves the cursor past the payload of a field with the given mark.
// The header must already be consumed.
func (d *Decoder) skip(mark TypeMark) error {
	switch mark {
	case TypeZero, TypeStructEnd:
		return nil
	case TypeInt8, TypeInt16, TypeInt32, TypeInt64:
		return d.advance(mark.intWidth())
	case TypeFloat:
		return d.advance(4)
	case TypeDouble:
		return d.advance(8)
	case TypeString1:
		n, err := d.next(1)
		if err != nil {
			return err
		}
		return d.advance(int(n[0]))
	case TypeString4, TypeMap, TypeList:
		n, err := d.readSize()
		if err != nil {
			return err
		}
		return d.advance(n)
	case TypeSimpleList:
		if _, err := d.readHeader(); err != nil {
			return err
		}
		n, err := d.readSize()
		if err != nil {
			return err
		}
		return d.advance(n)
	case TypeStructBegin:
		_, err := d.structSpan()
		return err
	default:
		return fmt.Errorf("%w: %d", ErrUnknownType, mark)
	}
}

// advance moves the cursor n bytes forward.
func (d *Decoder) advance(n int) error {
	if err := d.need(n); err != nil {
		return err
	}
	d.pos += n
	return nil
}

// sizeOf measures the payload of a field with the given mark, starting at
// the cursor. The cursor is left where it was.
func (d *Decoder) sizeOf(mark TypeMark) (int, error) {
	start := d.pos
	defer func() { d.pos = start }()
	if err := d.skip(mark); err != nil {
		return 0, err
	}
	return d.pos - start, nil
}

// structSpan consumes a nested struct body up to and including the
// Struct-End header that closes it at the same depth. It returns the
// length of the body without that closing header.
func (d *Decoder) structSpan() (int, error) {
	start := d.pos
	depth := 1
	for {
		headerStart := d.pos
		h, err := d.readHeader()
		if err != nil {
			return 0, err
		}
		switch h.Type {
		case TypeStructBegin:
			depth++
		case TypeStructEnd:
			depth--
			if depth == 0 {
				return headerStart - start, nil
			}
		default:
			if err := d.skip(h.Type); err != nil {
				return 0, err
			}
		}
	}
}
