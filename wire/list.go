package wire

// ListOf returns the codec for a sequence of c's values. Sequences of
// 8-bit kinds (Int8, Uint8, Bool) use the SimpleList form; everything else
// is a List region of tag-0 entries.
func ListOf[T any](c Codec[T]) Codec[[]T] {
	if c.toByte != nil {
		return simpleListOf(c)
	}
	return Codec[[]T]{
		put: func(e *Encoder, tag Tag, v []T) error {
			inner := NewEncoder()
			for _, x := range v {
				if err := c.put(inner, 0, x); err != nil {
					return err
				}
			}
			return e.putRegion(tag, TypeList, inner.buf)
		},
		get: func(d *Decoder, h Header) ([]T, error) {
			if h.Type != TypeList {
				return nil, mismatch(h, "list")
			}
			n, err := d.readSize()
			if err != nil {
				return nil, err
			}
			sub, err := d.child(n)
			if err != nil {
				return nil, err
			}
			out := make([]T, 0)
			for sub.remaining() > 0 {
				x, err := c.Next(sub)
				if err != nil {
					return nil, err
				}
				out = append(out, x)
			}
			return out, nil
		},
	}
}

func simpleListOf[T any](c Codec[T]) Codec[[]T] {
	return Codec[[]T]{
		put: func(e *Encoder, tag Tag, v []T) error {
			b := make([]byte, len(v))
			for i, x := range v {
				b[i] = c.toByte(x)
			}
			return e.WriteBytes(tag, b)
		},
		get: func(d *Decoder, h Header) ([]T, error) {
			raw, err := d.simpleListPayload(h)
			if err != nil {
				return nil, err
			}
			out := make([]T, len(raw))
			for i, b := range raw {
				out[i] = c.fromByte(b)
			}
			return out, nil
		},
	}
}

// WriteList encodes v at tag as a sequence of c's values.
func WriteList[T any](e *Encoder, tag Tag, v []T, c Codec[T]) error {
	return ListOf(c).Write(e, tag, v)
}

// ReadList decodes the sequence at tag.
func ReadList[T any](d *Decoder, tag Tag, required bool, def []T, c Codec[T]) ([]T, error) {
	return ListOf(c).Read(d, tag, required, def)
}
