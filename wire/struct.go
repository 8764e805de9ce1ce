package wire

// Struct is implemented by record types. Each record writes and reads its
// own fields by tag, the way schema-compiled code does.
type Struct interface {
	EncodeTars(e *Encoder) error
	DecodeTars(d *Decoder) error
}

// WriteStruct encodes s as a nested record: Struct-Begin at tag, the
// record's own fields, then Struct-End at tag 0.
func (e *Encoder) WriteStruct(tag Tag, s Struct) error {
	if err := e.putHeader(tag, TypeStructBegin); err != nil {
		return err
	}
	if err := s.EncodeTars(e); err != nil {
		return err
	}
	return e.putHeader(0, TypeStructEnd)
}

// ReadStruct decodes the nested record at tag into s. When an optional
// tag is absent s is left untouched, so callers preset its defaults.
// Each nested record, list or map counts one level against
// Config.MaxDepth (100 by default); deeper input fails with ErrTooDeep.
// Set MaxDepth to 0 to decode without a bound.
func (d *Decoder) ReadStruct(tag Tag, required bool, s Struct) error {
	h, ok, err := d.lookup(tag, required)
	if err != nil || !ok {
		return err
	}
	return d.structPayload(h, s)
}

// structPayload decodes a nested record body bounded by its matching
// Struct-End and leaves the cursor after that Struct-End.
func (d *Decoder) structPayload(h Header, s Struct) error {
	if h.Type != TypeStructBegin {
		return mismatch(h, "struct")
	}
	body, err := d.structBody()
	if err != nil {
		return err
	}
	return s.DecodeTars(body)
}

// structBody returns a decoder scoped to the struct body at the cursor.
func (d *Decoder) structBody() (*Decoder, error) {
	start := d.pos
	n, err := d.structSpan()
	if err != nil {
		return nil, err
	}
	depth := d.depth + 1
	if config.MaxDepth > 0 && depth > config.MaxDepth {
		return nil, ErrTooDeep
	}
	return &Decoder{buf: d.buf[start : start+n], depth: depth}, nil
}

// Marshal encodes s as a top-level message, without an enclosing
// Struct-Begin/End pair.
func Marshal(s Struct) ([]byte, error) {
	e := NewEncoder()
	if err := s.EncodeTars(e); err != nil {
		return nil, err
	}
	return e.Finish(), nil
}

// Unmarshal decodes a top-level message into s.
func Unmarshal(data []byte, s Struct) error {
	return s.DecodeTars(NewDecoder(data))
}
