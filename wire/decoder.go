package wire

import (
	"encoding/binary"
)

// Decoder handles low-level TARS wire format decoding. It reads from one
// region: a top-level message, the inside of a nested struct, or the
// inside of a list or map.
type Decoder struct {
	buf   []byte
	pos   int
	depth int

	// index maps each tag to the offset of its first header when
	// Config.IndexTags is set. It covers buf[:indexed] and grows on
	// lookups that miss it.
	index   map[Tag]int
	indexed int
}

// NewDecoder creates a new wire format decoder
func NewDecoder(data []byte) *Decoder {
	return &Decoder{
		buf: data,
		pos: 0,
	}
}

// Len returns the size of the decoder's region in bytes.
func (d *Decoder) Len() int {
	return len(d.buf)
}

// remaining returns the number of unread bytes after the cursor.
func (d *Decoder) remaining() int {
	return len(d.buf) - d.pos
}

// need fails with ErrNoEnoughData unless n bytes follow the cursor.
func (d *Decoder) need(n int) error {
	if n < 0 || d.remaining() < n {
		return ErrNoEnoughData
	}
	return nil
}

// next consumes n bytes and returns them without copying.
func (d *Decoder) next(n int) ([]byte, error) {
	if err := d.need(n); err != nil {
		return nil, err
	}
	b := d.buf[d.pos : d.pos+n]
	d.pos += n
	return b, nil
}

// readSize consumes a 4-byte big-endian length prefix.
func (d *Decoder) readSize() (int, error) {
	b, err := d.next(4)
	if err != nil {
		return 0, err
	}
	return int(binary.BigEndian.Uint32(b)), nil
}

// child returns a decoder over the next n bytes and moves the cursor past
// them.
func (d *Decoder) child(n int) (*Decoder, error) {
	b, err := d.next(n)
	if err != nil {
		return nil, err
	}
	depth := d.depth + 1
	if config.MaxDepth > 0 && depth > config.MaxDepth {
		return nil, ErrTooDeep
	}
	return &Decoder{buf: b, depth: depth}, nil
}

// scanForTag walks the region from its start and stops at the payload of
// the first entry whose tag matches. Non-matching entries are skipped by
// their computed size.
func (d *Decoder) scanForTag(tag Tag) (Header, bool, error) {
	d.pos = 0
	for d.pos < len(d.buf) {
		h, err := d.readHeader()
		if err != nil {
			return Header{}, false, err
		}
		if h.Tag == tag {
			return h, true, nil
		}
		if err := d.skip(h.Type); err != nil {
			return Header{}, false, err
		}
	}
	return Header{}, false, nil
}

// indexUntil extends the tag index from where the last walk stopped
// until it records tag or reaches the end of the region. Entries past the
// first match are never read, so a malformed tail only fails lookups that
// need to walk over it, exactly as a rescan would.
func (d *Decoder) indexUntil(tag Tag) (int, bool, error) {
	if off, ok := d.index[tag]; ok {
		return off, true, nil
	}
	if d.index == nil {
		d.index = make(map[Tag]int)
	}
	d.pos = d.indexed
	for d.pos < len(d.buf) {
		start := d.pos
		h, err := d.readHeader()
		if err != nil {
			return 0, false, err
		}
		if _, seen := d.index[h.Tag]; !seen {
			d.index[h.Tag] = start
		}
		if h.Tag == tag {
			// the match is not skipped yet; the next walk resumes at it
			d.indexed = start
			return start, true, nil
		}
		if err := d.skip(h.Type); err != nil {
			return 0, false, err
		}
		d.indexed = d.pos
	}
	return 0, false, nil
}

// find positions the cursor at the payload of tag. A missing tag is
// reported as ok=false without error.
func (d *Decoder) find(tag Tag) (Header, bool, error) {
	if !config.IndexTags {
		return d.scanForTag(tag)
	}
	off, ok, err := d.indexUntil(tag)
	if err != nil || !ok {
		return Header{}, false, err
	}
	d.pos = off
	h, err := d.readHeader()
	if err != nil {
		return Header{}, false, err
	}
	return h, true, nil
}

// lookup is find plus the required/optional policy: a missing required
// tag is ErrTagNotFound, a missing optional tag is ok=false.
func (d *Decoder) lookup(tag Tag, required bool) (Header, bool, error) {
	h, ok, err := d.find(tag)
	if err != nil {
		return Header{}, false, err
	}
	if !ok {
		if required {
			return Header{}, false, notFound(tag)
		}
		return Header{}, false, nil
	}
	return h, true, nil
}

// Has reports whether tag is present in the region.
func (d *Decoder) Has(tag Tag) bool {
	_, ok, err := d.find(tag)
	return err == nil && ok
}
