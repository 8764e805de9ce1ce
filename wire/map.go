package wire

import (
	"cmp"
	"maps"
	"slices"
)

// MapOf returns the codec for a mapping from kc's keys to vc's values.
// Entries are emitted in ascending key order so equal maps encode to
// equal bytes. On decode a repeated key keeps the last value seen.
func MapOf[K cmp.Ordered, V any](kc Codec[K], vc Codec[V]) Codec[map[K]V] {
	return Codec[map[K]V]{
		put: func(e *Encoder, tag Tag, m map[K]V) error {
			inner := NewEncoder()
			for _, k := range slices.Sorted(maps.Keys(m)) {
				if err := kc.put(inner, 0, k); err != nil {
					return err
				}
				if err := vc.put(inner, 0, m[k]); err != nil {
					return err
				}
			}
			return e.putRegion(tag, TypeMap, inner.buf)
		},
		get: func(d *Decoder, h Header) (map[K]V, error) {
			if h.Type != TypeMap {
				return nil, mismatch(h, "map")
			}
			n, err := d.readSize()
			if err != nil {
				return nil, err
			}
			sub, err := d.child(n)
			if err != nil {
				return nil, err
			}
			out := make(map[K]V)
			for sub.remaining() > 0 {
				k, err := kc.Next(sub)
				if err != nil {
					return nil, err
				}
				v, err := vc.Next(sub)
				if err != nil {
					return nil, err
				}
				out[k] = v
			}
			return out, nil
		},
	}
}

// WriteMap encodes m at tag.
func WriteMap[K cmp.Ordered, V any](e *Encoder, tag Tag, m map[K]V, kc Codec[K], vc Codec[V]) error {
	return MapOf(kc, vc).Write(e, tag, m)
}

// ReadMap decodes the mapping at tag.
func ReadMap[K cmp.Ordered, V any](d *Decoder, tag Tag, required bool, def map[K]V, kc Codec[K], vc Codec[V]) (map[K]V, error) {
	return MapOf(kc, vc).Read(d, tag, required, def)
}
