package wire

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

type color int32

const (
	red color = iota
	green
	blue
)

var colorCodec = NewCodec(
	func(e *Encoder, tag Tag, v color) error { return e.WriteInt32(tag, int32(v)) },
	func(d *Decoder, h Header) (color, error) {
		n, err := d.int32Payload(h)
		if err != nil {
			return 0, err
		}
		if n < int32(red) || n > int32(blue) {
			return 0, fmt.Errorf("%w: color %d", ErrUnsupportedValue, n)
		}
		return color(n), nil
	},
)

func TestCodec_Custom(t *testing.T) {
	b, err := EncodeSingle(ListOf(colorCodec), []color{red, blue, green})
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{0x09, 0x00, 0x00, 0x00, 0x05, 0x0c, 0x00, 0x02, 0x00, 0x01}
	if diff := cmp.Diff(want, b); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	got, err := DecodeSingle(ListOf(colorCodec), b)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]color{red, blue, green}, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}

	_, err = DecodeSingle(colorCodec, []byte{0x00, 0x07})
	if !errors.Is(err, ErrUnsupportedValue) {
		t.Errorf("expected custom validation error, got %v", err)
	}
}

func TestCodec_NestedContainers(t *testing.T) {
	c := MapOf(Int32, ListOf(OptionalOf(String)))
	in := map[int32][]*string{
		2: {ptr("b")},
		1: {ptr("a"), ptr("")},
		0: {},
	}
	b, err := EncodeSingle(c, in)
	if err != nil {
		t.Fatal(err)
	}
	out, err := DecodeSingle(c, b)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(in, out, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestCodec_ReadOptional(t *testing.T) {
	dec := NewDecoder([]byte{0x16, 0x01, 'x'})
	s, err := ReadOptional(dec, 1, "def", String)
	if err != nil || s != "x" {
		t.Errorf("present: %q, %v", s, err)
	}
	s, err = ReadOptional(dec, 2, "def", String)
	if err != nil || s != "def" {
		t.Errorf("absent: %q, %v", s, err)
	}
}

func TestCodec_Next(t *testing.T) {
	dec := NewDecoder([]byte{0x00, 0x01, 0x1c, 0x20, 0x03})
	var got []int8
	for i := 0; i < 3; i++ {
		v, err := Int8.Next(dec)
		if err != nil {
			t.Fatal(err)
		}
		got = append(got, v)
	}
	if diff := cmp.Diff([]int8{1, 0, 3}, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	if _, err := Int8.Next(dec); !errors.Is(err, ErrNoEnoughData) {
		t.Errorf("expected ErrNoEnoughData at end, got %v", err)
	}
}
