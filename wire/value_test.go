package wire

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestValue_DecodeFields(t *testing.T) {
	data := []byte("\x00\xff\x11\xff\xff\x2d\x00\x00\x00\x00\x02\xff\x00\x36\x05hello")
	got, err := DecodeFields(data)
	if err != nil {
		t.Fatal(err)
	}
	want := []Field{
		{Tag: 0, Value: IntValue{Type: TypeInt8, V: -1}},
		{Tag: 1, Value: IntValue{Type: TypeInt16, V: -1}},
		{Tag: 2, Value: BytesValue{0xff, 0x00}},
		{Tag: 3, Value: StringValue("hello")},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestValue_RoundTrip(t *testing.T) {
	inputs := map[string][]byte{
		"nested structs": []byte("\x04\x00\x00\x00\x00\x1a\x0c\x1c\x2d\x00\x00\x00\x00\x00\x0b\x28\x00\x00\x00\x00\x3a\x0c\x1c\x2d\x00\x00\x00\x00\x00\x0b"),
		"map":            []byte("\x08\x00\x00\x00\x12\x06\x05hello\x00\x20\x06\x05world\x00\x2a"),
		"wide ints":      {0xf3, 0xff, 0x7f, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x02, 0x00, 0x01, 0x63, 0x1d},
		"double":         {0x05, 0x3f, 0xc2, 0xd8, 0x8a, 0xb0, 0x9d, 0x97, 0x2a},
	}
	for name, data := range inputs {
		t.Run(name, func(t *testing.T) {
			fields, err := DecodeFields(data)
			if err != nil {
				t.Fatal(err)
			}
			out, err := EncodeFields(fields)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(data, out); diff != "" {
				t.Errorf("re-encode (-want +got):\n%s", diff)
			}
		})
	}
}

func TestValue_UnsignedRoundTrip(t *testing.T) {
	e := NewEncoder()
	_ = e.WriteUint16(0, math.MaxUint16)
	_ = e.WriteUint32(1, math.MaxUint32)
	_ = e.WriteUint64(2, math.MaxUint64)
	_ = e.WriteUint8(3, math.MaxUint8)
	data := e.Bytes()

	fields, err := DecodeFields(data)
	if err != nil {
		t.Fatal(err)
	}
	out, err := EncodeFields(fields)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(data, out); diff != "" {
		t.Fatalf("re-encode (-want +got):\n%s", diff)
	}

	d := NewDecoder(out)
	u16, err := d.ReadUint16(0, true, 0)
	if err != nil || u16 != math.MaxUint16 {
		t.Errorf("tag 0: got %d, %v", u16, err)
	}
	u32, err := d.ReadUint32(1, true, 0)
	if err != nil || u32 != math.MaxUint32 {
		t.Errorf("tag 1: got %d, %v", u32, err)
	}
	u64, err := d.ReadUint64(2, true, 0)
	if err != nil || u64 != math.MaxUint64 {
		t.Errorf("tag 2: got %d, %v", u64, err)
	}
}

func TestValue_WriteIntWidth(t *testing.T) {
	tests := []struct {
		name string
		v    IntValue
		want []byte
	}{
		{"zero", IntValue{Type: TypeInt32}, []byte{0x0c}},
		{"unsigned int16", IntValue{Type: TypeInt16, V: 65535}, []byte{0x01, 0xff, 0xff}},
		{"signed int16", IntValue{Type: TypeInt16, V: -1}, []byte{0x01, 0xff, 0xff}},
		{"kept int32", IntValue{Type: TypeInt32, V: 5}, []byte{0x02, 0x00, 0x00, 0x00, 0x05}},
		{"too wide for mark", IntValue{Type: TypeInt8, V: 300}, []byte{0x01, 0x01, 0x2c}},
		{"unknown mark", IntValue{Type: TypeString1, V: 7}, []byte{0x00, 0x07}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEncoder()
			if err := e.WriteValue(0, tt.v); err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, e.Bytes()); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
		})
	}
}

func TestValue_List(t *testing.T) {
	b, err := EncodeSingle(ListOf(Int64), []int64{0, 1, -70000})
	if err != nil {
		t.Fatal(err)
	}
	v, err := NewDecoder(b).ReadValue(0, true)
	if err != nil {
		t.Fatal(err)
	}
	want := ListValue{
		IntValue{Type: TypeZero},
		IntValue{Type: TypeInt8, V: 1},
		IntValue{Type: TypeInt32, V: -70000},
	}
	if diff := cmp.Diff(Value(want), v); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]interface{}{int64(0), int64(1), int64(-70000)}, ToInterface(v)); diff != "" {
		t.Errorf("ToInterface (-want +got):\n%s", diff)
	}
}

func TestValue_Int(t *testing.T) {
	for v, mark := range map[int64]TypeMark{
		0:           TypeZero,
		-128:        TypeInt8,
		128:         TypeInt16,
		-32769:      TypeInt32,
		1 << 31:     TypeInt64,
		-(1 << 31):  TypeInt32,
		1<<31 - 1:   TypeInt32,
		-(1<<31 + 1): TypeInt64,
	} {
		if got := Int(v).Mark(); got != mark {
			t.Errorf("Int(%d).Mark() = %s, want %s", v, got, mark)
		}
	}
}

func TestValue_FieldsToMap(t *testing.T) {
	e := NewEncoder()
	_ = e.WriteString(1, "first")
	_ = e.WriteString(1, "second")
	_ = e.WriteStruct(2, &testStruct{A: 4})
	fields, err := DecodeFields(e.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	got := FieldsToMap(fields)
	want := map[string]interface{}{
		"1": "first",
		"2": map[string]interface{}{
			"0": int64(4),
			"1": int64(0),
			"2": []byte{},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestValue_ReadRaw(t *testing.T) {
	e := NewEncoder()
	_ = e.WriteInt32(0, 7)
	_ = e.WriteStruct(20, &testStruct{A: 1})
	_ = e.WriteString(1, "x")

	raw, err := NewDecoder(e.Bytes()).ReadRaw(20)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{0xfa, 0x14, 0x00, 0x01, 0x1c, 0x2d, 0x00, 0x00, 0x00, 0x00, 0x00, 0x0b}
	if diff := cmp.Diff(want, raw); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}

	if _, err := NewDecoder(e.Bytes()).ReadRaw(3); !errors.Is(err, ErrTagNotFound) {
		t.Errorf("expected ErrTagNotFound, got %v", err)
	}
}

func TestValue_StrayStructEnd(t *testing.T) {
	_, err := DecodeFields([]byte{0x0b})
	if !errors.Is(err, ErrUnknownType) {
		t.Errorf("expected ErrUnknownType, got %v", err)
	}
}

func TestValue_Unsupported(t *testing.T) {
	err := NewEncoder().WriteValue(0, nil)
	if !errors.Is(err, ErrUnsupportedValue) {
		t.Errorf("expected ErrUnsupportedValue, got %v", err)
	}
}
