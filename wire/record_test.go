package wire

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/anirudhraja/tarslite/registry"
	"github.com/anirudhraja/tarslite/schema"
)

func primitive(p schema.PrimitiveType) schema.FieldType {
	return schema.FieldType{Kind: schema.KindPrimitive, Primitive: p}
}

func ptrType(ft schema.FieldType) *schema.FieldType { return &ft }

// newTestRegistry registers demo.User, demo.Address and demo.Status.
func newTestRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	address := &schema.Struct{
		Name: "Address",
		Fields: []*schema.Field{
			{Name: "city", Tag: 0, Required: true, Type: primitive(schema.TypeString)},
			{Name: "zip", Tag: 1, Type: primitive(schema.TypeUShort)},
		},
	}
	user := &schema.Struct{
		Name: "User",
		Fields: []*schema.Field{
			// declared out of tag order on purpose
			{Name: "name", Tag: 2, Required: true, Type: primitive(schema.TypeString)},
			{Name: "id", Tag: 0, Required: true, Type: primitive(schema.TypeLong)},
			{Name: "age", Tag: 1, Type: primitive(schema.TypeByte), Default: "18"},
			{Name: "status", Tag: 3, Type: schema.FieldType{Kind: schema.KindEnum, EnumType: "demo.Status"}},
			{Name: "home", Tag: 4, Type: schema.FieldType{Kind: schema.KindStruct, StructType: "demo.Address"}},
			{Name: "tags", Tag: 5, Type: schema.FieldType{Kind: schema.KindVector, Element: ptrType(primitive(schema.TypeString))}},
			{Name: "flags", Tag: 6, Type: schema.FieldType{Kind: schema.KindVector, Element: ptrType(primitive(schema.TypeBool))}},
			{Name: "scores", Tag: 7, Type: schema.FieldType{
				Kind:     schema.KindMap,
				MapKey:   ptrType(primitive(schema.TypeInt)),
				MapValue: ptrType(primitive(schema.TypeDouble)),
			}},
			{Name: "avatar", Tag: 8, Type: primitive(schema.TypeBytes)},
			{Name: "ratio", Tag: 20, Type: primitive(schema.TypeFloat)},
		},
	}
	status := &schema.Enum{
		Name: "Status",
		Values: []*schema.EnumValue{
			{Name: "UNKNOWN", Number: 0},
			{Name: "ACTIVE", Number: 1},
			{Name: "BANNED", Number: 2},
		},
	}
	reg := registry.NewRegistry(nil)
	err := reg.LoadRepo(&schema.Repo{Files: map[string]*schema.File{
		"demo.proto": {Name: "demo.proto", Package: "demo", Structs: []*schema.Struct{user, address}, Enums: []*schema.Enum{status}},
	}})
	if err != nil {
		t.Fatal(err)
	}
	return reg
}

func mustStruct(t *testing.T, reg *registry.Registry, name string) *schema.Struct {
	t.Helper()
	st, err := reg.GetStruct(name)
	if err != nil {
		t.Fatal(err)
	}
	return st
}

func TestRecord_EncodeTagOrder(t *testing.T) {
	reg := newTestRegistry(t)
	user := mustStruct(t, reg, "User")

	got, err := EncodeStruct(map[string]interface{}{
		"name": "ann",
		"id":   int64(7),
	}, user, reg)
	if err != nil {
		t.Fatal(err)
	}
	// id @0, name @2; optional fields are left out
	want := []byte{0x00, 0x07, 0x26, 0x03, 'a', 'n', 'n'}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestRecord_RoundTrip(t *testing.T) {
	reg := newTestRegistry(t)
	user := mustStruct(t, reg, "demo.User")

	in := map[string]interface{}{
		"id":     int64(-5),
		"name":   "bob",
		"age":    int8(40),
		"status": "BANNED",
		"home":   map[string]interface{}{"city": "Oslo", "zip": 9000},
		"tags":   []string{"a", strings.Repeat("b", 300)},
		"flags":  []bool{true, false, true},
		"scores": map[int32]float64{3: 1.5, -1: 2.5},
		"avatar": []byte{1, 2, 3},
		"ratio":  float32(0.25),
		"extra":  "ignored",
	}
	data, err := EncodeStruct(in, user, reg)
	if err != nil {
		t.Fatal(err)
	}
	out, err := DecodeStruct(data, user, reg)
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]interface{}{
		"id":     int64(-5),
		"name":   "bob",
		"age":    int8(40),
		"status": "BANNED",
		"home":   map[string]interface{}{"city": "Oslo", "zip": uint16(9000)},
		"tags":   []interface{}{"a", strings.Repeat("b", 300)},
		"flags":  []interface{}{true, false, true},
		"scores": map[string]interface{}{"3": 1.5, "-1": 2.5},
		"avatar": []byte{1, 2, 3},
		"ratio":  float32(0.25),
	}
	if diff := cmp.Diff(want, out); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}

	// decoded maps re-encode to the same bytes
	again, err := EncodeStruct(out, user, reg)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(data, again); diff != "" {
		t.Errorf("re-encode (-first +second):\n%s", diff)
	}
}

func TestRecord_MapKeyOrder(t *testing.T) {
	reg := newTestRegistry(t)
	user := mustStruct(t, reg, "User")
	data, err := EncodeStruct(map[string]interface{}{
		"id":     1,
		"name":   "",
		"scores": map[string]interface{}{"10": 1.0, "-2": 2.0, "3": 3.0},
	}, user, reg)
	if err != nil {
		t.Fatal(err)
	}
	fields, err := DecodeFields(data)
	if err != nil {
		t.Fatal(err)
	}
	scores, ok := fields[2].Value.(MapValue)
	if !ok {
		t.Fatalf("expected map at index 2, got %#v", fields[2])
	}
	var keys []int64
	for _, kv := range scores {
		keys = append(keys, kv.Key.(IntValue).V)
	}
	if diff := cmp.Diff([]int64{-2, 3, 10}, keys); diff != "" {
		t.Errorf("keys not in numeric order (-want +got):\n%s", diff)
	}
}

func TestRecord_Defaults(t *testing.T) {
	reg := newTestRegistry(t)
	user := mustStruct(t, reg, "User")

	t.Run("missing required on encode writes zero", func(t *testing.T) {
		data, err := EncodeStruct(map[string]interface{}{}, user, reg)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff([]byte{0x0c, 0x26, 0x00}, data); diff != "" {
			t.Errorf("(-want +got):\n%s", diff)
		}
	})

	t.Run("missing optional on decode yields default", func(t *testing.T) {
		out, err := DecodeStruct([]byte{0x0c, 0x26, 0x00}, user, reg)
		if err != nil {
			t.Fatal(err)
		}
		want := map[string]interface{}{
			"id":     int64(0),
			"name":   "",
			"age":    int8(18),
			"status": "UNKNOWN",
			"tags":   []interface{}{},
			"flags":  []interface{}{},
			"scores": map[string]interface{}{},
			"avatar": []byte{},
			"ratio":  float32(0),
		}
		if diff := cmp.Diff(want, out); diff != "" {
			t.Errorf("(-want +got):\n%s", diff)
		}
	})

	t.Run("missing required on decode fails", func(t *testing.T) {
		_, err := DecodeStruct([]byte{0x0c}, user, reg)
		if !errors.Is(err, ErrTagNotFound) {
			t.Fatalf("expected ErrTagNotFound, got %v", err)
		}
		var fe *FieldError
		if !errors.As(err, &fe) || strings.Join(fe.FieldPath, ".") != "name" {
			t.Errorf("expected path name, got %v", err)
		}
	})
}

func TestRecord_LenientInput(t *testing.T) {
	reg := newTestRegistry(t)
	user := mustStruct(t, reg, "User")

	var in map[string]interface{}
	dec := json.NewDecoder(strings.NewReader(`{"id": 12345678901, "name": "x", "age": "3", "status": 1, "avatar": "AQI="}`))
	dec.UseNumber()
	if err := dec.Decode(&in); err != nil {
		t.Fatal(err)
	}
	data, err := EncodeStruct(in, user, reg)
	if err != nil {
		t.Fatal(err)
	}
	out, err := DecodeStruct(data, user, reg)
	if err != nil {
		t.Fatal(err)
	}
	if out["id"] != int64(12345678901) || out["age"] != int8(3) || out["status"] != "ACTIVE" {
		t.Errorf("unexpected decode: %v", out)
	}
	if diff := cmp.Diff([]byte{1, 2}, out["avatar"]); diff != "" {
		t.Errorf("avatar (-want +got):\n%s", diff)
	}
}

func TestRecord_Errors(t *testing.T) {
	reg := newTestRegistry(t)
	user := mustStruct(t, reg, "User")

	tests := []struct {
		name   string
		data   map[string]interface{}
		path   string
		target error
	}{
		{"byte out of range", map[string]interface{}{"age": 300}, "age", ErrUnsupportedValue},
		{"nested wrong shape", map[string]interface{}{"home": "Oslo"}, "home", ErrUnsupportedValue},
		{"nested field", map[string]interface{}{"home": map[string]interface{}{"city": 5}}, "home.city", ErrUnsupportedValue},
		{"list element", map[string]interface{}{"tags": []interface{}{"ok", 1}}, "tags.1", ErrUnsupportedValue},
		{"unknown enum name", map[string]interface{}{"status": "GONE"}, "status", ErrUnsupportedValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.data["id"] = 1
			tt.data["name"] = "n"
			_, err := EncodeStruct(tt.data, user, reg)
			if !errors.Is(err, tt.target) {
				t.Fatalf("expected %v, got %v", tt.target, err)
			}
			var fe *FieldError
			if !errors.As(err, &fe) {
				t.Fatalf("expected FieldError, got %T", err)
			}
			if got := strings.Join(fe.FieldPath, "."); got != tt.path {
				t.Errorf("path %q, want %q", got, tt.path)
			}
		})
	}

	t.Run("type mismatch on decode", func(t *testing.T) {
		// name @2 carries an int
		_, err := DecodeStruct([]byte{0x0c, 0x20, 0x01}, user, reg)
		if !errors.Is(err, ErrMismatchType) {
			t.Errorf("expected ErrMismatchType, got %v", err)
		}
	})
}

func TestRecord_UnknownEnumNumber(t *testing.T) {
	reg := newTestRegistry(t)
	user := mustStruct(t, reg, "User")
	data, err := EncodeStruct(map[string]interface{}{"id": 1, "name": "n", "status": 9}, user, reg)
	if err != nil {
		t.Fatal(err)
	}
	out, err := DecodeStruct(data, user, reg)
	if err != nil {
		t.Fatal(err)
	}
	if out["status"] != int32(9) {
		t.Errorf("expected raw number for unknown enum value, got %#v", out["status"])
	}
}

func TestToLowerCamel(t *testing.T) {
	for in, want := range map[string]string{
		"":           "",
		"user_name":  "userName",
		"UserName":   "userName",
		"a_b_c":      "aBC",
		"already":    "already",
		"_leading_x": "leadingX",
	} {
		if got := toLowerCamel(in); got != want {
			t.Errorf("toLowerCamel(%q) = %q, want %q", in, got, want)
		}
	}
}
