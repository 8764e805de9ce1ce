package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anirudhraja/tarslite/schema"
)

const commonProto = `syntax = "proto2";
package common;

enum Status {
  UNKNOWN = 0;
  ACTIVE = 1;
}

message Address {
  required string city = 0;
  optional uint32 zip = 1 [(tars.type) = "unsigned short"];
}
`

const userProto = `syntax = "proto2";
package demo;

import "common.proto";
import "google/protobuf/timestamp.proto";

message User {
  required int64 id = 0;
  required string name = 1;
  optional int32 age = 2 [(tars.type) = "byte", default = 18];
  optional common.Status status = 3;
  optional common.Address home = 4;
  repeated string tags = 5;
  map<string, Role> roles = 6;
  optional bytes avatar = 7;
  optional string nick = 8 [default = "anon"];
  oneof contact {
    string email = 9;
    string phone = 10;
  }
  repeated Role history = 11;

  message Role {
    optional string title = 0;
    optional Level level = 1;
  }

  enum Level {
    LOW = 0;
    HIGH = 1;
  }
}
`

func writeProtos(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	return dir
}

func loadDemo(t *testing.T) *Registry {
	t.Helper()
	dir := writeProtos(t, map[string]string{"common.proto": commonProto, "user.proto": userProto})
	r := NewRegistry([]string{dir})
	require.NoError(t, r.LoadSchemaFromFile("user.proto"))
	return r
}

func TestNewRegistry(t *testing.T) {
	r := NewRegistry([]string{"a", "b"})
	require.NotNil(t, r)
	assert.Equal(t, []string{"a", "b"}, r.SchemaDirectories)
	assert.Empty(t, r.ListStructs())
	assert.Empty(t, r.ListEnums())
	assert.Empty(t, r.Repo().Files)
}

func TestLoadSchema_NonExistentPath(t *testing.T) {
	r := NewRegistry([]string{t.TempDir()})
	err := r.LoadSchemaFromFile("missing.proto")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "path does not exist")
}

func TestLoadSchema_NonProtoFile(t *testing.T) {
	dir := writeProtos(t, map[string]string{"notes.txt": "hello"})
	r := NewRegistry([]string{dir})
	err := r.LoadSchemaFromFile("notes.txt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is not a .proto file")
}

func TestLoadSchema_WithImports(t *testing.T) {
	r := loadDemo(t)

	assert.Equal(t, []string{"common.Address", "demo.User", "demo.User.Role"}, r.ListStructs())
	assert.Equal(t, []string{"common.Status", "demo.User.Level"}, r.ListEnums())
	assert.Len(t, r.Repo().Files, 2)
}

func TestLoadSchema_FieldMapping(t *testing.T) {
	r := loadDemo(t)
	user, err := r.GetStruct("demo.User")
	require.NoError(t, err)

	tests := []struct {
		name     string
		tag      int32
		required bool
		typ      schema.FieldType
		def      string
	}{
		{"id", 0, true, schema.FieldType{Kind: schema.KindPrimitive, Primitive: schema.TypeLong}, ""},
		{"name", 1, true, schema.FieldType{Kind: schema.KindPrimitive, Primitive: schema.TypeString}, ""},
		{"age", 2, false, schema.FieldType{Kind: schema.KindPrimitive, Primitive: schema.TypeByte}, "18"},
		{"status", 3, false, schema.FieldType{Kind: schema.KindEnum, EnumType: "common.Status"}, ""},
		{"home", 4, false, schema.FieldType{Kind: schema.KindStruct, StructType: "common.Address"}, ""},
		{"avatar", 7, false, schema.FieldType{Kind: schema.KindPrimitive, Primitive: schema.TypeBytes}, ""},
		{"nick", 8, false, schema.FieldType{Kind: schema.KindPrimitive, Primitive: schema.TypeString}, "anon"},
		{"email", 9, false, schema.FieldType{Kind: schema.KindPrimitive, Primitive: schema.TypeString}, ""},
		{"phone", 10, false, schema.FieldType{Kind: schema.KindPrimitive, Primitive: schema.TypeString}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := user.FieldByName(tt.name)
			require.NotNil(t, f)
			assert.Equal(t, tt.tag, f.Tag)
			assert.Equal(t, tt.required, f.Required)
			assert.Equal(t, tt.typ, f.Type)
			assert.Equal(t, tt.def, f.Default)
		})
	}

	t.Run("vector", func(t *testing.T) {
		f := user.FieldByTag(5)
		require.NotNil(t, f)
		assert.Equal(t, schema.KindVector, f.Type.Kind)
		require.NotNil(t, f.Type.Element)
		assert.Equal(t, schema.TypeString, f.Type.Element.Primitive)
	})

	t.Run("vector of nested struct", func(t *testing.T) {
		f := user.FieldByName("history")
		require.NotNil(t, f)
		require.NotNil(t, f.Type.Element)
		assert.Equal(t, schema.KindStruct, f.Type.Element.Kind)
		assert.Equal(t, "demo.User.Role", f.Type.Element.StructType)
	})

	t.Run("map", func(t *testing.T) {
		f := user.FieldByName("roles")
		require.NotNil(t, f)
		assert.Equal(t, schema.KindMap, f.Type.Kind)
		assert.Equal(t, schema.TypeString, f.Type.MapKey.Primitive)
		assert.Equal(t, "demo.User.Role", f.Type.MapValue.StructType)
	})

	t.Run("nested enum reference", func(t *testing.T) {
		role, err := r.GetStruct("demo.User.Role")
		require.NoError(t, err)
		level := role.FieldByName("level")
		require.NotNil(t, level)
		assert.Equal(t, schema.KindEnum, level.Type.Kind)
		assert.Equal(t, "demo.User.Level", level.Type.EnumType)
	})

	t.Run("tars type override", func(t *testing.T) {
		addr, err := r.GetStruct("common.Address")
		require.NoError(t, err)
		assert.Equal(t, schema.TypeUShort, addr.FieldByName("zip").Type.Primitive)
	})
}

func TestGetStruct(t *testing.T) {
	r := loadDemo(t)

	st, err := r.GetStruct("User")
	require.NoError(t, err)
	assert.Equal(t, "User", st.Name)

	st, err = r.GetStruct("User.Role")
	require.NoError(t, err)
	assert.Equal(t, "Role", st.Name)

	_, err = r.GetStruct("Nope")
	assert.ErrorContains(t, err, "struct not found")
}

func TestGetEnum(t *testing.T) {
	r := loadDemo(t)

	e, err := r.GetEnum("Status")
	require.NoError(t, err)
	require.NotNil(t, e.ValueByName("ACTIVE"))
	assert.Equal(t, int32(1), e.ValueByName("ACTIVE").Number)
	assert.Equal(t, "UNKNOWN", e.ValueByNumber(0).Name)
	assert.Nil(t, e.ValueByNumber(7))

	_, err = r.GetEnum("Color")
	assert.ErrorContains(t, err, "enum not found")
}

func TestLoadSchema_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "tag out of range",
			body: "syntax = \"proto2\";\nmessage A { optional int32 x = 256; }\n",
			want: "out of tag range",
		},
		{
			name: "duplicate tag",
			body: "syntax = \"proto2\";\nmessage A { optional int32 x = 1; optional int32 y = 1; }\n",
			want: "share tag 1",
		},
		{
			name: "unknown tars type",
			body: "syntax = \"proto2\";\nmessage A { optional int32 x = 1 [(tars.type) = \"huge\"]; }\n",
			want: "unknown tars type",
		},
		{
			name: "unresolved reference",
			body: "syntax = \"proto2\";\nmessage A { optional Missing x = 1; }\n",
			want: "unable to resolve type name: Missing",
		},
		{
			name: "missing import",
			body: "syntax = \"proto2\";\nimport \"gone.proto\";\nmessage A { optional int32 x = 1; }\n",
			want: "path does not exist",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writeProtos(t, map[string]string{"a.proto": tt.body})
			err := NewRegistry([]string{dir}).LoadSchemaFromFile("a.proto")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadRepo(t *testing.T) {
	r := NewRegistry(nil)
	err := r.LoadRepo(&schema.Repo{Files: map[string]*schema.File{
		"x.proto": {
			Package: "x",
			Structs: []*schema.Struct{{
				Name:          "Outer",
				NestedStructs: []*schema.Struct{{Name: "Inner"}},
				NestedEnums:   []*schema.Enum{{Name: "Kind"}},
			}},
		},
	}})
	require.NoError(t, err)
	assert.Equal(t, []string{"x.Outer", "x.Outer.Inner"}, r.ListStructs())
	assert.Equal(t, []string{"x.Outer.Kind"}, r.ListEnums())

	assert.Error(t, r.LoadRepo(nil))
}

func TestGetReferencedType(t *testing.T) {
	all := map[string]struct{}{
		"a.b.C":   {},
		"a.C":     {},
		"a.b.D.E": {},
		"F":       {},
	}
	tests := []struct {
		typeName string
		scope    string
		want     string
		wantErr  bool
	}{
		{"C", "a.b", "a.b.C", false},
		{"C", "a", "a.C", false},
		{".a.C", "a.b", "a.C", false},
		{"D.E", "a.b.X", "a.b.D.E", false},
		{"F", "a.b", "F", false},
		{"G", "a.b", "", true},
		{".G", "", "", true},
	}
	for _, tt := range tests {
		got, err := getReferencedType(tt.typeName, tt.scope, all)
		if tt.wantErr {
			assert.Error(t, err, tt.typeName)
			continue
		}
		require.NoError(t, err, tt.typeName)
		assert.Equal(t, tt.want, got)
	}
}
