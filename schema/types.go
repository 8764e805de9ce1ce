package schema

// Repo represents a collection of schema files and their definitions.
type Repo struct {
	Files map[string]*File `json:"files"`
}

// File represents a single schema file
type File struct {
	Name    string    `json:"name"`    // user.proto
	Package string    `json:"package"` // package name
	Imports []string  `json:"imports"` // imported files
	Structs []*Struct `json:"structs"` // record definitions
	Enums   []*Enum   `json:"enums"`   // enum definitions
}

// Struct represents a TARS record definition
type Struct struct {
	Name          string    `json:"name"`           // "User"
	Fields        []*Field  `json:"fields"`         // record fields
	NestedStructs []*Struct `json:"nested_structs"` // nested records
	NestedEnums   []*Enum   `json:"nested_enums"`   // nested enums
}

// Field represents a record field
type Field struct {
	Name     string    `json:"name"`              // "user_name"
	Tag      int32     `json:"tag"`               // 0..255
	Required bool      `json:"required"`          // required fields fail decode when absent
	Type     FieldType `json:"type"`              // field type information
	Default  string    `json:"default,omitempty"` // literal default for optional fields
}

// FieldType represents field type information
type FieldType struct {
	Kind       TypeKind      `json:"kind"`                  // primitive, struct, enum, vector, map
	Primitive  PrimitiveType `json:"primitive,omitempty"`   // for primitive types
	StructType string        `json:"struct_type,omitempty"` // for struct types: "User", "demo.Address"
	EnumType   string        `json:"enum_type,omitempty"`   // for enum types
	Element    *FieldType    `json:"element,omitempty"`     // for vector element type
	MapKey     *FieldType    `json:"map_key,omitempty"`     // for map key type
	MapValue   *FieldType    `json:"map_value,omitempty"`   // for map value type
}

// TypeKind represents the kind of field type
type TypeKind string

const (
	KindPrimitive TypeKind = "primitive"
	KindStruct    TypeKind = "struct"
	KindEnum      TypeKind = "enum"
	KindVector    TypeKind = "vector"
	KindMap       TypeKind = "map"
)

// PrimitiveType represents TARS primitive types
type PrimitiveType string

const (
	TypeBool   PrimitiveType = "bool"
	TypeByte   PrimitiveType = "byte"
	TypeUByte  PrimitiveType = "unsigned byte"
	TypeShort  PrimitiveType = "short"
	TypeUShort PrimitiveType = "unsigned short"
	TypeInt    PrimitiveType = "int"
	TypeUInt   PrimitiveType = "unsigned int"
	TypeLong   PrimitiveType = "long"
	TypeULong  PrimitiveType = "unsigned long"
	TypeFloat  PrimitiveType = "float"
	TypeDouble PrimitiveType = "double"
	TypeString PrimitiveType = "string"
	TypeBytes  PrimitiveType = "bytes" // vector<byte>, a SimpleList on the wire
)

var primitiveTypes = map[string]PrimitiveType{
	string(TypeBool):   TypeBool,
	string(TypeByte):   TypeByte,
	string(TypeUByte):  TypeUByte,
	string(TypeShort):  TypeShort,
	string(TypeUShort): TypeUShort,
	string(TypeInt):    TypeInt,
	string(TypeUInt):   TypeUInt,
	string(TypeLong):   TypeLong,
	string(TypeULong):  TypeULong,
	string(TypeFloat):  TypeFloat,
	string(TypeDouble): TypeDouble,
	string(TypeString): TypeString,
	string(TypeBytes):  TypeBytes,
}

// ParsePrimitive looks up a primitive type by its TARS name.
func ParsePrimitive(name string) (PrimitiveType, bool) {
	p, ok := primitiveTypes[name]
	return p, ok
}

// IsSimpleListElement reports whether a vector of t is packed as a
// SimpleList.
func IsSimpleListElement(t PrimitiveType) bool {
	switch t {
	case TypeBool, TypeByte, TypeUByte:
		return true
	}
	return false
}

// Enum represents an enum definition
type Enum struct {
	Name   string       `json:"name"`   // "Status"
	Values []*EnumValue `json:"values"` // enum values
}

// EnumValue represents an enum value
type EnumValue struct {
	Name   string `json:"name"`   // "ACTIVE"
	Number int32  `json:"number"` // 1
}

// FieldByTag returns the field with the given tag, or nil.
func (s *Struct) FieldByTag(tag int32) *Field {
	for _, f := range s.Fields {
		if f.Tag == tag {
			return f
		}
	}
	return nil
}

// FieldByName returns the field with the given name, or nil.
func (s *Struct) FieldByName(name string) *Field {
	for _, f := range s.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// ValueByName returns the enum value with the given name, or nil.
func (e *Enum) ValueByName(name string) *EnumValue {
	for _, v := range e.Values {
		if v.Name == name {
			return v
		}
	}
	return nil
}

// ValueByNumber returns the first enum value with the given number, or nil.
func (e *Enum) ValueByNumber(n int32) *EnumValue {
	for _, v := range e.Values {
		if v.Number == n {
			return v
		}
	}
	return nil
}
