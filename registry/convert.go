package registry

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	protoparserparser "github.com/yoheimuta/go-protoparser/v4/parser"

	"github.com/anirudhraja/tarslite/schema"
)

// tarsTypeOption lets a .proto field pick a narrower TARS primitive than
// its protobuf scalar implies, e.g. `int32 age = 2 [(tars.type) = "short"];`.
const tarsTypeOption = "(tars.type)"

// scalarTypes maps protobuf scalar names to TARS primitives.
var scalarTypes = map[string]schema.PrimitiveType{
	"bool":     schema.TypeBool,
	"int32":    schema.TypeInt,
	"sint32":   schema.TypeInt,
	"sfixed32": schema.TypeInt,
	"int64":    schema.TypeLong,
	"sint64":   schema.TypeLong,
	"sfixed64": schema.TypeLong,
	"uint32":   schema.TypeUInt,
	"fixed32":  schema.TypeUInt,
	"uint64":   schema.TypeULong,
	"fixed64":  schema.TypeULong,
	"float":    schema.TypeFloat,
	"double":   schema.TypeDouble,
	"string":   schema.TypeString,
	"bytes":    schema.TypeBytes,
}

// pendingRef is a named type reference that is resolved once every file
// of the load has been registered.
type pendingRef struct {
	target *schema.FieldType
	name   string
	scope  string
}

// convertProto turns a parsed .proto file into a schema file. Named type
// references are returned unresolved.
func convertProto(path string, proto *protoparserparser.Proto) (*schema.File, []*pendingRef, error) {
	if proto == nil {
		return nil, nil, fmt.Errorf("no parsed body for %s", path)
	}
	file := &schema.File{
		Name:    filepath.Base(path),
		Imports: []string{},
		Structs: []*schema.Struct{},
		Enums:   []*schema.Enum{},
	}
	for _, body := range proto.ProtoBody {
		if pkg, ok := body.(*protoparserparser.Package); ok {
			file.Package = pkg.Name
		}
	}

	var refs []*pendingRef
	for _, body := range proto.ProtoBody {
		switch b := body.(type) {
		case *protoparserparser.Import:
			file.Imports = append(file.Imports, strings.Trim(b.Location, `"`))
		case *protoparserparser.Message:
			st, err := convertMessage(b, file.Package, &refs)
			if err != nil {
				return nil, nil, err
			}
			file.Structs = append(file.Structs, st)
		case *protoparserparser.Enum:
			enum, err := convertEnum(b)
			if err != nil {
				return nil, nil, err
			}
			file.Enums = append(file.Enums, enum)
		}
	}
	return file, refs, nil
}

func convertMessage(msg *protoparserparser.Message, parentScope string, refs *[]*pendingRef) (*schema.Struct, error) {
	st := &schema.Struct{
		Name:          msg.MessageName,
		Fields:        []*schema.Field{},
		NestedStructs: []*schema.Struct{},
		NestedEnums:   []*schema.Enum{},
	}
	scope := msg.MessageName
	if parentScope != "" {
		scope = parentScope + "." + msg.MessageName
	}

	for _, body := range msg.MessageBody {
		switch b := body.(type) {
		case *protoparserparser.Field:
			f, err := convertField(b.FieldName, b.FieldNumber, b.Type, b.FieldOptions, scope, refs, func(f *schema.Field) {
				f.Required = b.IsRequired
				if b.IsRepeated {
					elem := f.Type
					f.Type = schema.FieldType{Kind: schema.KindVector, Element: &elem}
				}
			})
			if err != nil {
				return nil, fmt.Errorf("struct %s: %w", msg.MessageName, err)
			}
			st.Fields = append(st.Fields, f)
		case *protoparserparser.MapField:
			f, err := convertMapField(b, scope, refs)
			if err != nil {
				return nil, fmt.Errorf("struct %s: %w", msg.MessageName, err)
			}
			st.Fields = append(st.Fields, f)
		case *protoparserparser.Oneof:
			// oneof members are plain optional fields in TARS
			for _, of := range b.OneofFields {
				f, err := convertField(of.FieldName, of.FieldNumber, of.Type, of.FieldOptions, scope, refs, nil)
				if err != nil {
					return nil, fmt.Errorf("struct %s: %w", msg.MessageName, err)
				}
				st.Fields = append(st.Fields, f)
			}
		case *protoparserparser.Message:
			nested, err := convertMessage(b, scope, refs)
			if err != nil {
				return nil, err
			}
			st.NestedStructs = append(st.NestedStructs, nested)
		case *protoparserparser.Enum:
			enum, err := convertEnum(b)
			if err != nil {
				return nil, err
			}
			st.NestedEnums = append(st.NestedEnums, enum)
		}
	}

	if err := checkDuplicateTags(st); err != nil {
		return nil, err
	}
	return st, nil
}

// convertField builds a schema field from its protobuf parts. adjust runs
// before named references are recorded, so it may rewrap the type.
func convertField(name, number, protoType string, options []*protoparserparser.FieldOption, scope string, refs *[]*pendingRef, adjust func(*schema.Field)) (*schema.Field, error) {
	tag, err := parseTag(number)
	if err != nil {
		return nil, fmt.Errorf("field %s: %w", name, err)
	}
	ft, named, err := convertType(protoType, options)
	if err != nil {
		return nil, fmt.Errorf("field %s: %w", name, err)
	}
	f := &schema.Field{
		Name:    name,
		Tag:     tag,
		Type:    ft,
		Default: optionValue(options, "default"),
	}
	if adjust != nil {
		adjust(f)
	}
	if named {
		target := &f.Type
		if f.Type.Kind == schema.KindVector {
			target = f.Type.Element
		}
		*refs = append(*refs, &pendingRef{target: target, name: protoType, scope: scope})
	}
	return f, nil
}

func convertMapField(mf *protoparserparser.MapField, scope string, refs *[]*pendingRef) (*schema.Field, error) {
	tag, err := parseTag(mf.FieldNumber)
	if err != nil {
		return nil, fmt.Errorf("field %s: %w", mf.MapName, err)
	}
	key, named, err := convertType(mf.KeyType, nil)
	if err != nil || named {
		return nil, fmt.Errorf("field %s: invalid map key type %s", mf.MapName, mf.KeyType)
	}
	value, named, err := convertType(mf.Type, mf.FieldOptions)
	if err != nil {
		return nil, fmt.Errorf("field %s: %w", mf.MapName, err)
	}
	f := &schema.Field{
		Name: mf.MapName,
		Tag:  tag,
		Type: schema.FieldType{Kind: schema.KindMap, MapKey: &key, MapValue: &value},
	}
	if named {
		*refs = append(*refs, &pendingRef{target: f.Type.MapValue, name: mf.Type, scope: scope})
	}
	return f, nil
}

// convertType maps a protobuf type name to a TARS field type. named is
// true when the name refers to a struct or enum still to be resolved.
func convertType(protoType string, options []*protoparserparser.FieldOption) (schema.FieldType, bool, error) {
	if override := optionValue(options, tarsTypeOption); override != "" {
		p, ok := schema.ParsePrimitive(override)
		if !ok {
			return schema.FieldType{}, false, fmt.Errorf("unknown tars type %q", override)
		}
		return schema.FieldType{Kind: schema.KindPrimitive, Primitive: p}, false, nil
	}
	if p, ok := scalarTypes[protoType]; ok {
		return schema.FieldType{Kind: schema.KindPrimitive, Primitive: p}, false, nil
	}
	return schema.FieldType{Kind: schema.KindStruct, StructType: protoType}, true, nil
}

func convertEnum(e *protoparserparser.Enum) (*schema.Enum, error) {
	enum := &schema.Enum{Name: e.EnumName, Values: []*schema.EnumValue{}}
	for _, body := range e.EnumBody {
		ef, ok := body.(*protoparserparser.EnumField)
		if !ok {
			continue
		}
		n, err := strconv.ParseInt(ef.Number, 0, 32)
		if err != nil {
			return nil, fmt.Errorf("enum %s: invalid value %s for %s: %w", e.EnumName, ef.Number, ef.Ident, err)
		}
		enum.Values = append(enum.Values, &schema.EnumValue{Name: ef.Ident, Number: int32(n)})
	}
	return enum, nil
}

// parseTag parses a field number and checks it fits a TARS header.
func parseTag(number string) (int32, error) {
	n, err := strconv.ParseInt(number, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid field number %q: %w", number, err)
	}
	if n < 0 || n > 255 {
		return 0, fmt.Errorf("field number %d out of tag range 0..255", n)
	}
	return int32(n), nil
}

// optionValue returns the unquoted constant of the named field option.
func optionValue(options []*protoparserparser.FieldOption, name string) string {
	for _, o := range options {
		if o.OptionName == name {
			return strings.Trim(o.Constant, `"'`)
		}
	}
	return ""
}

func checkDuplicateTags(st *schema.Struct) error {
	seen := make(map[int32]string, len(st.Fields))
	for _, f := range st.Fields {
		if other, dup := seen[f.Tag]; dup {
			return fmt.Errorf("struct %s: fields %s and %s share tag %d", st.Name, other, f.Name, f.Tag)
		}
		seen[f.Tag] = f.Name
	}
	return nil
}
