package tarslite

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/anirudhraja/tarslite/registry"
	"github.com/anirudhraja/tarslite/schema"
	"github.com/anirudhraja/tarslite/wire"
)

// ===== SCHEMA-AWARE API =====

// Tarslite provides schema-aware TARS operations without generated code
type Tarslite struct {
	registry *registry.Registry
}

// NewTarslite creates a new Tarslite instance. Schema files and their
// imports are looked up in dirs.
func NewTarslite(dirs []string) *Tarslite {
	return &Tarslite{
		registry: registry.NewRegistry(dirs),
	}
}

// LoadSchemaFromFile loads a .proto schema file and its imports
func (t *Tarslite) LoadSchemaFromFile(path string) error {
	return t.registry.LoadSchemaFromFile(path)
}

// LoadRepo loads schema definitions built in code
func (t *Tarslite) LoadRepo(repo *schema.Repo) error {
	return t.registry.LoadRepo(repo)
}

// Parse decodes TARS bytes using the schema of structName
func (t *Tarslite) Parse(data []byte, structName string) (map[string]interface{}, error) {
	st, err := t.registry.GetStruct(structName)
	if err != nil {
		return nil, fmt.Errorf("struct type not found: %s", structName)
	}
	return wire.DecodeStruct(data, st, t.registry)
}

// Marshal encodes a map to TARS bytes using the schema of structName
func (t *Tarslite) Marshal(data map[string]interface{}, structName string) ([]byte, error) {
	st, err := t.registry.GetStruct(structName)
	if err != nil {
		return nil, fmt.Errorf("struct type not found: %s", structName)
	}
	return wire.EncodeStruct(data, st, t.registry)
}

// Dump decodes a top-level message without a schema
func (t *Tarslite) Dump(data []byte) ([]wire.Field, error) {
	return wire.DecodeFields(data)
}

// Unmarshal decodes TARS bytes into a Go struct. Types implementing
// wire.Struct decode themselves; any other struct is filled by reflection
// from the schema named after its Go type.
func (t *Tarslite) Unmarshal(data []byte, v interface{}) error {
	if s, ok := v.(wire.Struct); ok {
		return wire.Unmarshal(data, s)
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("unmarshal target must be a pointer to struct")
	}

	structName := rv.Elem().Type().Name()
	result, err := t.Parse(data, structName)
	if err != nil {
		return err
	}
	return mapToStruct(result, rv.Elem())
}

// mapToStruct maps parsed result to struct fields. A field matches the
// record field named by its `tars` tag, else its Go name compared without
// case or underscores.
func mapToStruct(data map[string]interface{}, rv reflect.Value) error {
	byKey := make(map[string]interface{}, len(data))
	for name, v := range data {
		byKey[normalizeName(name)] = v
	}

	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		fieldValue := rv.Field(i)
		if !fieldValue.CanSet() {
			continue
		}

		name := field.Name
		if tag, ok := field.Tag.Lookup("tars"); ok {
			tag, _, _ = strings.Cut(tag, ",")
			if tag == "-" {
				continue
			}
			if tag != "" {
				name = tag
			}
		}
		value, ok := data[name]
		if !ok {
			value, ok = byKey[normalizeName(name)]
		}
		if !ok {
			continue
		}
		if err := setFieldValue(fieldValue, value); err != nil {
			return fmt.Errorf("failed to set field %s: %w", field.Name, err)
		}
	}
	return nil
}

func normalizeName(s string) string {
	return strings.ToLower(strings.ReplaceAll(s, "_", ""))
}

// setFieldValue sets a struct field with type conversion
func setFieldValue(fieldValue reflect.Value, value interface{}) error {
	if value == nil {
		return nil
	}
	ft := fieldValue.Type()

	switch v := value.(type) {
	case map[string]interface{}:
		switch ft.Kind() {
		case reflect.Struct:
			return mapToStruct(v, fieldValue)
		case reflect.Ptr:
			if ft.Elem().Kind() == reflect.Struct {
				ptr := reflect.New(ft.Elem())
				if err := mapToStruct(v, ptr.Elem()); err != nil {
					return err
				}
				fieldValue.Set(ptr)
				return nil
			}
		case reflect.Map:
			return setMapValue(fieldValue, v)
		}
	case []interface{}:
		if ft.Kind() == reflect.Slice {
			out := reflect.MakeSlice(ft, len(v), len(v))
			for i, x := range v {
				if err := setFieldValue(out.Index(i), x); err != nil {
					return fmt.Errorf("element %d: %w", i, err)
				}
			}
			fieldValue.Set(out)
			return nil
		}
	}

	sourceValue := reflect.ValueOf(value)
	if sourceValue.Type().AssignableTo(ft) {
		fieldValue.Set(sourceValue)
		return nil
	}
	// string <-> numeric conversions are legal in reflect but never what
	// a record means
	if sourceValue.Kind() != reflect.String && ft.Kind() != reflect.String &&
		sourceValue.Type().ConvertibleTo(ft) {
		fieldValue.Set(sourceValue.Convert(ft))
		return nil
	}
	return fmt.Errorf("cannot convert %T to %s", value, ft)
}

// setMapValue fills a Go map from decoded pairs, whose keys arrive in
// printed form.
func setMapValue(fieldValue reflect.Value, data map[string]interface{}) error {
	ft := fieldValue.Type()
	out := reflect.MakeMapWithSize(ft, len(data))
	for k, x := range data {
		key := reflect.New(ft.Key()).Elem()
		if err := parseMapKey(key, k); err != nil {
			return err
		}
		val := reflect.New(ft.Elem()).Elem()
		if err := setFieldValue(val, x); err != nil {
			return fmt.Errorf("key %s: %w", k, err)
		}
		out.SetMapIndex(key, val)
	}
	fieldValue.Set(out)
	return nil
}

func parseMapKey(key reflect.Value, s string) error {
	switch key.Kind() {
	case reflect.String:
		key.SetString(s)
	case reflect.Bool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return err
		}
		key.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(s, 10, key.Type().Bits())
		if err != nil {
			return err
		}
		key.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(s, 10, key.Type().Bits())
		if err != nil {
			return err
		}
		key.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(s, key.Type().Bits())
		if err != nil {
			return err
		}
		key.SetFloat(f)
	default:
		return fmt.Errorf("unsupported map key type %s", key.Type())
	}
	return nil
}

// ===== REGISTRY ACCESS =====

func (t *Tarslite) GetRegistry() *registry.Registry { return t.registry }
func (t *Tarslite) ListStructs() []string            { return t.registry.ListStructs() }
func (t *Tarslite) ListEnums() []string              { return t.registry.ListEnums() }
