package wire

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// toLowerCamel converts snake_case to lowerCamelCase
func toLowerCamel(s string) string {
	if s == "" {
		return s
	}
	// Fast path: no underscore
	if !strings.Contains(s, "_") {
		// ensure lower first char
		if s[0] >= 'A' && s[0] <= 'Z' {
			return string(s[0]-'A'+'a') + s[1:]
		}
		return s
	}
	out := make([]byte, 0, len(s))
	upperNext := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '_' {
			upperNext = true
			continue
		}
		if len(out) == 0 {
			if c >= 'A' && c <= 'Z' {
				c = c - 'A' + 'a'
			}
			out = append(out, c)
			upperNext = false
			continue
		}
		if upperNext {
			if c >= 'a' && c <= 'z' {
				c = c - 'a' + 'A'
			}
			upperNext = false
		}
		out = append(out, c)
	}
	return string(out)
}

// lookupField finds a record field in data by its schema name or, for
// JSON-shaped input, its lowerCamel name.
func lookupField(data map[string]interface{}, name string) (interface{}, bool) {
	if v, ok := data[name]; ok {
		return v, true
	}
	if camel := toLowerCamel(name); camel != name {
		v, ok := data[camel]
		return v, ok
	}
	return nil, false
}

// Helpers to coerce JSON/YAML inputs to integers (accept exponent/float
// forms if integral)
func coerceToInt64(v interface{}) (int64, error) {
	switch t := v.(type) {
	case int64:
		return t, nil
	case int:
		return int64(t), nil
	case int32:
		return int64(t), nil
	case int16:
		return int64(t), nil
	case int8:
		return int64(t), nil
	case uint8:
		return int64(t), nil
	case uint16:
		return int64(t), nil
	case uint32:
		return int64(t), nil
	case uint64:
		if t > math.MaxInt64 {
			return 0, fmt.Errorf("%d overflows int64", t)
		}
		return int64(t), nil
	case uint:
		if uint64(t) > math.MaxInt64 {
			return 0, fmt.Errorf("%d overflows int64", t)
		}
		return int64(t), nil
	case bool:
		if t {
			return 1, nil
		}
		return 0, nil
	case json.Number:
		// Try integer first
		if iv, err := t.Int64(); err == nil {
			return iv, nil
		}
		return integralFloat(t.String())
	case float64:
		if t != math.Trunc(t) {
			return 0, fmt.Errorf("non-integer numeric for integer field")
		}
		return int64(t), nil
	case float32:
		return coerceToInt64(float64(t))
	case string:
		// allow explicit integer strings
		if strings.ContainsAny(t, ".eE") {
			return integralFloat(t)
		}
		return strconv.ParseInt(t, 10, 64)
	default:
		return 0, fmt.Errorf("expected integer-like, got %T", v)
	}
}

func integralFloat(s string) (int64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("non-integer numeric for integer field")
	}
	return int64(f), nil
}

func coerceToUint64(v interface{}) (uint64, error) {
	switch t := v.(type) {
	case uint64:
		return t, nil
	case uint:
		return uint64(t), nil
	case uint32:
		return uint64(t), nil
	case uint16:
		return uint64(t), nil
	case uint8:
		return uint64(t), nil
	case json.Number:
		if uv, err := strconv.ParseUint(t.String(), 10, 64); err == nil {
			return uv, nil
		}
		f, err := strconv.ParseFloat(t.String(), 64)
		if err != nil {
			return 0, err
		}
		if f < 0 || f != math.Trunc(f) {
			return 0, fmt.Errorf("non-integer numeric for unsigned field")
		}
		return uint64(f), nil
	case float64:
		if t < 0 || t != math.Trunc(t) {
			return 0, fmt.Errorf("non-integer numeric for unsigned field")
		}
		return uint64(t), nil
	case string:
		if strings.ContainsAny(t, ".eE") {
			f, err := strconv.ParseFloat(t, 64)
			if err != nil {
				return 0, err
			}
			if f < 0 || f != math.Trunc(f) {
				return 0, fmt.Errorf("non-integer numeric for unsigned field")
			}
			return uint64(f), nil
		}
		return strconv.ParseUint(t, 10, 64)
	default:
		iv, err := coerceToInt64(v)
		if err != nil {
			return 0, fmt.Errorf("expected unsigned-integer-like, got %T", v)
		}
		if iv < 0 {
			return 0, fmt.Errorf("negative value %d for unsigned field", iv)
		}
		return uint64(iv), nil
	}
}

func coerceToFloat64(v interface{}) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case float32:
		return float64(t), nil
	case json.Number:
		return t.Float64()
	case string:
		return strconv.ParseFloat(t, 64)
	case uint64:
		return float64(t), nil
	default:
		iv, err := coerceToInt64(v)
		if err != nil {
			return 0, fmt.Errorf("expected number, got %T", v)
		}
		return float64(iv), nil
	}
}

func coerceToBool(v interface{}) (bool, error) {
	switch t := v.(type) {
	case bool:
		return t, nil
	case string:
		return strconv.ParseBool(t)
	default:
		iv, err := coerceToInt64(v)
		if err != nil {
			return false, fmt.Errorf("expected bool, got %T", v)
		}
		return iv != 0, nil
	}
}

// coerceToBytes accepts raw bytes, a base64 string (how JSON carries
// bytes) or a list of small integers.
func coerceToBytes(v interface{}) ([]byte, error) {
	switch t := v.(type) {
	case []byte:
		return t, nil
	case string:
		b, err := base64.StdEncoding.DecodeString(t)
		if err != nil {
			return nil, fmt.Errorf("bytes string is not base64: %w", err)
		}
		return b, nil
	}
	items, err := toSlice(v)
	if err != nil {
		return nil, fmt.Errorf("expected bytes, got %T", v)
	}
	out := make([]byte, len(items))
	for i, x := range items {
		n, err := coerceToInt64(x)
		if err != nil {
			return nil, err
		}
		if n < math.MinInt8 || n > math.MaxUint8 {
			return nil, fmt.Errorf("%w: %d does not fit a byte", ErrConvertToByte, n)
		}
		out[i] = byte(n)
	}
	return out, nil
}

// toSlice flattens any slice or array into []interface{}.
func toSlice(v interface{}) ([]interface{}, error) {
	if s, ok := v.([]interface{}); ok {
		return s, nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, fmt.Errorf("%w: vector value must be a slice, got %T", ErrUnsupportedValue, v)
	}
	out := make([]interface{}, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, nil
}

// toPairs flattens any map into key/value pairs.
func toPairs(v interface{}) ([][2]interface{}, error) {
	switch m := v.(type) {
	case map[string]interface{}:
		out := make([][2]interface{}, 0, len(m))
		for k, x := range m {
			out = append(out, [2]interface{}{k, x})
		}
		return out, nil
	case map[interface{}]interface{}:
		out := make([][2]interface{}, 0, len(m))
		for k, x := range m {
			out = append(out, [2]interface{}{k, x})
		}
		return out, nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map {
		return nil, fmt.Errorf("%w: map value must be a map, got %T", ErrUnsupportedValue, v)
	}
	out := make([][2]interface{}, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out = append(out, [2]interface{}{iter.Key().Interface(), iter.Value().Interface()})
	}
	return out, nil
}
