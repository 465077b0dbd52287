package cp2kinput

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
)

// ConversionError reports a Go value that has no Value equivalent.
type ConversionError struct {
	Path Path
	Type string
}

func (e *ConversionError) Error() string {
	if len(e.Path) == 0 {
		return fmt.Sprintf("unsupported value type %s", e.Type)
	}
	return fmt.Sprintf("%s: unsupported value type %s", e.Path, e.Type)
}

// FromMap converts generic nested data (as produced by JSON, YAML or TOML
// decoders) into a Section. The input is not retained.
func FromMap(data map[string]any) (Section, error) {
	return fromMap(data, nil)
}

// FromAny converts a single Go value into a Value.
//
// Conversion rules:
//   - map with string keys -> Section
//   - slice or array (except []byte) -> Repeated
//   - bool -> Bool
//   - integer kinds -> Int, float kinds -> Float
//   - json.Number -> Number
//   - string, []byte, fmt.Stringer -> String
func FromAny(v any) (Value, error) {
	return fromAny(v, nil)
}

func fromMap(data map[string]any, path Path) (Section, error) {
	out := make(Section, len(data))
	for k, v := range data {
		cv, err := fromAny(v, path.Child(k))
		if err != nil {
			return nil, err
		}
		out[k] = cv
	}
	return out, nil
}

func fromAny(v any, path Path) (Value, error) {
	switch val := v.(type) {
	case Value:
		return val.Clone(), nil
	case map[string]any:
		return fromMap(val, path)
	case []any:
		out := make(Repeated, len(val))
		for i, item := range val {
			cv, err := fromAny(item, path)
			if err != nil {
				return nil, err
			}
			out[i] = cv
		}
		return out, nil
	case []string:
		out := make(Repeated, len(val))
		for i, s := range val {
			out[i] = String(s)
		}
		return out, nil
	case string:
		return String(val), nil
	case []byte:
		return String(val), nil
	case bool:
		return Bool(val), nil
	case json.Number:
		return Number(val), nil
	case int:
		return Int(val), nil
	case int8:
		return Int(val), nil
	case int16:
		return Int(val), nil
	case int32:
		return Int(val), nil
	case int64:
		return Int(val), nil
	case uint:
		return fromUint(uint64(val)), nil
	case uint8:
		return Int(val), nil
	case uint16:
		return Int(val), nil
	case uint32:
		return Int(val), nil
	case uint64:
		return fromUint(val), nil
	case float32:
		return Float(val), nil
	case float64:
		return Float(val), nil
	case fmt.Stringer:
		return String(val.String()), nil
	case nil:
		return nil, &ConversionError{Path: path, Type: "nil"}
	}
	return fromReflect(reflect.ValueOf(v), path)
}

// fromUint keeps values beyond the Int range as their decimal text.
func fromUint(u uint64) Value {
	if u > math.MaxInt64 {
		return Number(strconv.FormatUint(u, 10))
	}
	return Int(u)
}

// fromReflect handles typed containers such as []map[string]any or
// map[string]int that the type switch does not list.
func fromReflect(rv reflect.Value, path Path) (Value, error) {
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make(Repeated, rv.Len())
		for i := range out {
			cv, err := fromAny(rv.Index(i).Interface(), path)
			if err != nil {
				return nil, err
			}
			out[i] = cv
		}
		return out, nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			break
		}
		out := make(Section, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			k := iter.Key().String()
			cv, err := fromAny(iter.Value().Interface(), path.Child(k))
			if err != nil {
				return nil, err
			}
			out[k] = cv
		}
		return out, nil
	case reflect.Bool:
		return Bool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return fromUint(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return Float(rv.Float()), nil
	case reflect.String:
		return String(rv.String()), nil
	case reflect.Pointer, reflect.Interface:
		if !rv.IsNil() {
			return fromAny(rv.Elem().Interface(), path)
		}
	}
	return nil, &ConversionError{Path: path, Type: rv.Type().String()}
}

// ToMap converts the section back into plain Go data.
func (s Section) ToMap() map[string]any {
	out := make(map[string]any, len(s))
	for k, v := range s {
		out[k] = ToAny(v)
	}
	return out
}

// ToAny converts a Value into plain Go data: map[string]any, []any,
// string, int64, float64, bool or json.Number.
func ToAny(v Value) any {
	switch val := v.(type) {
	case Section:
		return val.ToMap()
	case Repeated:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = ToAny(item)
		}
		return out
	case String:
		return string(val)
	case Int:
		return int64(val)
	case Float:
		return float64(val)
	case Number:
		return json.Number(val)
	case Bool:
		return bool(val)
	default:
		return nil
	}
}
