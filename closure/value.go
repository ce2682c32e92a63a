package closure

import (
	"fmt"
	"maps"
	"math"
	"reflect"
	"slices"
	"strconv"
	"strings"
)

// ParseValue converts command-line text to a value: "true" and "false"
// become bool, decimal integers int64, other numbers float64, and
// anything else stays a string. Integers are always read in base 10, so
// "010" is 10 and "0x10" is a string.
func ParseValue(s string) any {
	switch s {
	case "true":
		return true
	case "false":
		return false
	}

	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}

	// Spellings such as "inf" and "NaN" stay strings.
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		return f
	}

	return s
}

// FormatResult renders a closure result for display. Strings are quoted
// only when they contain whitespace, quotes or delimiters; maps are
// printed with sorted keys.
func FormatResult(v any) string {
	switch val := v.(type) {
	case nil:
		return "nil"

	case bool:
		return strconv.FormatBool(val)

	case int:
		return strconv.Itoa(val)

	case int64:
		return strconv.FormatInt(val, 10)

	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)

	case string:
		if needsQuoting(val) {
			return strconv.Quote(val)
		}

		return val

	case []any:
		parts := make([]string, len(val))
		for i, e := range val {
			parts[i] = FormatResult(e)
		}

		return "[" + strings.Join(parts, ", ") + "]"

	case map[string]any:
		keys := slices.Sorted(maps.Keys(val))
		parts := make([]string, len(keys))

		for i, k := range keys {
			parts[i] = k + ": " + FormatResult(val[k])
		}

		return "{" + strings.Join(parts, ", ") + "}"

	default:
		return fmt.Sprintf("%v", val)
	}
}

func needsQuoting(s string) bool {
	if s == "" {
		return true
	}

	return strings.ContainsAny(s, " \t\r\n\"'\\{}[]:,")
}

// deepCopy returns a copy of v that shares no memory with it: slices,
// arrays, maps, pointers and the exported fields of structs are copied
// recursively, whatever their element types. Functions, channels and
// unexported struct fields are copied as is. Cyclic values are not
// supported.
func deepCopy(v any) any {
	switch val := v.(type) {
	case nil:
		return nil

	case map[string]any:
		return copyMap(val)

	case []any:
		if val == nil {
			return val
		}

		out := make([]any, len(val))
		for i, e := range val {
			out[i] = deepCopy(e)
		}

		return out
	}

	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map, reflect.Pointer, reflect.Struct:
		return copyValue(rv).Interface()

	default:
		return v
	}
}

func copyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}

	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = deepCopy(v)
	}

	return out
}

// copyValue is the reflective counterpart of [deepCopy].
func copyValue(v reflect.Value) reflect.Value {
	switch v.Kind() {
	case reflect.Interface:
		if v.IsNil() {
			return v
		}

		out := reflect.New(v.Type()).Elem()
		out.Set(copyValue(v.Elem()))

		return out

	case reflect.Slice:
		if v.IsNil() {
			return v
		}

		out := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		for i := range v.Len() {
			out.Index(i).Set(copyValue(v.Index(i)))
		}

		return out

	case reflect.Array:
		out := reflect.New(v.Type()).Elem()
		for i := range v.Len() {
			out.Index(i).Set(copyValue(v.Index(i)))
		}

		return out

	case reflect.Map:
		if v.IsNil() {
			return v
		}

		out := reflect.MakeMapWithSize(v.Type(), v.Len())
		for iter := v.MapRange(); iter.Next(); {
			out.SetMapIndex(iter.Key(), copyValue(iter.Value()))
		}

		return out

	case reflect.Pointer:
		if v.IsNil() {
			return v
		}

		out := reflect.New(v.Type().Elem())
		out.Elem().Set(copyValue(v.Elem()))

		return out

	case reflect.Struct:
		out := reflect.New(v.Type()).Elem()
		out.Set(v)

		for i := range v.NumField() {
			if field := out.Field(i); field.CanSet() {
				field.Set(copyValue(v.Field(i)))
			}
		}

		return out

	default:
		return v
	}
}
