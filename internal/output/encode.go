// Package output renders query responses: deterministic JSON for
// machine consumers and export files, plain text for the terminal.
// Identical responses always encode to byte-identical JSON, so reports
// can be diffed across runs.
package output

import (
	"bytes"
	"encoding/json"
	"math"
	"reflect"
	"strings"
)

var jsonMarshalerType = reflect.TypeOf((*json.Marshaler)(nil)).Elem()

// Encode produces deterministic JSON: alphabetical key order, floats
// rounded to six decimals, empty fields omitted.
func Encode(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(normalizeValue(v)); err != nil {
		return nil, err
	}
	out := buf.Bytes()
	if len(out) > 0 && out[len(out)-1] == '\n' {
		out = out[:len(out)-1]
	}
	return out, nil
}

// EncodeIndented is Encode with indentation for human-facing JSON.
func EncodeIndented(v interface{}) ([]byte, error) {
	return json.MarshalIndent(normalizeValue(v), "", "  ")
}

// normalizeValue rewrites v into maps and slices that json.Marshal
// encodes deterministically. Types with their own MarshalJSON are
// passed through untouched.
func normalizeValue(v interface{}) interface{} {
	if v == nil {
		return nil
	}

	val := reflect.ValueOf(v)
	for val.Kind() == reflect.Ptr {
		if val.IsNil() {
			return nil
		}
		val = val.Elem()
	}
	if val.Type().Implements(jsonMarshalerType) {
		return val.Interface()
	}

	switch val.Kind() {
	case reflect.Map:
		return normalizeMap(val)
	case reflect.Slice, reflect.Array:
		return normalizeSlice(val)
	case reflect.Struct:
		return normalizeStruct(val)
	case reflect.Float32, reflect.Float64:
		return roundFloat(val.Float())
	case reflect.Interface:
		if val.IsNil() {
			return nil
		}
		return normalizeValue(val.Interface())
	default:
		return val.Interface()
	}
}

func normalizeMap(val reflect.Value) interface{} {
	if val.IsNil() || val.Len() == 0 {
		return nil
	}
	result := make(map[string]interface{}, val.Len())
	iter := val.MapRange()
	for iter.Next() {
		if norm := normalizeValue(iter.Value().Interface()); norm != nil {
			result[iter.Key().String()] = norm
		}
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

func normalizeSlice(val reflect.Value) interface{} {
	if val.Kind() == reflect.Slice && val.IsNil() {
		return nil
	}
	if val.Len() == 0 {
		return nil
	}
	result := make([]interface{}, val.Len())
	for i := 0; i < val.Len(); i++ {
		result[i] = normalizeValue(val.Index(i).Interface())
	}
	return result
}

func normalizeStruct(val reflect.Value) interface{} {
	typ := val.Type()
	result := make(map[string]interface{})
	for i := 0; i < val.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}
		name, omitEmpty := parseJSONTag(field.Tag.Get("json"))
		if name == "-" {
			continue
		}
		if name == "" {
			name = field.Name
		}
		if omitEmpty && val.Field(i).IsZero() {
			continue
		}
		if norm := normalizeValue(val.Field(i).Interface()); norm != nil {
			result[name] = norm
		}
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

func parseJSONTag(tag string) (name string, omitEmpty bool) {
	if tag == "" {
		return "", false
	}
	parts := strings.Split(tag, ",")
	name = parts[0]
	for _, opt := range parts[1:] {
		if opt == "omitempty" {
			omitEmpty = true
		}
	}
	return name, omitEmpty
}

func roundFloat(f float64) float64 {
	const multiplier = 1e6
	return math.Round(f*multiplier) / multiplier
}
