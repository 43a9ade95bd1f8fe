package jsonh

import (
	"encoding"
	"encoding/base64"
	"fmt"
	"reflect"
)

// Unmarshal parses data as a single JSONH element and stores the
// result in v, which must be a non-nil pointer. Field mapping follows
// the teacher's fieldMap/unpackStruct approach from ccl.go, adapted
// from a "ccl" struct tag to "jsonh" and from the teacher's raw
// map[string][]any intermediate to the Value tree built by
// buildValue.
func Unmarshal(data []byte, v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("jsonh: Unmarshal requires a non-nil pointer")
	}
	r := NewReader(string(data), ReaderOptions{
		Version:            Latest,
		MaxDepth:           64,
		ParseSingleElement: true,
	})
	val, err := r.ParseElement()
	if err != nil {
		return err
	}
	return unpackVal(val, rv.Elem())
}

func unpackVal(val *Value, rv reflect.Value) error {
	if rv.Kind() == reflect.Pointer {
		if val.IsNull() {
			rv.Set(reflect.Zero(rv.Type()))
			return nil
		}
		if rv.IsNil() {
			rv.Set(reflect.New(rv.Type().Elem()))
		}
		return unpackVal(val, rv.Elem())
	}

	if rv.CanAddr() {
		if tu, ok := rv.Addr().Interface().(encoding.TextUnmarshaler); ok {
			if s, isStr := val.AsString(); isStr {
				return tu.UnmarshalText([]byte(s))
			}
		}
	}

	switch rv.Kind() {
	case reflect.Interface:
		if rv.NumMethod() != 0 {
			return fmt.Errorf("jsonh: cannot unmarshal into %s", rv.Type())
		}
		generic, err := toGeneric(val)
		if err != nil {
			return err
		}
		if generic == nil {
			rv.Set(reflect.Zero(rv.Type()))
			return nil
		}
		rv.Set(reflect.ValueOf(generic))
		return nil

	case reflect.Bool:
		b, ok := val.AsBool()
		if !ok {
			return fmt.Errorf("jsonh: cannot unmarshal %s into bool", val.Kind())
		}
		rv.SetBool(b)
		return nil

	case reflect.String:
		s, ok := val.AsString()
		if !ok {
			return fmt.Errorf("jsonh: cannot unmarshal %s into string", val.Kind())
		}
		rv.SetString(s)
		return nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, ok := val.AsNumber()
		if !ok {
			return fmt.Errorf("jsonh: cannot unmarshal %s into %s", val.Kind(), rv.Type())
		}
		i := int64(n)
		if err := checkIntLimits(rv.Kind(), i); err != nil {
			return err
		}
		rv.SetInt(i)
		return nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, ok := val.AsNumber()
		if !ok {
			return fmt.Errorf("jsonh: cannot unmarshal %s into %s", val.Kind(), rv.Type())
		}
		if n < 0 {
			return fmt.Errorf("jsonh: negative number %v does not fit in %s", n, rv.Type())
		}
		u := uint64(n)
		if err := checkUintLimits(rv.Kind(), u); err != nil {
			return err
		}
		rv.SetUint(u)
		return nil

	case reflect.Float32, reflect.Float64:
		n, ok := val.AsNumber()
		if !ok {
			return fmt.Errorf("jsonh: cannot unmarshal %s into %s", val.Kind(), rv.Type())
		}
		rv.SetFloat(n)
		return nil

	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			if s, ok := val.AsString(); ok {
				b, err := base64.StdEncoding.DecodeString(s)
				if err != nil {
					return fmt.Errorf("jsonh: invalid base64 for []byte: %w", err)
				}
				rv.SetBytes(b)
				return nil
			}
		}
		arr, ok := val.AsArray()
		if !ok {
			return fmt.Errorf("jsonh: cannot unmarshal %s into %s", val.Kind(), rv.Type())
		}
		out := reflect.MakeSlice(rv.Type(), len(arr), len(arr))
		for i, item := range arr {
			if err := unpackVal(item, out.Index(i)); err != nil {
				return err
			}
		}
		rv.Set(out)
		return nil

	case reflect.Array:
		arr, ok := val.AsArray()
		if !ok {
			return fmt.Errorf("jsonh: cannot unmarshal %s into %s", val.Kind(), rv.Type())
		}
		for i := 0; i < rv.Len() && i < len(arr); i++ {
			if err := unpackVal(arr[i], rv.Index(i)); err != nil {
				return err
			}
		}
		return nil

	case reflect.Map:
		if val.Kind() != KindObject {
			return fmt.Errorf("jsonh: cannot unmarshal %s into %s", val.Kind(), rv.Type())
		}
		if rv.IsNil() {
			rv.Set(reflect.MakeMap(rv.Type()))
		}
		for _, key := range val.Keys() {
			ev := reflect.New(rv.Type().Elem()).Elem()
			if err := unpackVal(val.Property(key), ev); err != nil {
				return err
			}
			rv.SetMapIndex(reflect.ValueOf(key).Convert(rv.Type().Key()), ev)
		}
		return nil

	case reflect.Struct:
		if val.Kind() != KindObject {
			return fmt.Errorf("jsonh: cannot unmarshal %s into %s", val.Kind(), rv.Type())
		}
		fm := fieldMap(rv.Type())
		for _, key := range val.Keys() {
			idx, ok := fm[key]
			if !ok {
				continue
			}
			if err := unpackVal(val.Property(key), rv.Field(idx)); err != nil {
				return err
			}
		}
		return nil

	default:
		return fmt.Errorf("jsonh: unsupported type %s", rv.Type())
	}
}

// fieldMap maps a struct's JSONH property names (from the "jsonh" tag,
// or the field name itself if absent) to field indices. Mirrors the
// teacher's structField/fieldMap in ccl.go, renamed from "ccl" to
// "jsonh" tags; the untagged default also matches the teacher's own
// fall back to the unmodified field.Name, rather than lowercasing it.
func fieldMap(t reflect.Type) map[string]int {
	m := make(map[string]int, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.PkgPath != "" {
			continue
		}
		name := f.Tag.Get("jsonh")
		if name == "-" {
			continue
		}
		if name == "" {
			name = f.Name
		}
		m[name] = i
	}
	return m
}

func checkIntLimits(k reflect.Kind, i int64) error {
	bits := map[reflect.Kind]int{
		reflect.Int8: 8, reflect.Int16: 16, reflect.Int32: 32,
	}[k]
	if bits == 0 {
		return nil
	}
	max := int64(1)<<(bits-1) - 1
	min := -(int64(1) << (bits - 1))
	if i > max || i < min {
		return fmt.Errorf("jsonh: %d overflows int%d", i, bits)
	}
	return nil
}

func checkUintLimits(k reflect.Kind, u uint64) error {
	bits := map[reflect.Kind]int{
		reflect.Uint8: 8, reflect.Uint16: 16, reflect.Uint32: 32,
	}[k]
	if bits == 0 {
		return nil
	}
	max := uint64(1)<<bits - 1
	if u > max {
		return fmt.Errorf("jsonh: %d overflows uint%d", u, bits)
	}
	return nil
}

func toGeneric(val *Value) (any, error) {
	switch val.Kind() {
	case KindNull:
		return nil, nil
	case KindBool:
		b, _ := val.AsBool()
		return b, nil
	case KindNumber:
		n, _ := val.AsNumber()
		return n, nil
	case KindString:
		s, _ := val.AsString()
		return s, nil
	case KindArray:
		arr, _ := val.AsArray()
		out := make([]any, len(arr))
		for i, item := range arr {
			g, err := toGeneric(item)
			if err != nil {
				return nil, err
			}
			out[i] = g
		}
		return out, nil
	case KindObject:
		out := make(map[string]any, val.Len())
		for _, k := range val.Keys() {
			g, err := toGeneric(val.Property(k))
			if err != nil {
				return nil, err
			}
			out[k] = g
		}
		return out, nil
	}
	return nil, fmt.Errorf("jsonh: unknown value kind")
}
