package apperr

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"time"
)

const (
	circularMarker            = "[Circular]"
	unserializablePlaceholder = "[Unserializable context]"
)

// visit identifies a reference-typed value on the current path.
type visit struct {
	ptr uintptr
	typ reflect.Type
	len int
}

// SerializeContext renders ctx as indented JSON. It never panics: cycles are
// replaced by "[Circular]", unsupported kinds by a descriptive string, and any
// remaining failure by a fixed placeholder.
func SerializeContext(ctx map[string]any) (out string) {
	defer func() {
		if r := recover(); r != nil {
			out = unserializablePlaceholder
		}
	}()

	clean := sanitize(reflect.ValueOf(ctx), map[visit]bool{})
	b, err := json.MarshalIndent(clean, "", "  ")
	if err != nil {
		return unserializablePlaceholder
	}
	return string(b)
}

// sanitize converts v into a tree of JSON-safe values. seen holds the
// reference values on the path from the root to v.
func sanitize(v reflect.Value, seen map[visit]bool) any {
	if !v.IsValid() {
		return nil
	}

	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		if v.IsNil() {
			return nil
		}
	}

	if v.CanInterface() {
		switch x := v.Interface().(type) {
		case time.Time:
			return x.Format(time.RFC3339Nano)
		case *big.Int:
			return x.String()
		case big.Int:
			return x.String()
		case error:
			return x.Error()
		}
	}

	switch v.Kind() {
	case reflect.Interface:
		return sanitize(v.Elem(), seen)

	case reflect.Pointer:
		key := visit{ptr: v.Pointer(), typ: v.Type()}
		if seen[key] {
			return circularMarker
		}
		seen[key] = true
		defer delete(seen, key)
		return sanitize(v.Elem(), seen)

	case reflect.Map:
		key := visit{ptr: v.Pointer(), typ: v.Type()}
		if seen[key] {
			return circularMarker
		}
		seen[key] = true
		defer delete(seen, key)

		out := make(map[string]any, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			out[fmt.Sprint(sanitize(iter.Key(), seen))] = sanitize(iter.Value(), seen)
		}
		return out

	case reflect.Slice:
		key := visit{ptr: v.Pointer(), typ: v.Type(), len: v.Len()}
		if seen[key] {
			return circularMarker
		}
		seen[key] = true
		defer delete(seen, key)
		return sanitizeList(v, seen)

	case reflect.Array:
		return sanitizeList(v, seen)

	case reflect.Struct:
		out := make(map[string]any, v.NumField())
		t := v.Type()
		for i := 0; i < v.NumField(); i++ {
			if !t.Field(i).IsExported() {
				continue
			}
			out[t.Field(i).Name] = sanitize(v.Field(i), seen)
		}
		return out

	case reflect.String:
		return v.String()
	case reflect.Bool:
		return v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint()
	case reflect.Float32, reflect.Float64:
		f := v.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Sprint(f)
		}
		return f
	}

	return fmt.Sprintf("[Unsupported %s]", v.Kind())
}

func sanitizeList(v reflect.Value, seen map[visit]bool) []any {
	out := make([]any, v.Len())
	for i := range out {
		out[i] = sanitize(v.Index(i), seen)
	}
	return out
}
