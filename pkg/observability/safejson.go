package observability

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"reflect"
	"sort"
	"strings"
)

const (
	// MaxDepth bounds how deep SafeJSON descends before truncating.
	MaxDepth = 32

	circularMarker     = "[Circular]"
	maxDepthMarker     = "[MaxDepth]"
	unserializableText = `"[Unserializable]"`
)

// SafeJSON serializes v for diagnostics. Values already on the current path
// render as "[Circular]" and anything nested beyond MaxDepth as "[MaxDepth]".
// It never fails.
func SafeJSON(v any) string {
	enc := &safeEncoder{onPath: make(map[visit]bool)}
	out, err := json.Marshal(enc.convert(reflect.ValueOf(v), 0))
	if err != nil {
		return unserializableText
	}
	return string(out)
}

type visit struct {
	ptr  uintptr
	kind reflect.Kind
}

type safeEncoder struct {
	onPath map[visit]bool
}

var marshalerType = reflect.TypeOf((*json.Marshaler)(nil)).Elem()

func (e *safeEncoder) convert(v reflect.Value, depth int) any {
	if !v.IsValid() {
		return nil
	}
	if depth > MaxDepth {
		return maxDepthMarker
	}

	switch v.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice:
		if v.IsNil() {
			return nil
		}
	}

	if v.Type().Implements(marshalerType) && v.CanInterface() {
		if b, err := v.Interface().(json.Marshaler).MarshalJSON(); err == nil && json.Valid(b) {
			return json.RawMessage(b)
		}
	}

	switch v.Kind() {
	case reflect.Interface:
		return e.convert(v.Elem(), depth)

	case reflect.Ptr:
		key := visit{v.Pointer(), reflect.Ptr}
		if e.onPath[key] {
			return circularMarker
		}
		e.onPath[key] = true
		defer delete(e.onPath, key)
		return e.convert(v.Elem(), depth+1)

	case reflect.Map:
		key := visit{v.Pointer(), reflect.Map}
		if e.onPath[key] {
			return circularMarker
		}
		e.onPath[key] = true
		defer delete(e.onPath, key)

		out := make(map[string]any, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			out[mapKey(iter.Key())] = e.convert(iter.Value(), depth+1)
		}
		return out

	case reflect.Slice:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return v.Bytes()
		}
		key := visit{v.Pointer(), reflect.Slice}
		if e.onPath[key] {
			return circularMarker
		}
		e.onPath[key] = true
		defer delete(e.onPath, key)
		return e.convertList(v, depth)

	case reflect.Array:
		return e.convertList(v, depth)

	case reflect.Struct:
		return e.convertStruct(v, depth)

	case reflect.Float32, reflect.Float64:
		f := v.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Sprint(f)
		}
		return f

	case reflect.Chan, reflect.Func, reflect.UnsafePointer, reflect.Complex64, reflect.Complex128:
		return "[" + v.Kind().String() + "]"

	default:
		if !v.CanInterface() {
			return fmt.Sprint(v)
		}
		return v.Interface()
	}
}

func (e *safeEncoder) convertList(v reflect.Value, depth int) []any {
	out := make([]any, v.Len())
	for i := 0; i < v.Len(); i++ {
		out[i] = e.convert(v.Index(i), depth+1)
	}
	return out
}

func (e *safeEncoder) convertStruct(v reflect.Value, depth int) map[string]any {
	t := v.Type()
	out := make(map[string]any, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.PkgPath != "" {
			continue
		}
		name := f.Name
		if tag, ok := f.Tag.Lookup("json"); ok {
			tagName, _, _ := strings.Cut(tag, ",")
			if tagName == "-" {
				continue
			}
			if tagName != "" {
				name = tagName
			}
		}
		out[name] = e.convert(v.Field(i), depth+1)
	}
	return out
}

func mapKey(k reflect.Value) string {
	if k.Kind() == reflect.String {
		return k.String()
	}
	if k.CanInterface() {
		return fmt.Sprint(k.Interface())
	}
	return fmt.Sprint(k)
}

// RedactHeaders flattens h for logging with credential values masked.
// The auth scheme is kept so the selected mode stays visible.
func RedactHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		val := strings.Join(h.Values(k), ", ")
		if http.CanonicalHeaderKey(k) == "Authorization" {
			if scheme, _, ok := strings.Cut(val, " "); ok {
				val = scheme + " ***"
			} else {
				val = "***"
			}
		}
		out[k] = val
	}
	return out
}
