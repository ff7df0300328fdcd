package lang

import (
	"reflect"
	"strconv"
	"strings"
)

// Get looks up a dot separated path in nested data.
//
// Each segment indexes a map by key, a slice or array by position, or a
// struct by field name or json tag name. Pointers and interfaces are followed.
// An empty path returns data itself.
//
//	Get(order, "items.0.sku")
func Get(data any, path string) (any, bool) {
	if path == "" {
		return data, data != nil
	}

	v := reflect.ValueOf(data)
	for _, seg := range strings.Split(path, ".") {
		v = indirect(v)
		if !v.IsValid() {
			return nil, false
		}

		switch v.Kind() {
		case reflect.Map:
			if v.Type().Key().Kind() != reflect.String {
				return nil, false
			}
			v = v.MapIndex(reflect.ValueOf(seg).Convert(v.Type().Key()))
		case reflect.Slice, reflect.Array:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= v.Len() {
				return nil, false
			}
			v = v.Index(i)
		case reflect.Struct:
			v = field(v, seg)
		default:
			return nil, false
		}
		if !v.IsValid() {
			return nil, false
		}
	}

	v = indirect(v)
	if !v.IsValid() || !v.CanInterface() {
		return nil, false
	}
	return v.Interface(), true
}

func indirect(v reflect.Value) reflect.Value {
	for v.IsValid() && (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

func field(v reflect.Value, name string) reflect.Value {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		if f.Name == name {
			return v.Field(i)
		}
		if tag, _, _ := strings.Cut(f.Tag.Get("json"), ","); tag == name && tag != "" {
			return v.Field(i)
		}
	}
	return reflect.Value{}
}
