// Package resolve follows dotted field paths through an object graph.
package resolve

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/roach88/objtok/internal/fields"
)

// ListSeparator joins string collections rendered as a single value.
const ListSeparator = ", "

// Resolve returns the value reachable from root by following path.
//
// The path is split on its first "." and the remainder is resolved against
// the value found at the first segment. Each segment is a case-insensitive
// field name. A nil root or a missing field anywhere along the path yields
// (nil, false).
//
// When the final value is a collection of strings it is rendered as one
// string joined by ListSeparator. Any other value is returned as-is.
func Resolve(root any, path string) (any, bool) {
	if isNil(root) {
		return nil, false
	}

	head, rest, nested := strings.Cut(path, ".")
	if nested {
		next, ok := Resolve(root, head)
		if !ok {
			return nil, false
		}
		return Resolve(next, rest)
	}

	f, ok := fields.Lookup(root, head)
	if !ok {
		return nil, false
	}
	v := f.Get()
	if isNil(v) {
		return nil, false
	}
	if joined, ok := JoinStrings(v); ok {
		return joined, true
	}
	return v, true
}

// JoinStrings renders a slice or array of strings as a single string.
// A []any qualifies when every element is a string.
func JoinStrings(v any) (string, bool) {
	switch vv := v.(type) {
	case []string:
		return strings.Join(vv, ListSeparator), true
	case []any:
		parts := make([]string, len(vv))
		for i, e := range vv {
			s, ok := e.(string)
			if !ok {
				return "", false
			}
			parts[i] = s
		}
		return strings.Join(parts, ListSeparator), true
	}

	rv := reflect.ValueOf(v)
	if (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) || rv.Type().Elem().Kind() != reflect.String {
		return "", false
	}
	parts := make([]string, rv.Len())
	for i := range parts {
		parts[i] = rv.Index(i).String()
	}
	return strings.Join(parts, ListSeparator), true
}

// Stringify renders a resolved value as text.
func Stringify(v any) string {
	switch vv := v.(type) {
	case nil:
		return ""
	case string:
		return vv
	case fmt.Stringer:
		return vv.String()
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.String {
		return rv.String()
	}
	return fmt.Sprint(v)
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
