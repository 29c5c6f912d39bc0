// Package fields exposes the named fields of an object as a uniform list of
// getters and optional setters.
//
// The graph walker and the path resolver only depend on this contract, not
// on concrete object shapes. Types may implement Lister to describe their
// fields explicitly; everything else is introspected with reflection:
//
//   - pointer to struct (or an addressable struct): exported fields in
//     declaration order, writable unless tagged `tokens:"readonly"`
//   - struct value that is not addressable: exported fields, all read-only
//   - map with string keys: one field per key in sorted order, writable
//
// Fields tagged `tokens:"-"` are hidden.
package fields

import (
	"reflect"
	"slices"
	"strings"

	"golang.org/x/text/cases"
)

// TagName is the struct tag consulted during introspection.
const TagName = "tokens"

// Tag values.
const (
	TagReadOnly = "readonly"
	TagSkip     = "-"
)

// Field is a named, readable and optionally writable slot of an object.
type Field struct {
	// Name is the declared field name (struct field name or map key).
	Name string

	// Get returns the current value.
	Get func() any

	// Set replaces the current value. Nil for read-only fields.
	Set func(any)

	// Type is the declared static type of the field, if known.
	// For map entries and Lister fields it may be nil, in which case the
	// dynamic type of Get() is authoritative.
	Type reflect.Type
}

// Writable reports whether the field has a setter.
func (f Field) Writable() bool {
	return f.Set != nil
}

// Lister is implemented by types that describe their own fields.
type Lister interface {
	Fields() []Field
}

// fold normalizes names for case-insensitive comparison.
// cases.Caser is stateful, so each call gets its own.
func fold(s string) string {
	return cases.Fold().String(s)
}

// EqualName reports whether two field names match case-insensitively.
func EqualName(a, b string) bool {
	if strings.EqualFold(a, b) {
		return true
	}
	return fold(a) == fold(b)
}

// Of returns the fields of v. Returns nil for values that are not records
// (scalars, slices, nil).
func Of(v any) []Field {
	if v == nil {
		return nil
	}
	if l, ok := v.(Lister); ok {
		return l.Fields()
	}
	return OfValue(reflect.ValueOf(v))
}

// OfValue is Of for an existing reflect.Value. Pointers and interfaces are
// followed; an addressable struct yields writable fields.
func OfValue(rv reflect.Value) []Field {
	rv, ok := Indirect(rv)
	if !ok {
		return nil
	}

	if rv.CanAddr() {
		if l, ok := rv.Addr().Interface().(Lister); ok {
			return l.Fields()
		}
	}
	if rv.CanInterface() {
		if l, ok := rv.Interface().(Lister); ok {
			return l.Fields()
		}
	}

	switch rv.Kind() {
	case reflect.Struct:
		return structFields(rv)
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil
		}
		return mapFields(rv)
	}
	return nil
}

// Lookup finds the field of v whose name matches name case-insensitively.
func Lookup(v any, name string) (Field, bool) {
	for _, f := range Of(v) {
		if EqualName(f.Name, name) {
			return f, true
		}
	}
	return Field{}, false
}

// Indirect follows pointers and interfaces. Returns false when a nil is
// reached or rv is invalid.
func Indirect(rv reflect.Value) (reflect.Value, bool) {
	for rv.IsValid() && (rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface) {
		if rv.IsNil() {
			return reflect.Value{}, false
		}
		rv = rv.Elem()
	}
	return rv, rv.IsValid()
}

// IsRecord reports whether fields can be enumerated on rv.
func IsRecord(rv reflect.Value) bool {
	rv, ok := Indirect(rv)
	if !ok {
		return false
	}
	if rv.CanInterface() {
		if _, ok := rv.Interface().(Lister); ok {
			return true
		}
	}
	if rv.CanAddr() {
		if _, ok := rv.Addr().Interface().(Lister); ok {
			return true
		}
	}
	switch rv.Kind() {
	case reflect.Struct:
		return true
	case reflect.Map:
		return rv.Type().Key().Kind() == reflect.String
	}
	return false
}

func structFields(rv reflect.Value) []Field {
	t := rv.Type()
	out := make([]Field, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		tag := sf.Tag.Get(TagName)
		if tag == TagSkip {
			continue
		}

		fv := rv.Field(i)
		f := Field{
			Name: sf.Name,
			Type: sf.Type,
			Get:  fv.Interface,
		}
		if fv.CanSet() && tag != TagReadOnly {
			f.Set = setter(fv)
		}
		out = append(out, f)
	}
	return out
}

func mapFields(rv reflect.Value) []Field {
	keys := make([]string, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		keys = append(keys, iter.Key().String())
	}
	slices.Sort(keys)

	keyType := rv.Type().Key()
	elemType := rv.Type().Elem()
	out := make([]Field, 0, len(keys))
	for _, k := range keys {
		key := reflect.ValueOf(k).Convert(keyType)
		out = append(out, Field{
			Name: k,
			Get: func() any {
				v := rv.MapIndex(key)
				if !v.IsValid() {
					return nil
				}
				return v.Interface()
			},
			Set: func(val any) {
				rv.SetMapIndex(key, valueOf(val, elemType))
			},
		})
	}
	return out
}

// setter assigns values to an addressable struct field.
func setter(fv reflect.Value) func(any) {
	return func(val any) {
		fv.Set(valueOf(val, fv.Type()))
	}
}

// valueOf converts val to a value assignable to t, converting between
// compatible types (e.g. string to a named string type).
func valueOf(val any, t reflect.Type) reflect.Value {
	if val == nil {
		return reflect.Zero(t)
	}
	nv := reflect.ValueOf(val)
	if nv.Type().AssignableTo(t) {
		return nv
	}
	if nv.Type().ConvertibleTo(t) {
		return nv.Convert(t)
	}
	return nv
}
