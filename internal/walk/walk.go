// Package walk traverses an object graph and hands every writable string it
// finds to a substitution callback.
//
// Each field is classified exactly once, first match wins:
//
//  1. string-keyed string map: rebuilt with substituted values
//  2. association list (slice of {Key, Value string} structs): rebuilt in order
//  3. string slice: rebuilt as a slice of the same type
//  4. string array: rebuilt as an array of the same type
//  5. sequence of objects: each element walked in place
//  6. nested object: walked recursively
//  7. string: substituted and written back
//
// Anything else (numbers, bools, nil values) is left untouched, and fields
// without a setter are skipped even when they contain tokens.
package walk

import (
	"reflect"

	"github.com/roach88/objtok/internal/fields"
)

// SubstituteFunc rewrites one string. The walker stops at the first error.
type SubstituteFunc func(text string) (string, error)

// Kind names the branch a field was dispatched to.
type Kind int

const (
	KindNone Kind = iota
	KindStringMap
	KindAssocList
	KindStringSlice
	KindStringArray
	KindObjectSeq
	KindObject
	KindString
)

var kindNames = [...]string{
	KindNone:        "none",
	KindStringMap:   "string_map",
	KindAssocList:   "assoc_list",
	KindStringSlice: "string_slice",
	KindStringArray: "string_array",
	KindObjectSeq:   "object_seq",
	KindObject:      "object",
	KindString:      "string",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Walker performs one pass over a graph.
//
// A Walker remembers the pointers and maps it has visited so that shared or
// cyclic sub-objects are walked once per pass. Use a new Walker per pass.
type Walker struct {
	substitute SubstituteFunc
	visited    map[visitKey]bool
}

type visitKey struct {
	typ reflect.Type
	ptr uintptr
}

// New creates a Walker that rewrites strings with fn.
func New(fn SubstituteFunc) *Walker {
	return &Walker{
		substitute: fn,
		visited:    make(map[visitKey]bool),
	}
}

// Walk visits every writable field reachable from node.
// A nil node is a no-op.
func (w *Walker) Walk(node any) error {
	if node == nil {
		return nil
	}
	return w.walkValue(reflect.ValueOf(node))
}

func (w *Walker) walkValue(rv reflect.Value) error {
	if w.seen(rv) {
		return nil
	}
	for _, f := range fields.OfValue(rv) {
		if err := w.walkField(f); err != nil {
			return err
		}
	}
	return nil
}

// seen records reference-typed nodes and reports whether they were already walked.
func (w *Walker) seen(rv reflect.Value) bool {
	for rv.IsValid() && rv.Kind() == reflect.Interface && !rv.IsNil() {
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return false
	}
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map:
		if rv.IsNil() {
			return false
		}
		key := visitKey{typ: rv.Type(), ptr: rv.Pointer()}
		if w.visited[key] {
			return true
		}
		w.visited[key] = true
	}
	return false
}

func (w *Walker) walkField(f fields.Field) error {
	if !f.Writable() {
		return nil
	}
	cur := f.Get()
	if cur == nil {
		return nil
	}
	rv := reflect.ValueOf(cur)
	if isNilValue(rv) {
		return nil
	}

	switch Classify(rv) {
	case KindStringMap:
		out, err := w.rebuildStringMap(rv)
		if err != nil {
			return err
		}
		f.Set(out.Interface())
	case KindAssocList:
		out, err := w.rebuildAssocList(rv)
		if err != nil {
			return err
		}
		f.Set(out.Interface())
	case KindStringSlice:
		out, err := w.rebuildStrings(reflect.MakeSlice(rv.Type(), rv.Len(), rv.Len()), rv)
		if err != nil {
			return err
		}
		f.Set(out.Interface())
	case KindStringArray:
		out, err := w.rebuildStrings(reflect.New(rv.Type()).Elem(), rv)
		if err != nil {
			return err
		}
		f.Set(out.Interface())
	case KindObjectSeq:
		if rv.Kind() != reflect.Array {
			return w.walkSequence(rv)
		}
		// Arrays come back from Get as copies; walk an addressable copy and store it.
		arr := reflect.New(rv.Type()).Elem()
		arr.Set(rv)
		if err := w.walkSequence(arr); err != nil {
			return err
		}
		f.Set(arr.Interface())
	case KindObject:
		return w.walkObject(f, rv)
	case KindString:
		out, err := w.substitute(rv.String())
		if err != nil {
			return err
		}
		if out != rv.String() {
			f.Set(reflect.ValueOf(out).Convert(rv.Type()).Interface())
		}
	}
	return nil
}

// Classify returns the branch a non-nil field value dispatches to.
func Classify(rv reflect.Value) Kind {
	if !rv.IsValid() {
		return KindNone
	}
	t := rv.Type()
	switch t.Kind() {
	case reflect.Map:
		if t.Key().Kind() == reflect.String && t.Elem().Kind() == reflect.String {
			return KindStringMap
		}
		if fields.IsRecord(rv) {
			return KindObject
		}
	case reflect.Slice:
		if isAssocPair(t.Elem()) {
			return KindAssocList
		}
		if t.Elem().Kind() == reflect.String {
			return KindStringSlice
		}
		if isObjectElem(t.Elem()) {
			return KindObjectSeq
		}
	case reflect.Array:
		if t.Elem().Kind() == reflect.String {
			return KindStringArray
		}
		if isObjectElem(t.Elem()) {
			return KindObjectSeq
		}
	case reflect.Pointer, reflect.Interface, reflect.Struct:
		if fields.IsRecord(rv) {
			return KindObject
		}
	case reflect.String:
		return KindString
	}
	return KindNone
}

func (w *Walker) rebuildStringMap(rv reflect.Value) (reflect.Value, error) {
	out := reflect.MakeMapWithSize(rv.Type(), rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		s, err := w.substitute(iter.Value().String())
		if err != nil {
			return reflect.Value{}, err
		}
		out.SetMapIndex(iter.Key(), reflect.ValueOf(s).Convert(rv.Type().Elem()))
	}
	return out, nil
}

func (w *Walker) rebuildAssocList(rv reflect.Value) (reflect.Value, error) {
	out := reflect.MakeSlice(rv.Type(), rv.Len(), rv.Len())
	for i := 0; i < rv.Len(); i++ {
		pair := out.Index(i)
		pair.Set(rv.Index(i))
		val := pair.FieldByName("Value")
		s, err := w.substitute(val.String())
		if err != nil {
			return reflect.Value{}, err
		}
		val.SetString(s)
	}
	return out, nil
}

func (w *Walker) rebuildStrings(out, in reflect.Value) (reflect.Value, error) {
	for i := 0; i < in.Len(); i++ {
		s, err := w.substitute(in.Index(i).String())
		if err != nil {
			return reflect.Value{}, err
		}
		out.Index(i).SetString(s)
	}
	return out, nil
}

// walkSequence walks each element of an addressable slice or array in place.
// String elements (as found in []any documents) are substituted and stored back.
func (w *Walker) walkSequence(rv reflect.Value) error {
	for i := 0; i < rv.Len(); i++ {
		elem := rv.Index(i)
		if elem.Kind() == reflect.String && elem.CanSet() {
			s, err := w.substitute(elem.String())
			if err != nil {
				return err
			}
			elem.SetString(s)
			continue
		}
		if elem.Kind() == reflect.Interface && !elem.IsNil() && elem.Elem().Kind() == reflect.String {
			s, err := w.substitute(elem.Elem().String())
			if err != nil {
				return err
			}
			elem.Set(reflect.ValueOf(s))
			continue
		}
		if elem.Kind() == reflect.Interface && !elem.IsNil() && elem.Elem().Kind() == reflect.Slice {
			elem = elem.Elem()
		}
		if elem.Kind() == reflect.Slice {
			if err := w.walkSequence(elem); err != nil {
				return err
			}
			continue
		}
		if elem.Kind() == reflect.Struct && elem.CanAddr() {
			elem = elem.Addr()
		}
		if err := w.walkValue(elem); err != nil {
			return err
		}
	}
	return nil
}

// walkObject recurses into a nested object. Struct values held directly in
// a field are copies, so they are walked through a pointer and stored back.
func (w *Walker) walkObject(f fields.Field, rv reflect.Value) error {
	if rv.Kind() != reflect.Struct {
		return w.walkValue(rv)
	}
	ptr := reflect.New(rv.Type())
	ptr.Elem().Set(rv)
	if err := w.walkValue(ptr); err != nil {
		return err
	}
	f.Set(ptr.Elem().Interface())
	return nil
}

// isAssocPair reports whether t is a struct with string Key and Value fields.
func isAssocPair(t reflect.Type) bool {
	if t.Kind() != reflect.Struct || t.NumField() != 2 {
		return false
	}
	key, ok := t.FieldByName("Key")
	if !ok || key.Type.Kind() != reflect.String {
		return false
	}
	val, ok := t.FieldByName("Value")
	return ok && val.Type.Kind() == reflect.String
}

func isObjectElem(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Struct, reflect.Map, reflect.Slice:
		return true
	}
	return false
}

func isNilValue(rv reflect.Value) bool {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
