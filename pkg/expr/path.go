package expr

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	vberrors "github.com/vango-dev/vbind/internal/errors"
)

// InternalPrefix marks map keys that are hidden from expressions.
const InternalPrefix = "$"

// Path is a resolved access path: a sequence of string or int keys.
type Path []any

// String renders the path in dotted/indexed form.
func (p Path) String() string {
	var b strings.Builder
	for i, k := range p {
		switch k := k.(type) {
		case int:
			b.WriteString("[" + strconv.Itoa(k) + "]")
		default:
			if i > 0 {
				b.WriteByte('.')
			}
			b.WriteString(KeyString(k))
		}
	}
	return b.String()
}

// IsInternal reports whether a key is hidden from expressions.
func IsInternal(key string) bool {
	return strings.HasPrefix(key, InternalPrefix)
}

// Get returns the value at p relative to root.
func Get(root any, p Path) (any, error) {
	v, err := walk(reflect.ValueOf(root), p)
	if err != nil {
		return nil, err
	}
	if !v.IsValid() {
		return nil, nil
	}
	return v.Interface(), nil
}

// Has reports whether every step of p exists relative to root. A present
// key holding nil counts as defined. Missing intermediates never panic.
func Has(root any, p Path) bool {
	_, err := walk(reflect.ValueOf(root), p)
	return err == nil
}

// Set assigns v at p relative to root. Every step but the last must exist.
// The last step may add a new map key; slices are not grown.
func Set(root any, p Path, v any) error {
	if len(p) == 0 {
		return vberrors.New(vberrors.CodeNotAssignable).WithDetail("empty path")
	}
	parent, err := walk(reflect.ValueOf(root), p[:len(p)-1])
	if err != nil {
		return err
	}
	parent = indirect(parent)
	key := p[len(p)-1]

	switch parent.Kind() {
	case reflect.Map:
		if parent.IsNil() {
			return mismatch(p, "nil map")
		}
		ks, ok := key.(string)
		if ok && IsInternal(ks) {
			return notFound(p)
		}
		mk, err := mapKey(parent.Type().Key(), key)
		if err != nil {
			return mismatch(p, err.Error())
		}
		val, err := convert(v, parent.Type().Elem())
		if err != nil {
			return mismatch(p, err.Error())
		}
		parent.SetMapIndex(mk, val)
		return nil

	case reflect.Slice, reflect.Array:
		i, ok := toIndex(key)
		if !ok {
			return mismatch(p, "non-integer index")
		}
		if i < 0 || i >= parent.Len() {
			return notFound(p)
		}
		elem := parent.Index(i)
		if !elem.CanSet() {
			return mismatch(p, "element not addressable")
		}
		val, err := convert(v, elem.Type())
		if err != nil {
			return mismatch(p, err.Error())
		}
		elem.Set(val)
		return nil

	case reflect.Struct:
		name, _ := key.(string)
		f, ok := field(parent, name)
		if !ok {
			return notFound(p)
		}
		if !f.CanSet() {
			return mismatch(p, "field not addressable")
		}
		val, err := convert(v, f.Type())
		if err != nil {
			return mismatch(p, err.Error())
		}
		f.Set(val)
		return nil

	default:
		return mismatch(p, "cannot assign into "+parent.Kind().String())
	}
}

// walk applies p to v, returning the final value.
func walk(v reflect.Value, p Path) (reflect.Value, error) {
	for i, key := range p {
		next, err := step(v, key)
		if err != nil {
			if ve, ok := err.(*vberrors.Error); ok {
				ve.Detail = p[:i+1].String()
			}
			return reflect.Value{}, err
		}
		v = next
	}
	return v, nil
}

func step(v reflect.Value, key any) (reflect.Value, error) {
	v = indirect(v)
	if !v.IsValid() {
		return v, vberrors.New(vberrors.CodePathNotFound)
	}

	switch v.Kind() {
	case reflect.Map:
		if ks, ok := key.(string); ok && IsInternal(ks) {
			return reflect.Value{}, vberrors.New(vberrors.CodePathNotFound)
		}
		mk, err := mapKey(v.Type().Key(), key)
		if err != nil {
			return reflect.Value{}, vberrors.New(vberrors.CodeTypeMismatch).Wrap(err)
		}
		r := v.MapIndex(mk)
		if !r.IsValid() {
			return r, vberrors.New(vberrors.CodePathNotFound)
		}
		return r, nil

	case reflect.Slice, reflect.Array, reflect.String:
		if key == "length" {
			return reflect.ValueOf(v.Len()), nil
		}
		if v.Kind() == reflect.String {
			return reflect.Value{}, vberrors.New(vberrors.CodeTypeMismatch)
		}
		i, ok := toIndex(key)
		if !ok {
			return reflect.Value{}, vberrors.New(vberrors.CodeTypeMismatch)
		}
		if i < 0 || i >= v.Len() {
			return reflect.Value{}, vberrors.New(vberrors.CodePathNotFound)
		}
		return v.Index(i), nil

	case reflect.Struct:
		name, ok := key.(string)
		if !ok {
			return reflect.Value{}, vberrors.New(vberrors.CodeTypeMismatch)
		}
		f, ok := field(v, name)
		if !ok {
			return reflect.Value{}, vberrors.New(vberrors.CodePathNotFound)
		}
		return f, nil

	default:
		return reflect.Value{}, vberrors.New(vberrors.CodeTypeMismatch)
	}
}

// indirect dereferences pointers and interfaces. Nil yields an invalid value.
func indirect(v reflect.Value) reflect.Value {
	for v.IsValid() && (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

// field finds an exported struct field by name, json tag, or
// case-insensitive name, so templates can use lowerCamel names.
func field(v reflect.Value, name string) (reflect.Value, bool) {
	t := v.Type()
	if sf, ok := t.FieldByName(name); ok && sf.IsExported() {
		return v.FieldByIndex(sf.Index), true
	}
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		tag := strings.Split(sf.Tag.Get("json"), ",")[0]
		if tag == name || (tag == "" && strings.EqualFold(sf.Name, name)) {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}

func mapKey(kt reflect.Type, key any) (reflect.Value, error) {
	if kt.Kind() == reflect.String {
		return reflect.ValueOf(KeyString(key)).Convert(kt), nil
	}
	if i, ok := toIndex(key); ok {
		kv := reflect.ValueOf(i)
		if kv.Type().ConvertibleTo(kt) && isNumeric(kt.Kind()) {
			return kv.Convert(kt), nil
		}
	}
	kv := reflect.ValueOf(key)
	if kv.IsValid() && kv.Type().AssignableTo(kt) {
		return kv, nil
	}
	return reflect.Value{}, &keyError{key: key, typ: kt}
}

type keyError struct {
	key any
	typ reflect.Type
}

func (e *keyError) Error() string {
	return "key " + KeyString(e.key) + " is not a " + e.typ.String()
}

// convert makes v assignable to t. Numeric values convert between numeric
// kinds; everything else must be directly assignable.
func convert(v any, t reflect.Type) (reflect.Value, error) {
	if v == nil {
		return reflect.Zero(t), nil
	}
	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(t) {
		return rv, nil
	}
	if isNumeric(rv.Kind()) && isNumeric(t.Kind()) {
		return rv.Convert(t), nil
	}
	return reflect.Value{}, &keyError{key: v, typ: t}
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func toIndex(key any) (int, bool) {
	switch k := key.(type) {
	case int:
		return k, true
	case int64:
		return int(k), true
	case float64:
		if k == float64(int(k)) {
			return int(k), true
		}
	case string:
		i, err := strconv.Atoi(k)
		return i, err == nil
	}
	return 0, false
}

// KeyString formats a path key for display and comparison.
func KeyString(key any) string {
	switch k := key.(type) {
	case string:
		return k
	case int:
		return strconv.Itoa(k)
	case float64:
		return strconv.FormatFloat(k, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(k)
	case nil:
		return "null"
	default:
		return fmt.Sprint(k)
	}
}

func notFound(p Path) error {
	return vberrors.New(vberrors.CodePathNotFound).WithDetail(p.String())
}

func mismatch(p Path, why string) error {
	return vberrors.New(vberrors.CodeTypeMismatch).WithDetail(p.String() + ": " + why)
}
