package expr

import "reflect"

// Clone returns a deep copy of composite values (maps, slices, arrays,
// structs and pointers to them) so that filters cannot mutate the live
// model. Internal map keys are dropped. Scalars are returned as-is.
func Clone(v any) any {
	if v == nil {
		return nil
	}
	c := cloneValue(reflect.ValueOf(v))
	if !c.IsValid() {
		return nil
	}
	return c.Interface()
}

// IsComposite reports whether v is a collection or mapping.
func IsComposite(v any) bool {
	rv := indirect(reflect.ValueOf(v))
	if !rv.IsValid() {
		return false
	}
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct:
		return true
	}
	return false
}

// visitKey identifies a pointer, map or slice already being copied. The
// type is part of the key since a struct and its first field share an
// address.
type visitKey struct {
	ptr uintptr
	typ reflect.Type
	len int
}

// cloner copies a value graph once per reference, so shared references stay
// shared and cycles are reproduced instead of followed.
type cloner struct {
	seen map[visitKey]reflect.Value
}

func cloneValue(v reflect.Value) reflect.Value {
	c := &cloner{seen: make(map[visitKey]reflect.Value)}
	return c.clone(v)
}

func (c *cloner) clone(v reflect.Value) reflect.Value {
	switch v.Kind() {
	case reflect.Interface:
		if v.IsNil() {
			return v
		}
		inner := c.clone(v.Elem())
		out := reflect.New(v.Type()).Elem()
		out.Set(inner)
		return out

	case reflect.Pointer:
		if v.IsNil() {
			return v
		}
		key := visitKey{ptr: v.Pointer(), typ: v.Type()}
		if out, ok := c.seen[key]; ok {
			return out
		}
		out := reflect.New(v.Type().Elem())
		c.seen[key] = out
		out.Elem().Set(c.clone(v.Elem()))
		return out

	case reflect.Map:
		if v.IsNil() {
			return v
		}
		key := visitKey{ptr: v.Pointer(), typ: v.Type()}
		if out, ok := c.seen[key]; ok {
			return out
		}
		out := reflect.MakeMapWithSize(v.Type(), v.Len())
		c.seen[key] = out
		iter := v.MapRange()
		for iter.Next() {
			k := iter.Key()
			if k.Kind() == reflect.String && IsInternal(k.String()) {
				continue
			}
			out.SetMapIndex(k, c.clone(iter.Value()))
		}
		return out

	case reflect.Slice:
		if v.IsNil() {
			return v
		}
		key := visitKey{ptr: v.Pointer(), typ: v.Type(), len: v.Len()}
		if out, ok := c.seen[key]; ok {
			return out
		}
		out := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		if v.Len() > 0 {
			c.seen[key] = out
		}
		for i := 0; i < v.Len(); i++ {
			out.Index(i).Set(c.clone(v.Index(i)))
		}
		return out

	case reflect.Array:
		out := reflect.New(v.Type()).Elem()
		for i := 0; i < v.Len(); i++ {
			out.Index(i).Set(c.clone(v.Index(i)))
		}
		return out

	case reflect.Struct:
		out := reflect.New(v.Type()).Elem()
		out.Set(v)
		for i := 0; i < v.NumField(); i++ {
			if v.Type().Field(i).IsExported() {
				out.Field(i).Set(c.clone(v.Field(i)))
			}
		}
		return out

	default:
		return v
	}
}

// Cyclic reports whether v reaches itself through pointers, maps or slices.
// Encoders without cycle detection must not be handed such values.
func Cyclic(v any) bool {
	if v == nil {
		return false
	}
	return cyclic(reflect.ValueOf(v), make(map[visitKey]bool))
}

func cyclic(v reflect.Value, onPath map[visitKey]bool) bool {
	var key visitKey
	switch v.Kind() {
	case reflect.Interface:
		return !v.IsNil() && cyclic(v.Elem(), onPath)
	case reflect.Pointer, reflect.Map:
		if v.IsNil() {
			return false
		}
		key = visitKey{ptr: v.Pointer(), typ: v.Type()}
	case reflect.Slice:
		if v.IsNil() || v.Len() == 0 {
			return false
		}
		key = visitKey{ptr: v.Pointer(), typ: v.Type(), len: v.Len()}
	case reflect.Array:
		for i := 0; i < v.Len(); i++ {
			if cyclic(v.Index(i), onPath) {
				return true
			}
		}
		return false
	case reflect.Struct:
		for i := 0; i < v.NumField(); i++ {
			if v.Type().Field(i).IsExported() && cyclic(v.Field(i), onPath) {
				return true
			}
		}
		return false
	default:
		return false
	}

	if onPath[key] {
		return true
	}
	onPath[key] = true
	defer delete(onPath, key)

	switch v.Kind() {
	case reflect.Pointer:
		return cyclic(v.Elem(), onPath)
	case reflect.Map:
		iter := v.MapRange()
		for iter.Next() {
			if k := iter.Key(); k.Kind() == reflect.String && IsInternal(k.String()) {
				continue
			}
			if cyclic(iter.Value(), onPath) {
				return true
			}
		}
	case reflect.Slice:
		for i := 0; i < v.Len(); i++ {
			if cyclic(v.Index(i), onPath) {
				return true
			}
		}
	}
	return false
}
