package filter

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

var builtins = map[string]Filter{
	"upper":      Func(upper),
	"lower":      Func(lower),
	"capitalize": Func(capitalize),
	"trim":       Func(trim),
	"default":    Func(defaultValue),
	"json":       Func(toJSON),
	"join":       Func(join),
	"limit":      Func(limit),
	"length":     Func(length),
	"number":     Func(number),
}

// String converts a value to its display form: nil is empty, strings are
// unchanged, composites are JSON and everything else uses fmt.
func String(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case fmt.Stringer:
		return x.String()
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return ""
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(b)
	}
	return fmt.Sprint(rv.Interface())
}

func upper(subject any, _ ...any) (any, error) {
	return strings.ToUpper(String(subject)), nil
}

func lower(subject any, _ ...any) (any, error) {
	return strings.ToLower(String(subject)), nil
}

func capitalize(subject any, _ ...any) (any, error) {
	s := String(subject)
	r, n := utf8.DecodeRuneInString(s)
	if n == 0 {
		return s, nil
	}
	return string(unicode.ToUpper(r)) + s[n:], nil
}

func trim(subject any, _ ...any) (any, error) {
	return strings.TrimSpace(String(subject)), nil
}

// defaultValue replaces nil and empty strings.
func defaultValue(subject any, args ...any) (any, error) {
	if len(args) != 1 {
		return nil, argError("default", "1 argument", args)
	}
	if subject == nil {
		return args[0], nil
	}
	if s, ok := subject.(string); ok && s == "" {
		return args[0], nil
	}
	return subject, nil
}

func toJSON(subject any, args ...any) (any, error) {
	var (
		b   []byte
		err error
	)
	if len(args) > 0 {
		b, err = json.MarshalIndent(subject, "", strings.Repeat(" ", toInt(args[0])))
	} else {
		b, err = json.Marshal(subject)
	}
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func join(subject any, args ...any) (any, error) {
	sep := ","
	if len(args) > 0 {
		sep = String(args[0])
	}
	rv := reflect.ValueOf(subject)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return String(subject), nil
	}
	parts := make([]string, rv.Len())
	for i := range parts {
		parts[i] = String(rv.Index(i).Interface())
	}
	return strings.Join(parts, sep), nil
}

// limit keeps the first n elements of a slice or runes of a string.
// An optional second argument is the start offset.
func limit(subject any, args ...any) (any, error) {
	if len(args) < 1 || len(args) > 2 {
		return nil, argError("limit", "1 or 2 arguments", args)
	}
	n := toInt(args[0])
	start := 0
	if len(args) == 2 {
		start = toInt(args[1])
	}

	if s, ok := subject.(string); ok {
		rs := []rune(s)
		lo, hi := bounds(len(rs), start, n)
		return string(rs[lo:hi]), nil
	}
	rv := reflect.ValueOf(subject)
	if rv.Kind() != reflect.Slice {
		return subject, nil
	}
	lo, hi := bounds(rv.Len(), start, n)
	return rv.Slice(lo, hi).Interface(), nil
}

func length(subject any, _ ...any) (any, error) {
	if s, ok := subject.(string); ok {
		return utf8.RuneCountInString(s), nil
	}
	rv := reflect.ValueOf(subject)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len(), nil
	}
	return 0, nil
}

// number formats a numeric subject with a fixed number of decimals.
func number(subject any, args ...any) (any, error) {
	decimals := 0
	if len(args) > 0 {
		decimals = toInt(args[0])
	}
	f, err := toFloat(subject)
	if err != nil {
		return nil, err
	}
	return strconv.FormatFloat(f, 'f', decimals, 64), nil
}

func bounds(size, start, n int) (int, int) {
	if start < 0 {
		start = 0
	}
	if start > size {
		start = size
	}
	end := start + n
	if n < 0 || end > size {
		end = size
	}
	return start, end
}

func toInt(v any) int {
	f, err := toFloat(v)
	if err != nil {
		return 0
	}
	return int(f)
}

func toFloat(v any) (float64, error) {
	switch x := v.(type) {
	case string:
		return strconv.ParseFloat(strings.TrimSpace(x), 64)
	case nil:
		return 0, fmt.Errorf("not a number: nil")
	}
	rv := reflect.ValueOf(v)
	switch {
	case rv.CanInt():
		return float64(rv.Int()), nil
	case rv.CanUint():
		return float64(rv.Uint()), nil
	case rv.CanFloat():
		return rv.Float(), nil
	}
	return 0, fmt.Errorf("not a number: %T", v)
}
