// Package maputils provides lookups on JSON documents that were decoded into
// map[string]any values.
// Missing keys and values of unexpected types are reported via the boolean
// return value instead of an error.
package maputils

import "math"

// maxSafeInteger is the largest integer that a float64 represents exactly.
const maxSafeInteger = 1 << 53

// Lookup descends into nested objects following path and returns the value
// at its end.
// If an element of path does not exist or a non-leaf value is not an
// object, false is returned.
func Lookup(m map[string]any, path ...string) (any, bool) {
	var val any = m

	for _, key := range path {
		obj, ok := val.(map[string]any)
		if !ok {
			return nil, false
		}

		val, ok = obj[key]
		if !ok {
			return nil, false
		}
	}

	return val, true
}

// StrVal returns the value at path as string.
func StrVal(m map[string]any, path ...string) (string, bool) {
	val, ok := Lookup(m, path...)
	if !ok {
		return "", false
	}

	str, ok := val.(string)
	return str, ok
}

// StrValOrEmpty returns the value at path as string.
// If the path does not exist or the value is not a string, an empty string
// is returned.
func StrValOrEmpty(m map[string]any, path ...string) string {
	str, _ := StrVal(m, path...)
	return str
}

// BoolVal returns the value at path as bool.
func BoolVal(m map[string]any, path ...string) (bool, bool) {
	val, ok := Lookup(m, path...)
	if !ok {
		return false, false
	}

	b, ok := val.(bool)
	return b, ok
}

// UintVal returns the value at path as unsigned integer.
// Numbers that are negative, have a fractional part or can not be
// represented exactly are rejected.
func UintVal(m map[string]any, path ...string) (uint64, bool) {
	val, ok := Lookup(m, path...)
	if !ok {
		return 0, false
	}

	f, ok := val.(float64)
	if !ok {
		return 0, false
	}

	if f < 0 || f > maxSafeInteger || f != math.Trunc(f) {
		return 0, false
	}

	return uint64(f), true
}

// SliceVal returns the value at path as []any.
func SliceVal(m map[string]any, path ...string) ([]any, bool) {
	val, ok := Lookup(m, path...)
	if !ok {
		return nil, false
	}

	s, ok := val.([]any)
	return s, ok
}
