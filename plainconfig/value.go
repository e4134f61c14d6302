package plainconfig

import "math"

// Values in the config map are ordinary Go values over a closed set:
// string, []byte, bool, nil, float64, any integer kind (decoded values
// are always int64) and the container types below. Anything outside
// that set is "opaque" and can only be written with Writer.Unsafe and
// a Pickler.

// Tuple is an ordered, fixed-shape sequence literal. It round-trips
// as (a, b) and, unlike []any, as a distinct type.
type Tuple []any

// Set is an unordered collection literal, {a, b}. Elements must be
// hashable scalars (string, int64, float64, bool, nil).
type Set map[any]struct{}

// Dict is a mapping literal, {k: v}. Keys must be hashable scalars.
type Dict map[any]any

// NewSet is a convenience for building a Set from elements.
func NewSet(elems ...any) Set {
	s := make(Set, len(elems))
	for _, e := range elems {
		s[e] = struct{}{}
	}
	return s
}

// hashable reports whether v can be a Set element or Dict key.
// Go map keys must be comparable, which rules out []byte and the
// container types. Unsigned values above int64 range are excluded
// too: decoded integers are int64, so they could never be read back.
func hashable(v any) bool {
	switch n := v.(type) {
	case nil, string, bool, int64, float64:
		return true
	case int, int8, int16, int32, uint8, uint16, uint32, float32:
		return true
	case uint:
		return uint64(n) <= math.MaxInt64
	case uint64:
		return n <= math.MaxInt64
	}
	return false
}

// isLiteralSafe is the closed safety predicate: true if v, recursively,
// contains only scalars and tuple/list/set/dict containers of scalars.
// Such values can be written with the "r" modifier and read back
// without any opaque deserialization.
func isLiteralSafe(v any) bool {
	switch v := v.(type) {
	case nil, string, []byte, bool, float64, float32,
		int, int8, int16, int32, int64,
		uint8, uint16, uint32:
		return true
	case uint:
		return uint64(v) <= math.MaxInt64
	case uint64:
		return v <= math.MaxInt64
	case Tuple:
		for _, e := range v {
			if !isLiteralSafe(e) {
				return false
			}
		}
		return true
	case []any:
		for _, e := range v {
			if !isLiteralSafe(e) {
				return false
			}
		}
		return true
	case Set:
		for e := range v {
			if !hashable(e) {
				return false
			}
		}
		return true
	case Dict:
		for k, val := range v {
			if !hashable(k) || !isLiteralSafe(val) {
				return false
			}
		}
		return true
	}
	return false
}
