package plainconfig

import (
	"errors"
	"fmt"
)

// Decode-time failures. All of them are contained to the offending
// line: the line becomes an invalid structure entry, the key is left
// out of the map and reading continues. Use errors.Is to classify
// errors surfaced through logging.
var (
	// ErrFormat means a payload didn't match the syntax its modifier
	// expects (bad integer, bad literal etc.).
	ErrFormat = errors.New("bad value syntax")

	// ErrEncoding means a base32/base64 payload had invalid alphabet
	// or padding.
	ErrEncoding = errors.New("bad encoding")

	// ErrTypeMismatch means a modifier was applied to a value of the
	// wrong type, e.g. "b" on something that is not a string.
	ErrTypeMismatch = errors.New("modifier not applicable to value")

	// ErrUnknownModifier means the modifier chain contained a
	// character we don't recognize.
	ErrUnknownModifier = errors.New("unknown modifier")

	// ErrUnsafeOperation means a "p" modifier was seen but the reader
	// is not in Unsafe mode.
	ErrUnsafeOperation = errors.New(`"p" modifier requires Unsafe`)
)

// ErrUnexpectedEndOfInput means the input ended in the middle of a
// continued value. Unlike per-line decode failures this aborts the
// whole read: there is no well-defined partial result for the record.
var ErrUnexpectedEndOfInput = errors.New("input ended inside a continued value")

// UnsafeValueError is returned by a Writer when a value can only be
// represented via opaque serialization and Unsafe is off.
type UnsafeValueError struct {
	Value any
}

func (e *UnsafeValueError) Error() string {
	return fmt.Sprintf("cannot encode value of type %T, Unsafe is off", e.Value)
}

// InvalidKeyError is returned by a Writer when a key contains '=' or
// '/', which would make the line ambiguous to parse.
type InvalidKeyError struct {
	Key string
}

func (e *InvalidKeyError) Error() string {
	return fmt.Sprintf("invalid key %q: must not contain '=' or '/'", e.Key)
}

func validateKey(key string) error {
	for i := 0; i < len(key); i++ {
		if key[i] == '=' || key[i] == '/' {
			return &InvalidKeyError{Key: key}
		}
	}
	return nil
}
