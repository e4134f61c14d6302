package plainconfig

import (
	"bytes"
	"encoding/base32"
	"encoding/base64"
	"encoding/gob"
	"fmt"
	"strconv"
	"unicode/utf8"
)

// Pickler serializes values that fall outside the literal-safe set
// ("opaque" values). Deserializing attacker-controlled input through a
// Pickler is unsafe by definition, which is why both Reader and Writer
// gate it behind the Unsafe flag.
type Pickler interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(d []byte) (any, error)
}

// GobPickler is the default Pickler, backed by encoding/gob. Concrete
// types must be registered with gob.Register before use.
type GobPickler struct{}

func (GobPickler) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (GobPickler) Unmarshal(d []byte) (any, error) {
	var v any
	if err := gob.NewDecoder(bytes.NewReader(d)).Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

const (
	controlsNone = iota // no control characters
	controlsTame        // only tab / CR / LF
	controlsWild        // something else from C0/C1
)

func classifyControls(s string) int {
	res := controlsNone
	for _, r := range s {
		if r >= 0x20 && (r < 0x7f || r > 0x9f) {
			continue
		}
		if r == '\t' || r == '\n' || r == '\r' {
			res = controlsTame
			continue
		}
		return controlsWild
	}
	return res
}

// encodeValue picks the modifier and payload for v. The choice is a
// type switch over the closed value set; order matters and mirrors
// the decode chain.
func encodeValue(v any, unsafe bool, pickler Pickler) (modifier, payload string, err error) {
	switch v := v.(type) {
	case string:
		switch classifyControls(v) {
		case controlsNone:
			return "", v, nil
		case controlsTame:
			// tab/newline only: the quoted literal form stays readable
			return "r", reprValue(v), nil
		default:
			return "64s", base64.StdEncoding.EncodeToString([]byte(v)), nil
		}
	case bool:
		return "r", reprValue(v), nil
	case nil:
		return "r", "None", nil
	case float64:
		return "f", formatFloat(v), nil
	case float32:
		return "f", formatFloat(float64(v)), nil
	case []byte:
		// base32 survives case-insensitive filesystems, base64 doesn't
		return "32", base32.StdEncoding.EncodeToString(v), nil
	}
	if s, ok := formatInt(v); ok {
		return "i", s, nil
	}
	if isLiteralSafe(v) {
		return "r", reprValue(v), nil
	}
	if unsafe {
		if pickler == nil {
			pickler = GobPickler{}
		}
		d, err := pickler.Marshal(v)
		if err != nil {
			return "", "", fmt.Errorf("pickling value of type %T: %w", v, err)
		}
		return "64p", base64.StdEncoding.EncodeToString(d), nil
	}
	return "", "", &UnsafeValueError{Value: v}
}

// asText returns the current in-flight value as text, for modifiers
// that reinterpret a textual payload (i, f, r, 32, 64).
func asText(v any) (string, bool) {
	switch v := v.(type) {
	case string:
		return v, true
	case []byte:
		return string(v), true
	}
	return "", false
}

// decodeValue applies the modifier chain left to right to the payload.
// Each operation consumes a prefix of the modifier string ("32" and
// "64" take two characters, the rest one).
func decodeValue(modifier, payload string, unsafe bool, pickler Pickler) (any, error) {
	var v any = payload
	m := modifier
	for len(m) > 0 {
		switch {
		case m[0] == 'p':
			if !unsafe {
				return nil, ErrUnsafeOperation
			}
			if pickler == nil {
				pickler = GobPickler{}
			}
			var d []byte
			switch cur := v.(type) {
			case []byte:
				d = cur
			case string:
				d = []byte(cur)
			default:
				return nil, fmt.Errorf("%w: \"p\" on %T", ErrTypeMismatch, v)
			}
			obj, err := pickler.Unmarshal(d)
			if err != nil {
				return nil, fmt.Errorf("%w: unpickling: %v", ErrFormat, err)
			}
			v = obj
			m = m[1:]
		case m[0] == 's':
			switch cur := v.(type) {
			case []byte:
				if !utf8.Valid(cur) {
					return nil, fmt.Errorf("%w: \"s\" payload is not valid utf-8", ErrEncoding)
				}
				v = string(cur)
			case int64:
				v = strconv.FormatInt(cur, 10)
			default:
				return nil, fmt.Errorf("%w: \"s\" on %T", ErrTypeMismatch, v)
			}
			m = m[1:]
		case m[0] == 'b':
			cur, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("%w: \"b\" on %T", ErrTypeMismatch, v)
			}
			v = []byte(cur)
			m = m[1:]
		case m[0] == 'i':
			s, ok := asText(v)
			if !ok {
				return nil, fmt.Errorf("%w: \"i\" on %T", ErrTypeMismatch, v)
			}
			n, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: bad integer %q", ErrFormat, s)
			}
			v = n
			m = m[1:]
		case m[0] == 'f':
			s, ok := asText(v)
			if !ok {
				return nil, fmt.Errorf("%w: \"f\" on %T", ErrTypeMismatch, v)
			}
			f, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: bad float %q", ErrFormat, s)
			}
			v = f
			m = m[1:]
		case m[0] == 'r':
			s, ok := asText(v)
			if !ok {
				return nil, fmt.Errorf("%w: \"r\" on %T", ErrTypeMismatch, v)
			}
			lit, err := ParseLiteral(s)
			if err != nil {
				return nil, err
			}
			v = lit
			m = m[1:]
		case len(m) >= 2 && m[:2] == "32":
			s, ok := asText(v)
			if !ok {
				return nil, fmt.Errorf("%w: \"32\" on %T", ErrTypeMismatch, v)
			}
			d, err := base32.StdEncoding.DecodeString(s)
			if err != nil {
				return nil, fmt.Errorf("%w: base32: %v", ErrEncoding, err)
			}
			v = d
			m = m[2:]
		case len(m) >= 2 && m[:2] == "64":
			s, ok := asText(v)
			if !ok {
				return nil, fmt.Errorf("%w: \"64\" on %T", ErrTypeMismatch, v)
			}
			d, err := base64.StdEncoding.DecodeString(s)
			if err != nil {
				return nil, fmt.Errorf("%w: base64: %v", ErrEncoding, err)
			}
			v = d
			m = m[2:]
		default:
			return nil, fmt.Errorf("%w: %q in %q", ErrUnknownModifier, string(m[0]), modifier)
		}
	}
	return v, nil
}
