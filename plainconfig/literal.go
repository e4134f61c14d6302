package plainconfig

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

// The restricted literal grammar backs the "r" modifier: booleans, null,
// numbers, quoted strings, bytes literals and nested tuple/list/set/dict
// of those. Token spelling (True/False/None, b'..' bytes) matches the
// Python implementation this format originated in, so files written by
// it parse unchanged. This is a data grammar only: nothing here
// evaluates expressions.

func reprValue(v any) string {
	var sb strings.Builder
	writeRepr(&sb, v)
	return sb.String()
}

func writeRepr(sb *strings.Builder, v any) {
	switch v := v.(type) {
	case nil:
		sb.WriteString("None")
	case bool:
		if v {
			sb.WriteString("True")
		} else {
			sb.WriteString("False")
		}
	case string:
		writeStringRepr(sb, v)
	case []byte:
		writeBytesRepr(sb, v)
	case float64:
		sb.WriteString(formatFloat(v))
	case float32:
		sb.WriteString(formatFloat(float64(v)))
	case Tuple:
		sb.WriteByte('(')
		for i, e := range v {
			if i > 0 {
				sb.WriteString(", ")
			}
			writeRepr(sb, e)
		}
		if len(v) == 1 {
			sb.WriteByte(',')
		}
		sb.WriteByte(')')
	case []any:
		sb.WriteByte('[')
		for i, e := range v {
			if i > 0 {
				sb.WriteString(", ")
			}
			writeRepr(sb, e)
		}
		sb.WriteByte(']')
	case Set:
		if len(v) == 0 {
			sb.WriteString("set()")
			return
		}
		// map iteration order is random, sort for a diff-friendly file
		elems := make([]string, 0, len(v))
		for e := range v {
			elems = append(elems, reprValue(e))
		}
		sort.Strings(elems)
		sb.WriteByte('{')
		sb.WriteString(strings.Join(elems, ", "))
		sb.WriteByte('}')
	case Dict:
		if len(v) == 0 {
			sb.WriteString("{}")
			return
		}
		pairs := make([]string, 0, len(v))
		for k, val := range v {
			pairs = append(pairs, reprValue(k)+": "+reprValue(val))
		}
		sort.Strings(pairs)
		sb.WriteByte('{')
		sb.WriteString(strings.Join(pairs, ", "))
		sb.WriteByte('}')
	default:
		if s, ok := formatInt(v); ok {
			sb.WriteString(s)
			return
		}
		// callers check isLiteralSafe first
		panic(fmt.Sprintf("reprValue: unsupported type %T", v))
	}
}

func writeStringRepr(sb *strings.Builder, s string) {
	sb.WriteByte('\'')
	for _, r := range s {
		switch r {
		case '\\':
			sb.WriteString(`\\`)
		case '\'':
			sb.WriteString(`\'`)
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		case '\r':
			sb.WriteString(`\r`)
		default:
			if r < 0x20 || (r >= 0x7f && r <= 0x9f) {
				fmt.Fprintf(sb, `\x%02x`, r)
			} else {
				sb.WriteRune(r)
			}
		}
	}
	sb.WriteByte('\'')
}

func writeBytesRepr(sb *strings.Builder, d []byte) {
	sb.WriteString("b'")
	for _, b := range d {
		switch b {
		case '\\':
			sb.WriteString(`\\`)
		case '\'':
			sb.WriteString(`\'`)
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		case '\r':
			sb.WriteString(`\r`)
		default:
			if b >= 0x20 && b < 0x7f {
				sb.WriteByte(b)
			} else {
				fmt.Fprintf(sb, `\x%02x`, b)
			}
		}
	}
	sb.WriteByte('\'')
}

// formatInt formats any integer kind. Decoded integers are int64, so
// unsigned values wider than that are rejected rather than written as
// digits that could never be read back.
func formatInt(v any) (string, bool) {
	switch n := v.(type) {
	case int:
		return strconv.FormatInt(int64(n), 10), true
	case int8:
		return strconv.FormatInt(int64(n), 10), true
	case int16:
		return strconv.FormatInt(int64(n), 10), true
	case int32:
		return strconv.FormatInt(int64(n), 10), true
	case int64:
		return strconv.FormatInt(n, 10), true
	case uint:
		if uint64(n) > math.MaxInt64 {
			return "", false
		}
		return strconv.FormatUint(uint64(n), 10), true
	case uint8:
		return strconv.FormatUint(uint64(n), 10), true
	case uint16:
		return strconv.FormatUint(uint64(n), 10), true
	case uint32:
		return strconv.FormatUint(uint64(n), 10), true
	case uint64:
		if n > math.MaxInt64 {
			return "", false
		}
		return strconv.FormatUint(n, 10), true
	}
	return "", false
}

// formatFloat returns the shortest decimal representation that
// round-trips, always spelled so it parses back as a float.
func formatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "nan"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// ParseLiteral parses a complete restricted literal expression, e.g.
// "True", "3.5", "'text'" or "[1, (2,), {'k': None}]". It rejects
// anything outside the data grammar with an error wrapping ErrFormat.
func ParseLiteral(s string) (any, error) {
	p := &litParser{s: s}
	v, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.i != len(p.s) {
		return nil, p.errf("trailing data after literal")
	}
	return v, nil
}

type litParser struct {
	s string
	i int
}

func (p *litParser) errf(format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	return fmt.Errorf("%w: %s at offset %d in %q", ErrFormat, msg, p.i, p.s)
}

func (p *litParser) skipSpace() {
	for p.i < len(p.s) && (p.s[p.i] == ' ' || p.s[p.i] == '\t') {
		p.i++
	}
}

func (p *litParser) expect(c byte) error {
	p.skipSpace()
	if p.i >= len(p.s) || p.s[p.i] != c {
		return p.errf("expected %q", string(c))
	}
	p.i++
	return nil
}

func (p *litParser) parseValue() (any, error) {
	p.skipSpace()
	if p.i >= len(p.s) {
		return nil, p.errf("unexpected end of literal")
	}
	c := p.s[p.i]
	switch {
	case c == '\'' || c == '"':
		return p.parseString(false)
	case c == 'b' && p.i+1 < len(p.s) && (p.s[p.i+1] == '\'' || p.s[p.i+1] == '"'):
		p.i++
		return p.parseString(true)
	case c == '(':
		return p.parseTuple()
	case c == '[':
		return p.parseList()
	case c == '{':
		return p.parseSetOrDict()
	case c >= '0' && c <= '9' || c == '+' || c == '-' || c == '.':
		return p.parseNumber()
	default:
		return p.parseName()
	}
}

func isAlpha(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func (p *litParser) parseName() (any, error) {
	j := p.i
	for j < len(p.s) && isAlpha(p.s[j]) {
		j++
	}
	name := p.s[p.i:j]
	switch name {
	case "None":
		p.i = j
		return nil, nil
	case "True":
		p.i = j
		return true, nil
	case "False":
		p.i = j
		return false, nil
	case "inf":
		p.i = j
		return math.Inf(1), nil
	case "nan":
		p.i = j
		return math.NaN(), nil
	case "set":
		// the empty set has no {} spelling, it round-trips as set()
		p.i = j
		if err := p.expect('('); err != nil {
			return nil, err
		}
		if err := p.expect(')'); err != nil {
			return nil, err
		}
		return Set{}, nil
	}
	return nil, p.errf("unknown token %q", name)
}

func (p *litParser) parseNumber() (any, error) {
	start := p.i
	if p.s[p.i] == '+' || p.s[p.i] == '-' {
		p.i++
	}
	if strings.HasPrefix(p.s[p.i:], "inf") {
		p.i += 3
		if p.s[start] == '-' {
			return math.Inf(-1), nil
		}
		return math.Inf(1), nil
	}
	if strings.HasPrefix(p.s[p.i:], "nan") {
		p.i += 3
		return math.NaN(), nil
	}
	isFloat := false
	for p.i < len(p.s) {
		c := p.s[p.i]
		if c >= '0' && c <= '9' {
			p.i++
			continue
		}
		if c == '.' {
			isFloat = true
			p.i++
			continue
		}
		if c == 'e' || c == 'E' {
			isFloat = true
			p.i++
			if p.i < len(p.s) && (p.s[p.i] == '+' || p.s[p.i] == '-') {
				p.i++
			}
			continue
		}
		break
	}
	tok := p.s[start:p.i]
	if !isFloat {
		n, err := strconv.ParseInt(tok, 10, 64)
		if err != nil {
			return nil, p.errf("bad integer %q", tok)
		}
		return n, nil
	}
	f, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return nil, p.errf("bad float %q", tok)
	}
	return f, nil
}

func (p *litParser) parseString(isBytes bool) (any, error) {
	quote := p.s[p.i]
	p.i++
	var sb strings.Builder
	bb := []byte{}
	writeByteVal := func(b byte) {
		if isBytes {
			bb = append(bb, b)
		} else {
			sb.WriteRune(rune(b))
		}
	}
	for {
		if p.i >= len(p.s) {
			return nil, p.errf("unterminated string")
		}
		c := p.s[p.i]
		if c == quote {
			p.i++
			break
		}
		if c != '\\' {
			if isBytes {
				if c >= 0x80 {
					return nil, p.errf("non-ascii byte in bytes literal")
				}
				bb = append(bb, c)
				p.i++
			} else {
				r, size := utf8.DecodeRuneInString(p.s[p.i:])
				sb.WriteRune(r)
				p.i += size
			}
			continue
		}
		p.i++
		if p.i >= len(p.s) {
			return nil, p.errf("unterminated escape")
		}
		e := p.s[p.i]
		p.i++
		switch e {
		case 'n':
			writeByteVal('\n')
		case 't':
			writeByteVal('\t')
		case 'r':
			writeByteVal('\r')
		case '0':
			writeByteVal(0)
		case '\\', '\'', '"':
			writeByteVal(e)
		case 'x':
			if p.i+2 > len(p.s) {
				return nil, p.errf("truncated \\x escape")
			}
			n, err := strconv.ParseUint(p.s[p.i:p.i+2], 16, 8)
			if err != nil {
				return nil, p.errf("bad \\x escape")
			}
			p.i += 2
			writeByteVal(byte(n))
		case 'u':
			if isBytes {
				return nil, p.errf("\\u escape in bytes literal")
			}
			if p.i+4 > len(p.s) {
				return nil, p.errf("truncated \\u escape")
			}
			n, err := strconv.ParseUint(p.s[p.i:p.i+4], 16, 32)
			if err != nil {
				return nil, p.errf("bad \\u escape")
			}
			p.i += 4
			sb.WriteRune(rune(n))
		default:
			return nil, p.errf("unknown escape \\%s", string(e))
		}
	}
	if isBytes {
		return bb, nil
	}
	return sb.String(), nil
}

func (p *litParser) parseTuple() (any, error) {
	p.i++ // '('
	elems := []any{}
	sawComma := false
	for {
		p.skipSpace()
		if p.i >= len(p.s) {
			return nil, p.errf("unterminated tuple")
		}
		if p.s[p.i] == ')' {
			p.i++
			break
		}
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		elems = append(elems, v)
		p.skipSpace()
		if p.i < len(p.s) && p.s[p.i] == ',' {
			sawComma = true
			p.i++
			continue
		}
		if p.i < len(p.s) && p.s[p.i] == ')' {
			p.i++
			break
		}
		return nil, p.errf("expected ',' or ')' in tuple")
	}
	if len(elems) == 1 && !sawComma {
		// (x) is just a parenthesized value, only (x,) is a tuple
		return elems[0], nil
	}
	return Tuple(elems), nil
}

func (p *litParser) parseList() (any, error) {
	p.i++ // '['
	elems := []any{}
	for {
		p.skipSpace()
		if p.i >= len(p.s) {
			return nil, p.errf("unterminated list")
		}
		if p.s[p.i] == ']' {
			p.i++
			return elems, nil
		}
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		elems = append(elems, v)
		p.skipSpace()
		if p.i < len(p.s) && p.s[p.i] == ',' {
			p.i++
			continue
		}
		if p.i < len(p.s) && p.s[p.i] == ']' {
			p.i++
			return elems, nil
		}
		return nil, p.errf("expected ',' or ']' in list")
	}
}

func (p *litParser) parseSetOrDict() (any, error) {
	p.i++ // '{'
	p.skipSpace()
	if p.i < len(p.s) && p.s[p.i] == '}' {
		p.i++
		return Dict{}, nil
	}
	first, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.i < len(p.s) && p.s[p.i] == ':' {
		return p.parseDictRest(first)
	}
	return p.parseSetRest(first)
}

func (p *litParser) parseDictRest(key any) (any, error) {
	d := Dict{}
	for {
		if !hashable(key) {
			return nil, p.errf("unhashable dict key")
		}
		if err := p.expect(':'); err != nil {
			return nil, err
		}
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		d[key] = v
		p.skipSpace()
		if p.i < len(p.s) && p.s[p.i] == ',' {
			p.i++
			p.skipSpace()
			if p.i < len(p.s) && p.s[p.i] == '}' {
				p.i++
				return d, nil
			}
			key, err = p.parseValue()
			if err != nil {
				return nil, err
			}
			continue
		}
		if p.i < len(p.s) && p.s[p.i] == '}' {
			p.i++
			return d, nil
		}
		return nil, p.errf("expected ',' or '}' in dict")
	}
}

func (p *litParser) parseSetRest(v any) (any, error) {
	set := Set{}
	for {
		if !hashable(v) {
			return nil, p.errf("unhashable set element")
		}
		set[v] = struct{}{}
		p.skipSpace()
		if p.i < len(p.s) && p.s[p.i] == ',' {
			p.i++
			p.skipSpace()
			if p.i < len(p.s) && p.s[p.i] == '}' {
				p.i++
				return set, nil
			}
			var err error
			v, err = p.parseValue()
			if err != nil {
				return nil, err
			}
			continue
		}
		if p.i < len(p.s) && p.s[p.i] == '}' {
			p.i++
			return set, nil
		}
		return nil, p.errf("expected ',' or '}' in set")
	}
}
