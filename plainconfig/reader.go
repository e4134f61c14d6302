package plainconfig

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

type entryKind uint8

const (
	entryKey     entryKind = iota // a decoded key line
	entryComment                  // comment or blank line, re-emitted verbatim
	entryInvalid                  // malformed or undecodable, never re-emitted
)

type structureEntry struct {
	kind     entryKind
	key      string
	modifier string
	// the original physical line(s) including terminators; for a
	// continued value this is the whole reassembled record
	raw string
}

// Structure records the physical layout of a parsed file: which line
// holds which key, where comments and blank lines sit, and which lines
// were unusable. It is an opaque round-trip token: get one from a
// Reader, pass it back to a Writer unmodified. A nil Structure means
// "fresh file".
type Structure struct {
	entries []structureEntry
}

// Len returns the number of physical records (key lines, comments,
// blanks and invalid lines) captured from the source.
func (s *Structure) Len() int {
	if s == nil {
		return 0
	}
	return len(s.entries)
}

// Keys returns the keys of successfully decoded lines in file order.
func (s *Structure) Keys() []string {
	if s == nil {
		return nil
	}
	var keys []string
	for _, e := range s.entries {
		if e.kind == entryKey {
			keys = append(keys, e.key)
		}
	}
	return keys
}

// Reader decodes a config file from a bufio.Reader.
type Reader struct {
	r *bufio.Reader

	// Unsafe enables the "p" modifier (opaque deserialization).
	// Leave it off unless the input is trusted.
	Unsafe bool

	// Pickler used for the "p" modifier; GobPickler if nil.
	Pickler Pickler

	// Logger receives warnings about lines that could not be decoded.
	// Nil discards them.
	Logger *slog.Logger
}

// NewReader creates a new Reader.
func NewReader(r *bufio.Reader) *Reader {
	return &Reader{r: r}
}

// ReadAll consumes the whole source and returns the decoded mapping
// plus the file's Structure. Malformed lines are logged, captured in
// the Structure and skipped; they never abort the read. The only
// fatal content error is a continuation cut short by end of input
// (ErrUnexpectedEndOfInput).
func (r *Reader) ReadAll() (map[string]any, *Structure, error) {
	db := map[string]any{}
	s := &Structure{}
	log := orDiscard(r.Logger)
	for {
		raw, err := r.r.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, nil, err
		}
		if raw != "" {
			if perr := r.parseLine(raw, db, s, log); perr != nil {
				return nil, nil, perr
			}
		}
		if err == io.EOF {
			return db, s, nil
		}
	}
}

// parseLine handles one physical line, pulling more lines from the
// source if the value is continued. Returns an error only for fatal
// conditions; everything else is contained in the structure.
func (r *Reader) parseLine(raw string, db map[string]any, s *Structure, log *slog.Logger) error {
	line := strings.TrimRight(raw, "\r\n")

	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		s.entries = append(s.entries, structureEntry{kind: entryComment, raw: raw})
		return nil
	}

	eq := strings.IndexByte(line, '=')
	if eq < 0 {
		log.Warn("ignoring line without '='", "line", line)
		s.entries = append(s.entries, structureEntry{kind: entryInvalid, raw: raw})
		return nil
	}
	keyPart, value := line[:eq], line[eq+1:]
	key, modifier := keyPart, ""
	if i := strings.IndexByte(keyPart, '/'); i >= 0 {
		key, modifier = keyPart[:i], keyPart[i+1:]
	}
	origModifier := modifier

	// C<char> signals a continued value and is always first in the
	// chain. Reassemble the payload before decoding anything: while
	// the in-progress value ends with the continuation character,
	// replace it with the next line's content.
	if strings.HasPrefix(modifier, "C") {
		if len(modifier) < 2 {
			log.Warn("continuation modifier without a character", "line", line)
			s.entries = append(s.entries, structureEntry{kind: entryInvalid, raw: raw})
			return nil
		}
		cont := modifier[1]
		modifier = modifier[2:]
		for len(value) > 0 && value[len(value)-1] == cont {
			next, err := r.r.ReadString('\n')
			if err != nil && err != io.EOF {
				return err
			}
			if next == "" {
				return fmt.Errorf("%w: key %q", ErrUnexpectedEndOfInput, key)
			}
			raw += next
			value = value[:len(value)-1] + strings.TrimRight(next, "\r\n")
		}
	}

	v, err := decodeValue(modifier, value, r.Unsafe, r.Pickler)
	if err != nil {
		log.Warn("cannot decode line", "key", key, "modifier", origModifier, "err", err)
		s.entries = append(s.entries, structureEntry{kind: entryInvalid, raw: raw})
		return nil
	}
	db[key] = v
	s.entries = append(s.entries, structureEntry{
		kind:     entryKey,
		key:      key,
		modifier: origModifier,
		raw:      raw,
	})
	return nil
}

// Unmarshal decodes an in-memory config file. See Reader.ReadAll.
func Unmarshal(d []byte) (map[string]any, *Structure, error) {
	r := NewReader(bufio.NewReader(bytes.NewReader(d)))
	return r.ReadAll()
}
