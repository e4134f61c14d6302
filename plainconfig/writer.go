package plainconfig

import (
	"bytes"
	"io"
	"log/slog"
	"sort"
)

// Writer encodes a config mapping to an io.Writer, optionally merging
// it against the Structure captured by an earlier read so that key
// order, comments and blank lines survive the rewrite.
type Writer struct {
	w io.Writer

	// MaxLineLen is the width beyond which values are wrapped.
	// Zero or negative disables wrapping.
	MaxLineLen int

	// Continuations is the ordered candidate set of continuation
	// characters for wrapped values.
	Continuations string

	// RewriteOld re-emits, verbatim, key lines from the Structure
	// whose key is no longer in the mapping. Off by default: leaving
	// a key out of the mapping is how deletion is expressed.
	RewriteOld bool

	// Unsafe permits encoding opaque values through the Pickler.
	Unsafe bool

	// Pickler used for opaque values; GobPickler if nil.
	Pickler Pickler

	// Logger receives warnings (e.g. a value that could not be
	// wrapped). Nil discards them.
	Logger *slog.Logger
}

// NewWriter creates a Writer with default wrapping settings.
func NewWriter(w io.Writer) *Writer {
	return &Writer{
		w:             w,
		MaxLineLen:    DefaultMaxLineLen,
		Continuations: DefaultContinuations,
	}
}

// WriteAll writes the mapping. Keys present in structure are written
// at their original positions with their new values; comments and
// blank lines are re-emitted verbatim; invalid lines are dropped.
// Keys not in the structure are appended in sorted order. A nil
// structure writes a fresh file.
//
// Key-shape violations are reported before any output is produced.
func (w *Writer) WriteAll(db map[string]any, structure *Structure) error {
	for k := range db {
		if err := validateKey(k); err != nil {
			return err
		}
	}

	remaining := make(map[string]any, len(db))
	for k, v := range db {
		remaining[k] = v
	}

	if structure != nil {
		for _, e := range structure.entries {
			switch e.kind {
			case entryComment:
				if err := w.writeRaw(e.raw); err != nil {
					return err
				}
			case entryInvalid:
				// content we couldn't trust is not round-tripped
			case entryKey:
				if v, ok := remaining[e.key]; ok {
					if err := w.writeKeyValue(e.key, v); err != nil {
						return err
					}
					delete(remaining, e.key)
				} else if w.RewriteOld {
					if err := w.writeRaw(e.raw); err != nil {
						return err
					}
				}
			}
		}
	}

	keys := make([]string, 0, len(remaining))
	for k := range remaining {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := w.writeKeyValue(k, remaining[k]); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) writeRaw(raw string) error {
	if raw == "" || raw[len(raw)-1] != '\n' {
		// the captured final line of a file may lack a terminator
		raw += "\n"
	}
	_, err := io.WriteString(w.w, raw)
	return err
}

func (w *Writer) writeKeyValue(key string, v any) error {
	modifier, payload, err := encodeValue(v, w.Unsafe, w.Pickler)
	if err != nil {
		return err
	}
	lines, ok := renderLines(key, modifier, payload, w.MaxLineLen, w.Continuations)
	if !ok {
		orDiscard(w.Logger).Warn("no usable continuation character, writing unsplit line",
			"key", key, "len", len(payload))
	}
	for _, ln := range lines {
		if _, err := io.WriteString(w.w, ln); err != nil {
			return err
		}
		if _, err := io.WriteString(w.w, "\n"); err != nil {
			return err
		}
	}
	return nil
}

// Marshal encodes the mapping to bytes. See Writer.WriteAll.
func Marshal(db map[string]any, structure *Structure) ([]byte, error) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	if err := w.WriteAll(db, structure); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
