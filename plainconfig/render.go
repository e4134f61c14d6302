package plainconfig

import (
	"strings"
	"unicode/utf8"
)

const (
	// DefaultMaxLineLen is the width beyond which values are wrapped
	// over multiple physical lines.
	DefaultMaxLineLen = 72

	// DefaultContinuations are the candidate continuation characters,
	// tried in order. '=' and '/' are excluded on purpose: they would
	// confuse the key/modifier split when the wrapped line is read
	// back. The first one not present anywhere in the payload wins.
	DefaultContinuations = `\&@~^|!%`
)

// characters we prefer to break a wrapped line after, to avoid
// splitting mid-token
func isNiceBreak(c byte) bool {
	switch c {
	case ' ', ']', ')', '}', ',', ';', '-', '+', '\n', '\t':
		return true
	}
	return false
}

func formatLine(key, modifier, payload string) string {
	if modifier == "" {
		return key + "=" + payload
	}
	return key + "/" + modifier + "=" + payload
}

// breakPoint picks where to cut the next segment of payload, given a
// budget of cutAt bytes. It scans back from cutAt toward cutAt*3/4
// for a nice break character, then makes sure the cut doesn't land in
// the middle of a utf-8 sequence.
func breakPoint(payload string, cutAt int) int {
	lo := cutAt * 3 / 4
	if cutAt-lo >= 4 {
		for i := cutAt; i > lo; i-- {
			if isNiceBreak(payload[i-1]) {
				return i
			}
		}
	}
	cut := cutAt
	for cut > 1 && !utf8.RuneStart(payload[cut]) {
		cut--
	}
	return cut
}

// renderLines turns (key, modifier, payload) into physical lines
// without terminators. The second return is false when the payload
// needed wrapping but every continuation candidate occurred in it, in
// which case a single over-long line is emitted (degraded, not fatal).
func renderLines(key, modifier, payload string, maxLen int, continuations string) ([]string, bool) {
	if maxLen <= 0 || len(key)+len(modifier)+len(payload)+2 < maxLen {
		return []string{formatLine(key, modifier, payload)}, true
	}

	var cont byte
	for i := 0; i < len(continuations); i++ {
		if strings.IndexByte(payload, continuations[i]) < 0 {
			cont = continuations[i]
			break
		}
	}
	if cont == 0 {
		return []string{formatLine(key, modifier, payload)}, false
	}

	// the decoder must undo the continuation before anything else,
	// so C<char> goes first in the modifier chain
	modifier = "C" + string(cont) + modifier

	var lines []string
	budget := maxLen - (len(key) + len(modifier) + 2)
	if budget < 2 {
		budget = 2
	}
	rest := payload
	first := true
	for {
		if len(rest) <= budget {
			if first {
				lines = append(lines, formatLine(key, modifier, rest))
			} else {
				lines = append(lines, rest)
			}
			return lines, true
		}
		cut := breakPoint(rest, budget)
		seg := rest[:cut] + string(cont)
		if first {
			lines = append(lines, formatLine(key, modifier, seg))
			first = false
			budget = maxLen
			if budget < 2 {
				budget = 2
			}
		} else {
			lines = append(lines, seg)
		}
		rest = rest[cut:]
	}
}
