package plainconfig

import (
	"strings"
	"testing"

	"github.com/kjk/common/assert"
	"github.com/kjk/common/require"
)

func TestRenderSingleLine(t *testing.T) {
	lines, ok := renderLines("key", "", "value", DefaultMaxLineLen, DefaultContinuations)
	assert.True(t, ok)
	assert.Equal(t, []string{"key=value"}, lines)

	lines, ok = renderLines("port", "i", "8080", DefaultMaxLineLen, DefaultContinuations)
	assert.True(t, ok)
	assert.Equal(t, []string{"port/i=8080"}, lines)

	// wrapping disabled
	long := strings.Repeat("x", 500)
	lines, ok = renderLines("k", "", long, 0, DefaultContinuations)
	assert.True(t, ok)
	assert.Equal(t, []string{"k=" + long}, lines)
}

func TestRenderWrap(t *testing.T) {
	lines, ok := renderLines("k", "", "aaaaaaaaaa", 8, "&")
	assert.True(t, ok)
	assert.Equal(t, []string{"k/C&=aaa&", "aaaaaaa"}, lines)
}

func TestRenderNiceBreak(t *testing.T) {
	// prefers to cut after the space instead of mid-word
	lines, ok := renderLines("k", "", "aaaaaaaaaaaaa bbbbbbbbbbbbbb", 20, "&")
	assert.True(t, ok)
	assert.Equal(t, []string{"k/C&=aaaaaaaaaaaaa &", "bbbbbbbbbbbbbb"}, lines)
}

func TestRenderCandidateSelection(t *testing.T) {
	// first candidate occurs in the payload, second one is picked
	payload := strings.Repeat("a&a", 20)
	lines, ok := renderLines("k", "", payload, 16, "&@")
	assert.True(t, ok)
	assert.True(t, len(lines) > 1)
	assert.True(t, strings.HasPrefix(lines[0], "k/C@="))
}

func TestRenderNoCandidate(t *testing.T) {
	// every candidate occurs in the payload: degraded single line
	payload := "&@" + strings.Repeat("a", 100)
	lines, ok := renderLines("k", "", payload, 16, "&@")
	assert.False(t, ok)
	assert.Equal(t, []string{"k=" + payload}, lines)
}

func TestRenderWrapModifierOrder(t *testing.T) {
	// C<char> must come before the value's own modifier chain
	payload := strings.Repeat("A", 100)
	lines, ok := renderLines("blob", "32", payload, 24, "&")
	assert.True(t, ok)
	assert.True(t, strings.HasPrefix(lines[0], "blob/C&32="))
}

func TestRenderUtf8Boundary(t *testing.T) {
	// cuts never land inside a multi-byte rune
	payload := strings.Repeat("é", 40) // 2 bytes each
	lines, ok := renderLines("k", "", payload, 11, "&")
	assert.True(t, ok)
	require.True(t, len(lines) > 1)
	var joined strings.Builder
	for _, ln := range lines {
		assert.True(t, strings.HasSuffix(ln, "&") || ln == lines[len(lines)-1])
		trimmed := strings.TrimSuffix(ln, "&")
		trimmed = strings.TrimPrefix(trimmed, "k/C&=")
		assert.True(t, strings.HasPrefix(trimmed, "é") || trimmed == "")
		joined.WriteString(trimmed)
	}
	assert.Equal(t, payload, joined.String())
}
