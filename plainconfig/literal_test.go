package plainconfig

import (
	"math"
	"testing"

	"github.com/kjk/common/assert"
	"github.com/kjk/common/require"
)

func TestParseLiteralScalars(t *testing.T) {
	tests := []struct {
		in  string
		exp any
	}{
		{"None", nil},
		{"True", true},
		{"False", false},
		{"42", int64(42)},
		{"-7", int64(-7)},
		{"+3", int64(3)},
		{"3.14", 3.14},
		{"-0.5", -0.5},
		{"1e3", 1000.0},
		{"2.5e-2", 0.025},
		{"inf", math.Inf(1)},
		{"-inf", math.Inf(-1)},
		{"'abc'", "abc"},
		{`"abc"`, "abc"},
		{"''", ""},
		{`'a\nb'`, "a\nb"},
		{`'a\tb\rc'`, "a\tb\rc"},
		{`'it\'s'`, "it's"},
		{`'back\\slash'`, `back\slash`},
		{`'\x00'`, "\x00"},
		{`'é'`, "é"},
		{"'你好'", "你好"},
		{`b''`, []byte{}},
		{`b'abc'`, []byte("abc")},
		{`b'\x00\x01\xff'`, []byte{0, 1, 0xff}},
		{"  42  ", int64(42)},
	}
	for _, test := range tests {
		got, err := ParseLiteral(test.in)
		require.NoError(t, err, "in: %q", test.in)
		assert.Equal(t, test.exp, got, "in: %q", test.in)
	}
}

func TestParseLiteralContainers(t *testing.T) {
	tests := []struct {
		in  string
		exp any
	}{
		{"()", Tuple{}},
		{"(1,)", Tuple{int64(1)}},
		{"(1)", int64(1)}, // parenthesized scalar, not a tuple
		{"(1, 'two', 3.0)", Tuple{int64(1), "two", 3.0}},
		{"[]", []any{}},
		{"[1, 2, 3]", []any{int64(1), int64(2), int64(3)}},
		{"[1, 2, 3,]", []any{int64(1), int64(2), int64(3)}},
		{"['a', [1, 2], (True,)]", []any{"a", []any{int64(1), int64(2)}, Tuple{true}}},
		{"{}", Dict{}},
		{"set()", Set{}},
		{"{1, 2, 3}", NewSet(int64(1), int64(2), int64(3))},
		{"{'k': 'v'}", Dict{"k": "v"}},
		{"{'a': 1, 'b': [2, 3]}", Dict{"a": int64(1), "b": []any{int64(2), int64(3)}}},
		{"{'nested': {'key': 'value'}}", Dict{"nested": Dict{"key": "value"}}},
	}
	for _, test := range tests {
		got, err := ParseLiteral(test.in)
		require.NoError(t, err, "in: %q", test.in)
		assert.Equal(t, test.exp, got, "in: %q", test.in)
	}
}

func TestParseLiteralErrors(t *testing.T) {
	invalid := []string{
		"",
		"foo",
		"'abc",
		`'bad \q escape'`,
		"b'\\u0041'",
		"[1",
		"[1 2]",
		"{1: 2",
		"{1: }",
		"1 2",
		"(1,]",
		"42abc",
		"--1",
		"__import__('os')",
		"1+2",
		"{[1]: 2}", // unhashable key
		"{[1, 2]}", // unhashable set element
		"set(",
		"set(1)",
	}
	for _, s := range invalid {
		_, err := ParseLiteral(s)
		assert.Error(t, err, "in: %q", s)
	}
}

func TestReprRoundTrip(t *testing.T) {
	vals := []any{
		nil,
		true,
		false,
		int64(0),
		int64(-12345),
		3.5,
		-0.25,
		1000.0,
		1e21,
		math.Inf(1),
		"plain",
		"with 'quotes' and \"doubles\"",
		"tab\there",
		"line1\nline2",
		"控制\x00字符",
		[]byte("raw bytes \x00\xff"),
		Tuple{},
		Tuple{int64(1)},
		Tuple{int64(1), "two", 3.0},
		[]any{},
		[]any{int64(1), []any{int64(2), int64(3)}},
		Set{},
		NewSet(int64(1), int64(2)),
		Dict{},
		Dict{"k": "v", int64(1): Tuple{true, nil}},
	}
	for _, v := range vals {
		s := reprValue(v)
		got, err := ParseLiteral(s)
		require.NoError(t, err, "repr: %q", s)
		assert.Equal(t, v, got, "repr: %q", s)
	}
}

func TestReprDeterministic(t *testing.T) {
	// sets and dicts iterate in random order, repr must not
	s := NewSet(int64(3), int64(1), int64(2))
	for range 10 {
		assert.Equal(t, "{1, 2, 3}", reprValue(s))
	}
	d := Dict{"b": int64(2), "a": int64(1)}
	for range 10 {
		assert.Equal(t, "{'a': 1, 'b': 2}", reprValue(d))
	}
	assert.Equal(t, "set()", reprValue(Set{}))
	assert.Equal(t, "{}", reprValue(Dict{}))
}

func TestFormatFloat(t *testing.T) {
	assert.Equal(t, "30.5", formatFloat(30.5))
	assert.Equal(t, "3.0", formatFloat(3.0))
	assert.Equal(t, "1e+21", formatFloat(1e21))
	assert.Equal(t, "inf", formatFloat(math.Inf(1)))
	assert.Equal(t, "-inf", formatFloat(math.Inf(-1)))
	assert.Equal(t, "nan", formatFloat(math.NaN()))
}
