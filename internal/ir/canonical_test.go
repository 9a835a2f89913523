package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonicalBasic(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected string
	}{
		{"string", "hello", `"hello"`},
		{"empty string", "", `""`},
		{"int", 42, "42"},
		{"negative int", -100, "-100"},
		{"max uint64", uint64(18446744073709551615), "18446744073709551615"},
		{"float", 3.14, "3.14"},
		{"null", nil, "null"},
		{"bool true", true, "true"},
		{"empty array", []any{}, "[]"},
		{"empty object", map[string]any{}, "{}"},
		{"array of ints", []int{1, 2, 3}, "[1,2,3]"},
		{"simple object", map[string]int{"a": 1}, `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := MarshalCanonical(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))
		})
	}
}

func TestMarshalCanonicalSortedKeys(t *testing.T) {
	obj := map[string]any{
		"zebra": 1,
		"alpha": 2,
		"beta":  map[string]any{"b": 1, "a": 2},
	}

	result, err := MarshalCanonical(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"alpha":2,"beta":{"a":2,"b":1},"zebra":1}`, string(result))
}

func TestMarshalCanonicalUTF16Ordering(t *testing.T) {
	// U+E000 vs U+10000: UTF-16 order differs from UTF-8.
	obj := map[string]any{
		"\uE000":     1,
		"\U00010000": 2,
	}

	result, err := MarshalCanonical(obj)
	require.NoError(t, err)

	// 0xD800 < 0xE000, so the surrogate pair sorts first.
	expected := "{\"\U00010000\":2,\"\uE000\":1}"
	assert.Equal(t, expected, string(result))
}

func TestMarshalCanonicalNoHTMLEscape(t *testing.T) {
	result, err := MarshalCanonical(map[string]any{"iri": "<a&b>"})
	require.NoError(t, err)
	assert.Equal(t, `{"iri":"<a&b>"}`, string(result))
}

func TestMarshalCanonicalNFC(t *testing.T) {
	// "e" + combining acute accent normalizes to U+00E9.
	result, err := MarshalCanonical("e\u0301")
	require.NoError(t, err)
	assert.Equal(t, "\"\u00e9\"", string(result))
}

func TestMarshalCanonicalLineSeparators(t *testing.T) {
	result, err := MarshalCanonical("a\u2028b\u2029c")
	require.NoError(t, err)
	assert.Equal(t, "\"a\u2028b\u2029c\"", string(result))

	// A literal backslash followed by u2028 text stays escaped.
	result, err = MarshalCanonical(`x\u2028`)
	require.NoError(t, err)
	assert.Equal(t, `"x\\u2028"`, string(result))
}

func TestMarshalCanonicalNode(t *testing.T) {
	n := Node{
		ID: NodeID{IRI: "n1"},
		Attributes: []KeyValue{
			KV(Str("name"), Str("alice")),
			KV(Str("knows"), Ref("n2")),
		},
	}
	n.Canonicalize()

	result, err := MarshalCanonical(n)
	require.NoError(t, err)
	expected := `{"attributes":[` +
		`{"key":{"data":{"str":"name"}},"value":{"data":{"str":"alice"}}},` +
		`{"key":{"data":{"str":"knows"}},"value":{"data":{"nodeid":{"iri":"n2"}}}}` +
		`],"fragments":[{},{},{}],"id":{"iri":"n1"}}`
	assert.Equal(t, expected, string(result))
}

func TestMarshalCanonicalDeterministic(t *testing.T) {
	obj := map[string]any{"b": []any{1, "x", nil}, "a": true, "c": map[string]any{"z": 1, "y": 2}}

	first, err := MarshalCanonical(obj)
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		again, err := MarshalCanonical(obj)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestCompareKeysRFC8785(t *testing.T) {
	assert.Equal(t, 0, compareKeysRFC8785("a", "a"))
	assert.Equal(t, -1, compareKeysRFC8785("a", "b"))
	assert.Equal(t, 1, compareKeysRFC8785("ab", "a"))
	assert.Equal(t, -1, compareKeysRFC8785("\U00010000", "\uE000"))
}
