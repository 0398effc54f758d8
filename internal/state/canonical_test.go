package state

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
		{"int", 42, "42"},
		{"negative int", -7, "-7"},
		{"bool", true, "true"},
		{"null", nil, "null"},
		{"empty array", []int{}, "[]"},
		{"sorted keys", map[string]int{"zebra": 1, "alpha": 2, "beta": 3}, `{"alpha":2,"beta":3,"zebra":1}`},
		{"no html escape", "<a & b>", `"<a & b>"`},
		{"control char", "a\u0001b", `"a\u0001b"`},
		{"line separator kept", "a\u2028b", "\"a\u2028b\""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := MarshalCanonical(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))
		})
	}
}

func TestMarshalCanonicalRejectsFloats(t *testing.T) {
	_, err := MarshalCanonical(map[string]float64{"x": 1.5})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-integer")
}

func TestMarshalCanonicalNFC(t *testing.T) {
	// "e" + combining acute accent normalizes to a single code point.
	decomposed := "cafe\u0301"
	composed := "caf\u00e9"

	a, err := MarshalCanonical(decomposed)
	require.NoError(t, err)
	b, err := MarshalCanonical(composed)
	require.NoError(t, err)
	assert.Equal(t, string(b), string(a))
}

func TestCompareUTF16(t *testing.T) {
	// U+1F600 sorts after U+E000 by UTF-8 bytes but before it by UTF-16
	// code units, since its surrogate pair starts at 0xD83D.
	assert.Negative(t, compareUTF16("\U0001F600", "\uE000"))
	assert.Zero(t, compareUTF16("a", "a"))
	assert.Positive(t, compareUTF16("b", "a"))
}

func TestDigestStable(t *testing.T) {
	doc := sampleDocument()

	d1, err := Digest(doc)
	require.NoError(t, err)
	d2, err := Digest(doc)
	require.NoError(t, err)

	assert.Equal(t, d1, d2)
	assert.Len(t, d1, 64)

	doc.Campaign.Credits++
	d3, err := Digest(doc)
	require.NoError(t, err)
	assert.NotEqual(t, d1, d3)
}
