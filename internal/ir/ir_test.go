package ir

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonicalBasic(t *testing.T) {
	tests := []struct {
		name     string
		input    IRValue
		expected string
	}{
		{"string", IRString("hello"), `"hello"`},
		{"empty string", IRString(""), `""`},
		{"int", IRInt(42), "42"},
		{"negative int", IRInt(-100), "-100"},
		{"min int64", IRInt(-9223372036854775808), "-9223372036854775808"},
		{"bool", IRBool(true), "true"},
		{"empty array", IRArray{}, "[]"},
		{"empty object", IRObject{}, "{}"},
		{"array", IRArray{IRInt(1), IRString("a")}, `[1,"a"]`},
		{"sorted keys", IRObject{"zebra": IRInt(1), "alpha": IRInt(2)}, `{"alpha":2,"zebra":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MarshalCanonical(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(got))
		})
	}
}

func TestMarshalCanonicalStrings(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"no html escaping", "<a>&", `"<a>&"`},
		{"quote and backslash", `"\`, `"\"\\"`},
		{"newline", "a\nb", `"a\nb"`},
		{"control", "\x01", `"\u0001"`},
		{"line separator kept", "\u2028", "\"\u2028\""},
		{"nfc", "e\u0301", "\"\u00e9\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MarshalCanonical(IRString(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(got))
		})
	}
}

func TestSortedKeysUTF16(t *testing.T) {
	// U+1F600 encodes as surrogates D83D DE00, which sort before U+FB01 in
	// UTF-16 but after it in UTF-8.
	obj := IRObject{"\uFB01": IRInt(1), "\U0001F600": IRInt(2)}
	assert.Equal(t, []string{"\U0001F600", "\uFB01"}, obj.SortedKeys())
}

func TestMarshalCanonicalRejectsNull(t *testing.T) {
	_, err := MarshalCanonical(IRObject{"a": nil})
	assert.Error(t, err)
}

func leaf(typ, summary string) Node {
	return Node{SubjectType: typ, Display: "", Summary: summary, Ancestry: "not_applicable", Children: []Edge{}}
}

func sampleNode() Node {
	shape := Node{SubjectType: "Shape", Ancestry: "not_applicable", Children: []Edge{
		{Label: "id", Labeled: true, Node: leaf("Int", "7")},
	}}
	return Node{
		SubjectType: "Square",
		Display:     "reference_object",
		Summary:     "Square",
		Ancestry:    "generated",
		Children:    []Edge{{Label: "side", Labeled: true, Node: leaf("Int", "3")}},
		Ancestor:    &shape,
	}
}

func TestNodeIR(t *testing.T) {
	n := sampleNode()
	got, err := MarshalCanonical(n.IR())
	require.NoError(t, err)

	var decoded Node
	require.NoError(t, json.Unmarshal(got, &decoded))
	assert.Equal(t, n, decoded)

	assert.NotContains(t, string(got), "truncated")
	assert.NotContains(t, string(got), "cycle")
}

func TestNodeHash(t *testing.T) {
	a := sampleNode()
	b := sampleNode()
	assert.Equal(t, MustNodeHash(a), MustNodeHash(b))
	assert.Len(t, MustNodeHash(a), 64)

	b.Children[0].Node.Summary = "4"
	assert.NotEqual(t, MustNodeHash(a), MustNodeHash(b))

	c := sampleNode()
	c.Truncated = true
	assert.NotEqual(t, MustNodeHash(a), MustNodeHash(c))
}

func TestSnapshotID(t *testing.T) {
	n := sampleNode()
	id1, err := SnapshotID("s-1", 1, "side", n)
	require.NoError(t, err)
	id2, err := SnapshotID("s-1", 1, "side", n)
	require.NoError(t, err)
	assert.Equal(t, id1, id2)

	other, err := SnapshotID("s-1", 2, "side", n)
	require.NoError(t, err)
	assert.NotEqual(t, id1, other)
	assert.NotEqual(t, id1, MustNodeHash(n), "domains separate ids")
}

func TestChain(t *testing.T) {
	n := sampleNode()
	chain := n.Chain()
	require.Len(t, chain, 2)
	assert.Equal(t, "Square", chain[0].SubjectType)
	assert.Equal(t, "Shape", chain[1].SubjectType)
}

func TestNewSnapshot(t *testing.T) {
	n := sampleNode()
	snap, err := NewSnapshot("s-1", 3, "shapes/0", n)
	require.NoError(t, err)

	id, err := SnapshotID("s-1", 3, "shapes/0", n)
	require.NoError(t, err)
	assert.Equal(t, id, snap.ID)
	assert.Equal(t, MustNodeHash(n), snap.NodeHash)
	assert.Equal(t, int64(3), snap.Seq)
	assert.Equal(t, "shapes/0", snap.Path)
}
