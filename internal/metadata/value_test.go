package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func decodeNode(t *testing.T, doc string) *yaml.Node {
	t.Helper()
	var n yaml.Node
	require.NoError(t, yaml.Unmarshal([]byte(doc), &n))
	return &n
}

func TestValueFromNode_Scalars(t *testing.T) {
	cases := []struct {
		doc  string
		kind ValueKind
		want any
	}{
		{"hello", KindString, "hello"},
		{"42", KindInt, int64(42)},
		{"0x10", KindInt, int64(16)},
		{"3.5", KindFloat, 3.5},
		{"true", KindBool, true},
		{"~", KindNull, nil},
		{"2024-03-05T09:30:00Z", KindString, "2024-03-05T09:30:00Z"},
	}
	for _, tc := range cases {
		t.Run(tc.doc, func(t *testing.T) {
			v, err := ValueFromNode(decodeNode(t, tc.doc))
			require.NoError(t, err)
			assert.Equal(t, tc.kind, v.Kind())
			assert.Equal(t, tc.want, v.Interface())
		})
	}
}

func TestFieldsFromNode_PreservesOrder(t *testing.T) {
	fields, err := FieldsFromNode(decodeNode(t, "zeta: 1\nalpha: 2\nmid: 3\n"), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, fields.Keys())
}

func TestFieldsFromNode_MergeKeys(t *testing.T) {
	doc := "base: &b {x: 1, y: 2}\nchild:\n  <<: *b\n  y: 3\n"
	fields, err := FieldsFromNode(decodeNode(t, doc), nil)
	require.NoError(t, err)

	child, ok := fields.Get("child")
	require.True(t, ok)
	assert.Equal(t, map[string]any{"x": int64(1), "y": int64(3)}, child.Interface())
}

func TestFieldsFromNode_Skip(t *testing.T) {
	fields, err := FieldsFromNode(decodeNode(t, "a: 1\nb: 2\n"), func(k string) bool { return k == "a" })
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, fields.Keys())
}

func TestFieldsFromNode_NotMapping(t *testing.T) {
	_, err := FieldsFromNode(decodeNode(t, "- a\n"), nil)
	require.Error(t, err)
}

func TestFields_SetKeepsPosition(t *testing.T) {
	var f Fields
	f.Set("a", Int(1))
	f.Set("b", Int(2))
	f.Set("a", String("again"))

	assert.Equal(t, []string{"a", "b"}, f.Keys())
	v, _ := f.Get("a")
	assert.Equal(t, "again", v.String())
}

func TestValue_String(t *testing.T) {
	assert.Equal(t, "", Null().String())
	assert.Equal(t, "x", String("x").String())
	assert.Equal(t, "7", Int(7).String())
	assert.Equal(t, "true", Bool(true).String())
	assert.Equal(t, "[1 a]", List(Int(1), String("a")).String())
}
