package jsondata

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hupe1980/jsondata/ndarray"
)

func TestClassifyValue(t *testing.T) {
	var nilArray *ndarray.Array

	tests := []struct {
		name string
		data any
		want Kind
	}{
		{"nil", nil, KindScalar},
		{"string", "hello", KindScalar},
		{"int", 42, KindScalar},
		{"struct", struct{ X int }{1}, KindScalar},
		{"bytes", []byte("raw"), KindScalar},
		{"raw json", json.RawMessage(`{}`), KindScalar},
		{"nil array", nilArray, KindScalar},
		{"map", map[string]any{"a": 1}, KindMap},
		{"int keyed map", map[int]string{1: "a"}, KindMap},
		{"array", ndarray.Vector(1, 2), KindArray},
		{"array value", *ndarray.Vector(1), KindArray},
		{"array list", []*ndarray.Array{ndarray.Vector(1)}, KindArrayList},
		{"empty array list", []*ndarray.Array{}, KindArrayList},
		{"any list of arrays", []any{ndarray.Vector(1)}, KindArrayList},
		{"records", []any{1, "a"}, KindRecords},
		{"empty records", []any{}, KindRecords},
		{"typed records", []map[string]int{{"x": 1}}, KindRecords},
		{"go array", [2]int{1, 2}, KindRecords},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyValue(tt.data))
		})
	}
}

func TestFormatOf(t *testing.T) {
	assert.Equal(t, FormatArchive, FormatOf("out/layers.npy.list.npz"))
	assert.Equal(t, FormatArray, FormatOf("weights.npy.gz"))
	assert.Equal(t, FormatArray, FormatOf("weights.npy"))
	assert.Equal(t, FormatArray, FormatOf("weights.npy.zst"))
	assert.Equal(t, FormatRecords, FormatOf("people.txt"))
	assert.Equal(t, FormatRecords, FormatOf("noext"))
}

func TestSiblingName(t *testing.T) {
	assert.Equal(t, "out-a.txt", SiblingName("out.txt", "a"))
	assert.Equal(t, "out-a", SiblingName("out", "a"))
	assert.Equal(t, "dir.v1/out-a", SiblingName("dir.v1/out", "a"))
	assert.Equal(t, "out.tar-a.gz", SiblingName("out.tar.gz", "a"))
	assert.Equal(t, "out-a-b.txt", SiblingName(SiblingName("out.txt", "a"), "b"))
}

func TestSiblingKey(t *testing.T) {
	tests := []struct {
		rest, ext string
		key       string
		ok        bool
	}{
		{"a.txt", ".txt", "a", true},
		{"a.txt.npy.gz", ".txt", "a", true},
		{"a.txt.npy", ".txt", "a", true},
		{"a.txt.npy.list.npz", ".txt", "a", true},
		{"a.b.txt", ".txt", "a.b", true},
		{"a", "", "a", true},
		{"a.npy.zst", "", "a", true},
		{"a.csv", ".txt", "", false},
		{".txt", ".txt", "", false},
		{"sub/a.txt", ".txt", "", false},
	}
	for _, tt := range tests {
		key, ok := siblingKey(tt.rest, tt.ext)
		assert.Equal(t, tt.ok, ok, tt.rest)
		assert.Equal(t, tt.key, key, tt.rest)
	}
}

func TestKindAndFormatString(t *testing.T) {
	assert.Equal(t, "array-list", KindArrayList.String())
	assert.Equal(t, "scalar", KindScalar.String())
	assert.Equal(t, "archive", FormatArchive.String())
	assert.Equal(t, "records", FormatRecords.String())
}
