package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	ID    uint64            `json:"id"`
	Title string            `json:"title"`
	Tags  []string          `json:"tags"`
	Attrs map[string]string `json:"attrs"`
}

func TestByName(t *testing.T) {
	c, ok := ByName("json")
	require.True(t, ok)
	assert.Equal(t, "json", c.Name())

	c, ok = ByName("go-json")
	require.True(t, ok)
	assert.Equal(t, "go-json", c.Name())

	c, ok = ByName("")
	require.True(t, ok)
	assert.Equal(t, Default, c)

	_, ok = ByName("msgpack")
	assert.False(t, ok)

	assert.Equal(t, []string{"go-json", "json"}, Names())
}

func TestCodecsAreCompatible(t *testing.T) {
	in := record{ID: 7, Title: "hello", Tags: []string{"a", "b"}, Attrs: map[string]string{"k": "v"}}

	for _, enc := range []Codec{JSON{}, GoJSON{}} {
		for _, dec := range []Codec{JSON{}, GoJSON{}} {
			t.Run(enc.Name()+"->"+dec.Name(), func(t *testing.T) {
				var out record
				data, err := enc.Marshal(in)
				require.NoError(t, err)
				require.NoError(t, dec.Unmarshal(data, &out))
				assert.Equal(t, in, out)
			})
		}
	}
}

func TestDecodeValue_Numbers(t *testing.T) {
	data := []byte(`{"i":1,"f":2.5,"big":9007199254740993,"list":[1,2.0,"x"],"nested":{"n":-3}}`)

	for _, c := range []Codec{JSON{}, GoJSON{}} {
		t.Run(c.Name(), func(t *testing.T) {
			v, err := DecodeValue(c, data)
			require.NoError(t, err)
			assert.Equal(t, map[string]any{
				"i":      int64(1),
				"f":      2.5,
				"big":    int64(9007199254740993),
				"list":   []any{int64(1), 2.0, "x"},
				"nested": map[string]any{"n": int64(-3)},
			}, v)
		})
	}
}

func TestDecodeValue_Scalar(t *testing.T) {
	v, err := DecodeValue(nil, []byte(`"text"`))
	require.NoError(t, err)
	assert.Equal(t, "text", v)

	_, err = DecodeValue(nil, []byte(`{`))
	assert.Error(t, err)
}

func TestDecodeValue_TrailingData(t *testing.T) {
	for _, c := range []Codec{JSON{}, GoJSON{}} {
		t.Run(c.Name(), func(t *testing.T) {
			_, err := DecodeValue(c, []byte(`{"x":1} garbage`))
			assert.ErrorIs(t, err, ErrTrailingData)

			for _, line := range []string{`2 3`, `1,`} {
				_, err = DecodeValue(c, []byte(line))
				assert.ErrorIs(t, err, ErrTrailingData, line)
			}
			for _, line := range []string{`{"x":1}}`, `[1]]`} {
				_, err = DecodeValue(c, []byte(line))
				assert.Error(t, err, line)
			}

			v, err := DecodeValue(c, []byte("{\"x\":1}  \t"))
			require.NoError(t, err)
			assert.Equal(t, map[string]any{"x": int64(1)}, v)
		})
	}
}

func TestMarshal_Unsupported(t *testing.T) {
	for _, c := range []Codec{JSON{}, GoJSON{}} {
		_, err := c.Marshal(make(chan int))
		assert.Error(t, err, c.Name())
	}
}
