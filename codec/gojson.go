package codec

import (
	"bytes"

	gojson "github.com/goccy/go-json"
)

// GoJSON is a JSON codec backed by github.com/goccy/go-json.
//
// Its output is byte-compatible with JSON, so files written by either codec
// read back with the other.
type GoJSON struct{}

func (GoJSON) Marshal(v any) ([]byte, error) { return gojson.Marshal(v) }

func (GoJSON) Unmarshal(data []byte, v any) error { return gojson.Unmarshal(data, v) }

// UnmarshalNumber decodes data into v keeping numbers as json.Number.
func (GoJSON) UnmarshalNumber(data []byte, v any) error {
	dec := gojson.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return decodeSingle(dec, v)
}

func (GoJSON) Name() string { return "go-json" }
