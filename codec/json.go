package codec

import (
	"bytes"
	"encoding/json"
)

// JSON is the encoding/json codec. Custom encodings implement Codec and are
// passed with jsondata.WithCodec.
type JSON struct{}

// Marshal encodes the value to JSON.
func (JSON) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

// Unmarshal decodes the JSON data into v.
func (JSON) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// UnmarshalNumber decodes data into v keeping numbers as json.Number.
func (JSON) UnmarshalNumber(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return decodeSingle(dec, v)
}

// Name returns the unique name of the codec ("json").
func (JSON) Name() string { return "json" }
