package codec

import (
	"errors"
	"fmt"
	"io"
)

// ErrTrailingData is returned when a record is followed by more input.
var ErrTrailingData = errors.New("codec: trailing data after value")

type streamDecoder interface {
	Decode(v any) error
	More() bool
	InputOffset() int64
}

// decodeSingle decodes exactly one value; anything but whitespace after it
// is an error.
func decodeSingle(dec streamDecoder, v any) error {
	if err := dec.Decode(v); err != nil {
		return err
	}
	off := dec.InputOffset()
	// More misses a stray closing bracket, the second Decode catches it.
	var extra any
	if dec.More() || !errors.Is(dec.Decode(&extra), io.EOF) {
		return fmt.Errorf("%w at offset %d", ErrTrailingData, off)
	}
	return nil
}

// NumberUnmarshaler is implemented by codecs that can decode numbers
// without converting them to float64 first.
type NumberUnmarshaler interface {
	UnmarshalNumber(data []byte, v any) error
}

// DecodeValue decodes a single record into a generic value.
//
// Integral numbers become int64 and all other numbers float64, so that
// {"x":1} reads back as map[string]any{"x": int64(1)}. Codecs that do not
// implement NumberUnmarshaler decode numbers however Unmarshal does.
func DecodeValue(c Codec, data []byte) (any, error) {
	if c == nil {
		c = Default
	}
	var v any
	nu, ok := c.(NumberUnmarshaler)
	if !ok {
		if err := c.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		return v, nil
	}
	if err := nu.UnmarshalNumber(data, &v); err != nil {
		return nil, err
	}
	return normalize(v), nil
}

// number matches json.Number from both encoding/json and go-json.
type number interface {
	Int64() (int64, error)
	Float64() (float64, error)
	String() string
}

func normalize(v any) any {
	switch t := v.(type) {
	case number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case map[string]any:
		for k, x := range t {
			t[k] = normalize(x)
		}
		return t
	case []any:
		for i, x := range t {
			t[i] = normalize(x)
		}
		return t
	default:
		return v
	}
}
