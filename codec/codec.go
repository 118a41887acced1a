// Package codec centralizes record encoding.
//
// Every line of a record file is one value encoded by a Codec. The built-in
// codecs write identical JSON, so a file written with one reads back with
// the other.
package codec

import (
	"maps"
	"slices"
)

// Codec encodes and decodes a single record.
// Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// Default is the codec used when none is configured.
var Default Codec = GoJSON{}

var builtin = map[string]Codec{
	JSON{}.Name():   JSON{},
	GoJSON{}.Name(): GoJSON{},
}

// ByName returns a built-in codec by name. The empty name selects Default.
func ByName(name string) (Codec, bool) {
	if name == "" {
		return Default, true
	}
	c, ok := builtin[name]
	return c, ok
}

// Names returns the names accepted by ByName, sorted.
func Names() []string {
	return slices.Sorted(maps.Keys(builtin))
}
