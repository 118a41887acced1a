package jsondata

import (
	"cmp"
	"fmt"
	"path"
	"reflect"
	"slices"
	"strings"

	"github.com/hupe1980/jsondata/ndarray"
)

// Kind classifies a value passed to Save.
type Kind int

const (
	// KindScalar is any value encoded as a single record.
	KindScalar Kind = iota
	// KindMap is a map; each entry is saved to its own sibling file.
	KindMap
	// KindArray is a single numeric array saved as delimited text.
	KindArray
	// KindArrayList is a sequence of arrays saved as one archive.
	KindArrayList
	// KindRecords is a sequence saved one record per line.
	KindRecords
)

func (k Kind) String() string {
	switch k {
	case KindMap:
		return "map"
	case KindArray:
		return "array"
	case KindArrayList:
		return "array-list"
	case KindRecords:
		return "records"
	default:
		return "scalar"
	}
}

// Format identifies the on-disk layout of a file, derived from its name.
type Format int

const (
	// FormatRecords is one encoded record per line.
	FormatRecords Format = iota
	// FormatArray is a delimited text array, possibly compressed.
	FormatArray
	// FormatArchive is an archive of arrays.
	FormatArchive
)

func (f Format) String() string {
	switch f {
	case FormatArray:
		return "array"
	case FormatArchive:
		return "archive"
	default:
		return "records"
	}
}

const (
	arrayMarker   = ".npy"
	archiveSuffix = ".npy.list.npz"
)

// ClassifyValue reports how Save stores data.
//
// Byte slices are scalars, as the codec encodes them as a single string.
// A []any whose first element is an array is an array list.
func ClassifyValue(data any) Kind {
	switch t := data.(type) {
	case nil:
		return KindScalar
	case *ndarray.Array:
		if t == nil {
			return KindScalar
		}
		return KindArray
	case ndarray.Array:
		return KindArray
	case []*ndarray.Array, []ndarray.Array:
		return KindArrayList
	case []any:
		if len(t) > 0 && isArray(t[0]) {
			return KindArrayList
		}
		return KindRecords
	}

	v := reflect.ValueOf(data)
	switch v.Kind() {
	case reflect.Map:
		return KindMap
	case reflect.Slice, reflect.Array:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return KindScalar
		}
		return KindRecords
	default:
		return KindScalar
	}
}

func isArray(v any) bool {
	switch t := v.(type) {
	case *ndarray.Array:
		return t != nil
	case ndarray.Array:
		return true
	}
	return false
}

// arrayList extracts the arrays of a KindArrayList value.
func arrayList(data any) ([]*ndarray.Array, error) {
	switch t := data.(type) {
	case []*ndarray.Array:
		return t, nil
	case []ndarray.Array:
		out := make([]*ndarray.Array, len(t))
		for i := range t {
			out[i] = &t[i]
		}
		return out, nil
	case []any:
		out := make([]*ndarray.Array, len(t))
		for i, x := range t {
			a, ok := asArray(x)
			if !ok {
				return nil, fmt.Errorf("%w: element %d is %T", ErrMixedArrayList, i, x)
			}
			out[i] = a
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: %T", ErrMixedArrayList, data)
}

func asArray(v any) (*ndarray.Array, bool) {
	switch t := v.(type) {
	case *ndarray.Array:
		return t, t != nil
	case ndarray.Array:
		return &t, true
	}
	return nil, false
}

// FormatOf reports how Read decodes the file called name.
func FormatOf(name string) Format {
	switch {
	case strings.Contains(name, archiveSuffix):
		return FormatArchive
	case strings.Contains(name, arrayMarker):
		return FormatArray
	default:
		return FormatRecords
	}
}

// SiblingName derives the file name used for a map entry: key is inserted
// before the last extension of the base name.
//
//	SiblingName("out/data.txt", "a")  // "out/data-a.txt"
//	SiblingName("out/data", "a")      // "out/data-a"
func SiblingName(name, key string) string {
	stem, ext := splitExt(name)
	return stem + "-" + key + ext
}

// splitExt splits name before the last dot of its base name.
func splitExt(name string) (stem, ext string) {
	dir, base := path.Split(name)
	if i := strings.LastIndexByte(base, '.'); i >= 0 {
		return dir + base[:i], base[i:]
	}
	return name, ""
}

type mapEntry struct {
	key   reflect.Value
	label string
	value any
}

// sortedEntries returns the entries of a map in key order. Numeric keys
// compare numerically, everything else by its formatted label.
func sortedEntries(m reflect.Value) []mapEntry {
	entries := make([]mapEntry, 0, m.Len())
	iter := m.MapRange()
	for iter.Next() {
		k := iter.Key()
		entries = append(entries, mapEntry{
			key:   k,
			label: fmt.Sprint(k.Interface()),
			value: iter.Value().Interface(),
		})
	}
	slices.SortFunc(entries, func(a, b mapEntry) int {
		return compareKeys(a, b)
	})
	return entries
}

func compareKeys(a, b mapEntry) int {
	ak, bk := a.key, b.key
	if ak.Kind() == reflect.Interface {
		ak = ak.Elem()
	}
	if bk.Kind() == reflect.Interface {
		bk = bk.Elem()
	}
	switch {
	case ak.CanInt() && bk.CanInt():
		if c := cmp.Compare(ak.Int(), bk.Int()); c != 0 {
			return c
		}
	case ak.CanUint() && bk.CanUint():
		if c := cmp.Compare(ak.Uint(), bk.Uint()); c != 0 {
			return c
		}
	case ak.CanFloat() && bk.CanFloat():
		if c := cmp.Compare(ak.Float(), bk.Float()); c != 0 {
			return c
		}
	}
	return strings.Compare(a.label, b.label)
}
