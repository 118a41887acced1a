package jsondata

import (
	"context"
	"slices"
	"testing"

	"pgregory.net/rapid"

	"github.com/hupe1980/jsondata/blobstore"
	"github.com/hupe1980/jsondata/compress"
	"github.com/hupe1980/jsondata/ndarray"
)

// drawArray draws a 1-D or 2-D array. Dimensions of size 1 are common so
// that single rows, single columns and one-element vectors come up.
func drawArray(rt *rapid.T, label string) *ndarray.Array {
	ndim := rapid.IntRange(1, 2).Draw(rt, label+"-ndim")
	shape := rapid.SliceOfN(rapid.IntRange(1, 6), ndim, ndim).Draw(rt, label+"-shape")
	size := 1
	for _, d := range shape {
		size *= d
	}
	data := rapid.SliceOfN(rapid.Float64Range(-1e12, 1e12), size, size).Draw(rt, label+"-data")
	a, err := ndarray.New(shape, data)
	if err != nil {
		rt.Fatalf("new array: %v", err)
	}
	return a
}

// TestMapRoundTrip_Property proves every map entry reads back from its
// sibling file.
func TestMapRoundTrip_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		ctx := context.Background()
		s := New(WithStore(blobstore.NewMemoryStore()))

		m := rapid.MapOfN(rapid.StringMatching(`[a-z0-9]{1,8}`), rapid.Int64(), 1, 8).Draw(rt, "map")
		if err := s.Save(ctx, "m.txt", m); err != nil {
			rt.Fatalf("save: %v", err)
		}

		for k, v := range m {
			got, err := s.Read(ctx, SiblingName("m.txt", k))
			if err != nil {
				rt.Fatalf("read %q: %v", k, err)
			}
			records := got.([]any)
			if len(records) != 1 || records[0] != v {
				rt.Fatalf("key %q: got %v, want %d", k, records, v)
			}
		}

		back, err := s.ReadMap(ctx, "m.txt")
		if err != nil {
			rt.Fatalf("read map: %v", err)
		}
		if len(back) != len(m) {
			rt.Fatalf("got %d keys, want %d", len(back), len(m))
		}
	})
}

// TestRecordsRoundTrip_Property proves records read back in order.
func TestRecordsRoundTrip_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		ctx := context.Background()
		s := New(WithStore(blobstore.NewMemoryStore()))

		xs := rapid.SliceOf(rapid.Int64()).Draw(rt, "xs")
		tags := rapid.SliceOfN(rapid.String(), len(xs), len(xs)).Draw(rt, "tags")
		records := make([]map[string]any, len(xs))
		for i, x := range xs {
			records[i] = map[string]any{"x": x, "tag": tags[i]}
		}

		if err := s.Save(ctx, "r.txt", records); err != nil {
			rt.Fatalf("save: %v", err)
		}
		got, err := s.ReadRecords(ctx, "r.txt")
		if err != nil {
			rt.Fatalf("read: %v", err)
		}
		if len(got) != len(records) {
			rt.Fatalf("got %d records, want %d", len(got), len(records))
		}
		for i, r := range got {
			m := r.(map[string]any)
			if m["x"] != xs[i] || m["tag"] != tags[i] {
				rt.Fatalf("record %d: got %v, want %v", i, m, records[i])
			}
		}
	})
}

// TestArrayRoundTrip_Property proves array values survive the text layout
// exactly under every writable compression, with loadtxt's shape rules.
func TestArrayRoundTrip_Property(t *testing.T) {
	algs := []compress.Algorithm{compress.None, compress.Gzip, compress.Zstd, compress.LZ4, compress.S2}

	rapid.Check(t, func(rt *rapid.T) {
		ctx := context.Background()
		alg := rapid.SampledFrom(algs).Draw(rt, "alg")
		ndmin := rapid.IntRange(0, 2).Draw(rt, "ndmin")
		s := New(WithStore(blobstore.NewMemoryStore()), WithCompression(alg), WithNdmin(ndmin))

		a := drawArray(rt, "a")
		if err := s.Save(ctx, "a", a); err != nil {
			rt.Fatalf("save: %v", err)
		}
		got, err := s.ReadArray(ctx, "a.npy"+alg.Ext())
		if err != nil {
			rt.Fatalf("read: %v", err)
		}

		// Text drops the shape; values and order must survive.
		back, err := got.Reshape(a.Shape()...)
		if err != nil || !a.Equal(back) {
			rt.Fatalf("got %v, want %v", got, a)
		}

		shape := got.Shape()
		if len(shape) < ndmin {
			rt.Fatalf("shape %v has fewer than %d dims", shape, ndmin)
		}
		if ndmin == 0 && slices.Contains(shape, 1) {
			rt.Fatalf("shape %v kept a size-1 dim", shape)
		}
		if !slices.Contains(a.Shape(), 1) && a.Ndim() >= ndmin && !slices.Equal(shape, a.Shape()) {
			rt.Fatalf("shape %v, want %v", shape, a.Shape())
		}
	})
}

// TestArrayListRoundTrip_Property proves archives keep index order.
func TestArrayListRoundTrip_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		ctx := context.Background()
		compressed := rapid.Bool().Draw(rt, "compressed")
		s := New(WithStore(blobstore.NewMemoryStore()), WithArchiveCompression(compressed))

		n := rapid.IntRange(1, 12).Draw(rt, "n")
		arrays := make([]*ndarray.Array, n)
		for i := range arrays {
			arrays[i] = drawArray(rt, "arr")
		}

		if err := s.Save(ctx, "l", arrays); err != nil {
			rt.Fatalf("save: %v", err)
		}
		got, err := s.ReadArrayList(ctx, "l.npy.list.npz")
		if err != nil {
			rt.Fatalf("read: %v", err)
		}
		if len(got) != n {
			rt.Fatalf("got %d arrays, want %d", len(got), n)
		}
		for i := range arrays {
			if !arrays[i].Equal(got[i]) {
				rt.Fatalf("array %d: got %v, want %v", i, got[i], arrays[i])
			}
		}
	})
}

// TestEmptySequence_Property proves empty sequences of any element type
// produce an empty file.
func TestEmptySequence_Property(t *testing.T) {
	empties := []any{[]any{}, []int{}, []string(nil), []map[string]any{}}

	rapid.Check(t, func(rt *rapid.T) {
		ctx := context.Background()
		mem := blobstore.NewMemoryStore()
		s := New(WithStore(mem))

		v := rapid.SampledFrom(empties).Draw(rt, "empty")
		if err := s.Save(ctx, "e.txt", v); err != nil {
			rt.Fatalf("save: %v", err)
		}
		raw, err := blobstore.ReadAll(ctx, mem, "e.txt")
		if err != nil || len(raw) != 0 {
			rt.Fatalf("got %q, %v", raw, err)
		}
		got, err := s.ReadRecords(ctx, "e.txt")
		if err != nil || got == nil || len(got) != 0 {
			rt.Fatalf("got %v, %v", got, err)
		}
	})
}
