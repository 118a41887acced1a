// Package jsondata saves and reads simple in-memory values using per-type
// file conventions.
//
// # Quick Start
//
//	ctx := context.Background()
//
//	// Records: one JSON value per line.
//	_ = jsondata.Save(ctx, "people.txt", []any{
//	    map[string]any{"name": "ada"},
//	    map[string]any{"name": "alan"},
//	})
//	people, _ := jsondata.Read(ctx, "people.txt") // []any
//
//	// A numeric array: delimited text, gzip compressed.
//	_ = jsondata.Save(ctx, "weights", ndarray.Vector(0.5, 1.5))
//	w, _ := jsondata.Read(ctx, "weights.npy.gz") // *ndarray.Array
//
//	// A list of arrays: one archive with entries arr_0, arr_1, ...
//	_ = jsondata.Save(ctx, "layers", []*ndarray.Array{a, b})
//	layers, _ := jsondata.Read(ctx, "layers.npy.list.npz") // []*ndarray.Array
//
//	// A map: one sibling file per key, "stats-count.txt", "stats-mean.txt".
//	_ = jsondata.Save(ctx, "stats.txt", map[string]any{"count": 3, "mean": 1.5})
//	stats, _ := jsondata.ReadMap(ctx, "stats.txt")
//
// # File Names
//
// Save picks the layout from the value and appends a suffix for arrays.
// Read picks the decoder from the name alone:
//
//	*.npy.list.npz   archive of arrays      []*ndarray.Array
//	*.npy[.gz|...]   delimited text array   *ndarray.Array
//	anything else    line-delimited records []any
//
// # Storage
//
// Files live in a blobstore.BlobStore. The package-level functions use a
// local store rooted at the current directory; use New with WithStore for
// S3, MinIO, DynamoDB or in-memory storage:
//
//	store, _ := s3.New(ctx, "my-bucket", s3.WithPrefix("datasets/"))
//	js := jsondata.New(jsondata.WithStore(store))
//
// Writes are atomic per file: a failed save never leaves a partial file.
package jsondata
