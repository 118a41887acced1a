// Package s3 stores jsondata files as objects in an S3 bucket.
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("datasets"),
//	    s3.WithRegion("eu-central-1"),
//	)
//	js := jsondata.New(jsondata.WithStore(store))
//	err = js.Save(ctx, "train.txt", records)
//
// File names map to keys below the prefix ("datasets/train.txt"). Reads
// issue ranged GETs. Writes stream through the multipart upload manager and
// the object only appears once Close succeeds; Abort cancels the upload.
// Put attaches a CRC32C checksum unless disabled in UploadConfig.
//
// S3-compatible servers work through WithEndpoint with path-style
// addressing.
package s3
