// Package minio provides a BlobStore implementation using the MinIO client.
//
// MinIO is an S3-compatible object storage system. The store also works with
// other S3-compatible systems like Ceph, SeaweedFS, and Garage, and needs no
// AWS SDK.
//
// # Basic Usage
//
//	store, err := minio.Connect(minio.Config{
//	    Endpoint:  "localhost:9000",
//	    AccessKey: "minioadmin",
//	    SecretKey: "minioadmin",
//	}, "my-bucket", "datasets/")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	err = jsondata.New(jsondata.WithStore(store)).Save(ctx, "weights.txt", arr)
//
// An existing *minio.Client can be wrapped with NewStore.
package minio
