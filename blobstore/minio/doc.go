// Package minio provides a BlobStore implementation using the MinIO client.
//
// It works with MinIO and other S3-compatible storage such as Ceph or Garage.
//
//	store, err := minio.New(minio.Config{
//	    Endpoint:  "localhost:9000",
//	    AccessKey: "minioadmin",
//	    SecretKey: "minioadmin",
//	}, "my-bucket", "corpora/")
//	blob, err := store.Open(ctx, "train.txt.gz")
//
// Objects are fetched lazily; blobstore.NewReader reads them with concurrent
// ranged requests.
package minio
