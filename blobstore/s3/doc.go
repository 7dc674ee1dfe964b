// Package s3 provides an S3 implementation of the blobstore.BlobStore interface.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("corpora/"),
//	    s3.WithRegion("us-east-1"),
//	)
//	blob, err := store.Open(ctx, "train.txt.zst")
//
// Objects up to the in-memory limit are fetched eagerly with concurrent part
// downloads. Larger objects are read lazily with ranged GETs.
package s3
