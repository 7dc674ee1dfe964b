// Package blobstore provides read access to training corpora stored as
// immutable blobs.
//
// Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: local filesystem with mmap support
//   - MemoryStore: in-memory blobs for tests
//   - s3.Store: Amazon S3 with concurrent ranged downloads
//   - minio.Store: MinIO and other S3-compatible storage
//
// # Reading
//
// NewReader turns a Blob into a sequential io.ReadCloser suitable for line
// parsing:
//
//	blob, err := store.Open(ctx, "train.txt")
//	if err != nil { ... }
//	r := blobstore.NewReader(ctx, blob, blobstore.ReaderOptions{})
//	defer r.Close()
package blobstore
