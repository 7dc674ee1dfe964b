package blobstore

import (
	"bytes"
	"context"
	"errors"
	"io"

	"golang.org/x/sync/errgroup"
)

const (
	// DefaultBlockSize is the read-ahead block size.
	DefaultBlockSize = 1 << 20
	// DefaultReadAhead is the number of blocks fetched concurrently.
	DefaultReadAhead = 4
)

// ReaderOptions configures NewReader.
type ReaderOptions struct {
	// BlockSize is the size of each ranged read. Values <= 0 mean DefaultBlockSize.
	BlockSize int64
	// ReadAhead is the number of blocks fetched concurrently. Values <= 0 mean DefaultReadAhead.
	ReadAhead int
}

// NewReader returns a sequential reader over b. Closing the reader closes b.
//
// Mappable blobs are read in place. Other blobs are read with concurrent
// ranged reads of ReadAhead blocks at a time, which hides the latency of
// remote stores.
func NewReader(ctx context.Context, b Blob, opts ReaderOptions) io.ReadCloser {
	if m, ok := b.(Mappable); ok {
		if data, err := m.Bytes(); err == nil {
			return &blobReader{Reader: bytes.NewReader(data), blob: b}
		}
	}

	if opts.BlockSize <= 0 {
		opts.BlockSize = DefaultBlockSize
	}
	if opts.ReadAhead <= 0 {
		opts.ReadAhead = DefaultReadAhead
	}

	return &blobReader{
		Reader: &readAheadReader{
			ctx:       ctx,
			blob:      b,
			blockSize: opts.BlockSize,
			window:    opts.ReadAhead,
			size:      b.Size(),
		},
		blob: b,
	}
}

type blobReader struct {
	io.Reader
	blob Blob
}

func (r *blobReader) Close() error {
	return r.blob.Close()
}

// readAheadReader fetches the blob in windows of consecutive blocks.
type readAheadReader struct {
	ctx       context.Context
	blob      Blob
	blockSize int64
	window    int
	size      int64

	next    int64 // offset of the next block to fetch
	pending [][]byte
	cur     []byte
}

func (r *readAheadReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	for len(r.cur) == 0 {
		if len(r.pending) == 0 {
			if r.next >= r.size {
				return 0, io.EOF
			}
			if err := r.fill(); err != nil {
				return 0, err
			}
		}
		r.cur, r.pending = r.pending[0], r.pending[1:]
	}

	n := copy(p, r.cur)
	r.cur = r.cur[n:]
	return n, nil
}

func (r *readAheadReader) fill() error {
	if err := r.ctx.Err(); err != nil {
		return err
	}

	remaining := r.size - r.next
	count := int(min(int64(r.window), (remaining+r.blockSize-1)/r.blockSize))
	blocks := make([][]byte, count)

	g, ctx := errgroup.WithContext(r.ctx)
	g.SetLimit(r.window)

	for i := range count {
		off := r.next + int64(i)*r.blockSize
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			buf := make([]byte, min(r.blockSize, r.size-off))
			n, err := r.blob.ReadAt(buf, off)
			if err != nil && !(errors.Is(err, io.EOF) && n == len(buf)) {
				return err
			}
			blocks[i] = buf[:n]
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	r.next += int64(count) * r.blockSize
	r.pending = blocks
	return nil
}
