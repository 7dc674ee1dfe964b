// Package codec decompresses corpus streams.
//
// The compression format is chosen by file extension, so "train.txt.zst"
// and "train.txt" are read the same way.
package codec

import (
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Decompressor wraps a compressed stream.
// Implementations must be safe for concurrent use.
type Decompressor interface {
	NewReader(r io.Reader) (io.ReadCloser, error)
	Name() string
}

// ByName returns a built-in decompressor by its stable name.
func ByName(name string) (Decompressor, bool) {
	switch name {
	case "none", "":
		return None{}, true
	case "gzip":
		return Gzip{}, true
	case "zstd":
		return Zstd{}, true
	case "lz4":
		return LZ4{}, true
	default:
		return nil, false
	}
}

// ForPath returns the decompressor matching the extension of name.
// Unknown extensions are read uncompressed.
func ForPath(name string) Decompressor {
	switch strings.ToLower(path.Ext(name)) {
	case ".gz", ".gzip":
		return Gzip{}
	case ".zst", ".zstd":
		return Zstd{}
	case ".lz4":
		return LZ4{}
	default:
		return None{}
	}
}

// Decompress wraps r with the decompressor for name. Closing the result
// releases decoder resources but does not close r.
func Decompress(name string, r io.Reader) (io.ReadCloser, error) {
	d := ForPath(name)
	rc, err := d.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("codec %s: %w", d.Name(), err)
	}
	return rc, nil
}

// None passes data through unchanged.
type None struct{}

func (None) NewReader(r io.Reader) (io.ReadCloser, error) { return io.NopCloser(r), nil }
func (None) Name() string                                 { return "none" }

// Gzip reads gzip streams with github.com/klauspost/compress/gzip.
type Gzip struct{}

func (Gzip) NewReader(r io.Reader) (io.ReadCloser, error) {
	zr, err := gzip.NewReader(r)
	if err != nil {
		return nil, err
	}
	return zr, nil
}
func (Gzip) Name() string { return "gzip" }

// Zstd reads zstandard streams with github.com/klauspost/compress/zstd.
type Zstd struct{}

func (Zstd) NewReader(r io.Reader) (io.ReadCloser, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	return dec.IOReadCloser(), nil
}
func (Zstd) Name() string { return "zstd" }

// LZ4 reads lz4 frame streams with github.com/pierrec/lz4/v4.
type LZ4 struct{}

func (LZ4) NewReader(r io.Reader) (io.ReadCloser, error) { return io.NopCloser(lz4.NewReader(r)), nil }
func (LZ4) Name() string                                 { return "lz4" }
