// Package source opens training and query corpora by URI.
//
// Supported forms:
//
//	train.txt               local file (mmap)
//	file:///data/train.txt  local file
//	s3://bucket/key         Amazon S3 or an S3-compatible endpoint
//	minio://bucket/key      MinIO
//
// Compressed corpora (.gz, .zst, .lz4) are decompressed transparently.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/hupe1980/sparseknn/blobstore"
	"github.com/hupe1980/sparseknn/blobstore/minio"
	"github.com/hupe1980/sparseknn/blobstore/s3"
	"github.com/hupe1980/sparseknn/codec"
)

// ErrUnsupportedScheme is returned for URIs with an unknown scheme.
var ErrUnsupportedScheme = errors.New("unsupported corpus uri scheme")

// Config holds the settings for remote corpora.
type Config struct {
	S3Region    string `toml:"s3_region"`
	S3Endpoint  string `toml:"s3_endpoint"`
	S3PathStyle bool   `toml:"s3_path_style"`

	MinioEndpoint  string `toml:"minio_endpoint"`
	MinioAccessKey string `toml:"minio_access_key"`
	MinioSecretKey string `toml:"minio_secret_key"`
	MinioSecure    bool   `toml:"minio_secure"`

	// BlockSize and ReadAhead tune ranged reads of remote objects.
	BlockSize int64 `toml:"block_size"`
	ReadAhead int   `toml:"read_ahead"`
}

// WithEnv fills unset MinIO fields from MINIO_ENDPOINT, MINIO_ACCESS_KEY and
// MINIO_SECRET_KEY. S3 credentials come from the AWS default chain.
func (c Config) WithEnv() Config {
	if c.MinioEndpoint == "" {
		c.MinioEndpoint = os.Getenv("MINIO_ENDPOINT")
	}
	if c.MinioAccessKey == "" {
		c.MinioAccessKey = os.Getenv("MINIO_ACCESS_KEY")
	}
	if c.MinioSecretKey == "" {
		c.MinioSecretKey = os.Getenv("MINIO_SECRET_KEY")
	}
	return c
}

// Location is a parsed corpus URI.
type Location struct {
	Scheme string // "file", "s3" or "minio"
	Bucket string // empty for local files
	Key    string // object key or file path
}

// Parse splits uri into a Location.
func Parse(uri string) (Location, error) {
	if !strings.Contains(uri, "://") {
		return Location{Scheme: "file", Key: uri}, nil
	}

	u, err := url.Parse(uri)
	if err != nil {
		return Location{}, err
	}

	switch u.Scheme {
	case "file":
		return Location{Scheme: "file", Key: u.Path}, nil
	case "s3", "minio":
		key := strings.TrimPrefix(u.Path, "/")
		if u.Host == "" || key == "" {
			return Location{}, fmt.Errorf("%s uri needs bucket and key: %q", u.Scheme, uri)
		}
		return Location{Scheme: u.Scheme, Bucket: u.Host, Key: key}, nil
	default:
		return Location{}, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}
}

// Store returns the BlobStore serving loc and the blob name within it.
func Store(ctx context.Context, loc Location, cfg Config) (blobstore.BlobStore, string, error) {
	switch loc.Scheme {
	case "file":
		return blobstore.NewLocalStore(filepath.Dir(loc.Key)), filepath.Base(loc.Key), nil
	case "s3":
		store, err := s3.New(ctx, loc.Bucket,
			s3.WithRegion(cfg.S3Region),
			s3.WithEndpoint(cfg.S3Endpoint),
			s3.WithPathStyle(cfg.S3PathStyle),
		)
		if err != nil {
			return nil, "", err
		}
		return store, loc.Key, nil
	case "minio":
		if cfg.MinioEndpoint == "" {
			return nil, "", errors.New("minio endpoint is not configured")
		}
		store, err := minio.New(minio.Config{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Secure:    cfg.MinioSecure,
		}, loc.Bucket, "")
		if err != nil {
			return nil, "", err
		}
		return store, loc.Key, nil
	default:
		return nil, "", fmt.Errorf("%w: %q", ErrUnsupportedScheme, loc.Scheme)
	}
}

// Open opens the corpus at uri as a decompressed stream.
func Open(ctx context.Context, uri string, cfg Config) (io.ReadCloser, error) {
	loc, err := Parse(uri)
	if err != nil {
		return nil, err
	}

	store, name, err := Store(ctx, loc, cfg)
	if err != nil {
		return nil, err
	}

	return OpenBlob(ctx, store, name, cfg)
}

// OpenBlob opens name in store as a decompressed stream.
func OpenBlob(ctx context.Context, store blobstore.BlobStore, name string, cfg Config) (io.ReadCloser, error) {
	blob, err := store.Open(ctx, name)
	if err != nil {
		return nil, err
	}

	raw := blobstore.NewReader(ctx, blob, blobstore.ReaderOptions{
		BlockSize: cfg.BlockSize,
		ReadAhead: cfg.ReadAhead,
	})

	dec, err := codec.Decompress(name, raw)
	if err != nil {
		_ = raw.Close()
		return nil, err
	}

	return &stream{Reader: dec, closers: []io.Closer{dec, raw}}, nil
}

type stream struct {
	io.Reader
	closers []io.Closer
}

func (s *stream) Close() error {
	var errs []error
	for _, c := range s.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}
