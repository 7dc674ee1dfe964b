package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/hupe1980/sparseknn/blobstore"
)

// DefaultInMemoryLimit is the largest object Open downloads into memory.
const DefaultInMemoryLimit = 64 << 20

// Client is the subset of the S3 API used by Store.
type Client interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Store implements blobstore.BlobStore for S3.
type Store struct {
	client Client
	bucket string
	opts   options
}

type options struct {
	prefix        string
	region        string
	endpoint      string
	pathStyle     bool
	inMemoryLimit int64
	partSize      int64
	concurrency   int
}

// Option configures a Store.
type Option func(*options)

// WithPrefix prepends prefix to every key.
func WithPrefix(prefix string) Option {
	return func(o *options) { o.prefix = prefix }
}

// WithRegion sets the AWS region used by New.
func WithRegion(region string) Option {
	return func(o *options) { o.region = region }
}

// WithEndpoint sets a custom S3 endpoint used by New.
func WithEndpoint(endpoint string) Option {
	return func(o *options) { o.endpoint = endpoint }
}

// WithPathStyle enables path-style addressing, required by most
// S3-compatible services.
func WithPathStyle(enabled bool) Option {
	return func(o *options) { o.pathStyle = enabled }
}

// WithInMemoryLimit sets the largest object that Open downloads eagerly with
// concurrent part requests. Larger objects are read lazily with ranged GETs.
// A limit <= 0 always reads lazily.
func WithInMemoryLimit(limit int64) Option {
	return func(o *options) { o.inMemoryLimit = limit }
}

// WithDownloadPartSize sets the part size of eager downloads.
func WithDownloadPartSize(size int64) Option {
	return func(o *options) { o.partSize = size }
}

// WithDownloadConcurrency sets the number of concurrent part requests of eager downloads.
func WithDownloadConcurrency(n int) Option {
	return func(o *options) { o.concurrency = n }
}

func applyOptions(optFns []Option) options {
	o := options{
		inMemoryLimit: DefaultInMemoryLimit,
		partSize:      manager.DefaultDownloadPartSize,
		concurrency:   manager.DefaultDownloadConcurrency,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}

// New creates a Store for bucket using the default AWS credential chain.
func New(ctx context.Context, bucket string, optFns ...Option) (*Store, error) {
	o := applyOptions(optFns)

	var loadOpts []func(*config.LoadOptions) error
	if o.region != "" {
		loadOpts = append(loadOpts, config.WithRegion(o.region))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(so *s3.Options) {
		if o.endpoint != "" {
			so.BaseEndpoint = aws.String(o.endpoint)
		}
		so.UsePathStyle = o.pathStyle
	})

	return &Store{client: client, bucket: bucket, opts: o}, nil
}

// NewStore creates a Store on an existing client.
func NewStore(client Client, bucket string, optFns ...Option) *Store {
	return &Store{client: client, bucket: bucket, opts: applyOptions(optFns)}
}

func (s *Store) key(name string) string {
	return path.Join(s.opts.prefix, name)
}

// Open opens an object for reading. Objects up to the in-memory limit are
// downloaded immediately; larger ones are fetched on demand.
func (s *Store) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	key := s.key(name)

	head, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nf *types.NotFound
		if errors.As(err, &nf) {
			return nil, blobstore.ErrNotFound
		}
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, blobstore.ErrNotFound
		}
		return nil, err
	}

	size := aws.ToInt64(head.ContentLength)
	if size <= s.opts.inMemoryLimit {
		return s.download(ctx, key, size)
	}

	return &s3Blob{
		ctx:    ctx,
		client: s.client,
		bucket: s.bucket,
		key:    key,
		size:   size,
	}, nil
}

func (s *Store) download(ctx context.Context, key string, size int64) (blobstore.Blob, error) {
	if size == 0 {
		return blobstore.NewBytesBlob(nil), nil
	}

	downloader := manager.NewDownloader(s.client, func(d *manager.Downloader) {
		d.PartSize = s.opts.partSize
		d.Concurrency = s.opts.concurrency
	})

	buf := manager.NewWriteAtBuffer(make([]byte, 0, size))
	n, err := downloader.Download(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("download s3://%s/%s: %w", s.bucket, key, err)
	}

	return blobstore.NewBytesBlob(buf.Bytes()[:n]), nil
}

// s3Blob reads an object with ranged GETs.
type s3Blob struct {
	ctx    context.Context
	client Client
	bucket string
	key    string
	size   int64
}

func (b *s3Blob) Close() error {
	return nil
}

func (b *s3Blob) Size() int64 {
	return b.size
}

func (b *s3Blob) ReadAt(p []byte, off int64) (int, error) {
	if off >= b.size {
		return 0, io.EOF
	}
	if len(p) == 0 {
		return 0, nil
	}

	end := min(off+int64(len(p)), b.size) - 1

	resp, err := b.client.GetObject(b.ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.key),
		Range:  aws.String(fmt.Sprintf("bytes=%d-%d", off, end)),
	})
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	want := int(end - off + 1)
	n, err := io.ReadFull(resp.Body, p[:want])
	if err != nil {
		return n, err
	}
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}
