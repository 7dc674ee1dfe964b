package source

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/sparseknn/blobstore"
)

const corpus = "e1 catA alpha:1\ne2 catB beta:1\n"

func TestParse(t *testing.T) {
	tests := []struct {
		uri     string
		want    Location
		wantErr bool
	}{
		{uri: "train.txt", want: Location{Scheme: "file", Key: "train.txt"}},
		{uri: "/data/train.txt", want: Location{Scheme: "file", Key: "/data/train.txt"}},
		{uri: "file:///data/train.txt", want: Location{Scheme: "file", Key: "/data/train.txt"}},
		{uri: "s3://bucket/corpora/train.txt.zst", want: Location{Scheme: "s3", Bucket: "bucket", Key: "corpora/train.txt.zst"}},
		{uri: "minio://bucket/train.txt", want: Location{Scheme: "minio", Bucket: "bucket", Key: "train.txt"}},
		{uri: "s3://bucket", wantErr: true},
		{uri: "gs://bucket/train.txt", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			got, err := Parse(tt.uri)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := Parse("gs://bucket/train.txt")
	assert.ErrorIs(t, err, ErrUnsupportedScheme)
}

func TestOpenLocal(t *testing.T) {
	dir := t.TempDir()
	plain := filepath.Join(dir, "train.txt")
	require.NoError(t, os.WriteFile(plain, []byte(corpus), 0o600))

	var buf bytes.Buffer
	zw, err := zstd.NewWriter(&buf)
	require.NoError(t, err)
	_, err = io.WriteString(zw, corpus)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	compressed := filepath.Join(dir, "train.txt.zst")
	require.NoError(t, os.WriteFile(compressed, buf.Bytes(), 0o600))

	for _, uri := range []string{plain, "file://" + plain, compressed} {
		rc, err := Open(context.Background(), uri, Config{})
		require.NoError(t, err, uri)

		got, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, corpus, string(got))
		require.NoError(t, rc.Close())
	}

	_, err = Open(context.Background(), filepath.Join(dir, "missing.txt"), Config{})
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestOpenBlob(t *testing.T) {
	store := blobstore.NewMemoryStore()
	require.NoError(t, store.Put(context.Background(), "train.txt", []byte(corpus)))

	rc, err := OpenBlob(context.Background(), store, "train.txt", Config{})
	require.NoError(t, err)
	defer rc.Close()

	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, corpus, string(got))
}

func TestMinioNeedsEndpoint(t *testing.T) {
	_, _, err := Store(context.Background(), Location{Scheme: "minio", Bucket: "b", Key: "k"}, Config{})
	assert.Error(t, err)
}

func TestWithEnv(t *testing.T) {
	t.Setenv("MINIO_ENDPOINT", "localhost:9000")
	t.Setenv("MINIO_ACCESS_KEY", "access")
	t.Setenv("MINIO_SECRET_KEY", "secret")

	cfg := Config{MinioAccessKey: "explicit"}.WithEnv()
	assert.Equal(t, "localhost:9000", cfg.MinioEndpoint)
	assert.Equal(t, "explicit", cfg.MinioAccessKey)
	assert.Equal(t, "secret", cfg.MinioSecretKey)
}
