package codec

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const corpus = "e1 catA alpha:1.0 beta:0.5\ne2 catB gamma:2.0\n"

func compress(t *testing.T, name string) []byte {
	t.Helper()

	var buf bytes.Buffer
	var w io.WriteCloser
	switch name {
	case "gzip":
		w = gzip.NewWriter(&buf)
	case "zstd":
		zw, err := zstd.NewWriter(&buf)
		require.NoError(t, err)
		w = zw
	case "lz4":
		w = lz4.NewWriter(&buf)
	default:
		return []byte(corpus)
	}

	_, err := io.WriteString(w, corpus)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestDecompress(t *testing.T) {
	tests := []struct {
		path  string
		codec string
	}{
		{"train.txt", "none"},
		{"train.txt.gz", "gzip"},
		{"train.TXT.GZ", "gzip"},
		{"train.txt.zst", "zstd"},
		{"train.txt.lz4", "lz4"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.codec, ForPath(tt.path).Name())

			rc, err := Decompress(tt.path, bytes.NewReader(compress(t, tt.codec)))
			require.NoError(t, err)
			defer rc.Close()

			got, err := io.ReadAll(rc)
			require.NoError(t, err)
			assert.Equal(t, corpus, string(got))
		})
	}
}

func TestDecompressCorrupt(t *testing.T) {
	_, err := Decompress("train.txt.gz", strings.NewReader("not gzip"))
	assert.Error(t, err)
}

func TestByName(t *testing.T) {
	for _, name := range []string{"none", "gzip", "zstd", "lz4"} {
		d, ok := ByName(name)
		require.True(t, ok)
		assert.Equal(t, name, d.Name())
	}

	_, ok := ByName("brotli")
	assert.False(t, ok)
}
