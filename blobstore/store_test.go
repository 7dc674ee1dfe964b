package blobstore

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockBlob hides Bytes so that NewReader takes the read-ahead path.
type mockBlob struct {
	data []byte

	mu    sync.Mutex
	reads int
	fail  error
}

func (m *mockBlob) Close() error { return nil }
func (m *mockBlob) Size() int64  { return int64(len(m.data)) }
func (m *mockBlob) ReadAt(p []byte, off int64) (int, error) {
	m.mu.Lock()
	m.reads++
	fail := m.fail
	m.mu.Unlock()

	if fail != nil {
		return 0, fail
	}
	if off >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n := copy(p, m.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func TestLocalStore(t *testing.T) {
	dir := t.TempDir()
	content := "e1 catA alpha:1\ne2 catB beta:1\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "train.txt"), []byte(content), 0o600))

	store := NewLocalStore(dir)
	ctx := context.Background()

	blob, err := store.Open(ctx, "train.txt")
	require.NoError(t, err)
	assert.Equal(t, int64(len(content)), blob.Size())

	_, ok := blob.(Mappable)
	assert.True(t, ok)

	r := NewReader(ctx, blob, ReaderOptions{})
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, content, string(got))
	require.NoError(t, r.Close())

	_, err = store.Open(ctx, "missing.txt")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	data := []byte("e1 catA alpha:1\n")
	require.NoError(t, store.Put(ctx, "train.txt", data))
	data[0] = 'x'

	blob, err := store.Open(ctx, "train.txt")
	require.NoError(t, err)

	got, err := io.ReadAll(NewReader(ctx, blob, ReaderOptions{}))
	require.NoError(t, err)
	assert.Equal(t, "e1 catA alpha:1\n", string(got))

	_, err = store.Open(ctx, "other.txt")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReadAheadReader(t *testing.T) {
	ctx := context.Background()
	content := strings.Repeat("0123456789", 103) // 1030 bytes

	tests := []struct {
		name      string
		blockSize int64
		readAhead int
	}{
		{"SingleBlock", 4096, 4},
		{"ExactMultiple", 10, 3},
		{"Remainder", 64, 4},
		{"NoConcurrency", 100, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blob := &mockBlob{data: []byte(content)}
			r := NewReader(ctx, blob, ReaderOptions{BlockSize: tt.blockSize, ReadAhead: tt.readAhead})

			got, err := io.ReadAll(r)
			require.NoError(t, err)
			assert.Equal(t, content, string(got))

			want := (int64(len(content)) + tt.blockSize - 1) / tt.blockSize
			assert.Equal(t, int(want), blob.reads)
			require.NoError(t, r.Close())
		})
	}
}

func TestReadAheadReader_EmptyBlob(t *testing.T) {
	r := NewReader(context.Background(), &mockBlob{}, ReaderOptions{BlockSize: 8})
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestReadAheadReader_Errors(t *testing.T) {
	boom := errors.New("boom")
	blob := &mockBlob{data: []byte("some data"), fail: boom}

	_, err := io.ReadAll(NewReader(context.Background(), blob, ReaderOptions{BlockSize: 4}))
	assert.ErrorIs(t, err, boom)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = io.ReadAll(NewReader(ctx, &mockBlob{data: []byte("data")}, ReaderOptions{}))
	assert.ErrorIs(t, err, context.Canceled)
}
