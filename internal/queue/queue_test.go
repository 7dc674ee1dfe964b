package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkQueueFIFO(t *testing.T) {
	q := NewWorkQueue[string]()

	for i, s := range []string{"a", "b", "c"} {
		idx, err := q.Push(s)
		require.NoError(t, err)
		assert.Equal(t, i, idx)
	}
	assert.Equal(t, 3, q.Len())
	q.Close()

	var got []string
	for {
		item, ok := q.Pop()
		if !ok {
			break
		}
		got = append(got, item.Value)
	}
	assert.Equal(t, []string{"a", "b", "c"}, got)
	assert.Equal(t, 3, q.Pushed())

	_, err := q.Push("d")
	assert.ErrorIs(t, err, ErrClosed)
}

func TestWorkQueueCloseWakesConsumers(t *testing.T) {
	q := NewWorkQueue[int]()

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, ok := q.Pop()
			assert.False(t, ok)
		}()
	}

	time.Sleep(10 * time.Millisecond)
	q.Close()
	q.Close()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("consumers not woken by Close")
	}
}

func TestWorkQueueConcurrentExactlyOnce(t *testing.T) {
	q := NewWorkQueue[int]()
	const n = 10000

	seen := make([]int, n)
	var mu sync.Mutex
	var wg sync.WaitGroup

	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				item, ok := q.Pop()
				if !ok {
					return
				}
				assert.Equal(t, item.Index, item.Value)
				mu.Lock()
				seen[item.Index]++
				mu.Unlock()
			}
		}()
	}

	for i := range n {
		_, err := q.Push(i)
		require.NoError(t, err)
	}
	q.Close()
	wg.Wait()

	for i, c := range seen {
		require.Equal(t, 1, c, "index %d", i)
	}
	assert.Equal(t, 0, q.Len())
}

func TestWorkQueuePopContext(t *testing.T) {
	q := NewWorkQueue[int]()
	_, _ = q.Push(1)

	item, ok, err := q.PopContext(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, item.Value)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, ok, err = q.PopContext(ctx)
	assert.False(t, ok)
	assert.ErrorIs(t, err, context.Canceled)
}
