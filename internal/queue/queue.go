// Package queue provides a closable, unbounded FIFO work queue.
package queue

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned by Push after Close.
var ErrClosed = errors.New("queue: closed")

// Item is a unit of work tagged with its position in the input stream.
type Item[T any] struct {
	Index int
	Value T
}

// WorkQueue is an unbounded multi-producer multi-consumer FIFO.
//
// Pop blocks on a condition variable until an item is available or the queue is
// closed and drained, so consumers never poll. Close wakes every blocked consumer.
type WorkQueue[T any] struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []Item[T]
	head   int
	next   int // index assigned to the next pushed item
	closed bool
}

// NewWorkQueue creates an empty WorkQueue.
func NewWorkQueue[T any]() *WorkQueue[T] {
	q := &WorkQueue[T]{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Push appends v and returns the sequential index assigned to it.
func (q *WorkQueue[T]) Push(v T) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return 0, ErrClosed
	}

	idx := q.next
	q.next++
	q.items = append(q.items, Item[T]{Index: idx, Value: v})
	q.cond.Signal()

	return idx, nil
}

// Pop removes the oldest item. It blocks until an item is available.
// ok is false once the queue is closed and no items remain.
func (q *WorkQueue[T]) Pop() (Item[T], bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.head == len(q.items) && !q.closed {
		q.cond.Wait()
	}

	if q.head == len(q.items) {
		return Item[T]{}, false
	}

	item := q.items[q.head]
	q.items[q.head] = Item[T]{} // release the value for GC
	q.head++

	// Compact once the consumed prefix dominates the backing slice.
	if q.head > 1024 && q.head*2 > len(q.items) {
		n := copy(q.items, q.items[q.head:])
		clear(q.items[n:])
		q.items = q.items[:n]
		q.head = 0
	}

	return item, true
}

// PopContext is like Pop but gives up when ctx is done.
// A goroutine waiting on the queue is woken by closing it; callers that cancel ctx
// should also Close the queue.
func (q *WorkQueue[T]) PopContext(ctx context.Context) (Item[T], bool, error) {
	if err := ctx.Err(); err != nil {
		return Item[T]{}, false, err
	}
	item, ok := q.Pop()
	if !ok {
		if err := ctx.Err(); err != nil {
			return Item[T]{}, false, err
		}
	}
	return item, ok, nil
}

// Close marks the queue finished. Items already queued are still delivered.
// Close is idempotent.
func (q *WorkQueue[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	q.cond.Broadcast()
}

// Len returns the number of queued, unclaimed items.
func (q *WorkQueue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items) - q.head
}

// Pushed returns the total number of items ever pushed.
func (q *WorkQueue[T]) Pushed() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.next
}
