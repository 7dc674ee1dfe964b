package distance

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/sparseknn/model"
)

// Range is a half-open index range [Begin, End) of a corpus.
type Range struct {
	Begin int
	End   int
}

// Len returns the number of indices in the range.
func (r Range) Len() int { return r.End - r.Begin }

// Compute writes fn(query, corpus[i]) into corpus[i].Distance for every i in [begin, end).
func Compute(query *model.Example, corpus []*model.Example, begin, end int, fn Func) {
	for i := begin; i < end; i++ {
		corpus[i].Distance = fn(query.Features, corpus[i].Features)
	}
}

// Partition splits n indices into contiguous, non-overlapping ranges of size n/workers.
// The last range absorbs the remainder. workers is clamped to [1, n]; n == 0 yields no ranges.
func Partition(n, workers int) []Range {
	if n <= 0 {
		return nil
	}
	workers = max(1, min(workers, n))

	size := n / workers
	ranges := make([]Range, workers)
	for i := range workers {
		ranges[i] = Range{Begin: i * size, End: (i + 1) * size}
	}
	ranges[workers-1].End = n

	return ranges
}

// ComputeParallel computes the distance of query to every corpus example using one
// goroutine per Partition range. Each goroutine only writes the Distance fields of its
// own range, so no locking is needed. It returns after every goroutine has finished.
func ComputeParallel(ctx context.Context, query *model.Example, corpus []*model.Example, workers int, fn Func) error {
	ranges := Partition(len(corpus), workers)
	if len(ranges) == 1 {
		Compute(query, corpus, ranges[0].Begin, ranges[0].End, fn)
		return ctx.Err()
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, r := range ranges {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			Compute(query, corpus, r.Begin, r.End, fn)
			return nil
		})
	}

	return g.Wait()
}
