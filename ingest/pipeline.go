package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/hupe1980/sparseknn/internal/queue"
	"github.com/hupe1980/sparseknn/model"
)

// DefaultProgressEvery is the number of parsed examples between progress callbacks.
const DefaultProgressEvery = 1000

// PipelineOptions configures a Pipeline.
type PipelineOptions struct {
	// Workers is the number of parser goroutines. Values < 1 mean 1.
	Workers int
	// ProgressEvery is the number of parsed examples between OnProgress calls.
	// Values < 1 mean DefaultProgressEvery.
	ProgressEvery int
	// OnProgress receives the running number of parsed examples. May be nil.
	OnProgress func(parsed int)
}

// Pipeline converts a stream of lines into examples with one producer and
// several parser workers.
//
// The producer reads the LineSource until EOF or the first blank line and pushes
// each line, tagged with its position, into a closable work queue. Workers pop lines,
// parse them and store the example at the line's position in the result slice.
// Every line is parsed exactly once and the result keeps input order.
type Pipeline struct {
	parser *Parser
	opts   PipelineOptions
}

// NewPipeline creates a Pipeline that parses with parser.
func NewPipeline(parser *Parser, opts PipelineOptions) *Pipeline {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.ProgressEvery < 1 {
		opts.ProgressEvery = DefaultProgressEvery
	}
	return &Pipeline{parser: parser, opts: opts}
}

// Run ingests src and returns one example per input line, in input order.
func (p *Pipeline) Run(ctx context.Context, src LineSource) ([]*model.Example, error) {
	q := queue.NewWorkQueue[string]()
	defer q.Close()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer q.Close()
		return produce(ctx, src, q)
	})

	var (
		resultsMu sync.Mutex
		results   []*model.Example
		parsed    atomic.Int64
		progress  = &rate.Sometimes{Every: p.opts.ProgressEvery}
	)

	for range p.opts.Workers {
		g.Go(func() error {
			for {
				item, ok, err := q.PopContext(ctx)
				if err != nil {
					return err
				}
				if !ok {
					return nil
				}

				e, err := p.parser.Parse(item.Value, item.Index+1)
				if err != nil {
					q.Close()
					return err
				}

				resultsMu.Lock()
				if n := q.Pushed(); len(results) < n {
					results = append(results, make([]*model.Example, n-len(results))...)
				}
				results[item.Index] = e
				resultsMu.Unlock()

				n := parsed.Add(1)
				if p.opts.OnProgress != nil {
					progress.Do(func() { p.opts.OnProgress(int(n)) })
				}
			}
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Workers exit only once the queue is closed and drained.
	return results[:q.Pushed()], nil
}

func produce(ctx context.Context, src LineSource, q *queue.WorkQueue[string]) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		line, err := src.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("read line: %w", err)
		}

		// A blank line terminates the stream.
		if strings.TrimSpace(line) == "" {
			return nil
		}

		if _, err := q.Push(line); err != nil {
			if errors.Is(err, queue.ErrClosed) {
				return nil
			}
			return err
		}
	}
}
