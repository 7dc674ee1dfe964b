package sparseknn

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"slices"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/hupe1980/sparseknn/distance"
	"github.com/hupe1980/sparseknn/ingest"
	"github.com/hupe1980/sparseknn/internal/searcher"
	"github.com/hupe1980/sparseknn/model"
	"github.com/hupe1980/sparseknn/noise"
	"github.com/hupe1980/sparseknn/normalize"
	"github.com/hupe1980/sparseknn/source"
	"github.com/hupe1980/sparseknn/vocab"
)

// Neighbor is a training example selected for a prediction.
type Neighbor = searcher.Neighbor

// Prediction is the result of classifying one query.
type Prediction struct {
	ID       string
	Category string // empty if no neighbor voted
	// Neighbors are the selected training examples, nearest first.
	Neighbors []Neighbor
	// Cached reports whether the prediction came from the prediction cache.
	Cached bool
}

// TrainStats describes a completed training pass.
type TrainStats struct {
	Examples int
	// Features is the vocabulary size.
	Features int
	// RetainedFeatures is the number of ids kept by the noise filter, or -1
	// if the filter keeps everything.
	RetainedFeatures int
	// RemovedOccurrences is the number of feature occurrences dropped by the
	// noise filter.
	RemovedOccurrences int
	Parse              ingest.Stats
	Duration           time.Duration
}

// Summary counts the queries of a Run.
type Summary struct {
	Total   int
	Correct int // only maintained in evaluation mode
}

// Accuracy returns Correct/Total, or 0 for an empty run.
func (s Summary) Accuracy() float64 { return ratio(s.Correct, s.Total) }

type cachedPrediction struct {
	category  string
	neighbors []Neighbor
}

// Predictor is an exact k-nearest-neighbor classifier over sparse vectors.
//
// A Predictor is trained once and then answers queries. Predictions are
// serialized: the corpus carries per-query scratch distances.
type Predictor struct {
	opts        options
	vocab       *vocab.Vocabulary
	trainParser *ingest.Parser
	queryParser *ingest.Parser
	dist        distance.Func
	normalizer  normalize.Normalizer
	cache       *lru.Cache[string, cachedPrediction]

	mu      sync.Mutex
	trained bool
	stats   TrainStats
	filter  *noise.Filter
	corpus  []*model.Example
}

// New creates an untrained Predictor.
func New(optFns ...Option) (*Predictor, error) {
	o := applyOptions(optFns)

	if o.workers < 1 {
		return nil, ErrInvalidWorkers
	}
	if o.k < 0 {
		return nil, ErrInvalidK
	}
	if math.IsNaN(o.noiseThreshold) || o.noiseThreshold < 0 || o.noiseThreshold > 1 {
		return nil, &ErrInvalidNoiseThreshold{Threshold: o.noiseThreshold}
	}

	fn, err := distance.Provider(o.metric)
	if err != nil {
		return nil, &ErrInvalidMetric{Metric: o.metric.String(), cause: err}
	}

	normalizer, err := normalize.New(o.normalization)
	if err != nil {
		return nil, err
	}

	v := vocab.New()
	p := &Predictor{
		opts:        o,
		vocab:       v,
		trainParser: ingest.NewParser(v, o.parseOptions, true),
		queryParser: ingest.NewParser(v, o.parseOptions, false),
		dist:        fn,
		normalizer:  normalizer,
	}

	if o.cacheSize > 0 {
		cache, err := lru.New[string, cachedPrediction](o.cacheSize)
		if err != nil {
			return nil, fmt.Errorf("prediction cache: %w", err)
		}
		p.cache = cache
	}

	return p, nil
}

// Train ingests the labeled corpus from src, fits the noise filter and the
// normalizer on it and prepares the predictor for queries.
func (p *Predictor) Train(ctx context.Context, src ingest.LineSource) (err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.trained {
		return ErrAlreadyTrained
	}

	start := time.Now()
	var stats TrainStats
	defer func() {
		stats.Duration = time.Since(start)
		p.opts.metricsCollector.RecordTrain(stats.Examples, stats.Duration, err)
		p.opts.logger.WithWorkers(p.opts.workers).LogTrain(ctx, stats, err)
	}()

	pipeline := ingest.NewPipeline(p.trainParser, ingest.PipelineOptions{
		Workers:    p.opts.workers,
		OnProgress: p.opts.reporter.Progress,
	})

	corpus, err := pipeline.Run(ctx, src)
	if err != nil {
		return fmt.Errorf("ingest training corpus: %w", err)
	}

	filter := noise.NewFilter(p.vocab, p.opts.noiseThreshold)
	stats.RemovedOccurrences = filter.ApplyAll(corpus)

	p.normalizer.Fit(corpus)
	normalize.NormalizeAll(p.normalizer, corpus)

	stats.Examples = len(corpus)
	stats.Features = p.vocab.Len()
	stats.RetainedFeatures = filter.Retained()
	stats.Parse = p.trainParser.Stats()

	p.filter = filter
	p.corpus = corpus
	p.stats = stats
	p.trained = true

	return nil
}

// TrainFile trains on the corpus at uri. uri is a local path or an
// s3:// or minio:// object URL; compressed corpora are detected by extension.
func (p *Predictor) TrainFile(ctx context.Context, uri string) error {
	rc, err := source.Open(ctx, uri, p.opts.source)
	if err != nil {
		return fmt.Errorf("%w %q: %w", ErrOpenCorpus, uri, err)
	}
	defer rc.Close()

	return p.Train(ctx, ingest.NewReaderSource(rc))
}

// Predict classifies q. q is not modified.
func (p *Predictor) Predict(ctx context.Context, q *model.Example) (Prediction, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.predictLocked(ctx, q)
}

// PredictLine parses line as a query and classifies it.
func (p *Predictor) PredictLine(ctx context.Context, line string) (Prediction, error) {
	q, err := p.queryParser.Parse(line, 0)
	if err != nil {
		return Prediction{}, err
	}
	return p.Predict(ctx, q)
}

func (p *Predictor) predictLocked(ctx context.Context, q *model.Example) (pred Prediction, err error) {
	start := time.Now()
	defer func() {
		p.opts.metricsCollector.RecordPredict(p.opts.k, time.Since(start), pred.Cached, err)
		p.opts.logger.LogPredict(ctx, q.ID, pred.Category, len(pred.Neighbors), pred.Cached, err)
	}()

	if !p.trained {
		return Prediction{}, ErrNotTrained
	}

	query := q.Clone()
	p.filter.Apply(query)
	p.normalizer.Normalize(query)

	var key string
	if p.cache != nil {
		key = cacheKey(query.Features)
		if c, ok := p.cache.Get(key); ok {
			return Prediction{
				ID:        q.ID,
				Category:  c.category,
				Neighbors: slices.Clone(c.neighbors),
				Cached:    true,
			}, nil
		}
	}

	if err := distance.ComputeParallel(ctx, query, p.corpus, p.opts.workers, p.dist); err != nil {
		return Prediction{}, fmt.Errorf("compute distances: %w", err)
	}

	neighbors := searcher.SelectTopK(p.corpus, p.opts.k)
	category, _ := searcher.Vote(neighbors)

	if p.cache != nil {
		p.cache.Add(key, cachedPrediction{category: category, neighbors: slices.Clone(neighbors)})
	}

	return Prediction{ID: q.ID, Category: category, Neighbors: neighbors}, nil
}

// Run classifies every query line of src until EOF or the first blank line
// and reports each prediction. In evaluation mode the category field of each
// query is the reference label and running accuracy is reported after every
// query and once at the end.
func (p *Predictor) Run(ctx context.Context, src ingest.LineSource, eval bool) (summary Summary, err error) {
	start := time.Now()
	defer func() {
		p.opts.logger.LogRun(ctx, summary, eval, time.Since(start), err)
	}()

	for lineNo := 1; ; lineNo++ {
		if cerr := ctx.Err(); cerr != nil {
			return summary, cerr
		}

		line, rerr := src.ReadLine()
		if errors.Is(rerr, io.EOF) {
			break
		}
		if rerr != nil {
			return summary, fmt.Errorf("read query: %w", rerr)
		}
		if strings.TrimSpace(line) == "" {
			break
		}

		q, perr := p.queryParser.Parse(line, lineNo)
		if perr != nil {
			return summary, perr
		}

		pred, perr := p.Predict(ctx, q)
		if perr != nil {
			return summary, perr
		}

		p.opts.reporter.Prediction(pred.ID, pred.Category)
		summary.Total++

		if eval {
			if pred.Category == q.Category {
				summary.Correct++
			}
			p.opts.reporter.Accuracy(summary.Correct, summary.Total)
			p.opts.metricsCollector.RecordEvaluation(summary.Correct, summary.Total)
		}
	}

	if eval {
		p.opts.reporter.Accuracy(summary.Correct, summary.Total)
	}

	return summary, nil
}

// Trained reports whether Train has completed.
func (p *Predictor) Trained() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.trained
}

// Len returns the number of training examples.
func (p *Predictor) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.corpus)
}

// Stats returns the statistics of the training pass.
func (p *Predictor) Stats() TrainStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

// Vocabulary returns the feature vocabulary shared by training and queries.
func (p *Predictor) Vocabulary() *vocab.Vocabulary { return p.vocab }

func cacheKey(features []model.Feature) string {
	buf := make([]byte, 0, len(features)*12)
	for _, f := range features {
		buf = binary.LittleEndian.AppendUint32(buf, f.ID)
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(f.Value))
	}
	return string(buf)
}
