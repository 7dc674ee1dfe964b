package sparseknn

import (
	"log/slog"

	"github.com/hupe1980/sparseknn/distance"
	"github.com/hupe1980/sparseknn/ingest"
	"github.com/hupe1980/sparseknn/noise"
	"github.com/hupe1980/sparseknn/normalize"
	"github.com/hupe1980/sparseknn/source"
)

const (
	// DefaultK is the default number of neighbors.
	DefaultK = 10
	// DefaultWorkers is the default number of worker goroutines.
	DefaultWorkers = 1
)

type options struct {
	workers          int
	k                int
	metric           distance.Metric
	normalization    normalize.Kind
	noiseThreshold   float64
	parseOptions     ingest.ParseOptions
	cacheSize        int
	source           source.Config
	metricsCollector MetricsCollector
	logger           *Logger
	reporter         Reporter
}

// Option configures a Predictor.
type Option func(*options)

// WithWorkers sets the number of goroutines used for ingestion and for the
// distance computation of each query. Must be positive.
func WithWorkers(workers int) Option {
	return func(o *options) {
		o.workers = workers
	}
}

// WithK sets the number of neighbors that vote on a prediction.
// k = 0 yields predictions without a category.
func WithK(k int) Option {
	return func(o *options) {
		o.k = k
	}
}

// WithMetric sets the distance metric. The default is cosine.
func WithMetric(m distance.Metric) Option {
	return func(o *options) {
		o.metric = m
	}
}

// WithNormalization sets the feature normalization strategy. The default is z-score.
func WithNormalization(kind normalize.Kind) Option {
	return func(o *options) {
		o.normalization = kind
	}
}

// WithNoiseThreshold sets the minimum relative frequency a feature needs to be
// retained. Zero disables the filter.
func WithNoiseThreshold(threshold float64) Option {
	return func(o *options) {
		o.noiseThreshold = threshold
	}
}

// WithParseOptions replaces the line parser configuration.
//
// Example keeping every key and skipping L2 normalization:
//
//	p, _ := sparseknn.New(sparseknn.WithParseOptions(ingest.ParseOptions{
//	    MinKeyLength: 1,
//	}))
func WithParseOptions(po ingest.ParseOptions) Option {
	return func(o *options) {
		o.parseOptions = po
	}
}

// WithErrorPolicy sets how malformed input is handled. It overrides the policy
// of an earlier WithParseOptions.
func WithErrorPolicy(policy ingest.ErrorPolicy) Option {
	return func(o *options) {
		o.parseOptions.Policy = policy
	}
}

// WithPredictionCache enables an LRU cache of the given size keyed by the
// preprocessed query features. size <= 0 disables the cache.
func WithPredictionCache(size int) Option {
	return func(o *options) {
		o.cacheSize = size
	}
}

// WithSourceConfig configures remote corpus access for TrainFile.
func WithSourceConfig(cfg source.Config) Option {
	return func(o *options) {
		o.source = cfg
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &sparseknn.BasicMetricsCollector{}
//	p, _ := sparseknn.New(sparseknn.WithMetricsCollector(metrics))
//	// ... train and predict ...
//	stats := metrics.GetStats()
//	fmt.Printf("Predictions: %d, Avg latency: %dns\n", stats.PredictCount, stats.PredictAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := sparseknn.NewJSONLogger(slog.LevelInfo)
//	p, _ := sparseknn.New(sparseknn.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithReporter sets the receiver of progress, prediction and accuracy events.
func WithReporter(r Reporter) Option {
	return func(o *options) {
		o.reporter = r
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		workers:          DefaultWorkers,
		k:                DefaultK,
		metric:           distance.MetricCosine,
		normalization:    normalize.KindZScore,
		noiseThreshold:   noise.DefaultThreshold,
		parseOptions:     ingest.DefaultParseOptions(),
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
		reporter:         NoopReporter{},
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	if o.reporter == nil {
		o.reporter = NoopReporter{}
	}
	return o
}
