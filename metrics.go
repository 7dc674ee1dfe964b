package sparseknn

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordTrain is called after each training pass.
	// examples is the corpus size, duration is the total time taken,
	// err is nil if successful.
	RecordTrain(examples int, duration time.Duration, err error)

	// RecordPredict is called after each prediction.
	// cached reports whether the prediction cache answered the query.
	RecordPredict(k int, duration time.Duration, cached bool, err error)

	// RecordEvaluation is called after each evaluated query with the
	// running number of correct and total predictions.
	RecordEvaluation(correct, total int)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordTrain(int, time.Duration, error)         {}
func (NoopMetricsCollector) RecordPredict(int, time.Duration, bool, error) {}
func (NoopMetricsCollector) RecordEvaluation(int, int)                     {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	TrainCount        atomic.Int64
	TrainErrors       atomic.Int64
	TrainExamples     atomic.Int64
	TrainTotalNanos   atomic.Int64
	PredictCount      atomic.Int64
	PredictErrors     atomic.Int64
	PredictCacheHits  atomic.Int64
	PredictTotalNanos atomic.Int64
	EvalCorrect       atomic.Int64
	EvalTotal         atomic.Int64
}

// RecordTrain implements MetricsCollector.
func (b *BasicMetricsCollector) RecordTrain(examples int, duration time.Duration, err error) {
	b.TrainCount.Add(1)
	b.TrainTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.TrainErrors.Add(1)
		return
	}
	b.TrainExamples.Add(int64(examples))
}

// RecordPredict implements MetricsCollector.
func (b *BasicMetricsCollector) RecordPredict(_ int, duration time.Duration, cached bool, err error) {
	b.PredictCount.Add(1)
	b.PredictTotalNanos.Add(duration.Nanoseconds())
	if cached {
		b.PredictCacheHits.Add(1)
	}
	if err != nil {
		b.PredictErrors.Add(1)
	}
}

// RecordEvaluation implements MetricsCollector.
func (b *BasicMetricsCollector) RecordEvaluation(correct, total int) {
	b.EvalCorrect.Store(int64(correct))
	b.EvalTotal.Store(int64(total))
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		TrainCount:       b.TrainCount.Load(),
		TrainErrors:      b.TrainErrors.Load(),
		TrainExamples:    b.TrainExamples.Load(),
		PredictCount:     b.PredictCount.Load(),
		PredictErrors:    b.PredictErrors.Load(),
		PredictCacheHits: b.PredictCacheHits.Load(),
		PredictAvgNanos:  b.getAvgPredictNanos(),
		EvalCorrect:      b.EvalCorrect.Load(),
		EvalTotal:        b.EvalTotal.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgPredictNanos() int64 {
	count := b.PredictCount.Load()
	if count == 0 {
		return 0
	}
	return b.PredictTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	TrainCount       int64
	TrainErrors      int64
	TrainExamples    int64
	PredictCount     int64
	PredictErrors    int64
	PredictCacheHits int64
	PredictAvgNanos  int64
	EvalCorrect      int64
	EvalTotal        int64
}
