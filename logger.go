package sparseknn

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with classifier-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithK adds a k (neighbor count) field to the logger.
func (l *Logger) WithK(k int) *Logger {
	return &Logger{
		Logger: l.Logger.With("k", k),
	}
}

// WithWorkers adds a workers field to the logger.
func (l *Logger) WithWorkers(workers int) *Logger {
	return &Logger{
		Logger: l.Logger.With("workers", workers),
	}
}

// LogTrain logs a completed training pass.
func (l *Logger) LogTrain(ctx context.Context, stats TrainStats, err error) {
	if err != nil {
		l.ErrorContext(ctx, "training failed",
			"examples", stats.Examples,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "training completed",
		"examples", stats.Examples,
		"features", stats.Features,
		"retained_features", stats.RetainedFeatures,
		"removed_occurrences", stats.RemovedOccurrences,
		"invalid_features", stats.Parse.InvalidFeatures,
		"short_keys", stats.Parse.ShortKeys,
		"duration", stats.Duration,
	)
}

// LogPredict logs a single prediction.
func (l *Logger) LogPredict(ctx context.Context, id, category string, neighbors int, cached bool, err error) {
	if err != nil {
		l.ErrorContext(ctx, "prediction failed",
			"id", id,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "prediction completed",
		"id", id,
		"category", category,
		"neighbors", neighbors,
		"cached", cached,
	)
}

// LogRun logs the end of a query run.
func (l *Logger) LogRun(ctx context.Context, summary Summary, eval bool, elapsed time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "query run failed",
			"total", summary.Total,
			"error", err,
		)
		return
	}
	if eval {
		l.InfoContext(ctx, "query run completed",
			"total", summary.Total,
			"correct", summary.Correct,
			"accuracy", summary.Accuracy(),
			"duration", elapsed,
		)
		return
	}
	l.InfoContext(ctx, "query run completed",
		"total", summary.Total,
		"duration", elapsed,
	)
}
