package main

import (
	"io"
	"log/slog"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/hupe1980/sparseknn"
)

// newLogger builds the diagnostics logger. Console output goes through
// charmbracelet/log on stderr; with a log file configured, JSON records are
// written to a size-rotated file instead. The returned closer releases the
// file.
func newLogger(cfg LogConfig, stderr io.Writer) (*sparseknn.Logger, io.Closer, error) {
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}

	if cfg.File == "" {
		handler := log.NewWithOptions(stderr, log.Options{
			ReportTimestamp: true,
			Level:           level,
			Prefix:          "sparseknn",
		})
		return sparseknn.NewLogger(handler), io.NopCloser(nil), nil
	}

	file := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}
	handler := slog.NewJSONHandler(file, &slog.HandlerOptions{
		Level: slog.Level(level),
	})
	return sparseknn.NewLogger(handler), file, nil
}
