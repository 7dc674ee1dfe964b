// Command sparseknn classifies sparse feature vectors read from stdin with a
// k-nearest-neighbour vote over a training corpus.
//
//	sparseknn -t train.txt -k 10 -d cosine -e < test.txt
//
// Each query line produces "<identifier> <category>" on stdout. Progress,
// accuracy and logs go to stderr, or to -log-file when set.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hupe1980/sparseknn"
	"github.com/hupe1980/sparseknn/distance"
	"github.com/hupe1980/sparseknn/ingest"
	"github.com/hupe1980/sparseknn/normalize"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg, err := parseArgs(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintln(stderr, err)
		}
		return 1
	}

	logger, closer, err := newLogger(cfg.Log, stderr)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer closer.Close()

	opts, err := predictorOptions(cfg)
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		return 1
	}
	opts = append(opts,
		sparseknn.WithLogger(logger),
		sparseknn.WithReporter(sparseknn.NewWriterReporter(stdout, stderr)),
	)

	if cfg.Metrics.Addr != "" {
		reg := prometheus.NewRegistry()
		opts = append(opts, sparseknn.WithMetricsCollector(NewPrometheusCollector(reg)))

		srv := serveMetrics(cfg.Metrics.Addr, reg, logger)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		logger.Info("serving metrics", "addr", cfg.Metrics.Addr)
	}

	p, err := sparseknn.New(opts...)
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		return 1
	}

	logger.Info("loading training examples",
		"train", cfg.Train,
		"threads", cfg.Threads,
		"k", cfg.K,
		"distance", cfg.Distance,
	)
	if err := p.TrainFile(ctx, cfg.Train); err != nil {
		logger.Error("training failed", "error", err)
		return 1
	}

	if _, err := p.Run(ctx, ingest.NewReaderSource(stdin), cfg.Eval); err != nil {
		logger.Error("prediction failed", "error", err)
		return 1
	}
	return 0
}

func predictorOptions(cfg *Config) ([]sparseknn.Option, error) {
	metric, err := distance.ParseMetric(cfg.Distance)
	if err != nil {
		return nil, err
	}
	kind, err := normalize.ParseKind(cfg.Normalize)
	if err != nil {
		return nil, err
	}
	policy, err := ingest.ParseErrorPolicy(cfg.ErrorPolicy)
	if err != nil {
		return nil, err
	}

	return []sparseknn.Option{
		sparseknn.WithWorkers(cfg.Threads),
		sparseknn.WithK(cfg.K),
		sparseknn.WithMetric(metric),
		sparseknn.WithNormalization(kind),
		sparseknn.WithNoiseThreshold(cfg.Noise),
		sparseknn.WithErrorPolicy(policy),
		sparseknn.WithPredictionCache(cfg.CacheSize),
		sparseknn.WithSourceConfig(cfg.sourceConfig()),
	}, nil
}
