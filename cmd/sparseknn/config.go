package main

import (
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/BurntSushi/toml"

	"github.com/hupe1980/sparseknn"
	"github.com/hupe1980/sparseknn/noise"
	"github.com/hupe1980/sparseknn/source"
)

// Config holds the command line settings. Every field can be set in the
// TOML file passed with -config; flags given explicitly win over the file.
type Config struct {
	Train       string  `toml:"train"`
	Threads     int     `toml:"threads"`
	K           int     `toml:"k"`
	Distance    string  `toml:"distance"`
	Eval        bool    `toml:"eval"`
	Normalize   string  `toml:"normalize"`
	Noise       float64 `toml:"noise"`
	ErrorPolicy string  `toml:"error_policy"`
	CacheSize   int     `toml:"cache_size"`

	Log     LogConfig     `toml:"log"`
	Metrics MetricsConfig `toml:"metrics"`
	Source  source.Config `toml:"source"`
}

// LogConfig configures diagnostics output.
type LogConfig struct {
	Level      string `toml:"level"`
	File       string `toml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
	Compress   bool   `toml:"compress"`
}

// MetricsConfig configures the Prometheus endpoint. An empty Addr disables it.
type MetricsConfig struct {
	Addr string `toml:"addr"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Threads:     sparseknn.DefaultWorkers,
		K:           sparseknn.DefaultK,
		Distance:    "cosine",
		Normalize:   "zscore",
		Noise:       noise.DefaultThreshold,
		ErrorPolicy: "skip",
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  100,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// LoadConfig reads a TOML file over the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

var errUsage = errors.New("invalid arguments")

// parseArgs parses args, merges them over the optional config file and
// validates the result. errUsage means the caller should print usage and
// exit with status 1.
func parseArgs(args []string, stderr io.Writer) (*Config, error) {
	flags := DefaultConfig()
	var configPath string

	fs := flag.NewFlagSet("sparseknn", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { usage(fs, stderr) }

	fs.StringVar(&flags.Train, "t", flags.Train, "training example file or uri")
	fs.StringVar(&flags.Train, "train", flags.Train, "training example file or uri")
	fs.IntVar(&flags.Threads, "j", flags.Threads, "number of threads")
	fs.IntVar(&flags.Threads, "threads", flags.Threads, "number of threads")
	fs.IntVar(&flags.K, "k", flags.K, "number of neighbours")
	fs.StringVar(&flags.Distance, "d", flags.Distance, "distance: euclidean or cosine")
	fs.StringVar(&flags.Distance, "distance", flags.Distance, "distance: euclidean or cosine")
	fs.BoolVar(&flags.Eval, "e", flags.Eval, "evaluation mode")
	fs.BoolVar(&flags.Eval, "eval", flags.Eval, "evaluation mode")
	fs.StringVar(&flags.Normalize, "normalize", flags.Normalize, "normalization: zscore, minmax or none")
	fs.Float64Var(&flags.Noise, "noise", flags.Noise, "minimum relative feature frequency, 0 disables")
	fs.StringVar(&flags.ErrorPolicy, "error-policy", flags.ErrorPolicy, "malformed features: skip or fail")
	fs.IntVar(&flags.CacheSize, "cache", flags.CacheSize, "prediction cache size, 0 disables")
	fs.StringVar(&flags.Log.Level, "log-level", flags.Log.Level, "log level: debug, info, warn, error")
	fs.StringVar(&flags.Log.File, "log-file", flags.Log.File, "write JSON logs to a rotated file instead of stderr")
	fs.StringVar(&flags.Metrics.Addr, "metrics-addr", flags.Metrics.Addr, "serve Prometheus metrics on this address")
	fs.StringVar(&configPath, "config", "", "TOML config file")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg := flags
	if configPath != "" {
		fileCfg, err := LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		fs.Visit(func(f *flag.Flag) { override(fileCfg, flags, f.Name) })
		cfg = fileCfg
	}

	if cfg.Train == "" || cfg.Threads <= 0 || cfg.K < 0 {
		fs.Usage()
		return nil, errUsage
	}
	return cfg, nil
}

// override copies the field behind flag name from src to dst.
func override(dst, src *Config, name string) {
	switch name {
	case "t", "train":
		dst.Train = src.Train
	case "j", "threads":
		dst.Threads = src.Threads
	case "k":
		dst.K = src.K
	case "d", "distance":
		dst.Distance = src.Distance
	case "e", "eval":
		dst.Eval = src.Eval
	case "normalize":
		dst.Normalize = src.Normalize
	case "noise":
		dst.Noise = src.Noise
	case "error-policy":
		dst.ErrorPolicy = src.ErrorPolicy
	case "cache":
		dst.CacheSize = src.CacheSize
	case "log-level":
		dst.Log.Level = src.Log.Level
	case "log-file":
		dst.Log.File = src.Log.File
	case "metrics-addr":
		dst.Metrics.Addr = src.Metrics.Addr
	}
}

func usage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintf(w, "%s usage: %s [options] < file\n", fs.Name(), fs.Name())
	fmt.Fprintln(w, "OPTIONS:")
	fs.PrintDefaults()
}

func (c *Config) sourceConfig() source.Config {
	return c.Source.WithEnv()
}
