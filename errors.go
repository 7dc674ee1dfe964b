package sparseknn

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidK is returned when k is negative.
	ErrInvalidK = errors.New("k must not be negative")

	// ErrInvalidWorkers is returned when the worker count is not positive.
	ErrInvalidWorkers = errors.New("workers must be positive")

	// ErrNotTrained is returned when predicting before training.
	ErrNotTrained = errors.New("predictor is not trained")

	// ErrAlreadyTrained is returned when Train is called twice.
	ErrAlreadyTrained = errors.New("predictor is already trained")

	// ErrOpenCorpus is returned when the training corpus cannot be opened.
	ErrOpenCorpus = errors.New("cannot open training corpus")
)

// ErrInvalidMetric indicates an unsupported distance metric.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrInvalidMetric struct {
	Metric string
	cause  error
}

func (e *ErrInvalidMetric) Error() string {
	return fmt.Sprintf("invalid distance metric: %s", e.Metric)
}

func (e *ErrInvalidMetric) Unwrap() error { return e.cause }

// ErrInvalidNoiseThreshold indicates a noise threshold outside [0, 1].
type ErrInvalidNoiseThreshold struct {
	Threshold float64
}

func (e *ErrInvalidNoiseThreshold) Error() string {
	return fmt.Sprintf("invalid noise threshold: %g", e.Threshold)
}
