package sparseknn

import (
	"fmt"
	"io"
	"sync"
)

// Reporter receives the observable output of a Predictor.
//
// Predictions are primary output. Progress and accuracy are side channels
// and must not be mixed into the prediction stream.
type Reporter interface {
	// Progress is called periodically during training with the number of
	// examples parsed so far.
	Progress(parsed int)
	// Prediction is called once per query.
	Prediction(id, category string)
	// Accuracy is called in evaluation mode after every query and once more
	// when the query stream ends.
	Accuracy(correct, total int)
}

// NoopReporter discards every event.
type NoopReporter struct{}

func (NoopReporter) Progress(int)              {}
func (NoopReporter) Prediction(string, string) {}
func (NoopReporter) Accuracy(int, int)         {}

// WriterReporter writes predictions as "<id> <category>" lines to Out and
// progress and accuracy lines to Diag. Either writer may be nil.
type WriterReporter struct {
	Out  io.Writer
	Diag io.Writer

	mu sync.Mutex
}

// NewWriterReporter creates a WriterReporter.
func NewWriterReporter(out, diag io.Writer) *WriterReporter {
	return &WriterReporter{Out: out, Diag: diag}
}

// Progress implements Reporter.
func (r *WriterReporter) Progress(parsed int) {
	r.write(r.Diag, "read %d examples\n", parsed)
}

// Prediction implements Reporter.
func (r *WriterReporter) Prediction(id, category string) {
	r.write(r.Out, "%s %s\n", id, category)
}

// Accuracy implements Reporter.
func (r *WriterReporter) Accuracy(correct, total int) {
	r.write(r.Diag, "correct: %d\ttotal: %d\taccuracy: %f\n", correct, total, ratio(correct, total))
}

func (r *WriterReporter) write(w io.Writer, format string, args ...any) {
	if w == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	_, _ = fmt.Fprintf(w, format, args...)
}

func ratio(correct, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(correct) / float64(total)
}
