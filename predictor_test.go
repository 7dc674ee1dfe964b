package sparseknn

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/sparseknn/distance"
	"github.com/hupe1980/sparseknn/ingest"
	"github.com/hupe1980/sparseknn/model"
	"github.com/hupe1980/sparseknn/normalize"
	"github.com/hupe1980/sparseknn/testutil"
)

var tinyCorpus = []string{
	"e1 catA 1:1.0 2:0.0",
	"e2 catB 1:0.0 2:1.0",
	"e3 catA 1:0.9 2:0.1",
}

// rawParse keeps every key as-is and skips L2 normalization.
var rawParse = ingest.ParseOptions{MinKeyLength: 1}

type recordingReporter struct {
	mu          sync.Mutex
	progress    []int
	predictions []string
	accuracy    [][2]int
}

func (r *recordingReporter) Progress(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.progress = append(r.progress, n)
}

func (r *recordingReporter) Prediction(id, category string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.predictions = append(r.predictions, id+" "+category)
}

func (r *recordingReporter) Accuracy(correct, total int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.accuracy = append(r.accuracy, [2]int{correct, total})
}

func newTrained(t *testing.T, lines []string, opts ...Option) *Predictor {
	t.Helper()

	base := []Option{
		WithParseOptions(rawParse),
		WithNormalization(normalize.KindNone),
		WithNoiseThreshold(0),
	}
	p, err := New(append(base, opts...)...)
	require.NoError(t, err)
	require.NoError(t, p.Train(context.Background(), ingest.NewSliceSource(lines...)))
	return p
}

func neighborIDs(p *Predictor, pred Prediction) []string {
	ids := make([]string, len(pred.Neighbors))
	for i, n := range pred.Neighbors {
		ids[i] = p.corpus[n.Index].ID
	}
	return ids
}

func TestEndToEnd(t *testing.T) {
	tests := []struct {
		name      string
		k         int
		metric    distance.Metric
		query     string
		neighbors []string
		category  string
	}{
		{"EuclideanK2", 2, distance.MetricEuclidean, "q catA 1:1.0 2:0.0", []string{"e1", "e3"}, "catA"},
		{"CosineK1", 1, distance.MetricCosine, "q catB 1:0.0 2:1.0", []string{"e2"}, "catB"},
	}

	for _, tt := range tests {
		for _, workers := range []int{1, 2, 4} {
			t.Run(fmt.Sprintf("%s/workers=%d", tt.name, workers), func(t *testing.T) {
				p := newTrained(t, tinyCorpus, WithK(tt.k), WithMetric(tt.metric), WithWorkers(workers))
				assert.Equal(t, 3, p.Len())

				pred, err := p.PredictLine(context.Background(), tt.query)
				require.NoError(t, err)
				assert.Equal(t, "q", pred.ID)
				assert.Equal(t, tt.category, pred.Category)
				assert.Equal(t, tt.neighbors, neighborIDs(p, pred))
			})
		}
	}
}

func TestNewValidation(t *testing.T) {
	_, err := New(WithWorkers(0))
	assert.ErrorIs(t, err, ErrInvalidWorkers)

	_, err = New(WithK(-1))
	assert.ErrorIs(t, err, ErrInvalidK)

	_, err = New(WithMetric(distance.Metric(42)))
	var im *ErrInvalidMetric
	require.ErrorAs(t, err, &im)
	assert.NotNil(t, errors.Unwrap(im))

	_, err = New(WithNoiseThreshold(1.5))
	var nt *ErrInvalidNoiseThreshold
	assert.ErrorAs(t, err, &nt)

	_, err = New(WithNormalization(normalize.Kind(42)))
	assert.Error(t, err)

	p, err := New(WithK(0), WithLogger(nil), WithMetricsCollector(nil), WithReporter(nil))
	require.NoError(t, err)
	assert.False(t, p.Trained())
}

func TestLifecycleErrors(t *testing.T) {
	ctx := context.Background()

	p, err := New()
	require.NoError(t, err)

	_, err = p.PredictLine(ctx, "q c alpha:1")
	assert.ErrorIs(t, err, ErrNotTrained)

	_, err = p.Run(ctx, ingest.NewSliceSource("q c alpha:1"), false)
	assert.ErrorIs(t, err, ErrNotTrained)

	require.NoError(t, p.Train(ctx, ingest.NewSliceSource("e1 c alpha:1")))
	assert.True(t, p.Trained())
	assert.ErrorIs(t, p.Train(ctx, ingest.NewSliceSource("e2 c alpha:1")), ErrAlreadyTrained)
}

func TestPredictDoesNotModifyQuery(t *testing.T) {
	p := newTrained(t, tinyCorpus, WithNormalization(normalize.KindZScore), WithK(1))

	q := model.NewExample("q", "", []model.Feature{{ID: 0, Value: 3}, {ID: 1, Value: -2}})
	before := q.Clone()

	_, err := p.Predict(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, before, q)
}

func TestKZero(t *testing.T) {
	p := newTrained(t, tinyCorpus, WithK(0))

	pred, err := p.PredictLine(context.Background(), "q catA 1:1.0")
	require.NoError(t, err)
	assert.Empty(t, pred.Category)
	assert.Empty(t, pred.Neighbors)
}

func TestEmptyCorpus(t *testing.T) {
	p := newTrained(t, nil)

	pred, err := p.PredictLine(context.Background(), "q catA 1:1.0")
	require.NoError(t, err)
	assert.Empty(t, pred.Category)
}

func TestRunEvaluation(t *testing.T) {
	rep := &recordingReporter{}
	metrics := &BasicMetricsCollector{}
	p := newTrained(t, tinyCorpus,
		WithK(1),
		WithMetric(distance.MetricEuclidean),
		WithReporter(rep),
		WithMetricsCollector(metrics),
	)

	queries := ingest.NewSliceSource(
		"q1 catA 1:1.0 2:0.0",
		"q2 catA 1:0.0 2:1.0", // predicted catB
		"q3 catB 2:1.0",
		"   ",
		"q4 catA 1:1.0",
	)

	summary, err := p.Run(context.Background(), queries, true)
	require.NoError(t, err)

	assert.Equal(t, Summary{Total: 3, Correct: 2}, summary)
	assert.InDelta(t, 2.0/3.0, summary.Accuracy(), 1e-12)
	assert.Equal(t, []string{"q1 catA", "q2 catB", "q3 catB"}, rep.predictions)
	assert.Equal(t, [][2]int{{1, 1}, {1, 2}, {2, 3}, {2, 3}}, rep.accuracy)

	stats := metrics.GetStats()
	assert.Equal(t, int64(1), stats.TrainCount)
	assert.Equal(t, int64(3), stats.TrainExamples)
	assert.Equal(t, int64(3), stats.PredictCount)
	assert.Equal(t, int64(2), stats.EvalCorrect)
	assert.Equal(t, int64(3), stats.EvalTotal)
}

func TestRunWithoutEvaluation(t *testing.T) {
	rep := &recordingReporter{}
	p := newTrained(t, tinyCorpus, WithK(1), WithReporter(rep))

	summary, err := p.Run(context.Background(), ingest.NewSliceSource("q1 catB 1:1.0"), false)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Total)
	assert.Zero(t, summary.Correct)
	assert.Equal(t, []string{"q1 catA"}, rep.predictions)
	assert.Empty(t, rep.accuracy)
}

func TestRunFailFast(t *testing.T) {
	p := newTrained(t, tinyCorpus, WithErrorPolicy(ingest.FailFast))

	_, err := p.Run(context.Background(), ingest.NewSliceSource("q1 catA 1:1.0", "q2 catA 1:oops"), false)
	var pe *ingest.ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 2, pe.Line)
}

func TestPredictionCache(t *testing.T) {
	metrics := &BasicMetricsCollector{}
	p := newTrained(t, tinyCorpus, WithK(2), WithPredictionCache(16), WithMetricsCollector(metrics))
	ctx := context.Background()

	first, err := p.PredictLine(ctx, "q1 x 1:1.0 2:0.0")
	require.NoError(t, err)
	assert.False(t, first.Cached)

	second, err := p.PredictLine(ctx, "q2 x 2:0.0 1:1.0")
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, "q2", second.ID)
	assert.Equal(t, first.Category, second.Category)
	assert.Equal(t, first.Neighbors, second.Neighbors)

	assert.Equal(t, int64(1), metrics.GetStats().PredictCacheHits)
}

func TestWorkersAgree(t *testing.T) {
	rng := testutil.NewRNG(7)
	corpus := rng.SparseCorpus(300, 40, 0.2, 5)
	queries := rng.SparseCorpus(40, 40, 0.2, 5)

	key := func(id model.FeatureID) string { return fmt.Sprintf("f%d", id) }
	toLines := func(examples []*model.Example) []string {
		lines := make([]string, 0, len(examples))
		for _, e := range examples {
			if len(e.Features) == 0 {
				continue
			}
			lines = append(lines, testutil.Line(e, key))
		}
		return lines
	}
	train, query := toLines(corpus), toLines(queries)

	predictAll := func(workers int) []Prediction {
		p := newTrained(t, train, WithWorkers(workers), WithK(5), WithNormalization(normalize.KindMinMax))
		out := make([]Prediction, len(query))
		for i, line := range query {
			pred, err := p.PredictLine(context.Background(), line)
			require.NoError(t, err)
			out[i] = pred
		}
		return out
	}

	want := predictAll(1)
	for _, workers := range []int{2, 8} {
		got := predictAll(workers)
		for i := range want {
			assert.Equal(t, want[i].Category, got[i].Category, "query %d workers %d", i, workers)
			require.Len(t, got[i].Neighbors, len(want[i].Neighbors))
			for j := range want[i].Neighbors {
				assert.InDelta(t, want[i].Neighbors[j].Distance, got[i].Neighbors[j].Distance, 1e-9)
			}
		}
	}
}

func TestTrainFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "train.txt")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(tinyCorpus, "\n")+"\n"), 0o600))

	p, err := New(WithParseOptions(rawParse), WithNormalization(normalize.KindNone), WithNoiseThreshold(0), WithK(1))
	require.NoError(t, err)
	require.NoError(t, p.TrainFile(context.Background(), path))
	assert.Equal(t, 3, p.Len())
	assert.Equal(t, 3, p.Stats().Examples)
	assert.Equal(t, 2, p.Stats().Features)
	assert.Equal(t, -1, p.Stats().RetainedFeatures)

	q, err := New()
	require.NoError(t, err)
	err = q.TrainFile(context.Background(), filepath.Join(dir, "missing.txt"))
	assert.ErrorIs(t, err, ErrOpenCorpus)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.False(t, q.Trained())
}

func TestTrainProgress(t *testing.T) {
	lines := make([]string, 2500)
	for i := range lines {
		lines[i] = fmt.Sprintf("e%d c%d 1:%d", i, i%2, i)
	}

	rep := &recordingReporter{}
	newTrained(t, lines, WithReporter(rep), WithWorkers(2))

	assert.Len(t, rep.progress, 3)
}

func TestWriterReporter(t *testing.T) {
	var out, diag bytes.Buffer
	r := NewWriterReporter(&out, &diag)

	r.Progress(1000)
	r.Prediction("q1", "catA")
	r.Accuracy(1, 2)

	assert.Equal(t, "q1 catA\n", out.String())
	assert.Equal(t, "read 1000 examples\ncorrect: 1\ttotal: 2\taccuracy: 0.500000\n", diag.String())

	NewWriterReporter(nil, nil).Prediction("q", "c")
}
