// Package normalize rescales feature values using statistics fitted on the
// training corpus.
//
// Statistics are dense slices indexed by feature id, sized to the largest id
// seen during Fit. Only features stored in a vector contribute to its statistics.
// Normalization never changes feature ids, so the sort invariant of
// model.Example holds afterwards.
package normalize

import (
	"fmt"
	"math"
	"strings"

	"github.com/hupe1980/sparseknn/model"
)

// Kind selects a normalization strategy.
type Kind int

const (
	KindNone Kind = iota
	KindMinMax
	KindZScore
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindMinMax:
		return "minmax"
	case KindZScore:
		return "zscore"
	default:
		return fmt.Sprintf("unknown(%d)", k)
	}
}

// ParseKind parses a strategy name.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "":
		return KindNone, nil
	case "minmax", "min-max":
		return KindMinMax, nil
	case "zscore", "z-score", "z":
		return KindZScore, nil
	default:
		return 0, fmt.Errorf("unsupported normalization: %q", s)
	}
}

// Normalizer computes per-feature statistics over a corpus and rescales examples in place.
type Normalizer interface {
	// Fit computes statistics over the corpus. It must be called before Normalize.
	Fit(corpus []*model.Example)
	// Normalize rescales e in place.
	Normalize(e *model.Example)
	// Kind returns the strategy.
	Kind() Kind
}

// New returns the Normalizer for kind.
func New(kind Kind) (Normalizer, error) {
	switch kind {
	case KindNone:
		return None{}, nil
	case KindMinMax:
		return &MinMax{}, nil
	case KindZScore:
		return &ZScore{}, nil
	default:
		return nil, fmt.Errorf("unsupported normalization: %v", kind)
	}
}

// NormalizeAll applies n to every example.
func NormalizeAll(n Normalizer, examples []*model.Example) {
	for _, e := range examples {
		n.Normalize(e)
	}
}

func dimension(corpus []*model.Example) int {
	dim := 0
	for _, e := range corpus {
		if id, ok := e.MaxID(); ok {
			dim = max(dim, int(id)+1)
		}
	}
	return dim
}

// None leaves values untouched.
type None struct{}

func (None) Fit([]*model.Example)     {}
func (None) Normalize(*model.Example) {}
func (None) Kind() Kind               { return KindNone }

// MinMax maps each value to (v - min[id]) / (max[id] - min[id]).
// A feature with zero range maps to 0.
type MinMax struct {
	Mins []float64
	Maxs []float64
}

// Fit computes per-id minimum and maximum.
func (m *MinMax) Fit(corpus []*model.Example) {
	dim := dimension(corpus)
	m.Mins = make([]float64, dim)
	m.Maxs = make([]float64, dim)
	for i := range dim {
		m.Mins[i] = math.Inf(1)
		m.Maxs[i] = math.Inf(-1)
	}

	for _, e := range corpus {
		for _, f := range e.Features {
			m.Mins[f.ID] = min(m.Mins[f.ID], f.Value)
			m.Maxs[f.ID] = max(m.Maxs[f.ID], f.Value)
		}
	}
}

// Normalize rescales e in place. Ids outside the fitted range are left unchanged.
func (m *MinMax) Normalize(e *model.Example) {
	for i := range e.Features {
		f := &e.Features[i]
		if int(f.ID) >= len(m.Mins) {
			continue
		}
		span := m.Maxs[f.ID] - m.Mins[f.ID]
		if span == 0 || math.IsInf(span, 0) || math.IsNaN(span) {
			f.Value = 0
			continue
		}
		f.Value = (f.Value - m.Mins[f.ID]) / span
	}
}

func (*MinMax) Kind() Kind { return KindMinMax }

// ZScore maps each value to (v - mean[id]) / deviation[id], where deviation is the
// Bessel-corrected sample standard deviation. A feature seen fewer than twice or with
// zero deviation maps to 0.
type ZScore struct {
	Means      []float64
	Deviations []float64
}

// Fit computes per-id mean and sample standard deviation in two passes.
func (z *ZScore) Fit(corpus []*model.Example) {
	dim := dimension(corpus)
	z.Means = make([]float64, dim)
	z.Deviations = make([]float64, dim)
	n := make([]int, dim)

	for _, e := range corpus {
		for _, f := range e.Features {
			z.Means[f.ID] += f.Value
			n[f.ID]++
		}
	}
	for i := range dim {
		if n[i] > 0 {
			z.Means[i] /= float64(n[i])
		}
	}

	for _, e := range corpus {
		for _, f := range e.Features {
			d := f.Value - z.Means[f.ID]
			z.Deviations[f.ID] += d * d
		}
	}
	for i := range dim {
		if n[i] > 1 {
			z.Deviations[i] = math.Sqrt(z.Deviations[i] / float64(n[i]-1))
		} else {
			z.Deviations[i] = 0
		}
	}
}

// Normalize rescales e in place. Ids outside the fitted range are left unchanged.
func (z *ZScore) Normalize(e *model.Example) {
	for i := range e.Features {
		f := &e.Features[i]
		if int(f.ID) >= len(z.Means) {
			continue
		}
		if z.Deviations[f.ID] == 0 {
			f.Value = 0
			continue
		}
		f.Value = (f.Value - z.Means[f.ID]) / z.Deviations[f.ID]
	}
}

func (*ZScore) Kind() Kind { return KindZScore }
