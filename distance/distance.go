// Package distance provides sparse vector distance calculations.
// Every function walks the two id-sorted feature lists with a single linear merge,
// so the cost is O(n+m) in the number of stored features.
package distance

import (
	"fmt"
	"math"
	"strings"

	"github.com/hupe1980/sparseknn/model"
)

// SquaredEuclidean calculates the squared Euclidean distance between two sparse vectors.
// Both feature lists must be sorted ascending by id.
func SquaredEuclidean(a, b []model.Feature) float64 {
	var sum float64

	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i].ID < b[j].ID:
			sum += a[i].Value * a[i].Value
			i++
		case b[j].ID < a[i].ID:
			sum += b[j].Value * b[j].Value
			j++
		default:
			d := a[i].Value - b[j].Value
			sum += d * d
			i++
			j++
		}
	}

	for ; i < len(a); i++ {
		sum += a[i].Value * a[i].Value
	}
	for ; j < len(b); j++ {
		sum += b[j].Value * b[j].Value
	}

	return sum
}

// Cosine calculates the cosine distance (1 - cosine similarity) between two sparse vectors.
// Both feature lists must be sorted ascending by id.
//
// If either vector has zero magnitude the similarity is defined as 0 and the
// distance is 1.
func Cosine(a, b []model.Feature) float64 {
	var dot, magA, magB float64

	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i].ID < b[j].ID:
			magA += a[i].Value * a[i].Value
			i++
		case b[j].ID < a[i].ID:
			magB += b[j].Value * b[j].Value
			j++
		default:
			dot += a[i].Value * b[j].Value
			magA += a[i].Value * a[i].Value
			magB += b[j].Value * b[j].Value
			i++
			j++
		}
	}

	for ; i < len(a); i++ {
		magA += a[i].Value * a[i].Value
	}
	for ; j < len(b); j++ {
		magB += b[j].Value * b[j].Value
	}

	if magA == 0 || magB == 0 {
		return 1
	}

	return 1 - dot/(math.Sqrt(magA)*math.Sqrt(magB))
}

// Metric represents the distance metric used for example comparison.
type Metric int

const (
	MetricEuclidean Metric = iota
	MetricCosine
)

func (m Metric) String() string {
	switch m {
	case MetricEuclidean:
		return "euclidean"
	case MetricCosine:
		return "cosine"
	default:
		return fmt.Sprintf("unknown(%d)", m)
	}
}

// ParseMetric parses a metric name as accepted on the command line.
func ParseMetric(s string) (Metric, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "euclidean", "l2":
		return MetricEuclidean, nil
	case "cosine":
		return MetricCosine, nil
	default:
		return 0, fmt.Errorf("unsupported metric: %q", s)
	}
}

// Func is a function type for sparse distance calculation.
type Func func(a, b []model.Feature) float64

// Provider returns the distance function for the given metric.
func Provider(m Metric) (Func, error) {
	switch m {
	case MetricEuclidean:
		return SquaredEuclidean, nil
	case MetricCosine:
		return Cosine, nil
	default:
		return nil, fmt.Errorf("unsupported metric: %v", m)
	}
}
