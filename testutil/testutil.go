package testutil

import (
	"fmt"
	"math/rand"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/hupe1980/sparseknn/model"
)

// SearchResult represents a reference search result.
type SearchResult struct {
	Index    int
	Distance float64
}

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// SparseFeatures generates a sorted sparse feature list over ids [0, maxID).
// Each id is present with probability density; values are uniform in [-1, 1).
func (r *RNG) SparseFeatures(maxID int, density float64) []model.Feature {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sparseFeaturesLocked(maxID, density)
}

func (r *RNG) sparseFeaturesLocked(maxID int, density float64) []model.Feature {
	var features []model.Feature
	for id := range maxID {
		if r.rand.Float64() < density {
			features = append(features, model.Feature{
				ID:    model.FeatureID(id),
				Value: r.rand.Float64()*2 - 1,
			})
		}
	}
	return features
}

// SparseCorpus generates num examples with ids e0..e{num-1} and categories
// drawn uniformly from cat0..cat{categories-1}.
func (r *RNG) SparseCorpus(num, maxID int, density float64, categories int) []*model.Example {
	r.mu.Lock()
	defer r.mu.Unlock()

	corpus := make([]*model.Example, num)
	for i := range num {
		corpus[i] = &model.Example{
			ID:       fmt.Sprintf("e%d", i),
			Category: fmt.Sprintf("cat%d", r.rand.Intn(max(1, categories))),
			Features: r.sparseFeaturesLocked(maxID, density),
		}
	}
	return corpus
}

// Dense expands a sparse feature list into a dense vector of length dim.
func Dense(features []model.Feature, dim int) []float64 {
	v := make([]float64, dim)
	for _, f := range features {
		v[f.ID] = f.Value
	}
	return v
}

// Line renders an example in the training/query line format. Feature ids are
// rendered through key, which maps an id to its textual key.
func Line(e *model.Example, key func(model.FeatureID) string) string {
	var sb strings.Builder
	sb.WriteString(e.ID)
	sb.WriteByte(' ')
	sb.WriteString(e.Category)
	for _, f := range e.Features {
		fmt.Fprintf(&sb, " %s:%g", key(f.ID), f.Value)
	}
	return sb.String()
}

// ExactTopK returns the k smallest corpus distances using a full stable sort.
// Ties keep corpus order.
func ExactTopK(query []model.Feature, corpus []*model.Example, k int, fn func(a, b []model.Feature) float64) []SearchResult {
	results := make([]SearchResult, len(corpus))
	for i, e := range corpus {
		results[i] = SearchResult{Index: i, Distance: fn(query, e.Features)}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Distance < results[j].Distance
	})

	if k < len(results) {
		results = results[:k]
	}
	return slices.Clip(results)
}
