// Package noise removes rare features from sparse examples using corpus-wide
// occurrence counts.
//
// A Filter is built once, after the whole training corpus has been ingested, and
// freezes the set of retained feature ids. The same Filter is then applied to
// training and query examples.
package noise

import (
	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/sparseknn/model"
)

// DefaultThreshold is the minimum relative frequency a feature needs to be kept.
const DefaultThreshold = 0.001

// CountSource exposes per-id occurrence counts and their total.
// *vocab.Vocabulary implements it.
type CountSource interface {
	Counts() ([]int64, int64)
}

// Filter keeps features whose relative frequency count[id]/total is at least the threshold.
type Filter struct {
	threshold float64
	retained  *roaring.Bitmap // nil means keep everything
}

// NewFilter freezes the retained feature set from counts.
//
// A threshold <= 0 or a zero total keeps every feature.
func NewFilter(counts CountSource, threshold float64) *Filter {
	f := &Filter{threshold: threshold}

	perID, total := counts.Counts()
	if threshold <= 0 || total == 0 {
		return f
	}

	f.retained = roaring.New()
	for id, c := range perID {
		if float64(c)/float64(total) >= threshold {
			f.retained.Add(uint32(id))
		}
	}
	f.retained.RunOptimize()

	return f
}

// Threshold returns the configured relative frequency threshold.
func (f *Filter) Threshold() float64 { return f.threshold }

// Keeps reports whether id survives the filter.
func (f *Filter) Keeps(id model.FeatureID) bool {
	return f.retained == nil || f.retained.Contains(id)
}

// Retained returns the number of retained ids, or -1 if the filter keeps everything.
func (f *Filter) Retained() int {
	if f.retained == nil {
		return -1
	}
	return int(f.retained.GetCardinality())
}

// Apply removes every feature of e whose id is not retained. Order is preserved.
// It returns the number of removed features.
func (f *Filter) Apply(e *model.Example) int {
	if f.retained == nil {
		return 0
	}
	before := len(e.Features)
	e.Retain(func(ft model.Feature) bool {
		return f.retained.Contains(ft.ID)
	})
	return before - len(e.Features)
}

// ApplyAll applies the filter to every example and returns the total number of removed features.
func (f *Filter) ApplyAll(examples []*model.Example) int {
	removed := 0
	for _, e := range examples {
		removed += f.Apply(e)
	}
	return removed
}
