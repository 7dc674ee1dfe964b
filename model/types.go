package model

import (
	"cmp"
	"fmt"
	"slices"
)

// FeatureID is a dense vocabulary-assigned feature identifier starting at 0.
type FeatureID = uint32

// Feature is a single dimension of a sparse vector.
type Feature struct {
	ID    FeatureID
	Value float64
}

// String returns a string representation of the Feature.
func (f Feature) String() string {
	return fmt.Sprintf("%d:%g", f.ID, f.Value)
}

// Example is a labeled sparse vector.
type Example struct {
	// ID is the caller supplied identifier (first field of an input line).
	ID string
	// Category is the class label (second field of an input line).
	Category string
	// Features is sorted ascending by ID and deduplicated.
	Features []Feature
	// Distance is scratch space written during a prediction pass.
	// It has no meaning outside of an active prediction.
	Distance float64
}

// NewExample creates an Example and establishes the sort invariant.
func NewExample(id, category string, features []Feature) *Example {
	e := &Example{ID: id, Category: category, Features: features}
	e.Sort()
	return e
}

// Sort orders the features by id and removes duplicate ids.
// The first occurrence of a duplicated id wins.
func (e *Example) Sort() {
	slices.SortStableFunc(e.Features, func(a, b Feature) int {
		return cmp.Compare(a.ID, b.ID)
	})
	e.Features = slices.CompactFunc(e.Features, func(a, b Feature) bool {
		return a.ID == b.ID
	})
}

// IsSorted reports whether the features are strictly ascending by id.
func (e *Example) IsSorted() bool {
	for i := 1; i < len(e.Features); i++ {
		if e.Features[i-1].ID >= e.Features[i].ID {
			return false
		}
	}
	return true
}

// Retain keeps the features for which keep returns true.
// Order is preserved, so the sort invariant holds afterwards.
func (e *Example) Retain(keep func(Feature) bool) {
	e.Features = slices.DeleteFunc(e.Features, func(f Feature) bool {
		return !keep(f)
	})
}

// MaxID returns the largest feature id and false if there are no features.
func (e *Example) MaxID() (FeatureID, bool) {
	if len(e.Features) == 0 {
		return 0, false
	}
	return e.Features[len(e.Features)-1].ID, true
}

// Clone returns a deep copy of the Example.
func (e *Example) Clone() *Example {
	c := *e
	c.Features = slices.Clone(e.Features)
	return &c
}

// String returns a string representation of the Example.
func (e *Example) String() string {
	return fmt.Sprintf("Example(%s %s, %d features)", e.ID, e.Category, len(e.Features))
}
