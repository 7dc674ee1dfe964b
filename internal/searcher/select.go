package searcher

import (
	"slices"

	"github.com/hupe1980/sparseknn/model"
)

// SelectTopK returns the k corpus examples with the smallest scratch distance,
// best first. Examples are scanned in corpus order; on equal distance the earlier
// example is kept. If the corpus is smaller than k all examples are returned.
func SelectTopK(corpus []*model.Example, k int) []Neighbor {
	if k <= 0 || len(corpus) == 0 {
		return nil
	}

	h := NewCandidateHeap(min(k, len(corpus)) + 1)
	for i, e := range corpus {
		h.PushBounded(Neighbor{Index: i, Category: e.Category, Distance: e.Distance}, k)
	}

	out := h.Candidates
	slices.SortFunc(out, func(a, b Neighbor) int {
		if NeighborBetter(a, b) {
			return -1
		}
		if NeighborBetter(b, a) {
			return 1
		}
		return 0
	})
	return out
}

// Vote returns the majority category among neighbors.
//
// Ties on count are broken by the smaller sum of distances, then by the
// lexicographically smaller category. ok is false if there are no neighbors.
func Vote(neighbors []Neighbor) (category string, ok bool) {
	type tally struct {
		count int
		sum   float64
	}

	tallies := make(map[string]*tally, len(neighbors))
	for _, n := range neighbors {
		t, found := tallies[n.Category]
		if !found {
			t = &tally{}
			tallies[n.Category] = t
		}
		t.count++
		t.sum += n.Distance
	}

	var best *tally
	for cat, t := range tallies {
		switch {
		case best == nil,
			t.count > best.count,
			t.count == best.count && t.sum < best.sum,
			t.count == best.count && t.sum == best.sum && cat < category:
			best, category = t, cat
		}
	}

	return category, best != nil
}
