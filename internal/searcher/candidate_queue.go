package searcher

import "math"

// Neighbor is a selected training example.
type Neighbor struct {
	Index    int     // position in the training corpus
	Category string  // class label of the training example
	Distance float64 // distance to the query
}

// NeighborBetter reports whether a is better than b.
// Smaller distance wins; NaN loses against any number; equal distances are broken by
// the smaller corpus index for determinism.
func NeighborBetter(a, b Neighbor) bool {
	an, bn := math.IsNaN(a.Distance), math.IsNaN(b.Distance)
	if an != bn {
		return bn
	}
	if !an && a.Distance != b.Distance {
		return a.Distance < b.Distance
	}
	return a.Index < b.Index
}

// NeighborWorse reports whether a is worse than b. It is the strict inverse of NeighborBetter
// for distinct indices.
func NeighborWorse(a, b Neighbor) bool {
	return NeighborBetter(b, a)
}

// CandidateHeap is a bounded worst-first heap of Neighbor.
// The top element is the eviction candidate.
type CandidateHeap struct {
	Candidates []Neighbor
}

// NewCandidateHeap creates a new CandidateHeap.
func NewCandidateHeap(capacity int) *CandidateHeap {
	return &CandidateHeap{
		Candidates: make([]Neighbor, 0, capacity),
	}
}

// Reset clears the heap for reuse.
func (h *CandidateHeap) Reset() {
	h.Candidates = h.Candidates[:0]
}

func (h *CandidateHeap) Len() int { return len(h.Candidates) }

func (h *CandidateHeap) Swap(i, j int) {
	h.Candidates[i], h.Candidates[j] = h.Candidates[j], h.Candidates[i]
}

func (h *CandidateHeap) Less(i, j int) bool {
	return NeighborWorse(h.Candidates[i], h.Candidates[j])
}

func (h *CandidateHeap) Push(x Neighbor) {
	h.Candidates = append(h.Candidates, x)
	h.up(h.Len() - 1)
}

func (h *CandidateHeap) Pop() Neighbor {
	n := h.Len() - 1
	h.Swap(0, n)
	h.down(0, n)
	x := h.Candidates[n]
	h.Candidates = h.Candidates[0:n]
	return x
}

// Peek returns the top (worst) element without removing it.
// Panics if the heap is empty - caller should check Len() > 0.
func (h *CandidateHeap) Peek() Neighbor {
	return h.Candidates[0]
}

// PushBounded inserts x while keeping at most k elements.
// x is inserted if the heap holds fewer than k elements or x is strictly better
// than the current worst, which is then evicted. It reports whether x was kept.
func (h *CandidateHeap) PushBounded(x Neighbor, k int) bool {
	if k <= 0 {
		return false
	}
	if h.Len() < k {
		h.Push(x)
		return true
	}
	if !NeighborBetter(x, h.Peek()) {
		return false
	}
	h.Candidates[0] = x
	h.down(0, h.Len())
	return true
}

func (h *CandidateHeap) up(j int) {
	item := h.Candidates[j]
	for j > 0 {
		i := (j - 1) / heapArity
		if !NeighborWorse(item, h.Candidates[i]) {
			break
		}
		h.Candidates[j] = h.Candidates[i]
		j = i
	}
	h.Candidates[j] = item
}

func (h *CandidateHeap) down(i0, n int) {
	i := i0
	item := h.Candidates[i]
	for {
		firstChild := heapArity*i + 1
		if firstChild >= n {
			break
		}

		worst := firstChild
		lastChild := min(firstChild+heapArity, n)
		for c := firstChild + 1; c < lastChild; c++ {
			if NeighborWorse(h.Candidates[c], h.Candidates[worst]) {
				worst = c
			}
		}

		if !NeighborWorse(h.Candidates[worst], item) {
			break
		}
		h.Candidates[i] = h.Candidates[worst]
		i = worst
	}
	h.Candidates[i] = item
}

// heapArity is the branching factor of the heap.
const heapArity = 4
