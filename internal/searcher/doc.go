// Package searcher selects the nearest neighbors of a query and aggregates
// their categories.
//
// Selection keeps a bounded worst-first heap of size k while scanning the corpus
// in order, so the cost is O(n log k). Both selection and voting are deterministic:
//
//   - top-k: equal distances keep the earlier corpus example
//   - vote: equal counts prefer the smaller distance sum, then the smaller category
package searcher
