// Package distance provides sparse vector distance calculations.
//
// # Supported Metrics
//
//   - MetricEuclidean: squared Euclidean distance
//   - MetricCosine: cosine distance, 1 - cos(a, b)
//
// # Parallel Computation
//
// ComputeParallel partitions the corpus into contiguous ranges (see Partition) and
// runs one goroutine per range. The result lands in each corpus example's scratch
// Distance field; the call returns only after all goroutines joined.
//
// # Usage
//
//	fn, _ := distance.Provider(distance.MetricCosine)
//	_ = distance.ComputeParallel(ctx, query, corpus, 4, fn)
package distance
