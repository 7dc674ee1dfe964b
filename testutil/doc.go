// Package testutil provides testing utilities for sparseknn.
//
// This package is intended for use in tests and benchmarks only.
// It provides helpers for generating random sparse corpora, expanding
// sparse vectors into dense references and computing exact top-k results.
//
// # Random Corpus Generation
//
//	rng := testutil.NewRNG(seed)
//	corpus := rng.SparseCorpus(1000, 64, 0.1, 4)
//
// # Exact Search (Ground Truth)
//
//	results := testutil.ExactTopK(query.Features, corpus, k, distance.SquaredEuclidean)
package testutil
