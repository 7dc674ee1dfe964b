// Package sparseknn provides a k-nearest-neighbour classifier for sparse,
// labeled feature vectors.
//
// Training and query examples are text lines of the form
//
//	<identifier> <category> <key>:<value> <key>:<value> ...
//
// Keys are interned into a shared vocabulary while the training corpus is
// read. Keys first seen in a query are ignored.
//
// # Quick Start
//
//	ctx := context.Background()
//	p, _ := sparseknn.New(
//	    sparseknn.WithK(10),
//	    sparseknn.WithMetric(distance.MetricCosine),
//	    sparseknn.WithWorkers(4),
//	)
//	_ = p.TrainFile(ctx, "train.txt")
//
//	pred, _ := p.PredictLine(ctx, "q1 ? alpha:1.0 beta:0.5")
//	fmt.Println(pred.ID, pred.Category)
//
// Corpora can also be read from object storage, optionally compressed:
//
//	_ = p.TrainFile(ctx, "s3://bucket/corpora/train.txt.zst")
//	_ = p.TrainFile(ctx, "minio://bucket/train.txt.gz")
//
// # Training
//
// Train parses the corpus with a pool of workers, drops features whose
// relative frequency is below the noise threshold and fits the normalizer
// (z-score by default). Queries pass through the same filter and normalizer
// before they are compared.
//
// # Prediction
//
// Distances to every training example are computed in parallel over
// contiguous ranges of the corpus. The k nearest examples vote; ties between
// categories go to the smaller summed distance, then to the lexicographically
// smaller category.
//
// Run drives a whole query stream and reports each prediction to the
// configured Reporter. In evaluation mode the running accuracy is reported
// after every query.
package sparseknn
