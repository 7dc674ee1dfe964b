// Package ingest turns raw text lines into sparse examples.
//
// # Line Format
//
//	<identifier> <category> <key>:<value> <key>:<value> ...
//
// Fields are separated by spaces or tabs. Each feature token is split at its last
// ':'. Keys shorter than ParseOptions.MinKeyLength are dropped; longer keys are
// truncated to ParseOptions.MaxKeyLength before vocabulary lookup.
//
// # Pipeline
//
// Pipeline runs one producer and N parser workers connected by a closable work
// queue. The result holds exactly one example per input line, in input order.
//
//	v := vocab.New()
//	p := ingest.NewPipeline(ingest.NewParser(v, ingest.DefaultParseOptions(), true),
//	    ingest.PipelineOptions{Workers: 4})
//	examples, err := p.Run(ctx, ingest.NewReaderSource(f))
package ingest
