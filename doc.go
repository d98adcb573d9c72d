// Package stockdump normalizes compressed financial-data dumps into a
// single analytical columnar table.
//
// Dumps are zstd-compressed payloads produced by an external fetcher
// process: either per-symbol time series (CSV or newline-delimited JSON)
// or a bulk ZIP archive bundling one tabular file per symbol. stockdump
// decompresses them, detects and parses the payload format, unifies the
// resulting frames over the ordered union of their columns, narrows
// integer columns to their smallest lossless width, and writes one
// Parquet or Arrow IPC artifact.
//
// # Pipeline
//
// The conversion pipeline has a concurrent head and a sequential tail:
//
//	decompress -> detect -> parse     (fan-out, one goroutine per dump)
//	unify -> narrow -> write          (barriers over the full dataset)
//
// Decode and parse failures abort a per-file conversion run; malformed
// entries inside a bulk archive are skipped and counted instead, because
// partial success is the expected outcome for large bundles.
//
// # Key Packages
//
//	pkg/frame       - tabular model: parsing, format detection, unify, narrow
//	pkg/dump        - dump decompression and bulk ZIP extraction
//	pkg/columnar    - Parquet / Arrow IPC writing and read-back
//	pkg/manifest    - fetch-job manifests for the external fetcher
//	pkg/compression - pooled compression codecs (zstd, lz4, gzip, snappy, s2)
//	pkg/config      - file + environment configuration
//	pkg/errors      - structured error handling with closed categories
//	pkg/logger      - structured logging
//	pkg/metrics     - Prometheus counters for pipeline throughput
//	pkg/preview     - console rendering of frame heads
//
// # Quick Start
//
// Convert a directory of fetched dumps into one Parquet file:
//
//	p := pipeline.New(logger.Get())
//	res, err := p.ConvertDumps(ctx, paths, pipeline.Options{
//	    Output:    "dumps/arrow/dump.parquet",
//	    Container: columnar.Parquet,
//	})
//
// The stockdump CLI wraps the same pipeline; see cmd/stockdump.
package stockdump
