// Package metrics provides Prometheus counters for the dump pipeline.
// Counters are registered once at process start via promauto; the pipeline
// increments them and the CLI decides whether anything scrapes them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DumpsDecoded counts compressed dumps successfully decompressed.
	DumpsDecoded = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "stockdump",
		Name:      "dumps_decoded_total",
		Help:      "Compressed dump files successfully decompressed",
	})

	// FramesParsed counts frames parsed from dumps or archive entries,
	// labeled by source format.
	FramesParsed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stockdump",
		Name:      "frames_parsed_total",
		Help:      "Frames parsed from dump payloads",
	}, []string{"format"})

	// EntriesSkipped counts bulk-archive entries skipped due to parse
	// failures. Skips are expected and non-fatal.
	EntriesSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "stockdump",
		Name:      "archive_entries_skipped_total",
		Help:      "Bulk archive entries skipped because they failed to parse",
	})

	// RowsUnified counts rows flowing into the unified table.
	RowsUnified = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "stockdump",
		Name:      "rows_unified_total",
		Help:      "Rows concatenated into unified tables",
	})

	// ArtifactsWritten counts columnar artifacts written, labeled by
	// container format.
	ArtifactsWritten = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stockdump",
		Name:      "artifacts_written_total",
		Help:      "Columnar artifact files written",
	}, []string{"format"})
)
