// Package pipeline orchestrates the dump ingestion pipeline: decompress,
// detect, parse, unify, narrow, write. Decompression and parsing fan out
// across input files; unify, narrow and write are sequential barriers over
// the full dataset. The pipeline reports results and errors through return
// values only — user-facing messaging belongs to the CLI.
package pipeline

import (
	"context"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/quantfold/stockdump/pkg/columnar"
	"github.com/quantfold/stockdump/pkg/dump"
	"github.com/quantfold/stockdump/pkg/errors"
	"github.com/quantfold/stockdump/pkg/frame"
	"github.com/quantfold/stockdump/pkg/metrics"
)

// Options configures one conversion run.
type Options struct {
	// FormatHint is "csv" or "json" to override payload auto-detection;
	// empty means detect.
	FormatHint string
	// Output is the artifact destination path
	Output string
	// Container selects the artifact format
	Container columnar.Format
	// Compression is the artifact compression codec
	Compression string
	// Level is the codec compression level (0 = codec default)
	Level int
	// Dictionary enables dictionary encoding for repeated strings
	Dictionary bool
	// Stats enables per-column statistics
	Stats bool
	// Concurrency bounds the decompress/parse fan-out; 0 means NumCPU
	Concurrency int
}

// Result describes a completed conversion.
type Result struct {
	// Output is the artifact path, empty when Empty is true
	Output string
	// Rows and Columns describe the narrowed table
	Rows    int
	Columns int
	// Dumps is the number of input dump files consumed
	Dumps int
	// Skipped is the number of bulk archive entries skipped as malformed
	Skipped int
	// Empty reports that no usable data was found; no artifact was
	// written and this is not an error.
	Empty bool
}

// Pipeline runs conversions. It is stateless apart from its logger.
type Pipeline struct {
	log *zap.Logger
}

// New returns a pipeline logging through log.
func New(log *zap.Logger) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{log: log}
}

// ConvertDumps decompresses and parses each dump, unifies the frames into
// one table, narrows numeric columns and writes the artifact. Any decode
// or parse failure aborts the whole run: a single missing source would
// invalidate the unified output.
func (p *Pipeline) ConvertDumps(ctx context.Context, paths []string, opts Options) (*Result, error) {
	if len(paths) == 0 {
		return nil, errors.New(errors.ErrorTypeUsage, "no dump files supplied")
	}
	if _, _, err := frame.ParseHint(opts.FormatHint); err != nil {
		return nil, err
	}

	frames := make([]*frame.Frame, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency(opts))
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			f, err := p.loadDump(path, opts.FormatHint)
			if err != nil {
				return err
			}
			frames[i] = f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return p.finish(frames, 0, len(paths), opts)
}

// ConvertBulk converts a single archive-shaped dump: the decompressed
// payload is a ZIP whose entries are per-symbol tabular files. Malformed
// entries are skipped, counted and reported; zero parseable entries is an
// explicit empty result, not an error.
func (p *Pipeline) ConvertBulk(ctx context.Context, path string, opts Options) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := dump.Decompress(path)
	if err != nil {
		return nil, err
	}
	metrics.DumpsDecoded.Inc()

	frames, skipped, err := dump.ExtractArchive(raw)
	if err != nil {
		return nil, err
	}
	metrics.EntriesSkipped.Add(float64(skipped))
	metrics.FramesParsed.WithLabelValues(string(frame.FormatCSV)).Add(float64(len(frames)))

	if skipped > 0 {
		p.log.Warn("skipped malformed archive entries",
			zap.String("dump", path),
			zap.Int("skipped", skipped),
			zap.Int("parsed", len(frames)))
	}

	return p.finish(frames, skipped, 1, opts)
}

// Head decompresses and parses one dump for previewing. The frame is
// returned as parsed: no unification, no narrowing.
func (p *Pipeline) Head(path, hint string) (*frame.Frame, error) {
	return p.loadDump(path, hint)
}

func (p *Pipeline) loadDump(path, hint string) (*frame.Frame, error) {
	raw, err := dump.Decompress(path)
	if err != nil {
		return nil, err
	}
	metrics.DumpsDecoded.Inc()

	format, ok, err := frame.ParseHint(hint)
	if err != nil {
		return nil, err
	}
	if !ok {
		sample := raw
		if len(sample) > frame.DetectSampleSize {
			sample = sample[:frame.DetectSampleSize]
		}
		format = frame.Detect(sample)
	}

	f, err := frame.Parse(raw, format)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeParse,
			"failed to parse dump").WithDetail("path", path)
	}
	metrics.FramesParsed.WithLabelValues(string(format)).Inc()

	p.log.Debug("parsed dump",
		zap.String("path", path),
		zap.String("format", string(format)),
		zap.Int("rows", f.NumRows()),
		zap.Int("columns", f.NumCols()))
	return f, nil
}

// finish runs the sequential tail of the pipeline: unify, narrow, write.
func (p *Pipeline) finish(frames []*frame.Frame, skipped, dumps int, opts Options) (*Result, error) {
	unified := frame.Unify(frames)
	metrics.RowsUnified.Add(float64(unified.NumRows()))

	narrowed := frame.Narrow(unified)

	res := &Result{
		Rows:    narrowed.NumRows(),
		Columns: narrowed.NumCols(),
		Dumps:   dumps,
		Skipped: skipped,
	}
	if narrowed.NumCols() == 0 {
		res.Empty = true
		p.log.Info("no usable data found, nothing written")
		return res, nil
	}

	out, err := columnar.Write(narrowed, opts.Output, &columnar.Options{
		Format:      opts.Container,
		Compression: opts.Compression,
		Level:       opts.Level,
		Dictionary:  opts.Dictionary,
		Stats:       opts.Stats,
	})
	if err != nil {
		return nil, err
	}
	metrics.ArtifactsWritten.WithLabelValues(string(opts.Container)).Inc()

	res.Output = out
	p.log.Info("artifact written",
		zap.String("output", out),
		zap.String("container", string(opts.Container)),
		zap.Int("rows", res.Rows),
		zap.Int("columns", res.Columns))
	return res, nil
}

func (p *Pipeline) concurrency(opts Options) int {
	if opts.Concurrency > 0 {
		return opts.Concurrency
	}
	return runtime.NumCPU()
}
