// Package columnar serializes narrowed frames to on-disk columnar
// artifacts. Two container formats are supported: Apache Parquet
// (row-group oriented, per-column statistics, optional dictionary
// encoding, zstd by default) and the Arrow IPC file format (record-batch
// oriented, whole-body zstd or lz4 compression). Writes are all-or-nothing:
// data goes to a temporary file that is atomically renamed into place, so
// a failure mid-write never leaves an artifact that looks complete.
package columnar

import (
	"io"
	"os"
	"path/filepath"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/quantfold/stockdump/pkg/errors"
	"github.com/quantfold/stockdump/pkg/frame"
)

// Format selects the artifact container.
type Format string

const (
	// Parquet is the primary row-group columnar container
	Parquet Format = "parquet"
	// Arrow is the IPC file (record-batch) container
	Arrow Format = "arrow"
)

// ParseFormat converts a caller-supplied container name into a Format.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case Parquet, Arrow:
		return Format(s), nil
	default:
		return "", errors.Newf(errors.ErrorTypeUsage,
			"unsupported container format %q (want parquet or arrow)", s)
	}
}

// Options configures a columnar write.
type Options struct {
	Format      Format
	Compression string // zstd, snappy, gzip, lz4, none
	Level       int    // compression level; 0 means codec default (Parquet only)
	Dictionary  bool   // dictionary-encode repeated string values (Parquet)
	Stats       bool   // per-column min/max statistics (Parquet)
}

// DefaultOptions returns the default write configuration: Parquet with
// zstd, dictionary encoding and statistics enabled.
func DefaultOptions() *Options {
	return &Options{
		Format:      Parquet,
		Compression: "zstd",
		Dictionary:  true,
		Stats:       true,
	}
}

// Write serializes the frame to dest and returns dest. Parent directories
// are created if absent. On any failure the temporary file is removed and
// no artifact is left at dest.
func Write(f *frame.Frame, dest string, opts *Options) (string, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if f.NumCols() == 0 {
		return "", errors.New(errors.ErrorTypeEmptyInput, "refusing to write a table with no columns")
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", errors.Wrap(err, errors.ErrorTypeWrite, "failed to create output directory")
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".stockdump-*.tmp")
	if err != nil {
		return "", errors.Wrap(err, errors.ErrorTypeWrite, "failed to create temporary file")
	}
	tmpPath := tmp.Name()

	if err := writeTo(tmp, f, opts); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return "", errors.Wrap(err, errors.ErrorTypeWrite, "failed to flush artifact")
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		os.Remove(tmpPath)
		return "", errors.Wrap(err, errors.ErrorTypeWrite, "failed to move artifact into place")
	}
	return dest, nil
}

func writeTo(w io.Writer, f *frame.Frame, opts *Options) error {
	mem := memory.NewGoAllocator()

	schema, err := arrowSchema(f)
	if err != nil {
		return err
	}

	rec, err := buildRecord(mem, schema, f)
	if err != nil {
		return err
	}
	defer rec.Release()

	switch opts.Format {
	case Parquet:
		return writeParquet(w, mem, schema, rec, opts)
	case Arrow:
		return writeArrowIPC(w, mem, schema, rec, opts)
	default:
		return errors.Newf(errors.ErrorTypeUsage, "unsupported container format %q", opts.Format)
	}
}

func writeParquet(w io.Writer, mem memory.Allocator, schema *arrow.Schema, rec arrow.Record, opts *Options) error {
	codec, err := parquetCodec(opts.Compression)
	if err != nil {
		return err
	}

	propOpts := []parquet.WriterProperty{
		parquet.WithCompression(codec),
		parquet.WithDictionaryDefault(opts.Dictionary),
		parquet.WithStats(opts.Stats),
	}
	if opts.Level != 0 {
		propOpts = append(propOpts, parquet.WithCompressionLevel(opts.Level))
	}
	props := parquet.NewWriterProperties(propOpts...)
	// Storing the Arrow schema keeps the exact logical widths (int8/int16)
	// through the Parquet physical representation on read-back.
	arrowProps := pqarrow.NewArrowWriterProperties(
		pqarrow.WithAllocator(mem),
		pqarrow.WithStoreSchema(),
	)

	fw, err := pqarrow.NewFileWriter(schema, w, props, arrowProps)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeWrite, "failed to create Parquet writer")
	}

	if err := fw.Write(rec); err != nil {
		fw.Close()
		return errors.Wrap(err, errors.ErrorTypeWrite, "failed to write row group")
	}
	if err := fw.Close(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeWrite, "failed to finalize Parquet file")
	}
	return nil
}

func writeArrowIPC(w io.Writer, mem memory.Allocator, schema *arrow.Schema, rec arrow.Record, opts *Options) error {
	ipcOpts := []ipc.Option{ipc.WithSchema(schema), ipc.WithAllocator(mem)}
	switch opts.Compression {
	case "", "zstd":
		ipcOpts = append(ipcOpts, ipc.WithZstd())
	case "lz4":
		ipcOpts = append(ipcOpts, ipc.WithLZ4())
	case "none":
	default:
		return errors.Newf(errors.ErrorTypeUsage,
			"arrow container supports zstd, lz4 or none compression, got %q", opts.Compression)
	}

	fw, err := ipc.NewFileWriter(w, ipcOpts...)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeWrite, "failed to create Arrow writer")
	}

	if err := fw.Write(rec); err != nil {
		fw.Close()
		return errors.Wrap(err, errors.ErrorTypeWrite, "failed to write record batch")
	}
	if err := fw.Close(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeWrite, "failed to finalize Arrow file")
	}
	return nil
}

func parquetCodec(name string) (compress.Compression, error) {
	switch name {
	case "", "zstd":
		return compress.Codecs.Zstd, nil
	case "snappy":
		return compress.Codecs.Snappy, nil
	case "gzip":
		return compress.Codecs.Gzip, nil
	case "lz4":
		return compress.Codecs.Lz4Raw, nil
	case "none":
		return compress.Codecs.Uncompressed, nil
	default:
		return compress.Codecs.Uncompressed, errors.Newf(errors.ErrorTypeUsage,
			"unsupported compression codec %q", name)
	}
}

// arrowSchema maps the frame's logical column types onto Arrow fields.
// Every field is nullable: nil cells are the missing-value marker.
func arrowSchema(f *frame.Frame) (*arrow.Schema, error) {
	fields := make([]arrow.Field, 0, f.NumCols())
	for i := 0; i < f.NumCols(); i++ {
		col := f.ColumnAt(i)
		dt, err := arrowType(col.Type)
		if err != nil {
			return nil, err
		}
		fields = append(fields, arrow.Field{Name: col.Name, Type: dt, Nullable: true})
	}
	return arrow.NewSchema(fields, nil), nil
}

func arrowType(t frame.DataType) (arrow.DataType, error) {
	switch t {
	case frame.TypeString:
		return arrow.BinaryTypes.String, nil
	case frame.TypeBool:
		return arrow.FixedWidthTypes.Boolean, nil
	case frame.TypeInt8:
		return arrow.PrimitiveTypes.Int8, nil
	case frame.TypeInt16:
		return arrow.PrimitiveTypes.Int16, nil
	case frame.TypeInt32:
		return arrow.PrimitiveTypes.Int32, nil
	case frame.TypeInt64:
		return arrow.PrimitiveTypes.Int64, nil
	case frame.TypeFloat64:
		return arrow.PrimitiveTypes.Float64, nil
	default:
		return nil, errors.Newf(errors.ErrorTypeInternal, "unsupported column type %q", t)
	}
}

// buildRecord materializes the whole frame as a single record batch.
// Dumps fit in memory by contract, so there is no chunking.
func buildRecord(mem memory.Allocator, schema *arrow.Schema, f *frame.Frame) (arrow.Record, error) {
	rb := array.NewRecordBuilder(mem, schema)
	defer rb.Release()

	for i := 0; i < f.NumCols(); i++ {
		col := f.ColumnAt(i)
		if err := appendColumn(rb.Field(i), col); err != nil {
			return nil, err
		}
	}
	return rb.NewRecord(), nil
}

func appendColumn(b array.Builder, col *frame.Column) error {
	for _, v := range col.Values {
		if v == nil {
			b.AppendNull()
			continue
		}
		switch bld := b.(type) {
		case *array.Int8Builder:
			bld.Append(int8(v.(int64)))
		case *array.Int16Builder:
			bld.Append(int16(v.(int64)))
		case *array.Int32Builder:
			bld.Append(int32(v.(int64)))
		case *array.Int64Builder:
			bld.Append(v.(int64))
		case *array.Float64Builder:
			bld.Append(v.(float64))
		case *array.BooleanBuilder:
			bld.Append(v.(bool))
		case *array.StringBuilder:
			bld.Append(v.(string))
		default:
			return errors.Newf(errors.ErrorTypeInternal,
				"unsupported builder %T for column %q", b, col.Name)
		}
	}
	return nil
}
