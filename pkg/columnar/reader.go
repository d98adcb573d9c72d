package columnar

import (
	"context"
	"io"
	"os"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/quantfold/stockdump/pkg/errors"
	"github.com/quantfold/stockdump/pkg/frame"
)

// Read loads a columnar artifact back into a frame. It is the inverse of
// Write for both container formats and exists so artifacts can be
// inspected and round-trip verified.
func Read(path string, format Format) (*frame.Frame, error) {
	switch format {
	case Parquet:
		return ReadParquet(path)
	case Arrow:
		return ReadArrow(path)
	default:
		return nil, errors.Newf(errors.ErrorTypeUsage, "unsupported container format %q", format)
	}
}

// ReadParquet loads a Parquet artifact into a frame.
func ReadParquet(path string) (*frame.Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeDecode, "failed to open artifact")
	}
	defer f.Close()

	pr, err := file.NewParquetReader(f)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeDecode, "failed to read Parquet file")
	}
	defer pr.Close()

	mem := memory.NewGoAllocator()
	ar, err := pqarrow.NewFileReader(pr, pqarrow.ArrowReadProperties{}, mem)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeDecode, "failed to create Arrow reader")
	}

	table, err := ar.ReadTable(context.Background())
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeDecode, "failed to read table")
	}
	defer table.Release()

	return tableToFrame(table)
}

// ReadArrow loads an Arrow IPC file artifact into a frame.
func ReadArrow(path string) (*frame.Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeDecode, "failed to open artifact")
	}
	defer f.Close()

	r, err := ipc.NewFileReader(f, ipc.WithAllocator(memory.NewGoAllocator()))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeDecode, "failed to read Arrow file")
	}
	defer r.Close()

	schema := r.Schema()
	columns := make([][]interface{}, schema.NumFields())

	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeDecode, "failed to read record batch")
		}
		for i := 0; i < int(rec.NumCols()); i++ {
			appendArrayValues(&columns[i], rec.Column(i))
		}
	}

	return assembleFrame(schema, columns)
}

func tableToFrame(table arrow.Table) (*frame.Frame, error) {
	schema := table.Schema()
	columns := make([][]interface{}, schema.NumFields())

	for i := 0; i < int(table.NumCols()); i++ {
		chunked := table.Column(i).Data()
		for _, chunk := range chunked.Chunks() {
			appendArrayValues(&columns[i], chunk)
		}
	}

	return assembleFrame(schema, columns)
}

func assembleFrame(schema *arrow.Schema, columns [][]interface{}) (*frame.Frame, error) {
	out := frame.New()
	for i := 0; i < schema.NumFields(); i++ {
		fld := schema.Field(i)
		typ, err := frameType(fld.Type)
		if err != nil {
			return nil, err
		}
		values := columns[i]
		if values == nil {
			values = []interface{}{}
		}
		if err := out.AddColumn(fld.Name, typ, values); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func frameType(dt arrow.DataType) (frame.DataType, error) {
	switch dt.ID() {
	case arrow.STRING, arrow.LARGE_STRING:
		return frame.TypeString, nil
	case arrow.BOOL:
		return frame.TypeBool, nil
	case arrow.INT8:
		return frame.TypeInt8, nil
	case arrow.INT16:
		return frame.TypeInt16, nil
	case arrow.INT32:
		return frame.TypeInt32, nil
	case arrow.INT64:
		return frame.TypeInt64, nil
	case arrow.FLOAT64:
		return frame.TypeFloat64, nil
	default:
		return "", errors.Newf(errors.ErrorTypeDecode, "unsupported artifact column type %s", dt)
	}
}

// appendArrayValues converts one Arrow array into frame cells; integral
// values widen back to int64, nulls become nil.
func appendArrayValues(dst *[]interface{}, col arrow.Array) {
	for j := 0; j < col.Len(); j++ {
		if col.IsNull(j) {
			*dst = append(*dst, nil)
			continue
		}
		switch c := col.(type) {
		case *array.Int8:
			*dst = append(*dst, int64(c.Value(j)))
		case *array.Int16:
			*dst = append(*dst, int64(c.Value(j)))
		case *array.Int32:
			*dst = append(*dst, int64(c.Value(j)))
		case *array.Int64:
			*dst = append(*dst, c.Value(j))
		case *array.Float64:
			*dst = append(*dst, c.Value(j))
		case *array.Boolean:
			*dst = append(*dst, c.Value(j))
		case *array.String:
			*dst = append(*dst, c.Value(j))
		default:
			*dst = append(*dst, nil)
		}
	}
}
