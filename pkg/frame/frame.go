// Package frame implements the in-memory tabular model of the dump
// pipeline: parsing raw dump payloads into rectangular frames, unifying
// frames with differing column sets, and lossless numeric narrowing.
//
// A Frame is a named-column table. Cells are dynamically typed
// (int64, float64, string, bool) with nil as the missing-value marker;
// each column additionally carries a logical DataType that the columnar
// writer maps onto the physical storage type. Missing cells are always
// nil, never zero and never the empty string.
package frame

import (
	"fmt"
	"strconv"

	"github.com/quantfold/stockdump/pkg/errors"
)

// DataType is the logical type of a column.
type DataType string

const (
	// TypeString holds free-form text
	TypeString DataType = "string"
	// TypeBool holds booleans (produced only by structured sources)
	TypeBool DataType = "bool"
	// TypeInt8 holds integers representable in 8 bits
	TypeInt8 DataType = "int8"
	// TypeInt16 holds integers representable in 16 bits
	TypeInt16 DataType = "int16"
	// TypeInt32 holds integers representable in 32 bits
	TypeInt32 DataType = "int32"
	// TypeInt64 holds integers
	TypeInt64 DataType = "int64"
	// TypeFloat64 holds fractional numbers at full double precision
	TypeFloat64 DataType = "float64"
)

// Integral reports whether the type stores whole numbers.
func (t DataType) Integral() bool {
	switch t {
	case TypeInt8, TypeInt16, TypeInt32, TypeInt64:
		return true
	default:
		return false
	}
}

// Column is one named, typed column. Values holds one cell per row;
// integral cells are always stored as int64 regardless of the logical
// width, fractional cells as float64, missing cells as nil.
type Column struct {
	Name   string
	Type   DataType
	Values []interface{}
}

// Frame is a rectangular named-column table. Row order is preserved from
// the source that produced it.
type Frame struct {
	cols  []Column
	index map[string]int
	rows  int
}

// New returns an empty frame: zero rows, zero columns.
func New() *Frame {
	return &Frame{index: make(map[string]int)}
}

// NewWithColumns builds a frame from pre-assembled columns. All columns
// must have the same length and distinct names.
func NewWithColumns(cols []Column) (*Frame, error) {
	f := New()
	for _, col := range cols {
		if err := f.AddColumn(col.Name, col.Type, col.Values); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// AddColumn appends a column to the frame. The first column fixes the row
// count; subsequent columns must match it.
func (f *Frame) AddColumn(name string, typ DataType, values []interface{}) error {
	if _, ok := f.index[name]; ok {
		return errors.Newf(errors.ErrorTypeInternal, "duplicate column %q", name)
	}
	if len(f.cols) > 0 && len(values) != f.rows {
		return errors.Newf(errors.ErrorTypeInternal,
			"column %q has %d rows, frame has %d", name, len(values), f.rows)
	}
	if len(f.cols) == 0 {
		f.rows = len(values)
	}
	f.index[name] = len(f.cols)
	f.cols = append(f.cols, Column{Name: name, Type: typ, Values: values})
	return nil
}

// NumRows returns the number of rows.
func (f *Frame) NumRows() int { return f.rows }

// NumCols returns the number of columns.
func (f *Frame) NumCols() int { return len(f.cols) }

// Columns returns the column names in frame order.
func (f *Frame) Columns() []string {
	names := make([]string, len(f.cols))
	for i, c := range f.cols {
		names[i] = c.Name
	}
	return names
}

// Column returns the named column, or false if absent.
func (f *Frame) Column(name string) (*Column, bool) {
	i, ok := f.index[name]
	if !ok {
		return nil, false
	}
	return &f.cols[i], true
}

// ColumnAt returns the column at position i in frame order.
func (f *Frame) ColumnAt(i int) *Column { return &f.cols[i] }

// Value returns the cell at (row, col), nil meaning missing.
func (f *Frame) Value(row, col int) interface{} {
	return f.cols[col].Values[row]
}

// Equal reports whether two frames have identical shape, column names,
// column types and cell values.
func (f *Frame) Equal(other *Frame) bool {
	if f.rows != other.rows || len(f.cols) != len(other.cols) {
		return false
	}
	for i := range f.cols {
		a, b := &f.cols[i], &other.cols[i]
		if a.Name != b.Name || a.Type != b.Type {
			return false
		}
		for r := 0; r < f.rows; r++ {
			if a.Values[r] != b.Values[r] {
				return false
			}
		}
	}
	return true
}

// resolveValues assigns a logical type to a slice of dynamically typed
// cells and normalizes the cells to match. Promotion order is
// int64 -> float64 -> string; a pure bool column stays bool. Nil cells are
// ignored during classification and preserved in the output.
func resolveValues(values []interface{}) (DataType, []interface{}) {
	var ints, floats, bools, strs, other int
	for _, v := range values {
		switch v.(type) {
		case nil:
		case int64:
			ints++
		case float64:
			floats++
		case bool:
			bools++
		case string:
			strs++
		default:
			other++
		}
	}

	nonNil := ints + floats + bools + strs + other
	switch {
	case nonNil == 0:
		// Nothing to classify; an all-missing column stays textual.
		return TypeString, values

	case bools == nonNil:
		return TypeBool, values

	case ints == nonNil:
		return TypeInt64, values

	case ints+floats == nonNil:
		out := make([]interface{}, len(values))
		for i, v := range values {
			switch n := v.(type) {
			case int64:
				out[i] = float64(n)
			case float64:
				out[i] = n
			}
		}
		return TypeFloat64, out
	}

	// Mixed column: render everything as text, keep nils as nils.
	out := make([]interface{}, len(values))
	for i, v := range values {
		switch n := v.(type) {
		case nil:
		case string:
			out[i] = n
		case int64:
			out[i] = strconv.FormatInt(n, 10)
		case float64:
			out[i] = strconv.FormatFloat(n, 'g', -1, 64)
		case bool:
			out[i] = strconv.FormatBool(n)
		default:
			out[i] = fmt.Sprintf("%v", n)
		}
	}
	return TypeString, out
}
