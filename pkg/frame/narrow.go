package frame

import "math"

// Narrow rewrites every numeric column to its narrowest lossless
// representation. Integral columns are assigned the smallest signed width
// (8/16/32/64 bits) that round-trips every value exactly; fractional
// columns always stay at float64 — narrowing floats would change the
// precision contract, so the asymmetry is deliberate. Non-numeric columns
// pass through unchanged.
//
// Narrow is idempotent: narrowing an already-narrowed frame produces an
// identical frame.
func Narrow(f *Frame) *Frame {
	out := New()
	for i := 0; i < f.NumCols(); i++ {
		col := f.ColumnAt(i)
		typ := col.Type
		if typ.Integral() {
			typ = narrowestIntType(col.Values, typ)
		}
		// Cells are shared, not copied: the logical width is the only
		// thing narrowing changes.
		_ = out.AddColumn(col.Name, typ, col.Values)
	}
	return out
}

// narrowestIntType picks the smallest signed integer type that holds every
// non-missing value. A column with no values keeps its current type.
func narrowestIntType(values []interface{}, current DataType) DataType {
	var (
		min   int64 = math.MaxInt64
		max   int64 = math.MinInt64
		found bool
	)
	for _, v := range values {
		n, ok := v.(int64)
		if !ok {
			continue
		}
		found = true
		if n < min {
			min = n
		}
		if n > max {
			max = n
		}
	}
	if !found {
		return current
	}

	switch {
	case min >= math.MinInt8 && max <= math.MaxInt8:
		return TypeInt8
	case min >= math.MinInt16 && max <= math.MaxInt16:
		return TypeInt16
	case min >= math.MinInt32 && max <= math.MaxInt32:
		return TypeInt32
	default:
		return TypeInt64
	}
}
