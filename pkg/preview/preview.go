// Package preview renders the leading rows of a frame as a console table
// for human inspection. It consumes the parser's output read-only and is
// the only place besides the CLI that produces user-facing text.
package preview

import (
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/quantfold/stockdump/pkg/frame"
)

// DefaultRows is the number of rows rendered when the caller does not ask
// for a specific count.
const DefaultRows = 5

// Render writes the first n rows of f to w as an aligned table. Missing
// cells render as empty; n <= 0 falls back to DefaultRows.
func Render(w io.Writer, f *frame.Frame, n int) {
	if n <= 0 {
		n = DefaultRows
	}
	if n > f.NumRows() {
		n = f.NumRows()
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader(f.Columns())
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)

	for row := 0; row < n; row++ {
		cells := make([]string, f.NumCols())
		for col := 0; col < f.NumCols(); col++ {
			cells[col] = formatCell(f.Value(row, col))
		}
		table.Append(cells)
	}
	table.Render()
}

func formatCell(v interface{}) string {
	switch n := v.(type) {
	case nil:
		return ""
	case string:
		return n
	case int64:
		return strconv.FormatInt(n, 10)
	case float64:
		return strconv.FormatFloat(n, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(n)
	default:
		return ""
	}
}
