package dump

import (
	"archive/zip"
	"bytes"
	"io"
	"path"
	"strings"

	"github.com/quantfold/stockdump/pkg/errors"
	"github.com/quantfold/stockdump/pkg/frame"
)

// SymbolColumn is the column appended to every frame extracted from a bulk
// archive, holding the symbol derived from the entry's file name.
const SymbolColumn = "Symbol"

// ExtractArchive walks a decompressed bulk ZIP payload in archive order
// and parses each .csv/.txt entry (case-insensitive) as tabular text.
// Entries that fail to parse are skipped, not fatal: bulk bundles
// routinely contain a handful of malformed per-symbol files, and partial
// success is the intended behavior. The skip count is returned alongside
// the parsed frames so callers can report it.
//
// Each parsed frame gains a SymbolColumn derived from the entry's base
// file name (path and extensions stripped, upper-cased). Zero parseable
// entries yields an empty slice and no error; composing the result with
// frame.Unify gives the canonical empty frame.
func ExtractArchive(raw []byte) ([]*frame.Frame, int, error) {
	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, 0, errors.Wrap(err, errors.ErrorTypeParse, "payload is not a ZIP archive")
	}

	var (
		frames  []*frame.Frame
		skipped int
	)
	for _, entry := range zr.File {
		if entry.FileInfo().IsDir() || !tabularEntry(entry.Name) {
			continue
		}

		f, err := parseEntry(entry)
		if err != nil {
			skipped++
			continue
		}

		symbol := entrySymbol(entry.Name)
		values := make([]interface{}, f.NumRows())
		for i := range values {
			values[i] = symbol
		}
		if err := f.AddColumn(SymbolColumn, frame.TypeString, values); err != nil {
			skipped++
			continue
		}
		frames = append(frames, f)
	}
	return frames, skipped, nil
}

func parseEntry(entry *zip.File) (*frame.Frame, error) {
	rc, err := entry.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, err
	}
	return frame.ParseCSV(data)
}

// tabularEntry reports whether the archive entry name carries a tabular
// text extension.
func tabularEntry(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".csv", ".txt":
		return true
	default:
		return false
	}
}

// entrySymbol derives the symbol from an entry name: strip the path, take
// the substring before the first dot, upper-case. "data/aapl.us.txt"
// becomes "AAPL".
func entrySymbol(name string) string {
	base := path.Base(name)
	if i := strings.IndexByte(base, '.'); i >= 0 {
		base = base[:i]
	}
	return strings.ToUpper(base)
}
