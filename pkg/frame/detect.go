package frame

import (
	"bytes"
	"strings"
	"unicode"

	"github.com/quantfold/stockdump/pkg/errors"
)

// SourceFormat classifies the encoding of a decoded dump payload.
type SourceFormat string

const (
	// FormatCSV is delimited tabular text with a header row
	FormatCSV SourceFormat = "csv"
	// FormatJSON is line-delimited JSON, one record per line
	FormatJSON SourceFormat = "json"
)

// DetectSampleSize is the number of leading payload bytes Detect inspects.
const DetectSampleSize = 1024

// Detect classifies a payload by its leading content: a first
// non-whitespace character of '{' or '[' means line-delimited JSON,
// anything else delimited text. Invalid UTF-8 in the sample is ignored.
// This is a best-effort heuristic; callers can override it with an
// explicit hint (see ParseHint).
func Detect(sample []byte) SourceFormat {
	sample = bytes.ToValidUTF8(sample, nil)
	for _, r := range string(sample) {
		if unicode.IsSpace(r) {
			continue
		}
		if r == '{' || r == '[' {
			return FormatJSON
		}
		break
	}
	return FormatCSV
}

// ParseHint converts a caller-supplied format hint ("csv" or "json") into
// a SourceFormat. The empty string means no hint and reports ok=false.
func ParseHint(hint string) (SourceFormat, bool, error) {
	switch strings.ToLower(strings.TrimSpace(hint)) {
	case "":
		return "", false, nil
	case "csv":
		return FormatCSV, true, nil
	case "json":
		return FormatJSON, true, nil
	default:
		return "", false, errors.Newf(errors.ErrorTypeUsage,
			"unknown format hint %q (want csv or json)", hint)
	}
}
