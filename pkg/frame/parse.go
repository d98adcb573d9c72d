package frame

import (
	"bytes"
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	gojson "github.com/goccy/go-json"

	"github.com/quantfold/stockdump/pkg/errors"
)

// Parse turns one decoded dump payload into a frame. The format is either
// the caller's hint or the result of Detect on the payload prefix.
func Parse(data []byte, format SourceFormat) (*Frame, error) {
	switch format {
	case FormatJSON:
		return ParseJSONLines(data)
	case FormatCSV:
		return ParseCSV(data)
	default:
		return nil, errors.Newf(errors.ErrorTypeUsage, "unknown source format %q", format)
	}
}

// ParseCSV parses delimited tabular text. The first row supplies column
// names; per-column types are inferred across all values with
// integer > float > string precedence. Rows with field counts that the
// quoting rules cannot reconcile are a parse error.
func ParseCSV(data []byte) (*Frame, error) {
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	if !utf8.Valid(data) {
		return nil, errors.New(errors.ErrorTypeParse, "payload is not valid UTF-8 text")
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.ReuseRecord = false

	header, err := r.Read()
	if err == io.EOF {
		return New(), nil
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeParse, "failed to read header row")
	}

	raw := make([][]string, 0, 128)
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeParse, "failed to read row")
		}
		raw = append(raw, record)
	}

	f := New()
	for i, name := range header {
		cells := make([]string, len(raw))
		for row := range raw {
			cells[row] = raw[row][i]
		}
		typ, values := inferTextColumn(cells)
		if err := f.AddColumn(name, typ, values); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// ParseJSONLines parses line-delimited JSON. Each non-blank line is one
// independent object; objects may have different key sets and the frame's
// column set is their union in first-seen key order. Any undecodable line
// is a parse error for the whole payload.
func ParseJSONLines(data []byte) (*Frame, error) {
	if !utf8.Valid(data) {
		return nil, errors.New(errors.ErrorTypeParse, "payload is not valid UTF-8 text")
	}

	var (
		records []map[string]interface{}
		order   []string
		seen    = make(map[string]struct{})
	)

	for lineNo, line := range bytes.Split(data, []byte{'\n'}) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}

		rec, keys, err := decodeRecord(line)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeParse,
				"malformed record").WithDetail("line", lineNo+1)
		}
		for _, k := range keys {
			if _, ok := seen[k]; !ok {
				seen[k] = struct{}{}
				order = append(order, k)
			}
		}
		records = append(records, rec)
	}

	f := New()
	for _, key := range order {
		values := make([]interface{}, len(records))
		for i, rec := range records {
			if v, ok := rec[key]; ok {
				values[i] = v
			}
		}
		typ, normalized := resolveValues(values)
		if err := f.AddColumn(key, typ, normalized); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// decodeRecord decodes one JSON line into cell values and reports its keys
// in document order (map iteration would scramble them).
func decodeRecord(line []byte) (map[string]interface{}, []string, error) {
	keys, err := objectKeys(line)
	if err != nil {
		return nil, nil, err
	}

	dec := gojson.NewDecoder(bytes.NewReader(line))
	dec.UseNumber()
	var raw map[string]interface{}
	if err := dec.Decode(&raw); err != nil {
		return nil, nil, err
	}

	rec := make(map[string]interface{}, len(raw))
	for k, v := range raw {
		rec[k] = toCell(v)
	}
	return rec, keys, nil
}

// toCell converts a decoded JSON value into a frame cell. Numbers become
// int64 when they round-trip as integers, float64 otherwise; nested
// objects and arrays are retained as their JSON text.
func toCell(v interface{}) interface{} {
	switch n := v.(type) {
	case nil:
		return nil
	case bool:
		return n
	case string:
		return n
	case gojson.Number:
		s := n.String()
		if !strings.ContainsAny(s, ".eE") {
			if i, err := strconv.ParseInt(s, 10, 64); err == nil {
				return i
			}
		}
		if f, err := n.Float64(); err == nil {
			return f
		}
		return s
	default:
		buf, err := gojson.Marshal(n)
		if err != nil {
			return ""
		}
		return string(buf)
	}
}

// objectKeys returns the top-level keys of a single JSON object in
// document order.
func objectKeys(line []byte) ([]string, error) {
	dec := gojson.NewDecoder(bytes.NewReader(line))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(gojson.Delim); !ok || d != '{' {
		return nil, errors.New(errors.ErrorTypeParse, "record is not a JSON object")
	}

	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, errors.New(errors.ErrorTypeParse, "object key is not a string")
		}
		keys = append(keys, key)

		if err := skipValue(dec); err != nil {
			return nil, err
		}
	}
	return keys, nil
}

// skipValue consumes one JSON value from the decoder, descending through
// nested containers.
func skipValue(dec *gojson.Decoder) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	d, ok := tok.(gojson.Delim)
	if !ok || (d != '{' && d != '[') {
		return nil
	}

	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		if d, ok := tok.(gojson.Delim); ok {
			switch d {
			case '{', '[':
				depth++
			case '}', ']':
				depth--
			}
		}
	}
	return nil
}

// inferTextColumn types a column of raw text cells. Empty cells are the
// missing-value marker. Precedence is integer, then float, then string:
// the first representation every non-empty cell satisfies wins.
func inferTextColumn(cells []string) (DataType, []interface{}) {
	allInt, allFloat := true, true
	nonEmpty := 0

	for _, cell := range cells {
		s := strings.TrimSpace(cell)
		if s == "" {
			continue
		}
		nonEmpty++
		if allInt {
			if _, err := strconv.ParseInt(s, 10, 64); err != nil {
				allInt = false
			}
		}
		if !allInt && allFloat {
			if _, err := strconv.ParseFloat(s, 64); err != nil {
				allFloat = false
			}
		}
		if !allInt && !allFloat {
			break
		}
	}

	values := make([]interface{}, len(cells))
	switch {
	case nonEmpty == 0:
		return TypeString, values

	case allInt:
		for i, cell := range cells {
			s := strings.TrimSpace(cell)
			if s == "" {
				continue
			}
			n, _ := strconv.ParseInt(s, 10, 64)
			values[i] = n
		}
		return TypeInt64, values

	case allFloat:
		for i, cell := range cells {
			s := strings.TrimSpace(cell)
			if s == "" {
				continue
			}
			n, _ := strconv.ParseFloat(s, 64)
			values[i] = n
		}
		return TypeFloat64, values

	default:
		for i, cell := range cells {
			if strings.TrimSpace(cell) == "" {
				continue
			}
			values[i] = cell
		}
		return TypeString, values
	}
}
