package frame

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantfold/stockdump/pkg/errors"
)

func TestParseCSVTypeInference(t *testing.T) {
	data := []byte("Date,Open,Volume,Name\n" +
		"2024-01-02,187.15,4920000,Apple\n" +
		"2024-01-03,184.22,5210000,Apple\n")

	f, err := ParseCSV(data)
	require.NoError(t, err)

	assert.Equal(t, 2, f.NumRows())
	assert.Equal(t, []string{"Date", "Open", "Volume", "Name"}, f.Columns())

	date, _ := f.Column("Date")
	assert.Equal(t, TypeString, date.Type)
	assert.Equal(t, "2024-01-02", date.Values[0])

	open, _ := f.Column("Open")
	assert.Equal(t, TypeFloat64, open.Type)
	assert.Equal(t, 187.15, open.Values[0])

	vol, _ := f.Column("Volume")
	assert.Equal(t, TypeInt64, vol.Type)
	assert.Equal(t, int64(4920000), vol.Values[0])
}

func TestParseCSVIntThenFloatPromotes(t *testing.T) {
	f, err := ParseCSV([]byte("x\n1\n2.5\n"))
	require.NoError(t, err)

	col, _ := f.Column("x")
	assert.Equal(t, TypeFloat64, col.Type)
	assert.Equal(t, 1.0, col.Values[0])
	assert.Equal(t, 2.5, col.Values[1])
}

func TestParseCSVEmptyCellIsMissing(t *testing.T) {
	f, err := ParseCSV([]byte("a,b\n1,\n2,3\n"))
	require.NoError(t, err)

	b, _ := f.Column("b")
	assert.Equal(t, TypeInt64, b.Type)
	assert.Nil(t, b.Values[0])
	assert.Equal(t, int64(3), b.Values[1])
}

func TestParseCSVInconsistentFieldCount(t *testing.T) {
	_, err := ParseCSV([]byte("a,b\n1,2\n1,2,3\n"))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeParse))
}

func TestParseCSVInvalidUTF8(t *testing.T) {
	_, err := ParseCSV([]byte{'a', ',', 'b', '\n', 0xff, 0xfe, ',', '1'})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeParse))
}

func TestParseCSVEmptyPayload(t *testing.T) {
	f, err := ParseCSV(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, f.NumRows())
	assert.Equal(t, 0, f.NumCols())
}

func TestParseJSONLinesKeyUnion(t *testing.T) {
	data := []byte(`{"a":1,"b":"x"}` + "\n" + `{"a":2.5,"c":true}` + "\n")

	f, err := ParseJSONLines(data)
	require.NoError(t, err)

	assert.Equal(t, 2, f.NumRows())
	assert.Equal(t, []string{"a", "b", "c"}, f.Columns())

	a, _ := f.Column("a")
	assert.Equal(t, TypeFloat64, a.Type)
	assert.Equal(t, 1.0, a.Values[0])
	assert.Equal(t, 2.5, a.Values[1])

	b, _ := f.Column("b")
	assert.Equal(t, TypeString, b.Type)
	assert.Equal(t, "x", b.Values[0])
	assert.Nil(t, b.Values[1])

	c, _ := f.Column("c")
	assert.Equal(t, TypeBool, c.Type)
	assert.Nil(t, c.Values[0])
	assert.Equal(t, true, c.Values[1])
}

func TestParseJSONLinesIntegersStayIntegers(t *testing.T) {
	f, err := ParseJSONLines([]byte(`{"v":9007199254740993}`))
	require.NoError(t, err)

	v, _ := f.Column("v")
	assert.Equal(t, TypeInt64, v.Type)
	assert.Equal(t, int64(9007199254740993), v.Values[0])
}

func TestParseJSONLinesNestedValuesKeptAsText(t *testing.T) {
	f, err := ParseJSONLines([]byte(`{"meta":{"k":1},"tags":[1,2]}`))
	require.NoError(t, err)

	meta, _ := f.Column("meta")
	assert.Equal(t, TypeString, meta.Type)
	assert.JSONEq(t, `{"k":1}`, meta.Values[0].(string))
}

func TestParseJSONLinesMalformedLine(t *testing.T) {
	_, err := ParseJSONLines([]byte("{\"a\":1}\n{broken\n"))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeParse))
}

func TestParseJSONLinesNonObjectRecord(t *testing.T) {
	_, err := ParseJSONLines([]byte(`[1,2,3]`))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeParse))
}

func TestParseDispatch(t *testing.T) {
	f, err := Parse([]byte("a\n1\n"), FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, 1, f.NumRows())

	f, err = Parse([]byte(`{"a":1}`), FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, 1, f.NumRows())

	_, err = Parse(nil, SourceFormat("xml"))
	require.Error(t, err)
}
