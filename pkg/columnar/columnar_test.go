package columnar

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantfold/stockdump/pkg/errors"
	"github.com/quantfold/stockdump/pkg/frame"
)

func sampleFrame(t *testing.T) *frame.Frame {
	t.Helper()
	f, err := frame.NewWithColumns([]frame.Column{
		{Name: "Symbol", Type: frame.TypeString, Values: []interface{}{"AAPL", "MSFT", nil}},
		{Name: "Close", Type: frame.TypeFloat64, Values: []interface{}{187.15, 376.04, 139.56}},
		{Name: "Volume", Type: frame.TypeInt32, Values: []interface{}{int64(4920000), nil, int64(3110000)}},
		{Name: "Rank", Type: frame.TypeInt8, Values: []interface{}{int64(1), int64(2), int64(3)}},
		{Name: "Active", Type: frame.TypeBool, Values: []interface{}{true, false, true}},
	})
	require.NoError(t, err)
	return f
}

func TestParquetRoundTrip(t *testing.T) {
	f := sampleFrame(t)
	dest := filepath.Join(t.TempDir(), "out.parquet")

	got, err := Write(f, dest, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, dest, got)

	back, err := Read(dest, Parquet)
	require.NoError(t, err)
	assert.True(t, f.Equal(back), "round-tripped frame differs")
}

func TestArrowRoundTrip(t *testing.T) {
	f := sampleFrame(t)
	dest := filepath.Join(t.TempDir(), "out.arrow")

	_, err := Write(f, dest, &Options{Format: Arrow, Compression: "zstd"})
	require.NoError(t, err)

	back, err := Read(dest, Arrow)
	require.NoError(t, err)
	assert.True(t, f.Equal(back), "round-tripped frame differs")
}

func TestArrowUncompressed(t *testing.T) {
	f := sampleFrame(t)
	dest := filepath.Join(t.TempDir(), "out.arrow")

	_, err := Write(f, dest, &Options{Format: Arrow, Compression: "none"})
	require.NoError(t, err)

	back, err := Read(dest, Arrow)
	require.NoError(t, err)
	assert.True(t, f.Equal(back))
}

func TestWriteCreatesParentDirs(t *testing.T) {
	f := sampleFrame(t)
	dest := filepath.Join(t.TempDir(), "a", "b", "out.parquet")

	_, err := Write(f, dest, nil)
	require.NoError(t, err)

	back, err := ReadParquet(dest)
	require.NoError(t, err)
	assert.Equal(t, f.NumRows(), back.NumRows())
}

func TestWriteRefusesEmptyTable(t *testing.T) {
	_, err := Write(frame.New(), filepath.Join(t.TempDir(), "out.parquet"), nil)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeEmptyInput))
}

func TestWriteRejectsUnknownCodec(t *testing.T) {
	f := sampleFrame(t)
	dest := filepath.Join(t.TempDir(), "out.parquet")

	_, err := Write(f, dest, &Options{Format: Parquet, Compression: "brotli9000"})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeUsage))

	// The failed write must not leave an artifact behind.
	assert.NoFileExists(t, dest)
}

func TestArrowRejectsParquetOnlyCodec(t *testing.T) {
	f := sampleFrame(t)
	_, err := Write(f, filepath.Join(t.TempDir(), "out.arrow"),
		&Options{Format: Arrow, Compression: "snappy"})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeUsage))
}

func TestParseFormat(t *testing.T) {
	got, err := ParseFormat("parquet")
	require.NoError(t, err)
	assert.Equal(t, Parquet, got)

	got, err = ParseFormat("arrow")
	require.NoError(t, err)
	assert.Equal(t, Arrow, got)

	_, err = ParseFormat("orc")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeUsage))
}
