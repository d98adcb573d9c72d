package frame

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name   string
		sample string
		want   SourceFormat
	}{
		{"json object", `{"a":1}`, FormatJSON},
		{"json array", `[{"a":1}]`, FormatJSON},
		{"json with leading whitespace", "\n\t {\"a\":1}", FormatJSON},
		{"csv", "symbol,price\nAAPL,1", FormatCSV},
		{"csv numeric first", "1,2,3", FormatCSV},
		{"empty", "", FormatCSV},
		{"whitespace only", "   \n", FormatCSV},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Detect([]byte(tt.sample)))
		})
	}
}

func TestDetectToleratesInvalidUTF8(t *testing.T) {
	sample := append([]byte{0xff, 0xfe}, []byte(`{"a":1}`)...)
	assert.Equal(t, FormatJSON, Detect(sample))
}

func TestParseHint(t *testing.T) {
	format, ok, err := ParseHint("csv")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, FormatCSV, format)

	format, ok, err = ParseHint("JSON")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, FormatJSON, format)

	_, ok, err = ParseHint("")
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = ParseHint("xml")
	require.Error(t, err)
}
