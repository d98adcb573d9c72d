package frame

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantfold/stockdump/pkg/errors"
)

func TestAddColumn(t *testing.T) {
	f := New()
	require.NoError(t, f.AddColumn("a", TypeInt64, []interface{}{int64(1), int64(2)}))
	assert.Equal(t, 2, f.NumRows())
	assert.Equal(t, 1, f.NumCols())

	err := f.AddColumn("a", TypeInt64, []interface{}{int64(3), int64(4)})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeInternal))

	err = f.AddColumn("b", TypeInt64, []interface{}{int64(3)})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeInternal))
}

func TestValue(t *testing.T) {
	f := mustFrame(t, []Column{
		{Name: "a", Type: TypeInt64, Values: []interface{}{int64(1), nil}},
		{Name: "b", Type: TypeString, Values: []interface{}{"x", "y"}},
	})

	assert.Equal(t, int64(1), f.Value(0, 0))
	assert.Nil(t, f.Value(1, 0))
	assert.Equal(t, "y", f.Value(1, 1))
}

func TestEqual(t *testing.T) {
	a := mustFrame(t, []Column{
		{Name: "v", Type: TypeInt8, Values: []interface{}{int64(1), nil}},
	})
	b := mustFrame(t, []Column{
		{Name: "v", Type: TypeInt8, Values: []interface{}{int64(1), nil}},
	})
	assert.True(t, a.Equal(b))

	widened := mustFrame(t, []Column{
		{Name: "v", Type: TypeInt64, Values: []interface{}{int64(1), nil}},
	})
	assert.False(t, a.Equal(widened))

	renamed := mustFrame(t, []Column{
		{Name: "w", Type: TypeInt8, Values: []interface{}{int64(1), nil}},
	})
	assert.False(t, a.Equal(renamed))
}

func TestResolveValues(t *testing.T) {
	tests := []struct {
		name     string
		in       []interface{}
		wantType DataType
		wantOut  []interface{}
	}{
		{"all ints", []interface{}{int64(1), int64(2)}, TypeInt64, []interface{}{int64(1), int64(2)}},
		{"ints and floats", []interface{}{int64(1), 2.5}, TypeFloat64, []interface{}{1.0, 2.5}},
		{"all bools", []interface{}{true, false}, TypeBool, []interface{}{true, false}},
		{"mixed to string", []interface{}{int64(1), "x", true}, TypeString, []interface{}{"1", "x", "true"}},
		{"nil preserved", []interface{}{nil, int64(1), nil}, TypeInt64, []interface{}{nil, int64(1), nil}},
		{"all missing stays text", []interface{}{nil, nil}, TypeString, []interface{}{nil, nil}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			typ, out := resolveValues(tt.in)
			assert.Equal(t, tt.wantType, typ)
			assert.Equal(t, tt.wantOut, out)
		})
	}
}
