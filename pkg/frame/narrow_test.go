package frame

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNarrowPicksSmallestWidth(t *testing.T) {
	tests := []struct {
		name   string
		values []interface{}
		want   DataType
	}{
		{"int8", []interface{}{int64(1), int64(100), int64(-100)}, TypeInt8},
		{"int8 bounds", []interface{}{int64(-128), int64(127)}, TypeInt8},
		{"int16", []interface{}{int64(1), int64(1000)}, TypeInt16},
		{"int32", []interface{}{int64(1), int64(300000)}, TypeInt32},
		{"int64", []interface{}{int64(1), int64(1) << 40}, TypeInt64},
		{"negative drives width", []interface{}{int64(1), int64(-40000)}, TypeInt32},
		{"nil ignored", []interface{}{nil, int64(5), nil}, TypeInt8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := mustFrame(t, []Column{
				{Name: "v", Type: TypeInt64, Values: tt.values},
			})
			v, _ := Narrow(f).Column("v")
			assert.Equal(t, tt.want, v.Type)
		})
	}
}

func TestNarrowWidthIsGlobal(t *testing.T) {
	// One large value keeps the whole column wide even when most values
	// would fit a narrower type.
	f := mustFrame(t, []Column{
		{Name: "v", Type: TypeInt64, Values: []interface{}{int64(1), int64(2), int64(300000)}},
	})
	v, _ := Narrow(f).Column("v")
	assert.Equal(t, TypeInt32, v.Type)
}

func TestNarrowLeavesFloatsAlone(t *testing.T) {
	// Fractional columns keep full precision even when every value is
	// integral.
	f := mustFrame(t, []Column{
		{Name: "v", Type: TypeFloat64, Values: []interface{}{1.0, 2.0}},
	})
	v, _ := Narrow(f).Column("v")
	assert.Equal(t, TypeFloat64, v.Type)
	assert.Equal(t, []interface{}{1.0, 2.0}, v.Values)
}

func TestNarrowLeavesNonNumericAlone(t *testing.T) {
	f := mustFrame(t, []Column{
		{Name: "s", Type: TypeString, Values: []interface{}{"a"}},
		{Name: "b", Type: TypeBool, Values: []interface{}{true}},
	})
	out := Narrow(f)
	s, _ := out.Column("s")
	assert.Equal(t, TypeString, s.Type)
	b, _ := out.Column("b")
	assert.Equal(t, TypeBool, b.Type)
}

func TestNarrowIdempotent(t *testing.T) {
	f := mustFrame(t, []Column{
		{Name: "small", Type: TypeInt64, Values: []interface{}{int64(1), int64(2)}},
		{Name: "big", Type: TypeInt64, Values: []interface{}{int64(1) << 40, int64(0)}},
		{Name: "f", Type: TypeFloat64, Values: []interface{}{1.5, nil}},
	})

	once := Narrow(f)
	twice := Narrow(once)
	assert.True(t, once.Equal(twice))
}

func TestNarrowAllMissingKeepsType(t *testing.T) {
	f := mustFrame(t, []Column{
		{Name: "v", Type: TypeInt64, Values: []interface{}{nil, nil}},
	})
	v, _ := Narrow(f).Column("v")
	assert.Equal(t, TypeInt64, v.Type)
}
