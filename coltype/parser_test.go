package coltype_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colwire/colwire-go/coltype"
)

func TestParseScalars(t *testing.T) {
	for _, name := range []string{"UInt8", "Int64", "Float32", "String", "UUID", "Bool", "Nothing"} {
		ty, err := coltype.Parse(name)
		require.NoError(t, err)
		assert.Equal(t, name, ty.String())
	}
}

func TestParseRoundTrip(t *testing.T) {
	cases := []string{
		"Array(Nullable(Decimal(9, 3)))",
		"Map(String, Array(Int32))",
		"Tuple(UInt8, String, Nullable(Float64))",
		"LowCardinality(String)",
		"LowCardinality(Nullable(String))",
		"FixedString(16)",
		"DateTime64(3, 'UTC')",
		"DateTime64(6)",
		"DateTime('Europe/Amsterdam')",
		"DateTime",
		"Enum8('a' = 1, 'b' = 2)",
		"Enum16('x' = -1, 'y' = 0)",
	}
	for _, s := range cases {
		ty, err := coltype.Parse(s)
		require.NoError(t, err, s)
		assert.Equal(t, s, ty.String(), s)
	}
}

func TestParseDecimalRejectsOutOfRangeScale(t *testing.T) {
	_, err := coltype.Parse("Decimal(5, 9)")
	assert.Error(t, err)
}

func TestParseRejectsTrailingGarbage(t *testing.T) {
	_, err := coltype.Parse("UInt8 extra")
	assert.Error(t, err)
}

func TestParseRejectsUnknownName(t *testing.T) {
	_, err := coltype.Parse("NotARealType")
	assert.Error(t, err)
}

func TestParseRejectsUnclosedComposite(t *testing.T) {
	_, err := coltype.Parse("Array(UInt8")
	assert.Error(t, err)
}

func TestParseTooDeepNesting(t *testing.T) {
	s := "UInt8"
	for i := 0; i < 40; i++ {
		s = "Array(" + s + ")"
	}
	_, err := coltype.Parse(s)
	assert.ErrorIs(t, err, coltype.ErrTooDeep)
}

func TestParseCachesResult(t *testing.T) {
	a, err := coltype.Parse("Array(String)")
	require.NoError(t, err)
	b, err := coltype.Parse("Array(String)")
	require.NoError(t, err)
	assert.True(t, a.Equal(b))
}

func TestEnumLookup(t *testing.T) {
	ty, err := coltype.Parse("Enum8('a' = 1, 'b' = 2)")
	require.NoError(t, err)
	label, ok := ty.LookupEnumValue(2)
	require.True(t, ok)
	assert.Equal(t, "b", label)
	v, ok := ty.LookupEnumLabel("a")
	require.True(t, ok)
	assert.EqualValues(t, 1, v)
	_, ok = ty.LookupEnumValue(99)
	assert.False(t, ok)
}

func TestDecimalBits(t *testing.T) {
	assert.Equal(t, 32, coltype.DecimalBits(9))
	assert.Equal(t, 64, coltype.DecimalBits(10))
	assert.Equal(t, 64, coltype.DecimalBits(18))
	assert.Equal(t, 128, coltype.DecimalBits(19))
	assert.Equal(t, 128, coltype.DecimalBits(38))
}
