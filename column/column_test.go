package column_test

import (
	"bytes"
	"math/big"
	"strconv"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colwire/colwire-go/coltype"
	"github.com/colwire/colwire-go/column"
	"github.com/colwire/colwire-go/wire"
)

func roundTrip(t *testing.T, typeText string, values []column.Value) []column.Value {
	ty, err := coltype.Parse(typeText)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, column.Encode(wire.NewWriter(&buf), ty, values))

	got, err := column.Decode(wire.NewReader(&buf), ty, len(values))
	require.NoError(t, err)
	return got
}

func TestFixedWidthRoundTrip(t *testing.T) {
	got := roundTrip(t, "UInt32", []column.Value{uint32(0), uint32(1), uint32(4294967295)})
	assert.Equal(t, []column.Value{uint32(0), uint32(1), uint32(4294967295)}, got)
}

func TestEmptyColumnRoundTrip(t *testing.T) {
	got := roundTrip(t, "String", []column.Value{})
	assert.Equal(t, []column.Value{}, got)
}

func TestStringRoundTrip(t *testing.T) {
	got := roundTrip(t, "String", []column.Value{"", "a", "hello world"})
	assert.Equal(t, []column.Value{"", "a", "hello world"}, got)
}

func TestFixedStringPadsOnWrite(t *testing.T) {
	got := roundTrip(t, "FixedString(5)", []column.Value{[]byte("ab"), []byte("abcde")})
	assert.Equal(t, []byte("ab\x00\x00\x00"), got[0])
	assert.Equal(t, []byte("abcde"), got[1])
}

func TestUUIDRoundTrip(t *testing.T) {
	id := uuid.MustParse("f47ac10b-58cc-4372-a567-0e02b2c3d479")
	got := roundTrip(t, "UUID", []column.Value{id})
	assert.Equal(t, id, got[0])
}

func TestNullableAllNull(t *testing.T) {
	got := roundTrip(t, "Nullable(UInt8)", []column.Value{nil, nil, nil})
	assert.Equal(t, []column.Value{nil, nil, nil}, got)
}

func TestNullableMixed(t *testing.T) {
	got := roundTrip(t, "Nullable(String)", []column.Value{"a", nil, "c"})
	assert.Equal(t, []column.Value{"a", nil, "c"}, got)
}

func TestArrayEmpty(t *testing.T) {
	got := roundTrip(t, "Array(UInt8)", []column.Value{[]column.Value{}})
	assert.Equal(t, []column.Value{}, got[0])
}

func TestArrayOfStrings(t *testing.T) {
	got := roundTrip(t, "Array(String)", []column.Value{
		[]column.Value{"a", "b"},
		[]column.Value{},
		[]column.Value{"c"},
	})
	require.Len(t, got, 3)
	assert.Equal(t, []column.Value{"a", "b"}, got[0])
	assert.Equal(t, []column.Value{}, got[1])
	assert.Equal(t, []column.Value{"c"}, got[2])
}

func TestArrayLarge(t *testing.T) {
	n := 1 << 17 // large but test-suite-friendly stand-in for the 1M case
	arr := make([]column.Value, n)
	for i := range arr {
		arr[i] = uint32(i)
	}
	got := roundTrip(t, "Array(UInt32)", []column.Value{arr})
	require.Len(t, got, 1)
	gotArr := got[0].([]column.Value)
	require.Len(t, gotArr, n)
	assert.Equal(t, uint32(0), gotArr[0])
	assert.Equal(t, uint32(n-1), gotArr[n-1])
}

func TestTupleRoundTrip(t *testing.T) {
	got := roundTrip(t, "Tuple(UInt8, String)", []column.Value{
		[]column.Value{uint8(1), "x"},
		[]column.Value{uint8(2), "y"},
	})
	assert.Equal(t, []column.Value{uint8(1), "x"}, got[0])
	assert.Equal(t, []column.Value{uint8(2), "y"}, got[1])
}

func TestMapWithDuplicateKeys(t *testing.T) {
	got := roundTrip(t, "Map(String, UInt8)", []column.Value{
		[]column.MapEntry{{Key: "a", Value: uint8(1)}, {Key: "a", Value: uint8(2)}},
	})
	entries := got[0].([]column.MapEntry)
	require.Len(t, entries, 2)
	assert.Equal(t, "a", entries[0].Key)
	assert.Equal(t, uint8(1), entries[0].Value)
	assert.Equal(t, uint8(2), entries[1].Value)
}

func TestEnumRoundTrip(t *testing.T) {
	got := roundTrip(t, "Enum8('a' = 1, 'b' = 2)", []column.Value{"a", "b", "a"})
	assert.Equal(t, []column.Value{"a", "b", "a"}, got)
}

func TestEnumRejectsUndeclaredLabel(t *testing.T) {
	ty, err := coltype.Parse("Enum8('a' = 1)")
	require.NoError(t, err)
	var buf bytes.Buffer
	err = column.Encode(wire.NewWriter(&buf), ty, []column.Value{"nope"})
	assert.ErrorIs(t, err, column.ErrValueOutOfRange)
}

func TestLowCardinalityDictSizeOne(t *testing.T) {
	got := roundTrip(t, "LowCardinality(String)", []column.Value{"same", "same", "same"})
	assert.Equal(t, []column.Value{"same", "same", "same"}, got)
}

func TestLowCardinalityLargeDict(t *testing.T) {
	n := 1 << 16
	values := make([]column.Value, n)
	for i := range values {
		values[i] = bigDictLabel(i)
	}
	got := roundTrip(t, "LowCardinality(String)", values)
	require.Len(t, got, n)
	assert.Equal(t, bigDictLabel(0), got[0])
	assert.Equal(t, bigDictLabel(n-1), got[n-1])
}

func bigDictLabel(i int) string {
	return "label-" + strconv.Itoa(i)
}

func TestLowCardinalityNullable(t *testing.T) {
	got := roundTrip(t, "LowCardinality(Nullable(String))", []column.Value{"x", nil, "x", nil, "y"})
	assert.Equal(t, []column.Value{"x", nil, "x", nil, "y"}, got)
}

// A real "" must never be confused with the null sentinel that also
// happens to live at dictionary index 0.
func TestLowCardinalityNullableZeroValueNotConfusedWithNull(t *testing.T) {
	got := roundTrip(t, "LowCardinality(Nullable(String))", []column.Value{"", nil, "x"})
	assert.Equal(t, []column.Value{"", nil, "x"}, got)
}

func TestLowCardinalityNullableZeroValueInt(t *testing.T) {
	got := roundTrip(t, "LowCardinality(Nullable(Int32))", []column.Value{int32(0), nil, int32(7)})
	assert.Equal(t, []column.Value{int32(0), nil, int32(7)}, got)
}

func TestDecimalRoundTrip(t *testing.T) {
	big1, _ := new(big.Int).SetString("123456789", 10)
	got := roundTrip(t, "Decimal(9, 3)", []column.Value{big.NewInt(0), big1, big.NewInt(-42)})
	assert.Equal(t, big.NewInt(0), got[0])
	assert.Equal(t, big1, got[1])
	assert.Equal(t, big.NewInt(-42), got[2])
}

func TestDecimal128RoundTrip(t *testing.T) {
	v, _ := new(big.Int).SetString("123456789012345678901234567890", 10)
	got := roundTrip(t, "Decimal(38, 10)", []column.Value{v})
	assert.Equal(t, v.String(), got[0].(*big.Int).String())
}

func TestInt128RoundTrip(t *testing.T) {
	v, _ := new(big.Int).SetString("-170141183460469231731687303715884105728", 10)
	got := roundTrip(t, "Int128", []column.Value{v})
	assert.Equal(t, v.String(), got[0].(*big.Int).String())
}

func TestUInt128RoundTrip(t *testing.T) {
	v, _ := new(big.Int).SetString("340282366920938463463374607431768211455", 10)
	got := roundTrip(t, "UInt128", []column.Value{v})
	assert.Equal(t, v.String(), got[0].(*big.Int).String())
}

func TestArrayNonDecreasingOffsetsInvariant(t *testing.T) {
	ty, err := coltype.Parse("Array(UInt8)")
	require.NoError(t, err)
	var buf bytes.Buffer
	w := wire.NewWriter(&buf)
	require.NoError(t, w.PutUint64(5)) // offsets[0]
	require.NoError(t, w.PutUint64(2)) // offsets[1] < offsets[0]: violates invariant
	_, err = column.Decode(wire.NewReader(&buf), ty, 2)
	assert.ErrorIs(t, err, column.ErrColumnLengthMismatch)
}
