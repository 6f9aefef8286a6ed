package wire_test

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colwire/colwire-go/wire"
)

func TestUvarintRoundTrip(t *testing.T) {
	cases := []uint64{0, 1, 127, 128, 300, 1 << 20, 1<<63 - 1, 1<<64 - 1}
	for _, c := range cases {
		var buf bytes.Buffer
		require.NoError(t, wire.NewWriter(&buf).PutUvarint(c))
		got, err := wire.NewReader(&buf).Uvarint()
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}
}

func TestUvarintOverflow(t *testing.T) {
	// 10 continuation bytes with no terminator.
	buf := bytes.NewReader(bytes.Repeat([]byte{0xff}, 10))
	_, err := wire.NewReader(buf).Uvarint()
	assert.ErrorIs(t, err, wire.ErrVarintOverflow)
}

func TestFixedWidthRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := wire.NewWriter(&buf)
	require.NoError(t, w.PutUint16(0xabcd))
	require.NoError(t, w.PutUint32(0xdeadbeef))
	require.NoError(t, w.PutUint64(0x0102030405060708))
	require.NoError(t, w.PutInt8(-7))
	require.NoError(t, w.PutFloat64(3.5))

	r := wire.NewReader(&buf)
	u16, err := r.Uint16()
	require.NoError(t, err)
	assert.Equal(t, uint16(0xabcd), u16)
	u32, err := r.Uint32()
	require.NoError(t, err)
	assert.Equal(t, uint32(0xdeadbeef), u32)
	u64, err := r.Uint64()
	require.NoError(t, err)
	assert.Equal(t, uint64(0x0102030405060708), u64)
	i8, err := r.Int8()
	require.NoError(t, err)
	assert.Equal(t, int8(-7), i8)
	f64, err := r.Float64()
	require.NoError(t, err)
	assert.Equal(t, 3.5, f64)
}

func TestStringRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, wire.NewWriter(&buf).PutString("hello, world"))
	got, err := wire.NewReader(&buf).String()
	require.NoError(t, err)
	assert.Equal(t, "hello, world", got)
}

func TestEmptyStringRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, wire.NewWriter(&buf).PutString(""))
	got, err := wire.NewReader(&buf).String()
	require.NoError(t, err)
	assert.Equal(t, "", got)
}

func TestUnexpectedEOF(t *testing.T) {
	r := wire.NewReader(bytes.NewReader([]byte{0x01}))
	_, err := r.Uint32()
	assert.ErrorIs(t, err, wire.ErrUnexpectedEOF)
}

func TestUUIDRoundTrip(t *testing.T) {
	id := uuid.MustParse("f47ac10b-58cc-4372-a567-0e02b2c3d479")
	var buf bytes.Buffer
	require.NoError(t, wire.NewWriter(&buf).PutUUID(id))
	got, err := wire.NewReader(&buf).UUID()
	require.NoError(t, err)
	assert.Equal(t, id, got)
	assert.Equal(t, "f47ac10b-58cc-4372-a567-0e02b2c3d479", got.String())
}

func TestInt128RoundTrip(t *testing.T) {
	for _, s := range []string{"0", "1", "-1", "170141183460469231731687303715884105727", "-170141183460469231731687303715884105728", "123456789012345678901234567890"} {
		v, ok := new(big.Int).SetString(s, 10)
		require.True(t, ok)
		lo, hi := wire.Uint128FromBigInt(v)
		got := wire.BigIntFromUint128(lo, hi)
		assert.Equal(t, v.String(), got.String())
	}
}

func TestWriteAllPartial(t *testing.T) {
	w := wire.NewWriter(&partialWriter{max: 1})
	require.NoError(t, w.PutUint32(0x01020304))
}

type partialWriter struct {
	buf bytes.Buffer
	max int
}

func (p *partialWriter) Write(b []byte) (int, error) {
	if len(b) > p.max {
		b = b[:p.max]
	}
	return p.buf.Write(b)
}
