package compress_test

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/go-faster/city"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colwire/colwire-go/compress"
)

func TestEnvelopeRoundTrip(t *testing.T) {
	payloads := [][]byte{
		nil,
		[]byte("hello"),
		bytes.Repeat([]byte("abcdefgh"), 4096),
	}
	for _, method := range []compress.Method{compress.MethodNone, compress.MethodLZ4, compress.MethodZSTD} {
		for _, p := range payloads {
			env, err := compress.Encode(method, p)
			require.NoError(t, err, method)
			got, err := compress.Decode(bytes.NewReader(env))
			require.NoError(t, err, method)
			assert.Equal(t, p, got, method)
		}
	}
}

func TestEnvelopeChecksumMismatch(t *testing.T) {
	env, err := compress.Encode(compress.MethodLZ4, []byte("payload data"))
	require.NoError(t, err)
	env[0] ^= 0xff
	_, err = compress.Decode(bytes.NewReader(env))
	assert.ErrorIs(t, err, compress.ErrChecksumMismatch)
}

func TestEnvelopeSizeMismatch(t *testing.T) {
	env, err := compress.Encode(compress.MethodNone, []byte("payload data"))
	require.NoError(t, err)
	// Declare an uncompressed_size that disagrees with the MethodNone body,
	// then recompute the checksum over the patched header so Decode gets
	// past checksum verification and reaches the size check.
	env[21] = 99 // low byte of uncompressed_size
	env[22] = 0
	env[23] = 0
	env[24] = 0
	sum := city.CH128(env[16:])
	binary.LittleEndian.PutUint64(env[0:8], sum.Low)
	binary.LittleEndian.PutUint64(env[8:16], sum.High)
	_, err = compress.Decode(bytes.NewReader(env))
	assert.ErrorIs(t, err, compress.ErrSizeMismatch)
}

func TestEnvelopeMultipleConcatenated(t *testing.T) {
	a, err := compress.Encode(compress.MethodLZ4, []byte("first"))
	require.NoError(t, err)
	b, err := compress.Encode(compress.MethodZSTD, []byte("second"))
	require.NoError(t, err)
	r := bytes.NewReader(append(a, b...))

	got1, err := compress.Decode(r)
	require.NoError(t, err)
	assert.Equal(t, []byte("first"), got1)
	got2, err := compress.Decode(r)
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), got2)
}

func TestEnvelopeUnknownMethod(t *testing.T) {
	_, err := compress.Encode(compress.Method(0x7f), []byte("x"))
	assert.ErrorIs(t, err, compress.ErrUnknownMethod)
}
