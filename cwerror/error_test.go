package cwerror_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colwire/colwire-go/cwerror"
)

func TestEWithKindAndFormat(t *testing.T) {
	err := cwerror.E(cwerror.Validation, "bad scale %d", 3)
	var ce *cwerror.Error
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, cwerror.Validation, ce.Kind)
	assert.Contains(t, ce.Error(), "bad scale 3")
}

func TestEWrapsUnderlyingError(t *testing.T) {
	cause := errors.New("boom")
	err := cwerror.E(cwerror.Connection, cause)
	var ce *cwerror.Error
	require.True(t, errors.As(err, &ce))
	assert.Same(t, cause, errors.Unwrap(ce))
	assert.ErrorIs(t, ce, cause)
}

func TestClosesSessionPolicy(t *testing.T) {
	assert.True(t, cwerror.Connection.ClosesSession())
	assert.True(t, cwerror.Protocol.ClosesSession())
	assert.False(t, cwerror.Validation.ClosesSession())
	assert.False(t, cwerror.Server.ClosesSession())
}

func TestMessagePrefersWrappedError(t *testing.T) {
	err := cwerror.E(cwerror.Validation, errors.New("out of range"))
	var ce *cwerror.Error
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "out of range", ce.Message())
}
