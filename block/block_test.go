package block_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colwire/colwire-go/block"
	"github.com/colwire/colwire-go/coltype"
	"github.com/colwire/colwire-go/column"
	"github.com/colwire/colwire-go/wire"
)

func mustType(t *testing.T, s string) *coltype.Type {
	ty, err := coltype.Parse(s)
	require.NoError(t, err)
	return ty
}

func TestBlockRoundTrip(t *testing.T) {
	b := &block.Block{
		Info: block.DefaultInfo,
		Columns: []block.Column{
			{Name: "id", Type: mustType(t, "UInt64"), Values: []column.Value{uint64(1), uint64(2), uint64(3)}},
			{Name: "name", Type: mustType(t, "String"), Values: []column.Value{"Alice", "Bob", "Charlie"}},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, block.Encode(wire.NewWriter(&buf), b))

	got, err := block.Decode(wire.NewReader(&buf))
	require.NoError(t, err)

	require.Len(t, got.Columns, 2)
	assert.Equal(t, "id", got.Columns[0].Name)
	assert.Equal(t, []column.Value{uint64(1), uint64(2), uint64(3)}, got.Columns[0].Values)
	assert.Equal(t, "name", got.Columns[1].Name)
	assert.Equal(t, []column.Value{"Alice", "Bob", "Charlie"}, got.Columns[1].Values)
}

func TestEmptyBlockRoundTrip(t *testing.T) {
	b := &block.Block{Info: block.DefaultInfo}
	var buf bytes.Buffer
	require.NoError(t, block.Encode(wire.NewWriter(&buf), b))

	got, err := block.Decode(wire.NewReader(&buf))
	require.NoError(t, err)
	assert.Empty(t, got.Columns)
	n, err := got.NRows()
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestBlockZeroRowsManyColumns(t *testing.T) {
	b := &block.Block{
		Info: block.DefaultInfo,
		Columns: []block.Column{
			{Name: "a", Type: mustType(t, "UInt8"), Values: []column.Value{}},
			{Name: "b", Type: mustType(t, "String"), Values: []column.Value{}},
		},
	}
	var buf bytes.Buffer
	require.NoError(t, block.Encode(wire.NewWriter(&buf), b))
	got, err := block.Decode(wire.NewReader(&buf))
	require.NoError(t, err)
	n, err := got.NRows()
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestBlockColumnLengthMismatchRejected(t *testing.T) {
	b := &block.Block{
		Info: block.DefaultInfo,
		Columns: []block.Column{
			{Name: "a", Type: mustType(t, "UInt8"), Values: []column.Value{uint8(1), uint8(2)}},
			{Name: "b", Type: mustType(t, "UInt8"), Values: []column.Value{uint8(1)}},
		},
	}
	var buf bytes.Buffer
	err := block.Encode(wire.NewWriter(&buf), b)
	assert.ErrorIs(t, err, block.ErrColumnLengthMismatch)
}

func TestBlockInfoOverflowsAndBucket(t *testing.T) {
	b := &block.Block{
		Info: block.Info{IsOverflows: true, BucketNum: 7},
		Columns: []block.Column{
			{Name: "a", Type: mustType(t, "UInt8"), Values: []column.Value{uint8(9)}},
		},
	}
	var buf bytes.Buffer
	require.NoError(t, block.Encode(wire.NewWriter(&buf), b))
	got, err := block.Decode(wire.NewReader(&buf))
	require.NoError(t, err)
	assert.True(t, got.Info.IsOverflows)
	assert.EqualValues(t, 7, got.Info.BucketNum)
}

func TestBlockUnknownInfoFieldFails(t *testing.T) {
	var buf bytes.Buffer
	w := wire.NewWriter(&buf)
	require.NoError(t, w.PutUvarint(99)) // unknown block_info field
	_, err := block.Decode(wire.NewReader(&buf))
	assert.Error(t, err)
}
