// Package block assembles and disassembles a Block: a named, typed,
// equal-length set of columns plus a small info header, as exchanged in
// Data/Totals/Extremes packets.
package block

import (
	"bytes"

	"github.com/go-faster/errors"
	"golang.org/x/sync/errgroup"

	"github.com/colwire/colwire-go/coltype"
	"github.com/colwire/colwire-go/column"
	"github.com/colwire/colwire-go/wire"
)

// ErrColumnLengthMismatch is returned when a Block's columns disagree on
// length, or disagree with the declared row count.
var ErrColumnLengthMismatch = errors.New("block: column length mismatch")

// maxColumns and maxRows guard against a corrupt or hostile peer claiming
// an implausible column/row count before any bytes for them are read.
const (
	maxColumns = 1_000_000
	maxRows    = 1 << 32
)

// Column is one named, typed column of a Block.
type Column struct {
	Name string
	Type *coltype.Type
	// TypeText is the exact textual type the column was decoded with.
	// It is normally equal to Type.String(), but is preserved verbatim
	// in case a server emits a spelling that differs only cosmetically
	// (e.g. incidental whitespace) from the canonical form.
	TypeText string
	Values   []column.Value
}

// Info is the block_info tagged-field header: is_overflows and
// bucket_num, both written even at their defaults to match server
// expectations.
type Info struct {
	IsOverflows bool
	BucketNum   int32
}

// DefaultInfo is the default header: not an overflow block, no bucket
// (bucket_num -1).
var DefaultInfo = Info{IsOverflows: false, BucketNum: -1}

// Block is a set of named, equal-length, typed columns.
type Block struct {
	Info    Info
	Columns []Column
}

// NRows returns the block's row count, validating that every column
// agrees on it. A Block with zero columns has zero rows by convention
// (the empty-block protocol sentinel).
func (b *Block) NRows() (int, error) {
	if len(b.Columns) == 0 {
		return 0, nil
	}
	n := len(b.Columns[0].Values)
	for _, c := range b.Columns[1:] {
		if len(c.Values) != n {
			return 0, errors.Wrapf(ErrColumnLengthMismatch, "column %q has %d rows, column %q has %d", c.Name, len(c.Values), b.Columns[0].Name, n)
		}
	}
	return n, nil
}

// Encode writes the block_info header, n_columns, n_rows, and every
// column's (name, type_text, body) triple. Column bodies are encoded
// concurrently into independent buffers -- each column's serialize step
// is a pure function of its own values -- then written to w in declared
// order so the wire sees a single deterministic byte stream.
func Encode(w *wire.Writer, b *Block) error {
	n, err := b.NRows()
	if err != nil {
		return err
	}

	bodies := make([][]byte, len(b.Columns))
	var g errgroup.Group
	for i := range b.Columns {
		i := i
		g.Go(func() error {
			col := b.Columns[i]
			var buf bytes.Buffer
			if err := column.Encode(wire.NewWriter(&buf), col.Type, col.Values); err != nil {
				return errors.Wrapf(err, "column %q", col.Name)
			}
			bodies[i] = buf.Bytes()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if err := encodeInfo(w, b.Info); err != nil {
		return errors.Wrap(err, "block info")
	}
	if err := w.PutUvarint(uint64(len(b.Columns))); err != nil {
		return errors.Wrap(err, "n_columns")
	}
	if err := w.PutUvarint(uint64(n)); err != nil {
		return errors.Wrap(err, "n_rows")
	}
	for i, col := range b.Columns {
		if err := w.PutString(col.Name); err != nil {
			return errors.Wrapf(err, "column %d name", i)
		}
		text := col.TypeText
		if text == "" {
			text = col.Type.String()
		}
		if err := w.PutString(text); err != nil {
			return errors.Wrapf(err, "column %d type", i)
		}
		if err := w.WriteAll(bodies[i]); err != nil {
			return errors.Wrapf(err, "column %d body", i)
		}
	}
	return nil
}

// Decode reads a Block. Column bodies are read sequentially since a
// variable-width column's length on the wire is only known by decoding
// it; there is no way to determine column boundaries without doing so.
func Decode(r *wire.Reader) (*Block, error) {
	info, err := decodeInfo(r)
	if err != nil {
		return nil, errors.Wrap(err, "block info")
	}
	nColumns, err := r.Uvarint()
	if err != nil {
		return nil, errors.Wrap(err, "n_columns")
	}
	if nColumns > maxColumns {
		return nil, errors.Errorf("block: n_columns %d exceeds limit", nColumns)
	}
	nRows, err := r.Uvarint()
	if err != nil {
		return nil, errors.Wrap(err, "n_rows")
	}
	if nRows > maxRows {
		return nil, errors.Errorf("block: n_rows %d exceeds limit", nRows)
	}

	b := &Block{Info: info, Columns: make([]Column, nColumns)}
	for i := range b.Columns {
		name, err := r.String()
		if err != nil {
			return nil, errors.Wrapf(err, "column %d name", i)
		}
		typeText, err := r.String()
		if err != nil {
			return nil, errors.Wrapf(err, "column %d type", i)
		}
		ty, err := coltype.Parse(typeText)
		if err != nil {
			return nil, errors.Wrapf(err, "column %d type %q", i, typeText)
		}
		values, err := column.Decode(r, ty, int(nRows))
		if err != nil {
			return nil, errors.Wrapf(err, "column %d %q body", i, name)
		}
		b.Columns[i] = Column{Name: name, Type: ty, TypeText: typeText, Values: values}
	}
	return b, nil
}

// block_info field numbers, per spec.md §4.5.
const (
	infoFieldIsOverflows = 1
	infoFieldBucketNum   = 2
	infoFieldTerminator  = 0
)

func encodeInfo(w *wire.Writer, info Info) error {
	if err := w.PutUvarint(infoFieldIsOverflows); err != nil {
		return err
	}
	if err := w.PutBool(info.IsOverflows); err != nil {
		return err
	}
	if err := w.PutUvarint(infoFieldBucketNum); err != nil {
		return err
	}
	if err := w.PutInt32(info.BucketNum); err != nil {
		return err
	}
	return w.PutUvarint(infoFieldTerminator)
}

// decodeInfo reads tagged fields until the terminator: field 1 as a bool
// (is_overflows) and field 2 as an int32 (bucket_num). Any other field
// number has no known value shape, so it is reported as an error rather
// than skipped.
func decodeInfo(r *wire.Reader) (Info, error) {
	info := DefaultInfo
	for {
		field, err := r.Uvarint()
		if err != nil {
			return info, err
		}
		switch field {
		case infoFieldTerminator:
			return info, nil
		case infoFieldIsOverflows:
			v, err := r.Bool()
			if err != nil {
				return info, err
			}
			info.IsOverflows = v
		case infoFieldBucketNum:
			v, err := r.Int32()
			if err != nil {
				return info, err
			}
			info.BucketNum = v
		default:
			return info, errors.Errorf("block: unknown block_info field %d", field)
		}
	}
}
