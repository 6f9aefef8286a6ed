package column

import (
	"fmt"

	"github.com/go-faster/errors"

	"github.com/colwire/colwire-go/coltype"
	"github.com/colwire/colwire-go/wire"
)

// LowCardinality(T) is a versioned dictionary encoding. See spec §4.4:
// version(u64)=1, flags(u64) with bit 9 = "has additional keys" and low
// byte = index width, dict_size(u64), dictionary column body, index_count
// (u64) = n, index column body of the chosen width.
const (
	lowCardinalityVersion = 1

	lcHasAdditionalKeysBit = 1 << 9
	lcIndexWidthMask       = 0xff

	lcIndexUInt8  = 0
	lcIndexUInt16 = 1
	lcIndexUInt32 = 2
	lcIndexUInt64 = 3
)

// indexWidthFor returns the smallest index width that can represent any
// value in [0, dictSize).
func indexWidthFor(dictSize int) int {
	switch {
	case dictSize <= 1<<8:
		return lcIndexUInt8
	case dictSize <= 1<<16:
		return lcIndexUInt16
	case dictSize <= 1<<32:
		return lcIndexUInt32
	default:
		return lcIndexUInt64
	}
}

func encodeLowCardinality(w *wire.Writer, ty *coltype.Type, values []Value) error {
	inner := ty.Elem
	nullable := inner.Kind == coltype.KindNullable
	dictElemTy := inner
	if nullable {
		dictElemTy = inner.Elem
	}

	// Build the dictionary, reserving index 0 as the sentinel: the null
	// marker when the inner type is Nullable, otherwise a type-appropriate
	// placeholder. When nullable, index 0's key is deliberately kept out
	// of the dedup map below -- otherwise a real value equal to T's zero
	// value would alias onto the null slot and decode back as nil.
	dict := []Value{zeroValue(dictElemTy)}
	index := make(map[string]int)
	keyOf := func(v Value) string { return dictKey(v) }
	if !nullable {
		index[keyOf(dict[0])] = 0
	}

	indices := make([]int, len(values))
	for i, v := range values {
		if nullable && v == nil {
			indices[i] = 0
			continue
		}
		k := keyOf(v)
		if idx, ok := index[k]; ok {
			indices[i] = idx
			continue
		}
		idx := len(dict)
		dict = append(dict, v)
		index[k] = idx
		indices[i] = idx
	}

	width := indexWidthFor(len(dict))

	if err := w.PutUint64(lowCardinalityVersion); err != nil {
		return errors.Wrap(err, "version")
	}
	flags := uint64(lcHasAdditionalKeysBit) | uint64(width)
	if err := w.PutUint64(flags); err != nil {
		return errors.Wrap(err, "flags")
	}
	if err := w.PutUint64(uint64(len(dict))); err != nil {
		return errors.Wrap(err, "dict_size")
	}
	if err := Encode(w, dictElemTy, dict); err != nil {
		return errors.Wrap(err, "dictionary")
	}
	if err := w.PutUint64(uint64(len(indices))); err != nil {
		return errors.Wrap(err, "index_count")
	}
	for i, idx := range indices {
		if err := putIndex(w, width, idx); err != nil {
			return errors.Wrapf(err, "index row %d", i)
		}
	}
	return nil
}

func decodeLowCardinality(r *wire.Reader, ty *coltype.Type, n int) ([]Value, error) {
	inner := ty.Elem
	nullable := inner.Kind == coltype.KindNullable
	dictElemTy := inner
	if nullable {
		dictElemTy = inner.Elem
	}

	version, err := r.Uint64()
	if err != nil {
		return nil, errors.Wrap(err, "version")
	}
	if version != lowCardinalityVersion {
		return nil, errors.Wrapf(ErrBadLowCardinalityFlags, "unknown version %d", version)
	}
	flags, err := r.Uint64()
	if err != nil {
		return nil, errors.Wrap(err, "flags")
	}
	if flags&lcHasAdditionalKeysBit == 0 {
		return nil, errors.Wrap(ErrBadLowCardinalityFlags, "has-additional-keys bit not set")
	}
	width := int(flags & lcIndexWidthMask)
	if width < lcIndexUInt8 || width > lcIndexUInt64 {
		return nil, errors.Wrapf(ErrBadLowCardinalityFlags, "unknown index width %d", width)
	}

	dictSize, err := r.Uint64()
	if err != nil {
		return nil, errors.Wrap(err, "dict_size")
	}
	dict, err := Decode(r, dictElemTy, int(dictSize))
	if err != nil {
		return nil, errors.Wrap(err, "dictionary")
	}

	indexCount, err := r.Uint64()
	if err != nil {
		return nil, errors.Wrap(err, "index_count")
	}
	if int(indexCount) != n {
		return nil, errors.Wrapf(ErrColumnLengthMismatch, "index_count %d != rows %d", indexCount, n)
	}

	out := make([]Value, n)
	for i := 0; i < n; i++ {
		idx, err := getIndex(r, width)
		if err != nil {
			return nil, errors.Wrapf(err, "index row %d", i)
		}
		if idx >= uint64(len(dict)) {
			return nil, errors.Wrapf(ErrColumnLengthMismatch, "row %d: index %d >= dict_size %d", i, idx, len(dict))
		}
		if nullable && idx == 0 {
			out[i] = nil
			continue
		}
		out[i] = dict[idx]
	}
	return out, nil
}

func putIndex(w *wire.Writer, width int, idx int) error {
	switch width {
	case lcIndexUInt8:
		return w.PutUint8(uint8(idx))
	case lcIndexUInt16:
		return w.PutUint16(uint16(idx))
	case lcIndexUInt32:
		return w.PutUint32(uint32(idx))
	default:
		return w.PutUint64(uint64(idx))
	}
}

func getIndex(r *wire.Reader, width int) (uint64, error) {
	switch width {
	case lcIndexUInt8:
		v, err := r.Uint8()
		return uint64(v), err
	case lcIndexUInt16:
		v, err := r.Uint16()
		return uint64(v), err
	case lcIndexUInt32:
		v, err := r.Uint32()
		return uint64(v), err
	default:
		return r.Uint64()
	}
}

// dictKey produces a comparable map key for deduplicating dictionary
// entries. String and []byte (the practical inner types for
// LowCardinality -- String, FixedString) are keyed directly on their
// bytes; anything else falls back to its formatted form, which is rare
// in practice but still correct for deduplication purposes.
func dictKey(v Value) string {
	switch x := v.(type) {
	case string:
		return "s:" + x
	case []byte:
		return "b:" + string(x)
	default:
		return fmt.Sprintf("v:%v", x)
	}
}
