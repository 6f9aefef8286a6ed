package column

import (
	"math/big"

	"github.com/go-faster/errors"

	"github.com/colwire/colwire-go/coltype"
	"github.com/colwire/colwire-go/wire"
)

// Decimal(P,S) values are carried as *big.Int holding the unscaled
// mantissa, backed by a 32/64/128-bit signed two's-complement integer
// chosen from P per coltype.DecimalBits.

func encodeDecimal(w *wire.Writer, ty *coltype.Type, values []Value) error {
	bits := coltype.DecimalBits(ty.Precision)
	for i, v := range values {
		m, ok := v.(*big.Int)
		if !ok {
			return errors.Errorf("row %d: decimal value must be *big.Int", i)
		}
		if err := putBigInt(w, bits, m); err != nil {
			return errors.Wrapf(err, "row %d", i)
		}
	}
	return nil
}

func decodeDecimal(r *wire.Reader, ty *coltype.Type, n int) ([]Value, error) {
	bits := coltype.DecimalBits(ty.Precision)
	out := make([]Value, n)
	for i := 0; i < n; i++ {
		m, err := getBigInt(r, bits, true)
		if err != nil {
			return nil, errors.Wrapf(err, "row %d", i)
		}
		out[i] = m
	}
	return out, nil
}

func encodeInt128(w *wire.Writer, ty *coltype.Type, values []Value) error {
	signed := ty.Kind == coltype.KindInt128
	for i, v := range values {
		m, ok := v.(*big.Int)
		if !ok {
			return errors.Errorf("row %d: %v value must be *big.Int", i, ty.Kind)
		}
		var err error
		if signed {
			err = putBigInt(w, 128, m)
		} else {
			err = putUnsignedBigInt128(w, m)
		}
		if err != nil {
			return errors.Wrapf(err, "row %d", i)
		}
	}
	return nil
}

func putUnsignedBigInt128(w *wire.Writer, m *big.Int) error {
	if m.Sign() < 0 {
		return ErrValueOutOfRange
	}
	max := new(big.Int).Lsh(big.NewInt(1), 128)
	if m.Cmp(max) >= 0 {
		return ErrValueOutOfRange
	}
	lo, hi := bigIntToUint128Unsigned(m)
	return w.PutUint128(lo, hi)
}

func bigIntToUint128Unsigned(m *big.Int) (lo, hi uint64) {
	b := m.Bytes()
	full := make([]byte, 16)
	copy(full[16-len(b):], b)
	for i := 0; i < 8; i++ {
		hi |= uint64(full[7-i]) << (8 * i)
		lo |= uint64(full[15-i]) << (8 * i)
	}
	return lo, hi
}

func decodeInt128(r *wire.Reader, ty *coltype.Type, n int) ([]Value, error) {
	signed := ty.Kind == coltype.KindInt128
	out := make([]Value, n)
	for i := 0; i < n; i++ {
		m, err := getBigInt(r, 128, signed)
		if err != nil {
			return nil, errors.Wrapf(err, "row %d", i)
		}
		out[i] = m
	}
	return out, nil
}

// putBigInt writes m as a signed two's-complement integer of the given
// bit width (32, 64, or 128), little-endian.
func putBigInt(w *wire.Writer, bits int, m *big.Int) error {
	switch bits {
	case 32:
		if !fitsSigned(m, 32) {
			return ErrValueOutOfRange
		}
		return w.PutInt32(int32(m.Int64()))
	case 64:
		if !fitsSigned(m, 64) {
			return ErrValueOutOfRange
		}
		return w.PutInt64(m.Int64())
	case 128:
		if !fitsSigned(m, 128) {
			return ErrValueOutOfRange
		}
		lo, hi := wire.Uint128FromBigInt(m)
		return w.PutUint128(lo, hi)
	default:
		return errors.Errorf("column: unsupported decimal width %d", bits)
	}
}

// getBigInt reads a two's-complement integer of the given bit width.
// signed controls interpretation for the 128-bit case (32/64-bit paths are
// always read as signed since Decimal is always signed and Int128/UInt128
// share the same wire shape but differ in sign interpretation).
func getBigInt(r *wire.Reader, bits int, signed bool) (*big.Int, error) {
	switch bits {
	case 32:
		v, err := r.Int32()
		if err != nil {
			return nil, err
		}
		return big.NewInt(int64(v)), nil
	case 64:
		v, err := r.Int64()
		if err != nil {
			return nil, err
		}
		return big.NewInt(v), nil
	case 128:
		lo, hi, err := r.Uint128()
		if err != nil {
			return nil, err
		}
		if signed {
			return wire.BigIntFromUint128(lo, hi), nil
		}
		return uint128ToBigInt(lo, hi), nil
	default:
		return nil, errors.Errorf("column: unsupported integer width %d", bits)
	}
}

func uint128ToBigInt(lo, hi uint64) *big.Int {
	v := new(big.Int).SetUint64(hi)
	v.Lsh(v, 64)
	v.Or(v, new(big.Int).SetUint64(lo))
	return v
}

func fitsSigned(m *big.Int, bits int) bool {
	max := new(big.Int).Lsh(big.NewInt(1), uint(bits-1))
	min := new(big.Int).Neg(max)
	max.Sub(max, big.NewInt(1))
	return m.Cmp(min) >= 0 && m.Cmp(max) <= 0
}
