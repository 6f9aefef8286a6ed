package wire

import "math/big"

// Int128 and UInt128 are transmitted as two 64-bit little-endian halves,
// low half first -- the opposite half ordering from UUID. They back the
// 128-bit Decimal backing store.

func (r *Reader) Uint128() (lo, hi uint64, err error) {
	lo, err = r.Uint64()
	if err != nil {
		return 0, 0, err
	}
	hi, err = r.Uint64()
	return lo, hi, err
}

func (w *Writer) PutUint128(lo, hi uint64) error {
	if err := w.PutUint64(lo); err != nil {
		return err
	}
	return w.PutUint64(hi)
}

// BigIntFromUint128 reinterprets an unsigned 128-bit (lo, hi) pair as a
// signed two's-complement big.Int, as used by wide Decimal columns.
func BigIntFromUint128(lo, hi uint64) *big.Int {
	b := make([]byte, 16)
	for i := 0; i < 8; i++ {
		b[7-i] = byte(hi >> (8 * i))
		b[15-i] = byte(lo >> (8 * i))
	}
	neg := b[0]&0x80 != 0
	v := new(big.Int).SetBytes(b)
	if neg {
		max := new(big.Int).Lsh(big.NewInt(1), 128)
		v.Sub(v, max)
	}
	return v
}

// Uint128FromBigInt converts a signed big.Int back into its unsigned
// two's-complement (lo, hi) wire representation, truncated to 128 bits.
func Uint128FromBigInt(v *big.Int) (lo, hi uint64) {
	u := new(big.Int).Set(v)
	if u.Sign() < 0 {
		mod := new(big.Int).Lsh(big.NewInt(1), 128)
		u.Add(u, mod)
	}
	b := u.Bytes()
	full := make([]byte, 16)
	copy(full[16-len(b):], b)
	for i := 0; i < 8; i++ {
		hi |= uint64(full[7-i]) << (8 * i)
		lo |= uint64(full[15-i]) << (8 * i)
	}
	return lo, hi
}
