package coerce

import (
	"math/big"

	"github.com/colwire/colwire-go/coltype"
	"github.com/colwire/colwire-go/column"
	"github.com/colwire/colwire-go/cwerror"
)

// Decimal is the host-side (mantissa, scale) shape accepted for writing a
// Decimal(P,S) column, per spec.md §4.8.
type Decimal struct {
	Mantissa *big.Int
	Scale    int
}

func pow10(n int) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}

func toDecimal(ty *coltype.Type, v interface{}) (column.Value, error) {
	switch x := v.(type) {
	case Decimal:
		return rescaleMantissa(x.Mantissa, x.Scale, ty.Scale)
	case *big.Int:
		return x, nil // already assumed to be at the column's own scale
	case *big.Rat:
		return ratToMantissa(x, ty.Scale)
	case float64:
		// Floats rarely carry an exactly-representable decimal value, so
		// unlike the explicit (mantissa, scale) and big.Rat shapes this
		// rounds to the column's scale instead of requiring exactness.
		return roundRatToMantissa(new(big.Rat).SetFloat64(x), ty.Scale), nil
	default:
		return nil, cwerror.E(cwerror.Validation, "cannot coerce %T to Decimal(%d,%d)", v, ty.Precision, ty.Scale)
	}
}

// rescaleMantissa converts a mantissa expressed at fromScale to one
// expressed at toScale. Scaling up is always exact; scaling down is only
// allowed when the dropped digits are all zero, otherwise it is a lossy
// rescale and fails as Validation(ScaleMismatch).
func rescaleMantissa(m *big.Int, fromScale, toScale int) (*big.Int, error) {
	if fromScale == toScale {
		return m, nil
	}
	if toScale > fromScale {
		return new(big.Int).Mul(m, pow10(toScale-fromScale)), nil
	}
	div := pow10(fromScale - toScale)
	q, r := new(big.Int).QuoRem(m, div, new(big.Int))
	if r.Sign() != 0 {
		return nil, cwerror.E(cwerror.Validation, "ScaleMismatch: rescaling from scale %d to %d loses precision", fromScale, toScale)
	}
	return q, nil
}

// ratToMantissa converts an exact rational to a mantissa at the given
// scale, failing as Validation(ScaleMismatch) if the value isn't exactly
// representable at that scale.
func ratToMantissa(r *big.Rat, scale int) (*big.Int, error) {
	scaled := new(big.Rat).Mul(r, new(big.Rat).SetInt(pow10(scale)))
	if !scaled.IsInt() {
		return nil, cwerror.E(cwerror.Validation, "ScaleMismatch: value is not exactly representable at scale %d", scale)
	}
	return scaled.Num(), nil
}

// roundRatToMantissa rounds r to the nearest mantissa at scale, half away
// from zero.
func roundRatToMantissa(r *big.Rat, scale int) *big.Int {
	scaled := new(big.Rat).Mul(r, new(big.Rat).SetInt(pow10(scale)))
	num := scaled.Num()
	den := scaled.Denom()
	q, rem := new(big.Int).QuoRem(num, den, new(big.Int))
	twice := new(big.Int).Lsh(new(big.Int).Abs(rem), 1)
	if twice.Cmp(den) >= 0 {
		if num.Sign() < 0 {
			q.Sub(q, big.NewInt(1))
		} else {
			q.Add(q, big.NewInt(1))
		}
	}
	return q
}

func decimalToRat(m *big.Int, scale int) *big.Rat {
	return new(big.Rat).SetFrac(m, pow10(scale))
}

func toBigInt(v interface{}) (column.Value, error) {
	switch x := v.(type) {
	case *big.Int:
		return x, nil
	case int64:
		return big.NewInt(x), nil
	case uint64:
		return new(big.Int).SetUint64(x), nil
	default:
		return nil, cwerror.E(cwerror.Validation, "cannot coerce %T to Int128/UInt128", v)
	}
}
