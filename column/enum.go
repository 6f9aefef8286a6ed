package column

import (
	"github.com/go-faster/errors"

	"github.com/colwire/colwire-go/coltype"
	"github.com/colwire/colwire-go/wire"
)

// Enum8/Enum16 columns are the underlying signed integer column on the
// wire; logically each value is the declared label for that integer.
func encodeEnum(w *wire.Writer, ty *coltype.Type, values []Value) error {
	for i, v := range values {
		label, ok := v.(string)
		if !ok {
			return errors.Errorf("row %d: enum value must be string", i)
		}
		n, ok := ty.LookupEnumLabel(label)
		if !ok {
			return errors.Wrapf(ErrValueOutOfRange, "row %d: %q is not a declared enum label", i, label)
		}
		var err error
		if ty.Kind == coltype.KindEnum8 {
			err = w.PutInt8(int8(n))
		} else {
			err = w.PutInt16(int16(n))
		}
		if err != nil {
			return errors.Wrapf(err, "row %d", i)
		}
	}
	return nil
}

func decodeEnum(r *wire.Reader, ty *coltype.Type, n int) ([]Value, error) {
	out := make([]Value, n)
	for i := 0; i < n; i++ {
		var v int32
		if ty.Kind == coltype.KindEnum8 {
			x, err := r.Int8()
			if err != nil {
				return nil, errors.Wrapf(err, "row %d", i)
			}
			v = int32(x)
		} else {
			x, err := r.Int16()
			if err != nil {
				return nil, errors.Wrapf(err, "row %d", i)
			}
			v = int32(x)
		}
		label, ok := ty.LookupEnumValue(v)
		if !ok {
			return nil, errors.Wrapf(ErrValueOutOfRange, "row %d: %d is not a declared enum value", i, v)
		}
		out[i] = label
	}
	return out, nil
}
