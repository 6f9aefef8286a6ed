package column

import (
	"github.com/go-faster/errors"

	"github.com/colwire/colwire-go/coltype"
	"github.com/colwire/colwire-go/wire"
)

func encodeFixed(w *wire.Writer, ty *coltype.Type, values []Value) error {
	for i, v := range values {
		if err := encodeFixedOne(w, ty.Kind, v); err != nil {
			return errors.Wrapf(err, "row %d", i)
		}
	}
	return nil
}

func encodeFixedOne(w *wire.Writer, k coltype.Kind, v Value) error {
	switch k {
	case coltype.KindUInt8:
		return w.PutUint8(v.(uint8))
	case coltype.KindUInt16:
		return w.PutUint16(v.(uint16))
	case coltype.KindUInt32:
		return w.PutUint32(v.(uint32))
	case coltype.KindUInt64:
		return w.PutUint64(v.(uint64))
	case coltype.KindInt8:
		return w.PutInt8(v.(int8))
	case coltype.KindInt16:
		return w.PutInt16(v.(int16))
	case coltype.KindInt32:
		return w.PutInt32(v.(int32))
	case coltype.KindInt64:
		return w.PutInt64(v.(int64))
	case coltype.KindFloat32:
		return w.PutFloat32(v.(float32))
	case coltype.KindFloat64:
		return w.PutFloat64(v.(float64))
	case coltype.KindBool:
		return w.PutUint8(boolToByte(v.(bool)))
	case coltype.KindDate:
		return w.PutUint16(v.(uint16))
	case coltype.KindDateTime:
		return w.PutUint32(v.(uint32))
	case coltype.KindDateTime64:
		return w.PutInt64(v.(int64))
	default:
		return errors.Errorf("column: %v is not a fixed-width scalar kind", k)
	}
}

func decodeFixed(r *wire.Reader, ty *coltype.Type, n int) ([]Value, error) {
	out := make([]Value, n)
	for i := 0; i < n; i++ {
		v, err := decodeFixedOne(r, ty.Kind)
		if err != nil {
			return nil, errors.Wrapf(err, "row %d", i)
		}
		out[i] = v
	}
	return out, nil
}

func decodeFixedOne(r *wire.Reader, k coltype.Kind) (Value, error) {
	switch k {
	case coltype.KindUInt8:
		return r.Uint8()
	case coltype.KindUInt16:
		return r.Uint16()
	case coltype.KindUInt32:
		return r.Uint32()
	case coltype.KindUInt64:
		return r.Uint64()
	case coltype.KindInt8:
		return r.Int8()
	case coltype.KindInt16:
		return r.Int16()
	case coltype.KindInt32:
		return r.Int32()
	case coltype.KindInt64:
		return r.Int64()
	case coltype.KindFloat32:
		return r.Float32()
	case coltype.KindFloat64:
		return r.Float64()
	case coltype.KindBool:
		b, err := r.Uint8()
		return b != 0, err
	case coltype.KindDate:
		return r.Uint16()
	case coltype.KindDateTime:
		return r.Uint32()
	case coltype.KindDateTime64:
		return r.Int64()
	default:
		return nil, errors.Errorf("column: %v is not a fixed-width scalar kind", k)
	}
}

func boolToByte(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

// zeroValue returns the placeholder value written at a Nullable's null
// positions, matching the spec's "zero/empty of T" requirement.
func zeroValue(ty *coltype.Type) Value {
	switch ty.Kind {
	case coltype.KindUInt8:
		return uint8(0)
	case coltype.KindUInt16:
		return uint16(0)
	case coltype.KindUInt32:
		return uint32(0)
	case coltype.KindUInt64:
		return uint64(0)
	case coltype.KindInt8:
		return int8(0)
	case coltype.KindInt16:
		return int16(0)
	case coltype.KindInt32:
		return int32(0)
	case coltype.KindInt64:
		return int64(0)
	case coltype.KindFloat32:
		return float32(0)
	case coltype.KindFloat64:
		return float64(0)
	case coltype.KindBool:
		return false
	case coltype.KindDate:
		return uint16(0)
	case coltype.KindDateTime:
		return uint32(0)
	case coltype.KindDateTime64:
		return int64(0)
	case coltype.KindString:
		return ""
	case coltype.KindFixedString:
		return make([]byte, ty.FixedLen)
	default:
		return nil
	}
}
