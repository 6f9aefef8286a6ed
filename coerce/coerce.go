// Package coerce maps host-language values to colwire-go's internal
// LogicalValue representation (the column package's Value) and back,
// per spec.md §4.8: date/time host structs, Bool↔UInt8, raw-byte
// strings, Decimal mantissa/precision/scale, dashed-hex UUID, Nullable,
// and the natural host containers for Array/Map/Tuple.
package coerce

import (
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/colwire/colwire-go/coltype"
	"github.com/colwire/colwire-go/column"
	"github.com/colwire/colwire-go/cwerror"
)

// ToColumn converts a host value v into the column.Value shape column.Encode
// expects for ty. Nil always maps to a Nullable null; it is an error for
// any other kind.
func ToColumn(ty *coltype.Type, v interface{}) (column.Value, error) {
	if v == nil {
		if ty.Kind != coltype.KindNullable {
			return nil, cwerror.E(cwerror.Validation, "nil value for non-Nullable type %s", ty.String())
		}
		return nil, nil
	}
	switch ty.Kind {
	case coltype.KindNullable:
		return ToColumn(ty.Elem, v)

	case coltype.KindBool:
		return toBool(v)

	case coltype.KindDate:
		return toDateDays(v)

	case coltype.KindDateTime:
		return toDateTimeSeconds(v)

	case coltype.KindDateTime64:
		return toDateTime64Ticks(ty.Precision, v)

	case coltype.KindUUID:
		return toUUID(v)

	case coltype.KindDecimal:
		return toDecimal(ty, v)

	case coltype.KindInt128, coltype.KindUInt128:
		return toBigInt(v)

	case coltype.KindArray:
		return toArray(ty, v)

	case coltype.KindMap:
		return toMap(ty, v)

	case coltype.KindTuple:
		return toTuple(ty, v)

	case coltype.KindEnum8, coltype.KindEnum16:
		return v, nil

	default:
		return v, nil
	}
}

// FromColumn converts a decoded column.Value for ty into an idiomatic host
// value: Nullable nulls become nil, Date/DateTime/DateTime64 become
// time.Time, UUID becomes a dashed-hex string, Decimal becomes a
// *big.Rat scaled by 10^-scale, Array and Tuple become []interface{}, and
// Map becomes a map[interface{}]interface{} built from the decoded
// []column.MapEntry pairs (a later duplicate key overwrites an earlier one),
// with every element converted recursively.
func FromColumn(ty *coltype.Type, v column.Value) (interface{}, error) {
	if ty.Kind == coltype.KindNullable {
		if v == nil {
			return nil, nil
		}
		return FromColumn(ty.Elem, v)
	}
	switch ty.Kind {
	case coltype.KindBool:
		b, ok := v.(bool)
		if !ok {
			return nil, cwerror.E(cwerror.Validation, "expected bool, got %T", v)
		}
		return b, nil

	case coltype.KindDate:
		days, ok := v.(uint16)
		if !ok {
			return nil, cwerror.E(cwerror.Validation, "expected uint16 days, got %T", v)
		}
		return time.Unix(int64(days)*86400, 0).UTC(), nil

	case coltype.KindDateTime:
		secs, ok := v.(uint32)
		if !ok {
			return nil, cwerror.E(cwerror.Validation, "expected uint32 seconds, got %T", v)
		}
		return time.Unix(int64(secs), 0).UTC(), nil

	case coltype.KindDateTime64:
		ticks, ok := v.(int64)
		if !ok {
			return nil, cwerror.E(cwerror.Validation, "expected int64 ticks, got %T", v)
		}
		return datetime64ToTime(ty.Precision, ticks), nil

	case coltype.KindUUID:
		id, ok := v.(uuid.UUID)
		if !ok {
			return nil, cwerror.E(cwerror.Validation, "expected uuid.UUID, got %T", v)
		}
		return id.String(), nil

	case coltype.KindDecimal:
		m, ok := v.(*big.Int)
		if !ok {
			return nil, cwerror.E(cwerror.Validation, "expected *big.Int mantissa, got %T", v)
		}
		return decimalToRat(m, ty.Scale), nil

	case coltype.KindArray:
		elems, ok := v.([]column.Value)
		if !ok {
			return nil, cwerror.E(cwerror.Validation, "expected []column.Value, got %T", v)
		}
		out := make([]interface{}, len(elems))
		for i, e := range elems {
			c, err := FromColumn(ty.Elem, e)
			if err != nil {
				return nil, err
			}
			out[i] = c
		}
		return out, nil

	case coltype.KindMap:
		entries, ok := v.([]column.MapEntry)
		if !ok {
			return nil, cwerror.E(cwerror.Validation, "expected []column.MapEntry, got %T", v)
		}
		out := make(map[interface{}]interface{}, len(entries))
		for _, e := range entries {
			k, err := FromColumn(ty.Key, e.Key)
			if err != nil {
				return nil, err
			}
			val, err := FromColumn(ty.Value, e.Value)
			if err != nil {
				return nil, err
			}
			out[k] = val
		}
		return out, nil

	case coltype.KindTuple:
		elems, ok := v.([]column.Value)
		if !ok {
			return nil, cwerror.E(cwerror.Validation, "expected []column.Value, got %T", v)
		}
		out := make([]interface{}, len(elems))
		for i, e := range elems {
			c, err := FromColumn(ty.Elems[i], e)
			if err != nil {
				return nil, err
			}
			out[i] = c
		}
		return out, nil

	default:
		return v, nil
	}
}
