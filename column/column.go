// Package column implements the per-type-kind codec: for every Type
// produced by coltype, Encode writes a column body of a given logical
// value sequence, and Decode reads one back given the row count. The
// codec is written as a single dispatch over coltype.Kind rather than as
// a method on each type, since the type tree itself carries no behavior.
package column

import (
	"github.com/go-faster/errors"

	"github.com/colwire/colwire-go/coltype"
	"github.com/colwire/colwire-go/wire"
)

// Value is one logical value. Concrete Go representations, by kind:
//
//	UIntN/IntN       -> uintN/intN
//	UInt128/Int128   -> *big.Int
//	Float32/64       -> float32/float64
//	Bool             -> bool
//	Decimal(P,S)     -> *big.Int (unscaled mantissa)
//	String           -> string
//	FixedString(N)   -> []byte, exactly N bytes
//	UUID             -> uuid.UUID
//	Date             -> uint16 (days since epoch)
//	DateTime         -> uint32 (seconds since epoch)
//	DateTime64(P)    -> int64 (ticks at the type's precision)
//	Array(T)         -> []Value
//	Tuple(...)       -> []Value
//	Map(K,V)         -> []MapEntry
//	Nullable(T)      -> the inner Value, or nil for null
//	Enum8/16         -> string (the label)
//	LowCardinality(T)-> the inner Value
//	Nothing          -> nil
type Value = interface{}

// MapEntry is one key/value pair of a Map(K,V) column value.
type MapEntry struct {
	Key   Value
	Value Value
}

// Sentinel errors. The root session package classifies these into the
// spec's abstract error kinds; callers that only need an Encode/Decode
// round trip can match against these directly with errors.Is.
var (
	ErrColumnLengthMismatch    = errors.New("column: length mismatch")
	ErrValueOutOfRange         = errors.New("column: value out of range")
	ErrBadLowCardinalityFlags  = errors.New("column: bad low cardinality flags")
	ErrUnimplementedColumnKind = errors.New("column: unimplemented column kind")
)

// Encode writes the body of a column of type ty holding values to w; the
// row count is len(values).
func Encode(w *wire.Writer, ty *coltype.Type, values []Value) error {
	switch ty.Kind {
	case coltype.KindUInt8, coltype.KindUInt16, coltype.KindUInt32, coltype.KindUInt64,
		coltype.KindInt8, coltype.KindInt16, coltype.KindInt32, coltype.KindInt64,
		coltype.KindFloat32, coltype.KindFloat64, coltype.KindBool,
		coltype.KindDate, coltype.KindDateTime, coltype.KindDateTime64:
		return encodeFixed(w, ty, values)
	case coltype.KindUInt128, coltype.KindInt128:
		return encodeInt128(w, ty, values)
	case coltype.KindDecimal:
		return encodeDecimal(w, ty, values)
	case coltype.KindString:
		return encodeString(w, values)
	case coltype.KindFixedString:
		return encodeFixedString(w, ty, values)
	case coltype.KindUUID:
		return encodeUUID(w, values)
	case coltype.KindNullable:
		return encodeNullable(w, ty, values)
	case coltype.KindArray:
		return encodeArray(w, ty, values)
	case coltype.KindTuple:
		return encodeTuple(w, ty, values)
	case coltype.KindMap:
		return encodeMap(w, ty, values)
	case coltype.KindEnum8, coltype.KindEnum16:
		return encodeEnum(w, ty, values)
	case coltype.KindLowCardinality:
		return encodeLowCardinality(w, ty, values)
	case coltype.KindNothing:
		return nil
	default:
		return errors.Wrapf(ErrUnimplementedColumnKind, "kind %v", ty.Kind)
	}
}

// Decode reads n values of type ty from r.
func Decode(r *wire.Reader, ty *coltype.Type, n int) ([]Value, error) {
	switch ty.Kind {
	case coltype.KindUInt8, coltype.KindUInt16, coltype.KindUInt32, coltype.KindUInt64,
		coltype.KindInt8, coltype.KindInt16, coltype.KindInt32, coltype.KindInt64,
		coltype.KindFloat32, coltype.KindFloat64, coltype.KindBool,
		coltype.KindDate, coltype.KindDateTime, coltype.KindDateTime64:
		return decodeFixed(r, ty, n)
	case coltype.KindUInt128, coltype.KindInt128:
		return decodeInt128(r, ty, n)
	case coltype.KindDecimal:
		return decodeDecimal(r, ty, n)
	case coltype.KindString:
		return decodeString(r, n)
	case coltype.KindFixedString:
		return decodeFixedString(r, ty, n)
	case coltype.KindUUID:
		return decodeUUID(r, n)
	case coltype.KindNullable:
		return decodeNullable(r, ty, n)
	case coltype.KindArray:
		return decodeArray(r, ty, n)
	case coltype.KindTuple:
		return decodeTuple(r, ty, n)
	case coltype.KindMap:
		return decodeMap(r, ty, n)
	case coltype.KindEnum8, coltype.KindEnum16:
		return decodeEnum(r, ty, n)
	case coltype.KindLowCardinality:
		return decodeLowCardinality(r, ty, n)
	case coltype.KindNothing:
		return make([]Value, n), nil
	default:
		return nil, errors.Wrapf(ErrUnimplementedColumnKind, "kind %v", ty.Kind)
	}
}

func checkLen(values []Value, n int) error {
	if len(values) != n {
		return errors.Wrapf(ErrColumnLengthMismatch, "got %d values, want %d", len(values), n)
	}
	return nil
}
