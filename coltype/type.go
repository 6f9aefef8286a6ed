// Package coltype parses and emits the server's textual column-type
// grammar (e.g. "Array(Nullable(Decimal(9,3)))") into an internal tagged
// tree. Parsing is LL(1) over a small token set; emission produces the
// canonical form so that parse(emit(t)) == t for every well-formed type the
// system supports, and emit(parse(s)) == s whenever s is already canonical
// (emission puts ", " between arguments, so "Decimal(9,3)" emits as
// "Decimal(9, 3)").
package coltype

import (
	"fmt"
	"strings"
)

// Kind tags the variant of a Type node.
type Kind int

const (
	KindUInt8 Kind = iota
	KindUInt16
	KindUInt32
	KindUInt64
	KindUInt128
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindInt128
	KindFloat32
	KindFloat64
	KindBool
	KindString
	KindFixedString
	KindUUID
	KindDate
	KindDateTime
	KindDateTime64
	KindDecimal
	KindArray
	KindNullable
	KindTuple
	KindMap
	KindLowCardinality
	KindEnum8
	KindEnum16
	KindNothing
)

var scalarNames = map[Kind]string{
	KindUInt8:   "UInt8",
	KindUInt16:  "UInt16",
	KindUInt32:  "UInt32",
	KindUInt64:  "UInt64",
	KindUInt128: "UInt128",
	KindInt8:    "Int8",
	KindInt16:   "Int16",
	KindInt32:   "Int32",
	KindInt64:   "Int64",
	KindInt128:  "Int128",
	KindFloat32: "Float32",
	KindFloat64: "Float64",
	KindBool:    "Bool",
	KindString:  "String",
	KindUUID:    "UUID",
	KindDate:    "Date",
	KindNothing: "Nothing",
}

var nameToScalarKind = func() map[string]Kind {
	m := make(map[string]Kind, len(scalarNames))
	for k, v := range scalarNames {
		m[v] = k
	}
	return m
}()

// EnumValue is one "label"=N declared member of an Enum8/Enum16.
type EnumValue struct {
	Label string
	Value int32
}

// Type is a structurally-comparable node in the type tree. Its structural
// fields are never changed after Parse returns it; the only later write is
// String memoizing the emitted text.
type Type struct {
	Kind Kind

	// FixedString(N)
	FixedLen int

	// Decimal(P,S)
	Precision int
	Scale     int

	// DateTime('TZ') / DateTime64(P[,'TZ'])
	Timezone string

	// Array(T) / Nullable(T) / LowCardinality(T)
	Elem *Type

	// Tuple(T1,...,Tk)
	Elems []*Type

	// Map(K,V)
	Key   *Type
	Value *Type

	// Enum8/Enum16
	Enum []EnumValue

	text string // memoized canonical form
}

// Equal reports structural equality.
func (t *Type) Equal(other *Type) bool {
	if t == nil || other == nil {
		return t == other
	}
	return t.String() == other.String()
}

// IsInteger reports whether the type is one of the fixed-width integer kinds.
func (t *Type) IsInteger() bool {
	switch t.Kind {
	case KindUInt8, KindUInt16, KindUInt32, KindUInt64, KindUInt128,
		KindInt8, KindInt16, KindInt32, KindInt64, KindInt128:
		return true
	}
	return false
}

// DecimalBits returns the backing integer width (32, 64, or 128) selected
// for Decimal(P,S): P<=9 -> 32, P<=18 -> 64, P<=38 -> 128.
func DecimalBits(precision int) int {
	switch {
	case precision <= 9:
		return 32
	case precision <= 18:
		return 64
	default:
		return 128
	}
}

// String returns the canonical textual form, memoized after first call.
func (t *Type) String() string {
	if t == nil {
		return ""
	}
	if t.text != "" {
		return t.text
	}
	var b strings.Builder
	t.emit(&b)
	t.text = b.String()
	return t.text
}

func (t *Type) emit(b *strings.Builder) {
	switch t.Kind {
	case KindFixedString:
		fmt.Fprintf(b, "FixedString(%d)", t.FixedLen)
	case KindDecimal:
		fmt.Fprintf(b, "Decimal(%d, %d)", t.Precision, t.Scale)
	case KindDateTime:
		if t.Timezone != "" {
			b.WriteString("DateTime(")
			writeQuoted(b, t.Timezone)
			b.WriteByte(')')
		} else {
			b.WriteString("DateTime")
		}
	case KindDateTime64:
		if t.Timezone != "" {
			fmt.Fprintf(b, "DateTime64(%d, ", t.Precision)
			writeQuoted(b, t.Timezone)
			b.WriteByte(')')
		} else {
			fmt.Fprintf(b, "DateTime64(%d)", t.Precision)
		}
	case KindArray:
		b.WriteString("Array(")
		t.Elem.emit(b)
		b.WriteByte(')')
	case KindNullable:
		b.WriteString("Nullable(")
		t.Elem.emit(b)
		b.WriteByte(')')
	case KindLowCardinality:
		b.WriteString("LowCardinality(")
		t.Elem.emit(b)
		b.WriteByte(')')
	case KindTuple:
		b.WriteString("Tuple(")
		for i, e := range t.Elems {
			if i > 0 {
				b.WriteString(", ")
			}
			e.emit(b)
		}
		b.WriteByte(')')
	case KindMap:
		b.WriteString("Map(")
		t.Key.emit(b)
		b.WriteString(", ")
		t.Value.emit(b)
		b.WriteByte(')')
	case KindEnum8, KindEnum16:
		if t.Kind == KindEnum8 {
			b.WriteString("Enum8(")
		} else {
			b.WriteString("Enum16(")
		}
		for i, v := range t.Enum {
			if i > 0 {
				b.WriteString(", ")
			}
			writeQuoted(b, v.Label)
			fmt.Fprintf(b, " = %d", v.Value)
		}
		b.WriteByte(')')
	default:
		b.WriteString(scalarNames[t.Kind])
	}
}

// writeQuoted emits s as a single-quoted literal, doubling any embedded
// single quotes, matching the lexer's matchQuoted escaping convention.
func writeQuoted(b *strings.Builder, s string) {
	b.WriteByte('\'')
	for i := 0; i < len(s); i++ {
		if s[i] == '\'' {
			b.WriteByte('\'')
		}
		b.WriteByte(s[i])
	}
	b.WriteByte('\'')
}

// Scalar constructs a cacheable scalar Type for the given kind. It panics
// if kind is not a scalar (composite kinds require their own constructor).
func Scalar(k Kind) *Type {
	if _, ok := scalarNames[k]; !ok {
		panic(fmt.Sprintf("coltype: %d is not a scalar kind", k))
	}
	return &Type{Kind: k}
}

func NewArray(elem *Type) *Type           { return &Type{Kind: KindArray, Elem: elem} }
func NewNullable(elem *Type) *Type        { return &Type{Kind: KindNullable, Elem: elem} }
func NewLowCardinality(elem *Type) *Type  { return &Type{Kind: KindLowCardinality, Elem: elem} }
func NewTuple(elems []*Type) *Type        { return &Type{Kind: KindTuple, Elems: elems} }
func NewMap(key, value *Type) *Type       { return &Type{Kind: KindMap, Key: key, Value: value} }
func NewFixedString(n int) *Type          { return &Type{Kind: KindFixedString, FixedLen: n} }
func NewDecimal(precision, scale int) *Type {
	return &Type{Kind: KindDecimal, Precision: precision, Scale: scale}
}
func NewDateTime(tz string) *Type { return &Type{Kind: KindDateTime, Timezone: tz} }
func NewDateTime64(precision int, tz string) *Type {
	return &Type{Kind: KindDateTime64, Precision: precision, Timezone: tz}
}
func NewEnum(bits int, values []EnumValue) *Type {
	k := KindEnum8
	if bits == 16 {
		k = KindEnum16
	}
	return &Type{Kind: k, Enum: values}
}

// LookupEnumValue returns the label for v, and whether it was declared.
func (t *Type) LookupEnumValue(v int32) (string, bool) {
	for _, e := range t.Enum {
		if e.Value == v {
			return e.Label, true
		}
	}
	return "", false
}

// LookupEnumLabel returns the integer for label, and whether it was declared.
func (t *Type) LookupEnumLabel(label string) (int32, bool) {
	for _, e := range t.Enum {
		if e.Label == label {
			return e.Value, true
		}
	}
	return 0, false
}
