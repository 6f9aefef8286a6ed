package column

import (
	"github.com/go-faster/errors"

	"github.com/colwire/colwire-go/coltype"
	"github.com/colwire/colwire-go/wire"
)

// Nullable(T): n bytes of null mask (1=null, 0=present), then the inner
// column body of length n, with a type-appropriate zero/empty placeholder
// written at null positions.
func encodeNullable(w *wire.Writer, ty *coltype.Type, values []Value) error {
	inner := make([]Value, len(values))
	for i, v := range values {
		isNull := boolToByte(v == nil)
		if err := w.PutUint8(isNull); err != nil {
			return errors.Wrapf(err, "null mask row %d", i)
		}
		if v == nil {
			inner[i] = zeroValue(ty.Elem)
		} else {
			inner[i] = v
		}
	}
	return Encode(w, ty.Elem, inner)
}

func decodeNullable(r *wire.Reader, ty *coltype.Type, n int) ([]Value, error) {
	mask := make([]bool, n)
	for i := 0; i < n; i++ {
		b, err := r.Uint8()
		if err != nil {
			return nil, errors.Wrapf(err, "null mask row %d", i)
		}
		mask[i] = b != 0
	}
	inner, err := Decode(r, ty.Elem, n)
	if err != nil {
		return nil, errors.Wrap(err, "inner column")
	}
	out := make([]Value, n)
	for i := 0; i < n; i++ {
		if mask[i] {
			out[i] = nil
		} else {
			out[i] = inner[i]
		}
	}
	return out, nil
}

// Array(T): n cumulative end-offsets as uint64, then the nested column
// body of length offsets[n-1].
func encodeArray(w *wire.Writer, ty *coltype.Type, values []Value) error {
	var flat []Value
	var cum uint64
	offsets := make([]uint64, len(values))
	for i, v := range values {
		arr, ok := v.([]Value)
		if !ok {
			return errors.Errorf("row %d: Array value must be []Value", i)
		}
		cum += uint64(len(arr))
		offsets[i] = cum
		flat = append(flat, arr...)
	}
	for i, off := range offsets {
		if err := w.PutUint64(off); err != nil {
			return errors.Wrapf(err, "offset row %d", i)
		}
	}
	return Encode(w, ty.Elem, flat)
}

func decodeArray(r *wire.Reader, ty *coltype.Type, n int) ([]Value, error) {
	offsets := make([]uint64, n)
	var prev uint64
	for i := 0; i < n; i++ {
		off, err := r.Uint64()
		if err != nil {
			return nil, errors.Wrapf(err, "offset row %d", i)
		}
		if off < prev {
			return nil, errors.Wrapf(ErrColumnLengthMismatch, "row %d: offsets must be non-decreasing", i)
		}
		offsets[i] = off
		prev = off
	}
	total := 0
	if n > 0 {
		total = int(offsets[n-1])
	}
	flat, err := Decode(r, ty.Elem, total)
	if err != nil {
		return nil, errors.Wrap(err, "nested column")
	}
	out := make([]Value, n)
	var start uint64
	for i := 0; i < n; i++ {
		end := offsets[i]
		out[i] = flat[start:end]
		start = end
	}
	return out, nil
}

// Tuple(T1,...,Tk): concatenation of the k element column bodies, each of
// length n, in declared order.
func encodeTuple(w *wire.Writer, ty *coltype.Type, values []Value) error {
	n := len(values)
	k := len(ty.Elems)
	cols := make([][]Value, k)
	for j := range cols {
		cols[j] = make([]Value, n)
	}
	for i, v := range values {
		elems, ok := v.([]Value)
		if !ok || len(elems) != k {
			return errors.Wrapf(ErrColumnLengthMismatch, "row %d: Tuple value must be []Value of length %d", i, k)
		}
		for j, e := range elems {
			cols[j][i] = e
		}
	}
	for j, col := range cols {
		if err := Encode(w, ty.Elems[j], col); err != nil {
			return errors.Wrapf(err, "element %d", j)
		}
	}
	return nil
}

func decodeTuple(r *wire.Reader, ty *coltype.Type, n int) ([]Value, error) {
	k := len(ty.Elems)
	cols := make([][]Value, k)
	for j, et := range ty.Elems {
		col, err := Decode(r, et, n)
		if err != nil {
			return nil, errors.Wrapf(err, "element %d", j)
		}
		cols[j] = col
	}
	out := make([]Value, n)
	for i := 0; i < n; i++ {
		row := make([]Value, k)
		for j := 0; j < k; j++ {
			row[j] = cols[j][i]
		}
		out[i] = row
	}
	return out, nil
}

// Map(K,V) is encoded exactly as Array(Tuple(K,V)).
func encodeMap(w *wire.Writer, ty *coltype.Type, values []Value) error {
	tupleTy := coltype.NewTuple([]*coltype.Type{ty.Key, ty.Value})
	arr := make([]Value, len(values))
	for i, v := range values {
		entries, ok := v.([]MapEntry)
		if !ok {
			return errors.Errorf("row %d: Map value must be []MapEntry", i)
		}
		rows := make([]Value, len(entries))
		for j, e := range entries {
			rows[j] = []Value{e.Key, e.Value}
		}
		arr[i] = rows
	}
	return encodeArray(w, coltype.NewArray(tupleTy), arr)
}

func decodeMap(r *wire.Reader, ty *coltype.Type, n int) ([]Value, error) {
	tupleTy := coltype.NewTuple([]*coltype.Type{ty.Key, ty.Value})
	decoded, err := decodeArray(r, coltype.NewArray(tupleTy), n)
	if err != nil {
		return nil, err
	}
	out := make([]Value, n)
	for i, v := range decoded {
		rows := v.([]Value)
		entries := make([]MapEntry, len(rows))
		for j, row := range rows {
			pair := row.([]Value)
			entries[j] = MapEntry{Key: pair[0], Value: pair[1]}
		}
		out[i] = entries
	}
	return out, nil
}
