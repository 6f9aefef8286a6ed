package coerce

import (
	"github.com/colwire/colwire-go/coltype"
	"github.com/colwire/colwire-go/column"
	"github.com/colwire/colwire-go/cwerror"
)

// toArray accepts a []interface{} (which a pre-coerced []column.Value
// already is) and coerces each element to ty.Elem; other slice types such
// as []int are a Validation error.
func toArray(ty *coltype.Type, v interface{}) (column.Value, error) {
	elems, err := toSlice(v)
	if err != nil {
		return nil, cwerror.E(cwerror.Validation, "cannot coerce %T to Array: %v", v, err)
	}
	out := make([]column.Value, len(elems))
	for i, e := range elems {
		c, err := ToColumn(ty.Elem, e)
		if err != nil {
			return nil, err
		}
		out[i] = c
	}
	return out, nil
}

// toTuple accepts a fixed-length host slice matching len(ty.Elems).
func toTuple(ty *coltype.Type, v interface{}) (column.Value, error) {
	elems, err := toSlice(v)
	if err != nil {
		return nil, cwerror.E(cwerror.Validation, "cannot coerce %T to Tuple: %v", v, err)
	}
	if len(elems) != len(ty.Elems) {
		return nil, cwerror.E(cwerror.Validation, "Tuple expects %d elements, got %d", len(ty.Elems), len(elems))
	}
	out := make([]column.Value, len(elems))
	for i, e := range elems {
		c, err := ToColumn(ty.Elems[i], e)
		if err != nil {
			return nil, err
		}
		out[i] = c
	}
	return out, nil
}

// toMap accepts either a Go map[interface{}]interface{} or a
// []column.MapEntry pair sequence; other shapes are a Validation error.
func toMap(ty *coltype.Type, v interface{}) (column.Value, error) {
	switch x := v.(type) {
	case map[interface{}]interface{}:
		out := make([]column.MapEntry, 0, len(x))
		for k, val := range x {
			ck, err := ToColumn(ty.Key, k)
			if err != nil {
				return nil, err
			}
			cv, err := ToColumn(ty.Value, val)
			if err != nil {
				return nil, err
			}
			out = append(out, column.MapEntry{Key: ck, Value: cv})
		}
		return out, nil
	case []column.MapEntry:
		out := make([]column.MapEntry, len(x))
		for i, e := range x {
			ck, err := ToColumn(ty.Key, e.Key)
			if err != nil {
				return nil, err
			}
			cv, err := ToColumn(ty.Value, e.Value)
			if err != nil {
				return nil, err
			}
			out[i] = column.MapEntry{Key: ck, Value: cv}
		}
		return out, nil
	default:
		return nil, cwerror.E(cwerror.Validation, "cannot coerce %T to Map", v)
	}
}

// toSlice accepts []interface{} (column.Value is a plain interface{}
// alias, so a pre-coerced []column.Value is already this same type).
func toSlice(v interface{}) ([]interface{}, error) {
	x, ok := v.([]interface{})
	if !ok {
		return nil, cwerror.E(cwerror.Validation, "expected a slice, got %T", v)
	}
	return x, nil
}
