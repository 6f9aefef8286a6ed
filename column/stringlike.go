package column

import (
	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/colwire/colwire-go/coltype"
	"github.com/colwire/colwire-go/wire"
)

func encodeString(w *wire.Writer, values []Value) error {
	for i, v := range values {
		s, ok := v.(string)
		if !ok {
			return errors.Errorf("row %d: string value must be string", i)
		}
		if err := w.PutString(s); err != nil {
			return errors.Wrapf(err, "row %d", i)
		}
	}
	return nil
}

func decodeString(r *wire.Reader, n int) ([]Value, error) {
	out := make([]Value, n)
	for i := 0; i < n; i++ {
		s, err := r.String()
		if err != nil {
			return nil, errors.Wrapf(err, "row %d", i)
		}
		out[i] = s
	}
	return out, nil
}

// encodeFixedString pads short values with zero bytes and rejects values
// longer than the declared width, matching the spec's "pad on write, raw
// on read" contract.
func encodeFixedString(w *wire.Writer, ty *coltype.Type, values []Value) error {
	for i, v := range values {
		b, ok := v.([]byte)
		if !ok {
			return errors.Errorf("row %d: FixedString value must be []byte", i)
		}
		if len(b) > ty.FixedLen {
			return errors.Wrapf(ErrValueOutOfRange, "row %d: %d bytes exceeds FixedString(%d)", i, len(b), ty.FixedLen)
		}
		buf := make([]byte, ty.FixedLen)
		copy(buf, b)
		if err := w.WriteAll(buf); err != nil {
			return errors.Wrapf(err, "row %d", i)
		}
	}
	return nil
}

func decodeFixedString(r *wire.Reader, ty *coltype.Type, n int) ([]Value, error) {
	out := make([]Value, n)
	for i := 0; i < n; i++ {
		b, err := r.ReadExact(ty.FixedLen)
		if err != nil {
			return nil, errors.Wrapf(err, "row %d", i)
		}
		out[i] = b
	}
	return out, nil
}

func encodeUUID(w *wire.Writer, values []Value) error {
	for i, v := range values {
		id, ok := v.(uuid.UUID)
		if !ok {
			return errors.Errorf("row %d: UUID value must be uuid.UUID", i)
		}
		if err := w.PutUUID(id); err != nil {
			return errors.Wrapf(err, "row %d", i)
		}
	}
	return nil
}

func decodeUUID(r *wire.Reader, n int) ([]Value, error) {
	out := make([]Value, n)
	for i := 0; i < n; i++ {
		id, err := r.UUID()
		if err != nil {
			return nil, errors.Wrapf(err, "row %d", i)
		}
		out[i] = id
	}
	return out, nil
}
