package wire

import (
	"encoding/binary"

	"github.com/google/uuid"
)

// UUID reads the wire encoding of a UUID: two little-endian uint64 halves,
// high half first, each half byte-reversed relative to the canonical
// textual form. The round trip through UUID/PutUUID must preserve the
// standard dashed-hex text form.
func (r *Reader) UUID() (uuid.UUID, error) {
	b, err := r.ReadExact(16)
	if err != nil {
		return uuid.UUID{}, err
	}
	return decodeUUID(b), nil
}

func (w *Writer) PutUUID(id uuid.UUID) error {
	return w.WriteAll(encodeUUID(id))
}

// decodeUUID un-swizzles the wire's high-half-first, byte-reversed-half
// layout back into the canonical big-endian UUID byte order.
func decodeUUID(b []byte) uuid.UUID {
	hi := binary.LittleEndian.Uint64(b[0:8])
	lo := binary.LittleEndian.Uint64(b[8:16])
	var out uuid.UUID
	binary.BigEndian.PutUint64(out[0:8], hi)
	binary.BigEndian.PutUint64(out[8:16], lo)
	return out
}

func encodeUUID(id uuid.UUID) []byte {
	hi := binary.BigEndian.Uint64(id[0:8])
	lo := binary.BigEndian.Uint64(id[8:16])
	out := make([]byte, 16)
	binary.LittleEndian.PutUint64(out[0:8], hi)
	binary.LittleEndian.PutUint64(out[8:16], lo)
	return out
}
