// Package wire implements the low-level byte codecs shared by every layer
// of the native protocol: little-endian fixed-width integers and floats,
// unsigned LEB128 varints, length-prefixed strings, and the two wire-specific
// 128-bit layouts (UUID and Int128/UInt128).
//
// Reader and Writer wrap an io.Reader/io.Writer and guarantee read_exact /
// write_all semantics: a short read or a partial write that cannot be
// completed is surfaced as an error rather than silently returning fewer
// bytes, which callers higher up (column and block codecs) rely on so they
// never have to retry a read themselves.
package wire

import (
	"encoding/binary"
	"io"
	"math"
	"sync"

	"github.com/go-faster/errors"
)

// ErrUnexpectedEOF is returned when a read_exact call hits EOF before n
// bytes have been read.
var ErrUnexpectedEOF = errors.New("wire: unexpected eof")

// ErrVarintOverflow is returned when a varuint does not terminate within
// the 10-byte limit required to represent a 64-bit value.
var ErrVarintOverflow = errors.New("wire: varint did not terminate within 10 bytes")

const maxVarintLen = 10

var scratchPool = sync.Pool{
	New: func() interface{} {
		b := make([]byte, 0, 4096)
		return &b
	},
}

func getScratch(n int) []byte {
	p := scratchPool.Get().(*[]byte)
	if cap(*p) < n {
		*p = make([]byte, n)
	}
	return (*p)[:n]
}

func putScratch(b []byte) {
	scratchPool.Put(&b)
}

// Reader reads primitive wire values from an underlying io.Reader.
type Reader struct {
	r io.Reader
}

// NewReader wraps r for primitive decoding.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// readInto fills buf completely from the underlying reader, translating
// EOF (including a short read) into ErrUnexpectedEOF the same way
// ReadExact does. buf must not escape past the call -- callers that need
// to keep the bytes copy them out first.
func (r *Reader) readInto(buf []byte) error {
	if _, err := io.ReadFull(r.r, buf); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return ErrUnexpectedEOF
		}
		return err
	}
	return nil
}

// ReadExact reads exactly n bytes into a freshly allocated slice the
// caller owns, retrying short reads until the buffer is full or an error
// (including io.EOF on the first byte) occurs. Callers that only need
// the bytes transiently (a fixed-width scalar, never a String/Bytes
// result) should prefer the pooled Uint8/16/32/64 readers below instead,
// which read into a pooled buffer rather than allocating an owned copy
// (returning a buffer to the pool still boxes its slice header).
func (r *Reader) ReadExact(n int) ([]byte, error) {
	buf := getScratch(n)
	if err := r.readInto(buf); err != nil {
		putScratch(buf)
		return nil, err
	}
	out := make([]byte, n)
	copy(out, buf)
	putScratch(buf)
	return out, nil
}

// ReadByte reads a single byte, satisfying io.ByteReader.
func (r *Reader) ReadByte() (byte, error) {
	buf := getScratch(1)
	defer putScratch(buf)
	if err := r.readInto(buf); err != nil {
		return 0, err
	}
	return buf[0], nil
}

// Uvarint reads an unsigned LEB128 varint.
func (r *Reader) Uvarint() (uint64, error) {
	var x uint64
	var s uint
	for i := 0; i < maxVarintLen; i++ {
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		if b < 0x80 {
			return x | uint64(b)<<s, nil
		}
		x |= uint64(b&0x7f) << s
		s += 7
	}
	return 0, ErrVarintOverflow
}

// Varint reads a zig-zag-encoded signed varint.
func (r *Reader) Varint() (int64, error) {
	u, err := r.Uvarint()
	if err != nil {
		return 0, err
	}
	return zigzagDecode(u), nil
}

// Uint8/Uint16/Uint32/Uint64 read little-endian fixed-width unsigned integers.
func (r *Reader) Uint8() (uint8, error) {
	b, err := r.ReadByte()
	return b, err
}

func (r *Reader) Uint16() (uint16, error) {
	buf := getScratch(2)
	defer putScratch(buf)
	if err := r.readInto(buf); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(buf), nil
}

func (r *Reader) Uint32() (uint32, error) {
	buf := getScratch(4)
	defer putScratch(buf)
	if err := r.readInto(buf); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf), nil
}

func (r *Reader) Uint64() (uint64, error) {
	buf := getScratch(8)
	defer putScratch(buf)
	if err := r.readInto(buf); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf), nil
}

func (r *Reader) Int8() (int8, error) {
	b, err := r.Uint8()
	return int8(b), err
}

func (r *Reader) Int16() (int16, error) {
	b, err := r.Uint16()
	return int16(b), err
}

func (r *Reader) Int32() (int32, error) {
	b, err := r.Uint32()
	return int32(b), err
}

func (r *Reader) Int64() (int64, error) {
	b, err := r.Uint64()
	return int64(b), err
}

func (r *Reader) Float32() (float32, error) {
	b, err := r.Uint32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(b), nil
}

func (r *Reader) Float64() (float64, error) {
	b, err := r.Uint64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(b), nil
}

// Bool reads a single byte and interprets any nonzero value as true.
func (r *Reader) Bool() (bool, error) {
	b, err := r.ReadByte()
	if err != nil {
		return false, err
	}
	return b != 0, nil
}

// String reads a varuint length followed by that many raw bytes.
func (r *Reader) String() (string, error) {
	n, err := r.Uvarint()
	if err != nil {
		return "", errors.Wrap(err, "string length")
	}
	if n == 0 {
		return "", nil
	}
	b, err := r.ReadExact(int(n))
	if err != nil {
		return "", errors.Wrap(err, "string body")
	}
	return string(b), nil
}

// Bytes reads a varuint length followed by that many raw bytes.
func (r *Reader) Bytes() ([]byte, error) {
	n, err := r.Uvarint()
	if err != nil {
		return nil, errors.Wrap(err, "bytes length")
	}
	if n == 0 {
		return nil, nil
	}
	return r.ReadExact(int(n))
}

// Writer writes primitive wire values to an underlying io.Writer.
type Writer struct {
	w io.Writer
}

// NewWriter wraps w for primitive encoding.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteAll writes buf in full, retrying partial writes until done or an
// error occurs.
func (w *Writer) WriteAll(buf []byte) error {
	for len(buf) > 0 {
		n, err := w.w.Write(buf)
		if err != nil {
			return err
		}
		buf = buf[n:]
	}
	return nil
}

func (w *Writer) PutUvarint(v uint64) error {
	buf := getScratch(maxVarintLen)
	defer putScratch(buf)
	n := 0
	for v >= 0x80 {
		buf[n] = byte(v) | 0x80
		v >>= 7
		n++
	}
	buf[n] = byte(v)
	n++
	return w.WriteAll(buf[:n])
}

func (w *Writer) PutVarint(v int64) error {
	return w.PutUvarint(zigzagEncode(v))
}

func (w *Writer) PutUint8(v uint8) error {
	return w.WriteAll([]byte{v})
}

func (w *Writer) PutUint16(v uint16) error {
	buf := getScratch(2)
	defer putScratch(buf)
	binary.LittleEndian.PutUint16(buf, v)
	return w.WriteAll(buf)
}

func (w *Writer) PutUint32(v uint32) error {
	buf := getScratch(4)
	defer putScratch(buf)
	binary.LittleEndian.PutUint32(buf, v)
	return w.WriteAll(buf)
}

func (w *Writer) PutUint64(v uint64) error {
	buf := getScratch(8)
	defer putScratch(buf)
	binary.LittleEndian.PutUint64(buf, v)
	return w.WriteAll(buf)
}

func (w *Writer) PutInt8(v int8) error  { return w.PutUint8(uint8(v)) }
func (w *Writer) PutInt16(v int16) error { return w.PutUint16(uint16(v)) }
func (w *Writer) PutInt32(v int32) error { return w.PutUint32(uint32(v)) }
func (w *Writer) PutInt64(v int64) error { return w.PutUint64(uint64(v)) }

func (w *Writer) PutFloat32(v float32) error { return w.PutUint32(math.Float32bits(v)) }
func (w *Writer) PutFloat64(v float64) error { return w.PutUint64(math.Float64bits(v)) }

func (w *Writer) PutBool(v bool) error {
	if v {
		return w.PutUint8(1)
	}
	return w.PutUint8(0)
}

func (w *Writer) PutString(s string) error {
	if err := w.PutUvarint(uint64(len(s))); err != nil {
		return err
	}
	return w.WriteAll([]byte(s))
}

func (w *Writer) PutBytes(b []byte) error {
	if err := w.PutUvarint(uint64(len(b))); err != nil {
		return err
	}
	return w.WriteAll(b)
}

func zigzagEncode(v int64) uint64 {
	return uint64(v<<1) ^ uint64(v>>63)
}

func zigzagDecode(v uint64) int64 {
	return int64(v>>1) ^ -int64(v&1)
}
