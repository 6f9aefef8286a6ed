// Package compress implements the per-packet compression envelope used to
// wrap Data packet bodies: a CityHash128 checksum, a one-byte method tag,
// and the compressed/uncompressed sizes, followed by the compressed
// payload itself. A single packet body may carry several envelopes
// concatenated back to back when the payload is large.
package compress

import (
	"encoding/binary"
	"io"

	"github.com/go-faster/city"
	"github.com/go-faster/errors"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Method identifies the compression algorithm tag carried in an envelope.
type Method byte

const (
	MethodNone Method = 0x02
	MethodLZ4  Method = 0x82
	MethodZSTD Method = 0x90
)

func (m Method) String() string {
	switch m {
	case MethodNone:
		return "none"
	case MethodLZ4:
		return "lz4"
	case MethodZSTD:
		return "zstd"
	default:
		return "unknown"
	}
}

// ErrChecksumMismatch is returned when an envelope's CityHash128 checksum
// does not match its method/sizes/payload bytes.
var ErrChecksumMismatch = errors.New("compress: checksum mismatch")

// ErrSizeMismatch is returned when decompression produces a different
// byte count than the envelope's declared uncompressed_size.
var ErrSizeMismatch = errors.New("compress: uncompressed size mismatch")

// ErrUnknownMethod is returned for a method byte outside {NONE, LZ4, ZSTD}.
var ErrUnknownMethod = errors.New("compress: unknown compression method")

const headerLen = 16 + 1 + 4 + 4 // checksum + method + compressed_size + uncompressed_size

// Encode compresses payload with method and returns a complete envelope:
// checksum || method || compressed_size || uncompressed_size || compressed_payload.
func Encode(method Method, payload []byte) ([]byte, error) {
	var body []byte
	switch method {
	case MethodNone:
		body = payload
	case MethodLZ4:
		b, err := lz4Compress(payload)
		if err != nil {
			return nil, errors.Wrap(err, "lz4 compress")
		}
		body = b
	case MethodZSTD:
		b, err := zstdCompress(payload)
		if err != nil {
			return nil, errors.Wrap(err, "zstd compress")
		}
		body = b
	default:
		return nil, ErrUnknownMethod
	}

	// compressed_size counts everything from method through the payload,
	// i.e. the whole envelope minus the 16-byte checksum prefix.
	compressedSize := uint32(1+4+4+len(body))
	uncompressedSize := uint32(len(payload))

	out := make([]byte, headerLen+len(body))
	out[16] = byte(method)
	binary.LittleEndian.PutUint32(out[17:21], compressedSize)
	binary.LittleEndian.PutUint32(out[21:25], uncompressedSize)
	copy(out[25:], body)

	sum := city.CH128(out[16:])
	binary.LittleEndian.PutUint64(out[0:8], sum.Low)
	binary.LittleEndian.PutUint64(out[8:16], sum.High)
	return out, nil
}

// Decode reads one envelope from r, verifies its checksum, decompresses its
// payload, and verifies the decompressed length against uncompressed_size.
func Decode(r io.Reader) ([]byte, error) {
	hdr := make([]byte, headerLen)
	if _, err := io.ReadFull(r, hdr); err != nil {
		return nil, errors.Wrap(err, "read envelope header")
	}
	wantLow := binary.LittleEndian.Uint64(hdr[0:8])
	wantHigh := binary.LittleEndian.Uint64(hdr[8:16])
	method := Method(hdr[16])
	compressedSize := binary.LittleEndian.Uint32(hdr[17:21])
	uncompressedSize := binary.LittleEndian.Uint32(hdr[21:25])

	// compressed_size includes method(1)+sizes(8) already consumed above.
	if compressedSize < 9 {
		return nil, errors.Errorf("compress: implausible compressed_size %d", compressedSize)
	}
	bodyLen := int(compressedSize) - 9
	body := make([]byte, bodyLen)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, errors.Wrap(err, "read envelope body")
	}

	sum := city.CH128(append(hdr[16:25:25], body...))
	if sum.Low != wantLow || sum.High != wantHigh {
		return nil, ErrChecksumMismatch
	}

	var payload []byte
	var err error
	switch method {
	case MethodNone:
		payload = body
	case MethodLZ4:
		payload, err = lz4Decompress(body, int(uncompressedSize))
	case MethodZSTD:
		payload, err = zstdDecompress(body, int(uncompressedSize))
	default:
		return nil, ErrUnknownMethod
	}
	if err != nil {
		return nil, errors.Wrap(err, "decompress envelope")
	}
	if uint32(len(payload)) != uncompressedSize {
		return nil, ErrSizeMismatch
	}
	if len(payload) == 0 {
		return nil, nil
	}
	return payload, nil
}

func lz4Compress(src []byte) ([]byte, error) {
	dst := make([]byte, lz4.CompressBlockBound(len(src)))
	var c lz4.Compressor
	n, err := c.CompressBlock(src, dst)
	if err != nil {
		return nil, err
	}
	if n == 0 && len(src) > 0 {
		// dst is sized by CompressBlockBound, so a zero-length result for
		// non-empty input is reported as an error rather than retried or
		// stored uncompressed under the LZ4 method byte.
		return nil, errors.New("lz4: block did not compress")
	}
	return dst[:n], nil
}

func lz4Decompress(src []byte, uncompressedSize int) ([]byte, error) {
	dst := make([]byte, uncompressedSize)
	n, err := lz4.UncompressBlock(src, dst)
	if err != nil {
		return nil, err
	}
	return dst[:n], nil
}

func zstdCompress(src []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, err
	}
	defer enc.Close()
	return enc.EncodeAll(src, nil), nil
}

func zstdDecompress(src []byte, uncompressedSize int) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return dec.DecodeAll(src, make([]byte, 0, uncompressedSize))
}
