package hugevector

import (
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"io"
)

// Codec translates element values to and from their on-disk byte form.
//
// Encode writes one value as a single block; Decode reads exactly one value
// back. Blocks need not have a fixed width across values, but a block must
// not be empty: lengths are recovered from the index, never from the block
// itself. Implementations must be stateless between calls.
type Codec[V any] interface {
	Encode(w io.Writer, v V) error
	Decode(r io.Reader) (V, error)
}

// Float64Codec encodes float64 elements as 8 little-endian bytes.
type Float64Codec struct{}

func (Float64Codec) Encode(w io.Writer, v float64) error {
	return binary.Write(w, binary.LittleEndian, v)
}

func (Float64Codec) Decode(r io.Reader) (float64, error) {
	var v float64

	if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
		return 0, fmt.Errorf("decode float64: %w", err)
	}

	return v, nil
}

// StringCodec encodes string elements as a 4-byte little-endian length
// prefix followed by the raw bytes.
type StringCodec struct{}

func (StringCodec) Encode(w io.Writer, v string) error {
	var prefix [4]byte

	binary.LittleEndian.PutUint32(prefix[:], uint32(len(v)))

	if _, err := w.Write(prefix[:]); err != nil {
		return err
	}

	_, err := io.WriteString(w, v)

	return err
}

func (StringCodec) Decode(r io.Reader) (string, error) {
	var prefix [4]byte

	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		return "", fmt.Errorf("decode string length: %w", err)
	}

	buf := make([]byte, binary.LittleEndian.Uint32(prefix[:]))
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", fmt.Errorf("decode string: %w", err)
	}

	return string(buf), nil
}

// GobCodec encodes arbitrary element types with [encoding/gob]. Each block
// is a self-contained gob stream, so blocks stay decodable in isolation.
type GobCodec[V any] struct{}

func (GobCodec[V]) Encode(w io.Writer, v V) error {
	if err := gob.NewEncoder(w).Encode(v); err != nil {
		return fmt.Errorf("gob encode: %w", err)
	}

	return nil
}

func (GobCodec[V]) Decode(r io.Reader) (V, error) {
	var v V

	if err := gob.NewDecoder(r).Decode(&v); err != nil {
		var zero V

		return zero, fmt.Errorf("gob decode: %w", err)
	}

	return v, nil
}

// Compile-time interface checks.
var (
	_ Codec[float64] = Float64Codec{}
	_ Codec[string]  = StringCodec{}
	_ Codec[int]     = GobCodec[int]{}
)

// frameStride is the fixed on-disk width of one index record:
// two little-endian int64 values.
const frameStride = 16

// frame names a byte range inside the data file. A live frame always has
// offset >= 0 and size > 0.
type frame struct {
	offset int64
	size   int64
}

// invalidFrame is the sentinel returned by failed writes. It never enters
// the index.
var invalidFrame = frame{offset: -1, size: -1}

func (f frame) valid() bool {
	return f.offset >= 0 && f.size > 0
}

// marshal writes the record into buf, which must hold frameStride bytes.
func (f frame) marshal(buf []byte) {
	binary.LittleEndian.PutUint64(buf[0:8], uint64(f.offset))
	binary.LittleEndian.PutUint64(buf[8:16], uint64(f.size))
}

// unmarshalFrame decodes a record from buf, which must hold frameStride bytes.
func unmarshalFrame(buf []byte) frame {
	return frame{
		offset: int64(binary.LittleEndian.Uint64(buf[0:8])),
		size:   int64(binary.LittleEndian.Uint64(buf[8:16])),
	}
}
