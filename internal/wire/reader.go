package wire

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
)

// MaxLongs bounds the word count accepted by ReadLongArray. The widest
// section a client accepts packs 4096 entries at 64 bits.
const MaxLongs = 4096

// Reader reads wire fields from an io.Reader.
type Reader struct {
	r *bufio.Reader
}

// NewReader creates a new wire Reader.
func NewReader(r io.Reader) *Reader {
	if br, ok := r.(*bufio.Reader); ok {
		return &Reader{r: br}
	}
	return &Reader{r: bufio.NewReader(r)}
}

// ReadUnsignedByte reads a single byte.
func (r *Reader) ReadUnsignedByte() (byte, error) {
	return r.r.ReadByte()
}

// ReadVarInt reads a protocol VarInt.
func (r *Reader) ReadVarInt() (int32, error) {
	v, _, err := ReadVarInt(r.r)
	return v, err
}

// ReadLength reads a VarInt length and checks it against max.
func (r *Reader) ReadLength(what string, max int) (int, error) {
	n, err := r.ReadVarInt()
	if err != nil {
		return 0, fmt.Errorf("read %s length: %w", what, err)
	}
	if err := checkLength(what, n, max); err != nil {
		return 0, err
	}
	return int(n), nil
}

// ReadLongArray reads n big-endian words.
func (r *Reader) ReadLongArray(n int) ([]uint64, error) {
	if n < 0 || n > MaxLongs {
		return nil, fmt.Errorf("long array length out of range: %d", n)
	}
	buf := make([]byte, 8*n)
	if _, err := io.ReadFull(r.r, buf); err != nil {
		return nil, fmt.Errorf("read long array: %w", err)
	}
	words := make([]uint64, n)
	for i := range words {
		words[i] = binary.BigEndian.Uint64(buf[i*8:])
	}
	return words, nil
}

// ReadByteArray reads exactly n raw bytes.
func (r *Reader) ReadByteArray(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("negative byte array length: %d", n)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r.r, buf); err != nil {
		return nil, fmt.Errorf("read byte array data: %w", err)
	}
	return buf, nil
}
