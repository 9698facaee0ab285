// Package wire reads and writes the field primitives of a chunk section
// network record: VarInts, unsigned bytes, big-endian long arrays and raw
// byte blobs.
package wire

import (
	"encoding/binary"
	"io"
)

// Writer writes wire fields to an io.Writer.
// All write methods accumulate errors internally; call Err() after writing
// to check for failures.
type Writer struct {
	w   io.Writer
	err error
}

// NewWriter creates a new wire Writer.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Err returns the first error encountered during writing.
func (w *Writer) Err() error {
	return w.err
}

func (w *Writer) write(data []byte) {
	if w.err != nil {
		return
	}
	_, w.err = w.w.Write(data)
}

// WriteUnsignedByte writes a single byte.
func (w *Writer) WriteUnsignedByte(v byte) {
	w.write([]byte{v})
}

// WriteVarInt writes a protocol VarInt.
func (w *Writer) WriteVarInt(v int32) {
	if w.err != nil {
		return
	}
	_, w.err = writeVarInt(w.w, v)
}

// WriteLongArray writes the words big-endian, without a length prefix.
func (w *Writer) WriteLongArray(words []uint64) {
	if len(words) == 0 {
		return
	}
	buf := make([]byte, 8*len(words))
	for i, v := range words {
		binary.BigEndian.PutUint64(buf[i*8:], v)
	}
	w.write(buf)
}

// WriteByteArray writes data as is, without a length prefix.
func (w *Writer) WriteByteArray(data []byte) {
	if len(data) == 0 {
		return
	}
	w.write(data)
}
