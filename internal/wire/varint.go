package wire

import (
	"errors"
	"fmt"
	"io"
)

var errVarIntTooLong = errors.New("VarInt too long")

// ReadVarInt reads a protocol VarInt and returns it with the number of bytes
// consumed.
func ReadVarInt(r io.ByteReader) (int32, int, error) {
	var result uint32
	var numRead int

	for {
		b, err := r.ReadByte()
		if err != nil {
			return 0, numRead, err
		}
		numRead++

		result |= uint32(b&0x7F) << (7 * (numRead - 1))

		if b&0x80 == 0 {
			break
		}
		if numRead >= 5 {
			return 0, numRead, errVarIntTooLong
		}
	}

	return int32(result), numRead, nil
}

// PutVarInt encodes value into buf, which must hold at least 5 bytes, and
// returns the number of bytes written.
func PutVarInt(buf []byte, value int32) int {
	val := uint32(value)
	n := 0
	for {
		b := byte(val & 0x7F)
		val >>= 7
		if val != 0 {
			b |= 0x80
		}
		buf[n] = b
		n++
		if val == 0 {
			break
		}
	}
	return n
}

func writeVarInt(w io.Writer, value int32) (int, error) {
	var buf [5]byte
	n := PutVarInt(buf[:], value)
	return w.Write(buf[:n])
}

func checkLength(what string, n int32, max int) error {
	if n < 0 || int(n) > max {
		return fmt.Errorf("%s length out of range: %d", what, n)
	}
	return nil
}
