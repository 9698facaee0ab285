package palette

import (
	"errors"
	"fmt"

	"github.com/OCharnyshevich/chunksection/internal/wire"
)

// ErrNotSerializable is returned when the identity palette is written.
var ErrNotSerializable = errors.New("identity palette has no wire form")

// WriteWire writes the bits-per-block byte followed by the palette body.
func WriteWire(w *wire.Writer, p Palette, v Version) error {
	switch p := p.(type) {
	case *Indexed:
		w.WriteUnsignedByte(byte(p.bits))
		w.WriteVarInt(int32(len(p.states)))
		for _, s := range p.states {
			w.WriteVarInt(s)
		}
	case Direct:
		w.WriteUnsignedByte(byte(p.Bits))
		if v.DirectZeroLength {
			w.WriteVarInt(0)
		}
	case Identity:
		return ErrNotSerializable
	default:
		return fmt.Errorf("unknown palette %T", p)
	}
	return w.Err()
}

// ReadWire reads a palette written by WriteWire.
func ReadWire(r *wire.Reader, v Version) (Palette, error) {
	width, err := r.ReadUnsignedByte()
	if err != nil {
		return nil, fmt.Errorf("read bits per block: %w", err)
	}
	if width == 0 || width > 64 {
		return nil, fmt.Errorf("bits per block out of range: %d", width)
	}

	if width > MaxIndexedBits {
		if v.DirectZeroLength {
			if _, err := r.ReadVarInt(); err != nil {
				return nil, fmt.Errorf("read direct palette length: %w", err)
			}
		}
		// Clients ignore the announced width and use the global one.
		return v.Direct(), nil
	}

	n, err := r.ReadLength("palette", 1<<width)
	if err != nil {
		return nil, err
	}
	states := make([]int32, n)
	for i := range states {
		if states[i], err = r.ReadVarInt(); err != nil {
			return nil, fmt.Errorf("read palette entry %d: %w", i, err)
		}
	}
	return WithBits(states, max(int(width), v.MinBits))
}
