// Package section converts the blocks of one 16x16x16 chunk section between
// a dense array of block-state ids, the legacy Blocks/Data record, the
// palette-indexed BlockStates record and the network section record.
package section

import (
	"fmt"

	"github.com/OCharnyshevich/chunksection/internal/nbt"
	"github.com/OCharnyshevich/chunksection/internal/palette"
	"github.com/OCharnyshevich/chunksection/internal/wire"
	"github.com/OCharnyshevich/chunksection/pkg/bitpack"
)

const (
	// Width is the edge length of a section.
	Width = 16
	// Volume is the number of cells in a section.
	Volume = Width * Width * Width
	// LightBytes is the size of a nibble light array.
	LightBytes = Volume / 2
)

// Index returns the linear block index of local coordinates.
func Index(x, y, z int) int {
	return y<<8 | z<<4 | x
}

// Section is one vertical slice of a chunk column.
//
// A Section is not safe for concurrent use; distinct sections share nothing.
type Section struct {
	Y          int8
	BlockLight []byte
	SkyLight   []byte

	format  Format
	states  [Volume]int32
	palette palette.Palette
	words   []uint64
}

// New returns an all-air section with zero block light and full sky light.
func New(y int8, f Format) *Section {
	s := &Section{
		Y:          y,
		format:     f,
		BlockLight: make([]byte, LightBytes),
		SkyLight:   make([]byte, LightBytes),
	}
	for i := range s.SkyLight {
		s.SkyLight[i] = 0xFF
	}
	return s
}

// Read builds a section from a persisted section compound.
func Read(c nbt.Compound, f Format) (*Section, error) {
	y, err := c.Integer("Y")
	if err != nil {
		return nil, wrapFormat("Y", err)
	}
	s := &Section{Y: int8(y), format: f}

	if err := f.decode(s, c); err != nil {
		return nil, fmt.Errorf("section %d: %w", s.Y, err)
	}

	if s.BlockLight, err = readLight(c, "BlockLight"); err != nil {
		return nil, fmt.Errorf("section %d: %w", s.Y, err)
	}
	if c.Has("SkyLight") {
		if s.SkyLight, err = readLight(c, "SkyLight"); err != nil {
			return nil, fmt.Errorf("section %d: %w", s.Y, err)
		}
	}
	return s, nil
}

func readLight(c nbt.Compound, name string) ([]byte, error) {
	b, err := c.ByteArray(name)
	if err != nil {
		return nil, wrapFormat(name, err)
	}
	if len(b) != LightBytes {
		return nil, formatError("%s holds %d bytes, want %d", name, len(b), LightBytes)
	}
	return b, nil
}

// ReadWire decodes a network section record of format f. The sky-light
// array is expected unless dim is the nether.
func ReadWire(r *wire.Reader, y int8, f Format, dim Dimension) (*Section, error) {
	s := &Section{Y: y, format: f}

	v := f.Wire()
	p, err := palette.ReadWire(r, v)
	if err != nil {
		return nil, wrapFormat("palette", err)
	}
	if table, ok := p.(*palette.Indexed); ok {
		for i, st := range table.States() {
			if _, ok := v.Direct().IndexOf(st); !ok {
				return nil, formatError("palette entry %d holds state %d beyond %d bits", i, st, v.StateBits)
			}
		}
	}
	n, err := r.ReadLength("data array", wire.MaxLongs)
	if err != nil {
		return nil, wrapFormat("data array", err)
	}
	words, err := r.ReadLongArray(n)
	if err != nil {
		return nil, wrapFormat("data array", err)
	}
	if err := s.load(p, words); err != nil {
		return nil, fmt.Errorf("section %d: %w", y, err)
	}

	if s.BlockLight, err = r.ReadByteArray(LightBytes); err != nil {
		return nil, wrapFormat("block light", err)
	}
	if dim.HasSkyLight() {
		if s.SkyLight, err = r.ReadByteArray(LightBytes); err != nil {
			return nil, wrapFormat("sky light", err)
		}
	}
	return s, nil
}

// load unpacks words through p into the dense buffer. An empty word array
// leaves every cell air.
func (s *Section) load(p palette.Palette, words []uint64) error {
	s.palette = p
	s.words = words
	s.states = [Volume]int32{}
	if len(words) == 0 {
		return nil
	}

	bits := p.BitsPerBlock()
	if !bitpack.Fits(words, Volume, bits) {
		return invariantError("%d words at %d bits per block, want %d", len(words), bits, bitpack.Len(Volume, bits))
	}
	for i := range s.states {
		idx := int32(bitpack.Get(words, i, bits))
		state, ok := p.StateFromID(idx)
		if !ok {
			return formatError("cell %d references index %d outside the palette", i, idx)
		}
		s.states[i] = state
	}
	return nil
}

// Format returns the section's format strategy.
func (s *Section) Format() Format {
	return s.format
}

// Palette returns the palette the section was decoded with, or nil once
// the section has been edited.
func (s *Section) Palette() palette.Palette {
	return s.palette
}

// Words returns a copy of the packed words the section was decoded from, or
// nil once the section has been edited.
func (s *Section) Words() []uint64 {
	return append([]uint64(nil), s.words...)
}

// States returns a copy of the dense buffer in block index order.
func (s *Section) States() []int32 {
	out := make([]int32, Volume)
	copy(out, s.states[:])
	return out
}

// BlockStateAt returns the state at local coordinates. Coordinates outside
// 0..15 are a programming error and panic.
func (s *Section) BlockStateAt(x, y, z int) int32 {
	checkBounds(x, y, z)
	return s.states[Index(x, y, z)]
}

// SetBlockAt changes one cell. Legacy sections reject it with
// ErrUnsupported.
func (s *Section) SetBlockAt(x, y, z int, state int32) error {
	if !s.format.Editable() {
		return fmt.Errorf("%w: set block on %s section", ErrUnsupported, s.format.Name())
	}
	checkBounds(x, y, z)
	s.states[Index(x, y, z)] = state
	s.palette, s.words = nil, nil
	return nil
}

// SetStates replaces the whole dense buffer, given in block index order.
func (s *Section) SetStates(states []int32) error {
	if len(states) != Volume {
		return invariantError("%d states, want %d", len(states), Volume)
	}
	copy(s.states[:], states)
	s.palette, s.words = nil, nil
	return nil
}

// IsEmpty reports whether every cell is air.
func (s *Section) IsEmpty() bool {
	for _, st := range s.states {
		if st != 0 {
			return false
		}
	}
	return true
}

// Record encodes the section as a persisted section compound. SkyLight is
// omitted when dim has none or the section carries none.
func (s *Section) Record(dim Dimension) (nbt.Compound, error) {
	c := nbt.Compound{"Y": s.Y}
	if err := s.format.encode(s, c); err != nil {
		return nil, fmt.Errorf("section %d: %w", s.Y, err)
	}
	c["BlockLight"] = s.blockLight()
	if dim.HasSkyLight() && s.SkyLight != nil {
		c["SkyLight"] = s.SkyLight
	}
	return c, nil
}

// WriteWire writes the network section record: palette, word count, words,
// block light and, outside the nether, sky light. The palette is rebuilt
// from the dense buffer.
func (s *Section) WriteWire(w *wire.Writer, dim Dimension) error {
	v := s.format.Wire()
	direct := v.Direct()
	for i, st := range s.states {
		if _, ok := direct.IndexOf(st); !ok {
			return fmt.Errorf("section %d: %w", s.Y, invariantError("state %d at cell %d exceeds %d bits", st, i, v.StateBits))
		}
	}
	p, indices := palette.Build(s.states[:], v)
	words := bitpack.Pack(Volume, p.BitsPerBlock(), func(i int) uint64 {
		return uint64(indices[i])
	})

	sky := s.SkyLight
	if sky == nil {
		sky = make([]byte, LightBytes)
	}
	if len(s.blockLight()) != LightBytes || dim.HasSkyLight() && len(sky) != LightBytes {
		return fmt.Errorf("section %d: %w", s.Y, invariantError("light arrays of %d and %d bytes, want %d", len(s.blockLight()), len(sky), LightBytes))
	}

	if err := palette.WriteWire(w, p, v); err != nil {
		return fmt.Errorf("section %d: write palette: %w", s.Y, err)
	}
	w.WriteVarInt(int32(len(words)))
	w.WriteLongArray(words)
	w.WriteByteArray(s.blockLight())
	if dim.HasSkyLight() {
		w.WriteByteArray(sky)
	}
	if err := w.Err(); err != nil {
		return fmt.Errorf("section %d: %w", s.Y, err)
	}
	return nil
}

func (s *Section) blockLight() []byte {
	if s.BlockLight == nil {
		return make([]byte, LightBytes)
	}
	return s.BlockLight
}

func checkBounds(x, y, z int) {
	if uint(x) >= Width || uint(y) >= Width || uint(z) >= Width {
		panic(fmt.Sprintf("section: coordinate (%d,%d,%d) out of range", x, y, z))
	}
}
