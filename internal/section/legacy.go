package section

import (
	"github.com/OCharnyshevich/chunksection/internal/nbt"
	"github.com/OCharnyshevich/chunksection/internal/palette"
	"github.com/OCharnyshevich/chunksection/pkg/bitpack"
)

const (
	blocksBytes = Volume
	nibbleBytes = Volume / 2
	legacyMask  = 1<<palette.LegacyStateBits - 1
)

type legacyFormat struct{}

func (legacyFormat) Name() string          { return "1.12" }
func (legacyFormat) DataVersion() int      { return DataVersion1_12_2 }
func (legacyFormat) Editable() bool        { return false }
func (legacyFormat) Wire() palette.Version { return palette.Protocol1_12 }

func (legacyFormat) decode(s *Section, c nbt.Compound) error {
	blocks, err := c.ByteArray("Blocks")
	if err != nil {
		return wrapFormat("Blocks", err)
	}
	data, err := c.ByteArray("Data")
	if err != nil {
		return wrapFormat("Data", err)
	}
	if len(blocks) != blocksBytes {
		return formatError("Blocks holds %d bytes, want %d", len(blocks), blocksBytes)
	}
	if len(data) != nibbleBytes {
		return formatError("Data holds %d bytes, want %d", len(data), nibbleBytes)
	}

	p := palette.Identity{}
	words := packLegacy(blocks, data, p.BitsPerBlock())
	return s.load(p, words)
}

func (legacyFormat) encode(s *Section, c nbt.Compound) error {
	blocks, data, err := encodeLegacy(&s.states)
	if err != nil {
		return err
	}
	c["Blocks"] = blocks
	c["Data"] = data
	return nil
}

// packLegacy joins the id byte and data nibble of every cell into its 12-bit
// raw value and packs the result.
func packLegacy(blocks, data []byte, bits int) []uint64 {
	return bitpack.Pack(Volume, bits, func(i int) uint64 {
		raw := uint32(blocks[i]) << 4
		raw |= uint32(nibble(data, i))
		return uint64(raw & legacyMask)
	})
}

// encodeLegacy splits every state into the id byte and the data nibble.
func encodeLegacy(states *[Volume]int32) ([]byte, []byte, error) {
	blocks := make([]byte, blocksBytes)
	data := make([]byte, nibbleBytes)
	for i, state := range states {
		raw, ok := palette.Identity{}.IndexOf(state)
		if !ok {
			return nil, nil, invariantError("state %d at cell %d exceeds %d bits", state, i, palette.LegacyStateBits)
		}
		blocks[i] = byte(raw >> 4)
		setNibble(data, i, byte(raw&0xF))
	}
	return blocks, data, nil
}

// nibble reads the 4-bit value of cell index from a nibble array. Even
// indices use the low half of the byte, odd indices the high half.
func nibble(arr []byte, index int) byte {
	b := arr[index/2]
	if index%2 != 0 {
		return b >> 4
	}
	return b & 0x0F
}

// setNibble sets a 4-bit value at the given block index in a nibble array.
func setNibble(arr []byte, index int, val byte) {
	byteIdx := index / 2
	if index%2 == 0 {
		arr[byteIdx] = (arr[byteIdx] & 0xF0) | (val & 0x0F)
	} else {
		arr[byteIdx] = (arr[byteIdx] & 0x0F) | ((val & 0x0F) << 4)
	}
}
