package palette

// Version holds the palette rules of one protocol version.
type Version struct {
	Name string
	// MinBits is the narrowest indexed palette the version accepts.
	MinBits int
	// DirectBits is the global palette width.
	DirectBits int
	// StateBits bounds the block-state ids a direct palette may carry.
	StateBits int
	// DirectZeroLength is set when a direct palette is still followed by a
	// zero palette length on the wire.
	DirectZeroLength bool
}

var (
	// Protocol1_12 is the 1.12.x network format.
	Protocol1_12 = Version{Name: "1.12", MinBits: 4, DirectBits: 13, StateBits: LegacyStateBits, DirectZeroLength: true}
	// Protocol1_13 is the 1.13.x network format.
	Protocol1_13 = Version{Name: "1.13", MinBits: 4, DirectBits: 14, StateBits: 14}
)

// Direct returns the global palette of v.
func (v Version) Direct() Direct {
	return Direct{Bits: v.DirectBits, StateBits: v.StateBits}
}

// Build collects the distinct states of cells in first-seen order and returns
// the wire palette for v together with the index of every cell. Above
// MaxIndexedBits the direct palette is chosen and the indices are the states
// themselves.
func Build(cells []int32, v Version) (Palette, []int32) {
	states, indices := distinct(cells)
	if BitsFor(len(states)) > MaxIndexedBits {
		return v.Direct(), append([]int32(nil), cells...)
	}
	p, _ := newIndexed(states, max(v.MinBits, BitsFor(len(states))))
	return p, indices
}

// BuildIndexed is Build without the direct fallback, used for persisted
// palettes which are always tables.
func BuildIndexed(cells []int32, minBits int) (*Indexed, []int32) {
	states, indices := distinct(cells)
	p, _ := newIndexed(states, max(minBits, BitsFor(len(states))))
	return p, indices
}

func distinct(cells []int32) ([]int32, []int32) {
	seen := make(map[int32]int32)
	states := make([]int32, 0, 16)
	indices := make([]int32, len(cells))
	for i, s := range cells {
		idx, ok := seen[s]
		if !ok {
			idx = int32(len(states))
			seen[s] = idx
			states = append(states, s)
		}
		indices[i] = idx
	}
	return states, indices
}
