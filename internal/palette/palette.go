// Package palette maps the small indices stored in a packed section to
// block-state ids.
//
// A Palette is one of three variants:
//
//   - Identity: the legacy in-memory palette, index == state, 12-bit domain.
//     It is never serialized.
//   - Indexed: an ordered table of distinct states.
//   - Direct: the global palette sent on the wire when an indexed table
//     would need more than 8 bits.
package palette

import (
	"fmt"
	"math/bits"
)

const (
	// LegacyStateBits is the width of a legacy raw state: 8 bits of block
	// id and 4 bits of metadata.
	LegacyStateBits = 12

	// IdentityBits is the width legacy sections are packed at in memory,
	// the 1.12 global palette width.
	IdentityBits = 13

	// MaxIndexedBits is the widest an indexed wire palette may be before
	// the global palette is used instead.
	MaxIndexedBits = 8
)

// Palette translates between packed indices and block-state ids.
type Palette interface {
	// BitsPerBlock is the width every index is packed at.
	BitsPerBlock() int
	// StateFromID resolves a packed index to a block-state id.
	StateFromID(id int32) (int32, bool)
	// IndexOf returns the packed index for a block-state id.
	IndexOf(state int32) (int32, bool)
	// Len is the number of table entries; zero for tableless variants.
	Len() int

	sealed()
}

// BitsFor returns the smallest width >= 1 able to index n entries.
func BitsFor(n int) int {
	if n <= 2 {
		return 1
	}
	return bits.Len(uint(n - 1))
}

// Identity is the legacy palette. Every 12-bit raw value maps to itself.
type Identity struct{}

func (Identity) BitsPerBlock() int { return IdentityBits }
func (Identity) Len() int          { return 0 }
func (Identity) sealed()           {}

func (Identity) StateFromID(id int32) (int32, bool) {
	return id, id >= 0 && id < 1<<LegacyStateBits
}

func (Identity) IndexOf(state int32) (int32, bool) {
	return state, state >= 0 && state < 1<<LegacyStateBits
}

// Direct is the global palette: indices are block-state ids packed at Bits.
// StateBits narrows the accepted states below the packed width; zero means
// Bits.
type Direct struct {
	Bits      int
	StateBits int
}

func (d Direct) BitsPerBlock() int { return d.Bits }
func (Direct) Len() int            { return 0 }
func (Direct) sealed()             {}

func (d Direct) StateFromID(id int32) (int32, bool) {
	return id, d.contains(id)
}

func (d Direct) IndexOf(state int32) (int32, bool) {
	return state, d.contains(state)
}

func (d Direct) contains(state int32) bool {
	width := d.Bits
	if d.StateBits > 0 {
		width = min(width, d.StateBits)
	}
	return state >= 0 && int64(state) < 1<<uint(width)
}

// Indexed is an ordered table of block states. The position of a state in
// the table is its index.
type Indexed struct {
	states []int32
	index  map[int32]int32
	bits   int
}

// NewIndexed builds a table palette over states, packed at no fewer than
// minBits. States must be distinct.
func NewIndexed(states []int32, minBits int) (*Indexed, error) {
	return newIndexed(states, max(minBits, BitsFor(len(states))))
}

// WithBits builds a table palette packed at exactly width bits.
func WithBits(states []int32, width int) (*Indexed, error) {
	if need := BitsFor(len(states)); width < need {
		return nil, fmt.Errorf("palette of %d states needs %d bits, got %d", len(states), need, width)
	}
	return newIndexed(states, width)
}

func newIndexed(states []int32, width int) (*Indexed, error) {
	p := &Indexed{
		states: make([]int32, len(states)),
		index:  make(map[int32]int32, len(states)),
		bits:   width,
	}
	copy(p.states, states)
	for i, s := range states {
		if _, dup := p.index[s]; dup {
			return nil, fmt.Errorf("duplicate palette state %d at index %d", s, i)
		}
		p.index[s] = int32(i)
	}
	return p, nil
}

func (p *Indexed) BitsPerBlock() int { return p.bits }
func (p *Indexed) Len() int          { return len(p.states) }
func (*Indexed) sealed()             {}

func (p *Indexed) StateFromID(id int32) (int32, bool) {
	if id < 0 || int(id) >= len(p.states) {
		return 0, false
	}
	return p.states[id], true
}

func (p *Indexed) IndexOf(state int32) (int32, bool) {
	i, ok := p.index[state]
	return i, ok
}

// States returns the table in index order.
func (p *Indexed) States() []int32 {
	out := make([]int32, len(p.states))
	copy(out, p.states)
	return out
}
