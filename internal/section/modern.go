package section

import (
	"errors"
	"fmt"

	"github.com/OCharnyshevich/chunksection/internal/nbt"
	"github.com/OCharnyshevich/chunksection/internal/palette"
	"github.com/OCharnyshevich/chunksection/internal/registry"
	"github.com/OCharnyshevich/chunksection/pkg/bitpack"
)

// persistedMinBits is the narrowest width of a stored 1.13 palette.
const persistedMinBits = 4

var errNoRegistry = errors.New("modern format requires a block-state registry")

type modernFormat struct {
	reg *registry.Registry
}

func (modernFormat) Name() string          { return "1.13" }
func (modernFormat) DataVersion() int      { return DataVersion1_13 }
func (modernFormat) Editable() bool        { return true }
func (modernFormat) Wire() palette.Version { return palette.Protocol1_13 }

func (f modernFormat) decode(s *Section, c nbt.Compound) error {
	var words []uint64
	if c.Has("BlockStates") {
		longs, err := c.LongArray("BlockStates")
		if err != nil {
			return wrapFormat("BlockStates", err)
		}
		words = make([]uint64, len(longs))
		for i, v := range longs {
			words[i] = uint64(v)
		}
	}
	if len(words) == 0 && !c.Has("Palette") {
		return s.load(nil, nil)
	}

	entries, err := c.Compounds("Palette")
	if err != nil {
		return wrapFormat("Palette", err)
	}
	states := make([]int32, len(entries))
	for i, e := range entries {
		if states[i], err = f.stateOf(e); err != nil {
			return wrapFormat("Palette", err)
		}
	}
	p, err := palette.NewIndexed(states, persistedMinBits)
	if err != nil {
		return wrapFormat("Palette", err)
	}
	return s.load(p, words)
}

func (f modernFormat) stateOf(e nbt.Compound) (int32, error) {
	if f.reg == nil {
		return 0, errNoRegistry
	}
	name, err := e.Text("Name")
	if err != nil {
		return 0, err
	}
	d := registry.Descriptor{Name: name}
	if e.Has("Properties") {
		props, err := e.Compound("Properties")
		if err != nil {
			return 0, err
		}
		d.Properties = make(map[string]string, len(props))
		for k := range props {
			if d.Properties[k], err = props.Text(k); err != nil {
				return 0, err
			}
		}
	}
	state, ok := f.reg.StateID(d)
	if !ok {
		return 0, fmt.Errorf("unknown block state %s", d.Key())
	}
	return state, nil
}

func (f modernFormat) encode(s *Section, c nbt.Compound) error {
	if f.reg == nil {
		return errNoRegistry
	}
	p, _ := palette.BuildIndexed(s.states[:], persistedMinBits)

	entries := make([]map[string]any, p.Len())
	for i, state := range p.States() {
		d, ok := f.reg.Descriptor(state)
		if !ok {
			return invariantError("state %d has no registry entry", state)
		}
		entry := map[string]any{"Name": d.Name}
		if len(d.Properties) > 0 {
			props := make(map[string]any, len(d.Properties))
			for k, v := range d.Properties {
				props[k] = v
			}
			entry["Properties"] = props
		}
		entries[i] = entry
	}

	words, err := packIndices(&s.states, p)
	if err != nil {
		return err
	}
	longs := make([]int64, len(words))
	for i, w := range words {
		longs[i] = int64(w)
	}

	c["Palette"] = entries
	c["BlockStates"] = longs
	return nil
}

// packIndices maps every cell to its index in p and packs the indices at
// p's width.
func packIndices(states *[Volume]int32, p palette.Palette) ([]uint64, error) {
	indices := make([]int32, Volume)
	for i, state := range states {
		idx, ok := p.IndexOf(state)
		if !ok {
			return nil, invariantError("state %d at cell %d is not in the palette", state, i)
		}
		indices[i] = idx
	}
	return bitpack.Pack(Volume, p.BitsPerBlock(), func(i int) uint64 {
		return uint64(indices[i])
	}), nil
}
