package anvil

import (
	"fmt"

	"github.com/OCharnyshevich/chunksection/internal/nbt"
	"github.com/OCharnyshevich/chunksection/internal/registry"
	"github.com/OCharnyshevich/chunksection/internal/section"
	"github.com/OCharnyshevich/chunksection/pkg/bitpack"
)

// Level members a flattened chunk needs to load as a finished chunk.
const (
	statusPostProcessed = "postprocessed"
	heightmapBits       = 9
)

var heightmapTypes = []string{
	"WORLD_SURFACE_WG",
	"OCEAN_FLOOR_WG",
	"MOTION_BLOCKING",
	"MOTION_BLOCKING_NO_LEAVES",
	"OCEAN_FLOOR",
	"WORLD_SURFACE",
	"LIGHT_BLOCKING",
}

// Column is one decoded chunk column. Fields of the chunk record other than
// the position, data version and sections are carried through unchanged.
type Column struct {
	X, Z        int32
	DataVersion int
	Format      section.Format
	Sections    []*section.Section

	root  nbt.Fields
	level nbt.Fields
	// upgraded marks a flattened column built from a legacy one whose
	// level still holds legacy members.
	upgraded bool
}

// NewColumn returns an empty column of format f.
func NewColumn(x, z int32, f section.Format) *Column {
	return &Column{
		X:           x,
		Z:           z,
		DataVersion: f.DataVersion(),
		Format:      f,
		root:        nbt.Fields{},
		level:       nbt.Fields{},
	}
}

// DecodeColumn parses the uncompressed NBT data of a chunk. The section
// format is chosen from DataVersion; chunks without one are legacy. reg is
// only needed for flattened chunks.
func DecodeColumn(data []byte, reg *registry.Registry) (*Column, error) {
	root, err := nbt.DecodeFields(data)
	if err != nil {
		return nil, err
	}
	level, err := root.Fields("Level")
	if err != nil {
		return nil, fmt.Errorf("chunk: %w", err)
	}

	c := &Column{root: root, level: level}
	if _, ok := root["DataVersion"]; ok {
		dv, err := root.Integer("DataVersion")
		if err != nil {
			return nil, fmt.Errorf("chunk: %w", err)
		}
		c.DataVersion = int(dv)
	}
	c.Format = section.FormatFor(c.DataVersion, reg)

	x, err := level.Integer("xPos")
	if err != nil {
		return nil, fmt.Errorf("chunk: %w", err)
	}
	z, err := level.Integer("zPos")
	if err != nil {
		return nil, fmt.Errorf("chunk: %w", err)
	}
	c.X, c.Z = int32(x), int32(z)

	if _, ok := level["Sections"]; !ok {
		return c, nil
	}
	records, err := level.Compounds("Sections")
	if err != nil {
		return nil, fmt.Errorf("chunk (%d,%d): %w", c.X, c.Z, err)
	}
	for _, rec := range records {
		s, err := section.Read(rec, c.Format)
		if err != nil {
			return nil, fmt.Errorf("chunk (%d,%d): %w", c.X, c.Z, err)
		}
		c.Sections = append(c.Sections, s)
	}
	return c, nil
}

// Pos returns the column position.
func (c *Column) Pos() Pos {
	return Pos{X: int(c.X), Z: int(c.Z)}
}

// Section returns the section at vertical index y, or nil.
func (c *Column) Section(y int8) *section.Section {
	for _, s := range c.Sections {
		if s.Y == y {
			return s
		}
	}
	return nil
}

// BlockStateAt returns the state at column-local coordinates; cells of
// missing sections are air.
func (c *Column) BlockStateAt(x, y, z int) int32 {
	s := c.Section(int8(y >> 4))
	if s == nil {
		return 0
	}
	return s.BlockStateAt(x, y&0xF, z)
}

// HeightMap returns, for every x,z column, one above the highest non-air
// block, indexed z*16+x.
func (c *Column) HeightMap() []int32 {
	hm := make([]int32, section.Width*section.Width)
	for _, s := range c.Sections {
		base := int32(s.Y) * section.Width
		for y := section.Width - 1; y >= 0; y-- {
			for z := 0; z < section.Width; z++ {
				for x := 0; x < section.Width; x++ {
					if s.BlockStateAt(x, y, z) == 0 {
						continue
					}
					if h := base + int32(y) + 1; h > hm[z*section.Width+x] {
						hm[z*section.Width+x] = h
					}
				}
			}
		}
	}
	return hm
}

// Encode returns the uncompressed NBT data of the chunk. Sections are
// written in the column's format; empty sections are dropped.
func (c *Column) Encode(dim section.Dimension) ([]byte, error) {
	records := make([]map[string]any, 0, len(c.Sections))
	for _, s := range c.Sections {
		if s.IsEmpty() {
			continue
		}
		rec, err := s.Record(dim)
		if err != nil {
			return nil, fmt.Errorf("chunk (%d,%d): %w", c.X, c.Z, err)
		}
		records = append(records, rec)
	}

	set := map[string]any{
		"xPos":     c.X,
		"zPos":     c.Z,
		"Sections": records,
	}
	var drop []string
	switch {
	case !c.Format.Editable():
		set["HeightMap"] = c.HeightMap()
	case c.upgraded:
		drop = append(drop, "HeightMap")
		if err := c.flattenLevel(set); err != nil {
			return nil, fmt.Errorf("chunk (%d,%d): %w", c.X, c.Z, err)
		}
	default:
		drop = append(drop, "HeightMap")
	}
	level := c.level.Merge(set, drop...)

	rootSet := map[string]any{"Level": map[string]any(level)}
	if c.DataVersion != 0 {
		rootSet["DataVersion"] = int32(c.DataVersion)
	}
	return nbt.Encode(c.root.Merge(rootSet))
}

// Heightmaps packs the column height map at 9 bits per column for every
// flattened height map type. All types share the non-air heights.
func (c *Column) Heightmaps() map[string]any {
	hm := c.HeightMap()
	words := bitpack.Pack(len(hm), heightmapBits, func(i int) uint64 {
		return uint64(hm[i])
	})
	longs := make([]int64, len(words))
	for i, w := range words {
		longs[i] = int64(w)
	}
	out := make(map[string]any, len(heightmapTypes))
	for _, name := range heightmapTypes {
		out[name] = longs
	}
	return out
}

// flattenLevel replaces the legacy members of an upgraded level: the status
// is set when absent, height maps are rebuilt and byte biomes are widened
// to ints.
func (c *Column) flattenLevel(set map[string]any) error {
	if _, ok := c.level["Status"]; !ok {
		set["Status"] = statusPostProcessed
	}
	set["Heightmaps"] = c.Heightmaps()
	if _, ok := c.level["Biomes"]; !ok {
		return nil
	}
	biomes, err := c.level.ByteArray("Biomes")
	if err != nil {
		return err
	}
	ids := make([]int32, len(biomes))
	for i, b := range biomes {
		ids[i] = int32(b)
	}
	set["Biomes"] = ids
	return nil
}
