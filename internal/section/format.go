package section

import (
	"github.com/OCharnyshevich/chunksection/internal/nbt"
	"github.com/OCharnyshevich/chunksection/internal/palette"
	"github.com/OCharnyshevich/chunksection/internal/registry"
)

// Data versions stored in the DataVersion tag of a chunk.
const (
	DataVersion1_12_2 = 1343
	DataVersion1_13   = 1519

	// FlatteningDataVersion is the first snapshot with palette-indexed
	// sections.
	FlatteningDataVersion = 1451
)

// Format is the decode/encode strategy of one game version.
type Format interface {
	Name() string
	DataVersion() int
	// Editable reports whether single cells may be changed.
	Editable() bool
	// Wire returns the network palette rules.
	Wire() palette.Version

	decode(s *Section, c nbt.Compound) error
	encode(s *Section, c nbt.Compound) error
}

// Legacy is the pre-flattening format with Blocks and Data arrays.
var Legacy Format = legacyFormat{}

// Modern returns the palette-indexed format resolving palette entries
// through reg.
func Modern(reg *registry.Registry) Format {
	return modernFormat{reg: reg}
}

// FormatFor picks the format a chunk of the given data version is stored in.
func FormatFor(dataVersion int, reg *registry.Registry) Format {
	if dataVersion < FlatteningDataVersion {
		return Legacy
	}
	return Modern(reg)
}
