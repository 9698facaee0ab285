package section

import (
	"fmt"
	"strings"
)

// Dimension selects the sky-light rule applied when a section is written.
type Dimension int

const (
	Overworld Dimension = iota
	Nether
	End
)

// HasSkyLight reports whether sections of d carry a sky-light array.
func (d Dimension) HasSkyLight() bool {
	return d != Nether
}

func (d Dimension) String() string {
	switch d {
	case Overworld:
		return "overworld"
	case Nether:
		return "nether"
	case End:
		return "end"
	default:
		return fmt.Sprintf("Dimension(%d)", int(d))
	}
}

// ParseDimension accepts the plain and namespaced dimension names.
func ParseDimension(s string) (Dimension, error) {
	switch strings.TrimPrefix(strings.ToLower(s), "minecraft:") {
	case "overworld", "":
		return Overworld, nil
	case "nether", "the_nether":
		return Nether, nil
	case "end", "the_end":
		return End, nil
	default:
		return 0, fmt.Errorf("unknown dimension %q", s)
	}
}
