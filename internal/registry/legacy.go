package registry

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// LegacyMap translates pre-flattening raw states (id<<4 | meta) to state ids
// of a flattened registry.
type LegacyMap map[int32]int32

// Resolve returns the flattened state of a raw legacy state. Unknown
// metadata falls back to the block's meta 0 variant.
func (m LegacyMap) Resolve(raw int32) (int32, bool) {
	if s, ok := m[raw]; ok {
		return s, true
	}
	s, ok := m[raw&^0xF]
	return s, ok
}

type legacyJSON struct {
	Blocks map[string]string `json:"blocks"`
}

// LoadLegacyFile reads a minecraft-data legacy.json file.
func LoadLegacyFile(path string, reg *Registry) (LegacyMap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open legacy table: %w", err)
	}
	defer f.Close()
	return LoadLegacy(f, reg)
}

// LoadLegacy parses the "blocks" table of legacy.json, keyed "id:meta" with
// flattened state strings as values, resolving each value through reg.
// Entries reg does not know are skipped.
func LoadLegacy(r io.Reader, reg *Registry) (LegacyMap, error) {
	var doc legacyJSON
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode legacy table: %w", err)
	}

	m := make(LegacyMap, len(doc.Blocks))
	for key, value := range doc.Blocks {
		raw, err := parseLegacyKey(key)
		if err != nil {
			return nil, err
		}
		d, err := ParseKey(value)
		if err != nil {
			return nil, fmt.Errorf("legacy %s: %w", key, err)
		}
		if state, ok := reg.StateID(d); ok {
			m[raw] = state
		}
	}
	return m, nil
}

func parseLegacyKey(key string) (int32, error) {
	id, meta, ok := strings.Cut(key, ":")
	if !ok {
		return 0, fmt.Errorf("legacy key %q: want id:meta", key)
	}
	i, err := strconv.ParseUint(id, 10, 8)
	if err != nil {
		return 0, fmt.Errorf("legacy key %q: %w", key, err)
	}
	m, err := strconv.ParseUint(meta, 10, 4)
	if err != nil {
		return 0, fmt.Errorf("legacy key %q: %w", key, err)
	}
	return int32(i<<4 | m), nil
}

// ParseKey is the inverse of Descriptor.Key.
func ParseKey(s string) (Descriptor, error) {
	name, rest, hasProps := strings.Cut(s, "[")
	d := Descriptor{Name: name}
	if name == "" {
		return d, fmt.Errorf("empty block name in %q", s)
	}
	if !hasProps {
		return d, nil
	}
	body, ok := strings.CutSuffix(rest, "]")
	if !ok {
		return d, fmt.Errorf("unterminated property list in %q", s)
	}
	d.Properties = make(map[string]string)
	for _, kv := range strings.Split(body, ",") {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			return d, fmt.Errorf("bad property %q in %q", kv, s)
		}
		d.Properties[k] = v
	}
	return d, nil
}
