// Package registry holds the global block-state table of a flattened game
// version: every numeric state id paired with its block name and property
// values, as written into persisted section palettes.
package registry

import (
	"fmt"
	"sort"
	"strings"
)

// Namespace is prepended to block names that carry none.
const Namespace = "minecraft:"

// Descriptor names one block state the way a persisted palette entry does.
type Descriptor struct {
	Name       string
	Properties map[string]string
}

// Key returns a canonical string form, e.g. "minecraft:oak_log[axis=y]".
func (d Descriptor) Key() string {
	name := d.Name
	if !strings.Contains(name, ":") {
		name = Namespace + name
	}
	if len(d.Properties) == 0 {
		return name
	}
	keys := make([]string, 0, len(d.Properties))
	for k := range d.Properties {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString(name)
	sb.WriteByte('[')
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(d.Properties[k])
	}
	sb.WriteByte(']')
	return sb.String()
}

// Registry resolves block-state ids to descriptors and back.
type Registry struct {
	byState map[int32]Descriptor
	byKey   map[string]int32
}

// New builds a Registry from an explicit table.
func New(states map[int32]Descriptor) (*Registry, error) {
	r := &Registry{
		byState: make(map[int32]Descriptor, len(states)),
		byKey:   make(map[string]int32, len(states)),
	}
	for id, d := range states {
		if err := r.add(id, d); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Registry) add(id int32, d Descriptor) error {
	if !strings.Contains(d.Name, ":") {
		d.Name = Namespace + d.Name
	}
	key := d.Key()
	if prev, dup := r.byKey[key]; dup {
		return fmt.Errorf("state %s registered as both %d and %d", key, prev, id)
	}
	r.byState[id] = d
	r.byKey[key] = id
	return nil
}

// Len returns the number of known states.
func (r *Registry) Len() int {
	return len(r.byState)
}

// Descriptor returns the descriptor of a state id.
func (r *Registry) Descriptor(state int32) (Descriptor, bool) {
	d, ok := r.byState[state]
	return d, ok
}

// StateID returns the state id of a descriptor.
func (r *Registry) StateID(d Descriptor) (int32, bool) {
	id, ok := r.byKey[d.Key()]
	return id, ok
}
