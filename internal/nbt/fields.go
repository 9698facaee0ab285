package nbt

import (
	"fmt"

	mcnbt "github.com/Tnze/go-mc/nbt"
)

// Fields is a compound whose members stay in their encoded form until
// asked for. Members that are never decoded are written back unchanged.
type Fields map[string]mcnbt.RawMessage

// DecodeFields parses uncompressed NBT data whose root is a compound
// without decoding the members.
func DecodeFields(data []byte) (Fields, error) {
	var root map[string]mcnbt.RawMessage
	if err := mcnbt.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("decode nbt: %w", err)
	}
	return Fields(root), nil
}

// Fields decodes a nested compound member, keeping its own members raw.
func (f Fields) Fields(name string) (Fields, error) {
	raw, ok := f[name]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrMissing, name)
	}
	var sub map[string]mcnbt.RawMessage
	if err := raw.Unmarshal(&sub); err != nil {
		return nil, fmt.Errorf("%w: field %q: %w", ErrType, name, err)
	}
	return Fields(sub), nil
}

// Compounds decodes a TAG_List of compounds member.
func (f Fields) Compounds(name string) ([]Compound, error) {
	raw, ok := f[name]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrMissing, name)
	}
	var list []map[string]any
	if err := raw.Unmarshal(&list); err != nil {
		return nil, fmt.Errorf("%w: field %q: %w", ErrType, name, err)
	}
	out := make([]Compound, len(list))
	for i, m := range list {
		out[i] = m
	}
	return out, nil
}

// Integer decodes an integral member widened to int64.
func (f Fields) Integer(name string) (int64, error) {
	raw, ok := f[name]
	if !ok {
		return 0, fmt.Errorf("%w %q", ErrMissing, name)
	}
	var v any
	if err := raw.Unmarshal(&v); err != nil {
		return 0, fmt.Errorf("%w: field %q: %w", ErrType, name, err)
	}
	return Compound{name: v}.Integer(name)
}

// ByteArray decodes a TAG_Byte_Array member.
func (f Fields) ByteArray(name string) ([]byte, error) {
	raw, ok := f[name]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrMissing, name)
	}
	var v any
	if err := raw.Unmarshal(&v); err != nil {
		return nil, fmt.Errorf("%w: field %q: %w", ErrType, name, err)
	}
	return Compound{name: v}.ByteArray(name)
}

// Merge returns a compound holding the raw members of f overridden by set.
// Members listed in drop are left out.
func (f Fields) Merge(set map[string]any, drop ...string) Compound {
	out := make(Compound, len(f)+len(set))
	for k, v := range f {
		out[k] = v
	}
	for _, k := range drop {
		delete(out, k)
	}
	for k, v := range set {
		out[k] = v
	}
	return out
}
