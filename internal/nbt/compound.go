// Package nbt exposes decoded NBT compounds with typed field lookups.
// Binary encoding and decoding is delegated to github.com/Tnze/go-mc/nbt.
package nbt

import (
	"errors"
	"fmt"

	mcnbt "github.com/Tnze/go-mc/nbt"
)

var (
	// ErrMissing is returned when a named field is absent.
	ErrMissing = errors.New("missing field")
	// ErrType is returned when a field holds an unexpected tag type.
	ErrType = errors.New("unexpected tag type")
)

// Compound is a decoded NBT compound tag.
type Compound map[string]any

// Decode parses uncompressed NBT data whose root is a compound.
func Decode(data []byte) (Compound, error) {
	var root map[string]any
	if err := mcnbt.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("decode nbt: %w", err)
	}
	return Compound(root), nil
}

// Encode writes c as an unnamed root compound.
func Encode(c Compound) ([]byte, error) {
	data, err := mcnbt.Marshal(map[string]any(c))
	if err != nil {
		return nil, fmt.Errorf("encode nbt: %w", err)
	}
	return data, nil
}

// Has reports whether the field is present.
func (c Compound) Has(name string) bool {
	_, ok := c[name]
	return ok
}

func (c Compound) lookup(name string) (any, error) {
	v, ok := c[name]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrMissing, name)
	}
	return v, nil
}

func typeError(name string, v any) error {
	return fmt.Errorf("%w: field %q is %T", ErrType, name, v)
}

// ByteArray returns a TAG_Byte_Array field.
func (c Compound) ByteArray(name string) ([]byte, error) {
	v, err := c.lookup(name)
	if err != nil {
		return nil, err
	}
	switch b := v.(type) {
	case []byte:
		return b, nil
	case []int8:
		out := make([]byte, len(b))
		for i, x := range b {
			out[i] = byte(x)
		}
		return out, nil
	default:
		return nil, typeError(name, v)
	}
}

// LongArray returns a TAG_Long_Array field.
func (c Compound) LongArray(name string) ([]int64, error) {
	v, err := c.lookup(name)
	if err != nil {
		return nil, err
	}
	switch l := v.(type) {
	case []int64:
		return l, nil
	case []uint64:
		out := make([]int64, len(l))
		for i, x := range l {
			out[i] = int64(x)
		}
		return out, nil
	default:
		return nil, typeError(name, v)
	}
}

// Integer returns any integral tag widened to int64.
func (c Compound) Integer(name string) (int64, error) {
	v, err := c.lookup(name)
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case int8:
		return int64(n), nil
	case uint8:
		return int64(int8(n)), nil
	case int16:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	default:
		return 0, typeError(name, v)
	}
}

// Text returns a TAG_String field.
func (c Compound) Text(name string) (string, error) {
	v, err := c.lookup(name)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", typeError(name, v)
	}
	return s, nil
}

// Compound returns a nested compound field.
func (c Compound) Compound(name string) (Compound, error) {
	v, err := c.lookup(name)
	if err != nil {
		return nil, err
	}
	sub, ok := AsCompound(v)
	if !ok {
		return nil, typeError(name, v)
	}
	return sub, nil
}

// Compounds returns a TAG_List of compounds.
func (c Compound) Compounds(name string) ([]Compound, error) {
	v, err := c.lookup(name)
	if err != nil {
		return nil, err
	}
	switch l := v.(type) {
	case []Compound:
		return l, nil
	case []map[string]any:
		out := make([]Compound, len(l))
		for i, m := range l {
			out[i] = m
		}
		return out, nil
	case []any:
		out := make([]Compound, len(l))
		for i, e := range l {
			sub, ok := AsCompound(e)
			if !ok {
				return nil, fmt.Errorf("%w: element %d of %q is %T", ErrType, i, name, e)
			}
			out[i] = sub
		}
		return out, nil
	default:
		return nil, typeError(name, v)
	}
}

// AsCompound converts a decoded value to a Compound if it is one.
func AsCompound(v any) (Compound, bool) {
	switch m := v.(type) {
	case Compound:
		return m, true
	case map[string]any:
		return m, true
	default:
		return nil, false
	}
}
