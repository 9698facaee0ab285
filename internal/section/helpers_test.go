package section

import (
	"math/rand"
	"strconv"
	"testing"

	"github.com/OCharnyshevich/chunksection/internal/nbt"
	"github.com/OCharnyshevich/chunksection/internal/registry"
)

// testRegistry knows state 0 as air and states 1..4095 as variants of a
// test block.
func testRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	states := make(map[int32]registry.Descriptor, Volume)
	states[0] = registry.Descriptor{Name: "minecraft:air"}
	for i := int32(1); i < Volume; i++ {
		states[i] = registry.Descriptor{
			Name:       "minecraft:test_block",
			Properties: map[string]string{"variant": strconv.Itoa(int(i))},
		}
	}
	reg, err := registry.New(states)
	if err != nil {
		t.Fatalf("registry.New: %v", err)
	}
	return reg
}

// randomStates fills a buffer with n distinct values drawn from 0..limit-1.
func randomStates(rng *rand.Rand, n int, limit int32) []int32 {
	pool := make([]int32, 0, n)
	seen := make(map[int32]bool, n)
	for len(pool) < n {
		v := rng.Int31n(limit)
		if !seen[v] {
			seen[v] = true
			pool = append(pool, v)
		}
	}
	out := make([]int32, Volume)
	for i := range out {
		out[i] = pool[rng.Intn(len(pool))]
	}
	return out
}

// persist pushes a section record through the binary NBT codec.
func persist(t *testing.T, s *Section, dim Dimension) nbt.Compound {
	t.Helper()
	rec, err := s.Record(dim)
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	data, err := nbt.Encode(rec)
	if err != nil {
		t.Fatalf("nbt.Encode: %v", err)
	}
	out, err := nbt.Decode(data)
	if err != nil {
		t.Fatalf("nbt.Decode: %v", err)
	}
	return out
}

func lightPattern(seed byte) []byte {
	out := make([]byte, LightBytes)
	for i := range out {
		out[i] = byte(i) ^ seed
	}
	return out
}
