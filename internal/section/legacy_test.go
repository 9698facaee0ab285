package section

import (
	"bytes"
	"errors"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/OCharnyshevich/chunksection/internal/nbt"
	"github.com/OCharnyshevich/chunksection/internal/palette"
)

func TestSetNibble(t *testing.T) {
	arr := make([]byte, 4)

	// Even index: low nibble.
	setNibble(arr, 0, 0x0A)
	if arr[0] != 0x0A {
		t.Fatalf("expected 0x0A, got 0x%02X", arr[0])
	}

	// Odd index: high nibble.
	setNibble(arr, 1, 0x0B)
	if arr[0] != 0xBA {
		t.Fatalf("expected 0xBA, got 0x%02X", arr[0])
	}

	setNibble(arr, 4, 0x03)
	setNibble(arr, 5, 0x07)
	if arr[2] != 0x73 {
		t.Fatalf("expected 0x73, got 0x%02X", arr[2])
	}

	for i := 0; i < 8; i++ {
		if got, want := nibble(arr, i), []byte{0xA, 0xB, 0, 0, 0x3, 0x7, 0, 0}[i]; got != want {
			t.Fatalf("nibble %d: expected 0x%X, got 0x%X", i, want, got)
		}
	}
}

func TestNibbleHalfSelection(t *testing.T) {
	var states [Volume]int32
	states[0] = 0x0B
	states[1] = 0x03

	blocks, data, err := encodeLegacy(&states)
	if err != nil {
		t.Fatalf("encodeLegacy: %v", err)
	}
	if data[0] != 0x3B {
		t.Fatalf("expected Data[0] = 0x3B, got 0x%02X", data[0])
	}

	// The decode rule reads the same halves back.
	s := New(0, Legacy)
	if err := s.load(palette.Identity{}, packLegacy(blocks, data, palette.IdentityBits)); err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.BlockStateAt(0, 0, 0) != 0x0B || s.BlockStateAt(1, 0, 0) != 0x03 {
		t.Fatalf("expected 0xB and 0x3, got 0x%X and 0x%X", s.BlockStateAt(0, 0, 0), s.BlockStateAt(1, 0, 0))
	}

	// Changing one cell leaves its neighbour's nibble alone.
	states[0] = 0x0F
	_, data, _ = encodeLegacy(&states)
	if data[0] != 0x3F {
		t.Fatalf("expected Data[0] = 0x3F, got 0x%02X", data[0])
	}
	states[1] = 0x00
	_, data, _ = encodeLegacy(&states)
	if data[0] != 0x0F {
		t.Fatalf("expected Data[0] = 0x0F, got 0x%02X", data[0])
	}
}

func TestLegacyDecodeKnownRecord(t *testing.T) {
	blocks := make([]byte, Volume)
	data := make([]byte, Volume/2)

	// Stone (1) at (0,0,0), granite (1:1) at (1,0,0), oak log facing
	// east-west (17:4) at (3,2,5).
	blocks[Index(0, 0, 0)] = 1
	blocks[Index(1, 0, 0)] = 1
	setNibble(data, Index(1, 0, 0), 1)
	blocks[Index(3, 2, 5)] = 17
	setNibble(data, Index(3, 2, 5), 4)

	s, err := Read(nbt.Compound{
		"Y":          int8(4),
		"Blocks":     blocks,
		"Data":       data,
		"BlockLight": make([]byte, LightBytes),
		"SkyLight":   lightPattern(0x5A),
	}, Legacy)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	tests := []struct {
		x, y, z int
		want    int32
	}{
		{0, 0, 0, 0x10},
		{1, 0, 0, 0x11},
		{3, 2, 5, 17<<4 | 4},
		{2, 0, 0, 0},
		{5, 2, 3, 0},
	}
	for _, tt := range tests {
		if got := s.BlockStateAt(tt.x, tt.y, tt.z); got != tt.want {
			t.Errorf("BlockStateAt(%d,%d,%d) = 0x%X, want 0x%X", tt.x, tt.y, tt.z, got, tt.want)
		}
	}
	if s.Y != 4 {
		t.Fatalf("expected Y 4, got %d", s.Y)
	}
	if !bytes.Equal(s.SkyLight, lightPattern(0x5A)) {
		t.Fatal("sky light not copied verbatim")
	}
	if s.Palette().BitsPerBlock() != 13 {
		t.Fatalf("expected identity width 13, got %d", s.Palette().BitsPerBlock())
	}
}

func TestLegacyRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for round := 0; round < 5; round++ {
		states := make([]int32, Volume)
		for i := range states {
			states[i] = rng.Int31n(1 << 12)
		}

		s := New(int8(round), Legacy)
		s.BlockLight = lightPattern(byte(round))
		if err := s.SetStates(states); err != nil {
			t.Fatalf("SetStates: %v", err)
		}

		got, err := Read(persist(t, s, Overworld), Legacy)
		if err != nil {
			t.Fatalf("Read: %v", err)
		}
		if diff := cmp.Diff(states, got.States()); diff != "" {
			t.Fatalf("round %d: states mismatch (-want +got):\n%s", round, diff)
		}
		if !bytes.Equal(got.BlockLight, s.BlockLight) {
			t.Fatalf("round %d: block light mismatch", round)
		}
		if got.Y != int8(round) {
			t.Fatalf("expected Y %d, got %d", round, got.Y)
		}
	}
}

func TestLegacyRecordFields(t *testing.T) {
	s := New(0, Legacy)
	states := make([]int32, Volume)
	states[Index(0, 0, 0)] = 0x12B
	states[Index(1, 0, 0)] = 0x013
	if err := s.SetStates(states); err != nil {
		t.Fatal(err)
	}

	rec, err := s.Record(Overworld)
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	blocks, _ := rec.ByteArray("Blocks")
	data, _ := rec.ByteArray("Data")
	if len(blocks) != Volume || len(data) != Volume/2 {
		t.Fatalf("unexpected array sizes %d/%d", len(blocks), len(data))
	}
	if blocks[0] != 0x12 || blocks[1] != 0x01 {
		t.Fatalf("expected ids 0x12 0x01, got 0x%02X 0x%02X", blocks[0], blocks[1])
	}
	if data[0] != 0x3B {
		t.Fatalf("expected Data[0] = 0x3B, got 0x%02X", data[0])
	}
	if rec.Has("BlockStates") || rec.Has("Palette") {
		t.Fatal("legacy record must not carry a palette")
	}
}

func TestLegacyWrongArraySize(t *testing.T) {
	_, err := Read(nbt.Compound{
		"Y":          int8(0),
		"Blocks":     make([]byte, 100),
		"Data":       make([]byte, Volume/2),
		"BlockLight": make([]byte, LightBytes),
	}, Legacy)
	if !errors.Is(err, ErrFormat) {
		t.Fatalf("expected ErrFormat, got %v", err)
	}
}

func TestLegacyMissingData(t *testing.T) {
	_, err := Read(nbt.Compound{
		"Y":          int8(0),
		"Blocks":     make([]byte, Volume),
		"BlockLight": make([]byte, LightBytes),
	}, Legacy)
	if !errors.Is(err, ErrFormat) {
		t.Fatalf("expected ErrFormat, got %v", err)
	}
	if !errors.Is(err, nbt.ErrMissing) {
		t.Fatalf("expected wrapped nbt.ErrMissing, got %v", err)
	}
}

func TestLegacyStateOutsideDomain(t *testing.T) {
	s := New(0, Legacy)
	states := make([]int32, Volume)
	states[10] = 0x1000
	if err := s.SetStates(states); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Record(Overworld); !errors.Is(err, ErrInvariant) {
		t.Fatalf("expected ErrInvariant, got %v", err)
	}
}

func TestLegacySetBlockAtUnsupported(t *testing.T) {
	s := New(0, Legacy)
	if err := s.SetBlockAt(0, 0, 0, 0x10); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
	if s.BlockStateAt(0, 0, 0) != 0 {
		t.Fatal("rejected edit must not change the section")
	}
}
