package registry

import (
	"strings"
	"testing"
)

const sampleBlocks = `[
  {"id": 0, "name": "air", "minStateId": 0, "maxStateId": 0, "states": []},
  {"id": 1, "name": "stone", "minStateId": 1, "maxStateId": 1, "states": []},
  {"id": 9, "name": "grass_block", "minStateId": 8, "maxStateId": 9,
   "states": [{"name": "snowy", "type": "bool", "num_values": 2}]},
  {"id": 35, "name": "oak_log", "minStateId": 72, "maxStateId": 74,
   "states": [{"name": "axis", "type": "enum", "num_values": 3, "values": ["x", "y", "z"]}]},
  {"id": 50, "name": "wheat", "minStateId": 3051, "maxStateId": 3058,
   "states": [{"name": "age", "type": "int", "num_values": 8}]},
  {"id": 60, "name": "furnace", "minStateId": 3066, "maxStateId": 3073,
   "states": [
     {"name": "facing", "type": "direction", "num_values": 4, "values": ["north", "south", "west", "east"]},
     {"name": "lit", "type": "bool", "num_values": 2}
   ]}
]`

func loadSample(t *testing.T) *Registry {
	t.Helper()
	reg, err := Load(strings.NewReader(sampleBlocks))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return reg
}

func TestLoadExpandsStates(t *testing.T) {
	reg := loadSample(t)
	if reg.Len() != 1+1+2+3+8+8 {
		t.Fatalf("expected 23 states, got %d", reg.Len())
	}

	tests := []struct {
		state int32
		key   string
	}{
		{0, "minecraft:air"},
		{1, "minecraft:stone"},
		{8, "minecraft:grass_block[snowy=true]"},
		{9, "minecraft:grass_block[snowy=false]"},
		{73, "minecraft:oak_log[axis=y]"},
		{3055, "minecraft:wheat[age=4]"},
		// facing=south (1), lit=false (1): 3066 + 1*2 + 1
		{3069, "minecraft:furnace[facing=south,lit=false]"},
	}
	for _, tt := range tests {
		d, ok := reg.Descriptor(tt.state)
		if !ok {
			t.Fatalf("state %d not found", tt.state)
		}
		if d.Key() != tt.key {
			t.Errorf("state %d: expected %s, got %s", tt.state, tt.key, d.Key())
		}
		id, ok := reg.StateID(d)
		if !ok || id != tt.state {
			t.Errorf("StateID(%s) = %d, %v, want %d", tt.key, id, ok, tt.state)
		}
	}
}

func TestStateIDAcceptsBareName(t *testing.T) {
	reg := loadSample(t)
	id, ok := reg.StateID(Descriptor{Name: "oak_log", Properties: map[string]string{"axis": "z"}})
	if !ok || id != 74 {
		t.Fatalf("expected 74, got %d (%v)", id, ok)
	}
}

func TestLoadRejectsInvalidDocument(t *testing.T) {
	bad := []string{
		`{"name": "stone"}`,
		`[{"name": "stone", "minStateId": -1, "maxStateId": 1}]`,
		`[{"name": "stone", "minStateId": 1}]`,
		`[{"name": "lever", "minStateId": 0, "maxStateId": 0,
		   "states": [{"name": "powered", "type": "float", "num_values": 2}]}]`,
	}
	for _, doc := range bad {
		if _, err := Load(strings.NewReader(doc)); err == nil {
			t.Errorf("expected validation error for %s", doc)
		}
	}
}

func TestLoadRejectsInconsistentRange(t *testing.T) {
	doc := `[{"name": "grass_block", "minStateId": 8, "maxStateId": 10,
	  "states": [{"name": "snowy", "type": "bool", "num_values": 2}]}]`
	if _, err := Load(strings.NewReader(doc)); err == nil {
		t.Fatal("expected range error")
	}
}

func TestNewRejectsDuplicates(t *testing.T) {
	_, err := New(map[int32]Descriptor{
		1: {Name: "stone"},
		2: {Name: "minecraft:stone"},
	})
	if err == nil {
		t.Fatal("expected duplicate error")
	}
}
