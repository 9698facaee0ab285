package nbt

import (
	"errors"
	"testing"
)

func TestFieldsRoundTrip(t *testing.T) {
	data, err := Encode(Compound{
		"DataVersion": int32(1343),
		"Level": map[string]any{
			"xPos":          int32(-3),
			"InhabitedTime": int64(99),
			"Sections": []map[string]any{
				{"Y": int8(0), "Blocks": []byte{1, 2}},
				{"Y": int8(1), "Blocks": []byte{3}},
			},
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	root, err := DecodeFields(data)
	if err != nil {
		t.Fatalf("DecodeFields: %v", err)
	}
	if dv, err := root.Integer("DataVersion"); err != nil || dv != 1343 {
		t.Fatalf("DataVersion = %d, %v", dv, err)
	}
	level, err := root.Fields("Level")
	if err != nil {
		t.Fatalf("Level: %v", err)
	}
	if x, err := level.Integer("xPos"); err != nil || x != -3 {
		t.Fatalf("xPos = %d, %v", x, err)
	}
	sections, err := level.Compounds("Sections")
	if err != nil || len(sections) != 2 {
		t.Fatalf("Sections = %v, %v", sections, err)
	}
	if y, _ := sections[1].Integer("Y"); y != 1 {
		t.Fatalf("expected Y 1, got %d", y)
	}

	merged := root.Merge(map[string]any{
		"Level": map[string]any(level.Merge(map[string]any{"xPos": int32(4)}, "Sections")),
	})
	out, err := Encode(merged)
	if err != nil {
		t.Fatalf("Encode merged: %v", err)
	}
	back, err := Decode(out)
	if err != nil {
		t.Fatal(err)
	}
	lv, err := back.Compound("Level")
	if err != nil {
		t.Fatal(err)
	}
	if x, _ := lv.Integer("xPos"); x != 4 {
		t.Fatalf("expected xPos 4, got %d", x)
	}
	if n, _ := lv.Integer("InhabitedTime"); n != 99 {
		t.Fatalf("expected untouched InhabitedTime 99, got %d", n)
	}
	if lv.Has("Sections") {
		t.Fatal("dropped member must not be written")
	}
}

func TestFieldsMissing(t *testing.T) {
	f := Fields{}
	if _, err := f.Fields("Level"); !errors.Is(err, ErrMissing) {
		t.Fatalf("expected ErrMissing, got %v", err)
	}
	if _, err := f.Compounds("Sections"); !errors.Is(err, ErrMissing) {
		t.Fatalf("expected ErrMissing, got %v", err)
	}
	if _, err := f.Integer("xPos"); !errors.Is(err, ErrMissing) {
		t.Fatalf("expected ErrMissing, got %v", err)
	}
}
