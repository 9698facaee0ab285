package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/OCharnyshevich/chunksection/internal/anvil"
	"github.com/OCharnyshevich/chunksection/internal/section"
)

func TestIntArgs(t *testing.T) {
	got, err := intArgs([]string{"-3", "0", "17"}, 3)
	if err != nil {
		t.Fatalf("intArgs: %v", err)
	}
	if got[0] != -3 || got[1] != 0 || got[2] != 17 {
		t.Fatalf("unexpected %v", got)
	}
	if _, err := intArgs([]string{"1"}, 2); err == nil {
		t.Fatal("expected arity error")
	}
	if _, err := intArgs([]string{"x", "1"}, 2); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestPrintColumn(t *testing.T) {
	color.NoColor = true

	c := anvil.NewColumn(2, -5, section.Legacy)
	c.Sections = []*section.Section{section.New(3, section.Legacy)}

	var buf bytes.Buffer
	printColumn(&buf, c, false)
	if got := buf.String(); !strings.Contains(got, "chunk (2,-5)") || !strings.Contains(got, "sections 1") {
		t.Fatalf("unexpected summary %q", got)
	}

	buf.Reset()
	printColumn(&buf, c, true)
	if got := buf.String(); !strings.Contains(got, "y=3") || !strings.Contains(got, "words=0") || !strings.Contains(got, "empty") {
		t.Fatalf("unexpected section line %q", got)
	}
}
