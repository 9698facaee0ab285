package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/fatih/color"

	"github.com/OCharnyshevich/chunksection/internal/anvil"
	"github.com/OCharnyshevich/chunksection/internal/config"
	"github.com/OCharnyshevich/chunksection/internal/registry"
	"github.com/OCharnyshevich/chunksection/internal/section"
)

func runInspect(ctx context.Context, args []string) error {
	cfg := config.DefaultConfig()
	fs, configPath := newFlagSet("inspect", cfg)
	verbose := fs.Bool("v", false, "print every section")
	a, err := setup(fs, configPath, cfg, args)
	if err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("inspect: expected one region file")
	}

	reg, err := a.optionalRegistry()
	if err != nil {
		return err
	}
	chunks, err := anvil.ReadRegion(fs.Arg(0))
	if err != nil {
		return err
	}

	positions := make([]anvil.Pos, 0, len(chunks))
	for pos := range chunks {
		positions = append(positions, pos)
	}
	sort.Slice(positions, func(i, j int) bool {
		if positions[i].Z != positions[j].Z {
			return positions[i].Z < positions[j].Z
		}
		return positions[i].X < positions[j].X
	})

	for _, pos := range positions {
		if err := ctx.Err(); err != nil {
			return err
		}
		c, err := anvil.DecodeColumn(chunks[pos], reg)
		if err != nil {
			color.New(color.FgRed).Fprintf(os.Stdout, "chunk (%d,%d): %v\n", pos.X, pos.Z, err)
			continue
		}
		printColumn(os.Stdout, c, *verbose)
	}
	return nil
}

func printColumn(w io.Writer, c *anvil.Column, verbose bool) {
	title := color.New(color.FgCyan, color.Bold)
	title.Fprintf(w, "chunk (%d,%d)", c.X, c.Z)
	fmt.Fprintf(w, "  format %s  data version %d  sections %d\n", c.Format.Name(), c.DataVersion, len(c.Sections))
	if !verbose {
		return
	}
	for _, s := range c.Sections {
		distinct := make(map[int32]struct{})
		for _, st := range s.States() {
			distinct[st] = struct{}{}
		}
		bits := 0
		if p := s.Palette(); p != nil {
			bits = p.BitsPerBlock()
		}
		fmt.Fprintf(w, "  y=%-3d bits=%-2d words=%-4d states=%-4d sky=%v", s.Y, bits, len(s.Words()), len(distinct), s.SkyLight != nil)
		if s.IsEmpty() {
			color.New(color.FgYellow).Fprint(w, " empty")
		}
		fmt.Fprintln(w)
	}
}

// optionalRegistry loads the registry when its file exists.
func (a *app) optionalRegistry() (*registry.Registry, error) {
	if _, err := os.Stat(a.cfg.RegistryPath); errors.Is(err, os.ErrNotExist) {
		a.log.Debug("no block registry, flattened chunks will not decode", "path", a.cfg.RegistryPath)
		return nil, nil
	}
	return registry.LoadFile(a.cfg.RegistryPath)
}

func (a *app) dimension() (section.Dimension, error) {
	return section.ParseDimension(a.cfg.Dimension)
}
