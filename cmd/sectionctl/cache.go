package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/fatih/color"

	"github.com/OCharnyshevich/chunksection/internal/anvil"
	"github.com/OCharnyshevich/chunksection/internal/config"
	"github.com/OCharnyshevich/chunksection/internal/section"
	"github.com/OCharnyshevich/chunksection/internal/store"
)

func runCache(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("cache: expected put, get, list, drop or stats")
	}
	sub, args := args[0], args[1:]

	cfg := config.DefaultConfig()
	fs, configPath := newFlagSet("cache "+sub, cfg)
	dataVersion := fs.Int("data-version", section.DataVersion1_13, "data version of the cached section (get)")
	a, err := setup(fs, configPath, cfg, args)
	if err != nil {
		return err
	}
	dim, err := a.dimension()
	if err != nil {
		return err
	}

	st, err := store.Open(cfg.CachePath, a.log)
	if err != nil {
		return err
	}
	defer st.Close()

	switch sub {
	case "put":
		if fs.NArg() != 1 {
			return errors.New("cache put: expected one region file")
		}
		return a.cachePut(ctx, st, dim, fs.Arg(0))
	case "get":
		coords, err := intArgs(fs.Args(), 3)
		if err != nil {
			return fmt.Errorf("cache get: %w", err)
		}
		k := store.Key{Dimension: dim, X: int32(coords[0]), Y: int8(coords[1]), Z: int32(coords[2]), DataVersion: *dataVersion}
		s, err := st.Get(ctx, k)
		if err != nil {
			return err
		}
		c := anvil.NewColumn(k.X, k.Z, s.Format())
		c.Sections = []*section.Section{s}
		printColumn(os.Stdout, c, true)
		return nil
	case "list":
		keys, err := st.Keys(ctx, dim)
		if err != nil {
			return err
		}
		for _, k := range keys {
			fmt.Fprintf(os.Stdout, "%6d %4d %6d  v%d\n", k.X, k.Y, k.Z, k.DataVersion)
		}
		return nil
	case "drop":
		coords, err := intArgs(fs.Args(), 2)
		if err != nil {
			return fmt.Errorf("cache drop: %w", err)
		}
		n, err := st.Delete(ctx, dim, int32(coords[0]), int32(coords[1]))
		if err != nil {
			return err
		}
		color.New(color.FgGreen).Fprintf(os.Stdout, "dropped %d sections\n", n)
		return nil
	case "stats":
		stats, err := st.Stats(ctx)
		if err != nil {
			return err
		}
		ratio := 0.0
		if stats.RawBytes > 0 {
			ratio = float64(stats.StoredBytes) / float64(stats.RawBytes)
		}
		fmt.Fprintf(os.Stdout, "sections %d  raw %d bytes  stored %d bytes  ratio %.2f\n",
			stats.Sections, stats.RawBytes, stats.StoredBytes, ratio)
		return nil
	default:
		return fmt.Errorf("cache: unknown subcommand %q", sub)
	}
}

func (a *app) cachePut(ctx context.Context, st *store.Store, dim section.Dimension, path string) error {
	reg, err := a.optionalRegistry()
	if err != nil {
		return err
	}
	chunks, err := anvil.ReadRegion(path)
	if err != nil {
		return err
	}

	var n int
	for pos, data := range chunks {
		c, err := anvil.DecodeColumn(data, reg)
		if err != nil {
			return err
		}
		for _, s := range c.Sections {
			k := store.Key{Dimension: dim, X: c.X, Z: c.Z, Y: s.Y, DataVersion: c.Format.DataVersion()}
			if err := st.Put(ctx, k, s); err != nil {
				return fmt.Errorf("chunk (%d,%d): %w", pos.X, pos.Z, err)
			}
			n++
		}
	}
	color.New(color.FgGreen).Fprintf(os.Stdout, "cached %d sections from %d chunks\n", n, len(chunks))
	return nil
}

func intArgs(args []string, n int) ([]int, error) {
	if len(args) != n {
		return nil, fmt.Errorf("expected %d integer arguments, got %d", n, len(args))
	}
	out := make([]int, n)
	for i, s := range args {
		v, err := strconv.Atoi(s)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
