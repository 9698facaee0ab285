package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"

	"github.com/OCharnyshevich/chunksection/internal/anvil"
	"github.com/OCharnyshevich/chunksection/internal/config"
	"github.com/OCharnyshevich/chunksection/internal/registry"
	"github.com/OCharnyshevich/chunksection/internal/section"
)

func runUpgrade(ctx context.Context, args []string) error {
	cfg := config.DefaultConfig()
	fs, configPath := newFlagSet("upgrade", cfg)
	fs.IntVar(&cfg.SourceVersion, "source-version", cfg.SourceVersion, "data version of the input regions")
	fs.IntVar(&cfg.TargetVersion, "target-version", cfg.TargetVersion, "data version to write")
	fs.StringVar(&cfg.RegionDir, "region-dir", cfg.RegionDir, "directory of the input .mca files")
	fs.StringVar(&cfg.OutputDir, "output-dir", cfg.OutputDir, "directory for the upgraded .mca files")
	fs.StringVar(&cfg.LegacyPath, "legacy", cfg.LegacyPath, "minecraft-data legacy.json")
	fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "regions upgraded in parallel")
	a, err := setup(fs, configPath, cfg, args)
	if err != nil {
		return err
	}

	if section.FormatFor(cfg.SourceVersion, nil).Editable() {
		return fmt.Errorf("upgrade: source version %d is already flattened", cfg.SourceVersion)
	}
	if !section.FormatFor(cfg.TargetVersion, nil).Editable() {
		return fmt.Errorf("upgrade: target version %d is not flattened", cfg.TargetVersion)
	}
	dim, err := a.dimension()
	if err != nil {
		return err
	}

	reg, err := registry.LoadFile(cfg.RegistryPath)
	if err != nil {
		return err
	}
	legacy, err := registry.LoadLegacyFile(cfg.LegacyPath, reg)
	if err != nil {
		return err
	}
	a.log.Info("loaded block tables", "states", reg.Len(), "legacy", len(legacy))

	u := &anvil.Upgrader{
		Registry:    reg,
		Legacy:      legacy,
		Dimension:   dim,
		DataVersion: cfg.TargetVersion,
		Workers:     cfg.Workers,
		Log:         a.log,
	}
	start := time.Now()
	stats, err := u.UpgradeDir(ctx, cfg.RegionDir, cfg.OutputDir)
	if err != nil {
		return err
	}

	color.New(color.FgGreen).Fprintf(os.Stdout, "upgraded %d regions, %d chunks, %d sections in %s\n",
		stats.Regions, stats.Chunks, stats.Sections, time.Since(start).Round(time.Millisecond))
	if stats.Unmapped > 0 {
		color.New(color.FgYellow).Fprintf(os.Stdout, "%d cells had no flattened state and became air\n", stats.Unmapped)
	}
	return nil
}
