package anvil

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/OCharnyshevich/chunksection/internal/registry"
	"github.com/OCharnyshevich/chunksection/internal/section"
)

// Upgrader rewrites legacy region files with flattened sections.
type Upgrader struct {
	Registry    *registry.Registry
	Legacy      registry.LegacyMap
	Dimension   section.Dimension
	// DataVersion is written into upgraded chunks; zero means 1.13.
	DataVersion int
	Workers     int
	Log         *slog.Logger
}

// Stats summarises an upgrade run.
type Stats struct {
	Regions  int64
	Chunks   int64
	Sections int64
	// Unmapped counts cells whose legacy state had no flattened
	// counterpart and became air.
	Unmapped int64
}

// UpgradeColumn converts every section of a legacy column to the modern
// format. Cell order and light arrays are kept. It returns the number of
// cells that could not be mapped.
func UpgradeColumn(c *Column, reg *registry.Registry, m registry.LegacyMap) (*Column, int, error) {
	if c.Format.Editable() {
		return c, 0, nil
	}

	f := section.Modern(reg)
	out := &Column{
		X:           c.X,
		Z:           c.Z,
		DataVersion: f.DataVersion(),
		Format:      f,
		root:        c.root,
		level:       c.level,
		upgraded:    true,
	}

	unmapped := 0
	states := make([]int32, section.Volume)
	for _, s := range c.Sections {
		for i, raw := range s.States() {
			state, ok := m.Resolve(raw)
			if !ok {
				unmapped++
			}
			states[i] = state
		}

		up := section.New(s.Y, f)
		if err := up.SetStates(states); err != nil {
			return nil, 0, err
		}
		up.BlockLight = s.BlockLight
		up.SkyLight = s.SkyLight
		out.Sections = append(out.Sections, up)
	}
	return out, unmapped, nil
}

// UpgradeDir upgrades every region file in src into dst, one region per
// worker.
func (u *Upgrader) UpgradeDir(ctx context.Context, src, dst string) (Stats, error) {
	paths, err := filepath.Glob(filepath.Join(src, "r.*.*.mca"))
	if err != nil {
		return Stats{}, fmt.Errorf("list regions: %w", err)
	}

	var stats Stats
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(u.Workers, 1))
	for _, path := range paths {
		path := path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return u.upgradeRegion(path, dst, &stats)
		})
	}
	if err := g.Wait(); err != nil {
		return stats, err
	}
	return stats, nil
}

func (u *Upgrader) upgradeRegion(path, dst string, stats *Stats) error {
	rx, rz, err := ParseRegionName(path)
	if err != nil {
		return err
	}
	chunks, err := ReadRegion(path)
	if err != nil {
		return err
	}

	out := make(map[Pos][]byte, len(chunks))
	for pos, data := range chunks {
		c, err := DecodeColumn(data, u.Registry)
		if err != nil {
			return fmt.Errorf("region (%d,%d): %w", rx, rz, err)
		}
		up, unmapped, err := UpgradeColumn(c, u.Registry, u.Legacy)
		if err != nil {
			return fmt.Errorf("region (%d,%d): chunk (%d,%d): %w", rx, rz, pos.X, pos.Z, err)
		}
		if u.DataVersion != 0 {
			up.DataVersion = u.DataVersion
		}
		if out[pos], err = up.Encode(u.Dimension); err != nil {
			return fmt.Errorf("region (%d,%d): %w", rx, rz, err)
		}
		atomic.AddInt64(&stats.Sections, int64(len(up.Sections)))
		atomic.AddInt64(&stats.Unmapped, int64(unmapped))
	}

	if err := WriteRegion(dst, rx, rz, out); err != nil {
		return fmt.Errorf("region (%d,%d): %w", rx, rz, err)
	}
	atomic.AddInt64(&stats.Regions, 1)
	atomic.AddInt64(&stats.Chunks, int64(len(chunks)))
	u.log().Info("upgraded region", "region", RegionName(rx, rz), "chunks", len(chunks))
	return nil
}

func (u *Upgrader) log() *slog.Logger {
	if u.Log == nil {
		return slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	return u.Log
}
