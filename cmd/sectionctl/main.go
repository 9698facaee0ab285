package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"

	"github.com/OCharnyshevich/chunksection/internal/config"
)

const usage = `usage: sectionctl <command> [flags] [args]

commands:
  inspect <region.mca>     summarise the chunks and sections of a region file
  upgrade                  rewrite 1.12 regions with 1.13 sections
  cache put <region.mca>   store every section of a region in the cache
  cache get <x> <y> <z>    print one cached section
  cache list               list cached sections
  cache drop <x> <z>       remove the cached sections of a column
  cache stats              print cache size
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch cmd, args := os.Args[1], os.Args[2:]; cmd {
	case "inspect":
		err = runInspect(ctx, args)
	case "upgrade":
		err = runUpgrade(ctx, args)
	case "cache":
		err = runCache(ctx, args)
	case "help", "-h", "--help":
		fmt.Fprint(os.Stdout, usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usage)
		os.Exit(2)
	}
	if err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// app is the state shared by every command: merged configuration and logger.
type app struct {
	cfg *config.Config
	log *slog.Logger
}

// newFlagSet registers the common flags on a command's flag set.
func newFlagSet(name string, cfg *config.Config) (*flag.FlagSet, *string) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	configPath := fs.String("config", "sectionctl.yaml", "YAML config file")
	fs.StringVar(&cfg.Dimension, "dimension", cfg.Dimension, "overworld, nether or end")
	fs.StringVar(&cfg.RegistryPath, "registry", cfg.RegistryPath, "minecraft-data blocks.json of the flattened version")
	fs.StringVar(&cfg.CachePath, "cache", cfg.CachePath, "section cache database")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	return fs, configPath
}

// setup parses args, merges the config file under explicit flags and builds
// the logger.
func setup(fs *flag.FlagSet, configPath *string, cfg *config.Config, args []string) (*app, error) {
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	explicit := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { explicit[f.Name] = true })

	fromFile, err := config.Load(*configPath)
	if err != nil {
		return nil, err
	}
	config.Merge(cfg, fromFile, explicit)

	level, err := cfg.Level()
	if err != nil {
		return nil, err
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	return &app{cfg: cfg, log: log}, nil
}
