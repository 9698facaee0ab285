package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	get "github.com/hashicorp/go-getter"

	"github.com/OCharnyshevich/chunksection/internal/registry"
)

// dmd downloads the minecraft-data block tables sectionctl reads:
// <out>/<platform>-<version>/blocks.json and <out>/<platform>-common/legacy.json.
func main() {
	var (
		base     = flag.String("base", "https://github.com/PrismarineJS/minecraft-data.git", "base url")
		platform = flag.String("platform", "pc", "platform of schemas")
		ver      = flag.String("version", "1.13", "flattened version whose block states are fetched")
		out      = flag.String("o", "./scheme", "output dir path")
	)
	flag.Parse()

	if *out == "" {
		log.Fatal("output dir path required")
	}
	if *platform == "" {
		log.Fatal("platform required")
	}
	if *ver == "" {
		log.Fatal("version required")
	}

	for _, dir := range []string{*ver, "common"} {
		path := filepath.Join(*out, fmt.Sprintf("%s-%s", *platform, dir))
		if err := os.RemoveAll(path); err != nil {
			log.Fatal(err)
		}

		log.Printf("start downloading %s", path)
		// e.g. https://github.com/PrismarineJS/minecraft-data/tree/master/data/pc/1.13
		url := fmt.Sprintf("git::%s//data/%s/%s", *base, *platform, dir)
		if err := get.Get(path, url); err != nil {
			log.Fatal(err)
		}
		log.Printf("done downloading %s", path)
	}

	blocks := filepath.Join(*out, fmt.Sprintf("%s-%s", *platform, *ver), "blocks.json")
	reg, err := registry.LoadFile(blocks)
	if err != nil {
		log.Fatalf("validate %s: %v", blocks, err)
	}
	legacyPath := filepath.Join(*out, fmt.Sprintf("%s-common", *platform), "legacy.json")
	legacy, err := registry.LoadLegacyFile(legacyPath, reg)
	if err != nil {
		log.Fatalf("validate %s: %v", legacyPath, err)
	}
	log.Printf("%d block states, %d legacy mappings", reg.Len(), len(legacy))
}
