// Package config builds the immutable run configuration: fixed defaults,
// optionally overridden by an HCL file, validated once at startup and then
// passed by reference into every component. There are no ambient globals;
// whoever holds a *Config holds the whole configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mfeller/skybatch/internal/platform"
)

// Config holds every tunable the run needs. It is treated as read-only
// after Load returns.
type Config struct {
	// RomRoot is the directory containing one subdirectory per system.
	RomRoot string

	// CacheRoot is the scraper's shared cache, written concurrently by
	// the online fan-out and deduplicated afterwards.
	CacheRoot string

	// LogDir receives the per-run combined child output log.
	LogDir string

	// Workers is the concurrency ceiling for each phase's pool.
	Workers int

	// ScraperBin and DedupBin name the external executables, resolved
	// via the search path during pre-flight.
	ScraperBin string
	DedupBin   string

	// Sources is the ordered list of online metadata providers; the
	// fan-out phase dispatches one scrape per entry.
	Sources []string

	// CleanupDirs are the generated-artifact directory names removed
	// from the system's ROM directory before any phase runs.
	CleanupDirs []string

	// ExtraSystems holds pseudo-systems declared in the config file,
	// merged over the built-in platform table.
	ExtraSystems []platform.System
}

// Defaults returns the fixed default configuration.
func Defaults() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		// Without a resolvable home dir the path defaults are useless
		// anyway; fall back to the working directory.
		home = "."
	}
	return &Config{
		RomRoot:    filepath.Join(home, "RetroPie", "roms"),
		CacheRoot:  filepath.Join(home, ".skyscraper", "cache"),
		LogDir:     os.TempDir(),
		Workers:    8,
		ScraperBin: "Skyscraper",
		DedupBin:   "rdfind",
		Sources: []string{
			"screenscraper",
			"thegamesdb",
			"arcadedb",
			"openretro",
			"mobygames",
		},
		CleanupDirs: []string{
			"media",
			"wheels",
			"screenshots",
			"covers",
			"marquees",
			"videos",
		},
	}
}

// validate checks the assembled configuration for values no run can work
// with. It runs after defaults and file overrides are merged.
func (c *Config) validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be >= 1, got %d", c.Workers)
	}
	if c.ScraperBin == "" {
		return fmt.Errorf("scraper_bin must not be empty")
	}
	if c.DedupBin == "" {
		return fmt.Errorf("dedup_bin must not be empty")
	}
	if len(c.Sources) == 0 {
		return fmt.Errorf("sources must name at least one online provider")
	}
	for _, s := range c.ExtraSystems {
		if s.Canonical == "" {
			return fmt.Errorf("system %q: canonical must not be empty", s.Name)
		}
	}
	return nil
}

// Table returns the platform table for this run: the built-in systems
// plus any declared in the config file.
func (c *Config) Table() platform.Table {
	t := platform.Default()
	for _, s := range c.ExtraSystems {
		t[s.Name] = s
	}
	return t
}
