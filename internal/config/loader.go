package config

import (
	"context"
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/mfeller/skybatch/internal/ctxlog"
	"github.com/mfeller/skybatch/internal/platform"
)

// fileRoot is the decode target for a config file. Every attribute is
// optional; absent attributes leave the default in place.
type fileRoot struct {
	RomRoot     *string        `hcl:"rom_root,optional"`
	CacheRoot   *string        `hcl:"cache_root,optional"`
	LogDir      *string        `hcl:"log_dir,optional"`
	Workers     *int           `hcl:"workers,optional"`
	ScraperBin  *string        `hcl:"scraper_bin,optional"`
	DedupBin    *string        `hcl:"dedup_bin,optional"`
	Sources     *[]string      `hcl:"sources,optional"`
	CleanupDirs *[]string      `hcl:"cleanup_dirs,optional"`
	Systems     []*systemBlock `hcl:"system,block"`
}

// systemBlock declares an additional pseudo-system:
//
//	system "amiga-cd" {
//	  canonical  = "amiga"
//	  extensions = ["*.cue", "*.iso"]
//	}
type systemBlock struct {
	Name       string   `hcl:"name,label"`
	Canonical  string   `hcl:"canonical"`
	Subdir     *string  `hcl:"subdir,optional"`
	Extensions []string `hcl:"extensions,optional"`
}

// Load assembles the run configuration: fixed defaults, overlaid with the
// HCL file at path when path is non-empty, then validated. The returned
// value is never mutated afterwards.
func Load(ctx context.Context, path string) (*Config, error) {
	logger := ctxlog.FromContext(ctx)
	cfg := Defaults()

	if path != "" {
		logger.Debug("Loading config override file.", "path", path)
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// mergeFile parses one HCL file and overlays its attributes onto cfg.
func (c *Config) mergeFile(path string) error {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return fmt.Errorf("failed to parse config file %s: %w", path, diags)
	}

	var root fileRoot
	diags = gohcl.DecodeBody(file.Body, evalContext(), &root)
	if diags.HasErrors() {
		return fmt.Errorf("failed to decode config file %s: %w", path, diags)
	}

	if root.RomRoot != nil {
		c.RomRoot = *root.RomRoot
	}
	if root.CacheRoot != nil {
		c.CacheRoot = *root.CacheRoot
	}
	if root.LogDir != nil {
		c.LogDir = *root.LogDir
	}
	if root.Workers != nil {
		c.Workers = *root.Workers
	}
	if root.ScraperBin != nil {
		c.ScraperBin = *root.ScraperBin
	}
	if root.DedupBin != nil {
		c.DedupBin = *root.DedupBin
	}
	if root.Sources != nil {
		c.Sources = *root.Sources
	}
	if root.CleanupDirs != nil {
		c.CleanupDirs = *root.CleanupDirs
	}

	for _, blk := range root.Systems {
		sys := platform.System{
			Name:       blk.Name,
			Canonical:  blk.Canonical,
			Subdir:     blk.Name,
			Extensions: blk.Extensions,
		}
		if blk.Subdir != nil {
			sys.Subdir = *blk.Subdir
		}
		c.ExtraSystems = append(c.ExtraSystems, sys)
	}
	return nil
}

// evalContext exposes the variables config files may interpolate, so path
// attributes can be written as "${home}/RetroPie/roms".
func evalContext() *hcl.EvalContext {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"home": cty.StringVal(home),
			"tmp":  cty.StringVal(os.TempDir()),
		},
	}
}
