package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "skybatch.hcl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	t.Parallel()

	cfg, err := Load(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, "Skyscraper", cfg.ScraperBin)
	assert.Equal(t, "rdfind", cfg.DedupBin)
	assert.Equal(t,
		[]string{"screenscraper", "thegamesdb", "arcadedb", "openretro", "mobygames"},
		cfg.Sources)
	assert.Contains(t, cfg.CleanupDirs, "wheels")
	assert.Contains(t, cfg.CleanupDirs, "screenshots")
	assert.NotEmpty(t, cfg.RomRoot)
	assert.NotEmpty(t, cfg.CacheRoot)
	assert.Equal(t, os.TempDir(), cfg.LogDir)
}

func TestLoadOverridesFromFile(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
workers     = 3
scraper_bin = "skyscraper-vacuum"
sources     = ["screenscraper", "mobygames"]
rom_root    = "/mnt/roms"
`)

	cfg, err := Load(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, "skyscraper-vacuum", cfg.ScraperBin)
	assert.Equal(t, []string{"screenscraper", "mobygames"}, cfg.Sources)
	assert.Equal(t, "/mnt/roms", cfg.RomRoot)
	// Untouched attributes keep their defaults.
	assert.Equal(t, "rdfind", cfg.DedupBin)
}

func TestLoadInterpolatesHomeAndTmp(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
rom_root = "${home}/games"
log_dir  = "${tmp}"
`)

	cfg, err := Load(context.Background(), path)
	require.NoError(t, err)

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, home+"/games", cfg.RomRoot)
	assert.Equal(t, os.TempDir(), cfg.LogDir)
}

func TestLoadSystemBlocksExtendTable(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
system "amiga-cd" {
  canonical  = "amiga"
  extensions = ["*.cue", "*.iso"]
}
`)

	cfg, err := Load(context.Background(), path)
	require.NoError(t, err)

	table := cfg.Table()
	sys, ok := table.Lookup("amiga-cd")
	require.True(t, ok)
	assert.Equal(t, "amiga", sys.Canonical)
	assert.Equal(t, "amiga-cd", sys.Subdir, "subdir defaults to the block label")
	assert.Equal(t, []string{"*.cue", "*.iso"}, sys.Extensions)
	assert.True(t, sys.Pseudo())

	// Built-ins are still present.
	_, ok = table.Lookup("snes")
	assert.True(t, ok)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"zero workers":  `workers = 0`,
		"empty sources": `sources = []`,
		"empty scraper": `scraper_bin = ""`,
	}
	for name, content := range cases {
		content := content
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			path := writeConfig(t, content)
			_, err := Load(context.Background(), path)
			assert.Error(t, err)
		})
	}
}

func TestLoadRejectsMalformedHCL(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `workers = {`)
	_, err := Load(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse")
}

func TestLoadMissingFileErrors(t *testing.T) {
	t.Parallel()

	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "nope.hcl"))
	assert.Error(t, err)
}
