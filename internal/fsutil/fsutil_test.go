package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckExecutablesPresent(t *testing.T) {
	t.Parallel()

	// sh is a safe bet on any platform these tests run on.
	assert.NoError(t, CheckExecutables("sh"))
}

func TestCheckExecutablesMissing(t *testing.T) {
	t.Parallel()

	err := CheckExecutables("sh", "skybatch-test-missing-binary")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "skybatch-test-missing-binary")
}

func TestRemoveGeneratedDirs(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	for _, dir := range []string{"wheels", "screenshots", "roms_backup"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, dir), 0o755))
	}
	require.NoError(t, os.WriteFile(filepath.Join(root, "wheels", "a.png"), []byte("x"), 0o644))

	removed, err := RemoveGeneratedDirs(root, []string{"wheels", "screenshots", "videos"})
	require.NoError(t, err)
	assert.Equal(t, []string{"wheels", "screenshots"}, removed)

	assert.NoDirExists(t, filepath.Join(root, "wheels"))
	assert.NoDirExists(t, filepath.Join(root, "screenshots"))
	assert.DirExists(t, filepath.Join(root, "roms_backup"), "unrelated directories stay untouched")
}

func TestRemoveGeneratedDirsSkipsPlainFiles(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "media"), []byte("not a dir"), 0o644))

	removed, err := RemoveGeneratedDirs(root, []string{"media"})
	require.NoError(t, err)
	assert.Empty(t, removed)
	assert.FileExists(t, filepath.Join(root, "media"))
}
