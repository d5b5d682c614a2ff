// Package fsutil provides file system utility functions.
package fsutil

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// CheckExecutables verifies that every named binary resolves on the
// executable search path. It returns an error naming the first one that
// does not, so a run can stop before dispatching anything.
func CheckExecutables(names ...string) error {
	for _, name := range names {
		if _, err := exec.LookPath(name); err != nil {
			return fmt.Errorf("required executable %q not found in PATH: %w", name, err)
		}
	}
	return nil
}

// RemoveGeneratedDirs deletes the named subdirectories under root if they
// exist, returning the ones actually removed. Entries that are missing or
// are plain files are left alone; anything not in names is never touched.
func RemoveGeneratedDirs(root string, names []string) ([]string, error) {
	var removed []string
	for _, name := range names {
		dir := filepath.Join(root, name)
		info, err := os.Stat(dir)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return removed, fmt.Errorf("failed to inspect %s: %w", dir, err)
		}
		if !info.IsDir() {
			continue
		}
		if err := os.RemoveAll(dir); err != nil {
			return removed, fmt.Errorf("failed to remove %s: %w", dir, err)
		}
		removed = append(removed, name)
	}
	return removed, nil
}
