//go:build darwin || linux

package mount

import (
	"fmt"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// Same compares device IDs via Stat_t.Dev, the standard unix mechanism for
// identifying a file's backing volume.
func Same(path, outputDir string) (bool, error) {
	var a, b unix.Stat_t
	if err := unix.Stat(nearestExisting(path), &a); err != nil {
		return false, fmt.Errorf("mount: stat %s: %w", path, err)
	}
	if err := unix.Stat(nearestExisting(outputDir), &b); err != nil {
		return false, fmt.Errorf("mount: stat %s: %w", outputDir, err)
	}
	return a.Dev == b.Dev, nil
}

// nearestExisting walks up from path until it finds a directory that
// exists, since the output directory may not have been created yet.
func nearestExisting(path string) string {
	for {
		if _, err := statExists(path); err == nil {
			return path
		}
		parent := filepath.Dir(path)
		if parent == path {
			return path
		}
		path = parent
	}
}

func statExists(path string) (unix.Stat_t, error) {
	var st unix.Stat_t
	err := unix.Stat(path, &st)
	return st, err
}
