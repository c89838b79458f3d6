//go:build windows

package mount

import "path/filepath"

// Same compares volume names (e.g. "C:"), since Windows has no direct
// analogue to a unix device ID reachable without extra syscalls here.
func Same(path, outputDir string) (bool, error) {
	return filepath.VolumeName(path) == filepath.VolumeName(outputDir), nil
}
