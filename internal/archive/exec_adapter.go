package archive

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// extractionTempDir creates a process-private scratch directory under the
// system temp root, named with a random UUID rather than os.MkdirTemp's
// pattern suffix so concurrent extractions from the same archive never
// collide even if two adapters race on the same entry name.
func extractionTempDir(prefix string) (string, error) {
	dir := filepath.Join(os.TempDir(), prefix+"-"+uuid.NewString())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("archive: creating scratch dir %s: %w", dir, err)
	}
	return dir, nil
}

// execAdapter carries the binary name shared by the RAR and 7z adapters,
// which both shell out rather than link a pure-Go decoder: neither format
// has one anywhere in the ecosystem this project draws on.
type execAdapter struct {
	kind   Kind
	binary string
}

// RarAdapter shells out to `unrar` for listing and extraction.
type RarAdapter struct{ exec execAdapter }

func NewRarAdapter(binary string) *RarAdapter {
	if binary == "" {
		binary = "unrar"
	}
	return &RarAdapter{exec: execAdapter{kind: KindRar, binary: binary}}
}

func (a *RarAdapter) Kind() Kind { return KindRar }

func (a *RarAdapter) ListEntries(archivePath string, _ ChecksumBitmask) ([]ListedEntry, error) {
	out, err := runCapture(a.exec.binary, "lb", "-p-", archivePath)
	if err != nil {
		return nil, fmt.Errorf("archive(rar): listing %s: %w", archivePath, err)
	}
	var entries []ListedEntry
	for _, line := range splitNonEmptyLines(out) {
		entries = append(entries, ListedEntry{EntryPath: line})
	}
	return entries, nil
}

func (a *RarAdapter) ExtractEntry(archivePath, entryPath, destinationPath string) error {
	if err := os.MkdirAll(filepath.Dir(destinationPath), 0o755); err != nil {
		return fmt.Errorf("archive(rar): preparing destination for %s: %w", entryPath, err)
	}
	tmpDir, err := extractionTempDir("romnibus-rar")
	if err != nil {
		return err
	}
	defer os.RemoveAll(tmpDir)

	if _, err := runCapture(a.exec.binary, "e", "-p-", "-o+", archivePath, entryPath, tmpDir+string(filepath.Separator)); err != nil {
		return fmt.Errorf("archive(rar): extracting %s from %s: %w", entryPath, archivePath, err)
	}
	extracted := filepath.Join(tmpDir, filepath.Base(entryPath))
	data, err := os.ReadFile(extracted)
	if err != nil {
		return fmt.Errorf("archive(rar): reading extracted %s: %w", entryPath, err)
	}
	return os.WriteFile(destinationPath, data, 0o644)
}

func (a *RarAdapter) ExtractBytes(archivePath, entryPath string) ([]byte, error) {
	tmpDir, err := extractionTempDir("romnibus-rar")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(tmpDir)

	dest := filepath.Join(tmpDir, "out")
	if err := a.ExtractEntry(archivePath, entryPath, dest); err != nil {
		return nil, err
	}
	return os.ReadFile(dest)
}

func runCapture(binary string, args ...string) (string, error) {
	cmd := exec.Command(binary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%s %s: %w: %s", binary, strings.Join(args, " "), err, stderr.String())
	}
	return stdout.String(), nil
}

func splitNonEmptyLines(s string) []string {
	var lines []string
	for _, l := range strings.Split(s, "\n") {
		l = strings.TrimSpace(l)
		if l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}
