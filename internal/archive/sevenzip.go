package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// sevenZipListMu serialises every ListEntries call across the process: the
// external 7z binary has been observed to return empty listings when
// invoked concurrently, even against different archives.
var sevenZipListMu sync.Mutex

// SevenZipAdapter shells out to the `7z` binary. Listing is serialised
// process-wide and retried with jittered exponential backoff when it comes
// back empty, since spurious empty listings occur even under the mutex.
type SevenZipAdapter struct {
	exec execAdapter
}

func NewSevenZipAdapter(binary string) *SevenZipAdapter {
	if binary == "" {
		binary = "7z"
	}
	return &SevenZipAdapter{exec: execAdapter{kind: KindSevenZip, binary: binary}}
}

func (a *SevenZipAdapter) Kind() Kind { return KindSevenZip }

func (a *SevenZipAdapter) ListEntries(archivePath string, _ ChecksumBitmask) ([]ListedEntry, error) {
	sevenZipListMu.Lock()
	defer sevenZipListMu.Unlock()

	var entries []ListedEntry

	op := func() error {
		out, err := runCapture(a.exec.binary, "l", "-slt", archivePath)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("archive(7z): listing %s: %w", archivePath, err))
		}
		parsed := parseSevenZipSltListing(out)
		if len(parsed) == 0 {
			return fmt.Errorf("archive(7z): empty listing for %s", archivePath)
		}
		entries = parsed
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 100 * time.Millisecond
	policy.Multiplier = 2
	policy.RandomizationFactor = 0.5

	if err := backoff.Retry(op, backoff.WithMaxRetries(policy, 3)); err != nil {
		return nil, err
	}
	return entries, nil
}

func (a *SevenZipAdapter) ExtractEntry(archivePath, entryPath, destinationPath string) error {
	if err := os.MkdirAll(filepath.Dir(destinationPath), 0o755); err != nil {
		return fmt.Errorf("archive(7z): preparing destination for %s: %w", entryPath, err)
	}
	tmpDir, err := extractionTempDir("romnibus-7z")
	if err != nil {
		return err
	}
	defer os.RemoveAll(tmpDir)

	if _, err := runCapture(a.exec.binary, "e", "-y", "-o"+tmpDir, archivePath, entryPath); err != nil {
		return fmt.Errorf("archive(7z): extracting %s from %s: %w", entryPath, archivePath, err)
	}
	extracted := filepath.Join(tmpDir, filepath.Base(entryPath))
	data, err := os.ReadFile(extracted)
	if err != nil {
		return fmt.Errorf("archive(7z): reading extracted %s: %w", entryPath, err)
	}
	return os.WriteFile(destinationPath, data, 0o644)
}

func (a *SevenZipAdapter) ExtractBytes(archivePath, entryPath string) ([]byte, error) {
	tmpDir, err := extractionTempDir("romnibus-7z")
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

// parseSevenZipSltListing parses `7z l -slt` output, a sequence of
// "Key = Value" blocks separated by blank lines, one block per entry.
func parseSevenZipSltListing(out string) []ListedEntry {
	var entries []ListedEntry
	var path string
	var size int64
	var isDir bool
	flush := func() {
		if path != "" && !isDir {
			entries = append(entries, ListedEntry{EntryPath: path, Size: size})
		}
		path, size, isDir = "", 0, false
	}

	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		key, value, ok := strings.Cut(line, " = ")
		if !ok {
			continue
		}
		switch key {
		case "Path":
			path = value
		case "Size":
			if n, err := strconv.ParseInt(value, 10, 64); err == nil {
				size = n
			}
		case "Attributes":
			isDir = strings.Contains(value, "D")
		}
	}
	flush()
	return entries
}
