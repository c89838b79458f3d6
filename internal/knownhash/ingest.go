package knownhash

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"romnibus/models"
)

// gameBlockRegex extracts (name, sha1) pairs from the simple
// "game ( name \"...\" ... rom ( ... sha1 HEX ... ) )" dialect used by
// libretro-database style DAT files — the same regex shape the teacher's
// db_generator.go used to scrape those files directly, now reused as a
// library-level ingest path instead of living only inside a one-shot main().
var gameBlockRegex = regexp.MustCompile(`(?s)game\s*\(\s*name\s+"([^"]+)"[^}]*?rom\s*\([^}]*?sha1\s+([a-fA-F0-9]{40})[^}]*?\)\s*\)`)

// ParseLegacyDAT extracts (name, hash) pairs from a libretro-style DAT file
// and tags each with platform, matching parseDAT in the teacher's
// db_generator.go.
func ParseLegacyDAT(path, platform string) ([]models.Game, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("knownhash: reading %s: %w", path, err)
	}

	var games []models.Game
	for _, match := range gameBlockRegex.FindAllStringSubmatch(string(content), -1) {
		name, hash := match[1], match[2]
		if name == "" || hash == "" {
			continue
		}
		games = append(games, models.Game{
			Name:     name,
			Filename: name,
			Platform: platform,
			Hash:     strings.ToLower(hash),
		})
	}
	return games, nil
}

// PlatformFromFilename derives a platform label from a DAT filename such
// as "Nintendo - Game Boy.dat", matching the teacher's parseFilename.
func PlatformFromFilename(filename string) string {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	if i := strings.Index(base, "("); i != -1 {
		base = base[:i]
	}
	return strings.TrimSpace(base)
}

// IngestDir walks dir for *.dat files, parses each with ParseLegacyDAT, and
// inserts the results into the store — the library form of
// db_generator.go's populateDB, minus the network clone step (that belongs
// to an outer ingestion tool, not this core).
func (s *Store) IngestDir(dir string) (int, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(strings.ToLower(d.Name()), ".dat") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("knownhash: walking %s: %w", dir, err)
	}

	total := 0
	for _, path := range files {
		platform := PlatformFromFilename(filepath.Base(path))
		games, err := ParseLegacyDAT(path, platform)
		if err != nil {
			return total, err
		}
		if err := s.InsertGames(games); err != nil {
			return total, err
		}
		total += len(games)
	}
	return total, nil
}
