package pipeline

import (
	"context"
	"crypto/sha1"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"romnibus/internal/config"
	"romnibus/internal/knownhash"
	"romnibus/internal/progress"
	"romnibus/models"
)

func writeDAT(t *testing.T, path, name string, roms ...[2]string) {
	t.Helper()
	body := ""
	for _, r := range roms {
		body += fmt.Sprintf(`<rom name="%s" size="%d" sha1="%s"/>`+"\n", r[0], len(r[0]), r[1])
	}
	content := fmt.Sprintf(`<?xml version="1.0"?>
<datafile>
<header><name>%s</name><description>%s</description></header>
<game name="%s">
%s
</game>
</datafile>`, name, name, name, body)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func hashOf(content string) string {
	return fmt.Sprintf("%x", sha1.Sum([]byte(content)))
}

func TestRunFullySatisfiedProducesNoFixdat(t *testing.T) {
	dir := t.TempDir()

	romContent := "romdata"
	romHash := hashOf(romContent)

	romsDir := filepath.Join(dir, "roms")
	require.NoError(t, os.MkdirAll(romsDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(romsDir, "a.rom"), []byte(romContent), 0o644))

	datPath := filepath.Join(dir, "catalog.dat")
	writeDAT(t, datPath, "Demo Set", [2]string{"a.rom", romHash})

	outDir := filepath.Join(dir, "out")

	opts := config.Options{
		InputDirs: []string{romsDir},
		DATPath:   datPath,
		OutputDir: outDir,
		Fixdat:    true,
		Workers:   1,
	}

	result, err := Run(context.Background(), opts, progress.Discard{})
	require.NoError(t, err)

	assert.Equal(t, 1, result.GamesTotal)
	assert.Equal(t, 0, result.GamesMissing)
	assert.False(t, result.FixdatWrote)
}

func TestRunMissingROMProducesFixdat(t *testing.T) {
	dir := t.TempDir()

	romsDir := filepath.Join(dir, "roms")
	require.NoError(t, os.MkdirAll(romsDir, 0o755))

	datPath := filepath.Join(dir, "catalog.dat")
	writeDAT(t, datPath, "Demo Set", [2]string{"missing.rom", "0000000000000000000000000000000000000a"})

	outDir := filepath.Join(dir, "out")

	opts := config.Options{
		InputDirs: []string{romsDir},
		DATPath:   datPath,
		OutputDir: outDir,
		Fixdat:    true,
		Workers:   1,
	}

	result, err := Run(context.Background(), opts, progress.Discard{})
	require.NoError(t, err)

	assert.Equal(t, 1, result.GamesMissing)
	assert.True(t, result.FixdatWrote)
	assert.FileExists(t, result.FixdatPath)
}

func TestRunTrustsKnownHashAcceleratorOverStaleFileContent(t *testing.T) {
	dir := t.TempDir()

	// The on-disk bytes deliberately do NOT hash to the DAT's recorded
	// fingerprint; only the known-hash accelerator's recorded hash does,
	// so the game is satisfied only if seedKnownHashes actually ran.
	romsDir := filepath.Join(dir, "roms")
	require.NoError(t, os.MkdirAll(romsDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(romsDir, "a.rom"), []byte("irrelevant bytes"), 0o644))

	const trustedHash = "deadbeefdeadbeefdeadbeefdeadbeefdeadbeef"

	datPath := filepath.Join(dir, "catalog.dat")
	writeDAT(t, datPath, "Demo Set", [2]string{"a.rom", trustedHash})

	dbPath := filepath.Join(dir, "known.sqlite3")
	store, err := knownhash.Open(dbPath)
	require.NoError(t, err)
	require.NoError(t, store.InsertGames([]models.Game{
		{Name: "a.rom", Filename: "a.rom", Platform: "NES", Hash: trustedHash},
	}))
	require.NoError(t, store.Close())

	opts := config.Options{
		InputDirs:   []string{romsDir},
		DATPath:     datPath,
		OutputDir:   filepath.Join(dir, "out"),
		Fixdat:      true,
		Workers:     1,
		KnownHashDB: dbPath,
	}

	result, err := Run(context.Background(), opts, progress.Discard{})
	require.NoError(t, err)
	assert.Equal(t, 0, result.GamesMissing)
	assert.False(t, result.FixdatWrote)
}

func TestRunWithoutFixdatFlagSkipsGeneration(t *testing.T) {
	dir := t.TempDir()

	romsDir := filepath.Join(dir, "roms")
	require.NoError(t, os.MkdirAll(romsDir, 0o755))

	datPath := filepath.Join(dir, "catalog.dat")
	writeDAT(t, datPath, "Demo Set", [2]string{"missing.rom", "0000000000000000000000000000000000000a"})

	opts := config.Options{
		InputDirs: []string{romsDir},
		DATPath:   datPath,
		OutputDir: filepath.Join(dir, "out"),
		Fixdat:    false,
		Workers:   1,
	}

	result, err := Run(context.Background(), opts, progress.Discard{})
	require.NoError(t, err)
	assert.False(t, result.FixdatWrote)
	assert.Empty(t, result.FixdatPath)
}
