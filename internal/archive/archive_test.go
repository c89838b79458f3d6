package archive

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindPriorityOrder(t *testing.T) {
	assert.Less(t, KindNone.Priority(), KindZip.Priority())
	assert.Less(t, KindZip.Priority(), KindTar.Priority())
	assert.Less(t, KindTar.Priority(), KindRar.Priority())
	assert.Less(t, KindRar.Priority(), KindSevenZip.Priority())
	assert.Less(t, KindSevenZip.Priority(), KindOther.Priority())
}

func TestRegistryAdapterForExtension(t *testing.T) {
	reg := NewRegistry(NewZipAdapter(), NewTarAdapter())

	assert.Equal(t, KindZip, reg.AdapterFor("game.zip").Kind())
	assert.Equal(t, KindTar, reg.AdapterFor("game.tar").Kind())
	assert.Equal(t, KindTar, reg.AdapterFor("game.tar.gz").Kind())
	assert.Nil(t, reg.AdapterFor("game.rom"))
}

func TestZipAdapterListAndExtract(t *testing.T) {
	dir := t.TempDir()
	zipPath := filepath.Join(dir, "test.zip")

	f, err := os.Create(zipPath)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	w, err := zw.Create("entry.rom")
	require.NoError(t, err)
	_, err = w.Write([]byte("payload"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	adapter := NewZipAdapter()
	entries, err := adapter.ListEntries(zipPath, ChecksumCRC32)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "entry.rom", entries[0].EntryPath)
	assert.Equal(t, int64(len("payload")), entries[0].Size)
	assert.NotZero(t, entries[0].CRC32)

	data, err := adapter.ExtractBytes(zipPath, "entry.rom")
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
}

func TestParseSevenZipSltListing(t *testing.T) {
	out := `
Path = game.rom
Size = 1024
Attributes = A

Path = subdir
Size = 0
Attributes = D

`
	entries := parseSevenZipSltListing(out)
	require.Len(t, entries, 1)
	assert.Equal(t, "game.rom", entries[0].EntryPath)
	assert.Equal(t, int64(1024), entries[0].Size)
}
