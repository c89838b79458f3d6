package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"romnibus/internal/datmodel"
	"romnibus/internal/fingerprint"
	"romnibus/internal/indexer"
)

func TestMatchProducesCandidateForSatisfiedGame(t *testing.T) {
	d := datmodel.DAT{Games: []datmodel.Game{
		{
			Name: "Game A",
			ROMs: []datmodel.ROM{
				{Name: "a.rom", Size: 4, Fingerprint: "hash-a"},
			},
		},
	}}

	idx := indexer.Index{
		fingerprint.Hash("hash-a"): {{Path: "/roms/a.rom", Size: 4}},
	}

	candidates := Match(d, idx)
	require.Contains(t, candidates, "Game A")
	require.Len(t, candidates["Game A"], 1)
	assert.Equal(t, "hash-a", candidates["Game A"][0].Bindings[0].Fingerprint)
}

func TestMatchOmitsGamesWithNoSatisfiedROM(t *testing.T) {
	d := datmodel.DAT{Games: []datmodel.Game{
		{
			Name: "Game B",
			ROMs: []datmodel.ROM{
				{Name: "b.rom", Size: 4, Fingerprint: "missing-hash"},
			},
		},
	}}

	candidates := Match(d, indexer.Index{})
	assert.Empty(t, candidates)
}

func TestCandidatesIncludesUnsatisfiedROMsWithNilFile(t *testing.T) {
	g := datmodel.Game{
		Name: "Game C",
		ROMs: []datmodel.ROM{
			{Name: "c1.rom", Fingerprint: "hash-1"},
			{Name: "c2.rom", Fingerprint: "hash-2"},
		},
	}

	idx := indexer.Index{
		fingerprint.Hash("hash-1"): {{Path: "/roms/c1.rom"}},
	}

	out := Candidates(g, idx)
	require.Len(t, out, 2)
	assert.NotNil(t, out[0].File)
	assert.Nil(t, out[1].File)
}
