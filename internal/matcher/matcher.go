// Package matcher resolves a transformed DAT's ROMs against the indexer's
// hash→files map, producing the release candidates the fixdat generator
// diffs against.
package matcher

import (
	"romnibus/internal/datmodel"
	"romnibus/internal/fingerprint"
	"romnibus/internal/fixdat"
	"romnibus/internal/indexer"
)

// Candidate pairs a ROM with the preferred File satisfying it.
type Candidate struct {
	ROM  datmodel.ROM
	File *fingerprint.File
}

// Match resolves every game in d against idx, returning one
// fixdat.ReleaseCandidate per game that has at least one satisfied ROM,
// keyed by the game's parent-class name. A ROM is satisfied when idx has any
// entry under its fingerprint; the bindings record only that fingerprint,
// not which File satisfied it (see Candidates for the preferred File).
func Match(d datmodel.DAT, idx indexer.Index) map[string][]fixdat.ReleaseCandidate {
	out := make(map[string][]fixdat.ReleaseCandidate)

	for _, class := range d.Parents() {
		var games []datmodel.Game
		if class.Game != nil {
			games = append(games, *class.Game)
		}
		games = append(games, class.Clones...)

		parentName := ""
		if class.Game != nil {
			parentName = class.Game.Name
		} else if len(class.Clones) > 0 {
			parentName = class.Clones[0].Name
		}

		for _, g := range games {
			var bindings []fixdat.ROMBinding
			for _, r := range g.ROMs {
				if _, ok := idx[fingerprint.Hash(r.Fingerprint)]; ok {
					bindings = append(bindings, fixdat.ROMBinding{Fingerprint: r.Fingerprint})
				}
			}
			if len(bindings) > 0 {
				out[parentName] = append(out[parentName], fixdat.ReleaseCandidate{
					Parent:   parentName,
					Bindings: bindings,
				})
			}
		}
	}

	return out
}

// Candidates returns the full per-ROM candidate list for a single game,
// including ROMs with no satisfying file (File will be nil for those).
func Candidates(g datmodel.Game, idx indexer.Index) []Candidate {
	var out []Candidate
	for _, r := range g.ROMs {
		files := idx[fingerprint.Hash(r.Fingerprint)]
		var f *fingerprint.File
		if len(files) > 0 {
			f = files[0]
		}
		out = append(out, Candidate{ROM: r, File: f})
	}
	return out
}
