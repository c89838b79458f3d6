// Package merge implements the DAT Merger/Splitter: reshaping a
// parent/clone game graph between the NONE, SPLIT, MERGED, and
// FULLNONMERGED merge modes, per spec.md §4.2.
package merge

import (
	"sort"
	"strings"

	"romnibus/internal/datmodel"
)

// Mode is one of the four canonical merge policies.
type Mode int

const (
	ModeNone Mode = iota
	ModeSplit
	ModeMerged
	ModeFullNonMerged
)

// Transform returns a new DAT whose games have been reshaped according to
// mode. The operation proceeds per parent class independently; transformed
// classes are concatenated in original parent-class order. A DAT lacking
// parent/clone metadata (every game standalone) is still transformed: each
// game forms its own class and is sanitized, BIOS subtraction applies in the
// non-FULL modes, and device expansion applies under FULLNONMERGED.
func Transform(d datmodel.DAT, mode Mode) datmodel.DAT {
	classes := d.Parents()
	byName := indexByName(d.Games)

	var outGames []datmodel.Game
	mergedAny := false

	for _, class := range classes {
		games := assembleClass(class, mode, byName)
		if mode == ModeMerged && class.Game != nil && len(class.Clones) > 0 {
			mergedAny = true
		}
		outGames = append(outGames, games...)
	}

	header := d.Header
	if mergedAny {
		header.RomNamesHaveDirectories = true
	}

	return datmodel.DAT{Header: header, Games: outGames}
}

func indexByName(games []datmodel.Game) map[string]datmodel.Game {
	m := make(map[string]datmodel.Game, len(games))
	for _, g := range games {
		m[g.Name] = g
	}
	return m
}

// assembleClass runs the per-class state machine: sanitize, then the
// mode-specific reshape steps, then class assembly.
func assembleClass(class datmodel.Parent, mode Mode, byName map[string]datmodel.Game) []datmodel.Game {
	var parent *datmodel.Game
	if class.Game != nil {
		p := sanitize(*class.Game)
		p = reshapeGame(p, mode, byName, nil)
		parent = &p
	}

	clones := make([]datmodel.Game, 0, len(class.Clones))
	for _, c := range class.Clones {
		cs := sanitize(c)
		cs = reshapeGame(cs, mode, byName, parent)
		clones = append(clones, cs)
	}

	switch mode {
	case ModeMerged:
		return []datmodel.Game{assembleMerged(parent, clones)}
	default:
		var out []datmodel.Game
		if parent != nil {
			out = append(out, *parent)
		}
		out = append(out, clones...)
		return out
	}
}

// reshapeGame applies the mode-specific ROM-set arithmetic to a single
// (already sanitized) game. parent is nil for the parent game itself (or
// for an orphan clone with no resolvable parent).
func reshapeGame(g datmodel.Game, mode Mode, byName map[string]datmodel.Game, parent *datmodel.Game) datmodel.Game {
	if mode == ModeFullNonMerged {
		return expandDevices(g, byName)
	}

	// Non-FULL modes: subtract BIOS ROMs first, then (for SPLIT/MERGED)
	// subtract the clone's parent ROMs.
	if g.BIOS != "" {
		if bios, ok := byName[g.BIOS]; ok {
			biosROMs := filterBIOS(bios.ROMs)
			g = g.WithROMs(diffROMs(g.ROMs, biosROMs))
		}
	}

	if (mode == ModeSplit || mode == ModeMerged) && parent != nil {
		g = g.WithROMs(diffROMs(g.ROMs, parent.ROMs))
	}

	return g
}

func filterBIOS(roms []datmodel.ROM) []datmodel.ROM {
	var out []datmodel.ROM
	for _, r := range roms {
		if r.IsBIOS {
			out = append(out, r)
		}
	}
	return out
}

// diffROMs implements the ROM diff rule: build name→fingerprint from the
// reference set R, then keep each subject ROM unless R has an entry for
// its effective name with an identical fingerprint.
func diffROMs(subject []datmodel.ROM, reference []datmodel.ROM) []datmodel.ROM {
	refByName := make(map[string]string, len(reference))
	for _, r := range reference {
		refByName[r.Name] = r.Fingerprint
	}

	var out []datmodel.ROM
	for _, r := range subject {
		refFp, ok := refByName[r.EffectiveName()]
		if !ok || refFp != r.Fingerprint {
			out = append(out, r)
		}
	}
	return out
}

// expandDevices prepends the ROMs of every referenced device game (in
// DeviceRefs order), then the game's own ROMs, then re-sorts. Unknown
// device references are silently dropped.
func expandDevices(g datmodel.Game, byName map[string]datmodel.Game) datmodel.Game {
	if !g.IsMachine() {
		return g
	}

	var expanded []datmodel.ROM
	for _, ref := range g.DeviceRefs {
		if dev, ok := byName[ref]; ok {
			expanded = append(expanded, dev.ROMs...)
		}
	}
	expanded = append(expanded, g.ROMs...)

	g2 := g.WithROMs(expanded)
	return sanitize(g2)
}

// assembleMerged folds every clone's ROMs into the parent, re-parenting
// each clone ROM's name with "clone_name\" and deduplicating the result by
// (name, size, fingerprint). The class collapses to a single game carrying
// the parent's identity.
func assembleMerged(parent *datmodel.Game, clones []datmodel.Game) datmodel.Game {
	var base datmodel.Game
	if parent != nil {
		base = *parent
	} else if len(clones) > 0 {
		// Orphan class: no parent resolved. The "parent" identity becomes
		// the first clone's, matching the orphan-singleton-class rule.
		base = clones[0]
		clones = clones[1:]
	}

	var merged []datmodel.ROM
	for _, clone := range clones {
		for _, r := range clone.ROMs {
			r.Name = clone.Name + `\` + r.Name
			merged = append(merged, r)
		}
	}
	merged = append(merged, base.ROMs...)

	seen := make(map[[3]string]bool, len(merged))
	var deduped []datmodel.ROM
	for _, r := range merged {
		k := r.Key()
		if seen[k] {
			continue
		}
		seen[k] = true
		deduped = append(deduped, r)
	}

	return base.WithROMs(deduped)
}

// sanitize applies the canonical per-game normalization: drop duplicate
// ROMs by name (first occurrence wins), then sort by the natural-numeric
// comparator.
func sanitize(g datmodel.Game) datmodel.Game {
	seen := make(map[string]bool, len(g.ROMs))
	var deduped []datmodel.ROM
	for _, r := range g.ROMs {
		if seen[r.Name] {
			continue
		}
		seen[r.Name] = true
		deduped = append(deduped, r)
	}

	sort.SliceStable(deduped, func(i, j int) bool {
		return naturalLess(deduped[i].Name, deduped[j].Name)
	})

	return g.WithROMs(deduped)
}

// naturalLess compares two ROM names with a natural-numeric comparator,
// substituting "-" with "__" before comparison so hyphens sort after
// underscores per ASCII order — an explicit correction for locale-numeric
// ordering quirks.
func naturalLess(a, b string) bool {
	a = strings.ReplaceAll(a, "-", "__")
	b = strings.ReplaceAll(b, "-", "__")
	return naturalCompare(a, b) < 0
}

// naturalCompare splits each string into runs of digits and non-digits,
// comparing digit runs numerically and other runs byte-wise.
func naturalCompare(a, b string) int {
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		ca, cb := a[i], b[j]
		if isDigit(ca) && isDigit(cb) {
			ai, aEnd := i, i
			for aEnd < len(a) && isDigit(a[aEnd]) {
				aEnd++
			}
			bi, bEnd := j, j
			for bEnd < len(b) && isDigit(b[bEnd]) {
				bEnd++
			}
			an := trimLeadingZeros(a[ai:aEnd])
			bn := trimLeadingZeros(b[bi:bEnd])
			if len(an) != len(bn) {
				if len(an) < len(bn) {
					return -1
				}
				return 1
			}
			if an != bn {
				if an < bn {
					return -1
				}
				return 1
			}
			i, j = aEnd, bEnd
			continue
		}
		if ca != cb {
			if ca < cb {
				return -1
			}
			return 1
		}
		i++
		j++
	}
	switch {
	case len(a)-i < len(b)-j:
		return -1
	case len(a)-i > len(b)-j:
		return 1
	default:
		return 0
	}
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func trimLeadingZeros(s string) string {
	i := 0
	for i < len(s)-1 && s[i] == '0' {
		i++
	}
	return s[i:]
}
