// Package datmodel holds the parent/clone game graph: ROM, Game, Machine,
// DAT, and the Parent grouping derived from it. Games and ROMs are treated
// as immutable once parsed; transforms produce new values.
package datmodel

import "strconv"

// Role classifies a Game's position in the parent/clone graph.
type Role int

const (
	RoleStandalone Role = iota
	RoleParent
	RoleClone
)

func (r Role) String() string {
	switch r {
	case RoleParent:
		return "parent"
	case RoleClone:
		return "clone"
	default:
		return "standalone"
	}
}

// ROM is a declared file within a game.
type ROM struct {
	Name        string
	Size        int64
	Fingerprint string
	Merge       string // alias name under which the same bytes appear in the parent/BIOS set
	IsBIOS      bool
}

// EffectiveName returns the name under which this ROM's bytes should be
// looked up in a reference game: its merge alias if set, else its own name.
func (r ROM) EffectiveName() string {
	if r.Merge != "" {
		return r.Merge
	}
	return r.Name
}

// Key identifies a ROM for deduplication: (name, size, fingerprint).
func (r ROM) Key() [3]string {
	return [3]string{r.Name, strconv.FormatInt(r.Size, 10), r.Fingerprint}
}

// Game is a named set of ROMs, optionally a clone of a parent and/or
// dependent on a BIOS set. DeviceRefs is populated for machine-kind games.
type Game struct {
	Name       string
	Parent     string // clone-link to a parent game name; empty for parent/standalone
	BIOS       string // name of an external BIOS game this one depends on
	DeviceRefs []string
	ROMs       []ROM
}

// isClone reports whether g carries a clone-link to some parent game. It is
// the only part of the three-way classification a Game can answer on its
// own — distinguishing a true parent from a standalone additionally
// requires knowing whether any other game clones it, which is a DAT-level
// question answered by DAT.RoleOf.
func (g Game) isClone() bool {
	return g.Parent != ""
}

// IsMachine reports whether this game carries machine-style device
// references, polymorphising Game/Machine per the design notes.
func (g Game) IsMachine() bool {
	return len(g.DeviceRefs) > 0
}

// WithROMs returns a copy of g with its ROM list replaced — the
// copy-with-function idiom used throughout instead of in-place mutation.
func (g Game) WithROMs(roms []ROM) Game {
	g2 := g
	g2.ROMs = roms
	return g2
}

// Header carries catalog-level metadata, including the XML fields a fixdat
// must reproduce.
type Header struct {
	Name        string
	Description string
	Version     string
	Date        string
	URL         string
	Comment     string

	// RomNamesHaveDirectories is set once any parent class collapses under
	// MERGED, since clone ROMs are then re-parented with a directory
	// component in their name.
	RomNamesHaveDirectories bool
}

// DAT is a named catalog: a header plus an ordered set of games.
type DAT struct {
	Header Header
	Games  []Game
}

// FindGame returns the game with the given name, or ok=false if absent.
func (d DAT) FindGame(name string) (Game, bool) {
	for _, g := range d.Games {
		if g.Name == name {
			return g, true
		}
	}
	return Game{}, false
}

// RoleOf classifies g within d's full game graph per spec.md §3's
// three-way role: a game with a clone-link is RoleClone; a game with no
// clone-link that at least one other game clones is RoleParent; anything
// else is RoleStandalone.
func (d DAT) RoleOf(g Game) Role {
	if g.isClone() {
		return RoleClone
	}
	for _, other := range d.Games {
		if other.Name != g.Name && other.Parent == g.Name {
			return RoleParent
		}
	}
	return RoleStandalone
}

// RoleCounts tallies every game in d by RoleOf, for reporting summaries.
func (d DAT) RoleCounts() map[Role]int {
	counts := make(map[Role]int, 3)
	for _, g := range d.Games {
		counts[d.RoleOf(g)]++
	}
	return counts
}

// Parent is a grouping handle over a parent game and its clones. It is
// never persisted — always derived on demand from a DAT.
type Parent struct {
	Game   *Game // nil for an orphan class with no resolvable parent
	Clones []Game
}

// Parents groups d's games into parent classes by clone-link, preserving
// the original game order both across classes and within each class's
// clone list. Every game belongs to exactly one class; clones whose parent
// is missing form their own singleton orphan class.
func (d DAT) Parents() []Parent {
	index := make(map[string]int, len(d.Games))
	var classes []Parent

	for _, g := range d.Games {
		if !g.isClone() {
			gg := g
			index[g.Name] = len(classes)
			classes = append(classes, Parent{Game: &gg})
		}
	}

	for _, g := range d.Games {
		if !g.isClone() {
			continue
		}
		if idx, ok := index[g.Parent]; ok {
			classes[idx].Clones = append(classes[idx].Clones, g)
			continue
		}
		// Orphan clone: parent name does not resolve to any known game.
		// It becomes its own singleton class.
		gg := g
		classes = append(classes, Parent{Game: nil, Clones: []Game{gg}})
	}

	return classes
}
