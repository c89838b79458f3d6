package models

// Game is a known-hash database record: a (name, filename, platform, hash)
// tuple as populated by the teacher's db_generator/utils.db pairing,
// now consulted by internal/knownhash as an indexer accelerator rather
// than printed by a standalone CLI.
type Game struct {
	Name     string
	Filename string
	Platform string
	Hash     string
}
