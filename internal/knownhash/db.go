// Package knownhash is the optional SQLite-backed known-hash accelerator
// (SPEC_FULL.md §4.6), adapted from the teacher's utils/db.go and
// db_generator.go: the same InitDB/FindByHash/FindByFilename lookups, now
// consulted by the pipeline ahead of indexing instead of a standalone CLI, plus the schema
// init and transactional ingest the teacher's db_generator.go performed.
package knownhash

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"romnibus/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS games (
	name     TEXT NOT NULL,
	filename TEXT NOT NULL,
	platform TEXT NOT NULL,
	hash     TEXT NOT NULL,
	UNIQUE(name, platform, hash)
);
CREATE INDEX IF NOT EXISTS idx_games_hash ON games(hash);
CREATE INDEX IF NOT EXISTS idx_games_filename ON games(filename);
`

// Store wraps a known-hash SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the known-hash database at path and
// ensures its schema exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("knownhash: opening %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("knownhash: initializing schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// FindByHash returns the known game whose hash matches (case-insensitive),
// or nil if there is no such row.
func (s *Store) FindByHash(hash string) (*models.Game, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("knownhash: store is not initialized")
	}

	const query = `SELECT name, filename, platform, hash FROM games WHERE LOWER(hash) = LOWER(?) LIMIT 1`

	var game models.Game
	err := s.db.QueryRow(query, hash).Scan(&game.Name, &game.Filename, &game.Platform, &game.Hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("knownhash: querying by hash: %w", err)
	}
	return &game, nil
}

// FindByFilename returns the known game whose filename matches
// (case-insensitive), or nil if there is no such row.
func (s *Store) FindByFilename(filename string) (*models.Game, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("knownhash: store is not initialized")
	}

	const query = `SELECT name, filename, platform, hash FROM games WHERE LOWER(filename) = LOWER(?) LIMIT 1`

	var game models.Game
	err := s.db.QueryRow(query, filename).Scan(&game.Name, &game.Filename, &game.Platform, &game.Hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("knownhash: querying by filename: %w", err)
	}
	return &game, nil
}

// InsertGames batch-inserts games inside a single transaction, ignoring
// rows that collide with an existing unique key — the same
// insert-or-ignore convention the teacher's db_generator.go used.
func (s *Store) InsertGames(games []models.Game) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("knownhash: beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT OR IGNORE INTO games (name, filename, platform, hash) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("knownhash: preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, g := range games {
		if _, err := stmt.Exec(g.Name, g.Filename, g.Platform, g.Hash); err != nil {
			return fmt.Errorf("knownhash: inserting game %s: %w", g.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("knownhash: committing transaction: %w", err)
	}
	return nil
}
