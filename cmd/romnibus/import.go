package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"romnibus/internal/knownhash"
)

// newImportCmd exposes the teacher's db_generator.go ingest logic
// (regex-scraped libretro-style DAT files, batch-inserted into SQLite) as
// a subcommand of the core tool instead of a standalone main().
func newImportCmd() *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "import-known-hashes <dat-dir>",
		Short: "Populate the known-hash accelerator database from a directory of DAT files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := knownhash.Open(dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			n, err := store.IngestDir(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ingested %d known-hash rows from %s\n", n, args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "known_hashes.sqlite", "path to the known-hash SQLite database")
	return cmd
}
