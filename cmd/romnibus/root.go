package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"romnibus/internal/config"
	"romnibus/internal/pipeline"
	"romnibus/internal/progress"
)

var (
	configFile    string
	debug         bool
	mergeModeFlag string
	fixdatFlag    bool
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "romnibus",
		Short: "Reconcile a ROM-set catalog against a collection of candidate files",
		RunE:  runReconcile,
	}

	cmd.PersistentFlags().StringVarP(&configFile, "config", "c", "romnibus.yaml", "config file path")
	cmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug logging")
	cmd.Flags().StringVar(&mergeModeFlag, "merge-mode", "", "override the configured merge mode (NONE, SPLIT, MERGED, FULLNONMERGED)")
	cmd.Flags().BoolVar(&fixdatFlag, "fixdat", false, "emit a fixdat when any game is incomplete")

	cmd.AddCommand(newImportCmd())
	return cmd
}

func setupLogging() zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger().Level(level)
}

func runReconcile(cmd *cobra.Command, args []string) error {
	log := setupLogging()

	opts, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if mergeModeFlag != "" {
		opts.MergeModeName = mergeModeFlag
	}
	if fixdatFlag {
		opts.Fixdat = true
	}

	sink := progress.NewConsoleSink(os.Stderr, log.GetLevel())

	result, err := pipeline.Run(context.Background(), opts, sink)
	if err != nil {
		return fmt.Errorf("running pipeline: %w", err)
	}

	log.Info().
		Int("games_total", result.GamesTotal).
		Int("games_missing", result.GamesMissing).
		Bool("fixdat_written", result.FixdatWrote).
		Str("fixdat_path", result.FixdatPath).
		Msg("reconciliation complete")

	return nil
}
