// Package cmd implements the recall CLI.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/recall-sh/recall/internal/config"
	"github.com/recall-sh/recall/internal/engine"
	"github.com/recall-sh/recall/internal/logging"
	"github.com/recall-sh/recall/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "recall",
	Short: "learn from your shell history",
	Long: `recall - learn from your shell history
  - records commands and mines repeated sequences
  - suggests the next command from patterns and context`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// setup loads config, builds the logger, and opens the store. The caller
// owns the returned store and must Close it.
func setup() (*config.Config, *slog.Logger, store.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.New(&logging.Config{
		Output: os.Stderr,
		Level:  logging.ParseLevel(cfg.Logging.Level),
	})

	paths := config.DefaultPaths()
	dbPath := cfg.Storage.DBPath
	if dbPath == "" {
		if err := paths.EnsureDirectories(); err != nil {
			return nil, nil, nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		dbPath = paths.DatabaseFile()
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to open store: %w", err)
	}

	return cfg, logger, st, nil
}

// minerOptions maps config onto pattern-mining options.
func minerOptions(cfg *config.Config) engine.MinerOptions {
	return engine.MinerOptions{Chronological: cfg.Mining.Chronological}
}

// engineOptions maps config onto suggestion-engine options.
func engineOptions(cfg *config.Config) engine.EngineOptions {
	return engine.EngineOptions{MaxResults: cfg.Suggestions.MaxResults}
}

// newEngine builds a suggestion engine configured from cfg, using the
// default context detector.
func newEngine(cfg *config.Config, logger *slog.Logger, st store.Store) *engine.Engine {
	miner := engine.NewMinerWithOptions(st, logger, minerOptions(cfg))
	return engine.NewEngineWithOptions(st, miner, nil, logger, engineOptions(cfg))
}
