// Package cli provides the command-line interface for the backtest engine.
package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"stock-backtester/internal/config"
	"stock-backtester/internal/logging"
	"stock-backtester/internal/store"
)

// Version information
const Version = "0.1.0"

// App holds the application dependencies.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
	Store  store.DataStore
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	rootCmd := &cobra.Command{
		Use:     "stock-backtester",
		Short:   "Daily-bar multi-instrument backtest engine",
		Long:    "Replays historical daily bars for a stock pool through a trend-following strategy and reports the resulting trades and equity curve.",
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if debug, _ := cmd.Flags().GetBool("debug"); debug {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}
			dataStore, err := store.NewSQLiteStore(app.Config.Data.DatabasePath)
			if err != nil {
				return err
			}
			app.Store = dataStore
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app.Store != nil {
				app.Store.Close()
			}
		},
	}

	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(newRunCmd(app))
	rootCmd.AddCommand(newDataCmd(app))
	rootCmd.AddCommand(newPoolCmd(app))

	return rootCmd
}

// Execute loads configuration, builds the CLI and runs it.
func Execute() error {
	cfg, err := config.Load("")
	if err != nil {
		return err
	}
	logger := logging.NewLogger()
	return NewRootCmd(cfg, logger).Execute()
}
