package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"stock-backtester/internal/store"
)

func newPoolCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pool",
		Short: "Manage the stock pool",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List pooled instruments",
		RunE: func(cmd *cobra.Command, args []string) error {
			pool, err := app.Store.GetPool(cmd.Context())
			if err != nil {
				return err
			}
			if len(pool) == 0 {
				fmt.Println("Stock pool is empty")
				return nil
			}
			for _, id := range pool {
				fmt.Println(id)
			}
			return nil
		},
	}

	addCmd := &cobra.Command{
		Use:   "add <instrument>...",
		Short: "Add instruments to the pool",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, id := range args {
				if err := app.Store.AddToPool(cmd.Context(), id); err != nil {
					return err
				}
			}
			app.Logger.Info().Strs("instruments", args).Msg("Added to pool")
			return nil
		},
	}

	removeCmd := &cobra.Command{
		Use:   "remove <instrument>...",
		Short: "Remove instruments from the pool",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, id := range args {
				if err := app.Store.RemoveFromPool(cmd.Context(), id); err != nil {
					return err
				}
			}
			app.Logger.Info().Strs("instruments", args).Msg("Removed from pool")
			return nil
		},
	}

	importCmd := &cobra.Command{
		Use:   "import <pool.csv>",
		Short: "Import a stock pool CSV into the stored pool",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			instruments, err := store.ReadPoolCSV(args[0])
			if err != nil {
				return err
			}
			for _, id := range instruments {
				if err := app.Store.AddToPool(cmd.Context(), id); err != nil {
					return err
				}
			}
			app.Logger.Info().Int("instruments", len(instruments)).Msg("Pool imported")
			return nil
		},
	}

	cmd.AddCommand(listCmd, addCmd, removeCmd, importCmd)
	return cmd
}
