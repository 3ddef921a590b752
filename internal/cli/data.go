package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"stock-backtester/internal/store"
)

func newDataCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "data",
		Short: "Manage historical bar data",
	}

	importCmd := &cobra.Command{
		Use:   "import <bars.csv>",
		Short: "Import daily bars from a CSV export into the store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bars, err := store.ReadBarsCSV(args[0])
			if err != nil {
				return err
			}
			if err := app.Store.SaveBars(cmd.Context(), bars); err != nil {
				return fmt.Errorf("saving bars: %w", err)
			}
			app.Logger.Info().
				Int("bars", len(bars)).
				Str("path", args[0]).
				Msg("Bars imported")
			return nil
		},
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show stored instruments and the latest bar date",
		RunE: func(cmd *cobra.Command, args []string) error {
			instruments, err := app.Store.ListInstruments(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("Instruments stored: %d\n", len(instruments))
			if len(instruments) == 0 {
				return nil
			}
			last, err := app.Store.GetLastDate(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("Latest bar date:    %s\n", last.Format("2006-01-02"))
			return nil
		},
	}

	cmd.AddCommand(importCmd, statusCmd)
	return cmd
}
