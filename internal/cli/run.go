package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"stock-backtester/internal/backtest"
	"stock-backtester/internal/feed"
	"stock-backtester/internal/report"
	"stock-backtester/internal/stats"
	"stock-backtester/internal/store"
	"stock-backtester/pkg/utils"
)

func newRunCmd(app *App) *cobra.Command {
	var (
		poolPath   string
		fromStr    string
		toStr      string
		tradesCSV  string
		equityCSV  string
		showChart  bool
		maxSymbols int
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a backtest over the stock pool",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			instruments, err := loadPool(cmd, app, poolPath, maxSymbols)
			if err != nil {
				return err
			}

			from, err := utils.ParseDate(fromStr)
			if err != nil {
				return fmt.Errorf("invalid --from date %q: %w", fromStr, err)
			}

			var to time.Time
			if toStr != "" {
				to, err = utils.ParseDate(toStr)
				if err != nil {
					return fmt.Errorf("invalid --to date %q: %w", toStr, err)
				}
			} else {
				to, err = app.Store.GetLastDate(ctx)
				if err != nil {
					return fmt.Errorf("determining end date: %w", err)
				}
			}

			app.Logger.Info().
				Int("instruments", len(instruments)).
				Time("from", from).
				Time("to", to).
				Msg("Starting backtest")

			series, err := store.LoadSeries(ctx, app.Store, instruments, from, to)
			if err != nil {
				return fmt.Errorf("loading bar series: %w", err)
			}

			barFeed, err := feed.New(series)
			if err != nil {
				return fmt.Errorf("building bar feed: %w", err)
			}

			engine := backtest.New(app.Config, app.Logger, barFeed)
			result, runErr := engine.Run(ctx)

			// A fatal run error still leaves a partial ledger worth reporting.
			summary := stats.Analyze(result.InitialCapital, result.EquityCurve, result.Trades)
			report.PrintSummary(os.Stdout, summary)

			if showChart {
				fmt.Println(report.EquityCurveASCII(result.EquityCurve, 80, 15))
			}
			if tradesCSV != "" {
				if err := report.WriteTradesCSV(tradesCSV, result.Trades); err != nil {
					return err
				}
				app.Logger.Info().Str("path", tradesCSV).Msg("Trade ledger written")
			}
			if equityCSV != "" {
				if err := report.WriteEquityCSV(equityCSV, result.EquityCurve); err != nil {
					return err
				}
				app.Logger.Info().Str("path", equityCSV).Msg("Equity curve written")
			}

			return runErr
		},
	}

	cmd.Flags().StringVar(&poolPath, "pool", "", "stock pool CSV (defaults to the stored pool)")
	cmd.Flags().StringVar(&fromStr, "from", "2022-01-01", "start date")
	cmd.Flags().StringVar(&toStr, "to", "", "end date (defaults to the latest stored date)")
	cmd.Flags().StringVar(&tradesCSV, "trades-csv", "trade_records.csv", "trade ledger output path (empty to skip)")
	cmd.Flags().StringVar(&equityCSV, "equity-csv", "", "equity curve output path (empty to skip)")
	cmd.Flags().BoolVar(&showChart, "chart", false, "print an ASCII equity curve")
	cmd.Flags().IntVar(&maxSymbols, "max-instruments", 0, "cap on pool size (0 = config default)")

	return cmd
}

func loadPool(cmd *cobra.Command, app *App, poolPath string, maxSymbols int) ([]string, error) {
	var (
		instruments []string
		err         error
	)
	if poolPath != "" {
		instruments, err = store.ReadPoolCSV(poolPath)
	} else {
		instruments, err = app.Store.GetPool(cmd.Context())
	}
	if err != nil {
		return nil, fmt.Errorf("loading stock pool: %w", err)
	}
	if len(instruments) == 0 {
		return nil, fmt.Errorf("stock pool is empty")
	}

	limit := maxSymbols
	if limit <= 0 {
		limit = app.Config.Data.MaxInstruments
	}
	if len(instruments) > limit {
		app.Logger.Info().
			Int("pool", len(instruments)).
			Int("limit", limit).
			Msg("Pool truncated to limit")
		instruments = instruments[:limit]
	}
	return instruments, nil
}
