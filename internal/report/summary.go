package report

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"stock-backtester/internal/stats"
	"stock-backtester/pkg/utils"
)

// PrintSummary writes the end-of-run statistics block to w.
func PrintSummary(w io.Writer, s stats.Summary) {
	header := color.New(color.Bold, color.FgCyan)
	gain := color.New(color.FgGreen)
	loss := color.New(color.FgRed)

	header.Fprintln(w, "── Backtest Summary ──")

	fmt.Fprintf(w, "Initial capital:   %s\n", utils.FormatMoney(s.InitialCapital))
	fmt.Fprintf(w, "Final equity:      %s\n", utils.FormatMoney(s.FinalEquity))

	returnColor := gain
	if s.TotalReturnPct < 0 {
		returnColor = loss
	}
	returnColor.Fprintf(w, "Total return:      %s\n", utils.FormatPercent(s.TotalReturnPct))
	fmt.Fprintf(w, "Annualized return: %s\n", utils.FormatPercent(s.AnnualizedReturnPct))
	fmt.Fprintf(w, "Max drawdown:      %.2f%%\n", s.MaxDrawdownPct)

	if s.SharpeComputable {
		fmt.Fprintf(w, "Sharpe ratio:      %.2f\n", s.SharpeRatio)
	} else {
		fmt.Fprintln(w, "Sharpe ratio:      not computable (zero return variance)")
	}

	fmt.Fprintf(w, "Trades:            %d (won %d, lost %d)\n", s.TotalTrades, s.WinningTrades, s.LosingTrades)
	fmt.Fprintf(w, "Win rate:          %.2f%%\n", s.WinRatePct)
	if s.TotalTrades > 0 {
		fmt.Fprintf(w, "Avg win / loss:    %s / %s\n", utils.FormatPnL(s.AvgWin), utils.FormatPnL(s.AvgLoss))
		if s.ProfitFactor > 0 {
			fmt.Fprintf(w, "Profit factor:     %.2f\n", s.ProfitFactor)
		}
		fmt.Fprintf(w, "Net P&L:           %s\n", utils.FormatPnL(s.NetPnL))
	}
}
