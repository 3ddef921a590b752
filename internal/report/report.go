// Package report persists and displays a run's trade ledger and equity curve.
package report

import (
	"fmt"
	"os"

	"github.com/gocarina/gocsv"

	"stock-backtester/internal/models"
	"stock-backtester/pkg/utils"
)

// tradeRow is the CSV layout of one closed trade.
type tradeRow struct {
	Instrument string  `csv:"instrument"`
	EntryDate  string  `csv:"entry_date"`
	ExitDate   string  `csv:"exit_date"`
	EntryPrice float64 `csv:"entry_price"`
	ExitPrice  float64 `csv:"exit_price"`
	Quantity   int     `csv:"quantity"`
	GrossPnL   float64 `csv:"gross_pnl"`
	NetPnL     float64 `csv:"net_pnl"`
	Commission float64 `csv:"commission"`
	ReturnPct  float64 `csv:"return_pct"`
}

// equityRow is the CSV layout of one equity curve point.
type equityRow struct {
	Date   string  `csv:"date"`
	Equity float64 `csv:"equity"`
}

// WriteTradesCSV writes the closed trades to a CSV file.
func WriteTradesCSV(path string, trades []models.Trade) error {
	rows := make([]tradeRow, 0, len(trades))
	for _, t := range trades {
		rows = append(rows, tradeRow{
			Instrument: t.Instrument,
			EntryDate:  utils.FormatDate(t.EntryDate),
			ExitDate:   utils.FormatDate(t.ExitDate),
			EntryPrice: t.EntryPrice,
			ExitPrice:  t.ExitPrice,
			Quantity:   t.Quantity,
			GrossPnL:   t.GrossPnL,
			NetPnL:     t.NetPnL,
			Commission: t.Commission,
			ReturnPct:  t.ReturnPct,
		})
	}
	return writeCSV(path, &rows)
}

// WriteEquityCSV writes the daily equity curve to a CSV file.
func WriteEquityCSV(path string, curve []models.EquityPoint) error {
	rows := make([]equityRow, 0, len(curve))
	for _, p := range curve {
		rows = append(rows, equityRow{
			Date:   utils.FormatDate(p.Date),
			Equity: p.Equity,
		})
	}
	return writeCSV(path, &rows)
}

func writeCSV(path string, rows interface{}) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	if err := gocsv.MarshalFile(rows, f); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
