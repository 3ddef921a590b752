package store

import (
	"fmt"
	"os"
	"time"

	"github.com/gocarina/gocsv"
	"stock-backtester/internal/models"
)

// barRow is the CSV layout for daily bar imports. Dates use the compact
// YYYYMMDD form of the upstream data exports.
type barRow struct {
	Instrument string  `csv:"ts_code"`
	TradeDate  string  `csv:"trade_date"`
	Open       float64 `csv:"open"`
	High       float64 `csv:"high"`
	Low        float64 `csv:"low"`
	Close      float64 `csv:"close"`
	Volume     int64   `csv:"vol"`
}

// poolRow is the CSV layout for stock pool files.
type poolRow struct {
	Instrument string `csv:"ts_code"`
	Name       string `csv:"name"`
}

// ReadBarsCSV reads daily bars from a CSV export.
func ReadBarsCSV(path string) ([]models.Bar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var rows []barRow
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	bars := make([]models.Bar, 0, len(rows))
	for i, r := range rows {
		date, err := time.Parse("20060102", r.TradeDate)
		if err != nil {
			return nil, fmt.Errorf("row %d: bad trade_date %q: %w", i+1, r.TradeDate, err)
		}
		bars = append(bars, models.Bar{
			Instrument: r.Instrument,
			Date:       date,
			Open:       r.Open,
			High:       r.High,
			Low:        r.Low,
			Close:      r.Close,
			Volume:     r.Volume,
		})
	}
	return bars, nil
}

// ReadPoolCSV reads the instrument universe from a stock pool CSV.
func ReadPoolCSV(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var rows []poolRow
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	pool := make([]string, 0, len(rows))
	seen := make(map[string]bool, len(rows))
	for _, r := range rows {
		if r.Instrument == "" || seen[r.Instrument] {
			continue
		}
		seen[r.Instrument] = true
		pool = append(pool, r.Instrument)
	}
	return pool, nil
}
