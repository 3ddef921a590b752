// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"time"

	"stock-backtester/internal/models"
)

// DataStore defines the interface for historical bar persistence.
type DataStore interface {
	// Bars
	SaveBars(ctx context.Context, bars []models.Bar) error
	GetBars(ctx context.Context, instrument string, from, to time.Time) ([]models.Bar, error)
	GetLastDate(ctx context.Context) (time.Time, error)
	ListInstruments(ctx context.Context) ([]string, error)

	// Watchlist (stock pool)
	AddToPool(ctx context.Context, instrument string) error
	RemoveFromPool(ctx context.Context, instrument string) error
	GetPool(ctx context.Context) ([]string, error)

	// Lifecycle
	Close() error
}

// LoadSeries fetches the bar series for every instrument in the range. An
// instrument with no stored bars maps to an empty series so the feed can
// exclude it with a data-gap warning instead of failing the run.
func LoadSeries(ctx context.Context, ds DataStore, instruments []string, from, to time.Time) (map[string][]models.Bar, error) {
	series := make(map[string][]models.Bar, len(instruments))
	for _, id := range instruments {
		bars, err := ds.GetBars(ctx, id, from, to)
		if err != nil {
			return nil, err
		}
		series[id] = bars
	}
	return series, nil
}
