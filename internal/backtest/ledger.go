package backtest

import (
	"time"

	"stock-backtester/internal/models"
)

// Ledger holds the single shared cash balance, the closed-trade history and
// the daily equity curve. It is the read-only source for the performance
// analyzer after a run.
type Ledger struct {
	initialCapital float64
	cash           float64
	lastClose      map[string]float64
	curve          []models.EquityPoint
	trades         []models.Trade
}

// NewLedger creates a ledger with the given starting cash.
func NewLedger(initialCapital float64) *Ledger {
	return &Ledger{
		initialCapital: initialCapital,
		cash:           initialCapital,
		lastClose:      make(map[string]float64),
	}
}

// Cash returns the current free cash.
func (l *Ledger) Cash() float64 {
	return l.cash
}

// InitialCapital returns the starting cash of the run.
func (l *Ledger) InitialCapital() float64 {
	return l.initialCapital
}

// RecordFill applies a fill's cash movement: a buy debits notional plus
// commission, a sell credits notional minus commission.
func (l *Ledger) RecordFill(f models.Fill) {
	switch f.Side {
	case models.SideBuy:
		l.cash -= f.Notional() + f.Commission
	case models.SideSell:
		l.cash += f.Notional() - f.Commission
	}
}

// RecordTrade appends a closed round trip to the trade history.
func (l *Ledger) RecordTrade(t models.Trade) {
	l.trades = append(l.trades, t)
}

// MarkToMarket appends exactly one equity point for the step. closes carries
// the closing prices observed this step; instruments without a bar today are
// valued at their last known close. Duplicate or out-of-order dates are
// ignored so the curve stays strictly increasing.
func (l *Ledger) MarkToMarket(date time.Time, closes map[string]float64, positions []*models.Position) models.EquityPoint {
	for id, c := range closes {
		l.lastClose[id] = c
	}

	equity := l.cash
	for _, p := range positions {
		equity += p.MarketValue(l.lastClose[p.Instrument])
	}

	point := models.EquityPoint{Date: date, Equity: equity}
	if n := len(l.curve); n > 0 && !date.After(l.curve[n-1].Date) {
		return point
	}
	l.curve = append(l.curve, point)
	return point
}

// LastClose returns the most recent close seen for an instrument.
func (l *Ledger) LastClose(instrument string) float64 {
	return l.lastClose[instrument]
}

// EquityCurve returns the recorded daily equity points.
func (l *Ledger) EquityCurve() []models.EquityPoint {
	out := make([]models.EquityPoint, len(l.curve))
	copy(out, l.curve)
	return out
}

// Trades returns the closed trades in execution order.
func (l *Ledger) Trades() []models.Trade {
	out := make([]models.Trade, len(l.trades))
	copy(out, l.trades)
	return out
}
