package models

import "time"

// Trade represents a closed round trip for one instrument. It is created when
// a position transitions to flat and is immutable thereafter.
type Trade struct {
	Instrument string
	EntryDate  time.Time
	ExitDate   time.Time
	EntryPrice float64
	ExitPrice  float64
	Quantity   int
	GrossPnL   float64
	NetPnL     float64 // after entry and exit commissions
	Commission float64
	ReturnPct  float64
}

// HoldDuration returns the calendar time the position was held.
func (t Trade) HoldDuration() time.Duration {
	return t.ExitDate.Sub(t.EntryDate)
}

// EquityPoint represents total portfolio value at the end of one simulated day.
type EquityPoint struct {
	Date   time.Time
	Equity float64
}
