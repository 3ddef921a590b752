package models

import "time"

// Order represents a deferred-execution order for one instrument.
// An order created from a signal observed on bar t becomes eligible to fill
// at the next bar observed for that instrument.
type Order struct {
	ID         string
	Instrument string
	Side       Side
	Quantity   int
	// Budget is the cash reserved for a buy order at submission time.
	// The fill quantity is clamped so the notional never exceeds it.
	Budget      float64
	State       OrderState
	SubmittedAt time.Time
}

// Position represents the holding for one instrument. Quantity is never
// negative; zero quantity means flat.
type Position struct {
	Instrument   string
	Quantity     int
	AveragePrice float64
	EntryDate    time.Time
}

// Open reports whether the position holds any shares.
func (p *Position) Open() bool {
	return p != nil && p.Quantity > 0
}

// MarketValue returns the position value at the given price.
func (p *Position) MarketValue(price float64) float64 {
	if p == nil {
		return 0
	}
	return float64(p.Quantity) * price
}

// Fill represents the execution of an order at a concrete price and date.
type Fill struct {
	OrderID    string
	Instrument string
	Side       Side
	Quantity   int
	Price      float64
	Commission float64
	Date       time.Time
}

// Notional returns the traded value of the fill, excluding commission.
func (f Fill) Notional() float64 {
	return f.Price * float64(f.Quantity)
}
