// Package models provides domain models for the backtest engine.
package models

import (
	"time"
)

// Side represents the side of an order.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// OrderState represents the lifecycle state of an order.
type OrderState string

const (
	OrderPending   OrderState = "PENDING"
	OrderSubmitted OrderState = "SUBMITTED"
	OrderFilled    OrderState = "FILLED"
	OrderCanceled  OrderState = "CANCELED"
	OrderRejected  OrderState = "REJECTED"
)

// Signal represents the outcome of evaluating strategy rules on one bar.
type Signal string

const (
	SignalHold  Signal = "HOLD"
	SignalEnter Signal = "ENTER"
	SignalExit  Signal = "EXIT"
)

// Bar represents one daily OHLCV observation for one instrument.
// Bars are immutable once produced and ordered by date within a series.
type Bar struct {
	Instrument string
	Date       time.Time
	Open       float64
	High       float64
	Low        float64
	Close      float64
	Volume     int64
}

// Valid reports whether the bar carries usable price data.
func (b Bar) Valid() bool {
	if b.Open <= 0 || b.High <= 0 || b.Low <= 0 || b.Close <= 0 {
		return false
	}
	if b.Volume < 0 {
		return false
	}
	return b.Low <= b.High
}

// Instrument represents a tradeable instrument in the simulation universe.
type Instrument struct {
	ID       string
	Name     string
	Exchange string
	LotSize  int
}
