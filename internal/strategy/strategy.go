// Package strategy evaluates entry and exit rules against indicator
// snapshots. Evaluation is a pure function of the snapshot; it has no side
// effects and no knowledge of orders or cash.
package strategy

import (
	"stock-backtester/internal/config"
	"stock-backtester/internal/indicators"
	"stock-backtester/internal/models"
)

// Evaluator applies the trend-following rule set to one instrument's
// indicator snapshot.
type Evaluator struct {
	exitReference string
	fastRSIMin    float64
	slowRSIMin    float64
}

// NewEvaluator creates an evaluator from strategy configuration.
func NewEvaluator(cfg config.StrategyConfig) *Evaluator {
	return &Evaluator{
		exitReference: cfg.ExitReference,
		fastRSIMin:    cfg.FastRSIMin,
		slowRSIMin:    cfg.SlowRSIMin,
	}
}

// Evaluate returns the signal for one instrument on one bar. hasPosition
// tells the evaluator whether the instrument currently holds shares.
//
// A snapshot whose indicators are not ready always yields Hold.
func (e *Evaluator) Evaluate(hasPosition bool, snap indicators.Snapshot) models.Signal {
	if !snap.Ready {
		return models.SignalHold
	}

	if hasPosition {
		if e.exitTriggered(snap) {
			return models.SignalExit
		}
		return models.SignalHold
	}

	if e.entryTriggered(snap) {
		return models.SignalEnter
	}
	return models.SignalHold
}

// exitTriggered reports whether the close has dropped below the fast MA,
// using the configured bar reference.
func (e *Evaluator) exitTriggered(snap indicators.Snapshot) bool {
	if e.exitReference == config.ExitPreviousBar {
		// Prior bar's close against the prior bar's MA.
		if !snap.TrendReady {
			return false
		}
		return snap.PrevClose < snap.FastMAPrev
	}
	return snap.Close < snap.FastMA
}

// entryTriggered checks the five entry conditions. All slopes are one-bar,
// so the snapshot must also carry prior-bar values.
func (e *Evaluator) entryTriggered(snap indicators.Snapshot) bool {
	if !snap.TrendReady {
		return false
	}

	aboveLongTrend := snap.Close > snap.SlowMA
	longTrendRising := snap.SlowMA > snap.SlowMAPrev
	shortTrendRising := snap.MidMA > snap.MidMAPrev || snap.FastMA > snap.FastMAPrev
	momentum := snap.FastRSI > e.fastRSIMin && snap.SlowRSI > e.slowRSIMin
	volumeExpanding := snap.FastVolMA > snap.SlowVolMA &&
		snap.FastVolMA > snap.FastVolMAPrev &&
		snap.SlowVolMA > snap.SlowVolMAPrev

	return aboveLongTrend && longTrendRising && shortTrendRising && momentum && volumeExpanding
}
