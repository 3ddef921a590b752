// Package stats derives summary statistics from a completed run's ledger.
// Every computation is read-only over the immutable trade and equity history.
package stats

import (
	"math"

	"stock-backtester/internal/models"
)

const tradingDaysPerYear = 252

// Summary holds the derived performance statistics of one run.
type Summary struct {
	InitialCapital float64
	FinalEquity    float64

	TotalReturnPct      float64
	AnnualizedReturnPct float64
	MaxDrawdownPct      float64

	// SharpeRatio is meaningful only when SharpeComputable is true; a run
	// with zero return variance has no defined Sharpe ratio.
	SharpeRatio      float64
	SharpeComputable bool

	TotalTrades   int
	WinningTrades int
	LosingTrades  int
	WinRatePct    float64
	AvgWin        float64
	AvgLoss       float64
	ProfitFactor  float64
	NetPnL        float64
}

// Analyze derives the summary from the run's equity curve and closed trades.
func Analyze(initialCapital float64, curve []models.EquityPoint, trades []models.Trade) Summary {
	s := Summary{
		InitialCapital: initialCapital,
		FinalEquity:    initialCapital,
	}
	if len(curve) > 0 {
		s.FinalEquity = curve[len(curve)-1].Equity
	}

	if initialCapital > 0 {
		s.TotalReturnPct = (s.FinalEquity/initialCapital - 1) * 100
		s.AnnualizedReturnPct = annualizedReturn(initialCapital, s.FinalEquity, curve)
	}
	s.MaxDrawdownPct = maxDrawdown(curve)
	s.SharpeRatio, s.SharpeComputable = sharpeRatio(curve)
	s.tradeStats(trades)
	return s
}

// annualizedReturn is geometric over the actual elapsed calendar days.
func annualizedReturn(initial, final float64, curve []models.EquityPoint) float64 {
	if len(curve) < 2 || initial <= 0 || final <= 0 {
		return 0
	}
	days := curve[len(curve)-1].Date.Sub(curve[0].Date).Hours() / 24
	if days <= 0 {
		return 0
	}
	years := days / 365
	return (math.Pow(final/initial, 1/years) - 1) * 100
}

// maxDrawdown is the largest peak-to-trough decline on the equity curve.
func maxDrawdown(curve []models.EquityPoint) float64 {
	var peak, worst float64
	for _, p := range curve {
		if p.Equity > peak {
			peak = p.Equity
		}
		if peak <= 0 {
			continue
		}
		dd := (peak - p.Equity) / peak
		if dd > worst {
			worst = dd
		}
	}
	return worst * 100
}

// sharpeRatio is mean/std of the curve's periodic returns annualized by √252.
// Zero return variance makes it not computable.
func sharpeRatio(curve []models.EquityPoint) (float64, bool) {
	if len(curve) < 2 {
		return 0, false
	}

	returns := make([]float64, 0, len(curve)-1)
	for i := 1; i < len(curve); i++ {
		prev := curve[i-1].Equity
		if prev == 0 {
			return 0, false
		}
		returns = append(returns, (curve[i].Equity-prev)/prev)
	}

	var mean float64
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	var variance float64
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(len(returns))

	if variance == 0 {
		return 0, false
	}

	return mean / math.Sqrt(variance) * math.Sqrt(tradingDaysPerYear), true
}

func (s *Summary) tradeStats(trades []models.Trade) {
	s.TotalTrades = len(trades)
	if s.TotalTrades == 0 {
		return
	}

	var totalWin, totalLoss float64
	for _, t := range trades {
		s.NetPnL += t.NetPnL
		if t.NetPnL > 0 {
			s.WinningTrades++
			totalWin += t.NetPnL
		} else {
			s.LosingTrades++
			totalLoss += -t.NetPnL
		}
	}

	s.WinRatePct = float64(s.WinningTrades) / float64(s.TotalTrades) * 100
	if s.WinningTrades > 0 {
		s.AvgWin = totalWin / float64(s.WinningTrades)
	}
	if s.LosingTrades > 0 {
		s.AvgLoss = -totalLoss / float64(s.LosingTrades)
	}
	if totalLoss > 0 {
		s.ProfitFactor = totalWin / totalLoss
	}
}
