package backtest

import (
	"math"
	"testing"
	"time"

	"stock-backtester/internal/errors"
	"stock-backtester/internal/models"
)

func day(n int) time.Time {
	return time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func mkBar(id string, n int, open, close float64) models.Bar {
	high := open
	if close > high {
		high = close
	}
	low := open
	if close < low {
		low = close
	}
	return models.Bar{
		Instrument: id,
		Date:       day(n),
		Open:       open,
		High:       high,
		Low:        low,
		Close:      close,
		Volume:     1000,
	}
}

func TestSubmitRejectsSecondLiveOrder(t *testing.T) {
	m := NewManager(0.0003, 100)

	if _, err := m.Submit("AAA", models.SideBuy, 100, 10000, day(0)); err != nil {
		t.Fatalf("first Submit: %v", err)
	}
	if _, err := m.Submit("AAA", models.SideBuy, 100, 10000, day(0)); !errors.Is(err, errors.ErrOpenOrder) {
		t.Errorf("second Submit: err = %v, want ErrOpenOrder", err)
	}
	if !m.HasOpenOrder("AAA") {
		t.Error("live order lost after rejected submit")
	}
}

func TestSubmitSellWithoutPosition(t *testing.T) {
	m := NewManager(0.0003, 100)
	if _, err := m.Submit("AAA", models.SideSell, 100, 0, day(0)); !errors.Is(err, errors.ErrNoPosition) {
		t.Errorf("sell while flat: err = %v, want ErrNoPosition", err)
	}
}

func TestSubmitRejectsNonPositiveQuantity(t *testing.T) {
	m := NewManager(0.0003, 100)
	if _, err := m.Submit("AAA", models.SideBuy, 0, 10000, day(0)); err == nil {
		t.Error("Submit with zero quantity succeeded")
	}
}

func TestBuyFillAtNextOpen(t *testing.T) {
	m := NewManager(0.0003, 100)

	order, err := m.Submit("AAA", models.SideBuy, 200, 45000, day(0))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	bar := mkBar("AAA", 1, 220.5, 225)
	fill, trade, err := m.TryFill(order, bar, 100000)
	if err != nil {
		t.Fatalf("TryFill: %v", err)
	}
	if trade != nil {
		t.Error("buy fill produced a trade")
	}
	if fill.Price != 220.5 {
		t.Errorf("fill price = %v, want the bar open 220.5", fill.Price)
	}
	if fill.Quantity != 200 {
		t.Errorf("fill quantity = %d, want 200", fill.Quantity)
	}
	wantCommission := 220.5 * 200 * 0.0003
	if math.Abs(fill.Commission-wantCommission) > 1e-9 {
		t.Errorf("commission = %v, want %v", fill.Commission, wantCommission)
	}

	pos := m.Position("AAA")
	if pos == nil || pos.Quantity != 200 || pos.AveragePrice != 220.5 {
		t.Errorf("position after fill = %+v", pos)
	}
	if m.HasOpenOrder("AAA") {
		t.Error("order still live after fill")
	}
}

// An overnight gap-up must shrink the fill to what the reserved budget
// affords, never overdraw it.
func TestBuyFillClampedToBudgetOnGapUp(t *testing.T) {
	m := NewManager(0.0003, 100)

	// Sized at a 220 close: 45000/220 lot-floored = 200 shares.
	order, err := m.Submit("AAA", models.SideBuy, 200, 45000, day(0))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	// Opens 50% up; 45000 now affords only 100 shares.
	bar := mkBar("AAA", 1, 330, 335)
	fill, _, err := m.TryFill(order, bar, 45000)
	if err != nil {
		t.Fatalf("TryFill: %v", err)
	}
	if fill.Quantity != 100 {
		t.Errorf("clamped quantity = %d, want 100", fill.Quantity)
	}
	cost := fill.Notional() + fill.Commission
	if cost > 45000+cashEpsilon {
		t.Errorf("cost %v exceeds the reserved budget", cost)
	}
}

func TestBuyFillCanceledWhenBudgetAffordsNothing(t *testing.T) {
	m := NewManager(0.0003, 100)

	order, err := m.Submit("AAA", models.SideBuy, 100, 10000, day(0))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	// Open so high even one lot exceeds the budget.
	bar := mkBar("AAA", 1, 500, 510)
	fill, trade, err := m.TryFill(order, bar, 10000)
	if err != nil {
		t.Fatalf("TryFill: %v", err)
	}
	if fill != nil || trade != nil {
		t.Errorf("got fill %v trade %v, want the order dropped", fill, trade)
	}
	if order.State != models.OrderCanceled {
		t.Errorf("order state = %v, want Canceled", order.State)
	}
	if m.HasOpenOrder("AAA") {
		t.Error("canceled order still live")
	}
}

func TestBuyFillInsufficientCashIsFatal(t *testing.T) {
	m := NewManager(0.0003, 100)

	// No budget reservation, so the clamp cannot save an overdrawn account.
	order, err := m.Submit("AAA", models.SideBuy, 200, 0, day(0))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	bar := mkBar("AAA", 1, 220, 225)
	_, _, err = m.TryFill(order, bar, 1000)
	if !errors.Is(err, errors.ErrInsufficientCash) {
		t.Errorf("TryFill: err = %v, want ErrInsufficientCash", err)
	}
}

func TestSellFillClosesRoundTrip(t *testing.T) {
	m := NewManager(0.0003, 100)

	buy, _ := m.Submit("AAA", models.SideBuy, 200, 0, day(0))
	if _, _, err := m.TryFill(buy, mkBar("AAA", 1, 100, 105), 1e9); err != nil {
		t.Fatalf("buy fill: %v", err)
	}

	sell, err := m.Submit("AAA", models.SideSell, 200, 0, day(5))
	if err != nil {
		t.Fatalf("sell Submit: %v", err)
	}
	fill, trade, err := m.TryFill(sell, mkBar("AAA", 6, 110, 108), 0)
	if err != nil {
		t.Fatalf("sell fill: %v", err)
	}
	if fill.Price != 110 {
		t.Errorf("exit price = %v, want the next bar open 110", fill.Price)
	}
	if trade == nil {
		t.Fatal("sell fill produced no trade")
	}

	entryCommission := 100.0 * 200 * 0.0003
	exitCommission := 110.0 * 200 * 0.0003
	wantGross := (110.0 - 100.0) * 200
	wantNet := wantGross - entryCommission - exitCommission

	if trade.GrossPnL != roundCents(wantGross) {
		t.Errorf("gross = %v, want %v", trade.GrossPnL, roundCents(wantGross))
	}
	if trade.NetPnL != roundCents(wantNet) {
		t.Errorf("net = %v, want %v", trade.NetPnL, roundCents(wantNet))
	}
	if trade.Commission != roundCents(entryCommission+exitCommission) {
		t.Errorf("commission = %v, want both legs", trade.Commission)
	}
	if !trade.EntryDate.Equal(day(1)) || !trade.ExitDate.Equal(day(6)) {
		t.Errorf("trade dates = %v..%v, want fill dates", trade.EntryDate, trade.ExitDate)
	}

	if m.Position("AAA") != nil {
		t.Error("position survives a full exit")
	}
	if m.OpenPositionCount() != 0 {
		t.Errorf("open positions = %d, want 0", m.OpenPositionCount())
	}
}

func TestPendingBuyAccounting(t *testing.T) {
	m := NewManager(0.0003, 100)

	m.Submit("AAA", models.SideBuy, 100, 20000, day(0))
	m.Submit("BBB", models.SideBuy, 100, 30000, day(0))

	if n := m.PendingBuyCount(); n != 2 {
		t.Errorf("PendingBuyCount = %d, want 2", n)
	}
	if r := m.ReservedCash(); math.Abs(r-50000) > 1e-9 {
		t.Errorf("ReservedCash = %v, want 50000", r)
	}
}
