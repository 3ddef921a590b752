// Package backtest implements the simulation loop: order lifecycle, capital
// allocation, and the portfolio ledger.
package backtest

import (
	"fmt"
	"math"
	"sort"
	"time"

	"stock-backtester/internal/errors"
	"stock-backtester/internal/models"
)

const cashEpsilon = 1e-6

// Manager tracks the live order and position for each instrument and executes
// fills. Orders fill at the open of the next bar observed for the instrument
// after the signal bar, never at the signal bar's own price.
type Manager struct {
	commissionRate float64
	lotSize        int

	orders          map[string]*models.Order // at most one live order per instrument
	positions       map[string]*models.Position
	entryCommission map[string]float64
	nextID          int
}

// NewManager creates an order and position manager.
func NewManager(commissionRate float64, lotSize int) *Manager {
	return &Manager{
		commissionRate:  commissionRate,
		lotSize:         lotSize,
		orders:          make(map[string]*models.Order),
		positions:       make(map[string]*models.Position),
		entryCommission: make(map[string]float64),
	}
}

// Submit registers a new order for the instrument. budget is the cash
// reserved for a buy; it caps the fill notional. Returns ErrOpenOrder while a
// previous order for the instrument is still live.
func (m *Manager) Submit(instrument string, side models.Side, qty int, budget float64, date time.Time) (*models.Order, error) {
	if _, live := m.orders[instrument]; live {
		return nil, errors.ErrOpenOrder
	}
	if side == models.SideSell && !m.positions[instrument].Open() {
		return nil, errors.ErrNoPosition
	}
	if qty <= 0 {
		return nil, errors.NewOrderError("", instrument, string(side), fmt.Sprintf("non-positive quantity %d", qty), nil)
	}

	m.nextID++
	order := &models.Order{
		ID:          fmt.Sprintf("ORD-%06d", m.nextID),
		Instrument:  instrument,
		Side:        side,
		Quantity:    qty,
		Budget:      budget,
		State:       models.OrderSubmitted,
		SubmittedAt: date,
	}
	m.orders[instrument] = order
	return order, nil
}

// HasOpenOrder reports whether the instrument has a live order.
func (m *Manager) HasOpenOrder(instrument string) bool {
	_, live := m.orders[instrument]
	return live
}

// LiveOrder returns the instrument's live order, or nil.
func (m *Manager) LiveOrder(instrument string) *models.Order {
	return m.orders[instrument]
}

// Position returns the instrument's position, or nil when flat.
func (m *Manager) Position(instrument string) *models.Position {
	return m.positions[instrument]
}

// Positions returns all open positions sorted by instrument ID.
func (m *Manager) Positions() []*models.Position {
	ids := make([]string, 0, len(m.positions))
	for id := range m.positions {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]*models.Position, 0, len(ids))
	for _, id := range ids {
		out = append(out, m.positions[id])
	}
	return out
}

// OpenPositionCount returns the number of instruments holding shares.
func (m *Manager) OpenPositionCount() int {
	return len(m.positions)
}

// PendingBuyCount returns the number of live buy orders. Each one will become
// a position when it fills, so it consumes a slot against the position cap.
func (m *Manager) PendingBuyCount() int {
	n := 0
	for _, o := range m.orders {
		if o.Side == models.SideBuy {
			n++
		}
	}
	return n
}

// ReservedCash returns the total budget committed to live buy orders. The
// cash has not left the ledger yet, so allocation must not promise it again.
func (m *Manager) ReservedCash() float64 {
	total := 0.0
	for _, o := range m.orders {
		if o.Side == models.SideBuy {
			total += o.Budget
		}
	}
	return total
}

// TryFill executes the instrument's live order against the bar's open price.
// cash is the ledger cash available at fill time.
//
// A buy fill is clamped to the quantity its reserved budget affords at the
// actual open (lot-floored); if that rounds to zero the order is canceled.
// A buy whose cost would exceed available cash returns ErrInsufficientCash
// and a sell on a flat instrument returns ErrNoPosition; both indicate a
// broken allocator contract and abort the run.
//
// Returns the fill and, when a sell closes the position, the resulting trade.
func (m *Manager) TryFill(order *models.Order, bar models.Bar, cash float64) (*models.Fill, *models.Trade, error) {
	price := bar.Open

	switch order.Side {
	case models.SideBuy:
		return m.fillBuy(order, bar, price, cash)
	case models.SideSell:
		return m.fillSell(order, bar, price)
	default:
		return nil, nil, errors.NewOrderError(order.ID, order.Instrument, string(order.Side), "unknown side", nil)
	}
}

func (m *Manager) fillBuy(order *models.Order, bar models.Bar, price, cash float64) (*models.Fill, *models.Trade, error) {
	qty := order.Quantity
	if order.Budget > 0 {
		// The order was sized against the signal bar's close; the actual
		// open may have gapped up, so re-floor against the budget.
		affordable := int(order.Budget / (price * (1 + m.commissionRate)))
		affordable = affordable / m.lotSize * m.lotSize
		if affordable < qty {
			qty = affordable
		}
	}
	if qty <= 0 {
		order.State = models.OrderCanceled
		delete(m.orders, order.Instrument)
		return nil, nil, nil
	}

	notional := price * float64(qty)
	commission := notional * m.commissionRate
	cost := notional + commission
	if cost > cash+cashEpsilon {
		return nil, nil, errors.Wrapf(errors.ErrInsufficientCash,
			"buy %s qty %d cost %.2f cash %.2f", order.Instrument, qty, cost, cash)
	}

	m.positions[order.Instrument] = &models.Position{
		Instrument:   order.Instrument,
		Quantity:     qty,
		AveragePrice: price,
		EntryDate:    bar.Date,
	}
	m.entryCommission[order.Instrument] = commission

	order.State = models.OrderFilled
	delete(m.orders, order.Instrument)

	return &models.Fill{
		OrderID:    order.ID,
		Instrument: order.Instrument,
		Side:       models.SideBuy,
		Quantity:   qty,
		Price:      price,
		Commission: commission,
		Date:       bar.Date,
	}, nil, nil
}

func (m *Manager) fillSell(order *models.Order, bar models.Bar, price float64) (*models.Fill, *models.Trade, error) {
	pos := m.positions[order.Instrument]
	if !pos.Open() {
		return nil, nil, errors.Wrapf(errors.ErrNoPosition, "sell %s", order.Instrument)
	}

	qty := pos.Quantity // full exit, no partial sells
	notional := price * float64(qty)
	commission := notional * m.commissionRate
	entryCommission := m.entryCommission[order.Instrument]

	gross := (price - pos.AveragePrice) * float64(qty)
	net := gross - entryCommission - commission

	entryValue := pos.AveragePrice * float64(qty)
	returnPct := 0.0
	if entryValue > 0 {
		returnPct = net / entryValue * 100
	}

	trade := &models.Trade{
		Instrument: order.Instrument,
		EntryDate:  pos.EntryDate,
		ExitDate:   bar.Date,
		EntryPrice: pos.AveragePrice,
		ExitPrice:  price,
		Quantity:   qty,
		GrossPnL:   roundCents(gross),
		NetPnL:     roundCents(net),
		Commission: roundCents(entryCommission + commission),
		ReturnPct:  returnPct,
	}

	delete(m.positions, order.Instrument)
	delete(m.entryCommission, order.Instrument)

	order.State = models.OrderFilled
	delete(m.orders, order.Instrument)

	return &models.Fill{
		OrderID:    order.ID,
		Instrument: order.Instrument,
		Side:       models.SideSell,
		Quantity:   qty,
		Price:      price,
		Commission: commission,
		Date:       bar.Date,
	}, trade, nil
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
