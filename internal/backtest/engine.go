package backtest

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"stock-backtester/internal/config"
	"stock-backtester/internal/errors"
	"stock-backtester/internal/feed"
	"stock-backtester/internal/indicators"
	"stock-backtester/internal/logging"
	"stock-backtester/internal/models"
	"stock-backtester/internal/performance"
	"stock-backtester/internal/strategy"
)

const progressLogEvery = 50 // steps

// Result holds everything a run produced. On a fatal mid-run error the
// partial ledger accumulated so far is still returned alongside the error.
type Result struct {
	InitialCapital float64
	FinalEquity    float64
	Trades         []models.Trade
	EquityCurve    []models.EquityPoint
	OpenPositions  []models.Position
	Excluded       []feed.Exclusion
	Steps          int
}

// Engine drives the simulation: it replays synchronized bars, updates
// indicators, evaluates signals, allocates capital and executes orders, one
// deterministic step per trading day.
type Engine struct {
	cfg       *config.Config
	log       zerolog.Logger
	feed      *feed.Feed
	ind       *indicators.Engine
	evaluator *strategy.Evaluator
	manager   *Manager
	allocator *Allocator
	ledger    *Ledger
	pool      *performance.WorkerPool
}

// New creates an engine over a prepared bar feed.
func New(cfg *config.Config, logger zerolog.Logger, f *feed.Feed) *Engine {
	indCfg := indicators.Config{
		FastMA:  cfg.Strategy.FastMAWindow,
		MidMA:   cfg.Strategy.MidMAWindow,
		SlowMA:  cfg.Strategy.SlowMAWindow,
		FastRSI: cfg.Strategy.FastRSIWindow,
		SlowRSI: cfg.Strategy.SlowRSIWindow,
		FastVol: cfg.Strategy.FastVolWindow,
		SlowVol: cfg.Strategy.SlowVolWindow,
	}

	e := &Engine{
		cfg:       cfg,
		log:       logger,
		feed:      f,
		ind:       indicators.NewEngine(indCfg),
		evaluator: strategy.NewEvaluator(cfg.Strategy),
		manager:   NewManager(cfg.Engine.CommissionRate, cfg.Engine.LotSize),
		allocator: NewAllocator(cfg.Engine.MaxPositions, cfg.Engine.LotSize),
		ledger:    NewLedger(cfg.Engine.InitialCapital),
	}
	if cfg.Engine.Workers > 1 {
		e.pool = performance.NewWorkerPool(cfg.Engine.Workers)
	}
	return e
}

// Run executes the simulation to the end of the bar data. The loop is
// bit-reproducible: instruments are always visited in ascending ID order and
// nothing in the hot path reads the clock or a random source.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	for _, ex := range e.feed.Excluded() {
		e.log.Warn().
			Str("instrument", ex.Instrument).
			Str("reason", ex.Reason).
			Msg("Instrument excluded from run")
	}

	if e.pool != nil {
		e.pool.Start()
		defer e.pool.Stop()
	}

	instruments := e.feed.Instruments()
	steps := 0

	for {
		if err := ctx.Err(); err != nil {
			return e.result(steps), err
		}

		date, bars, err := e.feed.Next()
		if err != nil {
			if errors.Is(err, errors.ErrEndOfData) {
				break
			}
			return e.result(steps), err
		}
		steps++

		// Malformed bars isolate their instrument for the step, never the run.
		for _, id := range instruments {
			bar, ok := bars[id]
			if ok && !bar.Valid() {
				e.log.Warn().
					Str("instrument", id).
					Time("date", date).
					Msg("Malformed bar skipped")
				delete(bars, id)
			}
		}

		snaps := e.updateIndicators(instruments, bars)

		// Fills resolve before new signals: sells first so cash freed by
		// today's exits is visible to today's entries under the sequential
		// cash policy.
		cashBeforeSells := e.ledger.Cash()
		if err := e.fillPass(instruments, bars, models.SideSell); err != nil {
			return e.result(steps), err
		}
		if err := e.fillPass(instruments, bars, models.SideBuy); err != nil {
			return e.result(steps), err
		}

		allocCash := e.ledger.Cash()
		if e.cfg.Engine.CashPolicy == config.CashIsolated && allocCash > cashBeforeSells {
			allocCash = cashBeforeSells
		}

		e.signalPass(instruments, bars, snaps, date, allocCash)

		closes := make(map[string]float64, len(bars))
		for id, bar := range bars {
			closes[id] = bar.Close
		}
		e.ledger.MarkToMarket(date, closes, e.manager.Positions())

		if steps%progressLogEvery == 0 {
			logging.LogProgress(e.log, date, e.feed.Progress())
		}
	}

	res := e.result(steps)
	e.log.Info().
		Int("steps", steps).
		Int("trades", len(res.Trades)).
		Float64("final_equity", res.FinalEquity).
		Msg("Simulation complete")
	return res, nil
}

// updateIndicators feeds this step's bars into the per-instrument rolling
// state, in parallel when a pool is configured. Indicator updates are pure
// per-instrument computations, so parallelism cannot change the outcome.
func (e *Engine) updateIndicators(instruments []string, bars map[string]models.Bar) map[string]indicators.Snapshot {
	snaps := make(map[string]indicators.Snapshot, len(bars))

	if e.pool == nil {
		for _, id := range instruments {
			if bar, ok := bars[id]; ok {
				snaps[id] = e.ind.Update(bar)
			}
		}
		return snaps
	}

	type slot struct {
		id   string
		snap indicators.Snapshot
	}
	var (
		active []string
		states []*indicators.State
	)
	for _, id := range instruments {
		if _, ok := bars[id]; ok {
			active = append(active, id)
			states = append(states, e.ind.Ensure(id))
		}
	}

	results := make([]slot, len(active))
	tasks := make([]func(), len(active))
	for i := range active {
		i := i
		tasks[i] = func() {
			results[i] = slot{id: active[i], snap: states[i].Update(bars[active[i]])}
		}
	}
	e.pool.Do(tasks)

	for _, r := range results {
		snaps[r.id] = r.snap
	}
	return snaps
}

// fillPass executes live orders of one side against this step's bars, in
// ascending instrument order. An instrument without a bar today keeps its
// order pending for its next observed bar.
func (e *Engine) fillPass(instruments []string, bars map[string]models.Bar, side models.Side) error {
	for _, id := range instruments {
		order := e.manager.LiveOrder(id)
		if order == nil || order.Side != side {
			continue
		}
		bar, ok := bars[id]
		if !ok {
			continue
		}

		fill, trade, err := e.manager.TryFill(order, bar, e.ledger.Cash())
		if err != nil {
			e.log.Error().Err(err).Str("instrument", id).Msg("Fill failed")
			return err
		}
		if fill == nil {
			e.log.Debug().
				Str("instrument", id).
				Str("order_id", order.ID).
				Msg("Order canceled: budget affords no whole lot at the open")
			continue
		}

		e.ledger.RecordFill(*fill)
		logging.LogFill(e.log, fill.Instrument, string(fill.Side), fill.Quantity, fill.Price, fill.Commission, fill.Date)

		if trade != nil {
			e.ledger.RecordTrade(*trade)
			logging.LogTrade(e.log, trade.Instrument, trade.Quantity, trade.GrossPnL, trade.NetPnL)
		}
	}
	return nil
}

// signalPass evaluates exits then entries for every instrument trading today,
// in ascending instrument order. Entries draw from allocCash greedily:
// each accepted candidate reduces the remaining cash and capacity before the
// next one is considered.
func (e *Engine) signalPass(instruments []string, bars map[string]models.Bar, snaps map[string]indicators.Snapshot, date time.Time, allocCash float64) {
	available := allocCash - e.manager.ReservedCash()

	for _, id := range instruments {
		bar, ok := bars[id]
		if !ok {
			continue
		}
		// A new signal is ignored while an order is outstanding.
		if e.manager.HasOpenOrder(id) {
			continue
		}

		snap := snaps[id]
		pos := e.manager.Position(id)

		switch e.evaluator.Evaluate(pos.Open(), snap) {
		case models.SignalExit:
			logging.LogSignal(e.log, id, string(models.SignalExit), date, bar.Close)
			if _, err := e.manager.Submit(id, models.SideSell, pos.Quantity, 0, date); err != nil {
				e.log.Warn().Err(err).Str("instrument", id).Msg("Sell submission skipped")
			}

		case models.SignalEnter:
			slotsUsed := e.manager.OpenPositionCount() + e.manager.PendingBuyCount()
			budget := e.allocator.Budget(available, slotsUsed)
			qty := e.allocator.Quantity(budget, bar.Close)
			if qty <= 0 {
				e.log.Debug().
					Str("instrument", id).
					Float64("budget", budget).
					Msg("Entry skipped: no capacity or budget below one lot")
				continue
			}
			logging.LogSignal(e.log, id, string(models.SignalEnter), date, bar.Close)
			if _, err := e.manager.Submit(id, models.SideBuy, qty, budget, date); err != nil {
				e.log.Warn().Err(err).Str("instrument", id).Msg("Buy submission skipped")
				continue
			}
			available -= budget
		}
	}
}

func (e *Engine) result(steps int) *Result {
	positions := make([]models.Position, 0)
	for _, p := range e.manager.Positions() {
		positions = append(positions, *p)
	}

	curve := e.ledger.EquityCurve()
	final := e.ledger.InitialCapital()
	if len(curve) > 0 {
		final = curve[len(curve)-1].Equity
	}

	return &Result{
		InitialCapital: e.ledger.InitialCapital(),
		FinalEquity:    final,
		Trades:         e.ledger.Trades(),
		EquityCurve:    curve,
		OpenPositions:  positions,
		Excluded:       e.feed.Excluded(),
		Steps:          steps,
	}
}
