package indicators

import (
	"time"

	"stock-backtester/internal/models"
)

// Config holds the rolling-window lengths for one strategy run.
type Config struct {
	FastMA  int // price MA, exit reference
	MidMA   int // price MA, slope confirmation
	SlowMA  int // price MA, long-term trend
	FastRSI int
	SlowRSI int
	FastVol int // volume MA
	SlowVol int // volume MA
}

// DefaultConfig returns the window set of the original strategy.
func DefaultConfig() Config {
	return Config{
		FastMA:  20,
		MidMA:   60,
		SlowMA:  240,
		FastRSI: 6,
		SlowRSI: 13,
		FastVol: 3,
		SlowVol: 8,
	}
}

// longest returns the bar count after which every indicator is defined.
func (c Config) longest() int {
	windows := []int{
		c.FastMA, c.MidMA, c.SlowMA,
		c.FastRSI + 1, c.SlowRSI + 1, // RSI over n deltas needs n+1 bars
		c.FastVol, c.SlowVol,
	}
	max := 0
	for _, w := range windows {
		if w > max {
			max = w
		}
	}
	return max
}

// Snapshot is the strongly-typed indicator record for one instrument on one
// bar. Every field is a fixed struct member so a missing indicator is a
// compile-time error, not a silent zero lookup.
//
// Value fields are meaningful only when Ready is true; the *Prev slope fields
// additionally require TrendReady.
type Snapshot struct {
	Instrument string
	Date       time.Time

	Close     float64
	PrevClose float64

	FastMA     float64
	FastMAPrev float64
	MidMA      float64
	MidMAPrev  float64
	SlowMA     float64
	SlowMAPrev float64

	FastRSI float64
	SlowRSI float64

	FastVolMA     float64
	FastVolMAPrev float64
	SlowVolMA     float64
	SlowVolMAPrev float64

	// Ready becomes true exactly once the longest configured window has
	// elapsed for this instrument.
	Ready bool
	// TrendReady adds one more bar so the one-bar slopes are defined.
	TrendReady bool
}

// State is the mutable rolling state for one instrument.
type State struct {
	cfg     Config
	longest int

	fastMA *rollingMean
	midMA  *rollingMean
	slowMA *rollingMean

	fastRSI *rsiState
	slowRSI *rsiState

	fastVol *rollingMean
	slowVol *rollingMean

	bars      int
	close     float64
	prevClose float64
}

// NewState creates rolling state for one instrument.
func NewState(cfg Config) *State {
	return &State{
		cfg:     cfg,
		longest: cfg.longest(),
		fastMA:  newRollingMean(cfg.FastMA),
		midMA:   newRollingMean(cfg.MidMA),
		slowMA:  newRollingMean(cfg.SlowMA),
		fastRSI: newRSIState(cfg.FastRSI),
		slowRSI: newRSIState(cfg.SlowRSI),
		fastVol: newRollingMean(cfg.FastVol),
		slowVol: newRollingMean(cfg.SlowVol),
	}
}

// Update consumes one bar and returns the resulting snapshot. Bars must
// arrive in date order; calendar gaps are fine, only observed bars count.
func (s *State) Update(bar models.Bar) Snapshot {
	s.prevClose = s.close
	s.close = bar.Close
	s.bars++

	s.fastMA.push(bar.Close)
	s.midMA.push(bar.Close)
	s.slowMA.push(bar.Close)
	s.fastRSI.push(bar.Close)
	s.slowRSI.push(bar.Close)
	s.fastVol.push(float64(bar.Volume))
	s.slowVol.push(float64(bar.Volume))

	return s.snapshot(bar)
}

// Ready reports whether the longest configured window has elapsed.
func (s *State) Ready() bool {
	return s.bars >= s.longest
}

// BarsSeen returns the number of bars observed for this instrument.
func (s *State) BarsSeen() int {
	return s.bars
}

func (s *State) snapshot(bar models.Bar) Snapshot {
	snap := Snapshot{
		Instrument: bar.Instrument,
		Date:       bar.Date,
		Close:      s.close,
		PrevClose:  s.prevClose,
		Ready:      s.bars >= s.longest,
		TrendReady: s.bars >= s.longest+1,
	}
	if !snap.Ready {
		return snap
	}

	snap.FastMA = s.fastMA.value()
	snap.MidMA = s.midMA.value()
	snap.SlowMA = s.slowMA.value()
	snap.FastRSI = s.fastRSI.value()
	snap.SlowRSI = s.slowRSI.value()
	snap.FastVolMA = s.fastVol.value()
	snap.SlowVolMA = s.slowVol.value()

	if snap.TrendReady {
		snap.FastMAPrev = s.fastMA.prevValue()
		snap.MidMAPrev = s.midMA.prevValue()
		snap.SlowMAPrev = s.slowMA.prevValue()
		snap.FastVolMAPrev = s.fastVol.prevValue()
		snap.SlowVolMAPrev = s.slowVol.prevValue()
	}
	return snap
}

// Engine maintains per-instrument rolling state for a simulation run.
type Engine struct {
	cfg    Config
	states map[string]*State
}

// NewEngine creates an indicator engine with the given window configuration.
func NewEngine(cfg Config) *Engine {
	return &Engine{
		cfg:    cfg,
		states: make(map[string]*State),
	}
}

// Update feeds one bar to the instrument's rolling state, creating it on
// first sight, and returns the snapshot after the update.
func (e *Engine) Update(bar models.Bar) Snapshot {
	st, ok := e.states[bar.Instrument]
	if !ok {
		st = NewState(e.cfg)
		e.states[bar.Instrument] = st
	}
	return st.Update(bar)
}

// State returns the rolling state for an instrument, or nil if unseen.
func (e *Engine) State(instrument string) *State {
	return e.states[instrument]
}

// Ensure returns the rolling state for an instrument, creating it if needed.
// Callers that update states from multiple goroutines must Ensure every
// instrument first; State.Update itself touches only per-instrument state.
func (e *Engine) Ensure(instrument string) *State {
	st, ok := e.states[instrument]
	if !ok {
		st = NewState(e.cfg)
		e.states[instrument] = st
	}
	return st
}
