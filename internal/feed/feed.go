// Package feed supplies synchronized daily bars across multiple instruments.
package feed

import (
	"sort"
	"time"

	"stock-backtester/internal/errors"
	"stock-backtester/internal/models"
)

// Exclusion records an instrument dropped from the run and why.
type Exclusion struct {
	Instrument string
	Reason     string
}

// Feed replays pre-loaded bar series in date order, one synchronized bar set
// per call. Instruments with no bar on a date are simply absent from that
// set; a missing day for one instrument never desynchronizes the others.
type Feed struct {
	instruments []string
	series      map[string][]models.Bar
	cursor      map[string]int
	excluded    []Exclusion

	lastEmitted time.Time
	started     bool

	firstDate time.Time
	finalDate time.Time
}

// New builds a feed from per-instrument bar series. Instruments with an empty
// series, or a series not strictly ordered by date, are excluded from the run
// rather than failing it. Returns ErrNoData when no usable instrument remains.
func New(series map[string][]models.Bar) (*Feed, error) {
	f := &Feed{
		series: make(map[string][]models.Bar, len(series)),
		cursor: make(map[string]int, len(series)),
	}

	ids := make([]string, 0, len(series))
	for id := range series {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		bars := series[id]
		if len(bars) == 0 {
			f.excluded = append(f.excluded, Exclusion{Instrument: id, Reason: errors.ErrDataGap.Error()})
			continue
		}
		if !ordered(bars) {
			f.excluded = append(f.excluded, Exclusion{Instrument: id, Reason: "bars not strictly ordered by date"})
			continue
		}
		f.instruments = append(f.instruments, id)
		f.series[id] = bars
		f.cursor[id] = 0

		first := bars[0].Date
		last := bars[len(bars)-1].Date
		if f.firstDate.IsZero() || first.Before(f.firstDate) {
			f.firstDate = first
		}
		if last.After(f.finalDate) {
			f.finalDate = last
		}
	}

	if len(f.instruments) == 0 {
		return nil, errors.ErrNoData
	}
	return f, nil
}

func ordered(bars []models.Bar) bool {
	for i := 1; i < len(bars); i++ {
		if !bars[i].Date.After(bars[i-1].Date) {
			return false
		}
	}
	return true
}

// Next returns the next synchronized bar set: the earliest unconsumed date
// across all instruments, and one bar per instrument trading on that date.
// Dates strictly increase across calls. Returns ErrEndOfData when every
// series is exhausted.
func (f *Feed) Next() (time.Time, map[string]models.Bar, error) {
	var next time.Time
	found := false
	for _, id := range f.instruments {
		i := f.cursor[id]
		if i >= len(f.series[id]) {
			continue
		}
		d := f.series[id][i].Date
		if !found || d.Before(next) {
			next = d
			found = true
		}
	}
	if !found {
		return time.Time{}, nil, errors.ErrEndOfData
	}

	set := make(map[string]models.Bar)
	for _, id := range f.instruments {
		i := f.cursor[id]
		if i >= len(f.series[id]) {
			continue
		}
		if f.series[id][i].Date.Equal(next) {
			set[id] = f.series[id][i]
			f.cursor[id] = i + 1
		}
	}

	f.lastEmitted = next
	f.started = true
	return next, set, nil
}

// Instruments returns the usable instrument IDs in ascending order.
func (f *Feed) Instruments() []string {
	out := make([]string, len(f.instruments))
	copy(out, f.instruments)
	return out
}

// Excluded returns the instruments dropped during construction.
func (f *Feed) Excluded() []Exclusion {
	out := make([]Exclusion, len(f.excluded))
	copy(out, f.excluded)
	return out
}

// Progress returns the percentage of the calendar span already replayed.
func (f *Feed) Progress() float64 {
	if !f.started {
		return 0
	}
	total := f.finalDate.Sub(f.firstDate)
	if total <= 0 {
		return 100
	}
	done := f.lastEmitted.Sub(f.firstDate)
	pct := float64(done) / float64(total) * 100
	if pct > 100 {
		pct = 100
	}
	return pct
}

// History returns the bars already replayed for an instrument, ending at the
// most recent emitted bar. The returned slice shares backing storage with the
// feed and must not be modified.
func (f *Feed) History(instrument string) []models.Bar {
	bars, ok := f.series[instrument]
	if !ok {
		return nil
	}
	return bars[:f.cursor[instrument]]
}
