package indicators

// rsiState computes RSI over a trailing window using simple rolling means of
// positive and negative price deltas (not Wilder smoothing). An RSI over n
// deltas needs n+1 closes before it is defined.
type rsiState struct {
	gains  *rollingMean
	losses *rollingMean
	last   float64
	primed bool // a first close has been observed
}

func newRSIState(window int) *rsiState {
	return &rsiState{
		gains:  newRollingMean(window),
		losses: newRollingMean(window),
	}
}

// push consumes one close price.
func (r *rsiState) push(close float64) {
	if r.primed {
		delta := close - r.last
		if delta > 0 {
			r.gains.push(delta)
			r.losses.push(0)
		} else {
			r.gains.push(0)
			r.losses.push(-delta)
		}
	}
	r.last = close
	r.primed = true
}

// ok reports whether a full window of deltas has been observed.
func (r *rsiState) ok() bool {
	return r.gains.ok()
}

// value returns the RSI in [0, 100]. Only meaningful when ok().
//
// The zero-average-loss case is an explicit branch: a window with no losses
// reads 100 when there were gains, and 50 (neutral) when the price never
// moved, never a divide-by-zero NaN.
func (r *rsiState) value() float64 {
	avgGain := r.gains.value()
	avgLoss := r.losses.value()

	if avgLoss == 0 {
		if avgGain > 0 {
			return 100
		}
		return 50
	}

	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}
