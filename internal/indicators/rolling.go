// Package indicators maintains incremental rolling-window statistics per
// instrument. All means use the standard trailing-window definition over the
// most recent window values, updated exactly once per bar with no look-ahead.
package indicators

// rollingMean is a fixed-window trailing mean over a stream of values.
type rollingMean struct {
	window int
	buf    []float64
	next   int
	pushes int
	sum    float64
	prev   float64 // mean one push ago, valid when prevOK()
}

func newRollingMean(window int) *rollingMean {
	return &rollingMean{
		window: window,
		buf:    make([]float64, window),
	}
}

// push consumes one value. The oldest value leaves the window once it is full.
func (r *rollingMean) push(v float64) {
	if r.ok() {
		r.prev = r.value()
	}
	if r.pushes >= r.window {
		r.sum -= r.buf[r.next]
	}
	r.buf[r.next] = v
	r.sum += v
	r.next = (r.next + 1) % r.window
	r.pushes++
}

// ok reports whether a full window has been observed.
func (r *rollingMean) ok() bool {
	return r.pushes >= r.window
}

// prevOK reports whether the mean one bar ago is defined.
func (r *rollingMean) prevOK() bool {
	return r.pushes >= r.window+1
}

// value returns the current trailing mean. Only meaningful when ok().
func (r *rollingMean) value() float64 {
	if r.pushes == 0 {
		return 0
	}
	n := r.pushes
	if n > r.window {
		n = r.window
	}
	return r.sum / float64(n)
}

// prevValue returns the mean one bar ago. Only meaningful when prevOK().
func (r *rollingMean) prevValue() float64 {
	return r.prev
}
