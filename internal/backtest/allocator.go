package backtest

// Allocator arbitrates available cash across instruments signaling entry on
// the same step. The policy is greedy sequential: candidates are considered
// in ascending instrument order, each receives cash/(maxPositions - slots
// used) at the time it is considered, and both cash and capacity shrink
// immediately so later candidates see the remainder.
type Allocator struct {
	maxPositions int
	lotSize      int
}

// NewAllocator creates an allocator with the given position cap and lot unit.
func NewAllocator(maxPositions, lotSize int) *Allocator {
	return &Allocator{
		maxPositions: maxPositions,
		lotSize:      lotSize,
	}
}

// MaxPositions returns the concurrent-position cap.
func (a *Allocator) MaxPositions() int {
	return a.maxPositions
}

// Budget returns the cash assigned to the next qualifying entry given the
// remaining cash and the slots already used (open positions plus pending
// buys). Returns 0 when no capacity or cash remains.
func (a *Allocator) Budget(cash float64, slotsUsed int) float64 {
	remaining := a.maxPositions - slotsUsed
	if remaining <= 0 || cash <= 0 {
		return 0
	}
	return cash / float64(remaining)
}

// Quantity converts a budget into a share quantity at the reference price,
// floored to whole lot units. A zero result means the candidate is skipped.
func (a *Allocator) Quantity(budget, refPrice float64) int {
	if budget <= 0 || refPrice <= 0 {
		return 0
	}
	qty := int(budget / refPrice)
	return qty / a.lotSize * a.lotSize
}
