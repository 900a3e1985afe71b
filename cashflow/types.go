// Package cashflow folds an ordered list of interest-rate swaps into a single
// position and reports the cashflow it has accrued and is expected to accrue
// until maturity.
//
// Sign convention: a positive notional is a variable taker (receives
// floating, pays fixed), a negative notional is a fixed taker.
package cashflow

import "context"

// SecondsPerYear is the day count used to annualize intervals (ACT/365F).
const SecondsPerYear = 31_536_000

// Swap is a single trade against the pool.
type Swap struct {
	Time      int64   // unix seconds
	Notional  float64 // signed, see package doc
	FixedRate float64 // fraction, 0.05 == 5%
}

// PositionState is the running aggregate after folding swaps up to Time.
// It is a value type: every transition returns a new state.
type PositionState struct {
	Time      int64
	Notional  float64
	FixedRate float64 // notional weighted, 0 when flat
	Accrued   float64 // realized cashflow in underlying token units
}

// Flat reports whether the position has no net exposure.
func (s PositionState) Flat() bool { return s.Notional == 0 }

// RateOracle answers how much the variable rate grew between two times.
// The returned value is the total growth over the interval, not annualized.
type RateOracle interface {
	VariableGrowth(ctx context.Context, from, to int64) (float64, error)
}

// AnnualizedTime converts the interval [from, to] into years.
func AnnualizedTime(from, to int64) float64 {
	return float64(to-from) / SecondsPerYear
}
