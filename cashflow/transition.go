package cashflow

import "math"

// Kind identifies which of the four position transitions a swap triggers.
type Kind int

const (
	KindOpen   Kind = iota // position was flat, swap opens a new one
	KindExtend             // same direction, notional grows
	KindUnwind             // opposite direction, smaller than the open position
	KindFlip               // opposite direction, closes and possibly reverses
)

func (k Kind) String() string {
	switch k {
	case KindOpen:
		return "open"
	case KindExtend:
		return "extend"
	case KindUnwind:
		return "unwind"
	case KindFlip:
		return "flip"
	default:
		return "unknown"
	}
}

// Classify returns the transition applied when s is folded into st.
func Classify(st PositionState, s Swap) Kind {
	switch {
	case st.Flat():
		return KindOpen
	case sameSide(st.Notional, s.Notional):
		return KindExtend
	case math.Abs(s.Notional) < math.Abs(st.Notional):
		return KindUnwind
	default:
		return KindFlip
	}
}

// NeedsGrowth reports whether folding s into st consumes variable growth
// over [st.Time, s.Time].
func NeedsGrowth(st PositionState, s Swap) bool {
	return Classify(st, s) != KindOpen
}

// Step folds s into st. growth is the variable growth over [st.Time, s.Time]
// and is ignored when the position is flat. end is the maturity of the pool.
func Step(st PositionState, s Swap, growth float64, end int64) PositionState {
	switch Classify(st, s) {
	case KindOpen:
		return Open(st, s)
	case KindExtend:
		return Extend(st, s, growth)
	case KindUnwind:
		return Unwind(st, s, growth, end)
	default:
		return Flip(st, s, growth, end)
	}
}

// Open starts a new position from a flat state. Cashflow already realized by
// earlier, fully closed positions is carried over.
func Open(st PositionState, s Swap) PositionState {
	return PositionState{
		Time:      s.Time,
		Notional:  s.Notional,
		FixedRate: rateFor(s.Notional, s.FixedRate),
		Accrued:   st.Accrued,
	}
}

// Extend adds a swap on the same side. The interval since the last update
// accrues at the old average rate before the rates are blended.
func Extend(st PositionState, s Swap, growth float64) PositionState {
	n := st.Notional + s.Notional
	return PositionState{
		Time:      s.Time,
		Notional:  n,
		FixedRate: WeightedRate(st.FixedRate, st.Notional, s.FixedRate, s.Notional),
		Accrued:   st.Accrued + Accrual(st.Notional, st.FixedRate, growth, st.Time, s.Time),
	}
}

// Unwind closes part of the position. The unwound notional accrues up to the
// swap and locks in the rate difference until maturity; the remainder keeps
// its original time and rate.
func Unwind(st PositionState, s Swap, growth float64, end int64) PositionState {
	accrued := Accrual(-s.Notional, st.FixedRate, growth, st.Time, s.Time)
	locked := LockedIn(s.Notional, st.FixedRate, s.FixedRate, s.Time, end)
	return PositionState{
		Time:      st.Time,
		Notional:  st.Notional + s.Notional,
		FixedRate: st.FixedRate,
		Accrued:   st.Accrued + accrued + locked,
	}
}

// Flip closes the whole position and opens the excess, if any, on the other
// side at the swap's rate.
func Flip(st PositionState, s Swap, growth float64, end int64) PositionState {
	accrued := Accrual(st.Notional, st.FixedRate, growth, st.Time, s.Time)
	locked := LockedIn(-st.Notional, st.FixedRate, s.FixedRate, s.Time, end)
	n := st.Notional + s.Notional
	return PositionState{
		Time:      s.Time,
		Notional:  n,
		FixedRate: rateFor(n, s.FixedRate),
		Accrued:   st.Accrued + accrued + locked,
	}
}

// Advance accrues the open position up to t without trading.
func Advance(st PositionState, t int64, growth float64) PositionState {
	return PositionState{
		Time:      t,
		Notional:  st.Notional,
		FixedRate: st.FixedRate,
		Accrued:   st.Accrued + Accrual(st.Notional, st.FixedRate, growth, st.Time, t),
	}
}

// Accrual is the cashflow of notional paying fixedRate against the variable
// growth over [from, to].
func Accrual(notional, fixedRate, growth float64, from, to int64) float64 {
	return notional * (growth - AnnualizedTime(from, to)*fixedRate)
}

// LockedIn is the profit fixed by unwinding notional (signed opposite to the
// open position) at newRate against oldRate from at until end.
func LockedIn(unwound, oldRate, newRate float64, at, end int64) float64 {
	return unwound * AnnualizedTime(at, end) * (oldRate - newRate)
}

// WeightedRate blends two rates by notional. A zero total yields 0.
func WeightedRate(r0, n0, r1, n1 float64) float64 {
	total := n0 + n1
	if total == 0 {
		return 0
	}
	return (r0*n0 + r1*n1) / total
}

func rateFor(notional, rate float64) float64 {
	if notional == 0 {
		return 0
	}
	return rate
}

func sameSide(a, b float64) bool {
	return (a >= 0) == (b >= 0) || b == 0
}
