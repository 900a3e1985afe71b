package cashflow

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
)

var ErrNoOracle = errors.New("cashflow: rate oracle is required")

// Option configures Compute.
type Option func(*options)

type options struct {
	log      zerolog.Logger
	prefetch int
}

// WithLogger logs every fold step at debug level.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithPrefetch fetches all oracle intervals up front with at most n lookups
// in flight. The fold itself still runs sequentially. n <= 1 disables it.
func WithPrefetch(n int) Option {
	return func(o *options) { o.prefetch = n }
}

// growthFunc resolves the variable growth needed by fold step.
type growthFunc func(ctx context.Context, step int, from, to int64) (float64, error)

// Compute folds swaps, which must be sorted by time, into a position and
// accrues it up to currentTime (capped at endTime, the pool maturity).
//
// Oracle failures abort the computation and are returned as *OracleError.
// A swap earlier than its predecessor yields a *SequencingError.
func Compute(ctx context.Context, swaps []Swap, oracle RateOracle, currentTime, endTime int64, opts ...Option) (Result, error) {
	o := options{log: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}

	if currentTime > endTime {
		currentTime = endTime
	}
	if len(swaps) == 0 {
		return newResult(PositionState{}, currentTime, endTime), nil
	}
	if oracle == nil {
		return Result{}, ErrNoOracle
	}

	growth := direct(oracle)
	if o.prefetch > 1 {
		g, err := prefetch(ctx, swaps, oracle, currentTime, endTime, o.prefetch)
		if err != nil {
			return Result{}, err
		}
		growth = g
	}

	st, err := fold(ctx, swaps, currentTime, endTime, growth, o.log)
	if err != nil {
		return Result{}, err
	}
	return newResult(st, currentTime, endTime), nil
}

func fold(ctx context.Context, swaps []Swap, current, end int64, growth growthFunc, log zerolog.Logger) (PositionState, error) {
	var st PositionState
	for i, s := range swaps {
		if err := ctx.Err(); err != nil {
			return PositionState{}, err
		}
		if err := checkOrder(swaps, i); err != nil {
			return PositionState{}, err
		}

		kind := Classify(st, s)
		var g float64
		if kind != KindOpen {
			v, err := growth(ctx, i, st.Time, s.Time)
			if err != nil {
				return PositionState{}, err
			}
			g = v
		}
		st = Step(st, s, g, end)

		log.Debug().
			Int("step", i).
			Stringer("kind", kind).
			Int64("time", s.Time).
			Float64("notional", st.Notional).
			Float64("fixed_rate", st.FixedRate).
			Float64("accrued", st.Accrued).
			Msg("fold swap")
	}

	if err := checkCurrent(swaps, current); err != nil {
		return PositionState{}, err
	}
	g, err := growth(ctx, len(swaps), st.Time, current)
	if err != nil {
		return PositionState{}, err
	}
	st = Advance(st, current, g)

	log.Debug().
		Int64("time", current).
		Float64("notional", st.Notional).
		Float64("accrued", st.Accrued).
		Msg("advance to valuation time")
	return st, nil
}

func direct(oracle RateOracle) growthFunc {
	return func(ctx context.Context, step int, from, to int64) (float64, error) {
		g, err := oracle.VariableGrowth(ctx, from, to)
		if err != nil {
			return 0, &OracleError{Step: step, From: from, To: to, Err: err}
		}
		return g, nil
	}
}

func checkOrder(swaps []Swap, i int) error {
	if i == 0 || swaps[i].Time >= swaps[i-1].Time {
		return nil
	}
	return &SequencingError{Index: i, Time: swaps[i].Time, Previous: swaps[i-1].Time}
}

func checkCurrent(swaps []Swap, current int64) error {
	last := swaps[len(swaps)-1].Time
	if current >= last {
		return nil
	}
	return &SequencingError{Index: len(swaps), Time: current, Previous: last}
}
