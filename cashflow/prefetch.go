package cashflow

import (
	"context"

	"golang.org/x/sync/errgroup"
)

type interval struct {
	step     int
	from, to int64
}

// plan lists the oracle lookups fold will make. Times and notionals do not
// depend on the variable growth, so the state path can be walked with zero
// growth. Ordering is validated before anything is fetched.
func plan(swaps []Swap, current, end int64) ([]interval, error) {
	var st PositionState
	out := make([]interval, 0, len(swaps)+1)
	for i, s := range swaps {
		if err := checkOrder(swaps, i); err != nil {
			return nil, err
		}
		if NeedsGrowth(st, s) {
			out = append(out, interval{step: i, from: st.Time, to: s.Time})
		}
		st = Step(st, s, 0, end)
	}
	if err := checkCurrent(swaps, current); err != nil {
		return nil, err
	}
	return append(out, interval{step: len(swaps), from: st.Time, to: current}), nil
}

func prefetch(ctx context.Context, swaps []Swap, oracle RateOracle, current, end int64, limit int) (growthFunc, error) {
	ivs, err := plan(swaps, current, end)
	if err != nil {
		return nil, err
	}

	vals := make([]float64, len(swaps)+1)
	fetched := make([]bool, len(swaps)+1)
	lookup := direct(oracle)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, iv := range ivs {
		iv := iv
		g.Go(func() error {
			v, err := lookup(gctx, iv.step, iv.from, iv.to)
			if err != nil {
				return err
			}
			vals[iv.step] = v
			fetched[iv.step] = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return func(ctx context.Context, step int, from, to int64) (float64, error) {
		if fetched[step] {
			return vals[step], nil
		}
		return lookup(ctx, step, from, to)
	}, nil
}
