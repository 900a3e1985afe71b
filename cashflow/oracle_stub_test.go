package cashflow

import (
	"context"
	"errors"
	"sync"
)

const week int64 = 7 * 24 * 60 * 60

// weeks is the annualized length of n weeks.
func weeks(n float64) float64 { return n * float64(week) / SecondsPerYear }

// apyOracle grows at a constant annualized rate.
type apyOracle struct{ apy float64 }

func (o apyOracle) VariableGrowth(_ context.Context, from, to int64) (float64, error) {
	return o.apy * AnnualizedTime(from, to), nil
}

// recordingOracle records every lookup and optionally fails on one of them.
type recordingOracle struct {
	inner  RateOracle
	failOn int // 1-based call number, 0 never fails
	err    error

	mu    sync.Mutex
	calls [][2]int64
}

func (o *recordingOracle) VariableGrowth(ctx context.Context, from, to int64) (float64, error) {
	o.mu.Lock()
	o.calls = append(o.calls, [2]int64{from, to})
	n := len(o.calls)
	o.mu.Unlock()

	if o.failOn > 0 && n == o.failOn {
		return 0, o.err
	}
	return o.inner.VariableGrowth(ctx, from, to)
}

func (o *recordingOracle) Calls() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.calls)
}

var errRPC = errors.New("rpc: connection refused")
