// Package oracle provides variable rate sources for the cashflow engine.
package oracle

import (
	"context"
	"errors"
	"fmt"

	"github.com/rustyeddy/swapflow/cashflow"
)

var (
	ErrOutOfRange    = errors.New("oracle: interval outside observed range")
	ErrInvalidWindow = errors.New("oracle: interval ends before it starts")
)

var (
	_ cashflow.RateOracle = APY{}
	_ cashflow.RateOracle = Func(nil)
	_ cashflow.RateOracle = (*Table)(nil)
	_ cashflow.RateOracle = (*Chain)(nil)
	_ cashflow.RateOracle = (*Cached)(nil)
)

// APY grows at a constant annualized rate given in percent. It is what the
// CLI uses for what-if runs when no rate history is available.
type APY struct {
	Percent float64
}

func (a APY) VariableGrowth(_ context.Context, from, to int64) (float64, error) {
	if to < from {
		return 0, fmt.Errorf("%w: [%d, %d]", ErrInvalidWindow, from, to)
	}
	return a.Percent / 100 * cashflow.AnnualizedTime(from, to), nil
}

// Func adapts a plain function to cashflow.RateOracle.
type Func func(ctx context.Context, from, to int64) (float64, error)

func (f Func) VariableGrowth(ctx context.Context, from, to int64) (float64, error) {
	return f(ctx, from, to)
}
