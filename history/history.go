// Package history supplies the raw trades of a position from files,
// databases or an indexer.
package history

import (
	"context"
	"fmt"

	"github.com/rustyeddy/swapflow/cashflow"
	"github.com/rustyeddy/swapflow/trades"
)

// Source returns the raw trades recorded for a position, in any order.
type Source interface {
	Trades(ctx context.Context, positionID string) ([]trades.RawTrade, error)
}

// LoadSwaps fetches a position's trades and normalizes them.
func LoadSwaps(ctx context.Context, src Source, positionID string) ([]cashflow.Swap, error) {
	raw, err := src.Trades(ctx, positionID)
	if err != nil {
		return nil, fmt.Errorf("history: load %q: %w", positionID, err)
	}
	return trades.Normalize(raw)
}
