// Package trades turns raw trade records, as stored by a history source or
// returned by an indexer, into cashflow swaps.
package trades

import (
	"errors"
	"fmt"
)

// Kind is the type of a raw trade record.
type Kind string

const (
	KindSwap        Kind = "swap"
	KindMint        Kind = "mint"
	KindBurn        Kind = "burn"
	KindLiquidation Kind = "liquidation"
)

// RawTrade is a trade as recorded by the pool. Amounts are decimal strings;
// when Decimals is set they are integer base units of the underlying token
// and get scaled down by 10^Decimals.
type RawTrade struct {
	ID                        string `json:"id" yaml:"id"`
	PositionID                string `json:"position_id" yaml:"position_id"`
	Kind                      Kind   `json:"kind" yaml:"kind"`
	Timestamp                 string `json:"timestamp" yaml:"timestamp"`
	VariableTokenDelta        string `json:"variable_token_delta" yaml:"variable_token_delta"`
	FixedTokenDeltaUnbalanced string `json:"fixed_token_delta_unbalanced" yaml:"fixed_token_delta_unbalanced"`
	Decimals                  int32  `json:"decimals,omitempty" yaml:"decimals,omitempty"`
}

// IsSwap reports whether the record contributes to the position's swaps.
// Records without a kind are treated as swaps.
func (r RawTrade) IsSwap() bool {
	return r.Kind == "" || r.Kind == KindSwap
}

var (
	ErrMissingField = errors.New("missing required field")
	ErrInvalidField = errors.New("invalid field")
)

// Error reports the record and field that could not be normalized.
type Error struct {
	Index int
	ID    string
	Field string
	Err   error
}

func (e *Error) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("trades: normalize record %d (%s): %s: %v", e.Index, e.ID, e.Field, e.Err)
	}
	return fmt.Sprintf("trades: normalize record %d: %s: %v", e.Index, e.Field, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
