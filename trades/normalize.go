package trades

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/rustyeddy/swapflow/cashflow"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Normalize converts the swap records in raw into cashflow swaps sorted by
// time. Records with equal timestamps keep their input order.
func Normalize(raw []RawTrade) ([]cashflow.Swap, error) {
	out := make([]cashflow.Swap, 0, len(raw))
	for i, r := range raw {
		if !r.IsSwap() {
			continue
		}
		s, err := normalizeOne(r)
		if err != nil {
			err.Index = i
			err.ID = r.ID
			return nil, err
		}
		out = append(out, s)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Time < out[j].Time })
	return out, nil
}

func normalizeOne(r RawTrade) (cashflow.Swap, *Error) {
	ts, err := parseTimestamp(r.Timestamp)
	if err != nil {
		return cashflow.Swap{}, &Error{Field: "timestamp", Err: err}
	}
	notional, err := parseAmount(r.VariableTokenDelta, r.Decimals)
	if err != nil {
		return cashflow.Swap{}, &Error{Field: "variable_token_delta", Err: err}
	}
	fixed, err := parseAmount(r.FixedTokenDeltaUnbalanced, r.Decimals)
	if err != nil {
		return cashflow.Swap{}, &Error{Field: "fixed_token_delta_unbalanced", Err: err}
	}

	return cashflow.Swap{
		Time:      ts,
		Notional:  notional.InexactFloat64(),
		FixedRate: FixedRate(notional, fixed),
	}, nil
}

// FixedRate is |fixed / notional| / 100, the unbalanced fixed token delta
// being expressed in percent. A zero notional yields 0.
func FixedRate(notional, fixed decimal.Decimal) float64 {
	if notional.IsZero() {
		return 0
	}
	return fixed.Div(notional).Abs().Div(hundred).InexactFloat64()
}

func parseTimestamp(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrMissingField
	}
	ts, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidField, s)
	}
	return ts, nil
}

func parseAmount(s string, decimals int32) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrMissingField
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidField, s)
	}
	if decimals > 0 {
		d = d.Shift(-decimals)
	}
	return d, nil
}
