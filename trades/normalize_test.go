package trades

import (
	"errors"
	"testing"

	"github.com/rustyeddy/swapflow/cashflow"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeSortsAndDerivesRate(t *testing.T) {
	t.Parallel()

	raw := []RawTrade{
		{ID: "b", Kind: KindSwap, Timestamp: "1209600", VariableTokenDelta: "1000", FixedTokenDeltaUnbalanced: "-2500"},
		{ID: "m", Kind: KindMint, Timestamp: "100"},
		{ID: "a", Timestamp: "604800", VariableTokenDelta: "1000", FixedTokenDeltaUnbalanced: "-2000"},
		{ID: "c", Kind: KindSwap, Timestamp: "1814400", VariableTokenDelta: "-400", FixedTokenDeltaUnbalanced: "1200"},
	}

	got, err := Normalize(raw)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, int64(604800), got[0].Time)
	assert.InDelta(t, 1000.0, got[0].Notional, 0)
	assert.InDelta(t, 0.02, got[0].FixedRate, 1e-15)

	assert.Equal(t, int64(1209600), got[1].Time)
	assert.InDelta(t, 0.025, got[1].FixedRate, 1e-15)

	assert.InDelta(t, -400.0, got[2].Notional, 0)
	assert.InDelta(t, 0.03, got[2].FixedRate, 1e-15)
}

func TestNormalizeStableOnTies(t *testing.T) {
	t.Parallel()

	raw := []RawTrade{
		{Timestamp: "50", VariableTokenDelta: "3", FixedTokenDeltaUnbalanced: "0"},
		{Timestamp: "10", VariableTokenDelta: "1", FixedTokenDeltaUnbalanced: "0"},
		{Timestamp: "10", VariableTokenDelta: "2", FixedTokenDeltaUnbalanced: "0"},
	}

	got, err := Normalize(raw)
	require.NoError(t, err)

	assert.Equal(t, []cashflow.Swap{
		{Time: 10, Notional: 1},
		{Time: 10, Notional: 2},
		{Time: 50, Notional: 3},
	}, got)
}

func TestNormalizeBaseUnits(t *testing.T) {
	t.Parallel()

	raw := []RawTrade{{
		Timestamp:                 "1700000000",
		VariableTokenDelta:        "-1500000000000000000000",
		FixedTokenDeltaUnbalanced: "5250000000000000000000",
		Decimals:                  18,
	}}

	got, err := Normalize(raw)
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.InDelta(t, -1500.0, got[0].Notional, 1e-9)
	assert.InDelta(t, 0.035, got[0].FixedRate, 1e-15)
}

func TestNormalizeZeroNotional(t *testing.T) {
	t.Parallel()

	got, err := Normalize([]RawTrade{{Timestamp: "1", VariableTokenDelta: "0", FixedTokenDeltaUnbalanced: "12"}})
	require.NoError(t, err)
	assert.Equal(t, 0.0, got[0].FixedRate)
}

func TestNormalizeEmpty(t *testing.T) {
	t.Parallel()

	got, err := Normalize(nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestNormalizeErrors(t *testing.T) {
	t.Parallel()

	good := RawTrade{Timestamp: "1", VariableTokenDelta: "1", FixedTokenDeltaUnbalanced: "1"}

	tests := []struct {
		name      string
		bad       RawTrade
		wantField string
		wantErr   error
	}{
		{"missing_timestamp", RawTrade{ID: "x", VariableTokenDelta: "1", FixedTokenDeltaUnbalanced: "1"}, "timestamp", ErrMissingField},
		{"bad_timestamp", RawTrade{ID: "x", Timestamp: "yesterday", VariableTokenDelta: "1", FixedTokenDeltaUnbalanced: "1"}, "timestamp", ErrInvalidField},
		{"missing_notional", RawTrade{ID: "x", Timestamp: "2", FixedTokenDeltaUnbalanced: "1"}, "variable_token_delta", ErrMissingField},
		{"missing_fixed", RawTrade{ID: "x", Timestamp: "2", VariableTokenDelta: "1"}, "fixed_token_delta_unbalanced", ErrMissingField},
		{"bad_amount", RawTrade{ID: "x", Timestamp: "2", VariableTokenDelta: "1e", FixedTokenDeltaUnbalanced: "1"}, "variable_token_delta", ErrInvalidField},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Normalize([]RawTrade{good, tt.bad})
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)

			var te *Error
			require.True(t, errors.As(err, &te))
			assert.Equal(t, 1, te.Index)
			assert.Equal(t, "x", te.ID)
			assert.Equal(t, tt.wantField, te.Field)
		})
	}
}

func TestNonSwapRecordsAreNotValidated(t *testing.T) {
	t.Parallel()

	got, err := Normalize([]RawTrade{{Kind: KindBurn}, {Kind: KindLiquidation}})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFixedRate(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 0.05, FixedRate(decimal.NewFromInt(-200), decimal.NewFromInt(1000)), 1e-15)
	assert.Equal(t, 0.0, FixedRate(decimal.Zero, decimal.NewFromInt(1000)))
}
