package history

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/rustyeddy/swapflow/trades"
)

var csvHeader = []string{"id", "position_id", "kind", "timestamp", "variable_token_delta", "fixed_token_delta_unbalanced", "decimals"}

// CSV reads trades from a file written by WriteCSV.
type CSV struct {
	Path string
}

func (c CSV) Trades(_ context.Context, positionID string) ([]trades.RawTrade, error) {
	f, err := os.Open(c.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	all, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("csv %s: %w", c.Path, err)
	}
	return filterPosition(all, positionID), nil
}

// ReadCSV parses trades. The header row is required; decimals may be empty.
func ReadCSV(r io.Reader) ([]trades.RawTrade, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(csvHeader)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	for i, h := range csvHeader {
		if header[i] != h {
			return nil, fmt.Errorf("column %d: expected %q, got %q", i, h, header[i])
		}
	}

	var out []trades.RawTrade
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		var dec int64
		if rec[6] != "" {
			dec, err = strconv.ParseInt(rec[6], 10, 32)
			if err != nil {
				return nil, fmt.Errorf("line %d: decimals: %w", line, err)
			}
		}
		out = append(out, trades.RawTrade{
			ID:                        rec[0],
			PositionID:                rec[1],
			Kind:                      trades.Kind(rec[2]),
			Timestamp:                 rec[3],
			VariableTokenDelta:        rec[4],
			FixedTokenDeltaUnbalanced: rec[5],
			Decimals:                  int32(dec),
		})
	}
	return out, nil
}

// WriteCSV writes trades with a header row.
func WriteCSV(w io.Writer, recs []trades.RawTrade) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range recs {
		dec := ""
		if r.Decimals != 0 {
			dec = strconv.Itoa(int(r.Decimals))
		}
		if err := cw.Write([]string{
			r.ID,
			r.PositionID,
			string(r.Kind),
			r.Timestamp,
			r.VariableTokenDelta,
			r.FixedTokenDeltaUnbalanced,
			dec,
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// filterPosition keeps records of positionID. Records without a position
// belong to every position, and an empty positionID selects everything.
func filterPosition(recs []trades.RawTrade, positionID string) []trades.RawTrade {
	if positionID == "" {
		return recs
	}
	out := recs[:0:0]
	for _, r := range recs {
		if r.PositionID == "" || r.PositionID == positionID {
			out = append(out, r)
		}
	}
	return out
}
