package cashflow

import (
	"errors"
	"fmt"
)

var ErrSequencing = errors.New("swaps out of time order")

// SequencingError reports a swap (or the valuation time) that lies before
// the point the fold has already reached. Index equals the number of swaps
// when the valuation time itself is the offender.
type SequencingError struct {
	Index    int
	Time     int64
	Previous int64
}

func (e *SequencingError) Error() string {
	return fmt.Sprintf("cashflow: fold step %d: time %d before %d: %v", e.Index, e.Time, e.Previous, ErrSequencing)
}

func (e *SequencingError) Unwrap() error { return ErrSequencing }

// OracleError wraps a failed rate oracle lookup with the fold step that
// needed it. Step equals the number of swaps for the final advance to the
// valuation time.
type OracleError struct {
	Step int
	From int64
	To   int64
	Err  error
}

func (e *OracleError) Error() string {
	return fmt.Sprintf("cashflow: oracle growth [%d, %d] for step %d: %v", e.From, e.To, e.Step, e.Err)
}

func (e *OracleError) Unwrap() error { return e.Err }
