package journal

import (
	"time"

	"github.com/rustyeddy/swapflow/cashflow"
	"github.com/rustyeddy/swapflow/pkg/id"
)

// Run is one journaled cashflow computation.
type Run struct {
	RunID       string
	Created     time.Time
	PositionID  string
	OracleKind  string
	HistoryKind string
	SwapCount   int

	CurrentTime int64
	EndTime     int64

	FixedRate       float64 // percent
	NetNotional     float64
	Accrued         float64
	EstimatedAPY    float64 // percent
	EstimatedFuture float64
	EstimatedTotal  float64
}

// NewRun stamps a summary with a fresh run id.
func NewRun(positionID, oracleKind, historyKind string, swapCount int, s cashflow.Summary) Run {
	now := time.Now().UTC()
	return Run{
		RunID:           id.NewAt(now),
		Created:         now,
		PositionID:      positionID,
		OracleKind:      oracleKind,
		HistoryKind:     historyKind,
		SwapCount:       swapCount,
		CurrentTime:     s.CurrentTime,
		EndTime:         s.EndTime,
		FixedRate:       s.FixedRate,
		NetNotional:     s.NetNotional,
		Accrued:         s.Accrued,
		EstimatedAPY:    s.EstimatedAPY,
		EstimatedFuture: s.EstimatedFuture,
		EstimatedTotal:  s.EstimatedTotal,
	}
}

// Summary converts the run back into the summary it was recorded from.
func (r Run) Summary() cashflow.Summary {
	return cashflow.Summary{
		FixedRate:       r.FixedRate,
		NetNotional:     r.NetNotional,
		Accrued:         r.Accrued,
		EstimatedAPY:    r.EstimatedAPY,
		EstimatedFuture: r.EstimatedFuture,
		EstimatedTotal:  r.EstimatedTotal,
		CurrentTime:     r.CurrentTime,
		EndTime:         r.EndTime,
	}
}

type Journal interface {
	RecordRun(Run) error
	Close() error
}
