package journal

import (
	"database/sql"
	"errors"
	"fmt"
)

const runColumns = `run_id, created, position_id, oracle_kind, history_kind, swap_count,
	valuation_time, end_time, fixed_rate, net_notional, accrued,
	estimated_apy, estimated_future, estimated_total`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (Run, error) {
	var r Run
	err := s.Scan(
		&r.RunID,
		&r.Created,
		&r.PositionID,
		&r.OracleKind,
		&r.HistoryKind,
		&r.SwapCount,
		&r.CurrentTime,
		&r.EndTime,
		&r.FixedRate,
		&r.NetNotional,
		&r.Accrued,
		&r.EstimatedAPY,
		&r.EstimatedFuture,
		&r.EstimatedTotal,
	)
	return r, err
}

// GetRun returns a single run by ID.
func (j *SQLite) GetRun(runID string) (Run, error) {
	row := j.db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE run_id = ?`, runID)

	r, err := scanRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, fmt.Errorf("run %q not found", runID)
		}
		return Run{}, err
	}
	return r, nil
}

// ListRuns returns the most recent runs first. An empty positionID lists
// every position; limit <= 0 means no limit.
func (j *SQLite) ListRuns(positionID string, limit int) ([]Run, error) {
	q := `SELECT ` + runColumns + ` FROM runs`
	var args []any
	if positionID != "" {
		q += ` WHERE position_id = ?`
		args = append(args, positionID)
	}
	q += ` ORDER BY run_id DESC`
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := j.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
