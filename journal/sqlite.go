package journal

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordRun(r Run) error {
	_, err := j.db.Exec(`
		INSERT INTO runs
		(run_id, created, position_id, oracle_kind, history_kind, swap_count,
		 valuation_time, end_time, fixed_rate, net_notional, accrued,
		 estimated_apy, estimated_future, estimated_total)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.Created, r.PositionID, r.OracleKind, r.HistoryKind, r.SwapCount,
		r.CurrentTime, r.EndTime, r.FixedRate, r.NetNotional, r.Accrued,
		r.EstimatedAPY, r.EstimatedFuture, r.EstimatedTotal,
	)
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
