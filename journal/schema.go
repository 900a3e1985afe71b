package journal

const Schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id TEXT PRIMARY KEY,
	created DATETIME NOT NULL,
	position_id TEXT NOT NULL,
	oracle_kind TEXT NOT NULL,
	history_kind TEXT NOT NULL,
	swap_count INTEGER NOT NULL,
	valuation_time INTEGER NOT NULL,
	end_time INTEGER NOT NULL,
	fixed_rate REAL NOT NULL,
	net_notional REAL NOT NULL,
	accrued REAL NOT NULL,
	estimated_apy REAL NOT NULL,
	estimated_future REAL NOT NULL,
	estimated_total REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_position ON runs(position_id, created);
`
