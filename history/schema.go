package history

const Schema = `
CREATE TABLE IF NOT EXISTS trades (
	id TEXT PRIMARY KEY,
	position_id TEXT NOT NULL,
	kind TEXT NOT NULL,
	timestamp INTEGER NOT NULL,
	variable_token_delta TEXT NOT NULL,
	fixed_token_delta_unbalanced TEXT NOT NULL,
	decimals INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_trades_position_time ON trades(position_id, timestamp);

CREATE TABLE IF NOT EXISTS rate_observations (
	pool TEXT NOT NULL,
	time INTEGER NOT NULL,
	rate_index REAL NOT NULL,
	PRIMARY KEY (pool, time)
);
`
