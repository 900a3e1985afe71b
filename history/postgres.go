package history

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rustyeddy/swapflow/pkg/id"
	"github.com/rustyeddy/swapflow/trades"
)

// PostgresSchema mirrors Schema for deployments that keep trades in
// Postgres. Amounts are numeric so base units survive without rounding.
const PostgresSchema = `
CREATE TABLE IF NOT EXISTS trades (
	id TEXT PRIMARY KEY,
	position_id TEXT NOT NULL,
	kind TEXT NOT NULL,
	timestamp BIGINT NOT NULL,
	variable_token_delta NUMERIC NOT NULL,
	fixed_token_delta_unbalanced NUMERIC NOT NULL,
	decimals INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_trades_position_time ON trades(position_id, timestamp);
`

// Postgres reads trades from a shared database.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres connects to dsn and verifies the connection.
func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("history: postgres: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("history: postgres: ping: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

func (p *Postgres) Close() { p.pool.Close() }

// Migrate creates the trades table if it does not exist.
func (p *Postgres) Migrate(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, PostgresSchema); err != nil {
		return fmt.Errorf("history: postgres: migrate: %w", err)
	}
	return nil
}

func (p *Postgres) Trades(ctx context.Context, positionID string) ([]trades.RawTrade, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, position_id, kind, timestamp,
		       variable_token_delta::text, fixed_token_delta_unbalanced::text, decimals
		FROM trades
		WHERE position_id = $1
		ORDER BY timestamp ASC, id ASC`, positionID)
	if err != nil {
		return nil, fmt.Errorf("history: postgres: query: %w", err)
	}

	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (trades.RawTrade, error) {
		var (
			rec  trades.RawTrade
			kind string
			ts   int64
		)
		err := row.Scan(&rec.ID, &rec.PositionID, &kind, &ts,
			&rec.VariableTokenDelta, &rec.FixedTokenDeltaUnbalanced, &rec.Decimals)
		rec.Kind = trades.Kind(kind)
		rec.Timestamp = strconv.FormatInt(ts, 10)
		return rec, err
	})
	if err != nil {
		return nil, fmt.Errorf("history: postgres: scan: %w", err)
	}
	return out, nil
}

// InsertTrades copies recs into the trades table in one batch.
func (p *Postgres) InsertTrades(ctx context.Context, recs []trades.RawTrade) error {
	batch := &pgx.Batch{}
	for _, r := range recs {
		ts, err := strconv.ParseInt(r.Timestamp, 10, 64)
		if err != nil {
			return fmt.Errorf("history: postgres: timestamp %q: %w", r.Timestamp, trades.ErrInvalidField)
		}
		tradeID := r.ID
		if tradeID == "" {
			tradeID = id.New()
		}
		kind := r.Kind
		if kind == "" {
			kind = trades.KindSwap
		}
		batch.Queue(`
			INSERT INTO trades (id, position_id, kind, timestamp, variable_token_delta, fixed_token_delta_unbalanced, decimals)
			VALUES ($1, $2, $3, $4, $5::numeric, $6::numeric, $7)
			ON CONFLICT (id) DO UPDATE SET
				position_id = EXCLUDED.position_id,
				kind = EXCLUDED.kind,
				timestamp = EXCLUDED.timestamp,
				variable_token_delta = EXCLUDED.variable_token_delta,
				fixed_token_delta_unbalanced = EXCLUDED.fixed_token_delta_unbalanced,
				decimals = EXCLUDED.decimals`,
			tradeID, r.PositionID, string(kind), ts, orZero(r.VariableTokenDelta), orZero(r.FixedTokenDeltaUnbalanced), r.Decimals)
	}
	if err := p.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("history: postgres: insert: %w", err)
	}
	return nil
}

// orZero keeps numeric columns valid for mint and burn records without amounts.
func orZero(s string) string {
	if s == "" {
		return "0"
	}
	return s
}
