package history

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rustyeddy/swapflow/oracle"
	"github.com/rustyeddy/swapflow/pkg/id"
	"github.com/rustyeddy/swapflow/trades"
)

// SQLite stores raw trades and rate index observations.
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

func (s *SQLite) Close() error {
	return s.db.Close()
}

// InsertTrades stores recs in one transaction. Records without an ID get a
// fresh ULID; records whose ID already exists are replaced.
func (s *SQLite) InsertTrades(ctx context.Context, recs []trades.RawTrade) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO trades
		(id, position_id, kind, timestamp, variable_token_delta, fixed_token_delta_unbalanced, decimals)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, r := range recs {
		ts, perr := strconv.ParseInt(strings.TrimSpace(r.Timestamp), 10, 64)
		if perr != nil {
			return fmt.Errorf("history: sqlite: record %d: timestamp %q: %w", i, r.Timestamp, trades.ErrInvalidField)
		}
		tradeID := r.ID
		if tradeID == "" {
			tradeID = id.New()
		}
		kind := r.Kind
		if kind == "" {
			kind = trades.KindSwap
		}
		if _, err = stmt.ExecContext(ctx,
			tradeID, r.PositionID, string(kind), ts,
			r.VariableTokenDelta, r.FixedTokenDeltaUnbalanced, r.Decimals,
		); err != nil {
			return fmt.Errorf("history: sqlite: insert record %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// Trades returns the position's trades ordered by time, then insertion.
func (s *SQLite) Trades(ctx context.Context, positionID string) ([]trades.RawTrade, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, position_id, kind, timestamp, variable_token_delta, fixed_token_delta_unbalanced, decimals
		FROM trades
		WHERE position_id = ?
		ORDER BY timestamp ASC, rowid ASC`, positionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []trades.RawTrade
	for rows.Next() {
		var (
			rec  trades.RawTrade
			kind string
			ts   int64
		)
		if err := rows.Scan(
			&rec.ID,
			&rec.PositionID,
			&kind,
			&ts,
			&rec.VariableTokenDelta,
			&rec.FixedTokenDeltaUnbalanced,
			&rec.Decimals,
		); err != nil {
			return nil, err
		}
		rec.Kind = trades.Kind(kind)
		rec.Timestamp = strconv.FormatInt(ts, 10)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Positions lists the distinct position IDs with their trade counts.
func (s *SQLite) Positions(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT position_id, COUNT(*) FROM trades GROUP BY position_id ORDER BY position_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var (
			pos string
			n   int
		)
		if err := rows.Scan(&pos, &n); err != nil {
			return nil, err
		}
		out[pos] = n
	}
	return out, rows.Err()
}

// InsertObservations upserts rate index observations for pool.
func (s *SQLite) InsertObservations(ctx context.Context, pool string, obs []oracle.Observation) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for _, o := range obs {
		if _, err := tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO rate_observations (pool, time, rate_index)
			VALUES (?, ?, ?)`, pool, o.Time, o.Index); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("history: sqlite: insert observation %d: %w", o.Time, err)
		}
	}
	return tx.Commit()
}

// Observations returns pool's rate index observations ordered by time.
func (s *SQLite) Observations(ctx context.Context, pool string) ([]oracle.Observation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT time, rate_index FROM rate_observations
		WHERE pool = ?
		ORDER BY time ASC`, pool)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []oracle.Observation
	for rows.Next() {
		var o oracle.Observation
		if err := rows.Scan(&o.Time, &o.Index); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// RateTable builds a table oracle from pool's stored observations.
func (s *SQLite) RateTable(ctx context.Context, pool string) (*oracle.Table, error) {
	obs, err := s.Observations(ctx, pool)
	if err != nil {
		return nil, err
	}
	return oracle.NewTable(obs)
}
