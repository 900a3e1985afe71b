package cmd

import (
	"context"
	"fmt"

	"github.com/rustyeddy/swapflow/cashflow"
	"github.com/rustyeddy/swapflow/config"
	"github.com/rustyeddy/swapflow/history"
	"github.com/rustyeddy/swapflow/journal"
	"github.com/rustyeddy/swapflow/oracle"
)

type closer func()

func noop() {}

// openSource builds the trade history source named by the config.
func openSource(ctx context.Context, cfg *config.Config) (history.Source, closer, error) {
	h := cfg.History
	switch h.Kind {
	case "csv":
		return history.CSV{Path: h.Path}, noop, nil
	case "sqlite":
		db, err := history.NewSQLite(h.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite history: %w", err)
		}
		return db, func() { _ = db.Close() }, nil
	case "postgres":
		pg, err := history.NewPostgres(ctx, h.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres history: %w", err)
		}
		return pg, pg.Close, nil
	case "subgraph":
		return history.NewSubgraph(h.URL, h.APIKey, h.Decimals, log), noop, nil
	default:
		return nil, nil, fmt.Errorf("unknown history kind %q", h.Kind)
	}
}

// openOracle builds the rate oracle and wraps it in the configured cache.
func openOracle(ctx context.Context, cfg *config.Config) (cashflow.RateOracle, closer, error) {
	var (
		inner   cashflow.RateOracle
		release closer = noop
		prefix  string
	)

	o := cfg.Oracle
	switch o.Kind {
	case "apy":
		inner = oracle.APY{Percent: o.APY}
		prefix = fmt.Sprintf("apy:%g", o.APY)
	case "table":
		db, err := history.NewSQLite(cfg.History.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("open rate table: %w", err)
		}
		defer db.Close()

		t, err := db.RateTable(ctx, o.Pool)
		if err != nil {
			return nil, nil, fmt.Errorf("load rate table %s: %w", o.Pool, err)
		}
		first, last := t.Range()
		log.Info().Str("pool", o.Pool).Int64("first", first).Int64("last", last).Msg("loaded rate table")
		inner = t
		prefix = "table:" + o.Pool
	case "chain":
		c, err := oracle.DialChain(ctx, o.RPCURL, o.Address, log)
		if err != nil {
			return nil, nil, err
		}
		inner = c
		release = c.Close
		prefix = "chain:" + o.Address
	default:
		return nil, nil, fmt.Errorf("unknown oracle kind %q", o.Kind)
	}

	store, closeStore, err := openCacheStore(ctx, o.Cache)
	if err != nil {
		release()
		return nil, nil, err
	}
	if store == nil {
		return inner, release, nil
	}

	d, err := o.Cache.Durations()
	if err != nil {
		release()
		closeStore()
		return nil, nil, err
	}
	cached := oracle.NewCached(inner, store, prefix, log)
	cached.MinAge = d.MinAge
	return cached, func() { closeStore(); release() }, nil
}

func openCacheStore(ctx context.Context, c config.CacheConfig) (oracle.Store, closer, error) {
	switch c.Kind {
	case "":
		return nil, noop, nil
	case "memory":
		return oracle.NewMemoryStore(), noop, nil
	case "redis":
		d, err := c.Durations()
		if err != nil {
			return nil, nil, err
		}
		rs, err := oracle.NewRedisStore(ctx, oracle.RedisConfig{
			Addr:       c.Addr,
			Password:   c.Password,
			DB:         c.DB,
			TLSEnabled: c.TLS,
			TTL:        d.TTL,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("connect redis cache: %w", err)
		}
		return rs, func() { _ = rs.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown cache kind %q", c.Kind)
	}
}

// openJournal returns nil when journaling is disabled.
func openJournal(cfg config.JournalConfig) (journal.Journal, error) {
	switch cfg.Kind {
	case "":
		return nil, nil
	case "csv":
		j, err := journal.NewCSV(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("open csv journal: %w", err)
		}
		return j, nil
	case "sqlite":
		j, err := journal.NewSQLite(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("open sqlite journal: %w", err)
		}
		return j, nil
	default:
		return nil, fmt.Errorf("unknown journal kind %q", cfg.Kind)
	}
}
