package oracle

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rustyeddy/swapflow/cashflow"
)

// Store keeps growth values by key.
type Store interface {
	Get(ctx context.Context, key string) (float64, bool, error)
	Set(ctx context.Context, key string, v float64) error
}

// Cached memoizes a rate oracle. Growth over an interval that has fully
// elapsed never changes, so only intervals ending at least MinAge before now
// are stored. Store failures fall through to the wrapped oracle.
type Cached struct {
	inner  cashflow.RateOracle
	store  Store
	prefix string
	log    zerolog.Logger

	MinAge time.Duration
	Now    func() time.Time
}

func NewCached(inner cashflow.RateOracle, store Store, prefix string, log zerolog.Logger) *Cached {
	return &Cached{
		inner:  inner,
		store:  store,
		prefix: prefix,
		log:    log,
		Now:    time.Now,
	}
}

func (c *Cached) key(from, to int64) string {
	return fmt.Sprintf("%s:growth:%d:%d", c.prefix, from, to)
}

func (c *Cached) cacheable(to int64) bool {
	return !time.Unix(to, 0).Add(c.MinAge).After(c.Now())
}

func (c *Cached) VariableGrowth(ctx context.Context, from, to int64) (float64, error) {
	if !c.cacheable(to) {
		return c.inner.VariableGrowth(ctx, from, to)
	}

	key := c.key(from, to)
	v, ok, err := c.store.Get(ctx, key)
	switch {
	case err != nil:
		c.log.Warn().Err(err).Str("key", key).Msg("rate cache read failed")
	case ok:
		return v, nil
	}

	v, err = c.inner.VariableGrowth(ctx, from, to)
	if err != nil {
		return 0, err
	}
	if err := c.store.Set(ctx, key, v); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("rate cache write failed")
	}
	return v, nil
}

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu   sync.RWMutex
	vals map[string]float64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{vals: make(map[string]float64)}
}

func (m *MemoryStore) Get(_ context.Context, key string) (float64, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.vals[key]
	return v, ok, nil
}

func (m *MemoryStore) Set(_ context.Context, key string, v float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vals[key] = v
	return nil
}

func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.vals)
}
