package oracle

import (
	"context"
	"fmt"
	"sort"
)

// Observation is a snapshot of the pool's cumulative rate index.
type Observation struct {
	Time  int64   `json:"time" yaml:"time"`
	Index float64 `json:"index" yaml:"index"`
}

// Table derives variable growth from recorded rate index observations.
// Growth over [from, to] is index(to)/index(from) - 1, with the index
// interpolated linearly between observations.
type Table struct {
	obs []Observation
}

// NewTable sorts obs by time. At least one observation is required and every
// index must be positive.
func NewTable(obs []Observation) (*Table, error) {
	if len(obs) == 0 {
		return nil, fmt.Errorf("oracle: table: no observations")
	}
	sorted := make([]Observation, len(obs))
	copy(sorted, obs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Time < sorted[j].Time })

	for i, o := range sorted {
		if o.Index <= 0 {
			return nil, fmt.Errorf("oracle: table: observation at %d has non-positive index %v", o.Time, o.Index)
		}
		if i > 0 && o.Time == sorted[i-1].Time && o.Index != sorted[i-1].Index {
			return nil, fmt.Errorf("oracle: table: conflicting observations at %d", o.Time)
		}
	}
	return &Table{obs: sorted}, nil
}

// Range returns the first and last observed times.
func (t *Table) Range() (int64, int64) {
	return t.obs[0].Time, t.obs[len(t.obs)-1].Time
}

func (t *Table) VariableGrowth(_ context.Context, from, to int64) (float64, error) {
	if to < from {
		return 0, fmt.Errorf("%w: [%d, %d]", ErrInvalidWindow, from, to)
	}
	if from == to {
		return 0, nil
	}
	a, err := t.indexAt(from)
	if err != nil {
		return 0, err
	}
	b, err := t.indexAt(to)
	if err != nil {
		return 0, err
	}
	return b/a - 1, nil
}

func (t *Table) indexAt(ts int64) (float64, error) {
	first, last := t.Range()
	if ts < first || ts > last {
		return 0, fmt.Errorf("%w: %d not in [%d, %d]", ErrOutOfRange, ts, first, last)
	}

	i := sort.Search(len(t.obs), func(i int) bool { return t.obs[i].Time >= ts })
	hi := t.obs[i]
	if hi.Time == ts {
		return hi.Index, nil
	}
	lo := t.obs[i-1]
	frac := float64(ts-lo.Time) / float64(hi.Time-lo.Time)
	return lo.Index + frac*(hi.Index-lo.Index), nil
}
