package cashflow

// Projection estimates the cashflow a position accrues between CurrentTime
// and EndTime under a hypothetical average variable APY. It holds no
// references and can be evaluated any number of times.
type Projection struct {
	NetNotional float64
	FixedRate   float64 // fraction
	Accrued     float64
	CurrentTime int64
	EndTime     int64
}

// Future returns the cashflow expected until maturity. apy is in percent.
func (p Projection) Future(apy float64) float64 {
	return p.NetNotional * AnnualizedTime(p.CurrentTime, p.EndTime) * (apy/100 - p.FixedRate)
}

// Total returns accrued plus future cashflow.
func (p Projection) Total(apy float64) float64 {
	return p.Accrued + p.Future(apy)
}

// Result is the outcome of Compute.
type Result struct {
	FixedRate   float64 // percent
	NetNotional float64
	Accrued     float64
	State       PositionState
	Projection  Projection
}

func newResult(st PositionState, current, end int64) Result {
	return Result{
		FixedRate:   st.FixedRate * 100,
		NetNotional: st.Notional,
		Accrued:     st.Accrued,
		State:       st,
		Projection: Projection{
			NetNotional: st.Notional,
			FixedRate:   st.FixedRate,
			Accrued:     st.Accrued,
			CurrentTime: current,
			EndTime:     end,
		},
	}
}

func (r Result) EstimatedFutureCashflow(apy float64) float64 { return r.Projection.Future(apy) }

func (r Result) EstimatedTotalCashflow(apy float64) float64 { return r.Projection.Total(apy) }

// Summary is a flat, serializable view of a Result evaluated at one APY.
type Summary struct {
	FixedRate       float64 `json:"avg_fixed_rate" yaml:"avg_fixed_rate"`
	NetNotional     float64 `json:"net_notional" yaml:"net_notional"`
	Accrued         float64 `json:"accrued_cashflow" yaml:"accrued_cashflow"`
	EstimatedAPY    float64 `json:"estimated_apy" yaml:"estimated_apy"`
	EstimatedFuture float64 `json:"estimated_future_cashflow" yaml:"estimated_future_cashflow"`
	EstimatedTotal  float64 `json:"estimated_total_cashflow" yaml:"estimated_total_cashflow"`
	CurrentTime     int64   `json:"current_time" yaml:"current_time"`
	EndTime         int64   `json:"end_time" yaml:"end_time"`
}

func (r Result) Summarize(apy float64) Summary {
	return Summary{
		FixedRate:       r.FixedRate,
		NetNotional:     r.NetNotional,
		Accrued:         r.Accrued,
		EstimatedAPY:    apy,
		EstimatedFuture: r.EstimatedFutureCashflow(apy),
		EstimatedTotal:  r.EstimatedTotalCashflow(apy),
		CurrentTime:     r.Projection.CurrentTime,
		EndTime:         r.Projection.EndTime,
	}
}
