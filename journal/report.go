package journal

import (
	"io"
	"text/template"
	"time"
)

var reportFuncs = template.FuncMap{
	"unix": func(s int64) string { return time.Unix(s, 0).UTC().Format("2006-01-02 15:04") },
	"days": func(a, b int64) float64 { return float64(b-a) / 86400 },
}

// WriteOrg renders a run as an org-mode entry.
func (r Run) WriteOrg(w io.Writer) error {
	t, err := template.New("run").Funcs(reportFuncs).Parse(RunOrgTemplate)
	if err != nil {
		return err
	}
	return t.Execute(w, r)
}

const RunOrgTemplate = `* CASHFLOW: {{.PositionID}}
:PROPERTIES:
:RUN_ID:      {{.RunID}}
:ORACLE:      {{.OracleKind}}
:HISTORY:     {{.HistoryKind}}
:SWAPS:       {{.SwapCount}}
:VALUED_AT:   [{{unix .CurrentTime}}]
:MATURITY:    [{{unix .EndTime}}]
:CREATED:     [{{.Created.Format "2006-01-02 Mon 15:04"}}]
:END:

** Position
| Field             | Value |
|-------------------+-------|
| Net notional      | {{printf "%.6f" .NetNotional}} |
| Avg fixed rate %  | {{printf "%.6f" .FixedRate}} |
| Days to maturity  | {{printf "%.2f" (days .CurrentTime .EndTime)}} |

** Cashflow
- Accrued:              *{{printf "%.6f" .Accrued}}*
- Estimated APY:        *{{printf "%.4f" .EstimatedAPY}}%*
- Estimated future:     *{{printf "%.6f" .EstimatedFuture}}*
- Estimated total:      *{{printf "%.6f" .EstimatedTotal}}*
`
