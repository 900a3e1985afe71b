package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/rustyeddy/swapflow/cashflow"
	"github.com/rustyeddy/swapflow/config"
	"github.com/rustyeddy/swapflow/history"
	"github.com/rustyeddy/swapflow/journal"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var cashflowCmd = &cobra.Command{
	Use:   "cashflow",
	Short: "Compute the cashflow of a swap position",
	Long: `Load the position's swaps from the configured history source, fold them
against the configured rate oracle and print net notional, average fixed
rate, accrued cashflow and the cashflow expected by maturity.

Examples:
  swapflow cashflow -c swapflow.yaml
  swapflow cashflow --apy 4.2 --at 2025-06-01 -o json`,
	Args: cobra.NoArgs,
	RunE: runCashflow,
}

var (
	cfPosition  string
	cfAt        string
	cfAPY       float64
	cfOutput    string
	cfNoJournal bool
	cfPrefetch  int
)

func init() {
	rootCmd.AddCommand(cashflowCmd)

	cashflowCmd.Flags().StringVarP(&cfPosition, "position", "p", "", "position id (overrides config)")
	cashflowCmd.Flags().StringVar(&cfAt, "at", "", "valuation time (unix, RFC3339 or YYYY-MM-DD)")
	cashflowCmd.Flags().Float64Var(&cfAPY, "apy", 0, "estimated average variable APY in percent (overrides config)")
	cashflowCmd.Flags().StringVarP(&cfOutput, "output", "o", "table", "output format: table, json or yaml")
	cashflowCmd.Flags().BoolVar(&cfNoJournal, "no-journal", false, "do not record the run")
	cashflowCmd.Flags().IntVar(&cfPrefetch, "prefetch", -1, "concurrent oracle lookups (overrides config)")
}

func runCashflow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfPosition != "" {
		cfg.Position.ID = cfPosition
	}
	if cfAt != "" {
		cfg.Position.ValuationTime = cfAt
	}
	if cmd.Flags().Changed("apy") {
		cfg.Position.EstimatedAPY = cfAPY
	}
	if cfPrefetch >= 0 {
		cfg.Position.Prefetch = cfPrefetch
	}

	run, err := computeRun(cmd.Context(), cfg, time.Now())
	if err != nil {
		return err
	}

	if !cfNoJournal {
		if err := recordRun(cfg.Journal, run); err != nil {
			return err
		}
	}

	return writeSummary(cmd.OutOrStdout(), cfOutput, run)
}

// computeRun loads swaps, resolves the oracle and folds the position.
func computeRun(ctx context.Context, cfg *config.Config, now time.Time) (journal.Run, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	end, err := cfg.Position.EndTime()
	if err != nil {
		return journal.Run{}, fmt.Errorf("maturity: %w", err)
	}
	current, err := cfg.Position.CurrentTime(now)
	if err != nil {
		return journal.Run{}, fmt.Errorf("valuation time: %w", err)
	}

	src, closeSrc, err := openSource(ctx, cfg)
	if err != nil {
		return journal.Run{}, err
	}
	defer closeSrc()

	swaps, err := history.LoadSwaps(ctx, src, cfg.Position.ID)
	if err != nil {
		return journal.Run{}, err
	}
	log.Info().
		Str("position", cfg.Position.ID).
		Str("history", cfg.History.Kind).
		Int("swaps", len(swaps)).
		Msg("loaded swaps")

	rates, closeOracle, err := openOracle(ctx, cfg)
	if err != nil {
		return journal.Run{}, err
	}
	defer closeOracle()

	res, err := cashflow.Compute(ctx, swaps, rates, current, end,
		cashflow.WithLogger(log),
		cashflow.WithPrefetch(cfg.Position.Prefetch),
	)
	if err != nil {
		return journal.Run{}, fmt.Errorf("compute cashflow: %w", err)
	}

	sum := res.Summarize(cfg.Position.EstimatedAPY)
	log.Info().
		Float64("net_notional", sum.NetNotional).
		Float64("fixed_rate", sum.FixedRate).
		Float64("accrued", sum.Accrued).
		Msg("computed cashflow")

	return journal.NewRun(cfg.Position.ID, cfg.Oracle.Kind, cfg.History.Kind, len(swaps), sum), nil
}

func recordRun(cfg config.JournalConfig, run journal.Run) error {
	j, err := openJournal(cfg)
	if err != nil {
		return err
	}
	if j == nil {
		return nil
	}
	defer j.Close()

	if err := j.RecordRun(run); err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	log.Debug().Str("run_id", run.RunID).Str("journal", cfg.Path).Msg("recorded run")
	return nil
}

func writeSummary(w io.Writer, format string, run journal.Run) error {
	sum := run.Summary()
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(sum)
	case "yaml":
		return yaml.NewEncoder(w).Encode(sum)
	case "table", "":
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintf(tw, "run_id\t%s\n", run.RunID)
		fmt.Fprintf(tw, "position\t%s\n", run.PositionID)
		fmt.Fprintf(tw, "swaps\t%d\n", run.SwapCount)
		fmt.Fprintf(tw, "valuation_time\t%d\n", sum.CurrentTime)
		fmt.Fprintf(tw, "maturity\t%d\n", sum.EndTime)
		fmt.Fprintf(tw, "net_notional\t%v\n", sum.NetNotional)
		fmt.Fprintf(tw, "avg_fixed_rate\t%v\n", sum.FixedRate)
		fmt.Fprintf(tw, "accrued_cashflow\t%v\n", sum.Accrued)
		fmt.Fprintf(tw, "estimated_apy\t%v\n", sum.EstimatedAPY)
		fmt.Fprintf(tw, "estimated_future_cashflow\t%v\n", sum.EstimatedFuture)
		fmt.Fprintf(tw, "estimated_total_cashflow\t%v\n", sum.EstimatedTotal)
		return tw.Flush()
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
