package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/rustyeddy/swapflow/config"
	"github.com/rustyeddy/swapflow/journal"
	"github.com/spf13/cobra"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query recorded cashflow runs",
	Long: `Query and display cashflow runs recorded by the cashflow command.

Subcommands:
  list - List recent runs
  show - Show one run (sqlite journal only)

Examples:
  swapflow journal list -n 10
  swapflow journal show 01JAB3C4D5E6F7G8H9J0K1M2N3`,
}

var journalListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent runs",
	Args:  cobra.NoArgs,
	RunE:  runJournalList,
}

var journalShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show a run as an org-mode entry",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalShow,
}

var (
	journalLimit    int
	journalPosition string
)

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalListCmd)
	journalCmd.AddCommand(journalShowCmd)

	journalListCmd.Flags().IntVarP(&journalLimit, "limit", "n", 20, "maximum runs to list (0 for all)")
	journalListCmd.Flags().StringVarP(&journalPosition, "position", "p", "", "only runs for this position")
}

func listRuns(cfg config.JournalConfig, position string, limit int) ([]journal.Run, error) {
	switch cfg.Kind {
	case "sqlite":
		j, err := journal.NewSQLite(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("open db: %w", err)
		}
		defer j.Close()
		return j.ListRuns(position, limit)
	case "csv":
		all, err := journal.ReadCSV(cfg.Path)
		if err != nil {
			return nil, err
		}
		var out []journal.Run
		for i := len(all) - 1; i >= 0; i-- {
			if position != "" && all[i].PositionID != position {
				continue
			}
			out = append(out, all[i])
			if limit > 0 && len(out) == limit {
				break
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("journaling is disabled")
	}
}

func runJournalList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	runs, err := listRuns(cfg.Journal, journalPosition, journalLimit)
	if err != nil {
		return fmt.Errorf("query runs: %w", err)
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "run_id\tcreated\tposition\tswaps\tnet_notional\tfixed_rate\taccrued\testimated_total")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%v\t%v\t%v\t%v\n",
			r.RunID, r.Created.Local().Format(time.DateTime), r.PositionID, r.SwapCount,
			r.NetNotional, r.FixedRate, r.Accrued, r.EstimatedTotal)
	}
	return tw.Flush()
}

func runJournalShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Journal.Kind != "sqlite" {
		return fmt.Errorf("journal show needs a sqlite journal, not %q", cfg.Journal.Kind)
	}

	j, err := journal.NewSQLite(cfg.Journal.Path)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	run, err := j.GetRun(args[0])
	if err != nil {
		return fmt.Errorf("get run: %w", err)
	}
	return run.WriteOrg(cmd.OutOrStdout())
}
