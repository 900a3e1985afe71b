package cmd

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/rustyeddy/swapflow/config"
	"github.com/rustyeddy/swapflow/history"
	"github.com/rustyeddy/swapflow/oracle"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var ratesCmd = &cobra.Command{
	Use:   "rates",
	Short: "Record and inspect rate index observations",
	Long: `Manage the rate index observations the table oracle interpolates.
Observations are stored in the sqlite history store.

Subcommands:
  add    - Record one observation
  import - Record observations from a YAML or JSON list of {time, index}
  list   - Print a pool's observations
  growth - Print the variable growth between two times

Examples:
  swapflow rates add aUSDC 2025-01-01 1.0412
  swapflow rates import aUSDC observations.yaml
  swapflow rates growth aUSDC 2025-01-01 2025-04-01`,
}

var ratesAddCmd = &cobra.Command{
	Use:   "add <pool> <time> <index>",
	Short: "Record one observation",
	Args:  cobra.ExactArgs(3),
	RunE:  runRatesAdd,
}

var ratesImportCmd = &cobra.Command{
	Use:   "import <pool> <file>",
	Short: "Record observations from a file",
	Args:  cobra.ExactArgs(2),
	RunE:  runRatesImport,
}

var ratesListCmd = &cobra.Command{
	Use:   "list <pool>",
	Short: "List observations",
	Args:  cobra.ExactArgs(1),
	RunE:  runRatesList,
}

var ratesGrowthCmd = &cobra.Command{
	Use:   "growth <pool> <from> <to>",
	Short: "Variable growth between two times",
	Args:  cobra.ExactArgs(3),
	RunE:  runRatesGrowth,
}

func init() {
	rootCmd.AddCommand(ratesCmd)
	ratesCmd.AddCommand(ratesAddCmd)
	ratesCmd.AddCommand(ratesImportCmd)
	ratesCmd.AddCommand(ratesListCmd)
	ratesCmd.AddCommand(ratesGrowthCmd)
}

func openRateStore(cmd *cobra.Command) (*history.SQLite, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return rateStore(cfg)
}

func rateStore(cfg *config.Config) (*history.SQLite, error) {
	if cfg.History.Kind != "sqlite" {
		return nil, fmt.Errorf("rate observations live in the sqlite history store, not %q", cfg.History.Kind)
	}
	db, err := history.NewSQLite(cfg.History.Path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite history: %w", err)
	}
	return db, nil
}

func runRatesAdd(cmd *cobra.Command, args []string) error {
	ts, err := config.ParseTime(args[1])
	if err != nil {
		return err
	}
	index, err := strconv.ParseFloat(args[2], 64)
	if err != nil {
		return fmt.Errorf("index: %w", err)
	}
	if index <= 0 {
		return fmt.Errorf("index must be positive, got %v", index)
	}

	db, err := openRateStore(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	return db.InsertObservations(cmd.Context(), args[0], []oracle.Observation{{Time: ts, Index: index}})
}

func runRatesImport(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[1])
	if err != nil {
		return err
	}

	// yaml also accepts JSON
	var obs []oracle.Observation
	if err := yaml.Unmarshal(data, &obs); err != nil {
		return fmt.Errorf("parse %s: %w", args[1], err)
	}
	if _, err := oracle.NewTable(obs); err != nil {
		return err
	}

	db, err := openRateStore(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.InsertObservations(cmd.Context(), args[0], obs); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Recorded %d observations for %s\n", len(obs), args[0])
	return nil
}

func runRatesList(cmd *cobra.Command, args []string) error {
	db, err := openRateStore(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	obs, err := db.Observations(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "time\tindex")
	for _, o := range obs {
		fmt.Fprintf(tw, "%d\t%v\n", o.Time, o.Index)
	}
	return tw.Flush()
}

func runRatesGrowth(cmd *cobra.Command, args []string) error {
	from, err := config.ParseTime(args[1])
	if err != nil {
		return err
	}
	to, err := config.ParseTime(args[2])
	if err != nil {
		return err
	}

	db, err := openRateStore(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	t, err := db.RateTable(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	g, err := t.VariableGrowth(cmd.Context(), from, to)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%v\n", g)
	return nil
}
