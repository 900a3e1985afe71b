package cmd

import (
	"context"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/rustyeddy/swapflow/config"
	"github.com/rustyeddy/swapflow/history"
	"github.com/rustyeddy/swapflow/trades"
	"github.com/spf13/cobra"
)

var swapsCmd = &cobra.Command{
	Use:   "swaps",
	Short: "Import and inspect swap history",
	Long: `Manage the trade history the cashflow command reads.

Subcommands:
  import    - Load trades from a CSV file into the sqlite or postgres history store
  list      - Print the normalized swaps of a position
  positions - Count stored trades per position (sqlite only)

Examples:
  swapflow swaps import trades.csv
  swapflow swaps list -p 0xabc`,
}

var swapsImportCmd = &cobra.Command{
	Use:   "import <file.csv>",
	Short: "Import trades from CSV",
	Args:  cobra.ExactArgs(1),
	RunE:  runSwapsImport,
}

var swapsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List normalized swaps",
	Args:  cobra.NoArgs,
	RunE:  runSwapsList,
}

var swapsPositionsCmd = &cobra.Command{
	Use:   "positions",
	Short: "Count stored trades per position",
	Args:  cobra.NoArgs,
	RunE:  runSwapsPositions,
}

var swapsPosition string

func init() {
	rootCmd.AddCommand(swapsCmd)
	swapsCmd.AddCommand(swapsImportCmd)
	swapsCmd.AddCommand(swapsListCmd)
	swapsCmd.AddCommand(swapsPositionsCmd)

	swapsListCmd.Flags().StringVarP(&swapsPosition, "position", "p", "", "position id (overrides config)")
}

func runSwapsImport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	recs, err := history.ReadCSV(f)
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}
	// reject files the cashflow command could not use
	if _, err := trades.Normalize(recs); err != nil {
		return fmt.Errorf("validate %s: %w", args[0], err)
	}

	if err := importTrades(cmd.Context(), cfg, recs); err != nil {
		return err
	}

	log.Info().Str("file", args[0]).Str("store", cfg.History.Kind).Int("trades", len(recs)).Msg("imported trades")
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Imported %d trades into %s history\n", len(recs), cfg.History.Kind)
	return nil
}

func importTrades(ctx context.Context, cfg *config.Config, recs []trades.RawTrade) error {
	switch cfg.History.Kind {
	case "sqlite":
		db, err := history.NewSQLite(cfg.History.Path)
		if err != nil {
			return fmt.Errorf("open sqlite history: %w", err)
		}
		defer db.Close()
		return db.InsertTrades(ctx, recs)
	case "postgres":
		pg, err := history.NewPostgres(ctx, cfg.History.DSN)
		if err != nil {
			return fmt.Errorf("open postgres history: %w", err)
		}
		defer pg.Close()
		if err := pg.Migrate(ctx); err != nil {
			return fmt.Errorf("migrate postgres history: %w", err)
		}
		return pg.InsertTrades(ctx, recs)
	default:
		return fmt.Errorf("swaps import needs a sqlite or postgres history store, not %q", cfg.History.Kind)
	}
}

func runSwapsList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if swapsPosition != "" {
		cfg.Position.ID = swapsPosition
	}

	src, closeSrc, err := openSource(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer closeSrc()

	swaps, err := history.LoadSwaps(cmd.Context(), src, cfg.Position.ID)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "time\tnotional\tfixed_rate")
	for _, s := range swaps {
		fmt.Fprintf(tw, "%d\t%v\t%v\n", s.Time, s.Notional, s.FixedRate)
	}
	return tw.Flush()
}

func runSwapsPositions(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.History.Kind != "sqlite" {
		return fmt.Errorf("swaps positions needs a sqlite history store, not %q", cfg.History.Kind)
	}

	db, err := history.NewSQLite(cfg.History.Path)
	if err != nil {
		return fmt.Errorf("open sqlite history: %w", err)
	}
	defer db.Close()

	counts, err := db.Positions(cmd.Context())
	if err != nil {
		return err
	}

	ids := make([]string, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "position\ttrades")
	for _, id := range ids {
		fmt.Fprintf(tw, "%s\t%d\n", id, counts[id])
	}
	return tw.Flush()
}
