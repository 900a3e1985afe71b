package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rustyeddy/swapflow/cashflow"
	"github.com/rustyeddy/swapflow/config"
	"github.com/rustyeddy/swapflow/history"
	"github.com/rustyeddy/swapflow/journal"
	"github.com/rustyeddy/swapflow/trades"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const week = 7 * 24 * 3600

var twoSwaps = []trades.RawTrade{
	{ID: "t1", PositionID: "0xpool", Kind: trades.KindSwap, Timestamp: "604800", VariableTokenDelta: "1000", FixedTokenDeltaUnbalanced: "-2000"},
	{ID: "t2", PositionID: "0xpool", Kind: trades.KindSwap, Timestamp: "1209600", VariableTokenDelta: "1000", FixedTokenDeltaUnbalanced: "-2500"},
	{ID: "m1", PositionID: "0xpool", Kind: trades.KindMint, Timestamp: "1"},
}

func writeTrades(t *testing.T, dir string) string {
	t.Helper()

	path := filepath.Join(dir, "trades.csv")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, history.WriteCSV(f, twoSwaps))
	require.NoError(t, f.Close())
	return path
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	dir := t.TempDir()
	cfg := config.Default()
	cfg.Position = config.PositionConfig{
		ID:            "0xpool",
		Maturity:      "2419200",
		ValuationTime: "1814400",
		EstimatedAPY:  3,
	}
	cfg.History = config.HistoryConfig{Kind: "csv", Path: writeTrades(t, dir)}
	cfg.Journal = config.JournalConfig{Kind: "sqlite", Path: filepath.Join(dir, "journal.sqlite")}
	cfg.Log.Level = "error"
	return cfg
}

func saveConfig(t *testing.T, cfg *config.Config) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "swapflow.yaml")
	require.NoError(t, cfg.SaveToFile(path))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	// flag values outlive a single Execute
	cfPosition, cfAt, cfOutput, cfNoJournal, cfPrefetch = "", "", "table", false, -1

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestComputeRunAPY(t *testing.T) {
	cfg := testConfig(t)

	run, err := computeRun(context.Background(), cfg, time.Now())
	require.NoError(t, err)

	yr := float64(week) / cashflow.SecondsPerYear
	assert.Equal(t, 2, run.SwapCount)
	assert.Equal(t, "0xpool", run.PositionID)
	assert.InDelta(t, 2000.0, run.NetNotional, 1e-9)
	assert.InDelta(t, 2.25, run.FixedRate, 1e-9)
	assert.InDelta(t, 0.4794520548, run.Accrued, 1e-9)
	assert.InDelta(t, 2000*yr*(0.03-0.0225), run.EstimatedFuture, 1e-9)
	assert.Equal(t, int64(3*week), run.CurrentTime)
	assert.Equal(t, int64(4*week), run.EndTime)
}

func TestComputeRunWithMemoryCache(t *testing.T) {
	cfg := testConfig(t)
	cfg.Oracle.Cache = config.CacheConfig{Kind: "memory"}
	cfg.Position.Prefetch = 4

	run, err := computeRun(context.Background(), cfg, time.Now())
	require.NoError(t, err)
	assert.InDelta(t, 0.4794520548, run.Accrued, 1e-9)
}

func TestComputeRunTableOracle(t *testing.T) {
	cfg := testConfig(t)
	dir := t.TempDir()
	cfg.History = config.HistoryConfig{Kind: "sqlite", Path: filepath.Join(dir, "history.sqlite")}
	cfg.Oracle = config.OracleConfig{Kind: "table", Pool: "aUSDC"}
	path := saveConfig(t, cfg)

	csvPath := writeTrades(t, dir)
	out, err := execute(t, "swaps", "import", csvPath, "-c", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 3 trades")

	_, err = execute(t, "rates", "add", "aUSDC", "0", "1", "-c", path)
	require.NoError(t, err)
	_, err = execute(t, "rates", "add", "aUSDC", "2419200", "1.04", "-c", path)
	require.NoError(t, err)

	run, err := computeRun(context.Background(), cfg, time.Now())
	require.NoError(t, err)

	// index rises linearly by 0.01 per week
	yr := float64(week) / cashflow.SecondsPerYear
	g1 := 1.02/1.01 - 1
	g2 := 1.03/1.02 - 1
	want := 1000*(g1-yr*0.02) + 2000*(g2-yr*0.0225)

	assert.Equal(t, 2, run.SwapCount)
	assert.InDelta(t, want, run.Accrued, 1e-9)
	assert.Equal(t, "table", run.OracleKind)
	assert.Equal(t, "sqlite", run.HistoryKind)

	out, err = execute(t, "rates", "growth", "aUSDC", "604800", "1209600", "-c", path)
	require.NoError(t, err)
	assert.Contains(t, out, "0.0099")
}

func TestCashflowCommandRecordsRun(t *testing.T) {
	cfg := testConfig(t)
	path := saveConfig(t, cfg)

	out, err := execute(t, "cashflow", "-c", path, "-o", "json")
	require.NoError(t, err)

	var sum cashflow.Summary
	require.NoError(t, json.Unmarshal([]byte(out), &sum))
	assert.InDelta(t, 0.4794520548, sum.Accrued, 1e-9)
	assert.InDelta(t, 2.25, sum.FixedRate, 1e-9)

	j, err := journal.NewSQLite(cfg.Journal.Path)
	require.NoError(t, err)
	defer j.Close()

	runs, err := j.ListRuns("0xpool", 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, sum, runs[0].Summary())

	out, err = execute(t, "journal", "show", runs[0].RunID, "-c", path)
	require.NoError(t, err)
	assert.Contains(t, out, "* CASHFLOW: 0xpool")

	out, err = execute(t, "journal", "list", "-c", path)
	require.NoError(t, err)
	assert.Contains(t, out, runs[0].RunID)
}

func TestCashflowCommandOutOfRangeValuation(t *testing.T) {
	cfg := testConfig(t)
	cfg.Position.ValuationTime = "1000"
	path := saveConfig(t, cfg)

	_, err := execute(t, "cashflow", "-c", path, "-o", "table", "--no-journal")
	require.Error(t, err)
	assert.ErrorIs(t, err, cashflow.ErrSequencing)
}

func TestWriteSummaryFormats(t *testing.T) {
	run := journal.Run{RunID: "01J00000000000000000000001", PositionID: "0xpool", NetNotional: 2000, FixedRate: 2.25}

	tests := []struct {
		format string
		want   string
	}{
		{"table", "avg_fixed_rate"},
		{"json", `"avg_fixed_rate": 2.25`},
		{"yaml", "avg_fixed_rate: 2.25"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, writeSummary(&buf, tt.format, run))
			assert.Contains(t, buf.String(), tt.want)
		})
	}

	assert.Error(t, writeSummary(&bytes.Buffer{}, "xml", run))
}

func TestConfigInitAndValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "swapflow.toml")

	out, err := execute(t, "config", "init", "-o", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Created default configuration")

	out, err = execute(t, "config", "validate", "-c", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration valid")
	assert.Contains(t, out, "Oracle:   apy")
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "swapflow version "+version)
}
