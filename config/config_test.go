package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.NotNil(t, cfg)
	assert.Equal(t, "apy", cfg.Oracle.Kind)
	assert.Equal(t, 3.0, cfg.Position.EstimatedAPY)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	with := func(mut func(c *Config)) *Config {
		c := Default()
		mut(c)
		return c
	}

	tests := []struct {
		name    string
		config  *Config
		wantErr bool
		errMsg  string
	}{
		{
			name:   "valid config",
			config: Default(),
		},
		{
			name:    "missing maturity",
			config:  with(func(c *Config) { c.Position.Maturity = "" }),
			wantErr: true,
			errMsg:  "position.maturity is required",
		},
		{
			name:    "bad valuation time",
			config:  with(func(c *Config) { c.Position.ValuationTime = "tomorrow" }),
			wantErr: true,
			errMsg:  "position.valuation_time",
		},
		{
			name:    "unknown oracle",
			config:  with(func(c *Config) { c.Oracle.Kind = "magic" }),
			wantErr: true,
			errMsg:  "oracle.kind must be",
		},
		{
			name:    "table oracle needs sqlite history",
			config:  with(func(c *Config) { c.Oracle.Kind = "table"; c.Oracle.Pool = "aUSDC" }),
			wantErr: true,
			errMsg:  "sqlite history store",
		},
		{
			name: "table oracle on sqlite",
			config: with(func(c *Config) {
				c.Oracle.Kind = "table"
				c.Oracle.Pool = "aUSDC"
				c.History = HistoryConfig{Kind: "sqlite", Path: "h.db"}
			}),
		},
		{
			name:    "chain oracle without rpc",
			config:  with(func(c *Config) { c.Oracle.Kind = "chain" }),
			wantErr: true,
			errMsg:  "rpc_url and address",
		},
		{
			name:    "redis cache without addr",
			config:  with(func(c *Config) { c.Oracle.Cache.Kind = "redis" }),
			wantErr: true,
			errMsg:  "oracle.cache.addr",
		},
		{
			name:    "bad cache ttl",
			config:  with(func(c *Config) { c.Oracle.Cache.TTL = "forever" }),
			wantErr: true,
			errMsg:  "oracle.cache.ttl",
		},
		{
			name:    "postgres without dsn",
			config:  with(func(c *Config) { c.History = HistoryConfig{Kind: "postgres"} }),
			wantErr: true,
			errMsg:  "history.dsn",
		},
		{
			name: "subgraph without position",
			config: with(func(c *Config) {
				c.History = HistoryConfig{Kind: "subgraph", URL: "http://localhost/graphql"}
				c.Position.ID = ""
			}),
			wantErr: true,
			errMsg:  "position.id is required",
		},
		{
			name:    "journal without path",
			config:  with(func(c *Config) { c.Journal.Path = "" }),
			wantErr: true,
			errMsg:  "journal.path required",
		},
		{
			name:   "no journal",
			config: with(func(c *Config) { c.Journal = JournalConfig{} }),
		},
		{
			name:    "bad log level",
			config:  with(func(c *Config) { c.Log.Level = "loud" }),
			wantErr: true,
			errMsg:  "log.level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				require.Error(t, err)
				if tt.errMsg != "" {
					assert.Contains(t, err.Error(), tt.errMsg)
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name string
		ext  string
	}{
		{"json format", ".json"},
		{"yaml format", ".yaml"},
		{"toml format", ".toml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Oracle.Cache = CacheConfig{Kind: "memory", TTL: "1h"}
			path := filepath.Join(tmpDir, "test"+tt.ext)

			err := cfg.SaveToFile(path)
			require.NoError(t, err)

			_, err = os.Stat(path)
			require.NoError(t, err)

			loaded, err := LoadFromFile(path)
			require.NoError(t, err)

			assert.Equal(t, cfg.Position, loaded.Position)
			assert.Equal(t, cfg.Oracle, loaded.Oracle)
			assert.Equal(t, cfg.History, loaded.History)
			assert.Equal(t, cfg.Journal, loaded.Journal)
		})
	}
}

func TestLoadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "swapflow.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[position]
id = "0xabc"
maturity = "2026-12-31T00:00:00Z"
estimated_apy = 4.5

[oracle]
kind = "apy"
apy = 4

[history]
kind = "sqlite"
path = "history.db"
`), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "0xabc", cfg.Position.ID)
	assert.Equal(t, 4.5, cfg.Position.EstimatedAPY)
	assert.Equal(t, "sqlite", cfg.History.Kind)

	end, err := cfg.Position.EndTime()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC).Unix(), end)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SWAPFLOW_RPC_URL", "https://rpc.example")
	t.Setenv("SWAPFLOW_POSTGRES_DSN", "postgres://u:p@localhost/db")
	t.Setenv("SWAPFLOW_REDIS_PASSWORD", " hunter2 ")

	cfg := Default()
	ApplyEnv(cfg)

	assert.Equal(t, "https://rpc.example", cfg.Oracle.RPCURL)
	assert.Equal(t, "postgres://u:p@localhost/db", cfg.History.DSN)
	assert.Equal(t, "hunter2", cfg.Oracle.Cache.Password)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadInvalidFile(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/path.yaml")
	assert.Error(t, err)
}

func TestParseTime(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"1700000000", 1700000000, false},
		{"2024-01-02T03:04:05Z", time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC).Unix(), false},
		{"2024-01-02", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC).Unix(), false},
		{"next week", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTime(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCurrentTimeDefaultsToNow(t *testing.T) {
	now := time.Unix(1_800_000_000, 0)

	got, err := PositionConfig{}.CurrentTime(now)
	require.NoError(t, err)
	assert.Equal(t, now.Unix(), got)

	got, err = PositionConfig{ValuationTime: "1700000000"}.CurrentTime(now)
	require.NoError(t, err)
	assert.Equal(t, int64(1700000000), got)
}
