package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Config represents a complete cashflow run
type Config struct {
	Position PositionConfig `json:"position" yaml:"position" toml:"position"`
	Oracle   OracleConfig   `json:"oracle" yaml:"oracle" toml:"oracle"`
	History  HistoryConfig  `json:"history" yaml:"history" toml:"history"`
	Journal  JournalConfig  `json:"journal" yaml:"journal" toml:"journal"`
	Log      LogConfig      `json:"log" yaml:"log" toml:"log"`
}

// PositionConfig selects the position and the valuation window
type PositionConfig struct {
	ID            string  `json:"id" yaml:"id" toml:"id"`
	Maturity      string  `json:"maturity" yaml:"maturity" toml:"maturity"`                                           // unix seconds, RFC3339 or YYYY-MM-DD
	ValuationTime string  `json:"valuation_time,omitempty" yaml:"valuation_time,omitempty" toml:"valuation_time,omitempty"` // defaults to now
	EstimatedAPY  float64 `json:"estimated_apy" yaml:"estimated_apy" toml:"estimated_apy"`                            // percent
	Prefetch      int     `json:"prefetch,omitempty" yaml:"prefetch,omitempty" toml:"prefetch,omitempty"`
}

// OracleConfig selects the variable rate source
type OracleConfig struct {
	Kind    string      `json:"kind" yaml:"kind" toml:"kind"` // "apy", "table" or "chain"
	APY     float64     `json:"apy,omitempty" yaml:"apy,omitempty" toml:"apy,omitempty"`
	Pool    string      `json:"pool,omitempty" yaml:"pool,omitempty" toml:"pool,omitempty"`
	RPCURL  string      `json:"rpc_url,omitempty" yaml:"rpc_url,omitempty" toml:"rpc_url,omitempty"`
	Address string      `json:"address,omitempty" yaml:"address,omitempty" toml:"address,omitempty"`
	Cache   CacheConfig `json:"cache" yaml:"cache" toml:"cache"`
}

// CacheConfig memoizes oracle lookups
type CacheConfig struct {
	Kind     string `json:"kind,omitempty" yaml:"kind,omitempty" toml:"kind,omitempty"` // "", "memory" or "redis"
	Addr     string `json:"addr,omitempty" yaml:"addr,omitempty" toml:"addr,omitempty"`
	Password string `json:"password,omitempty" yaml:"password,omitempty" toml:"password,omitempty"`
	DB       int    `json:"db,omitempty" yaml:"db,omitempty" toml:"db,omitempty"`
	TLS      bool   `json:"tls,omitempty" yaml:"tls,omitempty" toml:"tls,omitempty"`
	TTL      string `json:"ttl,omitempty" yaml:"ttl,omitempty" toml:"ttl,omitempty"`             // e.g. "24h"
	MinAge   string `json:"min_age,omitempty" yaml:"min_age,omitempty" toml:"min_age,omitempty"` // e.g. "10m"
}

// HistoryConfig selects where trades are read from
type HistoryConfig struct {
	Kind     string `json:"kind" yaml:"kind" toml:"kind"` // "csv", "sqlite", "postgres" or "subgraph"
	Path     string `json:"path,omitempty" yaml:"path,omitempty" toml:"path,omitempty"`
	DSN      string `json:"dsn,omitempty" yaml:"dsn,omitempty" toml:"dsn,omitempty"`
	URL      string `json:"url,omitempty" yaml:"url,omitempty" toml:"url,omitempty"`
	APIKey   string `json:"api_key,omitempty" yaml:"api_key,omitempty" toml:"api_key,omitempty"`
	Decimals int32  `json:"decimals,omitempty" yaml:"decimals,omitempty" toml:"decimals,omitempty"`
}

// JournalConfig contains journaling parameters
type JournalConfig struct {
	Kind string `json:"kind,omitempty" yaml:"kind,omitempty" toml:"kind,omitempty"` // "", "csv" or "sqlite"
	Path string `json:"path,omitempty" yaml:"path,omitempty" toml:"path,omitempty"`
}

type LogConfig struct {
	Level string `json:"level,omitempty" yaml:"level,omitempty" toml:"level,omitempty"`
	JSON  bool   `json:"json,omitempty" yaml:"json,omitempty" toml:"json,omitempty"`
}

// LoadFromFile loads configuration from a file. TOML is chosen by extension,
// anything else is tried as YAML first and JSON second. A .env file in the
// working directory and SWAPFLOW_* variables override the file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	if isTOML(path) {
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("parse config (toml): %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	// missing .env is fine
	_ = godotenv.Load()
	ApplyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// ApplyEnv overwrites secrets and endpoints from SWAPFLOW_* variables.
func ApplyEnv(cfg *Config) {
	setStr(&cfg.Oracle.RPCURL, "SWAPFLOW_RPC_URL")
	setStr(&cfg.Oracle.Address, "SWAPFLOW_ORACLE_ADDRESS")
	setStr(&cfg.Oracle.Cache.Addr, "SWAPFLOW_REDIS_ADDR")
	setStr(&cfg.Oracle.Cache.Password, "SWAPFLOW_REDIS_PASSWORD")
	setStr(&cfg.History.DSN, "SWAPFLOW_POSTGRES_DSN")
	setStr(&cfg.History.URL, "SWAPFLOW_SUBGRAPH_URL")
	setStr(&cfg.History.APIKey, "SWAPFLOW_SUBGRAPH_API_KEY")
	setStr(&cfg.Log.Level, "SWAPFLOW_LOG_LEVEL")
}

func setStr(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

// SaveToFile saves configuration as YAML, TOML or JSON based on extension
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	switch {
	case isYAML(path):
		data, err = yaml.Marshal(c)
	case isTOML(path):
		var buf bytes.Buffer
		err = toml.NewEncoder(&buf).Encode(c)
		data = buf.Bytes()
	default:
		data, err = json.MarshalIndent(c, "", "  ")
	}

	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

func isTOML(path string) bool {
	return strings.ToLower(filepath.Ext(path)) == ".toml"
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Position.Maturity == "" {
		return fmt.Errorf("position.maturity is required")
	}
	if _, err := ParseTime(c.Position.Maturity); err != nil {
		return fmt.Errorf("position.maturity: %w", err)
	}
	if c.Position.ValuationTime != "" {
		if _, err := ParseTime(c.Position.ValuationTime); err != nil {
			return fmt.Errorf("position.valuation_time: %w", err)
		}
	}
	if c.Position.Prefetch < 0 {
		return fmt.Errorf("position.prefetch must not be negative")
	}

	switch c.Oracle.Kind {
	case "apy":
	case "table":
		if c.Oracle.Pool == "" {
			return fmt.Errorf("oracle.pool required for table oracle")
		}
		if c.History.Kind != "sqlite" {
			return fmt.Errorf("table oracle reads observations from the sqlite history store")
		}
	case "chain":
		if c.Oracle.RPCURL == "" || c.Oracle.Address == "" {
			return fmt.Errorf("oracle rpc_url and address required for chain oracle")
		}
	default:
		return fmt.Errorf("oracle.kind must be 'apy', 'table' or 'chain'")
	}

	switch c.Oracle.Cache.Kind {
	case "", "memory":
	case "redis":
		if c.Oracle.Cache.Addr == "" {
			return fmt.Errorf("oracle.cache.addr required for redis cache")
		}
	default:
		return fmt.Errorf("oracle.cache.kind must be empty, 'memory' or 'redis'")
	}
	if _, err := c.Oracle.Cache.Durations(); err != nil {
		return err
	}

	switch c.History.Kind {
	case "csv", "sqlite":
		if c.History.Path == "" {
			return fmt.Errorf("history.path required for %s history", c.History.Kind)
		}
	case "postgres":
		if c.History.DSN == "" {
			return fmt.Errorf("history.dsn required for postgres history")
		}
	case "subgraph":
		if c.History.URL == "" {
			return fmt.Errorf("history.url required for subgraph history")
		}
	default:
		return fmt.Errorf("history.kind must be 'csv', 'sqlite', 'postgres' or 'subgraph'")
	}
	if c.History.Kind != "csv" && c.Position.ID == "" {
		return fmt.Errorf("position.id is required for %s history", c.History.Kind)
	}

	switch c.Journal.Kind {
	case "":
	case "csv", "sqlite":
		if c.Journal.Path == "" {
			return fmt.Errorf("journal.path required for %s journal", c.Journal.Kind)
		}
	default:
		return fmt.Errorf("journal.kind must be empty, 'csv' or 'sqlite'")
	}

	if c.Log.Level != "" {
		if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
			return fmt.Errorf("log.level: %w", err)
		}
	}
	return nil
}

// CacheDurations are the parsed cache timings.
type CacheDurations struct {
	TTL    time.Duration
	MinAge time.Duration
}

func (c CacheConfig) Durations() (CacheDurations, error) {
	var d CacheDurations
	var err error
	if c.TTL != "" {
		if d.TTL, err = time.ParseDuration(c.TTL); err != nil {
			return d, fmt.Errorf("oracle.cache.ttl: %w", err)
		}
	}
	if c.MinAge != "" {
		if d.MinAge, err = time.ParseDuration(c.MinAge); err != nil {
			return d, fmt.Errorf("oracle.cache.min_age: %w", err)
		}
	}
	return d, nil
}

// EndTime returns the maturity in unix seconds.
func (p PositionConfig) EndTime() (int64, error) {
	return ParseTime(p.Maturity)
}

// CurrentTime returns the valuation time, or now when it is not set.
func (p PositionConfig) CurrentTime(now time.Time) (int64, error) {
	if p.ValuationTime == "" {
		return now.Unix(), nil
	}
	return ParseTime(p.ValuationTime)
}

// ParseTime accepts unix seconds, RFC3339 or a UTC date.
func ParseTime(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.Unix(), nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.Unix(), nil
	}
	return 0, fmt.Errorf("cannot parse time %q", s)
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Position: PositionConfig{
			ID:           "0x0000000000000000000000000000000000000001",
			Maturity:     "2027-01-01",
			EstimatedAPY: 3,
		},
		Oracle: OracleConfig{
			Kind: "apy",
			APY:  3,
		},
		History: HistoryConfig{
			Kind: "csv",
			Path: "./trades.csv",
		},
		Journal: JournalConfig{
			Kind: "sqlite",
			Path: "./swapflow.sqlite",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}
