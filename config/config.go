// Package config loads and validates replay run configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the complete backtest configuration.
type Config struct {
	Account   AccountConfig   `json:"account" yaml:"account"`
	Strategy  StrategyConfig  `json:"strategy" yaml:"strategy"`
	Backtest  BacktestConfig  `json:"backtest" yaml:"backtest"`
	Journal   JournalConfig   `json:"journal" yaml:"journal"`
	Dashboard DashboardConfig `json:"dashboard" yaml:"dashboard"`
}

// AccountConfig funds the simulated ledger.
type AccountConfig struct {
	ID             string  `json:"id" yaml:"id"`
	InitialCapital float64 `json:"initial_capital" yaml:"initial_capital"`
}

// StrategyConfig selects and parameterizes the strategy.
type StrategyConfig struct {
	Name        string `json:"name" yaml:"name"`
	ShortPeriod int    `json:"short_period" yaml:"short_period"`
	LongPeriod  int    `json:"long_period" yaml:"long_period"`
}

// BacktestConfig controls execution and sampling.
type BacktestConfig struct {
	FeePerTrade      float64 `json:"fee_per_trade" yaml:"fee_per_trade"`
	RiskFreeRate     float64 `json:"risk_free_rate" yaml:"risk_free_rate"`
	SamplingInterval int     `json:"sampling_interval" yaml:"sampling_interval"`
	ProgressInterval int     `json:"progress_interval" yaml:"progress_interval"`
}

// JournalConfig selects where run artifacts are persisted.
type JournalConfig struct {
	Type       string `json:"type" yaml:"type"` // "none", "csv" or "sqlite"
	TradesFile string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	EquityFile string `json:"equity_file,omitempty" yaml:"equity_file,omitempty"`
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// DashboardConfig controls the websocket event push.
type DashboardConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Addr    string `json:"addr,omitempty" yaml:"addr,omitempty"`
}

// LoadFromFile loads configuration from a YAML or JSON file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	// Try YAML first, fall back to JSON.
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SaveToFile saves configuration to a file, YAML or JSON by extension.
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
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

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Account.InitialCapital <= 0 {
		return fmt.Errorf("account.initial_capital must be positive")
	}
	if c.Strategy.Name == "" {
		return fmt.Errorf("strategy.name is required")
	}
	if c.Strategy.Name == "sma-cross" {
		if c.Strategy.ShortPeriod <= 0 || c.Strategy.LongPeriod <= 0 {
			return fmt.Errorf("strategy periods must be positive")
		}
		if c.Strategy.ShortPeriod >= c.Strategy.LongPeriod {
			return fmt.Errorf("strategy.short_period must be less than long_period")
		}
	}
	if c.Backtest.FeePerTrade < 0 {
		return fmt.Errorf("backtest.fee_per_trade must not be negative")
	}
	if c.Backtest.SamplingInterval < 0 {
		return fmt.Errorf("backtest.sampling_interval must not be negative")
	}
	switch c.Journal.Type {
	case "", "none":
	case "csv":
		if c.Journal.TradesFile == "" || c.Journal.EquityFile == "" {
			return fmt.Errorf("journal trades_file and equity_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	default:
		return fmt.Errorf("journal.type must be 'none', 'csv' or 'sqlite'")
	}
	if c.Dashboard.Enabled && c.Dashboard.Addr == "" {
		return fmt.Errorf("dashboard.addr required when dashboard is enabled")
	}
	return nil
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Account: AccountConfig{
			ID:             "SIM-001",
			InitialCapital: 100000,
		},
		Strategy: StrategyConfig{
			Name:        "sma-cross",
			ShortPeriod: 10,
			LongPeriod:  30,
		},
		Backtest: BacktestConfig{
			FeePerTrade:      1.0,
			RiskFreeRate:     0.02,
			SamplingInterval: 1,
			ProgressInterval: 100,
		},
		Journal: JournalConfig{
			Type:   "sqlite",
			DBPath: "./replay.sqlite",
		},
		Dashboard: DashboardConfig{
			Enabled: false,
			Addr:    ":8089",
		},
	}
}
