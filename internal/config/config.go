// Package config provides configuration management for the backtest engine.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Exit reference policies. The strategy variants disagreed on whether the
// sell rule compares the current bar to the current MA or the prior bar to
// the prior MA, so the choice is an explicit policy.
const (
	ExitCurrentBar  = "current"
	ExitPreviousBar = "previous"
)

// Cash policies for same-step freed cash.
const (
	CashSequential = "sequential" // cash from this step's sell fills funds this step's entries
	CashIsolated   = "isolated"   // entries only see cash held before this step's sell fills
)

// Config holds all application configuration.
type Config struct {
	Engine   EngineConfig   `mapstructure:"engine"`
	Strategy StrategyConfig `mapstructure:"strategy"`
	Data     DataConfig     `mapstructure:"data"`
}

// EngineConfig holds simulation parameters.
type EngineConfig struct {
	InitialCapital float64 `mapstructure:"initial_capital"`
	CommissionRate float64 `mapstructure:"commission_rate"`
	MaxPositions   int     `mapstructure:"max_positions"`
	LotSize        int     `mapstructure:"lot_size"`
	CashPolicy     string  `mapstructure:"cash_policy"` // sequential, isolated
	Workers        int     `mapstructure:"workers"`     // indicator workers, 0 = serial
}

// StrategyConfig holds signal-rule parameters.
type StrategyConfig struct {
	ExitReference string  `mapstructure:"exit_reference"` // current, previous
	FastMAWindow  int     `mapstructure:"fast_ma_window"`
	MidMAWindow   int     `mapstructure:"mid_ma_window"`
	SlowMAWindow  int     `mapstructure:"slow_ma_window"`
	FastRSIWindow int     `mapstructure:"fast_rsi_window"`
	SlowRSIWindow int     `mapstructure:"slow_rsi_window"`
	FastRSIMin    float64 `mapstructure:"fast_rsi_min"`
	SlowRSIMin    float64 `mapstructure:"slow_rsi_min"`
	FastVolWindow int     `mapstructure:"fast_vol_window"`
	SlowVolWindow int     `mapstructure:"slow_vol_window"`
}

// DataConfig holds data source configuration.
type DataConfig struct {
	DatabasePath   string `mapstructure:"database_path"`
	PoolCSV        string `mapstructure:"pool_csv"`
	MaxInstruments int    `mapstructure:"max_instruments"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/stock-backtester"
	}
	return filepath.Join(home, ".config", "stock-backtester")
}

// Default returns the built-in configuration. Capital, commission, lot size
// and position cap follow the original strategy parameters.
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			InitialCapital: 300000,
			CommissionRate: 0.0003,
			MaxPositions:   5,
			LotSize:        100,
			CashPolicy:     CashSequential,
			Workers:        0,
		},
		Strategy: StrategyConfig{
			ExitReference: ExitCurrentBar,
			FastMAWindow:  20,
			MidMAWindow:   60,
			SlowMAWindow:  240,
			FastRSIWindow: 6,
			SlowRSIWindow: 13,
			FastRSIMin:    70,
			SlowRSIMin:    50,
			FastVolWindow: 3,
			SlowVolWindow: 8,
		},
		Data: DataConfig{
			DatabasePath:   filepath.Join(DefaultConfigDir(), "daily_data.db"),
			PoolCSV:        "stock_pool.csv",
			MaxInstruments: 10,
		},
	}
}

// Load loads configuration from the specified directory, falling back to
// built-in defaults when no config file exists.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	cfg := Default()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	setDefaults(v, cfg)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("loading config.toml: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config.toml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("engine.initial_capital", cfg.Engine.InitialCapital)
	v.SetDefault("engine.commission_rate", cfg.Engine.CommissionRate)
	v.SetDefault("engine.max_positions", cfg.Engine.MaxPositions)
	v.SetDefault("engine.lot_size", cfg.Engine.LotSize)
	v.SetDefault("engine.cash_policy", cfg.Engine.CashPolicy)
	v.SetDefault("engine.workers", cfg.Engine.Workers)

	v.SetDefault("strategy.exit_reference", cfg.Strategy.ExitReference)
	v.SetDefault("strategy.fast_ma_window", cfg.Strategy.FastMAWindow)
	v.SetDefault("strategy.mid_ma_window", cfg.Strategy.MidMAWindow)
	v.SetDefault("strategy.slow_ma_window", cfg.Strategy.SlowMAWindow)
	v.SetDefault("strategy.fast_rsi_window", cfg.Strategy.FastRSIWindow)
	v.SetDefault("strategy.slow_rsi_window", cfg.Strategy.SlowRSIWindow)
	v.SetDefault("strategy.fast_rsi_min", cfg.Strategy.FastRSIMin)
	v.SetDefault("strategy.slow_rsi_min", cfg.Strategy.SlowRSIMin)
	v.SetDefault("strategy.fast_vol_window", cfg.Strategy.FastVolWindow)
	v.SetDefault("strategy.slow_vol_window", cfg.Strategy.SlowVolWindow)

	v.SetDefault("data.database_path", cfg.Data.DatabasePath)
	v.SetDefault("data.pool_csv", cfg.Data.PoolCSV)
	v.SetDefault("data.max_instruments", cfg.Data.MaxInstruments)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Engine.InitialCapital < 0 {
		return fmt.Errorf("initial_capital must be non-negative")
	}
	if c.Engine.CommissionRate < 0 || c.Engine.CommissionRate >= 1 {
		return fmt.Errorf("commission_rate must be in [0, 1)")
	}
	if c.Engine.MaxPositions <= 0 {
		return fmt.Errorf("max_positions must be positive")
	}
	if c.Engine.LotSize <= 0 {
		return fmt.Errorf("lot_size must be positive")
	}
	if c.Engine.CashPolicy != CashSequential && c.Engine.CashPolicy != CashIsolated {
		return fmt.Errorf("invalid cash_policy: %s (must be %q or %q)", c.Engine.CashPolicy, CashSequential, CashIsolated)
	}
	if c.Strategy.ExitReference != ExitCurrentBar && c.Strategy.ExitReference != ExitPreviousBar {
		return fmt.Errorf("invalid exit_reference: %s (must be %q or %q)", c.Strategy.ExitReference, ExitCurrentBar, ExitPreviousBar)
	}
	for _, w := range []struct {
		name  string
		value int
	}{
		{"fast_ma_window", c.Strategy.FastMAWindow},
		{"mid_ma_window", c.Strategy.MidMAWindow},
		{"slow_ma_window", c.Strategy.SlowMAWindow},
		{"fast_rsi_window", c.Strategy.FastRSIWindow},
		{"slow_rsi_window", c.Strategy.SlowRSIWindow},
		{"fast_vol_window", c.Strategy.FastVolWindow},
		{"slow_vol_window", c.Strategy.SlowVolWindow},
	} {
		if w.value <= 0 {
			return fmt.Errorf("%s must be positive", w.name)
		}
	}
	if c.Strategy.FastMAWindow >= c.Strategy.MidMAWindow || c.Strategy.MidMAWindow >= c.Strategy.SlowMAWindow {
		return fmt.Errorf("ma windows must be strictly increasing: fast < mid < slow")
	}
	if c.Data.MaxInstruments <= 0 {
		return fmt.Errorf("max_instruments must be positive")
	}
	return nil
}
