// Package config provides configuration management for the tycoon server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"luxury-tycoon/internal/economy"
	"luxury-tycoon/internal/errors"
	"luxury-tycoon/internal/market"
	"luxury-tycoon/internal/models"
)

// FileName is the configuration file name without extension.
const FileName = "config"

// Config holds all application configuration.
type Config struct {
	Economy   EconomyConfig   `mapstructure:"economy"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Spin      SpinConfig      `mapstructure:"spin"`
	Store     StoreConfig     `mapstructure:"store"`
	Server    ServerConfig    `mapstructure:"server"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// EconomyConfig holds the tunable economy constants.
type EconomyConfig struct {
	StartingPrimary         float64 `mapstructure:"starting_primary"`
	StartingPremium         float64 `mapstructure:"starting_premium"`
	DailyReward             float64 `mapstructure:"daily_reward"`
	UnlockThresholdFraction float64 `mapstructure:"unlock_threshold_fraction"`
	PremiumToPrimaryRate    float64 `mapstructure:"premium_to_primary_rate"`
	HistoryLength           int     `mapstructure:"history_length"`
	CatalogPath             string  `mapstructure:"catalog_path"` // empty uses the embedded catalog
	Seed                    int64   `mapstructure:"seed"`         // 0 seeds from the clock
}

// SchedulerConfig holds price tick scheduling.
type SchedulerConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	TickInterval time.Duration `mapstructure:"tick_interval"`
}

// SpinConfig holds the daily spin wheel.
type SpinConfig struct {
	Prizes []SpinPrize `mapstructure:"prizes"`
}

// SpinPrize is one segment of the daily spin wheel.
type SpinPrize struct {
	Currency string  `mapstructure:"currency"`
	Amount   float64 `mapstructure:"amount"`
	Weight   int     `mapstructure:"weight"`
}

// StoreConfig holds action journal settings.
type StoreConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr         string        `mapstructure:"addr"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	ActionRate   float64       `mapstructure:"action_rate"` // actions per second, 0 disables
	ActionBurst  int           `mapstructure:"action_burst"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level      string `mapstructure:"level"` // debug, info, warn, error
	File       bool   `mapstructure:"file"`
	Dir        string `mapstructure:"dir"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/luxury-tycoon"
	}
	return filepath.Join(home, ".config", "luxury-tycoon")
}

// Path returns the config file path inside configDir.
func Path(configDir string) string {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}
	return filepath.Join(configDir, FileName+".toml")
}

// DefaultPrizes returns the built-in daily spin wheel.
func DefaultPrizes() []SpinPrize {
	return []SpinPrize{
		{Currency: string(models.CurrencyPrimary), Amount: 250, Weight: 30},
		{Currency: string(models.CurrencyPrimary), Amount: 500, Weight: 25},
		{Currency: string(models.CurrencyPrimary), Amount: 1000, Weight: 15},
		{Currency: string(models.CurrencyPrimary), Amount: 5000, Weight: 5},
		{Currency: string(models.CurrencyPremium), Amount: 5, Weight: 15},
		{Currency: string(models.CurrencyPremium), Amount: 10, Weight: 8},
		{Currency: string(models.CurrencyPremium), Amount: 50, Weight: 2},
	}
}

func setDefaults(v *viper.Viper, configDir string) {
	v.SetDefault("economy.starting_primary", 10000.0)
	v.SetDefault("economy.starting_premium", 25.0)
	v.SetDefault("economy.daily_reward", 1000.0)
	v.SetDefault("economy.unlock_threshold_fraction", economy.DefaultUnlockThresholdFraction)
	v.SetDefault("economy.premium_to_primary_rate", 100.0)
	v.SetDefault("economy.history_length", market.DefaultHistoryLength)
	v.SetDefault("economy.catalog_path", "")
	v.SetDefault("economy.seed", 0)

	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.tick_interval", "2s")

	v.SetDefault("store.enabled", true)
	v.SetDefault("store.path", filepath.Join(configDir, "journal.db"))

	v.SetDefault("server.addr", "127.0.0.1:8080")
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "10s")
	v.SetDefault("server.action_rate", 20.0)
	v.SetDefault("server.action_burst", 40)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.file", true)
	v.SetDefault("logging.dir", filepath.Join(configDir, "logs"))
	v.SetDefault("logging.max_size_mb", 100)
	v.SetDefault("logging.max_backups", 5)
	v.SetDefault("logging.max_age_days", 30)
}

// Default returns the configuration used when no file is present.
func Default(configDir string) *Config {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}
	v := viper.New()
	setDefaults(v, configDir)

	cfg := &Config{}
	// Defaults are all scalar and always decode.
	_ = v.Unmarshal(cfg)
	cfg.Spin.Prizes = DefaultPrizes()
	return cfg
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory. A missing
// config file is replaced by the template and loading continues.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	v := viper.New()
	v.SetConfigName(FileName)
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	setDefaults(v, configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading %s.toml: %w", FileName, err)
		}
		if err := WriteTemplate(configDir); err != nil {
			return nil, err
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding %s.toml: %w", FileName, err)
	}
	if len(cfg.Spin.Prizes) == 0 {
		cfg.Spin.Prizes = DefaultPrizes()
	}

	// Apply environment variable overrides
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("TYCOON_SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("TYCOON_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("TYCOON_STORE_PATH"); v != "" {
		cfg.Store.Path = v
	}
	if v := os.Getenv("TYCOON_CATALOG_PATH"); v != "" {
		cfg.Economy.CatalogPath = v
	}
	if v := os.Getenv("TYCOON_SEED"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return errors.NewValidationError("TYCOON_SEED", v, "must be an integer")
		}
		cfg.Economy.Seed = seed
	}
	if v := os.Getenv("TYCOON_TICK_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return errors.NewValidationError("TYCOON_TICK_INTERVAL", v, "must be a duration")
		}
		cfg.Scheduler.TickInterval = d
	}
	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if _, err := c.Economy.Rules(); err != nil {
		return err
	}
	if c.Economy.PremiumToPrimaryRate <= 0 {
		return errors.NewValidationError("economy.premium_to_primary_rate", c.Economy.PremiumToPrimaryRate, "must be positive")
	}

	if c.Scheduler.Enabled && c.Scheduler.TickInterval <= 0 {
		return errors.NewValidationError("scheduler.tick_interval", c.Scheduler.TickInterval, "must be positive")
	}

	total := 0
	for i, p := range c.Spin.Prizes {
		field := fmt.Sprintf("spin.prizes[%d]", i)
		if !models.Currency(p.Currency).Valid() {
			return errors.NewValidationError(field+".currency", p.Currency, "must be primary or premium")
		}
		if p.Amount < 0 {
			return errors.NewValidationError(field+".amount", p.Amount, "must be non-negative")
		}
		if p.Weight < 0 {
			return errors.NewValidationError(field+".weight", p.Weight, "must be non-negative")
		}
		total += p.Weight
	}
	if total == 0 {
		return errors.NewValidationError("spin.prizes", len(c.Spin.Prizes), "need at least one prize with positive weight")
	}

	if c.Store.Enabled && c.Store.Path == "" {
		return errors.NewValidationError("store.path", c.Store.Path, "required when the journal is enabled")
	}

	if c.Server.ActionRate < 0 {
		return errors.NewValidationError("server.action_rate", c.Server.ActionRate, "must not be negative")
	}

	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return errors.NewValidationError("logging.level", c.Logging.Level, "must be debug, info, warn or error")
	}

	return nil
}

// Rules converts the economy section into engine rules.
func (e EconomyConfig) Rules() (economy.Rules, error) {
	rules := economy.Rules{
		StartingPrimary:         decimal.NewFromFloat(e.StartingPrimary),
		StartingPremium:         decimal.NewFromFloat(e.StartingPremium),
		DailyReward:             decimal.NewFromFloat(e.DailyReward),
		UnlockThresholdFraction: decimal.NewFromFloat(e.UnlockThresholdFraction),
		HistoryLength:           e.HistoryLength,
	}
	if err := rules.Validate(); err != nil {
		return economy.Rules{}, err
	}
	return rules, nil
}

// ConversionRate returns the premium to primary exchange rate.
func (e EconomyConfig) ConversionRate() decimal.Decimal {
	return decimal.NewFromFloat(e.PremiumToPrimaryRate)
}
