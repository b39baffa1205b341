// Package config defines the top-level configuration for the arbitrage bot
// and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a TOML
// file and then optionally overridden by VENUEARB_* environment variables.
type Config struct {
	Arbitrage ArbitrageConfig `toml:"arbitrage"`
	Market    MarketConfig    `toml:"market"`
	Venues    []VenueConfig   `toml:"venues"`
	Postgres  PostgresConfig  `toml:"postgres"`
	Redis     RedisConfig     `toml:"redis"`
	Server    ServerConfig    `toml:"server"`
	Notify    NotifyConfig    `toml:"notify"`
	Mode      string          `toml:"mode"`
	LogLevel  string          `toml:"log_level"`
}

// ArbitrageConfig holds detection thresholds, fees and trade sizing.
type ArbitrageConfig struct {
	MinProfitPercent       float64 `toml:"min_profit_percent"`
	DefaultTakerFeePercent float64 `toml:"default_taker_fee_percent"`
	// PerVenueFeePercent overrides the default taker fee for individual venues.
	PerVenueFeePercent map[string]float64 `toml:"per_venue_fee_percent"`
	MinTradeAmount     float64            `toml:"min_trade_amount"`
	MaxTradeAmount     float64            `toml:"max_trade_amount"`
	NominalNotional    float64            `toml:"nominal_notional"`
	// LegDispatch is "sequential" (buy then sell) or "concurrent".
	LegDispatch string   `toml:"leg_dispatch"`
	LockTTL     duration `toml:"lock_ttl"`
}

// MarketConfig controls quote polling.
type MarketConfig struct {
	Symbols      []string `toml:"symbols"`
	PollInterval duration `toml:"poll_interval"`
	StaleAfter   duration `toml:"stale_after"`
	WarmupCycles int      `toml:"warmup_cycles"`
	// RequireCredentials drops venues without an API key and secret at startup.
	RequireCredentials bool `toml:"require_credentials"`
	// FetchRateLimit caps quote requests per venue per second; 0 disables it.
	FetchRateLimit int `toml:"fetch_rate_limit"`
	// MaxConcurrentFetches bounds in-flight fetches per cycle; 0 is unbounded.
	MaxConcurrentFetches int `toml:"max_concurrent_fetches"`
}

// VenueConfig describes one trading venue.
type VenueConfig struct {
	ID            string   `toml:"id"`
	Enabled       bool     `toml:"enabled"`
	APIKey        string   `toml:"api_key"`
	APISecret     string   `toml:"api_secret"`
	APIPassphrase string   `toml:"api_passphrase"`
	BaseURL       string   `toml:"base_url"`
	Timeout       duration `toml:"timeout"`
}

// HasCredentials reports whether both key and secret are set.
func (v VenueConfig) HasCredentials() bool {
	return v.APIKey != "" && v.APISecret != ""
}

// PostgresConfig holds connection parameters for the trade journal.
type PostgresConfig struct {
	Enabled       bool   `toml:"enabled"`
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Enabled    bool   `toml:"enabled"`
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// duration is a wrapper around time.Duration that supports TOML string decoding
// (e.g. "5s", "1m").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "5s" or "1m".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// ServerConfig holds HTTP status server parameters.
type ServerConfig struct {
	Enabled     bool     `toml:"enabled"`
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
	// APIKey gates /api routes except health; empty disables auth.
	APIKey string `toml:"api_key"`
}

// NotifyConfig holds notification channel credentials.
type NotifyConfig struct {
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	Events            []string `toml:"events"`
}

// Defaults returns a Config populated with reasonable default values.
// These match the values in config.example.toml. Venues are left empty here
// and filled by Load when the file does not declare any.
func Defaults() Config {
	return Config{
		Arbitrage: ArbitrageConfig{
			MinProfitPercent:       0.2,
			DefaultTakerFeePercent: 0.1,
			PerVenueFeePercent:     map[string]float64{},
			MinTradeAmount:         10,
			MaxTradeAmount:         1000,
			NominalNotional:        100,
			LegDispatch:            "sequential",
			LockTTL:                duration{30 * time.Second},
		},
		Market: MarketConfig{
			Symbols:            []string{"BTC/USDT", "ETH/USDT", "XRP/USDT", "SOL/USDT", "ADA/USDT"},
			PollInterval:       duration{5 * time.Second},
			StaleAfter:         duration{10 * time.Second},
			WarmupCycles:       2,
			RequireCredentials: true,
		},
		Postgres: PostgresConfig{
			Host:          "localhost",
			Port:          5432,
			Database:      "venuearb",
			User:          "postgres",
			SSLMode:       "disable",
			PoolMaxConns:  5,
			PoolMinConns:  1,
			RunMigrations: true,
		},
		Redis: RedisConfig{
			Addr:       "localhost:6379",
			PoolSize:   10,
			MaxRetries: 3,
		},
		Server: ServerConfig{
			Enabled: true,
			Port:    8000,
		},
		Notify: NotifyConfig{
			Events: []string{"trade_completed", "trade_failed", "leg_imbalance"},
		},
		Mode:     "trade",
		LogLevel: "info",
	}
}

// DefaultVenues is the venue set used when the configuration file lists none.
func DefaultVenues() []VenueConfig {
	return []VenueConfig{
		{ID: "binance", Enabled: true, Timeout: duration{7 * time.Second}},
		{ID: "kucoin", Enabled: true, Timeout: duration{8 * time.Second}},
		{ID: "gateio", Enabled: true, Timeout: duration{8 * time.Second}},
	}
}

// validModes enumerates the accepted values for Config.Mode.
var validModes = map[string]bool{
	"trade":   true,
	"monitor": true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validLegDispatch = map[string]bool{
	"sequential": true,
	"concurrent": true,
}

// Validate checks Config for obviously invalid or missing values and returns a
// combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: trade, monitor)", c.Mode))
	}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Arbitrage
	a := c.Arbitrage
	if a.MinProfitPercent < 0 {
		errs = append(errs, "arbitrage: min_profit_percent must be >= 0")
	}
	if a.DefaultTakerFeePercent < 0 || a.DefaultTakerFeePercent >= 100 {
		errs = append(errs, "arbitrage: default_taker_fee_percent must be in [0, 100)")
	}
	if a.MinTradeAmount <= 0 {
		errs = append(errs, "arbitrage: min_trade_amount must be > 0")
	}
	if a.MaxTradeAmount < a.MinTradeAmount {
		errs = append(errs, "arbitrage: max_trade_amount must not be below min_trade_amount")
	}
	if a.NominalNotional <= 0 {
		errs = append(errs, "arbitrage: nominal_notional must be > 0")
	}
	if !validLegDispatch[strings.ToLower(a.LegDispatch)] {
		errs = append(errs, fmt.Sprintf("arbitrage: unknown leg_dispatch %q (valid: sequential, concurrent)", a.LegDispatch))
	}

	// Market
	if len(c.Market.Symbols) == 0 {
		errs = append(errs, "market: symbols must not be empty")
	}
	for _, s := range c.Market.Symbols {
		if base, quote, ok := strings.Cut(s, "/"); !ok || base == "" || quote == "" {
			errs = append(errs, fmt.Sprintf("market: symbol %q must be in BASE/QUOTE form", s))
		}
	}
	if c.Market.PollInterval.Duration <= 0 {
		errs = append(errs, "market: poll_interval must be > 0")
	}
	if c.Market.StaleAfter.Duration <= 0 {
		errs = append(errs, "market: stale_after must be > 0")
	}
	if c.Market.WarmupCycles < 0 {
		errs = append(errs, "market: warmup_cycles must be >= 0")
	}
	if c.Market.FetchRateLimit < 0 {
		errs = append(errs, "market: fetch_rate_limit must be >= 0")
	}
	if c.Market.MaxConcurrentFetches < 0 {
		errs = append(errs, "market: max_concurrent_fetches must be >= 0")
	}

	// Venues
	seen := make(map[string]bool, len(c.Venues))
	for i, v := range c.Venues {
		id := strings.ToLower(strings.TrimSpace(v.ID))
		if id == "" {
			errs = append(errs, fmt.Sprintf("venues[%d]: id must not be empty", i))
			continue
		}
		if !knownVenues[id] {
			errs = append(errs, fmt.Sprintf("venues[%d]: unsupported venue %q", i, v.ID))
		}
		if seen[id] {
			errs = append(errs, fmt.Sprintf("venues[%d]: duplicate venue %q", i, v.ID))
		}
		seen[id] = true
	}
	for venue, fee := range a.PerVenueFeePercent {
		if fee < 0 || fee >= 100 {
			errs = append(errs, fmt.Sprintf("arbitrage: per_venue_fee_percent[%s] must be in [0, 100)", venue))
		}
		// Load lowercases fee keys to line up with the resolved venue ids.
		if !seen[venue] {
			errs = append(errs, fmt.Sprintf("arbitrage: per_venue_fee_percent[%s] does not match a configured venue", venue))
		}
	}

	// Postgres
	if c.Postgres.Enabled {
		if strings.TrimSpace(c.Postgres.DSN) == "" {
			if c.Postgres.Host == "" {
				errs = append(errs, "postgres: host must not be empty (or set postgres.dsn)")
			}
			if c.Postgres.Port <= 0 || c.Postgres.Port > 65535 {
				errs = append(errs, fmt.Sprintf("postgres: port must be 1-65535, got %d", c.Postgres.Port))
			}
			if c.Postgres.Database == "" {
				errs = append(errs, "postgres: database must not be empty")
			}
		}
		if c.Postgres.PoolMaxConns < 1 {
			errs = append(errs, "postgres: pool_max_conns must be >= 1")
		}
		if c.Postgres.PoolMinConns > c.Postgres.PoolMaxConns {
			errs = append(errs, "postgres: pool_min_conns must not exceed pool_max_conns")
		}
	}

	// Redis
	if c.Redis.Enabled {
		if c.Redis.Addr == "" {
			errs = append(errs, "redis: addr must not be empty")
		}
		if c.Redis.PoolSize < 1 {
			errs = append(errs, "redis: pool_size must be >= 1")
		}
	}

	// Server
	if c.Server.Enabled {
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
