package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies VENUEARB_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}
	if len(cfg.Venues) == 0 {
		cfg.Venues = DefaultVenues()
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)
	normalizeFeeKeys(&cfg)

	return &cfg, nil
}

// normalizeFeeKeys lowercases per-venue fee keys so they match the venue ids
// produced by ResolveVenues.
func normalizeFeeKeys(cfg *Config) {
	if len(cfg.Arbitrage.PerVenueFeePercent) == 0 {
		return
	}
	fees := make(map[string]float64, len(cfg.Arbitrage.PerVenueFeePercent))
	for venue, fee := range cfg.Arbitrage.PerVenueFeePercent {
		fees[strings.ToLower(strings.TrimSpace(venue))] = fee
	}
	cfg.Arbitrage.PerVenueFeePercent = fees
}

// applyEnvOverrides reads well-known VENUEARB_* environment variables and
// overwrites the corresponding Config fields when a variable is set (i.e. not
// empty). Venue credentials are keyed by venue id, for example
// VENUEARB_BINANCE_API_KEY.
func applyEnvOverrides(cfg *Config) {
	// ── Arbitrage ──
	setFloat64(&cfg.Arbitrage.MinProfitPercent, "VENUEARB_ARBITRAGE_MIN_PROFIT_PERCENT")
	setFloat64(&cfg.Arbitrage.DefaultTakerFeePercent, "VENUEARB_ARBITRAGE_DEFAULT_TAKER_FEE_PERCENT")
	setFloat64(&cfg.Arbitrage.MinTradeAmount, "VENUEARB_ARBITRAGE_MIN_TRADE_AMOUNT")
	setFloat64(&cfg.Arbitrage.MaxTradeAmount, "VENUEARB_ARBITRAGE_MAX_TRADE_AMOUNT")
	setFloat64(&cfg.Arbitrage.NominalNotional, "VENUEARB_ARBITRAGE_NOMINAL_NOTIONAL")
	setStr(&cfg.Arbitrage.LegDispatch, "VENUEARB_ARBITRAGE_LEG_DISPATCH")
	setDuration(&cfg.Arbitrage.LockTTL, "VENUEARB_ARBITRAGE_LOCK_TTL")

	// ── Market ──
	setStringSlice(&cfg.Market.Symbols, "VENUEARB_MARKET_SYMBOLS")
	setDuration(&cfg.Market.PollInterval, "VENUEARB_MARKET_POLL_INTERVAL")
	setDuration(&cfg.Market.StaleAfter, "VENUEARB_MARKET_STALE_AFTER")
	setInt(&cfg.Market.WarmupCycles, "VENUEARB_MARKET_WARMUP_CYCLES")
	setBool(&cfg.Market.RequireCredentials, "VENUEARB_MARKET_REQUIRE_CREDENTIALS")
	setInt(&cfg.Market.FetchRateLimit, "VENUEARB_MARKET_FETCH_RATE_LIMIT")
	setInt(&cfg.Market.MaxConcurrentFetches, "VENUEARB_MARKET_MAX_CONCURRENT_FETCHES")

	// ── Venues ──
	for i := range cfg.Venues {
		v := &cfg.Venues[i]
		prefix := "VENUEARB_" + strings.ToUpper(v.ID) + "_"
		setStr(&v.APIKey, prefix+"API_KEY")
		setStr(&v.APISecret, prefix+"API_SECRET")
		setStr(&v.APIPassphrase, prefix+"API_PASSPHRASE")
		setStr(&v.BaseURL, prefix+"BASE_URL")
		setBool(&v.Enabled, prefix+"ENABLED")
	}

	// ── Postgres ──
	setBool(&cfg.Postgres.Enabled, "VENUEARB_POSTGRES_ENABLED")
	setStr(&cfg.Postgres.DSN, "VENUEARB_POSTGRES_DSN")
	setStr(&cfg.Postgres.DSN, "DATABASE_URL") // compatibility alias
	setStr(&cfg.Postgres.Host, "VENUEARB_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "VENUEARB_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "VENUEARB_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "VENUEARB_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "VENUEARB_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "VENUEARB_POSTGRES_SSL_MODE")
	setInt(&cfg.Postgres.PoolMaxConns, "VENUEARB_POSTGRES_POOL_MAX_CONNS")
	setInt(&cfg.Postgres.PoolMinConns, "VENUEARB_POSTGRES_POOL_MIN_CONNS")
	setBool(&cfg.Postgres.RunMigrations, "VENUEARB_POSTGRES_RUN_MIGRATIONS")

	// ── Redis ──
	setBool(&cfg.Redis.Enabled, "VENUEARB_REDIS_ENABLED")
	setStr(&cfg.Redis.Addr, "VENUEARB_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "VENUEARB_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "VENUEARB_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "VENUEARB_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "VENUEARB_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "VENUEARB_REDIS_TLS_ENABLED")

	// ── Server ──
	setBool(&cfg.Server.Enabled, "VENUEARB_SERVER_ENABLED")
	setInt(&cfg.Server.Port, "VENUEARB_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "VENUEARB_SERVER_CORS_ORIGINS")
	setStr(&cfg.Server.APIKey, "VENUEARB_SERVER_API_KEY")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "VENUEARB_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "VENUEARB_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "VENUEARB_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "VENUEARB_NOTIFY_EVENTS")

	// ── Top-level ──
	setStr(&cfg.Mode, "VENUEARB_MODE")
	setStr(&cfg.LogLevel, "VENUEARB_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
