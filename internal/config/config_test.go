package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/venuearb/internal/domain"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `log_level = "debug"`))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 0.2, cfg.Arbitrage.MinProfitPercent)
	assert.Equal(t, 0.1, cfg.Arbitrage.DefaultTakerFeePercent)
	assert.Equal(t, 10.0, cfg.Arbitrage.MinTradeAmount)
	assert.Equal(t, 1000.0, cfg.Arbitrage.MaxTradeAmount)
	assert.Equal(t, 5*time.Second, cfg.Market.PollInterval.Duration)
	assert.Equal(t, 10*time.Second, cfg.Market.StaleAfter.Duration)
	assert.Len(t, cfg.Market.Symbols, 5)
	assert.Equal(t, []string{"binance", "kucoin", "gateio"}, VenueIDs(cfg.Venues))
	require.NoError(t, cfg.Validate())
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
mode = "monitor"

[arbitrage]
min_profit_percent = 0.5
leg_dispatch = "concurrent"
per_venue_fee_percent = { kucoin = 0.08 }

[market]
symbols = ["BTC/USDT"]
poll_interval = "2s"

[[venues]]
id = "kucoin"
enabled = true
api_key = "k"
api_secret = "s"
`))
	require.NoError(t, err)

	assert.Equal(t, "monitor", cfg.Mode)
	assert.Equal(t, 0.5, cfg.Arbitrage.MinProfitPercent)
	assert.Equal(t, "concurrent", cfg.Arbitrage.LegDispatch)
	assert.Equal(t, 0.08, cfg.Arbitrage.PerVenueFeePercent["kucoin"])
	assert.Equal(t, []string{"BTC/USDT"}, cfg.Market.Symbols)
	assert.Equal(t, 2*time.Second, cfg.Market.PollInterval.Duration)
	require.Len(t, cfg.Venues, 1)
	assert.Equal(t, "kucoin", cfg.Venues[0].ID)
	require.NoError(t, cfg.Validate())
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("VENUEARB_ARBITRAGE_MIN_PROFIT_PERCENT", "0.75")
	t.Setenv("VENUEARB_MARKET_SYMBOLS", "BTC/USDT, ETH/USDT")
	t.Setenv("VENUEARB_BINANCE_API_KEY", "bkey")
	t.Setenv("VENUEARB_BINANCE_API_SECRET", "bsecret")
	t.Setenv("VENUEARB_MARKET_STALE_AFTER", "30s")

	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)

	assert.Equal(t, 0.75, cfg.Arbitrage.MinProfitPercent)
	assert.Equal(t, []string{"BTC/USDT", "ETH/USDT"}, cfg.Market.Symbols)
	assert.Equal(t, 30*time.Second, cfg.Market.StaleAfter.Duration)
	assert.Equal(t, "bkey", cfg.Venues[0].APIKey)
	assert.Equal(t, "bsecret", cfg.Venues[0].APISecret)
}

func TestValidateCollectsErrors(t *testing.T) {
	cfg := Defaults()
	cfg.Venues = []VenueConfig{{ID: "binance"}, {ID: "binance"}, {ID: "ftx"}}
	cfg.Mode = "full"
	cfg.Arbitrage.MinTradeAmount = 50
	cfg.Arbitrage.MaxTradeAmount = 20
	cfg.Arbitrage.LegDispatch = "parallel"
	cfg.Market.Symbols = []string{"BTCUSDT"}

	err := cfg.Validate()
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, `unknown mode "full"`)
	assert.Contains(t, msg, "max_trade_amount must not be below min_trade_amount")
	assert.Contains(t, msg, `unknown leg_dispatch "parallel"`)
	assert.Contains(t, msg, `symbol "BTCUSDT" must be in BASE/QUOTE form`)
	assert.Contains(t, msg, `duplicate venue "binance"`)
	assert.Contains(t, msg, `unsupported venue "ftx"`)
}

func TestResolveVenues(t *testing.T) {
	cfg := Defaults()
	cfg.Venues = []VenueConfig{
		{ID: "binance", Enabled: true, APIKey: "k", APISecret: "s"},
		{ID: "kucoin", Enabled: true, APIKey: "k"},
		{ID: "gateio", Enabled: false, APIKey: "k", APISecret: "s"},
	}

	active, skipped, err := cfg.ResolveVenues()
	require.NoError(t, err)
	assert.Equal(t, []string{"binance"}, VenueIDs(active))
	require.Len(t, skipped, 2)
	assert.Equal(t, "kucoin", skipped[0].ID)
	assert.Equal(t, "missing api_key or api_secret", skipped[0].Reason)
	assert.Equal(t, "disabled", skipped[1].Reason)
}

func TestResolveVenuesWithoutCredentialRequirement(t *testing.T) {
	cfg := Defaults()
	cfg.Market.RequireCredentials = false
	cfg.Venues = DefaultVenues()

	active, skipped, err := cfg.ResolveVenues()
	require.NoError(t, err)
	assert.Len(t, active, 3)
	assert.Empty(t, skipped)
}

func TestResolveVenuesNoneUsable(t *testing.T) {
	cfg := Defaults()
	cfg.Venues = DefaultVenues()

	_, skipped, err := cfg.ResolveVenues()
	require.ErrorIs(t, err, domain.ErrNoVenues)
	assert.Len(t, skipped, 3)
}

func TestRedactedConfig(t *testing.T) {
	cfg := Defaults()
	cfg.Venues = []VenueConfig{{ID: "binance", APIKey: "key", APISecret: "secret"}}
	cfg.Redis.Password = "pw"

	out := RedactedConfig(&cfg)
	assert.Equal(t, "***", out.Venues[0].APIKey)
	assert.Equal(t, "***", out.Venues[0].APISecret)
	assert.Equal(t, "", out.Venues[0].APIPassphrase)
	assert.Equal(t, "***", out.Redis.Password)

	// original untouched
	assert.Equal(t, "key", cfg.Venues[0].APIKey)
	assert.Equal(t, "pw", cfg.Redis.Password)
}

func TestPerVenueFeeKeysFollowVenueIDs(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
[arbitrage.per_venue_fee_percent]
Binance = 5.0

[[venues]]
id = "Binance"
enabled = true
api_key = "k"
api_secret = "s"

[[venues]]
id = "kucoin"
enabled = true
api_key = "k"
api_secret = "s"
`))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, map[string]float64{"binance": 5.0}, cfg.Arbitrage.PerVenueFeePercent)
	active, _, err := cfg.ResolveVenues()
	require.NoError(t, err)
	require.Equal(t, []string{"binance", "kucoin"}, VenueIDs(active))
	assert.Equal(t, 5.0, cfg.Arbitrage.PerVenueFeePercent[active[0].ID])
}

func TestValidateRejectsFeeForUnconfiguredVenue(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
[arbitrage.per_venue_fee_percent]
okx = 1.0

[[venues]]
id = "binance"
enabled = true
`))
	require.NoError(t, err)

	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "per_venue_fee_percent[okx] does not match a configured venue")
}
