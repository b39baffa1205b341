package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alanyoungcy/venuearb/internal/cache/redis"
	"github.com/alanyoungcy/venuearb/internal/config"
	"github.com/alanyoungcy/venuearb/internal/domain"
	"github.com/alanyoungcy/venuearb/internal/exchange"
	"github.com/alanyoungcy/venuearb/internal/exchange/binance"
	"github.com/alanyoungcy/venuearb/internal/exchange/gateio"
	"github.com/alanyoungcy/venuearb/internal/exchange/kucoin"
	"github.com/alanyoungcy/venuearb/internal/metrics"
	"github.com/alanyoungcy/venuearb/internal/notify"
	"github.com/alanyoungcy/venuearb/internal/server/handler"
	"github.com/alanyoungcy/venuearb/internal/store/postgres"
)

// quoteCacheTTL bounds how long a mirrored quote outlives its last refresh.
const quoteCacheTTL = 5 * time.Minute

// Dependencies bundles everything the modes need. Optional backing
// services are left nil when disabled.
type Dependencies struct {
	Adapter *exchange.Manager
	Metrics *metrics.Metrics

	// Redis, when enabled.
	QuoteCache  domain.QuoteCache
	RateLimiter domain.RateLimiter
	LockManager domain.LockManager
	SignalBus   domain.SignalBus

	// Postgres, when enabled.
	TradeStore domain.TradeOutcomeStore

	Notifier *notify.Notifier
	Health   map[string]handler.Pinger
}

// buildVenue maps a resolved venue entry to its client.
func buildVenue(vc config.VenueConfig) (exchange.Venue, error) {
	switch vc.ID {
	case binance.VenueID:
		return binance.New(binance.Config{
			APIKey: vc.APIKey, APISecret: vc.APISecret,
			BaseURL: vc.BaseURL, Timeout: vc.Timeout.Duration,
		}), nil
	case kucoin.VenueID:
		return kucoin.New(kucoin.Config{
			APIKey: vc.APIKey, APISecret: vc.APISecret, APIPassphrase: vc.APIPassphrase,
			BaseURL: vc.BaseURL, Timeout: vc.Timeout.Duration,
		}), nil
	case gateio.VenueID:
		return gateio.New(gateio.Config{
			APIKey: vc.APIKey, APISecret: vc.APISecret,
			BaseURL: vc.BaseURL, Timeout: vc.Timeout.Duration,
		}), nil
	default:
		return nil, fmt.Errorf("wire: venue %q: %w", vc.ID, domain.ErrUnknownVenue)
	}
}

// Wire constructs the dependencies for venues and returns a cleanup func
// that releases them in reverse order.
func Wire(ctx context.Context, cfg *config.Config, venues []config.VenueConfig, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	fail := func(err error) (*Dependencies, func(), error) {
		cleanup()
		return nil, nil, err
	}

	deps := &Dependencies{
		Metrics: metrics.New(),
		Health:  map[string]handler.Pinger{},
	}

	if cfg.Redis.Enabled {
		rc, err := redis.New(ctx, redis.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			MaxRetries: cfg.Redis.MaxRetries,
			TLSEnabled: cfg.Redis.TLSEnabled,
		})
		if err != nil {
			return fail(fmt.Errorf("wire: redis: %w", err))
		}
		closers = append(closers, func() { _ = rc.Close() })

		deps.QuoteCache = redis.NewQuoteCache(rc, quoteCacheTTL)
		deps.RateLimiter = redis.NewRateLimiter(rc)
		deps.LockManager = redis.NewLockManager(rc)
		deps.SignalBus = redis.NewSignalBus(rc)
		deps.Health["redis"] = rc
	}

	if cfg.Postgres.Enabled {
		pc, err := postgres.New(ctx, postgres.ClientConfig{
			DSN:      cfg.Postgres.DSN,
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			Database: cfg.Postgres.Database,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			SSLMode:  cfg.Postgres.SSLMode,
			MaxConns: cfg.Postgres.PoolMaxConns,
			MinConns: cfg.Postgres.PoolMinConns,
		})
		if err != nil {
			return fail(fmt.Errorf("wire: postgres: %w", err))
		}
		closers = append(closers, pc.Close)

		if cfg.Postgres.RunMigrations {
			if err := pc.RunMigrations(ctx); err != nil {
				return fail(fmt.Errorf("wire: postgres migrations: %w", err))
			}
		}
		deps.TradeStore = postgres.NewTradeOutcomeStore(pc.Pool())
		deps.Health["postgres"] = pc
	}

	clients := make([]exchange.Venue, 0, len(venues))
	for _, vc := range venues {
		v, err := buildVenue(vc)
		if err != nil {
			return fail(err)
		}
		logger.Info("venue initialized",
			slog.String("venue", vc.ID),
			slog.Bool("credentials", vc.HasCredentials()),
		)
		clients = append(clients, v)
	}
	var managerOpts []exchange.ManagerOption
	if deps.RateLimiter != nil {
		managerOpts = append(managerOpts, exchange.WithRateLimiter(deps.RateLimiter, cfg.Market.FetchRateLimit))
	}
	adapter, err := exchange.NewManager(clients, logger, managerOpts...)
	if err != nil {
		return fail(fmt.Errorf("wire: exchange manager: %w", err))
	}
	deps.Adapter = adapter

	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(cfg.Notify.TelegramToken, cfg.Notify.TelegramChatID, ""))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	deps.Notifier = notify.NewNotifier(senders, cfg.Notify.Events, logger)

	return deps, cleanup, nil
}
