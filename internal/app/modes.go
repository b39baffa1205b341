package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/alanyoungcy/venuearb/internal/arbitrage"
	"github.com/alanyoungcy/venuearb/internal/domain"
	"github.com/alanyoungcy/venuearb/internal/executor"
	"github.com/alanyoungcy/venuearb/internal/market"
	"github.com/alanyoungcy/venuearb/internal/pipeline"
	"github.com/alanyoungcy/venuearb/internal/server"
	"github.com/alanyoungcy/venuearb/internal/server/handler"
	"github.com/alanyoungcy/venuearb/internal/server/ws"
	"github.com/alanyoungcy/venuearb/internal/service"
)

// apiRequestsPerMinute caps each client of the status API when Redis is on.
const apiRequestsPerMinute = 120

// TradeMode refreshes, detects and simulates every best opportunity.
func (a *App) TradeMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting trade mode",
		slog.String("leg_dispatch", a.cfg.Arbitrage.LegDispatch),
	)
	return a.runPipeline(ctx, deps, true)
}

// MonitorMode refreshes and detects but never places simulated orders.
func (a *App) MonitorMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting monitor mode")
	return a.runPipeline(ctx, deps, false)
}

func (a *App) runPipeline(ctx context.Context, deps *Dependencies, trade bool) error {
	trades := service.NewTradeService(deps.TradeStore, deps.SignalBus, deps.Notifier, deps.Metrics, a.logger)
	engine, err := a.buildEngine(deps, trades, trade)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return engine.Run(ctx)
	})
	if a.cfg.Server.Enabled {
		a.startHTTPServer(ctx, g, deps, engine, trades)
	}
	return g.Wait()
}

func (a *App) buildEngine(deps *Dependencies, trades *service.TradeService, trade bool) (*pipeline.Engine, error) {
	storeOpts := []market.Option{
		market.WithMetrics(deps.Metrics),
		market.WithMaxConcurrency(a.cfg.Market.MaxConcurrentFetches),
	}
	if deps.QuoteCache != nil {
		storeOpts = append(storeOpts, market.WithMirror(deps.QuoteCache))
	}
	store := market.NewStore(deps.Adapter, deps.Adapter.VenueIDs(), a.cfg.Market.Symbols, a.logger, storeOpts...)

	detector := arbitrage.NewDetector(arbitrage.DetectorConfig{
		MinProfitPercent: a.cfg.Arbitrage.MinProfitPercent,
		Fees: arbitrage.FeeSchedule{
			DefaultTakerPercent: a.cfg.Arbitrage.DefaultTakerFeePercent,
			PerVenue:            a.cfg.Arbitrage.PerVenueFeePercent,
		},
		Logger: a.logger,
	})

	cfg := pipeline.EngineConfig{
		Store:        store,
		Detector:     detector,
		Trades:       trades,
		Locks:        deps.LockManager,
		LockTTL:      a.cfg.Arbitrage.LockTTL.Duration,
		PollInterval: a.cfg.Market.PollInterval.Duration,
		StaleAfter:   a.cfg.Market.StaleAfter.Duration,
		WarmupCycles: a.cfg.Market.WarmupCycles,
		Metrics:      deps.Metrics,
		Logger:       a.logger,
	}
	if trade {
		dispatcher, err := executor.NewDispatcher(a.cfg.Arbitrage.LegDispatch)
		if err != nil {
			return nil, fmt.Errorf("app: %w", err)
		}
		cfg.Simulator = executor.NewSimulator(deps.Adapter, executor.Config{
			MinTradeAmount:  a.cfg.Arbitrage.MinTradeAmount,
			MaxTradeAmount:  a.cfg.Arbitrage.MaxTradeAmount,
			NominalNotional: a.cfg.Arbitrage.NominalNotional,
		}, dispatcher, a.logger)
	}
	return pipeline.NewEngine(cfg), nil
}

func (a *App) startHTTPServer(ctx context.Context, g *errgroup.Group, deps *Dependencies, engine *pipeline.Engine, trades *service.TradeService) {
	startedAt := time.Now().UTC()
	venues := deps.Adapter.VenueIDs()
	status := handler.NewStatusHandler(engine, venues, a.cfg.Market.Symbols, startedAt)

	handlers := server.Handlers{
		Health:  handler.NewHealthHandler(deps.Health, a.logger),
		Status:  status,
		Market:  handler.NewMarketHandler(engine),
		Trades:  handler.NewTradesHandler(trades, a.logger),
		Metrics: deps.Metrics.Handler(),
		Limiter: deps.RateLimiter,
	}
	if deps.SignalBus != nil {
		hub := ws.NewHub(deps.SignalBus, func() domain.BotStatus {
			return domain.BotStatus{
				Mode:          engine.Mode(),
				Venues:        venues,
				Symbols:       a.cfg.Market.Symbols,
				Cycles:        engine.Cycles(),
				LastCycleAt:   engine.LastCycleAt(),
				UptimeSeconds: int64(time.Since(startedAt).Seconds()),
			}
		}, a.logger)
		handlers.Hub = hub
		g.Go(func() error {
			return hub.Run(ctx)
		})
	}

	srv := server.NewServer(server.Config{
		Port:              a.cfg.Server.Port,
		CORSOrigins:       a.cfg.Server.CORSOrigins,
		APIKey:            a.cfg.Server.APIKey,
		RequestsPerMinute: apiRequestsPerMinute,
	}, handlers, a.logger)

	g.Go(srv.Start)
	g.Go(func() error {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	})
}
