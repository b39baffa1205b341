// Package app wires the arbitrage bot together and runs the configured
// mode until the context is cancelled.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/alanyoungcy/venuearb/internal/config"
)

// App owns the configuration, the resolved venue set and cleanup funcs.
type App struct {
	cfg     *config.Config
	venues  []config.VenueConfig
	logger  *slog.Logger
	closers []func()
}

// New creates an App for the venues resolved from cfg.
func New(cfg *config.Config, venues []config.VenueConfig, logger *slog.Logger) *App {
	return &App{
		cfg:    cfg,
		venues: venues,
		logger: logger.With(slog.String("component", "app")),
	}
}

// Run wires dependencies and blocks in the selected mode.
func (a *App) Run(ctx context.Context) error {
	a.logger.InfoContext(ctx, "starting application",
		slog.String("mode", a.cfg.Mode),
		slog.Any("venues", config.VenueIDs(a.venues)),
		slog.Any("symbols", a.cfg.Market.Symbols),
	)

	deps, cleanup, err := Wire(ctx, a.cfg, a.venues, a.logger)
	if err != nil {
		return fmt.Errorf("app: wire dependencies: %w", err)
	}
	a.closers = append(a.closers, cleanup)

	switch strings.ToLower(a.cfg.Mode) {
	case "trade":
		return a.TradeMode(ctx, deps)
	case "monitor":
		return a.MonitorMode(ctx, deps)
	default:
		return fmt.Errorf("app: unsupported mode %q", a.cfg.Mode)
	}
}

// Close runs cleanup funcs in reverse order. Safe to call twice.
func (a *App) Close() {
	a.logger.Info("shutting down application")
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
