// Package pipeline drives the refresh, detect and simulate loop.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alanyoungcy/venuearb/internal/arbitrage"
	"github.com/alanyoungcy/venuearb/internal/domain"
	"github.com/alanyoungcy/venuearb/internal/executor"
	"github.com/alanyoungcy/venuearb/internal/market"
	"github.com/alanyoungcy/venuearb/internal/metrics"
	"github.com/alanyoungcy/venuearb/internal/service"
)

// EngineConfig wires an Engine. Simulator nil means monitor mode: detect
// and report, never execute. Locks nil disables the per-symbol trade lock.
type EngineConfig struct {
	Store        *market.Store
	Detector     *arbitrage.Detector
	Simulator    *executor.Simulator
	Trades       *service.TradeService
	Locks        domain.LockManager
	LockTTL      time.Duration
	PollInterval time.Duration
	StaleAfter   time.Duration
	WarmupCycles int
	Metrics      *metrics.Metrics
	Logger       *slog.Logger
}

// CycleResult summarizes one iteration.
type CycleResult struct {
	Refresh     market.RefreshStats
	Stale       int
	Opportunity *domain.Opportunity
	Outcome     *domain.TradeOutcome
}

// Engine runs the pipeline loop. Status accessors are safe to call from
// other goroutines.
type Engine struct {
	cfg    EngineConfig
	logger *slog.Logger

	cycles    atomic.Int64
	lastCycle atomic.Pointer[time.Time]

	mu      sync.RWMutex
	lastOpp *domain.Opportunity
}

// NewEngine creates an Engine.
func NewEngine(cfg EngineConfig) *Engine {
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 30 * time.Second
	}
	return &Engine{
		cfg:    cfg,
		logger: cfg.Logger.With(slog.String("component", "pipeline")),
	}
}

// Mode reports "trade" when a simulator is wired, otherwise "monitor".
func (e *Engine) Mode() string {
	if e.cfg.Simulator == nil {
		return "monitor"
	}
	return "trade"
}

// Cycles returns the number of completed detection iterations.
func (e *Engine) Cycles() int64 { return e.cycles.Load() }

// LastCycleAt returns when the last iteration finished.
func (e *Engine) LastCycleAt() time.Time {
	if t := e.lastCycle.Load(); t != nil {
		return *t
	}
	return time.Time{}
}

// LastOpportunity returns the most recent opportunity the detector found.
func (e *Engine) LastOpportunity() (domain.Opportunity, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.lastOpp == nil {
		return domain.Opportunity{}, false
	}
	return *e.lastOpp, true
}

// Snapshot exposes the store's current snapshot.
func (e *Engine) Snapshot() *market.Snapshot { return e.cfg.Store.Snapshot() }

// Warmup runs WarmupCycles refresh cycles, one poll interval apart, so the
// first detection sees data from every venue that answered.
func (e *Engine) Warmup(ctx context.Context) error {
	for i := 0; i < e.cfg.WarmupCycles; i++ {
		stats := e.cfg.Store.RefreshCycle(ctx)
		e.logger.InfoContext(ctx, "warm-up refresh",
			slog.Int("cycle", i+1),
			slog.Int("succeeded", stats.Succeeded),
			slog.Int("failed", stats.Failed),
		)
		if err := sleep(ctx, e.cfg.PollInterval); err != nil {
			return err
		}
	}
	return nil
}

// Run warms up and then loops until ctx is cancelled. A failed or
// panicking iteration is logged and the loop continues.
func (e *Engine) Run(ctx context.Context) error {
	e.logger.InfoContext(ctx, "pipeline starting",
		slog.String("mode", e.Mode()),
		slog.Any("venues", e.cfg.Store.Venues()),
		slog.Any("symbols", e.cfg.Store.Symbols()),
		slog.Duration("poll_interval", e.cfg.PollInterval),
	)
	if err := e.Warmup(ctx); err != nil {
		return nil
	}

	for {
		if _, err := e.safeCycle(ctx); err != nil && ctx.Err() == nil {
			e.cfg.Metrics.IterationFailed()
			e.logger.ErrorContext(ctx, "pipeline iteration failed", slog.String("error", err.Error()))
		}
		if err := sleep(ctx, e.cfg.PollInterval); err != nil {
			e.logger.Info("pipeline stopped")
			return nil
		}
	}
}

func (e *Engine) safeCycle(ctx context.Context) (res CycleResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pipeline: panic: %v", r)
		}
	}()
	return e.RunCycle(ctx)
}

// RunCycle performs one iteration: refresh every pair, audit staleness,
// detect the best opportunity and, in trade mode, simulate it.
func (e *Engine) RunCycle(ctx context.Context) (CycleResult, error) {
	var res CycleResult
	defer func() {
		e.cycles.Add(1)
		now := time.Now()
		e.lastCycle.Store(&now)
	}()

	res.Refresh = e.cfg.Store.RefreshCycle(ctx)
	if e.cfg.StaleAfter > 0 {
		res.Stale = e.cfg.Store.StaleCount(e.cfg.StaleAfter)
	}

	snap := e.cfg.Store.Snapshot()
	if snap.Len() == 0 {
		e.logger.WarnContext(ctx, "no market data available yet")
		return res, nil
	}

	opp, ok := e.cfg.Detector.FindBest(snap)
	if !ok {
		e.logger.InfoContext(ctx, "no arbitrage opportunity this cycle",
			slog.Int("quotes", snap.Len()),
		)
		return res, nil
	}
	res.Opportunity = &opp
	e.mu.Lock()
	e.lastOpp = &opp
	e.mu.Unlock()

	if e.cfg.Trades != nil {
		e.cfg.Trades.PublishOpportunity(ctx, opp)
	}
	if e.cfg.Simulator == nil {
		return res, nil
	}

	out, err := e.execute(ctx, opp)
	if err != nil {
		if errors.Is(err, domain.ErrLockHeld) {
			e.logger.WarnContext(ctx, "trade skipped, symbol locked by another instance",
				slog.String("symbol", opp.Symbol),
			)
			return res, nil
		}
		return res, err
	}
	res.Outcome = &out
	return res, nil
}

func (e *Engine) execute(ctx context.Context, opp domain.Opportunity) (domain.TradeOutcome, error) {
	if e.cfg.Locks != nil {
		unlock, err := e.cfg.Locks.Acquire(ctx, "trade:"+opp.Symbol, e.cfg.LockTTL)
		if err != nil {
			return domain.TradeOutcome{}, err
		}
		defer unlock()
	}

	out := e.cfg.Simulator.Execute(ctx, opp)
	if e.cfg.Trades != nil {
		// A journal failure is counted but does not fail the cycle.
		if err := e.cfg.Trades.RecordOutcome(ctx, out); err != nil {
			e.cfg.Metrics.JournalFailed()
		}
	}
	return out, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
