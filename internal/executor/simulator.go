// Package executor turns a detected opportunity into a sized two-leg
// simulated trade and reports its outcome.
package executor

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/alanyoungcy/venuearb/internal/domain"
)

// Config holds trade sizing bounds.
type Config struct {
	MinTradeAmount  float64
	MaxTradeAmount  float64
	NominalNotional float64
}

// Simulator sizes and dispatches simulated trades through an exchange
// adapter.
type Simulator struct {
	adapter    domain.ExchangeAdapter
	cfg        Config
	dispatcher LegDispatcher
	logger     *slog.Logger
	now        func() time.Time
}

// NewSimulator creates a Simulator. A nil dispatcher selects Sequential.
func NewSimulator(adapter domain.ExchangeAdapter, cfg Config, dispatcher LegDispatcher, logger *slog.Logger) *Simulator {
	if dispatcher == nil {
		dispatcher = Sequential{}
	}
	return &Simulator{
		adapter:    adapter,
		cfg:        cfg,
		dispatcher: dispatcher,
		logger:     logger.With(slog.String("component", "trade_simulator")),
		now:        time.Now,
	}
}

// Size clamps the nominal notional into [MinTradeAmount, MaxTradeAmount] and
// converts it to a base quantity at the opportunity's buy price.
func (s *Simulator) Size(opp domain.Opportunity) (notional, baseQuantity float64, err error) {
	if opp.BuyPrice <= 0 || math.IsNaN(opp.BuyPrice) || math.IsInf(opp.BuyPrice, 0) {
		return 0, 0, fmt.Errorf("executor: size %s: buy price %v: %w", opp.Symbol, opp.BuyPrice, domain.ErrInvalidOpportunity)
	}
	notional = math.Min(s.cfg.MaxTradeAmount, math.Max(s.cfg.MinTradeAmount, s.cfg.NominalNotional))
	return notional, notional / opp.BuyPrice, nil
}

// Execute issues the buy leg on the opportunity's buy venue and the sell leg
// on its sell venue, for the same base quantity, and classifies the result.
func (s *Simulator) Execute(ctx context.Context, opp domain.Opportunity) domain.TradeOutcome {
	outcome := domain.TradeOutcome{
		ID:          uuid.NewString(),
		Opportunity: opp,
		StartedAt:   s.now(),
	}

	notional, qty, err := s.Size(opp)
	if err != nil {
		outcome.Status = domain.TradeStatusFailed
		outcome.BuyLeg = domain.LegResult{Side: domain.OrderSideBuy, VenueID: opp.BuyVenue, Symbol: opp.Symbol, Err: err.Error()}
		outcome.SellLeg = domain.LegResult{Side: domain.OrderSideSell, VenueID: opp.SellVenue, Symbol: opp.Symbol, Err: err.Error()}
		outcome.CompletedAt = s.now()
		s.logger.Error("trade sizing failed", slog.String("trade_id", outcome.ID), slog.String("error", err.Error()))
		return outcome
	}
	outcome.Notional = notional
	outcome.BaseQuantity = qty

	s.logger.Info("executing trade",
		slog.String("trade_id", outcome.ID),
		slog.String("symbol", opp.Symbol),
		slog.String("buy_venue", opp.BuyVenue),
		slog.String("sell_venue", opp.SellVenue),
		slog.Float64("notional", notional),
		slog.Float64("quantity", qty),
		slog.String("dispatch", string(s.dispatcher.Policy())),
	)

	buy := func(ctx context.Context) domain.LegResult {
		return s.placeLeg(ctx, domain.OrderSideBuy, opp.BuyVenue, opp.Symbol, qty)
	}
	sell := func(ctx context.Context) domain.LegResult {
		return s.placeLeg(ctx, domain.OrderSideSell, opp.SellVenue, opp.Symbol, qty)
	}
	outcome.BuyLeg, outcome.SellLeg = s.dispatcher.Dispatch(ctx, buy, sell)
	outcome.CompletedAt = s.now()

	buyOK, sellOK := outcome.BuyLeg.Succeeded(), outcome.SellLeg.Succeeded()
	switch {
	case buyOK && sellOK:
		outcome.Status = domain.TradeStatusCompleted
		outcome.EstimatedProfit = notional * opp.NetProfitPercent / 100
		s.logger.Info("trade completed",
			slog.String("trade_id", outcome.ID),
			slog.String("symbol", opp.Symbol),
			slog.Float64("estimated_profit", outcome.EstimatedProfit),
		)
	case !buyOK && !sellOK:
		outcome.Status = domain.TradeStatusFailed
		s.logger.Error("trade failed",
			slog.String("trade_id", outcome.ID),
			slog.String("symbol", opp.Symbol),
			slog.String("buy_error", outcome.BuyLeg.Err),
			slog.String("sell_error", outcome.SellLeg.Err),
		)
	default:
		outcome.Status = domain.TradeStatusLegImbalance
		s.logger.Error("leg imbalance: one leg filled, position left unhedged",
			slog.Bool("critical", true),
			slog.String("trade_id", outcome.ID),
			slog.String("symbol", opp.Symbol),
			slog.String("filled_side", string(outcome.FilledSide())),
			slog.Float64("quantity", qty),
			slog.String("buy_error", outcome.BuyLeg.Err),
			slog.String("sell_error", outcome.SellLeg.Err),
		)
	}
	return outcome
}

func (s *Simulator) placeLeg(ctx context.Context, side domain.OrderSide, venue, symbol string, qty float64) (leg domain.LegResult) {
	leg = domain.LegResult{Side: side, VenueID: venue, Symbol: symbol, Quantity: qty}
	defer func() {
		if r := recover(); r != nil {
			leg.Order = nil
			leg.Err = fmt.Sprintf("panic: %v", r)
		}
	}()

	var (
		res domain.OrderResult
		err error
	)
	if side == domain.OrderSideBuy {
		res, err = s.adapter.PlaceSimulatedBuy(ctx, venue, symbol, qty)
	} else {
		res, err = s.adapter.PlaceSimulatedSell(ctx, venue, symbol, qty)
	}
	if err != nil {
		leg.Err = err.Error()
		s.logger.Warn("order leg failed",
			slog.String("side", string(side)),
			slog.String("venue", venue),
			slog.String("symbol", symbol),
			slog.String("error", err.Error()),
		)
		return leg
	}
	leg.Order = &res
	return leg
}
