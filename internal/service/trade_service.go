// Package service holds the side effects around a detection cycle:
// publishing opportunities and journaling simulated trades.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/alanyoungcy/venuearb/internal/domain"
	"github.com/alanyoungcy/venuearb/internal/metrics"
	"github.com/alanyoungcy/venuearb/internal/notify"
)

// Event types carried in domain.Event.Type.
const (
	EventOpportunity = "opportunity"
	EventTrade       = "trade"
)

// TradeService fans opportunities and trade outcomes out to the signal
// bus, the journal, the notifier and metrics. Every dependency is
// optional; a nil one is skipped.
type TradeService struct {
	store    domain.TradeOutcomeStore
	bus      domain.SignalBus
	notifier *notify.Notifier
	metrics  *metrics.Metrics
	now      func() time.Time
	logger   *slog.Logger
}

// NewTradeService creates a TradeService.
func NewTradeService(
	store domain.TradeOutcomeStore,
	bus domain.SignalBus,
	notifier *notify.Notifier,
	m *metrics.Metrics,
	logger *slog.Logger,
) *TradeService {
	return &TradeService{
		store:    store,
		bus:      bus,
		notifier: notifier,
		metrics:  m,
		now:      time.Now,
		logger:   logger.With(slog.String("component", "trade_service")),
	}
}

func (s *TradeService) envelope(typ string, data any) ([]byte, error) {
	return json.Marshal(domain.Event{Type: typ, Timestamp: s.now().UTC(), Data: data})
}

// PublishOpportunity announces a detected opportunity. Opportunities are
// ephemeral: they are published and counted, never journaled.
func (s *TradeService) PublishOpportunity(ctx context.Context, opp domain.Opportunity) {
	s.metrics.ObserveOpportunity(opp)

	if s.bus != nil {
		payload, err := s.envelope(EventOpportunity, opp)
		if err == nil {
			err = s.bus.Publish(ctx, domain.ChannelOpportunities, payload)
		}
		if err != nil {
			s.logger.WarnContext(ctx, "publish opportunity failed",
				slog.String("symbol", opp.Symbol),
				slog.String("error", err.Error()),
			)
		}
	}

	if err := s.notifier.NotifyOpportunity(ctx, opp); err != nil {
		s.logger.WarnContext(ctx, "notify opportunity failed", slog.String("error", err.Error()))
	}
}

// RecordOutcome journals a finished trade and announces it. Journal and
// bus failures are logged and do not fail the trade. A store failure is
// also returned so the pipeline can count it as a journal failure.
func (s *TradeService) RecordOutcome(ctx context.Context, out domain.TradeOutcome) error {
	s.metrics.ObserveTrade(out)

	var storeErr error
	if s.store != nil {
		if err := s.store.Create(ctx, out); err != nil {
			storeErr = fmt.Errorf("trade_service: journal %s: %w", out.ID, err)
			s.logger.ErrorContext(ctx, "journal trade outcome failed",
				slog.String("trade_id", out.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	if s.bus != nil {
		payload, err := s.envelope(EventTrade, out)
		if err == nil {
			if pubErr := s.bus.Publish(ctx, domain.ChannelTrades, payload); pubErr != nil {
				s.logger.WarnContext(ctx, "publish trade failed",
					slog.String("trade_id", out.ID),
					slog.String("error", pubErr.Error()),
				)
			}
			err = s.bus.StreamAppend(ctx, domain.StreamTradeJournal, payload)
		}
		if err != nil {
			s.logger.WarnContext(ctx, "append trade journal stream failed",
				slog.String("trade_id", out.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	if err := s.notifier.NotifyOutcome(ctx, out); err != nil {
		s.logger.WarnContext(ctx, "notify trade outcome failed", slog.String("error", err.Error()))
	}
	return storeErr
}

// ListRecent returns the latest journaled outcomes, newest first.
func (s *TradeService) ListRecent(ctx context.Context, limit int) ([]domain.TradeOutcome, error) {
	if s.store == nil {
		return nil, domain.ErrJournalDisabled
	}
	list, err := s.store.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("trade_service: list recent: %w", err)
	}
	return list, nil
}

// Get returns one journaled outcome.
func (s *TradeService) Get(ctx context.Context, id string) (domain.TradeOutcome, error) {
	if s.store == nil {
		return domain.TradeOutcome{}, domain.ErrJournalDisabled
	}
	out, err := s.store.GetByID(ctx, id)
	if err != nil {
		return domain.TradeOutcome{}, fmt.Errorf("trade_service: get %s: %w", id, err)
	}
	return out, nil
}
