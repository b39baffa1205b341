// Package notify fans trade alerts out to chat webhooks. Alerts are
// filtered by event type so operators only hear about what they asked for.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/alanyoungcy/venuearb/internal/domain"
)

// Event types an operator can subscribe to.
const (
	EventOpportunityFound = "opportunity_found"
	EventTradeCompleted   = "trade_completed"
	EventTradeFailed      = "trade_failed"
	EventLegImbalance     = "leg_imbalance"
)

// Sender is one notification channel.
type Sender interface {
	Send(ctx context.Context, title, message string) error
	Name() string
}

// Notifier dispatches alerts to every registered Sender. A nil *Notifier
// drops everything.
type Notifier struct {
	senders []Sender
	events  map[string]bool
	logger  *slog.Logger
}

// NewNotifier creates a Notifier. An empty events list allows every event.
func NewNotifier(senders []Sender, events []string, logger *slog.Logger) *Notifier {
	allowed := make(map[string]bool, len(events))
	for _, e := range events {
		if e = strings.TrimSpace(e); e != "" {
			allowed[e] = true
		}
	}
	return &Notifier{
		senders: senders,
		events:  allowed,
		logger:  logger.With(slog.String("component", "notifier")),
	}
}

// Enabled reports whether the event would be forwarded to at least one sender.
func (n *Notifier) Enabled(event string) bool {
	if n == nil || len(n.senders) == 0 {
		return false
	}
	return len(n.events) == 0 || n.events[event]
}

// Notify sends title and message for the event if it passes the filter.
func (n *Notifier) Notify(ctx context.Context, event, title, message string) error {
	if !n.Enabled(event) {
		return nil
	}

	var errs []error
	for _, s := range n.senders {
		if err := s.Send(ctx, title, message); err != nil {
			n.logger.ErrorContext(ctx, "sender failed",
				slog.String("sender", s.Name()),
				slog.String("event", event),
				slog.String("error", err.Error()),
			)
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("notify: %d sender(s) failed: %w", len(errs), errors.Join(errs...))
	}
	return nil
}

// NotifyOpportunity announces a detected opportunity.
func (n *Notifier) NotifyOpportunity(ctx context.Context, opp domain.Opportunity) error {
	msg := fmt.Sprintf("%s: buy %s @ %.8g, sell %s @ %.8g, net %.4f%%",
		opp.Symbol, opp.BuyVenue, opp.BuyPrice, opp.SellVenue, opp.SellPrice, opp.NetProfitPercent)
	return n.Notify(ctx, EventOpportunityFound, "Arbitrage opportunity", msg)
}

// NotifyOutcome announces a finished simulated trade under the event
// matching its status.
func (n *Notifier) NotifyOutcome(ctx context.Context, out domain.TradeOutcome) error {
	event, title := outcomeEvent(out.Status)
	opp := out.Opportunity

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s -> %s, qty %.8g (notional %.2f)\n",
		opp.Symbol, opp.BuyVenue, opp.SellVenue, out.BaseQuantity, out.Notional)
	switch out.Status {
	case domain.TradeStatusCompleted:
		fmt.Fprintf(&b, "estimated profit %.4f (%.4f%%)", out.EstimatedProfit, opp.NetProfitPercent)
	case domain.TradeStatusLegImbalance:
		fmt.Fprintf(&b, "only the %s leg filled; open exposure needs manual attention", out.FilledSide())
	default:
		fmt.Fprintf(&b, "buy: %s\nsell: %s", legSummary(out.BuyLeg), legSummary(out.SellLeg))
	}
	return n.Notify(ctx, event, title, b.String())
}

func outcomeEvent(s domain.TradeStatus) (event, title string) {
	switch s {
	case domain.TradeStatusCompleted:
		return EventTradeCompleted, "Trade completed"
	case domain.TradeStatusLegImbalance:
		return EventLegImbalance, "LEG IMBALANCE"
	default:
		return EventTradeFailed, "Trade failed"
	}
}

func legSummary(l domain.LegResult) string {
	if l.Succeeded() {
		return "filled " + l.Order.OrderID
	}
	if l.Err == "" {
		return "not issued"
	}
	return l.Err
}
