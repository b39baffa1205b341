package exchange

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/alanyoungcy/venuearb/internal/domain"
)

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithRateLimiter throttles quote and balance requests to perSecond per venue
// through a shared limiter. perSecond <= 0 disables throttling.
func WithRateLimiter(l domain.RateLimiter, perSecond int) ManagerOption {
	return func(m *Manager) {
		m.limiter = l
		m.perSecond = perSecond
	}
}

// Manager implements domain.ExchangeAdapter over a fixed set of venues
// decided at startup.
type Manager struct {
	venues    map[string]Venue
	order     []string
	limiter   domain.RateLimiter
	perSecond int
	logger    *slog.Logger
}

// NewManager builds a Manager. Venue ids must be unique and at least one
// venue is required.
func NewManager(venues []Venue, logger *slog.Logger, opts ...ManagerOption) (*Manager, error) {
	if len(venues) == 0 {
		return nil, fmt.Errorf("exchange: new manager: %w", domain.ErrNoVenues)
	}
	m := &Manager{
		venues: make(map[string]Venue, len(venues)),
		logger: logger.With(slog.String("component", "exchange_manager")),
	}
	for _, v := range venues {
		if _, dup := m.venues[v.ID()]; dup {
			return nil, fmt.Errorf("exchange: duplicate venue %q", v.ID())
		}
		m.venues[v.ID()] = v
		m.order = append(m.order, v.ID())
	}
	for _, o := range opts {
		o(m)
	}
	return m, nil
}

// VenueIDs returns venue ids in registration order.
func (m *Manager) VenueIDs() []string {
	return append([]string(nil), m.order...)
}

func (m *Manager) venue(id string) (Venue, error) {
	v, ok := m.venues[id]
	if !ok {
		return nil, fmt.Errorf("exchange: %q: %w", id, domain.ErrUnknownVenue)
	}
	return v, nil
}

// throttle waits for the venue's rate limit slot. Limiter failures are
// logged and do not block the request.
func (m *Manager) throttle(ctx context.Context, venueID string) error {
	if m.limiter == nil || m.perSecond <= 0 {
		return nil
	}
	err := m.limiter.Wait(ctx, "venue:"+venueID, m.perSecond, time.Second)
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return err
	}
	m.logger.Warn("rate limiter unavailable, proceeding",
		slog.String("venue", venueID),
		slog.String("error", err.Error()),
	)
	return nil
}

// FetchQuote returns the venue's current top of book for symbol. Errors are
// *domain.FetchError.
func (m *Manager) FetchQuote(ctx context.Context, venueID, symbol string) (domain.Quote, error) {
	v, err := m.venue(venueID)
	if err != nil {
		return domain.Quote{}, Classify(venueID, symbol, err)
	}
	if err := m.throttle(ctx, venueID); err != nil {
		return domain.Quote{}, Classify(venueID, symbol, err)
	}
	q, err := v.FetchQuote(ctx, symbol)
	if err != nil {
		return domain.Quote{}, Classify(venueID, symbol, err)
	}
	return q, nil
}

// FetchBalance returns the free balance of asset on the venue.
func (m *Manager) FetchBalance(ctx context.Context, venueID, asset string) (float64, error) {
	v, err := m.venue(venueID)
	if err != nil {
		return 0, Classify(venueID, asset, err)
	}
	if err := m.throttle(ctx, venueID); err != nil {
		return 0, Classify(venueID, asset, err)
	}
	bal, err := v.FetchBalance(ctx, asset)
	if err != nil {
		return 0, Classify(venueID, asset, err)
	}
	return bal, nil
}

// PlaceSimulatedBuy records a simulated market buy. No order reaches the venue.
func (m *Manager) PlaceSimulatedBuy(ctx context.Context, venueID, symbol string, quantity float64) (domain.OrderResult, error) {
	return m.simulate(ctx, domain.OrderSideBuy, venueID, symbol, quantity)
}

// PlaceSimulatedSell records a simulated market sell. No order reaches the venue.
func (m *Manager) PlaceSimulatedSell(ctx context.Context, venueID, symbol string, quantity float64) (domain.OrderResult, error) {
	return m.simulate(ctx, domain.OrderSideSell, venueID, symbol, quantity)
}

func (m *Manager) simulate(ctx context.Context, side domain.OrderSide, venueID, symbol string, quantity float64) (domain.OrderResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.OrderResult{}, fmt.Errorf("exchange: simulate %s on %s: %w", side, venueID, err)
	}
	if _, err := m.venue(venueID); err != nil {
		return domain.OrderResult{}, err
	}
	if _, _, err := SplitSymbol(symbol); err != nil {
		return domain.OrderResult{}, err
	}
	if quantity <= 0 || math.IsNaN(quantity) || math.IsInf(quantity, 0) {
		return domain.OrderResult{}, fmt.Errorf("exchange: simulate %s %v on %s: %w", side, quantity, venueID, domain.ErrInvalidQuantity)
	}

	res := domain.OrderResult{
		OrderID:  fmt.Sprintf("sim-%s-%s-%s", side, venueID, uuid.NewString()),
		Status:   domain.OrderStatusClosed,
		Quantity: quantity,
	}
	m.logger.Info("simulated order",
		slog.String("side", string(side)),
		slog.String("venue", venueID),
		slog.String("symbol", symbol),
		slog.Float64("quantity", quantity),
		slog.String("order_id", res.OrderID),
	)
	return res, nil
}

// Compile-time interface check.
var _ domain.ExchangeAdapter = (*Manager)(nil)
