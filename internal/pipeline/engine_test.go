package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/venuearb/internal/arbitrage"
	"github.com/alanyoungcy/venuearb/internal/domain"
	"github.com/alanyoungcy/venuearb/internal/executor"
	"github.com/alanyoungcy/venuearb/internal/market"
	"github.com/alanyoungcy/venuearb/internal/metrics"
	"github.com/alanyoungcy/venuearb/internal/service"
)

type stubAdapter struct {
	mu     sync.Mutex
	quotes map[domain.QuoteKey]domain.Quote
	orders int
}

func (s *stubAdapter) FetchQuote(_ context.Context, venue, symbol string) (domain.Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.quotes[domain.QuoteKey{Symbol: symbol, VenueID: venue}]
	if !ok {
		return domain.Quote{}, &domain.FetchError{Kind: domain.FetchErrorConnectivity, VenueID: venue, Symbol: symbol, Err: errors.New("timeout")}
	}
	return q, nil
}

func (s *stubAdapter) FetchBalance(context.Context, string, string) (float64, error) { return 0, nil }

func (s *stubAdapter) place(side domain.OrderSide, qty float64) (domain.OrderResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders++
	return domain.OrderResult{OrderID: "sim-" + string(side), Status: domain.OrderStatusClosed, Quantity: qty}, nil
}

func (s *stubAdapter) PlaceSimulatedBuy(_ context.Context, _, _ string, qty float64) (domain.OrderResult, error) {
	return s.place(domain.OrderSideBuy, qty)
}

func (s *stubAdapter) PlaceSimulatedSell(_ context.Context, _, _ string, qty float64) (domain.OrderResult, error) {
	return s.place(domain.OrderSideSell, qty)
}

type recordingStore struct {
	mu   sync.Mutex
	rows []domain.TradeOutcome
	err  error
}

func (r *recordingStore) Create(_ context.Context, o domain.TradeOutcome) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.rows = append(r.rows, o)
	return nil
}

func (r *recordingStore) GetByID(context.Context, string) (domain.TradeOutcome, error) {
	return domain.TradeOutcome{}, domain.ErrNotFound
}

func (r *recordingStore) ListRecent(context.Context, int) ([]domain.TradeOutcome, error) {
	return nil, nil
}

type heldLocks struct{}

func (heldLocks) Acquire(context.Context, string, time.Duration) (func(), error) {
	return nil, domain.ErrLockHeld
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// scenarioOne has A {100,101} and B {105,106}: buy A at 101, sell B at 105.
func scenarioOne() *stubAdapter {
	return &stubAdapter{quotes: map[domain.QuoteKey]domain.Quote{
		{Symbol: "BTC/USDT", VenueID: "a"}: {Symbol: "BTC/USDT", VenueID: "a", Bid: domain.Price(100), Ask: domain.Price(101)},
		{Symbol: "BTC/USDT", VenueID: "b"}: {Symbol: "BTC/USDT", VenueID: "b", Bid: domain.Price(105), Ask: domain.Price(106)},
	}}
}

func newEngine(adapter *stubAdapter, trade bool, store domain.TradeOutcomeStore, locks domain.LockManager) *Engine {
	log := quietLogger()
	cfg := EngineConfig{
		Store: market.NewStore(adapter, []string{"a", "b"}, []string{"BTC/USDT"}, log),
		Detector: arbitrage.NewDetector(arbitrage.DetectorConfig{
			MinProfitPercent: 0.2,
			Fees:             arbitrage.FeeSchedule{DefaultTakerPercent: 0.1},
			Logger:           log,
		}),
		Trades:       service.NewTradeService(store, nil, nil, nil, log),
		Locks:        locks,
		PollInterval: time.Millisecond,
		StaleAfter:   time.Minute,
		Logger:       log,
	}
	if trade {
		cfg.Simulator = executor.NewSimulator(adapter, executor.Config{
			MinTradeAmount: 10, MaxTradeAmount: 1000, NominalNotional: 100,
		}, nil, log)
	}
	return NewEngine(cfg)
}

func TestRunCycleMonitorModeDetectsWithoutTrading(t *testing.T) {
	adapter := scenarioOne()
	e := newEngine(adapter, false, nil, nil)
	assert.Equal(t, "monitor", e.Mode())

	res, err := e.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Refresh.Succeeded)
	require.NotNil(t, res.Opportunity)
	assert.Equal(t, "a", res.Opportunity.BuyVenue)
	assert.Equal(t, "b", res.Opportunity.SellVenue)
	assert.Nil(t, res.Outcome)
	assert.Zero(t, adapter.orders)

	last, ok := e.LastOpportunity()
	require.True(t, ok)
	assert.Equal(t, *res.Opportunity, last)
	assert.EqualValues(t, 1, e.Cycles())
	assert.False(t, e.LastCycleAt().IsZero())
}

func TestRunCycleTradeModeJournalsOutcome(t *testing.T) {
	store := &recordingStore{}
	e := newEngine(scenarioOne(), true, store, nil)

	res, err := e.RunCycle(context.Background())
	require.NoError(t, err)
	require.NotNil(t, res.Outcome)
	assert.Equal(t, domain.TradeStatusCompleted, res.Outcome.Status)
	require.Len(t, store.rows, 1)
	assert.Equal(t, res.Outcome.ID, store.rows[0].ID)
}

func TestRunCycleCountsJournalFailures(t *testing.T) {
	store := &recordingStore{err: errors.New("connection refused")}
	e := newEngine(scenarioOne(), true, store, nil)
	m := metrics.New()
	e.cfg.Metrics = m

	res, err := e.RunCycle(context.Background())
	require.NoError(t, err)
	require.NotNil(t, res.Outcome)
	assert.Equal(t, domain.TradeStatusCompleted, res.Outcome.Status)
	assert.Empty(t, store.rows)

	expected := `
# HELP venuearb_journal_failures_total Trade outcomes the trade store failed to persist.
# TYPE venuearb_journal_failures_total counter
venuearb_journal_failures_total 1
`
	require.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "venuearb_journal_failures_total"))
}

func TestRunCycleSkipsWhenSymbolLocked(t *testing.T) {
	adapter := scenarioOne()
	e := newEngine(adapter, true, nil, heldLocks{})

	res, err := e.RunCycle(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, res.Opportunity)
	assert.Nil(t, res.Outcome)
	assert.Zero(t, adapter.orders)
}

func TestRunCycleEmptySnapshot(t *testing.T) {
	e := newEngine(&stubAdapter{}, true, nil, nil)

	res, err := e.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Refresh.Failed)
	assert.Nil(t, res.Opportunity)
	_, ok := e.LastOpportunity()
	assert.False(t, ok)
}

func TestSafeCycleRecoversPanic(t *testing.T) {
	e := newEngine(scenarioOne(), false, nil, nil)
	e.cfg.Detector = nil

	_, err := e.safeCycle(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panic")
}

func TestRunStopsOnCancel(t *testing.T) {
	e := newEngine(scenarioOne(), false, nil, nil)
	e.cfg.WarmupCycles = 1

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- e.Run(ctx) }()

	require.Eventually(t, func() bool { return e.Cycles() >= 3 }, 2*time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
