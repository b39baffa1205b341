package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/venuearb/internal/domain"
	"github.com/alanyoungcy/venuearb/internal/market"
	"github.com/alanyoungcy/venuearb/internal/metrics"
	"github.com/alanyoungcy/venuearb/internal/server/handler"
)

type fakeView struct {
	snap *market.Snapshot
	opp  *domain.Opportunity
}

func (f fakeView) Mode() string           { return "trade" }
func (f fakeView) Cycles() int64          { return 7 }
func (f fakeView) LastCycleAt() time.Time { return time.Unix(1700000000, 0).UTC() }
func (f fakeView) Snapshot() *market.Snapshot {
	return f.snap
}
func (f fakeView) LastOpportunity() (domain.Opportunity, bool) {
	if f.opp == nil {
		return domain.Opportunity{}, false
	}
	return *f.opp, true
}

type fakeJournal struct {
	err  error
	rows []domain.TradeOutcome
}

func (f fakeJournal) ListRecent(context.Context, int) ([]domain.TradeOutcome, error) {
	return f.rows, f.err
}

func (f fakeJournal) Get(_ context.Context, id string) (domain.TradeOutcome, error) {
	if f.err != nil {
		return domain.TradeOutcome{}, f.err
	}
	for _, r := range f.rows {
		if r.ID == id {
			return r, nil
		}
	}
	return domain.TradeOutcome{}, domain.ErrNotFound
}

type pingFunc func(context.Context) error

func (p pingFunc) Ping(ctx context.Context) error { return p(ctx) }

func newTestServer(view fakeView, journal handler.TradeJournal, checks map[string]handler.Pinger, apiKey string) http.Handler {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := NewServer(Config{Port: 0, APIKey: apiKey}, Handlers{
		Health:  handler.NewHealthHandler(checks, log),
		Status:  handler.NewStatusHandler(view, []string{"binance", "kucoin"}, []string{"BTC/USDT"}, time.Now()),
		Market:  handler.NewMarketHandler(view),
		Trades:  handler.NewTradesHandler(journal, log),
		Metrics: metrics.New().Handler(),
	}, log)
	return s.Handler()
}

func get(t *testing.T, h http.Handler, path string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestStatusAndSnapshot(t *testing.T) {
	snap := market.NewSnapshot(time.Now(),
		domain.Quote{Symbol: "BTC/USDT", VenueID: "kucoin", Bid: domain.Price(100), Ask: domain.Price(101)},
		domain.Quote{Symbol: "BTC/USDT", VenueID: "binance", Bid: domain.Price(105)},
	)
	h := newTestServer(fakeView{snap: snap}, fakeJournal{}, nil, "")

	rec := get(t, h, "/api/status")
	require.Equal(t, http.StatusOK, rec.Code)
	var status domain.BotStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "trade", status.Mode)
	assert.EqualValues(t, 7, status.Cycles)

	rec = get(t, h, "/api/snapshot?symbol=BTC/USDT")
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Count  int `json:"count"`
		Quotes []struct {
			VenueID string   `json:"venue_id"`
			Ask     *float64 `json:"ask"`
		} `json:"quotes"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Count)
	assert.Equal(t, "binance", body.Quotes[0].VenueID)
	assert.Nil(t, body.Quotes[0].Ask)
}

func TestLastOpportunity(t *testing.T) {
	h := newTestServer(fakeView{snap: market.NewSnapshot(time.Now())}, fakeJournal{}, nil, "")
	assert.Equal(t, http.StatusNotFound, get(t, h, "/api/opportunity/last").Code)

	opp := domain.Opportunity{Symbol: "ETH/USDT", NetProfitPercent: 1.5}
	h = newTestServer(fakeView{snap: market.NewSnapshot(time.Now()), opp: &opp}, fakeJournal{}, nil, "")
	rec := get(t, h, "/api/opportunity/last")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ETH/USDT")
}

func TestTradesEndpoints(t *testing.T) {
	view := fakeView{snap: market.NewSnapshot(time.Now())}

	h := newTestServer(view, fakeJournal{err: domain.ErrJournalDisabled}, nil, "")
	assert.Equal(t, http.StatusNotImplemented, get(t, h, "/api/trades/recent").Code)

	h = newTestServer(view, fakeJournal{rows: []domain.TradeOutcome{{ID: "t1", Status: domain.TradeStatusCompleted}}}, nil, "")
	rec := get(t, h, "/api/trades/recent?limit=5")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"t1"`)
	assert.Equal(t, http.StatusOK, get(t, h, "/api/trades/t1").Code)
	assert.Equal(t, http.StatusNotFound, get(t, h, "/api/trades/missing").Code)

	h = newTestServer(view, fakeJournal{err: errors.New("db gone")}, nil, "")
	assert.Equal(t, http.StatusInternalServerError, get(t, h, "/api/trades/recent").Code)
}

func TestHealthDegraded(t *testing.T) {
	view := fakeView{snap: market.NewSnapshot(time.Now())}
	h := newTestServer(view, fakeJournal{}, map[string]handler.Pinger{
		"redis":    pingFunc(func(context.Context) error { return errors.New("refused") }),
		"postgres": nil,
	}, "")

	rec := get(t, h, "/api/health")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "degraded")
}

func TestAuthAndMetrics(t *testing.T) {
	h := newTestServer(fakeView{snap: market.NewSnapshot(time.Now())}, fakeJournal{}, nil, "k")

	assert.Equal(t, http.StatusOK, get(t, h, "/api/health").Code)
	assert.Equal(t, http.StatusOK, get(t, h, "/metrics").Code)
	assert.Equal(t, http.StatusUnauthorized, get(t, h, "/api/status").Code)
	assert.Equal(t, http.StatusOK, get(t, h, "/api/status", "X-API-Key", "k").Code)
}
