package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/venuearb/internal/domain"
)

func TestObserveFetch(t *testing.T) {
	m := New()
	m.ObserveFetch("binance", "", nil)
	m.ObserveFetch("binance", "", nil)
	m.ObserveFetch("kucoin", domain.FetchErrorConnectivity, errors.New("timeout"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.quoteFetches.WithLabelValues("binance", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.quoteFetches.WithLabelValues("kucoin", "connectivity")))
}

func TestObserveTrade(t *testing.T) {
	m := New()
	m.ObserveTrade(domain.TradeOutcome{Status: domain.TradeStatusCompleted, EstimatedProfit: 3.5})
	m.ObserveTrade(domain.TradeOutcome{Status: domain.TradeStatusLegImbalance})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.trades.WithLabelValues("completed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.trades.WithLabelValues("leg_imbalance")))
	assert.Equal(t, 3.5, testutil.ToFloat64(m.estimatedProfit))
}

func TestOpportunityAndStale(t *testing.T) {
	m := New()
	m.ObserveOpportunity(domain.Opportunity{Symbol: "BTC/USDT", NetProfitPercent: 3.6})
	m.SetStale(2)
	m.ObserveRefresh(150 * time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.opportunities.WithLabelValues("BTC/USDT")))
	assert.Equal(t, 3.6, testutil.ToFloat64(m.bestNetProfit))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.staleQuotes))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveFetch("binance", "", nil)
	m.ObserveTrade(domain.TradeOutcome{Status: domain.TradeStatusFailed})
	m.IterationFailed()
	m.JournalFailed()
	assert.Nil(t, m.Registry())
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.IterationFailed()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "venuearb_pipeline_iteration_failures_total 1"))
}
