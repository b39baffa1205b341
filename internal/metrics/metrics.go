// Package metrics exposes Prometheus instrumentation for the arbitrage
// pipeline. Every method is safe to call on a nil *Metrics, which records
// nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/alanyoungcy/venuearb/internal/domain"
)

const namespace = "venuearb"

// Metrics holds the pipeline collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	quoteFetches      *prometheus.CounterVec
	refreshDuration   prometheus.Histogram
	staleQuotes       prometheus.Gauge
	opportunities     *prometheus.CounterVec
	bestNetProfit     prometheus.Gauge
	trades            *prometheus.CounterVec
	estimatedProfit   prometheus.Counter
	pipelineIterFails prometheus.Counter
	journalFails      prometheus.Counter
}

// New creates the collectors and registers them on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		quoteFetches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quote_fetch_total",
			Help:      "Quote fetches by venue and result (ok, connectivity, venue, unexpected).",
		}, []string{"venue", "result"}),
		refreshDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "refresh_cycle_seconds",
			Help:      "Wall time of one concurrent refresh cycle.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		}),
		staleQuotes: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stale_quotes",
			Help:      "Configured venue/symbol pairs whose quote is missing or older than stale_after.",
		}),
		opportunities: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "opportunities_total",
			Help:      "Best-of-cycle opportunities by symbol.",
		}, []string{"symbol"}),
		bestNetProfit: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "best_net_profit_percent",
			Help:      "Net profit percent of the most recent opportunity.",
		}),
		trades: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trades_total",
			Help:      "Simulated trades by outcome status.",
		}, []string{"status"}),
		estimatedProfit: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "estimated_profit_total",
			Help:      "Sum of estimated profit over completed trades, in quote currency.",
		}),
		pipelineIterFails: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_iteration_failures_total",
			Help:      "Pipeline iterations that ended in an error or recovered panic.",
		}),
		journalFails: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "journal_failures_total",
			Help:      "Trade outcomes the trade store failed to persist.",
		}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveFetch counts one quote fetch. A nil err is recorded as "ok".
func (m *Metrics) ObserveFetch(venue string, kind domain.FetchErrorKind, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = string(kind)
	}
	m.quoteFetches.WithLabelValues(venue, result).Inc()
}

// ObserveRefresh records the duration of a refresh cycle.
func (m *Metrics) ObserveRefresh(d time.Duration) {
	if m == nil {
		return
	}
	m.refreshDuration.Observe(d.Seconds())
}

// SetStale sets the number of stale pairs seen in the last audit.
func (m *Metrics) SetStale(n int) {
	if m == nil {
		return
	}
	m.staleQuotes.Set(float64(n))
}

// ObserveOpportunity counts a detected opportunity.
func (m *Metrics) ObserveOpportunity(opp domain.Opportunity) {
	if m == nil {
		return
	}
	m.opportunities.WithLabelValues(opp.Symbol).Inc()
	m.bestNetProfit.Set(opp.NetProfitPercent)
}

// ObserveTrade counts a trade outcome and accumulates estimated profit.
func (m *Metrics) ObserveTrade(outcome domain.TradeOutcome) {
	if m == nil {
		return
	}
	m.trades.WithLabelValues(string(outcome.Status)).Inc()
	if outcome.Status == domain.TradeStatusCompleted && outcome.EstimatedProfit > 0 {
		m.estimatedProfit.Add(outcome.EstimatedProfit)
	}
}

// IterationFailed counts a failed pipeline iteration.
func (m *Metrics) IterationFailed() {
	if m == nil {
		return
	}
	m.pipelineIterFails.Inc()
}

// JournalFailed counts a trade outcome that could not be persisted.
func (m *Metrics) JournalFailed() {
	if m == nil {
		return
	}
	m.journalFails.Inc()
}
