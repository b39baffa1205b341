// Package market keeps the rolling set of latest venue quotes. A refresh
// cycle polls every configured (venue, symbol) pair concurrently; readers
// take immutable snapshots without locking.
package market

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/alanyoungcy/venuearb/internal/domain"
	"github.com/alanyoungcy/venuearb/internal/metrics"
)

// Option configures a Store.
type Option func(*Store)

// WithMirror copies every accepted quote into an external cache.
func WithMirror(c domain.QuoteCache) Option {
	return func(s *Store) { s.mirror = c }
}

// WithMetrics records fetch and refresh metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithMaxConcurrency bounds in-flight fetches per cycle. n <= 0 is unbounded.
func WithMaxConcurrency(n int) Option {
	return func(s *Store) { s.maxConcurrent = n }
}

// RefreshStats summarises one refresh cycle.
type RefreshStats struct {
	Attempted int
	Succeeded int
	Failed    int
	Duration  time.Duration
}

// Store holds the latest quote per (symbol, venue). Writers serialise on mu
// and publish a fresh copy; readers load the current pointer.
type Store struct {
	adapter       domain.ExchangeAdapter
	venues        []string
	symbols       []string
	mirror        domain.QuoteCache
	metrics       *metrics.Metrics
	logger        *slog.Logger
	now           func() time.Time
	maxConcurrent int

	mu      sync.Mutex
	current atomic.Pointer[Snapshot]
}

// NewStore creates a Store polling symbols on venues through adapter.
func NewStore(adapter domain.ExchangeAdapter, venues, symbols []string, logger *slog.Logger, opts ...Option) *Store {
	s := &Store{
		adapter: adapter,
		venues:  append([]string(nil), venues...),
		symbols: append([]string(nil), symbols...),
		logger:  logger.With(slog.String("component", "market_store")),
		now:     time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	s.current.Store(emptySnapshot())
	return s
}

// Venues returns the configured venue ids.
func (s *Store) Venues() []string { return append([]string(nil), s.venues...) }

// Symbols returns the configured symbols.
func (s *Store) Symbols() []string { return append([]string(nil), s.symbols...) }

// RefreshCycle fetches every configured pair concurrently and returns once
// all fetches have settled. A failed fetch is logged and leaves that pair's
// previous quote untouched; it never aborts the other fetches.
func (s *Store) RefreshCycle(ctx context.Context) RefreshStats {
	start := s.now()

	var g errgroup.Group
	if s.maxConcurrent > 0 {
		g.SetLimit(s.maxConcurrent)
	}

	var ok, failed atomic.Int64
	for _, venue := range s.venues {
		for _, symbol := range s.symbols {
			g.Go(func() error {
				if err := s.fetchOne(ctx, venue, symbol); err != nil {
					failed.Add(1)
				} else {
					ok.Add(1)
				}
				return nil
			})
		}
	}
	_ = g.Wait()

	stats := RefreshStats{
		Attempted: len(s.venues) * len(s.symbols),
		Succeeded: int(ok.Load()),
		Failed:    int(failed.Load()),
		Duration:  s.now().Sub(start),
	}
	s.metrics.ObserveRefresh(stats.Duration)
	s.logger.Debug("refresh cycle complete",
		slog.Int("attempted", stats.Attempted),
		slog.Int("succeeded", stats.Succeeded),
		slog.Int("failed", stats.Failed),
		slog.Duration("duration", stats.Duration),
	)
	return stats
}

func (s *Store) fetchOne(ctx context.Context, venue, symbol string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &domain.FetchError{
				Kind: domain.FetchErrorUnexpected, VenueID: venue, Symbol: symbol,
				Err: fmt.Errorf("panic: %v", r),
			}
		}
		var kind domain.FetchErrorKind
		if err != nil {
			var fe *domain.FetchError
			if !errors.As(err, &fe) {
				fe = &domain.FetchError{Kind: domain.FetchErrorUnexpected, VenueID: venue, Symbol: symbol, Err: err}
				err = fe
			}
			kind = fe.Kind
			s.logger.Error("quote fetch failed",
				slog.String("venue", venue),
				slog.String("symbol", symbol),
				slog.String("kind", string(kind)),
				slog.String("error", err.Error()),
			)
		}
		s.metrics.ObserveFetch(venue, kind, err)
	}()

	q, err := s.adapter.FetchQuote(ctx, venue, symbol)
	if err != nil {
		return err
	}
	want := domain.QuoteKey{Symbol: symbol, VenueID: venue}
	if q.Key() != want {
		return &domain.FetchError{
			Kind: domain.FetchErrorUnexpected, VenueID: venue, Symbol: symbol,
			Err: fmt.Errorf("adapter returned quote for %s", q.Key()),
		}
	}

	fetchedAt := s.now()
	if q.ObservedAt.IsZero() {
		q.ObservedAt = fetchedAt
	}
	s.put(q, fetchedAt)

	if s.mirror != nil {
		if err := s.mirror.SetQuote(ctx, q); err != nil {
			s.logger.Warn("quote mirror write failed",
				slog.String("key", want.String()),
				slog.String("error", err.Error()),
			)
		}
	}
	return nil
}

func (s *Store) put(q domain.Quote, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current.Store(s.current.Load().with(q, at))
}

// Snapshot returns the current immutable snapshot. Quotes stored after the
// call are not visible through it.
func (s *Store) Snapshot() *Snapshot {
	return s.current.Load()
}

// IsStale reports whether the pair was never fetched or was last fetched
// more than maxAge ago. Stale pairs are logged at warn level.
func (s *Store) IsStale(symbol, venueID string, maxAge time.Duration) bool {
	key := domain.QuoteKey{Symbol: symbol, VenueID: venueID}
	at, ok := s.current.Load().FetchedAt(key)
	if !ok {
		s.logger.Warn("no quote fetched yet", slog.String("venue", venueID), slog.String("symbol", symbol))
		return true
	}
	age := s.now().Sub(at)
	if age > maxAge {
		s.logger.Warn("stale quote",
			slog.String("venue", venueID),
			slog.String("symbol", symbol),
			slog.Duration("age", age),
			slog.Duration("max_age", maxAge),
		)
		return true
	}
	return false
}

// StaleCount audits every configured pair and returns how many are stale.
func (s *Store) StaleCount(maxAge time.Duration) int {
	n := 0
	for _, venue := range s.venues {
		for _, symbol := range s.symbols {
			if s.IsStale(symbol, venue, maxAge) {
				n++
			}
		}
	}
	s.metrics.SetStale(n)
	return n
}
