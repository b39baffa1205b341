package market

import (
	"sort"
	"time"

	"github.com/alanyoungcy/venuearb/internal/domain"
)

// Snapshot is an immutable point-in-time view of the latest quote per
// (symbol, venue). Every key with a quote also has a fetch time.
type Snapshot struct {
	quotes    map[domain.QuoteKey]domain.Quote
	fetchedAt map[domain.QuoteKey]time.Time
}

func emptySnapshot() *Snapshot {
	return &Snapshot{
		quotes:    map[domain.QuoteKey]domain.Quote{},
		fetchedAt: map[domain.QuoteKey]time.Time{},
	}
}

// NewSnapshot builds a snapshot from quotes, stamping each with fetchedAt.
// It is mainly useful for feeding the detector directly.
func NewSnapshot(fetchedAt time.Time, quotes ...domain.Quote) *Snapshot {
	s := emptySnapshot()
	for _, q := range quotes {
		s.quotes[q.Key()] = q
		s.fetchedAt[q.Key()] = fetchedAt
	}
	return s
}

// with returns a copy of s with q stored under its key.
func (s *Snapshot) with(q domain.Quote, at time.Time) *Snapshot {
	next := &Snapshot{
		quotes:    make(map[domain.QuoteKey]domain.Quote, len(s.quotes)+1),
		fetchedAt: make(map[domain.QuoteKey]time.Time, len(s.fetchedAt)+1),
	}
	for k, v := range s.quotes {
		next.quotes[k] = v
	}
	for k, v := range s.fetchedAt {
		next.fetchedAt[k] = v
	}
	next.quotes[q.Key()] = q
	next.fetchedAt[q.Key()] = at
	return next
}

// Len returns the number of stored quotes.
func (s *Snapshot) Len() int { return len(s.quotes) }

// Quote returns the quote stored under key.
func (s *Snapshot) Quote(key domain.QuoteKey) (domain.Quote, bool) {
	q, ok := s.quotes[key]
	return q, ok
}

// FetchedAt returns when the quote under key was stored.
func (s *Snapshot) FetchedAt(key domain.QuoteKey) (time.Time, bool) {
	t, ok := s.fetchedAt[key]
	return t, ok
}

// Symbols returns the distinct symbols in sorted order.
func (s *Snapshot) Symbols() []string {
	seen := make(map[string]struct{})
	for k := range s.quotes {
		seen[k.Symbol] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for sym := range seen {
		out = append(out, sym)
	}
	sort.Strings(out)
	return out
}

// QuotesFor returns every venue's quote for symbol, ordered by venue id.
func (s *Snapshot) QuotesFor(symbol string) []domain.Quote {
	var out []domain.Quote
	for k, q := range s.quotes {
		if k.Symbol == symbol {
			out = append(out, q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VenueID < out[j].VenueID })
	return out
}

// Quotes returns a copy of all quotes, ordered by symbol then venue.
func (s *Snapshot) Quotes() []domain.Quote {
	out := make([]domain.Quote, 0, len(s.quotes))
	for _, sym := range s.Symbols() {
		out = append(out, s.QuotesFor(sym)...)
	}
	return out
}
