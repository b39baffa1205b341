package domain

import "time"

// QuoteKey identifies the latest quote slot for one symbol on one venue.
type QuoteKey struct {
	Symbol  string
	VenueID string
}

func (k QuoteKey) String() string {
	return k.VenueID + ":" + k.Symbol
}

// Quote is the top of book observed on a venue. A nil Bid or Ask means the
// venue did not report that side, and the quote is unusable in that direction.
type Quote struct {
	Symbol     string
	VenueID    string
	Bid        *float64
	Ask        *float64
	ObservedAt time.Time
}

// Key returns the store key for q.
func (q Quote) Key() QuoteKey {
	return QuoteKey{Symbol: q.Symbol, VenueID: q.VenueID}
}

// BidPrice returns the bid and whether it is present and positive.
func (q Quote) BidPrice() (float64, bool) {
	if q.Bid == nil || *q.Bid <= 0 {
		return 0, false
	}
	return *q.Bid, true
}

// AskPrice returns the ask and whether it is present and positive.
func (q Quote) AskPrice() (float64, bool) {
	if q.Ask == nil || *q.Ask <= 0 {
		return 0, false
	}
	return *q.Ask, true
}

// Price is a small helper for building quotes with optional sides.
func Price(v float64) *float64 {
	return &v
}
