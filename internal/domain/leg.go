package domain

// LegDispatch defines how the two legs of a trade are issued.
type LegDispatch string

const (
	LegDispatchSequential LegDispatch = "sequential" // buy, await, then sell
	LegDispatchConcurrent LegDispatch = "concurrent" // both legs in flight at once
)

// LegResult records one leg of a two-leg trade.
type LegResult struct {
	Side     OrderSide    `json:"side"`
	VenueID  string       `json:"venue_id"`
	Symbol   string       `json:"symbol"`
	Quantity float64      `json:"quantity"`
	Order    *OrderResult `json:"order,omitempty"`
	Err      string       `json:"error,omitempty"`
}

// Succeeded reports whether the venue accepted the leg.
func (l LegResult) Succeeded() bool {
	return l.Order != nil && l.Err == ""
}
