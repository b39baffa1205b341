package domain

import (
	"context"
	"fmt"
)

// ExchangeAdapter is the boundary between the pipeline and trading venues.
// Venue ids are configuration names such as "binance"; symbols use the
// BASE/QUOTE form such as "BTC/USDT".
type ExchangeAdapter interface {
	FetchQuote(ctx context.Context, venueID, symbol string) (Quote, error)
	FetchBalance(ctx context.Context, venueID, asset string) (float64, error)
	PlaceSimulatedBuy(ctx context.Context, venueID, symbol string, quantity float64) (OrderResult, error)
	PlaceSimulatedSell(ctx context.Context, venueID, symbol string, quantity float64) (OrderResult, error)
}

// FetchErrorKind classifies a failed quote or balance fetch.
type FetchErrorKind string

const (
	FetchErrorConnectivity FetchErrorKind = "connectivity"
	FetchErrorVenue        FetchErrorKind = "venue"
	FetchErrorUnexpected   FetchErrorKind = "unexpected"
)

// FetchError wraps a failed fetch with the venue/symbol it was for.
type FetchError struct {
	Kind    FetchErrorKind
	VenueID string
	Symbol  string
	Err     error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s fetch error on %s %s: %v", e.Kind, e.VenueID, e.Symbol, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
