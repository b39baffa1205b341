package exchange

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"

	"github.com/shopspring/decimal"

	"github.com/alanyoungcy/venuearb/internal/domain"
)

// VenueError is an error reported by the venue itself: a non-2xx status or
// an error code in the response body.
type VenueError struct {
	Venue      string
	StatusCode int
	Code       string
	Message    string
}

func (e *VenueError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: status %d code %s: %s", e.Venue, e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Venue, e.StatusCode, e.Message)
}

// Classify wraps err in a domain.FetchError. Venue-reported errors are
// venue, transport failures and timeouts are connectivity, and anything else
// is unexpected.
func Classify(venueID, symbol string, err error) error {
	if err == nil {
		return nil
	}
	var fe *domain.FetchError
	if errors.As(err, &fe) {
		return err
	}

	kind := domain.FetchErrorUnexpected
	var (
		ve     *VenueError
		netErr net.Error
		urlErr *url.Error
	)
	switch {
	case errors.As(err, &ve), errors.Is(err, domain.ErrVenueUnavailable), errors.Is(err, domain.ErrRateLimited):
		kind = domain.FetchErrorVenue
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled),
		errors.As(err, &netErr), errors.As(err, &urlErr):
		kind = domain.FetchErrorConnectivity
	}
	return &domain.FetchError{Kind: kind, VenueID: venueID, Symbol: symbol, Err: err}
}

// ParsePrice parses a venue price string. An empty string or a non-positive
// value means the side is absent and yields nil.
func ParsePrice(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("exchange: parse price %q: %w", s, err)
	}
	if !d.IsPositive() {
		return nil, nil
	}
	v := d.InexactFloat64()
	return &v, nil
}

// ParseAmount parses a venue balance string; empty is zero.
func ParseAmount(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("exchange: parse amount %q: %w", s, err)
	}
	return d, nil
}
