// Package exchange routes quote, balance and simulated order requests to the
// configured trading venues.
package exchange

import (
	"context"

	"github.com/alanyoungcy/venuearb/internal/domain"
)

// Venue is a single trading venue client.
type Venue interface {
	ID() string
	FetchQuote(ctx context.Context, symbol string) (domain.Quote, error)
	FetchBalance(ctx context.Context, asset string) (float64, error)
}
