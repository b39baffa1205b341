package config

import (
	"fmt"
	"strings"

	"github.com/alanyoungcy/venuearb/internal/domain"
)

// knownVenues lists the venue ids the exchange package can build.
var knownVenues = map[string]bool{
	"binance": true,
	"kucoin":  true,
	"gateio":  true,
}

// SkippedVenue is a configured venue left out of the startup set.
type SkippedVenue struct {
	ID     string
	Reason string
}

// ResolveVenues decides the fixed venue set for this process. Disabled
// entries are skipped, as are entries without credentials when
// market.require_credentials is set. Returning no venues is fatal.
func (c *Config) ResolveVenues() ([]VenueConfig, []SkippedVenue, error) {
	var (
		active  []VenueConfig
		skipped []SkippedVenue
	)
	for _, v := range c.Venues {
		id := strings.ToLower(strings.TrimSpace(v.ID))
		switch {
		case !knownVenues[id]:
			skipped = append(skipped, SkippedVenue{ID: v.ID, Reason: "unsupported venue"})
		case !v.Enabled:
			skipped = append(skipped, SkippedVenue{ID: id, Reason: "disabled"})
		case c.Market.RequireCredentials && !v.HasCredentials():
			skipped = append(skipped, SkippedVenue{ID: id, Reason: "missing api_key or api_secret"})
		default:
			v.ID = id
			active = append(active, v)
		}
	}
	if len(active) == 0 {
		return nil, skipped, fmt.Errorf("config: resolve venues: %w", domain.ErrNoVenues)
	}
	return active, skipped, nil
}

// VenueIDs returns the ids of vs in order.
func VenueIDs(vs []VenueConfig) []string {
	ids := make([]string, len(vs))
	for i, v := range vs {
		ids[i] = v.ID
	}
	return ids
}
