// Package gateio implements the Gate.io spot venue over its v4 REST API.
package gateio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/alanyoungcy/venuearb/internal/crypto"
	"github.com/alanyoungcy/venuearb/internal/domain"
	"github.com/alanyoungcy/venuearb/internal/exchange"
)

const (
	// VenueID is the configuration id of this venue.
	VenueID        = "gateio"
	defaultBaseURL = "https://api.gateio.ws"
	apiPrefix      = "/api/v4"
)

// Config holds Gate.io client settings.
type Config struct {
	APIKey    string
	APISecret string
	BaseURL   string
	Timeout   time.Duration
}

// Venue is the Gate.io spot client.
type Venue struct {
	rest *exchange.RESTClient
	auth *crypto.HMACAuth
	now  func() time.Time
}

// New creates a Gate.io venue.
func New(cfg Config) *Venue {
	base := cfg.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	return &Venue{
		rest: exchange.NewRESTClient(VenueID, base, cfg.Timeout),
		auth: &crypto.HMACAuth{Key: cfg.APIKey, Secret: cfg.APISecret},
		now:  time.Now,
	}
}

func (v *Venue) ID() string { return VenueID }

// withLabel fills the Gate.io error label into a VenueError.
func withLabel(err error) error {
	var ve *exchange.VenueError
	if !errors.As(err, &ve) {
		return err
	}
	var body struct {
		Label   string `json:"label"`
		Message string `json:"message"`
	}
	if json.Unmarshal([]byte(ve.Message), &body) == nil && body.Label != "" {
		ve.Code = body.Label
		ve.Message = body.Message
	}
	return err
}

type ticker struct {
	CurrencyPair string `json:"currency_pair"`
	LowestAsk    string `json:"lowest_ask"`
	HighestBid   string `json:"highest_bid"`
}

// FetchQuote reads the spot ticker for symbol.
func (v *Venue) FetchQuote(ctx context.Context, symbol string) (domain.Quote, error) {
	pair, err := exchange.VenueSymbol(symbol, "_")
	if err != nil {
		return domain.Quote{}, err
	}
	body, err := v.rest.Get(ctx, apiPrefix+"/spot/tickers", url.Values{"currency_pair": {pair}}, nil)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("gateio: ticker %s: %w", pair, withLabel(err))
	}

	var tickers []ticker
	if err := json.Unmarshal(body, &tickers); err != nil {
		return domain.Quote{}, fmt.Errorf("gateio: decode ticker %s: %w", pair, err)
	}
	for _, t := range tickers {
		if t.CurrencyPair != pair {
			continue
		}
		bid, err := exchange.ParsePrice(t.HighestBid)
		if err != nil {
			return domain.Quote{}, fmt.Errorf("gateio: %s bid: %w", pair, err)
		}
		ask, err := exchange.ParsePrice(t.LowestAsk)
		if err != nil {
			return domain.Quote{}, fmt.Errorf("gateio: %s ask: %w", pair, err)
		}
		return domain.Quote{Symbol: symbol, VenueID: VenueID, Bid: bid, Ask: ask, ObservedAt: v.now()}, nil
	}
	return domain.Quote{}, fmt.Errorf("gateio: ticker %s: %w", pair, domain.ErrNotFound)
}

type spotAccount struct {
	Currency  string `json:"currency"`
	Available string `json:"available"`
}

// FetchBalance returns the available spot balance of asset.
func (v *Venue) FetchBalance(ctx context.Context, asset string) (float64, error) {
	asset = strings.ToUpper(asset)
	path := apiPrefix + "/spot/accounts"
	query := url.Values{"currency": {asset}}
	headers := v.auth.GateHeaders("GET", path, query.Encode(), "")

	body, err := v.rest.Get(ctx, path, query, headers)
	if err != nil {
		return 0, fmt.Errorf("gateio: accounts: %w", withLabel(err))
	}
	var accounts []spotAccount
	if err := json.Unmarshal(body, &accounts); err != nil {
		return 0, fmt.Errorf("gateio: decode accounts: %w", err)
	}
	for _, a := range accounts {
		if strings.EqualFold(a.Currency, asset) {
			d, err := exchange.ParseAmount(a.Available)
			if err != nil {
				return 0, fmt.Errorf("gateio: %s balance: %w", asset, err)
			}
			return d.InexactFloat64(), nil
		}
	}
	return 0, nil
}

var _ exchange.Venue = (*Venue)(nil)
