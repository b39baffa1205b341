// Package binance implements the Binance spot venue on go-binance.
package binance

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	gbinance "github.com/adshao/go-binance/v2"
	"github.com/adshao/go-binance/v2/common"

	"github.com/alanyoungcy/venuearb/internal/domain"
	"github.com/alanyoungcy/venuearb/internal/exchange"
)

// VenueID is the configuration id of this venue.
const VenueID = "binance"

// Config holds Binance client settings.
type Config struct {
	APIKey    string
	APISecret string
	BaseURL   string
	Timeout   time.Duration
}

// Venue is the Binance spot client.
type Venue struct {
	client *gbinance.Client
	now    func() time.Time
}

// New creates a Binance venue. An empty BaseURL uses the library default.
func New(cfg Config) *Venue {
	client := gbinance.NewClient(cfg.APIKey, cfg.APISecret)
	if cfg.BaseURL != "" {
		client.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 7 * time.Second
	}
	client.HTTPClient = &http.Client{Timeout: timeout}
	return &Venue{client: client, now: time.Now}
}

func (v *Venue) ID() string { return VenueID }

// FetchQuote reads the book ticker for symbol.
func (v *Venue) FetchQuote(ctx context.Context, symbol string) (domain.Quote, error) {
	sym, err := exchange.VenueSymbol(symbol, "")
	if err != nil {
		return domain.Quote{}, err
	}
	tickers, err := v.client.NewListBookTickersService().Symbol(sym).Do(ctx)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("binance: book ticker %s: %w", sym, venueErr(err))
	}
	for _, t := range tickers {
		if t == nil || t.Symbol != sym {
			continue
		}
		bid, err := exchange.ParsePrice(t.BidPrice)
		if err != nil {
			return domain.Quote{}, fmt.Errorf("binance: %s bid: %w", sym, err)
		}
		ask, err := exchange.ParsePrice(t.AskPrice)
		if err != nil {
			return domain.Quote{}, fmt.Errorf("binance: %s ask: %w", sym, err)
		}
		return domain.Quote{Symbol: symbol, VenueID: VenueID, Bid: bid, Ask: ask, ObservedAt: v.now()}, nil
	}
	return domain.Quote{}, fmt.Errorf("binance: book ticker %s: %w", sym, domain.ErrNotFound)
}

// FetchBalance returns the free balance of asset.
func (v *Venue) FetchBalance(ctx context.Context, asset string) (float64, error) {
	acct, err := v.client.NewGetAccountService().Do(ctx)
	if err != nil {
		return 0, fmt.Errorf("binance: account: %w", venueErr(err))
	}
	for _, b := range acct.Balances {
		if strings.EqualFold(b.Asset, asset) {
			free, err := exchange.ParseAmount(b.Free)
			if err != nil {
				return 0, fmt.Errorf("binance: %s balance: %w", asset, err)
			}
			return free.InexactFloat64(), nil
		}
	}
	return 0, nil
}

// venueErr converts a Binance API error into an exchange.VenueError so it
// is classified as venue-reported.
func venueErr(err error) error {
	var apiErr *common.APIError
	if errors.As(err, &apiErr) {
		return &exchange.VenueError{
			Venue:   VenueID,
			Code:    fmt.Sprintf("%d", apiErr.Code),
			Message: apiErr.Message,
		}
	}
	return err
}

var _ exchange.Venue = (*Venue)(nil)
