// Package kucoin implements the KuCoin spot venue over its REST API.
package kucoin

import (
	"context"
	"encoding/json"
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
	VenueID        = "kucoin"
	defaultBaseURL = "https://api.kucoin.com"
	codeOK         = "200000"
)

// Config holds KuCoin client settings.
type Config struct {
	APIKey        string
	APISecret     string
	APIPassphrase string
	BaseURL       string
	Timeout       time.Duration
}

// Venue is the KuCoin spot client.
type Venue struct {
	rest *exchange.RESTClient
	auth *crypto.HMACAuth
	now  func() time.Time
}

// New creates a KuCoin venue.
func New(cfg Config) *Venue {
	base := cfg.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	return &Venue{
		rest: exchange.NewRESTClient(VenueID, base, cfg.Timeout),
		auth: &crypto.HMACAuth{Key: cfg.APIKey, Secret: cfg.APISecret, Passphrase: cfg.APIPassphrase},
		now:  time.Now,
	}
}

func (v *Venue) ID() string { return VenueID }

type envelope struct {
	Code string          `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

func decode(body []byte, out any) error {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("kucoin: decode response: %w", err)
	}
	if env.Code != codeOK {
		return &exchange.VenueError{Venue: VenueID, StatusCode: 200, Code: env.Code, Message: env.Msg}
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return domain.ErrNotFound
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("kucoin: decode data: %w", err)
	}
	return nil
}

type level1 struct {
	BestBid string `json:"bestBid"`
	BestAsk string `json:"bestAsk"`
	Time    int64  `json:"time"`
}

// FetchQuote reads the level-1 order book for symbol.
func (v *Venue) FetchQuote(ctx context.Context, symbol string) (domain.Quote, error) {
	sym, err := exchange.VenueSymbol(symbol, "-")
	if err != nil {
		return domain.Quote{}, err
	}
	body, err := v.rest.Get(ctx, "/api/v1/market/orderbook/level1", url.Values{"symbol": {sym}}, nil)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("kucoin: level1 %s: %w", sym, err)
	}

	var l1 level1
	if err := decode(body, &l1); err != nil {
		return domain.Quote{}, fmt.Errorf("kucoin: level1 %s: %w", sym, err)
	}
	bid, err := exchange.ParsePrice(l1.BestBid)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("kucoin: %s bid: %w", sym, err)
	}
	ask, err := exchange.ParsePrice(l1.BestAsk)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("kucoin: %s ask: %w", sym, err)
	}
	return domain.Quote{Symbol: symbol, VenueID: VenueID, Bid: bid, Ask: ask, ObservedAt: v.now()}, nil
}

type account struct {
	Currency  string `json:"currency"`
	Type      string `json:"type"`
	Available string `json:"available"`
}

// FetchBalance sums the available trade-account balance of asset.
func (v *Venue) FetchBalance(ctx context.Context, asset string) (float64, error) {
	asset = strings.ToUpper(asset)
	query := url.Values{"currency": {asset}, "type": {"trade"}}
	path := "/api/v1/accounts"
	headers := v.auth.KuCoinHeaders("GET", path+"?"+query.Encode(), "")

	body, err := v.rest.Get(ctx, path, query, headers)
	if err != nil {
		return 0, fmt.Errorf("kucoin: accounts: %w", err)
	}
	var accounts []account
	if err := decode(body, &accounts); err != nil {
		return 0, fmt.Errorf("kucoin: accounts: %w", err)
	}

	var total float64
	for _, a := range accounts {
		if !strings.EqualFold(a.Currency, asset) {
			continue
		}
		d, err := exchange.ParseAmount(a.Available)
		if err != nil {
			return 0, fmt.Errorf("kucoin: %s balance: %w", asset, err)
		}
		total += d.InexactFloat64()
	}
	return total, nil
}

var _ exchange.Venue = (*Venue)(nil)
