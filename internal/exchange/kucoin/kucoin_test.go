package kucoin

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/venuearb/internal/domain"
	"github.com/alanyoungcy/venuearb/internal/exchange"
)

func TestFetchQuote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/market/orderbook/level1", r.URL.Path)
		assert.Equal(t, "ETH-USDT", r.URL.Query().Get("symbol"))
		_, _ = w.Write([]byte(`{"code":"200000","data":{"sequence":"1","price":"3000.5","bestBid":"3000.4","bestAsk":"3000.6","time":1700000000000}}`))
	}))
	defer srv.Close()

	q, err := New(Config{BaseURL: srv.URL}).FetchQuote(context.Background(), "ETH/USDT")
	require.NoError(t, err)
	assert.Equal(t, "ETH/USDT", q.Symbol)
	assert.Equal(t, 3000.4, *q.Bid)
	assert.Equal(t, 3000.6, *q.Ask)
}

func TestFetchQuoteMissingSide(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code":"200000","data":{"bestBid":"3000.4","bestAsk":""}}`))
	}))
	defer srv.Close()

	q, err := New(Config{BaseURL: srv.URL}).FetchQuote(context.Background(), "ETH/USDT")
	require.NoError(t, err)
	_, ok := q.AskPrice()
	assert.False(t, ok)
}

func TestFetchQuoteErrorCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code":"400100","msg":"symbol not exists"}`))
	}))
	defer srv.Close()

	_, err := New(Config{BaseURL: srv.URL}).FetchQuote(context.Background(), "NOPE/USDT")
	var ve *exchange.VenueError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "400100", ve.Code)

	var fe *domain.FetchError
	require.ErrorAs(t, exchange.Classify(VenueID, "NOPE/USDT", err), &fe)
	assert.Equal(t, domain.FetchErrorVenue, fe.Kind)
}

func TestFetchBalanceSigned(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/accounts", r.URL.Path)
		assert.Equal(t, "key", r.Header.Get("KC-API-KEY"))
		assert.NotEmpty(t, r.Header.Get("KC-API-SIGN"))
		assert.Equal(t, "2", r.Header.Get("KC-API-KEY-VERSION"))
		_, _ = w.Write([]byte(`{"code":"200000","data":[{"currency":"USDT","type":"trade","available":"125.5"}]}`))
	}))
	defer srv.Close()

	v := New(Config{BaseURL: srv.URL, APIKey: "key", APISecret: "secret", APIPassphrase: "pass"})
	bal, err := v.FetchBalance(context.Background(), "usdt")
	require.NoError(t, err)
	assert.Equal(t, 125.5, bal)
}
