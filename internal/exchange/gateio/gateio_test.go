package gateio

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/venuearb/internal/exchange"
)

func TestFetchQuote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v4/spot/tickers", r.URL.Path)
		assert.Equal(t, "SOL_USDT", r.URL.Query().Get("currency_pair"))
		_, _ = w.Write([]byte(`[{"currency_pair":"SOL_USDT","last":"150.2","lowest_ask":"150.25","highest_bid":"150.15"}]`))
	}))
	defer srv.Close()

	q, err := New(Config{BaseURL: srv.URL}).FetchQuote(context.Background(), "SOL/USDT")
	require.NoError(t, err)
	assert.Equal(t, "gateio", q.VenueID)
	assert.Equal(t, 150.15, *q.Bid)
	assert.Equal(t, 150.25, *q.Ask)
}

func TestFetchQuoteLabelledError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"label":"INVALID_CURRENCY_PAIR","message":"Invalid currency pair NOPE_USDT"}`))
	}))
	defer srv.Close()

	_, err := New(Config{BaseURL: srv.URL}).FetchQuote(context.Background(), "NOPE/USDT")
	var ve *exchange.VenueError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, http.StatusBadRequest, ve.StatusCode)
	assert.Equal(t, "INVALID_CURRENCY_PAIR", ve.Code)
}

func TestFetchBalanceSigned(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v4/spot/accounts", r.URL.Path)
		assert.Equal(t, "key", r.Header.Get("KEY"))
		assert.NotEmpty(t, r.Header.Get("SIGN"))
		assert.NotEmpty(t, r.Header.Get("Timestamp"))
		_, _ = w.Write([]byte(`[{"currency":"USDT","available":"42.75","locked":"1"}]`))
	}))
	defer srv.Close()

	bal, err := New(Config{BaseURL: srv.URL, APIKey: "key", APISecret: "secret"}).FetchBalance(context.Background(), "USDT")
	require.NoError(t, err)
	assert.Equal(t, 42.75, bal)
}
