package binance

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
		assert.Equal(t, "/api/v3/ticker/bookTicker", r.URL.Path)
		assert.Equal(t, "BTCUSDT", r.URL.Query().Get("symbol"))
		_, _ = w.Write([]byte(`{"symbol":"BTCUSDT","bidPrice":"64000.10","bidQty":"1.2","askPrice":"64000.20","askQty":"0.8"}`))
	}))
	defer srv.Close()

	v := New(Config{BaseURL: srv.URL})
	q, err := v.FetchQuote(context.Background(), "BTC/USDT")
	require.NoError(t, err)

	assert.Equal(t, "BTC/USDT", q.Symbol)
	assert.Equal(t, VenueID, q.VenueID)
	require.NotNil(t, q.Bid)
	require.NotNil(t, q.Ask)
	assert.Equal(t, 64000.10, *q.Bid)
	assert.Equal(t, 64000.20, *q.Ask)
}

func TestFetchQuoteAPIErrorIsVenueError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":-1121,"msg":"Invalid symbol."}`))
	}))
	defer srv.Close()

	v := New(Config{BaseURL: srv.URL})
	_, err := v.FetchQuote(context.Background(), "BTC/USDT")
	require.Error(t, err)

	classified := exchange.Classify(VenueID, "BTC/USDT", err)
	var fe *domain.FetchError
	require.ErrorAs(t, classified, &fe)
	assert.Equal(t, domain.FetchErrorVenue, fe.Kind)
}

func TestFetchQuoteRejectsBadSymbol(t *testing.T) {
	v := New(Config{BaseURL: "http://127.0.0.1:0"})
	_, err := v.FetchQuote(context.Background(), "BTCUSDT")
	assert.Error(t, err)
}
