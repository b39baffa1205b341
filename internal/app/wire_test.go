package app

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/venuearb/internal/config"
	"github.com/alanyoungcy/venuearb/internal/domain"
)

func TestBuildVenue(t *testing.T) {
	for _, id := range []string{"binance", "kucoin", "gateio"} {
		v, err := buildVenue(config.VenueConfig{ID: id})
		require.NoError(t, err, id)
		assert.Equal(t, id, v.ID())
	}

	_, err := buildVenue(config.VenueConfig{ID: "ftx"})
	assert.ErrorIs(t, err, domain.ErrUnknownVenue)
}

func TestWireWithoutBackingServices(t *testing.T) {
	cfg := config.Defaults()
	cfg.Redis.Enabled = false
	cfg.Postgres.Enabled = false

	deps, cleanup, err := Wire(context.Background(), &cfg,
		[]config.VenueConfig{{ID: "binance", Enabled: true}, {ID: "gateio", Enabled: true}},
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	defer cleanup()

	assert.Equal(t, []string{"binance", "gateio"}, deps.Adapter.VenueIDs())
	assert.Nil(t, deps.SignalBus)
	assert.Nil(t, deps.TradeStore)
	assert.Empty(t, deps.Health)

	a := New(&cfg, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	engine, err := a.buildEngine(deps, nil, true)
	require.NoError(t, err)
	assert.Equal(t, "trade", engine.Mode())

	engine, err = a.buildEngine(deps, nil, false)
	require.NoError(t, err)
	assert.Equal(t, "monitor", engine.Mode())
}
