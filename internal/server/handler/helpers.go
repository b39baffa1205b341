// Package handler serves the bot's read-only status API.
package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/alanyoungcy/venuearb/internal/domain"
	"github.com/alanyoungcy/venuearb/internal/market"
)

// PipelineView is the slice of the pipeline engine the handlers read.
type PipelineView interface {
	Mode() string
	Cycles() int64
	LastCycleAt() time.Time
	LastOpportunity() (domain.Opportunity, bool)
	Snapshot() *market.Snapshot
}

// TradeJournal reads journaled trade outcomes.
type TradeJournal interface {
	ListRecent(ctx context.Context, limit int) ([]domain.TradeOutcome, error)
	Get(ctx context.Context, id string) (domain.TradeOutcome, error)
}

// Pinger is a backing service the health check probes.
type Pinger interface {
	Ping(ctx context.Context) error
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// parseLimit reads ?limit=, defaulting to 50 and capped at 500.
func parseLimit(r *http.Request) int {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	return min(limit, 500)
}
