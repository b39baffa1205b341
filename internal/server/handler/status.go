package handler

import (
	"net/http"
	"time"

	"github.com/alanyoungcy/venuearb/internal/domain"
)

// StatusHandler serves the bot's operational summary.
type StatusHandler struct {
	view      PipelineView
	venues    []string
	symbols   []string
	startedAt time.Time
}

func NewStatusHandler(view PipelineView, venues, symbols []string, startedAt time.Time) *StatusHandler {
	return &StatusHandler{view: view, venues: venues, symbols: symbols, startedAt: startedAt}
}

// GetStatus returns a domain.BotStatus.
// GET /api/status
func (h *StatusHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, domain.BotStatus{
		Mode:          h.view.Mode(),
		Venues:        h.venues,
		Symbols:       h.symbols,
		Cycles:        h.view.Cycles(),
		LastCycleAt:   h.view.LastCycleAt(),
		UptimeSeconds: int64(time.Since(h.startedAt).Seconds()),
	})
}
