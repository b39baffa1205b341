package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/alanyoungcy/venuearb/internal/domain"
)

// TradesHandler serves journaled trade outcomes.
type TradesHandler struct {
	journal TradeJournal
	logger  *slog.Logger
}

func NewTradesHandler(journal TradeJournal, logger *slog.Logger) *TradesHandler {
	return &TradesHandler{journal: journal, logger: logger.With(slog.String("handler", "trades"))}
}

// ListRecent returns the latest outcomes.
// GET /api/trades/recent?limit=N
func (h *TradesHandler) ListRecent(w http.ResponseWriter, r *http.Request) {
	list, err := h.journal.ListRecent(r.Context(), parseLimit(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if list == nil {
		list = []domain.TradeOutcome{}
	}
	writeJSON(w, http.StatusOK, list)
}

// GetTrade returns one outcome with both legs.
// GET /api/trades/{id}
func (h *TradesHandler) GetTrade(w http.ResponseWriter, r *http.Request) {
	out, err := h.journal.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *TradesHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrJournalDisabled):
		writeError(w, http.StatusNotImplemented, "trade journal is disabled")
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "trade not found")
	default:
		h.logger.ErrorContext(r.Context(), "read trade journal failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
