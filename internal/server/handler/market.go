package handler

import (
	"net/http"
	"time"
)

// MarketHandler exposes the current snapshot and the last opportunity.
type MarketHandler struct {
	view PipelineView
}

func NewMarketHandler(view PipelineView) *MarketHandler {
	return &MarketHandler{view: view}
}

type quoteView struct {
	Symbol     string    `json:"symbol"`
	VenueID    string    `json:"venue_id"`
	Bid        *float64  `json:"bid"`
	Ask        *float64  `json:"ask"`
	ObservedAt time.Time `json:"observed_at"`
	FetchedAt  time.Time `json:"fetched_at"`
}

// GetSnapshot lists every stored quote, optionally filtered by ?symbol=.
// GET /api/snapshot
func (h *MarketHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	snap := h.view.Snapshot()
	quotes := snap.Quotes()
	if symbol := r.URL.Query().Get("symbol"); symbol != "" {
		quotes = snap.QuotesFor(symbol)
	}

	out := make([]quoteView, 0, len(quotes))
	for _, q := range quotes {
		fetchedAt, _ := snap.FetchedAt(q.Key())
		out = append(out, quoteView{
			Symbol:     q.Symbol,
			VenueID:    q.VenueID,
			Bid:        q.Bid,
			Ask:        q.Ask,
			ObservedAt: q.ObservedAt,
			FetchedAt:  fetchedAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"quotes": out, "count": len(out)})
}

// GetLastOpportunity returns the most recent opportunity, or 404.
// GET /api/opportunity/last
func (h *MarketHandler) GetLastOpportunity(w http.ResponseWriter, r *http.Request) {
	opp, ok := h.view.LastOpportunity()
	if !ok {
		writeError(w, http.StatusNotFound, "no opportunity detected yet")
		return
	}
	writeJSON(w, http.StatusOK, opp)
}
