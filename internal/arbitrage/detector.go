// Package arbitrage finds the single most profitable cross-venue
// buy-low/sell-high opportunity in a market snapshot.
package arbitrage

import (
	"log/slog"
	"time"

	"github.com/alanyoungcy/venuearb/internal/domain"
	"github.com/alanyoungcy/venuearb/internal/market"
)

// DetectorConfig configures the detector.
type DetectorConfig struct {
	// MinProfitPercent is the net profit a candidate must strictly exceed.
	MinProfitPercent float64
	Fees             FeeSchedule
	Logger           *slog.Logger
	Now              func() time.Time
}

// Detector evaluates every symbol and ordered venue pair in a snapshot.
// It holds no state between calls.
type Detector struct {
	minProfit float64
	fees      FeeSchedule
	logger    *slog.Logger
	now       func() time.Time
}

// NewDetector creates a detector.
func NewDetector(cfg DetectorConfig) *Detector {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Detector{
		minProfit: cfg.MinProfitPercent,
		fees:      cfg.Fees,
		logger:    cfg.Logger.With(slog.String("component", "arb_detector")),
		now:       now,
	}
}

// FindBest returns the opportunity with the highest net profit percent in
// snap, or false when no pair clears the threshold. Symbols and venues are
// visited in sorted order and only a strictly better candidate replaces the
// running best, so ties resolve to the first pair in that order. Any winner
// among equal candidates would be correct; the sorted order is chosen so that
// repeated calls on one snapshot agree.
func (d *Detector) FindBest(snap *market.Snapshot) (domain.Opportunity, bool) {
	var (
		best  domain.Opportunity
		found bool
	)
	for _, symbol := range snap.Symbols() {
		quotes := snap.QuotesFor(symbol)
		if len(quotes) < 2 {
			continue
		}
		for _, buy := range quotes {
			for _, sell := range quotes {
				if buy.VenueID == sell.VenueID {
					continue
				}
				opp, ok := d.Evaluate(symbol, buy, sell)
				if !ok {
					continue
				}
				if !found || opp.NetProfitPercent > best.NetProfitPercent {
					best, found = opp, true
				}
			}
		}
	}

	if found {
		d.logger.Info("opportunity found",
			slog.String("symbol", best.Symbol),
			slog.String("buy_venue", best.BuyVenue),
			slog.String("sell_venue", best.SellVenue),
			slog.Float64("buy_price", best.BuyPrice),
			slog.Float64("sell_price", best.SellPrice),
			slog.Float64("net_profit_percent", best.NetProfitPercent),
		)
	}
	return best, found
}

// Evaluate prices a single ordered pair: buy at buy's ask, sell at sell's
// bid. It returns false when a side is missing, the spread is not positive,
// fees consume the spread, or the net profit does not exceed the threshold.
func (d *Detector) Evaluate(symbol string, buy, sell domain.Quote) (domain.Opportunity, bool) {
	if buy.VenueID == sell.VenueID {
		return domain.Opportunity{}, false
	}
	buyPrice, ok := buy.AskPrice()
	if !ok {
		return domain.Opportunity{}, false
	}
	sellPrice, ok := sell.BidPrice()
	if !ok {
		return domain.Opportunity{}, false
	}
	if sellPrice <= buyPrice {
		return domain.Opportunity{}, false
	}

	buyFee := d.fees.TakerPercent(buy.VenueID)
	sellFee := d.fees.TakerPercent(sell.VenueID)
	cost := buyPrice * (1 + buyFee/100)
	revenue := sellPrice * (1 - sellFee/100)
	if revenue <= cost {
		return domain.Opportunity{}, false
	}

	net := (revenue - cost) / cost * 100
	if net <= d.minProfit {
		return domain.Opportunity{}, false
	}
	return domain.Opportunity{
		Symbol:           symbol,
		BuyVenue:         buy.VenueID,
		SellVenue:        sell.VenueID,
		BuyPrice:         buyPrice,
		SellPrice:        sellPrice,
		BuyFeePercent:    buyFee,
		SellFeePercent:   sellFee,
		NetProfitPercent: net,
		DetectedAt:       d.now(),
	}, true
}
