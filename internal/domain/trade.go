package domain

import "time"

// TradeStatus is the terminal state of a simulated two-leg trade.
type TradeStatus string

const (
	TradeStatusCompleted    TradeStatus = "completed"
	TradeStatusFailed       TradeStatus = "failed"
	TradeStatusLegImbalance TradeStatus = "leg_imbalance"
)

// TradeOutcome is the result of driving one opportunity through the
// simulator. EstimatedProfit is only meaningful when Status is completed.
type TradeOutcome struct {
	ID              string      `json:"id"`
	Opportunity     Opportunity `json:"opportunity"`
	Notional        float64     `json:"notional"`
	BaseQuantity    float64     `json:"base_quantity"`
	BuyLeg          LegResult   `json:"buy_leg"`
	SellLeg         LegResult   `json:"sell_leg"`
	EstimatedProfit float64     `json:"estimated_profit"`
	Status          TradeStatus `json:"status"`
	StartedAt       time.Time   `json:"started_at"`
	CompletedAt     time.Time   `json:"completed_at"`
}

// Err maps a non-completed outcome to its sentinel error.
func (t TradeOutcome) Err() error {
	switch t.Status {
	case TradeStatusCompleted:
		return nil
	case TradeStatusLegImbalance:
		return ErrLegImbalance
	default:
		return ErrTradeFailed
	}
}

// FilledSide returns the side that filled in a leg imbalance, or "".
func (t TradeOutcome) FilledSide() OrderSide {
	if t.Status != TradeStatusLegImbalance {
		return ""
	}
	if t.BuyLeg.Succeeded() {
		return OrderSideBuy
	}
	return OrderSideSell
}
