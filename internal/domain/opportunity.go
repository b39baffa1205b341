package domain

import "time"

// Opportunity is a fee-adjusted buy-low/sell-high candidate for one symbol
// across two distinct venues. BuyPrice is the buy venue's ask and SellPrice
// the sell venue's bid at detection time.
type Opportunity struct {
	Symbol           string    `json:"symbol"`
	BuyVenue         string    `json:"buy_venue"`
	SellVenue        string    `json:"sell_venue"`
	BuyPrice         float64   `json:"buy_price"`
	SellPrice        float64   `json:"sell_price"`
	BuyFeePercent    float64   `json:"buy_fee_percent"`
	SellFeePercent   float64   `json:"sell_fee_percent"`
	NetProfitPercent float64   `json:"net_profit_percent"`
	DetectedAt       time.Time `json:"detected_at"`
}
