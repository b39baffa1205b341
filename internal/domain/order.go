package domain

// OrderSide indicates whether this is a buy or sell.
type OrderSide string

const (
	OrderSideBuy  OrderSide = "buy"
	OrderSideSell OrderSide = "sell"
)

// OrderStatusClosed is reported for every simulated order that was accepted.
const OrderStatusClosed = "closed"

// OrderResult is what a venue reports back for a placed (or simulated) order.
type OrderResult struct {
	OrderID  string  `json:"order_id"`
	Status   string  `json:"status"`
	Quantity float64 `json:"quantity"`
}
