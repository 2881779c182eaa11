package exchange

import "time"

type Side string

const (
	Buy  Side = "buy"
	Sell Side = "sell"
)

// Opposite returns the side that flattens this one.
func (s Side) Opposite() Side {
	if s == Buy {
		return Sell
	}
	return Buy
}

type OrderType string

const (
	Market OrderType = "market"
	Limit  OrderType = "limit"
)

type OrderStatus string

const (
	StatusFilled    OrderStatus = "filled"
	StatusOpen      OrderStatus = "open"
	StatusCancelled OrderStatus = "cancelled"
	StatusRejected  OrderStatus = "rejected"
)

// OrderRequest describes an order to be submitted to a backend.
// Price is required for limit orders and ignored for market orders.
type OrderRequest struct {
	Symbol     string
	Side       Side
	Quantity   float64
	Type       OrderType
	Price      *float64
	StopLoss   *float64
	TakeProfit *float64
}

// OrderResponse is the backend's record of a submitted order.
// It is immutable once returned.
type OrderResponse struct {
	OrderID   string
	Symbol    string
	Side      Side
	Quantity  float64
	Price     float64
	Status    OrderStatus
	Timestamp time.Time
}

// Position is the per-symbol exposure held by a backend's ledger.
// EntryPrice is a running weighted average across same-direction fills;
// a position with zero quantity is removed from the ledger rather than kept.
type Position struct {
	Symbol        string
	Side          Side
	Quantity      float64
	EntryPrice    float64
	CurrentPrice  float64
	UnrealizedPnL float64
	Timestamp     time.Time
}

// Balance is a snapshot of available funds per asset plus the derived
// total valuation (cash + open positions at the current mark).
type Balance struct {
	Assets map[string]float64
	Total  float64
}

// Available returns the available amount for an asset, zero if absent.
func (b Balance) Available(asset string) float64 {
	return b.Assets[asset]
}
