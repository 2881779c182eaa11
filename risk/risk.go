package risk

import (
	"fmt"

	"tradebot/exchange"
)

// TrailingStopType enables the trailing stop-loss check; any other value
// disables it.
const TrailingStopType = "trailing"

// Config holds the risk limits a backend enforces. It is loaded once per
// engine instance and never mutated afterwards; backends hold a reference
// and pass it to the functions below.
type Config struct {
	MaxTradeSize float64  `json:"max_trade_size" yaml:"max_trade_size"`
	StopLoss     StopLoss `json:"stop_loss" yaml:"stop_loss"`
}

type StopLoss struct {
	Type              string  `json:"type" yaml:"type"`
	ActivationPercent float64 `json:"activation_percent" yaml:"activation_percent"`
	TrailPercent      float64 `json:"trail_percent" yaml:"trail_percent"`
}

// ValidateOrder checks an order request against the configured limits.
// It is a pure function of the request and the config: no ledger or
// network access, and it never mutates either argument.
func ValidateOrder(req exchange.OrderRequest, cfg *Config) error {
	if req.Type == exchange.Limit && req.Price == nil {
		return &exchange.ValidationError{Reason: "limit orders require a price"}
	}
	if req.Quantity <= 0 {
		return &exchange.ValidationError{Reason: "order quantity must be positive"}
	}
	if req.Quantity > cfg.MaxTradeSize {
		return &exchange.ValidationError{
			Reason: fmt.Sprintf("order quantity %g exceeds maximum trade size %g", req.Quantity, cfg.MaxTradeSize),
		}
	}
	return nil
}

// UnrealizedPnL values an open position at the given mark price.
func UnrealizedPnL(pos exchange.Position, currentPrice float64) float64 {
	if pos.Side == exchange.Buy {
		return (currentPrice - pos.EntryPrice) * pos.Quantity
	}
	return (pos.EntryPrice - currentPrice) * pos.Quantity
}

// TrailingStop reports whether the trailing stop-loss has been hit for a
// position at the given mark price. It returns false when there is no
// position or the configured stop type is not trailing.
//
// The reference high is re-derived from the current profit snapshot on
// every call, max(entry*(1+profit%/100), current), rather than tracked as
// a running maximum across updates. A price that retreats from an earlier,
// higher peak and partially recovers therefore cannot trigger the stop.
// This matches the behavior the rest of the system was built against; see
// the known-discrepancy test before changing it.
func TrailingStop(pos *exchange.Position, cfg *Config, currentPrice float64) bool {
	if pos == nil {
		return false
	}
	if cfg.StopLoss.Type != TrailingStopType {
		return false
	}

	profitPercent := (currentPrice - pos.EntryPrice) / pos.EntryPrice * 100

	if profitPercent < cfg.StopLoss.ActivationPercent {
		return false
	}

	high := pos.EntryPrice * (1 + profitPercent/100)
	if currentPrice > high {
		high = currentPrice
	}

	return currentPrice <= high*(1-cfg.StopLoss.TrailPercent/100)
}
