package exchange

import "context"

// Exchange is the capability contract every trading backend satisfies.
//
// Within one backend instance the caller is expected to invoke operations
// sequentially; the contract provides no internal serialization across call
// sites. Network I/O (the live backend) is the only place a call may block
// on something other than the CPU, which is why every operation takes a
// context.
type Exchange interface {
	// Connect establishes backend readiness. Failure is reported as false
	// rather than an error so the caller can decide on retry/backoff.
	Connect(ctx context.Context) bool

	// GetMarketPrice returns the latest price for a symbol, simulated or
	// fetched.
	GetMarketPrice(ctx context.Context, symbol string) (float64, error)

	GetBalance(ctx context.Context) (Balance, error)

	// PlaceOrder validates the request against the risk configuration
	// before any state changes, then applies the fill to the ledger and
	// balance atomically: on any failure nothing is mutated.
	PlaceOrder(ctx context.Context, req OrderRequest) (OrderResponse, error)

	// CancelOrder is idempotent. Cancelling an unknown or already-settled
	// order returns false, never an error.
	CancelOrder(ctx context.Context, orderID string) bool

	// GetPositions returns only positions with non-zero quantity.
	GetPositions(ctx context.Context) ([]Position, error)

	// UpdatePosition recomputes the mark price and unrealized PnL for the
	// named position. If the trailing stop reports triggered, the backend
	// closes the position before returning.
	UpdatePosition(ctx context.Context, symbol string, currentPrice float64) error

	// ClosePosition submits an opposite-side market order sized to fully
	// flatten the position. It returns nil when no position exists.
	ClosePosition(ctx context.Context, symbol string) (*OrderResponse, error)

	// Close releases any resources held since Connect.
	Close() error
}
