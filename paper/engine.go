package paper

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"tradebot/exchange"
	"tradebot/journal"
	"tradebot/pkg/id"
	"tradebot/risk"
)

// Config holds the simulator's starting conditions.
type Config struct {
	InitialBalance float64 // quote-currency cash, default 10000
	InitialPrice   float64 // starting mark, default 50000
	DriftPercent   float64 // random-walk half band, default 0.1
	Seed           int64   // 0 seeds from the clock
}

func (c Config) withDefaults() Config {
	if c.InitialBalance == 0 {
		c.InitialBalance = 10000
	}
	if c.InitialPrice == 0 {
		c.InitialPrice = 50000
	}
	if c.DriftPercent == 0 {
		c.DriftPercent = 0.1
	}
	return c
}

// Engine is the in-memory paper trading backend. Orders always fill
// immediately at the current simulated price; there are no resting limit
// orders and no partial fills.
//
// The engine owns its cash balance and position ledger outright. The mutex
// keeps the ledger coherent if callers overlap, but the contract still
// expects sequential use per instance.
type Engine struct {
	mu        sync.Mutex
	cfg       *risk.Config
	log       *logrus.Logger
	journal   journal.Journal
	walk      *priceWalk
	cash      float64
	positions map[string]*exchange.Position
	orders    map[string]exchange.OrderResponse
	orderSeq  int
}

var _ exchange.Exchange = (*Engine)(nil)

func New(cfg Config, riskCfg *risk.Config, j journal.Journal, log *logrus.Logger) *Engine {
	cfg = cfg.withDefaults()
	if j == nil {
		j = journal.Nop{}
	}
	if log == nil {
		log = logrus.New()
	}
	return &Engine{
		cfg:       riskCfg,
		log:       log,
		journal:   j,
		walk:      newPriceWalk(cfg.InitialPrice, cfg.DriftPercent, cfg.Seed),
		cash:      cfg.InitialBalance,
		positions: make(map[string]*exchange.Position),
		orders:    make(map[string]exchange.OrderResponse),
	}
}

// Connect is a no-op success: the simulator has nothing to reach.
func (e *Engine) Connect(ctx context.Context) bool {
	return true
}

func (e *Engine) GetMarketPrice(ctx context.Context, symbol string) (float64, error) {
	return e.walk.Next(), nil
}

func (e *Engine) GetBalance(ctx context.Context) (exchange.Balance, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var held float64
	for _, pos := range e.positions {
		held += pos.Quantity
	}

	last := e.walk.Last()
	return exchange.Balance{
		Assets: map[string]float64{
			"USDT": e.cash,
			"BTC":  held,
		},
		Total: e.cash + held*last,
	}, nil
}

func (e *Engine) PlaceOrder(ctx context.Context, req exchange.OrderRequest) (exchange.OrderResponse, error) {
	if err := risk.ValidateOrder(req, e.cfg); err != nil {
		return exchange.OrderResponse{}, err
	}

	// Fills are immediate at the walked price regardless of order type.
	price := e.walk.Next()

	e.mu.Lock()

	switch req.Side {
	case exchange.Buy:
		cost := price * req.Quantity
		if cost > e.cash {
			e.mu.Unlock()
			return exchange.OrderResponse{}, fmt.Errorf("buy %g %s at %.2f: %w",
				req.Quantity, req.Symbol, price, exchange.ErrInsufficientFunds)
		}
		e.cash -= cost
		e.merge(req.Symbol, req.Quantity, price)

	case exchange.Sell:
		pos, ok := e.positions[req.Symbol]
		if !ok || pos.Quantity < req.Quantity {
			e.mu.Unlock()
			return exchange.OrderResponse{}, fmt.Errorf("sell %g %s: %w",
				req.Quantity, req.Symbol, exchange.ErrInsufficientPosition)
		}
		e.cash += price * req.Quantity
		pos.Quantity -= req.Quantity
		if pos.Quantity <= 0 {
			delete(e.positions, req.Symbol)
		}

	default:
		e.mu.Unlock()
		return exchange.OrderResponse{}, &exchange.ValidationError{
			Reason: fmt.Sprintf("unknown side %q", req.Side),
		}
	}

	e.orderSeq++
	resp := exchange.OrderResponse{
		OrderID:   fmt.Sprintf("paper_order_%d", e.orderSeq),
		Symbol:    req.Symbol,
		Side:      req.Side,
		Quantity:  req.Quantity,
		Price:     price,
		Status:    exchange.StatusFilled,
		Timestamp: time.Now(),
	}
	e.orders[resp.OrderID] = resp

	e.mu.Unlock()

	if err := e.journal.RecordFill(journal.FillRecord{
		ID:       id.New(),
		OrderID:  resp.OrderID,
		Symbol:   resp.Symbol,
		Side:     string(resp.Side),
		Quantity: resp.Quantity,
		Price:    resp.Price,
		Status:   string(resp.Status),
		Time:     resp.Timestamp,
	}); err != nil {
		e.log.WithError(err).Warn("journal fill record failed")
	}

	return resp, nil
}

// merge folds a buy fill into the ledger using a weighted-average entry
// price across same-direction fills.
func (e *Engine) merge(symbol string, qty, price float64) {
	pos, ok := e.positions[symbol]
	if !ok {
		e.positions[symbol] = &exchange.Position{
			Symbol:        symbol,
			Side:          exchange.Buy,
			Quantity:      qty,
			EntryPrice:    price,
			CurrentPrice:  price,
			UnrealizedPnL: 0,
			Timestamp:     time.Now(),
		}
		return
	}

	total := pos.Quantity + qty
	pos.EntryPrice = (pos.Quantity*pos.EntryPrice + qty*price) / total
	pos.Quantity = total
	pos.CurrentPrice = price
}

// CancelOrder removes the order record. Fills are immediate, so cancelling
// never reverses a fill; an unknown or already-removed ID returns false.
func (e *Engine) CancelOrder(ctx context.Context, orderID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.orders[orderID]; !ok {
		return false
	}
	delete(e.orders, orderID)
	return true
}

// GetPositions revalues every open position at a fresh simulated price and
// returns the result. Only non-zero positions exist in the ledger.
func (e *Engine) GetPositions(ctx context.Context) ([]exchange.Position, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]exchange.Position, 0, len(e.positions))
	for _, pos := range e.positions {
		price := e.walk.Next()
		pos.CurrentPrice = price
		pos.UnrealizedPnL = risk.UnrealizedPnL(*pos, price)
		out = append(out, *pos)
	}
	return out, nil
}

func (e *Engine) UpdatePosition(ctx context.Context, symbol string, currentPrice float64) error {
	e.mu.Lock()

	pos, ok := e.positions[symbol]
	if !ok {
		e.mu.Unlock()
		return nil
	}

	pos.CurrentPrice = currentPrice
	pos.UnrealizedPnL = risk.UnrealizedPnL(*pos, currentPrice)

	snap := e.equityLocked(currentPrice)
	triggered := risk.TrailingStop(pos, e.cfg, currentPrice)

	e.mu.Unlock()

	if err := e.journal.RecordEquity(snap); err != nil {
		e.log.WithError(err).Warn("journal equity record failed")
	}

	if triggered {
		e.log.WithField("symbol", symbol).Info("trailing stop loss triggered")
		if _, err := e.ClosePosition(ctx, symbol); err != nil {
			return fmt.Errorf("close %s after trailing stop: %w", symbol, err)
		}
	}
	return nil
}

func (e *Engine) equityLocked(mark float64) journal.EquitySnapshot {
	var unrealized float64
	for _, pos := range e.positions {
		unrealized += pos.UnrealizedPnL
	}
	var held float64
	for _, pos := range e.positions {
		held += pos.Quantity
	}
	return journal.EquitySnapshot{
		Time:          time.Now(),
		Cash:          e.cash,
		Equity:        e.cash + held*mark,
		UnrealizedPnL: unrealized,
		OpenPositions: len(e.positions),
	}
}

// ClosePosition flattens the named position with an opposite-side market
// order. It returns nil when there is nothing to close.
func (e *Engine) ClosePosition(ctx context.Context, symbol string) (*exchange.OrderResponse, error) {
	e.mu.Lock()
	pos, ok := e.positions[symbol]
	if !ok {
		e.mu.Unlock()
		return nil, nil
	}
	req := exchange.OrderRequest{
		Symbol:   symbol,
		Side:     pos.Side.Opposite(),
		Quantity: pos.Quantity,
		Type:     exchange.Market,
	}
	e.mu.Unlock()

	resp, err := e.PlaceOrder(ctx, req)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (e *Engine) Close() error {
	return nil
}
