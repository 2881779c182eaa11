// Package bot drives one exchange backend through the trading contract:
// connect, the configured entry trade, scheduled position updates, and
// status aggregation for whatever front end sits above it.
package bot

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"tradebot/config"
	"tradebot/delta"
	"tradebot/exchange"
	"tradebot/journal"
	"tradebot/paper"
)

type Bot struct {
	mu        sync.Mutex
	cfg       *config.Config
	log       *logrus.Logger
	ex        exchange.Exchange
	running   bool
	lastTrade *exchange.OrderResponse
}

// New builds a bot around the backend the configuration selects. The
// journal may be nil when journaling is disabled.
func New(cfg *config.Config, j journal.Journal, log *logrus.Logger) *Bot {
	if log == nil {
		log = logrus.New()
	}

	var ex exchange.Exchange
	if cfg.PaperTrading {
		log.Info("initializing paper trading exchange")
		ex = paper.New(paper.Config{
			InitialBalance: cfg.Paper.InitialBalance,
			InitialPrice:   cfg.Paper.InitialPrice,
			DriftPercent:   cfg.Paper.DriftPercent,
		}, cfg.RiskManagement.RiskConfig(), j, log)
	} else {
		log.Info("initializing live trading exchange")
		ex = delta.New(delta.Config{
			APIKey:  cfg.Exchange.APIKey,
			Secret:  cfg.Exchange.Secret,
			BaseURL: cfg.Exchange.BaseURL,
		}, cfg.RiskManagement.RiskConfig(), log)
	}

	return &Bot{cfg: cfg, log: log, ex: ex}
}

// Exchange exposes the backend for callers that need direct contract
// access (the dashboard layer places ad-hoc orders through it).
func (b *Bot) Exchange() exchange.Exchange { return b.ex }

// Start connects the backend, marks the bot running and places the single
// configured entry trade. Starting a running bot is a no-op.
func (b *Bot) Start(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.running {
		return nil
	}

	if !b.ex.Connect(ctx) {
		return fmt.Errorf("start bot: exchange connect failed")
	}

	b.running = true
	b.log.Info("trading bot started")

	trade, err := b.ex.PlaceOrder(ctx, exchange.OrderRequest{
		Symbol:   b.cfg.TradingPair,
		Side:     exchange.Buy,
		Quantity: b.cfg.OrderSize,
		Type:     exchange.Market,
	})
	if err != nil {
		b.running = false
		return fmt.Errorf("entry order: %w", err)
	}

	b.lastTrade = &trade
	b.log.WithFields(logrus.Fields{
		"order_id": trade.OrderID,
		"symbol":   trade.Symbol,
		"quantity": trade.Quantity,
		"price":    trade.Price,
	}).Info("entry order placed")

	return nil
}

// Stop marks the bot stopped. Stopping a stopped bot is a no-op. The
// backend's resources are released separately via Close.
func (b *Bot) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.running {
		return
	}
	b.running = false
	b.log.Info("trading bot stopped")
}

// Close releases the backend's resources.
func (b *Bot) Close() error {
	return b.ex.Close()
}

func (b *Bot) Running() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.running
}

// Run drives the caller-owned update schedule: every interval it fetches
// the market price and pushes it through UpdatePosition, which is where
// trailing stops fire. Blocks until the context is cancelled.
func (b *Bot) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !b.Running() {
				continue
			}
			price, err := b.ex.GetMarketPrice(ctx, b.cfg.TradingPair)
			if err != nil {
				b.log.WithError(err).Error("failed to fetch market price")
				continue
			}
			if err := b.ex.UpdatePosition(ctx, b.cfg.TradingPair, price); err != nil {
				b.log.WithError(err).Error("failed to update position")
			}
		}
	}
}

// Status is the aggregate view served to the dashboard layer.
type Status struct {
	IsRunning bool                    `json:"is_running"`
	Mode      string                  `json:"mode"`
	Status    string                  `json:"status"`
	Balances  map[string]float64      `json:"balances"`
	Total     float64                 `json:"total"`
	Positions []exchange.Position     `json:"positions"`
	TotalPnL  float64                 `json:"total_pnl"`
	LastTrade *exchange.OrderResponse `json:"last_trade,omitempty"`
}

// Status aggregates balances, positions and PnL from the backend.
func (b *Bot) Status(ctx context.Context) (Status, error) {
	b.mu.Lock()
	running := b.running
	lastTrade := b.lastTrade
	b.mu.Unlock()

	mode := "live"
	if b.cfg.PaperTrading {
		mode = "paper"
	}
	state := "stopped"
	if running {
		state = "running"
	}

	st := Status{
		IsRunning: running,
		Mode:      mode,
		Status:    state,
		Balances:  map[string]float64{},
		LastTrade: lastTrade,
	}

	bal, err := b.ex.GetBalance(ctx)
	if err != nil {
		return st, fmt.Errorf("get status: %w", err)
	}
	st.Balances = bal.Assets
	st.Total = bal.Total

	positions, err := b.ex.GetPositions(ctx)
	if err != nil {
		return st, fmt.Errorf("get status: %w", err)
	}
	st.Positions = positions
	for _, pos := range positions {
		st.TotalPnL += pos.UnrealizedPnL
	}

	return st, nil
}
