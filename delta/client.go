// Package delta implements the Exchange contract against the Delta
// Exchange REST API using signed requests.
package delta

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"tradebot/exchange"
	"tradebot/risk"
)

// Config carries the credentials and endpoint for one account.
type Config struct {
	APIKey  string
	Secret  string
	BaseURL string // e.g. https://api.delta.exchange/v2
}

// Client is the live trading backend. The HTTP session is acquired by
// Connect and released by Close; every authenticated call signs
// timestamp+method+path+body with HMAC-SHA256.
//
// This layer never retries: any transport failure or non-success status is
// surfaced to the caller, which owns the retry policy.
type Client struct {
	apiKey  string
	secret  string
	baseURL string
	riskCfg *risk.Config
	log     *logrus.Logger
	http    *http.Client
}

var _ exchange.Exchange = (*Client)(nil)

func New(cfg Config, riskCfg *risk.Config, log *logrus.Logger) *Client {
	if log == nil {
		log = logrus.New()
	}
	return &Client{
		apiKey:  cfg.APIKey,
		secret:  cfg.Secret,
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		riskCfg: riskCfg,
		log:     log,
	}
}

// Connect acquires the HTTP session and probes the exchange with a time
// request. Success means a well-formed response, not just a TCP connect.
// Failure is reported as false so the caller can decide whether to retry.
func (c *Client) Connect(ctx context.Context) bool {
	c.http = &http.Client{Timeout: 30 * time.Second}

	var probe struct {
		ServerTime json.Number `json:"server_time"`
	}
	if err := c.request(ctx, http.MethodGet, "/time", nil, &probe); err != nil {
		c.log.WithError(err).Error("failed to connect to Delta Exchange")
		return false
	}

	c.log.Info("connected to Delta Exchange")
	return true
}

// Close releases the network session. Safe to call before Connect.
func (c *Client) Close() error {
	if c.http != nil {
		c.http.CloseIdleConnections()
		c.http = nil
	}
	return nil
}

func (c *Client) request(ctx context.Context, method, path string, payload, out any) error {
	if c.http == nil {
		return fmt.Errorf("%s %s: not connected, call Connect first", method, path)
	}

	var body []byte
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		body = b
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	timestamp := strconv.FormatInt(time.Now().UnixMilli(), 10)
	req.Header.Set("api-key", c.apiKey)
	req.Header.Set("timestamp", timestamp)
	req.Header.Set("signature", sign(c.secret, timestamp, method, path, string(body)))
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		return &exchange.APIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) GetMarketPrice(ctx context.Context, symbol string) (float64, error) {
	var ticker struct {
		MarkPrice decimal.Decimal `json:"mark_price"`
	}
	if err := c.request(ctx, http.MethodGet, "/tickers/"+symbol, nil, &ticker); err != nil {
		return 0, fmt.Errorf("get market price %s: %w", symbol, err)
	}
	return ticker.MarkPrice.InexactFloat64(), nil
}

func (c *Client) GetBalance(ctx context.Context) (exchange.Balance, error) {
	var wallets []struct {
		Currency         string          `json:"currency"`
		AvailableBalance decimal.Decimal `json:"available_balance"`
	}
	if err := c.request(ctx, http.MethodGet, "/wallet/balances", nil, &wallets); err != nil {
		return exchange.Balance{}, fmt.Errorf("get balance: %w", err)
	}

	bal := exchange.Balance{Assets: make(map[string]float64, len(wallets))}
	for _, w := range wallets {
		avail := w.AvailableBalance.InexactFloat64()
		bal.Assets[w.Currency] = avail
		bal.Total += avail
	}
	return bal, nil
}

// wireOrder is the order submission payload. Side and type are upper-cased
// on the wire and mapped back to the canonical lower-case tokens on return.
type wireOrder struct {
	Symbol      string   `json:"symbol"`
	Side        string   `json:"side"`
	Size        float64  `json:"size"`
	Type        string   `json:"type"`
	Price       *float64 `json:"price"`
	StopPrice   *float64 `json:"stop_price"`
	TimeInForce string   `json:"time_in_force"`
}

type wireOrderResult struct {
	ID        json.Number     `json:"id"`
	Symbol    string          `json:"symbol"`
	Side      string          `json:"side"`
	Size      decimal.Decimal `json:"size"`
	Price     decimal.Decimal `json:"price"`
	Status    string          `json:"status"`
	CreatedAt int64           `json:"created_at"` // millisecond epoch
}

func (c *Client) PlaceOrder(ctx context.Context, req exchange.OrderRequest) (exchange.OrderResponse, error) {
	if err := risk.ValidateOrder(req, c.riskCfg); err != nil {
		return exchange.OrderResponse{}, err
	}

	payload := wireOrder{
		Symbol:      req.Symbol,
		Side:        strings.ToUpper(string(req.Side)),
		Size:        req.Quantity,
		Type:        strings.ToUpper(string(req.Type)),
		StopPrice:   req.StopLoss,
		TimeInForce: "GTC",
	}
	if req.Type == exchange.Limit {
		payload.Price = req.Price
	}

	var result wireOrderResult
	if err := c.request(ctx, http.MethodPost, "/orders", payload, &result); err != nil {
		return exchange.OrderResponse{}, fmt.Errorf("place order %s %s: %w", req.Side, req.Symbol, err)
	}

	return exchange.OrderResponse{
		OrderID:   result.ID.String(),
		Symbol:    result.Symbol,
		Side:      exchange.Side(strings.ToLower(result.Side)),
		Quantity:  result.Size.InexactFloat64(),
		Price:     result.Price.InexactFloat64(),
		Status:    exchange.OrderStatus(strings.ToLower(result.Status)),
		Timestamp: time.UnixMilli(result.CreatedAt),
	}, nil
}

// CancelOrder is idempotent: an unknown or already-settled order returns
// false rather than an error.
func (c *Client) CancelOrder(ctx context.Context, orderID string) bool {
	if err := c.request(ctx, http.MethodDelete, "/orders/"+orderID, nil, nil); err != nil {
		c.log.WithError(err).WithField("order_id", orderID).Error("failed to cancel order")
		return false
	}
	return true
}

type wirePosition struct {
	Symbol        string          `json:"symbol"`
	Size          decimal.Decimal `json:"size"`
	EntryPrice    decimal.Decimal `json:"entry_price"`
	MarkPrice     decimal.Decimal `json:"mark_price"`
	UnrealizedPnL decimal.Decimal `json:"unrealized_pnl"`
	UpdatedAt     int64           `json:"updated_at"` // millisecond epoch
}

// GetPositions maps the exchange's signed-size positions into canonical
// form: negative size means short, zero-size entries are dropped.
func (c *Client) GetPositions(ctx context.Context) ([]exchange.Position, error) {
	var wire []wirePosition
	if err := c.request(ctx, http.MethodGet, "/positions", nil, &wire); err != nil {
		return nil, fmt.Errorf("get positions: %w", err)
	}

	positions := make([]exchange.Position, 0, len(wire))
	for _, p := range wire {
		size := p.Size.InexactFloat64()
		if size == 0 {
			continue
		}
		side := exchange.Buy
		if size < 0 {
			side = exchange.Sell
			size = -size
		}
		positions = append(positions, exchange.Position{
			Symbol:        p.Symbol,
			Side:          side,
			Quantity:      size,
			EntryPrice:    p.EntryPrice.InexactFloat64(),
			CurrentPrice:  p.MarkPrice.InexactFloat64(),
			UnrealizedPnL: p.UnrealizedPnL.InexactFloat64(),
			Timestamp:     time.UnixMilli(p.UpdatedAt),
		})
	}
	return positions, nil
}

func (c *Client) UpdatePosition(ctx context.Context, symbol string, currentPrice float64) error {
	positions, err := c.GetPositions(ctx)
	if err != nil {
		return fmt.Errorf("update position %s: %w", symbol, err)
	}

	for i := range positions {
		pos := &positions[i]
		if pos.Symbol != symbol {
			continue
		}
		pos.CurrentPrice = currentPrice
		pos.UnrealizedPnL = risk.UnrealizedPnL(*pos, currentPrice)

		if risk.TrailingStop(pos, c.riskCfg, currentPrice) {
			if _, err := c.ClosePosition(ctx, symbol); err != nil {
				return fmt.Errorf("close %s after trailing stop: %w", symbol, err)
			}
			c.log.WithField("symbol", symbol).Info("trailing stop loss triggered")
		}
		break
	}
	return nil
}

func (c *Client) ClosePosition(ctx context.Context, symbol string) (*exchange.OrderResponse, error) {
	positions, err := c.GetPositions(ctx)
	if err != nil {
		return nil, fmt.Errorf("close position %s: %w", symbol, err)
	}

	var pos *exchange.Position
	for i := range positions {
		if positions[i].Symbol == symbol {
			pos = &positions[i]
			break
		}
	}
	if pos == nil {
		return nil, nil
	}

	resp, err := c.PlaceOrder(ctx, exchange.OrderRequest{
		Symbol:   symbol,
		Side:     pos.Side.Opposite(),
		Quantity: pos.Quantity,
		Type:     exchange.Market,
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}
