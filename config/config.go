package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"tradebot/risk"
)

// Config is the complete bot configuration.
type Config struct {
	PaperTrading   bool           `json:"paper_trading" yaml:"paper_trading"`
	TradingPair    string         `json:"trading_pair" yaml:"trading_pair"`
	OrderSize      float64        `json:"order_size" yaml:"order_size"`
	RiskManagement RiskManagement `json:"risk_management" yaml:"risk_management"`
	Exchange       ExchangeConfig `json:"exchange" yaml:"exchange"`
	Paper          PaperConfig    `json:"paper" yaml:"paper"`
	Journal        JournalConfig  `json:"journal" yaml:"journal"`
	Log            LogConfig      `json:"log" yaml:"log"`
}

// RiskManagement mirrors the nested risk limit schema.
type RiskManagement struct {
	PositionSize PositionSize  `json:"position_size" yaml:"position_size"`
	StopLoss     risk.StopLoss `json:"stop_loss" yaml:"stop_loss"`
}

type PositionSize struct {
	MaxTradeSize float64 `json:"max_trade_size" yaml:"max_trade_size"`
}

// RiskConfig flattens the schema into the engine's risk configuration.
func (rm RiskManagement) RiskConfig() *risk.Config {
	return &risk.Config{
		MaxTradeSize: rm.PositionSize.MaxTradeSize,
		StopLoss:     rm.StopLoss,
	}
}

// ExchangeConfig holds live exchange credentials and endpoint.
type ExchangeConfig struct {
	APIKey  string `json:"apiKey" yaml:"apiKey"`
	Secret  string `json:"secret" yaml:"secret"`
	BaseURL string `json:"base_url" yaml:"base_url"`
}

// PaperConfig holds the paper engine's starting conditions.
type PaperConfig struct {
	InitialBalance float64 `json:"initial_balance" yaml:"initial_balance"`
	InitialPrice   float64 `json:"initial_price" yaml:"initial_price"`
	DriftPercent   float64 `json:"drift_percent" yaml:"drift_percent"`
}

// JournalConfig selects the fill/equity journal sink.
type JournalConfig struct {
	Type       string `json:"type" yaml:"type"` // "csv", "sqlite" or "none"
	FillsFile  string `json:"fills_file,omitempty" yaml:"fills_file,omitempty"`
	EquityFile string `json:"equity_file,omitempty" yaml:"equity_file,omitempty"`
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// LogConfig controls the injected logger.
type LogConfig struct {
	Level      string `json:"level" yaml:"level"`
	File       string `json:"file,omitempty" yaml:"file,omitempty"`
	MaxSizeMB  int    `json:"max_size_mb,omitempty" yaml:"max_size_mb,omitempty"`
	MaxBackups int    `json:"max_backups,omitempty" yaml:"max_backups,omitempty"`
}

// LoadFromFile loads configuration from a YAML or JSON file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile writes the configuration, choosing the format by extension.
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// ApplyEnv overlays credentials from the environment so secrets stay out
// of config files. Called after LoadFromFile, before Validate matters.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("DELTA_API_KEY"); v != "" {
		c.Exchange.APIKey = v
	}
	if v := os.Getenv("DELTA_API_SECRET"); v != "" {
		c.Exchange.Secret = v
	}
	if v := os.Getenv("DELTA_BASE_URL"); v != "" {
		c.Exchange.BaseURL = v
	}
}

// Validate rejects unknown or missing required fields at load time rather
// than at first use.
func (c *Config) Validate() error {
	if c.TradingPair == "" {
		return fmt.Errorf("trading_pair is required")
	}
	if c.OrderSize <= 0 {
		return fmt.Errorf("order_size must be positive")
	}
	if c.RiskManagement.PositionSize.MaxTradeSize <= 0 {
		return fmt.Errorf("risk_management.position_size.max_trade_size must be positive")
	}
	sl := c.RiskManagement.StopLoss
	if sl.Type == risk.TrailingStopType {
		if sl.ActivationPercent < 0 {
			return fmt.Errorf("risk_management.stop_loss.activation_percent must not be negative")
		}
		if sl.TrailPercent < 0 {
			return fmt.Errorf("risk_management.stop_loss.trail_percent must not be negative")
		}
	}
	if !c.PaperTrading {
		if c.Exchange.APIKey == "" {
			return fmt.Errorf("exchange.apiKey is required for live trading")
		}
		if c.Exchange.Secret == "" {
			return fmt.Errorf("exchange.secret is required for live trading")
		}
		if c.Exchange.BaseURL == "" {
			return fmt.Errorf("exchange.base_url is required for live trading")
		}
	}
	if c.Paper.InitialBalance < 0 {
		return fmt.Errorf("paper.initial_balance must not be negative")
	}
	if c.Paper.DriftPercent < 0 {
		return fmt.Errorf("paper.drift_percent must not be negative")
	}
	switch c.Journal.Type {
	case "", "none":
	case "csv":
		if c.Journal.FillsFile == "" || c.Journal.EquityFile == "" {
			return fmt.Errorf("journal fills_file and equity_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	default:
		return fmt.Errorf("journal.type must be 'csv', 'sqlite' or 'none'")
	}
	return nil
}

// Default returns the configuration the bot falls back to when no file is
// supplied: paper trading on BTC-USDT with trailing stop risk limits.
func Default() *Config {
	return &Config{
		PaperTrading: true,
		TradingPair:  "BTC-USDT",
		OrderSize:    0.01,
		RiskManagement: RiskManagement{
			PositionSize: PositionSize{MaxTradeSize: 1.0},
			StopLoss: risk.StopLoss{
				Type:              risk.TrailingStopType,
				ActivationPercent: 1.0,
				TrailPercent:      0.5,
			},
		},
		Paper: PaperConfig{
			InitialBalance: 10000,
			InitialPrice:   50000,
			DriftPercent:   0.1,
		},
		Journal: JournalConfig{Type: "none"},
		Log:     LogConfig{Level: "info"},
	}
}
