package journal

import "time"

// FillRecord is one executed order as the backend saw it.
type FillRecord struct {
	ID       string // journal key, time-sortable
	OrderID  string
	Symbol   string
	Side     string
	Quantity float64
	Price    float64
	Status   string
	Time     time.Time
}

// EquitySnapshot is the account state after a fill or a position update.
type EquitySnapshot struct {
	Time          time.Time
	Cash          float64
	Equity        float64
	UnrealizedPnL float64
	OpenPositions int
}

type Journal interface {
	RecordFill(FillRecord) error
	RecordEquity(EquitySnapshot) error
	Close() error
}

// Nop discards everything. Used when journaling is disabled.
type Nop struct{}

func (Nop) RecordFill(FillRecord) error       { return nil }
func (Nop) RecordEquity(EquitySnapshot) error { return nil }
func (Nop) Close() error                      { return nil }
