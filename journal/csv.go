package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"
)

type CSV struct {
	fills  *csv.Writer
	equity *csv.Writer
	ff, ef *os.File
}

func NewCSV(fillsPath, equityPath string) (*CSV, error) {
	ff, err := os.Create(fillsPath)
	if err != nil {
		return nil, err
	}
	ef, err := os.Create(equityPath)
	if err != nil {
		ff.Close()
		return nil, err
	}

	fw := csv.NewWriter(ff)
	ew := csv.NewWriter(ef)

	if err := fw.Write([]string{"id", "order_id", "symbol", "side", "quantity", "price", "status", "time"}); err != nil {
		return nil, err
	}
	if err := ew.Write([]string{"time", "cash", "equity", "unrealized_pnl", "open_positions"}); err != nil {
		return nil, err
	}

	fw.Flush()
	if err := fw.Error(); err != nil {
		return nil, err
	}
	ew.Flush()
	if err := ew.Error(); err != nil {
		return nil, err
	}

	return &CSV{fw, ew, ff, ef}, nil
}

func (j *CSV) RecordFill(r FillRecord) error {
	err := j.fills.Write([]string{
		r.ID,
		r.OrderID,
		r.Symbol,
		r.Side,
		f(r.Quantity),
		f(r.Price),
		r.Status,
		r.Time.Format(time.RFC3339),
	})
	if err != nil {
		return err
	}

	j.fills.Flush()
	return j.fills.Error()
}

func (j *CSV) RecordEquity(e EquitySnapshot) error {
	err := j.equity.Write([]string{
		e.Time.Format(time.RFC3339),
		f(e.Cash),
		f(e.Equity),
		f(e.UnrealizedPnL),
		strconv.Itoa(e.OpenPositions),
	})
	if err != nil {
		return err
	}

	j.equity.Flush()
	return j.equity.Error()
}

func (j *CSV) Close() error {
	j.fills.Flush()
	if err := j.fills.Error(); err != nil {
		return err
	}
	j.equity.Flush()
	if err := j.equity.Error(); err != nil {
		return err
	}

	if err := j.ff.Close(); err != nil {
		return err
	}
	return j.ef.Close()
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
