package journal

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordFill(r FillRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO fills
		(id, order_id, symbol, side, quantity, price, status, time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.OrderID, r.Symbol, r.Side, r.Quantity, r.Price, r.Status, r.Time,
	)
	return err
}

func (j *SQLite) RecordEquity(e EquitySnapshot) error {
	_, err := j.db.Exec(`
		INSERT INTO equity
		(time, cash, equity, unrealized_pnl, open_positions)
		VALUES (?, ?, ?, ?, ?)`,
		e.Time, e.Cash, e.Equity, e.UnrealizedPnL, e.OpenPositions,
	)
	return err
}

// GetFill returns a single fill record by journal ID.
func (j *SQLite) GetFill(id string) (FillRecord, error) {
	var rec FillRecord

	row := j.db.QueryRow(`
		SELECT id, order_id, symbol, side, quantity, price, status, time
		FROM fills
		WHERE id = ?`, id)

	err := row.Scan(
		&rec.ID,
		&rec.OrderID,
		&rec.Symbol,
		&rec.Side,
		&rec.Quantity,
		&rec.Price,
		&rec.Status,
		&rec.Time,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return FillRecord{}, fmt.Errorf("fill %q not found", id)
		}
		return FillRecord{}, err
	}
	return rec, nil
}

// ListFillsBySymbol returns all fills for a symbol in journal order.
func (j *SQLite) ListFillsBySymbol(symbol string) ([]FillRecord, error) {
	rows, err := j.db.Query(`
		SELECT id, order_id, symbol, side, quantity, price, status, time
		FROM fills
		WHERE symbol = ?
		ORDER BY id ASC`, symbol)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []FillRecord
	for rows.Next() {
		var rec FillRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.OrderID,
			&rec.Symbol,
			&rec.Side,
			&rec.Quantity,
			&rec.Price,
			&rec.Status,
			&rec.Time,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListEquityBetween returns equity snapshots with time in [start, end).
func (j *SQLite) ListEquityBetween(start, end time.Time) ([]EquitySnapshot, error) {
	rows, err := j.db.Query(`
		SELECT time, cash, equity, unrealized_pnl, open_positions
		FROM equity
		WHERE time >= ? AND time < ?
		ORDER BY time ASC`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EquitySnapshot
	for rows.Next() {
		var e EquitySnapshot
		if err := rows.Scan(
			&e.Time,
			&e.Cash,
			&e.Equity,
			&e.UnrealizedPnL,
			&e.OpenPositions,
		); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
