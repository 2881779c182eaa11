package journal

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVHeaders(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	fillsPath := filepath.Join(dir, "fills.csv")
	equityPath := filepath.Join(dir, "equity.csv")

	j, err := NewCSV(fillsPath, equityPath)
	require.NoError(t, err)
	require.NoError(t, j.Close())

	fillsData, err := os.ReadFile(fillsPath)
	require.NoError(t, err)
	equityData, err := os.ReadFile(equityPath)
	require.NoError(t, err)

	fillsHeader, err := csv.NewReader(strings.NewReader(string(fillsData))).Read()
	require.NoError(t, err)
	equityHeader, err := csv.NewReader(strings.NewReader(string(equityData))).Read()
	require.NoError(t, err)

	wantFills := []string{"id", "order_id", "symbol", "side", "quantity", "price", "status", "time"}
	assert.Equal(t, wantFills, fillsHeader)

	wantEquity := []string{"time", "cash", "equity", "unrealized_pnl", "open_positions"}
	assert.Equal(t, wantEquity, equityHeader)
}

func TestCSVRecords(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	fillsPath := filepath.Join(dir, "fills.csv")
	equityPath := filepath.Join(dir, "equity.csv")

	j, err := NewCSV(fillsPath, equityPath)
	require.NoError(t, err)

	when := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, j.RecordFill(FillRecord{
		ID:       "01ARZ3NDEKTSV4RRFFQ69G5FAV",
		OrderID:  "paper_order_1",
		Symbol:   "BTC-USDT",
		Side:     "buy",
		Quantity: 0.01,
		Price:    50123.45,
		Status:   "filled",
		Time:     when,
	}))
	require.NoError(t, j.RecordEquity(EquitySnapshot{
		Time:          when,
		Cash:          9498.77,
		Equity:        10000.0,
		UnrealizedPnL: 1.23,
		OpenPositions: 1,
	}))
	require.NoError(t, j.Close())

	fillsData, err := os.ReadFile(fillsPath)
	require.NoError(t, err)
	rows, err := csv.NewReader(strings.NewReader(string(fillsData))).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)

	row := rows[1]
	assert.Equal(t, "paper_order_1", row[1])
	assert.Equal(t, "BTC-USDT", row[2])
	assert.Equal(t, "buy", row[3])
	assert.Equal(t, "0.010000", row[4])
	assert.Equal(t, "2025-06-01T12:00:00Z", row[7])

	equityData, err := os.ReadFile(equityPath)
	require.NoError(t, err)
	rows, err = csv.NewReader(strings.NewReader(string(equityData))).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "1", rows[1][4])
}
