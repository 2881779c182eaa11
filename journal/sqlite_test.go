package journal

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLite(t *testing.T) *SQLite {
	t.Helper()
	j, err := NewSQLite(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func TestSQLiteFillRoundTrip(t *testing.T) {
	j := newTestSQLite(t)

	when := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	rec := FillRecord{
		ID:       "01ARZ3NDEKTSV4RRFFQ69G5FAV",
		OrderID:  "paper_order_1",
		Symbol:   "BTC-USDT",
		Side:     "buy",
		Quantity: 0.01,
		Price:    50123.45,
		Status:   "filled",
		Time:     when,
	}
	require.NoError(t, j.RecordFill(rec))

	got, err := j.GetFill(rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.OrderID, got.OrderID)
	assert.Equal(t, rec.Symbol, got.Symbol)
	assert.Equal(t, rec.Side, got.Side)
	assert.InDelta(t, rec.Price, got.Price, 1e-9)
	assert.True(t, got.Time.Equal(when))
}

func TestSQLiteGetFillNotFound(t *testing.T) {
	j := newTestSQLite(t)

	_, err := j.GetFill("missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSQLiteListFillsBySymbol(t *testing.T) {
	j := newTestSQLite(t)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"01AAAAAAAAAAAAAAAAAAAAAAAA", "01BBBBBBBBBBBBBBBBBBBBBBBB"} {
		require.NoError(t, j.RecordFill(FillRecord{
			ID:       id,
			OrderID:  "paper_order_1",
			Symbol:   "BTC-USDT",
			Side:     "buy",
			Quantity: 0.01,
			Price:    50000 + float64(i),
			Status:   "filled",
			Time:     base.Add(time.Duration(i) * time.Minute),
		}))
	}
	require.NoError(t, j.RecordFill(FillRecord{
		ID: "01CCCCCCCCCCCCCCCCCCCCCCCC", OrderID: "paper_order_2",
		Symbol: "ETH-USDT", Side: "buy", Quantity: 1, Price: 2000,
		Status: "filled", Time: base,
	}))

	fills, err := j.ListFillsBySymbol("BTC-USDT")
	require.NoError(t, err)
	require.Len(t, fills, 2)
	// Journal IDs are time-sortable, so listing by ID preserves order.
	assert.Equal(t, "01AAAAAAAAAAAAAAAAAAAAAAAA", fills[0].ID)
	assert.Equal(t, "01BBBBBBBBBBBBBBBBBBBBBBBB", fills[1].ID)
}

func TestSQLiteListEquityBetween(t *testing.T) {
	j := newTestSQLite(t)

	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		require.NoError(t, j.RecordEquity(EquitySnapshot{
			Time:          base.Add(time.Duration(i) * time.Hour),
			Cash:          10000,
			Equity:        10000 + float64(i),
			UnrealizedPnL: float64(i),
			OpenPositions: 1,
		}))
	}

	snaps, err := j.ListEquityBetween(base, base.Add(2*time.Hour))
	require.NoError(t, err)
	require.Len(t, snaps, 2)
	assert.InDelta(t, 10000.0, snaps[0].Equity, 1e-9)
	assert.InDelta(t, 10001.0, snaps[1].Equity, 1e-9)
}
