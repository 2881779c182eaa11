package exchange

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSideOpposite(t *testing.T) {
	assert.Equal(t, Sell, Buy.Opposite())
	assert.Equal(t, Buy, Sell.Opposite())
}

func TestBalanceAvailable(t *testing.T) {
	bal := Balance{Assets: map[string]float64{"USDT": 100}}
	assert.Equal(t, 100.0, bal.Available("USDT"))
	assert.Equal(t, 0.0, bal.Available("BTC"))
}

func TestErrorMessages(t *testing.T) {
	verr := &ValidationError{Reason: "order quantity must be positive"}
	assert.Equal(t, "invalid order: order quantity must be positive", verr.Error())

	apiErr := &APIError{Status: 400, Body: "bad size"}
	assert.Equal(t, "API error (status 400): bad size", apiErr.Error())

	wrapped := errors.Join(ErrInsufficientFunds)
	assert.True(t, errors.Is(wrapped, ErrInsufficientFunds))
}
