package routing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Constants for order types and sides
const (
	OrderTypeMarket    = "MARKET"
	OrderTypeLimit     = "LIMIT"
	OrderTypeStopLimit = "STOP_LIMIT"
	OrderTypeIceberg   = "ICEBERG"
	OrderTypeTWAP      = "TWAP"
	OrderTypeVWAP      = "VWAP"

	OrderSideBuy  = "BUY"
	OrderSideSell = "SELL"
)

// Order is the inbound order an external caller asks the selector to route.
// The selector never mutates it.
type Order struct {
	ID        uuid.UUID       `json:"id"`
	Symbol    string          `json:"symbol"`
	Exchange  string          `json:"exchange"`
	Side      string          `json:"side"`
	Type      string          `json:"type"`
	Quantity  decimal.Decimal `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	CreatedAt time.Time       `json:"created_at"`
}

// NewOrder creates an order with a fresh identifier.
func NewOrder(symbol, exchange, side, orderType string, quantity decimal.Decimal) *Order {
	return &Order{
		ID:        uuid.New(),
		Symbol:    symbol,
		Exchange:  exchange,
		Side:      side,
		Type:      orderType,
		Quantity:  quantity,
		CreatedAt: time.Now().UTC(),
	}
}
