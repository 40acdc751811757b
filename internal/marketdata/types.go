// Package marketdata holds the concurrent session registry and the fan-out
// path that pushes inbound market-data events to subscribed sessions.
package marketdata

import (
	"encoding/json"
	"time"
)

// DataType tags the kind of market data a session subscribes to.
type DataType string

const (
	DataTypeQuote DataType = "quote"
	DataTypeTrade DataType = "trade"
	DataTypeDepth DataType = "depth"
)

// Event is one inbound market-data update fanned out to subscribers.
// Payload is transport-ready JSON; this core never inspects it.
type Event struct {
	Symbol    string          `json:"symbol"`
	Type      DataType        `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp time.Time       `json:"timestamp"`
}

// Subscription actions accepted from clients.
const (
	ActionSubscribe   = "SUBSCRIBE"
	ActionUnsubscribe = "UNSUBSCRIBE"
)

// SubscriptionRequest is a client's subscribe/unsubscribe message.
type SubscriptionRequest struct {
	Action    string   `json:"action"`
	Symbols   []string `json:"symbols"`
	DataTypes []string `json:"data_types,omitempty"`
}

// SubscriptionAck confirms the outcome of one subscription request and
// carries the session's resulting active-subscription count.
type SubscriptionAck struct {
	Success             bool     `json:"success"`
	Action              string   `json:"action"`
	Symbols             []string `json:"symbols"`
	Message             string   `json:"message"`
	Code                string   `json:"code,omitempty"`
	ActiveSubscriptions int      `json:"active_subscriptions"`
}

// ErrorAck builds the failure confirmation for a rejected request. The
// stable code from the subscription error taxonomy rides along when the
// error carries one.
func ErrorAck(action string, symbols []string, err error) *SubscriptionAck {
	ack := &SubscriptionAck{
		Success: false,
		Action:  action,
		Symbols: symbols,
		Message: err.Error(),
	}
	if serr, ok := err.(SubscriptionError); ok {
		ack.Code = serr.Code()
	}
	return ack
}

// Conn is the send-capable handle a registered session exposes. Send must
// not block the caller; implementations buffer per session and fail fast
// when the session cannot keep up.
type Conn interface {
	Send(event Event) error
	Close() error
}
