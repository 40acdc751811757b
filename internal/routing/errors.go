package routing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Stable error codes used for metrics and logs. These are released strings
// and must never change.
const (
	CodeNoBrokerAvailable   = "NO_BROKER_AVAILABLE"
	CodeUnsupportedExchange = "UNSUPPORTED_EXCHANGE"
	CodeOrderTooLarge       = "ORDER_TOO_LARGE"
	CodeBrokerConnectivity  = "BROKER_CONNECTIVITY"
	CodeConfiguration       = "CONFIGURATION"
)

// RoutingError is the closed taxonomy of routing failures. Exactly one
// variant is produced per failed attempt; all variants match with errors.As.
type RoutingError interface {
	error
	Code() string
}

// NoBrokerAvailableError means the exchange is recognised but no live broker
// can take the order right now.
type NoBrokerAvailableError struct {
	Exchange string
	Reason   string
}

func (e *NoBrokerAvailableError) Code() string { return CodeNoBrokerAvailable }

func (e *NoBrokerAvailableError) Error() string {
	return fmt.Sprintf("no broker available for exchange %s: %s", e.Exchange, e.Reason)
}

// UnsupportedExchangeError means no configured router recognises the
// order's exchange.
type UnsupportedExchangeError struct {
	Exchange string
}

func (e *UnsupportedExchangeError) Code() string { return CodeUnsupportedExchange }

func (e *UnsupportedExchangeError) Error() string {
	return fmt.Sprintf("unsupported exchange %q", e.Exchange)
}

// OrderTooLargeError means the order quantity exceeds the limit the chosen
// router declares.
type OrderTooLargeError struct {
	Quantity    decimal.Decimal
	MaxQuantity decimal.Decimal
}

func (e *OrderTooLargeError) Code() string { return CodeOrderTooLarge }

func (e *OrderTooLargeError) Error() string {
	return fmt.Sprintf("order quantity %s exceeds maximum %s", e.Quantity, e.MaxQuantity)
}

// BrokerConnectivityError means the chosen broker was unreachable at the
// time of routing.
type BrokerConnectivityError struct {
	Broker string
}

func (e *BrokerConnectivityError) Code() string { return CodeBrokerConnectivity }

func (e *BrokerConnectivityError) Error() string {
	return fmt.Sprintf("broker %s is not reachable", e.Broker)
}

// ConfigurationError means a router was invoked while misconfigured.
type ConfigurationError struct {
	ConfigKey string
}

func (e *ConfigurationError) Code() string { return CodeConfiguration }

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("router misconfigured: missing or invalid %s", e.ConfigKey)
}
