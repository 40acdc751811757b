package routing

import "context"

// Router is one routing capability. Implementations are registered into an
// ordered set at startup and are safe for unsynchronized concurrent reads
// after that.
type Router interface {
	// Name attributes decisions and log lines; stable and unique across
	// the configured set.
	Name() string

	// Priority orders the configured set; lower values are tried first.
	Priority() int

	// CanHandle is a pure, fast predicate. It runs for every order against
	// every configured router and must not have side effects.
	CanHandle(order *Order) bool

	// RouteOrder produces a decision or a RoutingError. It may probe live
	// broker connectivity.
	RouteOrder(ctx context.Context, order *Order) (*RoutingDecision, error)
}

// BrokerProbe answers whether a named broker connection is currently live.
// The production implementation wraps the broker gateway; tests stub it.
type BrokerProbe interface {
	IsConnected(broker string) bool
}

// BrokerProbeFunc adapts a function to the BrokerProbe interface.
type BrokerProbeFunc func(broker string) bool

func (f BrokerProbeFunc) IsConnected(broker string) bool { return f(broker) }

// AlwaysConnected is the probe used when no broker gateway is wired in.
var AlwaysConnected = BrokerProbeFunc(func(string) bool { return true })
