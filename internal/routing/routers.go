package routing

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ExchangeRouter serves a fixed set of exchanges through one broker. It is
// the workhorse router: one instance per venue entry in the routing
// configuration.
type ExchangeRouter struct {
	name        string
	priority    int
	exchanges   map[string]struct{}
	broker      string
	venue       string
	maxQuantity decimal.Decimal
	probe       BrokerProbe
}

// NewExchangeRouter builds an exchange router. A zero maxQuantity disables
// the size limit. A nil probe treats the broker as always connected.
func NewExchangeRouter(name string, priority int, exchanges []string, broker, venue string, maxQuantity decimal.Decimal, probe BrokerProbe) *ExchangeRouter {
	set := make(map[string]struct{}, len(exchanges))
	for _, ex := range exchanges {
		set[ex] = struct{}{}
	}
	if probe == nil {
		probe = AlwaysConnected
	}
	return &ExchangeRouter{
		name:        name,
		priority:    priority,
		exchanges:   set,
		broker:      broker,
		venue:       venue,
		maxQuantity: maxQuantity,
		probe:       probe,
	}
}

func (r *ExchangeRouter) Name() string  { return r.name }
func (r *ExchangeRouter) Priority() int { return r.priority }

func (r *ExchangeRouter) CanHandle(order *Order) bool {
	if order == nil {
		return false
	}
	_, ok := r.exchanges[order.Exchange]
	return ok
}

func (r *ExchangeRouter) RouteOrder(ctx context.Context, order *Order) (*RoutingDecision, error) {
	if r.broker == "" {
		return nil, &ConfigurationError{ConfigKey: "broker"}
	}
	if r.venue == "" {
		return nil, &ConfigurationError{ConfigKey: "venue"}
	}
	if r.maxQuantity.IsPositive() && order.Quantity.GreaterThan(r.maxQuantity) {
		return nil, &OrderTooLargeError{Quantity: order.Quantity, MaxQuantity: r.maxQuantity}
	}
	if !r.probe.IsConnected(r.broker) {
		return nil, &BrokerConnectivityError{Broker: r.broker}
	}

	if order.Type == OrderTypeMarket {
		return NewImmediateDecision(r.broker, r.venue,
			fmt.Sprintf("market order on %s", order.Exchange), r.name), nil
	}
	return NewDelayedDecision(r.broker, r.venue, StrategyScheduled,
		time.Now().UTC().Add(time.Second), 0.9,
		fmt.Sprintf("%s order queued on %s", order.Type, order.Exchange), r.name), nil
}

// LargeOrderRouter works orders above a size threshold with an algorithmic
// strategy chosen by how far above the threshold the quantity sits.
type LargeOrderRouter struct {
	name      string
	priority  int
	threshold decimal.Decimal
	broker    string
	venue     string
	probe     BrokerProbe
}

// NewLargeOrderRouter builds a large-order router. Orders with quantity
// below threshold are declined by CanHandle.
func NewLargeOrderRouter(name string, priority int, threshold decimal.Decimal, broker, venue string, probe BrokerProbe) *LargeOrderRouter {
	if probe == nil {
		probe = AlwaysConnected
	}
	return &LargeOrderRouter{
		name:      name,
		priority:  priority,
		threshold: threshold,
		broker:    broker,
		venue:     venue,
		probe:     probe,
	}
}

func (r *LargeOrderRouter) Name() string  { return r.name }
func (r *LargeOrderRouter) Priority() int { return r.priority }

func (r *LargeOrderRouter) CanHandle(order *Order) bool {
	if order == nil || !r.threshold.IsPositive() {
		return false
	}
	return order.Quantity.GreaterThanOrEqual(r.threshold)
}

func (r *LargeOrderRouter) RouteOrder(ctx context.Context, order *Order) (*RoutingDecision, error) {
	if r.broker == "" {
		return nil, &ConfigurationError{ConfigKey: "broker"}
	}
	if !r.probe.IsConnected(r.broker) {
		return nil, &BrokerConnectivityError{Broker: r.broker}
	}

	// Strategy bands scale with how many multiples of the threshold the
	// order carries. All chosen strategies suit large orders.
	ratio := order.Quantity.Div(r.threshold)
	strategy := StrategyVWAP
	confidence := 0.85
	horizon := 5 * time.Minute
	switch {
	case ratio.GreaterThanOrEqual(decimal.NewFromInt(20)):
		strategy = StrategySliced
		confidence = 0.7
		horizon = 30 * time.Minute
	case ratio.GreaterThanOrEqual(decimal.NewFromInt(5)):
		strategy = StrategyTWAP
		confidence = 0.8
		horizon = 15 * time.Minute
	}

	return NewDelayedDecision(r.broker, r.venue, strategy,
		time.Now().UTC().Add(horizon), confidence,
		fmt.Sprintf("large order %s worked as %s", order.Quantity, strategy), r.name), nil
}

// DarkPoolRouter directs large non-market orders to a non-displayed venue
// when one is configured.
type DarkPoolRouter struct {
	name      string
	priority  int
	threshold decimal.Decimal
	broker    string
	venue     string
	probe     BrokerProbe
}

// NewDarkPoolRouter builds a dark-pool router. An empty venue disables it:
// CanHandle always declines.
func NewDarkPoolRouter(name string, priority int, threshold decimal.Decimal, broker, venue string, probe BrokerProbe) *DarkPoolRouter {
	if probe == nil {
		probe = AlwaysConnected
	}
	return &DarkPoolRouter{
		name:      name,
		priority:  priority,
		threshold: threshold,
		broker:    broker,
		venue:     venue,
		probe:     probe,
	}
}

func (r *DarkPoolRouter) Name() string  { return r.name }
func (r *DarkPoolRouter) Priority() int { return r.priority }

func (r *DarkPoolRouter) CanHandle(order *Order) bool {
	if order == nil || r.venue == "" {
		return false
	}
	if order.Type == OrderTypeMarket {
		return false
	}
	return r.threshold.IsPositive() && order.Quantity.GreaterThanOrEqual(r.threshold)
}

func (r *DarkPoolRouter) RouteOrder(ctx context.Context, order *Order) (*RoutingDecision, error) {
	if r.broker == "" {
		return nil, &ConfigurationError{ConfigKey: "broker"}
	}
	if !r.probe.IsConnected(r.broker) {
		return nil, &BrokerConnectivityError{Broker: r.broker}
	}
	return NewDelayedDecision(r.broker, r.venue, StrategyDarkPool,
		time.Now().UTC().Add(time.Minute), 0.7,
		"large order crossed in dark pool", r.name), nil
}

// DefaultRouter is the catch-all. It accepts every order and routes through
// the default broker with the smart strategy, rejecting order types it does
// not know how to place.
type DefaultRouter struct {
	name     string
	priority int
	broker   string
	venue    string
	probe    BrokerProbe
}

// NewDefaultRouter builds the catch-all router. It should carry the highest
// priority value in the set so exchange-specific routers win.
func NewDefaultRouter(name string, priority int, broker, venue string, probe BrokerProbe) *DefaultRouter {
	if probe == nil {
		probe = AlwaysConnected
	}
	return &DefaultRouter{name: name, priority: priority, broker: broker, venue: venue, probe: probe}
}

func (r *DefaultRouter) Name() string  { return r.name }
func (r *DefaultRouter) Priority() int { return r.priority }

func (r *DefaultRouter) CanHandle(order *Order) bool {
	return order != nil && r.broker != ""
}

func (r *DefaultRouter) RouteOrder(ctx context.Context, order *Order) (*RoutingDecision, error) {
	if !r.probe.IsConnected(r.broker) {
		// The default router recognises every exchange, so an unreachable
		// broker here means nothing can take the order.
		return nil, &NoBrokerAvailableError{Exchange: order.Exchange, Reason: "default broker offline"}
	}

	switch order.Type {
	case OrderTypeMarket:
		return NewImmediateDecision(r.broker, r.venue, "market order via default route", r.name), nil
	case OrderTypeLimit, OrderTypeStopLimit, OrderTypeIceberg, OrderTypeTWAP, OrderTypeVWAP:
		return NewDelayedDecision(r.broker, r.venue, StrategySmart,
			time.Now().UTC().Add(time.Second), 0.75,
			fmt.Sprintf("%s order via smart route", order.Type), r.name), nil
	default:
		return NewRejectDecision(
			fmt.Sprintf("unsupported order type %q", order.Type), r.name), nil
	}
}
