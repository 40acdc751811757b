package routing

import (
	"github.com/shopspring/decimal"

	"github.com/quantgate/quantgate/internal/config"
)

// Priorities used for the built-in router tiers. Exchange entries carry
// their own priority from configuration.
const (
	PriorityDarkPool   = 3
	PriorityLargeOrder = 5
	PriorityDefault    = 100
)

// BuildRouters assembles the router set declared in configuration. The
// returned slice is handed to NewSelector; registration order here breaks
// priority ties.
func BuildRouters(cfg config.RoutingConfig, probe BrokerProbe) []Router {
	routers := make([]Router, 0, len(cfg.Exchanges)+3)

	threshold := decimal.NewFromInt(cfg.LargeOrderThreshold)
	if threshold.IsPositive() {
		if cfg.DarkPoolVenue != "" {
			routers = append(routers, NewDarkPoolRouter(
				"dark-pool", PriorityDarkPool, threshold,
				cfg.DefaultBroker, cfg.DarkPoolVenue, probe))
		}
		routers = append(routers, NewLargeOrderRouter(
			"large-order", PriorityLargeOrder, threshold,
			cfg.DefaultBroker, cfg.DefaultVenue, probe))
	}

	for _, e := range cfg.Exchanges {
		routers = append(routers, NewExchangeRouter(
			e.Name, e.Priority, e.Exchanges, e.Broker, e.Venue,
			decimal.NewFromInt(e.MaxQuantity), probe))
	}

	if cfg.DefaultBroker != "" {
		routers = append(routers, NewDefaultRouter(
			"default", PriorityDefault, cfg.DefaultBroker, cfg.DefaultVenue, probe))
	}

	return routers
}
