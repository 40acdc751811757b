// Package routing decides which broker, venue, and execution strategy an
// order is sent to. The router set is configuration; the selector is the
// only entry point callers use.
package routing

// ExecutionStrategy is the closed set of execution strategies an order can
// be routed with.
type ExecutionStrategy int

const (
	StrategyImmediate ExecutionStrategy = iota
	StrategyScheduled
	StrategySliced
	StrategyIceberg
	StrategyVWAP
	StrategyTWAP
	StrategyDarkPool
	StrategySmart
	StrategyReject
)

func (s ExecutionStrategy) String() string {
	switch s {
	case StrategyImmediate:
		return "IMMEDIATE"
	case StrategyScheduled:
		return "SCHEDULED"
	case StrategySliced:
		return "SLICED"
	case StrategyIceberg:
		return "ICEBERG"
	case StrategyVWAP:
		return "VWAP"
	case StrategyTWAP:
		return "TWAP"
	case StrategyDarkPool:
		return "DARK_POOL"
	case StrategySmart:
		return "SMART"
	case StrategyReject:
		return "REJECT"
	default:
		return "UNKNOWN"
	}
}

// Description returns the fixed human-readable description of the strategy.
func (s ExecutionStrategy) Description() string {
	switch s {
	case StrategyImmediate:
		return "Execute immediately at current market conditions"
	case StrategyScheduled:
		return "Execute at a scheduled point in time"
	case StrategySliced:
		return "Split into smaller child orders over time"
	case StrategyIceberg:
		return "Expose only a visible fraction of the full quantity"
	case StrategyVWAP:
		return "Track the volume-weighted average price"
	case StrategyTWAP:
		return "Track the time-weighted average price"
	case StrategyDarkPool:
		return "Execute in a non-displayed venue"
	case StrategySmart:
		return "Venue chosen dynamically by the smart router"
	case StrategyReject:
		return "Order cannot be executed"
	default:
		return "Unknown strategy"
	}
}

// IsImmediate reports whether the strategy executes without delay.
func (s ExecutionStrategy) IsImmediate() bool {
	return s == StrategyImmediate
}

// IsAlgorithmic reports whether the strategy works the order algorithmically
// over time.
func (s ExecutionStrategy) IsAlgorithmic() bool {
	switch s {
	case StrategyVWAP, StrategyTWAP, StrategyIceberg, StrategySliced:
		return true
	}
	return false
}

// IsSuitableForLargeOrders reports whether the strategy limits market impact
// for large quantities.
func (s ExecutionStrategy) IsSuitableForLargeOrders() bool {
	switch s {
	case StrategySliced, StrategyIceberg, StrategyVWAP, StrategyTWAP, StrategyDarkPool:
		return true
	}
	return false
}

// Strategies returns every member of the closed strategy set.
func Strategies() []ExecutionStrategy {
	return []ExecutionStrategy{
		StrategyImmediate,
		StrategyScheduled,
		StrategySliced,
		StrategyIceberg,
		StrategyVWAP,
		StrategyTWAP,
		StrategyDarkPool,
		StrategySmart,
		StrategyReject,
	}
}
