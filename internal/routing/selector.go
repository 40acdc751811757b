package routing

import (
	"context"
	"errors"
	"sort"
	"time"

	"go.uber.org/zap"
)

// Selector orchestrates a fixed router set: it tries routers in ascending
// priority order and returns the first capable router's result unchanged.
// It holds no mutable state and never retries; retry policy belongs to the
// caller.
type Selector struct {
	routers []Router
	logger  *zap.Logger
}

// NewSelector builds a selector over the given routers. The set is sorted
// ascending by priority once; ties keep registration order.
func NewSelector(logger *zap.Logger, routers ...Router) *Selector {
	if logger == nil {
		logger = zap.NewNop()
	}
	ordered := make([]Router, len(routers))
	copy(ordered, routers)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority() < ordered[j].Priority()
	})
	return &Selector{routers: ordered, logger: logger}
}

// Routers returns the configured set in evaluation order.
func (s *Selector) Routers() []Router {
	out := make([]Router, len(s.routers))
	copy(out, s.routers)
	return out
}

// Route asks each router in priority order whether it can handle the order
// and invokes the first one that can. A reject decision from a capable
// router is a terminal outcome, not a reason to try the next router. When
// no router is capable the attempt fails with UnsupportedExchangeError;
// NoBrokerAvailableError is produced only by routers that recognise the
// exchange but have no live broker.
func (s *Selector) Route(ctx context.Context, order *Order) (*RoutingDecision, error) {
	start := time.Now()
	defer func() {
		routingDuration.Observe(time.Since(start).Seconds())
	}()

	if order == nil {
		err := &UnsupportedExchangeError{Exchange: ""}
		errorsTotal.WithLabelValues(err.Code()).Inc()
		return nil, err
	}

	for _, r := range s.routers {
		if !r.CanHandle(order) {
			continue
		}

		decision, err := r.RouteOrder(ctx, order)
		if err != nil {
			var rerr RoutingError
			if errors.As(err, &rerr) {
				errorsTotal.WithLabelValues(rerr.Code()).Inc()
			}
			s.logger.Warn("routing failed",
				zap.String("router", r.Name()),
				zap.String("order_id", order.ID.String()),
				zap.String("exchange", order.Exchange),
				zap.Error(err))
			return nil, err
		}

		decision = decision.withProcessingTime(time.Since(start))
		decisionsTotal.WithLabelValues(r.Name(), decision.Strategy.String()).Inc()
		s.logger.Debug("order routed",
			zap.String("router", r.Name()),
			zap.String("order_id", order.ID.String()),
			zap.String("strategy", decision.Strategy.String()),
			zap.String("broker", decision.BrokerID),
			zap.Duration("elapsed", decision.ProcessingTime))
		return decision, nil
	}

	err := &UnsupportedExchangeError{Exchange: order.Exchange}
	errorsTotal.WithLabelValues(err.Code()).Inc()
	s.logger.Warn("no router can handle order",
		zap.String("order_id", order.ID.String()),
		zap.String("exchange", order.Exchange))
	return nil, err
}
