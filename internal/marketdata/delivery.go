package marketdata

import (
	"go.uber.org/zap"
)

// Delivery fans one inbound event out to every session subscribed to its
// symbol. Sends are best-effort, at-most-once: a failing or closed session
// is skipped and queued for cleanup, never allowed to abort delivery to the
// rest or to surface an error to the producer.
type Delivery struct {
	registry *Registry
	logger   *zap.Logger
}

// NewDelivery creates the fan-out path over the given registry.
func NewDelivery(registry *Registry, logger *zap.Logger) *Delivery {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Delivery{registry: registry, logger: logger}
}

// Deliver pushes the event to every matching session. Per-symbol arrival
// order is preserved per session as long as the transport preserves it;
// there is no ordering across symbols.
func (d *Delivery) Deliver(event Event) {
	subs := d.registry.subscribers(event.Symbol, event.Type)
	for _, sub := range subs {
		if err := sub.conn.Send(event); err != nil {
			deliveryFailures.Inc()
			d.logger.Debug("send failed, scheduling cleanup",
				zap.String("session_id", sub.id),
				zap.String("symbol", event.Symbol),
				zap.Error(err))
			d.registry.ScheduleCleanup(sub.id)
			continue
		}
		eventsDelivered.Inc()
	}
}
