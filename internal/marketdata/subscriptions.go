package marketdata

import (
	"fmt"

	"go.uber.org/zap"
)

// SubscriptionManager mutates per-session subscription sets against the
// registry and builds the confirmations sent back to clients. All mutation
// for one session goes through the session's own lock; requests for
// different sessions never block each other.
type SubscriptionManager struct {
	registry *Registry
	maxSubs  int
	logger   *zap.Logger
}

// NewSubscriptionManager creates a manager enforcing the per-session
// subscription limit.
func NewSubscriptionManager(registry *Registry, maxSubscriptions int, logger *zap.Logger) *SubscriptionManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxSubscriptions <= 0 {
		maxSubscriptions = 100
	}
	return &SubscriptionManager{
		registry: registry,
		maxSubs:  maxSubscriptions,
		logger:   logger,
	}
}

// MaxSubscriptions returns the per-session limit, advertised to clients in
// the welcome payload.
func (m *SubscriptionManager) MaxSubscriptions() int { return m.maxSubs }

// Subscribe unions symbols (and optional data-type tags) into the session's
// set. The whole request is rejected, and the existing set left untouched,
// when the session is unknown, the symbol list is empty, or the union would
// exceed the per-session limit.
func (m *SubscriptionManager) Subscribe(sessionID string, symbols []string, dataTypes []DataType) (*SubscriptionAck, error) {
	if !m.registry.Registered(sessionID) {
		return nil, &UnknownSessionError{SessionID: sessionID}
	}
	if len(symbols) == 0 {
		return nil, &EmptySymbolsError{SessionID: sessionID}
	}

	set := m.registry.set(sessionID) // returned locked
	defer set.mu.Unlock()

	added := 0
	for _, sym := range symbols {
		if sym == "" {
			continue
		}
		if _, ok := set.symbols[sym]; !ok {
			added++
		}
	}
	if total := len(set.symbols) + added; total > m.maxSubs {
		m.registry.dropIfEmpty(sessionID, set)
		return nil, &CapacityError{SessionID: sessionID, Limit: m.maxSubs, Requested: total}
	}

	for _, sym := range symbols {
		if sym == "" {
			continue
		}
		set.symbols[sym] = struct{}{}
	}
	for _, dt := range dataTypes {
		set.types[dt] = struct{}{}
	}
	m.registry.dropIfEmpty(sessionID, set)
	activeSubscriptions.Add(float64(added))

	active := len(set.symbols)
	m.logger.Debug("subscribed",
		zap.String("session_id", sessionID),
		zap.Strings("symbols", symbols),
		zap.Int("active", active))
	return &SubscriptionAck{
		Success:             true,
		Action:              ActionSubscribe,
		Symbols:             symbols,
		Message:             fmt.Sprintf("subscribed to %d symbol(s)", len(symbols)),
		ActiveSubscriptions: active,
	}, nil
}

// Unsubscribe removes symbols from the session's set. Removing the last
// symbol deletes the session's subscription entry entirely so churn does
// not grow memory. Unknown symbols are ignored.
func (m *SubscriptionManager) Unsubscribe(sessionID string, symbols []string) (*SubscriptionAck, error) {
	if !m.registry.Registered(sessionID) {
		return nil, &UnknownSessionError{SessionID: sessionID}
	}
	if len(symbols) == 0 {
		return nil, &EmptySymbolsError{SessionID: sessionID}
	}

	active := 0
	if v, ok := m.registry.subs.Load(sessionID); ok {
		set := v.(*subscriptionSet)
		set.mu.Lock()
		if !set.deleted {
			removed := 0
			for _, sym := range symbols {
				if _, ok := set.symbols[sym]; ok {
					delete(set.symbols, sym)
					removed++
				}
			}
			activeSubscriptions.Sub(float64(removed))
			active = len(set.symbols)
			m.registry.dropIfEmpty(sessionID, set)
		}
		set.mu.Unlock()
	}

	m.logger.Debug("unsubscribed",
		zap.String("session_id", sessionID),
		zap.Strings("symbols", symbols),
		zap.Int("active", active))
	return &SubscriptionAck{
		Success:             true,
		Action:              ActionUnsubscribe,
		Symbols:             symbols,
		Message:             fmt.Sprintf("unsubscribed from %d symbol(s)", len(symbols)),
		ActiveSubscriptions: active,
	}, nil
}

// UnsubscribeAll clears every subscription the session holds. Safe to call
// for sessions that never subscribed.
func (m *SubscriptionManager) UnsubscribeAll(sessionID string) {
	if v, ok := m.registry.subs.Load(sessionID); ok {
		set := v.(*subscriptionSet)
		set.mu.Lock()
		if !set.deleted {
			activeSubscriptions.Sub(float64(len(set.symbols)))
			set.symbols = make(map[string]struct{})
			m.registry.dropIfEmpty(sessionID, set)
		}
		set.mu.Unlock()
	}
}
