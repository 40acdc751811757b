package marketdata

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// subscriptionSet is one session's subscribed symbols and data types. The
// per-set lock gives per-session linearizability without blocking other
// sessions.
type subscriptionSet struct {
	mu      sync.RWMutex
	symbols map[string]struct{}
	types   map[DataType]struct{}
	// deleted marks an entry that was removed from the registry while a
	// concurrent caller still holds a reference; such callers retry.
	deleted bool
}

func newSubscriptionSet() *subscriptionSet {
	return &subscriptionSet{
		symbols: make(map[string]struct{}),
		types:   make(map[DataType]struct{}),
	}
}

// wants reports whether the set covers the given symbol and data type under
// the read lock. An empty type set means every data type.
func (s *subscriptionSet) wants(symbol string, dt DataType) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.symbols[symbol]; !ok {
		return false
	}
	if len(s.types) == 0 {
		return true
	}
	_, ok := s.types[dt]
	return ok
}

// Registry maps session ids to live send handles and their subscription
// sets. Both maps are keyed per session; there is no registry-wide lock, so
// unrelated sessions never contend.
type Registry struct {
	logger *zap.Logger

	sessions sync.Map // session id -> Conn
	subs     sync.Map // session id -> *subscriptionSet

	cleanup   chan string
	startOnce sync.Once
}

// NewRegistry creates a session registry. cleanupQueue bounds the async
// cleanup backlog; overflow falls back to inline deregistration.
func NewRegistry(cleanupQueue int, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cleanupQueue <= 0 {
		cleanupQueue = 1024
	}
	return &Registry{
		logger:  logger,
		cleanup: make(chan string, cleanupQueue),
	}
}

// Start runs the cleanup worker until ctx is cancelled.
func (r *Registry) Start(ctx context.Context) {
	r.startOnce.Do(func() {
		go r.cleanupWorker(ctx)
	})
}

func (r *Registry) cleanupWorker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case id := <-r.cleanup:
			if r.Deregister(id) {
				sessionsCleaned.Inc()
			}
		}
	}
}

// Register inserts or replaces the session's send handle. Re-registering an
// id replaces the handle and closes the one it displaced; the subscription
// set, if any, is kept.
func (r *Registry) Register(sessionID string, conn Conn) {
	prev, loaded := r.sessions.Swap(sessionID, conn)
	if loaded {
		if old, ok := prev.(Conn); ok && old != conn {
			_ = old.Close()
		}
		return
	}
	activeSessions.Inc()
	r.logger.Debug("session registered", zap.String("session_id", sessionID))
}

// Deregister removes the session's handle and subscriptions and closes the
// handle. Safe to call for unknown or already-removed sessions; reports
// whether anything was removed.
func (r *Registry) Deregister(sessionID string) bool {
	removed := false
	if v, loaded := r.sessions.LoadAndDelete(sessionID); loaded {
		if conn, ok := v.(Conn); ok {
			_ = conn.Close()
		}
		activeSessions.Dec()
		removed = true
	}
	if v, loaded := r.subs.LoadAndDelete(sessionID); loaded {
		set := v.(*subscriptionSet)
		set.mu.Lock()
		set.deleted = true
		activeSubscriptions.Sub(float64(len(set.symbols)))
		set.symbols = make(map[string]struct{})
		set.mu.Unlock()
		removed = true
	}
	if removed {
		r.logger.Debug("session deregistered", zap.String("session_id", sessionID))
	}
	return removed
}

// ScheduleCleanup queues the session for asynchronous removal, as after a
// transport error. When the queue is full the removal happens inline.
func (r *Registry) ScheduleCleanup(sessionID string) {
	select {
	case r.cleanup <- sessionID:
	default:
		if r.Deregister(sessionID) {
			sessionsCleaned.Inc()
		}
	}
}

// Conn returns the session's live handle.
func (r *Registry) Conn(sessionID string) (Conn, bool) {
	v, ok := r.sessions.Load(sessionID)
	if !ok {
		return nil, false
	}
	conn, ok := v.(Conn)
	return conn, ok
}

// Registered reports whether the session currently holds a handle.
func (r *Registry) Registered(sessionID string) bool {
	_, ok := r.sessions.Load(sessionID)
	return ok
}

// SessionCount returns the number of registered sessions.
func (r *Registry) SessionCount() int {
	count := 0
	r.sessions.Range(func(_, _ any) bool {
		count++
		return true
	})
	return count
}

// SubscriptionCount returns how many symbols the session is subscribed to.
func (r *Registry) SubscriptionCount(sessionID string) int {
	v, ok := r.subs.Load(sessionID)
	if !ok {
		return 0
	}
	set := v.(*subscriptionSet)
	set.mu.RLock()
	defer set.mu.RUnlock()
	return len(set.symbols)
}

// Symbols returns a copy of the session's subscribed symbol set.
func (r *Registry) Symbols(sessionID string) []string {
	v, ok := r.subs.Load(sessionID)
	if !ok {
		return nil
	}
	set := v.(*subscriptionSet)
	set.mu.RLock()
	defer set.mu.RUnlock()
	out := make([]string, 0, len(set.symbols))
	for sym := range set.symbols {
		out = append(out, sym)
	}
	return out
}

// subscribers collects the ids and handles of every session whose set
// covers the symbol and data type. The snapshot is eventually consistent
// with concurrent subscription changes, which is all fan-out needs.
func (r *Registry) subscribers(symbol string, dt DataType) []subscriber {
	var out []subscriber
	r.subs.Range(func(key, value any) bool {
		id := key.(string)
		set := value.(*subscriptionSet)
		if !set.wants(symbol, dt) {
			return true
		}
		if conn, ok := r.Conn(id); ok {
			out = append(out, subscriber{id: id, conn: conn})
		}
		return true
	})
	return out
}

type subscriber struct {
	id   string
	conn Conn
}

// set returns the session's subscription entry, creating it when absent.
// Callers must hold no locks; the returned entry may already be marked
// deleted, in which case they retry.
func (r *Registry) set(sessionID string) *subscriptionSet {
	for {
		v, _ := r.subs.LoadOrStore(sessionID, newSubscriptionSet())
		set := v.(*subscriptionSet)
		set.mu.Lock()
		if set.deleted {
			set.mu.Unlock()
			continue
		}
		return set // locked; caller unlocks
	}
}

// dropIfEmpty removes the session's entry when its symbol set emptied.
// Caller holds the entry's lock.
func (r *Registry) dropIfEmpty(sessionID string, set *subscriptionSet) {
	if len(set.symbols) > 0 {
		return
	}
	set.deleted = true
	r.subs.Delete(sessionID)
}
