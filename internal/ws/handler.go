package ws

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/quantgate/quantgate/internal/config"
	"github.com/quantgate/quantgate/internal/marketdata"
)

// Handler upgrades HTTP requests to WebSocket sessions and registers them
// with the market-data registry.
type Handler struct {
	cfg      config.WSConfig
	upgrader websocket.Upgrader
	registry *marketdata.Registry
	subs     *marketdata.SubscriptionManager
	logger   *zap.Logger
}

// NewHandler creates the WebSocket endpoint handler.
func NewHandler(cfg config.WSConfig, registry *marketdata.Registry, subs *marketdata.SubscriptionManager, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		cfg: cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  cfg.ReadBufferSize,
			WriteBufferSize: cfg.WriteBufferSize,
			CheckOrigin:     originChecker(cfg.AllowedOrigins),
		},
		registry: registry,
		subs:     subs,
		logger:   logger,
	}
}

func originChecker(allowed []string) func(*http.Request) bool {
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
	}
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		_, ok := set[r.Header.Get("Origin")]
		return ok
	}
}

// ServeHTTP performs the upgrade, assigns a session id, registers the
// session, and starts its pumps. The welcome payload advertising the
// subscription limit goes out first.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	sessionID := uuid.NewString()
	client := newClient(sessionID, conn, h.cfg, h.registry, h.subs, h.logger)
	h.registry.Register(sessionID, client)

	client.sendControl(Welcome{
		Type:             "welcome",
		SessionID:        sessionID,
		MaxSubscriptions: h.subs.MaxSubscriptions(),
	})

	go client.writePump()
	go client.readPump()

	h.logger.Debug("session connected",
		zap.String("session_id", sessionID),
		zap.String("remote_addr", r.RemoteAddr))
}
