// Package ws is the WebSocket transport for market-data sessions: one
// Client per connection, registered into the marketdata registry as the
// session's send handle.
package ws

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/quantgate/quantgate/internal/config"
	"github.com/quantgate/quantgate/internal/marketdata"
)

var (
	// ErrSendBufferFull is returned when a session cannot keep up with the
	// fan-out rate. The delivery path turns it into session cleanup.
	ErrSendBufferFull = errors.New("ws: session send buffer full")
	// ErrSessionClosed is returned for sends after the session closed.
	ErrSessionClosed = errors.New("ws: session closed")
)

// Welcome is the first payload pushed to every new session. It states the
// subscription limit the server will enforce.
type Welcome struct {
	Type             string `json:"type"`
	SessionID        string `json:"session_id"`
	MaxSubscriptions int    `json:"max_subscriptions"`
}

// Client is one live WebSocket session. It implements marketdata.Conn;
// Send enqueues onto a bounded per-session buffer so one slow session
// never stalls delivery to the rest.
type Client struct {
	id       string
	conn     *websocket.Conn
	cfg      config.WSConfig
	registry *marketdata.Registry
	subs     *marketdata.SubscriptionManager
	logger   *zap.Logger

	send    chan marketdata.Event
	control chan any

	closed    chan struct{}
	closeOnce sync.Once
}

func newClient(id string, conn *websocket.Conn, cfg config.WSConfig, registry *marketdata.Registry, subs *marketdata.SubscriptionManager, logger *zap.Logger) *Client {
	return &Client{
		id:       id,
		conn:     conn,
		cfg:      cfg,
		registry: registry,
		subs:     subs,
		logger:   logger,
		send:     make(chan marketdata.Event, cfg.MessageBufferSize),
		control:  make(chan any, 16),
		closed:   make(chan struct{}),
	}
}

// ID returns the session identifier.
func (c *Client) ID() string { return c.id }

// Send enqueues an event for the write pump without blocking the caller.
func (c *Client) Send(event marketdata.Event) error {
	select {
	case <-c.closed:
		return ErrSessionClosed
	default:
	}
	select {
	case c.send <- event:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// Close tears the connection down. Idempotent; also invoked by the
// registry when the session is deregistered.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		close(c.closed)
		_ = c.conn.Close()
	})
	return nil
}

// sendControl queues an ack or welcome payload for the write pump.
func (c *Client) sendControl(msg any) {
	select {
	case c.control <- msg:
	case <-c.closed:
	}
}

// readPump consumes subscription requests until the connection drops, then
// deregisters the session.
func (c *Client) readPump() {
	defer func() {
		c.registry.Deregister(c.id)
	}()

	c.conn.SetReadLimit(c.cfg.MaxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongTimeout))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Debug("session read error",
					zap.String("session_id", c.id), zap.Error(err))
			}
			return
		}

		var req marketdata.SubscriptionRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			c.sendControl(marketdata.ErrorAck("", nil, errors.New("malformed request")))
			continue
		}
		c.handleRequest(req)
	}
}

func (c *Client) handleRequest(req marketdata.SubscriptionRequest) {
	switch req.Action {
	case marketdata.ActionSubscribe:
		types := make([]marketdata.DataType, 0, len(req.DataTypes))
		for _, dt := range req.DataTypes {
			types = append(types, marketdata.DataType(dt))
		}
		ack, err := c.subs.Subscribe(c.id, req.Symbols, types)
		if err != nil {
			c.sendControl(marketdata.ErrorAck(req.Action, req.Symbols, err))
			return
		}
		c.sendControl(ack)
	case marketdata.ActionUnsubscribe:
		ack, err := c.subs.Unsubscribe(c.id, req.Symbols)
		if err != nil {
			c.sendControl(marketdata.ErrorAck(req.Action, req.Symbols, err))
			return
		}
		c.sendControl(ack)
	default:
		c.sendControl(marketdata.ErrorAck(req.Action, req.Symbols,
			errors.New("unknown action, expected SUBSCRIBE or UNSUBSCRIBE")))
	}
}

// writePump writes acks, events, and heartbeats. Any write failure ends the
// session and triggers cleanup through the registry.
func (c *Client) writePump() {
	ticker := time.NewTicker(c.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		c.registry.Deregister(c.id)
	}()

	for {
		select {
		case <-c.closed:
			return
		case msg := <-c.control:
			if err := c.writeJSON(msg); err != nil {
				return
			}
		case event := <-c.send:
			if err := c.writeJSON(event); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) writeJSON(msg any) error {
	_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
	return c.conn.WriteJSON(msg)
}
