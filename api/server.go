// Package api is the thin HTTP surface over the routing and market-data
// cores: one routing endpoint, the market-data WebSocket, health, and
// metrics. Authentication, validation, and persistence live outside this
// service.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/quantgate/quantgate/internal/marketdata"
	"github.com/quantgate/quantgate/internal/routing"
	"github.com/quantgate/quantgate/internal/ws"
)

// Server represents the API server
type Server struct {
	router   *gin.Engine
	logger   *zap.Logger
	selector *routing.Selector
	delivery *marketdata.Delivery
	wsGate   *ws.Handler
	httpSrv  *http.Server
}

// NewServer creates the API server over the injected cores.
func NewServer(logger *zap.Logger, selector *routing.Selector, delivery *marketdata.Delivery, wsGate *ws.Handler) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	server := &Server{
		logger:   logger,
		selector: selector,
		delivery: delivery,
		wsGate:   wsGate,
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(ginzap.Ginzap(logger, time.RFC3339, true))
	router.Use(ginzap.RecoveryWithZap(logger, true))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/ws/market-data", gin.WrapH(wsGate))

	v1 := router.Group("/api/v1")
	v1.POST("/orders/route", server.handleRouteOrder)
	v1.POST("/marketdata/publish", server.handlePublish)

	server.router = router
	return server
}

// routeErrorResponse is the JSON body for a failed routing attempt.
type routeErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) handleRouteOrder(c *gin.Context) {
	var order routing.Order
	if err := c.ShouldBindJSON(&order); err != nil {
		c.JSON(http.StatusBadRequest, routeErrorResponse{
			Code:    "BAD_REQUEST",
			Message: err.Error(),
		})
		return
	}

	decision, err := s.selector.Route(c.Request.Context(), &order)
	if err != nil {
		var rerr routing.RoutingError
		if errors.As(err, &rerr) {
			c.JSON(http.StatusUnprocessableEntity, routeErrorResponse{
				Code:    rerr.Code(),
				Message: rerr.Error(),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, routeErrorResponse{
			Code:    "INTERNAL",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, decision)
}

// handlePublish accepts an inbound market-data event from the feed
// collaborator and fans it out. Delivery is best-effort: per-session send
// failures are handled inside the core, so this always accepts.
func (s *Server) handlePublish(c *gin.Context) {
	var event marketdata.Event
	if err := c.ShouldBindJSON(&event); err != nil {
		c.JSON(http.StatusBadRequest, routeErrorResponse{
			Code:    "BAD_REQUEST",
			Message: err.Error(),
		})
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	s.delivery.Deliver(event)
	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}

// Start runs the HTTP server until Shutdown is called.
func (s *Server) Start(addr string) error {
	s.httpSrv = &http.Server{
		Addr:    addr,
		Handler: s.router,
	}
	if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the HTTP server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

// Router exposes the gin engine for tests.
func (s *Server) Router() *gin.Engine { return s.router }
