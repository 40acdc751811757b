package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/quantgate/quantgate/api"
	"github.com/quantgate/quantgate/internal/config"
	"github.com/quantgate/quantgate/internal/marketdata"
	"github.com/quantgate/quantgate/internal/routing"
	"github.com/quantgate/quantgate/internal/ws"
	"github.com/quantgate/quantgate/pkg/logger"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	cfg, err := config.Load(os.Getenv("QUANTGATE_CONFIG"))
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zapLogger, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zapLogger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Market-data core: registry, subscription manager, fan-out, transport.
	registry := marketdata.NewRegistry(cfg.WS.CleanupQueueSize, zapLogger.Named("registry"))
	registry.Start(ctx)
	subs := marketdata.NewSubscriptionManager(registry, cfg.WS.MaxSubscriptions, zapLogger.Named("subscriptions"))
	delivery := marketdata.NewDelivery(registry, zapLogger.Named("delivery"))

	wsGate := ws.NewHandler(cfg.WS, registry, subs, zapLogger.Named("ws"))

	// Routing core: configured router set behind one selector.
	routers := routing.BuildRouters(cfg.Routing, routing.AlwaysConnected)
	selector := routing.NewSelector(zapLogger.Named("routing"), routers...)

	apiServer := api.NewServer(zapLogger.Named("api"), selector, delivery, wsGate)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	go func() {
		zapLogger.Info("Starting API server", zap.String("addr", addr))
		if err := apiServer.Start(addr); err != nil {
			zapLogger.Fatal("Failed to start API server", zap.Error(err))
		}
	}()

	// Wait for interrupt to shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLogger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Failed to stop API server", zap.Error(err))
	}

	zapLogger.Info("Server exited properly")
}
