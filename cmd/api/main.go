package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	_ "github.com/joho/godotenv/autoload"

	"datasync/internal/app"
	"datasync/internal/config"
	handlers "datasync/internal/http/handler"
	"datasync/internal/http/middleware"
	"datasync/internal/logging"
	"datasync/internal/otel"
)

// @title datasync API
// @version 1.0
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	logger := logging.New(os.Stdout, cfg.Location())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, logger)
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(ctx)
	}()

	a, err := app.New(cfg, logger)
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	defer a.Close()

	// Build the stack eagerly so a bad database or bucket fails at startup
	db, err := a.DB(ctx)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	items, err := a.Items(ctx)
	if err != nil {
		log.Fatalf("failed to initialize item service: %v", err)
	}

	promMiddleware, err := middleware.NewPrometheusMiddleware(a.Metrics)
	if err != nil {
		log.Fatalf("failed to register http metrics: %v", err)
	}

	fiberApp := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
	})

	// Register global middleware
	fiberApp.Use(otelfiber.Middleware())
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	fiberApp.Use(middleware.RequestID())
	// JSON Logger middleware for structured request logs
	fiberApp.Use(middleware.Logger(logger))
	fiberApp.Use(promMiddleware.Handler())

	routes := handlers.Routes{
		Items:         items,
		DefaultPolicy: a.DefaultPolicy,
		Gatherer:      a.Metrics,
	}
	if db != nil {
		routes.DB = db
	}
	handlers.RegisterRoutes(fiberApp, routes)

	go func() {
		<-ctx.Done()
		_ = fiberApp.ShutdownWithTimeout(10 * time.Second)
	}()

	addr := ":" + cfg.Port
	logger.Info("server_starting", map[string]any{"addr": addr, "default_policy": a.DefaultPolicy.String()})

	if err := fiberApp.Listen(addr); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
